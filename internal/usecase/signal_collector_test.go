package usecase

import (
	"context"
	"testing"
	"time"

	"SignalGate/internal/domain/models"
	mid "SignalGate/internal/middleware"
	"SignalGate/internal/service/cooldown"
	"SignalGate/internal/services/filters"
	"SignalGate/internal/services/monitor"
	"SignalGate/pkg/config"
)

func TestRunCycleSweepsTrackers(t *testing.T) {
	tr := cooldown.New(30*time.Second, 1, time.Hour)
	now := time.Now()
	if !tr.TryAdmit("OLD", now.Add(-2*time.Hour)) {
		t.Fatalf("first admission for OLD rejected")
	}
	if !tr.TryAdmit("PEPE", now) {
		t.Fatalf("first admission for PEPE rejected")
	}
	if tr.SignalCountCheck("PEPE") {
		t.Fatalf("PEPE should be at its admission cap before the cycle")
	}

	col := mid.NewBatchCollector(nopMetrics{})
	c := NewSignalCollector(nil, col, nil, nil, nil, nopMetrics{}, nil, time.Second, 10, tr)
	c.runCycle(context.Background())

	if got := tr.Len(); got != 1 {
		t.Fatalf("tracked symbols after cycle = %d, want 1 (stale entry pruned)", got)
	}
	if !tr.SignalCountCheck("PEPE") {
		t.Fatalf("admission count not reset by the per-cycle sweep")
	}
}

func TestRunCycleSweepsEvenWhenIdle(t *testing.T) {
	tr := cooldown.New(30*time.Second, 5, time.Minute)
	if !tr.TryAdmit("GHOST", time.Now().Add(-10*time.Minute)) {
		t.Fatalf("first admission rejected")
	}

	col := mid.NewBatchCollector(nopMetrics{})
	c := NewSignalCollector(nil, col, nil, nil, nil, nopMetrics{}, nil, time.Second, 10, tr)
	c.runCycle(context.Background())

	if got := tr.Len(); got != 0 {
		t.Fatalf("stale entry survived an idle cycle, tracked = %d", got)
	}
}

type rateMetrics struct {
	nopMetrics
	rates []float64
}

func (r *rateMetrics) RecordRejectionRate(rate float64) {
	r.rates = append(r.rates, rate)
}

type dropSymbolStage struct{ symbol string }

func (d dropSymbolStage) Name() string { return "drop" }

func (d dropSymbolStage) Apply(_ context.Context, batch []*models.Signal) models.StageResult {
	res := models.StageResult{Reasons: map[models.Reason]int{}}
	for _, s := range batch {
		if s.Symbol == d.symbol {
			res.Rejected++
			res.Reasons[models.ReasonLowConfidence]++
			continue
		}
		res.Passed = append(res.Passed, s)
	}
	return res
}

func TestRunCycleRecordsRejectionRate(t *testing.T) {
	rec := &rateMetrics{}
	orch := filters.NewOrchestrator([]filters.Stage{dropSymbolStage{symbol: "RUG"}}, 0, nil, nil)
	backend := &stubBackend{}
	proc := NewSignalProcessor(backend, backend, rec, "kafka")
	mon := monitor.New(config.MonitorConfig{
		HistorySize:    10,
		MinHealthyRate: 0,
		MaxHealthyRate: 1,
		MinHistory:     5,
	}, "test", nil, nil, "")

	col := mid.NewBatchCollector(rec)
	for _, sym := range []string{"PEPE", "RUG"} {
		if err := col.Offer(&models.Signal{
			Symbol:     sym,
			Confidence: 0.8,
			Timestamp:  1_700_000_000,
			Volume:     10_000,
			Liquidity:  50_000,
		}); err != nil {
			t.Fatalf("offer %s: %v", sym, err)
		}
	}

	c := NewSignalCollector(nil, col, orch, proc, mon, rec, nil, time.Second, 10)
	c.runCycle(context.Background())

	if len(rec.rates) != 1 || rec.rates[0] != 0.5 {
		t.Fatalf("recorded rejection rates = %v, want [0.5]", rec.rates)
	}
	if len(backend.published) != 1 || backend.published[0].Symbol != "PEPE" {
		t.Fatalf("published survivors = %v", backend.published)
	}
}
