package filters

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"SignalGate/internal/domain/models"
	"SignalGate/internal/service/cooldown"
	"SignalGate/pkg/config"
)

func heuristicConfig() config.HeuristicConfig {
	return config.HeuristicConfig{
		MinVolume:               5000,
		MinLiquidity:            10000,
		MinConfidence:           0.65,
		CooldownSeconds:         30,
		MaxSignalsPerSymbol:     5,
		SweepAge:                time.Hour,
		QualityThreshold:        0.6,
		MinAvgTxSize:            10,
		MinVolumeConsistency:    0.3,
		MaxVolumeLiquidityRatio: 10,
		MaxLiquidityDepthRatio:  15,
		SpikeVolume:             500000,
		SpikeLiquidity:          20000,
		MaxHolderConcentration:  0.30,
		MinUniqueHolders:        50,
		MaxWashScore:            0.7,
		MaxTxPerMinute:          300,
		MinLargeTxShare:         0.05,
		PumpRSICeiling:          90,
		MaxPriceChange5m:        0.5,
		MinLockedLiquidity:      0.5,
		MinTokenAgeHours:        24,
		YoungTokenAgeHours:      72,
		YoungTokenConfidence:    0.8,
		MaxRewardRiskRatio:      5,
		MinStopDistance:         0.02,
		RoundTargetConfidence:   0.75,
	}
}

type fakeProviders struct {
	holders func() (*models.HolderDistribution, error)
	txs     func() (*models.TxHistory, error)
	locks   func() (*models.LiquidityLock, error)
	ages    func() (*models.TokenAge, error)
}

func (f *fakeProviders) Distribution(context.Context, string) (*models.HolderDistribution, error) {
	if f.holders == nil {
		return nil, nil
	}
	return f.holders()
}

func (f *fakeProviders) History(context.Context, string) (*models.TxHistory, error) {
	if f.txs == nil {
		return nil, nil
	}
	return f.txs()
}

func (f *fakeProviders) Lock(context.Context, string) (*models.LiquidityLock, error) {
	if f.locks == nil {
		return nil, nil
	}
	return f.locks()
}

func (f *fakeProviders) Age(context.Context, string) (*models.TokenAge, error) {
	if f.ages == nil {
		return nil, nil
	}
	return f.ages()
}

func newTestHeuristic(p *fakeProviders) *HeuristicFilter {
	if p == nil {
		p = &fakeProviders{}
	}
	cd := cooldown.New(30*time.Second, 5, time.Hour)
	return NewHeuristicFilter(heuristicConfig(), cd, p, p, p, p, time.Second, nil, nil)
}

func legitSignal() *models.Signal {
	return &models.Signal{
		Symbol:     "WIF",
		Action:     models.ActionBuy,
		Confidence: 0.85,
		Timeframe:  "1m",
		Timestamp:  1_700_000_000,
		Volume:     50_000,
		Liquidity:  100_000,
		RSI:        60,
		Meta: models.SignalMeta{
			AvgTxSize:         40,
			VolumeConsistency: 0.6,
			TokenAddress:      "0xabc",
		},
	}
}

func applyOne(t *testing.T, f *HeuristicFilter, s *models.Signal) models.StageResult {
	t.Helper()
	return f.Apply(context.Background(), []*models.Signal{s})
}

func wantReason(t *testing.T, res models.StageResult, want models.Reason) {
	t.Helper()
	if res.Rejected != 1 {
		t.Fatalf("expected rejection, got pass")
	}
	if res.Reasons[want] != 1 {
		t.Fatalf("expected %s, got %v", want, res.Reasons)
	}
}

func TestHeuristicPassesLegitSignal(t *testing.T) {
	f := newTestHeuristic(nil)
	res := applyOne(t, f, legitSignal())
	if len(res.Passed) != 1 {
		t.Fatalf("expected pass, got %v", res.Reasons)
	}
}

func TestHeuristicVolumeQualityZeroScore(t *testing.T) {
	f := newTestHeuristic(nil)
	s := legitSignal()
	s.Meta.AvgTxSize = 5
	s.Meta.VolumeConsistency = 0.1
	s.Volume = 150_000
	s.Liquidity = 10_000
	wantReason(t, applyOne(t, f, s), models.ReasonVolumeQuality)
}

func TestHeuristicCooldownUsesSignalTimestamp(t *testing.T) {
	f := newTestHeuristic(nil)

	first := legitSignal()
	if res := applyOne(t, f, first); len(res.Passed) != 1 {
		t.Fatalf("first signal should pass: %v", res.Reasons)
	}

	second := legitSignal()
	second.Timestamp = first.Timestamp + 10
	wantReason(t, applyOne(t, f, second), models.ReasonCooldownActive)

	third := legitSignal()
	third.Timestamp = first.Timestamp + 30
	if res := applyOne(t, f, third); len(res.Passed) != 1 {
		t.Fatalf("signal past cooldown should pass: %v", res.Reasons)
	}
}

func TestHeuristicSymbolCap(t *testing.T) {
	f := newTestHeuristic(nil)

	base := int64(1_700_000_000)
	admitted := 0
	for i := 0; i < 10; i++ {
		s := legitSignal()
		s.Timestamp = base + int64(i*60)
		if res := applyOne(t, f, s); len(res.Passed) == 1 {
			admitted++
		}
	}
	if admitted != 5 {
		t.Fatalf("expected 5 admissions before cap, got %d", admitted)
	}

	s := legitSignal()
	s.Timestamp = base + 3600
	wantReason(t, applyOne(t, f, s), models.ReasonSymbolLimit)
}

func TestHeuristicLiquidityDepth(t *testing.T) {
	f := newTestHeuristic(nil)
	s := legitSignal()
	s.Volume = 200_000
	s.Liquidity = 10_000 // ratio 20 exceeds depth cap 15
	s.Meta.AvgTxSize = 40
	s.Meta.VolumeConsistency = 0.6
	// quality docks only the ratio term (0.7), so depth is what rejects
	wantReason(t, applyOne(t, f, s), models.ReasonLiquidityDepth)
}

func TestHeuristicVolumeSpike(t *testing.T) {
	f := newTestHeuristic(nil)
	s := legitSignal()
	s.Volume = 600_000
	s.Liquidity = 90_000 // quality and depth ratios fine (6.7)
	// spike: volume over 500k with liquidity under... 90k is over 20k, passes
	if res := applyOne(t, f, s); len(res.Passed) != 1 {
		t.Fatalf("deep book spike should pass: %v", res.Reasons)
	}

	// with the depth cap relaxed, a huge volume on a thin book is a spike
	cfg := heuristicConfig()
	cfg.MaxVolumeLiquidityRatio = 100
	cfg.MaxLiquidityDepthRatio = 100
	thin := NewHeuristicFilter(cfg, cooldown.New(30*time.Second, 5, time.Hour),
		nil, nil, nil, nil, time.Second, nil, nil)
	s2 := legitSignal()
	s2.Symbol = "BONK"
	s2.Volume = 600_000
	s2.Liquidity = 15_000
	wantReason(t, thin.Apply(context.Background(), []*models.Signal{s2}), models.ReasonVolumeSpike)
}

func TestHeuristicHolderConcentration(t *testing.T) {
	f := newTestHeuristic(&fakeProviders{
		holders: func() (*models.HolderDistribution, error) {
			return &models.HolderDistribution{TopHolderShare: 0.6, UniqueHolders: 400}, nil
		},
	})
	wantReason(t, applyOne(t, f, legitSignal()), models.ReasonHolderConcentration)
}

func TestHeuristicWashTrading(t *testing.T) {
	f := newTestHeuristic(&fakeProviders{
		txs: func() (*models.TxHistory, error) {
			return &models.TxHistory{WashScore: 0.9}, nil
		},
	})
	wantReason(t, applyOne(t, f, legitSignal()), models.ReasonWashTrading)

	f = newTestHeuristic(&fakeProviders{
		txs: func() (*models.TxHistory, error) {
			return &models.TxHistory{WashScore: 0.1, TxPerMinute: 500, LargeTxShare: 0.01}, nil
		},
	})
	wantReason(t, applyOne(t, f, legitSignal()), models.ReasonWashTrading)
}

func TestHeuristicProviderErrorFailsOpen(t *testing.T) {
	boom := errors.New("rpc timeout")
	f := newTestHeuristic(&fakeProviders{
		holders: func() (*models.HolderDistribution, error) { return nil, boom },
		txs:     func() (*models.TxHistory, error) { return nil, boom },
		locks:   func() (*models.LiquidityLock, error) { return nil, boom },
		ages:    func() (*models.TokenAge, error) { return nil, boom },
	})
	res := applyOne(t, f, legitSignal())
	if len(res.Passed) != 1 {
		t.Fatalf("advisory provider outage must fail open, got %v", res.Reasons)
	}
}

type recordingMetrics struct {
	mu        sync.Mutex
	providers []string
}

func (r *recordingMetrics) RecordStage(string, int, int)               {}
func (r *recordingMetrics) RecordRejection(string, models.Reason, int) {}
func (r *recordingMetrics) RecordCycle(float64, int, int)              {}
func (r *recordingMetrics) RecordRejectionRate(float64)                {}
func (r *recordingMetrics) RecordMessageSent(string, string)           {}
func (r *recordingMetrics) RecordError(string)                         {}
func (r *recordingMetrics) RecordLatency(string, float64)              {}

func (r *recordingMetrics) RecordProviderError(provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, provider)
}

func TestHeuristicProviderErrorRecordsMetric(t *testing.T) {
	boom := errors.New("rpc timeout")
	rec := &recordingMetrics{}
	p := &fakeProviders{
		holders: func() (*models.HolderDistribution, error) { return nil, boom },
	}
	cd := cooldown.New(30*time.Second, 5, time.Hour)
	f := NewHeuristicFilter(heuristicConfig(), cd, p, p, p, p, time.Second, nil, rec)

	if res := applyOne(t, f, legitSignal()); len(res.Passed) != 1 {
		t.Fatalf("holders outage must fail open, got %v", res.Reasons)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.providers) != 1 || rec.providers[0] != "holders" {
		t.Fatalf("recorded provider errors = %v, want [holders]", rec.providers)
	}
}

func TestHeuristicUnlockedLiquidityFailsClosedOnData(t *testing.T) {
	f := newTestHeuristic(&fakeProviders{
		locks: func() (*models.LiquidityLock, error) {
			return &models.LiquidityLock{LockedRatio: 0.2}, nil
		},
	})
	wantReason(t, applyOne(t, f, legitSignal()), models.ReasonUnlockedLiquidity)
}

func TestHeuristicPumpAndDump(t *testing.T) {
	f := newTestHeuristic(nil)

	s := legitSignal()
	s.RSI = 92
	wantReason(t, applyOne(t, f, s), models.ReasonPumpAndDump)

	s = legitSignal()
	s.Symbol = "B"
	s.Meta.PriceChange5m = 0.8
	wantReason(t, applyOne(t, f, s), models.ReasonPumpAndDump)

	s = legitSignal()
	s.Symbol = "C"
	s.Resistance = 1.5 // resistance with no support
	wantReason(t, applyOne(t, f, s), models.ReasonPumpAndDump)
}

func TestHeuristicTokenAge(t *testing.T) {
	age := func(h float64) *fakeProviders {
		return &fakeProviders{ages: func() (*models.TokenAge, error) {
			return &models.TokenAge{AgeHours: h}, nil
		}}
	}

	wantReason(t, applyOne(t, newTestHeuristic(age(6)), legitSignal()), models.ReasonTokenAge)

	// young token with weak confidence
	s := legitSignal()
	s.Confidence = 0.7
	wantReason(t, applyOne(t, newTestHeuristic(age(48)), s), models.ReasonTokenAge)

	// young token with strong confidence passes
	if res := applyOne(t, newTestHeuristic(age(48)), legitSignal()); len(res.Passed) != 1 {
		t.Fatalf("confident young-token signal should pass: %v", res.Reasons)
	}

	if res := applyOne(t, newTestHeuristic(age(200)), legitSignal()); len(res.Passed) != 1 {
		t.Fatalf("mature token should pass: %v", res.Reasons)
	}
}

func TestHeuristicPriceManipulation(t *testing.T) {
	f := newTestHeuristic(nil)

	// absurd reward/risk
	s := legitSignal()
	s.Support = 1.0
	s.Resistance = 1.2 // est 1.1
	s.PriceTarget = 2.2
	s.StopLoss = 0.99
	wantReason(t, applyOne(t, f, s), models.ReasonPriceManipulation)

	// stop glued to entry
	s = legitSignal()
	s.Symbol = "B"
	s.Support = 1.0
	s.Resistance = 1.2
	s.PriceTarget = 1.3
	s.StopLoss = 1.099
	wantReason(t, applyOne(t, f, s), models.ReasonPriceManipulation)

	// target without stop
	s = legitSignal()
	s.Symbol = "C"
	s.PriceTarget = 1.5
	s.Support = 1.0
	wantReason(t, applyOne(t, f, s), models.ReasonPriceManipulation)

	// sane geometry passes
	s = legitSignal()
	s.Symbol = "D"
	s.Support = 1.0
	s.Resistance = 1.2
	s.PriceTarget = 1.33
	s.StopLoss = 1.0
	if res := applyOne(t, f, s); len(res.Passed) != 1 {
		t.Fatalf("sane levels should pass: %v", res.Reasons)
	}
}

func TestHeuristicMalformedSignal(t *testing.T) {
	f := newTestHeuristic(nil)
	s := legitSignal()
	s.Symbol = ""
	wantReason(t, applyOne(t, f, s), models.ReasonInvalidSignal)
}

func TestHeuristicStricterConfigRejectsMore(t *testing.T) {
	loose := newTestHeuristic(nil)
	strictCfg := heuristicConfig()
	strictCfg.MinConfidence = 0.9
	strict := NewHeuristicFilter(strictCfg, cooldown.New(30*time.Second, 5, time.Hour),
		nil, nil, nil, nil, time.Second, nil, nil)

	s := legitSignal()
	if res := applyOne(t, loose, s); len(res.Passed) != 1 {
		t.Fatalf("loose config should pass: %v", res.Reasons)
	}
	s2 := legitSignal()
	res := strict.Apply(context.Background(), []*models.Signal{s2})
	wantReason(t, res, models.ReasonLowConfidence)
}

func TestProviderPolicyAsymmetry(t *testing.T) {
	open := []models.Reason{
		models.ReasonHolderConcentration,
		models.ReasonWashTrading,
		models.ReasonUnlockedLiquidity,
		models.ReasonTokenAge,
	}
	for _, r := range open {
		if ProviderPolicy(r) != FailOpen {
			t.Fatalf("%s must be fail-open", r)
		}
	}
	closed := []models.Reason{models.ReasonHoneypot, models.ReasonSocialRisk, models.ReasonLowVolume}
	for _, r := range closed {
		if ProviderPolicy(r) != FailClosed {
			t.Fatalf("%s must be fail-closed", r)
		}
	}
}
