package usecase

import (
	"context"
	"errors"
	"testing"

	"SignalGate/internal/domain/models"
)

type stubBackend struct {
	published []*models.Signal
	stored    []*models.Signal
	fail      bool
}

func (s *stubBackend) Publish(_ context.Context, sig *models.Signal) error {
	if s.fail {
		return errors.New("broker down")
	}
	s.published = append(s.published, sig)
	return nil
}

func (s *stubBackend) PublishBatch(_ context.Context, sigs []*models.Signal) error {
	if s.fail {
		return errors.New("broker down")
	}
	s.published = append(s.published, sigs...)
	return nil
}

func (s *stubBackend) Store(_ context.Context, sig *models.Signal) error {
	if s.fail {
		return errors.New("db down")
	}
	s.stored = append(s.stored, sig)
	return nil
}

func (s *stubBackend) StoreBatch(_ context.Context, sigs []*models.Signal) error {
	if s.fail {
		return errors.New("db down")
	}
	s.stored = append(s.stored, sigs...)
	return nil
}

func (s *stubBackend) Health(context.Context) error { return nil }
func (s *stubBackend) Close() error                 { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordStage(string, int, int)                {}
func (nopMetrics) RecordRejection(string, models.Reason, int)  {}
func (nopMetrics) RecordCycle(float64, int, int)               {}
func (nopMetrics) RecordRejectionRate(float64)                 {}
func (nopMetrics) RecordProviderError(string)                  {}
func (nopMetrics) RecordMessageSent(string, string)            {}
func (nopMetrics) RecordError(string)                          {}
func (nopMetrics) RecordLatency(string, float64)               {}

func admittedSignal(sym string) *models.Signal {
	return &models.Signal{Symbol: sym, Timestamp: 1_700_000_000, Confidence: 0.9}
}

func TestProcessorRoutesToKafka(t *testing.T) {
	b := &stubBackend{}
	p := NewSignalProcessor(b, b, nopMetrics{}, "kafka")

	if err := p.ProcessBatch(context.Background(), []*models.Signal{admittedSignal("A"), admittedSignal("B")}); err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if len(b.published) != 2 || len(b.stored) != 0 {
		t.Fatalf("expected kafka routing, published=%d stored=%d", len(b.published), len(b.stored))
	}
}

func TestProcessorRoutesToClickHouse(t *testing.T) {
	b := &stubBackend{}
	p := NewSignalProcessor(b, b, nopMetrics{}, "clickhouse")

	if err := p.Process(context.Background(), admittedSignal("A")); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(b.stored) != 1 || len(b.published) != 0 {
		t.Fatalf("expected clickhouse routing, published=%d stored=%d", len(b.published), len(b.stored))
	}
}

func TestProcessorUnknownBackend(t *testing.T) {
	b := &stubBackend{}
	p := NewSignalProcessor(b, b, nopMetrics{}, "carrier-pigeon")
	if err := p.Process(context.Background(), admittedSignal("A")); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestProcessorPropagatesBackendError(t *testing.T) {
	b := &stubBackend{fail: true}
	p := NewSignalProcessor(b, b, nopMetrics{}, "kafka")
	if err := p.ProcessBatch(context.Background(), []*models.Signal{admittedSignal("A")}); err == nil {
		t.Fatalf("expected propagated error")
	}
}

func TestProcessorEmptyBatchIsNoop(t *testing.T) {
	b := &stubBackend{fail: true} // would error if touched
	p := NewSignalProcessor(b, b, nopMetrics{}, "kafka")
	if err := p.ProcessBatch(context.Background(), nil); err != nil {
		t.Fatalf("empty batch must be a no-op, got %v", err)
	}
}

func TestProcessorNilSignal(t *testing.T) {
	p := NewSignalProcessor(&stubBackend{}, &stubBackend{}, nopMetrics{}, "kafka")
	if err := p.Process(context.Background(), nil); err == nil {
		t.Fatalf("nil signal must error")
	}
}
