package middleware

import (
	"testing"

	"SignalGate/internal/domain/models"
)

func validSignal(sym string) *models.Signal {
	return &models.Signal{
		Symbol:     sym,
		Confidence: 0.7,
		Timestamp:  1_700_000_000,
		Volume:     1000,
		Liquidity:  5000,
	}
}

func TestOfferAndDrainPreserveOrder(t *testing.T) {
	c := NewBatchCollector(nil)
	for _, sym := range []string{"A", "B", "C"} {
		if err := c.Offer(validSignal(sym)); err != nil {
			t.Fatalf("offer %s: %v", sym, err)
		}
	}

	batch := c.Drain(10)
	if len(batch) != 3 {
		t.Fatalf("expected 3, got %d", len(batch))
	}
	for i, want := range []string{"A", "B", "C"} {
		if batch[i].Symbol != want {
			t.Fatalf("order broken at %d: %s", i, batch[i].Symbol)
		}
	}
	if got := c.Drain(10); got != nil {
		t.Fatalf("drained collector should be empty, got %d", len(got))
	}
}

func TestOfferRejectsMalformed(t *testing.T) {
	c := NewBatchCollector(nil)
	s := validSignal("X")
	s.Timestamp = 0
	if err := c.Offer(s); err == nil {
		t.Fatalf("malformed signal must be dropped")
	}
	if c.Pending() != 0 {
		t.Fatalf("dropped signal buffered anyway")
	}
}

func TestDrainRespectsMax(t *testing.T) {
	c := NewBatchCollector(nil)
	for i := 0; i < 10; i++ {
		_ = c.Offer(validSignal("S"))
	}
	if got := len(c.Drain(4)); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
	if c.Pending() != 6 {
		t.Fatalf("expected 6 pending, got %d", c.Pending())
	}
}

func TestOfferFullBufferDropsNotBlocks(t *testing.T) {
	c := NewBatchCollector(nil, WithBufferSize(2))
	_ = c.Offer(validSignal("A"))
	_ = c.Offer(validSignal("B"))
	if err := c.Offer(validSignal("C")); err == nil {
		t.Fatalf("full buffer must reject, not block")
	}
}
