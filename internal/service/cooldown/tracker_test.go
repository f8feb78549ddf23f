package cooldown

import (
	"sync"
	"testing"
	"time"
)

func TestTryAdmitSpacing(t *testing.T) {
	tr := New(30*time.Second, 10, time.Hour)
	base := time.Unix(1_700_000_000, 0)

	// ten signals 10s apart; only every third clears the 30s cooldown
	admitted := 0
	for i := 0; i < 10; i++ {
		if tr.TryAdmit("PEPE", base.Add(time.Duration(i*10)*time.Second)) {
			admitted++
		}
	}
	if admitted != 4 {
		t.Fatalf("expected 4 admitted, got %d", admitted)
	}
}

func TestTryAdmitRejectionDoesNotMutate(t *testing.T) {
	tr := New(30*time.Second, 10, time.Hour)
	base := time.Unix(1_700_000_000, 0)

	if !tr.TryAdmit("DOGE", base) {
		t.Fatalf("first signal must be admitted")
	}
	// rejected at +10s; the admitted time must still be base
	if tr.TryAdmit("DOGE", base.Add(10*time.Second)) {
		t.Fatalf("expected rejection inside cooldown")
	}
	if !tr.TryAdmit("DOGE", base.Add(30*time.Second)) {
		t.Fatalf("expected admission 30s after the admitted signal")
	}
}

func TestSignalCountCap(t *testing.T) {
	tr := New(0, 5, time.Hour)
	base := time.Unix(1_700_000_000, 0)

	admitted := 0
	for i := 0; i < 10; i++ {
		if !tr.SignalCountCheck("WIF") {
			continue
		}
		if tr.TryAdmit("WIF", base.Add(time.Duration(i)*time.Second)) {
			admitted++
		}
	}
	if admitted != 5 {
		t.Fatalf("expected cap at 5, got %d", admitted)
	}
}

func TestSweepPrunesStaleAndResetsCounts(t *testing.T) {
	tr := New(0, 3, time.Hour)
	base := time.Unix(1_700_000_000, 0)

	tr.TryAdmit("OLD", base)
	tr.TryAdmit("FRESH", base.Add(2*time.Hour))

	tr.Sweep(base.Add(2*time.Hour).Add(time.Minute))
	if tr.Len() != 1 {
		t.Fatalf("expected stale entry pruned, len=%d", tr.Len())
	}

	// count reset: three more admissions fit again
	for i := 0; i < 3; i++ {
		if !tr.SignalCountCheck("FRESH") {
			t.Fatalf("count not reset at admission %d", i)
		}
		tr.TryAdmit("FRESH", base.Add(2*time.Hour).Add(time.Duration(i+1)*time.Second))
	}
}

func TestReset(t *testing.T) {
	tr := New(time.Minute, 5, time.Hour)
	tr.TryAdmit("BONK", time.Unix(1_700_000_000, 0))
	tr.Reset()
	if tr.Len() != 0 {
		t.Fatalf("expected empty tracker after reset")
	}
}

func TestTryAdmitConcurrentSingleWinner(t *testing.T) {
	tr := New(time.Minute, 100, time.Hour)
	now := time.Unix(1_700_000_000, 0)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tr.TryAdmit("SAME", now) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
}
