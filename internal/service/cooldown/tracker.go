package cooldown

import (
	"sync"
	"time"
)

type entry struct {
	lastSignal time.Time
	count      int
}

// Tracker keeps per-symbol cooldown and admission-count state. All methods
// are safe for concurrent use; the check-and-set in TryAdmit is atomic per
// symbol and no lock is ever held across an external call.
type Tracker struct {
	mu           sync.Mutex
	entries      map[string]*entry
	cooldown     time.Duration
	maxPerWindow int
	staleAfter   time.Duration
}

// New creates a tracker. cooldown is the minimum spacing between admitted
// signals per symbol; maxPerWindow caps admissions per symbol between sweeps.
func New(cooldown time.Duration, maxPerWindow int, staleAfter time.Duration) *Tracker {
	if staleAfter <= 0 {
		staleAfter = time.Hour
	}
	return &Tracker{
		entries:      make(map[string]*entry),
		cooldown:     cooldown,
		maxPerWindow: maxPerWindow,
		staleAfter:   staleAfter,
	}
}

// TryAdmit atomically checks the cooldown for symbol at the given time and,
// on success, records it as the new last-admitted time. A rejection never
// mutates state.
func (t *Tracker) TryAdmit(symbol string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[symbol]
	if !ok {
		t.entries[symbol] = &entry{lastSignal: now, count: 1}
		return true
	}
	if now.Sub(e.lastSignal) < t.cooldown {
		return false
	}
	e.lastSignal = now
	e.count++
	return true
}

// SignalCountCheck reports whether symbol is still under its admission cap
// for the current accounting period. Pure read.
func (t *Tracker) SignalCountCheck(symbol string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[symbol]
	if !ok {
		return true
	}
	return e.count < t.maxPerWindow
}

// Sweep removes entries whose last signal is older than the stale horizon
// and resets all admission counts, starting a new accounting period.
// Intended to run once per pipeline cycle, not per signal.
func (t *Tracker) Sweep(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for sym, e := range t.entries {
		if now.Sub(e.lastSignal) > t.staleAfter {
			delete(t.entries, sym)
			continue
		}
		e.count = 0
	}
}

// Reset drops all tracked symbols (operator action).
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[string]*entry)
}

// Len returns the number of tracked symbols.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
