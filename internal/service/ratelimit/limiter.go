package ratelimit

import (
	"math"
	"sync"
	"time"

	"SignalGate/pkg/config"
	"SignalGate/pkg/logger"
)

// Result is the outcome of one admission check.
type Result struct {
	Allowed    bool          `json:"allowed"`
	Remaining  int           `json:"remaining"`
	ResetTime  time.Time     `json:"reset_time"`
	RetryAfter time.Duration `json:"retry_after"`
}

// strategy evaluates one key's state. consume=false is a pure read for Stats.
type strategy interface {
	check(key string, now time.Time, consume bool) (Result, error)
	reset(key string)
}

// Limiter admits requests per (client, endpoint) key using the configured
// strategy. State accounting errors fail open: availability of the gated
// operation takes priority over strict limiting.
type Limiter struct {
	cfg   config.RateLimitConfig
	strat strategy
	log   *logger.Logger
	clock func() time.Time
}

// New creates a limiter with the strategy named in cfg.Strategy.
func New(cfg config.RateLimitConfig, log *logger.Logger) *Limiter {
	l := &Limiter{cfg: cfg, log: log, clock: time.Now}
	switch cfg.Strategy {
	case "sliding_window":
		l.strat = newSlidingWindow(cfg.MaxPerMinute, cfg.MaxPerHour)
	case "fixed_window":
		l.strat = newFixedWindow(cfg.MaxPerMinute)
	case "leaky_bucket":
		l.strat = newLeakyBucket(float64(cfg.BurstSize), float64(cfg.MaxPerMinute)/60)
	default:
		l.strat = newTokenBucket(float64(cfg.BurstSize), float64(cfg.MaxPerMinute)/60)
	}
	return l
}

// Check consumes one unit for the key if available.
func (l *Limiter) Check(clientID, endpoint string) Result {
	if !l.cfg.Enabled {
		return Result{Allowed: true, Remaining: math.MaxInt32}
	}
	res, err := l.strat.check(clientID+":"+endpoint, l.clock(), true)
	if err != nil {
		if l.log != nil {
			l.log.Warn("rate limiter accounting error, admitting",
				logger.String("client", clientID), logger.String("endpoint", endpoint), logger.Error(err))
		}
		return Result{Allowed: true, Remaining: math.MaxInt32}
	}
	return res
}

// Stats reads the current state for a key without consuming.
func (l *Limiter) Stats(clientID, endpoint string) Result {
	if !l.cfg.Enabled {
		return Result{Allowed: true, Remaining: math.MaxInt32}
	}
	res, err := l.strat.check(clientID+":"+endpoint, l.clock(), false)
	if err != nil {
		return Result{Allowed: true, Remaining: math.MaxInt32}
	}
	return res
}

// Reset clears state for one key.
func (l *Limiter) Reset(clientID, endpoint string) {
	l.strat.reset(clientID + ":" + endpoint)
}

// --- token bucket ---

type tbState struct {
	tokens float64
	last   time.Time
}

type tokenBucket struct {
	mu       sync.Mutex
	capacity float64
	rate     float64 // tokens per second
	m        map[string]*tbState
}

func newTokenBucket(capacity, rate float64) *tokenBucket {
	return &tokenBucket{capacity: capacity, rate: rate, m: make(map[string]*tbState)}
}

func (b *tokenBucket) check(key string, now time.Time, consume bool) (Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.m[key]
	if !ok {
		s = &tbState{tokens: b.capacity, last: now}
		b.m[key] = s
	}
	if elapsed := now.Sub(s.last).Seconds(); elapsed > 0 {
		s.tokens = math.Min(b.capacity, s.tokens+elapsed*b.rate)
		s.last = now
	}

	res := Result{Remaining: int(s.tokens)}
	if s.tokens >= 1 {
		res.Allowed = true
		if consume {
			s.tokens--
			res.Remaining = int(s.tokens)
		}
		return res, nil
	}
	// time until the next whole token
	wait := time.Duration((1 - s.tokens) / b.rate * float64(time.Second))
	res.RetryAfter = wait
	res.ResetTime = now.Add(wait)
	return res, nil
}

func (b *tokenBucket) reset(key string) {
	b.mu.Lock()
	delete(b.m, key)
	b.mu.Unlock()
}

// --- sliding window ---

type swState struct {
	minute []time.Time
	hour   []time.Time
}

type slidingWindow struct {
	mu        sync.Mutex
	perMinute int
	perHour   int
	m         map[string]*swState
}

func newSlidingWindow(perMinute, perHour int) *slidingWindow {
	return &slidingWindow{perMinute: perMinute, perHour: perHour, m: make(map[string]*swState)}
}

func prune(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && ts[i].Before(cutoff) {
		i++
	}
	return ts[i:]
}

func (w *slidingWindow) check(key string, now time.Time, consume bool) (Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, ok := w.m[key]
	if !ok {
		s = &swState{}
		w.m[key] = s
	}
	s.minute = prune(s.minute, now.Add(-time.Minute))
	s.hour = prune(s.hour, now.Add(-time.Hour))

	remMin := w.perMinute - len(s.minute)
	remHour := w.perHour - len(s.hour)
	res := Result{Remaining: min(remMin, remHour)}

	if remMin <= 0 || remHour <= 0 {
		// retry when the oldest entry in the exhausted window expires
		var reset time.Time
		if remMin <= 0 && len(s.minute) > 0 {
			reset = s.minute[0].Add(time.Minute)
		}
		if remHour <= 0 && len(s.hour) > 0 {
			if r := s.hour[0].Add(time.Hour); reset.IsZero() || r.After(reset) {
				reset = r
			}
		}
		res.Remaining = 0
		res.ResetTime = reset
		if !reset.IsZero() {
			res.RetryAfter = reset.Sub(now)
		}
		return res, nil
	}

	res.Allowed = true
	if consume {
		s.minute = append(s.minute, now)
		s.hour = append(s.hour, now)
		res.Remaining--
	}
	return res, nil
}

func (w *slidingWindow) reset(key string) {
	w.mu.Lock()
	delete(w.m, key)
	w.mu.Unlock()
}

// --- fixed window ---

type fwState struct {
	windowStart time.Time
	count       int
}

type fixedWindow struct {
	mu        sync.Mutex
	perMinute int
	m         map[string]*fwState
}

func newFixedWindow(perMinute int) *fixedWindow {
	return &fixedWindow{perMinute: perMinute, m: make(map[string]*fwState)}
}

func (w *fixedWindow) check(key string, now time.Time, consume bool) (Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := now.Truncate(time.Minute)
	s, ok := w.m[key]
	if !ok || !s.windowStart.Equal(start) {
		s = &fwState{windowStart: start}
		w.m[key] = s
	}

	res := Result{Remaining: w.perMinute - s.count, ResetTime: start.Add(time.Minute)}
	if s.count >= w.perMinute {
		res.Remaining = 0
		res.RetryAfter = res.ResetTime.Sub(now)
		return res, nil
	}
	res.Allowed = true
	if consume {
		s.count++
		res.Remaining--
	}
	return res, nil
}

func (w *fixedWindow) reset(key string) {
	w.mu.Lock()
	delete(w.m, key)
	w.mu.Unlock()
}

// --- leaky bucket ---

type lbState struct {
	level float64
	last  time.Time
}

type leakyBucket struct {
	mu       sync.Mutex
	capacity float64
	drain    float64 // units per second
	m        map[string]*lbState
}

func newLeakyBucket(capacity, drain float64) *leakyBucket {
	return &leakyBucket{capacity: capacity, drain: drain, m: make(map[string]*lbState)}
}

func (b *leakyBucket) check(key string, now time.Time, consume bool) (Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.m[key]
	if !ok {
		s = &lbState{last: now}
		b.m[key] = s
	}
	if elapsed := now.Sub(s.last).Seconds(); elapsed > 0 {
		s.level = math.Max(0, s.level-elapsed*b.drain)
		s.last = now
	}

	res := Result{Remaining: int(b.capacity - s.level)}
	if s.level+1 > b.capacity {
		wait := time.Duration((s.level + 1 - b.capacity) / b.drain * float64(time.Second))
		res.Remaining = 0
		res.RetryAfter = wait
		res.ResetTime = now.Add(wait)
		return res, nil
	}
	res.Allowed = true
	if consume {
		s.level++
		res.Remaining = int(b.capacity - s.level)
	}
	return res, nil
}

func (b *leakyBucket) reset(key string) {
	b.mu.Lock()
	delete(b.m, key)
	b.mu.Unlock()
}
