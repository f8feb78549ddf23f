package monitor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"SignalGate/pkg/config"
	"SignalGate/pkg/logger"
)

// Health classifies the current rejection rate against the healthy band.
type Health string

const (
	HealthOK         Health = "healthy"
	HealthTooLenient Health = "too_lenient"
	HealthAggressive Health = "too_aggressive"
)

// AlertPublisher delivers alert events to an external transport.
type AlertPublisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

// Summary is a point-in-time view of monitor state.
type Summary struct {
	Health        Health             `json:"health"`
	Current       float64            `json:"current_rate"`
	Average       float64            `json:"average_rate"`
	Min           float64            `json:"min_rate"`
	Max           float64            `json:"max_rate"`
	Cycles        int64              `json:"cycles"`
	Processed     int64              `json:"processed"`
	Rejected      int64              `json:"rejected"`
	StageRejected map[string]int64   `json:"stage_rejected,omitempty"`
	LastAlerts    map[string]float64 `json:"last_alerts_unix,omitempty"`
}

// HealthMonitor watches the rejection-rate trend over a bounded ring of
// recent cycles and raises drift and spike alerts. It is constructed
// explicitly and driven by its owner's post-cycle callback; there is no
// process-wide instance and no internal polling goroutine.
type HealthMonitor struct {
	cfg    config.MonitorConfig
	env    string
	log    *logger.Logger
	alerts AlertPublisher
	topic  string

	mu        sync.Mutex
	ring      []float64
	next      int
	count     int
	cycles    int64
	processed int64
	rejected  int64
	byStage   map[string]int64
	lastAlert map[string]time.Time
	clock     func() time.Time
}

// New creates a monitor. alerts and topic may be empty; alert events always
// go to the structured log regardless.
func New(cfg config.MonitorConfig, env string, log *logger.Logger, alerts AlertPublisher, topic string) *HealthMonitor {
	size := cfg.HistorySize
	if size <= 0 {
		size = 100
	}
	return &HealthMonitor{
		cfg:       cfg,
		env:       env,
		log:       log,
		alerts:    alerts,
		topic:     topic,
		ring:      make([]float64, size),
		byStage:   make(map[string]int64),
		lastAlert: make(map[string]time.Time),
		clock:     time.Now,
	}
}

// Observe records one pipeline cycle's aggregate outcome. rate is the cycle
// rejection rate in [0,1]; breakdown carries per-stage rejected counts.
func (m *HealthMonitor) Observe(rate float64, processed, rejected int64, breakdown map[string]int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// ring append and trim happen together under the same lock hold
	m.ring[m.next] = rate
	m.next = (m.next + 1) % len(m.ring)
	if m.count < len(m.ring) {
		m.count++
	}
	m.cycles++
	m.processed += processed
	m.rejected += rejected
	for stage, n := range breakdown {
		m.byStage[stage] += n
	}

	avg := m.averageLocked()
	now := m.clock()

	switch m.classify(rate) {
	case HealthTooLenient:
		if m.shouldAlert("too_lenient", now) {
			m.emit("filter_too_lenient", "warn", rate, avg,
				fmt.Sprintf("rejection rate %.1f%% below healthy minimum %.1f%%", rate*100, m.cfg.MinHealthyRate*100))
		}
	case HealthAggressive:
		if m.shouldAlert("too_aggressive", now) {
			m.emit("filter_too_aggressive", "warn", rate, avg,
				fmt.Sprintf("rejection rate %.1f%% above healthy maximum %.1f%%", rate*100, m.cfg.MaxHealthyRate*100))
		}
	default:
		if m.log != nil {
			m.log.Debug("filter_healthy",
				logger.Any("rate", rate), logger.Any("average", avg))
		}
	}

	// spike detection needs a stabilized average
	if m.count >= m.cfg.MinHistory && avg > 0 && rate > avg*m.cfg.SpikeMultiplier {
		if m.shouldAlert("spike", now) {
			m.emit("spam_spike", "error", rate, avg,
				fmt.Sprintf("rejection rate %.1f%% exceeds %.2fx rolling average", rate*100, m.cfg.SpikeMultiplier))
		}
	}

	if m.log != nil {
		m.log.Debug("filter_performance",
			logger.Any("rate", rate),
			logger.Any("average", avg),
			logger.Int64("processed", processed),
			logger.Int64("rejected", rejected))
	}
}

// Summary returns current monitor state.
func (m *HealthMonitor) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Summary{
		Average:       m.averageLocked(),
		Cycles:        m.cycles,
		Processed:     m.processed,
		Rejected:      m.rejected,
		StageRejected: make(map[string]int64, len(m.byStage)),
		LastAlerts:    make(map[string]float64, len(m.lastAlert)),
	}
	if m.count > 0 {
		last := (m.next - 1 + len(m.ring)) % len(m.ring)
		s.Current = m.ring[last]
		s.Min, s.Max = m.ring[0], m.ring[0]
		for i := 0; i < m.count; i++ {
			v := m.ring[i]
			if v < s.Min {
				s.Min = v
			}
			if v > s.Max {
				s.Max = v
			}
		}
	}
	s.Health = m.classify(s.Current)
	for k, v := range m.byStage {
		s.StageRejected[k] = v
	}
	for k, t := range m.lastAlert {
		s.LastAlerts[k] = float64(t.Unix())
	}
	return s
}

// Exposition renders monitor state in Prometheus text format for scraping.
func (m *HealthMonitor) Exposition() string {
	s := m.Summary()
	var b strings.Builder
	write := func(name, help, typ string, v float64) {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s %s\n%s{environment=%q} %g\n", name, help, name, typ, name, m.env, v)
	}
	write("signalgate_rejection_rate", "Most recent cycle rejection rate", "gauge", s.Current)
	write("signalgate_rejection_rate_avg", "Rolling average rejection rate", "gauge", s.Average)
	write("signalgate_signals_processed_total", "Signals processed by the pipeline", "counter", float64(s.Processed))
	write("signalgate_signals_rejected_total", "Signals rejected by the pipeline", "counter", float64(s.Rejected))
	healthy := 0.0
	if s.Health == HealthOK {
		healthy = 1
	}
	write("signalgate_filter_healthy", "1 when the rejection rate is inside the healthy band", "gauge", healthy)
	return b.String()
}

// Reset clears history and counters (operator action, e.g. daily rollover).
func (m *HealthMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next, m.count, m.cycles = 0, 0, 0
	m.processed, m.rejected = 0, 0
	m.byStage = make(map[string]int64)
	m.lastAlert = make(map[string]time.Time)
}

func (m *HealthMonitor) classify(rate float64) Health {
	switch {
	case rate < m.cfg.MinHealthyRate:
		return HealthTooLenient
	case rate > m.cfg.MaxHealthyRate:
		return HealthAggressive
	default:
		return HealthOK
	}
}

func (m *HealthMonitor) averageLocked() float64 {
	if m.count == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < m.count; i++ {
		sum += m.ring[i]
	}
	return sum / float64(m.count)
}

// shouldAlert applies the per-class alert cooldown and, when the alert may
// fire, advances the cooldown clock.
func (m *HealthMonitor) shouldAlert(class string, now time.Time) bool {
	if last, ok := m.lastAlert[class]; ok && now.Sub(last) < m.cfg.AlertCooldown {
		return false
	}
	m.lastAlert[class] = now
	return true
}

func (m *HealthMonitor) emit(event, level string, rate, avg float64, msg string) {
	if m.log != nil {
		fields := []logger.Field{
			logger.Any("rate", rate),
			logger.Any("average", avg),
			logger.String("detail", msg),
		}
		if level == "error" {
			m.log.Error(event, fields...)
		} else {
			m.log.Warn(event, fields...)
		}
	}
	if m.alerts != nil && m.topic != "" {
		payload := map[string]interface{}{
			"event":       event,
			"environment": m.env,
			"rate":        rate,
			"average":     avg,
			"detail":      msg,
			"ts":          m.clock().Unix(),
		}
		// alert delivery is best-effort; the log already has the event
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = m.alerts.PublishMessage(ctx, m.topic, payload)
		}()
	}
}
