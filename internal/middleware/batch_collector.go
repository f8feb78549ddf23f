package middleware

import (
	"fmt"

	"SignalGate/internal/domain/models"
	drepo "SignalGate/internal/domain/repository"
)

// BatchCollector sits between the signal feed and the admission pipeline.
// It validates and buffers incoming signals so the orchestrator can pull
// one bounded batch per cycle instead of evaluating per message.
type BatchCollector struct {
	metrics drepo.Metrics
	bufSize int
	bufCh   chan *models.Signal
}

type CollectorOption func(*BatchCollector)

// WithBufferSize sets the intake buffer size.
func WithBufferSize(n int) CollectorOption {
	return func(c *BatchCollector) {
		if n > 0 {
			c.bufSize = n
		}
	}
}

// NewBatchCollector creates a collector.
func NewBatchCollector(metrics drepo.Metrics, opts ...CollectorOption) *BatchCollector {
	c := &BatchCollector{metrics: metrics, bufSize: 2000}
	for _, opt := range opts {
		opt(c)
	}
	c.bufCh = make(chan *models.Signal, c.bufSize)
	return c
}

// Offer validates and buffers one signal. Malformed signals are dropped
// here so structurally broken input never reaches the pipeline; a full
// buffer drops the signal rather than blocking the feed reader.
func (c *BatchCollector) Offer(s *models.Signal) error {
	if s.Malformed() {
		if c.metrics != nil {
			c.metrics.RecordError("collector_validate")
		}
		return fmt.Errorf("malformed signal")
	}
	select {
	case c.bufCh <- s:
		if c.metrics != nil {
			c.metrics.RecordLatency("collector_buffer_depth", float64(len(c.bufCh)))
		}
		return nil
	default:
		if c.metrics != nil {
			c.metrics.RecordError("collector_buffer_full")
		}
		return fmt.Errorf("collector buffer full")
	}
}

// Drain removes up to max buffered signals, preserving arrival order.
// Returns nil when the buffer is empty.
func (c *BatchCollector) Drain(max int) []*models.Signal {
	if max <= 0 {
		max = cap(c.bufCh)
	}
	var batch []*models.Signal
	for len(batch) < max {
		select {
		case s := <-c.bufCh:
			batch = append(batch, s)
		default:
			return batch
		}
	}
	return batch
}

// Pending returns the current buffer depth.
func (c *BatchCollector) Pending() int { return len(c.bufCh) }
