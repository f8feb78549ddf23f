package usecase

import (
	"context"
	"time"

	"SignalGate/internal/domain/models"
	drepo "SignalGate/internal/domain/repository"
	mid "SignalGate/internal/middleware"
	"SignalGate/internal/service/cooldown"
	"SignalGate/internal/services/filters"
	"SignalGate/internal/services/monitor"
	"SignalGate/pkg/logger"
)

// SignalCollector owns the ingest-evaluate-route loop: it reads raw signals
// from the feed into the batch collector, and on every cycle tick drains one
// batch through the admission pipeline and hands survivors to the processor.
type SignalCollector struct {
	stream    drepo.SignalStream
	collector *mid.BatchCollector
	orch      *filters.Orchestrator
	proc      *SignalProcessor
	mon       *monitor.HealthMonitor
	metrics   drepo.Metrics
	log       *logger.Logger

	interval time.Duration
	maxBatch int
	sweeps   []*cooldown.Tracker
	cancel   context.CancelFunc
}

// NewSignalCollector creates a new SignalCollector instance.
func NewSignalCollector(
	stream drepo.SignalStream,
	collector *mid.BatchCollector,
	orch *filters.Orchestrator,
	proc *SignalProcessor,
	mon *monitor.HealthMonitor,
	metrics drepo.Metrics,
	log *logger.Logger,
	interval time.Duration,
	maxBatch int,
	sweeps ...*cooldown.Tracker,
) *SignalCollector {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if maxBatch <= 0 {
		maxBatch = 1000
	}
	return &SignalCollector{
		stream:    stream,
		collector: collector,
		orch:      orch,
		proc:      proc,
		mon:       mon,
		metrics:   metrics,
		log:       log,
		interval:  interval,
		maxBatch:  maxBatch,
		sweeps:    sweeps,
	}
}

// IsConnected reports whether the signal feed is connected.
func (c *SignalCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Start connects the feed and launches the consume and cycle loops.
func (c *SignalCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	sigCh, errCh := c.stream.Read(runCtx)
	go c.consume(runCtx, sigCh, errCh)
	go c.cycleLoop(runCtx)
	return nil
}

func (c *SignalCollector) consume(ctx context.Context, sigCh <-chan *models.Signal, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case s := <-sigCh:
			if s == nil {
				continue
			}
			if err := c.collector.Offer(s); err != nil {
				c.log.Debug("signal dropped", logger.String("symbol", s.Symbol), logger.Error(err))
			}
		}
	}
}

func (c *SignalCollector) cycleLoop(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runCycle(ctx)
		}
	}
}

func (c *SignalCollector) runCycle(ctx context.Context) {
	now := time.Now()
	for _, t := range c.sweeps {
		t.Sweep(now)
	}

	batch := c.collector.Drain(c.maxBatch)
	if len(batch) == 0 {
		return
	}

	admitted := c.orch.Run(ctx, batch)
	if len(admitted) > 0 {
		if err := c.proc.ProcessBatch(ctx, admitted); err != nil {
			c.log.Error("route admitted batch", logger.Error(err))
		}
	}

	processed := int64(len(batch))
	rejected := processed - int64(len(admitted))
	rate := 0.0
	if processed > 0 {
		rate = float64(rejected) / float64(processed)
	}

	c.metrics.RecordRejectionRate(rate)

	breakdown := make(map[string]int64)
	for _, st := range c.orch.Stats().Snapshot().Stages {
		breakdown[st.Stage] = st.Rejected
	}
	c.mon.Observe(rate, processed, rejected, breakdown)
}

// Processor returns the underlying SignalProcessor for lifecycle management.
func (c *SignalCollector) Processor() *SignalProcessor { return c.proc }

// Shutdown stops the loops and closes the feed.
func (c *SignalCollector) Shutdown(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}
	return c.stream.Close()
}
