package filters

import (
	"context"
	"time"

	"SignalGate/internal/domain/models"
	drepo "SignalGate/internal/domain/repository"
	"SignalGate/pkg/logger"
)

// Orchestrator chains the admission stages in fixed order, cheapest first,
// feeding each stage's survivors into the next. It is the only entry point
// callers use.
type Orchestrator struct {
	stages  []Stage
	stats   *RejectionStats
	budget  time.Duration
	log     *logger.Logger
	metrics drepo.Metrics
}

// NewOrchestrator builds the pipeline from stages in execution order.
func NewOrchestrator(stages []Stage, budget time.Duration, log *logger.Logger, metrics drepo.Metrics) *Orchestrator {
	if budget <= 0 {
		budget = 100 * time.Millisecond
	}
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name()
	}
	return &Orchestrator{
		stages:  stages,
		stats:   NewRejectionStats(names),
		budget:  budget,
		log:     log,
		metrics: metrics,
	}
}

// Run evaluates one batch through the full chain and returns the survivors.
// The latency budget is advisory: exceeding it logs a warning but never
// truncates the result.
func (o *Orchestrator) Run(ctx context.Context, batch []*models.Signal) []*models.Signal {
	start := time.Now()
	cur := batch

	for _, st := range o.stages {
		if len(cur) == 0 {
			break
		}
		in := len(cur)
		res := st.Apply(ctx, cur)

		o.stats.RecordStage(st.Name(), in, res.Rejected)
		if o.metrics != nil {
			o.metrics.RecordStage(st.Name(), in, res.Rejected)
			for reason, n := range res.Reasons {
				o.metrics.RecordRejection(st.Name(), reason, n)
			}
		}
		if o.log != nil && in > 0 {
			o.log.Debug("stage complete",
				logger.String("stage", st.Name()),
				logger.Int("input", in),
				logger.Int("passed", len(res.Passed)),
				logger.Int("rejected", res.Rejected),
				logger.Any("rate", float64(res.Rejected)/float64(in)))
		}
		cur = res.Passed
	}

	elapsed := time.Since(start)
	o.stats.RecordTotal(len(batch), len(batch)-len(cur))
	if o.metrics != nil {
		o.metrics.RecordCycle(elapsed.Seconds(), len(batch), len(cur))
	}
	if elapsed > o.budget && o.log != nil {
		o.log.Warn("slow processing",
			logger.Duration("elapsed", elapsed),
			logger.Duration("budget", o.budget),
			logger.Int("batch", len(batch)))
	}
	return cur
}

// Stats returns the cumulative rejection counters.
func (o *Orchestrator) Stats() *RejectionStats { return o.stats }
