package filters

import (
	"context"
	"sync"
	"sync/atomic"

	"SignalGate/internal/domain/models"
)

// Stage is one admission filter in the pipeline chain.
type Stage interface {
	Name() string
	Apply(ctx context.Context, batch []*models.Signal) models.StageResult
}

// evalFunc decides a single signal. ReasonNone means admit.
type evalFunc func(ctx context.Context, s *models.Signal) models.Reason

// applyStage runs eval over the batch, converting any per-signal panic into
// an evaluation_error rejection so one bad signal cannot abort the batch.
func applyStage(ctx context.Context, batch []*models.Signal, eval evalFunc) models.StageResult {
	res := models.StageResult{
		Passed:  make([]*models.Signal, 0, len(batch)),
		Reasons: make(map[models.Reason]int),
	}
	for _, s := range batch {
		reason := safeEval(ctx, s, eval)
		if reason == models.ReasonNone {
			res.Passed = append(res.Passed, s)
			continue
		}
		res.Rejected++
		res.Reasons[reason]++
	}
	return res
}

// applyStageConcurrent is applyStage with one goroutine per signal, for
// stages whose per-signal work is dominated by provider calls. Batch order
// is preserved in the passed list.
func applyStageConcurrent(ctx context.Context, batch []*models.Signal, eval evalFunc) models.StageResult {
	reasons := make([]models.Reason, len(batch))
	var wg sync.WaitGroup
	for i, s := range batch {
		wg.Add(1)
		go func(i int, s *models.Signal) {
			defer wg.Done()
			reasons[i] = safeEval(ctx, s, eval)
		}(i, s)
	}
	wg.Wait()

	res := models.StageResult{
		Passed:  make([]*models.Signal, 0, len(batch)),
		Reasons: make(map[models.Reason]int),
	}
	for i, s := range batch {
		if reasons[i] == models.ReasonNone {
			res.Passed = append(res.Passed, s)
			continue
		}
		res.Rejected++
		res.Reasons[reasons[i]]++
	}
	return res
}

func safeEval(ctx context.Context, s *models.Signal, eval evalFunc) (reason models.Reason) {
	defer func() {
		if r := recover(); r != nil {
			reason = models.ReasonEvaluationError
		}
	}()
	return eval(ctx, s)
}

// stageCounters holds cumulative processed/rejected counts for one stage.
type stageCounters struct {
	processed atomic.Int64
	rejected  atomic.Int64
}

// RejectionStats accumulates per-stage and total counters. Counters only
// grow; Reset is an explicit operator action.
type RejectionStats struct {
	order  []string
	stages map[string]*stageCounters
	total  stageCounters
}

// NewRejectionStats creates stats for the named stages in pipeline order.
func NewRejectionStats(stageNames []string) *RejectionStats {
	rs := &RejectionStats{
		order:  append([]string(nil), stageNames...),
		stages: make(map[string]*stageCounters, len(stageNames)),
	}
	for _, n := range stageNames {
		rs.stages[n] = &stageCounters{}
	}
	return rs
}

// RecordStage adds one stage invocation's counts.
func (rs *RejectionStats) RecordStage(stage string, processed, rejected int) {
	c, ok := rs.stages[stage]
	if !ok {
		return
	}
	c.processed.Add(int64(processed))
	c.rejected.Add(int64(rejected))
}

// RecordTotal adds one full pipeline run's counts.
func (rs *RejectionStats) RecordTotal(processed, rejected int) {
	rs.total.processed.Add(int64(processed))
	rs.total.rejected.Add(int64(rejected))
}

// Reset zeroes all counters.
func (rs *RejectionStats) Reset() {
	for _, c := range rs.stages {
		c.processed.Store(0)
		c.rejected.Store(0)
	}
	rs.total.processed.Store(0)
	rs.total.rejected.Store(0)
}

// Snapshot returns a consistent-enough view for reporting.
func (rs *RejectionStats) Snapshot() *models.PipelineStats {
	snap := &models.PipelineStats{
		TotalProcessed: rs.total.processed.Load(),
		TotalRejected:  rs.total.rejected.Load(),
	}
	if snap.TotalProcessed > 0 {
		snap.RejectionRate = float64(snap.TotalRejected) / float64(snap.TotalProcessed)
	}
	for _, name := range rs.order {
		c := rs.stages[name]
		st := models.StageStats{
			Stage:     name,
			Processed: c.processed.Load(),
			Rejected:  c.rejected.Load(),
		}
		if st.Processed > 0 {
			st.RejectionRate = float64(st.Rejected) / float64(st.Processed)
		}
		snap.Stages = append(snap.Stages, st)
	}
	return snap
}
