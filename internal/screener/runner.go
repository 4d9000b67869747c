package screener

import (
	"context"
	"sync"
	"time"

	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/contracts"
	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/logger"
)

// Runner wires the pipeline, aggregator, and reporters into a single run
// entry point, and retains the latest summary for the API layer. Safe for
// concurrent use.
type Runner struct {
	pipeline  *Pipeline
	reporters []Reporter
	logger    *logger.Logger

	totalRules        int
	nearMissThreshold int

	mu     sync.RWMutex
	latest *Summary
}

// NewRunner creates a run coordinator. nearMissThreshold of 0 means
// totalRules-1.
func NewRunner(pipeline *Pipeline, totalRules, nearMissThreshold int, log *logger.Logger, reporters ...Reporter) *Runner {
	return &Runner{
		pipeline:          pipeline,
		reporters:         reporters,
		logger:            log.WithField("module", "runner"),
		totalRules:        totalRules,
		nearMissThreshold: nearMissThreshold,
	}
}

// RunOnce screens the given instruments, aggregates, reports, and retains
// the summary. Reporter failures are logged, not propagated; the summary is
// still returned.
func (r *Runner) RunOnce(ctx context.Context, instruments []contracts.Instrument) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	runAt := time.Now()
	results := r.pipeline.Run(ctx, instruments)
	summary := Aggregate(results, r.totalRules, r.nearMissThreshold, runAt, time.Since(runAt))

	r.mu.Lock()
	r.latest = &summary
	r.mu.Unlock()

	for _, reporter := range r.reporters {
		if err := reporter.Report(ctx, summary); err != nil {
			r.logger.WithError(err).Error("Reporter failed")
		}
	}

	return summary, nil
}

// Latest returns the most recent summary, if any run has completed.
func (r *Runner) Latest() (Summary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.latest == nil {
		return Summary{}, false
	}
	return *r.latest, true
}
