package jobs

import (
	"context"
	"fmt"

	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/contracts"
	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/screener"
	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/logger"
)

// InstrumentSource provides the universe for a scheduled run.
type InstrumentSource interface {
	List(ctx context.Context) ([]contracts.Instrument, error)
}

// ScreeningJob runs the daily screen after the NSE close.
type ScreeningJob struct {
	source InstrumentSource
	runner *screener.Runner
	logger *logger.Logger
}

// NewScreeningJob creates the daily screening job.
func NewScreeningJob(source InstrumentSource, runner *screener.Runner, log *logger.Logger) *ScreeningJob {
	return &ScreeningJob{
		source: source,
		runner: runner,
		logger: log,
	}
}

// Name returns the job name
func (j *ScreeningJob) Name() string {
	return "daily_screening"
}

// Schedule returns the cron schedule. NSE closes at 15:30 IST; end-of-day
// candles settle well before 18:30.
func (j *ScreeningJob) Schedule() string {
	return "0 30 18 * * 1-5"
}

// Run loads the universe and executes one full screening pass.
func (j *ScreeningJob) Run(ctx context.Context) error {
	instruments, err := j.source.List(ctx)
	if err != nil {
		return fmt.Errorf("load universe: %w", err)
	}
	if len(instruments) == 0 {
		return fmt.Errorf("universe is empty, nothing to screen")
	}

	summary, err := j.runner.RunOnce(ctx, instruments)
	if err != nil {
		return fmt.Errorf("screening run: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"total":     summary.Stats.Total,
		"passed":    summary.Stats.Passed,
		"near_miss": summary.Stats.NearMiss,
	}).Info("Daily screening finished")

	return nil
}
