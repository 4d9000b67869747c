package screener

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/contracts"
	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/fetch"
	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/indicator"
	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/rules"
	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/logger"
)

// Fetcher is the pipeline's view of the fetch orchestrator.
type Fetcher interface {
	Fetch(ctx context.Context, instrument contracts.Instrument, dateRange contracts.DateRange) (contracts.Series, error)
}

// PipelineConfig holds run parameters for the worker pool.
type PipelineConfig struct {
	// Workers bounds the number of instruments in flight. Kept small to
	// respect the provider's rate-limit budget.
	Workers int

	// PacingDelay is the per-worker gap between consecutive fetches.
	PacingDelay time.Duration

	// DateRangeDays is the calendar span of candles requested per
	// instrument. Must cover the rule windows plus weekends/holidays.
	DateRangeDays int
}

// Pipeline screens instruments concurrently: fetch, compute indicators,
// evaluate rules, collect one Result per instrument. A single instrument's
// failure never aborts the run.
type Pipeline struct {
	fetcher Fetcher
	rules   rules.Config
	cfg     PipelineConfig
	logger  *logger.Logger
}

// NewPipeline creates a screening pipeline. The rule config must already be
// validated.
func NewPipeline(fetcher Fetcher, ruleCfg rules.Config, cfg PipelineConfig, log *logger.Logger) *Pipeline {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	return &Pipeline{
		fetcher: fetcher,
		rules:   ruleCfg,
		cfg:     cfg,
		logger:  log.WithField("module", "pipeline"),
	}
}

// Run screens every instrument and returns exactly one Result for each.
// Results arrive in completion order; callers needing a stable order must
// sort afterwards.
func (p *Pipeline) Run(ctx context.Context, instruments []contracts.Instrument) []Result {
	p.logger.WithFields(map[string]interface{}{
		"instruments": len(instruments),
		"workers":     p.cfg.Workers,
		"pacing":      p.cfg.PacingDelay,
	}).Info("Starting screening run")

	dateRange := contracts.LastNDays(p.cfg.DateRangeDays)

	instrumentCh := make(chan contracts.Instrument, len(instruments))
	resultCh := make(chan Result, len(instruments))

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.worker(ctx, workerID, instrumentCh, resultCh, dateRange)
		}(i)
	}

	for _, instrument := range instruments {
		instrumentCh <- instrument
	}
	close(instrumentCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]Result, 0, len(instruments))
	for result := range resultCh {
		results = append(results, result)
	}

	p.logger.WithField("results", len(results)).Info("Screening run completed")
	return results
}

// worker drains the instrument channel, pacing its own fetches.
func (p *Pipeline) worker(ctx context.Context, workerID int, instrumentCh <-chan contracts.Instrument, resultCh chan<- Result, dateRange contracts.DateRange) {
	// One limiter per worker: pacing is a per-slot policy, not a shared
	// token bucket.
	var limiter *rate.Limiter
	if p.cfg.PacingDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(p.cfg.PacingDelay), 1)
	}

	for instrument := range instrumentCh {
		if ctx.Err() != nil {
			resultCh <- Result{
				Instrument: instrument,
				Status:     StatusError,
				Reason:     fmt.Sprintf("run cancelled: %v", ctx.Err()),
			}
			continue
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				resultCh <- Result{
					Instrument: instrument,
					Status:     StatusError,
					Reason:     fmt.Sprintf("run cancelled: %v", err),
				}
				continue
			}
		}

		result := p.screenOne(ctx, instrument, dateRange)

		p.logger.WithFields(map[string]interface{}{
			"worker": workerID,
			"symbol": instrument.Symbol,
			"status": result.Status,
		}).Debug("Instrument screened")

		resultCh <- result
	}
}

// screenOne runs fetch -> indicators -> rules for a single instrument.
// Every failure mode, including panics, becomes a terminal Result.
func (p *Pipeline) screenOne(ctx context.Context, instrument contracts.Instrument, dateRange contracts.DateRange) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.WithFields(map[string]interface{}{
				"symbol": instrument.Symbol,
				"panic":  r,
			}).Error("Recovered panic while screening instrument")

			result = Result{
				Instrument: instrument,
				Status:     StatusError,
				Reason:     fmt.Sprintf("unexpected error: %v", r),
			}
		}
	}()

	series, err := p.fetcher.Fetch(ctx, instrument, dateRange)
	if err != nil {
		return Result{
			Instrument: instrument,
			Status:     StatusFetchFailed,
			Reason:     fetchReason(err),
		}
	}

	latestDate := time.Time{}
	if series.Len() > 0 {
		latestDate = series.Latest().Timestamp
	}

	metrics, err := indicator.Compute(series, p.rules.IndicatorParams())
	if err != nil {
		if indicator.IsInsufficientData(err) {
			return Result{
				Instrument: instrument,
				Status:     StatusInsufficientData,
				Reason:     err.Error(),
				BarDate:    latestDate,
			}
		}
		return Result{
			Instrument: instrument,
			Status:     StatusError,
			Reason:     fmt.Sprintf("indicator computation failed: %v", err),
			BarDate:    latestDate,
		}
	}

	vector := rules.Evaluate(metrics, p.rules)

	status := StatusFailed
	if vector.OverallPass {
		status = StatusPassed
	}

	return Result{
		Instrument: instrument,
		Status:     status,
		Reason:     vector.Reason(),
		BarDate:    latestDate,
		Metrics:    &metrics,
		Rules:      &vector,
	}
}

// fetchReason renders a terminal fetch error as a result reason.
func fetchReason(err error) string {
	if fe, ok := fetch.AsError(err); ok {
		switch fe.Kind {
		case fetch.KindRateLimitExhausted:
			return fmt.Sprintf("fetch failed: rate limit retries exhausted after %d attempts", fe.Attempts)
		case fetch.KindTimeout:
			return fmt.Sprintf("fetch failed: timed out after %d attempts", fe.Attempts)
		}
	}
	return fmt.Sprintf("fetch failed: %v", err)
}
