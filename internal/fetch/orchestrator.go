package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/contracts"
	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/logger"
	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/redis"
)

// Interval is the candle interval the screener works on.
const Interval = "day"

// Orchestrator pulls a daily bar series for one instrument, applying the
// retry policy on rate-limit signals from the data provider. It holds no
// per-call mutable state and is safe for concurrent use by pipeline workers.
type Orchestrator struct {
	source   contracts.BarSource
	policy   Policy
	timeout  time.Duration
	cache    *redis.Cache
	cacheTTL time.Duration
	logger   *logger.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPolicy overrides the default retry policy.
func WithPolicy(p Policy) Option {
	return func(o *Orchestrator) { o.policy = p }
}

// WithTimeout overrides the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithCache enables the Redis bar-series cache so repeated runs within the
// TTL skip the provider entirely.
func WithCache(cache *redis.Cache, ttl time.Duration) Option {
	return func(o *Orchestrator) {
		o.cache = cache
		o.cacheTTL = ttl
	}
}

// New creates an Orchestrator over the given bar source.
func New(source contracts.BarSource, log *logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		source:  source,
		policy:  DefaultPolicy(),
		timeout: 12 * time.Second,
		logger:  log.WithField("module", "fetch"),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Fetch retrieves the bar series for one instrument. Rate-limit responses
// are retried per the policy; timeouts burn an attempt from the same budget;
// any other provider error fails immediately.
func (o *Orchestrator) Fetch(ctx context.Context, instrument contracts.Instrument, dateRange contracts.DateRange) (contracts.Series, error) {
	key := instrument.Key()

	if series, ok := o.cacheGet(ctx, key, dateRange); ok {
		return series, nil
	}

	var lastErr error

	for attempt := 1; ; attempt++ {
		series, err := o.attempt(ctx, key, dateRange)
		if err == nil {
			o.cacheSet(ctx, key, dateRange, series)
			return series, nil
		}

		lastErr = err

		switch {
		case errors.Is(err, contracts.ErrRateLimited):
			// retryable
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			// attempt timeout, retryable; counts against the same budget
		default:
			return nil, &Error{Kind: KindTransport, InstrumentKey: key, Attempts: attempt, Cause: err}
		}

		delay, ok := o.policy.NextDelay(attempt)
		if !ok {
			kind := KindRateLimitExhausted
			if errors.Is(lastErr, context.DeadlineExceeded) {
				kind = KindTimeout
			}
			return nil, &Error{Kind: kind, InstrumentKey: key, Attempts: attempt, Cause: lastErr}
		}

		o.logger.WithFields(map[string]interface{}{
			"instrument": key,
			"attempt":    attempt,
			"delay":      delay,
		}).Warn("Fetch rate limited, backing off")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, &Error{Kind: KindTransport, InstrumentKey: key, Attempts: attempt, Cause: ctx.Err()}
		}
	}
}

// attempt performs one provider call under the per-attempt timeout.
func (o *Orchestrator) attempt(ctx context.Context, key string, dateRange contracts.DateRange) (contracts.Series, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	series, err := o.source.GetBars(attemptCtx, key, Interval, dateRange)
	if err != nil {
		return nil, err
	}

	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("provider returned malformed series: %w", err)
	}

	return series, nil
}

func (o *Orchestrator) cacheKey(key string, dateRange contracts.DateRange) string {
	return fmt.Sprintf("bars:%s:%s:%s", key,
		dateRange.From.Format("20060102"), dateRange.To.Format("20060102"))
}

func (o *Orchestrator) cacheGet(ctx context.Context, key string, dateRange contracts.DateRange) (contracts.Series, bool) {
	if o.cache == nil {
		return nil, false
	}

	var series contracts.Series
	found, err := o.cache.Get(ctx, o.cacheKey(key, dateRange), &series)
	if err != nil {
		o.logger.WithError(err).WithField("instrument", key).Warn("Bar cache read failed")
		return nil, false
	}

	return series, found
}

func (o *Orchestrator) cacheSet(ctx context.Context, key string, dateRange contracts.DateRange, series contracts.Series) {
	if o.cache == nil {
		return
	}

	if err := o.cache.Set(ctx, o.cacheKey(key, dateRange), series, o.cacheTTL); err != nil {
		o.logger.WithError(err).WithField("instrument", key).Warn("Bar cache write failed")
	}
}
