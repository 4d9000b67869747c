package screener

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/contracts"
	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/fetch"
	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/rules"
	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/config"
	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/logger"
)

// testRules keeps the indicator windows small so test series stay short.
func testRules() rules.Config {
	return rules.Config{
		EMAPeriodShort:     3,
		EMAPeriodLong:      5,
		LookbackPeriod:     5,
		PriceDropPctMin:    0.0,
		PriceDropPctMax:    10.0,
		AvgVolumeLookback:  4,
		VolumeRatioMin:     2.0,
		VolumeRatioMax:     2.5,
		MinPrice:           25.0,
		MaxPrice:           1500.0,
		EnableMaxPriceRule: true,
	}
}

func testLogger() *logger.Logger {
	return logger.New(&config.Config{LogLevel: "fatal"})
}

// passingSeries is an uptrend with a mild pullback on the latest bar and a
// volume surge inside the accepted band. With testRules it passes all seven
// rules.
func passingSeries() contracts.Series {
	closes := []float64{80, 84, 88, 92, 96, 100, 104, 108, 112, 110}
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	series := make(contracts.Series, 0, len(closes))
	for i, close := range closes {
		volume := int64(100000)
		if i == len(closes)-1 {
			volume = 220000
		}
		series = append(series, contracts.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      close,
			High:      close,
			Low:       close,
			Close:     close,
			Volume:    volume,
		})
	}
	return series
}

// failingSeries pushes the latest volume above the surge ceiling, so only
// the volume rule fails.
func failingSeries() contracts.Series {
	series := passingSeries()
	series[len(series)-1].Volume = 300000
	return series
}

type fetchFunc func(ctx context.Context, instrument contracts.Instrument, dateRange contracts.DateRange) (contracts.Series, error)

func (f fetchFunc) Fetch(ctx context.Context, instrument contracts.Instrument, dateRange contracts.DateRange) (contracts.Series, error) {
	return f(ctx, instrument, dateRange)
}

func newTestPipeline(t *testing.T, fetcher Fetcher, workers int) *Pipeline {
	t.Helper()
	return NewPipeline(fetcher, testRules(), PipelineConfig{
		Workers:       workers,
		PacingDelay:   0,
		DateRangeDays: 30,
	}, testLogger())
}

func resultsBySymbol(results []Result) map[string]Result {
	bySymbol := make(map[string]Result, len(results))
	for _, r := range results {
		bySymbol[r.Instrument.Symbol] = r
	}
	return bySymbol
}

func TestPipelineOneResultPerInstrument(t *testing.T) {
	fetcher := fetchFunc(func(_ context.Context, instrument contracts.Instrument, _ contracts.DateRange) (contracts.Series, error) {
		switch instrument.Symbol {
		case "PASS":
			return passingSeries(), nil
		case "FAIL":
			return failingSeries(), nil
		case "SHORT":
			return passingSeries()[:3], nil
		case "DOWN":
			return nil, &fetch.Error{Kind: fetch.KindTransport, InstrumentKey: instrument.Key(), Attempts: 1}
		default:
			t.Fatalf("unexpected instrument %s", instrument.Symbol)
			return nil, nil
		}
	})

	pipeline := newTestPipeline(t, fetcher, 3)

	instruments := []contracts.Instrument{
		{Symbol: "PASS", ISIN: "INE000000001"},
		{Symbol: "FAIL", ISIN: "INE000000002"},
		{Symbol: "SHORT", ISIN: "INE000000003"},
		{Symbol: "DOWN", ISIN: "INE000000004"},
	}

	results := pipeline.Run(context.Background(), instruments)
	require.Len(t, results, len(instruments))

	bySymbol := resultsBySymbol(results)
	require.Len(t, bySymbol, len(instruments), "every instrument must appear exactly once")

	pass := bySymbol["PASS"]
	assert.Equal(t, StatusPassed, pass.Status)
	require.NotNil(t, pass.Rules)
	assert.Equal(t, 7, pass.Rules.RulesPassed)
	require.NotNil(t, pass.Metrics)
	assert.InDelta(t, 110.0, pass.Metrics.Close, 1e-9)
	assert.Equal(t, passingSeries().Latest().Timestamp, pass.BarDate)

	fail := bySymbol["FAIL"]
	assert.Equal(t, StatusFailed, fail.Status)
	require.NotNil(t, fail.Rules)
	assert.Equal(t, 6, fail.Rules.RulesPassed)
	assert.True(t, fail.Rules.FailedRule(rules.RuleVolumeSurge))

	assert.Equal(t, StatusInsufficientData, bySymbol["SHORT"].Status)
	assert.Nil(t, bySymbol["SHORT"].Rules)

	assert.Equal(t, StatusFetchFailed, bySymbol["DOWN"].Status)
	assert.Contains(t, bySymbol["DOWN"].Reason, "fetch failed")
}

func TestPipelineRateLimitFailureDoesNotBlockOthers(t *testing.T) {
	fetcher := fetchFunc(func(_ context.Context, instrument contracts.Instrument, _ contracts.DateRange) (contracts.Series, error) {
		if instrument.Symbol == "THROTTLED" {
			return nil, &fetch.Error{
				Kind:          fetch.KindRateLimitExhausted,
				InstrumentKey: instrument.Key(),
				Attempts:      4,
				Cause:         contracts.ErrRateLimited,
			}
		}
		return passingSeries(), nil
	})

	pipeline := newTestPipeline(t, fetcher, 1)

	instruments := []contracts.Instrument{
		{Symbol: "THROTTLED", ISIN: "INE000000001"},
		{Symbol: "AAA", ISIN: "INE000000002"},
		{Symbol: "BBB", ISIN: "INE000000003"},
	}

	results := pipeline.Run(context.Background(), instruments)
	require.Len(t, results, 3)

	bySymbol := resultsBySymbol(results)
	assert.Equal(t, StatusFetchFailed, bySymbol["THROTTLED"].Status)
	assert.Contains(t, bySymbol["THROTTLED"].Reason, "rate limit retries exhausted after 4 attempts")

	assert.Equal(t, StatusPassed, bySymbol["AAA"].Status)
	assert.Equal(t, StatusPassed, bySymbol["BBB"].Status)
}

func TestPipelineRecoversPanic(t *testing.T) {
	fetcher := fetchFunc(func(_ context.Context, instrument contracts.Instrument, _ contracts.DateRange) (contracts.Series, error) {
		if instrument.Symbol == "BOOM" {
			panic("corrupt instrument record")
		}
		return passingSeries(), nil
	})

	pipeline := newTestPipeline(t, fetcher, 2)

	results := pipeline.Run(context.Background(), []contracts.Instrument{
		{Symbol: "BOOM", ISIN: "INE000000001"},
		{Symbol: "OK", ISIN: "INE000000002"},
	})
	require.Len(t, results, 2)

	bySymbol := resultsBySymbol(results)
	assert.Equal(t, StatusError, bySymbol["BOOM"].Status)
	assert.Contains(t, bySymbol["BOOM"].Reason, "corrupt instrument record")
	assert.Equal(t, StatusPassed, bySymbol["OK"].Status)
}

func TestPipelineCancelledContext(t *testing.T) {
	fetched := false
	fetcher := fetchFunc(func(_ context.Context, _ contracts.Instrument, _ contracts.DateRange) (contracts.Series, error) {
		fetched = true
		return passingSeries(), nil
	})

	pipeline := newTestPipeline(t, fetcher, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := pipeline.Run(ctx, []contracts.Instrument{
		{Symbol: "AAA", ISIN: "INE000000001"},
		{Symbol: "BBB", ISIN: "INE000000002"},
	})
	require.Len(t, results, 2, "cancellation still yields one result per instrument")

	for _, result := range results {
		assert.Equal(t, StatusError, result.Status)
		assert.Contains(t, result.Reason, "run cancelled")
	}
	assert.False(t, fetched, "no fetches should start after cancellation")
}

func TestPipelinePacingSpacesFetches(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping pacing test in short mode")
	}

	var timestamps []time.Time
	fetcher := fetchFunc(func(_ context.Context, _ contracts.Instrument, _ contracts.DateRange) (contracts.Series, error) {
		timestamps = append(timestamps, time.Now())
		return passingSeries(), nil
	})

	pipeline := NewPipeline(fetcher, testRules(), PipelineConfig{
		Workers:       1,
		PacingDelay:   50 * time.Millisecond,
		DateRangeDays: 30,
	}, testLogger())

	results := pipeline.Run(context.Background(), []contracts.Instrument{
		{Symbol: "AAA", ISIN: "INE000000001"},
		{Symbol: "BBB", ISIN: "INE000000002"},
		{Symbol: "CCC", ISIN: "INE000000003"},
	})
	require.Len(t, results, 3)
	require.Len(t, timestamps, 3)

	for i := 1; i < len(timestamps); i++ {
		gap := timestamps[i].Sub(timestamps[i-1])
		assert.GreaterOrEqual(t, gap, 40*time.Millisecond, "fetch %d arrived too soon", i)
	}
}
