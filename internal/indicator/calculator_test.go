package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/contracts"
)

var testParams = Params{
	EMAPeriodShort:    3,
	EMAPeriodLong:     5,
	LookbackPeriod:    5,
	AvgVolumeLookback: 4,
}

// flatSeries builds n identical bars on consecutive days.
func flatSeries(n int, close float64, volume int64) contracts.Series {
	series := make(contracts.Series, n)
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range series {
		series[i] = contracts.Bar{
			Timestamp: day.AddDate(0, 0, i),
			Open:      close,
			High:      close,
			Low:       close,
			Close:     close,
			Volume:    volume,
		}
	}
	return series
}

func TestMinBars(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		want int
	}{
		{"volume window dominates", Params{2, 3, 4, 10}, 11},
		{"lookback dominates", Params{2, 3, 20, 4}, 20},
		{"long ema dominates", Params{20, 50, 10, 10}, 50},
		{"defaults shape", Params{20, 50, 50, 50}, 51},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.MinBars())
		})
	}
}

func TestComputeShortSeries(t *testing.T) {
	// Every length below the minimum must fail, never partially compute
	for n := 0; n < testParams.MinBars(); n++ {
		series := flatSeries(n, 100, 1000)

		_, err := Compute(series, testParams)
		require.Error(t, err, "length %d must be rejected", n)

		require.True(t, IsInsufficientData(err))
		var ide *InsufficientDataError
		require.ErrorAs(t, err, &ide)
		assert.Equal(t, TooFewBars, ide.Reason)
		assert.Equal(t, n, ide.Have)
	}
}

func TestComputeFlatSeries(t *testing.T) {
	series := flatSeries(10, 100, 1000)

	m, err := Compute(series, testParams)
	require.NoError(t, err)

	assert.Equal(t, 100.0, m.Close)
	assert.Equal(t, 100.0, m.PeriodHigh)
	assert.Equal(t, 100.0, m.PeriodLow)
	assert.Equal(t, 1000.0, m.AvgVolume)
	assert.Equal(t, 1000.0, m.Volume)
	assert.InDelta(t, 100.0, m.EMAShort, 1e-9)
	assert.InDelta(t, 100.0, m.EMALong, 1e-9)
	assert.Equal(t, 0.0, m.PriceDropPct)
	assert.Equal(t, 1.0, m.VolumeRatio)
}

func TestAvgVolumeExcludesLatestBar(t *testing.T) {
	series := flatSeries(10, 100, 1000)

	base, err := Compute(series, testParams)
	require.NoError(t, err)

	// Perturb only the latest bar's volume; the trailing average must not move
	series[len(series)-1].Volume = 250000

	spiked, err := Compute(series, testParams)
	require.NoError(t, err)

	assert.Equal(t, base.AvgVolume, spiked.AvgVolume)
	assert.Equal(t, 250000.0, spiked.Volume)
	assert.Equal(t, 250.0, spiked.VolumeRatio)
}

func TestPeriodRangeIncludesLatestBar(t *testing.T) {
	series := flatSeries(10, 100, 1000)
	series[len(series)-1].High = 140
	series[len(series)-1].Low = 60

	m, err := Compute(series, testParams)
	require.NoError(t, err)

	assert.Equal(t, 140.0, m.PeriodHigh)
	assert.Equal(t, 60.0, m.PeriodLow)
}

func TestPeriodRangeWindowBound(t *testing.T) {
	series := flatSeries(10, 100, 1000)
	// A spike older than the lookback window must be ignored
	series[2].High = 500

	m, err := Compute(series, testParams)
	require.NoError(t, err)

	assert.Equal(t, 100.0, m.PeriodHigh)
}

func TestPriceDropPct(t *testing.T) {
	series := flatSeries(10, 100, 1000)
	series[len(series)-2].High = 105 // period high 105, latest close 100

	m, err := Compute(series, testParams)
	require.NoError(t, err)

	assert.InDelta(t, 100*(105.0-100.0)/105.0, m.PriceDropPct, 1e-9)
	assert.InDelta(t, 4.7619, m.PriceDropPct, 0.001)
}

func TestZeroAvgVolumeIsInsufficient(t *testing.T) {
	series := flatSeries(10, 100, 0)
	series[len(series)-1].Volume = 5000 // only the excluded bar traded

	_, err := Compute(series, testParams)
	require.Error(t, err)

	var ide *InsufficientDataError
	require.ErrorAs(t, err, &ide)
	assert.Equal(t, UndefinedMetric, ide.Reason)
}

func TestNonPositivePeriodHighIsInsufficient(t *testing.T) {
	series := flatSeries(10, 0, 1000)

	_, err := Compute(series, testParams)
	require.Error(t, err)

	var ide *InsufficientDataError
	require.ErrorAs(t, err, &ide)
	assert.Equal(t, UndefinedMetric, ide.Reason)
}

func TestNaNCloseIsInsufficient(t *testing.T) {
	series := flatSeries(10, 100, 1000)
	series[len(series)-1].Close = math.NaN()

	_, err := Compute(series, testParams)
	require.Error(t, err)
	assert.True(t, IsInsufficientData(err))
}

func TestEMAConvergesTowardRecentCloses(t *testing.T) {
	// Ramp: closes 100, 101, ..., 119. EMA must sit below the latest close
	// but above the simple average, weighting recent bars more heavily.
	series := flatSeries(20, 0, 1000)
	var sum float64
	for i := range series {
		c := 100.0 + float64(i)
		series[i].Open, series[i].High, series[i].Low, series[i].Close = c, c, c, c
		sum += c
	}

	m, err := Compute(series, testParams)
	require.NoError(t, err)

	latest := series.Latest().Close
	mean := sum / float64(len(series))
	assert.Less(t, m.EMAShort, latest)
	assert.Greater(t, m.EMAShort, mean)
	// Shorter span tracks the ramp more closely
	assert.Greater(t, m.EMAShort, m.EMALong)
}
