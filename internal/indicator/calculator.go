package indicator

import (
	"math"

	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/contracts"
)

// Metrics holds the derived indicators for one instrument at the latest bar.
// All fields are defined; a series that would leave any of them undefined is
// rejected with InsufficientDataError instead.
type Metrics struct {
	Close        float64 `json:"close"`
	PeriodHigh   float64 `json:"period_high"`
	PeriodLow    float64 `json:"period_low"`
	Volume       float64 `json:"volume"`
	AvgVolume    float64 `json:"avg_volume"`
	EMAShort     float64 `json:"ema_short"`
	EMALong      float64 `json:"ema_long"`
	PriceDropPct float64 `json:"price_drop_pct"`
	VolumeRatio  float64 `json:"volume_ratio"`
}

// Params selects the windows the calculator derives its indicators over.
type Params struct {
	EMAPeriodShort    int
	EMAPeriodLong     int
	LookbackPeriod    int
	AvgVolumeLookback int
}

// MinBars returns the minimum series length required before any indicator
// can be computed: the average-volume window needs one extra bar because the
// latest bar is excluded from it.
func (p Params) MinBars() int {
	min := p.LookbackPeriod
	if n := p.AvgVolumeLookback + 1; n > min {
		min = n
	}
	if p.EMAPeriodLong > min {
		min = p.EMAPeriodLong
	}
	if p.EMAPeriodShort > min {
		min = p.EMAPeriodShort
	}
	return min
}

// Compute derives all metrics from a series sorted ascending by timestamp.
// Returns InsufficientDataError when the series is too short or any metric
// would be undefined; it never returns partially-populated metrics.
func Compute(series contracts.Series, p Params) (Metrics, error) {
	if series.Len() < p.MinBars() {
		return Metrics{}, &InsufficientDataError{
			Reason: TooFewBars,
			Detail: "series shorter than required minimum",
			Have:   series.Len(),
			Need:   p.MinBars(),
		}
	}

	latest := series.Latest()

	m := Metrics{
		Close:  latest.Close,
		Volume: float64(latest.Volume),
	}

	// Period high/low over the trailing lookback window, latest bar included
	m.PeriodHigh, m.PeriodLow = periodRange(series, p.LookbackPeriod)

	// Average volume over the bars immediately preceding the latest one.
	// Excluding the latest bar keeps the baseline clean of the very surge
	// the volume-ratio rule is looking for.
	m.AvgVolume = avgVolumeExcludingLatest(series, p.AvgVolumeLookback)

	m.EMAShort = ema(series, p.EMAPeriodShort)
	m.EMALong = ema(series, p.EMAPeriodLong)

	if m.PeriodHigh <= 0 {
		return Metrics{}, undefinedMetric("period_high is non-positive")
	}
	m.PriceDropPct = 100 * (m.PeriodHigh - latest.Close) / m.PeriodHigh

	if m.AvgVolume <= 0 {
		return Metrics{}, undefinedMetric("avg_volume is non-positive")
	}
	m.VolumeRatio = m.Volume / m.AvgVolume

	for _, v := range []float64{
		m.Close, m.PeriodHigh, m.PeriodLow, m.Volume, m.AvgVolume,
		m.EMAShort, m.EMALong, m.PriceDropPct, m.VolumeRatio,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Metrics{}, undefinedMetric("NaN or infinite metric value")
		}
	}

	return m, nil
}

// periodRange returns max(high) and min(low) over the most recent n bars.
func periodRange(series contracts.Series, n int) (high, low float64) {
	start := series.Len() - n
	high = series[start].High
	low = series[start].Low
	for _, bar := range series[start+1:] {
		if bar.High > high {
			high = bar.High
		}
		if bar.Low < low {
			low = bar.Low
		}
	}
	return high, low
}

// avgVolumeExcludingLatest averages volume over the n bars before the latest.
func avgVolumeExcludingLatest(series contracts.Series, n int) float64 {
	end := series.Len() - 1 // exclude latest bar
	var sum int64
	for _, bar := range series[end-n : end] {
		sum += bar.Volume
	}
	return float64(sum) / float64(n)
}

// ema computes an exponential moving average over closes with smoothing
// 2/(span+1), warm-started from the SMA of the first span bars. Only the
// final value is used, so seed bias has washed out by the time the
// minimum-length invariant is satisfied.
func ema(series contracts.Series, span int) float64 {
	k := 2.0 / (float64(span) + 1.0)

	var sum float64
	for i := 0; i < span; i++ {
		sum += series[i].Close
	}
	value := sum / float64(span)

	for i := span; i < series.Len(); i++ {
		value = series[i].Close*k + value*(1-k)
	}

	return value
}
