package rules

import "fmt"

// Validate checks threshold consistency. A failure here is fatal at process
// start; no instrument is ever screened against an inconsistent battery.
func Validate(c Config) error {
	if c.EMAPeriodShort <= 0 || c.EMAPeriodLong <= 0 {
		return fmt.Errorf("ema periods must be positive (short=%d, long=%d)", c.EMAPeriodShort, c.EMAPeriodLong)
	}

	if c.EMAPeriodShort >= c.EMAPeriodLong {
		return fmt.Errorf("ema_period_short (%d) must be less than ema_period_long (%d)", c.EMAPeriodShort, c.EMAPeriodLong)
	}

	if c.LookbackPeriod <= 0 {
		return fmt.Errorf("lookback_period must be positive, got %d", c.LookbackPeriod)
	}

	if c.PriceDropPctMin < 0 || c.PriceDropPctMax > 100 || c.PriceDropPctMin >= c.PriceDropPctMax {
		return fmt.Errorf("price drop bounds must satisfy 0 <= min < max <= 100, got min=%.2f max=%.2f",
			c.PriceDropPctMin, c.PriceDropPctMax)
	}

	if c.AvgVolumeLookback <= 0 {
		return fmt.Errorf("avg_volume_lookback must be positive, got %d", c.AvgVolumeLookback)
	}

	if c.VolumeRatioMin <= 0 || c.VolumeRatioMin >= c.VolumeRatioMax {
		return fmt.Errorf("volume ratio bounds must satisfy 0 < min < max, got min=%.2f max=%.2f",
			c.VolumeRatioMin, c.VolumeRatioMax)
	}

	if c.MinPrice <= 0 {
		return fmt.Errorf("min_price must be positive, got %.2f", c.MinPrice)
	}

	if c.EnableMaxPriceRule && c.MaxPrice <= c.MinPrice {
		return fmt.Errorf("max_price (%.2f) must exceed min_price (%.2f) when the max-price rule is enabled",
			c.MaxPrice, c.MinPrice)
	}

	return nil
}
