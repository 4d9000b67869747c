package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/indicator"
)

// Config holds every tunable threshold of the rule battery. It is built once
// at process start, validated, and shared read-only across all workers.
type Config struct {
	EMAPeriodShort int `yaml:"ema_period_short" json:"ema_period_short"`
	EMAPeriodLong  int `yaml:"ema_period_long" json:"ema_period_long"`

	// Window for period high/low and the price-drop baseline
	LookbackPeriod int `yaml:"lookback_period" json:"lookback_period"`

	PriceDropPctMin float64 `yaml:"price_drop_pct_min" json:"price_drop_pct_min"`
	PriceDropPctMax float64 `yaml:"price_drop_pct_max" json:"price_drop_pct_max"`

	AvgVolumeLookback int     `yaml:"avg_volume_lookback" json:"avg_volume_lookback"`
	VolumeRatioMin    float64 `yaml:"volume_ratio_min" json:"volume_ratio_min"`
	VolumeRatioMax    float64 `yaml:"volume_ratio_max" json:"volume_ratio_max"`

	MinPrice           float64 `yaml:"min_price" json:"min_price"`
	MaxPrice           float64 `yaml:"max_price" json:"max_price"`
	EnableMaxPriceRule bool    `yaml:"enable_max_price_rule" json:"enable_max_price_rule"`
}

// Default returns the stock rule battery shipped with the screener.
func Default() Config {
	return Config{
		EMAPeriodShort:     20,
		EMAPeriodLong:      50,
		LookbackPeriod:     50,
		PriceDropPctMin:    0.0,
		PriceDropPctMax:    10.0,
		AvgVolumeLookback:  50,
		VolumeRatioMin:     2.0,
		VolumeRatioMax:     2.5,
		MinPrice:           25.0,
		MaxPrice:           1500.0,
		EnableMaxPriceRule: true,
	}
}

// TotalRules returns the number of applicable rules: 7 when the upper price
// ceiling is enabled, otherwise 6.
func (c Config) TotalRules() int {
	if c.EnableMaxPriceRule {
		return 7
	}
	return 6
}

// IndicatorParams derives the indicator windows from the rule thresholds.
func (c Config) IndicatorParams() indicator.Params {
	return indicator.Params{
		EMAPeriodShort:    c.EMAPeriodShort,
		EMAPeriodLong:     c.EMAPeriodLong,
		LookbackPeriod:    c.LookbackPeriod,
		AvgVolumeLookback: c.AvgVolumeLookback,
	}
}

// Hash returns a SHA256 over the canonical JSON form, logged with each run
// so results can be tied back to the exact thresholds that produced them.
func (c Config) Hash() (string, error) {
	jsonBytes, err := json.Marshal(c)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
