package rules

import (
	"fmt"
	"strings"

	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/indicator"
)

// Rule numbers are stable across runs and releases; diagnostics and failure
// tallies key on them.
const (
	RuleDropBelowMax = 1 // not too far below the recent high
	RuleDropAboveMin = 2 // not already at/above the high
	RuleAboveEMALong = 3 // price above the long-trend baseline
	RuleMinPrice     = 4 // penny-stock floor
	RuleVolumeSurge  = 5 // bounded volume surge
	RuleEMAAlignment = 6 // short EMA above long EMA
	RuleMaxPrice     = 7 // optional affordability ceiling
)

// ruleTags maps rule numbers to the short tags used in reason strings.
var ruleTags = map[int]string{
	RuleDropBelowMax: "drop_below_max",
	RuleDropAboveMin: "drop_above_min",
	RuleAboveEMALong: "above_ema_long",
	RuleMinPrice:     "min_price",
	RuleVolumeSurge:  "volume_surge",
	RuleEMAAlignment: "ema_alignment",
	RuleMaxPrice:     "max_price",
}

// Tag returns the short tag for a rule number, or "" for unknown numbers.
func Tag(number int) string {
	return ruleTags[number]
}

// Check is the outcome of one rule for one instrument.
type Check struct {
	Number int    `json:"number"`
	Tag    string `json:"tag"`
	Passed bool   `json:"passed"`
}

// Vector holds every applicable rule outcome for one instrument. The full
// vector is always populated, even for failing instruments, because
// near-miss analysis needs to know exactly which rules failed.
type Vector struct {
	Checks      []Check `json:"checks"`
	RulesPassed int     `json:"rules_passed"`
	TotalRules  int     `json:"total_rules"`
	OverallPass bool    `json:"overall_pass"`
}

// Evaluate applies the full battery to one instrument's metrics. Every rule
// uses strict inequalities: a metric exactly on a bound fails. Rules are
// never short-circuited.
func Evaluate(m indicator.Metrics, cfg Config) Vector {
	checks := []Check{
		check(RuleDropBelowMax, m.PriceDropPct < cfg.PriceDropPctMax),
		check(RuleDropAboveMin, m.PriceDropPct > cfg.PriceDropPctMin),
		check(RuleAboveEMALong, m.Close > m.EMALong),
		check(RuleMinPrice, m.Close > cfg.MinPrice),
		check(RuleVolumeSurge, m.VolumeRatio > cfg.VolumeRatioMin && m.VolumeRatio < cfg.VolumeRatioMax),
		check(RuleEMAAlignment, m.EMAShort > m.EMALong),
	}

	if cfg.EnableMaxPriceRule {
		checks = append(checks, check(RuleMaxPrice, m.Close <= cfg.MaxPrice))
	}

	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}

	return Vector{
		Checks:      checks,
		RulesPassed: passed,
		TotalRules:  cfg.TotalRules(),
		OverallPass: passed == cfg.TotalRules(),
	}
}

func check(number int, passed bool) Check {
	return Check{Number: number, Tag: ruleTags[number], Passed: passed}
}

// Failed returns the checks that did not pass, in rule order.
func (v Vector) Failed() []Check {
	failed := make([]Check, 0)
	for _, c := range v.Checks {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}

// FailedRule reports whether the given rule number was applicable and failed.
func (v Vector) FailedRule(number int) bool {
	for _, c := range v.Checks {
		if c.Number == number {
			return !c.Passed
		}
	}
	return false
}

// Reason renders a human-readable outcome string.
func (v Vector) Reason() string {
	if v.OverallPass {
		return "passed all criteria"
	}

	tags := make([]string, 0, len(v.Checks))
	for _, c := range v.Failed() {
		tags = append(tags, c.Tag)
	}
	return fmt.Sprintf("failed: %s", strings.Join(tags, ", "))
}
