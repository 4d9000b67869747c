package screener

import (
	"sort"
	"time"
)

// Aggregate folds raw results into a run summary. nearMissThreshold is the
// minimum rules-passed count for a failed instrument to land in the NearMiss
// set; pass 0 to use the default of totalRules-1.
func Aggregate(results []Result, totalRules, nearMissThreshold int, runAt time.Time, duration time.Duration) Summary {
	if nearMissThreshold <= 0 {
		nearMissThreshold = totalRules - 1
	}

	summary := Summary{
		RunAt:             runAt,
		Duration:          duration,
		All:               results,
		RuleFailures:      make(map[int]int),
		TotalRules:        totalRules,
		NearMissThreshold: nearMissThreshold,
	}
	summary.Stats.Total = len(results)

	for _, result := range results {
		switch result.Status {
		case StatusPassed:
			summary.Stats.Passed++
			summary.Passed = append(summary.Passed, result)
		case StatusFailed:
			summary.Stats.Failed++
			if result.Rules != nil && result.Rules.RulesPassed >= nearMissThreshold {
				summary.Stats.NearMiss++
				summary.NearMiss = append(summary.NearMiss, result)
			}
		case StatusFetchFailed:
			summary.Stats.FetchFailed++
		case StatusInsufficientData:
			summary.Stats.InsufficientData++
		default:
			summary.Stats.Errors++
		}

		if result.Evaluated() && result.Rules != nil {
			for _, check := range result.Rules.Checks {
				if !check.Passed {
					summary.RuleFailures[check.Number]++
				}
			}
		}
	}

	sort.Slice(summary.Passed, func(i, j int) bool {
		return summary.Passed[i].Instrument.Symbol < summary.Passed[j].Instrument.Symbol
	})

	// Closest misses first; ties break alphabetically for stable output.
	sort.Slice(summary.NearMiss, func(i, j int) bool {
		a, b := summary.NearMiss[i], summary.NearMiss[j]
		if a.Rules.RulesPassed != b.Rules.RulesPassed {
			return a.Rules.RulesPassed > b.Rules.RulesPassed
		}
		return a.Instrument.Symbol < b.Instrument.Symbol
	})

	return summary
}
