package screener

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/rules"
	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/logger"
)

// LogReporter writes the run summary to structured logs. It is the default
// reporting sink and never fails.
type LogReporter struct {
	logger *logger.Logger
}

// NewLogReporter creates a reporter backed by the given logger.
func NewLogReporter(log *logger.Logger) *LogReporter {
	return &LogReporter{logger: log.WithField("module", "report")}
}

// Report logs the headline stats, every pass, every near miss, and the
// per-rule failure tally.
func (r *LogReporter) Report(_ context.Context, summary Summary) error {
	r.logger.WithFields(map[string]interface{}{
		"total":             summary.Stats.Total,
		"passed":            summary.Stats.Passed,
		"near_miss":         summary.Stats.NearMiss,
		"failed":            summary.Stats.Failed,
		"fetch_failed":      summary.Stats.FetchFailed,
		"insufficient_data": summary.Stats.InsufficientData,
		"errors":            summary.Stats.Errors,
		"duration":          summary.Duration.Round(time.Millisecond).String(),
	}).Info("Screening summary")

	for _, result := range summary.Passed {
		r.logger.WithFields(map[string]interface{}{
			"symbol":   result.Instrument.Symbol,
			"close":    result.Metrics.Close,
			"drop_pct": result.Metrics.PriceDropPct,
			"vol_x":    result.Metrics.VolumeRatio,
		}).Info("PASS")
	}

	for _, result := range summary.NearMiss {
		r.logger.WithFields(map[string]interface{}{
			"symbol":       result.Instrument.Symbol,
			"rules_passed": fmt.Sprintf("%d/%d", result.Rules.RulesPassed, result.Rules.TotalRules),
			"failed":       strings.Join(failedTags(result.Rules), ","),
		}).Info("NEAR MISS")
	}

	for rule := 1; rule <= summary.TotalRules; rule++ {
		if n := summary.RuleFailures[rule]; n > 0 {
			r.logger.WithFields(map[string]interface{}{
				"rule":     rule,
				"tag":      rules.Tag(rule),
				"failures": n,
			}).Info("Rule failure tally")
		}
	}

	return nil
}

func failedTags(v *rules.Vector) []string {
	tags := make([]string, 0, len(v.Checks))
	for _, check := range v.Checks {
		if !check.Passed {
			tags = append(tags, check.Tag)
		}
	}
	return tags
}
