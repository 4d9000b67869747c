package screener

import (
	"context"
	"time"

	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/contracts"
	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/indicator"
	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/rules"
)

// Status is the terminal state of one instrument's screening.
type Status string

const (
	// StatusPassed means every applicable rule passed.
	StatusPassed Status = "passed"

	// StatusFailed means the instrument was evaluated and at least one
	// rule failed. Distinct from fetch/data failures.
	StatusFailed Status = "failed"

	// StatusInsufficientData means the series was too short or yielded an
	// undefined metric; no rules were evaluated.
	StatusInsufficientData Status = "insufficient_data"

	// StatusFetchFailed means the bar series could not be retrieved.
	StatusFetchFailed Status = "fetch_failed"

	// StatusError means screening hit an unexpected internal error, caught
	// at the per-instrument boundary.
	StatusError Status = "error"
)

// Result is the outcome of screening one instrument in one run. It is
// immutable once returned by the pipeline. Metrics and Rules are only set
// when the instrument was actually evaluated.
type Result struct {
	Instrument contracts.Instrument `json:"instrument"`
	Status     Status               `json:"status"`
	Reason     string               `json:"reason"`

	// BarDate is the session date of the latest bar, when one was fetched.
	BarDate time.Time `json:"bar_date,omitempty"`

	Metrics *indicator.Metrics `json:"metrics,omitempty"`
	Rules   *rules.Vector      `json:"rules,omitempty"`
}

// Evaluated reports whether the rule battery ran for this instrument.
func (r Result) Evaluated() bool {
	return r.Status == StatusPassed || r.Status == StatusFailed
}

// Stats are the headline counts of one run.
type Stats struct {
	Total            int `json:"total"`
	Passed           int `json:"passed"`
	NearMiss         int `json:"near_miss"`
	Failed           int `json:"failed"`
	FetchFailed      int `json:"fetch_failed"`
	InsufficientData int `json:"insufficient_data"`
	Errors           int `json:"errors"`
}

// Summary is the aggregated outcome of one run, handed to the reporting
// collaborator. Empty Passed and NearMiss sets are normal outcomes.
type Summary struct {
	RunAt    time.Time     `json:"run_at"`
	Duration time.Duration `json:"duration"`

	Passed   []Result `json:"passed"`
	NearMiss []Result `json:"near_miss"`
	All      []Result `json:"all"`

	// RuleFailures counts, per rule number, how many evaluated instruments
	// failed specifically that rule.
	RuleFailures map[int]int `json:"rule_failures"`

	TotalRules        int   `json:"total_rules"`
	NearMissThreshold int   `json:"near_miss_threshold"`
	Stats             Stats `json:"stats"`
}

// Reporter receives the aggregated summary of a run. Implementations own all
// presentation and delivery concerns.
type Reporter interface {
	Report(ctx context.Context, summary Summary) error
}
