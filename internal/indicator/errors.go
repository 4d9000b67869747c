package indicator

import (
	"errors"
	"fmt"
)

// Reason classifies why metrics could not be computed.
type Reason string

const (
	// TooFewBars means the series is shorter than Params.MinBars().
	TooFewBars Reason = "too_few_bars"

	// UndefinedMetric means a metric had a zero denominator or NaN value.
	UndefinedMetric Reason = "undefined_metric"
)

// InsufficientDataError is returned by Compute when a series cannot yield a
// complete set of metrics. Rules are never evaluated for such instruments.
type InsufficientDataError struct {
	Reason Reason
	Detail string
	Have   int // bars present (TooFewBars only)
	Need   int // bars required (TooFewBars only)
}

func (e *InsufficientDataError) Error() string {
	if e.Reason == TooFewBars {
		return fmt.Sprintf("insufficient data: %s (%d bars, need %d)", e.Detail, e.Have, e.Need)
	}
	return fmt.Sprintf("insufficient data: %s", e.Detail)
}

// IsInsufficientData reports whether err is an InsufficientDataError.
func IsInsufficientData(err error) bool {
	var ide *InsufficientDataError
	return errors.As(err, &ide)
}

func undefinedMetric(detail string) *InsufficientDataError {
	return &InsufficientDataError{Reason: UndefinedMetric, Detail: detail}
}
