package fetch

import (
	"errors"
	"fmt"
)

// Kind classifies a fetch failure.
type Kind string

const (
	// KindRateLimitExhausted means every retry attempt was rate limited.
	KindRateLimitExhausted Kind = "rate_limit_exhausted"

	// KindTimeout means the final attempt exceeded its per-attempt timeout.
	KindTimeout Kind = "timeout"

	// KindTransport covers every non-retryable provider or network error.
	KindTransport Kind = "transport_error"
)

// Error is the terminal failure of a fetch, after the retry policy has been
// applied. It records how many attempts were burned.
type Error struct {
	Kind          Kind
	InstrumentKey string
	Attempts      int
	Cause         error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s failed (%s after %d attempts): %v",
			e.InstrumentKey, e.Kind, e.Attempts, e.Cause)
	}
	return fmt.Sprintf("fetch %s failed (%s after %d attempts)", e.InstrumentKey, e.Kind, e.Attempts)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// AsError extracts a *Error from err, if present.
func AsError(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
