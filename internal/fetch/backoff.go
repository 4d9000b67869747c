package fetch

import "time"

// Policy is the retry/backoff policy for rate-limited fetches, kept separate
// from the transport so it can be unit-tested as a pure attempt-count to
// delay mapping.
type Policy struct {
	// MaxRetries is the number of re-attempts after the initial one.
	MaxRetries int

	// InitialDelay is the backoff before the first retry; each subsequent
	// retry doubles it.
	InitialDelay time.Duration
}

// DefaultPolicy retries 3 times with 1s, 2s, 4s backoff.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   3,
		InitialDelay: 1 * time.Second,
	}
}

// MaxAttempts returns the total number of attempts the policy allows.
func (p Policy) MaxAttempts() int {
	return p.MaxRetries + 1
}

// NextDelay returns the backoff to apply after the given failed attempt
// (1-based) and whether another attempt is allowed at all.
func (p Policy) NextDelay(failedAttempt int) (time.Duration, bool) {
	if failedAttempt >= p.MaxAttempts() {
		return 0, false
	}

	delay := p.InitialDelay
	for i := 1; i < failedAttempt; i++ {
		delay *= 2
	}
	return delay, true
}
