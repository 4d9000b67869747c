package contracts

import (
	"context"
	"errors"
)

// Collaborator error signals. BarSource implementations must map their
// provider's wire-level responses onto these so the retry policy in
// internal/fetch stays provider-agnostic.
var (
	// ErrRateLimited indicates the provider asked us to slow down (HTTP 429).
	ErrRateLimited = errors.New("rate limited by data provider")

	// ErrNotFound indicates the instrument key is unknown to the provider.
	ErrNotFound = errors.New("instrument not found")
)

// BarSource is the market-data collaborator contract. Implementations must
// return bars sorted ascending by timestamp and be safe for concurrent use.
type BarSource interface {
	GetBars(ctx context.Context, instrumentKey string, interval string, dateRange DateRange) (Series, error)
}
