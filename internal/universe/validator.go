package universe

import (
	"context"
	"errors"
	"time"

	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/contracts"
	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/logger"
)

// Validator probes each instrument key against the market-data API with a
// small candle request, splitting the universe into usable and dead keys.
// ISINs rotate on corporate actions, so a freshly exported list can still
// contain keys the provider no longer recognizes.
type Validator struct {
	source contracts.BarSource
	pacing time.Duration
	logger *logger.Logger
}

// NewValidator creates a validator that paces its probes by the given delay.
func NewValidator(source contracts.BarSource, pacing time.Duration, log *logger.Logger) *Validator {
	return &Validator{
		source: source,
		pacing: pacing,
		logger: log.WithField("module", "universe"),
	}
}

// Validate probes every instrument sequentially. Unknown keys land in
// invalid; any other provider error aborts, since continuing would misfile
// healthy instruments.
func (v *Validator) Validate(ctx context.Context, instruments []contracts.Instrument) (valid, invalid []contracts.Instrument, err error) {
	// A one-week window is enough to prove the key resolves.
	dateRange := contracts.LastNDays(7)

	for i, instrument := range instruments {
		if err := ctx.Err(); err != nil {
			return valid, invalid, err
		}

		if i > 0 && v.pacing > 0 {
			select {
			case <-time.After(v.pacing):
			case <-ctx.Done():
				return valid, invalid, ctx.Err()
			}
		}

		_, probeErr := v.source.GetBars(ctx, instrument.Key(), "day", dateRange)
		switch {
		case probeErr == nil:
			valid = append(valid, instrument)
		case errors.Is(probeErr, contracts.ErrNotFound):
			v.logger.WithFields(map[string]interface{}{
				"symbol": instrument.Symbol,
				"isin":   instrument.ISIN,
			}).Warn("Instrument key not recognized by provider")
			invalid = append(invalid, instrument)
		default:
			return valid, invalid, probeErr
		}
	}

	v.logger.WithFields(map[string]interface{}{
		"valid":   len(valid),
		"invalid": len(invalid),
	}).Info("Universe validation completed")

	return valid, invalid, nil
}
