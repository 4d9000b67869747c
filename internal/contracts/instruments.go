package contracts

import "fmt"

// Instrument identifies one tradable security in the screening universe.
type Instrument struct {
	Symbol string `json:"symbol"`
	ISIN   string `json:"isin"`
}

// Exchange segment used when building Upstox instrument keys.
// The screener only scans NSE equities.
const (
	Exchange       = "NSE"
	InstrumentType = "EQ"
)

// Key returns the Upstox instrument key, e.g. "NSE_EQ|INE002A01018".
func (i Instrument) Key() string {
	return fmt.Sprintf("%s_%s|%s", Exchange, InstrumentType, i.ISIN)
}
