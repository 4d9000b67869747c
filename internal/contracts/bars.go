package contracts

import (
	"fmt"
	"time"
)

// Bar is one trading session's OHLCV candle for an instrument.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// Series is an ordered sequence of bars for one instrument, strictly
// increasing by timestamp with no duplicates.
type Series []Bar

// Len returns the number of bars
func (s Series) Len() int {
	return len(s)
}

// Latest returns the most recent bar. Callers must check Len() first.
func (s Series) Latest() Bar {
	return s[len(s)-1]
}

// Validate checks the series ordering invariant
func (s Series) Validate() error {
	for i := 1; i < len(s); i++ {
		if !s[i].Timestamp.After(s[i-1].Timestamp) {
			return fmt.Errorf("series not strictly increasing at index %d (%s -> %s)",
				i, s[i-1].Timestamp.Format("2006-01-02"), s[i].Timestamp.Format("2006-01-02"))
		}
	}
	return nil
}

// DateRange is an inclusive calendar range for a candle request.
type DateRange struct {
	From time.Time
	To   time.Time
}

// LastNDays builds a range ending today covering the given number of
// calendar days. Weekends and holidays shrink the bar count, so callers
// request more days than bars they need.
func LastNDays(days int) DateRange {
	now := time.Now()
	return DateRange{
		From: now.AddDate(0, 0, -days),
		To:   now,
	}
}
