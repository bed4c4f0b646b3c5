package model

import (
	"fmt"
	"time"
)

// Bar represents one daily OHLCV bar for a single stock.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Series is an ordered sequence of daily bars, ascending by timestamp with
// no duplicates. The "current" bar is the last element.
type Series []Bar

// Validate checks the series ordering invariant.
func (s Series) Validate() error {
	for i := 1; i < len(s); i++ {
		if !s[i].Timestamp.After(s[i-1].Timestamp) {
			return fmt.Errorf("series not strictly ascending at index %d (%s >= %s)",
				i, s[i-1].Timestamp.Format("2006-01-02"), s[i].Timestamp.Format("2006-01-02"))
		}
	}
	return nil
}

// Closes returns the close prices in series order.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Highs returns the high prices in series order.
func (s Series) Highs() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.High
	}
	return out
}

// Lows returns the low prices in series order.
func (s Series) Lows() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Low
	}
	return out
}

// Volumes returns the volumes in series order.
func (s Series) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Volume
	}
	return out
}

// LastClose returns the most recent close price.
// ok is false for an empty series.
func (s Series) LastClose() (price float64, ok bool) {
	if len(s) == 0 {
		return 0, false
	}
	return s[len(s)-1].Close, true
}

// Float returns a pointer to v. Convenience for optional indicator fields.
func Float(v float64) *float64 { return &v }
