package core

import "time"

// OHLCV represents one daily bar
type OHLCV struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"` // calendar date at 00:00 UTC
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// IsValid checks if the bar has the fields the evaluator depends on
func (b OHLCV) IsValid() bool {
	return !b.Date.IsZero() && b.Close > 0 && b.Volume >= 0
}

// Closes extracts close prices in order
func Closes(bars []OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts volumes as float64 in order
func Volumes(bars []OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = float64(b.Volume)
	}
	return out
}
