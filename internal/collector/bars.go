package collector

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/newthinker/quanta/internal/calendar"
	"github.com/newthinker/quanta/internal/core"
)

// validSymbol matches tickers like AAPL, BRK.B, BRK-B, 0700.HK, ^GSPC
var validSymbol = regexp.MustCompile(`^[A-Za-z0-9^][A-Za-z0-9.\-=]{0,19}$`)

// ValidateSymbol checks if a symbol has valid format
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return core.WrapError(core.ErrInvalidInput, fmt.Errorf("symbol cannot be empty"))
	}
	if !validSymbol.MatchString(symbol) {
		return core.WrapError(core.ErrInvalidInput, fmt.Errorf("invalid symbol format: %s", symbol))
	}
	return nil
}

// Normalize sorts bars ascending by date, collapses duplicate dates
// (last one wins) and keeps only dates within [start, end].
func Normalize(bars []core.OHLCV, start, end time.Time) []core.OHLCV {
	sorted := make([]core.OHLCV, len(bars))
	copy(sorted, bars)
	for i := range sorted {
		sorted[i].Date = calendar.Date(sorted[i].Date)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	out := make([]core.OHLCV, 0, len(sorted))
	for _, b := range sorted {
		if !calendar.Within(b.Date, start, end) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}
