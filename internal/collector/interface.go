package collector

import (
	"context"
	"time"

	"github.com/newthinker/quanta/internal/core"
)

// Collector defines the interface for daily market-data providers
type Collector interface {
	// Name identifies the provider in config, flags and metrics
	Name() string

	// FetchHistory returns daily bars for symbol with dates in [start, end],
	// sorted ascending. An empty slice is a valid result.
	FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]core.OHLCV, error)
}
