// Package alpaca fetches daily bars from the Alpaca market data API.
package alpaca

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/newthinker/quanta/internal/calendar"
	"github.com/newthinker/quanta/internal/collector"
	"github.com/newthinker/quanta/internal/core"
)

// Config holds Alpaca credentials and data feed selection
type Config struct {
	APIKey    string
	APISecret string
	BaseURL   string
	Feed      string // "iex" (free) or "sip"
}

// barsClient is the part of marketdata.Client this collector uses
type barsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// Alpaca implements the Alpaca market data collector
type Alpaca struct {
	client barsClient
	feed   string
}

// New creates a new Alpaca collector
func New(cfg Config) *Alpaca {
	client := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
		BaseURL:   cfg.BaseURL,
	})
	return newWithClient(client, cfg.Feed)
}

func newWithClient(client barsClient, feed string) *Alpaca {
	if feed == "" {
		feed = string(marketdata.IEX)
	}
	return &Alpaca{client: client, feed: feed}
}

func (a *Alpaca) Name() string {
	return "alpaca"
}

// FetchHistory fetches unadjusted daily bars. The SDK call does not take
// a context, so cancellation is only observed before the request.
func (a *Alpaca) FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]core.OHLCV, error) {
	if err := collector.ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bars, err := a.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Adjustment: marketdata.Raw,
		Start:      calendar.Date(start),
		End:        calendar.Date(end).AddDate(0, 0, 1),
		Feed:       marketdata.Feed(a.feed),
	})
	if err != nil {
		return nil, core.WithMessage(core.ErrDataUnavailable, err.Error(),
			fmt.Errorf("getting bars: %w", err))
	}

	data := make([]core.OHLCV, 0, len(bars))
	for _, bar := range bars {
		data = append(data, core.OHLCV{
			Symbol: symbol, // Alpaca bars don't have symbol
			Date:   calendar.Date(bar.Timestamp.UTC()),
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: int64(bar.Volume),
		})
	}

	return collector.Normalize(data, start, end), nil
}
