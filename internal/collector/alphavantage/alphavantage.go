// Package alphavantage fetches daily bars from the Alpha Vantage
// TIME_SERIES_DAILY endpoint.
package alphavantage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/newthinker/quanta/internal/calendar"
	"github.com/newthinker/quanta/internal/collector"
	"github.com/newthinker/quanta/internal/core"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

const (
	defaultBaseURL = "https://www.alphavantage.co"

	seriesField = "Time Series (Daily)"
)

// messageFields are checked in order for a provider explanation when the
// daily series is missing.
var messageFields = []string{"Error Message", "Information", "Note"}

// AlphaVantage implements the Alpha Vantage collector
type AlphaVantage struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// New creates a new Alpha Vantage collector
func New(apiKey string, timeout time.Duration) *AlphaVantage {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AlphaVantage{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
	}
}

// NewWithBaseURL creates a collector with custom base URL (for testing)
func NewWithBaseURL(apiKey, baseURL string, timeout time.Duration) *AlphaVantage {
	a := New(apiKey, timeout)
	if baseURL != "" {
		a.baseURL = strings.TrimSuffix(baseURL, "/")
	}
	return a
}

func (a *AlphaVantage) Name() string {
	return "alphavantage"
}

// FetchHistory requests the full daily history and keeps bars in [start, end]
func (a *AlphaVantage) FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]core.OHLCV, error) {
	if err := collector.ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	body, err := a.get(ctx, symbol)
	if err != nil {
		return nil, err
	}

	bars, err := parseDaily(symbol, body)
	if err != nil {
		return nil, err
	}

	return collector.Normalize(bars, start, end), nil
}

func (a *AlphaVantage) queryURL(symbol string) string {
	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)
	params.Set("apikey", a.apiKey)
	params.Set("outputsize", "full")
	return a.baseURL + "/query?" + params.Encode()
}

func (a *AlphaVantage) get(ctx context.Context, symbol string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.queryURL(symbol), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrDataUnavailable, fmt.Errorf("fetching history: %w", collector.TransportError(err)))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, core.WithMessage(core.ErrDataUnavailable,
			fmt.Sprintf("unexpected status: %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.WrapError(core.ErrDataUnavailable, fmt.Errorf("reading response: %w", err))
	}
	return body, nil
}

// parseDaily converts a TIME_SERIES_DAILY payload into bars in payload order.
func parseDaily(symbol string, body []byte) ([]core.OHLCV, error) {
	if !gjson.ValidBytes(body) {
		return nil, core.WithMessage(core.ErrDataUnavailable, "invalid JSON response", nil)
	}

	var series gjson.Result
	messages := make(map[string]string)
	gjson.ParseBytes(body).ForEach(func(key, value gjson.Result) bool {
		if key.String() == seriesField {
			series = value
		} else {
			messages[key.String()] = value.String()
		}
		return true
	})

	if !series.Exists() || !series.IsObject() {
		return nil, core.WithMessage(core.ErrDataUnavailable, providerMessage(messages), nil)
	}

	var bars []core.OHLCV
	var parseErr error
	series.ForEach(func(key, value gjson.Result) bool {
		bar, err := parseBar(symbol, key.String(), value)
		if err != nil {
			parseErr = err
			return false
		}
		bars = append(bars, bar)
		return true
	})
	if parseErr != nil {
		return nil, core.WithMessage(core.ErrDataUnavailable, "malformed daily series", parseErr)
	}

	return bars, nil
}

func providerMessage(messages map[string]string) string {
	for _, field := range messageFields {
		if msg := messages[field]; msg != "" {
			return msg
		}
	}
	return ""
}

func parseBar(symbol, day string, fields gjson.Result) (core.OHLCV, error) {
	date, err := calendar.Parse(day)
	if err != nil {
		return core.OHLCV{}, fmt.Errorf("date %q: %w", day, err)
	}

	// Keys are "1. open" .. "5. volume"; match on the name after the ordinal
	values := make(map[string]decimal.Decimal, 5)
	var fieldErr error
	fields.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if i := strings.Index(name, ". "); i >= 0 {
			name = name[i+2:]
		}
		d, err := decimal.NewFromString(strings.TrimSpace(value.String()))
		if err != nil {
			fieldErr = fmt.Errorf("%s %s %q: %w", day, name, value.String(), err)
			return false
		}
		values[name] = d
		return true
	})
	if fieldErr != nil {
		return core.OHLCV{}, fieldErr
	}

	for _, name := range []string{"open", "high", "low", "close", "volume"} {
		if _, ok := values[name]; !ok {
			return core.OHLCV{}, fmt.Errorf("%s: missing %s", day, name)
		}
	}

	return core.OHLCV{
		Symbol: symbol,
		Date:   date,
		Open:   values["open"].InexactFloat64(),
		High:   values["high"].InexactFloat64(),
		Low:    values["low"].InexactFloat64(),
		Close:  values["close"].InexactFloat64(),
		Volume: values["volume"].IntPart(),
	}, nil
}
