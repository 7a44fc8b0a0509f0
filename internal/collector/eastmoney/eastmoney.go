// Package eastmoney fetches daily A-share klines from Eastmoney.
package eastmoney

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
	defaultBaseURL = "https://push2his.eastmoney.com"
	klinePath      = "/api/qt/stock/kline/get"

	dailyKline = "101"
	unadjusted = "0"
)

// Eastmoney implements the Eastmoney collector for A-shares
type Eastmoney struct {
	client  *http.Client
	baseURL string
}

// New creates a new Eastmoney collector
func New(timeout time.Duration) *Eastmoney {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Eastmoney{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
	}
}

// NewWithBaseURL creates a collector with custom base URL (for testing)
func NewWithBaseURL(baseURL string, timeout time.Duration) *Eastmoney {
	e := New(timeout)
	if baseURL != "" {
		e.baseURL = strings.TrimSuffix(baseURL, "/")
	}
	return e
}

func (e *Eastmoney) Name() string {
	return "eastmoney"
}

// secID converts 600519.SH to 1.600519 for the Eastmoney API.
// Shanghai = 1, Shenzhen = 0; a bare code is treated as Shanghai.
func secID(symbol string) string {
	code, exchange, found := strings.Cut(strings.ToUpper(symbol), ".")
	market := "1"
	if found && exchange == "SZ" {
		market = "0"
	}
	return market + "." + code
}

// FetchHistory fetches unadjusted daily klines for [start, end]
func (e *Eastmoney) FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]core.OHLCV, error) {
	if err := collector.ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("secid", secID(symbol))
	params.Set("klt", dailyKline)
	params.Set("fqt", unadjusted)
	params.Set("beg", start.Format("20060102"))
	params.Set("end", end.Format("20060102"))
	params.Set("fields1", "f1,f2,f3")
	params.Set("fields2", "f51,f52,f53,f54,f55,f56")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+klinePath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := e.client.Do(req)
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

	bars, err := parseKlines(symbol, body)
	if err != nil {
		return nil, err
	}
	return collector.Normalize(bars, start, end), nil
}

// parseKlines reads data.klines, each "date,open,close,high,low,volume".
// A null data object means the symbol is unknown.
func parseKlines(symbol string, body []byte) ([]core.OHLCV, error) {
	if !gjson.ValidBytes(body) {
		return nil, core.WithMessage(core.ErrDataUnavailable, "invalid JSON response", nil)
	}

	data := gjson.GetBytes(body, "data")
	if !data.IsObject() {
		return nil, core.WithMessage(core.ErrDataUnavailable,
			fmt.Sprintf("no kline data for symbol: %s", symbol), nil)
	}

	lines := data.Get("klines").Array()
	bars := make([]core.OHLCV, 0, len(lines))
	for _, line := range lines {
		bar, err := parseKline(symbol, line.String())
		if err != nil {
			return nil, core.WithMessage(core.ErrDataUnavailable, "malformed kline", err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseKline(symbol, line string) (core.OHLCV, error) {
	fields := strings.Split(line, ",")
	if len(fields) < 6 {
		return core.OHLCV{}, fmt.Errorf("kline %q: expected 6 fields, got %d", line, len(fields))
	}

	date, err := calendar.Parse(fields[0])
	if err != nil {
		return core.OHLCV{}, fmt.Errorf("kline %q: %w", line, err)
	}

	values := make([]decimal.Decimal, 5)
	for i := range values {
		d, err := decimal.NewFromString(fields[i+1])
		if err != nil {
			return core.OHLCV{}, fmt.Errorf("kline %q field %d: %w", line, i+1, err)
		}
		values[i] = d
	}

	return core.OHLCV{
		Symbol: symbol,
		Date:   date,
		Open:   values[0].InexactFloat64(),
		Close:  values[1].InexactFloat64(),
		High:   values[2].InexactFloat64(),
		Low:    values[3].InexactFloat64(),
		Volume: values[4].IntPart(),
	}, nil
}
