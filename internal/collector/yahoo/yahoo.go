package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/newthinker/quanta/internal/calendar"
	"github.com/newthinker/quanta/internal/collector"
	"github.com/newthinker/quanta/internal/core"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"
	chartPath      = "/v8/finance/chart"
)

// Yahoo implements the Yahoo Finance collector
type Yahoo struct {
	client  *http.Client
	baseURL string
}

// New creates a new Yahoo collector
func New(timeout time.Duration) *Yahoo {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Yahoo{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
	}
}

// NewWithBaseURL creates a Yahoo collector with custom base URL (for testing)
func NewWithBaseURL(baseURL string, timeout time.Duration) *Yahoo {
	y := New(timeout)
	if baseURL != "" {
		y.baseURL = strings.TrimSuffix(baseURL, "/")
	}
	return y
}

func (y *Yahoo) Name() string {
	return "yahoo"
}

// toYahooSymbol converts internal symbol format to Yahoo format
func (y *Yahoo) toYahooSymbol(symbol string) string {
	// Shanghai stocks: 600519.SH -> 600519.SS
	if strings.HasSuffix(symbol, ".SH") {
		return strings.TrimSuffix(symbol, ".SH") + ".SS"
	}
	// Class shares: BRK.B -> BRK-B
	if i := strings.LastIndex(symbol, "."); i > 0 && len(symbol)-i == 2 {
		return symbol[:i] + "-" + symbol[i+1:]
	}
	return symbol
}

// FetchHistory fetches daily OHLCV data
func (y *Yahoo) FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]core.OHLCV, error) {
	if err := collector.ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	// period2 is exclusive; extend by a day so that end is included
	url := fmt.Sprintf("%s%s/%s?interval=1d&period1=%d&period2=%d",
		y.baseURL, chartPath, y.toYahooSymbol(symbol),
		calendar.Date(start).Unix(), calendar.Date(end).AddDate(0, 0, 1).Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrDataUnavailable, fmt.Errorf("fetching history: %w", collector.TransportError(err)))
	}
	defer resp.Body.Close()

	var result chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, core.WithMessage(core.ErrDataUnavailable,
				fmt.Sprintf("unexpected status: %d", resp.StatusCode), nil)
		}
		return nil, core.WithMessage(core.ErrDataUnavailable, "invalid JSON response", err)
	}

	if result.Chart.Error != nil {
		return nil, core.WithMessage(core.ErrDataUnavailable, result.Chart.Error.Description, nil)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, core.WithMessage(core.ErrDataUnavailable,
			fmt.Sprintf("unexpected status: %d", resp.StatusCode), nil)
	}

	if len(result.Chart.Result) == 0 {
		return nil, core.WithMessage(core.ErrDataUnavailable,
			fmt.Sprintf("no chart for symbol: %s", symbol), nil)
	}

	return collector.Normalize(toBars(symbol, result.Chart.Result[0]), start, end), nil
}

// toBars converts a chart result into bars dated in the exchange's time zone
func toBars(symbol string, r chartResult) []core.OHLCV {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	quotes := r.Indicators.Quote[0]
	offset := time.Duration(r.Meta.GMTOffset) * time.Second

	n := min(len(r.Timestamp), len(quotes.Open), len(quotes.High), len(quotes.Low),
		len(quotes.Close), len(quotes.Volume))

	data := make([]core.OHLCV, 0, n)
	for i, ts := range r.Timestamp[:n] {
		if quotes.Open[i] == nil || quotes.Close[i] == nil {
			continue // Skip missing data
		}
		var volume int64
		if quotes.Volume[i] != nil {
			volume = *quotes.Volume[i]
		}
		data = append(data, core.OHLCV{
			Symbol: symbol,
			Date:   calendar.Date(time.Unix(ts, 0).UTC().Add(offset)),
			Open:   *quotes.Open[i],
			High:   valueOr(quotes.High[i], *quotes.Close[i]),
			Low:    valueOr(quotes.Low[i], *quotes.Close[i]),
			Close:  *quotes.Close[i],
			Volume: volume,
		})
	}
	return data
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

// Yahoo API response types
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta       chartMeta  `json:"meta"`
	Timestamp  []int64    `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type chartMeta struct {
	Symbol    string `json:"symbol"`
	GMTOffset int64  `json:"gmtoffset"`
}

type indicators struct {
	Quote []quoteIndicator `json:"quote"`
}

type quoteIndicator struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}
