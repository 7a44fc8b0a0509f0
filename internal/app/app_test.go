package app

import (
	"context"
	"testing"
	"time"

	"github.com/newthinker/quanta/internal/collector"
	"github.com/newthinker/quanta/internal/config"
	"github.com/newthinker/quanta/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockCollector struct {
	name    string
	history []core.OHLCV
	err     error
}

func (m *mockCollector) Name() string { return m.name }
func (m *mockCollector) FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]core.OHLCV, error) {
	return collector.Normalize(m.history, start, end), m.err
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func testApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Defaults()
	cfg.Export.Path = t.TempDir()
	a := New(cfg, zap.NewNop())
	a.now = func() time.Time { return time.Date(2024, 6, 14, 18, 30, 0, 0, time.UTC) }
	return a
}

func ptr[T any](v T) *T { return &v }

func TestNew_RegistersCredentialedProviders(t *testing.T) {
	a := testApp(t)
	assert.Equal(t, []string{"eastmoney", "yahoo"}, a.Collectors().Names())
	assert.NotNil(t, a.Metrics())

	cfg := config.Defaults()
	cfg.Metrics.Enabled = false
	cfg.Provider.AlphaVantage.APIKey = "demo"
	b := New(cfg, nil)
	assert.Nil(t, b.Metrics())
	assert.Equal(t, []string{"alphavantage", "eastmoney", "yahoo"}, b.Collectors().Names())
}

func TestRequest_Defaults(t *testing.T) {
	a := testApp(t)

	req, err := a.Request(Input{Symbol: " IBM "})
	require.NoError(t, err)

	assert.Equal(t, "IBM", req.Symbol)
	assert.Equal(t, day("2024-01-01"), req.Start)
	assert.Equal(t, day("2024-06-14"), req.End)
	assert.Equal(t, 200.0, req.Params.VolumeThreshold)
	assert.Equal(t, 2.0, req.Params.PriceThreshold)
	assert.Equal(t, 10, req.Params.HoldingPeriod)
	assert.Equal(t, 20, req.Params.VolumeWindow)
}

func TestRequest_Overrides(t *testing.T) {
	a := testApp(t)

	req, err := a.Request(Input{
		Symbol:          "AAPL",
		Start:           "2023-03-01",
		End:             "2023-09-30",
		VolumeThreshold: ptr(150.0),
		PriceThreshold:  ptr(1.5),
		HoldingPeriod:   ptr(5),
	})
	require.NoError(t, err)

	assert.Equal(t, day("2023-03-01"), req.Start)
	assert.Equal(t, day("2023-09-30"), req.End)
	assert.Equal(t, 150.0, req.Params.VolumeThreshold)
	assert.Equal(t, 1.5, req.Params.PriceThreshold)
	assert.Equal(t, 5, req.Params.HoldingPeriod)
}

func TestRequest_Invalid(t *testing.T) {
	a := testApp(t)

	tests := []struct {
		name string
		in   Input
	}{
		{"empty symbol", Input{}},
		{"bad symbol", Input{Symbol: "A B"}},
		{"bad start", Input{Symbol: "IBM", Start: "01/02/2024"}},
		{"bad end", Input{Symbol: "IBM", End: "2024-13-01"}},
		{"zero holding period", Input{Symbol: "IBM", HoldingPeriod: ptr(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Request(tt.in)
			assert.ErrorIs(t, err, core.ErrInvalidInput)
		})
	}
}

func TestBacktester_ProviderSelection(t *testing.T) {
	a := testApp(t)

	_, err := a.Backtester("")
	assert.ErrorIs(t, err, core.ErrConfigMissing, "default provider needs an API key")

	_, err = a.Backtester("nasdaq")
	assert.ErrorIs(t, err, core.ErrProviderUnknown)

	bt, err := a.Backtester("yahoo")
	require.NoError(t, err)
	assert.Equal(t, "yahoo", bt.Provider())
}

func TestAnalyze(t *testing.T) {
	a := testApp(t)
	a.RegisterCollector(&mockCollector{
		name: "mock",
		history: []core.OHLCV{
			{Symbol: "IBM", Date: day("2024-01-02"), Close: 100, Volume: 1000},
			{Symbol: "IBM", Date: day("2024-01-03"), Close: 101, Volume: 1100},
		},
	})

	result, err := a.Analyze(context.Background(), Input{Symbol: "IBM", Provider: "mock"})
	require.NoError(t, err)
	assert.Equal(t, "mock", result.Provider)
	assert.Equal(t, 2, result.Bars)
	assert.Empty(t, result.Trades)

	mfs, err := a.Metrics().Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	assert.True(t, names["quanta_analysis_runs_total"])
	assert.True(t, names["quanta_fetch_duration_seconds"])
}

func TestAnalyze_InvertedRangeIsNoData(t *testing.T) {
	a := testApp(t)
	a.RegisterCollector(&mockCollector{
		name: "mock",
		history: []core.OHLCV{
			{Symbol: "IBM", Date: day("2024-03-01"), Close: 100, Volume: 1000},
			{Symbol: "IBM", Date: day("2024-03-04"), Close: 101, Volume: 1100},
		},
	})

	req, err := a.Request(Input{Symbol: "IBM", Start: "2024-06-01", End: "2024-01-01"})
	require.NoError(t, err)
	assert.True(t, req.End.Before(req.Start))

	_, err = a.Analyze(context.Background(), Input{Symbol: "IBM", Start: "2024-06-01", End: "2024-01-01", Provider: "mock"})
	assert.ErrorIs(t, err, core.ErrNoData)
}

func TestAnalyze_NoData(t *testing.T) {
	a := testApp(t)
	a.RegisterCollector(&mockCollector{name: "mock"})

	_, err := a.Analyze(context.Background(), Input{Symbol: "IBM", Provider: "mock"})
	assert.ErrorIs(t, err, core.ErrNoData)
}

func TestSave(t *testing.T) {
	a := testApp(t)
	a.RegisterCollector(&mockCollector{
		name:    "mock",
		history: []core.OHLCV{{Symbol: "IBM", Date: day("2024-01-02"), Close: 100, Volume: 1000}},
	})

	result, err := a.Analyze(context.Background(), Input{Symbol: "IBM", Provider: "mock"})
	require.NoError(t, err)

	path, err := a.Save(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, result.RunID+"/IBM_strategy_analysis.csv", path)
	assert.FileExists(t, a.Config().Export.Path+"/"+path)

	exp1, _ := a.Exporter()
	exp2, _ := a.Exporter()
	assert.Same(t, exp1, exp2)
}

func TestExporter_InvalidBackend(t *testing.T) {
	a := testApp(t)
	a.cfg.Export.Type = "ftp"

	_, err := a.Exporter()
	assert.ErrorIs(t, err, core.ErrConfigInvalid)
}
