package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/newthinker/quanta/internal/backtest"
	"github.com/newthinker/quanta/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func f(v float64) *float64 { return &v }

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func sampleResult() *backtest.Result {
	trades := []backtest.Trade{
		{
			BuyDate:      date("2024-02-05"),
			VolumeChange: 250,
			PriceChange:  3,
			BuyPrice:     100,
			SellDate:     date("2024-02-12"),
			SellPrice:    f(105),
			Return:       f(5),
		},
		{
			BuyDate:      date("2024-03-28"),
			VolumeChange: 310.5,
			PriceChange:  2.25,
			BuyPrice:     120,
			SellDate:     date("2024-04-11"),
		},
	}
	return &backtest.Result{
		RunID:       "run-1",
		Symbol:      "IBM",
		Provider:    "alphavantage",
		StartDate:   date("2024-01-01"),
		EndDate:     date("2024-04-01"),
		Params:      backtest.DefaultParams(),
		Bars:        63,
		Trades:      trades,
		Stats:       backtest.CalculateStats(trades),
		GeneratedAt: time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "AAPL_strategy_analysis.csv", Filename("AAPL"))
	assert.Equal(t, "run-1/AAPL_strategy_analysis.csv", ExportPath("run-1", "AAPL"))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResult().Trades))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, CSVHeader, records[0])
	assert.Equal(t, []string{"2024-02-05", "250", "3", "100", "2024-02-12", "105", "5"}, records[1])
	assert.Equal(t, []string{"2024-03-28", "310.5", "2.25", "120", "2024-04-11", "", ""}, records[2])
}

func TestWriteCSV_NoTrades(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, strings.Join(CSVHeader, ",")+"\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult()))

	assert.Contains(t, buf.String(), "\n  \"run_id\": \"run-1\"")

	var view View
	require.NoError(t, json.Unmarshal(buf.Bytes(), &view))
	assert.Equal(t, "IBM", view.Symbol)
	assert.Equal(t, "2024-01-01", view.StartDate)
	require.Len(t, view.Trades, 2)
	assert.Equal(t, "2024-02-12", view.Trades[0].SellDate)
	assert.Nil(t, view.Trades[1].SellPrice)
	assert.Nil(t, view.Trades[1].Return)
	assert.Equal(t, 2, view.Stats.Breakouts)
	assert.Equal(t, 200.0, view.Params.VolumeThreshold)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, sampleResult()))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "IBM", doc["symbol"])
	assert.Contains(t, buf.String(), "holding_period: 10")
	assert.Contains(t, buf.String(), "sell_price: null")
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "Breakout Days/Total Trades: 2")
	assert.Contains(t, out, "Average Return (%): 5.00")
	assert.Contains(t, out, "Open Trades: 1")
	assert.Contains(t, out, "2024-03-28")
	assert.Contains(t, out, "n/a")
}

func TestWriteTable_NoTrades(t *testing.T) {
	r := sampleResult()
	r.Trades = nil
	r.Stats = backtest.CalculateStats(nil)

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, r))
	assert.Contains(t, buf.String(), "Breakout Days/Total Trades: 0")
	assert.Contains(t, buf.String(), "Average Return (%): n/a")
	assert.Contains(t, buf.String(), "No breakout days found.")
}

func TestWrite_Formats(t *testing.T) {
	for _, format := range []string{FormatTable, FormatJSON, FormatYAML, FormatCSV} {
		var buf bytes.Buffer
		assert.NoError(t, Write(&buf, format, sampleResult()), format)
		assert.NotZero(t, buf.Len(), format)
	}

	err := Write(&bytes.Buffer{}, "xml", sampleResult())
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
