// Package report renders analysis results as CSV, JSON, YAML and text tables.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/newthinker/quanta/internal/backtest"
	"github.com/newthinker/quanta/internal/calendar"
	"github.com/newthinker/quanta/internal/core"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"
)

// Formats accepted by Write
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatCSV   = "csv"
)

// CSVHeader is the column layout of the trade export
var CSVHeader = []string{
	"Buy Date",
	"Volume Change (%)",
	"Price Change (%)",
	"Buy Price",
	"Sell Date",
	"Sell Price",
	"Return (%)",
}

// Filename returns the export file name for a ticker
func Filename(ticker string) string {
	return ticker + "_strategy_analysis.csv"
}

// TradeView is the serialized form of a trade
type TradeView struct {
	BuyDate      string   `json:"buy_date" yaml:"buy_date"`
	VolumeChange float64  `json:"volume_change" yaml:"volume_change"`
	PriceChange  float64  `json:"price_change" yaml:"price_change"`
	BuyPrice     float64  `json:"buy_price" yaml:"buy_price"`
	SellDate     string   `json:"sell_date" yaml:"sell_date"`
	SellPrice    *float64 `json:"sell_price" yaml:"sell_price"`
	Return       *float64 `json:"return" yaml:"return"`
}

// StatsView is the serialized form of the summary statistics
type StatsView struct {
	Breakouts     int      `json:"breakouts" yaml:"breakouts"`
	ClosedTrades  int      `json:"closed_trades" yaml:"closed_trades"`
	OpenTrades    int      `json:"open_trades" yaml:"open_trades"`
	WinningTrades int      `json:"winning_trades" yaml:"winning_trades"`
	LosingTrades  int      `json:"losing_trades" yaml:"losing_trades"`
	WinRate       float64  `json:"win_rate" yaml:"win_rate"`
	MeanReturn    *float64 `json:"mean_return" yaml:"mean_return"`
	BestReturn    *float64 `json:"best_return" yaml:"best_return"`
	WorstReturn   *float64 `json:"worst_return" yaml:"worst_return"`
}

// View is the serialized form of a backtest.Result
type View struct {
	RunID       string          `json:"run_id" yaml:"run_id"`
	Symbol      string          `json:"symbol" yaml:"symbol"`
	Provider    string          `json:"provider" yaml:"provider"`
	StartDate   string          `json:"start_date" yaml:"start_date"`
	EndDate     string          `json:"end_date" yaml:"end_date"`
	Params      backtest.Params `json:"params" yaml:"params"`
	Bars        int             `json:"bars" yaml:"bars"`
	Stats       StatsView       `json:"stats" yaml:"stats"`
	Trades      []TradeView     `json:"trades" yaml:"trades"`
	GeneratedAt string          `json:"generated_at" yaml:"generated_at"`
}

// NewView converts a result for serialization
func NewView(r *backtest.Result) View {
	trades := make([]TradeView, 0, len(r.Trades))
	for _, t := range r.Trades {
		trades = append(trades, TradeView{
			BuyDate:      calendar.Format(t.BuyDate),
			VolumeChange: t.VolumeChange,
			PriceChange:  t.PriceChange,
			BuyPrice:     t.BuyPrice,
			SellDate:     calendar.Format(t.SellDate),
			SellPrice:    t.SellPrice,
			Return:       t.Return,
		})
	}

	return View{
		RunID:     r.RunID,
		Symbol:    r.Symbol,
		Provider:  r.Provider,
		StartDate: calendar.Format(r.StartDate),
		EndDate:   calendar.Format(r.EndDate),
		Params:    r.Params,
		Bars:      r.Bars,
		Stats: StatsView{
			Breakouts:     r.Stats.Breakouts,
			ClosedTrades:  r.Stats.ClosedTrades,
			OpenTrades:    r.Stats.OpenTrades,
			WinningTrades: r.Stats.WinningTrades,
			LosingTrades:  r.Stats.LosingTrades,
			WinRate:       r.Stats.WinRate,
			MeanReturn:    r.Stats.MeanReturn,
			BestReturn:    r.Stats.BestReturn,
			WorstReturn:   r.Stats.WorstReturn,
		},
		Trades:      trades,
		GeneratedAt: r.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Write renders the result in the named format
func Write(w io.Writer, format string, r *backtest.Result) error {
	switch format {
	case FormatTable, "":
		return WriteTable(w, r)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatYAML:
		return WriteYAML(w, r)
	case FormatCSV:
		return WriteCSV(w, r.Trades)
	default:
		return core.WrapError(core.ErrInvalidInput, fmt.Errorf("unknown format: %s", format))
	}
}

// WriteCSV writes one row per trade. Absent sell values are empty cells.
func WriteCSV(w io.Writer, trades []backtest.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return core.WrapError(core.ErrExportFailed, err)
	}

	for _, t := range trades {
		record := []string{
			calendar.Format(t.BuyDate),
			formatFloat(t.VolumeChange),
			formatFloat(t.PriceChange),
			formatFloat(t.BuyPrice),
			calendar.Format(t.SellDate),
			formatOptional(t.SellPrice),
			formatOptional(t.Return),
		}
		if err := cw.Write(record); err != nil {
			return core.WrapError(core.ErrExportFailed, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return core.WrapError(core.ErrExportFailed, err)
	}
	return nil
}

// WriteJSON writes the result as indented JSON
func WriteJSON(w io.Writer, r *backtest.Result) error {
	data, err := json.Marshal(NewView(r))
	if err != nil {
		return core.WrapError(core.ErrExportFailed, err)
	}
	if _, err := w.Write(pretty.Pretty(data)); err != nil {
		return core.WrapError(core.ErrExportFailed, err)
	}
	return nil
}

// WriteYAML writes the result as a YAML document
func WriteYAML(w io.Writer, r *backtest.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewView(r)); err != nil {
		return core.WrapError(core.ErrExportFailed, err)
	}
	if err := enc.Close(); err != nil {
		return core.WrapError(core.ErrExportFailed, err)
	}
	return nil
}

// WriteTable writes the summary lines followed by an aligned trade table
func WriteTable(w io.Writer, r *backtest.Result) error {
	fmt.Fprintf(w, "Symbol:   %s (%s)\n", r.Symbol, r.Provider)
	fmt.Fprintf(w, "Period:   %s to %s, %d bars\n", calendar.Format(r.StartDate), calendar.Format(r.EndDate), r.Bars)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Breakout Days/Total Trades: %d\n", r.Stats.Breakouts)
	fmt.Fprintf(w, "Average Return (%%): %s\n", formatSummary(r.Stats.MeanReturn))
	if r.Stats.OpenTrades > 0 {
		fmt.Fprintf(w, "Open Trades: %d\n", r.Stats.OpenTrades)
	}
	if r.Stats.ClosedTrades > 0 {
		fmt.Fprintf(w, "Win Rate (%%): %.2f\n", r.Stats.WinRate)
	}

	if len(r.Trades) == 0 {
		_, err := fmt.Fprintln(w, "\nNo breakout days found.")
		return err
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BUY DATE\tVOL CHG %\tPRICE CHG %\tBUY\tSELL DATE\tSELL\tRETURN %\t")
	fmt.Fprintln(tw, "--------\t---------\t-----------\t---\t---------\t----\t--------\t")
	for _, t := range r.Trades {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%s\t%s\t%s\t\n",
			calendar.Format(t.BuyDate), t.VolumeChange, t.PriceChange, t.BuyPrice,
			calendar.Format(t.SellDate), formatSummary(t.SellPrice), formatSummary(t.Return))
	}
	return tw.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatSummary(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}
