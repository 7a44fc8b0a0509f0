package backtest

import (
	"fmt"
	"math"
	"time"

	"github.com/newthinker/quanta/internal/core"
)

// Params holds the breakout strategy thresholds
type Params struct {
	VolumeThreshold float64 `json:"volume_threshold" yaml:"volume_threshold"` // Volume / trailing average, percent
	PriceThreshold  float64 `json:"price_threshold" yaml:"price_threshold"`   // Close-to-close change, percent
	HoldingPeriod   int     `json:"holding_period" yaml:"holding_period"`     // Business days between buy and sell
	VolumeWindow    int     `json:"volume_window" yaml:"volume_window"`       // Rows in the trailing volume average
}

// DefaultParams returns the stock breakout parameters
func DefaultParams() Params {
	return Params{
		VolumeThreshold: 200.0,
		PriceThreshold:  2.0,
		HoldingPeriod:   10,
		VolumeWindow:    20,
	}
}

// Validate checks that the parameters can drive an evaluation
func (p Params) Validate() error {
	if p.HoldingPeriod < 1 {
		return core.WrapError(core.ErrInvalidInput,
			fmt.Errorf("holding period must be a positive number of business days, got %d", p.HoldingPeriod))
	}
	if p.VolumeWindow < 1 {
		return core.WrapError(core.ErrInvalidInput,
			fmt.Errorf("volume window must be positive, got %d", p.VolumeWindow))
	}
	if !finite(p.VolumeThreshold) {
		return core.WrapError(core.ErrInvalidInput,
			fmt.Errorf("volume threshold must be a finite number, got %v", p.VolumeThreshold))
	}
	if !finite(p.PriceThreshold) {
		return core.WrapError(core.ErrInvalidInput,
			fmt.Errorf("price threshold must be a finite number, got %v", p.PriceThreshold))
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// SignalRow is a bar with the derived breakout signals.
// Nil pointers mark values that are undefined for the row.
type SignalRow struct {
	core.OHLCV
	AvgVolume      *float64
	PriceChange    *float64 // Percent change of close against the previous row
	VolumeRatio    *float64 // Volume / AvgVolume * 100
	PriceBreakout  bool
	VolumeBreakout bool
}

// IsBreakout returns true when both price and volume broke out
func (r SignalRow) IsBreakout() bool {
	return r.PriceBreakout && r.VolumeBreakout
}

// Trade represents a simulated buy on a breakout day and the sell after the holding period
type Trade struct {
	BuyDate      time.Time
	VolumeChange float64 // VolumeRatio of the breakout row
	PriceChange  float64
	BuyPrice     float64
	SellDate     time.Time
	SellPrice    *float64 // nil if SellDate is outside the fetched range
	Return       *float64 // Percentage return, nil with SellPrice
}

// IsWin returns true if the trade was profitable
func (t Trade) IsWin() bool {
	return t.Return != nil && *t.Return > 0
}

// IsClosed returns true if the trade has a sell price
func (t Trade) IsClosed() bool {
	return t.SellPrice != nil
}

// Stats holds performance statistics
type Stats struct {
	Breakouts     int      // Breakout days, one trade each
	ClosedTrades  int      // Trades with a defined return
	OpenTrades    int      // Trades whose sell date is past the data
	WinningTrades int
	LosingTrades  int
	WinRate       float64  // Percentage of closed trades that were profitable
	MeanReturn    *float64 // Mean return percentage of closed trades
	BestReturn    *float64
	WorstReturn   *float64
}

// Evaluation is the output of the strategy evaluator
type Evaluation struct {
	Rows   []SignalRow
	Trades []Trade
	Stats  Stats
}

// Breakouts returns the rows flagged as breakout events
func (e *Evaluation) Breakouts() []SignalRow {
	var out []SignalRow
	for _, r := range e.Rows {
		if r.IsBreakout() {
			out = append(out, r)
		}
	}
	return out
}

// Request describes one pipeline run
type Request struct {
	Symbol string
	Start  time.Time
	End    time.Time
	Params Params
}

// Result holds the complete analysis output
type Result struct {
	RunID       string
	Symbol      string
	Provider    string
	StartDate   time.Time
	EndDate     time.Time
	Params      Params
	Bars        int // Bars fetched within the range
	Trades      []Trade
	Stats       Stats
	GeneratedAt time.Time
}
