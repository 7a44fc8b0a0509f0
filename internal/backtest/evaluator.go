package backtest

import (
	"sort"

	"github.com/newthinker/quanta/internal/calendar"
	"github.com/newthinker/quanta/internal/core"
	"github.com/newthinker/quanta/internal/indicator"
)

// Evaluate runs the breakout strategy over daily bars. The input slice is
// not modified. Every breakout day opens an independent trade; holding
// periods may overlap.
func Evaluate(bars []core.OHLCV, params Params) (*Evaluation, error) {
	if len(bars) == 0 {
		return nil, core.ErrNoData
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	sorted := make([]core.OHLCV, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	rows := computeSignals(sorted, params)
	trades := simulateTrades(rows, params.HoldingPeriod)

	return &Evaluation{
		Rows:   rows,
		Trades: trades,
		Stats:  CalculateStats(trades),
	}, nil
}

// computeSignals derives the trailing volume average, price change and
// breakout flags for each bar
func computeSignals(bars []core.OHLCV, params Params) []SignalRow {
	window := params.VolumeWindow
	volumes := core.Volumes(bars)
	avg := indicator.SMA(volumes, window)
	changes, defined := indicator.PercentChange(core.Closes(bars))

	rows := make([]SignalRow, len(bars))
	for i, bar := range bars {
		row := SignalRow{OHLCV: bar}

		if i >= 1 && defined[i-1] {
			change := changes[i-1]
			row.PriceChange = &change
			row.PriceBreakout = change > params.PriceThreshold
		}

		if i >= window-1 {
			mean := avg[i-window+1]
			row.AvgVolume = &mean
			if mean != 0 {
				ratio := volumes[i] / mean * 100
				row.VolumeRatio = &ratio
				row.VolumeBreakout = ratio > params.VolumeThreshold
			}
		}

		rows[i] = row
	}
	return rows
}

// simulateTrades buys at the close of each breakout row and sells at the
// close holdingPeriod business days later, if that day is in the data
func simulateTrades(rows []SignalRow, holdingPeriod int) []Trade {
	closeByDate := make(map[string]float64, len(rows))
	for _, r := range rows {
		closeByDate[calendar.Format(r.Date)] = r.Close
	}

	var trades []Trade
	for _, r := range rows {
		if !r.IsBreakout() {
			continue
		}

		trade := Trade{
			BuyDate:      r.Date,
			VolumeChange: *r.VolumeRatio,
			PriceChange:  *r.PriceChange,
			BuyPrice:     r.Close,
			SellDate:     calendar.AdvanceBusinessDays(r.Date, holdingPeriod),
		}

		if sell, ok := closeByDate[calendar.Format(trade.SellDate)]; ok {
			sellPrice := sell
			trade.SellPrice = &sellPrice
			if trade.BuyPrice != 0 {
				ret := (sellPrice - trade.BuyPrice) / trade.BuyPrice * 100
				trade.Return = &ret
			}
		}

		trades = append(trades, trade)
	}
	return trades
}
