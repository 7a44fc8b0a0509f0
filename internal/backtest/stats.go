package backtest

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// CalculateStats computes summary statistics from trades.
// Trades without a return count as breakouts but not as closed trades.
func CalculateStats(trades []Trade) Stats {
	stats := Stats{Breakouts: len(trades)}
	if len(trades) == 0 {
		return stats
	}

	var returns []float64
	for _, t := range trades {
		if t.Return == nil {
			stats.OpenTrades++
			continue
		}
		returns = append(returns, *t.Return)
		if t.IsWin() {
			stats.WinningTrades++
		} else {
			stats.LosingTrades++
		}
	}

	stats.ClosedTrades = len(returns)
	if stats.ClosedTrades == 0 {
		return stats
	}

	stats.WinRate = float64(stats.WinningTrades) / float64(stats.ClosedTrades) * 100

	mean := stat.Mean(returns, nil)
	best := floats.Max(returns)
	worst := floats.Min(returns)
	stats.MeanReturn = &mean
	stats.BestReturn = &best
	stats.WorstReturn = &worst

	return stats
}
