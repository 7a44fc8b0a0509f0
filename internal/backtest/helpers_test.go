package backtest

import (
	"time"

	"github.com/newthinker/quanta/internal/calendar"
	"github.com/newthinker/quanta/internal/core"
)

var firstDay = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) // Monday

// makeBars builds consecutive business-day bars from closes and volumes
func makeBars(closes []float64, volumes []int64) []core.OHLCV {
	bars := make([]core.OHLCV, len(closes))
	for i := range closes {
		bars[i] = core.OHLCV{
			Symbol: "TEST",
			Date:   calendar.AdvanceBusinessDays(firstDay, i),
			Open:   closes[i],
			High:   closes[i],
			Low:    closes[i],
			Close:  closes[i],
			Volume: volumes[i],
		}
	}
	return bars
}

func repeatFloat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func repeatInt(v int64, n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// breakoutFixture returns 40 bars where row 25 is the only breakout:
// trailing average volume 1000, volume 2500, close 100 up 3% from the
// prior close, and the close five business days later is 105.
func breakoutFixture() []core.OHLCV {
	const n, t = 40, 25

	closes := repeatFloat(100/1.03, n)
	for i := t; i < n; i++ {
		closes[i] = 100
	}
	closes[t+5] = 105

	volumes := repeatInt(900, n)
	volumes[t-1] = 1300
	volumes[t] = 2500

	return makeBars(closes, volumes)
}
