package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOHLCV_IsValid(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		bar  OHLCV
		want bool
	}{
		{"valid", OHLCV{Symbol: "AAPL", Date: day, Close: 185.64, Volume: 82488700}, true},
		{"zero date", OHLCV{Symbol: "AAPL", Close: 185.64}, false},
		{"zero close", OHLCV{Symbol: "AAPL", Date: day}, false},
		{"negative volume", OHLCV{Symbol: "AAPL", Date: day, Close: 1, Volume: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.bar.IsValid())
		})
	}
}

func TestClosesAndVolumes(t *testing.T) {
	bars := []OHLCV{
		{Close: 10, Volume: 100},
		{Close: 11, Volume: 200},
	}
	assert.Equal(t, []float64{10, 11}, Closes(bars))
	assert.Equal(t, []float64{100, 200}, Volumes(bars))
}
