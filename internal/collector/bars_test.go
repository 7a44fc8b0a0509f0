package collector

import (
	"testing"
	"time"

	"github.com/newthinker/quanta/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestValidateSymbol(t *testing.T) {
	valid := []string{"AAPL", "BRK.B", "BRK-B", "0700.HK", "^GSPC", "IBM"}
	for _, s := range valid {
		assert.NoError(t, ValidateSymbol(s), s)
	}

	invalid := []string{"", "AAPL MSFT", "a/b", "../etc", "THISSYMBOLISWAYTOOLONG"}
	for _, s := range invalid {
		err := ValidateSymbol(s)
		assert.ErrorIs(t, err, core.ErrInvalidInput, s)
	}
}

func TestNormalize_SortsAndFilters(t *testing.T) {
	bars := []core.OHLCV{
		{Date: date("2024-01-05"), Close: 5},
		{Date: date("2023-12-29"), Close: 1},
		{Date: date("2024-01-02"), Close: 2},
		{Date: date("2024-01-04"), Close: 4},
		{Date: date("2024-01-03"), Close: 3},
		{Date: date("2024-01-08"), Close: 8},
	}

	got := Normalize(bars, date("2024-01-02"), date("2024-01-05"))

	require.Len(t, got, 4)
	for i, want := range []float64{2, 3, 4, 5} {
		assert.Equal(t, want, got[i].Close)
	}

	// Input untouched
	assert.Equal(t, 5.0, bars[0].Close)
}

func TestNormalize_TruncatesTimeAndDropsDuplicates(t *testing.T) {
	bars := []core.OHLCV{
		{Date: date("2024-01-02").Add(14 * time.Hour), Close: 1},
		{Date: date("2024-01-02"), Close: 2},
		{Date: date("2024-01-03").Add(21 * time.Hour), Close: 3},
	}

	got := Normalize(bars, date("2024-01-01"), date("2024-01-03"))

	require.Len(t, got, 2)
	assert.Equal(t, date("2024-01-02"), got[0].Date)
	assert.Equal(t, 2.0, got[0].Close)
	assert.Equal(t, date("2024-01-03"), got[1].Date)
}

func TestNormalize_InvertedRangeIsEmpty(t *testing.T) {
	bars := []core.OHLCV{{Date: date("2024-01-03"), Close: 1}}
	assert.Empty(t, Normalize(bars, date("2024-01-05"), date("2024-01-01")))
}
