package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"StockScope/internal/model"
	"StockScope/internal/series"
)

func closeSeries(t *testing.T, closes ...float64) *series.Series {
	t.Helper()
	bars := make([]model.OHLCV, len(closes))
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Close: c}
	}
	s, err := series.New("TEST", bars)
	require.NoError(t, err)
	return s
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func leadingUndefined(values []float64) int {
	n := 0
	for n < len(values) && math.IsNaN(values[n]) {
		n++
	}
	return n
}

func assertSeriesInDelta(t *testing.T, want, got []float64, delta float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		if math.IsNaN(want[i]) {
			require.True(t, math.IsNaN(got[i]), "expected undefined at index %d, got %v", i, got[i])
			continue
		}
		require.InDelta(t, want[i], got[i], delta, "value mismatch at index %d", i)
	}
}

func rangeSeries(t *testing.T, highs, lows, closes []float64) *series.Series {
	t.Helper()
	bars := make([]model.OHLCV, len(closes))
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range closes {
		bars[i] = model.OHLCV{
			Time:  start.AddDate(0, 0, i),
			Open:  model.Float(closes[i]),
			High:  model.Float(highs[i]),
			Low:   model.Float(lows[i]),
			Close: closes[i],
		}
	}
	s, err := series.New("TEST", bars)
	require.NoError(t, err)
	return s
}
