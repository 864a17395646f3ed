package series

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScope/internal/model"
)

func day(n int) time.Time {
	return time.Date(2023, 1, 2, 14, 30, 0, 0, time.UTC).AddDate(0, 0, n)
}

func bar(n int, high, low, close float64) model.OHLCV {
	return model.OHLCV{
		Time:   day(n),
		Open:   model.Float(close),
		High:   model.Float(high),
		Low:    model.Float(low),
		Close:  close,
		Volume: model.Float(1000),
	}
}

func closeBar(n int, close float64) model.OHLCV {
	return model.OHLCV{Time: day(n), Close: close}
}

func TestNew_SortsByDate(t *testing.T) {
	s, err := New("AAPL", []model.OHLCV{
		bar(2, 12, 10, 11),
		bar(0, 11, 9, 10),
		bar(1, 13, 11, 12),
	})
	require.NoError(t, err)

	assert.Equal(t, "AAPL", s.Symbol())
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.HasRange())
	assert.Equal(t, []float64{10, 12, 11}, s.Closes())
	assert.Equal(t, []float64{11, 13, 12}, s.Highs())
	assert.Equal(t, []float64{9, 11, 10}, s.Lows())

	dates := s.Dates()
	for i := 1; i < len(dates); i++ {
		assert.True(t, dates[i].After(dates[i-1]))
	}
	assert.Equal(t, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), dates[0])
}

func TestNew_CloseOnlyFallsBackToClose(t *testing.T) {
	s, err := New("SPY", []model.OHLCV{closeBar(0, 10), closeBar(1, 11)})
	require.NoError(t, err)

	assert.False(t, s.HasRange())
	assert.Equal(t, s.Closes(), s.Highs())
	assert.Equal(t, s.Closes(), s.Lows())
	assert.True(t, math.IsNaN(s.Point(0).High))
}

func TestNew_CloseOnlyLiteral(t *testing.T) {
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s, err := New("X", []model.OHLCV{
		{Time: d, Close: 10},
		{Time: d.AddDate(0, 0, 1), Close: 10.5},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.False(t, s.HasRange())
	assert.Equal(t, []float64{10, 10.5}, s.Highs())
}

func TestNew_CalendarDayInBarLocation(t *testing.T) {
	seoul := time.FixedZone("KST", 9*3600)
	newYork := time.FixedZone("EST", -5*3600)
	// 08:00 in Seoul is the previous day in UTC; the trading day is kept.
	s, err := New("MIX", []model.OHLCV{
		{Time: time.Date(2024, 3, 5, 8, 0, 0, 0, seoul), Close: 11},
		{Time: time.Date(2024, 3, 4, 20, 0, 0, 0, newYork), Close: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}, s.Dates())
	assert.Equal(t, []float64{10, 11}, s.Closes())
}

func TestNew_MixedRangeDropsRange(t *testing.T) {
	s, err := New("MIX", []model.OHLCV{bar(0, 11, 9, 10), closeBar(1, 11)})
	require.NoError(t, err)
	assert.False(t, s.HasRange())
	assert.Equal(t, []float64{10, 11}, s.Highs())
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		bars  []model.OHLCV
		row   int
		field string
	}{
		{"zero close", []model.OHLCV{closeBar(0, 10), closeBar(1, 0)}, 1, "close"},
		{"negative close", []model.OHLCV{closeBar(0, -3)}, 0, "close"},
		{"nan close", []model.OHLCV{closeBar(0, math.NaN())}, 0, "close"},
		{"high below low", []model.OHLCV{bar(0, 11, 9, 10), bar(1, 8, 9, 8.5)}, 1, "high"},
		{"negative low", []model.OHLCV{bar(0, 11, -1, 10)}, 0, "low"},
		{"close above high", []model.OHLCV{bar(0, 11, 9, 12)}, 0, "close"},
		{"close below low", []model.OHLCV{bar(0, 11, 9, 8)}, 0, "close"},
		{"high without low", []model.OHLCV{{Time: day(0), High: model.Float(11), Close: 10}}, 0, "low"},
		{"low without high", []model.OHLCV{{Time: day(0), Low: model.Float(9), Close: 10}}, 0, "high"},
		{"nan high", []model.OHLCV{{Time: day(0), High: model.Float(math.NaN()), Low: model.Float(9), Close: 10}}, 0, "high"},
		{"missing date", []model.OHLCV{{High: model.Float(11), Low: model.Float(9), Close: 10}}, 0, "date"},
		{"duplicate date", []model.OHLCV{closeBar(0, 10), closeBar(1, 11), closeBar(1, 12)}, 2, "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New("BAD", tt.bars)
			require.Error(t, err)
			assert.Nil(t, s)

			var de *DataError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, "BAD", de.Symbol)
			assert.Equal(t, tt.row, de.Row)
			assert.Equal(t, tt.field, de.Field)
			assert.Contains(t, err.Error(), "series BAD")
		})
	}
}

func TestNew_EmptyInput(t *testing.T) {
	_, err := New("NONE", nil)
	var de *DataError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, -1, de.Row)
	assert.Equal(t, "series NONE: no price data", err.Error())
}

func TestSeries_AccessorsReturnCopies(t *testing.T) {
	s, err := New("AAPL", []model.OHLCV{closeBar(0, 10), closeBar(1, 11)})
	require.NoError(t, err)

	closes := s.Closes()
	closes[0] = 999
	points := s.Points()
	points[1].Close = 999

	assert.Equal(t, []float64{10, 11}, s.Closes())
}

func TestSeries_Slice(t *testing.T) {
	s, err := New("AAPL", []model.OHLCV{bar(0, 11, 9, 10), bar(1, 12, 10, 11), bar(2, 13, 11, 12)})
	require.NoError(t, err)

	tail := s.Slice(1)
	assert.Equal(t, 2, tail.Len())
	assert.Equal(t, []float64{11, 12}, tail.Closes())
	assert.Equal(t, s.Dates()[1], tail.Dates()[0])
	assert.True(t, tail.HasRange())
	assert.Equal(t, 3, s.Len())

	assert.Equal(t, 0, s.Slice(10).Len())
	assert.Equal(t, 3, s.Slice(-1).Len())
}
