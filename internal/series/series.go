// Package series turns raw daily bars into validated, date-ordered price
// series and keeps them per instrument.
package series

import (
	"math"
	"sort"
	"time"

	"StockScope/internal/model"
)

// PricePoint is one validated daily observation. High and Low are NaN
// when the owning series carries no range.
type PricePoint struct {
	Date  time.Time
	Close float64
	High  float64
	Low   float64
}

// Series is an immutable, strictly date-ascending price series for one
// instrument. Missing trading days are simply absent.
type Series struct {
	symbol   string
	points   []PricePoint
	hasRange bool
}

type indexedBar struct {
	row int
	day time.Time
	bar model.OHLCV
}

// New validates bars and builds a Series sorted by calendar day. A bar's
// day is its date in its own time location, so exchange-local timestamps
// keep their trading day. Bars may arrive in any order; the row numbers
// in a returned *DataError refer to the caller's slice.
func New(symbol string, bars []model.OHLCV) (*Series, error) {
	if symbol == "" {
		return nil, &DataError{Symbol: symbol, Row: -1, Reason: "empty symbol"}
	}
	if len(bars) == 0 {
		return nil, &DataError{Symbol: symbol, Row: -1, Reason: "no price data"}
	}

	rows := make([]indexedBar, len(bars))
	hasRange := true
	for i, b := range bars {
		if err := validateBar(symbol, i, b); err != nil {
			return nil, err
		}
		if !b.HasRange() {
			hasRange = false
		}
		rows[i] = indexedBar{row: i, day: calendarDay(b.Time), bar: b}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].day.Equal(rows[j].day) {
			return rows[i].day.Before(rows[j].day)
		}
		return rows[i].bar.Time.Before(rows[j].bar.Time)
	})

	points := make([]PricePoint, len(rows))
	for i, r := range rows {
		p := PricePoint{
			Date:  r.day,
			Close: r.bar.Close,
			High:  math.NaN(),
			Low:   math.NaN(),
		}
		if hasRange {
			p.High, p.Low = *r.bar.High, *r.bar.Low
		}
		if i > 0 && !p.Date.After(points[i-1].Date) {
			return nil, &DataError{
				Symbol: symbol,
				Row:    r.row,
				Field:  "date",
				Value:  p.Date.Format(time.DateOnly),
				Reason: "duplicate date",
			}
		}
		points[i] = p
	}

	return &Series{symbol: symbol, points: points, hasRange: hasRange}, nil
}

func validateBar(symbol string, row int, b model.OHLCV) error {
	if b.Time.IsZero() {
		return &DataError{Symbol: symbol, Row: row, Field: "date", Reason: "missing"}
	}
	if math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
		return rowError(symbol, row, "close", b.Close, "not a finite number")
	}
	if b.Close <= 0 {
		return rowError(symbol, row, "close", b.Close, "must be positive")
	}

	switch {
	case b.High == nil && b.Low == nil:
		return nil
	case b.High == nil:
		return &DataError{Symbol: symbol, Row: row, Field: "high", Reason: "missing while low is present"}
	case b.Low == nil:
		return &DataError{Symbol: symbol, Row: row, Field: "low", Reason: "missing while high is present"}
	}

	high, low := *b.High, *b.Low
	if math.IsNaN(high) || math.IsInf(high, 0) {
		return rowError(symbol, row, "high", high, "not a finite number")
	}
	if math.IsNaN(low) || math.IsInf(low, 0) {
		return rowError(symbol, row, "low", low, "not a finite number")
	}
	if low < 0 {
		return rowError(symbol, row, "low", low, "must not be negative")
	}
	if high < low {
		return rowError(symbol, row, "high", high, "below low")
	}
	if b.Close > high {
		return rowError(symbol, row, "close", b.Close, "above high")
	}
	if b.Close < low {
		return rowError(symbol, row, "close", b.Close, "below low")
	}
	return nil
}

// calendarDay strips the clock from t, keeping the day as seen in t's
// location, and returns it as midnight UTC.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Series) Symbol() string { return s.symbol }
func (s *Series) Len() int       { return len(s.points) }

// HasRange reports whether every point carries High and Low.
func (s *Series) HasRange() bool { return s.hasRange }

// Point returns the i-th observation.
func (s *Series) Point(i int) PricePoint { return s.points[i] }

// Points returns a copy of all observations.
func (s *Series) Points() []PricePoint {
	out := make([]PricePoint, len(s.points))
	copy(out, s.points)
	return out
}

func (s *Series) Dates() []time.Time {
	out := make([]time.Time, len(s.points))
	for i, p := range s.points {
		out[i] = p.Date
	}
	return out
}

func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Close
	}
	return out
}

// Highs returns the daily highs, or the closes when the series has no range.
func (s *Series) Highs() []float64 {
	if !s.hasRange {
		return s.Closes()
	}
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.High
	}
	return out
}

// Lows returns the daily lows, or the closes when the series has no range.
func (s *Series) Lows() []float64 {
	if !s.hasRange {
		return s.Closes()
	}
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Low
	}
	return out
}

// Slice returns a new Series holding points [from, Len()). from is
// clamped to the series bounds.
func (s *Series) Slice(from int) *Series {
	from = min(max(from, 0), len(s.points))
	points := make([]PricePoint, len(s.points)-from)
	copy(points, s.points[from:])
	return &Series{symbol: s.symbol, points: points, hasRange: s.hasRange}
}
