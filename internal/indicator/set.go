package indicator

import (
	"fmt"
	"math"
	"time"
)

// Set holds named indicator columns aligned 1:1 with one series. A Set is
// never modified in place: With returns a new Set and columns are copied
// on the way out.
type Set struct {
	dates []time.Time
	names []string
	cols  map[string][]float64
}

// NewSet creates an empty Set over the given date index.
func NewSet(dates []time.Time) *Set {
	d := make([]time.Time, len(dates))
	copy(d, dates)
	return &Set{dates: d, cols: map[string][]float64{}}
}

// Undefined reports whether v is the undefined marker.
func Undefined(v float64) bool { return math.IsNaN(v) }

// With returns a new Set that also holds values under name, replacing a
// column of the same name. It panics if len(values) != s.Len().
func (s *Set) With(name string, values []float64) *Set {
	if len(values) != len(s.dates) {
		panic(fmt.Sprintf("indicator: column %s has %d values, set has %d rows", name, len(values), len(s.dates)))
	}
	out := &Set{
		dates: s.dates,
		names: make([]string, 0, len(s.names)+1),
		cols:  make(map[string][]float64, len(s.cols)+1),
	}
	out.names = append(out.names, s.names...)
	for k, v := range s.cols {
		out.cols[k] = v
	}
	if _, ok := out.cols[name]; !ok {
		out.names = append(out.names, name)
	}
	col := make([]float64, len(values))
	copy(col, values)
	out.cols[name] = col
	return out
}

func (s *Set) Len() int { return len(s.dates) }

// Dates returns the shared date index.
func (s *Set) Dates() []time.Time {
	out := make([]time.Time, len(s.dates))
	copy(out, s.dates)
	return out
}

// Names returns column names in the order they were added.
func (s *Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Has reports whether the set holds a column called name.
func (s *Set) Has(name string) bool {
	_, ok := s.cols[name]
	return ok
}

// Column returns a copy of the named column.
func (s *Set) Column(name string) ([]float64, bool) {
	col, ok := s.cols[name]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(col))
	copy(out, col)
	return out, true
}

// At returns the value of name at row i, NaN if the column does not exist.
func (s *Set) At(name string, i int) float64 {
	col, ok := s.cols[name]
	if !ok || i < 0 || i >= len(col) {
		return math.NaN()
	}
	return col[i]
}

// Last returns the most recent value of name.
func (s *Set) Last(name string) float64 {
	return s.At(name, len(s.dates)-1)
}

// WarmupLen is the length of the longest leading run of rows in which at
// least one column is undefined.
func (s *Set) WarmupLen() int {
	n := 0
	for _, col := range s.cols {
		lead := 0
		for lead < len(col) && Undefined(col[lead]) {
			lead++
		}
		if lead > n {
			n = lead
		}
	}
	return n
}

// TrimWarmup returns a new Set without the warm-up prefix. Undefined
// values after the prefix (zero-range windows, flat RSI) are kept.
func (s *Set) TrimWarmup() *Set {
	return s.Slice(s.WarmupLen())
}

// Slice returns a new Set holding rows [from, Len()).
func (s *Set) Slice(from int) *Set {
	if from < 0 {
		from = 0
	}
	if from > len(s.dates) {
		from = len(s.dates)
	}
	out := &Set{
		dates: append([]time.Time(nil), s.dates[from:]...),
		names: append([]string(nil), s.names...),
		cols:  make(map[string][]float64, len(s.cols)),
	}
	for k, v := range s.cols {
		out.cols[k] = append([]float64(nil), v[from:]...)
	}
	return out
}
