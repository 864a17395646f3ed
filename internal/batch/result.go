package batch

import (
	"errors"
	"fmt"

	"StockScope/internal/indicator"
	"StockScope/internal/series"
)

// Entry is the computed output for one instrument.
type Entry struct {
	Symbol     string
	Series     *series.Series
	Indicators *indicator.Set
}

// Failure records why one instrument has no Entry.
type Failure struct {
	Symbol string
	Err    error
}

func (f Failure) Error() string { return fmt.Sprintf("%s: %v", f.Symbol, f.Err) }
func (f Failure) Unwrap() error { return f.Err }

// Result maps instruments to their computed entries in input order,
// alongside the instruments that failed.
type Result struct {
	order    []string
	entries  map[string]Entry
	failures []Failure
}

func newResult(n int) *Result {
	return &Result{entries: make(map[string]Entry, n)}
}

func (r *Result) add(e Entry) {
	r.order = append(r.order, e.Symbol)
	r.entries[e.Symbol] = e
}

// Get returns the entry for symbol.
func (r *Result) Get(symbol string) (Entry, bool) {
	e, ok := r.entries[symbol]
	return e, ok
}

// Symbols lists successful instruments in input order.
func (r *Result) Symbols() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Entries lists successful entries in input order.
func (r *Result) Entries() []Entry {
	out := make([]Entry, len(r.order))
	for i, sym := range r.order {
		out[i] = r.entries[sym]
	}
	return out
}

// Failures lists failed instruments in input order.
func (r *Result) Failures() []Failure {
	out := make([]Failure, len(r.failures))
	copy(out, r.failures)
	return out
}

// Len is the number of successful entries.
func (r *Result) Len() int { return len(r.order) }

// Err joins all failures, nil when every instrument succeeded.
func (r *Result) Err() error {
	errs := make([]error, len(r.failures))
	for i, f := range r.failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// TrimWarmup returns a copy of r without each entry's warm-up prefix. The
// same rows are dropped from the Series and the indicator Set, so both
// stay aligned by position.
func (r *Result) TrimWarmup() *Result {
	out := newResult(len(r.order))
	for _, sym := range r.order {
		e := r.entries[sym]
		n := e.Indicators.WarmupLen()
		e.Series = e.Series.Slice(n)
		e.Indicators = e.Indicators.Slice(n)
		out.add(e)
	}
	out.failures = append(out.failures, r.failures...)
	return out
}
