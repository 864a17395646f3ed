// Package batch applies the indicator engine to every instrument of a
// series store, keeping one instrument's failure away from the others.
package batch

import (
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"StockScope/internal/indicator"
	"StockScope/internal/series"
)

// DefaultWorkers bounds concurrent per-instrument passes when none is given.
const DefaultWorkers = 4

// Runner evaluates one shared indicator configuration over many instruments.
type Runner struct {
	workers int
	log     zerolog.Logger
}

// NewRunner creates a Runner running at most workers instruments at once.
func NewRunner(workers int, log zerolog.Logger) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Runner{workers: workers, log: log.With().Str("component", "batch").Logger()}
}

type outcome struct {
	entry Entry
	err   error
}

// Run computes cfg for every store entry. Store-level errors and config
// errors are recorded per instrument; the returned Result always covers
// every symbol of the store, either as an entry or as a failure.
func (r *Runner) Run(store *series.Store, cfg indicator.Config) *Result {
	engine, cfgErr := indicator.NewEngine(cfg)

	inputs := store.Entries()
	outcomes := make([]outcome, len(inputs))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, in := range inputs {
		g.Go(func() error {
			outcomes[i] = evaluate(engine, cfgErr, in)
			return nil
		})
	}
	_ = g.Wait()

	res := newResult(len(inputs))
	for i, o := range outcomes {
		sym := inputs[i].Symbol
		if o.err != nil {
			r.log.Warn().Str("symbol", sym).Err(o.err).Msg("instrument failed")
			res.failures = append(res.failures, Failure{Symbol: sym, Err: o.err})
			continue
		}
		res.add(o.entry)
	}

	r.log.Debug().
		Int("instruments", len(inputs)).
		Int("computed", res.Len()).
		Int("failed", len(res.failures)).
		Msg("batch complete")
	return res
}

func evaluate(engine *indicator.Engine, cfgErr error, in series.Entry) (out outcome) {
	if in.Err != nil {
		return outcome{err: in.Err}
	}
	if cfgErr != nil {
		return outcome{err: cfgErr}
	}
	defer func() {
		if p := recover(); p != nil {
			out = outcome{err: fmt.Errorf("compute indicators: panic: %v", p)}
		}
	}()
	return outcome{entry: Entry{
		Symbol:     in.Symbol,
		Series:     in.Series,
		Indicators: engine.Compute(in.Series),
	}}
}
