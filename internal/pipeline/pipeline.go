// Package pipeline runs one fetch-and-compute pass: collect price history,
// evaluate indicators per instrument and record the outcome.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"StockScope/internal/batch"
	"StockScope/internal/collector"
	"StockScope/internal/indicator"
	"StockScope/internal/metrics"
	"StockScope/internal/series"
)

// Request selects the instruments and date range of one run.
type Request struct {
	Symbols []string
	Start   time.Time
	End     time.Time
	Trigger string
}

// Pipeline wires a collector to a batch runner with a fixed indicator config.
type Pipeline struct {
	collector *collector.Collector
	runner    *batch.Runner
	cfg       indicator.Config
	metrics   *metrics.Recorder
	log       zerolog.Logger
}

// New creates a Pipeline. rec may be nil.
func New(col *collector.Collector, runner *batch.Runner, cfg indicator.Config, rec *metrics.Recorder, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		collector: col,
		runner:    runner,
		cfg:       cfg,
		metrics:   rec,
		log:       log.With().Str("component", "pipeline").Logger(),
	}
}

// Run fetches req.Symbols over [req.Start, req.End] and computes every
// enabled indicator. Per-instrument failures are part of the Result; the
// error is non-nil only when the run as a whole could not proceed.
func (p *Pipeline) Run(ctx context.Context, req Request) (*batch.Result, error) {
	if len(req.Symbols) == 0 {
		return nil, errors.New("no symbols requested")
	}
	if !req.Start.Before(req.End) {
		return nil, fmt.Errorf("start %s is not before end %s",
			req.Start.Format(time.DateOnly), req.End.Format(time.DateOnly))
	}
	trigger := req.Trigger
	if trigger == "" {
		trigger = "manual"
	}

	log := p.log.With().Str("run_id", uuid.NewString()).Str("trigger", trigger).Logger()
	log.Debug().Strs("symbols", req.Symbols).Msg("run started")

	began := time.Now()
	store, err := p.collector.Collect(ctx, req.Symbols, req.Start, req.End)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	res := p.runner.Run(store, p.cfg)
	elapsed := time.Since(began)

	p.record(trigger, elapsed, res)
	log.Info().
		Int("computed", res.Len()).
		Int("failed", len(res.Failures())).
		Dur("elapsed", elapsed).
		Msg("run complete")
	return res, nil
}

func (p *Pipeline) record(trigger string, elapsed time.Duration, res *batch.Result) {
	if p.metrics == nil {
		return
	}
	p.metrics.RecordRun(trigger, elapsed.Seconds())
	for _, e := range res.Entries() {
		p.metrics.RecordInstrument("ok")
		if n := e.Series.Len(); n > 0 {
			p.metrics.RecordLastClose(e.Symbol, e.Series.Point(n-1).Close)
		}
	}
	for _, f := range res.Failures() {
		p.metrics.RecordInstrument(Outcome(f.Err))
	}
}

// Outcome classifies a per-instrument failure as data, config or fetch.
func Outcome(err error) string {
	var dataErr *series.DataError
	var cfgErr *indicator.ConfigError
	switch {
	case errors.As(err, &dataErr):
		return "data"
	case errors.As(err, &cfgErr):
		return "config"
	default:
		return "fetch"
	}
}
