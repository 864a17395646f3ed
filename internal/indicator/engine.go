// Package indicator computes moving averages, Bollinger Bands, RSI, MACD
// and the stochastic oscillator over a price series. Undefined values are
// NaN; nothing here fails on numeric edge cases.
package indicator

import (
	"fmt"

	"StockScope/internal/series"
)

// Column names that do not depend on a window size.
const (
	ColBBMiddle = "BB_Middle"
	ColBBUpper  = "BB_Upper"
	ColBBLower  = "BB_Lower"
	ColRSI      = "RSI"
	ColMACD     = "MACD"
	ColSignal   = "Signal"
	ColMACDHist = "MACD_Hist"
	ColK        = "%K"
	ColD        = "%D"
)

// MAColumn names the moving average column for window w.
func MAColumn(w int) string { return fmt.Sprintf("MA_%d", w) }

// EMAColumn names the exponential average column for span n.
func EMAColumn(n int) string { return fmt.Sprintf("EMA_%d", n) }

// Engine evaluates a validated Config against series.
type Engine struct {
	cfg Config
}

// NewEngine validates cfg. The returned error wraps one *ConfigError per
// bad parameter.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine's parameters.
func (e *Engine) Config() Config { return e.cfg }

// Compute evaluates every enabled indicator over s. Windows longer than
// the series produce all-undefined columns rather than an error.
func (e *Engine) Compute(s *series.Series) *Set {
	closes := s.Closes()
	set := NewSet(s.Dates())

	for _, kind := range Kinds {
		if !e.cfg.Enables(kind) {
			continue
		}
		switch kind {
		case KindMA:
			for _, w := range e.cfg.MAWindows {
				if set.Has(MAColumn(w)) {
					continue
				}
				set = set.With(MAColumn(w), SMA(closes, w))
			}
		case KindBollinger:
			bb := Bollinger(closes, e.cfg.BollingerWindow, e.cfg.BollingerK)
			set = set.With(ColBBMiddle, bb.Middle).
				With(ColBBUpper, bb.Upper).
				With(ColBBLower, bb.Lower)
		case KindRSI:
			set = set.With(ColRSI, RSI(closes, e.cfg.RSIPeriod))
		case KindMACD:
			m := MACD(closes, e.cfg.MACDFast, e.cfg.MACDSlow, e.cfg.MACDSignal)
			set = set.With(EMAColumn(e.cfg.MACDFast), m.Fast).
				With(EMAColumn(e.cfg.MACDSlow), m.Slow).
				With(ColMACD, m.MACD).
				With(ColSignal, m.Signal).
				With(ColMACDHist, m.Histogram)
		case KindStochastic:
			st := Stochastic(s.Highs(), s.Lows(), closes, e.cfg.StochPeriod, e.cfg.StochSignal)
			set = set.With(ColK, st.K).With(ColD, st.D)
		}
	}
	return set
}

// Compute is a one-shot NewEngine followed by Engine.Compute.
func Compute(s *series.Series, cfg Config) (*Set, error) {
	e, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	return e.Compute(s), nil
}
