package indicator

// MACDResult holds the two EMAs, their difference, its signal line and
// the histogram (MACD - Signal).
type MACDResult struct {
	Fast      []float64
	Slow      []float64
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes the moving average convergence/divergence of closes.
func MACD(closes []float64, fast, slow, signal int) MACDResult {
	r := MACDResult{
		Fast:      EMA(closes, fast),
		Slow:      EMA(closes, slow),
		MACD:      make([]float64, len(closes)),
		Histogram: make([]float64, len(closes)),
	}
	for i := range closes {
		r.MACD[i] = r.Fast[i] - r.Slow[i]
	}
	r.Signal = EMA(r.MACD, signal)
	for i := range closes {
		r.Histogram[i] = r.MACD[i] - r.Signal[i]
	}
	return r
}
