package indicator

import "math"

// StochasticResult holds the %K and %D lines.
type StochasticResult struct {
	K []float64
	D []float64
}

// Stochastic computes %K over a trailing window of period bars and %D as
// the simple mean of %K over signal bars. %K is undefined when the
// window's highest high equals its lowest low.
func Stochastic(highs, lows, closes []float64, period, signal int) StochasticResult {
	hh := RollingMax(highs, period)
	ll := RollingMin(lows, period)

	k := undefinedSlice(len(closes))
	for i, c := range closes {
		if math.IsNaN(hh[i]) || math.IsNaN(ll[i]) || hh[i] == ll[i] {
			continue
		}
		k[i] = (c - ll[i]) / (hh[i] - ll[i]) * 100
	}
	return StochasticResult{K: k, D: SMA(k, signal)}
}
