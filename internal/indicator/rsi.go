package indicator

import "math"

// RSI computes the relative strength index from simple rolling means of
// gains and losses over period deltas. It is undefined for the first
// period positions and wherever both averages are zero.
func RSI(closes []float64, period int) []float64 {
	n := len(closes)
	gain := undefinedSlice(n)
	loss := undefinedSlice(n)
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		gain[i] = math.Max(delta, 0)
		loss[i] = math.Max(-delta, 0)
	}

	avgGain := SMA(gain, period)
	avgLoss := SMA(loss, period)

	out := undefinedSlice(n)
	for i := range out {
		g, l := avgGain[i], avgLoss[i]
		switch {
		case math.IsNaN(g) || math.IsNaN(l):
		case l == 0 && g == 0:
		case l == 0:
			out[i] = 100
		default:
			out[i] = 100 - 100/(1+g/l)
		}
	}
	return out
}
