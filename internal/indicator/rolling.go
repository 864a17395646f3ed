package indicator

import "math"

func undefinedSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// window applies fn to every full trailing window of size w. A window that
// contains an undefined value yields undefined, and so do the first w-1
// positions. A window longer than values leaves everything undefined.
func window(values []float64, w int, fn func(win []float64) float64) []float64 {
	out := undefinedSlice(len(values))
	if w <= 0 {
		return out
	}
	for i := w - 1; i < len(values); i++ {
		win := values[i-w+1 : i+1]
		if hasUndefined(win) {
			continue
		}
		out[i] = fn(win)
	}
	return out
}

func hasUndefined(win []float64) bool {
	for _, v := range win {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// flat reports whether every value in win equals the first.
func flat(win []float64) bool {
	for _, v := range win[1:] {
		if v != win[0] {
			return false
		}
	}
	return true
}

// mean is exact on a flat window, where summing would round.
func mean(win []float64) float64 {
	if flat(win) {
		return win[0]
	}
	sum := 0.0
	for _, v := range win {
		sum += v
	}
	return sum / float64(len(win))
}

// sampleStd uses the n-1 denominator; a single observation has none.
func sampleStd(win []float64) float64 {
	if len(win) < 2 {
		return math.NaN()
	}
	if flat(win) {
		return 0
	}
	m := mean(win)
	ss := 0.0
	for _, v := range win {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(win)-1))
}

func maxOf(win []float64) float64 {
	m := win[0]
	for _, v := range win[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(win []float64) float64 {
	m := win[0]
	for _, v := range win[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// SMA is the trailing arithmetic mean over w positions.
func SMA(values []float64, w int) []float64 { return window(values, w, mean) }

// RollingStd is the trailing sample standard deviation over w positions.
func RollingStd(values []float64, w int) []float64 { return window(values, w, sampleStd) }

func RollingMax(values []float64, w int) []float64 { return window(values, w, maxOf) }
func RollingMin(values []float64, w int) []float64 { return window(values, w, minOf) }

// EMA is the exponential moving average with alpha = 2/(n+1), seeded with
// the first defined value. Positions before the seed are undefined; an
// undefined input after the seed carries the previous average forward.
func EMA(values []float64, n int) []float64 {
	out := undefinedSlice(len(values))
	if n <= 0 {
		return out
	}
	alpha := 2.0 / float64(n+1)
	seeded := false
	for i, v := range values {
		switch {
		case !seeded && math.IsNaN(v):
			continue
		case !seeded:
			out[i] = v
			seeded = true
		case math.IsNaN(v):
			out[i] = out[i-1]
		default:
			out[i] = alpha*v + (1-alpha)*out[i-1]
		}
	}
	return out
}
