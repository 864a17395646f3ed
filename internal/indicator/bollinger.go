package indicator

// BollingerBands holds the middle band (trailing mean) and the bands k
// sample standard deviations above and below it.
type BollingerBands struct {
	Middle []float64
	Upper  []float64
	Lower  []float64
}

// Bollinger computes bands over a trailing window of w closes.
func Bollinger(closes []float64, w int, k float64) BollingerBands {
	mid := SMA(closes, w)
	std := RollingStd(closes, w)
	bb := BollingerBands{
		Middle: mid,
		Upper:  make([]float64, len(closes)),
		Lower:  make([]float64, len(closes)),
	}
	for i := range closes {
		bb.Upper[i] = mid[i] + k*std[i]
		bb.Lower[i] = mid[i] - k*std[i]
	}
	return bb
}
