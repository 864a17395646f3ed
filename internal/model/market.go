package model

import "time"

// OHLCV represents a single daily bar as delivered by a data source.
// Open, High, Low and Volume are optional; nil means the source did not
// provide them.
type OHLCV struct {
	Time   time.Time
	Open   *float64
	High   *float64
	Low    *float64
	Close  float64
	Volume *float64
}

// HasRange reports whether both High and Low are present.
func (b OHLCV) HasRange() bool {
	return b.High != nil && b.Low != nil
}

// Float returns a pointer to v, for filling optional OHLCV fields.
func Float(v float64) *float64 { return &v }

// PriceHistory holds the raw bars fetched for one symbol.
type PriceHistory struct {
	Symbol    string
	Bars      []OHLCV
	Start     time.Time
	End       time.Time
	FetchedAt time.Time
}
