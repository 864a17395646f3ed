package collector

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"StockScope/internal/model"
)

// Fetcher defines the interface for fetching daily market data.
type Fetcher interface {
	// FetchDailyBars returns daily bars for symbol between start and end,
	// both inclusive, in any order.
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error)
	Name() string
}

// newHTTPClient builds a client with optional proxy support.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}
