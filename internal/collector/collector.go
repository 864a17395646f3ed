// Package collector fetches daily price history from a data source and
// loads it into a series store.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"StockScope/internal/model"
	"StockScope/internal/series"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Data  map[string][]model.OHLCV
	Errs  map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Data[symbol]; ok {
		return bars, nil
	}
	return generateMockBars(m.Price, start, end), nil
}

// generateMockBars produces a gently rising weekday series between start and end.
func generateMockBars(basePrice float64, start, end time.Time) []model.OHLCV {
	var bars []model.OHLCV
	i := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		p := basePrice * (1 + float64(i%40-20)*0.001 + float64(i)*0.0005)
		bars = append(bars, model.OHLCV{
			Time:   d,
			Open:   model.Float(p * 0.999),
			High:   model.Float(p * 1.005),
			Low:    model.Float(p * 0.995),
			Close:  p,
			Volume: model.Float(1000000),
		})
		i++
	}
	return bars
}

// Collector orchestrates rate-limited fetching for a list of symbols.
type Collector struct {
	Fetcher Fetcher
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewCollector creates a Collector issuing at most rps requests per second.
func NewCollector(fetcher Fetcher, rps float64, log zerolog.Logger) *Collector {
	return &Collector{
		Fetcher: fetcher,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		log:     log.With().Str("component", "collector").Str("source", fetcher.Name()).Logger(),
	}
}

// Collect fetches every symbol for [start, end] and loads the bars into a
// new store. A fetch or validation failure is recorded against its symbol
// and collection continues; only context cancellation aborts.
func (c *Collector) Collect(ctx context.Context, symbols []string, start, end time.Time) (*series.Store, error) {
	store := series.NewStore()
	for _, sym := range symbols {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("collect %s: %w", sym, err)
		}

		bars, err := c.Fetcher.FetchDailyBars(ctx, sym, start, end)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("collect %s: %w", sym, ctx.Err())
			}
			c.log.Warn().Str("symbol", sym).Err(err).Msg("fetch failed")
			store.Fail(sym, fmt.Errorf("fetch daily bars: %w", err))
			continue
		}

		bars = clip(bars, start, end)
		if err := store.Add(sym, bars); err != nil {
			c.log.Warn().Str("symbol", sym).Err(err).Msg("rejected price data")
			continue
		}
		c.log.Debug().Str("symbol", sym).Int("rows", len(bars)).Msg("collected")
	}
	return store, nil
}

// clip drops bars whose calendar day falls outside [start, end].
func clip(bars []model.OHLCV, start, end time.Time) []model.OHLCV {
	from := start.Format(time.DateOnly)
	to := end.Format(time.DateOnly)
	out := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		d := b.Time.Format(time.DateOnly)
		if d < from || d > to {
			continue
		}
		out = append(out, b)
	}
	return out
}
