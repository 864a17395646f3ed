package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScope/internal/batch"
	"StockScope/internal/collector"
	"StockScope/internal/indicator"
	"StockScope/internal/metrics"
	"StockScope/internal/pipeline"
)

var fixedNow = time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)

type stubRunner struct {
	inner *pipeline.Pipeline
	last  pipeline.Request
	err   error
}

func (s *stubRunner) Run(ctx context.Context, req pipeline.Request) (*batch.Result, error) {
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return s.inner.Run(ctx, req)
}

func newTestServer(t *testing.T) (*Server, *stubRunner) {
	t.Helper()
	log := zerolog.Nop()
	reg := prometheus.NewRegistry()
	fetcher := &collector.MockFetcher{
		Price: 100,
		Errs:  map[string]error{"DOWN": errors.New("status 503")},
	}
	p := pipeline.New(
		collector.NewCollector(fetcher, 1000, log),
		batch.NewRunner(2, log),
		indicator.DefaultConfig(),
		metrics.New(reg),
		log,
	)
	runner := &stubRunner{inner: p}
	h := NewHandler(runner, []string{"AAPL"}, log)
	h.now = func() time.Time { return fixedNow }
	return NewServer(":0", h, reg, log), runner
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestIndicators(t *testing.T) {
	s, runner := newTestServer(t)
	rec := get(t, s, "/api/v1/indicators?symbols=msft,DOWN&start=2024-01-01&end=2024-03-29")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, []string{"MSFT", "DOWN"}, runner.last.Symbols)
	assert.Equal(t, "api", runner.last.Trigger)

	var body struct {
		Start    string `json:"start"`
		End      string `json:"end"`
		Results  []struct {
			Symbol     string                `json:"symbol"`
			Dates      []string              `json:"dates"`
			Close      []*float64            `json:"close"`
			Indicators map[string][]*float64 `json:"indicators"`
			Columns    []string              `json:"columns"`
		} `json:"results"`
		Failures []FailureResult `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2024-01-01", body.Start)
	assert.Equal(t, "2024-03-29", body.End)

	require.Len(t, body.Results, 1)
	r := body.Results[0]
	assert.Equal(t, "MSFT", r.Symbol)
	assert.Equal(t, "2024-01-01", r.Dates[0])
	assert.Equal(t, "2024-03-29", r.Dates[len(r.Dates)-1])
	assert.Len(t, r.Close, len(r.Dates))
	assert.Contains(t, r.Columns, "MA_20")
	assert.Contains(t, r.Columns, "%D")

	ma20 := r.Indicators["MA_20"]
	require.Len(t, ma20, len(r.Dates))
	assert.Nil(t, ma20[18])
	assert.NotNil(t, ma20[19])

	require.Len(t, body.Failures, 1)
	assert.Equal(t, "DOWN", body.Failures[0].Symbol)
	assert.Contains(t, body.Failures[0].Error, "503")
}

func TestIndicators_DefaultsAndTrim(t *testing.T) {
	s, runner := newTestServer(t)
	rec := get(t, s, "/api/v1/indicators?trim=true")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, []string{"AAPL"}, runner.last.Symbols)
	assert.Equal(t, fixedNow, runner.last.End)
	assert.Equal(t, fixedNow.AddDate(0, 0, -365), runner.last.Start)

	var body IndicatorsResponse
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.NoError(t, json.Unmarshal(raw["failures"], &body.Failures))
	assert.Empty(t, body.Failures)
	assert.NotContains(t, string(raw["results"]), "null")

	var results []struct {
		Dates []string  `json:"dates"`
		Close []float64 `json:"close"`
	}
	require.NoError(t, json.Unmarshal(raw["results"], &results))
	require.Len(t, results, 1)
	assert.Len(t, results[0].Close, len(results[0].Dates))
}

func TestIndicators_BadRequest(t *testing.T) {
	s, _ := newTestServer(t)
	cases := []struct {
		name  string
		query string
		code  string
	}{
		{"bad start", "start=01/02/2024", "ERR_DATETIME"},
		{"bad end", "end=yesterday", "ERR_DATETIME"},
		{"lookback too small", "lookback=-3", "ERR_GTE"},
		{"explicit zero lookback", "lookback=0", "ERR_GTE"},
		{"inverted range", "start=2024-05-01&end=2024-01-01", "ERR_RANGE"},
		{"bad trim", "trim=maybe", "ERR_UNKNOWN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(t, s, "/api/v1/indicators?"+tc.query)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			var body map[string][]ValidationError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.NotEmpty(t, body["errors"])
			assert.Equal(t, tc.code, body["errors"][0].Code)
		})
	}
}

func TestIndicators_RunError(t *testing.T) {
	s, runner := newTestServer(t)
	runner.err = errors.New("collect: context canceled")
	rec := get(t, s, "/api/v1/indicators")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	require.Equal(t, http.StatusOK, get(t, s, "/api/v1/indicators?symbols=AAPL").Code)

	rec := get(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `stockscope_instruments_total{outcome="ok"} 1`)
	assert.Contains(t, rec.Body.String(), `stockscope_runs_total{trigger="api"} 1`)
}

func TestValuesMarshalJSON(t *testing.T) {
	b, err := json.Marshal(Values{1.5, math.NaN(), 2, math.Inf(1)})
	require.NoError(t, err)
	assert.Equal(t, `[1.5,null,2,null]`, string(b))

	b, err = json.Marshal(Values{})
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(b))
}

func TestRequestID(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/healthz")
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
}
