package api

import (
	"math"
	"strconv"
	"time"

	"StockScope/internal/batch"
)

// IndicatorsRequest is the query of GET /api/v1/indicators.
type IndicatorsRequest struct {
	Symbols  string `query:"symbols" json:"symbols"`
	Start    string `query:"start" json:"start" validate:"omitempty,datetime=2006-01-02"`
	End      string `query:"end" json:"end" validate:"omitempty,datetime=2006-01-02"`
	Trim     bool   `query:"trim" json:"trim"`
	Lookback int    `query:"lookback" json:"lookback" default:"365" validate:"gte=1,lte=7300"`
}

// Values is a numeric column whose undefined entries encode as null.
type Values []float64

func (v Values) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, len(v)*8+2)
	buf = append(buf, '[')
	for i, x := range v {
		if i > 0 {
			buf = append(buf, ',')
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			buf = append(buf, "null"...)
			continue
		}
		buf = strconv.AppendFloat(buf, x, 'g', -1, 64)
	}
	return append(buf, ']'), nil
}

// InstrumentResult is one computed instrument.
type InstrumentResult struct {
	Symbol     string            `json:"symbol"`
	Dates      []string          `json:"dates"`
	Close      Values            `json:"close"`
	Indicators map[string]Values `json:"indicators"`
	Columns    []string          `json:"columns"`
}

// FailureResult is one failed instrument.
type FailureResult struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// IndicatorsResponse is the body of GET /api/v1/indicators.
type IndicatorsResponse struct {
	Start    string             `json:"start"`
	End      string             `json:"end"`
	Results  []InstrumentResult `json:"results"`
	Failures []FailureResult    `json:"failures"`
}

// ValidationError describes one rejected query parameter.
type ValidationError struct {
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

// NewIndicatorsResponse converts a batch result.
func NewIndicatorsResponse(res *batch.Result, start, end time.Time) IndicatorsResponse {
	out := IndicatorsResponse{
		Start:    start.Format(time.DateOnly),
		End:      end.Format(time.DateOnly),
		Results:  make([]InstrumentResult, 0, res.Len()),
		Failures: make([]FailureResult, 0, len(res.Failures())),
	}
	for _, e := range res.Entries() {
		set := e.Indicators
		dates := set.Dates()

		r := InstrumentResult{
			Symbol:     e.Symbol,
			Dates:      make([]string, len(dates)),
			Close:      e.Series.Closes(),
			Indicators: make(map[string]Values, len(set.Names())),
			Columns:    set.Names(),
		}
		for i, d := range dates {
			r.Dates[i] = d.Format(time.DateOnly)
		}
		for _, name := range r.Columns {
			col, _ := set.Column(name)
			r.Indicators[name] = col
		}
		out.Results = append(out.Results, r)
	}
	for _, f := range res.Failures() {
		out.Failures = append(out.Failures, FailureResult{Symbol: f.Symbol, Error: f.Err.Error()})
	}
	return out
}
