package series

import "fmt"

// DataError reports a malformed input row or series for one instrument.
type DataError struct {
	Symbol string
	Row    int // index in the caller's input, -1 when the whole series is affected
	Field  string
	Value  string
	Reason string
}

func (e *DataError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("series %s: %s", e.Symbol, e.Reason)
	}
	if e.Value == "" {
		return fmt.Sprintf("series %s: row %d: %s: %s", e.Symbol, e.Row, e.Field, e.Reason)
	}
	return fmt.Sprintf("series %s: row %d: %s: %s (got %s)", e.Symbol, e.Row, e.Field, e.Reason, e.Value)
}

func rowError(symbol string, row int, field string, value float64, reason string) *DataError {
	return &DataError{
		Symbol: symbol,
		Row:    row,
		Field:  field,
		Value:  fmt.Sprintf("%g", value),
		Reason: reason,
	}
}
