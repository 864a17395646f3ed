package series

import "StockScope/internal/model"

// Entry is one instrument slot in a Store: either a Series or the error
// that prevented building it.
type Entry struct {
	Symbol string
	Series *Series
	Err    error
}

// Store keeps one entry per instrument in insertion order. It is filled by
// a single goroutine and read-only afterwards.
type Store struct {
	order   []string
	entries map[string]Entry
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]Entry)}
}

// FromHistories builds a Store from fetched histories. Malformed
// histories are kept as failed entries.
func FromHistories(histories []model.PriceHistory) *Store {
	st := NewStore()
	for _, h := range histories {
		_ = st.Add(h.Symbol, h.Bars)
	}
	return st
}

// Add validates bars for symbol and stores the result. A validation
// failure is recorded against symbol and also returned.
func (st *Store) Add(symbol string, bars []model.OHLCV) error {
	s, err := New(symbol, bars)
	if err != nil {
		st.put(Entry{Symbol: symbol, Err: err})
		return err
	}
	st.put(Entry{Symbol: symbol, Series: s})
	return nil
}

// Fail records an externally produced failure (e.g. a fetch error) for symbol.
func (st *Store) Fail(symbol string, err error) {
	st.put(Entry{Symbol: symbol, Err: err})
}

func (st *Store) put(e Entry) {
	if _, ok := st.entries[e.Symbol]; !ok {
		st.order = append(st.order, e.Symbol)
	}
	st.entries[e.Symbol] = e
}

// Get returns the entry for symbol.
func (st *Store) Get(symbol string) (Entry, bool) {
	e, ok := st.entries[symbol]
	return e, ok
}

// Entries returns all entries in insertion order.
func (st *Store) Entries() []Entry {
	out := make([]Entry, len(st.order))
	for i, sym := range st.order {
		out[i] = st.entries[sym]
	}
	return out
}

func (st *Store) Symbols() []string {
	out := make([]string, len(st.order))
	copy(out, st.order)
	return out
}

func (st *Store) Len() int { return len(st.order) }
