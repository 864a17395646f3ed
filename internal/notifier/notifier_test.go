package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScope/internal/batch"
	"StockScope/internal/indicator"
	"StockScope/internal/model"
	"StockScope/internal/series"
)

func testResult(t *testing.T) *batch.Result {
	t.Helper()
	store := series.NewStore()
	var bars []model.OHLCV
	for i := 0; i < 30; i++ {
		p := 100 + float64(i)
		bars = append(bars, model.OHLCV{
			Time:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			High:  model.Float(p + 1),
			Low:   model.Float(p - 1),
			Close: p,
		})
	}
	require.NoError(t, store.Add("AAPL", bars))
	store.Fail("DOWN", errors.New("fetch daily bars: status 503"))
	return batch.NewRunner(1, zerolog.Nop()).Run(store, indicator.DefaultConfig())
}

func TestFormatReport(t *testing.T) {
	res := testResult(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := FormatReport(res, start, start.AddDate(0, 0, 29))

	assert.Contains(t, out, "2024-01-01 → 2024-01-30")
	assert.Contains(t, out, "<b>AAPL</b> 2024-01-30 close 129.00 (30 rows)")
	assert.Contains(t, out, "MA_20 119.50 | MA_50 n/a")
	assert.Contains(t, out, "RSI 100.00 (overbought)")
	assert.Contains(t, out, "%K ")
	assert.Contains(t, out, "DOWN: fetch daily bars: status 503")
}

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in      string
		want    Command
		wantErr bool
	}{
		{in: "/report", want: Command{Name: CmdReport}},
		{in: "/report@scope_bot", want: Command{Name: CmdReport}},
		{in: "/ind msft", want: Command{Name: CmdInd, Symbol: "MSFT"}},
		{in: "/ind AAPL 2023-01-01 2023-06-30", want: Command{
			Name:   CmdInd,
			Symbol: "AAPL",
			Start:  time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			End:    time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC),
		}},
		{in: "/ind", wantErr: true},
		{in: "/ind AAPL 01/02/2023", wantErr: true},
		{in: "hello", want: Command{Name: CmdHelp}},
		{in: "", want: Command{Name: CmdHelp}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseCommand(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTelegramNotifier_Send(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "", zerolog.Nop())
	tn.BaseURL = srv.URL
	require.NoError(t, tn.Send(context.Background(), "hi"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "hi", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestTelegramNotifier_SendWithRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "", zerolog.Nop())
	tn.BaseURL = srv.URL
	require.NoError(t, tn.SendWithRetry(context.Background(), "hi", 2))
	assert.Equal(t, int32(2), calls.Load())
}

func TestTelegramNotifier_SendWithRetryExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "", zerolog.Nop())
	tn.BaseURL = srv.URL
	err := tn.SendWithRetry(context.Background(), "hi", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestTelegramNotifier_StartPolling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	replies := make(chan string, 1)
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/botTOKEN/getUpdates", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) == 1 {
			w.Write([]byte(`{"ok":true,"result":[{"update_id":7,"message":{"text":" /report "}}]}`))
			return
		}
		assert.Equal(t, "8", r.URL.Query().Get("offset"))
		w.Write([]byte(`{"ok":true,"result":[]}`))
	})
	mux.HandleFunc("/botTOKEN/sendMessage", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		replies <- body["text"]
		w.Write([]byte(`{"ok":true}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "", zerolog.Nop())
	tn.BaseURL = srv.URL

	done := make(chan struct{})
	go func() {
		tn.StartPolling(ctx, func(_ context.Context, cmd string) string {
			return "got " + cmd
		})
		close(done)
	}()

	select {
	case reply := <-replies:
		assert.Equal(t, "got /report", reply)
	case <-time.After(5 * time.Second):
		t.Fatal("no reply sent")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}
}
