package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordRun("cron", 0.2)
	r.RecordRun("cron", 0.4)
	r.RecordInstrument("ok")
	r.RecordInstrument("ok")
	r.RecordInstrument("data")
	r.RecordLastClose("AAPL", 189.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.runs.WithLabelValues("cron")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.instruments.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.instruments.WithLabelValues("data")))
	assert.Equal(t, 189.5, testutil.ToFloat64(r.lastClose.WithLabelValues("AAPL")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}
