package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.PageFetched()
	m.PageFetched()
	m.ThrottlePaused()
	m.ItemDone(true)
	m.ItemDone(true)
	m.ItemDone(false)
	m.BytesWritten(100)
	m.BytesWritten(-5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.pagesFetched))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.throttlePauses))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.itemsDownloaded.WithLabelValues(StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.itemsDownloaded.WithLabelValues(StatusFailure)))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.bytesWritten))
}

func TestMetrics_Gauges(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SetInFlight(3)
	m.SetGoroutines(12)
	m.SetInFlight(1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.inFlight))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.goroutines))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.PageFetched()
		m.ThrottlePaused()
		m.ItemDone(false)
		m.BytesWritten(10)
		m.SetInFlight(1)
		m.SetGoroutines(1)
		m.ObserveBatch(time.Second)
	})
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.PageFetched()
	m.ObserveBatch(250 * time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "gistdl_listing_pages_fetched_total 1"))
	assert.True(t, strings.Contains(body, "gistdl_batch_duration_seconds_count 1"))
}
