// Package metrics provides Prometheus metrics for the gist downloader.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gistdl"

// Item outcome labels.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics holds the collectors of one downloader process.
//
// A nil *Metrics is valid and records nothing, so components can take one
// unconditionally.
type Metrics struct {
	pagesFetched    prometheus.Counter
	throttlePauses  prometheus.Counter
	itemsDownloaded *prometheus.CounterVec
	bytesWritten    prometheus.Counter
	inFlight        prometheus.Gauge
	goroutines      prometheus.Gauge
	batchDuration   prometheus.Histogram
}

// New creates the collectors and registers them with reg.
// A nil reg leaves the collectors unregistered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		pagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_pages_fetched_total",
			Help:      "Total number of listing pages fetched",
		}),
		throttlePauses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_throttle_pauses_total",
			Help:      "Total number of pauses taken because the rate limit was exhausted or unknown",
		}),
		itemsDownloaded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gists_downloaded_total",
			Help:      "Total number of gists processed by the download stage",
		}, []string{"status"}),
		bytesWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_written_total",
			Help:      "Total bytes written to disk",
		}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "downloads_in_flight",
			Help:      "Number of gists currently holding a download permit",
		}),
		goroutines: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "goroutines",
			Help:      "Goroutine count sampled while a batch runs",
		}),
		batchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of a download batch",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// PageFetched counts one listing page.
func (m *Metrics) PageFetched() {
	if m == nil {
		return
	}
	m.pagesFetched.Inc()
}

// ThrottlePaused counts one throttle pause.
func (m *Metrics) ThrottlePaused() {
	if m == nil {
		return
	}
	m.throttlePauses.Inc()
}

// ItemDone counts one finished gist.
func (m *Metrics) ItemDone(succeeded bool) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if !succeeded {
		status = StatusFailure
	}
	m.itemsDownloaded.WithLabelValues(status).Inc()
}

// BytesWritten adds n written bytes.
func (m *Metrics) BytesWritten(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.bytesWritten.Add(float64(n))
}

// SetInFlight records the number of permits currently held.
func (m *Metrics) SetInFlight(n int) {
	if m == nil {
		return
	}
	m.inFlight.Set(float64(n))
}

// SetGoroutines records a goroutine count sample.
func (m *Metrics) SetGoroutines(n int) {
	if m == nil {
		return
	}
	m.goroutines.Set(float64(n))
}

// ObserveBatch records the duration of one batch.
func (m *Metrics) ObserveBatch(d time.Duration) {
	if m == nil {
		return
	}
	m.batchDuration.Observe(d.Seconds())
}

// Handler returns the HTTP handler serving the metrics of g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
