package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aromadb/aroma-catalog/logging"
)

const namespace = "aromadb"

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Aggregates whose derived total was recomputed and stored.
	AggregatesPriced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregates_priced_total",
			Help:      "Total number of bundles and recipes priced and persisted",
		},
		[]string{"entity"},
	)

	CompositionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "composition_failures_total",
			Help:      "Total number of rejected bundle and recipe compositions",
		},
		[]string{"entity", "reason"},
	)

	ExportedDocuments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exported_documents_total",
			Help:      "Total number of documents written by the bulk exporter",
		},
		[]string{"collection"},
	)
)

// RecordPriced counts one persisted aggregate of the given entity kind.
func RecordPriced(entity string) {
	AggregatesPriced.WithLabelValues(entity).Inc()
}

// RecordCompositionFailure counts one rejected composition.
func RecordCompositionFailure(entity, reason string) {
	CompositionFailures.WithLabelValues(entity, reason).Inc()
}

// RecordExported counts one exported document.
func RecordExported(collection string) {
	ExportedDocuments.WithLabelValues(collection).Inc()
}

// Middleware records request count and duration. The path label is the
// matched route pattern so ids do not explode the label set.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := logging.Recorder(w)

		next.ServeHTTP(rec, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(rec.Status)
		HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
