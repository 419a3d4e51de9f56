package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for splitbook.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	storeErrors     *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	importBatches   *prometheus.CounterVec
	importRows      *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "splitbook_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitbook_store_errors_total",
				Help: "Total errors from the record store.",
			},
			[]string{"table"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitbook_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitbook_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		importBatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitbook_import_batches_total",
				Help: "Total CSV import batches by outcome.",
			},
			[]string{"outcome"},
		),
		importRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitbook_import_rows_total",
				Help: "Total CSV import rows by disposition.",
			},
			[]string{"disposition"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitbook_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrStoreError increments the record-store error counter for a table.
func (m *Metrics) IncrStoreError(table string) {
	m.storeErrors.WithLabelValues(table).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrImportBatch counts an import batch outcome: committed, dry_run,
// halted, or failed.
func (m *Metrics) IncrImportBatch(outcome string) {
	m.importBatches.WithLabelValues(outcome).Inc()
}

// AddImportRows counts imported or skipped rows of a batch.
func (m *Metrics) AddImportRows(disposition string, n int) {
	m.importRows.WithLabelValues(disposition).Add(float64(n))
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// ImportRowCount returns the current value of the import-row counter for a
// disposition ("created" or "skipped"). Prometheus counters are cumulative.
func (m *Metrics) ImportRowCount(disposition string) float64 {
	return counterValue(m.importRows, disposition)
}

// StoreErrorCount returns the current value of the record-store error
// counter for a table.
func (m *Metrics) StoreErrorCount(table string) float64 {
	return counterValue(m.storeErrors, table)
}

func counterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
