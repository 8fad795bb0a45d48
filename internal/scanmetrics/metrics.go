// Package scanmetrics wraps the Prometheus collectors the scanner and
// assembler report against, following grafana-loki's instrumented-cache
// pattern of handing a small struct of pre-registered collectors down into
// the hot path rather than doing a registry lookup per call.
package scanmetrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every collector the scanner and assembler touch. A nil
// *Metrics is valid everywhere below (every method is a no-op on a nil
// receiver) so callers who don't want Prometheus wired in pay nothing.
type Metrics struct {
	rowsMaterialized  prometheus.Counter
	rowGroupsSkipped  *prometheus.CounterVec
	filtersDisabled   prometheus.Counter
	pageDecodeSeconds prometheus.Histogram
}

// New constructs and registers a Metrics bundle against reg. Pass nil for
// reg to use prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		rowsMaterialized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parquet_scan",
			Name:      "rows_materialized_total",
			Help:      "Rows materialized and committed to an output batch.",
		}),
		rowGroupsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parquet_scan",
			Name:      "row_groups_skipped_total",
			Help:      "Row groups skipped without assembly, by reason.",
		}, []string{"reason"}),
		filtersDisabled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parquet_scan",
			Name:      "filters_disabled_total",
			Help:      "Runtime filters adaptively disabled for the remainder of a scan.",
		}),
		pageDecodeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "parquet_scan",
			Name:      "page_decode_seconds",
			Help:      "Time spent decompressing and decoding one data page.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.rowsMaterialized, m.rowGroupsSkipped, m.filtersDisabled, m.pageDecodeSeconds)
	return m
}

// RowsMaterialized records n rows committed to an output batch.
func (m *Metrics) RowsMaterialized(n int) {
	if m == nil {
		return
	}
	m.rowsMaterialized.Add(float64(n))
}

// RowGroupSkipped records one row group skipped for reason ("split-range"
// or "stats-proved-empty").
func (m *Metrics) RowGroupSkipped(reason string) {
	if m == nil {
		return
	}
	m.rowGroupsSkipped.WithLabelValues(reason).Inc()
}

// FilterDisabled records one runtime filter adaptively disabled.
func (m *Metrics) FilterDisabled() {
	if m == nil {
		return
	}
	m.filtersDisabled.Inc()
}

// PageDecodeSeconds records how long one page decode+decompress took.
func (m *Metrics) PageDecodeSeconds(seconds float64) {
	if m == nil {
		return
	}
	m.pageDecodeSeconds.Observe(seconds)
}
