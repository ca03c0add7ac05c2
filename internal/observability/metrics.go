package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Climate report outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeNoLocation    = "no_location"
	OutcomeUpstreamError = "upstream_error"
	OutcomeNoData        = "no_data"
)

// Metrics holds the Prometheus collectors for catalog lookups and climate reports.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	CatalogRecords prometheus.Gauge
	CatalogMatches *prometheus.CounterVec // labels: outcome={matched,none}

	ClimateReports       *prometheus.CounterVec // labels: outcome={ok,no_location,upstream_error,no_data}
	ArchiveFetchDuration prometheus.Histogram

	SeriesCache *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CatalogRecords,
		m.CatalogMatches,
		m.ClimateReports,
		m.ArchiveFetchDuration,
		m.SeriesCache,
	)
	return m
}

// NewMetricsForTesting creates unregistered metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CatalogRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wine_insight",
			Name:      "catalog_records",
			Help:      "Number of records in the loaded wine catalog.",
		}),
		CatalogMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wine_insight",
			Name:      "catalog_matches_total",
			Help:      "Catalog lookups by outcome.",
		}, []string{"outcome"}),
		ClimateReports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wine_insight",
			Name:      "climate_reports_total",
			Help:      "Growing-season climate reports by outcome.",
		}, []string{"outcome"}),
		ArchiveFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wine_insight",
			Name:      "archive_fetch_duration_seconds",
			Help:      "Duration of daily weather archive fetches.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		SeriesCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wine_insight",
			Name:      "series_cache_total",
			Help:      "Daily series cache lookups by result.",
		}, []string{"result"}),
	}
}

// SetCatalogRecords records the size of the loaded catalog.
func (m *Metrics) SetCatalogRecords(n int) {
	if m == nil {
		return
	}
	m.CatalogRecords.Set(float64(n))
}

// ObserveMatch counts one catalog lookup.
func (m *Metrics) ObserveMatch(matched bool) {
	if m == nil {
		return
	}
	outcome := "none"
	if matched {
		outcome = "matched"
	}
	m.CatalogMatches.WithLabelValues(outcome).Inc()
}

// ObserveClimateReport counts one climate report by Outcome* value.
func (m *Metrics) ObserveClimateReport(outcome string) {
	if m == nil {
		return
	}
	m.ClimateReports.WithLabelValues(outcome).Inc()
}

// ObserveArchiveFetch records the duration of one archive call.
func (m *Metrics) ObserveArchiveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.ArchiveFetchDuration.Observe(d.Seconds())
}

// ObserveCache counts one series cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.SeriesCache.WithLabelValues(result).Inc()
}
