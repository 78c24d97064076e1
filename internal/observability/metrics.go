package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the map service.
type Metrics struct {
	// Dataset loading.
	DatasetLoads        *prometheus.CounterVec // labels: outcome={success,error}
	DatasetLoadDuration prometheus.Histogram
	DatasetRecords      prometheus.Gauge
	RecordsSkipped      *prometheus.CounterVec // labels: reason={malformed,identity,population,coordinates}
	MarkersRendered     prometheus.Gauge

	// Sidebar activations.
	PanelActivations     prometheus.Counter
	ActivationsPublished *prometheus.CounterVec // labels: outcome={success,error}

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DatasetLoads,
		m.DatasetLoadDuration,
		m.DatasetRecords,
		m.RecordsSkipped,
		m.MarkersRendered,
		m.PanelActivations,
		m.ActivationsPublished,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fire_map",
			Name:      "dataset_loads_total",
			Help:      "Dataset load attempts by outcome.",
		}, []string{"outcome"}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fire_map",
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of a complete fetch-parse-render cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		DatasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fire_map",
			Name:      "dataset_records",
			Help:      "Number of elements in the last successfully loaded dataset.",
		}),
		RecordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fire_map",
			Name:      "records_skipped_total",
			Help:      "Dataset elements left off the map, by reason.",
		}, []string{"reason"}),
		MarkersRendered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fire_map",
			Name:      "markers_rendered",
			Help:      "Circle markers on the current marker layer.",
		}),
		PanelActivations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_map",
			Name:      "panel_activations_total",
			Help:      "Sidebar panels opened by marker clicks.",
		}),
		ActivationsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fire_map",
			Name:      "activation_events_published_total",
			Help:      "Activation events handed to the event sink, by outcome.",
		}, []string{"outcome"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fire_map",
			Name:      "geocode_requests_total",
			Help:      "Forward geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fire_map",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fire_map",
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fire_map",
			Name:      "geocode_enabled",
			Help:      "1 when geocoding of records without coordinates is enabled, 0 otherwise.",
		}),
	}
}
