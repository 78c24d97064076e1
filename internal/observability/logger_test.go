package observability

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/couchcryptid/fire-incident-map/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_FromConfig(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(&config.Config{LogLevel: "error", LogFormat: "json"})
	assert.False(t, logger.Enabled(t.Context(), slog.LevelWarn))
	assert.True(t, logger.Enabled(t.Context(), slog.LevelError))
}

func TestNewLogger_SetsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	NewLogger(&config.Config{LogLevel: "debug", LogFormat: "text"})
	assert.True(t, slog.Default().Enabled(t.Context(), slog.LevelDebug))
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.PanelActivations.Inc()

	assert.InDelta(t, 1, testutil.ToFloat64(a.PanelActivations), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.PanelActivations), 0)

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(a.DatasetLoads))
}

func TestMetrics_DatasetLoadErrorSeries(t *testing.T) {
	m := NewMetricsForTesting()
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(m.DatasetLoads))

	m.DatasetLoads.WithLabelValues("error").Inc()

	expected := `
# HELP fire_map_dataset_loads_total Dataset load attempts by outcome.
# TYPE fire_map_dataset_loads_total counter
fire_map_dataset_loads_total{outcome="error"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "fire_map_dataset_loads_total"))
}
