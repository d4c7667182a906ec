package observability

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewTextLogger_Debug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTextLogger(&buf, "debug")

	logger.Debug("stale delivery ignored")

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), `msg="stale delivery ignored"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestNewMetricsForTesting_Unregistered(t *testing.T) {
	m1 := NewMetricsForTesting()
	m2 := NewUnregisteredMetrics()

	m1.Deliveries.WithLabelValues("records").Inc()
	assert.InDelta(t, 1, testutil.ToFloat64(m1.Deliveries.WithLabelValues("records")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m2.Deliveries.WithLabelValues("records")), 0)
}

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTextLogger(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("fetch failed", "status", 503)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "status=503")
	assert.Contains(t, buf.String(), "service=quake-feed")
}
