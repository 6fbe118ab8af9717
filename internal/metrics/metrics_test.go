package metrics

import (
	"testing"
	"time"

	"github.com/fulmenhq/gofulmen/telemetry"
	telemetrytesting "github.com/fulmenhq/gofulmen/telemetry/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namelens/searchrelay/internal/observability"
)

func withCollector(t *testing.T) *telemetrytesting.FakeCollector {
	t.Helper()

	collector := telemetrytesting.NewFakeCollector()
	sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: true, Emitter: collector})
	require.NoError(t, err)

	original := observability.TelemetrySystem
	observability.TelemetrySystem = sys
	t.Cleanup(func() { observability.TelemetrySystem = original })
	return collector
}

func TestRelayMetricsEmit(t *testing.T) {
	collector := withCollector(t)

	RecordRelayOutcome("success")
	RecordUpstreamCall("success", 12*time.Millisecond)
	RecordBreakerTransition("google", "closed", "open")
	RecordHealthCheck("search_credentials", false, time.Millisecond)
	SetServerStartTime(time.Now().Unix())

	assert.Greater(t, collector.CountMetricsByName(RelayOutcomesTotal), 0)
	assert.Greater(t, collector.CountMetricsByName(UpstreamCallsTotal), 0)
	assert.Greater(t, collector.CountMetricsByName(UpstreamCallDuration), 0)
	assert.Greater(t, collector.CountMetricsByName(BreakerStateTransition), 0)
	assert.Greater(t, collector.CountMetricsByName(HealthCheckTotal), 0)
	assert.Greater(t, collector.CountMetricsByName(ServerStartTime), 0)
}

func TestErrorMetricsEmit(t *testing.T) {
	collector := withCollector(t)

	RecordError("NOT_FOUND", 404)
	RecordErrorByEndpoint("/unknown", "NOT_FOUND")
	RecordPanic()

	assert.Greater(t, collector.CountMetricsByName(ErrorsTotalName), 0)
	assert.Greater(t, collector.CountMetricsByName(ErrorsByEndpointName), 0)
	assert.Greater(t, collector.CountMetricsByName(PanicsTotalName), 0)
}

func TestMetricsNoopWithoutTelemetry(t *testing.T) {
	original := observability.TelemetrySystem
	observability.TelemetrySystem = nil
	t.Cleanup(func() { observability.TelemetrySystem = original })

	assert.NotPanics(t, func() {
		RecordRelayOutcome("empty")
		RecordUpstreamCall("empty", time.Millisecond)
		RecordError("INTERNAL_ERROR", 500)
	})
}
