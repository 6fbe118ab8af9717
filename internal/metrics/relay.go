package metrics

import (
	"time"

	"github.com/namelens/searchrelay/internal/observability"
)

// Relay metric names following Prometheus conventions
const (
	RelayOutcomesTotal     = "relay_outcomes_total"
	UpstreamCallsTotal     = "relay_upstream_calls_total"
	UpstreamCallDuration   = "relay_upstream_call_duration_ms"
	BreakerStateTransition = "relay_breaker_transitions_total"

	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"
	ServerStartTime     = "app_server_start_time_seconds"
)

// RecordRelayOutcome counts every chat reply by outcome kind.
func RecordRelayOutcome(kind string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			RelayOutcomesTotal,
			1,
			map[string]string{"outcome": kind},
		)
	}
}

// RecordUpstreamCall records one provider round trip.
func RecordUpstreamCall(outcome string, duration time.Duration) {
	if observability.TelemetrySystem != nil {
		labels := map[string]string{"outcome": outcome}
		_ = observability.TelemetrySystem.Counter(UpstreamCallsTotal, 1, labels)
		_ = observability.TelemetrySystem.Histogram(UpstreamCallDuration, duration, labels)
	}
}

// RecordBreakerTransition counts circuit breaker state changes.
func RecordBreakerTransition(name, from, to string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			BreakerStateTransition,
			1,
			map[string]string{
				"breaker": name,
				"from":    from,
				"to":      to,
			},
		)
	}
}

// RecordHealthCheck records a health check execution
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			HealthCheckTotal,
			1,
			map[string]string{
				"check":  checkName,
				"status": status,
			},
		)

		_ = observability.TelemetrySystem.Histogram(
			HealthCheckDuration,
			duration,
			map[string]string{
				"check": checkName,
			},
		)
	}
}

// SetServerStartTime records the server start time (Unix timestamp)
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ServerStartTime,
			float64(timestamp),
			nil,
		)
	}
}
