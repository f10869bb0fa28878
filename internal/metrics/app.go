package metrics

import (
	"strconv"
	"time"

	"github.com/shelfline/shelfline/internal/observability"
)

// Metric names following Prometheus conventions.
const (
	OperationsTotal       = "app_operations_total"
	OperationsErrorsTotal = "app_operations_errors_total"

	MarketRequestsTotal    = "market_requests_total"
	MarketRequestDuration  = "market_request_duration_ms"
	MarketRateLimitedTotal = "market_rate_limited_total"

	AssistantRequestsTotal = "assistant_requests_total"

	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"
)

// RecordOperation records an application operation with status.
func RecordOperation(operation string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			OperationsTotal,
			1,
			map[string]string{
				"operation": operation,
				"status":    status,
			},
		)
	}
}

// RecordMarketRequest records an outbound marketplace API call.
func RecordMarketRequest(endpoint string, statusCode int, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}

	labels := map[string]string{
		"endpoint": endpoint,
		"status":   strconv.Itoa(statusCode),
	}

	_ = observability.TelemetrySystem.Counter(MarketRequestsTotal, 1, labels)
	_ = observability.TelemetrySystem.Histogram(MarketRequestDuration, duration, map[string]string{
		"endpoint": endpoint,
	})
}

// RecordMarketRateLimited records a local admission denial (limiter timeout).
func RecordMarketRateLimited(endpoint string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			MarketRateLimitedTotal,
			1,
			map[string]string{"endpoint": endpoint},
		)
	}
}

// RecordAssistantRequest records a local LLM call outcome.
func RecordAssistantRequest(kind string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			AssistantRequestsTotal,
			1,
			map[string]string{
				"kind":   kind,
				"status": status,
			},
		)
	}
}

// RecordHealthCheck records a health check execution.
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
