package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/errors"
	"go.uber.org/zap"

	apperrors "github.com/namelens/searchrelay/internal/errors"
	"github.com/namelens/searchrelay/internal/observability"
)

var metricsProxyClient = &http.Client{
	Timeout: 5 * time.Second,
}

// MetricsSource resolves where the Prometheus exporter is listening.
// Ready is false when telemetry is disabled.
type MetricsSource interface {
	MetricsURL() (url string, ready bool)
}

// exporterSource reads the global gofulmen exporter state.
type exporterSource struct{}

func (exporterSource) MetricsURL() (string, bool) {
	if observability.PrometheusExporter == nil {
		return "", false
	}
	port := observability.GetMetricsPort()
	if port == 0 {
		port = observability.DefaultMetricsPort
	}
	return fmt.Sprintf("http://127.0.0.1:%d/metrics", port), true
}

var hopByHopHeaders = map[string]struct{}{
	"connection":          {},
	"keep-alive":          {},
	"proxy-authenticate":  {},
	"proxy-authorization": {},
	"te":                  {},
	"trailer":             {},
	"transfer-encoding":   {},
	"upgrade":             {},
}

// MetricsHandler proxies Prometheus metrics from the exporter so callers
// can scrape /metrics on the main HTTP server.
func MetricsHandler(source MetricsSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricsURL, ready := source.MetricsURL()
		if !ready {
			apperrors.RespondWithEnvelope(w, r, apperrors.NewServiceUnavailableError("Metrics exporter not initialized"))
			return
		}

		req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, metricsURL, nil)
		if err != nil {
			env, _ := apperrors.NewInternalError("Unable to construct metrics request").
				WithContext(map[string]interface{}{
					"metrics_url":    metricsURL,
					"original_error": err.Error(),
				})
			apperrors.RespondWithEnvelope(w, r, env)
			return
		}

		// Preserve caller hint for content negotiation
		if accept := r.Header.Get("Accept"); accept != "" {
			req.Header.Set("Accept", accept)
		}

		resp, err := metricsProxyClient.Do(req)
		if err != nil {
			env, _ := apperrors.NewExternalServiceError("Prometheus exporter unavailable").
				WithContext(map[string]interface{}{
					"metrics_url":    metricsURL,
					"original_error": err.Error(),
				})
			env, _ = env.WithSeverity(errors.SeverityMedium)
			apperrors.RespondWithEnvelope(w, r, env)
			return
		}
		defer func() {
			if err := resp.Body.Close(); err != nil {
				if logger := observability.Logger(); logger != nil {
					logger.Warn("Failed to close metrics response body", zap.Error(err))
				}
			}
		}()

		for key, values := range resp.Header {
			if _, skip := hopByHopHeaders[strings.ToLower(key)]; skip {
				continue
			}
			// The router owns CORS.
			if strings.HasPrefix(strings.ToLower(key), "access-control-") {
				continue
			}
			for _, v := range values {
				w.Header().Add(key, v)
			}
		}

		// Ensure we always advertise Prometheus content type
		if resp.Header.Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		}

		w.WriteHeader(resp.StatusCode)
		if _, err := io.Copy(w, resp.Body); err != nil {
			if logger := observability.Logger(); logger != nil {
				logger.Warn("Failed to write metrics response", zap.Error(err))
			}
		}
	}
}
