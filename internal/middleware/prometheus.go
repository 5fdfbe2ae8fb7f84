// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/osusync/bridge/internal/metrics"
)

// PrometheusMetrics creates middleware recording request-duration and
// status-code metrics for every /api/v1 route. The raw path is not used
// as the metric label directly: /unified/verify and /sync/cancel are
// collapsed to a handful of route-group labels (scan/sync/backup/
// unified/media/activity/health/websocket/other) so one metrics series per distinct
// sync/backup/unified request (which otherwise carry no path
// parameters to bucket by) doesn't still explode into unrelated series
// once websocket and health-check traffic is mixed in.
func PrometheusMetrics(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Track active requests
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		// Record start time
		start := time.Now()

		// Wrap ResponseWriter to capture status code
		wrapper := &metricsResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		// Call next handler
		next(wrapper, r)

		// Calculate duration
		duration := time.Since(start)

		// Record metrics
		metrics.RecordAPIRequest(
			r.Method,
			routeGroup(r.URL.Path),
			strconv.Itoa(wrapper.statusCode),
			duration,
		)
	}
}

// routeGroup maps a request path to the route group it belongs to under
// /api/v1, matching the grouping in internal/api/router.go.
func routeGroup(path string) string {
	path = strings.TrimPrefix(path, "/api/v1")
	switch {
	case strings.HasPrefix(path, "/scan"):
		return "scan"
	case strings.HasPrefix(path, "/sync"):
		return "sync"
	case strings.HasPrefix(path, "/unified"):
		return "unified"
	case strings.HasPrefix(path, "/backup"), strings.HasPrefix(path, "/restore"):
		return "backup"
	case strings.HasPrefix(path, "/media"), strings.HasPrefix(path, "/replays"),
		strings.HasPrefix(path, "/collections"), strings.HasPrefix(path, "/sets"):
		return "media"
	case strings.HasPrefix(path, "/activity"), strings.HasPrefix(path, "/skiplist"):
		return "activity"
	case strings.HasPrefix(path, "/health"), strings.HasPrefix(path, "/session"):
		return "health"
	case strings.HasPrefix(path, "/ws"):
		return "websocket"
	default:
		return "other"
	}
}

// metricsResponseWriter wraps http.ResponseWriter to capture status code
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code
func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
