// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"

	"github.com/osusync/bridge/internal/logging"
	"github.com/osusync/bridge/internal/middleware"
)

// corsMiddleware allows the UI process's dev server (typically a
// separate localhost origin, e.g. a Tauri or Electron webview) to reach
// the loopback API during development. There is no credential to leak
// across origins here, so the policy is permissive by design rather than
// an oversight.
func corsMiddleware() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// requestIDWithLogging assigns each request a correlation ID (reusing an
// inbound X-Request-ID if present) via internal/middleware.RequestID, then
// logs the completed request the way every other entry point in this
// codebase threads a logger through context.
func requestIDWithLogging(next http.Handler) http.Handler {
	wrapped := middleware.RequestID(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.CtxInfo(r.Context()).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route_group", middleware.RouteGroupFromContext(r.Context())).
			Dur("duration", time.Since(start)).
			Msg("api request")
	})
	return http.HandlerFunc(wrapped)
}

// securityHeaders sets the handful of response headers appropriate for a
// server that is never meant to be reached over anything but loopback.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// prometheusMetrics adapts internal/middleware.PrometheusMetrics (built
// for http.HandlerFunc) to chi's http.Handler middleware shape.
func prometheusMetrics(next http.Handler) http.Handler {
	wrapped := middleware.PrometheusMetrics(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
	})
	return http.HandlerFunc(wrapped)
}
