// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osusync/bridge/internal/logging"
	"github.com/osusync/bridge/internal/worker"
)

// NewRouter builds the full chi route tree for the bridge's local API
// surface. ctx is the server's run context: handlers that dispatch
// long-running commands (Scan, StartSync, BuildBackup, Restore) run
// those commands against ctx rather than the request's own context,
// since the request returns as soon as the command is accepted.
//
// Every /api/v1 route except the initial handshake requires a bearer
// token minted by this process's own TokenIssuer: a second local
// process cannot silently piggyback on the worker socket without first
// completing the handshake this process itself served.
func NewRouter(ctx context.Context, dispatcher *worker.Dispatcher, bus *worker.Bus) (http.Handler, *worker.Bus) {
	hub := newEventHub(ctx, bus)
	h := NewHandler(ctx, dispatcher, hub.PromptDuplicate)

	issuer, err := NewTokenIssuer(6 * time.Hour)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize session token issuer")
	}

	r := chi.NewRouter()
	r.Use(requestIDWithLogging)
	r.Use(securityHeaders)
	r.Use(corsMiddleware())
	r.Use(prometheusMetrics)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health/live", h.Live)
		r.Get("/health/ready", h.Ready)
		r.Post("/session", sessionHandler(issuer))

		r.Group(func(r chi.Router) {
			r.Use(requireBearerToken(issuer))

			r.Post("/scan", h.Scan)

			r.Post("/sync/start", h.StartSync)
			r.Post("/sync/proceed", h.Proceed)
			r.Post("/sync/cancel", h.Cancel)

			r.Post("/backup", h.BuildBackup)
			r.Post("/restore", h.Restore)

			r.Post("/unified/setup", h.UnifiedSetup)
			r.Get("/unified/verify", h.UnifiedVerify)
			r.Post("/unified/teardown", h.UnifiedTeardown)

			r.Post("/sets/export", h.ExportSets)
			r.Post("/sets/import", h.ImportSets)

			r.Post("/media/extract", h.ExtractMedia)
			r.Post("/replays/export", h.ExportReplays)
			r.Post("/collections/sync", h.SyncCollections)

			r.Get("/activity", h.Activity)
			r.Post("/skiplist", h.SkipSet)

			r.Get("/ws", wsHandler(hub))
		})
	})

	return r, bus
}
