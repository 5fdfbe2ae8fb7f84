// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/osusync/bridge/internal/resolver"
	"github.com/osusync/bridge/internal/syncerr"
	"github.com/osusync/bridge/internal/worker"
)

// Handler holds the dependencies every route in this package needs: the
// Dispatcher that owns every worker-protocol command, the context each
// long-running command runs under (the server's own lifetime, not the
// HTTP request's — a sync or backup must outlive the request that
// started it), and the duplicate-prompt callback the interactive
// resolver modes block on.
type Handler struct {
	dispatcher *worker.Dispatcher
	ctx        context.Context
	prompt     resolver.Callback
}

// NewHandler returns a Handler wired to dispatcher. ctx should be the
// server's run context (cancelled on shutdown), not a per-request one.
// prompt answers duplicate prompts for the ask/interactive/sticky
// resolver modes; nil degrades those modes (ask falls back to skip,
// interactive and sticky are refused).
func NewHandler(ctx context.Context, dispatcher *worker.Dispatcher, prompt resolver.Callback) *Handler {
	return &Handler{dispatcher: dispatcher, ctx: ctx, prompt: prompt}
}

const maxRequestBody = 1 << 20 // 1 MiB; every request body here is a small JSON config object.

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(dst); err != nil {
		return syncerr.Wrap(syncerr.KindParseFailure, "malformed request body", err)
	}
	return nil
}
