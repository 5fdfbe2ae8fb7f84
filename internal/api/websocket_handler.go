// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/osusync/bridge/internal/logging"
	ws "github.com/osusync/bridge/internal/websocket"
)

// upgrader permits any origin: the surface is loopback-only, and the UI
// process is typically served from its own local origin (a dev server or
// a packaged webview), so a same-origin check would reject the one
// client this server exists to talk to.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsHandler upgrades GET /api/v1/ws into a websocket.Client registered
// with hub, which fans out worker.Events pushed by newEventHub.
func wsHandler(hub *ws.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}
		client := ws.NewClient(hub, conn)
		hub.Register <- client
		client.Start()
	}
}
