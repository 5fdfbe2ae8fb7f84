// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/osusync/bridge/internal/logging"
	"github.com/osusync/bridge/internal/worker"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types mirror the fields of worker.Event one-to-one, plus the
// client-driven ping/pong handshake.
const (
	MessageTypeScanComplete   = "scan_complete"
	MessageTypeDryRunReady    = "dry_run_ready"
	MessageTypeSyncProgress   = "sync_progress"
	MessageTypeSyncDone       = "sync_done"
	MessageTypeBackupProgress = "backup_progress"
	MessageTypeMediaExtractionDone = "media_extraction_done"
	MessageTypeReplayExportDone    = "replay_export_done"
	MessageTypeCollectionSyncDone  = "collection_sync_done"
	MessageTypeSetExportDone       = "set_export_done"
	MessageTypeSetImportDone       = "set_import_done"
	MessageTypeLog            = "log"
	MessageTypeError          = "error"
	MessageTypePing           = "ping"
	MessageTypePong           = "pong"

	// The one synchronous round trip on this surface: the hub sends a
	// duplicate_prompt carrying a request id, and a client answers with
	// a duplicate_reply echoing that id.
	MessageTypeDuplicatePrompt = "duplicate_prompt"
	MessageTypeDuplicateReply  = "duplicate_reply"
)

// Message represents a WebSocket message. RequestID correlates a
// duplicate_prompt with its duplicate_reply and is empty on every other
// message type.
type Message struct {
	Type      string      `json:"type"`
	RequestID string      `json:"request_id,omitempty"`
	Data      interface{} `json:"data"`
}

// Hub maintains the set of active UI clients and fans worker.Events out
// to all of them over their own send channels.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex

	// pending maps an outstanding duplicate_prompt's request id to the
	// channel its PromptDuplicate call is blocked on.
	pending   map[string]chan DuplicateReply
	pendingMu sync.Mutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		pending:    make(map[string]chan DuplicateReply),
	}
}

// RunWithContext starts the hub with context support for graceful
// shutdown, matching the suture.Service shape used elsewhere in this
// repo (see internal/worker.GameMonitorService).
//
// DETERMINISM: priority-selects shutdown, then client lifecycle events,
// then broadcasts, so client bookkeeping is always settled before a
// message is fanned out.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	logging.Info().Int("total_clients", h.GetClientCount()).Msg("websocket client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
	logging.Info().Int("total_clients", h.GetClientCount()).Msg("websocket client disconnected")
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()
	reason := getShutdownReason(ctx)
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(reason)).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// broadcastToClients sends a message to all connected clients in a
// deterministic order (sorted by client ID) and drops any client whose
// send buffer is full rather than blocking the hub.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			toRemove = append(toRemove, client)
		}
	}
	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
	}
	logging.Info().Msg("closed all websocket clients during shutdown")
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastWorkerEvent translates a worker.Event onto the wire as the
// one Message whose type matches whichever field of ev is set. This is
// the sole bridge between internal/worker's Bus and connected UI
// clients.
func (h *Hub) BroadcastWorkerEvent(ev worker.Event) {
	msg, ok := messageFor(ev)
	if !ok {
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		logging.Warn().Str("message_type", msg.Type).Msg("broadcast channel full, dropping event")
	}
}

func messageFor(ev worker.Event) (Message, bool) {
	switch {
	case ev.ScanComplete != nil:
		return Message{Type: MessageTypeScanComplete, Data: ev.ScanComplete}, true
	case ev.DryRunReady != nil:
		return Message{Type: MessageTypeDryRunReady, Data: ev.DryRunReady}, true
	case ev.SyncProgress != nil:
		return Message{Type: MessageTypeSyncProgress, Data: ev.SyncProgress}, true
	case ev.SyncDone != nil:
		return Message{Type: MessageTypeSyncDone, Data: ev.SyncDone}, true
	case ev.BackupProgress != nil:
		return Message{Type: MessageTypeBackupProgress, Data: ev.BackupProgress}, true
	case ev.MediaExtractionDone != nil:
		return Message{Type: MessageTypeMediaExtractionDone, Data: ev.MediaExtractionDone}, true
	case ev.ReplayExportDone != nil:
		return Message{Type: MessageTypeReplayExportDone, Data: ev.ReplayExportDone}, true
	case ev.CollectionSyncDone != nil:
		return Message{Type: MessageTypeCollectionSyncDone, Data: ev.CollectionSyncDone}, true
	case ev.SetExportDone != nil:
		return Message{Type: MessageTypeSetExportDone, Data: ev.SetExportDone}, true
	case ev.SetImportDone != nil:
		return Message{Type: MessageTypeSetImportDone, Data: ev.SetImportDone}, true
	case ev.Log != nil:
		return Message{Type: MessageTypeLog, Data: ev.Log}, true
	case ev.Error != nil:
		return Message{Type: MessageTypeError, Data: ev.Error}, true
	default:
		return Message{}, false
	}
}

// MarshalMessage converts a message to JSON
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
