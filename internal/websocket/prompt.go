// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package websocket

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/osusync/bridge/internal/logging"
	"github.com/osusync/bridge/internal/resolver"
	"github.com/osusync/bridge/internal/syncerr"
)

// DuplicatePromptData is the payload of a duplicate_prompt message: a
// compact view of both sides of the match, enough for a UI to render a
// decision dialog without shipping two full beatmap sets over the wire.
type DuplicatePromptData struct {
	SourceName   string  `json:"source_name"`
	ExistingName string  `json:"existing_name"`
	MatchKind    string  `json:"match_kind"`
	Confidence   float64 `json:"confidence"`
}

// DuplicateReply is the payload a client sends back in a
// duplicate_reply message, echoing the prompt's request id in the
// envelope.
type DuplicateReply struct {
	Action     string `json:"action"` // skip | replace | keep_both
	ApplyToAll bool   `json:"apply_to_all"`
}

// PromptDuplicate broadcasts a duplicate_prompt to every connected
// client and blocks until one answers with a duplicate_reply carrying
// the prompt's request id, or ctx is cancelled. It is the only
// synchronous round trip on this surface; every other message is
// fire-and-forget. With no client connected there is nobody to answer,
// so the prompt fails immediately rather than hanging the sync.
func (h *Hub) PromptDuplicate(ctx context.Context, info resolver.DuplicateInfo) (resolver.Decision, error) {
	if h.GetClientCount() == 0 {
		return resolver.Decision{}, syncerr.New(syncerr.KindOther, "no UI client connected to answer duplicate prompt")
	}

	id := uuid.NewString()
	replyCh := make(chan DuplicateReply, 1)

	h.pendingMu.Lock()
	h.pending[id] = replyCh
	h.pendingMu.Unlock()
	defer func() {
		h.pendingMu.Lock()
		delete(h.pending, id)
		h.pendingMu.Unlock()
	}()

	msg := Message{
		Type:      MessageTypeDuplicatePrompt,
		RequestID: id,
		Data: DuplicatePromptData{
			SourceName:   info.Source.GenerateFolderName(),
			ExistingName: info.Existing.GenerateFolderName(),
			MatchKind:    info.MatchKind.String(),
			Confidence:   info.Confidence,
		},
	}
	select {
	case h.broadcast <- msg:
	case <-ctx.Done():
		return resolver.Decision{}, syncerr.Cancelled()
	}

	select {
	case reply := <-replyCh:
		return reply.toDecision()
	case <-ctx.Done():
		return resolver.Decision{}, syncerr.Cancelled()
	}
}

func (r DuplicateReply) toDecision() (resolver.Decision, error) {
	var action resolver.Action
	switch r.Action {
	case "skip", "":
		action = resolver.ActionSkip
	case "replace":
		action = resolver.ActionReplace
	case "keep_both":
		action = resolver.ActionKeepBoth
	default:
		return resolver.Decision{}, syncerr.New(syncerr.KindConfiguration, "unrecognised duplicate reply action: "+r.Action)
	}
	return resolver.Decision{Action: action, ApplyToAll: r.ApplyToAll}, nil
}

// handleDuplicateReply routes an inbound duplicate_reply to whichever
// PromptDuplicate call is waiting on its request id. A reply for an
// unknown or already-answered id is dropped with a warning; replies
// race only when two clients answer the same prompt, and the first one
// wins.
func (h *Hub) handleDuplicateReply(msg Message) {
	if msg.RequestID == "" {
		logging.Warn().Msg("duplicate reply without request id dropped")
		return
	}

	// msg.Data arrives as the decoder's generic form; round-trip it
	// through JSON to get the typed payload back.
	raw, err := json.Marshal(msg.Data)
	if err != nil {
		logging.Warn().Err(err).Str("request_id", msg.RequestID).Msg("malformed duplicate reply dropped")
		return
	}
	var reply DuplicateReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		logging.Warn().Err(err).Str("request_id", msg.RequestID).Msg("malformed duplicate reply dropped")
		return
	}

	h.pendingMu.Lock()
	ch, ok := h.pending[msg.RequestID]
	if ok {
		delete(h.pending, msg.RequestID)
	}
	h.pendingMu.Unlock()
	if !ok {
		logging.Warn().Str("request_id", msg.RequestID).Msg("duplicate reply for unknown prompt dropped")
		return
	}
	ch <- reply
}
