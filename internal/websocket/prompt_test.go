// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osusync/bridge/internal/dupindex"
	"github.com/osusync/bridge/internal/models"
	"github.com/osusync/bridge/internal/resolver"
	"github.com/osusync/bridge/internal/syncerr"
)

func promptInfo() resolver.DuplicateInfo {
	return resolver.DuplicateInfo{
		Source: models.BeatmapSet{Difficulties: []models.Difficulty{{
			Metadata: models.Metadata{Title: "Bangin' Burst", Artist: "Camellia", Creator: "Sotarks"},
		}}},
		Existing: models.BeatmapSet{Difficulties: []models.Difficulty{{
			Metadata: models.Metadata{Title: "Bangin' Burst", Artist: "Camellia", Creator: "Sotarks"},
		}}},
		MatchKind:  dupindex.MatchExactHash,
		Confidence: 1.0,
	}
}

func TestPromptDuplicateRoundTrip(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.RunWithContext(ctx)

	client := &Client{id: 1, send: make(chan Message, 4)}
	hub.Register <- client
	require.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, 5*time.Millisecond)

	type outcome struct {
		decision resolver.Decision
		err      error
	}
	done := make(chan outcome, 1)
	go func() {
		d, err := hub.PromptDuplicate(ctx, promptInfo())
		done <- outcome{d, err}
	}()

	var prompt Message
	select {
	case prompt = <-client.send:
	case <-time.After(time.Second):
		t.Fatal("prompt never reached the client")
	}
	require.Equal(t, MessageTypeDuplicatePrompt, prompt.Type)
	require.NotEmpty(t, prompt.RequestID)
	data, ok := prompt.Data.(DuplicatePromptData)
	require.True(t, ok)
	assert.Equal(t, "exact_hash", data.MatchKind)
	assert.Equal(t, "Camellia - Bangin' Burst", data.SourceName)

	// Reply the way a real client would: a generic JSON object echoing
	// the prompt's request id.
	hub.handleDuplicateReply(Message{
		Type:      MessageTypeDuplicateReply,
		RequestID: prompt.RequestID,
		Data:      map[string]interface{}{"action": "replace", "apply_to_all": true},
	})

	select {
	case got := <-done:
		require.NoError(t, got.err)
		assert.Equal(t, resolver.ActionReplace, got.decision.Action)
		assert.True(t, got.decision.ApplyToAll)
	case <-time.After(time.Second):
		t.Fatal("PromptDuplicate never returned")
	}
}

func TestPromptDuplicateFailsWithNoClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.RunWithContext(ctx)

	_, err := hub.PromptDuplicate(ctx, promptInfo())
	require.Error(t, err)
}

func TestPromptDuplicateCancelledContextUnblocks(t *testing.T) {
	hub := NewHub()
	runCtx, stop := context.WithCancel(context.Background())
	defer stop()
	go hub.RunWithContext(runCtx)

	client := &Client{id: 1, send: make(chan Message, 4)}
	hub.Register <- client
	require.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, 5*time.Millisecond)

	promptCtx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := hub.PromptDuplicate(promptCtx, promptInfo())
		errCh <- err
	}()

	select {
	case <-client.send:
	case <-time.After(time.Second):
		t.Fatal("prompt never reached the client")
	}
	cancel()

	select {
	case err := <-errCh:
		assert.True(t, syncerr.Is(err, syncerr.KindCancelled))
	case <-time.After(time.Second):
		t.Fatal("PromptDuplicate did not observe cancellation")
	}
}

func TestHandleDuplicateReplyUnknownIDIsDropped(t *testing.T) {
	hub := NewHub()
	// Must not panic or block.
	hub.handleDuplicateReply(Message{
		Type:      MessageTypeDuplicateReply,
		RequestID: "never-issued",
		Data:      map[string]interface{}{"action": "skip"},
	})
}

func TestDuplicateReplyRejectsUnknownAction(t *testing.T) {
	_, err := DuplicateReply{Action: "explode"}.toDecision()
	require.Error(t, err)
	assert.True(t, syncerr.Is(err, syncerr.KindConfiguration))
}
