// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osusync/bridge/internal/worker"
)

func TestHubRegisterAndUnregister(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.RunWithContext(ctx)

	client := &Client{id: 1, send: make(chan Message, 4)}
	hub.Register <- client
	require.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Unregister <- client
	require.Eventually(t, func() bool { return hub.GetClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubRunWithContextStopsOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- hub.RunWithContext(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("hub did not stop after context cancellation")
	}
}

func TestBroadcastWorkerEventDispatchesByField(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.RunWithContext(ctx)

	client := &Client{id: 1, send: make(chan Message, 8)}
	hub.Register <- client
	require.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cases := []struct {
		name string
		ev   worker.Event
		want string
	}{
		{"scan complete", worker.Event{ScanComplete: &worker.ScanCompleteEvent{Root: "/x", SetCount: 3}}, MessageTypeScanComplete},
		{"log", worker.Event{Log: &worker.LogEvent{Level: "warn", Message: "hi"}}, MessageTypeLog},
		{"error", worker.Event{Error: &worker.ErrorEvent{Kind: "oops", Message: "bad"}}, MessageTypeError},
		{"backup progress", worker.Event{BackupProgress: &worker.BackupProgressEvent{Phase: worker.BackupPhaseWriting}}, MessageTypeBackupProgress},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hub.BroadcastWorkerEvent(tc.ev)
			select {
			case msg := <-client.send:
				assert.Equal(t, tc.want, msg.Type)
			case <-time.After(time.Second):
				t.Fatal("timed out waiting for broadcast")
			}
		})
	}
}

func TestBroadcastWorkerEventIgnoresEmptyEvent(t *testing.T) {
	hub := NewHub()
	client := &Client{id: 1, send: make(chan Message, 1)}
	hub.clients[client] = true

	hub.BroadcastWorkerEvent(worker.Event{})
	select {
	case <-client.send:
		t.Fatal("expected no message for an empty event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastDropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{id: 1, send: make(chan Message)} // unbuffered, always full
	hub.clients[slow] = true

	hub.broadcastToClients(Message{Type: MessageTypeLog})
	assert.Equal(t, 0, hub.GetClientCount())
}

func TestMarshalMessageRoundTrips(t *testing.T) {
	data, err := MarshalMessage(Message{Type: MessageTypeLog, Data: worker.LogEvent{Level: "info", Message: "hi"}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"log"`)
}
