package sse

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, context.CancelFunc) {
	t.Helper()
	m := NewManager(slog.New(slog.DiscardHandler))
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)
	t.Cleanup(cancel)
	return m, cancel
}

func waitForEvent(t *testing.T, c *Client, want EventType) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-c.EventChan:
			if ev.Type == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestEmitReachesAllClients(t *testing.T) {
	m, _ := newTestManager(t)

	a, err := m.Connect("")
	require.NoError(t, err)
	b, err := m.Connect("")
	require.NoError(t, err)
	defer m.Disconnect(a.ID)
	defer m.Disconnect(b.ID)

	m.Emit(NewCatalogReloadedEvent(3))

	waitForEvent(t, a, EventCatalogReloaded)
	waitForEvent(t, b, EventCatalogReloaded)
}

func TestSessionScopedDelivery(t *testing.T) {
	m, _ := newTestManager(t)

	mine, err := m.Connect("ses-1")
	require.NoError(t, err)
	other, err := m.Connect("ses-2")
	require.NoError(t, err)
	defer m.Disconnect(mine.ID)
	defer m.Disconnect(other.ID)

	m.Emit(NewModeChangedEvent(ModeChangedData{SessionID: "ses-1", Mode: "sync"}))

	waitForEvent(t, mine, EventModeChanged)

	select {
	case ev := <-other.EventChan:
		assert.NotEqual(t, EventModeChanged, ev.Type, "other session must not see the event")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDisconnectIsIdempotent(t *testing.T) {
	m, _ := newTestManager(t)

	c, err := m.Connect("")
	require.NoError(t, err)

	m.Disconnect(c.ID)
	m.Disconnect(c.ID)
	assert.Zero(t, m.ClientCount())
}

func TestEmitAfterShutdownDropsQuietly(t *testing.T) {
	m := NewManager(slog.New(slog.DiscardHandler))
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)

	// Stop the broadcast loop first, then shut down the queue.
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()
	require.NoError(t, m.Shutdown(shutdownCtx))

	// Must not panic.
	m.Emit(NewHeartbeatEvent())
}
