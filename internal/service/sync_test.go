package service

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munajatapp/munajat-server/internal/syncpoint"
)

func TestResolveAtUsesTimeOrder(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	store := syncpoint.NewStore(t.TempDir(), logger)

	require.NoError(t, store.Upsert("p", 0, 0, "a", "f"))
	require.NoError(t, store.Upsert("p", 1, 9000, "b", "g"))
	require.NoError(t, store.Upsert("p", 2, 5000, "c", "h"))

	svc := NewSyncService(store, logger)

	tests := []struct {
		timeMillis int64
		want       int
	}{
		{4999, 0},
		{5000, 2},
		{9000, 1},
		{999_999, 1},
	}
	for _, tt := range tests {
		res, err := svc.ResolveAt("p", tt.timeMillis)
		require.NoError(t, err)
		assert.Equal(t, tt.want, res.Index, "time %d", tt.timeMillis)
	}
}

func TestSyncPointsEmptyForUnknownPrayer(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	svc := NewSyncService(syncpoint.NewStore(t.TempDir(), logger), logger)

	points, err := svc.SyncPoints("never-recorded")
	require.NoError(t, err)
	assert.Empty(t, points)
}
