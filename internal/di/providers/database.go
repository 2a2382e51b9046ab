package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/munajatapp/munajat-server/internal/config"
	"github.com/munajatapp/munajat-server/internal/logger"
	"github.com/munajatapp/munajat-server/internal/sse"
	"github.com/munajatapp/munajat-server/internal/store"
	"github.com/munajatapp/munajat-server/internal/syncpoint"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the calibration/progress store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the device state store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Sync.DataPath, "db")
	db, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Device state store initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// ProvideSyncPointStore provides the per-prayer timestamp file store.
func ProvideSyncPointStore(i do.Injector) (*syncpoint.Store, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return syncpoint.NewStore(cfg.Sync.DataPath, log.Logger), nil
}
