package providers

import (
	"github.com/samber/do/v2"

	"github.com/munajatapp/munajat-server/internal/catalog"
	"github.com/munajatapp/munajat-server/internal/config"
	"github.com/munajatapp/munajat-server/internal/logger"
	"github.com/munajatapp/munajat-server/internal/service"
	"github.com/munajatapp/munajat-server/internal/session"
	"github.com/munajatapp/munajat-server/internal/syncpoint"
)

// ProvidePrayerService provides the prayer catalog/search service.
func ProvidePrayerService(i do.Injector) (*service.PrayerService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	cat := do.MustInvoke[*catalog.Catalog](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	svc := service.NewPrayerService(cat, searchHandle.Index, sseHandle.Manager, log.Logger)

	// Bring the index in line with whatever is on disk right now.
	if err := svc.ReindexAll(); err != nil {
		log.Warn("Startup reindex failed, search results may be stale", "error", err)
	}

	return svc, nil
}

// ProvideSyncService provides read access to recorded sync points.
func ProvideSyncService(i do.Injector) (*service.SyncService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	points := do.MustInvoke[*syncpoint.Store](i)

	return service.NewSyncService(points, log.Logger), nil
}

// SessionManagerHandle wraps the session manager with shutdown capability.
type SessionManagerHandle struct {
	*session.Manager
}

// Shutdown implements do.Shutdownable.
func (h *SessionManagerHandle) Shutdown() error {
	ctx, cancel := contextWithShutdownTimeout()
	defer cancel()
	h.CloseAll(ctx)
	return nil
}

// ProvideSessionManager provides the playback session manager.
func ProvideSessionManager(i do.Injector) (*SessionManagerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	prayers := do.MustInvoke[*service.PrayerService](i)
	points := do.MustInvoke[*syncpoint.Store](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	mgr := session.NewManager(session.ManagerOptions{
		Source:     prayers,
		SyncPoints: points,
		State:      storeHandle.Store,
		Events:     sseHandle.Manager,
		Config:     cfg.Sync,
		Logger:     log.Logger,
	})

	return &SessionManagerHandle{Manager: mgr}, nil
}
