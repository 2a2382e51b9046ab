// Package di provides dependency injection configuration for the Munajat server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/munajatapp/munajat-server/internal/catalog"
	"github.com/munajatapp/munajat-server/internal/config"
	"github.com/munajatapp/munajat-server/internal/di/providers"
	"github.com/munajatapp/munajat-server/internal/logger"
	"github.com/munajatapp/munajat-server/internal/service"
	"github.com/munajatapp/munajat-server/internal/syncpoint"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Persistence layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSyncPointStore)

	// Content layer
	do.Provide(injector, providers.ProvideCatalog)
	do.Provide(injector, providers.ProvideCatalogWatcher)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// Business services
	do.Provide(injector, providers.ProvidePrayerService)
	do.Provide(injector, providers.ProvideSyncService)
	do.Provide(injector, providers.ProvideSessionManager)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)
	do.Provide(injector, providers.ProvideMDNSService)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*syncpoint.Store](injector)
	_ = do.MustInvoke[*catalog.Catalog](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.PrayerService](injector)
	_ = do.MustInvoke[*service.SyncService](injector)
	_ = do.MustInvoke[*providers.SessionManagerHandle](injector)

	// Watcher depends on the prayer service for reload hooks, so it comes
	// after the business services.
	_ = do.MustInvoke[*providers.CatalogWatcherHandle](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)
	_ = do.MustInvoke[*providers.MDNSServiceHandle](injector)

	return nil
}
