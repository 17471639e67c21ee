//go:build wireinject
// +build wireinject

package di

import (
	"FinGauge/pkg/config"
	"FinGauge/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Foundation
		ProvideLogger,
		ProvideMetrics,

		// Caching + storage
		ProvideCacheService,
		ProvideSnapshotStore,

		// Feeds and indicator engine
		ProvideMarketData,
		ProvideEngine,

		// Use cases
		ProvideOverviewUsecase,
		ProvideTrendUsecase,
		ProvideRefreshJob,
		ProvideLogDigestJob,

		// Push path
		ProvideHub,
		ProvidePipeline,

		// Background work
		ProvideQueue,
		ProvideScheduler,

		// HTTP
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
