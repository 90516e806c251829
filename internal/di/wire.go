//go:build wireinject
// +build wireinject

package di

import (
	"CoinSight/pkg/config"
	"CoinSight/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogCollector,
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideWarehouse,
		ProvideCacheService,
		ProvideQueue,
		ProvideQueueService,

		// Repositories
		ProvidePriceStore,
		ProvidePublisher,
		ProvideIndicatorStore,
		ProvideFeatureStore,
		ProvideModelStore,
		ProvidePredictionStore,

		// External services
		ProvidePriceSource,
		ProvideTickerStream,
		ProvideConsumer,

		// Use cases
		ProvidePriceProcessor,
		ProvideHistoryCollector,
		ProvideTickerCollector,
		ProvideDeriveUseCase,
		ProvideTrainerConfig,
		ProvideForecastUseCase,
		ProvideQueryUseCase,
		ProvideScheduler,
		ProvideJobs,

		// HTTP surface
		ProvideRouter,
		ProvideHTTPServer,

		// Application
		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeToolbox wires the subset of dependencies needed to run a single
// pipeline command and exit.
func InitializeToolbox(cfg *config.Config) (*Toolbox, error) {
	wire.Build(
		ProvideLogCollector,
		ProvideLogger,
		ProvideMetrics,
		ProvideClickHouseClient,
		ProvideWarehouse,
		ProvideCacheService,
		ProvidePriceStore,
		ProvidePublisher,
		ProvideIndicatorStore,
		ProvideFeatureStore,
		ProvideModelStore,
		ProvidePredictionStore,
		ProvidePriceSource,
		ProvidePriceProcessor,
		ProvideHistoryCollector,
		ProvideDeriveUseCase,
		ProvideTrainerConfig,
		ProvideForecastUseCase,
		ProvideToolbox,
	)
	return &Toolbox{}, nil
}
