//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"
)

var baseSet = wire.NewSet(provideConfig, provideLogger)

var providerSet = wire.NewSet(
	provideAWSClients,
	provideStore,
	provideRedisClient,
	provideJobStore,
	provideProviders,
	providePoller,
	provideRegistry,
	provideProviderMetrics,
	provideRunDAO,
)

// InitializeWorker builds the Temporal worker with every activity dependency.
func InitializeWorker(ctx context.Context) (*Worker, func(), error) {
	wire.Build(
		baseSet,
		providerSet,
		provideVoices,
		provideLauncher,
		provideBatchTranslator,
		provideBatchSynthesizer,
		provideActivities,
		providePipeline,
		provideTemporalClient,
		provideSDKWorker,
		provideHealthServer,
		wire.Struct(new(Worker), "*"),
	)
	return nil, nil, nil
}

// InitializeServices builds the trigger, the status handler and the run history.
func InitializeServices(ctx context.Context) (*Services, func(), error) {
	wire.Build(
		baseSet,
		providerSet,
		provideStatusHandler,
		provideLazyTemporalClient,
		provideOrchestrator,
		provideTrigger,
		provideNotificationSource,
		wire.Struct(new(Services), "*"),
	)
	return nil, nil, nil
}

// InitializeHistory opens the run history only.
func InitializeHistory() (*History, func(), error) {
	wire.Build(baseSet, provideRunDAO, wire.Struct(new(History), "*"))
	return nil, nil, nil
}
