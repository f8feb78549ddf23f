//go:build wireinject
// +build wireinject

package di

import (
	"SignalGate/pkg/config"
	"SignalGate/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideSignalStorage,
		ProvideSignalPublisher,
		ProvideAlertPublisher,
		ProvideFeedStream,

		// Admission services
		ProvideRateLimiter,
		ProvideProviderSet,
		ProvideCooldowns,
		ProvideOrchestrator,
		ProvideMonitor,

		// Use cases
		ProvideSignalProcessor,
		ProvideSignalCollector,

		// HTTP surface
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
