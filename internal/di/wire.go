//go:build wireinject
// +build wireinject

package di

import (
	"AstroPull/pkg/config"
	"AstroPull/pkg/server"

	"github.com/google/wire"
)

var coreSet = wire.NewSet(
	// Observability
	ProvideLogger,
	ProvideMetrics,

	// Infrastructure clients
	ProvideKafkaProducer,
	ProvideCache,

	// Repositories
	ProvideFillSource,
	ProvidePriceSource,
	ProvideEventPublisher,

	// Use cases
	ProvidePipeline,
	ProvideDashboard,
	ProvidePriceLookup,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		coreSet,
		ProvideLogShipping,
		ProvideSessionStore,
		ProvideRateLimiter,
		ProvideHandlers,
		ProvideHTTPServer,
		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeToolkit wires the use cases for one-shot CLI commands.
func InitializeToolkit(cfg *config.Config) (*Toolkit, error) {
	wire.Build(
		coreSet,
		ProvideToolkit,
	)
	return &Toolkit{}, nil
}
