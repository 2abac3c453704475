//go:build wireinject
// +build wireinject

package di

import (
	"CrossAlert/pkg/config"
	"CrossAlert/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideProviderChain,
		ProvideDeviceStore,
		ProvideNotifier,

		// Use cases
		ProvideChecker,
		ProvideRegistrar,
		ProvideMarketService,

		// HTTP surface
		ProvideHandlers,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
