//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/notiabet/courtedge/pkg/config"
	"github.com/notiabet/courtedge/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Data sources
		ProvideStatsSource,
		ProvideScheduleSource,
		ProvideOddsSource,
		ProvideLiveScoreSource,

		// Evaluation services
		ProvideScorer,
		ProvideDecisionEngine,
		ProvideRiskAdvisor,

		// Infrastructure
		ProvideBundleCache,
		ProvideClickHouseClient,
		ProvidePredictionStore,
		ProvideKafkaProducer,
		ProvideBundlePublisher,

		// Use cases
		ProvideOrchestrator,
		ProvideAuditor,

		// Delivery
		ProvideHub,
		ProvideAPIHandler,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
