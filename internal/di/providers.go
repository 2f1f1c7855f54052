package di

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/notiabet/courtedge/internal/domain/repository"
	"github.com/notiabet/courtedge/internal/domain/service"
	"github.com/notiabet/courtedge/internal/handler/api"
	"github.com/notiabet/courtedge/internal/handler/ws"
	internalrepo "github.com/notiabet/courtedge/internal/repository"
	"github.com/notiabet/courtedge/internal/service/advisor"
	icache "github.com/notiabet/courtedge/internal/service/cache"
	"github.com/notiabet/courtedge/internal/service/decision"
	"github.com/notiabet/courtedge/internal/service/nbastats"
	"github.com/notiabet/courtedge/internal/service/odds"
	"github.com/notiabet/courtedge/internal/service/predict"
	"github.com/notiabet/courtedge/internal/service/ratelimit"
	"github.com/notiabet/courtedge/internal/service/schedule"
	"github.com/notiabet/courtedge/internal/service/scores"
	"github.com/notiabet/courtedge/internal/usecase"
	pkgch "github.com/notiabet/courtedge/pkg/clickhouse"
	"github.com/notiabet/courtedge/pkg/config"
	xhttp "github.com/notiabet/courtedge/pkg/http"
	pkgkafka "github.com/notiabet/courtedge/pkg/kafka"
	"github.com/notiabet/courtedge/pkg/logger"
	"github.com/notiabet/courtedge/pkg/metrics"
	"github.com/notiabet/courtedge/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	level, format := "info", "json"
	if cfg.Environment == "development" {
		level, format = "debug", "console"
	}
	return logger.New(&logger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideStatsSource creates the team stats aggregator.
func ProvideStatsSource(cfg *config.Config, log *logger.Logger, m repository.Metrics) repository.StatsSource {
	httpClient := xhttp.NewClient(
		xhttp.WithTimeout(cfg.Stats.FetchTimeout),
		xhttp.WithRetry(cfg.Stats.MaxAttempts, 500*time.Millisecond),
	)
	client := nbastats.NewClient(httpClient, ratelimit.New(), cfg.Stats.BaseURL, cfg.Stats.Season, cfg.Stats.MaxRPS)
	return nbastats.NewAggregator(client, log, m, cfg.Stats.CacheTTL, cfg.Stats.Workers)
}

// ProvideScheduleSource loads the season schedule.
func ProvideScheduleSource(cfg *config.Config) (repository.ScheduleSource, error) {
	resolver, err := schedule.NewResolver(cfg.Schedule.Path)
	if err != nil {
		return nil, fmt.Errorf("schedule resolver: %w", err)
	}
	return resolver, nil
}

// ProvideOddsSource creates the market odds client.
func ProvideOddsSource(cfg *config.Config, log *logger.Logger) repository.OddsSource {
	httpClient := xhttp.NewClient(
		xhttp.WithTimeout(cfg.Odds.FetchTimeout),
		xhttp.WithRetry(2, 500*time.Millisecond),
	)
	return odds.NewClient(httpClient, log, cfg.Odds.BaseURL, cfg.Odds.Sportsbook, cfg.Odds.DefaultTotal)
}

// ProvideLiveScoreSource creates the scoreboard client.
func ProvideLiveScoreSource(cfg *config.Config) repository.LiveScoreSource {
	httpClient := xhttp.NewClient(
		xhttp.WithTimeout(cfg.Scores.FetchTimeout),
		xhttp.WithRetry(2, 500*time.Millisecond),
	)
	return scores.NewClient(httpClient, cfg.Scores.ScoreboardURL)
}

// ProvideScorer creates the calibrated model adapter.
func ProvideScorer(cfg *config.Config, log *logger.Logger) service.Scorer {
	return predict.NewPredictor(log, cfg.Models.Dir, cfg.Models.MoneylineFile, cfg.Models.TotalFile)
}

// ProvideDecisionEngine creates the edge/staking engine.
func ProvideDecisionEngine(cfg *config.Config) *decision.Engine {
	return decision.NewEngine(decision.Config{
		MinEdge:       cfg.Decision.MinEdge,
		MinOdds:       cfg.Decision.MinOdds,
		KellyFraction: cfg.Decision.KellyFraction,
		MaxStakePct:   cfg.Decision.MaxStakePct,
	})
}

// ProvideRiskAdvisor creates the advisory collaborator.
func ProvideRiskAdvisor(cfg *config.Config, log *logger.Logger) service.RiskAdvisor {
	httpClient := xhttp.NewClient(xhttp.WithTimeout(cfg.Advisor.Timeout))
	return advisor.New(httpClient, log, cfg.Advisor.BaseURL)
}

// ProvideBundleCache selects the bundle cache backend.
func ProvideBundleCache(cfg *config.Config) icache.BytesCache {
	if cfg.Cache.Backend == "redis" {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when history
// persistence is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvidePredictionStore creates the ClickHouse history store, or nil when
// persistence is disabled.
func ProvidePredictionStore(client *pkgch.Client, log *logger.Logger) (repository.PredictionStore, error) {
	if client == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store, err := internalrepo.NewPredictionStore(ctx, client, log)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when events are
// disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideBundlePublisher creates the bundle event publisher, or nil when
// events are disabled.
func ProvideBundlePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewBundlePublisher(producer, cfg.Kafka.Topic)
}

// ProvideOrchestrator wires the daily pipeline.
func ProvideOrchestrator(
	cfg *config.Config,
	log *logger.Logger,
	stats repository.StatsSource,
	sched repository.ScheduleSource,
	oddsSource repository.OddsSource,
	scorer service.Scorer,
	engine *decision.Engine,
	riskAdvisor service.RiskAdvisor,
	bundleCache icache.BytesCache,
	store repository.PredictionStore,
	publisher repository.Publisher,
	m repository.Metrics,
) *usecase.Orchestrator {
	return usecase.NewOrchestrator(
		usecase.Config{
			ReferenceBankroll: cfg.Orchestrator.ReferenceBankroll,
			DefaultTotalLine:  cfg.Odds.DefaultTotal,
		},
		log, stats, sched, oddsSource, scorer, engine, riskAdvisor,
		bundleCache, store, publisher, m,
	)
}

// ProvideAuditor wires the result settlement pass.
func ProvideAuditor(
	log *logger.Logger,
	liveScores repository.LiveScoreSource,
	sched repository.ScheduleSource,
	store repository.PredictionStore,
) *usecase.Auditor {
	return usecase.NewAuditor(log, liveScores, sched, store)
}

// ProvideHub creates the websocket broadcast hub.
func ProvideHub(log *logger.Logger) *ws.Hub {
	return ws.NewHub(log)
}

// ProvideAPIHandler creates the REST handler.
func ProvideAPIHandler(log *logger.Logger, orch *usecase.Orchestrator) *api.Handler {
	return api.NewHandler(log, orch)
}

// compositeHandler mounts several route groups on one server.
type compositeHandler struct {
	handlers []xhttp.Handler
}

func (c compositeHandler) RegisterRoutes(e *echo.Echo) {
	for _, h := range c.handlers {
		h.RegisterRoutes(e)
	}
}

// ProvideHTTPHandler combines the REST and websocket surfaces.
func ProvideHTTPHandler(apiHandler *api.Handler, hub *ws.Hub) xhttp.Handler {
	return compositeHandler{handlers: []xhttp.Handler{apiHandler, hub}}
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	handler xhttp.Handler,
	orch *usecase.Orchestrator,
	auditor *usecase.Auditor,
	hub *ws.Hub,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
) *server.App {
	orch.OnBundleCached(hub.BroadcastBundle)
	return server.New(cfg, log, handler, orch, auditor, chClient, producer)
}
