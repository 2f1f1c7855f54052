package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/notiabet/courtedge/internal/usecase"
	pkgch "github.com/notiabet/courtedge/pkg/clickhouse"
	"github.com/notiabet/courtedge/pkg/config"
	xhttp "github.com/notiabet/courtedge/pkg/http"
	pkgkafka "github.com/notiabet/courtedge/pkg/kafka"
	applogger "github.com/notiabet/courtedge/pkg/logger"
)

// runTimeout bounds one scheduled pipeline run.
const runTimeout = 5 * time.Minute

// App encapsulates the application lifecycle: the HTTP server, the cron
// schedule driving the evaluation runs, and infrastructure clients.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	orch       *usecase.Orchestrator
	auditor    *usecase.Auditor
	chClient   *pkgch.Client
	producer   *pkgkafka.Producer
	httpServer *xhttp.Server
	cron       *cron.Cron
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	orch *usecase.Orchestrator,
	auditor *usecase.Auditor,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		handler:  handler,
		orch:     orch,
		auditor:  auditor,
		chClient: chClient,
		producer: producer,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)

	a.cron = cron.New()
	for _, spec := range a.cfg.Orchestrator.CronSpecs {
		if _, err := a.cron.AddFunc(spec, a.scheduledRun); err != nil {
			a.log.Error("invalid cron spec",
				applogger.String("spec", spec),
				applogger.Error(err))
			return err
		}
		a.log.Info("run scheduled", applogger.String("spec", spec))
	}
	a.cron.Start()

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("server listening", applogger.Int("port", a.cfg.Server.Port))

	// Warm today's bundle so the first API call after startup is a hit.
	go a.scheduledRun()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// scheduledRun refreshes today's bundle and settles yesterday's results.
func (a *App) scheduledRun() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if _, err := a.orch.Refresh(ctx, "cron"); err != nil {
		a.log.Error("scheduled run failed", applogger.Error(err))
	}
	if err := a.auditor.SettleDay(ctx, time.Now().UTC().Add(-24*time.Hour)); err != nil {
		a.log.Warn("result audit failed", applogger.Error(err))
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	cronCtx := a.cron.Stop()
	<-cronCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
