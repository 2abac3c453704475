package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	drepo "CrossAlert/internal/domain/repository"
	"CrossAlert/internal/usecase"
	"CrossAlert/pkg/config"
	xhttp "CrossAlert/pkg/http"
	xlogger "CrossAlert/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *xlogger.Logger
	handler    xhttp.Handler
	checker    *usecase.SignalChecker
	store      drepo.DeviceStore
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *xlogger.Logger,
	handler xhttp.Handler,
	checker *usecase.SignalChecker,
	store drepo.DeviceStore,
) *App {
	return &App{
		cfg:     cfg,
		logger:  logger,
		handler: handler,
		checker: checker,
		store:   store,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", xlogger.Error(err))
		return err
	}
	a.logger.Info("server started",
		xlogger.Int("port", a.cfg.Server.Port),
		xlogger.String("store", a.cfg.Store.Backend),
	)

	// Optional internal scheduler for deployments without an external cron.
	if a.cfg.Checker.Scheduler.Enabled {
		go a.runScheduler(ctx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// runScheduler triggers the signal check on a fixed interval. Runs never
// overlap because each tick waits for the previous run to finish.
func (a *App) runScheduler(ctx context.Context) {
	interval := a.cfg.Checker.Scheduler.Interval
	a.logger.Info("scheduler enabled", xlogger.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			summary, err := a.checker.Run(ctx)
			if err != nil {
				a.logger.Error("scheduled check failed", xlogger.Error(err))
				continue
			}
			a.logger.Info("scheduled check completed",
				xlogger.Int("devices", summary.Devices),
				xlogger.Int("notifications", summary.NotificationsSent),
			)
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", xlogger.Error(err))
	}

	if err := a.store.Close(); err != nil {
		a.logger.Warn("store close error", xlogger.Error(err))
	}

	a.logger.Info("shutdown complete")
	return nil
}
