package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	wshub "FinGauge/internal/handler/ws"
	"FinGauge/internal/middleware"
	"FinGauge/internal/scheduler"
	"FinGauge/pkg/config"
	xhttp "FinGauge/pkg/http"
	applogger "FinGauge/pkg/logger"
	"FinGauge/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	queue      queue.Queue
	sched      *scheduler.Scheduler
	pipeline   *middleware.PushPipeline
	hub        *wshub.Hub
	handler    xhttp.Handler
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	q queue.Queue,
	sched *scheduler.Scheduler,
	pipeline *middleware.PushPipeline,
	hub *wshub.Hub,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:      cfg,
		l:        l,
		queue:    q,
		sched:    sched,
		pipeline: pipeline,
		hub:      hub,
		handler:  handler,
	}
}

// Run starts every component and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(
			a.cfg.Server.ReadTimeout.Std(),
			a.cfg.Server.WriteTimeout.Std(),
			a.cfg.Server.ShutdownTimeout.Std(),
		),
		xhttp.WithCORS(a.cfg.Server.CORSOrigins),
		xhttp.WithMetrics(a.cfg.Metrics.Enabled, a.cfg.Metrics.Path),
		xhttp.WithRequestLogger(a.l),
	)

	a.hub.Start(ctx)
	if a.cfg.Push.Enabled {
		a.pipeline.Start(ctx)
		a.l.Info("push pipeline started",
			applogger.Duration("interval", a.cfg.Push.Interval.Std()))
	}

	if err := a.queue.Start(); err != nil {
		return fmt.Errorf("queue start: %w", err)
	}
	a.l.Info("queue started", applogger.Int("workers", a.cfg.Queue.Workers))

	if err := a.sched.Start(); err != nil {
		return fmt.Errorf("scheduler start: %w", err)
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown stops components in reverse start order: the server stops
// accepting requests, the scheduler stops enqueueing, the queue drains
// its workers, then the push side winds down.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout.Std())
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Warn("http shutdown error", applogger.Error(err))
	}

	a.sched.Stop()

	// Flush buffered log digests while the queue workers still run.
	a.l.RemoveCollector()

	if err := a.queue.Stop(shutdownCtx); err != nil {
		a.l.Warn("queue stop error", applogger.Error(err))
	}

	if a.cfg.Push.Enabled {
		a.pipeline.Stop()
	}
	a.hub.Stop()

	a.l.Info("shutdown complete")
	return nil
}
