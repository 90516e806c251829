package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CoinSight/pkg/logger"
)

// Component is a long-running part of the application with a lifecycle.
type Component interface {
	Name() string
	Start() error
	Stop(ctx context.Context) error
}

// App coordinates component startup, signal handling, and ordered shutdown.
type App struct {
	name            string
	logger          *logger.Logger
	components      []Component
	shutdownTimeout time.Duration
}

// AppOption configures App.
type AppOption func(*App)

// WithShutdownTimeout sets the graceful shutdown deadline.
func WithShutdownTimeout(d time.Duration) AppOption {
	return func(a *App) {
		if d > 0 {
			a.shutdownTimeout = d
		}
	}
}

// NewApp creates an application runner.
func NewApp(name string, lgr *logger.Logger, opts ...AppOption) *App {
	a := &App{
		name:            name,
		logger:          lgr,
		shutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register adds components in startup order. Shutdown runs in reverse.
func (a *App) Register(components ...Component) {
	a.components = append(a.components, components...)
}

// Run starts every component, blocks until SIGINT/SIGTERM, then stops
// them in reverse order.
func (a *App) Run() error {
	started := make([]Component, 0, len(a.components))

	for _, c := range a.components {
		a.logger.Info("starting component", logger.String("component", c.Name()))
		if err := c.Start(); err != nil {
			a.logger.Error("component start failed",
				logger.String("component", c.Name()),
				logger.Error(err))
			a.stopAll(started)
			return fmt.Errorf("start %s: %w", c.Name(), err)
		}
		started = append(started, c)
	}

	a.logger.Info("application started",
		logger.String("app", a.name),
		logger.Int("components", len(started)))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	a.logger.Info("shutdown signal received", logger.String("signal", sig.String()))
	a.stopAll(started)
	a.logger.Info("application stopped", logger.String("app", a.name))
	return nil
}

func (a *App) stopAll(started []Component) {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	for i := len(started) - 1; i >= 0; i-- {
		c := started[i]
		if err := c.Stop(ctx); err != nil {
			a.logger.Error("component stop failed",
				logger.String("component", c.Name()),
				logger.Error(err))
		} else {
			a.logger.Info("component stopped", logger.String("component", c.Name()))
		}
	}
}
