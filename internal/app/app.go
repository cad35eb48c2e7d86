package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/partgrid/internal/catalog"
	"github.com/specialistvlad/partgrid/internal/ctxlog"
	"github.com/specialistvlad/partgrid/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	registry   *registry.Registry
	catalog    *catalog.Model
	config     *Config
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// A manifest that cannot be loaded or does not match the registered parts
// is a programmer error and panics.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	model, err := reg.LoadManifests(ctx, cfg.CatalogPaths...)
	if err != nil {
		panic(fmt.Errorf("failed to load part catalog: %w", err))
	}
	logger.Debug("Registry validation passed.")

	return &App{
		ctx:      ctx,
		outW:     outW,
		logger:   logger,
		registry: reg,
		catalog:  model,
		config:   cfg,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Run describes the catalog and, when configured, probes it and serves it
// over HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Info("Starting partgrid.", "parts", len(a.registry.Names()))

	a.healthCheckServer()
	defer a.closeHealthCheckServer()

	if err := a.Describe(a.outW); err != nil {
		return fmt.Errorf("failed to describe catalog: %w", err)
	}

	if a.config.Probe {
		if err := a.Probe(a.ctx); err != nil {
			return err
		}
	}

	if a.httpServer != nil {
		a.logger.Info("Serving catalog until interrupted.")
		<-a.ctx.Done()
	}
	a.logger.Info("partgrid finished.")
	return nil
}
