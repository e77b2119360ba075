package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/anvilbuild/anvil/internal/config"
	"github.com/anvilbuild/anvil/internal/constraint"
	"github.com/anvilbuild/anvil/internal/ctxlog"
	"github.com/anvilbuild/anvil/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	config   *Config
	logger   *slog.Logger
	registry *registry.Registry
	model    *config.Model
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and a frozen
// constraint store ready for planning.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Load all manifests into the format-agnostic model first.
	model, err := loader.Load(ctx, appConfig.ManifestPath)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.",
		"projects", len(model.Projects), "tasks", len(model.Tasks))

	// Plugins register their tasks and declare constraints against a
	// mutable store.
	store := constraint.NewStore()
	reg := registry.New(store)
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg, model)
	}
	logger.Debug("All plugin modules registered.", "count", len(modules), "tasks", len(reg.TaskNames()))

	// Manifest-declared orderings land in the same store as the
	// plugin-declared ones.
	reg.ApplyOrderings(model)

	// Registration is over; the store becomes read-only for planning
	// and execution.
	store.Freeze()
	logger.Debug("Constraint store frozen.")

	return &App{
		outW:     outW,
		config:   appConfig,
		logger:   logger,
		registry: reg,
		model:    model,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded configuration model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
