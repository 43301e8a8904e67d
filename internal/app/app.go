// Package app wires the audiograph runtime together: logger, node type
// catalog, audio engine, graph orchestrator and preset loading.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gridsound/audiograph/internal/catalog"
	"github.com/gridsound/audiograph/internal/ctxlog"
	"github.com/gridsound/audiograph/internal/graph"
	"github.com/gridsound/audiograph/internal/preset"
	"github.com/gridsound/audiograph/internal/synth"
	"github.com/gridsound/audiograph/internal/synth/dsp"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	catalog *catalog.Catalog
	engine  synth.Engine
	graph   *graph.Graph
	preset  *preset.GraphConfig

	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger, catalog and engine.
func NewApp(outW io.Writer, appConfig *Config, loader preset.Loader, modules ...catalog.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	cfg, err := loader.Load(ctx, appConfig.PresetPath)
	if err != nil {
		// A failure to load the preset is a fatal startup error.
		panic(fmt.Errorf("failed to load preset: %w", err))
	}
	logger.Debug("Preset loaded and validated.", "preset", cfg.Name, "nodes", len(cfg.Nodes))

	cat := catalog.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(cat)
	}
	logger.Debug("All node type modules registered.", "types", cat.Types())

	var device dsp.OutputDevice = dsp.NewPortAudioDevice(0)
	if appConfig.Headless {
		device = dsp.NullDevice{}
	}
	engine := dsp.NewEngine(device)

	return &App{
		outW:    outW,
		logger:  logger,
		config:  appConfig,
		catalog: cat,
		engine:  engine,
		graph:   graph.New(engine, cat),
		preset:  cfg,
	}
}

// Graph returns the application's orchestrator. This is primarily for the
// TUI front end and testing.
func (a *App) Graph() *graph.Graph {
	return a.graph
}

// Preset returns the loaded preset configuration.
func (a *App) Preset() *preset.GraphConfig {
	return a.preset
}
