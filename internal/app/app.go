package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/vk/monogridgo/internal/ctxlog"
	"github.com/vk/monogridgo/internal/hclspec"
	"github.com/vk/monogridgo/internal/model"
	"github.com/vk/monogridgo/internal/op"
	"github.com/vk/monogridgo/internal/planner"
	"github.com/vk/monogridgo/internal/settings"
	"github.com/vk/monogridgo/internal/strategy"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	cfg     *Config
	ws      *model.Workspace
	planner *planner.Planner
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated, run-tagged logger. A
// failure to load the workspace is a fatal startup error and panics; the
// caller recovers it into a clean exit.
func NewApp(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW).With("run_id", uuid.NewString())
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	ws, err := hclspec.Load(ctx, cfg.WorkspacePath)
	if err != nil {
		panic(fmt.Errorf("failed to load workspace: %w", err))
	}

	provider, err := settings.FromWorkspace(ctx, ws)
	if err != nil {
		panic(fmt.Errorf("failed to build settings provider: %w", err))
	}

	pl := planner.New(ws, provider, commandStrategies(ws))
	logger.Debug("Planner assembled.", "projects", len(ws.Projects), "phases", len(ws.Phases))

	return &App{
		outW:    outW,
		logger:  logger,
		cfg:     cfg,
		ws:      ws,
		planner: pl,
	}
}

// Workspace returns the loaded workspace model. This is primarily for testing.
func (a *App) Workspace() *model.Workspace {
	return a.ws
}

// commandStrategies returns the factory producing the real execution
// strategy for in-scope operations: the project's configured command for
// the phase, run in the project directory.
func commandStrategies(ws *model.Workspace) planner.StrategyFactory {
	return func(o *op.Operation, cfg settings.PhaseSettings) strategy.Strategy {
		dir := ws.Root
		if project, ok := ws.Project(o.Project); ok {
			dir = filepath.Join(ws.Root, project.Dir)
		}
		return strategy.NewCommand(o.ID(), cfg.Command, dir, cfg.Env)
	}
}
