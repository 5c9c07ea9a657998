package app

import (
	"context"
	"fmt"

	"github.com/vk/monogridgo/internal/ctxlog"
	"github.com/vk/monogridgo/internal/executor"
	"github.com/vk/monogridgo/internal/planner"
	"github.com/vk/monogridgo/internal/strategy"
)

// Run executes the main application logic: plan the operation graph for
// the requested selection, then walk it.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	req := a.buildRequest()
	ops, err := a.planner.Plan(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to plan operation graph: %w", err)
	}

	mustRun, skipped := 0, 0
	for _, o := range ops {
		if _, isSkip := o.Strategy.(*strategy.Skip); isSkip {
			skipped++
		} else {
			mustRun++
		}
	}
	a.logger.Info("Operation graph planned.", "total", len(ops), "must_run", mustRun, "skipped", skipped)

	if a.cfg.PlanOnly {
		for _, o := range ops {
			disposition := "run"
			if _, isSkip := o.Strategy.(*strategy.Skip); isSkip {
				disposition = "skip"
			}
			a.logger.Info("Planned operation.", "id", o.ID(), "disposition", disposition, "deps", len(o.Deps))
		}
		return nil
	}

	if len(ops) == 0 {
		a.logger.Warn("No operations planned, execution not required.")
		return nil
	}

	a.logger.Info("🚀 Starting concurrent execution...")
	exec := executor.New(ops, a.cfg.Workers)
	if err := exec.Run(ctx); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("🏁 Execution finished.")
	return nil
}

// buildRequest translates the CLI-facing config into a planner request. An
// empty changed list means every selected project is treated as possibly
// changed, which is the safe default for a first run.
func (a *App) buildRequest() *planner.Request {
	req := &planner.Request{Phases: a.cfg.Phases}

	if len(a.cfg.Projects) > 0 {
		req.ScopeProjects = make(map[string]struct{}, len(a.cfg.Projects))
		for _, name := range a.cfg.Projects {
			req.ScopeProjects[name] = struct{}{}
		}
	}

	req.Changed = make(map[string]struct{})
	if len(a.cfg.Changed) > 0 {
		for _, name := range a.cfg.Changed {
			req.Changed[name] = struct{}{}
		}
	} else if req.ScopeProjects != nil {
		for name := range req.ScopeProjects {
			req.Changed[name] = struct{}{}
		}
	} else {
		for _, name := range a.ws.ProjectNames() {
			req.Changed[name] = struct{}{}
		}
	}
	return req
}
