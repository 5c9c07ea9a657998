package planner

import (
	"context"
	"fmt"

	"github.com/vk/monogridgo/internal/ctxlog"
	"github.com/vk/monogridgo/internal/model"
	"github.com/vk/monogridgo/internal/op"
	"github.com/vk/monogridgo/internal/settings"
	"github.com/vk/monogridgo/internal/strategy"
)

// StrategyFactory produces the real execution strategy for an in-scope
// operation, given the settings resolved for its (project, phase) pair.
// The planner treats the result as opaque.
type StrategyFactory func(o *op.Operation, cfg settings.PhaseSettings) strategy.Strategy

// Planner builds operation graphs for a workspace. It is stateless across
// passes; all per-pass state lives in the pass object.
type Planner struct {
	ws         *model.Workspace
	settings   settings.Provider
	strategies StrategyFactory
}

// New creates a planner for the given workspace, settings provider and
// real-work strategy factory.
func New(ws *model.Workspace, provider settings.Provider, strategies StrategyFactory) *Planner {
	return &Planner{ws: ws, settings: provider, strategies: strategies}
}

// Request carries the inputs of one planning pass.
type Request struct {
	// Operations is an existing operation set to extend. The returned set
	// is a superset of it; its elements are never modified.
	Operations []*op.Operation
	// Phases is the originally requested phase set, in request order.
	Phases []string
	// ScopePhases is the in-scope phase subset. Nil means every requested
	// phase is in scope.
	ScopePhases map[string]struct{}
	// ScopeProjects is the in-scope project subset. Nil means every
	// workspace project is in scope.
	ScopeProjects map[string]struct{}
	// Changed is the set of projects with unknown or possibly-changed
	// state. Operations of these projects seed the dirty propagation.
	Changed map[string]struct{}
}

// Plan runs one construction pass: it expands every requested phase across
// every in-scope project, wires the full dependency graph, runs dirty
// propagation and returns the extended operation set. Every returned
// operation has a non-nil strategy and fully wired edges.
func (p *Planner) Plan(ctx context.Context, req *Request) ([]*op.Operation, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Plan: starting graph construction.", "phases", req.Phases)

	ps := newPass(p, req)
	for _, phaseName := range req.Phases {
		phase, ok := p.ws.Phase(phaseName)
		if !ok {
			return nil, fmt.Errorf("requested phase %q is not defined in the workspace", phaseName)
		}
		for _, projectName := range ps.seedProjects() {
			project, ok := p.ws.Project(projectName)
			if !ok {
				return nil, fmt.Errorf("selected project %q is not defined in the workspace", projectName)
			}
			if _, err := ps.resolve(ctx, phase, project); err != nil {
				return nil, err
			}
		}
	}
	logger.Debug("Plan: graph construction complete.", "operation_count", len(ps.created))

	ps.propagate()
	ps.finalize()
	logger.Debug("Plan: dirty propagation complete.", "work_count", len(ps.work))

	out := make([]*op.Operation, 0, len(req.Operations)+len(ps.created))
	out = append(out, req.Operations...)
	out = append(out, ps.created...)
	return out, nil
}
