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

// pairKey is the memo key: one (project, phase) pair per expansion.
type pairKey struct {
	project string
	phase   string
}

// memoEntry is one memo slot. It is registered, still expanding, before the
// settings lookup for its key, so a re-entry during expansion is
// observable: within the pass's single depth-first traversal that can only
// mean a dependency cycle in the phase data.
type memoEntry struct {
	expanding bool
	ops       []*op.Operation
}

// pass is the mutable state of one construction pass: the memo, the
// work-tracking set feeding dirty propagation, and the operations created
// so far. It is confined to the goroutine running Plan.
type pass struct {
	planner *Planner
	req     *Request
	memo    map[pairKey]*memoEntry
	work    map[*op.Operation]struct{}
	created []*op.Operation
}

func newPass(p *Planner, req *Request) *pass {
	return &pass{
		planner: p,
		req:     req,
		memo:    make(map[pairKey]*memoEntry),
		work:    make(map[*op.Operation]struct{}),
	}
}

// seedProjects returns the projects the requested phases are expanded for,
// in deterministic order.
func (ps *pass) seedProjects() []string {
	if ps.req.ScopeProjects == nil {
		return ps.planner.ws.ProjectNames()
	}
	var names []string
	for _, name := range ps.planner.ws.ProjectNames() {
		if _, ok := ps.req.ScopeProjects[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// inScope reports whether the (phase, project) pair is inside the requested
// selection. Out-of-scope operations are skipped regardless of change state.
func (ps *pass) inScope(phase, project string) bool {
	if ps.req.ScopePhases != nil {
		if _, ok := ps.req.ScopePhases[phase]; !ok {
			return false
		}
	} else {
		requested := false
		for _, name := range ps.req.Phases {
			if name == phase {
				requested = true
				break
			}
		}
		if !requested {
			return false
		}
	}
	if ps.req.ScopeProjects != nil {
		if _, ok := ps.req.ScopeProjects[project]; !ok {
			return false
		}
	}
	return true
}

// resolve returns the operations representing the given (phase, project)
// pair, creating and wiring them on first demand. Callers wire a dependency
// edge onto every returned operation; for a sharded pair that list contains
// the restore and save boundaries and every shard.
func (ps *pass) resolve(ctx context.Context, phase *model.Phase, project *model.Project) ([]*op.Operation, error) {
	key := pairKey{project: project.Name, phase: phase.Name}
	if entry, ok := ps.memo[key]; ok {
		if entry.expanding {
			return nil, fmt.Errorf("phase dependency cycle detected at %s:%s", project.Name, phase.Name)
		}
		return entry.ops, nil
	}
	entry := &memoEntry{expanding: true}
	ps.memo[key] = entry

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Resolving pair.", "project", project.Name, "phase", phase.Name)

	projectSettings, err := ps.planner.settings.ProjectSettings(ctx, project.Name)
	if err != nil {
		return nil, fmt.Errorf("settings lookup for project %q: %w", project.Name, err)
	}
	cfg := projectSettings[phase.Name]

	var ops []*op.Operation
	if cfg.Shards > 1 {
		ops, err = ps.expandSharded(ctx, phase, project, cfg)
	} else {
		ops, err = ps.expandSingle(ctx, phase, project, cfg)
	}
	if err != nil {
		return nil, err
	}

	entry.ops = ops
	entry.expanding = false
	return ops, nil
}

// expandSingle creates the one operation of an unsharded pair and wires its
// predecessors.
func (ps *pass) expandSingle(ctx context.Context, phase *model.Phase, project *model.Project, cfg settings.PhaseSettings) ([]*op.Operation, error) {
	o := op.New(project.Name, phase.Name, op.KindPhase, nil)
	ps.created = append(ps.created, o)

	if !ps.inScope(phase.Name, project.Name) {
		// Scope pre-empts change state: the pair was only reached as a
		// dependency handle.
		o.Strategy = strategy.NewSkip(o.ID(), true)
	} else {
		o.Strategy = ps.planner.strategies(o, cfg)
		if _, changed := ps.req.Changed[project.Name]; changed {
			ps.work[o] = struct{}{}
		}
	}

	if err := ps.link(ctx, o, o, phase, project); err != nil {
		return nil, err
	}
	return []*op.Operation{o}, nil
}

// expandSharded creates the restore/save boundaries and the N shard
// operations of a sharded pair. Same-project predecessors must precede the
// fan-out, so their edges land on restore; cross-project predecessors only
// need to precede completion of the aggregate, so theirs land on save.
// Boundary and shard operations always carry work: whether the bracketed
// artifact is already cached is the cache subsystem's decision.
func (ps *pass) expandSharded(ctx context.Context, phase *model.Phase, project *model.Project, cfg settings.PhaseSettings) ([]*op.Operation, error) {
	restore := op.New(project.Name, phase.Name, op.KindRestore, nil)
	restore.Strategy = strategy.NewRestore(project.Name, phase.Name)
	save := op.New(project.Name, phase.Name, op.KindSave, nil)
	save.Strategy = strategy.NewSave(project.Name, phase.Name)

	ps.created = append(ps.created, restore, save)
	ps.work[restore] = struct{}{}
	ps.work[save] = struct{}{}

	if err := ps.link(ctx, restore, save, phase, project); err != nil {
		return nil, err
	}

	ops := []*op.Operation{restore, save}
	for i := 1; i <= cfg.Shards; i++ {
		shard := op.New(project.Name, phase.Name, op.KindPhase, &op.Shard{Index: i, Total: cfg.Shards})
		shard.Strategy = ps.planner.strategies(shard, cfg)
		shard.AddDependency(restore)
		save.AddDependency(shard)
		ps.created = append(ps.created, shard)
		ps.work[shard] = struct{}{}
		ops = append(ops, shard)
	}
	return ops, nil
}

// link resolves and wires the pair's predecessors. selfTarget receives the
// same-project edges, upstreamTarget the cross-project edges; for an
// unsharded pair both are the same operation.
func (ps *pass) link(ctx context.Context, selfTarget, upstreamTarget *op.Operation, phase *model.Phase, project *model.Project) error {
	for _, depName := range phase.After {
		depPhase, ok := ps.planner.ws.Phase(depName)
		if !ok {
			return fmt.Errorf("phase %q orders after unknown phase %q", phase.Name, depName)
		}
		resolved, err := ps.resolve(ctx, depPhase, project)
		if err != nil {
			return err
		}
		for _, dep := range resolved {
			selfTarget.AddDependency(dep)
		}
	}

	for _, depName := range phase.UpstreamAfter {
		depPhase, ok := ps.planner.ws.Phase(depName)
		if !ok {
			return fmt.Errorf("phase %q orders after unknown upstream phase %q", phase.Name, depName)
		}
		for _, upstreamName := range project.DependsOn {
			upstream, ok := ps.planner.ws.Project(upstreamName)
			if !ok {
				return fmt.Errorf("project %q depends on unknown project %q", project.Name, upstreamName)
			}
			resolved, err := ps.resolve(ctx, depPhase, upstream)
			if err != nil {
				return err
			}
			for _, dep := range resolved {
				upstreamTarget.AddDependency(dep)
			}
		}
	}
	return nil
}
