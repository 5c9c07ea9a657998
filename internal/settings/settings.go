// Package settings resolves per-project, per-phase operation settings,
// most importantly the optional shard count the planner needs to decide
// between a single operation and a sharded fan-out.
package settings

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vk/monogridgo/internal/ctxlog"
	"github.com/vk/monogridgo/internal/model"
)

// PhaseSettings are one project's settings for one phase. The zero value
// means "no command, not sharded", which is a valid configuration.
type PhaseSettings struct {
	// Command is the shell command for the phase, empty for ordering-only phases.
	Command string
	// Env holds extra environment variables for the command.
	Env map[string]string
	// Shards is the parallel shard count; values below two mean unsharded.
	Shards int
}

// Provider resolves the settings of every phase of one project. The lookup
// may block (settings can live on disk or behind a network hop), so it is
// context-aware. A nil map, or a missing phase entry, means "no settings:
// unsharded, no command". A lookup error aborts the whole planning pass.
type Provider interface {
	ProjectSettings(ctx context.Context, project string) (map[string]PhaseSettings, error)
}

// Workspace is a Provider backed by the loaded workspace model. All
// projects are translated up front, concurrently, so planning-time lookups
// are cheap map reads.
type Workspace struct {
	mu       sync.Mutex
	projects map[string]map[string]PhaseSettings
}

// FromWorkspace builds a workspace-backed provider, translating every
// project's run blocks into PhaseSettings.
func FromWorkspace(ctx context.Context, ws *model.Workspace) (*Workspace, error) {
	logger := ctxlog.FromContext(ctx)
	p := &Workspace{projects: make(map[string]map[string]PhaseSettings, len(ws.Projects))}

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range ws.ProjectNames() {
		project := ws.Projects[name]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			phases := make(map[string]PhaseSettings, len(project.Runs))
			for phase, run := range project.Runs {
				phases[phase] = PhaseSettings{
					Command: run.Command,
					Env:     run.Env,
					Shards:  run.Shards,
				}
			}
			p.mu.Lock()
			p.projects[project.Name] = phases
			p.mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Debug("Settings provider populated.", "project_count", len(p.projects))
	return p, nil
}

// ProjectSettings implements Provider.
func (p *Workspace) ProjectSettings(ctx context.Context, project string) (map[string]PhaseSettings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.projects[project], nil
}

// Static is a fixture Provider with canned answers, used in tests.
type Static struct {
	// Projects maps project name to its per-phase settings.
	Projects map[string]map[string]PhaseSettings
	// Err, when non-nil, is returned from every lookup.
	Err error
}

// ProjectSettings implements Provider.
func (s *Static) ProjectSettings(ctx context.Context, project string) (map[string]PhaseSettings, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Projects[project], nil
}
