package model

import (
	"fmt"
	"sort"
)

// Workspace is the unified view of the entire monorepo description. A user
// may split projects and phases across many files; the loader consolidates
// them here so the planner can resolve dependencies that span files.
type Workspace struct {
	// Root is the directory the workspace was loaded from. Project
	// directories are resolved relative to it.
	Root string
	// Projects maps project name to its definition.
	Projects map[string]*Project
	// Phases maps phase name to its definition. Phases are global: every
	// project shares the same phase vocabulary.
	Phases map[string]*Phase
}

// NewWorkspace creates and returns an initialized, empty Workspace.
func NewWorkspace(root string) *Workspace {
	return &Workspace{
		Root:     root,
		Projects: make(map[string]*Project),
		Phases:   make(map[string]*Phase),
	}
}

// Project returns the project with the given name.
func (w *Workspace) Project(name string) (*Project, bool) {
	p, ok := w.Projects[name]
	return p, ok
}

// Phase returns the phase with the given name.
func (w *Workspace) Phase(name string) (*Phase, bool) {
	p, ok := w.Phases[name]
	return p, ok
}

// ProjectNames returns every project name in lexical order. The planner
// seeds its traversal from this list, which keeps construction order
// deterministic across runs.
func (w *Workspace) ProjectNames() []string {
	names := make([]string, 0, len(w.Projects))
	for name := range w.Projects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks referential integrity: every depends_on entry must name a
// known project and every phase-ordering entry must name a known phase.
func (w *Workspace) Validate() error {
	for _, p := range w.Projects {
		for _, dep := range p.DependsOn {
			if _, ok := w.Projects[dep]; !ok {
				return fmt.Errorf("project %q depends on unknown project %q", p.Name, dep)
			}
		}
		for phase := range p.Runs {
			if _, ok := w.Phases[phase]; !ok {
				return fmt.Errorf("project %q configures unknown phase %q", p.Name, phase)
			}
		}
	}
	for _, ph := range w.Phases {
		for _, dep := range ph.After {
			if _, ok := w.Phases[dep]; !ok {
				return fmt.Errorf("phase %q ordered after unknown phase %q", ph.Name, dep)
			}
		}
		for _, dep := range ph.UpstreamAfter {
			if _, ok := w.Phases[dep]; !ok {
				return fmt.Errorf("phase %q ordered after unknown upstream phase %q", ph.Name, dep)
			}
		}
	}
	return nil
}
