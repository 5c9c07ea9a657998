package strategy

import (
	"context"
	"fmt"
)

// boundaryHash is the placeholder cache key contribution for boundary
// operations. Real content hashing belongs to the external cache subsystem.
const boundaryHash = "cache-boundary"

// Boundary is the synthetic strategy for the restore/save operations that
// bracket a sharded phase. Boundaries are purely topological: they carry no
// work of their own and unconditionally succeed. Whether the bracketed
// artifact is already cached is decided by the cache subsystem, not here.
type Boundary struct {
	name string
}

// NewRestore creates the boundary strategy preceding a sharded phase's fan-out.
func NewRestore(project, phase string) *Boundary {
	return &Boundary{name: fmt.Sprintf("restore %s:%s", project, phase)}
}

// NewSave creates the boundary strategy following a sharded phase's fan-in.
func NewSave(project, phase string) *Boundary {
	return &Boundary{name: fmt.Sprintf("save %s:%s", project, phase)}
}

// Name implements Strategy.
func (b *Boundary) Name() string { return b.name }

// Cacheable implements Strategy.
func (b *Boundary) Cacheable() bool { return true }

// ReportsTiming implements Strategy.
func (b *Boundary) ReportsTiming() bool { return false }

// AllowsWarnings implements Strategy.
func (b *Boundary) AllowsWarnings() bool { return false }

// Silent implements Strategy.
func (b *Boundary) Silent() bool { return true }

// Hash implements Strategy with a fixed placeholder.
func (b *Boundary) Hash(ctx context.Context) (string, error) {
	return boundaryHash, nil
}

// Execute implements Strategy. Boundaries always succeed.
func (b *Boundary) Execute(ctx context.Context) (Outcome, error) {
	return Success, nil
}
