package op

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vk/monogridgo/internal/strategy"
)

// Shard identifies one of Total parallel partitions of a phase's work.
// Index is 1-based.
type Shard struct {
	Index int
	Total int
}

// Kind distinguishes regular phase operations from the synthetic
// cache-boundary operations that bracket a sharded phase.
type Kind int

const (
	// KindPhase is a regular operation carrying the phase's real work. Shard
	// operations are also of this kind; they carry a shard descriptor.
	KindPhase Kind = iota
	// KindRestore is the synthetic boundary preceding a sharded phase's fan-out.
	KindRestore
	// KindSave is the synthetic boundary following a sharded phase's fan-in.
	KindSave
)

// Operation is a single schedulable unit: project × phase × optional shard.
// Two operations with the same project and phase but different shard
// descriptors (or kinds) are distinct vertices.
type Operation struct {
	// Project is the name of the project this operation belongs to.
	Project string
	// Phase is the name of the phase this operation applies.
	Phase string
	// Kind tells regular operations and cache boundaries apart.
	Kind Kind
	// Shard is the shard descriptor, nil for unsharded operations and for
	// the boundary operations of a sharded phase.
	Shard *Shard

	// Strategy is the operation's execution behavior. The planner attaches
	// it during construction and may replace it exactly once, when the
	// dirty-propagation pass demotes a clean operation to a skip.
	Strategy strategy.Strategy

	// Deps holds the operations this operation depends on, keyed by ID.
	Deps map[string]*Operation
	// Consumers holds the operations that depend on this operation, keyed
	// by ID. It is maintained exclusively by AddDependency.
	Consumers map[string]*Operation

	// Outcome records the terminal result after execution.
	Outcome strategy.Outcome
	// Err stores any error that occurred during execution.
	Err error

	// depCount is an atomic counter of unmet dependencies, used by the
	// executor's scheduler.
	depCount atomic.Int32
	// state is the operation's execution state, managed atomically.
	state atomic.Int32
	// skipOnce ensures an operation is marked skipped and counted exactly once.
	skipOnce sync.Once
}

// New creates an operation with empty, initialized edge sets and no strategy.
func New(project, phase string, kind Kind, shard *Shard) *Operation {
	return &Operation{
		Project:   project,
		Phase:     phase,
		Kind:      kind,
		Shard:     shard,
		Deps:      make(map[string]*Operation),
		Consumers: make(map[string]*Operation),
	}
}

// ID returns the unique, human-readable identifier of the operation.
// Examples: "run.api.build", "run.api.build[2/3]", "restore.api.build".
func (o *Operation) ID() string {
	switch o.Kind {
	case KindRestore:
		return fmt.Sprintf("restore.%s.%s", o.Project, o.Phase)
	case KindSave:
		return fmt.Sprintf("save.%s.%s", o.Project, o.Phase)
	}
	if o.Shard != nil {
		return fmt.Sprintf("run.%s.%s[%d/%d]", o.Project, o.Phase, o.Shard.Index, o.Shard.Total)
	}
	return fmt.Sprintf("run.%s.%s", o.Project, o.Phase)
}

// AddDependency records that o depends on dep. Both sides of the edge are
// written together: dep joins o's dependency set and o joins dep's consumer
// set. The insert is idempotent; adding the same edge twice is a no-op.
func (o *Operation) AddDependency(dep *Operation) {
	id := dep.ID()
	if _, exists := o.Deps[id]; exists {
		return
	}
	o.Deps[id] = dep
	dep.Consumers[o.ID()] = o
}

// State represents the execution state of an operation.
type State int32

const (
	// Pending indicates the operation is waiting for its dependencies.
	Pending State = iota
	// Running indicates a worker is currently executing the operation.
	Running
	// Done indicates the operation finished with a terminal outcome.
	Done
	// Failed indicates the operation failed or was skipped after an
	// upstream failure.
	Failed
)

// SetState atomically sets the operation's execution state.
func (o *Operation) SetState(s State) {
	o.state.Store(int32(s))
}

// GetState atomically retrieves the operation's execution state.
func (o *Operation) GetState() State {
	return State(o.state.Load())
}

// SetDepCount seeds the unmet-dependency counter before execution starts.
func (o *Operation) SetDepCount(count int32) {
	o.depCount.Store(count)
}

// DepCount atomically returns the current number of unmet dependencies.
func (o *Operation) DepCount() int32 {
	return o.depCount.Load()
}

// DecrementDepCount atomically decrements the dependency counter and
// returns the new value.
func (o *Operation) DecrementDepCount() int32 {
	return o.depCount.Add(-1)
}

// Abandon marks the operation failed with the given error and decrements
// the WaitGroup, exactly once. It returns true on the first call.
func (o *Operation) Abandon(err error, wg *sync.WaitGroup) bool {
	var first bool
	o.skipOnce.Do(func() {
		o.SetState(Failed)
		o.Err = err
		wg.Done()
		first = true
	})
	return first
}
