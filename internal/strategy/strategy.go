// Package strategy defines the pluggable execution behaviors an operation
// can carry: the command strategy doing a phase's real work, the skip
// strategy short-circuiting operations with unchanged inputs, and the
// restore/save boundary strategies bracketing a sharded phase.
package strategy

import "context"

// Outcome is the closed set of terminal results an execution can yield.
type Outcome int

const (
	// Success means the work completed.
	Success Outcome = iota
	// Skipped means the operation was short-circuited without doing work.
	Skipped
	// Failure means the work ran and failed.
	Failure
)

// String returns the lowercase name of the outcome.
func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Skipped:
		return "skipped"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Strategy is the execution behavior attached to an operation. The planner
// attaches strategies; the executor drives them.
type Strategy interface {
	// Name is the display name used in logs and reports.
	Name() string
	// Cacheable reports whether the operation's result may be persisted by
	// the artifact cache.
	Cacheable() bool
	// ReportsTiming reports whether the executor should log wall-clock
	// duration for the operation.
	ReportsTiming() bool
	// AllowsWarnings reports whether warnings emitted during execution are
	// surfaced rather than suppressed.
	AllowsWarnings() bool
	// Silent reports whether routine lifecycle logging for the operation is
	// demoted to debug level.
	Silent() bool
	// Hash produces the operation's contribution to its cache key.
	Hash(ctx context.Context) (string, error)
	// Execute performs the operation's work and yields a terminal outcome.
	// The returned error is non-nil only for Failure.
	Execute(ctx context.Context) (Outcome, error)
}
