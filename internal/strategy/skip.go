package strategy

import "context"

// Skip is the no-work strategy. It reports a fixed Skipped outcome without
// side effects. The planner attaches it to operations outside the requested
// scope and, after dirty propagation, to in-scope operations whose inputs
// are known to be unchanged.
type Skip struct {
	name   string
	silent bool
}

// NewSkip creates a skip strategy with the given display name. Silent skips
// (scope exclusions) are not worth a log line; non-silent ones (clean
// operations) are reported once at debug level by the executor.
func NewSkip(name string, silent bool) *Skip {
	return &Skip{name: name, silent: silent}
}

// Name implements Strategy.
func (s *Skip) Name() string { return s.name }

// Cacheable implements Strategy. A skip produces nothing to cache.
func (s *Skip) Cacheable() bool { return false }

// ReportsTiming implements Strategy.
func (s *Skip) ReportsTiming() bool { return false }

// AllowsWarnings implements Strategy.
func (s *Skip) AllowsWarnings() bool { return false }

// Silent implements Strategy.
func (s *Skip) Silent() bool { return s.silent }

// Hash implements Strategy. Skips carry no cacheable payload.
func (s *Skip) Hash(ctx context.Context) (string, error) { return "", nil }

// Execute implements Strategy. It immediately yields Skipped.
func (s *Skip) Execute(ctx context.Context) (Outcome, error) {
	return Skipped, nil
}
