package model

// Phase is a named stage of work applied to a project, e.g. "build" or
// "test". Its two dependency sets define the ordering rules the planner
// turns into graph edges.
type Phase struct {
	// Name is the unique phase identifier.
	Name string
	// After lists phases of the same project that must finish before this
	// phase may start.
	After []string
	// UpstreamAfter lists phases that must finish on every directly
	// depended-on project before this phase may start.
	UpstreamAfter []string
}
