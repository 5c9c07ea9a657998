package model

// Project is one buildable unit of the monorepo.
type Project struct {
	// Name is the unique project identifier.
	Name string
	// Dir is the project directory, relative to the workspace root. Phase
	// commands run with this as their working directory.
	Dir string
	// DependsOn lists the names of projects this project directly depends on.
	DependsOn []string
	// Runs maps phase name to this project's settings for that phase. A
	// phase with no entry still exists for the project; it simply has no
	// command and is never sharded.
	Runs map[string]*Run
}

// Run carries one project's settings for one phase.
type Run struct {
	// Phase names the phase these settings apply to.
	Phase string
	// Command is the shell command executed for the phase. Empty means the
	// phase is a pure ordering point for this project.
	Command string
	// Env holds extra environment variables for the command.
	Env map[string]string
	// Shards is the parallel shard count for the phase. Zero or one means
	// the phase runs as a single operation.
	Shards int
}
