// Package app wires the application together: it validates configuration,
// builds the run logger, loads the workspace, constructs the planner and
// hands the planned operation set to the executor.
package app
