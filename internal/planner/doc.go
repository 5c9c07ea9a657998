/*
Package planner constructs the operation graph for one planning pass. It is
the bridge between the static workspace model (internal/model) and the
execution engine (internal/executor).

Construction is demand-driven: for every requested phase×project pair the
planner recursively resolves the pair's predecessors first, following the
phase's two dependency axes:

 1. Same-project ordering: phases listed in the phase's After set are
    resolved for the same project and wired as dependencies.

 2. Cross-project ordering: phases listed in UpstreamAfter are resolved for
    every directly depended-on project and wired as dependencies.

A memo keyed by (project, phase) guarantees each pair is expanded at most
once per pass; a memo hit still returns the cached operations so the caller
can wire edges onto them. The memo entry is registered before the
per-project settings lookup, so re-entering a pair whose expansion has not
finished is reported as a phase-dependency cycle instead of looping.

When the settings lookup yields a shard count N > 1 for a pair, the pair
expands into N parallel shard operations bracketed by two synthetic cache
boundaries: a restore operation that inherits the pair's same-project
predecessor edges, and a save operation that inherits its cross-project
predecessor edges and depends on every shard.

After the graph is complete, a dirty-propagation worklist grows the set of
operations known to carry work (operations of possibly-changed projects and
every boundary/shard operation) forward across consumer edges until no
operation is added. In-scope operations never reached by that closure have
provably clean inputs and are demoted to the skip strategy.
*/
package planner
