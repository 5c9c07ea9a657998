// Package op defines the Operation, the single vertex type of the
// execution graph: one phase applied to one project, optionally narrowed to
// one shard of that phase's work. Operations are created by the planner,
// wired to each other through bidirectional dependency/consumer sets, and
// handed to the executor, which drives them through their execution
// strategy.
package op
