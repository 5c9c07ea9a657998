// Package model holds the format-agnostic representation of a workspace:
// the projects that make up the monorepo, the phases that can be applied to
// them, and the per-project settings for each phase. It is produced by a
// loader (see internal/hclspec) and is read-only afterwards; the planner
// and the settings provider only ever query it.
package model
