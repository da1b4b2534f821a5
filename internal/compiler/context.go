// Package compiler orchestrates the build-time pipeline: specialize →
// check → phase-analyze → Germ assembly, and memoizes the result of
// compiling one kernel against one (relation|subset, backend) triple as
// a Bran (spec.md §3, §9). Grounded on the teacher's own compiler
// package (a single-purpose orchestrator over its AST), generalized
// from one-pass bytecode emission to a multi-pass pipeline that drives
// the packages built for each stage rather than visiting the AST
// itself.
package compiler

import (
	"github.com/google/uuid"

	"parlay/internal/relation"
)

// CompilerContext threads the choices that would otherwise be global
// mutable state through every pass (DESIGN NOTES §9: "Global mutable
// state ... becomes an explicit CompilerContext"): backend selection,
// default partition count, debug verbosity, and the process-wide Bran
// cache every kernel compile shares.
type CompilerContext struct {
	Backend    string // default "single" (4.9)
	Partitions int
	NBD        int // default boundary depth when a grid omits one (4.9)
	Debug      bool

	// SessionID stamps one compile session with a fresh uuid (DOMAIN
	// STACK: uuid). No debug log line or Bran trace key includes it.
	SessionID uuid.UUID

	Branbank *BranCache
}

// NewContext builds a context with the spec's defaults: "single"
// backend, n_bd = 1, one partition.
func NewContext() *CompilerContext {
	return &CompilerContext{
		Backend:    "single",
		Partitions: 1,
		NBD:        relation.DefaultBoundaryDepth,
		SessionID:  uuid.New(),
		Branbank:   NewBranCache(),
	}
}

// WithBackend returns a copy of the context using the given backend
// name, for callers that need to compile the same kernel set against
// more than one backend in one process (e.g. `parlay check` comparing
// "single" vs "legion" partitioning without a second CompilerContext).
func (c *CompilerContext) WithBackend(backend string) *CompilerContext {
	cp := *c
	cp.Backend = backend
	return &cp
}
