// Package lower implements the lowerer / task emitter (spec.md §4.7):
// it turns one kernel (identified by a Bran in the compiler layer) into
// a TaskSpec — the conceptual signature/privileges/body triple §6's
// "Backend task spec output" describes — and, since this module is
// also its own CPU reference backend, an Interp that can actually run
// one. Grounded on the teacher's compiler package (a single pass that
// turns an AST into something runnable), generalized from bytecode
// emission to task-descriptor emission plus direct interpretation.
package lower

import (
	"parlay/internal/ast"
	"parlay/internal/phase"
	"parlay/internal/relation"
)

// TaskSpec is the emitted descriptor for one kernel launch (§4.7):
// Signature = (domain, universe, args, regions, globals); Privileges
// are read from the phase analyzer's field_use/global_use; Body is the
// kernel AST itself, since this module lowers directly to an
// interpretable tree rather than a second IR.
type TaskSpec struct {
	Kernel   *ast.Function
	Universe *relation.Relation
	Domain   *relation.Subset // nil: domain == universe
	Fields   map[*relation.Field]*phase.PhaseType
	Globals  map[*relation.Global]*phase.PhaseType
}

// BuildTaskSpec assembles a TaskSpec from a kernel and its phase
// analysis result (§4.7's "Privileges ... declared on the universe
// region, never on a subset").
func BuildTaskSpec(fn *ast.Function, universe *relation.Relation, domain *relation.Subset, result *phase.Result) *TaskSpec {
	return &TaskSpec{
		Kernel:   fn,
		Universe: universe,
		Domain:   domain,
		Fields:   result.FieldUse,
		Globals:  result.GlobalUse,
	}
}

// ReducedGlobal returns the single global this task reduces into, if
// any (§4.7's "Return: if the kernel reduces exactly one global").
func (t *TaskSpec) ReducedGlobal() (*relation.Global, bool) {
	var found *relation.Global
	for g, pt := range t.Globals {
		if pt.HasOp {
			if found != nil {
				return nil, false // more than one: not the single-reduction shape §4.7 describes
			}
			found = g
		}
	}
	return found, found != nil
}

// DomainKeys enumerates the keys this task's body runs over: the subset's
// indices/mask if Domain is set, else every key of Universe.
func (t *TaskSpec) DomainKeys() []uint64 {
	if t.Domain == nil {
		keys := make([]uint64, t.Universe.Size())
		for i := range keys {
			keys[i] = uint64(i)
		}
		return keys
	}
	if !t.Domain.UsesMask() {
		return t.Domain.Indices()
	}
	var keys []uint64
	mask := t.Domain.Mask()
	for i := uint64(0); i < t.Universe.Size(); i++ {
		if mask(i) {
			keys = append(keys, i)
		}
	}
	return keys
}
