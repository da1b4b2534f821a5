package compiler

import (
	"strings"

	"parlay/internal/ast"
	"parlay/internal/checker"
	"parlay/internal/errors"
	"parlay/internal/phase"
	"parlay/internal/relation"
	"parlay/internal/specializer"
	"parlay/internal/store"
)

// CompileKernel drives specialize → check → phase-analyze → Germ
// assembly for one kernel against one (relation|subset, backend)
// triple, returning the memoized Bran (building it on first call, via
// ctx.Branbank). This is the pipeline §2's CompilerContext threads
// through every pass instead of each pass reaching for ambient state.
func CompileKernel(ctx *CompilerContext, env *specializer.Environment, fn *ast.Function, universe *relation.Relation, domain *relation.Subset, st *store.Store) (*Bran, error) {
	return ctx.Branbank.GetOrCompile(fn, universe, domain, ctx.Backend, func() (*Bran, error) {
		return buildBran(ctx, env, fn, universe, domain, st)
	})
}

func buildBran(ctx *CompilerContext, env *specializer.Environment, fn *ast.Function, universe *relation.Relation, domain *relation.Subset, st *store.Store) (*Bran, error) {
	file := fn.At.File

	sp := specializer.New(env, file)
	sp.SpecializeFunction(fn)
	if len(sp.Errors) > 0 {
		return nil, combine(sp.Errors)
	}

	ck := checker.New(file, env.Relations)
	ck.CheckFunction(fn)
	if len(ck.Errors) > 0 {
		return nil, combine(ck.Errors)
	}

	if !fn.IsKernel {
		return nil, errors.New(errors.MalformedProgram, errors.Pos{File: file}, "%q is not a kernel", fn.Name)
	}
	param := fn.Params[0]
	result := phase.Analyze(file, param.Name, param.RelName, env.Relations, fn.Body)
	if len(result.Errors) > 0 {
		return nil, combine(result.Errors)
	}

	fields := make(map[*relation.Field]struct{}, len(result.FieldUse))
	for f := range result.FieldUse {
		fields[f] = struct{}{}
	}
	globals := make(map[*relation.Global]struct{}, len(result.GlobalUse))
	for g := range result.GlobalUse {
		globals[g] = struct{}{}
	}
	germ := BuildGerm(universe, domain, st, fields, globals)

	return &Bran{
		Kernel:   fn,
		Universe: universe,
		Domain:   domain,
		Backend:  ctx.Backend,
		Phase:    result,
		Germ:     germ,
	}, nil
}

// combine folds a pass's accumulated error list into one error, since
// every pass keeps walking past the first failure (4.3/4.4/4.5) but a
// compile either succeeds completely or reports everything it found.
func combine(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	var sb strings.Builder
	for i, e := range errs {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(e.Error())
	}
	return errors.New(errors.MalformedProgram, errors.Pos{}, "%d errors:\n%s", len(errs), sb.String())
}
