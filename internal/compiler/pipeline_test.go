package compiler

import (
	"testing"

	"parlay/internal/ast"
	"parlay/internal/relation"
	"parlay/internal/specializer"
	"parlay/internal/store"
	"parlay/internal/types"
)

func bumpKernel(rel *relation.Relation) *ast.Function {
	return &ast.Function{
		Name:     "bump",
		IsKernel: true,
		Params:   []ast.Param{{Name: "v", RelName: rel.Name()}},
		Body: []ast.Stmt{
			&ast.FieldWrite{
				Object: &ast.Ident{Name: "v"},
				Field:  "x",
				Value: &ast.Binary{
					Op:    "+",
					Left:  &ast.FieldAccess{Object: &ast.Ident{Name: "v"}, Field: "x"},
					Right: &ast.Literal{Value: float64(1)},
				},
			},
		},
	}
}

func TestCompileKernelProducesGermWithUsedField(t *testing.T) {
	rel := relation.NewRelation(10, "particles")
	f, err := rel.NewField("x", types.I32)
	if err != nil {
		t.Fatal(err)
	}

	env := specializer.NewEnvironment()
	env.Relations[rel.Name()] = rel

	ctx := NewContext()
	st := store.NewStore()

	bran, err := CompileKernel(ctx, env, bumpKernel(rel), rel, nil, st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bran.Germ.NRows != rel.Size() {
		t.Fatalf("germ n_rows = %d, want %d", bran.Germ.NRows, rel.Size())
	}
	if _, ok := bran.Germ.Fields[f]; !ok {
		t.Fatalf("germ does not carry the used field")
	}
	if bran.TaskHandle.IsNil() {
		t.Fatalf("bran was not assigned a task handle")
	}
}

func TestCompileKernelIsMemoizedAcrossCalls(t *testing.T) {
	rel := relation.NewRelation(10, "particles")
	if _, err := rel.NewField("x", types.I32); err != nil {
		t.Fatal(err)
	}

	env := specializer.NewEnvironment()
	env.Relations[rel.Name()] = rel
	ctx := NewContext()
	st := store.NewStore()

	fn := bumpKernel(rel)
	first, err := CompileKernel(ctx, env, fn, rel, nil, st)
	if err != nil {
		t.Fatal(err)
	}
	second, err := CompileKernel(ctx, env, fn, rel, nil, st)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("expected the same cached Bran, got two distinct instances")
	}
}

func TestCompileKernelReportsTypeErrors(t *testing.T) {
	rel := relation.NewRelation(10, "particles")
	if _, err := rel.NewField("flag", types.Bool); err != nil {
		t.Fatal(err)
	}

	kernel := &ast.Function{
		Name:     "badwrite",
		IsKernel: true,
		Params:   []ast.Param{{Name: "v", RelName: rel.Name()}},
		Body: []ast.Stmt{
			&ast.FieldWrite{
				Object: &ast.Ident{Name: "v"},
				Field:  "flag",
				Value:  &ast.Literal{Value: float64(1)},
			},
		},
	}

	env := specializer.NewEnvironment()
	env.Relations[rel.Name()] = rel
	ctx := NewContext()
	st := store.NewStore()

	if _, err := CompileKernel(ctx, env, kernel, rel, nil, st); err == nil {
		t.Fatal("expected a type error, got nil")
	}
}
