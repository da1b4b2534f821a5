package specializer

import (
	"testing"

	"parlay/internal/ast"
	"parlay/internal/errors"
	"parlay/internal/relation"
	"parlay/internal/types"
)

func TestResolveFieldAndUnboundName(t *testing.T) {
	r := relation.NewRelation(10, "particles")
	f, err := r.NewField("x", types.I32)
	if err != nil {
		t.Fatal(err)
	}
	env := NewEnvironment()
	env.Relations["particles"] = r
	env.Fields["x"] = f

	fn := &ast.Function{
		Name:     "bump",
		IsKernel: true,
		Params:   []ast.Param{{Name: "v", RelName: "particles"}},
		Body: []ast.Stmt{
			&ast.FieldWrite{
				Object: &ast.Ident{Name: "v", At: errors.Pos{}},
				Field:  "x",
				Value: &ast.Binary{
					Op:    "+",
					Left:  &ast.FieldAccess{Object: &ast.Ident{Name: "v"}, Field: "x"},
					Right: &ast.Literal{Value: 1.0},
				},
			},
			&ast.ExprStmt{Expr: &ast.Ident{Name: "nope", At: errors.Pos{Line: 3}}},
		},
	}

	s := New(env, "bump.krn")
	s.SpecializeFunction(fn)

	if len(s.Errors) != 1 {
		t.Fatalf("expected exactly one unbound-name error, got %v", s.Errors)
	}
	de, ok := s.Errors[0].(*errors.DomainError)
	if !ok {
		t.Fatalf("expected *errors.DomainError, got %T", s.Errors[0])
	}
	if de.At.Line != 3 {
		t.Fatalf("expected error at line 3, got %d", de.At.Line)
	}

	vIdent := fn.Body[0].(*ast.FieldWrite).Object.(*ast.Ident)
	if vIdent.Resolved.Kind != ast.ResParam {
		t.Fatalf("expected v to resolve as ResParam, got %v", vIdent.Resolved.Kind)
	}
}

func TestBuiltinCalleeResolves(t *testing.T) {
	env := NewEnvironment()
	s := New(env, "h.krn")
	call := &ast.Call{
		Callee: &ast.Ident{Name: "sqrt"},
		Args:   []ast.Expr{&ast.Literal{Value: 4.0}},
	}
	s.walkExpr(call)
	if len(s.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", s.Errors)
	}
	id := call.Callee.(*ast.Ident)
	if id.Resolved.Kind != ast.ResBuiltin || id.Resolved.Ref.(string) != "sqrt" {
		t.Fatalf("expected sqrt to resolve as builtin, got %+v", id.Resolved)
	}
}
