package checker

import (
	"strings"
	"testing"

	"parlay/internal/ast"
	"parlay/internal/errors"
	"parlay/internal/relation"
	"parlay/internal/types"
)

func newParticles(t *testing.T) (*relation.Relation, *relation.Field) {
	r := relation.NewRelation(10, "particles")
	f, err := r.NewField("x", types.I32)
	if err != nil {
		t.Fatal(err)
	}
	return r, f
}

func TestFieldWriteTypeMismatchIsInvalidTypes(t *testing.T) {
	r, _ := newParticles(t)
	rels := map[string]*relation.Relation{"particles": r}
	fn := &ast.Function{
		Name:     "bump",
		IsKernel: true,
		Params:   []ast.Param{{Name: "v", RelName: "particles"}},
		Body: []ast.Stmt{
			&ast.FieldWrite{
				Object: &ast.Ident{Name: "v"},
				Field:  "x",
				Value:  &ast.Literal{Value: true},
			},
		},
	}
	c := New("bump.krn", rels)
	c.CheckFunction(fn)
	if len(c.Errors) != 1 {
		t.Fatalf("expected one error, got %v", c.Errors)
	}
	if !strings.Contains(c.Errors[0].Error(), "invalid types") {
		t.Fatalf("expected literal 'invalid types', got %q", c.Errors[0].Error())
	}
}

func TestKernelMustHaveExactlyOneKeyParam(t *testing.T) {
	fn := &ast.Function{Name: "bad", IsKernel: true, Params: nil}
	c := New("bad.krn", nil)
	c.CheckFunction(fn)
	found := false
	for _, e := range c.Errors {
		if de, ok := e.(*errors.DomainError); ok && de.Kind() == errors.TypeError {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a kernel-signature error, got %v", c.Errors)
	}
}

func TestWellTypedFieldWriteHasNoErrors(t *testing.T) {
	r, _ := newParticles(t)
	rels := map[string]*relation.Relation{"particles": r}
	fn := &ast.Function{
		Name:     "bump",
		IsKernel: true,
		Params:   []ast.Param{{Name: "v", RelName: "particles"}},
		Body: []ast.Stmt{
			&ast.FieldWrite{
				Object: &ast.Ident{Name: "v"},
				Field:  "x",
				Value: &ast.Binary{
					Op:    "+",
					Left:  &ast.FieldAccess{Object: &ast.Ident{Name: "v"}, Field: "x"},
					Right: &ast.Literal{Value: 1.0},
				},
			},
		},
	}
	c := New("bump.krn", rels)
	c.CheckFunction(fn)
	if len(c.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", c.Errors)
	}
}
