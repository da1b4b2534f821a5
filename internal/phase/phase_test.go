package phase

import (
	"testing"

	"parlay/internal/ast"
	"parlay/internal/errors"
	"parlay/internal/relation"
	"parlay/internal/types"
)

func newCells(t *testing.T) map[string]*relation.Relation {
	g, err := relation.NewGrid([]uint64{5, 5}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Cells.NewField("f", types.F64); err != nil {
		t.Fatal(err)
	}
	return map[string]*relation.Relation{"cells": g.Cells}
}

func TestCenteredWriteIsLegal(t *testing.T) {
	rels := newCells(t)
	body := []ast.Stmt{
		&ast.FieldWrite{
			Object: &ast.Ident{Name: "c"},
			Field:  "f",
			Value:  &ast.Literal{Value: 1.0},
		},
	}
	res := Analyze("k.krn", "c", "cells", rels, body)
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
}

func TestStencilWriteIsIllegal(t *testing.T) {
	rels := newCells(t)
	body := []ast.Stmt{
		&ast.FieldWrite{
			Object: &ast.Affine{TargetRel: "cells", M: [][]float64{{1, 0, 1}, {0, 1, 0}}, Base: &ast.Ident{Name: "c"}},
			Field:  "f",
			Value:  &ast.Literal{Value: 1.0},
		},
	}
	res := Analyze("k.krn", "c", "cells", rels, body)
	if len(res.Errors) != 1 {
		t.Fatalf("expected exactly one StencilError, got %v", res.Errors)
	}
	de := res.Errors[0].(*errors.DomainError)
	if de.Kind() != errors.StencilError {
		t.Fatalf("expected StencilError, got %s", de.Kind())
	}
}

func TestWriteAndReduceOnSameFieldIsIllegal(t *testing.T) {
	rels := newCells(t)
	body := []ast.Stmt{
		&ast.FieldWrite{Object: &ast.Ident{Name: "c"}, Field: "f", Value: &ast.Literal{Value: 1.0}},
		&ast.Reduce{
			Target: &ast.FieldAccess{Object: &ast.Ident{Name: "c"}, Field: "f"},
			Op:     relation.OpAdd,
			Value:  &ast.Literal{Value: 1.0},
		},
	}
	res := Analyze("k.krn", "c", "cells", rels, body)
	found := false
	for _, e := range res.Errors {
		if de, ok := e.(*errors.DomainError); ok && de.Kind() == errors.PhaseError {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a PhaseError for write+reduce on the same field, got %v", res.Errors)
	}
}

func TestGlobalReadAndReduceIsIllegal(t *testing.T) {
	g := relation.NewGlobal("g", types.F64, 0.0)
	body := []ast.Stmt{
		&ast.Local{Name: "tmp", Init: &ast.Ident{Name: "g", Resolved: ast.Resolution{Kind: ast.ResGlobal, Ref: g}}},
		&ast.Reduce{
			Target: &ast.Ident{Name: "g", Resolved: ast.Resolution{Kind: ast.ResGlobal, Ref: g}},
			Op:     relation.OpAdd,
			Value:  &ast.Literal{Value: 1.0},
		},
	}
	res := Analyze("k.krn", "c", "cells", nil, body)
	if len(res.Errors) != 1 {
		t.Fatalf("expected one PhaseError, got %v", res.Errors)
	}
}
