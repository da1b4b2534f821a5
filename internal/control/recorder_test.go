package control

import (
	"testing"

	"parlay/internal/types"
)

func TestIfElseEndRecordsBothBranches(t *testing.T) {
	r := NewRecorder("t.lang")
	g := r.NewGlobal("g", types.F64, float64(0))

	r.If(LT(GetGlobal(g), ConstNum(0)))
	r.SetGlobal(g, ConstNum(1))
	r.Else()
	r.SetGlobal(g, ConstNum(2))
	r.End()

	if len(r.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", r.Errors)
	}
	stmts := r.Statements()
	if len(stmts) != 1 {
		t.Fatalf("expected exactly one root statement, got %d", len(stmts))
	}
	ifStmt, ok := stmts[0].(*If)
	if !ok {
		t.Fatalf("expected *If, got %T", stmts[0])
	}
	if len(ifStmt.Then) != 1 || len(ifStmt.Else) != 1 {
		t.Fatalf("expected one statement per branch, got then=%d else=%d", len(ifStmt.Then), len(ifStmt.Else))
	}
	if len(r.scopes) != 1 || len(r.blocks) != 0 {
		t.Fatalf("recorder left stacks unbalanced: scopes=%d blocks=%d", len(r.scopes), len(r.blocks))
	}
}

func TestWhileEndRecordsBody(t *testing.T) {
	r := NewRecorder("t.lang")
	g := r.NewGlobal("g", types.F64, float64(0))

	r.While(LT(GetGlobal(g), ConstNum(3)))
	r.SetGlobal(g, Add(GetGlobal(g), ConstNum(1)))
	r.End()

	stmts := r.Statements()
	if len(stmts) != 1 {
		t.Fatalf("expected exactly one root statement, got %d", len(stmts))
	}
	whileStmt, ok := stmts[0].(*While)
	if !ok {
		t.Fatalf("expected *While, got %T", stmts[0])
	}
	if len(whileStmt.Body) != 1 {
		t.Fatalf("expected one body statement, got %d", len(whileStmt.Body))
	}
}

func TestUnbalancedEndIsMalformedProgram(t *testing.T) {
	r := NewRecorder("t.lang")
	r.End()

	if len(r.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %d", len(r.Errors))
	}
	if r.Statements() != nil {
		t.Fatalf("expected no statements to be recoverable after an unbalanced END")
	}
}

func TestElseWithNoMatchingIfIsMalformedProgram(t *testing.T) {
	r := NewRecorder("t.lang")
	r.Else()

	if len(r.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %d", len(r.Errors))
	}
}

func TestDoubleElseIsMalformedProgram(t *testing.T) {
	r := NewRecorder("t.lang")
	r.If(EQ(ConstNum(1), ConstNum(1)))
	r.Else()
	r.Else()

	if len(r.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %d", len(r.Errors))
	}
}

func TestElseUnderWhileIsMalformedProgram(t *testing.T) {
	r := NewRecorder("t.lang")
	r.While(EQ(ConstNum(1), ConstNum(1)))
	r.Else()

	if len(r.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %d", len(r.Errors))
	}
}
