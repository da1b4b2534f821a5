package report

import (
	"strings"
	"testing"

	"parlay/internal/phase"
	"parlay/internal/relation"
	"parlay/internal/types"
)

func TestPhaseTableListsEveryField(t *testing.T) {
	rel := relation.NewRelation(4, "particles")
	f, err := rel.NewField("x", types.F64)
	if err != nil {
		t.Fatal(err)
	}
	result := &phase.Result{
		FieldUse: map[*relation.Field]*phase.PhaseType{
			f: {Read: true, Write: true, Centered: true},
		},
		GlobalUse: map[*relation.Global]*phase.PhaseType{},
	}

	out := PhaseTable("bump", result)
	if !strings.Contains(out, "x") {
		t.Fatalf("expected field name in table, got:\n%s", out)
	}
	if !strings.Contains(out, "bump") {
		t.Fatalf("expected kernel name in table title, got:\n%s", out)
	}
}
