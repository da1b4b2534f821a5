package types

import "testing"

func TestCoerceArithMismatchedFamilies(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Type
		wantErr bool
	}{
		{"i32 plus f64 ok", I32, F64, false},
		{"i32 plus i64 ok", I32, I64, false},
		{"bool plus i32 fails", Bool, I32, true},
		{"vector length mismatch fails", Vector{Elem: F64, N: 2}, Vector{Elem: F64, N: 3}, true},
		{"record like operand fails", I32, Key{RelName: "cells"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CoerceArith("+", tt.a, tt.b)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CoerceArith(%v,%v) err=%v, wantErr=%v", tt.a, tt.b, err, tt.wantErr)
			}
			if tt.wantErr && err.Error()[:len(invalidTypesMsg)] != invalidTypesMsg {
				t.Fatalf("expected error to start with %q, got %q", invalidTypesMsg, err.Error())
			}
		})
	}
}

func TestCaretRejectsVectors(t *testing.T) {
	v := Vector{Elem: F64, N: 3}
	if _, err := CoerceArith("^", v, v); err == nil {
		t.Fatal("expected ^ on vectors to raise invalid types")
	}
	if _, err := CoerceArith("^", I32, I32); err != nil {
		t.Fatalf("^ on scalars should be fine at the type-coercion layer, got %v", err)
	}
}

func TestCompareNumberVsBool(t *testing.T) {
	if err := CoerceCompare("<", I32, Bool); err == nil {
		t.Fatal("expected comparison between number and bool to fail")
	}
	if err := CoerceCompare("==", Bool, Bool); err != nil {
		t.Fatalf("bool == bool should succeed, got %v", err)
	}
	if err := CoerceCompare("<", I32, F64); err != nil {
		t.Fatalf("i32 < f64 should succeed via coercion, got %v", err)
	}
}

func TestCoercePrimitiveWidensToWider(t *testing.T) {
	got, err := CoercePrimitive(I16, I64)
	if err != nil || got != I64 {
		t.Fatalf("want I64,nil got %v,%v", got, err)
	}
	got, err = CoercePrimitive(F32, I32)
	if err != nil || got != F64 {
		t.Fatalf("int coerces to f64, want F64,nil got %v,%v", got, err)
	}
}
