package errors

import "testing"

func TestInvalidTypesMessage(t *testing.T) {
	err := InvalidTypes(Pos{File: "k.prl", Line: 3, Column: 5}, "")
	if err.Error() == "" {
		t.Fatal("expected non-empty error text")
	}
	want := "TypeError: invalid types"
	if got := err.Error(); len(got) < len(want) || got[:len(want)] != want {
		t.Fatalf("got %q, want prefix %q", got, want)
	}
}

func TestDomainErrorCaret(t *testing.T) {
	err := New(StencilError, Pos{File: "k.prl", Line: 2, Column: 7}, "non-diagonal translation").WithSource("c(1,0).f = 1")
	text := err.Error()
	if !contains(text, "^") {
		t.Fatalf("expected caret in rendered error, got %q", text)
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
