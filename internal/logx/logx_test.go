package logx

import (
	"bytes"
	"strings"
	"testing"
)

func TestDebugfSuppressedWhenNotVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)
	l.Debugf("hello %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestDebugfPrintsWhenVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, true)
	l.Debugf("hello %d", 1)
	if !strings.Contains(buf.String(), "hello 1") {
		t.Fatalf("expected message to be printed, got %q", buf.String())
	}
}

func TestDebugvPrintsStructFieldsWhenVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, true)
	l.Debugv("thing", struct{ N int }{N: 3})
	if !strings.Contains(buf.String(), "N:") {
		t.Fatalf("expected struct field in output, got %q", buf.String())
	}
}

func TestRowsFormatsWithSeparators(t *testing.T) {
	if got := Rows(1024); got != "1,024" {
		t.Fatalf("Rows(1024) = %q, want 1,024", got)
	}
}
