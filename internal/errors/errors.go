// Package errors defines the DSL's domain error kinds (spec.md §7) and
// renders them the way the teacher's internal/errors package rendered a
// SentraError: kind, message, then a location line with an optional
// source excerpt and caret.
package errors

import (
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Kind is one of the error kinds from spec.md §7.
type Kind string

const (
	TypeError          Kind = "TypeError"
	PhaseError         Kind = "PhaseError"
	StencilError       Kind = "StencilError"
	ArityError         Kind = "ArityError"
	MalformedProgram   Kind = "MalformedProgram"
	UnsupportedBackend Kind = "UnsupportedBackend"
	RuntimeAssertion   Kind = "RuntimeAssertion"
)

// Pos is a source location within a kernel or helper body.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.File == "" && p.Line == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// DomainError is the error value every compiler pass returns. It
// carries the offending AST node's source position per spec.md §7's
// policy: "surface to the host with the offending AST node's source
// position."
type DomainError struct {
	ErrKind Kind
	Message string
	At      Pos
	Source  string // the source line the error occurred on, if known
	Cause   error
}

func (e *DomainError) Kind() Kind { return e.ErrKind }

func (e *DomainError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.ErrKind))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if loc := e.At.String(); loc != "" {
		sb.WriteString("\n  at ")
		sb.WriteString(loc)
		if e.Source != "" {
			sb.WriteString(fmt.Sprintf("\n\n  %d | %s\n", e.At.Line, e.Source))
			pad := strings.Repeat(" ", len(fmt.Sprintf("%d | ", e.At.Line)))
			sb.WriteString("  " + pad)
			if e.At.Column > 0 {
				sb.WriteString(strings.Repeat(" ", e.At.Column-1))
			}
			sb.WriteString("^")
		}
	}
	if e.Cause != nil {
		sb.WriteString("\ncaused by: ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Unwrap lets errors.Is/As see through to Cause.
func (e *DomainError) Unwrap() error { return e.Cause }

// WithSource attaches the offending source line for caret rendering.
func (e *DomainError) WithSource(line string) *DomainError {
	e.Source = line
	return e
}

// New builds a DomainError of the given kind at a source position.
func New(kind Kind, pos Pos, format string, args ...interface{}) *DomainError {
	return &DomainError{ErrKind: kind, Message: fmt.Sprintf(format, args...), At: pos}
}

// Wrap attaches cause as the underlying reason for a DomainError, using
// github.com/pkg/errors so the cause's own context survives through
// CompilerContext plumbing (e.g. a config load failure surfacing while
// specializing a helper call).
func Wrap(kind Kind, pos Pos, cause error, format string, args ...interface{}) *DomainError {
	return &DomainError{
		ErrKind: kind,
		Message: fmt.Sprintf(format, args...),
		At:      pos,
		Cause:   pkgerrors.Wrap(cause, string(kind)),
	}
}

// InvalidTypes builds the TypeError whose text spec.md requires tests
// be able to match literally: "invalid types".
func InvalidTypes(pos Pos, reason string) *DomainError {
	msg := "invalid types"
	if reason != "" {
		msg += ": " + reason
	}
	return New(TypeError, pos, "%s", msg)
}
