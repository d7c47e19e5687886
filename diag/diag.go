// Package diag defines the diagnostic taxonomy shared by every semantic
// pass: pre-IR checks, the IR builder, and post-IR checks. Passes never
// abort on the first error; they accumulate Diagnostics and keep walking
// sibling nodes, so one call to CreateIR reports everything wrong with a
// program in one pass.
package diag

import (
	"fmt"
	"strings"

	"decafir/ast"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Kind identifies one entry of the static-semantics error taxonomy.
type Kind int

// The diagnostic taxonomy.
const (
	NonAsciiCharLiteral Kind = iota
	TypeMismatch
	DuplicatedSymbol
	UnknownSymbol
	NoMainMethod
	NonPositiveArraySize
	ExprCallNoReturn
	ReturnTypeMismatch
	ArrayLocationOnNonArrayVar
	ArrayLocationOffsetTypeError
	BreakOutOfForScope
	ContinueOutOfForScope
	MethodArgumentNotMatch
)

var kindNames = [...]string{
	"NonAsciiCharLiteral",
	"TypeMismatch",
	"DuplicatedSymbol",
	"UnknownSymbol",
	"NoMainMethod",
	"NonPositiveArraySize",
	"ExprCallNoReturn",
	"ReturnTypeMismatch",
	"ArrayLocationOnNonArrayVar",
	"ArrayLocationOffsetTypeError",
	"BreakOutOfForScope",
	"ContinueOutOfForScope",
	"MethodArgumentNotMatch",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "UnknownDiagnostic"
	}
	return kindNames[k]
}

// Diagnostic is one reported semantic error.
type Diagnostic struct {
	Kind    Kind
	Pos     ast.Position
	Message string
}

// Error satisfies the error interface so a single Diagnostic can be
// returned/compared on its own, e.g. in table-driven tests.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Pos.Line, d.Pos.Col, d.Kind, d.Message)
}

// New builds a Diagnostic at pos with a formatted message.
func New(kind Kind, pos ast.Position, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Diagnostics is an ordered batch of Diagnostic values. A nil or empty
// Diagnostics means "no errors"; callers test for failure with len(d) > 0,
// never d != nil.
type Diagnostics []*Diagnostic

// Error joins every Diagnostic onto its own line, satisfying the error
// interface so a Diagnostics batch returned from CreateIR can be logged or
// wrapped like any other Go error.
func (ds Diagnostics) Error() string {
	lines := make([]string, len(ds))
	for i, d := range ds {
		lines[i] = d.Error()
	}
	return strings.Join(lines, "\n")
}

// Format renders a single Diagnostic against the original source text,
// underlining the offending column with a caret. sourceLine is the text of
// the source line the diagnostic points at; callers are expected to have
// split the source text themselves (this package has no lexer to do it for
// them).
func (d *Diagnostic) Format(sourceLine string) string {
	caret := strings.Repeat(" ", max(d.Pos.Col-1, 0)) + "^"
	return fmt.Sprintf("%s\n%s\n%s", d.Error(), sourceLine, caret)
}
