// Package ir builds Decaf's typed, scope-resolved intermediate
// representation from the untyped parse tree in package ast. Shared
// declarations (VarDecl, MethodDecl, For, IfElse) are modeled as ordinary
// Go pointers: identical declarations compare equal by identity (==) with
// no arena or generation-indexing needed, since the garbage collector
// already guarantees a live VarDecl's address is stable for as long as
// anything references it.
package ir

import "decafir/ast"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Type is the typed-IR counterpart of ast.Type: plain value equality here
// means type equality, since Decaf has no user-defined or generic types.
type Type = ast.Type

// Re-exported so callers of this package never need to import ast for the
// three type constants.
const (
	Int  = ast.Int
	Bool = ast.Bool
	Void = ast.Void
)

// VarDecl is a local variable or method argument declaration. It is
// always referenced by pointer from every Location that reads or writes
// it, giving identity-based equality for free.
type VarDecl struct {
	Type Type
	Name string
}

// FieldDecl is a global (class-level) declaration: a scalar or a
// fixed-size array.
type FieldDecl struct {
	Type    Type
	Name    string
	ArrSize int // 0 for a scalar field, > 0 for an array field
}

// IsArray reports whether d declares an array field.
func (d *FieldDecl) IsArray() bool { return d.ArrSize > 0 }

// MethodDecl is a method declaration. A formal parameter is just a
// *VarDecl, the same declaration object the body's Location lookups
// resolve to — there is no separate MethodArg type, since Decaf gives
// arguments and body locals one shared scope frame (SPEC_FULL.md §9.2).
// Block is filled in after the method signature has been registered in
// scope (two-phase construction), so a recursive call inside the body
// can already resolve the enclosing method by pointer.
type MethodDecl struct {
	ReturnType Type
	Name       string
	Args       []*VarDecl
	Block      *Block
}

// LocationDeclKind discriminates what a Location resolves to.
type LocationDeclKind int

// The location-declaration kinds.
const (
	DeclVar LocationDeclKind = iota
	DeclField
)

// LocationDecl names the declaration a Location binds to: either a local
// or argument VarDecl, or a global FieldDecl.
type LocationDecl struct {
	Kind  LocationDeclKind
	Var   *VarDecl
	Field *FieldDecl
}

// Type reports the declared type of the bound declaration.
func (d LocationDecl) Type() Type {
	if d.Kind == DeclVar {
		return d.Var.Type
	}
	return d.Field.Type
}

// Name reports the declared name of the bound declaration.
func (d LocationDecl) Name() string {
	if d.Kind == DeclVar {
		return d.Var.Name
	}
	return d.Field.Name
}

// IsArray reports whether the bound declaration is an array.
func (d LocationDecl) IsArray() bool {
	return d.Kind == DeclField && d.Field.IsArray()
}

// Location is a resolved place: a scalar or array-element reference to a
// declared variable or field.
type Location struct {
	Pos     ast.Position
	Decl    LocationDecl
	ArrSize *Expr // non-nil => an indexed access; its type is always Int
}

// Block is a local-declaration + statement sequence, shared by method
// bodies, if/else arms, and for bodies.
type Block struct {
	VarDecls   []*VarDecl
	Statements []*Statement
}

// AssignOp is the typed-IR counterpart of ast.AssignOp.
type AssignOp = ast.AssignOp

// Re-exported assignment operators.
const (
	OpAssign    = ast.Assign
	OpAddAssign = ast.AddAssign
	OpSubAssign = ast.SubAssign
	OpMulAssign = ast.MulAssign
	OpDivAssign = ast.DivAssign
)

// Assign is a (possibly compound) assignment statement.
type Assign struct {
	Pos Position
	Dst *Location
	Op  AssignOp
	Val *Expr
}

// Position is re-exported from ast for brevity in this package's API.
type Position = ast.Position

// IfElse is a resolved if/else statement, referenced by pointer from its
// Statement. The builder creates it after both arms are built; the scope
// frames of its arms are tagged KindIf/KindElse but do not record which
// *IfElse they belong to.
type IfElse struct {
	Pos        Position
	Cond       *Expr
	TrueBlock  *Block
	FalseBlock *Block // nil => no else clause
}

// For is a resolved bounded loop: "for IndexVar = Start, End { Block }".
// It is always referenced by pointer: Break/Continue statements carry a
// back-reference to the *For they resolve to, and the LLIR generator
// keys its begin/end labels by this same pointer.
type For struct {
	IndexVar *VarDecl
	Start    *Expr
	End      *Expr
	Block    *Block
}

// Return carries a back-reference to the enclosing MethodDecl so the LLIR
// generator and the return-type checker both know which signature to
// check/lower against.
type Return struct {
	Pos  Position
	Func *MethodDecl
	Val  *Expr // nil => bare "return;"
}

// Break carries a back-reference to the enclosing *For, resolved by the
// scope stack at build time so that later passes never need to re-walk
// enclosing scopes to find it.
type Break struct {
	Pos Position
	For *For
}

// Continue is Break's counterpart.
type Continue struct {
	Pos Position
	For *For
}

// StatementKind discriminates the Statement union.
type StatementKind int

// The statement kinds.
const (
	StmtAssign StatementKind = iota
	StmtCall
	StmtIfElse
	StmtFor
	StmtReturn
	StmtBreak
	StmtContinue
	StmtBlock
)

// Statement is a tagged union over every resolved statement form.
type Statement struct {
	Kind     StatementKind
	Assign   *Assign
	Call     *Call
	IfElse   *IfElse
	For      *For
	Return   *Return
	Break    *Break
	Continue *Continue
	Block    *Block
}

// BinaryOp and UnaryOp are re-exported from ast; the typing rules that
// apply to each operator are identical pre- and post-resolution.
type (
	BinaryOp = ast.BinaryOp
	UnaryOp  = ast.UnaryOp
)

// Binary is a resolved binary expression; its result Type has already
// been computed by the builder according to the operator's class.
type Binary struct {
	LHS *Expr
	RHS *Expr
	Op  BinaryOp
}

// Unary is a resolved unary expression.
type Unary struct {
	Expr *Expr
	Op   UnaryOp
}

// CalloutArgKind and LiteralKind mirror their ast counterparts.
type (
	CalloutArgKind = ast.CalloutArgKind
	LiteralKind    = ast.LiteralKind
)

// CalloutArg is one resolved callout argument.
type CalloutArg struct {
	Kind   CalloutArgKind
	Expr   *Expr
	String string
}

// CallKind discriminates the Call union.
type CallKind int

// The call kinds.
const (
	CallMethod CallKind = iota
	CallCallout
)

// Call is a resolved method invocation or callout. A method Call carries
// a back-reference to the MethodDecl it resolved to, so the LLIR
// generator and arity/type checker never need to re-resolve the name.
type Call struct {
	Pos    Position
	Kind   CallKind
	Method *MethodDecl // set when Kind == CallMethod
	Args   []*Expr     // set when Kind == CallMethod

	CalloutName string        // set when Kind == CallCallout
	CalloutArgs []*CalloutArg // set when Kind == CallCallout
}

// Literal is a resolved constant: Decaf has no runtime string values, so
// only Int and Bool literals appear here (char literals are widened to
// Int at build time per the ASCII-literal typing rule).
type Literal struct {
	IsBool  bool
	IntVal  int
	BoolVal bool
}

// ExprKind discriminates the Expr union.
type ExprKind int

// The expression kinds.
const (
	ExprLocation ExprKind = iota
	ExprCall
	ExprLiteral
	ExprUnary
	ExprBinary
)

// Expr is a tagged union over every resolved expression form. Every Expr
// carries its inferred Type; Type is never Void (a Void-typed call used
// in expression position is rejected by the builder as ExprCallNoReturn).
type Expr struct {
	Pos      Position
	Kind     ExprKind
	Type     Type
	Location *Location
	Call     *Call
	Literal  *Literal
	Unary    *Unary
	Binary   *Binary
}

// MemberDeclKind discriminates the MemberDecl union.
type MemberDeclKind int

// The member-declaration kinds.
const (
	MemberField MemberDeclKind = iota
	MemberMethod
)

// MemberDecl is either a field or a method declaration, used where the
// program's top-level declaration order must be preserved.
type MemberDecl struct {
	Kind   MemberDeclKind
	Field  *FieldDecl
	Method *MethodDecl
}

// ProgramClassDecl is Decaf's single implicit class: the set of resolved
// field and method declarations making up one compiled program.
type ProgramClassDecl struct {
	FieldDecls  []*FieldDecl
	MethodDecls []*MethodDecl
}

// Root is the entry point into a successfully built IR tree.
type Root struct {
	Program *ProgramClassDecl
}
