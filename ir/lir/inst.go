package lir

import (
	"fmt"
	"strings"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// InstKind identifies the concrete instruction type behind an Inst value,
// grounded on the teacher's types.InstructionType tag
// (src/ir/lir/types/types.go) used to discriminate its own per-struct LIR
// instructions.
type InstKind int

// The LLIR instruction kinds (spec.md §4.5.1, plus the control-flow
// instructions this module adds per the implementer note in §4.5.1).
const (
	KindAlloca InstKind = iota
	KindLoad
	KindStore
	KindLabel
	KindIAdd
	KindISub
	KindIMul
	KindIDiv
	KindIMod
	KindJump
	KindCondJump
	KindReturn
	KindCall
	KindCmp
	KindLogical
	KindNeg
	KindNot
)

// Inst is the common interface every concrete LLIR instruction
// implements, grounded on the teacher's per-struct Value interface
// (src/ir/lir/declaration.go's DeclareInstruction and its siblings).
// Unlike the teacher's Value, Inst carries no virtual-register-allocation
// bookkeeping (hw/seq/enable bits): register allocation is explicitly a
// downstream collaborator (spec.md §1), out of this module's scope.
type Inst interface {
	Kind() InstKind
	String() string
}

// Register is a virtual, unbounded SSA-style register produced by the
// per-method registerGen. It never aliases memory.
type Register struct {
	ID uint32
}

func (r Register) String() string { return fmt.Sprintf("%%r%d", r.ID) }

// Memory is a named storage location, optionally subscripted by a
// register-valued offset (an array element access).
type Memory struct {
	Decl   *VarDef
	Offset *Location // nil => the whole scalar; non-nil => Decl[*Offset]
}

func (m Memory) String() string {
	if m.Offset == nil {
		return m.Decl.Name
	}
	return fmt.Sprintf("%s[%s]", m.Decl.Name, (*m.Offset).String())
}

// LocationKind discriminates the Location union.
type LocationKind int

// The location kinds.
const (
	LocRegister LocationKind = iota
	LocMemory
)

// Location is either a Register or a Memory reference. Expression
// lowering always yields a Register per spec.md §4.5.3 rule 3 (Locations
// MUST NOT be memory when returned from expression lowering); Memory
// Locations appear only as the destination and lhs of a compound
// assignment and as the for-loop index operand in the bound check and
// increment.
type Location struct {
	Kind     LocationKind
	Register Register
	Memory   Memory
}

func (l Location) String() string {
	if l.Kind == LocRegister {
		return l.Register.String()
	}
	return l.Memory.String()
}

// RegLoc wraps a Register as a Location, the common case when threading
// an expression's result into the next instruction's operand.
func RegLoc(r Register) Location { return Location{Kind: LocRegister, Register: r} }

// MemLoc wraps a Memory reference as a Location.
func MemLoc(m Memory) Location { return Location{Kind: LocMemory, Memory: m} }

// OperandKind discriminates the Operand union.
type OperandKind int

// The operand kinds.
const (
	OperandLiteral OperandKind = iota
	OperandLocation
	OperandString
)

// Operand is an instruction's source value: an int literal, a Location,
// or (call-argument only) a raw string literal for callouts.
type Operand struct {
	Kind     OperandKind
	Literal  int32
	Location Location
	Str      string
}

func (o Operand) String() string {
	switch o.Kind {
	case OperandLiteral:
		return fmt.Sprintf("%d", o.Literal)
	case OperandString:
		return fmt.Sprintf("%q", o.Str)
	default:
		return o.Location.String()
	}
}

// LitOperand wraps an int32 literal as an Operand.
func LitOperand(v int32) Operand { return Operand{Kind: OperandLiteral, Literal: v} }

// LocOperand wraps a Location as an Operand.
func LocOperand(l Location) Operand { return Operand{Kind: OperandLocation, Location: l} }

// StrOperand wraps a raw string as a callout Operand.
func StrOperand(s string) Operand { return Operand{Kind: OperandString, Str: s} }

// ------------------------------------------------------
// ----- Concrete instructions, one struct per kind -----
// ------------------------------------------------------

// AllocaInst reserves storage for one VarDef: a method argument or a
// method/block-local declaration.
type AllocaInst struct{ Def *VarDef }

func (AllocaInst) Kind() InstKind { return KindAlloca }
func (i AllocaInst) String() string {
	return fmt.Sprintf("alloca %s: %s", i.Def.Name, i.Def.Type)
}

// LoadInst reads a Memory location into a fresh Register.
type LoadInst struct {
	Dst Register
	Src Memory
}

func (LoadInst) Kind() InstKind { return KindLoad }
func (i LoadInst) String() string {
	return fmt.Sprintf("%s = load %s", i.Dst, i.Src)
}

// StoreInst writes a Register's value into a Memory location. Plain
// assignment (`x = e`) lowers directly to a StoreInst rather than the
// "x = 0 + e" trick described in spec.md's Design Notes, per the
// redesign flag the spec explicitly allows (SPEC_FULL.md §9/Design Notes).
type StoreInst struct {
	Dst Memory
	Src Register
}

func (StoreInst) Kind() InstKind { return KindStore }
func (i StoreInst) String() string {
	return fmt.Sprintf("store %s, %s", i.Dst, i.Src)
}

// LabelInst marks a jump target.
type LabelInst struct{ Name string }

func (LabelInst) Kind() InstKind { return KindLabel }
func (i LabelInst) String() string { return i.Name + ":" }

// Binary is shared by the five arithmetic instructions below: dst may be
// Memory (a compound assignment writing straight back to its location)
// or Register (an expression's intermediate result).
type Binary struct {
	Dst Location
	LHS Operand
	RHS Operand
}

func (b Binary) String(mnemonic string) string {
	return fmt.Sprintf("%s = %s %s, %s", b.Dst, mnemonic, b.LHS, b.RHS)
}

// IAddInst, ISubInst, IMulInst, IDivInst and IModInst are the five
// integer arithmetic instructions named in spec.md §4.5.1.
type (
	IAddInst struct{ Binary }
	ISubInst struct{ Binary }
	IMulInst struct{ Binary }
	IDivInst struct{ Binary }
	IModInst struct{ Binary }
)

func (IAddInst) Kind() InstKind   { return KindIAdd }
func (i IAddInst) String() string { return i.Binary.String("iadd") }
func (ISubInst) Kind() InstKind   { return KindISub }
func (i ISubInst) String() string { return i.Binary.String("isub") }
func (IMulInst) Kind() InstKind   { return KindIMul }
func (i IMulInst) String() string { return i.Binary.String("imul") }
func (IDivInst) Kind() InstKind   { return KindIDiv }
func (i IDivInst) String() string { return i.Binary.String("idiv") }
func (IModInst) Kind() InstKind   { return KindIMod }
func (i IModInst) String() string { return i.Binary.String("imod") }

// CmpOp is a relational or equality comparison operator. Decaf's
// relational/equality binary operators (ast.OpCompare, ast.OpEq) lower to
// a CmpInst rather than to the arithmetic instructions spec.md §4.5.1
// enumerates by name: those five (IAdd/ISub/IMul/IDiv/IMod) cover
// arithmetic only, and a complete lowering of ast.Binary (which also
// covers comparisons, equality and logical operators per spec.md §4.3.4
// rules 12–14) needs value-producing instructions for them too. This is
// the implementer-designed extension spec.md invites alongside the named
// control-flow instructions.
type CmpOp int

// The comparison operators.
const (
	CmpGT CmpOp = iota
	CmpGE
	CmpLT
	CmpLE
	CmpEQ
	CmpNE
)

func (op CmpOp) String() string {
	return [...]string{"gt", "ge", "lt", "le", "eq", "ne"}[op]
}

// CmpInst computes a boolean (0/1) result from comparing LHS and RHS.
type CmpInst struct {
	Dst Register
	Op  CmpOp
	LHS Operand
	RHS Operand
}

func (CmpInst) Kind() InstKind { return KindCmp }
func (i CmpInst) String() string {
	return fmt.Sprintf("%s = cmp.%s %s, %s", i.Dst, i.Op, i.LHS, i.RHS)
}

// LogicalOp is a short-circuit-free logical operator: Decaf's typing
// rules (rule 14) already require both operands to be boolean-typed
// expressions, so no short-circuit evaluation is observable and this
// reduces to a plain bitwise op on 0/1 values.
type LogicalOp int

// The logical operators.
const (
	LogicalOr LogicalOp = iota
	LogicalAnd
)

func (op LogicalOp) String() string {
	if op == LogicalAnd {
		return "and"
	}
	return "or"
}

// LogicalInst computes a boolean result from combining LHS and RHS.
type LogicalInst struct {
	Dst Register
	Op  LogicalOp
	LHS Operand
	RHS Operand
}

func (LogicalInst) Kind() InstKind { return KindLogical }
func (i LogicalInst) String() string {
	return fmt.Sprintf("%s = %s %s, %s", i.Dst, i.Op, i.LHS, i.RHS)
}

// NegInst computes the integer negation of Src.
type NegInst struct {
	Dst Register
	Src Operand
}

func (NegInst) Kind() InstKind     { return KindNeg }
func (i NegInst) String() string { return fmt.Sprintf("%s = neg %s", i.Dst, i.Src) }

// NotInst computes the boolean negation of Src.
type NotInst struct {
	Dst Register
	Src Operand
}

func (NotInst) Kind() InstKind     { return KindNot }
func (i NotInst) String() string { return fmt.Sprintf("%s = not %s", i.Dst, i.Src) }

// JumpInst is an unconditional branch to Target.
type JumpInst struct{ Target string }

func (JumpInst) Kind() InstKind     { return KindJump }
func (i JumpInst) String() string { return "jump " + i.Target }

// CondJumpInst branches to TrueTarget when Cond is non-zero, otherwise to
// FalseTarget. This is one of the control-flow instructions spec.md
// §4.5.1 leaves to the implementer; it is grounded on the two-label
// (then/else) shape the original's LabelGenerator.get_for_labels already
// uses for loops, generalized to if/else.
type CondJumpInst struct {
	Cond        Operand
	TrueTarget  string
	FalseTarget string
}

func (CondJumpInst) Kind() InstKind { return KindCondJump }
func (i CondJumpInst) String() string {
	return fmt.Sprintf("condjump %s, %s, %s", i.Cond, i.TrueTarget, i.FalseTarget)
}

// ReturnInst returns from the enclosing method, optionally carrying a
// value. Val is nil for a Void method or a bare "return;".
type ReturnInst struct{ Val *Operand }

func (ReturnInst) Kind() InstKind { return KindReturn }
func (i ReturnInst) String() string {
	if i.Val == nil {
		return "return"
	}
	return "return " + i.Val.String()
}

// CallInst invokes a method or callout. Dst is nil when the call appears
// in statement position and its result is discarded.
type CallInst struct {
	Dst       *Register
	Name      string
	Args      []Operand
	IsCallout bool
}

func (CallInst) Kind() InstKind { return KindCall }
func (i CallInst) String() string {
	args := make([]string, len(i.Args))
	for j, a := range i.Args {
		args[j] = a.String()
	}
	prefix := "call"
	if i.IsCallout {
		prefix = "callout"
	}
	call := fmt.Sprintf("%s %s(%s)", prefix, i.Name, strings.Join(args, ", "))
	if i.Dst == nil {
		return call
	}
	return fmt.Sprintf("%s = %s", i.Dst, call)
}
