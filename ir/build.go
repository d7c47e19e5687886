package ir

import (
	"decafir/ast"
	"decafir/diag"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// builder holds the one Scope stack threaded through a single CreateIR
// call, plus the accumulated diagnostics. It is not safe for concurrent
// use: per spec.md §5 the whole construction pass is synchronous, single
// threaded, and never suspends, so a builder is always owned by exactly
// one goroutine for its whole lifetime. Builder methods never abort on
// the first error: every function keeps walking its children so sibling
// diagnostics still get reported, matching
// original_source/src/semantic_analyzer/mod.rs's create_ir contract of
// collecting every error rather than stopping at the first one.
type builder struct {
	scope *Scope
	diags diag.Diagnostics
}

// ---------------------
// ----- Functions -----
// ---------------------

// CreateIR runs the full pre-IR → construct → post-IR pipeline over p and
// returns either a fully resolved Root, or the complete list of
// diagnostics gathered along the way. Each stage only runs if the
// previous stage produced zero diagnostics, matching
// original_source/src/semantic_analyzer/mod.rs's create_ir.
func CreateIR(p *ast.Program) (*Root, diag.Diagnostics) {
	if ds := runPreIR(p); len(ds) > 0 {
		return nil, ds
	}

	b := &builder{scope: NewScope()}
	root := b.buildProgram(p)
	if len(b.diags) > 0 {
		return nil, b.diags
	}

	if ds := runPostIR(root); len(ds) > 0 {
		return nil, ds
	}
	return root, nil
}

func (b *builder) errf(kind diag.Kind, pos ast.Position, format string, args ...interface{}) {
	b.diags = append(b.diags, diag.New(kind, pos, format, args...))
}

// buildProgram resolves every field then every method declaration of p,
// in declaration order, into the scope's program-wide field and method
// tables, inside the global scope frame.
//
// Methods are registered in two phases (rule 1/2, SPEC_FULL.md §9.1):
// first every MethodDecl skeleton (signature, no body) is created and
// added to scope, so forward/recursive calls already resolve by pointer;
// then every body is built and attached.
func (b *builder) buildProgram(p *ast.Program) *Root {
	pop := b.scope.Enter(KindGlobal)
	defer pop()

	program := &ProgramClassDecl{}

	for _, fd := range p.FieldDecls {
		for _, loc := range fd.Locs {
			arrSize := 0
			if loc.ArrSize != nil {
				arrSize = *loc.ArrSize
			}
			decl := &FieldDecl{Type: fd.Type, Name: loc.Name, ArrSize: arrSize}
			if !b.scope.AddField(decl) { // rule 1
				b.errf(diag.DuplicatedSymbol, loc.Pos, "field %q already declared", loc.Name)
				continue
			}
			program.FieldDecls = append(program.FieldDecls, decl)
		}
	}

	methods := make([]*MethodDecl, len(p.MethodDecls))
	for i, md := range p.MethodDecls {
		m := &MethodDecl{ReturnType: md.ReturnType, Name: md.Name}
		for _, a := range md.Args {
			m.Args = append(m.Args, &VarDecl{Type: a.Type, Name: a.Name})
		}
		if !b.scope.AddMethod(m) { // rule 1
			b.errf(diag.DuplicatedSymbol, md.Pos, "method %q already declared", md.Name)
			continue
		}
		methods[i] = m
		program.MethodDecls = append(program.MethodDecls, m)
	}

	for i, md := range p.MethodDecls {
		if methods[i] == nil {
			continue // duplicate declaration already reported above
		}
		b.buildMethodBody(methods[i], md)
	}

	return &Root{Program: program}
}

// buildMethodBody fills in m.Block, resolving args and body locals into
// one shared scope frame (SPEC_FULL.md §9.2): a local that shadows an
// argument name is a duplicate, not a new shadow.
func (b *builder) buildMethodBody(m *MethodDecl, md *ast.MethodDecl) {
	pop := b.scope.EnterMethod(m)
	defer pop()

	for i, a := range md.Args {
		if !b.scope.AddVar(m.Args[i]) { // rule 1
			b.errf(diag.DuplicatedSymbol, a.Pos, "argument %q already declared", a.Name)
		}
	}

	m.Block = b.buildBlockInCurrentScope(md.Block)
}

// buildBlock enters a fresh scope frame of kind and builds a block inside
// it.
func (b *builder) buildBlock(ablock *ast.Block, kind Kind) *Block {
	pop := b.scope.Enter(kind)
	defer pop()
	return b.buildBlockInCurrentScope(ablock)
}

// buildBlockInCurrentScope resolves local declarations then statements of
// ablock into whatever scope frame is already current; callers that need
// a var decl's scope to coincide with an enclosing frame (method args,
// for-loop index variable) enter that frame themselves first.
func (b *builder) buildBlockInCurrentScope(ablock *ast.Block) *Block {
	block := &Block{}
	for _, vd := range ablock.VarDecls {
		for _, name := range vd.Identifiers {
			v := &VarDecl{Type: vd.Type, Name: name}
			if !b.scope.AddVar(v) { // rule 1
				b.errf(diag.DuplicatedSymbol, vd.Pos, "variable %q already declared", name)
				continue
			}
			block.VarDecls = append(block.VarDecls, v)
		}
	}
	for _, s := range ablock.Statements {
		if st := b.buildStatement(s); st != nil {
			block.Statements = append(block.Statements, st)
		}
	}
	return block
}

// buildStatement resolves one ast.Statement into its typed-IR form,
// dispatching on Kind. It returns nil only when the statement could not
// be resolved at all (e.g. an unresolvable call); the caller simply omits
// it from the block rather than panicking, since diagnostics — not a
// partial tree — are what CreateIR ultimately returns on failure.
func (b *builder) buildStatement(s *ast.Statement) *Statement {
	switch s.Kind {
	case ast.StmtAssign:
		a := b.buildAssign(s)
		if a == nil {
			return nil
		}
		return &Statement{Kind: StmtAssign, Assign: a}

	case ast.StmtMethodCall:
		c := b.buildCall(s.Call)
		if c == nil {
			return nil
		}
		return &Statement{Kind: StmtCall, Call: c}

	case ast.StmtIfElse:
		return b.buildIfElse(s)

	case ast.StmtLoop:
		return b.buildFor(s)

	case ast.StmtReturn:
		return b.buildReturn(s)

	case ast.StmtBreak:
		f := b.scope.CurrentFor()
		if f == nil { // rule 18
			b.errf(diag.BreakOutOfForScope, s.Pos, "break statement outside of a for loop")
			return nil
		}
		return &Statement{Kind: StmtBreak, Break: &Break{Pos: s.Pos, For: f}}

	case ast.StmtContinue:
		f := b.scope.CurrentFor()
		if f == nil { // rule 18
			b.errf(diag.ContinueOutOfForScope, s.Pos, "continue statement outside of a for loop")
			return nil
		}
		return &Statement{Kind: StmtContinue, Continue: &Continue{Pos: s.Pos, For: f}}

	case ast.StmtBlock:
		blk := b.buildBlock(s.Body, KindAnon)
		return &Statement{Kind: StmtBlock, Block: blk}

	default:
		return nil
	}
}

// buildAssign resolves an assignment statement (rules 9, 10, 15, 16).
func (b *builder) buildAssign(s *ast.Statement) *Assign {
	dst := b.buildLocation(s.AssignDst)
	val := b.buildExpr(s.AssignVal)
	if dst == nil || val == nil {
		return nil
	}

	if s.AssignOp == ast.Assign {
		if dst.Decl.Type() != val.Type { // rule 15
			b.errf(diag.TypeMismatch, s.Pos, "cannot assign %s to %s location %q",
				val.Type, dst.Decl.Type(), dst.Decl.Name())
		}
	} else {
		if dst.Decl.Type() != Int { // rule 16
			b.errf(diag.TypeMismatch, s.Pos, "compound assignment target %q must be int", dst.Decl.Name())
		}
		if val.Type != Int { // rule 16
			b.errf(diag.TypeMismatch, s.Pos, "compound assignment value must be int, got %s", val.Type)
		}
	}

	return &Assign{Pos: s.Pos, Dst: dst, Op: s.AssignOp, Val: val}
}

// buildLocation resolves a Location, checking rules 9 and 10.
func (b *builder) buildLocation(l *ast.Location) *Location {
	decl, ok := b.scope.FindLocation(l.Name)
	if !ok { // rule 9
		b.errf(diag.UnknownSymbol, l.Pos, "undeclared identifier %q", l.Name)
		return nil
	}

	if l.ArrSize == nil {
		if decl.IsArray() { // rule 10(c): bare array name used as a scalar
			b.errf(diag.TypeMismatch, l.Pos, "%q is an array and cannot be used as a scalar location", l.Name)
		}
		return &Location{Pos: l.Pos, Decl: decl}
	}

	if !decl.IsArray() { // rule 10(a)
		b.errf(diag.ArrayLocationOnNonArrayVar, l.Pos, "%q is not an array variable", l.Name)
	}
	idx := b.buildExpr(l.ArrSize)
	if idx != nil && idx.Type != Int { // rule 10(b)
		b.errf(diag.ArrayLocationOffsetTypeError, l.Pos, "array index must be int, got %s", idx.Type)
	}
	return &Location{Pos: l.Pos, Decl: decl, ArrSize: idx}
}

// buildIfElse resolves an if/else statement (rule 11).
func (b *builder) buildIfElse(s *ast.Statement) *Statement {
	cond := b.buildExpr(s.Cond)
	if cond != nil && cond.Type != Bool { // rule 11
		b.errf(diag.TypeMismatch, s.Pos, "if condition must be boolean, got %s", cond.Type)
	}

	trueBlock := b.buildBlock(s.TrueBlock, KindIf)
	var falseBlock *Block
	if s.FalseBlock != nil {
		falseBlock = b.buildBlock(s.FalseBlock, KindElse)
	}

	return &Statement{Kind: StmtIfElse, IfElse: &IfElse{
		Pos: s.Pos, Cond: cond, TrueBlock: trueBlock, FalseBlock: falseBlock,
	}}
}

// buildFor resolves a bounded for-loop statement (rule 17). The index
// variable is declared in the loop's own scope frame, visible to the
// bounds expressions' scope parent but not to Start/End themselves (they
// are evaluated in the enclosing scope, matching the original grammar
// where "for i = start, end" declares i only for the loop body).
func (b *builder) buildFor(s *ast.Statement) *Statement {
	start := b.buildExpr(s.LoopStart)
	end := b.buildExpr(s.LoopEnd)
	if start != nil && start.Type != Int { // rule 17
		b.errf(diag.TypeMismatch, s.Pos, "for loop start must be int, got %s", start.Type)
	}
	if end != nil && end.Type != Int { // rule 17
		b.errf(diag.TypeMismatch, s.Pos, "for loop end must be int, got %s", end.Type)
	}

	f := &For{Start: start, End: end}

	pop := b.scope.EnterFor(f)
	defer pop()

	indexVar := &VarDecl{Type: Int, Name: s.LoopIndexVar}
	if !b.scope.AddVar(indexVar) { // rule 1
		b.errf(diag.DuplicatedSymbol, s.Pos, "for loop index %q already declared", s.LoopIndexVar)
	}
	f.IndexVar = indexVar
	f.Block = b.buildBlockInCurrentScope(s.LoopBlock)

	return &Statement{Kind: StmtFor, For: f}
}

// buildReturn resolves a return statement (rules 7, 8).
func (b *builder) buildReturn(s *ast.Statement) *Statement {
	m := b.scope.CurrentMethod()
	if m == nil {
		// The grammar guarantees a return only appears inside a method
		// body; this should be unreachable, but guards against a
		// malformed ast.Program instead of panicking.
		b.errf(diag.ReturnTypeMismatch, s.Pos, "return statement outside of any method")
		return nil
	}

	var val *Expr
	if s.ReturnVal != nil {
		val = b.buildExpr(s.ReturnVal)
	}

	switch {
	case m.ReturnType == Void && val != nil: // rule 7
		b.errf(diag.ReturnTypeMismatch, s.Pos, "method %q is void and cannot return a value", m.Name)
	case m.ReturnType != Void && val != nil && val.Type != m.ReturnType: // rule 8
		b.errf(diag.ReturnTypeMismatch, s.Pos, "method %q must return %s, got %s", m.Name, m.ReturnType, val.Type)
	}

	return &Statement{Kind: StmtReturn, Return: &Return{Pos: s.Pos, Func: m, Val: val}}
}

// buildExpr resolves an ast.Expr into its typed-IR form, inferring Type
// according to rules 9–14. It returns nil only when the expression could
// not be resolved (e.g. a call to an unknown method).
func (b *builder) buildExpr(e *ast.Expr) *Expr {
	switch e.Kind {
	case ast.ExprLocation:
		loc := b.buildLocation(e.Location)
		if loc == nil {
			return nil
		}
		return &Expr{Pos: e.Pos, Kind: ExprLocation, Type: loc.Decl.Type(), Location: loc}

	case ast.ExprMethodCall:
		call := b.buildCall(e.Call)
		if call == nil {
			return nil
		}
		t := b.callType(call)
		if t == Void { // rule 6
			b.errf(diag.ExprCallNoReturn, e.Pos, "method %q is void and cannot be used as an expression", callName(call))
		}
		return &Expr{Pos: e.Pos, Kind: ExprCall, Type: t, Call: call}

	case ast.ExprLiteral:
		return b.buildLiteral(e)

	case ast.ExprUnary:
		return b.buildUnary(e)

	case ast.ExprBinary:
		return b.buildBinary(e)

	default:
		return nil
	}
}

// callType reports the return type a resolved Call yields in expression
// position: callouts always return Int by convention (spec.md §3.1).
func (b *builder) callType(c *Call) Type {
	if c.Kind == CallCallout {
		return Int
	}
	return c.Method.ReturnType
}

func callName(c *Call) string {
	if c.Kind == CallCallout {
		return c.CalloutName
	}
	return c.Method.Name
}

// buildLiteral resolves a literal expression, widening char literals to
// their ASCII code point (SPEC_FULL.md §3, Design Note 3) and rejecting
// non-ASCII char literals.
func (b *builder) buildLiteral(e *ast.Expr) *Expr {
	switch e.LitKind {
	case ast.LitInt:
		return &Expr{Pos: e.Pos, Kind: ExprLiteral, Type: Int, Literal: &Literal{IntVal: e.IntVal}}
	case ast.LitBool:
		return &Expr{Pos: e.Pos, Kind: ExprLiteral, Type: Bool, Literal: &Literal{IsBool: true, BoolVal: e.BoolVal}}
	case ast.LitChar:
		if e.IntVal > 127 || e.IntVal < 0 {
			b.errf(diag.NonAsciiCharLiteral, e.Pos, "char literal %d is not a 7-bit ASCII code point", e.IntVal)
		}
		return &Expr{Pos: e.Pos, Kind: ExprLiteral, Type: Int, Literal: &Literal{IntVal: e.IntVal}}
	default:
		return nil
	}
}

// buildUnary resolves a unary expression (rule 14 for !, integer negation
// otherwise requires an int operand by the same reasoning as rule 12).
func (b *builder) buildUnary(e *ast.Expr) *Expr {
	inner := b.buildExpr(e.UnaryExpr)
	if inner == nil {
		return nil
	}

	want := Int
	if e.UnaryOp == ast.NegBool {
		want = Bool
	}
	if inner.Type != want {
		b.errf(diag.TypeMismatch, e.Pos, "operand of %s must be %s, got %s", e.UnaryOp, want, inner.Type)
	}

	return &Expr{Pos: e.Pos, Kind: ExprUnary, Type: want, Unary: &Unary{Expr: inner, Op: e.UnaryOp}}
}

// buildBinary resolves a binary expression, applying the typing rule that
// matches the operator's class (rules 12, 13, 14).
func (b *builder) buildBinary(e *ast.Expr) *Expr {
	lhs := b.buildExpr(e.BinaryLHS)
	rhs := b.buildExpr(e.BinaryRHS)
	if lhs == nil || rhs == nil {
		return nil
	}

	var resultType Type
	switch e.BinaryOp.Class() {
	case ast.OpArith: // rule 12
		resultType = Int
		if lhs.Type != Int || rhs.Type != Int {
			b.errf(diag.TypeMismatch, e.Pos, "operands of %s must be int, got %s and %s", e.BinaryOp, lhs.Type, rhs.Type)
		}
	case ast.OpCompare: // rule 12
		resultType = Bool
		if lhs.Type != Int || rhs.Type != Int {
			b.errf(diag.TypeMismatch, e.Pos, "operands of %s must be int, got %s and %s", e.BinaryOp, lhs.Type, rhs.Type)
		}
	case ast.OpEq: // rule 13
		resultType = Bool
		if lhs.Type != rhs.Type {
			b.errf(diag.TypeMismatch, e.Pos, "operands of %s must have the same type, got %s and %s", e.BinaryOp, lhs.Type, rhs.Type)
		}
	case ast.OpCond: // rule 14
		resultType = Bool
		if lhs.Type != Bool || rhs.Type != Bool {
			b.errf(diag.TypeMismatch, e.Pos, "operands of %s must be boolean, got %s and %s", e.BinaryOp, lhs.Type, rhs.Type)
		}
	}

	return &Expr{Pos: e.Pos, Kind: ExprBinary, Type: resultType, Binary: &Binary{LHS: lhs, RHS: rhs, Op: e.BinaryOp}}
}

// buildCall resolves a method call or callout (rule 5: arity and
// parameter types must match the resolved method's signature exactly;
// callouts are foreign and accept any argument list).
func (b *builder) buildCall(c *ast.MethodCall) *Call {
	if c.Kind == ast.CallCallout {
		out := &Call{Pos: c.Pos, Kind: CallCallout, CalloutName: c.CalloutName}
		for _, a := range c.CalloutArgs {
			arg := &CalloutArg{Kind: a.Kind}
			if a.Kind == ast.CalloutArgString {
				arg.String = a.String
			} else {
				arg.Expr = b.buildExpr(a.Expr)
			}
			out.CalloutArgs = append(out.CalloutArgs, arg)
		}
		return out
	}

	m := b.scope.FindMethod(c.Name)
	if m == nil { // rule 9 (method identifiers follow the same declared-before-use rule)
		b.errf(diag.UnknownSymbol, c.Pos, "undeclared method %q", c.Name)
		return nil
	}

	args := make([]*Expr, 0, len(c.Args))
	for _, a := range c.Args {
		if ae := b.buildExpr(a); ae != nil {
			args = append(args, ae)
		}
	}

	if len(args) == len(c.Args) { // only check arity/types if every argument itself resolved
		if len(args) != len(m.Args) {
			b.errf(diag.MethodArgumentNotMatch, c.Pos, "method %q expects %d argument(s), got %d", c.Name, len(m.Args), len(args))
		} else {
			for i, a := range args {
				if a.Type != m.Args[i].Type {
					b.errf(diag.MethodArgumentNotMatch, c.Pos, "method %q argument %d: expected %s, got %s", c.Name, i+1, m.Args[i].Type, a.Type)
				}
			}
		}
	}

	return &Call{Pos: c.Pos, Kind: CallMethod, Method: m, Args: args}
}
