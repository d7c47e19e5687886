package lir

import (
	"testing"

	"decafir/ast"
	"decafir/ir"
)

var pos0 = ast.Position{Line: 1, Col: 1}

func intLit(n int) *ast.Expr {
	return &ast.Expr{Pos: pos0, Kind: ast.ExprLiteral, LitKind: ast.LitInt, IntVal: n}
}

func idExpr(name string) *ast.Expr {
	return &ast.Expr{Pos: pos0, Kind: ast.ExprLocation, Location: &ast.Location{Pos: pos0, Name: name}}
}

func binExpr(op ast.BinaryOp, lhs, rhs *ast.Expr) *ast.Expr {
	return &ast.Expr{Pos: pos0, Kind: ast.ExprBinary, BinaryOp: op, BinaryLHS: lhs, BinaryRHS: rhs}
}

func assignStmt(name string, op ast.AssignOp, val *ast.Expr) *ast.Statement {
	return &ast.Statement{Pos: pos0, Kind: ast.StmtAssign, AssignDst: &ast.Location{Pos: pos0, Name: name}, AssignOp: op, AssignVal: val}
}

func forStmt(index string, start, end *ast.Expr, body *ast.Block) *ast.Statement {
	return &ast.Statement{Pos: pos0, Kind: ast.StmtLoop, LoopIndexVar: index, LoopStart: start, LoopEnd: end, LoopBlock: body}
}

func ifStmt(cond *ast.Expr, trueBlock, falseBlock *ast.Block) *ast.Statement {
	return &ast.Statement{Pos: pos0, Kind: ast.StmtIfElse, Cond: cond, TrueBlock: trueBlock, FalseBlock: falseBlock}
}

func breakStmt() *ast.Statement    { return &ast.Statement{Pos: pos0, Kind: ast.StmtBreak} }
func continueStmt() *ast.Statement { return &ast.Statement{Pos: pos0, Kind: ast.StmtContinue} }

func varDecl(typ ast.Type, names ...string) *ast.VarDecl {
	return &ast.VarDecl{Pos: pos0, Type: typ, Identifiers: names}
}

func block(vars []*ast.VarDecl, stmts ...*ast.Statement) *ast.Block {
	return &ast.Block{Pos: pos0, VarDecls: vars, Statements: stmts}
}

func mainMethod(b *ast.Block) *ast.MethodDecl {
	return &ast.MethodDecl{Pos: pos0, ReturnType: ast.Void, Name: "main", Block: b}
}

func buildRoot(t *testing.T, p *ast.Program) *ir.Root {
	t.Helper()
	root, ds := ir.CreateIR(p)
	if len(ds) != 0 {
		t.Fatalf("unexpected diagnostics building fixture: %v", ds)
	}
	return root
}

// Plain assignment lowers to a single StoreInst, not the "0 + rhs" trick
// the redesign flag replaces (inst.go's StoreInst doc comment).
func TestLowerAssign_PlainAssignUsesStore(t *testing.T) {
	p := &ast.Program{Pos: pos0, MethodDecls: []*ast.MethodDecl{
		mainMethod(block([]*ast.VarDecl{varDecl(ast.Int, "x")}, assignStmt("x", ast.Assign, intLit(5)))),
	}}
	root := buildRoot(t, p)
	mod := Generate(root)

	var stores int
	for _, inst := range mod.MethodDefs[0].Insts {
		if inst.Kind() == KindStore {
			stores++
		}
	}
	if stores != 1 {
		t.Fatalf("expected exactly one StoreInst, got %d among %v", stores, mod.MethodDefs[0].Insts)
	}
}

// Compound assignment reads the destination Memory directly as the
// arithmetic instruction's LHS operand, with no separate Load.
func TestLowerAssign_CompoundAssignReadsMemoryDirectly(t *testing.T) {
	p := &ast.Program{Pos: pos0, MethodDecls: []*ast.MethodDecl{
		mainMethod(block([]*ast.VarDecl{varDecl(ast.Int, "x")}, assignStmt("x", ast.AddAssign, intLit(1)))),
	}}
	root := buildRoot(t, p)
	mod := Generate(root)

	var loads int
	var compound *IAddInst
	for _, inst := range mod.MethodDefs[0].Insts {
		if inst.Kind() == KindLoad {
			loads++
		}
		// The literal rhs is first materialized by its own register-
		// destination IAdd; the compound assignment's IAdd is the last one.
		if add, ok := inst.(IAddInst); ok {
			compound = &add
		}
	}
	if compound == nil {
		t.Fatal("expected an IAddInst lowering the compound assignment")
	}
	if compound.Dst.Kind != LocMemory || compound.LHS.Location.Kind != LocMemory {
		t.Errorf("compound assignment IAdd should read/write Memory directly, got %+v", *compound)
	}
	if loads != 0 {
		t.Errorf("compound assignment should not emit a Load, got %d", loads)
	}
}

// For-loop lowering uses the exact __LForB<n>/__LForE<n> label naming
// (grounded on original_source's LabelGenerator) plus the __LForC<n>
// continue label, and Break/Continue jump to the matching end/continue
// labels.
func TestLowerFor_LabelsAndBreakContinue(t *testing.T) {
	loop := forStmt("i", intLit(0), intLit(10), block(nil, breakStmt(), continueStmt()))
	p := &ast.Program{Pos: pos0, MethodDecls: []*ast.MethodDecl{mainMethod(block(nil, loop))}}
	root := buildRoot(t, p)
	mod := Generate(root)

	var labels []string
	var jumps []string
	for _, inst := range mod.MethodDefs[0].Insts {
		switch v := inst.(type) {
		case LabelInst:
			labels = append(labels, v.Name)
		case JumpInst:
			jumps = append(jumps, v.Target)
		}
	}

	wantBegin, wantCont, wantEnd := "__LForB0", "__LForC0", "__LForE0"
	if labels[0] != wantBegin {
		t.Errorf("first label = %q, want %q", labels[0], wantBegin)
	}
	foundCont, foundEnd := false, false
	for _, l := range labels {
		if l == wantCont {
			foundCont = true
		}
		if l == wantEnd {
			foundEnd = true
		}
	}
	if !foundCont {
		t.Errorf("expected continue label %q among %v", wantCont, labels)
	}
	if !foundEnd {
		t.Errorf("expected end label %q among %v", wantEnd, labels)
	}

	// break -> end, continue -> the continue label guarding the
	// increment (NOT begin — jumping straight to begin would skip the
	// increment and loop on the same index forever).
	if len(jumps) < 2 {
		t.Fatalf("expected at least two unconditional jumps (break, continue), got %v", jumps)
	}
	if jumps[0] != wantEnd {
		t.Errorf("break should jump to %q, got %q", wantEnd, jumps[0])
	}
	if jumps[1] != wantCont {
		t.Errorf("continue should jump to %q, got %q", wantCont, jumps[1])
	}

	// The continue label must appear immediately before the increment
	// instruction, or continue could still bypass it.
	contIdx := -1
	for i, inst := range mod.MethodDefs[0].Insts {
		if l, ok := inst.(LabelInst); ok && l.Name == wantCont {
			contIdx = i
			break
		}
	}
	if contIdx == -1 || contIdx+1 >= len(mod.MethodDefs[0].Insts) {
		t.Fatalf("continue label not found or has no following instruction")
	}
	if add, ok := mod.MethodDefs[0].Insts[contIdx+1].(IAddInst); !ok || add.Dst.Kind != LocMemory {
		t.Errorf("expected the continue label to be immediately followed by the index increment, got %T", mod.MethodDefs[0].Insts[contIdx+1])
	}
}

// If/else lowering produces exactly one CondJumpInst with both targets set,
// and emits the then/join labels from the first ifElseLabels pair.
func TestLowerIfElse_StructureAndLabels(t *testing.T) {
	stmt := ifStmt(idExpr("x"), block(nil), block(nil))
	p := &ast.Program{Pos: pos0, MethodDecls: []*ast.MethodDecl{
		mainMethod(block([]*ast.VarDecl{varDecl(ast.Bool, "x")}, stmt)),
	}}
	root := buildRoot(t, p)
	mod := Generate(root)

	var condJumps int
	var labelNames []string
	for _, inst := range mod.MethodDefs[0].Insts {
		if cj, ok := inst.(CondJumpInst); ok {
			condJumps++
			if cj.TrueTarget == "" || cj.FalseTarget == "" {
				t.Errorf("CondJumpInst missing a target: %+v", cj)
			}
		}
		if l, ok := inst.(LabelInst); ok {
			labelNames = append(labelNames, l.Name)
		}
	}
	if condJumps != 1 {
		t.Fatalf("expected exactly one CondJumpInst, got %d", condJumps)
	}
	// then and join labels from ifElseLabels(0).
	wantThen, wantJoin := "__LIfElseT0", "__LIfElseJ0"
	foundThen, foundJoin := false, false
	for _, n := range labelNames {
		if n == wantThen {
			foundThen = true
		}
		if n == wantJoin {
			foundJoin = true
		}
	}
	if !foundThen || !foundJoin {
		t.Errorf("expected labels %q and %q among %v", wantThen, wantJoin, labelNames)
	}
}

// Relational and logical operators lower to CmpInst/LogicalInst rather than
// the named arithmetic instructions, since spec.md's instruction list only
// names the five arithmetic ones.
func TestLowerBinary_ComparisonAndLogical(t *testing.T) {
	cond := binExpr(ast.OpAnd, binExpr(ast.OpLT, idExpr("a"), idExpr("b")), binExpr(ast.OpEqEq, idExpr("a"), idExpr("b")))
	p := &ast.Program{Pos: pos0, MethodDecls: []*ast.MethodDecl{
		mainMethod(block([]*ast.VarDecl{varDecl(ast.Int, "a", "b")}, ifStmt(cond, block(nil), nil))),
	}}
	root := buildRoot(t, p)
	mod := Generate(root)

	var cmps, logicals int
	for _, inst := range mod.MethodDefs[0].Insts {
		switch inst.(type) {
		case CmpInst:
			cmps++
		case LogicalInst:
			logicals++
		}
	}
	if cmps != 2 {
		t.Errorf("expected 2 CmpInst (< and ==), got %d", cmps)
	}
	if logicals != 1 {
		t.Errorf("expected 1 LogicalInst (&&), got %d", logicals)
	}
}

// Global fields are lowered once into the Module's VarDefs, with the
// scalar-int byte size.
func TestGenerate_GlobalFieldsLowered(t *testing.T) {
	p := &ast.Program{Pos: pos0,
		FieldDecls:  []*ast.FieldDecl{{Pos: pos0, Type: ast.Int, Locs: []*ast.FieldDecl0{{Pos: pos0, Name: "counter"}}}},
		MethodDecls: []*ast.MethodDecl{mainMethod(block(nil, assignStmt("counter", ast.Assign, intLit(1))))},
	}
	root := buildRoot(t, p)
	mod := Generate(root)

	if len(mod.VarDefs) != 1 || mod.VarDefs[0].Name != "counter" {
		t.Fatalf("expected one global VarDef named counter, got %+v", mod.VarDefs)
	}
	if mod.VarDefs[0].Type.ByteSize() != 4 {
		t.Errorf("scalar int ByteSize() = %d, want 4", mod.VarDefs[0].Type.ByteSize())
	}
}

func TestTypeByteSize(t *testing.T) {
	cases := []struct {
		typ  Type
		want uint32
	}{
		{Type{Kind: TInt, Len: 1}, 4},
		{Type{Kind: TInt, Len: 10}, 40},
		{Type{Kind: TBool, Len: 1}, 4},
		{Type{Kind: TString, Len: 5}, 6},
		{Type{Kind: TVoid}, 0},
	}
	for _, c := range cases {
		if got := c.typ.ByteSize(); got != c.want {
			t.Errorf("%v.ByteSize() = %d, want %d", c.typ, got, c.want)
		}
	}
}

// Register ids are monotonic within a method and reset per method, mirroring
// the per-method registerGen rebuilt in newMethodCtx.
func TestRegisterGenMonotonicPerMethod(t *testing.T) {
	p := &ast.Program{Pos: pos0, MethodDecls: []*ast.MethodDecl{
		mainMethod(block([]*ast.VarDecl{varDecl(ast.Int, "x")}, assignStmt("x", ast.Assign, binExpr(ast.OpAdd, intLit(1), intLit(2))))),
		{Pos: pos0, ReturnType: ast.Void, Name: "second", Block: block([]*ast.VarDecl{varDecl(ast.Int, "y")}, assignStmt("y", ast.Assign, intLit(3)))},
	}}
	root := buildRoot(t, p)
	mod := Generate(root)

	for _, md := range mod.MethodDefs {
		var ids []uint32
		for _, inst := range md.Insts {
			if add, ok := inst.(IAddInst); ok && add.Dst.Kind == LocRegister {
				ids = append(ids, add.Dst.Register.ID)
			}
		}
		for i := 1; i < len(ids); i++ {
			if ids[i] <= ids[i-1] {
				t.Errorf("method %s: register ids not strictly increasing: %v", md.Name, ids)
			}
		}
	}
	// The second method's first register should start back at 0, since
	// methodCtx is rebuilt fresh per method.
	var secondMethodFirstRegFound bool
	for _, inst := range mod.MethodDefs[1].Insts {
		if add, ok := inst.(IAddInst); ok && add.Dst.Kind == LocRegister {
			if add.Dst.Register.ID != 0 {
				t.Errorf("expected the second method's first register to start at 0, got %d", add.Dst.Register.ID)
			}
			secondMethodFirstRegFound = true
			break
		}
	}
	if !secondMethodFirstRegFound {
		t.Fatal("expected at least one register-producing IAddInst in the second method")
	}
}

func TestModuleStringRendersHeaderAndBody(t *testing.T) {
	p := &ast.Program{Pos: pos0, MethodDecls: []*ast.MethodDecl{
		mainMethod(block([]*ast.VarDecl{varDecl(ast.Int, "x")}, assignStmt("x", ast.Assign, intLit(1)))),
	}}
	root := buildRoot(t, p)
	mod := Generate(root)

	out := mod.String()
	if out == "" {
		t.Fatal("Module.String() returned empty output")
	}
	if want := "method main() -> void:"; !contains(out, want) {
		t.Errorf("expected header %q in output:\n%s", want, out)
	}
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

// execInsts is a tiny, test-only interpreter for the straight-line
// subset of LLIR this package emits for loops/conditionals/assignments:
// enough to prove `continue` actually advances the loop instead of
// spinning on the same index. It is not a general LLIR evaluator (no
// calls, no arrays) — register allocation and execution are downstream
// collaborators per spec.md §1; this exists purely to pin down loop
// semantics in a test without a real backend.
const execMaxSteps = 10000

func execInsts(t *testing.T, insts []Inst) map[string]int32 {
	t.Helper()

	labelPC := make(map[string]int)
	for pc, inst := range insts {
		if l, ok := inst.(LabelInst); ok {
			labelPC[l.Name] = pc
		}
	}

	regs := make(map[uint32]int32)
	mem := make(map[*VarDef]int32)

	resolve := func(o Operand) int32 {
		switch o.Kind {
		case OperandLiteral:
			return o.Literal
		default:
			if o.Location.Kind == LocRegister {
				return regs[o.Location.Register.ID]
			}
			return mem[o.Location.Memory.Decl]
		}
	}
	store := func(dst Location, v int32) {
		if dst.Kind == LocRegister {
			regs[dst.Register.ID] = v
		} else {
			mem[dst.Memory.Decl] = v
		}
	}

	pc := 0
	for steps := 0; pc < len(insts); steps++ {
		if steps > execMaxSteps {
			t.Fatalf("exceeded %d steps without returning — likely an infinite loop", execMaxSteps)
		}
		switch inst := insts[pc].(type) {
		case AllocaInst:
			mem[inst.Def] = 0
		case LabelInst:
			// no-op: a position marker only.
		case LoadInst:
			regs[inst.Dst.ID] = mem[inst.Src.Decl]
		case StoreInst:
			mem[inst.Dst.Decl] = regs[inst.Src.ID]
		case IAddInst:
			store(inst.Dst, resolve(inst.LHS)+resolve(inst.RHS))
		case ISubInst:
			store(inst.Dst, resolve(inst.LHS)-resolve(inst.RHS))
		case IMulInst:
			store(inst.Dst, resolve(inst.LHS)*resolve(inst.RHS))
		case IDivInst:
			store(inst.Dst, resolve(inst.LHS)/resolve(inst.RHS))
		case IModInst:
			store(inst.Dst, resolve(inst.LHS)%resolve(inst.RHS))
		case CmpInst:
			l, r := resolve(inst.LHS), resolve(inst.RHS)
			var v bool
			switch inst.Op {
			case CmpGT:
				v = l > r
			case CmpGE:
				v = l >= r
			case CmpLT:
				v = l < r
			case CmpLE:
				v = l <= r
			case CmpEQ:
				v = l == r
			case CmpNE:
				v = l != r
			}
			regs[inst.Dst.ID] = boolToInt32(v)
		case LogicalInst:
			l, r := resolve(inst.LHS) != 0, resolve(inst.RHS) != 0
			var v bool
			if inst.Op == LogicalAnd {
				v = l && r
			} else {
				v = l || r
			}
			regs[inst.Dst.ID] = boolToInt32(v)
		case NegInst:
			regs[inst.Dst.ID] = -resolve(inst.Src)
		case NotInst:
			regs[inst.Dst.ID] = boolToInt32(resolve(inst.Src) == 0)
		case JumpInst:
			pc = labelPC[inst.Target]
			continue
		case CondJumpInst:
			if resolve(inst.Cond) != 0 {
				pc = labelPC[inst.TrueTarget]
			} else {
				pc = labelPC[inst.FalseTarget]
			}
			continue
		case ReturnInst:
			out := make(map[string]int32)
			for def, v := range mem {
				out[def.Name] = v
			}
			return out
		default:
			t.Fatalf("execInsts: unsupported instruction %T", inst)
		}
		pc++
	}

	out := make(map[string]int32)
	for def, v := range mem {
		out[def.Name] = v
	}
	return out
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// TestLowerFor_ContinueAdvancesIndex is the regression test for a bug
// where `continue` jumped straight to the loop's begin label: since the
// index increment only runs right before that same jump, at the end of
// the body, a `continue` used to skip the increment entirely and spin
// forever re-testing the same index. Here `continue` is taken on exactly
// one iteration (i == 2) out of five (i == 0..4); if `continue` still
// jumped to begin, this test would hit execInsts's step cap instead of
// returning.
func TestLowerFor_ContinueAdvancesIndex(t *testing.T) {
	loopBody := block(nil,
		ifStmt(binExpr(ast.OpEqEq, idExpr("i"), intLit(2)), block(nil, continueStmt()), nil),
		assignStmt("counter", ast.AddAssign, intLit(1)),
	)
	p := &ast.Program{Pos: pos0, MethodDecls: []*ast.MethodDecl{
		mainMethod(block([]*ast.VarDecl{varDecl(ast.Int, "counter")},
			assignStmt("counter", ast.Assign, intLit(0)),
			forStmt("i", intLit(0), intLit(5), loopBody),
		)),
	}}
	root := buildRoot(t, p)
	mod := Generate(root)

	mem := execInsts(t, mod.MethodDefs[0].Insts)
	if got, want := mem["counter"], int32(4); got != want {
		t.Errorf("counter = %d, want %d (incremented on i=0,1,3,4; skipped on i=2)", got, want)
	}
}
