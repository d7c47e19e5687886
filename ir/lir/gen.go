package lir

import (
	"fmt"

	"decafir/ir"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// labelGen is a synchronous per-method label-name generator. The
// teacher's label generator (src/util/label.go) and the original
// prototype's LabelGenerator (src/ssagen/label_gen.rs) are both
// effectively one-shot counters; spec.md §5 rules out the teacher's
// channel/goroutine-backed version (no shared mutable state, nothing
// blocks), so this is a plain struct instead.
type labelGen struct {
	forID    uint32
	ifElseID uint32
}

// forLabels returns the ("__LForB<n>", "__LForC<n>", "__LForE<n>")
// begin/continue/end label triple for the next for-loop. original_source's
// LabelGenerator.get_for_labels only produces the begin/end pair (its
// prototype lowering has no notion of a separate continue target); the
// continue label is this implementation's addition so that `continue`
// can jump to the index increment instead of back to the bound re-check.
func (g *labelGen) forLabels() (begin, cont, end string) {
	begin = fmt.Sprintf("__LForB%d", g.forID)
	cont = fmt.Sprintf("__LForC%d", g.forID)
	end = fmt.Sprintf("__LForE%d", g.forID)
	g.forID++
	return
}

// ifElseLabels returns the ("__LIfElseT<n>", "__LIfElseJ<n>") then/join
// label pair for the next if/else, generalizing the same naming scheme
// to if/else (the original prototype never implemented IfElse lowering;
// spec.md §9 Open Question 1 leaves the exact scheme to the implementer).
func (g *labelGen) ifElseLabels() (then, join string) {
	then = fmt.Sprintf("__LIfElseT%d", g.ifElseID)
	join = fmt.Sprintf("__LIfElseJ%d", g.ifElseID)
	g.ifElseID++
	return
}

// registerGen is a synchronous monotonic virtual register id generator,
// one per method, mirroring original_source's RegisterGenerator.
type registerGen struct{ next uint32 }

func (g *registerGen) new() Register {
	r := Register{ID: g.next}
	g.next++
	return r
}

// forLabelPair is the begin/continue/end label names bound to one
// *ir.For, keyed by that pointer's identity so nested blocks'
// Break/Continue resolve to the correct enclosing loop. continue targets
// the index increment directly, not begin, so that a `continue` inside
// the loop body still advances the index instead of re-running the same
// iteration forever.
type forLabelPair struct{ begin, cont, end string }

// methodCtx is the per-method generator context threaded through one
// method's lowering. It is rebuilt (via newMethodCtx) for every method:
// every method shares the one read-only map of global VarDefs, while the
// local VarDef map, for-label map and register counter start empty each
// time, so that local declarations from a previous method never leak
// into the next one's scope.
type methodCtx struct {
	globalVarDefs map[*ir.FieldDecl]*VarDef
	localVarDefs  map[*ir.VarDecl]*VarDef
	forLabels     map[*ir.For]forLabelPair
	insts         []Inst
	labels        *labelGen
	regs          registerGen
}

func newMethodCtx(globals map[*ir.FieldDecl]*VarDef, labels *labelGen) *methodCtx {
	return &methodCtx{
		globalVarDefs: globals,
		localVarDefs:  make(map[*ir.VarDecl]*VarDef),
		forLabels:     make(map[*ir.For]forLabelPair),
		labels:        labels,
	}
}

// addVar declares d's storage for this method, panicking on a duplicate
// the way original_source's add_var asserts !contains — the IR builder
// already guarantees unique names per scope (diag.DuplicatedSymbol), so a
// collision here means this package's own lowering has a bug, not that
// the input program is invalid.
func (c *methodCtx) addVar(d *ir.VarDecl) *VarDef {
	def := &VarDef{Name: d.Name, Type: toLLIRType(d.Type, 0)}
	if _, dup := c.localVarDefs[d]; dup {
		panic("lir: duplicate local var def for " + d.Name)
	}
	c.localVarDefs[d] = def
	return def
}

// varDef resolves an already-declared *ir.VarDecl or *ir.FieldDecl (via
// LocationDecl) to its lowered VarDef.
func (c *methodCtx) varDef(decl ir.LocationDecl) *VarDef {
	if decl.Kind == ir.DeclVar {
		def, ok := c.localVarDefs[decl.Var]
		if !ok {
			panic("lir: unresolved local var def for " + decl.Var.Name)
		}
		return def
	}
	def, ok := c.globalVarDefs[decl.Field]
	if !ok {
		panic("lir: unresolved global field def for " + decl.Field.Name)
	}
	return def
}

func (c *methodCtx) emit(i Inst) { c.insts = append(c.insts, i) }

func (c *methodCtx) newReg() Register { return c.regs.new() }

// forLabelsFor returns the begin/continue/end label triple bound to f,
// generating a fresh triple the first time f is seen.
func (c *methodCtx) forLabelsFor(f *ir.For) forLabelPair {
	if p, ok := c.forLabels[f]; ok {
		return p
	}
	begin, cont, end := c.labels.forLabels()
	p := forLabelPair{begin: begin, cont: cont, end: end}
	c.forLabels[f] = p
	return p
}

// ---------------------
// ----- Functions -----
// ---------------------

func toLLIRType(t ir.Type, arrSize uint32) Type {
	switch t {
	case ir.Int:
		return Type{Kind: TInt, Len: max32(arrSize, 1)}
	case ir.Bool:
		return Type{Kind: TBool, Len: max32(arrSize, 1)}
	default:
		return Type{Kind: TVoid}
	}
}

func max32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// Generate lowers a fully resolved IR tree into a Module. Per spec.md
// §4.5.2, global fields are lowered once up front and injected into every
// method's context, so a method referencing a global never needs a
// separate global-lookup path from a local one.
func Generate(root *ir.Root) *Module {
	globalDefs := make(map[*ir.FieldDecl]*VarDef)
	mod := &Module{}
	for _, fd := range root.Program.FieldDecls {
		def := &VarDef{Name: fd.Name, Type: toLLIRType(fd.Type, uint32(fd.ArrSize))}
		globalDefs[fd] = def
		mod.VarDefs = append(mod.VarDefs, def)
	}

	for _, md := range root.Program.MethodDecls {
		ctx := newMethodCtx(globalDefs, &labelGen{})
		mod.MethodDefs = append(mod.MethodDefs, ctx.generateMethod(md))
	}
	return mod
}

// generateMethod lowers one method: Alloca for every argument, then the
// body block, matching original_source's MethodDecl::visit.
func (c *methodCtx) generateMethod(m *ir.MethodDecl) *MethodDef {
	args := make([]*VarDef, 0, len(m.Args))
	for _, a := range m.Args {
		def := c.addVar(a)
		c.emit(AllocaInst{Def: def})
		args = append(args, def)
	}

	c.lowerBlock(m.Block)

	return &MethodDef{
		Name:       m.Name,
		Args:       args,
		ReturnType: toLLIRType(m.ReturnType, 1),
		Insts:      c.insts,
	}
}

// lowerBlock allocates every local declared directly in block, then
// lowers its statements in order.
func (c *methodCtx) lowerBlock(block *ir.Block) {
	for _, v := range block.VarDecls {
		def := c.addVar(v)
		c.emit(AllocaInst{Def: def})
	}
	for _, s := range block.Statements {
		c.lowerStatement(s)
	}
}

// lowerStatement dispatches on ir.StatementKind, mirroring
// original_source's Statement::visit match arms.
func (c *methodCtx) lowerStatement(s *ir.Statement) {
	switch s.Kind {
	case ir.StmtAssign:
		c.lowerAssign(s.Assign)
	case ir.StmtCall:
		c.lowerCall(s.Call, false)
	case ir.StmtIfElse:
		c.lowerIfElse(s.IfElse)
	case ir.StmtFor:
		c.lowerFor(s.For)
	case ir.StmtReturn:
		c.lowerReturn(s.Return)
	case ir.StmtBreak:
		p := c.forLabelsFor(s.Break.For)
		c.emit(JumpInst{Target: p.end})
	case ir.StmtContinue:
		p := c.forLabelsFor(s.Continue.For)
		c.emit(JumpInst{Target: p.cont})
	case ir.StmtBlock:
		c.lowerBlock(s.Block)
	}
}

// lowerLocationMemory resolves a Location's declaration and (if present)
// its index expression into a Memory reference, matching
// original_source's treatment of arr_size in both Assign::visit and
// Location::visit.
func (c *methodCtx) lowerLocationMemory(loc *ir.Location) Memory {
	def := c.varDef(loc.Decl)
	if loc.ArrSize == nil {
		return Memory{Decl: def}
	}
	idxReg := c.lowerExpr(loc.ArrSize)
	idxLoc := RegLoc(idxReg)
	return Memory{Decl: def, Offset: &idxLoc}
}

// lowerAssign lowers an (possibly compound) assignment. Plain assignment
// becomes a direct Store (the redesign noted in inst.go); compound
// assignment reads its current value straight from the destination
// Memory as the arithmetic lhs operand, with no separate Load, exactly as
// original_source's Assign::visit does.
func (c *methodCtx) lowerAssign(a *ir.Assign) {
	dst := c.lowerLocationMemory(a.Dst)
	rhsReg := c.lowerExpr(a.Val)
	rhs := LocOperand(RegLoc(rhsReg))

	if a.Op == ir.OpAssign {
		c.emit(StoreInst{Dst: dst, Src: rhsReg})
		return
	}

	lhs := LocOperand(MemLoc(dst))
	bin := Binary{Dst: MemLoc(dst), LHS: lhs, RHS: rhs}
	switch a.Op {
	case ir.OpAddAssign:
		c.emit(IAddInst{bin})
	case ir.OpSubAssign:
		c.emit(ISubInst{bin})
	case ir.OpMulAssign:
		c.emit(IMulInst{bin})
	case ir.OpDivAssign:
		c.emit(IDivInst{bin})
	}
}

// lowerIfElse lowers an if/else statement (spec.md §4.5.3 rule,
// SPEC_FULL.md §4.5.4): the condition drives a CondJump to either the
// true block (falling straight into it) or the false block/join label;
// the true block ends with an unconditional jump to join.
func (c *methodCtx) lowerIfElse(s *ir.IfElse) {
	condReg := c.lowerExpr(s.Cond)
	then, join := c.labels.ifElseLabels()

	falseTarget := then
	c.emit(CondJumpInst{Cond: LocOperand(RegLoc(condReg)), TrueTarget: fmt.Sprintf("%s_true", then), FalseTarget: falseTarget})

	c.emit(LabelInst{Name: fmt.Sprintf("%s_true", then)})
	c.lowerBlock(s.TrueBlock)
	c.emit(JumpInst{Target: join})

	c.emit(LabelInst{Name: then})
	if s.FalseBlock != nil {
		c.lowerBlock(s.FalseBlock)
	}
	c.emit(LabelInst{Name: join})
}

// lowerFor lowers a bounded for-loop: initialize the index variable to
// Start, test it against End at the loop head, run the body, increment,
// and repeat — the begin/continue/end label triple is the same one
// Break/Continue resolve to via forLabelsFor. Break jumps to end;
// Continue jumps to the continue label guarding the increment, not to
// begin, so it still advances the index instead of re-testing the same
// iteration.
func (c *methodCtx) lowerFor(f *ir.For) {
	indexDef := c.addVar(f.IndexVar)
	c.emit(AllocaInst{Def: indexDef})
	indexMem := Memory{Decl: indexDef}

	startReg := c.lowerExpr(f.Start)
	c.emit(StoreInst{Dst: indexMem, Src: startReg})

	p := c.forLabelsFor(f)
	c.emit(LabelInst{Name: p.begin})

	endReg := c.lowerExpr(f.End)
	condReg := c.newReg()
	c.emit(CmpInst{Dst: condReg, Op: CmpLT, LHS: LocOperand(MemLoc(indexMem)), RHS: LocOperand(RegLoc(endReg))})

	bodyLabel := p.begin + "_body"
	c.emit(CondJumpInst{Cond: LocOperand(RegLoc(condReg)), TrueTarget: bodyLabel, FalseTarget: p.end})
	c.emit(LabelInst{Name: bodyLabel})

	c.lowerBlock(f.Block)

	// p.cont is the continue target: index += 1, reading and writing
	// indexMem directly as the arithmetic instruction's memory operand
	// (the same convention compound assignment uses), then back to the
	// bound re-check. Continue must land here rather than at p.begin, or
	// it would skip the increment and loop on the same index forever.
	c.emit(LabelInst{Name: p.cont})
	c.emit(IAddInst{Binary{Dst: MemLoc(indexMem), LHS: LocOperand(MemLoc(indexMem)), RHS: LitOperand(1)}})
	c.emit(JumpInst{Target: p.begin})
	c.emit(LabelInst{Name: p.end})
}
