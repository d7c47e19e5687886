package lir

import (
	"decafir/ast"
	"decafir/ir"
)

// lowerExpr lowers an expression to a fresh register holding its value,
// per spec.md §4.5.3 rule 3: an expression's result Location is always a
// Register, never Memory — a Location read (case ir.ExprLocation) that
// resolves to memory is immediately Loaded into a register here, instead
// of ever handing a Memory Location back to the caller.
func (c *methodCtx) lowerExpr(e *ir.Expr) Register {
	switch e.Kind {
	case ir.ExprLocation:
		return c.lowerLocationRead(e.Location)
	case ir.ExprCall:
		return c.lowerCall(e.Call, true)
	case ir.ExprLiteral:
		return c.lowerLiteral(e.Literal)
	case ir.ExprUnary:
		return c.lowerUnary(e.Unary)
	case ir.ExprBinary:
		return c.lowerBinary(e.Binary)
	default:
		panic("lir: unreachable expression kind")
	}
}

// lowerLocationRead reads a Location's current value into a fresh
// register, matching original_source's (malformed but clearly-intended)
// Location::visit: resolve the Memory reference, then Load it.
func (c *methodCtx) lowerLocationRead(loc *ir.Location) Register {
	mem := c.lowerLocationMemory(loc)
	dst := c.newReg()
	c.emit(LoadInst{Dst: dst, Src: mem})
	return dst
}

// lowerLiteral materializes a constant into a fresh register. There is no
// dedicated Const instruction in this package's LLIR (spec.md §4.5.1's
// instruction list has no room reserved for one); reusing IAdd against a
// literal 0 keeps the instruction set exactly as named there.
func (c *methodCtx) lowerLiteral(l *ir.Literal) Register {
	dst := c.newReg()
	v := int32(l.IntVal)
	if l.IsBool {
		if l.BoolVal {
			v = 1
		} else {
			v = 0
		}
	}
	c.emit(IAddInst{Binary{Dst: RegLoc(dst), LHS: LitOperand(0), RHS: LitOperand(v)}})
	return dst
}

func (c *methodCtx) lowerUnary(u *ir.Unary) Register {
	src := c.lowerExpr(u.Expr)
	dst := c.newReg()
	if u.Op == ast.NegInt {
		c.emit(NegInst{Dst: dst, Src: LocOperand(RegLoc(src))})
	} else {
		c.emit(NotInst{Dst: dst, Src: LocOperand(RegLoc(src))})
	}
	return dst
}

// lowerBinary lowers every binary operator class (arithmetic, relational,
// equality, logical) into the matching LLIR instruction.
func (c *methodCtx) lowerBinary(b *ir.Binary) Register {
	lhs := LocOperand(RegLoc(c.lowerExpr(b.LHS)))
	rhs := LocOperand(RegLoc(c.lowerExpr(b.RHS)))
	dst := c.newReg()

	switch b.Op {
	case ast.OpAdd:
		c.emit(IAddInst{Binary{Dst: RegLoc(dst), LHS: lhs, RHS: rhs}})
	case ast.OpSub:
		c.emit(ISubInst{Binary{Dst: RegLoc(dst), LHS: lhs, RHS: rhs}})
	case ast.OpMul:
		c.emit(IMulInst{Binary{Dst: RegLoc(dst), LHS: lhs, RHS: rhs}})
	case ast.OpDiv:
		c.emit(IDivInst{Binary{Dst: RegLoc(dst), LHS: lhs, RHS: rhs}})
	case ast.OpMod:
		c.emit(IModInst{Binary{Dst: RegLoc(dst), LHS: lhs, RHS: rhs}})
	case ast.OpGT:
		c.emit(CmpInst{Dst: dst, Op: CmpGT, LHS: lhs, RHS: rhs})
	case ast.OpGE:
		c.emit(CmpInst{Dst: dst, Op: CmpGE, LHS: lhs, RHS: rhs})
	case ast.OpLT:
		c.emit(CmpInst{Dst: dst, Op: CmpLT, LHS: lhs, RHS: rhs})
	case ast.OpLE:
		c.emit(CmpInst{Dst: dst, Op: CmpLE, LHS: lhs, RHS: rhs})
	case ast.OpEqEq:
		c.emit(CmpInst{Dst: dst, Op: CmpEQ, LHS: lhs, RHS: rhs})
	case ast.OpNE:
		c.emit(CmpInst{Dst: dst, Op: CmpNE, LHS: lhs, RHS: rhs})
	case ast.OpOr:
		c.emit(LogicalInst{Dst: dst, Op: LogicalOr, LHS: lhs, RHS: rhs})
	case ast.OpAnd:
		c.emit(LogicalInst{Dst: dst, Op: LogicalAnd, LHS: lhs, RHS: rhs})
	}
	return dst
}

// lowerCall lowers a method call or callout. wantsResult is false when the
// call appears in statement position and its value (if any) is discarded.
func (c *methodCtx) lowerCall(call *ir.Call, wantsResult bool) Register {
	var args []Operand
	if call.Kind == ir.CallMethod {
		for _, a := range call.Args {
			args = append(args, LocOperand(RegLoc(c.lowerExpr(a))))
		}
	} else {
		for _, a := range call.CalloutArgs {
			if a.Kind == ast.CalloutArgExpr {
				args = append(args, LocOperand(RegLoc(c.lowerExpr(a.Expr))))
			} else {
				args = append(args, StrOperand(a.String))
			}
		}
	}

	isCallout := call.Kind == ir.CallCallout
	name := call.CalloutName
	if !isCallout {
		name = call.Method.Name
	}

	var dst *Register
	if wantsResult {
		r := c.newReg()
		dst = &r
	}
	c.emit(CallInst{Dst: dst, Name: name, Args: args, IsCallout: isCallout})
	if dst == nil {
		return Register{}
	}
	return *dst
}

func (c *methodCtx) lowerReturn(r *ir.Return) {
	if r.Val == nil {
		c.emit(ReturnInst{})
		return
	}
	reg := c.lowerExpr(r.Val)
	op := LocOperand(RegLoc(reg))
	c.emit(ReturnInst{Val: &op})
}
