package ir

import (
	"decafir/ast"
	"decafir/diag"
)

// Helpers for building ast.Program fixtures tersely. Every node gets the
// same position, pos0; no test in this package asserts on exact positions.

var pos0 = ast.Position{Line: 1, Col: 1}

func intLit(n int) *ast.Expr {
	return &ast.Expr{Pos: pos0, Kind: ast.ExprLiteral, LitKind: ast.LitInt, IntVal: n}
}

func boolLit(b bool) *ast.Expr {
	return &ast.Expr{Pos: pos0, Kind: ast.ExprLiteral, LitKind: ast.LitBool, BoolVal: b}
}

func charLit(n int) *ast.Expr {
	return &ast.Expr{Pos: pos0, Kind: ast.ExprLiteral, LitKind: ast.LitChar, IntVal: n}
}

func idExpr(name string) *ast.Expr {
	return &ast.Expr{Pos: pos0, Kind: ast.ExprLocation, Location: &ast.Location{Pos: pos0, Name: name}}
}

func idxExpr(name string, idx *ast.Expr) *ast.Expr {
	return &ast.Expr{Pos: pos0, Kind: ast.ExprLocation, Location: &ast.Location{Pos: pos0, Name: name, ArrSize: idx}}
}

func binExpr(op ast.BinaryOp, lhs, rhs *ast.Expr) *ast.Expr {
	return &ast.Expr{Pos: pos0, Kind: ast.ExprBinary, BinaryOp: op, BinaryLHS: lhs, BinaryRHS: rhs}
}

func unaryExpr(op ast.UnaryOp, e *ast.Expr) *ast.Expr {
	return &ast.Expr{Pos: pos0, Kind: ast.ExprUnary, UnaryOp: op, UnaryExpr: e}
}

func callExpr(name string, args ...*ast.Expr) *ast.Expr {
	return &ast.Expr{Pos: pos0, Kind: ast.ExprMethodCall, Call: &ast.MethodCall{Pos: pos0, Kind: ast.CallMethod, Name: name, Args: args}}
}

func assignStmt(name string, op ast.AssignOp, val *ast.Expr) *ast.Statement {
	return &ast.Statement{Pos: pos0, Kind: ast.StmtAssign, AssignDst: &ast.Location{Pos: pos0, Name: name}, AssignOp: op, AssignVal: val}
}

func callStmt(name string, args ...*ast.Expr) *ast.Statement {
	return &ast.Statement{Pos: pos0, Kind: ast.StmtMethodCall, Call: &ast.MethodCall{Pos: pos0, Kind: ast.CallMethod, Name: name, Args: args}}
}

func returnStmt(val *ast.Expr) *ast.Statement {
	return &ast.Statement{Pos: pos0, Kind: ast.StmtReturn, ReturnVal: val}
}

func ifStmt(cond *ast.Expr, trueBlock, falseBlock *ast.Block) *ast.Statement {
	return &ast.Statement{Pos: pos0, Kind: ast.StmtIfElse, Cond: cond, TrueBlock: trueBlock, FalseBlock: falseBlock}
}

func forStmt(index string, start, end *ast.Expr, body *ast.Block) *ast.Statement {
	return &ast.Statement{Pos: pos0, Kind: ast.StmtLoop, LoopIndexVar: index, LoopStart: start, LoopEnd: end, LoopBlock: body}
}

func breakStmt() *ast.Statement { return &ast.Statement{Pos: pos0, Kind: ast.StmtBreak} }

func continueStmt() *ast.Statement { return &ast.Statement{Pos: pos0, Kind: ast.StmtContinue} }

func blockStmt(b *ast.Block) *ast.Statement {
	return &ast.Statement{Pos: pos0, Kind: ast.StmtBlock, Body: b}
}

func varDecl(typ ast.Type, names ...string) *ast.VarDecl {
	return &ast.VarDecl{Pos: pos0, Type: typ, Identifiers: names}
}

func block(vars []*ast.VarDecl, stmts ...*ast.Statement) *ast.Block {
	return &ast.Block{Pos: pos0, VarDecls: vars, Statements: stmts}
}

func arg(typ ast.Type, name string) *ast.MethodArg {
	return &ast.MethodArg{Pos: pos0, Type: typ, Name: name}
}

func method(name string, ret ast.Type, args []*ast.MethodArg, b *ast.Block) *ast.MethodDecl {
	return &ast.MethodDecl{Pos: pos0, ReturnType: ret, Name: name, Args: args, Block: b}
}

func mainMethod(b *ast.Block) *ast.MethodDecl {
	return method("main", ast.Void, nil, b)
}

func field(typ ast.Type, name string, arrSize *int) *ast.FieldDecl {
	return &ast.FieldDecl{Pos: pos0, Type: typ, Locs: []*ast.FieldDecl0{{Pos: pos0, Name: name, ArrSize: arrSize}}}
}

func intPtr(n int) *int { return &n }

func program(fields []*ast.FieldDecl, methods ...*ast.MethodDecl) *ast.Program {
	return &ast.Program{Pos: pos0, FieldDecls: fields, MethodDecls: methods}
}

// hasDiag reports whether ds contains at least one diagnostic of kind k.
func hasDiag(ds diag.Diagnostics, k diag.Kind) bool {
	for _, d := range ds {
		if d.Kind == k {
			return true
		}
	}
	return false
}
