// Package fixture provides a built-in Decaf program, transcribed by hand
// from original_source's quicksort example, for use by the dump CLI and
// by package-level tests that want a realistic, multi-method, multi-loop
// program rather than a synthetic one-liner.
package fixture

import "decafir/ast"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// no exported types; this package exposes a single builder function.

// ---------------------
// ----- Functions -----
// ---------------------

var zp = ast.Position{}

// Quicksort returns the parse tree for the classic quicksort-over-a-global-
// array program: a 100-element int array A, a partition/quicksort pair,
// and a main that fills A with callouts to libc's random(3), sorts it, and
// prints it before and after.
func Quicksort() *ast.Program {
	return &ast.Program{
		Pos: zp,
		FieldDecls: []*ast.FieldDecl{
			{Pos: zp, Type: ast.Int, Locs: []*ast.FieldDecl0{
				{Pos: zp, Name: "A", ArrSize: intPtr(100)},
				{Pos: zp, Name: "length"},
			}},
		},
		MethodDecls: []*ast.MethodDecl{
			partitionMethod(),
			quicksortMethod(),
			mainMethod(),
		},
	}
}

func intPtr(n int) *int { return &n }

func loc(name string) *ast.Location { return &ast.Location{Pos: zp, Name: name} }

func idx(name string, i *ast.Expr) *ast.Location {
	return &ast.Location{Pos: zp, Name: name, ArrSize: i}
}

func locExpr(l *ast.Location) *ast.Expr {
	return &ast.Expr{Pos: zp, Kind: ast.ExprLocation, Location: l}
}

func ident(name string) *ast.Expr { return locExpr(loc(name)) }

func arrAt(name string, i *ast.Expr) *ast.Expr { return locExpr(idx(name, i)) }

func intLit(n int) *ast.Expr {
	return &ast.Expr{Pos: zp, Kind: ast.ExprLiteral, LitKind: ast.LitInt, IntVal: n}
}

func bin(op ast.BinaryOp, lhs, rhs *ast.Expr) *ast.Expr {
	return &ast.Expr{Pos: zp, Kind: ast.ExprBinary, BinaryOp: op, BinaryLHS: lhs, BinaryRHS: rhs}
}

func call(name string, args ...*ast.Expr) *ast.Expr {
	return &ast.Expr{Pos: zp, Kind: ast.ExprMethodCall, Call: &ast.MethodCall{
		Pos: zp, Kind: ast.CallMethod, Name: name, Args: args,
	}}
}

func calloutExpr(name string, args ...*ast.CalloutArg) *ast.Expr {
	return &ast.Expr{Pos: zp, Kind: ast.ExprMethodCall, Call: &ast.MethodCall{
		Pos: zp, Kind: ast.CallCallout, CalloutName: name, CalloutArgs: args,
	}}
}

func calloutArg(e *ast.Expr) *ast.CalloutArg {
	return &ast.CalloutArg{Pos: zp, Kind: ast.CalloutArgExpr, Expr: e}
}

func calloutStr(s string) *ast.CalloutArg {
	return &ast.CalloutArg{Pos: zp, Kind: ast.CalloutArgString, String: s}
}

func calloutStmt(name string, args ...*ast.CalloutArg) *ast.Statement {
	return &ast.Statement{Pos: zp, Kind: ast.StmtMethodCall, Call: &ast.MethodCall{
		Pos: zp, Kind: ast.CallCallout, CalloutName: name, CalloutArgs: args,
	}}
}

func assign(dst string, op ast.AssignOp, val *ast.Expr) *ast.Statement {
	return &ast.Statement{Pos: zp, Kind: ast.StmtAssign, AssignDst: loc(dst), AssignOp: op, AssignVal: val}
}

func assignIdx(dst string, i, val *ast.Expr) *ast.Statement {
	return &ast.Statement{Pos: zp, Kind: ast.StmtAssign, AssignDst: idx(dst, i), AssignOp: ast.Assign, AssignVal: val}
}

func ret(v *ast.Expr) *ast.Statement { return &ast.Statement{Pos: zp, Kind: ast.StmtReturn, ReturnVal: v} }

func brk() *ast.Statement { return &ast.Statement{Pos: zp, Kind: ast.StmtBreak} }

func ifStmt(cond *ast.Expr, then, els *ast.Block) *ast.Statement {
	return &ast.Statement{Pos: zp, Kind: ast.StmtIfElse, Cond: cond, TrueBlock: then, FalseBlock: els}
}

func forStmt(index string, start, end *ast.Expr, body *ast.Block) *ast.Statement {
	return &ast.Statement{Pos: zp, Kind: ast.StmtLoop, LoopIndexVar: index, LoopStart: start, LoopEnd: end, LoopBlock: body}
}

func callStmt(name string, args ...*ast.Expr) *ast.Statement {
	return &ast.Statement{Pos: zp, Kind: ast.StmtMethodCall, Call: &ast.MethodCall{Pos: zp, Kind: ast.CallMethod, Name: name, Args: args}}
}

func block(vars []*ast.VarDecl, stmts ...*ast.Statement) *ast.Block {
	return &ast.Block{Pos: zp, VarDecls: vars, Statements: stmts}
}

func ints(names ...string) *ast.VarDecl { return &ast.VarDecl{Pos: zp, Type: ast.Int, Identifiers: names} }

func argInt(name string) *ast.MethodArg { return &ast.MethodArg{Pos: zp, Type: ast.Int, Name: name} }

// partitionMethod builds:
//
//	int partition(int p, int r) {
//	    int x, i, j, t;
//	    int z;
//	    x = A[p]; i = p - 1; j = r + 1;
//	    for z = 0, length * length {
//	        j = j - 1;
//	        for a = 0, length {
//	            if (A[j] <= x) { break; }
//	            j = j - 1;
//	        }
//	        for a = i + 1, length {
//	            if (A[a] >= x) { i = a; break; }
//	        }
//	        if (i < j) {
//	            t = A[i]; A[i] = A[j]; A[j] = t;
//	        } else {
//	            return j;
//	        }
//	    }
//	    return -1;
//	}
func partitionMethod() *ast.MethodDecl {
	innerSearchLeft := block(nil,
		ifStmt(bin(ast.OpLE, arrAt("A", ident("j")), ident("x")), block(nil, brk()), nil),
		assign("j", ast.Assign, bin(ast.OpSub, ident("j"), intLit(1))),
	)
	innerSearchRight := block(nil,
		ifStmt(bin(ast.OpGE, arrAt("A", ident("a")), ident("x")),
			block(nil, assign("i", ast.Assign, ident("a")), brk()), nil),
	)
	// t = A[i]; A[i] = A[j]; A[j] = t; — t is scalar, A is indexed.
	swap := block(nil,
		assign("t", ast.Assign, arrAt("A", ident("i"))),
		assignIdx("A", ident("i"), arrAt("A", ident("j"))),
		assignIdx("A", ident("j"), ident("t")),
	)
	swapOrReturn := ifStmt(
		bin(ast.OpLT, ident("i"), ident("j")),
		swap,
		block(nil, ret(ident("j"))),
	)

	loopBody := block(nil,
		assign("j", ast.Assign, bin(ast.OpSub, ident("j"), intLit(1))),
		forStmt("a", intLit(0), ident("length"), innerSearchLeft),
		forStmt("a", bin(ast.OpAdd, ident("i"), intLit(1)), ident("length"), innerSearchRight),
		swapOrReturn,
	)

	body := block(
		[]*ast.VarDecl{ints("x", "i", "j", "t"), ints("z")},
		assign("x", ast.Assign, arrAt("A", ident("p"))),
		assign("i", ast.Assign, bin(ast.OpSub, ident("p"), intLit(1))),
		assign("j", ast.Assign, bin(ast.OpAdd, ident("r"), intLit(1))),
		forStmt("z", intLit(0), bin(ast.OpMul, ident("length"), ident("length")), loopBody),
		ret(&ast.Expr{Pos: zp, Kind: ast.ExprUnary, UnaryOp: ast.NegInt, UnaryExpr: intLit(1)}),
	)

	return &ast.MethodDecl{
		Pos: zp, ReturnType: ast.Int, Name: "partition",
		Args:  []*ast.MethodArg{argInt("p"), argInt("r")},
		Block: body,
	}
}

// quicksortMethod builds:
//
//	void quicksort(int p, int r) {
//	    int q;
//	    if (p < r) {
//	        q = partition(p, r);
//	        quicksort(p, q);
//	        quicksort(q + 1, r);
//	    }
//	}
func quicksortMethod() *ast.MethodDecl {
	body := block(
		[]*ast.VarDecl{ints("q")},
		ifStmt(
			bin(ast.OpLT, ident("p"), ident("r")),
			block(nil,
				assign("q", ast.Assign, call("partition", ident("p"), ident("r"))),
				callStmt("quicksort", ident("p"), ident("q")),
				callStmt("quicksort", bin(ast.OpAdd, ident("q"), intLit(1)), ident("r")),
			),
			nil,
		),
	)
	return &ast.MethodDecl{
		Pos: zp, ReturnType: ast.Void, Name: "quicksort",
		Args:  []*ast.MethodArg{argInt("p"), argInt("r")},
		Block: body,
	}
}

// mainMethod builds the fill/print/sort/print driver, matching
// original_source's main() with length fixed at 10.
func mainMethod() *ast.MethodDecl {
	fillLoop := forStmt("i", intLit(0), ident("length"), block(nil,
		assign("temp", ast.Assign, calloutExpr("random")),
		assignIdx("A", ident("i"), ident("temp")),
	))
	printBeforeLoop := forStmt("i", intLit(0), ident("length"), block(nil,
		calloutStmt("printf", calloutStr("%d\n"), calloutArg(arrAt("A", ident("i")))),
	))
	printAfterLoop := forStmt("i", intLit(0), ident("length"), block(nil,
		calloutStmt("printf", calloutStr("%d\n"), calloutArg(arrAt("A", ident("i")))),
	))

	body := block(
		[]*ast.VarDecl{ints("temp")},
		assign("length", ast.Assign, intLit(10)),
		calloutStmt("printf", calloutStr("creating random array of %d elements\n"), calloutArg(ident("length"))),
		calloutStmt("srandom", calloutArg(intLit(17))),
		fillLoop,
		calloutStmt("printf", calloutStr("\nbefore sort:\n")),
		printBeforeLoop,
		callStmt("quicksort", intLit(0), bin(ast.OpSub, ident("length"), intLit(1))),
		calloutStmt("printf", calloutStr("\nafter sort\n")),
		printAfterLoop,
	)

	return &ast.MethodDecl{Pos: zp, ReturnType: ast.Void, Name: "main", Args: nil, Block: body}
}
