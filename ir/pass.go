package ir

import (
	"decafir/ast"
	"decafir/diag"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// PreIRPass is a check run against the untyped parse tree, before any
// scope resolution or typing has happened.
type PreIRPass interface {
	Name() string
	Run(p *ast.Program) diag.Diagnostics
}

// PostIRPass is a check run against the already-resolved IR. The builtin
// pass list is empty today (per spec.md §4.4); this interface exists so
// future passes (e.g. dead-code or unreachable-return checks) have a
// ready-made extension point instead of being bolted onto CreateIR.
type PostIRPass interface {
	Name() string
	Run(r *Root) diag.Diagnostics
}

// PassManager runs a fixed list of passes of one kind and aggregates
// their diagnostics. It does not stop early: every pass always runs, so a
// program with both a missing main and a non-positive array size reports
// both in one CreateIR call.
type PassManager[P interface{ Run(T) diag.Diagnostics }, T any] struct {
	passes []P
}

// NewPassManager builds a PassManager over the given passes, run in
// order.
func NewPassManager[P interface{ Run(T) diag.Diagnostics }, T any](passes ...P) *PassManager[P, T] {
	return &PassManager[P, T]{passes: passes}
}

// RunAll runs every pass against target and returns the concatenation of
// all reported diagnostics, in pass order.
func (pm *PassManager[P, T]) RunAll(target T) diag.Diagnostics {
	var out diag.Diagnostics
	for _, p := range pm.passes {
		out = append(out, p.Run(target)...)
	}
	return out
}

// ---------------------------------------------
// ----- Pre-IR passes (spec.md §4.2, C4) -----
// ---------------------------------------------

// hasMainPass requires exactly one zero-argument method named "main".
type hasMainPass struct{}

func (hasMainPass) Name() string { return "HasMain" }

func (hasMainPass) Run(p *ast.Program) diag.Diagnostics {
	count := 0
	for _, m := range p.MethodDecls {
		if m.Name == "main" && len(m.Args) == 0 {
			count++
		}
	}
	if count == 1 {
		return nil
	}
	return diag.Diagnostics{diag.New(diag.NoMainMethod, p.Pos,
		"program must declare exactly one zero-argument method named main")}
}

// positiveArraySizePass requires every array field's declared size to be
// greater than zero.
type positiveArraySizePass struct{}

func (positiveArraySizePass) Name() string { return "PositiveArraySize" }

func (positiveArraySizePass) Run(p *ast.Program) diag.Diagnostics {
	var out diag.Diagnostics
	for _, fd := range p.FieldDecls {
		for _, loc := range fd.Locs {
			if loc.ArrSize != nil && *loc.ArrSize <= 0 {
				out = append(out, diag.New(diag.NonPositiveArraySize, loc.Pos,
					"array %q must have a size greater than 0, got %d", loc.Name, *loc.ArrSize))
			}
		}
	}
	return out
}

// PreIRPasses is the fixed pre-IR pass list run by CreateIR, in this
// order, matching the numbering in original_source's
// semantic_analyzer/passes/pre_ir_check.rs (pass 3, then pass 4).
func PreIRPasses() []PreIRPass {
	return []PreIRPass{hasMainPass{}, positiveArraySizePass{}}
}

// PostIRPasses is the fixed post-IR pass list run by CreateIR. It is
// empty today; spec.md §4.4 reserves the extension point without naming
// any pass to run yet.
func PostIRPasses() []PostIRPass {
	return nil
}

func runPreIR(p *ast.Program) diag.Diagnostics {
	pm := NewPassManager[PreIRPass, *ast.Program](PreIRPasses()...)
	return pm.RunAll(p)
}

func runPostIR(r *Root) diag.Diagnostics {
	pm := NewPassManager[PostIRPass, *Root](PostIRPasses()...)
	return pm.RunAll(r)
}
