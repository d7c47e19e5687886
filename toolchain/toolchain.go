// Package toolchain defines the external collaborators this module hands
// its LLIR listing off to: an assembler that turns target-specific
// assembly text into an object file, and a linker that turns an object
// file into an executable. Per spec.md §1, register allocation and
// target-specific code emission are explicitly out of this module's
// scope; toolchain only types the boundary those downstream stages sit
// behind and provides the default `as`/`ld` implementations
// original_source's assembler.rs/linker.rs shell out to.
package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Assembler turns target assembly text into an object file at outPath.
type Assembler interface {
	Assemble(ctx context.Context, asm string, outPath string) error
}

// Linker turns an object file into an executable at outPath, against the
// given extra libraries (passed as "-lNAME" arguments).
type Linker interface {
	Link(ctx context.Context, objPath string, outPath string, libs ...string) error
}

// execAssembler shells out to the system `as`, matching
// original_source/src/assembler.rs's assemble: the assembly text is piped
// to the child process's stdin rather than written to a temp file first.
type execAssembler struct{}

// execLinker shells out to the system `ld` with the fixed C runtime object
// and dynamic linker arguments original_source/src/linker.rs's link always
// passes, for linking against a freestanding libc.
type execLinker struct{}

// ---------------------
// ----- Functions -----
// ---------------------

// NewAssembler returns the default Assembler, backed by the system `as`.
func NewAssembler() Assembler { return execAssembler{} }

// NewLinker returns the default Linker, backed by the system `ld`.
func NewLinker() Linker { return execLinker{} }

func (execAssembler) Assemble(ctx context.Context, asm string, outPath string) error {
	cmd := exec.CommandContext(ctx, "as", "-o", outPath)
	cmd.Stdin = bytes.NewBufferString(asm)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("as: %w: %s", err, stderr.String())
	}
	return nil
}

// crtObjects are the C runtime startup/teardown objects every linked
// executable needs, exactly as original_source/src/linker.rs hard-codes
// them for a glibc x86-64 target.
var crtObjects = []string{
	"/usr/lib/x86_64-linux-gnu/crti.o",
	"/usr/lib/x86_64-linux-gnu/crtn.o",
	"/usr/lib/x86_64-linux-gnu/crt1.o",
}

const dynamicLinker = "/lib64/ld-linux-x86-64.so.2"

func (execLinker) Link(ctx context.Context, objPath string, outPath string, libs ...string) error {
	args := append([]string{}, crtObjects...)
	args = append(args, "-lc", objPath, "-dynamic-linker", dynamicLinker)
	for _, lib := range libs {
		args = append(args, "-l"+lib)
	}
	args = append(args, "-o", outPath)

	cmd := exec.CommandContext(ctx, "ld", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ld: %w: %s", err, stderr.String())
	}
	return nil
}
