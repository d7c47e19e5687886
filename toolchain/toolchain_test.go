package toolchain

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// writeFakeTool installs an executable at dir/name that dumps its argv,
// one per line, to capturePath, then exits 0. Used to observe the exact
// arguments Assemble/Link pass to `as`/`ld` without needing those tools
// installed.
func writeFakeTool(t *testing.T, dir, name, capturePath string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tool script is POSIX-shell only")
	}
	script := "#!/bin/sh\nfor a in \"$@\"; do echo \"$a\"; done > " + capturePath + "\n"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func withFakePath(t *testing.T, dir string) {
	t.Helper()
	old := os.Getenv("PATH")
	os.Setenv("PATH", dir+string(os.PathListSeparator)+old)
	t.Cleanup(func() { os.Setenv("PATH", old) })
}

func TestAssembleInvokesAsWithOutputPath(t *testing.T) {
	dir := t.TempDir()
	capture := filepath.Join(dir, "as.args")
	writeFakeTool(t, dir, "as", capture)
	withFakePath(t, dir)

	out := filepath.Join(dir, "out.o")
	if err := NewAssembler().Assemble(context.Background(), "movl $0, %eax\n", out); err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	got, err := os.ReadFile(capture)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	args := strings.Fields(string(got))
	if len(args) != 2 || args[0] != "-o" || args[1] != out {
		t.Errorf("expected args [-o %s], got %v", out, args)
	}
}

func TestLinkUsesFixedCRTObjectsAndExtraLibs(t *testing.T) {
	dir := t.TempDir()
	capture := filepath.Join(dir, "ld.args")
	writeFakeTool(t, dir, "ld", capture)
	withFakePath(t, dir)

	obj := filepath.Join(dir, "a.o")
	out := filepath.Join(dir, "a.out")
	if err := NewLinker().Link(context.Background(), obj, out, "m"); err != nil {
		t.Fatalf("Link: %v", err)
	}

	got, err := os.ReadFile(capture)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	args := strings.Split(strings.TrimRight(string(got), "\n"), "\n")

	for _, want := range append(append([]string{}, crtObjects...), "-lc", obj, "-dynamic-linker", dynamicLinker, "-lm", "-o", out) {
		found := false
		for _, a := range args {
			if a == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected ld args to contain %q, got %v", want, args)
		}
	}
}

func TestAssembleReportsStderrOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "as")
	script := "#!/bin/sh\necho 'bad instruction' >&2\nexit 1\n"
	if runtime.GOOS == "windows" {
		t.Skip("fake tool script is POSIX-shell only")
	}
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	withFakePath(t, dir)

	err := NewAssembler().Assemble(context.Background(), "garbage", filepath.Join(dir, "out.o"))
	if err == nil || !strings.Contains(err.Error(), "bad instruction") {
		t.Fatalf("expected error containing stderr output, got %v", err)
	}
}
