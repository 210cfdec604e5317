package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kaleido-lang/kaleido/internal/compiler/codegen"
)

func TestCompileSourceWholeFile(t *testing.T) {
	src := `
# Classic doubly recursive fibonacci.
def fib(x)
  if x < 3 then
    1
  else
    fib(x-1) + fib(x-2);

fib(10);
`
	sess := NewSession()
	if err := sess.CompileSource(src); err != nil {
		t.Fatal(err)
	}

	ir := sess.IR()
	if !strings.Contains(ir, "@fib") {
		t.Error("compiled module is missing fib")
	}
	if !strings.Contains(ir, "__anon_expr") {
		t.Error("batch compiles must keep the anonymous wrapper for the backend to run")
	}
}

func TestCompileSourceStopsAtFirstError(t *testing.T) {
	sess := NewSession()
	err := sess.CompileSource("def ok(x) x; def bad(x) y; def never(x) x;")
	if !errors.Is(err, codegen.ErrUnknownVariable) {
		t.Fatalf("expected ErrUnknownVariable, got %v", err)
	}

	ir := sess.IR()
	if !strings.Contains(ir, "@ok") {
		t.Error("units before the failure must stay in the module")
	}
	if strings.Contains(ir, "@never") {
		t.Error("units after the failure must not be lowered")
	}
}

func TestEvalLinePersistsDefinitions(t *testing.T) {
	sess := NewSession()

	if _, err := sess.EvalLine("def double(x) x * 2;"); err != nil {
		t.Fatal(err)
	}
	out, err := sess.EvalLine("double(21);")
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || !strings.Contains(out[0], "call") {
		t.Errorf("expected rendered IR with a call, got %v", out)
	}
}

func TestEvalLineDropsAnonymousWrappers(t *testing.T) {
	sess := NewSession()
	out, err := sess.EvalLine("1 + 2;")
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || !strings.Contains(out[0], "__anon_expr") {
		t.Fatalf("expected the wrapper's IR to be returned, got %v", out)
	}
	if strings.Contains(sess.IR(), "__anon_expr") {
		t.Error("wrapper must be removed from the module after evaluation")
	}
}

func TestEvalLineOperatorDefinitionsCarryForward(t *testing.T) {
	sess := NewSession()

	if _, err := sess.EvalLine("def binary| 5 (a b) if a then 1 else if b then 1 else 0;"); err != nil {
		t.Fatal(err)
	}
	if _, err := sess.EvalLine("1 | 0;"); err != nil {
		t.Fatalf("operator defined on an earlier line must parse later: %v", err)
	}
}

// A bad line must not poison the session: earlier definitions stay callable
// and new input keeps working.
func TestEvalLineRecoversFromErrors(t *testing.T) {
	sess := NewSession()
	if _, err := sess.EvalLine("def inc(x) x + 1;"); err != nil {
		t.Fatal(err)
	}

	if _, err := sess.EvalLine("inc(1, 2);"); !errors.Is(err, codegen.ErrArityMismatch) {
		t.Fatalf("expected ErrArityMismatch, got %v", err)
	}
	if _, err := sess.EvalLine("def inc(x) undefined;"); !errors.Is(err, codegen.ErrUnknownVariable) {
		t.Fatalf("expected ErrUnknownVariable, got %v", err)
	}

	// The original inc survived the failed redefinition.
	if _, err := sess.EvalLine("inc(41);"); err != nil {
		t.Fatalf("session did not recover: %v", err)
	}
	if !strings.Contains(sess.IR(), "@inc") {
		t.Error("inc missing from the module after recovery")
	}
}

func TestCompileAndWrite(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "avg.ks")
	src := "def avg(a b) (a + b) / 2;\n"
	if err := os.WriteFile(srcPath, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(dir, "out")
	outFile, err := CompileAndWrite(srcPath, outDir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(outFile) != "avg.ll" {
		t.Errorf("expected avg.ll, got %s", outFile)
	}

	b, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "define double @avg(double %a, double %b)") {
		t.Errorf("output is not the expected IR:\n%s", b)
	}
}

func TestCompileAndWriteRejectsWrongExtension(t *testing.T) {
	if _, err := CompileAndWrite("program.txt", t.TempDir()); err == nil {
		t.Error("expected an extension error")
	}
}

func TestInspectAST(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "show.ks")
	if err := os.WriteFile(srcPath, []byte("def f(a b) a*b+2;"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := InspectAST(srcPath)
	if err != nil {
		t.Fatal(err)
	}
	want := "def f(a b) ((a * b) + 2)\n"
	if out != want {
		t.Errorf("InspectAST:\nexpected %q\ngot      %q", want, out)
	}
}
