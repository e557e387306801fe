package ast_test

import (
	"fmt"
	"testing"

	"github.com/carl-lang/carl/pkg/ast"
	"github.com/carl-lang/carl/pkg/compiler"
	"github.com/carl-lang/carl/pkg/config"
	"github.com/carl-lang/carl/pkg/lang"
)

var testFnCounter int

func compileAndCall(t *testing.T, fn *ast.UserFunction) compiler.Result {
	t.Helper()
	w := compiler.NewWorker()
	t.Cleanup(w.Dispose)

	testFnCounter++
	name := fmt.Sprintf("test_fn_%d", testFnCounter)
	compiled, err := fn.Compile(w, config.NewConfig(), name)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	t.Cleanup(compiled.Dispose)
	return compiled.Call()
}

func runHelper(t *testing.T, source string) compiler.Result {
	t.Helper()
	fn, err := buildHelper(t, source, lang.Int)
	if err != nil {
		t.Fatalf("build %q: %v", source, err)
	}
	return compileAndCall(t, fn)
}

func runTransition(t *testing.T, source string) compiler.Result {
	t.Helper()
	fn, err := buildTransition(t, source)
	if err != nil {
		t.Fatalf("build %q: %v", source, err)
	}
	return compileAndCall(t, fn)
}

func wantInt(t *testing.T, r compiler.Result, want int64) {
	t.Helper()
	if !r.Ok() {
		t.Fatalf("call failed: %v", r.Err)
	}
	if r.Value.Type != lang.Int || r.Value.Int != want {
		t.Fatalf("result = %s, want %d", r.Value, want)
	}
}

func wantCellState(t *testing.T, r compiler.Result, want int64) {
	t.Helper()
	if !r.Ok() {
		t.Fatalf("call failed: %v", r.Err)
	}
	if r.Value.Type != lang.CellState || r.Value.Int != want {
		t.Fatalf("result = %s, want #%d", r.Value, want)
	}
}

func wantTrap(t *testing.T, r compiler.Result, kind lang.ErrorKind) {
	t.Helper()
	if r.Ok() {
		t.Fatalf("call returned %s, want %v trap", r.Value, kind)
	}
	if r.Err.Kind != kind {
		t.Fatalf("trap kind = %v (%s), want %v", r.Err.Kind, r.Err, kind)
	}
}

func TestRunArithmetic(t *testing.T) {
	tests := []struct {
		source string
		want   int64
	}{
		{"return 1 + 2 * 3\n", 7},
		{"return 10 / 3\n", 3},
		{"return 10 % 3\n", 1},
		{"return 2 ** 10\n", 1024},
		{"return 2 ** 0\n", 1},
		{"return 1 << 10\n", 1024},
		{"return 1024 >> 3\n", 128},
		{"return 12 & 10\n", 8},
		{"return 12 | 3\n", 15},
		{"x = 7\nx *= 3\nreturn x\n", 21},
		{"x = 2\nx **= 5\nreturn x\n", 32},
		{"return 1 < 2\n", 1},
		{"x = 5\nreturn 1 < x <= 4\n", 0},
		{"x = 3\nreturn 1 < x <= 4\n", 1},
	}
	for _, tt := range tests {
		wantInt(t, runHelper(t, tt.source), tt.want)
	}
}

func TestRunOverflowTraps(t *testing.T) {
	wantTrap(t, runHelper(t, "return 9223372036854775807 + 1\n"), lang.IntegerOverflow)
	wantTrap(t, runHelper(t, "x = 9223372036854775807\nreturn x * 2\n"), lang.IntegerOverflow)
	wantTrap(t, runHelper(t, "return 2 ** 64\n"), lang.IntegerOverflow)
	wantTrap(t, runHelper(t, "x = 1\nreturn 2 ** (0 - x)\n"), lang.IntegerOverflow)
	wantTrap(t, runHelper(t, "x = 70\nreturn 1 << x\n"), lang.IntegerOverflow)
}

func TestRunDivisionTraps(t *testing.T) {
	wantTrap(t, runHelper(t, "return 1 / 0\n"), lang.DivideByZero)
	wantTrap(t, runHelper(t, "return 1 % 0\n"), lang.DivideByZero)
	// MIN_INT / -1 is the one signed division that overflows.
	minSource := "min = 0 - 9223372036854775807 - 1\nreturn min / (0 - 1)\n"
	wantTrap(t, runHelper(t, minSource), lang.IntegerOverflow)
}

func TestRunTrapReportsTheRightErrorPoint(t *testing.T) {
	// Two divisions; only the second traps. The decoded error must carry
	// the second division's span, on line 2.
	r := runHelper(t, "x = 10 / 2\nreturn x / 0\n")
	wantTrap(t, r, lang.DivideByZero)
	if r.Err.Span.Line != 2 {
		t.Fatalf("trap span line = %d, want 2", r.Err.Span.Line)
	}
}

func TestRunConditionalArms(t *testing.T) {
	wantCellState(t, runTransition(t, "if 1 {\nbecome #1\n}\nbecome #0\n"), 1)
	wantCellState(t, runTransition(t, "if 0 {\nbecome #1\n}\nbecome #0\n"), 0)
	// Condition values are not guaranteed single-bit; any non-zero value
	// selects the true arm.
	wantCellState(t, runTransition(t, "if 2 {\nbecome #1\n}\nbecome #0\n"), 1)

	elseSource := "x = 0\nif x {\nbecome #1\n} else {\nbecome #0\n}\n"
	wantCellState(t, runTransition(t, elseSource), 0)
}

func TestRunConditionalVariableWrites(t *testing.T) {
	source := `
x = 0
if 1 {
	x = 3
} else {
	x = 5
}
return x
`
	wantInt(t, runHelper(t, source), 3)
}

func TestRunFallthroughReturnsDefault(t *testing.T) {
	// A transition function that falls off the end becomes state #0.
	wantCellState(t, runTransition(t, "x = 1\n"), 0)
}

func TestRunNegationAndTag(t *testing.T) {
	wantInt(t, runHelper(t, "x = 0 - 5\nreturn 10 + x\n"), 5)
	wantCellState(t, runTransition(t, "become #(256 + 1)\n"), 1)
}

func TestRunSkipsUnreachableStatements(t *testing.T) {
	// Statements after the exit are checked at build time but never
	// emitted, so the trapping division cannot fire.
	wantCellState(t, runTransition(t, "become #3\nx = 1 / 0\n"), 3)
}

func TestRunComparisonChainEvaluatesAllOperands(t *testing.T) {
	// Chains fold their pairs flat, so a trapping operand fires even
	// when an earlier pair already decided the result.
	wantTrap(t, runHelper(t, "return 2 < 1 < 1 / 0\n"), lang.DivideByZero)
}
