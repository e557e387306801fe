package ast_test

import (
	"testing"

	"github.com/carl-lang/carl/pkg/ast"
	"github.com/carl-lang/carl/pkg/funcs"
	"github.com/carl-lang/carl/pkg/lang"
	"github.com/carl-lang/carl/pkg/lexer"
	"github.com/carl-lang/carl/pkg/parser"
	"github.com/carl-lang/carl/pkg/rule"
)

func parseSource(t *testing.T, source string) []*parser.Statement {
	t.Helper()
	toks, err := lexer.Tokenize(source, 0)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	stmts, err := parser.NewParser(toks).ParseBlock()
	if err != nil {
		t.Fatalf("ParseBlock: %v", err)
	}
	return stmts
}

func buildTransition(t *testing.T, source string) (*ast.UserFunction, error) {
	t.Helper()
	fn := ast.NewTransitionFunction(rule.Default(), funcs.NewRegistry())
	return fn, fn.BuildBody(parseSource(t, source))
}

func buildHelper(t *testing.T, source string, returnType lang.Type) (*ast.UserFunction, error) {
	t.Helper()
	fn := ast.NewHelperFunction(rule.Default(), funcs.NewRegistry(), returnType)
	return fn, fn.BuildBody(parseSource(t, source))
}

func wantBuildError(t *testing.T, err error, kind lang.ErrorKind) *lang.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("build succeeded, want %v error", kind)
	}
	lerr, ok := err.(*lang.Error)
	if !ok {
		t.Fatalf("error type = %T, want *lang.Error", err)
	}
	if lerr.Kind != kind {
		t.Fatalf("error kind = %v (%s), want %v", lerr.Kind, lerr, kind)
	}
	return lerr
}

func TestGetOrCreateVarFixesTypeOnFirstUse(t *testing.T) {
	fn := ast.NewHelperFunction(rule.Default(), funcs.NewRegistry(), lang.Int)
	if got := fn.GetOrCreateVar("x", lang.Int); got != lang.Int {
		t.Fatalf("first GetOrCreateVar = %v, want int", got)
	}
	// Later calls with any proposed type return the original type.
	if got := fn.GetOrCreateVar("x", lang.CellState); got != lang.Int {
		t.Fatalf("second GetOrCreateVar = %v, want int", got)
	}
	if got, ok := fn.TryGetVar("x"); !ok || got != lang.Int {
		t.Fatalf("TryGetVar = %v, %v, want int, true", got, ok)
	}
	if _, ok := fn.TryGetVar("y"); ok {
		t.Fatal("TryGetVar reported an unassigned variable")
	}
}

func TestExitKeywordLegality(t *testing.T) {
	_, err := buildHelper(t, "become #1\n", lang.CellState)
	wantBuildError(t, err, lang.BecomeInHelperFunction)

	_, err = buildTransition(t, "return 1\n")
	wantBuildError(t, err, lang.ReturnInTransitionFunction)

	if _, err := buildTransition(t, "become #1\n"); err != nil {
		t.Fatalf("become in transition function: %v", err)
	}
	if _, err := buildHelper(t, "return 1\n", lang.Int); err != nil {
		t.Fatalf("return in helper function: %v", err)
	}
}

func TestReturnValueTypeChecked(t *testing.T) {
	_, err := buildTransition(t, "become 1\n")
	wantBuildError(t, err, lang.TypeError)

	_, err = buildHelper(t, "return #1\n", lang.Int)
	wantBuildError(t, err, lang.TypeError)
}

func TestCompoundAssignmentReadsTheVariable(t *testing.T) {
	// x += 1 desugars to x = x + 1; the read of x must fail when x has
	// not been assigned yet.
	_, err := buildTransition(t, "x += 1\nbecome #0\n")
	wantBuildError(t, err, lang.UseOfUninitializedVariable)

	fn, err := buildTransition(t, "x = 1\nx **= 2\nbecome #0\n")
	if err != nil {
		t.Fatalf("compound assignment after init: %v", err)
	}
	if got, _ := fn.TryGetVar("x"); got != lang.Int {
		t.Fatalf("x type = %v, want int", got)
	}
}

func TestUninitializedVariableRead(t *testing.T) {
	_, err := buildTransition(t, "become #y\n")
	wantBuildError(t, err, lang.UseOfUninitializedVariable)
}

func TestAssignmentTargetMustBeIdentifier(t *testing.T) {
	_, err := buildTransition(t, "(x) = 1\nbecome #0\n")
	wantBuildError(t, err, lang.Expected)
}

func TestVariableTypeIsStable(t *testing.T) {
	_, err := buildTransition(t, "x = 1\nx = #1\nbecome #0\n")
	wantBuildError(t, err, lang.TypeError)
}

func TestConditionMustBeInt(t *testing.T) {
	_, err := buildTransition(t, "if #1 {\nbecome #1\n}\nbecome #0\n")
	wantBuildError(t, err, lang.TypeError)
}

func TestUnreachableStatementsWarnButStillBuild(t *testing.T) {
	fn, err := buildTransition(t, "become #1\nx = 1\n")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var found bool
	for _, w := range fn.Warnings() {
		if w.Name == "unreachable-code" {
			found = true
		}
	}
	if !found {
		t.Fatalf("warnings = %v, want unreachable-code", fn.Warnings())
	}
	// Unreachable statements are built and checked like any other, so the
	// assignment still binds the variable.
	if got, ok := fn.TryGetVar("x"); !ok || got != lang.Int {
		t.Fatal("unreachable assignment was not built")
	}
}

func TestUnreachableStatementsAreStillValidated(t *testing.T) {
	// An illegal exit keyword fails the build even when it can never run.
	_, err := buildTransition(t, "become #1\nreturn 0\n")
	wantBuildError(t, err, lang.ReturnInTransitionFunction)

	_, err = buildHelper(t, "return 1\nbecome #1\n", lang.Int)
	wantBuildError(t, err, lang.BecomeInHelperFunction)

	_, err = buildTransition(t, "become #1\nbecome 2\n")
	wantBuildError(t, err, lang.TypeError)
}

func TestUnimplementedConstructs(t *testing.T) {
	tests := []struct {
		source string
		kind   lang.ErrorKind
	}{
		{"x = [1, 2]\nbecome #0\n", lang.Unimplemented},  // vector literal
		{"x = a.b\nbecome #0\n", lang.Unimplemented},     // method call
		{"x = 1..5\nbecome #0\n", lang.Unimplemented},    // range expression
		{"x = (1, 2)\nbecome #0\n", lang.ExpectedGot},    // bare list
	}
	for _, tt := range tests {
		_, err := buildTransition(t, tt.source)
		wantBuildError(t, err, tt.kind)
	}
}

func TestComparisonOperandTypesMustMatch(t *testing.T) {
	_, err := buildTransition(t, "x = 1 < #1\nbecome #0\n")
	wantBuildError(t, err, lang.CmpError)
}

func TestErrorPointsAccumulateInOrder(t *testing.T) {
	fn, err := buildTransition(t, "x = 1 + 2 - 3\nbecome #0\n")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	points := fn.ErrorPoints()
	if len(points) != 2 {
		t.Fatalf("got %d error points, want 2", len(points))
	}
	for _, p := range points {
		if p.Kind != lang.IntegerOverflow {
			t.Errorf("error point kind = %v, want IntegerOverflow", p.Kind)
		}
	}
}

func TestDivisionRegistersBothErrorPoints(t *testing.T) {
	fn, err := buildHelper(t, "return 10 / 3\n", lang.Int)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	kinds := map[lang.ErrorKind]int{}
	for _, p := range fn.ErrorPoints() {
		kinds[p.Kind]++
	}
	if kinds[lang.IntegerOverflow] != 1 || kinds[lang.DivideByZero] != 1 {
		t.Fatalf("error point kinds = %v, want one overflow and one div-by-zero", kinds)
	}
}

func TestConstOverflowWarning(t *testing.T) {
	fn, err := buildHelper(t, "return 9223372036854775807 + 1\n", lang.Int)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var found bool
	for _, w := range fn.Warnings() {
		if w.Name == "const-overflow" {
			found = true
		}
	}
	if !found {
		t.Fatalf("warnings = %v, want const-overflow", fn.Warnings())
	}
}

func TestShiftRangeWarning(t *testing.T) {
	fn, err := buildHelper(t, "return 1 << 70\n", lang.Int)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var found bool
	for _, w := range fn.Warnings() {
		if w.Name == "shift-range" {
			found = true
		}
	}
	if !found {
		t.Fatalf("warnings = %v, want shift-range", fn.Warnings())
	}
}
