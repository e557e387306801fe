package funcs_test

import (
	"testing"

	"github.com/carl-lang/carl/pkg/ast"
	"github.com/carl-lang/carl/pkg/funcs"
	"github.com/carl-lang/carl/pkg/lang"
	"github.com/carl-lang/carl/pkg/lexer"
	"github.com/carl-lang/carl/pkg/parser"
	"github.com/carl-lang/carl/pkg/rule"
	"github.com/carl-lang/carl/pkg/token"
)

// constEval builds one expression and evaluates it at compile time.
func constEval(t *testing.T, exprSource string) (lang.ConstValue, error) {
	t.Helper()
	toks, err := lexer.Tokenize("x = "+exprSource+"\n", 0)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	stmts, err := parser.NewParser(toks).ParseBlock()
	if err != nil {
		t.Fatalf("ParseBlock: %v", err)
	}
	d := stmts[0].Data.(parser.SetVarStmt)

	fn := ast.NewHelperFunction(rule.Default(), funcs.NewRegistry(), lang.Int)
	ref, err := fn.BuildExpression(d.ValueExpr)
	if err != nil {
		t.Fatalf("BuildExpression(%q): %v", exprSource, err)
	}
	return fn.ConstEvalExpr(ref)
}

func TestConstEvalValues(t *testing.T) {
	tests := []struct {
		source string
		want   lang.ConstValue
	}{
		{"1 + 2 * 3", lang.NewIntConst(7)},
		{"10 / 3", lang.NewIntConst(3)},
		{"10 % 3", lang.NewIntConst(1)},
		{"2 ** 10", lang.NewIntConst(1024)},
		{"0 - 3", lang.NewIntConst(-3)},
		{"-(3 + 4)", lang.NewIntConst(-7)},
		{"1 << 10", lang.NewIntConst(1024)},
		{"12 & 10", lang.NewIntConst(8)},
		{"1 < 2", lang.NewIntConst(1)},
		{"1 < 2 < 2", lang.NewIntConst(0)},
		{"#5", lang.NewCellStateConst(5)},
		{"#1 == #1", lang.NewIntConst(1)},
	}
	for _, tt := range tests {
		got, err := constEval(t, tt.source)
		if err != nil {
			t.Errorf("constEval(%q): %v", tt.source, err)
			continue
		}
		if got.Type != tt.want.Type || got.Int != tt.want.Int {
			t.Errorf("constEval(%q) = %s, want %s", tt.source, got, tt.want)
		}
	}
}

func TestConstEvalErrors(t *testing.T) {
	tests := []struct {
		source string
		kind   lang.ErrorKind
	}{
		{"1 / 0", lang.DivideByZero},
		{"9223372036854775807 + 1", lang.IntegerOverflow},
		{"2 ** 64", lang.IntegerOverflow},
		{"1 << 64", lang.IntegerOverflow},
	}
	for _, tt := range tests {
		_, err := constEval(t, tt.source)
		if err == nil {
			t.Errorf("constEval(%q) succeeded, want %v", tt.source, tt.kind)
			continue
		}
		if lerr := err.(*lang.Error); lerr.Kind != tt.kind {
			t.Errorf("constEval(%q) error kind = %v, want %v", tt.source, lerr.Kind, tt.kind)
		}
	}
}

func TestVariableReadIsNotConst(t *testing.T) {
	fn := ast.NewHelperFunction(rule.Default(), funcs.NewRegistry(), lang.Int)
	fn.GetOrCreateVar("x", lang.Int)

	toks, _ := lexer.Tokenize("y = x + 1\n", 0)
	stmts, err := parser.NewParser(toks).ParseBlock()
	if err != nil {
		t.Fatal(err)
	}
	ref, err := fn.BuildExpression(stmts[0].Data.(parser.SetVarStmt).ValueExpr)
	if err != nil {
		t.Fatalf("BuildExpression: %v", err)
	}
	_, err = fn.ConstEvalExpr(ref)
	if err == nil {
		t.Fatal("variable read evaluated as constant")
	}
	if lerr := err.(*lang.Error); lerr.Kind != lang.CannotEvalAsConst {
		t.Fatalf("error kind = %v, want CannotEvalAsConst", lerr.Kind)
	}
}

func TestRegistryRejectsForeignOperators(t *testing.T) {
	reg := funcs.NewRegistry()
	if _, err := reg.BinaryIntOp(token.Comma); err == nil {
		t.Error("BinaryIntOp accepted a comma")
	}
	if _, err := reg.BinaryIntOp(token.EqEq); err == nil {
		t.Error("BinaryIntOp accepted a comparison operator")
	}
	if _, err := reg.Cmp([]token.Type{token.Plus}); err == nil {
		t.Error("Cmp accepted an arithmetic operator")
	}
	if _, err := reg.BinaryIntOp(token.Pow); err != nil {
		t.Errorf("BinaryIntOp rejected **: %v", err)
	}
}
