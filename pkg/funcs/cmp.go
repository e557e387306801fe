package funcs

import (
	"github.com/carl-lang/carl/pkg/ast"
	"github.com/carl-lang/carl/pkg/compiler"
	"github.com/carl-lang/carl/pkg/lang"
	"github.com/carl-lang/carl/pkg/token"
	"tinygo.org/x/go-llvm"
)

// cmp is a chained comparison: n operands joined by n-1 operators, true
// only when every pairwise comparison holds. Operands are pure, so the
// pairs are evaluated unconditionally and the results folded with `and`.
type cmp struct {
	cmps []token.Type
}

func (*cmp) Name() string { return "cmp" }

func (m *cmp) ReturnType(fn *ast.UserFunction, span lang.Span, args ast.Args) (lang.Type, error) {
	if err := wantArgs(len(m.cmps)+1, span, args, m.Name()); err != nil {
		return lang.Type{}, err
	}
	t := fn.Expr(args[0]).Type
	if t != lang.Int && t != lang.CellState {
		return lang.Type{}, lang.Errorf(lang.CmpError, span, "cannot compare values of type %s", t)
	}
	for _, arg := range args[1:] {
		if at := fn.Expr(arg).Type; at != t {
			return lang.Type{}, lang.Errorf(lang.CmpError, span,
				"cannot compare %s with %s", t, at)
		}
	}
	return lang.Int, nil
}

// predicate maps a comparison operator to its LLVM predicate. Cell states
// are unsigned; integers are signed.
func predicate(op token.Type, operands lang.Type) llvm.IntPredicate {
	signed := operands.Kind == lang.IntKind
	switch op {
	case token.EqEq:
		return llvm.IntEQ
	case token.Neq:
		return llvm.IntNE
	case token.Lt:
		if signed {
			return llvm.IntSLT
		}
		return llvm.IntULT
	case token.Gt:
		if signed {
			return llvm.IntSGT
		}
		return llvm.IntUGT
	case token.Lte:
		if signed {
			return llvm.IntSLE
		}
		return llvm.IntULE
	default:
		if signed {
			return llvm.IntSGE
		}
		return llvm.IntUGE
	}
}

func (m *cmp) Compile(c *compiler.Compiler, fn *ast.UserFunction, span lang.Span, args ast.Args) (compiler.Value, error) {
	operands := make([]compiler.Value, len(args))
	for i, arg := range args {
		v, err := fn.CompileExpr(c, arg)
		if err != nil {
			return compiler.Value{}, err
		}
		operands[i] = v
	}

	bld := c.Builder()
	var acc llvm.Value
	for i, op := range m.cmps {
		pred := predicate(op, operands[i].Type)
		pair := bld.CreateICmp(pred, operands[i].LLVM, operands[i+1].LLVM, "cmpPair")
		if i == 0 {
			acc = pair
		} else {
			acc = bld.CreateAnd(acc, pair, "cmpChain")
		}
	}
	wide := bld.CreateZExt(acc, c.IntType(), "cmpResult")
	return compiler.Value{Type: lang.Int, LLVM: wide}, nil
}

func compareConst(op token.Type, l, r int64) bool {
	switch op {
	case token.EqEq:
		return l == r
	case token.Neq:
		return l != r
	case token.Lt:
		return l < r
	case token.Gt:
		return l > r
	case token.Lte:
		return l <= r
	default:
		return l >= r
	}
}

func (m *cmp) ConstEval(fn *ast.UserFunction, span lang.Span, args ast.Args) (lang.ConstValue, error) {
	values := make([]int64, len(args))
	for i, arg := range args {
		v, err := fn.ConstEvalExpr(arg)
		if err != nil {
			return lang.ConstValue{}, err
		}
		values[i] = v.Int
	}
	for i, op := range m.cmps {
		if !compareConst(op, values[i], values[i+1]) {
			return lang.NewIntConst(0), nil
		}
	}
	return lang.NewIntConst(1), nil
}
