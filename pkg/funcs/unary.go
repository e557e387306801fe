package funcs

import (
	"github.com/carl-lang/carl/pkg/ast"
	"github.com/carl-lang/carl/pkg/compiler"
	"github.com/carl-lang/carl/pkg/lang"
	"tinygo.org/x/go-llvm"
)

// negInt is unary minus. Negation is subtraction from zero, so it traps on
// exactly one input: the minimum integer.
type negInt struct {
	overflow ast.ErrorPointRef
}

func (*negInt) Name() string { return "neg" }

func (n *negInt) ReturnType(fn *ast.UserFunction, span lang.Span, args ast.Args) (lang.Type, error) {
	if err := wantArgs(1, span, args, n.Name()); err != nil {
		return lang.Type{}, err
	}
	if t := fn.Expr(args[0]).Type; t != lang.Int {
		return lang.Type{}, lang.Errorf(lang.TypeError, span, "cannot negate %s", t)
	}
	n.overflow = fn.AddErrorPoint(lang.NewError(lang.IntegerOverflow, span, ""))
	return lang.Int, nil
}

func (n *negInt) Compile(c *compiler.Compiler, fn *ast.UserFunction, span lang.Span, args ast.Args) (compiler.Value, error) {
	operand, err := fn.CompileExpr(c, args[0])
	if err != nil {
		return compiler.Value{}, err
	}
	zero := llvm.ConstInt(c.IntType(), 0, false)
	result, err := c.BuildCheckedIntArithmetic(zero, operand.LLVM, "ssub", n.overflow.Compile)
	if err != nil {
		return compiler.Value{}, err
	}
	return compiler.Value{Type: lang.Int, LLVM: result}, nil
}

func (n *negInt) ConstEval(fn *ast.UserFunction, span lang.Span, args ast.Args) (lang.ConstValue, error) {
	v, err := fn.ConstEvalExpr(args[0])
	if err != nil {
		return lang.ConstValue{}, err
	}
	r, ok := negChecked(v.Int)
	if !ok {
		return lang.ConstValue{}, lang.NewError(lang.IntegerOverflow, span, "")
	}
	return lang.NewIntConst(r), nil
}

// intToCellState is the `#expr` operator: it reinterprets the low bits of
// an integer as a cell-state id.
type intToCellState struct{}

func (*intToCellState) Name() string { return "toCell" }

func (t *intToCellState) ReturnType(fn *ast.UserFunction, span lang.Span, args ast.Args) (lang.Type, error) {
	if err := wantArgs(1, span, args, t.Name()); err != nil {
		return lang.Type{}, err
	}
	if at := fn.Expr(args[0]).Type; at != lang.Int {
		return lang.Type{}, lang.Errorf(lang.TypeError, span, "cannot convert %s to a cell state", at)
	}
	return lang.CellState, nil
}

func (t *intToCellState) Compile(c *compiler.Compiler, fn *ast.UserFunction, span lang.Span, args ast.Args) (compiler.Value, error) {
	operand, err := fn.CompileExpr(c, args[0])
	if err != nil {
		return compiler.Value{}, err
	}
	v := c.Builder().CreateTrunc(operand.LLVM, c.CellStateType(), "cellState")
	return compiler.Value{Type: lang.CellState, LLVM: v}, nil
}

func (t *intToCellState) ConstEval(fn *ast.UserFunction, span lang.Span, args ast.Args) (lang.ConstValue, error) {
	v, err := fn.ConstEvalExpr(args[0])
	if err != nil {
		return lang.ConstValue{}, err
	}
	return lang.NewCellStateConst(uint8(v.Int)), nil
}
