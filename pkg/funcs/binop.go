package funcs

import (
	"fmt"
	"math"

	"github.com/carl-lang/carl/pkg/ast"
	"github.com/carl-lang/carl/pkg/compiler"
	"github.com/carl-lang/carl/pkg/lang"
	"github.com/carl-lang/carl/pkg/token"
	"tinygo.org/x/go-llvm"
)

// Compile-time evaluation works on int64, matching the default run-time
// integer width.
const constIntBits = 64

// binaryIntOp covers every two-operand integer operator. The arithmetic
// operators trap on overflow, division additionally on a zero denominator,
// and shifts on an out-of-range shift amount; the bitwise operators cannot
// fail.
type binaryIntOp struct {
	op        token.Type
	overflow  ast.ErrorPointRef
	divByZero ast.ErrorPointRef
}

func (b *binaryIntOp) Name() string { return b.op.String() }

func (b *binaryIntOp) ReturnType(fn *ast.UserFunction, span lang.Span, args ast.Args) (lang.Type, error) {
	if err := wantArgs(2, span, args, b.Name()); err != nil {
		return lang.Type{}, err
	}
	for _, arg := range args {
		if t := fn.Expr(arg).Type; t != lang.Int {
			return lang.Type{}, lang.Errorf(lang.TypeError, span,
				"operator %s needs %s operands, got %s", b.op, lang.Int, t)
		}
	}

	switch b.op {
	case token.Plus, token.Minus, token.Star, token.Pow:
		b.overflow = fn.AddErrorPoint(lang.NewError(lang.IntegerOverflow, span, ""))
	case token.Slash, token.Rem:
		b.overflow = fn.AddErrorPoint(lang.NewError(lang.IntegerOverflow, span, ""))
		b.divByZero = fn.AddErrorPoint(lang.NewError(lang.DivideByZero, span, ""))
	case token.Shl, token.Shr, token.Ushr:
		b.overflow = fn.AddErrorPoint(lang.NewError(lang.IntegerOverflow, span, "shift amount out of range"))
		if cv := fn.Expr(args[1]).Const; cv != nil && (cv.Int < 0 || cv.Int >= constIntBits) {
			fn.Warn("shift-range", span, fmt.Sprintf("shift amount %d is out of range", cv.Int))
		}
	}
	return lang.Int, nil
}

func (b *binaryIntOp) Compile(c *compiler.Compiler, fn *ast.UserFunction, span lang.Span, args ast.Args) (compiler.Value, error) {
	lhs, err := fn.CompileExpr(c, args[0])
	if err != nil {
		return compiler.Value{}, err
	}
	rhs, err := fn.CompileExpr(c, args[1])
	if err != nil {
		return compiler.Value{}, err
	}

	var result llvm.Value
	switch b.op {
	case token.Plus:
		result, err = c.BuildCheckedIntArithmetic(lhs.LLVM, rhs.LLVM, "sadd", b.overflow.Compile)
	case token.Minus:
		result, err = c.BuildCheckedIntArithmetic(lhs.LLVM, rhs.LLVM, "ssub", b.overflow.Compile)
	case token.Star:
		result, err = c.BuildCheckedIntArithmetic(lhs.LLVM, rhs.LLVM, "smul", b.overflow.Compile)

	case token.Slash:
		if err = c.BuildDivCheck(lhs.LLVM, rhs.LLVM, b.overflow.Compile, b.divByZero.Compile); err == nil {
			result = c.Builder().CreateSDiv(lhs.LLVM, rhs.LLVM, "quotient")
		}
	case token.Rem:
		if err = c.BuildDivCheck(lhs.LLVM, rhs.LLVM, b.overflow.Compile, b.divByZero.Compile); err == nil {
			result = c.Builder().CreateSRem(lhs.LLVM, rhs.LLVM, "remainder")
		}

	case token.Pow:
		result, err = b.compilePow(c, lhs.LLVM, rhs.LLVM)

	case token.Shl:
		if err = b.checkShiftAmount(c, rhs.LLVM); err == nil {
			result = c.Builder().CreateShl(lhs.LLVM, rhs.LLVM, "shifted")
		}
	case token.Shr:
		if err = b.checkShiftAmount(c, rhs.LLVM); err == nil {
			result = c.Builder().CreateAShr(lhs.LLVM, rhs.LLVM, "shifted")
		}
	case token.Ushr:
		if err = b.checkShiftAmount(c, rhs.LLVM); err == nil {
			result = c.Builder().CreateLShr(lhs.LLVM, rhs.LLVM, "shifted")
		}

	case token.And:
		result = c.Builder().CreateAnd(lhs.LLVM, rhs.LLVM, "anded")
	case token.Or:
		result = c.Builder().CreateOr(lhs.LLVM, rhs.LLVM, "ored")
	default:
		err = lang.Internal(span, "unknown binary operator "+b.op.String())
	}
	if err != nil {
		return compiler.Value{}, err
	}
	return compiler.Value{Type: lang.Int, LLVM: result}, nil
}

// checkShiftAmount traps when the shift amount does not fit the integer
// width. The unsigned comparison also catches negative amounts.
func (b *binaryIntOp) checkShiftAmount(c *compiler.Compiler, amount llvm.Value) error {
	bits := llvm.ConstInt(c.IntType(), uint64(c.Config().IntBits), false)
	tooBig := c.Builder().CreateICmp(llvm.IntUGE, amount, bits, "shiftTooBig")
	return c.BuildConditional(tooBig, b.overflow.Compile,
		func(*compiler.Compiler) error { return nil })
}

// compilePow emits exponentiation by repeated checked multiplication. The
// loop state lives in stack slots so no phi nodes are needed; a negative
// exponent traps before the loop starts.
func (b *binaryIntOp) compilePow(c *compiler.Compiler, base, exp llvm.Value) (llvm.Value, error) {
	bld := c.Builder()
	zero := llvm.ConstInt(c.IntType(), 0, false)
	one := llvm.ConstInt(c.IntType(), 1, false)

	isNegative := bld.CreateICmp(llvm.IntSLT, exp, zero, "expNegative")
	err := c.BuildConditional(isNegative, b.overflow.Compile,
		func(*compiler.Compiler) error { return nil })
	if err != nil {
		return llvm.Value{}, err
	}

	resultSlot := bld.CreateAlloca(c.IntType(), "powResult")
	expSlot := bld.CreateAlloca(c.IntType(), "powExp")
	bld.CreateStore(one, resultSlot)
	bld.CreateStore(exp, expSlot)

	loopBB := c.AppendBasicBlock("powLoop")
	bodyBB := c.AppendBasicBlock("powBody")
	endBB := c.AppendBasicBlock("powEnd")
	bld.CreateBr(loopBB)

	bld.SetInsertPointAtEnd(loopBB)
	remaining := bld.CreateLoad(c.IntType(), expSlot, "remaining")
	done := bld.CreateICmp(llvm.IntSLE, remaining, zero, "powDone")
	bld.CreateCondBr(done, endBB, bodyBB)

	bld.SetInsertPointAtEnd(bodyBB)
	acc := bld.CreateLoad(c.IntType(), resultSlot, "acc")
	acc, err = c.BuildCheckedIntArithmetic(acc, base, "smul", b.overflow.Compile)
	if err != nil {
		return llvm.Value{}, err
	}
	bld.CreateStore(acc, resultSlot)
	next := bld.CreateSub(remaining, one, "nextExp")
	bld.CreateStore(next, expSlot)
	bld.CreateBr(loopBB)

	bld.SetInsertPointAtEnd(endBB)
	return bld.CreateLoad(c.IntType(), resultSlot, "pow"), nil
}

func (b *binaryIntOp) ConstEval(fn *ast.UserFunction, span lang.Span, args ast.Args) (lang.ConstValue, error) {
	lv, err := fn.ConstEvalExpr(args[0])
	if err != nil {
		return lang.ConstValue{}, err
	}
	rv, err := fn.ConstEvalExpr(args[1])
	if err != nil {
		return lang.ConstValue{}, err
	}
	l, r := lv.Int, rv.Int

	overflow := func() (lang.ConstValue, error) {
		return lang.ConstValue{}, lang.NewError(lang.IntegerOverflow, span, "")
	}

	switch b.op {
	case token.Plus:
		if s, ok := addChecked(l, r); ok {
			return lang.NewIntConst(s), nil
		}
		return overflow()
	case token.Minus:
		if s, ok := subChecked(l, r); ok {
			return lang.NewIntConst(s), nil
		}
		return overflow()
	case token.Star:
		if p, ok := mulChecked(l, r); ok {
			return lang.NewIntConst(p), nil
		}
		return overflow()

	case token.Slash, token.Rem:
		if r == 0 {
			return lang.ConstValue{}, lang.NewError(lang.DivideByZero, span, "")
		}
		if l == math.MinInt64 && r == -1 {
			return overflow()
		}
		if b.op == token.Slash {
			return lang.NewIntConst(l / r), nil
		}
		return lang.NewIntConst(l % r), nil

	case token.Pow:
		if r < 0 {
			return overflow()
		}
		if p, ok := powChecked(l, r); ok {
			return lang.NewIntConst(p), nil
		}
		return overflow()

	case token.Shl, token.Shr, token.Ushr:
		if r < 0 || r >= constIntBits {
			return lang.ConstValue{}, lang.NewError(lang.IntegerOverflow, span, "shift amount out of range")
		}
		switch b.op {
		case token.Shl:
			return lang.NewIntConst(l << uint(r)), nil
		case token.Shr:
			return lang.NewIntConst(l >> uint(r)), nil
		default:
			return lang.NewIntConst(int64(uint64(l) >> uint(r))), nil
		}

	case token.And:
		return lang.NewIntConst(l & r), nil
	case token.Or:
		return lang.NewIntConst(l | r), nil
	}
	return lang.ConstValue{}, lang.Internal(span, "unknown binary operator "+b.op.String())
}
