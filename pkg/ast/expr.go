package ast

import (
	"github.com/carl-lang/carl/pkg/compiler"
	"github.com/carl-lang/carl/pkg/lang"
)

// ExprRef indexes an expression in its UserFunction's arena.
type ExprRef int

// Expr is one built expression: the Function giving its behavior, its
// operand references, and the type it was checked to produce. Const holds
// the folded value when the expression is compile-time constant.
type Expr struct {
	Span  lang.Span
	Func  Function
	Args  Args
	Type  lang.Type
	Const *lang.ConstValue
}

// Expr returns the arena entry for a reference.
func (f *UserFunction) Expr(ref ExprRef) *Expr {
	return f.expressions[ref]
}

// newExpr type-checks a node against its operands, folds it if constant,
// and stores it in the arena.
func (f *UserFunction) newExpr(span lang.Span, fn Function, args Args) (ExprRef, error) {
	t, err := fn.ReturnType(f, span, args)
	if err != nil {
		return 0, err
	}
	e := &Expr{Span: span, Func: fn, Args: args, Type: t}

	if cv, cerr := fn.ConstEval(f, span, args); cerr == nil {
		e.Const = &cv
	} else if lerr, ok := cerr.(*lang.Error); ok {
		switch lerr.Kind {
		case lang.IntegerOverflow, lang.DivideByZero:
			// A constant expression that always traps is almost
			// certainly a mistake; say so at compile time.
			f.Warn("const-overflow", span, "this expression always fails: "+lerr.Error())
		}
	}

	ref := ExprRef(len(f.expressions))
	f.expressions = append(f.expressions, e)
	return ref, nil
}

// CompileExpr emits the code for an expression and returns its value. The
// value's type is checked against the type recorded at build time.
func (f *UserFunction) CompileExpr(c *compiler.Compiler, ref ExprRef) (compiler.Value, error) {
	e := f.Expr(ref)
	v, err := e.Func.Compile(c, f, e.Span, e.Args)
	if err != nil {
		return compiler.Value{}, err
	}
	if v.Type != e.Type {
		return compiler.Value{}, lang.Internal(e.Span,
			"compiled value type "+v.Type.String()+" does not match checked type "+e.Type.String())
	}
	return v, nil
}

// ConstEvalExpr evaluates an expression at compile time, using the value
// folded at build time when one exists.
func (f *UserFunction) ConstEvalExpr(ref ExprRef) (lang.ConstValue, error) {
	e := f.Expr(ref)
	if e.Const != nil {
		return *e.Const, nil
	}
	return e.Func.ConstEval(f, e.Span, e.Args)
}
