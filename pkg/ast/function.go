// Package ast builds the semantic tree for one rule function and drives its
// native compilation. Building validates everything up front, so a
// UserFunction that builds without error always compiles; the only failures
// left after that are the run-time traps recorded as error points.
package ast

import (
	"github.com/carl-lang/carl/pkg/compiler"
	"github.com/carl-lang/carl/pkg/lang"
	"github.com/carl-lang/carl/pkg/token"
)

// Args are the operand expressions of a node, as arena references into the
// owning UserFunction.
type Args []ExprRef

// Function is the behavior of one expression node kind: literal, variable
// read, operator. Implementations live in pkg/funcs; the builder looks them
// up through a Registry and stores one per expression.
type Function interface {
	// Name identifies the node in diagnostics and IR value names.
	Name() string

	// ReturnType type-checks the node against its operands and reports
	// the type it produces. Called once, while the expression is built; an
	// error here aborts the build.
	ReturnType(fn *UserFunction, span lang.Span, args Args) (lang.Type, error)

	// Compile emits the code computing the node's value. The cursor is at
	// a reachable block; Compile may branch (error checks) but must leave
	// the cursor at a block where the result value is valid.
	Compile(c *compiler.Compiler, fn *UserFunction, span lang.Span, args Args) (compiler.Value, error)

	// ConstEval evaluates the node at compile time. Nodes with no constant
	// value return a CannotEvalAsConst error; nodes that would trap return
	// the trap's error kind.
	ConstEval(fn *UserFunction, span lang.Span, args Args) (lang.ConstValue, error)
}

// Registry hands out the Function implementation for each syntactic form.
// The builder depends on this interface only; pkg/funcs provides the real
// one, which keeps the two packages decoupled from each other.
type Registry interface {
	IntLiteral(value int64) Function
	GetVar(name string) Function
	NegInt() Function
	IntToCellState() Function
	BinaryIntOp(op token.Type) (Function, error)
	Cmp(cmps []token.Type) (Function, error)
}
