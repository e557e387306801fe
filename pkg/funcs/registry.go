// Package funcs implements the expression node behaviors the AST builder
// assembles functions from: literals, variable reads, the unary and binary
// integer operators, and chained comparisons. Each behavior knows how to
// type-check itself, emit its native code, and evaluate itself at compile
// time.
package funcs

import (
	"fmt"

	"github.com/carl-lang/carl/pkg/ast"
	"github.com/carl-lang/carl/pkg/compiler"
	"github.com/carl-lang/carl/pkg/lang"
	"github.com/carl-lang/carl/pkg/token"
	"tinygo.org/x/go-llvm"
)

type registry struct{}

// NewRegistry returns the standard node registry.
func NewRegistry() ast.Registry { return registry{} }

func (registry) IntLiteral(value int64) ast.Function { return &intLiteral{value: value} }
func (registry) GetVar(name string) ast.Function     { return &getVar{varName: name} }
func (registry) NegInt() ast.Function                { return &negInt{} }
func (registry) IntToCellState() ast.Function        { return &intToCellState{} }

func (registry) BinaryIntOp(op token.Type) (ast.Function, error) {
	if !token.IsBinaryIntOp(op) {
		return nil, lang.Internal(lang.NoSpan, fmt.Sprintf("%s is not a binary integer operator", op))
	}
	return &binaryIntOp{op: op}, nil
}

func (registry) Cmp(cmps []token.Type) (ast.Function, error) {
	for _, op := range cmps {
		if !token.IsComparison(op) {
			return nil, lang.Internal(lang.NoSpan, fmt.Sprintf("%s is not a comparison operator", op))
		}
	}
	return &cmp{cmps: cmps}, nil
}

// wantArgs enforces a node's operand count. The parser can only produce
// well-shaped nodes, so a mismatch is a compiler bug.
func wantArgs(n int, span lang.Span, args ast.Args, name string) error {
	if len(args) != n {
		return lang.Internal(span, fmt.Sprintf("%s expects %d operands, got %d", name, n, len(args)))
	}
	return nil
}

type intLiteral struct {
	value int64
}

func (*intLiteral) Name() string { return "const" }

func (l *intLiteral) ReturnType(fn *ast.UserFunction, span lang.Span, args ast.Args) (lang.Type, error) {
	if err := wantArgs(0, span, args, l.Name()); err != nil {
		return lang.Type{}, err
	}
	return lang.Int, nil
}

func (l *intLiteral) Compile(c *compiler.Compiler, fn *ast.UserFunction, span lang.Span, args ast.Args) (compiler.Value, error) {
	v := llvm.ConstInt(c.IntType(), uint64(l.value), true)
	return compiler.Value{Type: lang.Int, LLVM: v}, nil
}

func (l *intLiteral) ConstEval(fn *ast.UserFunction, span lang.Span, args ast.Args) (lang.ConstValue, error) {
	return lang.NewIntConst(l.value), nil
}

type getVar struct {
	varName string
}

func (*getVar) Name() string { return "getVar" }

func (g *getVar) ReturnType(fn *ast.UserFunction, span lang.Span, args ast.Args) (lang.Type, error) {
	if err := wantArgs(0, span, args, g.Name()); err != nil {
		return lang.Type{}, err
	}
	t, ok := fn.TryGetVar(g.varName)
	if !ok {
		return lang.Type{}, lang.Errorf(lang.UseOfUninitializedVariable, span,
			"variable %q is read before it is assigned", g.varName)
	}
	return t, nil
}

func (g *getVar) Compile(c *compiler.Compiler, fn *ast.UserFunction, span lang.Span, args ast.Args) (compiler.Value, error) {
	t, ok := fn.TryGetVar(g.varName)
	if !ok {
		return compiler.Value{}, lang.Internal(span, "variable "+g.varName+" vanished between build and compile")
	}
	slot, ok := c.VarSlot(g.varName)
	if !ok {
		return compiler.Value{}, lang.Internal(span, "no storage slot for variable "+g.varName)
	}
	v := c.Builder().CreateLoad(c.LLVMType(t), slot, g.varName)
	return compiler.Value{Type: t, LLVM: v}, nil
}

func (g *getVar) ConstEval(fn *ast.UserFunction, span lang.Span, args ast.Args) (lang.ConstValue, error) {
	return lang.ConstValue{}, lang.NewError(lang.CannotEvalAsConst, span, "variable read")
}
