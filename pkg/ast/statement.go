package ast

import (
	"github.com/carl-lang/carl/pkg/compiler"
	"github.com/carl-lang/carl/pkg/lang"
)

// StatementRef indexes a statement in its UserFunction's arena.
type StatementRef int

// StatementBlock is an ordered run of statements compiled into one scope.
type StatementBlock []StatementRef

// StatementKind defines the kind of a built statement.
type StatementKind int

const (
	StmtSetVar StatementKind = iota
	StmtIf
	StmtReturn
)

// Statement is one built statement. Data holds the variant struct for Kind.
// Become and return both build into StmtReturn; which keyword is legal was
// already decided by the builder.
type Statement struct {
	Kind StatementKind
	Span lang.Span
	Data any
}

type SetVarStmt struct {
	VarName string
	Value   ExprRef
}
type IfStmt struct {
	Cond    ExprRef
	IfTrue  StatementBlock
	IfFalse StatementBlock
}
type ReturnStmt struct {
	Value ExprRef
}

// Statement returns the arena entry for a reference.
func (f *UserFunction) Statement(ref StatementRef) *Statement {
	return f.statements[ref]
}

func (f *UserFunction) addStatement(kind StatementKind, span lang.Span, data any) StatementRef {
	ref := StatementRef(len(f.statements))
	f.statements = append(f.statements, &Statement{Kind: kind, Span: span, Data: data})
	return ref
}

// CompileStatement emits the code for one statement.
func (f *UserFunction) CompileStatement(c *compiler.Compiler, ref StatementRef) error {
	s := f.Statement(ref)
	switch s.Kind {
	case StmtSetVar:
		d := s.Data.(SetVarStmt)
		v, err := f.CompileExpr(c, d.Value)
		if err != nil {
			return err
		}
		slot, ok := c.VarSlot(d.VarName)
		if !ok {
			return lang.Internal(s.Span, "no storage slot for variable "+d.VarName)
		}
		c.Builder().CreateStore(v.LLVM, slot)
		return nil

	case StmtIf:
		d := s.Data.(IfStmt)
		cond, err := f.CompileExpr(c, d.Cond)
		if err != nil {
			return err
		}
		return c.BuildConditional(cond.LLVM,
			func(c *compiler.Compiler) error { return f.CompileBlock(c, d.IfTrue) },
			func(c *compiler.Compiler) error { return f.CompileBlock(c, d.IfFalse) },
		)

	case StmtReturn:
		d := s.Data.(ReturnStmt)
		v, err := f.CompileExpr(c, d.Value)
		if err != nil {
			return err
		}
		return c.BuildReturnValue(v)
	}
	return lang.Internal(s.Span, "unknown statement kind")
}

// CompileBlock emits a run of statements in order. Once a statement has
// terminated the block, the rest are unreachable and are not emitted; the
// builder checked them but kept them out of the control flow.
func (f *UserFunction) CompileBlock(c *compiler.Compiler, block StatementBlock) error {
	for _, ref := range block {
		if !c.NeedsTerminator() {
			break
		}
		if err := f.CompileStatement(c, ref); err != nil {
			return err
		}
	}
	return nil
}
