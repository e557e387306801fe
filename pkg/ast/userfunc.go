package ast

import (
	"sort"

	"github.com/carl-lang/carl/pkg/compiler"
	"github.com/carl-lang/carl/pkg/config"
	"github.com/carl-lang/carl/pkg/lang"
	"github.com/carl-lang/carl/pkg/parser"
	"github.com/carl-lang/carl/pkg/rule"
	"github.com/carl-lang/carl/pkg/token"
)

// ErrorPointRef names one registered run-time failure site. Compiling it
// emits the trapping return that reports the site's index.
type ErrorPointRef struct {
	Index int
	Err   *lang.Error
}

// Compile emits the error return for this error point.
func (r ErrorPointRef) Compile(c *compiler.Compiler) error {
	c.BuildReturnError(r.Index)
	return nil
}

// UserFunction is one rule function under construction: the transition
// function or a helper. Statements, expressions and error points live in
// arenas owned by the function; references into them are plain indices.
type UserFunction struct {
	meta         *rule.Meta
	registry     Registry
	returnType   lang.Type
	isTransition bool

	statements  []*Statement
	expressions []*Expr
	errorPoints []*lang.Error
	variables   map[string]lang.Type
	warnings    []lang.Warning

	body StatementBlock
}

func newUserFunction(meta *rule.Meta, reg Registry, returnType lang.Type, isTransition bool) *UserFunction {
	return &UserFunction{
		meta:         meta,
		registry:     reg,
		returnType:   returnType,
		isTransition: isTransition,
		variables:    make(map[string]lang.Type),
	}
}

// NewTransitionFunction returns a function that computes the next state of
// a cell; it returns a cell state and uses `become` rather than `return`.
func NewTransitionFunction(meta *rule.Meta, reg Registry) *UserFunction {
	return newUserFunction(meta, reg, lang.CellState, true)
}

// NewHelperFunction returns an ordinary function with an explicit return
// type.
func NewHelperFunction(meta *rule.Meta, reg Registry, returnType lang.Type) *UserFunction {
	return newUserFunction(meta, reg, returnType, false)
}

func (f *UserFunction) Meta() *rule.Meta         { return f.meta }
func (f *UserFunction) ReturnType() lang.Type    { return f.returnType }
func (f *UserFunction) IsTransition() bool       { return f.isTransition }
func (f *UserFunction) Warnings() []lang.Warning { return f.warnings }

// ErrorPoints returns the error table in registration order.
func (f *UserFunction) ErrorPoints() []*lang.Error { return f.errorPoints }

// AddErrorPoint registers a possible run-time failure and returns the
// reference its trap code reports.
func (f *UserFunction) AddErrorPoint(err *lang.Error) ErrorPointRef {
	idx := len(f.errorPoints)
	f.errorPoints = append(f.errorPoints, err)
	return ErrorPointRef{Index: idx, Err: err}
}

// TryGetVar returns the type of a variable, if it has been assigned.
func (f *UserFunction) TryGetVar(name string) (lang.Type, bool) {
	t, ok := f.variables[name]
	return t, ok
}

// GetOrCreateVar returns the variable's type, creating it with the given
// type on first use. A variable's type is fixed by its first assignment.
func (f *UserFunction) GetOrCreateVar(name string, t lang.Type) lang.Type {
	if existing, ok := f.variables[name]; ok {
		return existing
	}
	f.variables[name] = t
	return t
}

// VarNames returns the assigned variable names in sorted order, so that
// storage layout and IR are deterministic.
func (f *UserFunction) VarNames() []string {
	names := make([]string, 0, len(f.variables))
	for name := range f.variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Warn records a warning under a toggle name from pkg/config. Warnings are
// always collected; filtering by toggle happens when they are reported.
func (f *UserFunction) Warn(name string, span lang.Span, msg string) {
	f.warnings = append(f.warnings, lang.Warning{Name: name, Span: span, Msg: msg})
}

// BuildBody builds the function's top-level statements. It must be called
// exactly once, before compiling.
func (f *UserFunction) BuildBody(stmts []*parser.Statement) error {
	block, err := f.BuildStatementBlock(stmts)
	if err != nil {
		return err
	}
	f.body = block
	return nil
}

// BuildStatementBlock builds a run of parsed statements. Statements after
// an unconditional become/return are unreachable; they are still built and
// checked like any other statement, with a warning on the first one. Code
// emission stops at the terminating statement.
func (f *UserFunction) BuildStatementBlock(stmts []*parser.Statement) (StatementBlock, error) {
	var block StatementBlock
	terminated, warned := false, false
	for _, s := range stmts {
		if terminated && !warned {
			f.Warn("unreachable-code", s.Span, "statement is never executed")
			warned = true
		}
		ref, terminates, err := f.buildStatement(s)
		if err != nil {
			return nil, err
		}
		block = append(block, ref)
		if terminates {
			terminated = true
		}
	}
	return block, nil
}

func (f *UserFunction) buildStatement(s *parser.Statement) (ref StatementRef, terminates bool, err error) {
	switch s.Kind {
	case parser.StmtSetVar:
		d := s.Data.(parser.SetVarStmt)
		ref, err = f.buildSetVar(s.Span, d)
		return ref, false, err

	case parser.StmtIf:
		d := s.Data.(parser.IfStmt)
		ref, err = f.buildIf(s.Span, d)
		return ref, false, err

	case parser.StmtBecome:
		d := s.Data.(parser.BecomeStmt)
		if !f.isTransition {
			return 0, false, lang.NewError(lang.BecomeInHelperFunction, s.Span,
				"helper functions return values with `return`")
		}
		ref, err = f.buildReturn(s.Span, d.Value)
		return ref, true, err

	case parser.StmtReturn:
		d := s.Data.(parser.ReturnStmt)
		if f.isTransition {
			return 0, false, lang.NewError(lang.ReturnInTransitionFunction, s.Span,
				"the transition function produces its result with `become`")
		}
		ref, err = f.buildReturn(s.Span, d.Value)
		return ref, true, err
	}
	return 0, false, lang.Internal(s.Span, "unknown parsed statement kind")
}

func (f *UserFunction) buildSetVar(span lang.Span, d parser.SetVarStmt) (StatementRef, error) {
	if d.VarExpr.Kind != parser.ExprIdent {
		return 0, lang.NewError(lang.Expected, d.VarExpr.Span, "variable name")
	}
	name := d.VarExpr.Data.(parser.IdentExpr).Name

	// A compound assignment `x += e` builds as `x = x + e`; the variable
	// read goes through the normal path and so is checked for
	// initialization like any other read.
	valueExpr := d.ValueExpr
	if op, ok := token.AssignOp(d.AssignOp); ok {
		read := parser.NewIdent(d.VarExpr.Span, name)
		valueExpr = parser.NewBinaryOp(span, op, read, d.ValueExpr)
	}

	valueRef, err := f.BuildExpression(valueExpr)
	if err != nil {
		return 0, err
	}
	t := f.Expr(valueRef).Type
	if existing, ok := f.TryGetVar(name); ok && existing != t {
		return 0, lang.Errorf(lang.TypeError, span,
			"cannot assign %s to variable %q of type %s", t, name, existing)
	}
	f.GetOrCreateVar(name, t)
	return f.addStatement(StmtSetVar, span, SetVarStmt{VarName: name, Value: valueRef}), nil
}

func (f *UserFunction) buildIf(span lang.Span, d parser.IfStmt) (StatementRef, error) {
	cond, err := f.BuildExpression(d.Cond)
	if err != nil {
		return 0, err
	}
	if t := f.Expr(cond).Type; t != lang.Int {
		return 0, lang.Errorf(lang.TypeError, d.Cond.Span,
			"condition must be %s, got %s", lang.Int, t)
	}
	ifTrue, err := f.BuildStatementBlock(d.IfTrue)
	if err != nil {
		return 0, err
	}
	ifFalse, err := f.BuildStatementBlock(d.IfFalse)
	if err != nil {
		return 0, err
	}
	return f.addStatement(StmtIf, span, IfStmt{Cond: cond, IfTrue: ifTrue, IfFalse: ifFalse}), nil
}

func (f *UserFunction) buildReturn(span lang.Span, value *parser.Expr) (StatementRef, error) {
	ref, err := f.BuildExpression(value)
	if err != nil {
		return 0, err
	}
	if t := f.Expr(ref).Type; t != f.returnType {
		return 0, lang.Errorf(lang.TypeError, value.Span,
			"expected %s, got %s", f.returnType, t)
	}
	return f.addStatement(StmtReturn, span, ReturnStmt{Value: ref}), nil
}

// BuildExpression builds a parsed expression into the arena, type-checking
// it along the way.
func (f *UserFunction) BuildExpression(e *parser.Expr) (ExprRef, error) {
	switch e.Kind {
	case parser.ExprInt:
		d := e.Data.(parser.IntExpr)
		return f.newExpr(e.Span, f.registry.IntLiteral(d.Value), nil)

	case parser.ExprIdent:
		d := e.Data.(parser.IdentExpr)
		return f.newExpr(e.Span, f.registry.GetVar(d.Name), nil)

	case parser.ExprGroup:
		d := e.Data.(parser.GroupExpr)
		if d.StartToken == token.LParen {
			return f.BuildExpression(d.Inner)
		}
		return 0, lang.NewError(lang.Unimplemented, e.Span, "vector literal")

	case parser.ExprList:
		return 0, lang.NewExpectedGot(e.Span, "expression", "comma-separated list")

	case parser.ExprUnaryOp:
		d := e.Data.(parser.UnaryOpExpr)
		operand, err := f.BuildExpression(d.Operand)
		if err != nil {
			return 0, err
		}
		switch d.Op {
		case token.Minus:
			return f.newExpr(e.Span, f.registry.NegInt(), Args{operand})
		case token.Tag:
			return f.newExpr(e.Span, f.registry.IntToCellState(), Args{operand})
		}
		return 0, lang.Internal(e.Span, "unknown unary operator "+d.Op.String())

	case parser.ExprBinaryOp:
		d := e.Data.(parser.BinaryOpExpr)
		switch d.Op {
		case token.Dot:
			return 0, lang.NewError(lang.Unimplemented, e.Span, "method call")
		case token.DotDot:
			return 0, lang.NewError(lang.Unimplemented, e.Span, "range expression")
		}
		fn, err := f.registry.BinaryIntOp(d.Op)
		if err != nil {
			return 0, err
		}
		lhs, err := f.BuildExpression(d.Lhs)
		if err != nil {
			return 0, err
		}
		rhs, err := f.BuildExpression(d.Rhs)
		if err != nil {
			return 0, err
		}
		return f.newExpr(e.Span, fn, Args{lhs, rhs})

	case parser.ExprCmp:
		d := e.Data.(parser.CmpExpr)
		fn, err := f.registry.Cmp(d.Cmps)
		if err != nil {
			return 0, err
		}
		args := make(Args, len(d.Exprs))
		for i, operand := range d.Exprs {
			ref, err := f.BuildExpression(operand)
			if err != nil {
				return 0, err
			}
			args[i] = ref
		}
		return f.newExpr(e.Span, fn, args)
	}
	return 0, lang.Internal(e.Span, "unknown parsed expression kind")
}

// CompileBody emits the whole function into the compiler: allocate and
// default-initialize every variable, compile the body, and close any open
// fall-through path with the return type's default value.
func (f *UserFunction) CompileBody(c *compiler.Compiler, name string) error {
	c.BeginFunction(name)
	for _, varName := range f.VarNames() {
		if _, err := c.AllocVar(varName, f.variables[varName]); err != nil {
			return err
		}
	}
	if err := f.CompileBlock(c, f.body); err != nil {
		return err
	}
	if c.NeedsTerminator() {
		def, err := c.GetDefaultVarValue(f.returnType)
		if err != nil {
			return err
		}
		return c.BuildReturnValue(compiler.Value{Type: f.returnType, LLVM: def})
	}
	return nil
}

// Compile lowers the built function to native code on the given worker and
// returns the callable result.
func (f *UserFunction) Compile(w *compiler.Worker, cfg *config.Config, name string) (*compiler.CompiledFunction, error) {
	c := compiler.New(w, cfg, name)
	if err := f.CompileBody(c, name); err != nil {
		return nil, err
	}
	return compiler.Finish(c, name, f.returnType, f.errorPoints)
}
