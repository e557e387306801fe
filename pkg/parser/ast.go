// Package parser produces the syntax tree consumed by the AST builder. The
// tree is syntactically well-formed but carries no semantic information;
// all semantic validation happens in pkg/ast.
package parser

import (
	"github.com/carl-lang/carl/pkg/lang"
	"github.com/carl-lang/carl/pkg/token"
)

// StatementKind defines the kind of a parsed statement.
type StatementKind int

const (
	StmtSetVar StatementKind = iota
	StmtIf
	StmtBecome
	StmtReturn
)

// Statement is one parsed statement. Data holds the variant struct for Kind.
type Statement struct {
	Kind StatementKind
	Span lang.Span
	Data any
}

type SetVarStmt struct {
	VarExpr   *Expr
	AssignOp  token.Type // Eq or a compound assignment operator
	ValueExpr *Expr
}
type IfStmt struct {
	Cond    *Expr
	IfTrue  []*Statement
	IfFalse []*Statement
}
type BecomeStmt struct{ Value *Expr }
type ReturnStmt struct{ Value *Expr }

// ExprKind defines the kind of a parsed expression.
type ExprKind int

const (
	ExprInt ExprKind = iota
	ExprIdent
	ExprGroup
	ExprList
	ExprUnaryOp
	ExprBinaryOp
	ExprCmp
)

// Expr is one parsed expression. Data holds the variant struct for Kind.
type Expr struct {
	Kind ExprKind
	Span lang.Span
	Data any
}

type IntExpr struct{ Value int64 }
type IdentExpr struct{ Name string }

// GroupExpr is a parenthesized or bracketed group; StartToken distinguishes
// the two.
type GroupExpr struct {
	StartToken token.Type
	Inner      *Expr
}

// ListExpr is a comma-separated list inside a group.
type ListExpr struct{ Items []*Expr }

type UnaryOpExpr struct {
	Op      token.Type
	Operand *Expr
}
type BinaryOpExpr struct {
	Op       token.Type
	Lhs, Rhs *Expr
}

// CmpExpr is a chained comparison such as `a < b <= c`: len(Exprs) operands
// joined by len(Exprs)-1 comparison operators, evaluated pairwise.
type CmpExpr struct {
	Exprs []*Expr
	Cmps  []token.Type
}

func newStatement(kind StatementKind, span lang.Span, data any) *Statement {
	return &Statement{Kind: kind, Span: span, Data: data}
}

func newExpr(kind ExprKind, span lang.Span, data any) *Expr {
	return &Expr{Kind: kind, Span: span, Data: data}
}

// NewInt and friends construct parse-tree nodes directly; tests and the
// builder's desugaring step use them.
func NewInt(span lang.Span, v int64) *Expr        { return newExpr(ExprInt, span, IntExpr{Value: v}) }
func NewIdent(span lang.Span, name string) *Expr  { return newExpr(ExprIdent, span, IdentExpr{Name: name}) }
func NewGroup(span lang.Span, start token.Type, inner *Expr) *Expr {
	return newExpr(ExprGroup, span, GroupExpr{StartToken: start, Inner: inner})
}
func NewList(span lang.Span, items []*Expr) *Expr { return newExpr(ExprList, span, ListExpr{Items: items}) }
func NewUnaryOp(span lang.Span, op token.Type, operand *Expr) *Expr {
	return newExpr(ExprUnaryOp, span, UnaryOpExpr{Op: op, Operand: operand})
}
func NewBinaryOp(span lang.Span, op token.Type, lhs, rhs *Expr) *Expr {
	return newExpr(ExprBinaryOp, span, BinaryOpExpr{Op: op, Lhs: lhs, Rhs: rhs})
}
func NewCmp(span lang.Span, exprs []*Expr, cmps []token.Type) *Expr {
	return newExpr(ExprCmp, span, CmpExpr{Exprs: exprs, Cmps: cmps})
}

func NewSetVar(span lang.Span, varExpr *Expr, op token.Type, value *Expr) *Statement {
	return newStatement(StmtSetVar, span, SetVarStmt{VarExpr: varExpr, AssignOp: op, ValueExpr: value})
}
func NewIf(span lang.Span, cond *Expr, ifTrue, ifFalse []*Statement) *Statement {
	return newStatement(StmtIf, span, IfStmt{Cond: cond, IfTrue: ifTrue, IfFalse: ifFalse})
}
func NewBecome(span lang.Span, value *Expr) *Statement {
	return newStatement(StmtBecome, span, BecomeStmt{Value: value})
}
func NewReturn(span lang.Span, value *Expr) *Statement {
	return newStatement(StmtReturn, span, ReturnStmt{Value: value})
}
