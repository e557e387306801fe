// Package token defines the token set of the carl rule language.
package token

import "github.com/carl-lang/carl/pkg/lang"

type Type int

const (
	EOF Type = iota
	Newline
	Ident
	Number

	// Keywords
	If
	Else
	Become
	Return

	// Punctuation
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma

	// Operators
	Eq
	Plus
	Minus
	Star
	Slash
	Rem
	Pow
	Shl
	Shr
	Ushr
	And
	Or
	Tag
	Dot
	DotDot

	// Compound assignment operators
	PlusEq
	MinusEq
	StarEq
	SlashEq
	RemEq
	PowEq
	ShlEq
	ShrEq
	UshrEq
	AndEq
	OrEq

	// Comparison operators
	EqEq
	Neq
	Lt
	Gt
	Lte
	Gte
)

var KeywordMap = map[string]Type{
	"if":     If,
	"else":   Else,
	"become": Become,
	"return": Return,
}

var opStrings = map[Type]string{
	Newline: "newline", Ident: "identifier", Number: "number",
	If: "if", Else: "else", Become: "become", Return: "return",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}",
	LBracket: "[", RBracket: "]", Comma: ",",
	Eq: "=", Plus: "+", Minus: "-", Star: "*", Slash: "/", Rem: "%",
	Pow: "**", Shl: "<<", Shr: ">>", Ushr: ">>>", And: "&", Or: "|",
	Tag: "#", Dot: ".", DotDot: "..",
	PlusEq: "+=", MinusEq: "-=", StarEq: "*=", SlashEq: "/=", RemEq: "%=",
	PowEq: "**=", ShlEq: "<<=", ShrEq: ">>=", UshrEq: ">>>=",
	AndEq: "&=", OrEq: "|=",
	EqEq: "==", Neq: "!=", Lt: "<", Gt: ">", Lte: "<=", Gte: ">=",
}

func (t Type) String() string {
	if s, ok := opStrings[t]; ok {
		return s
	}
	return "EOF"
}

// AssignOp maps a compound assignment operator to its underlying binary
// operator. The plain '=' has no underlying operator.
func AssignOp(t Type) (Type, bool) {
	switch t {
	case PlusEq:
		return Plus, true
	case MinusEq:
		return Minus, true
	case StarEq:
		return Star, true
	case SlashEq:
		return Slash, true
	case RemEq:
		return Rem, true
	case PowEq:
		return Pow, true
	case ShlEq:
		return Shl, true
	case ShrEq:
		return Shr, true
	case UshrEq:
		return Ushr, true
	case AndEq:
		return And, true
	case OrEq:
		return Or, true
	}
	return t, false
}

// IsAssign reports whether t is '=' or a compound assignment operator.
func IsAssign(t Type) bool {
	if t == Eq {
		return true
	}
	_, ok := AssignOp(t)
	return ok
}

// IsComparison reports whether t is one of the chained-comparison operators.
func IsComparison(t Type) bool {
	switch t {
	case EqEq, Neq, Lt, Gt, Lte, Gte:
		return true
	}
	return false
}

// IsBinaryIntOp reports whether t is one of the arithmetic or bitwise
// operators handled by the generic binary integer capability.
func IsBinaryIntOp(t Type) bool {
	switch t {
	case Plus, Minus, Star, Slash, Rem, Pow, Shl, Shr, Ushr, And, Or:
		return true
	}
	return false
}

type Token struct {
	Type      Type
	Value     string
	FileIndex int
	Line      int
	Column    int
	Len       int
}

// Span converts the token's position into a diagnostic span.
func (t Token) Span() lang.Span {
	return lang.Span{FileIndex: t.FileIndex, Line: t.Line, Column: t.Column, Len: t.Len}
}
