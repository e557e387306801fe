package parser

import (
	"strconv"
	"strings"

	"github.com/carl-lang/carl/pkg/lang"
	"github.com/carl-lang/carl/pkg/token"
)

// Parser holds the state for the parsing process.
type Parser struct {
	tokens   []token.Token
	pos      int
	current  token.Token
	previous token.Token
}

// NewParser creates and initializes a new Parser from a token stream.
func NewParser(tokens []token.Token) *Parser {
	p := &Parser{tokens: tokens}
	if len(tokens) > 0 {
		p.current = p.tokens[0]
	}
	return p
}

// ParseBlock parses statements until EOF.
func (p *Parser) ParseBlock() ([]*Statement, error) {
	var block []*Statement
	for {
		p.skipNewlines()
		if p.check(token.EOF) {
			return block, nil
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block = append(block, stmt)
		if err := p.expectTerminator(); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) advance() {
	if p.pos < len(p.tokens) {
		p.previous = p.current
		p.pos++
		if p.pos < len(p.tokens) {
			p.current = p.tokens[p.pos]
		}
	}
}

func (p *Parser) check(tokType token.Type) bool { return p.current.Type == tokType }

func (p *Parser) match(tokType token.Type) bool {
	if !p.check(tokType) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expect(tokType token.Type, message string) error {
	if p.match(tokType) {
		return nil
	}
	return lang.NewError(lang.SyntaxError, p.current.Span(), message)
}

func (p *Parser) skipNewlines() {
	for p.match(token.Newline) {
	}
}

// expectTerminator consumes the newline ending a statement. A closing brace
// or EOF also terminates, but stays in the stream for the caller.
func (p *Parser) expectTerminator() error {
	if p.check(token.RBrace) || p.check(token.EOF) {
		return nil
	}
	return p.expect(token.Newline, "expected end of statement")
}

func (p *Parser) parseStatement() (*Statement, error) {
	tok := p.current
	switch {
	case p.check(token.If):
		return p.parseIf()
	case p.match(token.Become):
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return NewBecome(tok.Span(), value), nil
	case p.match(token.Return):
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return NewReturn(tok.Span(), value), nil
	}

	// Anything else must be an assignment. The target is parsed as a full
	// expression; the AST builder rejects non-identifier targets.
	varExpr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !token.IsAssign(p.current.Type) {
		return nil, lang.NewError(lang.SyntaxError, p.current.Span(), "expected an assignment operator")
	}
	op := p.current.Type
	p.advance()
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return NewSetVar(tok.Span(), varExpr, op, value), nil
}

func (p *Parser) parseIf() (*Statement, error) {
	tok := p.current
	p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	ifTrue, err := p.parseBraceBlock()
	if err != nil {
		return nil, err
	}
	var ifFalse []*Statement
	if p.match(token.Else) {
		if p.check(token.If) {
			nested, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			ifFalse = []*Statement{nested}
		} else {
			ifFalse, err = p.parseBraceBlock()
			if err != nil {
				return nil, err
			}
		}
	}
	return NewIf(tok.Span(), cond, ifTrue, ifFalse), nil
}

func (p *Parser) parseBraceBlock() ([]*Statement, error) {
	if err := p.expect(token.LBrace, "expected '{'"); err != nil {
		return nil, err
	}
	var block []*Statement
	for {
		p.skipNewlines()
		if p.match(token.RBrace) {
			return block, nil
		}
		if p.check(token.EOF) {
			return nil, lang.NewError(lang.SyntaxError, p.current.Span(), "expected '}'")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block = append(block, stmt)
		if p.check(token.RBrace) {
			continue
		}
		if err := p.expect(token.Newline, "expected end of statement"); err != nil {
			return nil, err
		}
	}
}

// Expression parsing, one function per precedence level.

func (p *Parser) parseExpr() (*Expr, error) { return p.parseRange() }

func (p *Parser) parseRange() (*Expr, error) {
	lhs, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	for p.check(token.DotDot) {
		op := p.current
		p.advance()
		rhs, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		lhs = NewBinaryOp(op.Span(), token.DotDot, lhs, rhs)
	}
	return lhs, nil
}

func (p *Parser) parseOr() (*Expr, error) {
	return p.parseBinaryLevel(p.parseAnd, token.Or)
}

func (p *Parser) parseAnd() (*Expr, error) {
	return p.parseBinaryLevel(p.parseCmp, token.And)
}

// parseCmp collects a whole comparison chain into one Cmp node, so
// `a < b <= c` becomes three operands and two comparators rather than a
// left-nested pair of binaries.
func (p *Parser) parseCmp() (*Expr, error) {
	first, err := p.parseShift()
	if err != nil {
		return nil, err
	}
	if !token.IsComparison(p.current.Type) {
		return first, nil
	}
	span := p.current.Span()
	exprs := []*Expr{first}
	var cmps []token.Type
	for token.IsComparison(p.current.Type) {
		cmps = append(cmps, p.current.Type)
		p.advance()
		next, err := p.parseShift()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, next)
	}
	return NewCmp(span, exprs, cmps), nil
}

func (p *Parser) parseShift() (*Expr, error) {
	return p.parseBinaryLevel(p.parseAdd, token.Shl, token.Shr, token.Ushr)
}

func (p *Parser) parseAdd() (*Expr, error) {
	return p.parseBinaryLevel(p.parseMul, token.Plus, token.Minus)
}

func (p *Parser) parseMul() (*Expr, error) {
	return p.parseBinaryLevel(p.parsePow, token.Star, token.Slash, token.Rem)
}

// parsePow is right-associative: 2 ** 3 ** 2 is 2 ** (3 ** 2).
func (p *Parser) parsePow() (*Expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.check(token.Pow) {
		op := p.current
		p.advance()
		rhs, err := p.parsePow()
		if err != nil {
			return nil, err
		}
		return NewBinaryOp(op.Span(), token.Pow, lhs, rhs), nil
	}
	return lhs, nil
}

func (p *Parser) parseUnary() (*Expr, error) {
	if p.check(token.Minus) || p.check(token.Tag) {
		op := p.current
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return NewUnaryOp(op.Span(), op.Type, operand), nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (*Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.check(token.Dot) {
		op := p.current
		p.advance()
		rhs, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		expr = NewBinaryOp(op.Span(), token.Dot, expr, rhs)
	}
	return expr, nil
}

func (p *Parser) parseBinaryLevel(next func() (*Expr, error), ops ...token.Type) (*Expr, error) {
	lhs, err := next()
	if err != nil {
		return nil, err
	}
	for {
		matched := false
		for _, op := range ops {
			if p.check(op) {
				opTok := p.current
				p.advance()
				rhs, err := next()
				if err != nil {
					return nil, err
				}
				lhs = NewBinaryOp(opTok.Span(), op, lhs, rhs)
				matched = true
				break
			}
		}
		if !matched {
			return lhs, nil
		}
	}
}

func (p *Parser) parsePrimary() (*Expr, error) {
	tok := p.current
	switch {
	case p.match(token.Number):
		digits := strings.ReplaceAll(p.previous.Value, "_", "")
		val, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return nil, lang.Errorf(lang.SyntaxError, tok.Span(), "integer literal out of range: %s", p.previous.Value)
		}
		return NewInt(tok.Span(), val), nil
	case p.match(token.Ident):
		return NewIdent(tok.Span(), p.previous.Value), nil
	case p.match(token.LParen):
		inner, err := p.parseGroupContents(token.RParen, "expected ')'")
		if err != nil {
			return nil, err
		}
		return NewGroup(tok.Span(), token.LParen, inner), nil
	case p.match(token.LBracket):
		inner, err := p.parseGroupContents(token.RBracket, "expected ']'")
		if err != nil {
			return nil, err
		}
		return NewGroup(tok.Span(), token.LBracket, inner), nil
	}
	return nil, lang.NewError(lang.SyntaxError, tok.Span(), "expected an expression")
}

// parseGroupContents parses the inside of a paren or bracket group, which is
// either a single expression or a comma-separated list. Newlines are allowed
// around the items.
func (p *Parser) parseGroupContents(closing token.Type, message string) (*Expr, error) {
	p.skipNewlines()
	span := p.current.Span()
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	if !p.check(token.Comma) {
		return first, p.expect(closing, message)
	}
	items := []*Expr{first}
	for p.match(token.Comma) {
		p.skipNewlines()
		item, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		p.skipNewlines()
	}
	if err := p.expect(closing, message); err != nil {
		return nil, err
	}
	return NewList(span, items), nil
}
