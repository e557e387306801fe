// Package lexer turns carl rule source into a token stream. Newlines are
// significant (they terminate statements) and are emitted as tokens; all
// other whitespace and '//' comments are skipped.
package lexer

import (
	"unicode"

	"github.com/carl-lang/carl/pkg/lang"
	"github.com/carl-lang/carl/pkg/token"
)

type Lexer struct {
	source    []rune
	fileIndex int
	pos       int
	line      int
	column    int
}

func NewLexer(source []rune, fileIndex int) *Lexer {
	return &Lexer{source: source, fileIndex: fileIndex, line: 1, column: 1}
}

// Tokenize scans the whole source, appending a trailing EOF token.
func Tokenize(source string, fileIndex int) ([]token.Token, error) {
	l := NewLexer([]rune(source), fileIndex)
	var toks []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks, nil
		}
	}
}

func (l *Lexer) Next() (token.Token, error) {
	for {
		l.skipWhitespaceAndComments()
		startPos, startCol, startLine := l.pos, l.column, l.line

		if l.isAtEnd() {
			return l.makeToken(token.EOF, "", startPos, startCol, startLine), nil
		}

		ch := l.peek()
		if unicode.IsLetter(ch) || ch == '_' {
			l.advance()
			return l.identifierOrKeyword(startPos, startCol, startLine), nil
		}
		if unicode.IsDigit(ch) {
			return l.numberLiteral(startPos, startCol, startLine), nil
		}

		l.advance()
		switch ch {
		case '\n':
			return l.makeToken(token.Newline, "", startPos, startCol, startLine), nil
		case '(':
			return l.makeToken(token.LParen, "", startPos, startCol, startLine), nil
		case ')':
			return l.makeToken(token.RParen, "", startPos, startCol, startLine), nil
		case '{':
			return l.makeToken(token.LBrace, "", startPos, startCol, startLine), nil
		case '}':
			return l.makeToken(token.RBrace, "", startPos, startCol, startLine), nil
		case '[':
			return l.makeToken(token.LBracket, "", startPos, startCol, startLine), nil
		case ']':
			return l.makeToken(token.RBracket, "", startPos, startCol, startLine), nil
		case ',':
			return l.makeToken(token.Comma, "", startPos, startCol, startLine), nil
		case '#':
			return l.makeToken(token.Tag, "", startPos, startCol, startLine), nil
		case '+':
			return l.matchThen('=', token.PlusEq, token.Plus, startPos, startCol, startLine), nil
		case '-':
			return l.matchThen('=', token.MinusEq, token.Minus, startPos, startCol, startLine), nil
		case '%':
			return l.matchThen('=', token.RemEq, token.Rem, startPos, startCol, startLine), nil
		case '&':
			return l.matchThen('=', token.AndEq, token.And, startPos, startCol, startLine), nil
		case '|':
			return l.matchThen('=', token.OrEq, token.Or, startPos, startCol, startLine), nil
		case '/':
			return l.matchThen('=', token.SlashEq, token.Slash, startPos, startCol, startLine), nil
		case '=':
			return l.matchThen('=', token.EqEq, token.Eq, startPos, startCol, startLine), nil
		case '*':
			if l.match('*') {
				return l.matchThen('=', token.PowEq, token.Pow, startPos, startCol, startLine), nil
			}
			return l.matchThen('=', token.StarEq, token.Star, startPos, startCol, startLine), nil
		case '<':
			if l.match('<') {
				return l.matchThen('=', token.ShlEq, token.Shl, startPos, startCol, startLine), nil
			}
			return l.matchThen('=', token.Lte, token.Lt, startPos, startCol, startLine), nil
		case '>':
			if l.match('>') {
				if l.match('>') {
					return l.matchThen('=', token.UshrEq, token.Ushr, startPos, startCol, startLine), nil
				}
				return l.matchThen('=', token.ShrEq, token.Shr, startPos, startCol, startLine), nil
			}
			return l.matchThen('=', token.Gte, token.Gt, startPos, startCol, startLine), nil
		case '!':
			if l.match('=') {
				return l.makeToken(token.Neq, "", startPos, startCol, startLine), nil
			}
			tok := l.makeToken(token.EOF, "", startPos, startCol, startLine)
			return tok, lang.Errorf(lang.UnexpectedCharacter, tok.Span(), "'!'")
		case '.':
			if l.match('.') {
				return l.makeToken(token.DotDot, "", startPos, startCol, startLine), nil
			}
			return l.makeToken(token.Dot, "", startPos, startCol, startLine), nil
		default:
			tok := l.makeToken(token.EOF, "", startPos, startCol, startLine)
			return tok, lang.Errorf(lang.UnexpectedCharacter, tok.Span(), "'%c'", ch)
		}
	}
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) advance() rune {
	if l.isAtEnd() {
		return 0
	}
	ch := l.source[l.pos]
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
	return ch
}

func (l *Lexer) match(expected rune) bool {
	if l.isAtEnd() || l.source[l.pos] != expected {
		return false
	}
	l.advance()
	return true
}

// matchThen returns ifMatched when the next rune is expected, otherwise
// ifNot, consuming the rune only on a match.
func (l *Lexer) matchThen(expected rune, ifMatched, ifNot token.Type, startPos, startCol, startLine int) token.Token {
	if l.match(expected) {
		return l.makeToken(ifMatched, "", startPos, startCol, startLine)
	}
	return l.makeToken(ifNot, "", startPos, startCol, startLine)
}

func (l *Lexer) isAtEnd() bool { return l.pos >= len(l.source) }

func (l *Lexer) makeToken(tokType token.Type, value string, startPos, startCol, startLine int) token.Token {
	return token.Token{
		Type: tokType, Value: value, FileIndex: l.fileIndex,
		Line: startLine, Column: startCol, Len: l.pos - startPos,
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch l.peek() {
		case ' ', '\t', '\r':
			l.advance()
		case '/':
			if l.peekNext() == '/' {
				l.lineComment()
			} else {
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) lineComment() {
	for !l.isAtEnd() && l.peek() != '\n' {
		l.advance()
	}
}

func (l *Lexer) identifierOrKeyword(startPos, startCol, startLine int) token.Token {
	for unicode.IsLetter(l.peek()) || unicode.IsDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}
	value := string(l.source[startPos:l.pos])
	if tokType, isKeyword := token.KeywordMap[value]; isKeyword {
		return l.makeToken(tokType, "", startPos, startCol, startLine)
	}
	return l.makeToken(token.Ident, value, startPos, startCol, startLine)
}

func (l *Lexer) numberLiteral(startPos, startCol, startLine int) token.Token {
	for unicode.IsDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}
	return l.makeToken(token.Number, string(l.source[startPos:l.pos]), startPos, startCol, startLine)
}
