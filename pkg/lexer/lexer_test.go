package lexer_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/carl-lang/carl/pkg/lang"
	"github.com/carl-lang/carl/pkg/lexer"
	"github.com/carl-lang/carl/pkg/token"
)

func tokenTypes(t *testing.T, source string) []token.Type {
	t.Helper()
	toks, err := lexer.Tokenize(source, 0)
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", source, err)
	}
	types := make([]token.Type, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	return types
}

func TestTokenizeOperators(t *testing.T) {
	tests := []struct {
		source string
		want   []token.Type
	}{
		{"+ - * / %", []token.Type{token.Plus, token.Minus, token.Star, token.Slash, token.Rem, token.EOF}},
		{"** **= << <<= >> >>> >>>=", []token.Type{token.Pow, token.PowEq, token.Shl, token.ShlEq, token.Shr, token.Ushr, token.UshrEq, token.EOF}},
		{"= == != < <= > >=", []token.Type{token.Eq, token.EqEq, token.Neq, token.Lt, token.Lte, token.Gt, token.Gte, token.EOF}},
		{"+= -= *= /= %= &= |=", []token.Type{token.PlusEq, token.MinusEq, token.StarEq, token.SlashEq, token.RemEq, token.AndEq, token.OrEq, token.EOF}},
		{"# . .. , ( ) { } [ ]", []token.Type{token.Tag, token.Dot, token.DotDot, token.Comma, token.LParen, token.RParen, token.LBrace, token.RBrace, token.LBracket, token.RBracket, token.EOF}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, tokenTypes(t, tt.source)); diff != "" {
			t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.source, diff)
		}
	}
}

func TestTokenizeKeywordsAndIdents(t *testing.T) {
	toks, err := lexer.Tokenize("if else become return neighbors_3", 0)
	if err != nil {
		t.Fatal(err)
	}
	want := []token.Type{token.If, token.Else, token.Become, token.Return, token.Ident, token.EOF}
	got := make([]token.Type, len(toks))
	for i, tok := range toks {
		got[i] = tok.Type
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("token types mismatch (-want +got):\n%s", diff)
	}
	if toks[4].Value != "neighbors_3" {
		t.Errorf("identifier value = %q, want %q", toks[4].Value, "neighbors_3")
	}
}

func TestTokenizeNumbersKeepUnderscores(t *testing.T) {
	toks, err := lexer.Tokenize("1_000_000", 0)
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Type != token.Number || toks[0].Value != "1_000_000" {
		t.Fatalf("got %v %q, want Number \"1_000_000\"", toks[0].Type, toks[0].Value)
	}
}

func TestTokenizeNewlinesAndComments(t *testing.T) {
	source := "x = 1 // trailing comment\n// whole line\ny = 2\n"
	want := []token.Type{
		token.Ident, token.Eq, token.Number, token.Newline,
		token.Newline,
		token.Ident, token.Eq, token.Number, token.Newline,
		token.EOF,
	}
	if diff := cmp.Diff(want, tokenTypes(t, source)); diff != "" {
		t.Fatalf("token types mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizePositions(t *testing.T) {
	toks, err := lexer.Tokenize("a = 10\nbb = 2", 0)
	if err != nil {
		t.Fatal(err)
	}
	// The 10 sits on line 1 column 5 with length 2; bb opens line 2.
	num := toks[2]
	if num.Line != 1 || num.Column != 5 || num.Len != 2 {
		t.Errorf("number position = %d:%d len %d, want 1:5 len 2", num.Line, num.Column, num.Len)
	}
	bb := toks[4]
	if bb.Line != 2 || bb.Column != 1 {
		t.Errorf("bb position = %d:%d, want 2:1", bb.Line, bb.Column)
	}
}

func TestTokenizeRejectsUnknownCharacters(t *testing.T) {
	for _, source := range []string{"x = $", "!x", "x = 1 ~ 2"} {
		_, err := lexer.Tokenize(source, 0)
		if err == nil {
			t.Errorf("Tokenize(%q) succeeded, want error", source)
			continue
		}
		lerr, ok := err.(*lang.Error)
		if !ok || lerr.Kind != lang.UnexpectedCharacter {
			t.Errorf("Tokenize(%q) error = %v, want UnexpectedCharacter", source, err)
		}
	}
}
