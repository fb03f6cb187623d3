package token_test

import (
	"testing"

	"wrens.dev/schemevm/pkg/symbol"
	"wrens.dev/schemevm/pkg/token"
)

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, tk := range toks {
		ks[i] = tk.Kind
	}
	return ks
}

func assertKinds(t *testing.T, input string, want ...token.Kind) []token.Token {
	t.Helper()
	toks, err := token.Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize(%q): unexpected error: %v", input, err)
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("Tokenize(%q) = %v, want %v", input, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tokenize(%q)[%d] = %v, want %v", input, i, got[i], want[i])
		}
	}
	return toks
}

func TestTokenizeParens(t *testing.T) {
	assertKinds(t, "([{}])",
		token.LeftParen, token.LeftParen, token.LeftParen,
		token.RightParen, token.RightParen, token.RightParen)
}

func TestTokenizeReaderSyntax(t *testing.T) {
	assertKinds(t, "'a `a ,a ,@a",
		token.Quote, token.Symbol,
		token.Quasiquote, token.Symbol,
		token.Unquote, token.Symbol,
		token.UnquoteSplice, token.Symbol)
}

func TestTokenizeIntegers(t *testing.T) {
	toks := assertKinds(t, "42 -7 +3", token.Integer, token.Integer, token.Integer)
	if toks[0].Int != 42 || toks[1].Int != -7 || toks[2].Int != 3 {
		t.Fatalf("unexpected integer payloads: %+v", toks)
	}
}

func TestTokenizeFloats(t *testing.T) {
	toks := assertKinds(t, "3.14 -0.5 1e10", token.Float, token.Float, token.Float)
	if toks[0].Float != 3.14 || toks[1].Float != -0.5 || toks[2].Float != 1e10 {
		t.Fatalf("unexpected float payloads: %+v", toks)
	}
}

func TestTokenizeSymbols(t *testing.T) {
	toks := assertKinds(t, "foo + fact->list", token.Symbol, token.Symbol, token.Symbol)
	if symbol.Name(toks[0].Sym) != "foo" {
		t.Fatalf("got %q, want foo", symbol.Name(toks[0].Sym))
	}
	if symbol.Name(toks[1].Sym) != "+" {
		t.Fatalf("got %q, want +", symbol.Name(toks[1].Sym))
	}
	if symbol.Name(toks[2].Sym) != "fact->list" {
		t.Fatalf("got %q, want fact->list", symbol.Name(toks[2].Sym))
	}
}

func TestTokenizeDot(t *testing.T) {
	assertKinds(t, "(a . b)",
		token.LeftParen, token.Symbol, token.Dot, token.Symbol, token.RightParen)
}

func TestTokenizeString(t *testing.T) {
	toks := assertKinds(t, `"hello\nworld"`, token.String)
	if toks[0].Text != "hello\nworld" {
		t.Fatalf("got %q, want %q", toks[0].Text, "hello\nworld")
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	if _, err := token.Tokenize(`"unterminated`); err != token.ErrInString {
		t.Fatalf("got %v, want ErrInString", err)
	}
}

func TestTokenizeLineComment(t *testing.T) {
	toks := assertKinds(t, "; a comment\n42", token.Comment, token.Integer)
	if toks[0].Text != "; a comment" {
		t.Fatalf("got %q", toks[0].Text)
	}
}

func TestTokenizeBlockComment(t *testing.T) {
	assertKinds(t, "#| outer #| inner |# still outer |# 1", token.BlockComment, token.Integer)
}

func TestTokenizeUnterminatedBlockComment(t *testing.T) {
	if _, err := token.Tokenize("#| never closed"); err != token.ErrEOF {
		t.Fatalf("got %v, want ErrEOF", err)
	}
}

func TestTokenizeBarQuotedIdentifier(t *testing.T) {
	toks := assertKinds(t, "|foo bar|", token.Symbol)
	if symbol.Name(toks[0].Sym) != "foo bar" {
		t.Fatalf("got %q, want %q", symbol.Name(toks[0].Sym), "foo bar")
	}
}

func TestTokenizePound(t *testing.T) {
	assertKinds(t, "#t", token.Pound, token.Symbol)
}

func TestTokenizeWhitespaceSeparatesSymbols(t *testing.T) {
	assertKinds(t, "foo   bar\tbaz\nqux", token.Symbol, token.Symbol, token.Symbol, token.Symbol)
}
