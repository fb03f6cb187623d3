package token

import "wrens.dev/schemevm/pkg/symbol"

// Kind identifies a lexical class of Token.
type Kind int

const (
	LeftParen Kind = iota
	RightParen
	Dot
	Quote
	Quasiquote
	Unquote
	UnquoteSplice
	Comment
	BlockComment
	String
	Integer
	Float
	Symbol
	Pound
)

// Token is a single lexeme produced by Tokenize. Only the fields relevant to
// its Kind are populated; the zero value of the others is meaningless.
type Token struct {
	Kind  Kind
	Text  string        // Comment, BlockComment, String payload
	Int   int32         // Integer payload
	Float float64       // Float payload
	Sym   symbol.Symbol // Symbol payload
}

func tLeftParen() Token      { return Token{Kind: LeftParen} }
func tRightParen() Token     { return Token{Kind: RightParen} }
func tDot() Token            { return Token{Kind: Dot} }
func tQuote() Token          { return Token{Kind: Quote} }
func tQuasiquote() Token     { return Token{Kind: Quasiquote} }
func tUnquote() Token        { return Token{Kind: Unquote} }
func tUnquoteSplice() Token  { return Token{Kind: UnquoteSplice} }
func tPound() Token          { return Token{Kind: Pound} }
func tComment(s string) Token      { return Token{Kind: Comment, Text: s} }
func tBlockComment(s string) Token { return Token{Kind: BlockComment, Text: s} }
func tString(s string) Token       { return Token{Kind: String, Text: s} }
func tInteger(n int32) Token       { return Token{Kind: Integer, Int: n} }
func tFloat(f float64) Token       { return Token{Kind: Float, Float: f} }
func tSymbol(s symbol.Symbol) Token { return Token{Kind: Symbol, Sym: s} }
