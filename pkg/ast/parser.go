package ast

import (
	"wrens.dev/schemevm/pkg/symbol"
	"wrens.dev/schemevm/pkg/token"
)

// Parser turns a flat token stream into a sequence of top-level Ast nodes.
// It is a plain hand-rolled recursive-descent parser (not a parser
// combinator) mirroring the tokenizer's character-by-character discipline:
// the grammar is small and fixed, so a combinator library would add a
// dependency without buying back anything a switch on token.Kind doesn't
// already give for free.
type Parser struct {
	tokens []token.Token
	pos    int
}

// NewParser returns a Parser over toks.
func NewParser(toks []token.Token) *Parser {
	return &Parser{tokens: toks}
}

// ParseAll parses every top-level form in toks.
func ParseAll(toks []token.Token) ([]Ast, error) {
	p := NewParser(toks)
	var forms []Ast
	for {
		p.skipComments()
		if p.atEnd() {
			return forms, nil
		}
		form, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
}

func (p *Parser) atEnd() bool { return p.pos >= len(p.tokens) }

func (p *Parser) skipComments() {
	for !p.atEnd() {
		k := p.tokens[p.pos].Kind
		if k != token.Comment && k != token.BlockComment {
			return
		}
		p.pos++
	}
}

func (p *Parser) peek() (token.Token, bool) {
	p.skipComments()
	if p.atEnd() {
		return token.Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *Parser) next() (token.Token, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

func (p *Parser) expect(k token.Kind, onMissing error) (token.Token, error) {
	tok, ok := p.next()
	if !ok {
		return token.Token{}, onMissing
	}
	if tok.Kind != k {
		return token.Token{}, token.ErrToken
	}
	return tok, nil
}

// parseForm parses a single expression: an atom or a parenthesized form.
func (p *Parser) parseForm() (Ast, error) {
	tok, ok := p.next()
	if !ok {
		return nil, token.ErrEOF
	}

	switch tok.Kind {
	case token.LeftParen:
		return p.parseList()
	case token.RightParen:
		return nil, token.ErrUnexpectedCloseParen
	case token.Dot:
		return nil, token.ErrIllegalUse
	case token.Integer:
		return Primitive{Literal{Kind: LiteralInt, Int: int64(tok.Int)}}, nil
	case token.Float:
		return Primitive{Literal{Kind: LiteralFloat, Flt: tok.Float}}, nil
	case token.String:
		return Primitive{Literal{Kind: LiteralString, Str: tok.Text}}, nil
	case token.Symbol:
		return Ident{Name: tok.Sym}, nil
	case token.Pound:
		return p.parseBool()
	case token.Quote, token.Quasiquote:
		return p.parseQuoted()
	case token.Unquote, token.UnquoteSplice:
		return nil, token.ErrIllegalUse
	default:
		return nil, token.ErrInput
	}
}

func (p *Parser) parseBool() (Ast, error) {
	tok, ok := p.next()
	if !ok || tok.Kind != token.Symbol {
		return nil, token.ErrInput
	}
	switch symbol.Name(tok.Sym) {
	case "t":
		return Primitive{Literal{Kind: LiteralBool, Bool: true}}, nil
	case "f":
		return Primitive{Literal{Kind: LiteralBool, Bool: false}}, nil
	default:
		return nil, token.ErrInput
	}
}

// parseQuoted handles 'atom and `atom. Quoting a parenthesized list is not
// supported: building a literal pair structure at parse time would need the
// VM's heap arena, which does not exist until the program runs.
func (p *Parser) parseQuoted() (Ast, error) {
	tok, ok := p.next()
	if !ok {
		return nil, token.ErrBadQuote
	}
	switch tok.Kind {
	case token.Symbol:
		return Primitive{Literal{Kind: LiteralSymbol, Sym: tok.Sym}}, nil
	case token.Integer:
		return Primitive{Literal{Kind: LiteralInt, Int: int64(tok.Int)}}, nil
	case token.Float:
		return Primitive{Literal{Kind: LiteralFloat, Flt: tok.Float}}, nil
	case token.String:
		return Primitive{Literal{Kind: LiteralString, Str: tok.Text}}, nil
	default:
		return nil, token.ErrBadQuote
	}
}

// parseList dispatches on the head of an already-opened list to one of the
// recognized special forms, the empty-list literal, or a generic Apply.
func (p *Parser) parseList() (Ast, error) {
	head, ok := p.peek()
	if !ok {
		return nil, token.ErrUnbalancedParen
	}
	if head.Kind == token.RightParen {
		p.next()
		return Primitive{Literal{Kind: LiteralNil}}, nil
	}

	if head.Kind == token.Symbol {
		switch symbol.Name(head.Sym) {
		case "define":
			p.next()
			return p.parseDefine()
		case "lambda":
			p.next()
			return p.parseLambda()
		case "if":
			p.next()
			return p.parseIf()
		case "begin":
			p.next()
			return p.parseBegin()
		}
	}

	return p.parseApply()
}

func (p *Parser) parseDefine() (Ast, error) {
	name, err := p.expect(token.Symbol, token.ErrEOF)
	if err != nil {
		return nil, err
	}
	value, err := p.parseForm()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RightParen, token.ErrUnbalancedParen); err != nil {
		return nil, err
	}
	return Define{Name: name.Sym, Value: value}, nil
}

func (p *Parser) parseLambda() (Ast, error) {
	if _, err := p.expect(token.LeftParen, token.ErrUnbalancedParen); err != nil {
		return nil, err
	}

	seen := make(map[symbol.Symbol]bool)
	var args []symbol.Symbol
	for {
		tok, ok := p.next()
		if !ok {
			return nil, token.ErrUnbalancedParen
		}
		if tok.Kind == token.RightParen {
			break
		}
		if tok.Kind != token.Symbol {
			return nil, token.ErrInput
		}
		if seen[tok.Sym] {
			return nil, token.ErrInput
		}
		seen[tok.Sym] = true
		args = append(args, tok.Sym)
	}

	var body []Ast
	for {
		tok, ok := p.peek()
		if !ok {
			return nil, token.ErrUnbalancedParen
		}
		if tok.Kind == token.RightParen {
			p.next()
			break
		}
		form, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		body = append(body, form)
	}
	if len(body) == 0 {
		return nil, token.ErrInput
	}

	return Lambda{Args: args, Body: body}, nil
}

func (p *Parser) parseIf() (Ast, error) {
	pred, err := p.parseForm()
	if err != nil {
		return nil, err
	}
	cons, err := p.parseForm()
	if err != nil {
		return nil, err
	}

	tok, ok := p.peek()
	if !ok {
		return nil, token.ErrUnbalancedParen
	}
	var alt Ast
	if tok.Kind == token.RightParen {
		alt = Primitive{Literal{Kind: LiteralBool, Bool: false}}
	} else {
		alt, err = p.parseForm()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.RightParen, token.ErrUnbalancedParen); err != nil {
		return nil, err
	}
	return If{Predicate: pred, Consequent: cons, Alternative: alt}, nil
}

func (p *Parser) parseBegin() (Ast, error) {
	var exprs []Ast
	for {
		tok, ok := p.peek()
		if !ok {
			return nil, token.ErrUnbalancedParen
		}
		if tok.Kind == token.RightParen {
			p.next()
			break
		}
		form, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, form)
	}
	return Begin{Exprs: exprs}, nil
}

func (p *Parser) parseApply() (Ast, error) {
	var exprs []Ast
	for {
		tok, ok := p.peek()
		if !ok {
			return nil, token.ErrUnbalancedParen
		}
		if tok.Kind == token.RightParen {
			p.next()
			break
		}
		form, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, form)
	}
	if len(exprs) == 0 {
		return nil, token.ErrInput
	}
	return Apply{Exprs: exprs}, nil
}
