// Package ast defines the typed tree produced by the parser from a token
// stream, recognizing the special forms define, lambda, if, and begin, with
// everything else treated as a generic application.
package ast

import "wrens.dev/schemevm/pkg/symbol"

// Ast is the marker interface implemented by every node kind. Consumers
// switch on the concrete type rather than calling methods on it.
type Ast interface{}

// LiteralKind discriminates the payload carried by a Primitive node.
type LiteralKind int

const (
	LiteralInt LiteralKind = iota
	LiteralFloat
	LiteralString
	LiteralBool
	LiteralSymbol
	LiteralNil
)

// Literal is the compile-time representation of a self-evaluating datum.
// The compiler turns this into a runtime value.Value when it emits an
// IR.Primitive instruction; ast itself stays free of the value package so
// the frontend has no dependency on how the VM represents data.
type Literal struct {
	Kind LiteralKind
	Int  int64
	Flt  float64
	Str  string
	Sym  symbol.Symbol
	Bool bool
}

// Primitive is a literal datum: a number, string, boolean, quoted symbol, or
// the empty list.
type Primitive struct {
	Value Literal
}

// Ident is a variable reference.
type Ident struct {
	Name symbol.Symbol
}

// Define binds Name to the result of evaluating Value in the current frame.
type Define struct {
	Name  symbol.Symbol
	Value Ast
}

// Lambda is a closure-producing form. Args has no duplicate symbols; Body
// has at least one expression.
type Lambda struct {
	Args []symbol.Symbol
	Body []Ast
}

// If is always ternary at this level; a missing alternative branch is
// desugared by the parser into a literal #f.
type If struct {
	Predicate   Ast
	Consequent  Ast
	Alternative Ast
}

// Begin evaluates each expression in order, yielding the value of the last.
type Begin struct {
	Exprs []Ast
}

// Apply is a procedure call. Exprs[0] is the operator; the rest are the
// argument expressions. Always has at least one element.
type Apply struct {
	Exprs []Ast
}
