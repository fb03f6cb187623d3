package ir

import (
	"fmt"
	"sync/atomic"

	"wrens.dev/schemevm/pkg/ast"
	"wrens.dev/schemevm/pkg/symbol"
	"wrens.dev/schemevm/pkg/value"
)

var (
	tempCounter  uint64
	labelCounter uint64
)

// newTemp allocates a fresh single-assignment temporary, interned as
// "#x<n>". The tokenizer reads a leading '#' as a Pound token, so no plain
// source identifier can take that name, and the counter keeps temporaries
// distinct from each other.
func newTemp() symbol.Symbol {
	n := atomic.AddUint64(&tempCounter, 1) - 1
	return symbol.Intern(fmt.Sprintf("#x%d", n))
}

// newLabel allocates a fresh jump-target name, interned as "#L<n>" in the
// same '#'-prefixed namespace as temporaries.
func newLabel() symbol.Symbol {
	n := atomic.AddUint64(&labelCounter, 1) - 1
	return symbol.Intern(fmt.Sprintf("#L%d", n))
}

// Compile lowers a single top-level Ast into three-address IR, ending with a
// Return of the computed value.
func Compile(tree ast.Ast) []IR {
	target := newTemp()
	code := compile(tree, target)
	return append(code, Return{Src: target})
}

func compile(tree ast.Ast, target symbol.Symbol) []IR {
	switch n := tree.(type) {
	case ast.Primitive:
		return []IR{Primitive{Dst: target, Value: literalValue(n.Value)}}
	case ast.Ident:
		return []IR{Lookup{Dst: target, Name: n.Name}}
	case ast.Define:
		code := compile(n.Value, target)
		return append(code, Define{Dst: newTemp(), Name: n.Name, Src: target})
	case ast.If:
		return compileIf(n, target)
	case ast.Begin:
		return compileSequence(n.Exprs, target)
	case ast.Lambda:
		return compileLambda(n, target)
	case ast.Apply:
		return compileApply(n, target)
	default:
		panic(fmt.Sprintf("ir: unknown ast node %T", tree))
	}
}

func literalValue(lit ast.Literal) value.Value {
	switch lit.Kind {
	case ast.LiteralInt:
		return value.Integer(lit.Int)
	case ast.LiteralFloat:
		return value.Float(lit.Flt)
	case ast.LiteralString:
		return value.String(lit.Str)
	case ast.LiteralBool:
		return value.Bool(lit.Bool)
	case ast.LiteralSymbol:
		return value.SymbolV(lit.Sym)
	case ast.LiteralNil:
		return value.Nil()
	default:
		panic(fmt.Sprintf("ir: unknown literal kind %v", lit.Kind))
	}
}

func compileIf(n ast.If, target symbol.Symbol) []IR {
	altLabel := newLabel()
	afterLabel := newLabel()

	predTmp := newTemp()
	code := compile(n.Predicate, predTmp)
	code = append(code, GotoIfNot{ID: altLabel, Cond: predTmp})

	consTmp := newTemp()
	consBlock := compile(n.Consequent, consTmp)
	consBlock = append(consBlock, Move{Dst: target, Src: consTmp})
	consBlock = append(consBlock, Goto{ID: afterLabel})
	code = append(code, consBlock...)

	code = append(code, Label{ID: altLabel})
	altTmp := newTemp()
	altBlock := compile(n.Alternative, altTmp)
	altBlock = append(altBlock, Move{Dst: target, Src: altTmp})
	code = append(code, altBlock...)

	code = append(code, Label{ID: afterLabel})
	code = append(code, Phi{
		Dst: target, LeftSrc: consTmp, LeftBlock: consBlock,
		RightSrc: altTmp, RightBlock: altBlock,
	})
	return code
}

func compileSequence(exprs []ast.Ast, target symbol.Symbol) []IR {
	var code []IR
	for i, e := range exprs {
		if i == len(exprs)-1 {
			code = append(code, compile(e, target)...)
		} else {
			code = append(code, compile(e, newTemp())...)
		}
	}
	return code
}

func compileLambda(n ast.Lambda, target symbol.Symbol) []IR {
	ret := newTemp()
	body := compileSequence(n.Body, ret)
	body = append(body, Return{Src: ret})
	return []IR{Fn{Dst: target, Formals: n.Args, Body: body}}
}

func compileApply(n ast.Apply, target symbol.Symbol) []IR {
	op := n.Exprs[0]
	args := n.Exprs[1:]

	var code []IR
	argTmps := make([]symbol.Symbol, len(args))
	for i, arg := range args {
		argTmp := newTemp()
		code = append(code, compile(arg, argTmp)...)
		argTmps[i] = argTmp
	}

	opTmp := newTemp()
	code = append(code, compile(op, opTmp)...)
	code = append(code, Call{Dst: target, Proc: opTmp, Args: argTmps})
	return code
}
