// Package pipeline wires the compiler stages end to end: tokenize, parse,
// compile, optimize, lower, assemble. It exists because cmd/repl and
// cmd/schemec both need the same six-stage pipeline and differ only in what
// they do with the result (run it immediately, or serialize an intermediate
// form to a file).
package pipeline

import (
	"wrens.dev/schemevm/pkg/asm"
	"wrens.dev/schemevm/pkg/ast"
	"wrens.dev/schemevm/pkg/bytecode"
	"wrens.dev/schemevm/pkg/ir"
	"wrens.dev/schemevm/pkg/token"
	"wrens.dev/schemevm/pkg/value"
)

// Unit is everything one call to Compile produces: the parsed forms and the
// intermediate representation at every stage, so a caller can print
// --dump-ir/--dump-asm output without re-running earlier stages.
type Unit struct {
	Forms []ast.Ast
	IR    []ir.IR
	ASM   []asm.ASM
	Code  []bytecode.Operation
	Const []value.Value
}

// Compile runs source through every stage up to and including assembly. A
// source with no forms (blank input, or a comment-only line) produces a
// zero-value Unit with nil Code, which callers treat as a no-op.
func Compile(source string) (Unit, error) {
	toks, err := token.Tokenize(source)
	if err != nil {
		return Unit{}, err
	}

	forms, err := ast.ParseAll(toks)
	if err != nil {
		return Unit{}, err
	}
	if len(forms) == 0 {
		return Unit{}, nil
	}

	var tree ast.Ast = forms[0]
	if len(forms) > 1 {
		tree = ast.Begin{Exprs: forms}
	}
	program := ir.Optimize(ir.Compile(tree))

	lowered := asm.Lower(program)
	code, consts, err := asm.Assemble(lowered)
	if err != nil {
		return Unit{}, err
	}

	return Unit{Forms: forms, IR: program, ASM: lowered, Code: code, Const: consts}, nil
}
