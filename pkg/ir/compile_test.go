package ir_test

import (
	"testing"

	"wrens.dev/schemevm/pkg/ast"
	"wrens.dev/schemevm/pkg/ir"
	"wrens.dev/schemevm/pkg/symbol"
)

func TestCompilePrimitiveEndsWithReturn(t *testing.T) {
	tree := ast.Primitive{Value: ast.Literal{Kind: ast.LiteralInt, Int: 42}}
	code := ir.Compile(tree)

	if len(code) != 2 {
		t.Fatalf("got %d instructions, want 2: %#v", len(code), code)
	}
	prim, ok := code[0].(ir.Primitive)
	if !ok {
		t.Fatalf("code[0] = %#v, want ir.Primitive", code[0])
	}
	ret, ok := code[1].(ir.Return)
	if !ok || ret.Src != prim.Dst {
		t.Fatalf("code[1] = %#v, want Return of %v", code[1], prim.Dst)
	}
}

func TestCompileIdentEmitsLookup(t *testing.T) {
	name := symbol.Intern("foo-compile-ident")
	tree := ast.Ident{Name: name}
	code := ir.Compile(tree)

	lookup, ok := code[0].(ir.Lookup)
	if !ok || lookup.Name != name {
		t.Fatalf("code[0] = %#v, want Lookup of %v", code[0], name)
	}
}

func TestCompileDefineAppendsDefine(t *testing.T) {
	name := symbol.Intern("x-compile-define")
	tree := ast.Define{Name: name, Value: ast.Primitive{Value: ast.Literal{Kind: ast.LiteralInt, Int: 1}}}
	code := ir.Compile(tree)

	found := false
	for _, inst := range code {
		if def, ok := inst.(ir.Define); ok && def.Name == name {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a Define(%v, ...) instruction in %#v", name, code)
	}
}

func TestCompileIfEmitsPhiAndLabels(t *testing.T) {
	tree := ast.If{
		Predicate:   ast.Primitive{Value: ast.Literal{Kind: ast.LiteralBool, Bool: true}},
		Consequent:  ast.Primitive{Value: ast.Literal{Kind: ast.LiteralInt, Int: 1}},
		Alternative: ast.Primitive{Value: ast.Literal{Kind: ast.LiteralInt, Int: 2}},
	}
	code := ir.Compile(tree)

	var labels, phis, gotoIfNots int
	for _, inst := range code {
		switch inst.(type) {
		case ir.Label:
			labels++
		case ir.Phi:
			phis++
		case ir.GotoIfNot:
			gotoIfNots++
		}
	}
	if labels != 2 || phis != 1 || gotoIfNots != 1 {
		t.Fatalf("got labels=%d phis=%d gotoIfNots=%d, want 2,1,1: %#v", labels, phis, gotoIfNots, code)
	}
}

func TestCompileLambdaEmitsFnWithReturn(t *testing.T) {
	arg := symbol.Intern("n-compile-lambda")
	tree := ast.Lambda{
		Args: []symbol.Symbol{arg},
		Body: []ast.Ast{ast.Ident{Name: arg}},
	}
	code := ir.Compile(tree)

	fn, ok := code[0].(ir.Fn)
	if !ok {
		t.Fatalf("code[0] = %#v, want ir.Fn", code[0])
	}
	if len(fn.Formals) != 1 || fn.Formals[0] != arg {
		t.Fatalf("got formals %v, want [%v]", fn.Formals, arg)
	}
	last := fn.Body[len(fn.Body)-1]
	if _, ok := last.(ir.Return); !ok {
		t.Fatalf("fn body must end with Return, got %#v", last)
	}
}

func TestCompileApplyEmitsCallWithArgCount(t *testing.T) {
	op := symbol.Intern("+compile-apply")
	tree := ast.Apply{Exprs: []ast.Ast{
		ast.Ident{Name: op},
		ast.Primitive{Value: ast.Literal{Kind: ast.LiteralInt, Int: 1}},
		ast.Primitive{Value: ast.Literal{Kind: ast.LiteralInt, Int: 2}},
	}}
	code := ir.Compile(tree)

	var call *ir.Call
	for i := range code {
		if c, ok := code[i].(ir.Call); ok {
			call = &c
		}
	}
	if call == nil {
		t.Fatalf("expected a Call instruction in %#v", code)
	}
	if len(call.Args) != 2 {
		t.Fatalf("got %d call args, want 2", len(call.Args))
	}
}

func TestCompileSingleAssignment(t *testing.T) {
	tree := ast.Begin{Exprs: []ast.Ast{
		ast.Primitive{Value: ast.Literal{Kind: ast.LiteralInt, Int: 1}},
		ast.Primitive{Value: ast.Literal{Kind: ast.LiteralInt, Int: 2}},
		ast.Primitive{Value: ast.Literal{Kind: ast.LiteralInt, Int: 3}},
	}}
	code := ir.Compile(tree)

	dests := make(map[symbol.Symbol]int)
	for _, inst := range code {
		if p, ok := inst.(ir.Primitive); ok {
			dests[p.Dst]++
		}
	}
	for dst, count := range dests {
		if count != 1 {
			t.Fatalf("temporary %v assigned %d times, want exactly 1", dst, count)
		}
	}
}
