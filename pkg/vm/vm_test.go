package vm_test

import (
	"testing"

	"wrens.dev/schemevm/pkg/ast"
	"wrens.dev/schemevm/pkg/asm"
	"wrens.dev/schemevm/pkg/ir"
	"wrens.dev/schemevm/pkg/symbol"
	"wrens.dev/schemevm/pkg/value"
	"wrens.dev/schemevm/pkg/vm"
)

// compileAndRun carries a top-level form all the way through Compile ->
// Optimize -> Lower -> Assemble -> a fresh VM seeded with InitEnv, and
// returns whatever ends up in R0 once the machine halts.
func compileAndRun(t *testing.T, tree ast.Ast) value.Value {
	t.Helper()

	program := ir.Optimize(ir.Compile(tree))
	asmCode := asm.Lower(program)
	ops, consts, err := asm.Assemble(asmCode)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	m := vm.New()
	m.AssignEnvironment(vm.InitEnv(m))
	m.LoadCode(ops, consts)

	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return m.LoadRegister(0)
}

func intLit(n int64) ast.Ast { return ast.Primitive{Value: ast.Literal{Kind: ast.LiteralInt, Int: n}} }
func boolLit(b bool) ast.Ast { return ast.Primitive{Value: ast.Literal{Kind: ast.LiteralBool, Bool: b}} }

func apply(name string, args ...ast.Ast) ast.Ast {
	return applySym(symbol.Intern(name), args...)
}

func applySym(sym symbol.Symbol, args ...ast.Ast) ast.Ast {
	exprs := append([]ast.Ast{ast.Ident{Name: sym}}, args...)
	return ast.Apply{Exprs: exprs}
}

func TestRunArithmeticAddition(t *testing.T) {
	result := compileAndRun(t, apply("+", intLit(1), intLit(2)))
	if !result.IsInteger() || result.AsInteger() != 3 {
		t.Fatalf("got %v, want Integer(3)", result)
	}
}

func TestRunNestedArithmetic(t *testing.T) {
	// (* (+ 1 2) (- 5 1)) => 12
	result := compileAndRun(t, apply("*",
		apply("+", intLit(1), intLit(2)),
		apply("-", intLit(5), intLit(1)),
	))
	if !result.IsInteger() || result.AsInteger() != 12 {
		t.Fatalf("got %v, want Integer(12)", result)
	}
}

func TestRunConsCarCdr(t *testing.T) {
	pair := compileAndRun(t, apply("cons", intLit(7), intLit(8)))
	if !pair.IsPair() {
		t.Fatalf("got %v, want a Pair", pair)
	}
	if car := pair.Car(); !car.IsInteger() || car.AsInteger() != 7 {
		t.Fatalf("got car=%v, want Integer(7)", car)
	}
	if cdr := pair.Cdr(); !cdr.IsInteger() || cdr.AsInteger() != 8 {
		t.Fatalf("got cdr=%v, want Integer(8)", cdr)
	}

	headValue := compileAndRun(t, apply("car", apply("cons", intLit(9), intLit(10))))
	if !headValue.IsInteger() || headValue.AsInteger() != 9 {
		t.Fatalf("got %v, want Integer(9)", headValue)
	}
}

func TestRunIfTrueBranch(t *testing.T) {
	result := compileAndRun(t, ast.If{
		Predicate:   boolLit(true),
		Consequent:  intLit(1),
		Alternative: intLit(2),
	})
	if !result.IsInteger() || result.AsInteger() != 1 {
		t.Fatalf("got %v, want Integer(1)", result)
	}
}

func TestRunIfFalseBranch(t *testing.T) {
	result := compileAndRun(t, ast.If{
		Predicate:   boolLit(false),
		Consequent:  intLit(1),
		Alternative: intLit(2),
	})
	if !result.IsInteger() || result.AsInteger() != 2 {
		t.Fatalf("got %v, want Integer(2)", result)
	}
}

func TestRunLambdaApplication(t *testing.T) {
	// ((lambda (x y) (+ x y)) 3 4) => 7
	square := ast.Lambda{
		Args: []symbol.Symbol{symbol.Intern("x-vm-lambda"), symbol.Intern("y-vm-lambda")},
		Body: []ast.Ast{apply("+", ast.Ident{Name: symbol.Intern("x-vm-lambda")}, ast.Ident{Name: symbol.Intern("y-vm-lambda")})},
	}
	result := compileAndRun(t, ast.Apply{Exprs: []ast.Ast{square, intLit(3), intLit(4)}})
	if !result.IsInteger() || result.AsInteger() != 7 {
		t.Fatalf("got %v, want Integer(7)", result)
	}
}

func TestRunDefineThenLookup(t *testing.T) {
	name := symbol.Intern("n-vm-define")
	result := compileAndRun(t, ast.Begin{Exprs: []ast.Ast{
		ast.Define{Name: name, Value: intLit(41)},
		apply("+", ast.Ident{Name: name}, intLit(1)),
	}})
	if !result.IsInteger() || result.AsInteger() != 42 {
		t.Fatalf("got %v, want Integer(42)", result)
	}
}

func TestLookupUnboundYieldsVoid(t *testing.T) {
	result := compileAndRun(t, ast.Ident{Name: symbol.Intern("never-defined-vm-lookup")})
	if !result.IsVoid() {
		t.Fatalf("got %v, want Void", result)
	}
}

func TestCallOnNonLambdaIsNoOp(t *testing.T) {
	m := vm.New()
	m.AssignEnvironment(vm.InitEnv(m))
	m.AssignRegister(0, value.Integer(99))
	ops, consts, err := asm.Assemble([]asm.ASM{asm.Call{Reg: 0}})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	m.LoadCode(ops, consts)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := m.LoadRegister(0); !got.IsInteger() || got.AsInteger() != 99 {
		t.Fatalf("got %v, want Integer(99) (Call on a non-Lambda is a no-op)", got)
	}
}

func TestSetOnUnboundIsFatal(t *testing.T) {
	m := vm.New()
	m.AssignEnvironment(vm.InitEnv(m))
	ops, consts, err := asm.Assemble([]asm.ASM{
		asm.LoadConst{Reg: 1, ConstValue: value.String("never-defined-vm-set")},
		asm.StringToSymbol{Dst: 1, Src: 1},
		asm.LoadConst{Reg: 2, ConstValue: value.Integer(1)},
		asm.Set{NameReg: 1, ValReg: 2},
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	m.LoadCode(ops, consts)
	if err := m.Run(); err == nil {
		t.Fatal("expected set! on an unbound variable to be a fatal error")
	}
}

func TestStackUnderflowIsFatal(t *testing.T) {
	m := vm.New()
	m.AssignEnvironment(vm.InitEnv(m))
	ops, consts, err := asm.Assemble([]asm.ASM{asm.Restore{Reg: 0}})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	m.LoadCode(ops, consts)
	if err := m.Run(); err == nil {
		t.Fatal("expected Restore on an empty stack to be a fatal error")
	}
}

func TestRunFactorialRecursion(t *testing.T) {
	// (define fact (lambda (n) (if (< n 2) 1 (* n (fact (- n 1)))))) (fact 5) => 120
	fact := symbol.Intern("fact-vm-recursion")
	n := symbol.Intern("n-vm-recursion")
	lambda := ast.Lambda{
		Args: []symbol.Symbol{n},
		Body: []ast.Ast{ast.If{
			Predicate:  apply("<", ast.Ident{Name: n}, intLit(2)),
			Consequent: intLit(1),
			Alternative: apply("*",
				ast.Ident{Name: n},
				applySym(fact, apply("-", ast.Ident{Name: n}, intLit(1))),
			),
		}},
	}
	result := compileAndRun(t, ast.Begin{Exprs: []ast.Ast{
		ast.Define{Name: fact, Value: lambda},
		applySym(fact, intLit(5)),
	}})
	if !result.IsInteger() || result.AsInteger() != 120 {
		t.Fatalf("got %v, want Integer(120)", result)
	}
}

func TestRunFibonacciRecursion(t *testing.T) {
	// (define fib (lambda (n) (if (< n 2) n (+ (fib (- n 1)) (fib (- n 2)))))) (fib 7) => 13
	fib := symbol.Intern("fib-vm-recursion")
	n := symbol.Intern("n-vm-fib")
	lambda := ast.Lambda{
		Args: []symbol.Symbol{n},
		Body: []ast.Ast{ast.If{
			Predicate:  apply("<", ast.Ident{Name: n}, intLit(2)),
			Consequent: ast.Ident{Name: n},
			Alternative: apply("+",
				applySym(fib, apply("-", ast.Ident{Name: n}, intLit(1))),
				applySym(fib, apply("-", ast.Ident{Name: n}, intLit(2))),
			),
		}},
	}
	result := compileAndRun(t, ast.Begin{Exprs: []ast.Ast{
		ast.Define{Name: fib, Value: lambda},
		applySym(fib, intLit(7)),
	}})
	if !result.IsInteger() || result.AsInteger() != 13 {
		t.Fatalf("got %v, want Integer(13)", result)
	}
}

func TestRunSetCarMutatesSharedPair(t *testing.T) {
	// (define p (cons 1 2)) (set-car! p 9) (car p) => 9
	p := symbol.Intern("p-vm-set-car")
	result := compileAndRun(t, ast.Begin{Exprs: []ast.Ast{
		ast.Define{Name: p, Value: apply("cons", intLit(1), intLit(2))},
		apply("set-car!", ast.Ident{Name: p}, intLit(9)),
		apply("car", ast.Ident{Name: p}),
	}})
	if !result.IsInteger() || result.AsInteger() != 9 {
		t.Fatalf("got %v, want Integer(9)", result)
	}
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	m := vm.New()
	m.AssignEnvironment(vm.InitEnv(m))
	m.AssignRegister(1, value.Integer(55))
	ops, consts, err := asm.Assemble([]asm.ASM{
		asm.Save{Reg: 1},
		asm.Restore{Reg: 2},
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	m.LoadCode(ops, consts)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := m.LoadRegister(2); !got.IsInteger() || got.AsInteger() != 55 {
		t.Fatalf("got %v, want Integer(55)", got)
	}
	if m.StackSize() != 0 {
		t.Fatalf("got stack size %d, want 0 after a balanced save/restore", m.StackSize())
	}
}
