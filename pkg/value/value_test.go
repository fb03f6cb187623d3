package value_test

import (
	"testing"

	"wrens.dev/schemevm/pkg/symbol"
	"wrens.dev/schemevm/pkg/value"
)

func TestImmediateEquality(t *testing.T) {
	test := func(a, b value.Value, want bool) {
		t.Helper()
		if got := a.Equal(b); got != want {
			t.Errorf("%v.Equal(%v) = %v, want %v", a, b, got, want)
		}
	}

	test(value.Integer(3), value.Integer(3), true)
	test(value.Integer(3), value.Integer(4), false)
	test(value.Float(1.5), value.Float(1.5), true)
	test(value.Bool(true), value.Bool(true), true)
	test(value.Bool(true), value.Bool(false), false)
	test(value.Nil(), value.Nil(), true)
	test(value.Integer(3), value.Float(3), false)
	test(value.String("a"), value.String("a"), true)
}

func TestPairIdentityEquality(t *testing.T) {
	a := value.Cons(value.Integer(1), value.Integer(2))
	b := value.Cons(value.Integer(1), value.Integer(2))
	if a.Equal(b) {
		t.Fatal("two distinct cons cells with equal contents should not be Eq")
	}
	if !a.Equal(a) {
		t.Fatal("a pair should be Eq to itself")
	}
}

func TestPairAliasingThroughSetCar(t *testing.T) {
	p := value.Cons(value.Integer(1), value.Integer(2))
	alias := p // Value is a small struct copy, but it shares the same arena+index
	p.SetCar(value.Integer(9))
	if got := alias.Car(); got.AsInteger() != 9 {
		t.Fatalf("alias.Car() = %v, want 9 (mutation must be visible through every handle)", got)
	}
}

func TestCarOfNonPairIsErrorValue(t *testing.T) {
	got := value.Integer(5).Car()
	if !got.IsError() || got.ErrorKind() != value.ErrPairExpected {
		t.Fatalf("got %v, want a PairExpected error value", got)
	}
}

func TestEnvironmentLookupAndDefine(t *testing.T) {
	in := symbol.NewInterner()
	x := in.Intern("x")

	env := value.NewEnvironment()
	if _, ok := env.LookupVariableValue(x); ok {
		t.Fatal("expected unbound lookup to fail")
	}

	env.DefineVariable(x, value.Integer(42))
	got, ok := env.LookupVariableValue(x)
	if !ok || got.AsInteger() != 42 {
		t.Fatalf("got %v, %v; want 42, true", got, ok)
	}
}

func TestEnvironmentExtendWalksParent(t *testing.T) {
	in := symbol.NewInterner()
	x := in.Intern("x")

	parent := value.NewEnvironment()
	parent.DefineVariable(x, value.Integer(1))
	child := parent.Extend()

	got, ok := child.LookupVariableValue(x)
	if !ok || got.AsInteger() != 1 {
		t.Fatalf("child should see parent's binding, got %v, %v", got, ok)
	}
}

func TestSetVariableValueUpdatesNearestBinding(t *testing.T) {
	in := symbol.NewInterner()
	x := in.Intern("x")

	parent := value.NewEnvironment()
	parent.DefineVariable(x, value.Integer(1))
	child := parent.Extend()

	if err := child.SetVariableValue(x, value.Integer(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := parent.LookupVariableValue(x)
	if got.AsInteger() != 2 {
		t.Fatalf("parent's binding should have been updated, got %v", got)
	}
}

func TestSetVariableValueOnUnboundIsFatal(t *testing.T) {
	in := symbol.NewInterner()
	x := in.Intern("x")

	env := value.NewEnvironment()
	if err := env.SetVariableValue(x, value.Integer(1)); err == nil {
		t.Fatal("expected an error for set! on an unbound variable")
	}
}

func TestProcedureLocalIsIndependentCopy(t *testing.T) {
	in := symbol.NewInterner()
	x := in.Intern("x")

	base := value.NewEnvironment()
	base.DefineVariable(x, value.Integer(1))

	callA := base.ProcedureLocal()
	callB := base.ProcedureLocal()

	callA.DefineVariable(x, value.Integer(100))

	gotB, _ := callB.LookupVariableValue(x)
	if gotB.AsInteger() != 1 {
		t.Fatalf("mutating callA's copy leaked into callB: got %v", gotB)
	}
	gotBase, _ := base.LookupVariableValue(x)
	if gotBase.AsInteger() != 1 {
		t.Fatalf("mutating callA's copy leaked into the defining frame: got %v", gotBase)
	}
}

func TestPrintedForms(t *testing.T) {
	in := symbol.NewInterner()
	foo := in.Intern("foo")

	test := func(v value.Value, want string) {
		t.Helper()
		if got := v.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}

	test(value.Nil(), "()")
	test(value.Bool(true), "#t")
	test(value.Bool(false), "#f")
	test(value.Integer(42), "42")
	test(value.String("hi"), `"hi"`)
	_ = foo // interner kept separate from the default used by value.SymbolV in production
}

func TestListPrinting(t *testing.T) {
	list := value.Cons(value.Integer(1), value.Cons(value.Integer(2), value.Nil()))
	if got, want := list.String(), "(1 2)"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	improper := value.Cons(value.Integer(1), value.Integer(2))
	if got, want := improper.String(), "(1 . 2)"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
