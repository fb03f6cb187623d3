package value

import (
	"fmt"

	"wrens.dev/schemevm/pkg/symbol"
)

// Environment is a frame of symbol->value bindings with a parent link,
// forming the lexical scope chain. The VM is single-threaded, so frames
// need no locking of their own (the symbol interner is the only shared,
// concurrently-guarded state in the system).
type Environment struct {
	bindings map[symbol.Symbol]Value
	parent   *Environment
}

// NewEnvironment returns an empty top-level frame.
func NewEnvironment() *Environment {
	return &Environment{bindings: make(map[symbol.Symbol]Value)}
}

// Extend creates a child frame with empty bindings pointing at e.
func (e *Environment) Extend() *Environment {
	return &Environment{bindings: make(map[symbol.Symbol]Value), parent: e}
}

// LookupVariableValue walks the chain from e outward. The bool result is
// false for an unbound name; callers that want the reference VM's
// "unbound lookup yields Void" behavior check it themselves (see pkg/vm).
func (e *Environment) LookupVariableValue(name symbol.Symbol) (Value, bool) {
	if v, ok := e.bindings[name]; ok {
		return v, true
	}
	if e.parent != nil {
		return e.parent.LookupVariableValue(name)
	}
	return Value{}, false
}

// DefineVariable inserts or overwrites name in e's own frame only; it never
// walks the parent chain.
func (e *Environment) DefineVariable(name symbol.Symbol, v Value) {
	e.bindings[name] = v
}

// SetVariableValue walks the chain looking for the nearest existing binding
// of name and overwrites it. Unlike LookupVariableValue, an unbound name is
// fatal: the reference VM treats set! on a free variable as a programmer
// error, not a recoverable one, so this is surfaced as a real error rather
// than silently defining the variable or returning Void.
func (e *Environment) SetVariableValue(name symbol.Symbol, v Value) error {
	if _, ok := e.bindings[name]; ok {
		e.bindings[name] = v
		return nil
	}
	if e.parent != nil {
		return e.parent.SetVariableValue(name, v)
	}
	// A symbol from an interner other than the process-wide one has no name
	// there; report its numeric id instead of letting symbol.Name panic.
	detail := fmt.Sprintf("symbol %d", int(name))
	func() {
		defer func() { recover() }()
		detail = symbol.Name(name)
	}()
	return fmt.Errorf("unbound variable in set!: %s", detail)
}

// ProcedureLocal returns an independent copy of e: a shallow clone of its
// bindings plus the same parent pointer. It is not a child frame — a call
// starts from a fresh copy of the callee's defining frame so that mutations
// during one call (or a recursive call) don't leak into sibling calls that
// share the same starting snapshot.
func (e *Environment) ProcedureLocal() *Environment {
	cp := make(map[symbol.Symbol]Value, len(e.bindings))
	for k, v := range e.bindings {
		cp[k] = v
	}
	return &Environment{bindings: cp, parent: e.parent}
}

// GetDefinitions returns every name bound in e or any ancestor frame.
func (e *Environment) GetDefinitions() []symbol.Symbol {
	names := make([]symbol.Symbol, 0, len(e.bindings))
	for k := range e.bindings {
		names = append(names, k)
	}
	if e.parent != nil {
		names = append(names, e.parent.GetDefinitions()...)
	}
	return names
}
