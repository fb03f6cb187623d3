package value

import "wrens.dev/schemevm/pkg/bytecode"

// Lambda is a compiled procedure: its operation stream, the constant pool
// that stream's LoadConst/MakeClosure instructions index into, and the
// environment captured at the point the closure was created. MakeClosure
// patches Env to a fresh child of the current environment each time the
// closure value is materialized; the template stored in a constant pool
// before that point carries a nil Env.
type Lambda struct {
	Code   []bytecode.Operation
	Consts []Value
	Env    *Environment
}

// WithEnv returns a copy of l with Env replaced, used by MakeClosure to
// capture the environment live at closure-creation time without mutating
// a template shared by every call site that references the same constant.
func (l *Lambda) WithEnv(env *Environment) *Lambda {
	return &Lambda{Code: l.Code, Consts: l.Consts, Env: env}
}
