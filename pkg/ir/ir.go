// Package ir defines the three-address intermediate form the compiler emits
// from an ast.Ast tree, the optimization passes that simplify it, and a
// pretty-printer used by debugging dumps. Temporaries and labels are
// symbol.Symbol values drawn from a distinct synthesized namespace (see
// newTemp/newLabel in compile.go); the Name of a Lookup or Define and the
// Formals of an Fn are the identifiers the program's source used.
package ir

import (
	"wrens.dev/schemevm/pkg/symbol"
	"wrens.dev/schemevm/pkg/value"
)

// IR is the marker interface implemented by every three-address instruction.
// Consumers switch on the concrete type, following the same idiom as
// ast.Ast and pkg/asm's ASM.
type IR interface{}

// Label marks a jump target.
type Label struct{ ID symbol.Symbol }

// Goto is an unconditional jump to ID.
type Goto struct{ ID symbol.Symbol }

// GotoIf jumps to ID when Cond holds exactly #t; any other value falls through.
type GotoIf struct {
	ID   symbol.Symbol
	Cond symbol.Symbol
}

// GotoIfNot jumps to ID when Cond holds a falsy value.
type GotoIfNot struct {
	ID   symbol.Symbol
	Cond symbol.Symbol
}

// Primitive loads a compile-time constant into Dst.
type Primitive struct {
	Dst   symbol.Symbol
	Value value.Value
}

// Lookup reads the current environment's binding for Name into Dst.
type Lookup struct {
	Dst  symbol.Symbol
	Name symbol.Symbol
}

// Copy is a register-to-register move inserted by the optimizer in place of
// a Lookup that the formal-parameter or lookup-hoisting passes proved
// redundant; Src need not flow through the environment at all.
type Copy struct {
	Dst symbol.Symbol
	Src symbol.Symbol
}

// Define binds Name to Src in the current frame. Dst is unused by the
// instruction itself but kept so Define fits the same "one destination
// temporary" shape as every other IR node; the lowerer ignores it.
type Define struct {
	Dst  symbol.Symbol
	Name symbol.Symbol
	Src  symbol.Symbol
}

// Move copies Src into Dst. Unlike Copy (an optimizer rewrite of a proven-
// redundant Lookup), Move is emitted directly by the compiler to join the
// consequent/alternative arms of an If into a single target temporary.
type Move struct {
	Dst symbol.Symbol
	Src symbol.Symbol
}

// Phi documents the SSA join point after an If: both LeftSrc (from LeftBlock)
// and RightSrc (from RightBlock) were moved into Dst by the two arms. It is
// shown by the pretty-printer and is not otherwise checked; the lowerer
// emits no code for it.
type Phi struct {
	Dst        symbol.Symbol
	LeftSrc    symbol.Symbol
	LeftBlock  []IR
	RightSrc   symbol.Symbol
	RightBlock []IR
}

// Return yields Src as the result of the enclosing function body.
type Return struct{ Src symbol.Symbol }

// Call invokes Proc with Args, leaving the result in Dst.
type Call struct {
	Dst  symbol.Symbol
	Proc symbol.Symbol
	Args []symbol.Symbol
}

// Fn produces a closure over Body, binding Dst to it. Formals lists the
// parameter names in call order.
type Fn struct {
	Dst     symbol.Symbol
	Formals []symbol.Symbol
	Body    []IR
}
