package asm

import (
	"wrens.dev/schemevm/pkg/ir"
	"wrens.dev/schemevm/pkg/symbol"
	"wrens.dev/schemevm/pkg/utils"
	"wrens.dev/schemevm/pkg/value"
)

// Lowerer assigns each IR temporary to a register and walks the IR tree in
// emission order (much like the teacher's Hack Lowerer walks an asm.Program
// in DFS order), producing symbolic ASM. One Lowerer instance belongs to a
// single function body; nested Fn nodes get their own Lowerer so register
// assignments never leak across closures. Assignments are kept in an
// OrderedMap rather than a plain map so Frame can list registers in the
// order formals and temporaries were actually introduced, not Go's
// randomized map order.
type Lowerer struct {
	regs utils.OrderedMap[symbol.Symbol, Register]
	next byte // next unassigned general-purpose register, R0 is reserved for the current return value
}

// NewLowerer returns a Lowerer with formals pre-assigned to R1..Rn, the
// calling convention Call sites in this package also honor.
func NewLowerer(formals []symbol.Symbol) *Lowerer {
	l := &Lowerer{regs: utils.NewOrderedMap[symbol.Symbol, Register](), next: 1}
	for _, f := range formals {
		l.assign(f)
	}
	return l
}

// assign returns the register for s, allocating the next free one on first
// use. Register allocation here is purely emission-order: nothing is ever
// freed or reused within one function body.
func (l *Lowerer) assign(s symbol.Symbol) Register {
	if r, ok := l.regs.Get(s); ok {
		return r
	}
	r := Register(l.next)
	l.regs.Set(s, r)
	l.next++
	return r
}

// Frame returns the symbol -> register assignments made so far, in the
// order they were introduced, so a closure's registers can be listed the
// same way a programmer would read the source that produced them.
func (l *Lowerer) Frame() []utils.MapEntry[symbol.Symbol, Register] {
	var entries []utils.MapEntry[symbol.Symbol, Register]
	l.regs.Iterator()(func(_ int, entry utils.MapEntry[symbol.Symbol, Register]) bool {
		entries = append(entries, entry)
		return true
	})
	return entries
}

// Lower converts a compiled (and optionally optimized) IR sequence into
// symbolic ASM, following SPEC_FULL.md §4.5's lowering contract: the
// computed value of a Return-target ends up in R0.
func Lower(code []ir.IR) []ASM {
	return NewLowerer(nil).lowerBlock(code)
}

func (l *Lowerer) lowerBlock(code []ir.IR) []ASM {
	var out []ASM
	for _, inst := range code {
		out = append(out, l.lowerOne(inst)...)
	}
	return out
}

func (l *Lowerer) lowerOne(inst ir.IR) []ASM {
	switch n := inst.(type) {
	case ir.Label:
		return []ASM{LabelDecl{Name: symbol.Name(n.ID)}}
	case ir.Goto:
		return []ASM{Goto{Target: ToLabel(symbol.Name(n.ID))}}
	case ir.GotoIf:
		return []ASM{GotoIf{Reg: l.assign(n.Cond), Target: ToLabel(symbol.Name(n.ID))}}
	case ir.GotoIfNot:
		return []ASM{GotoIfNot{Reg: l.assign(n.Cond), Target: ToLabel(symbol.Name(n.ID))}}
	case ir.Primitive:
		return []ASM{LoadConst{Reg: l.assign(n.Dst), Index: -1, ConstValue: n.Value}}
	case ir.Lookup:
		return l.lowerLookup(n)
	case ir.Copy:
		return []ASM{Move{Dst: l.assign(n.Dst), Src: l.assign(n.Src)}}
	case ir.Move:
		return []ASM{Move{Dst: l.assign(n.Dst), Src: l.assign(n.Src)}}
	case ir.Define:
		nameOps, nameReg := l.lowerSymbolName(n.Name)
		return append(nameOps, Define{NameReg: nameReg, ValReg: l.assign(n.Src)})
	case ir.Phi:
		return nil // documentation only; the lowerer emits no code for it
	case ir.Return:
		return []ASM{Move{Dst: 0, Src: l.assign(n.Src)}, Return{}}
	case ir.Call:
		return l.lowerCall(n)
	case ir.Fn:
		return []ASM{MakeClosure{Reg: l.assign(n.Dst), Body: NewLowerer(n.Formals).lowerBlock(n.Body)}}
	default:
		panic("asm: unknown ir node in Lower")
	}
}

// lowerSymbolName materializes a compile-time identifier as a runtime Symbol
// value, following §4.5: "load a string constant into a register,
// StringToSymbol to intern it, then Lookup" — Define uses the same
// string-then-intern idiom to get a Symbol value to bind against.
func (l *Lowerer) lowerSymbolName(name symbol.Symbol) ([]ASM, Register) {
	strReg := Register(l.next)
	l.next++
	symReg := Register(l.next)
	l.next++
	return []ASM{
		LoadConst{Reg: strReg, Index: -1, ConstValue: value.String(symbol.Name(name))},
		StringToSymbol{Dst: symReg, Src: strReg},
	}, symReg
}

// lowerLookup reads n.Name. A name already holding a register in this
// Lowerer's own frame is one of the enclosing function's formal parameters
// (NewLowerer pre-assigns those to R1..Rn before the body is lowered), so it
// is read with a plain Move rather than a runtime environment walk — the
// environment never learns a formal's name at all, only its register.
// Anything else is a free reference to a define'd name and goes through the
// runtime Lookup instruction.
func (l *Lowerer) lowerLookup(n ir.Lookup) []ASM {
	if src, ok := l.regs.Get(n.Name); ok {
		return []ASM{Move{Dst: l.assign(n.Dst), Src: src}}
	}
	nameOps, nameReg := l.lowerSymbolName(n.Name)
	dst := l.assign(n.Dst)
	return append(nameOps, Lookup{Dst: dst, NameReg: nameReg})
}

// lowerCall saves every register this frame has handed out so far, places
// the arguments in R1..Rn and the operator in R0, calls, and restores the
// saved registers before copying the result out of R0. The callee allocates
// its own registers from R1 upward in the same register file, so without the
// save/restore a call would overwrite the caller's live values.
func (l *Lowerer) lowerCall(n ir.Call) []ASM {
	live := Register(l.next)
	var out []ASM
	for r := Register(1); r < live; r++ {
		out = append(out, Save{Reg: r})
	}
	for i, arg := range n.Args {
		out = append(out, Move{Dst: Register(i + 1), Src: l.assign(arg)})
	}
	out = append(out, Move{Dst: 0, Src: l.assign(n.Proc)})
	out = append(out, Call{Reg: 0})
	for r := live - 1; r >= 1; r-- {
		out = append(out, Restore{Reg: r})
	}
	dst := l.assign(n.Dst)
	if dst != 0 {
		out = append(out, Move{Dst: dst, Src: 0})
	}
	return out
}
