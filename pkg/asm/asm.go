// Package asm implements the symbolic assembly language the lowerer emits
// from IR and the two-pass assembler that packs it down into bytecode
// Operations plus a constant pool. Instruction nodes are plain structs
// implementing the marker interface ASM, following the same "typed node +
// type switch" shape the teacher's Hack Statement interface uses.
package asm

import (
	"fmt"

	"wrens.dev/schemevm/pkg/value"
)

// ASM is the marker interface every symbolic instruction implements.
type ASM interface{}

// Register names one of the machine's 32 general-purpose registers. The top
// three carry conventional roles: FP is the frame pointer, SP the stack
// pointer, XZR a hardwired read-as-zero register (see pkg/vm).
type Register byte

const (
	FP  Register = 29
	SP  Register = 30
	XZR Register = 31
)

// String renders a register the way the disassembler and debugger print it.
func (r Register) String() string {
	switch r {
	case FP:
		return "FP"
	case SP:
		return "SP"
	case XZR:
		return "XZR"
	default:
		return fmt.Sprintf("R%d", byte(r))
	}
}

// FromString parses a register name in either R<n> or alias form.
func FromString(s string) (Register, error) {
	switch s {
	case "FP":
		return FP, nil
	case "SP":
		return SP, nil
	case "XZR":
		return XZR, nil
	}
	if len(s) < 2 || s[0] != 'R' {
		return 0, fmt.Errorf("asm: malformed register %q", s)
	}
	var n byte
	if _, err := fmt.Sscanf(s, "R%d", &n); err != nil {
		return 0, fmt.Errorf("asm: malformed register %q: %w", s, err)
	}
	if n > 31 {
		return 0, fmt.Errorf("asm: register out of range %q", s)
	}
	return Register(n), nil
}

// GotoValue is the target of a Goto/GotoIf/GotoIfNot: either a named label
// or the sentinel meaning "jump through the continue register".
type GotoValue struct {
	Label               string
	UseContinueRegister bool
}

// ToLabel builds a GotoValue targeting a named label.
func ToLabel(label string) GotoValue { return GotoValue{Label: label} }

// ViaContinueRegister builds the "use the continue register" sentinel.
func ViaContinueRegister() GotoValue { return GotoValue{UseContinueRegister: true} }

// --- label declaration ---

// LabelDecl declares a jump target at the current emission position.
type LabelDecl struct{ Name string }

// --- stack / continue-register manipulation ---

type Save struct{ Reg Register }
type Restore struct{ Reg Register }
type ReadStack struct {
	Reg    Register
	Offset uint16
}
type LoadContinue struct{ Label string }
type SaveContinue struct{}
type RestoreContinue struct{}

// --- register transfers ---

// LoadConst carries the literal value to embed. Lower leaves Index at -1
// ("not yet assigned") and sets ConstValue to the literal; Assemble does not
// read Index: it appends ConstValue to the constant pool in program order and
// encodes that pool position in the payload words.
type LoadConst struct {
	Reg        Register
	Index      int
	ConstValue value.Value
}

type Move struct{ Dst, Src Register }

// MakeClosure carries the closure body as nested ASM; Assemble recursively
// assembles it into its own Operation stream, then records the resulting
// Lambda template as a constant-pool entry of its own.
type MakeClosure struct {
	Reg  Register
	Body []ASM
}

// --- arithmetic ---

type Add struct{ Dst, Left, Right Register }
type Sub struct{ Dst, Left, Right Register }
type Mul struct{ Dst, Left, Right Register }
type Eq struct{ Dst, Left, Right Register }
type LT struct{ Dst, Left, Right Register }

// --- pair operations ---

type Cons struct{ Dst, Car, Cdr Register }
type Car struct{ Dst, Src Register }
type Cdr struct{ Dst, Src Register }
type SetCar struct{ Reg, Val Register }
type SetCdr struct{ Reg, Val Register }

// --- environment operations ---

type Define struct{ NameReg, ValReg Register }
type Lookup struct{ Dst, NameReg Register }
type Set struct{ NameReg, ValReg Register }

// --- control flow ---

type Goto struct{ Target GotoValue }
type GotoIf struct {
	Reg    Register
	Target GotoValue
}
type GotoIfNot struct {
	Reg    Register
	Target GotoValue
}
type Call struct{ Reg Register }
type TailCall struct{ Reg Register }
type Return struct{}

// --- symbol conversion ---

type StringToSymbol struct{ Dst, Src Register }
