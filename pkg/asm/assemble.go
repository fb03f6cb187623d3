package asm

import (
	"fmt"

	"github.com/samber/lo"

	"wrens.dev/schemevm/pkg/bytecode"
	"wrens.dev/schemevm/pkg/value"
)

// Assembler performs the two-pass ASM-to-Operation translation described in
// SPEC_FULL.md §4.6: a first pass that emits Operation words and a constants
// side table while recording any jump whose target isn't known yet, and a
// second pass that patches those jumps once every label has a position.
//
// One Assembler is used per compiled unit (a top-level form, or a nested
// MakeClosure body assembled recursively); each gets its own label namespace
// and its own constant pool, mirroring how the teacher's Hack Lowerer keeps
// one fresh SymbolTable per invocation rather than threading a shared one.
type Assembler struct {
	ops    []bytecode.Operation
	consts []value.Value
	labels map[string]int         // label name -> operation index, first definition wins
	fixups []lo.Tuple2[string, int] // (label name, operation index needing a patch)
}

// NewAssembler returns an empty Assembler ready for Assemble.
func NewAssembler() *Assembler {
	return &Assembler{labels: make(map[string]int)}
}

// Assemble packs a symbolic ASM stream into bytecode Operations plus the
// constant pool those operations index into.
func Assemble(program []ASM) ([]bytecode.Operation, []value.Value, error) {
	a := NewAssembler()
	if err := a.firstPass(program); err != nil {
		return nil, nil, err
	}
	if err := a.resolveFixups(); err != nil {
		return nil, nil, err
	}
	return a.ops, a.consts, nil
}

func (a *Assembler) emit(op bytecode.Operation) int {
	idx := len(a.ops)
	a.ops = append(a.ops, op)
	return idx
}

func (a *Assembler) addConst(v value.Value) uint64 {
	a.consts = append(a.consts, v)
	return uint64(len(a.consts) - 1)
}

func (a *Assembler) emitConstLoad(header bytecode.Operation, index uint64) {
	a.emit(header)
	loWord, hiWord := bytecode.SplitWord(index)
	a.emit(bytecode.Operation(loWord))
	a.emit(bytecode.Operation(hiWord))
}

func (a *Assembler) firstPass(program []ASM) error {
	for _, stmt := range program {
		if err := a.firstPassOne(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (a *Assembler) firstPassOne(stmt ASM) error {
	switch n := stmt.(type) {
	case LabelDecl:
		if _, dup := a.labels[n.Name]; dup {
			return fmt.Errorf("asm: duplicate label %q", n.Name)
		}
		a.labels[n.Name] = len(a.ops)

	case Save:
		a.emit(bytecode.NewSave(byte(n.Reg)))
	case Restore:
		a.emit(bytecode.NewRestore(byte(n.Reg)))
	case ReadStack:
		a.emit(bytecode.NewReadStack(byte(n.Reg), n.Offset))
	case LoadContinue:
		idx, ok := a.labels[n.Label]
		if !ok {
			idx = a.emit(bytecode.NewLoadContinue(0))
			a.fixups = append(a.fixups, lo.Tuple2[string, int]{A: n.Label, B: idx})
		} else {
			a.emit(bytecode.NewLoadContinue(uint32(idx)))
		}
	case SaveContinue:
		a.emit(bytecode.NewSaveContinue())
	case RestoreContinue:
		a.emit(bytecode.NewRestoreContinue())

	case LoadConst:
		index := a.addConst(n.ConstValue)
		a.emitConstLoad(bytecode.NewLoadConst(byte(n.Reg)), index)
	case Move:
		a.emit(bytecode.NewMove(byte(n.Dst), byte(n.Src)))
	case MakeClosure:
		nestedOps, nestedConsts, err := Assemble(n.Body)
		if err != nil {
			return err
		}
		lambda := value.LambdaV(&value.Lambda{Code: nestedOps, Consts: nestedConsts})
		index := a.addConst(lambda)
		a.emitConstLoad(bytecode.NewMakeClosure(byte(n.Reg)), index)

	case Add:
		a.emit(bytecode.NewAdd(byte(n.Dst), byte(n.Left), byte(n.Right)))
	case Sub:
		a.emit(bytecode.NewSub(byte(n.Dst), byte(n.Left), byte(n.Right)))
	case Mul:
		a.emit(bytecode.NewMul(byte(n.Dst), byte(n.Left), byte(n.Right)))
	case Eq:
		a.emit(bytecode.NewEq(byte(n.Dst), byte(n.Left), byte(n.Right)))
	case LT:
		a.emit(bytecode.NewLT(byte(n.Dst), byte(n.Left), byte(n.Right)))

	case Cons:
		a.emit(bytecode.NewCons(byte(n.Dst), byte(n.Car), byte(n.Cdr)))
	case Car:
		a.emit(bytecode.NewCar(byte(n.Dst), byte(n.Src)))
	case Cdr:
		a.emit(bytecode.NewCdr(byte(n.Dst), byte(n.Src)))
	case SetCar:
		a.emit(bytecode.NewSetCar(byte(n.Reg), byte(n.Val)))
	case SetCdr:
		a.emit(bytecode.NewSetCdr(byte(n.Reg), byte(n.Val)))

	case Define:
		a.emit(bytecode.NewDefine(byte(n.NameReg), byte(n.ValReg)))
	case Lookup:
		a.emit(bytecode.NewLookup(byte(n.Dst), byte(n.NameReg)))
	case Set:
		a.emit(bytecode.NewSet(byte(n.NameReg), byte(n.ValReg)))

	case Goto:
		a.emitGoto(n.Target)
	case GotoIf:
		a.emitGotoIf(n.Reg, n.Target)
	case GotoIfNot:
		a.emitGotoIfNot(n.Reg, n.Target)
	case Call:
		a.emit(bytecode.NewCall(byte(n.Reg)))
	case TailCall:
		a.emit(bytecode.NewTailCall(byte(n.Reg)))
	case Return:
		a.emit(bytecode.NewReturn())

	case StringToSymbol:
		a.emit(bytecode.NewStringToSymbol(byte(n.Dst), byte(n.Src)))

	default:
		return fmt.Errorf("asm: unassemblable instruction %T", stmt)
	}
	return nil
}

func (a *Assembler) emitGoto(target GotoValue) {
	if target.UseContinueRegister {
		a.emit(bytecode.NewGoto(nil))
		return
	}
	if idx, ok := a.labels[target.Label]; ok {
		label := uint32(idx)
		a.emit(bytecode.NewGoto(&label))
		return
	}
	fixupIdx := a.emit(bytecode.NewGoto(nil))
	a.fixups = append(a.fixups, lo.Tuple2[string, int]{A: target.Label, B: fixupIdx})
}

func (a *Assembler) emitGotoIf(reg Register, target GotoValue) {
	if target.UseContinueRegister {
		a.emit(bytecode.NewGotoIf(byte(reg), nil))
		return
	}
	if idx, ok := a.labels[target.Label]; ok {
		label := uint32(idx)
		a.emit(bytecode.NewGotoIf(byte(reg), &label))
		return
	}
	fixupIdx := a.emit(bytecode.NewGotoIf(byte(reg), nil))
	a.fixups = append(a.fixups, lo.Tuple2[string, int]{A: target.Label, B: fixupIdx})
}

func (a *Assembler) emitGotoIfNot(reg Register, target GotoValue) {
	if target.UseContinueRegister {
		a.emit(bytecode.NewGotoIfNot(byte(reg), nil))
		return
	}
	if idx, ok := a.labels[target.Label]; ok {
		label := uint32(idx)
		a.emit(bytecode.NewGotoIfNot(byte(reg), &label))
		return
	}
	fixupIdx := a.emit(bytecode.NewGotoIfNot(byte(reg), nil))
	a.fixups = append(a.fixups, lo.Tuple2[string, int]{A: target.Label, B: fixupIdx})
}

func (a *Assembler) resolveFixups() error {
	for _, fx := range a.fixups {
		idx, ok := a.labels[fx.A]
		if !ok {
			return fmt.Errorf("asm: unresolved label %q", fx.A)
		}
		op := a.ops[fx.B]
		switch op.Instruction() {
		case bytecode.Goto:
			label := uint32(idx)
			a.ops[fx.B] = bytecode.NewGoto(&label)
		case bytecode.GotoIf, bytecode.GotoIfNot:
			a.ops[fx.B] = op.SetLabel(uint32(idx))
		case bytecode.LoadContinue:
			a.ops[fx.B] = bytecode.NewLoadContinue(uint32(idx))
		default:
			return fmt.Errorf("asm: fixup recorded against non-jump opcode %v", op.Instruction())
		}
	}
	return nil
}
