package bytecode

import "fmt"

// String renders a single Operation in the symbolic mnemonic form used by
// Disassemble.
func (op Operation) String() string {
	switch op.Instruction() {
	case SaveContinue:
		return "SAVECONTINUE"
	case RestoreContinue:
		return "RESTORECONTINUE"
	case Return:
		return "RETURN"
	case Save:
		return fmt.Sprintf("SAVE R%d", op.SaveRegister())
	case Restore:
		return fmt.Sprintf("RESTORE R%d", op.RestoreRegister())
	case Call:
		return fmt.Sprintf("CALL R%d", op.CallRegister())
	case TailCall:
		return fmt.Sprintf("TAILCALL R%d", op.TailCallRegister())
	case LoadConst:
		return fmt.Sprintf("LOADCONST R%d", op.LoadConstRegister())
	case MakeClosure:
		return fmt.Sprintf("MAKECLOSURE R%d", op.MakeClosureRegister())
	case Move:
		return fmt.Sprintf("MOVE R%d, R%d", op.MoveTo(), op.MoveFrom())
	case Car:
		return fmt.Sprintf("CAR R%d, R%d", op.CarDst(), op.CarSrc())
	case Cdr:
		return fmt.Sprintf("CDR R%d, R%d", op.CdrDst(), op.CdrSrc())
	case Set:
		return fmt.Sprintf("SET R%d, R%d", op.SetName(), op.SetValue())
	case SetCar:
		return fmt.Sprintf("SETCAR R%d, R%d", op.SetCarRegister(), op.SetCarValue())
	case SetCdr:
		return fmt.Sprintf("SETCDR R%d, R%d", op.SetCdrRegister(), op.SetCdrValue())
	case Define:
		return fmt.Sprintf("DEFINE R%d, R%d", op.DefineName(), op.DefineValue())
	case Lookup:
		return fmt.Sprintf("LOOKUP R%d, R%d", op.LookupDst(), op.LookupName())
	case StringToSymbol:
		return fmt.Sprintf("STRINGTOSYMBOL R%d, R%d", op.StringToSymbolDst(), op.StringToSymbolSrc())
	case Add:
		d, l, r := op.AddDst()
		return fmt.Sprintf("ADD R%d, R%d, R%d", d, l, r)
	case Sub:
		d, l, r := op.SubDst()
		return fmt.Sprintf("SUB R%d, R%d, R%d", d, l, r)
	case Mul:
		d, l, r := op.MulDst()
		return fmt.Sprintf("MUL R%d, R%d, R%d", d, l, r)
	case Eq:
		d, l, r := op.EqDst()
		return fmt.Sprintf("EQ R%d, R%d, R%d", d, l, r)
	case LT:
		d, l, r := op.LTDst()
		return fmt.Sprintf("LT R%d, R%d, R%d", d, l, r)
	case Cons:
		d, l, r := op.ConsDst()
		return fmt.Sprintf("CONS R%d, R%d, R%d", d, l, r)
	case ReadStack:
		return fmt.Sprintf("READSTACK R%d, %d", op.ReadStackRegister(), op.ReadStackOffset())
	case LoadContinue:
		return fmt.Sprintf("LOADCONTINUE %d", op.LoadContinueLabel())
	case Goto:
		if target, ok := op.GotoTarget(); ok {
			return fmt.Sprintf("GOTO %d", target)
		}
		return "GOTO LR"
	case GotoIf:
		if target, ok := op.GotoIfTarget(); ok {
			return fmt.Sprintf("GOTOIF R%d, %d", op.GotoIfRegister(), target)
		}
		return fmt.Sprintf("GOTOIF R%d, LR", op.GotoIfRegister())
	case GotoIfNot:
		if target, ok := op.GotoIfNotTarget(); ok {
			return fmt.Sprintf("GOTOIFNOT R%d, %d", op.GotoIfNotRegister(), target)
		}
		return fmt.Sprintf("GOTOIFNOT R%d, LR", op.GotoIfNotRegister())
	default:
		return fmt.Sprintf("; unknown opcode %d", byte(op))
	}
}

// payloadWords reports how many extra words follow op's header word: the
// 3-word forms (LoadConst, MakeClosure) carry a 64-bit constant-pool index
// across the next two words, which must not be misread as instructions.
func payloadWords(op Operation) int {
	switch op.Instruction() {
	case LoadConst, MakeClosure:
		return 2
	default:
		return 0
	}
}

// Disassemble renders a full Operation stream as one line per instruction,
// skipping over multi-word payloads. Each line is prefixed with its
// instruction index so jump targets are easy to cross-reference by eye.
func Disassemble(ops []Operation) []string {
	lines := make([]string, 0, len(ops))
	for i := 0; i < len(ops); {
		lines = append(lines, fmt.Sprintf("%4d: %s", i, ops[i].String()))
		i += 1 + payloadWords(ops[i])
	}
	return lines
}
