package asm

import (
	"fmt"
	"strings"
)

// String renders a symbolic ASM stream one line per instruction, used by
// cmd/schemec's --emit=asm flag and the REPL's --dump-asm flag.
func String(program []ASM) string {
	var b strings.Builder
	writeProgram(&b, program, 0)
	return b.String()
}

func writeProgram(b *strings.Builder, program []ASM, indent int) {
	prefix := strings.Repeat("\t", indent)
	for _, stmt := range program {
		if _, ok := stmt.(LabelDecl); !ok {
			b.WriteString(prefix)
		}
		writeStmt(b, stmt, indent)
		b.WriteByte('\n')
	}
}

func gotoTargetString(t GotoValue) string {
	if t.UseContinueRegister {
		return "LR"
	}
	return t.Label
}

func writeStmt(b *strings.Builder, stmt ASM, indent int) {
	switch n := stmt.(type) {
	case LabelDecl:
		fmt.Fprintf(b, "%s:", n.Name)
	case Save:
		fmt.Fprintf(b, "SAVE %s", n.Reg)
	case Restore:
		fmt.Fprintf(b, "RESTORE %s", n.Reg)
	case ReadStack:
		fmt.Fprintf(b, "READSTACK %s, %d", n.Reg, n.Offset)
	case LoadContinue:
		fmt.Fprintf(b, "LOADCONTINUE %s", n.Label)
	case SaveContinue:
		b.WriteString("SAVECONTINUE")
	case RestoreContinue:
		b.WriteString("RESTORECONTINUE")
	case LoadConst:
		fmt.Fprintf(b, "LOADCONST %s, %s", n.Reg, n.ConstValue.String())
	case Move:
		fmt.Fprintf(b, "MOVE %s, %s", n.Dst, n.Src)
	case MakeClosure:
		fmt.Fprintf(b, "MAKECLOSURE %s\n", n.Reg)
		writeProgram(b, n.Body, indent+1)
		b.WriteString(strings.Repeat("\t", indent) + "<<end closure>>")
	case Add:
		fmt.Fprintf(b, "ADD %s, %s, %s", n.Dst, n.Left, n.Right)
	case Sub:
		fmt.Fprintf(b, "SUB %s, %s, %s", n.Dst, n.Left, n.Right)
	case Mul:
		fmt.Fprintf(b, "MUL %s, %s, %s", n.Dst, n.Left, n.Right)
	case Eq:
		fmt.Fprintf(b, "EQ %s, %s, %s", n.Dst, n.Left, n.Right)
	case LT:
		fmt.Fprintf(b, "LT %s, %s, %s", n.Dst, n.Left, n.Right)
	case Cons:
		fmt.Fprintf(b, "CONS %s, %s, %s", n.Dst, n.Car, n.Cdr)
	case Car:
		fmt.Fprintf(b, "CAR %s, %s", n.Dst, n.Src)
	case Cdr:
		fmt.Fprintf(b, "CDR %s, %s", n.Dst, n.Src)
	case SetCar:
		fmt.Fprintf(b, "SETCAR %s, %s", n.Reg, n.Val)
	case SetCdr:
		fmt.Fprintf(b, "SETCDR %s, %s", n.Reg, n.Val)
	case Define:
		fmt.Fprintf(b, "DEFINE %s, %s", n.NameReg, n.ValReg)
	case Lookup:
		fmt.Fprintf(b, "LOOKUP %s, %s", n.Dst, n.NameReg)
	case Set:
		fmt.Fprintf(b, "SET %s, %s", n.NameReg, n.ValReg)
	case Goto:
		fmt.Fprintf(b, "GOTO %s", gotoTargetString(n.Target))
	case GotoIf:
		fmt.Fprintf(b, "GOTOIF %s, %s", n.Reg, gotoTargetString(n.Target))
	case GotoIfNot:
		fmt.Fprintf(b, "GOTOIFNOT %s, %s", n.Reg, gotoTargetString(n.Target))
	case Call:
		fmt.Fprintf(b, "CALL %s", n.Reg)
	case TailCall:
		fmt.Fprintf(b, "TAILCALL %s", n.Reg)
	case Return:
		b.WriteString("RETURN")
	case StringToSymbol:
		fmt.Fprintf(b, "STRINGTOSYMBOL %s, %s", n.Dst, n.Src)
	default:
		fmt.Fprintf(b, "; unknown asm node %T", stmt)
	}
}
