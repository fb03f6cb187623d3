package ir

import (
	"fmt"
	"strings"

	"wrens.dev/schemevm/pkg/symbol"
)

// String renders an IR sequence, one instruction per line, in the mnemonic
// form used by the REPL's --dump-ir flag.
func String(code []IR) string {
	var b strings.Builder
	writeBlock(&b, code, 0)
	return b.String()
}

func writeBlock(b *strings.Builder, code []IR, indent int) {
	prefix := strings.Repeat("\t", indent)
	for _, inst := range code {
		b.WriteString(prefix)
		writeInst(b, inst, indent)
		b.WriteByte('\n')
	}
}

func writeInst(b *strings.Builder, inst IR, indent int) {
	switch n := inst.(type) {
	case Label:
		fmt.Fprintf(b, "%s:", name(n.ID))
	case Goto:
		fmt.Fprintf(b, "GOTO %s", name(n.ID))
	case GotoIf:
		fmt.Fprintf(b, "GOTOIF %s, %s", name(n.ID), name(n.Cond))
	case GotoIfNot:
		fmt.Fprintf(b, "GOTOIFNOT %s, %s", name(n.ID), name(n.Cond))
	case Primitive:
		fmt.Fprintf(b, "%s PRIMITIVE %s", name(n.Dst), n.Value.String())
	case Lookup:
		fmt.Fprintf(b, "%s LOOKUP %s", name(n.Dst), name(n.Name))
	case Copy:
		fmt.Fprintf(b, "%s COPY %s", name(n.Dst), name(n.Src))
	case Define:
		fmt.Fprintf(b, "DEFINE %s, %s", name(n.Name), name(n.Src))
	case Move:
		fmt.Fprintf(b, "%s MOVE %s", name(n.Dst), name(n.Src))
	case Phi:
		fmt.Fprintf(b, "%s PHI %s, %s", name(n.Dst), name(n.LeftSrc), name(n.RightSrc))
	case Return:
		fmt.Fprintf(b, "RETURN %s", name(n.Src))
	case Call:
		fmt.Fprintf(b, "%s CALL %s, %d", name(n.Dst), name(n.Proc), len(n.Args))
	case Fn:
		b.WriteString(name(n.Dst))
		b.WriteByte('(')
		for i, f := range n.Formals {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(name(f))
		}
		b.WriteString(")\n")
		writeBlock(b, n.Body, indent+1)
		b.WriteString(strings.Repeat("\t", indent) + "<<end fn>>")
	default:
		fmt.Fprintf(b, "; unknown ir node %T", inst)
	}
}

func name(s symbol.Symbol) string { return symbol.Name(s) }
