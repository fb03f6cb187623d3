package vm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	pc "github.com/prataprc/goparsec"

	"wrens.dev/schemevm/pkg/asm"
)

// ----------------------------------------------------------------------------
// Parser Combinator(s)

// The interactive stepper's command grammar: a word-based vocabulary
// (step/run/print/dump/quit/break) rather than the reference debugger's
// single-character dispatch, since a parser-combinator library is already
// in the dependency set and a real word grammar is the more idiomatic use
// of it.

var debugAst = pc.NewAST("debugger", 0)

var (
	pCommand = debugAst.OrdChoice("command", nil,
		pStepN, pStepOne, pRunOnce, pBreak, pPrint, pDump, pQuit,
	)

	pQuit = pc.Atom("quit", "QUIT")
	pDump = pc.Atom("dump", "DUMP")

	pRunOnce = pc.Atom("run", "RUN")

	pStepN   = debugAst.And("step_n", nil, pc.Atom("step", "STEP"), pc.Int())
	pStepOne = pc.Atom("step", "STEP_ONE")

	pBreak = debugAst.And("break", nil, pc.Atom("break", "BREAK"), pc.Int())

	pPrint  = debugAst.And("print", nil, pc.Atom("print", "PRINT"), pRegName)
	pRegName = pc.Token(`[A-Za-z0-9]+`, "REGNAME")
)

// ----------------------------------------------------------------------------
// Command loop

// runDebugger drives the interactive stepper the reference VM's run() method
// offers in debug mode: a prompt reading one command per line until the
// operation stream is exhausted or the user quits.
func (vm *VM) runDebugger() error {
	reader := bufio.NewReader(os.Stdin)
	for vm.pc < len(vm.operations) || vm.savedState.Count() > 0 {
		fmt.Print("(schemevm-debug) ")
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		root, ok := debugAst.Parsewith(pCommand, pc.NewScanner([]byte(line)))
		if !ok || root == nil {
			fmt.Printf("unrecognized command %q\n", line)
			continue
		}

		if vm.dispatchDebugCommand(root) {
			return nil
		}
	}
	return nil
}

// dispatchDebugCommand executes one parsed command node. The returned bool
// is true when the debug session should end (an explicit 'quit').
func (vm *VM) dispatchDebugCommand(node pc.Queryable) bool {
	switch node.GetName() {
	case "QUIT":
		return true

	case "DUMP":
		vm.printDebug()

	case "RUN":
		vm.runUntilBreakpoint()

	case "STEP_ONE":
		if vm.pc < len(vm.operations) || vm.savedState.Count() > 0 {
			vm.doStep()
		}

	case "step_n":
		children := node.GetChildren()
		if len(children) != 2 {
			fmt.Println("malformed step command")
			return false
		}
		count, err := strconv.Atoi(children[1].GetValue())
		if err != nil || count < 0 {
			fmt.Printf("bad step count %q\n", children[1].GetValue())
			return false
		}
		for i := 0; i < count && (vm.pc < len(vm.operations) || vm.savedState.Count() > 0); i++ {
			vm.doStep()
		}

	case "break":
		children := node.GetChildren()
		if len(children) != 2 {
			fmt.Println("malformed break command")
			return false
		}
		target, err := strconv.Atoi(children[1].GetValue())
		if err != nil || target < 0 {
			fmt.Printf("bad breakpoint target %q\n", children[1].GetValue())
			return false
		}
		vm.setBreakpoint(target)
		fmt.Printf("breakpoint set at pc=%d\n", target)

	case "print":
		children := node.GetChildren()
		if len(children) != 2 {
			fmt.Println("malformed print command")
			return false
		}
		vm.printRegister(children[1].GetValue())

	default:
		fmt.Printf("unrecognized command node %q\n", node.GetName())
	}
	return false
}

// setBreakpoint records target as a stopping point for the next "run" command.
func (vm *VM) setBreakpoint(target int) {
	if vm.breakpoints == nil {
		vm.breakpoints = make(map[int]bool)
	}
	vm.breakpoints[target] = true
}

// runUntilBreakpoint steps until the program halts or the program counter
// lands on a registered breakpoint, completing the breakpoint command the
// reference debugger left as a TODO.
func (vm *VM) runUntilBreakpoint() {
	for vm.pc < len(vm.operations) || vm.savedState.Count() > 0 {
		if vm.breakpoints[vm.pc] {
			fmt.Printf("stopped at breakpoint pc=%d\n", vm.pc)
			return
		}
		vm.doStep()
	}
}

// printDebug dumps the full machine state: every general-purpose register,
// the continue register, and the value stack depth.
func (vm *VM) printDebug() {
	for i := 0; i < numRegisters; i++ {
		fmt.Printf("%s = %s\n", asm.Register(i).String(), vm.LoadRegister(asm.Register(i)).String())
	}
	fmt.Printf("kontinue = %d\n", vm.kontinue)
	fmt.Printf("stack depth = %d\n", vm.stack.Count())
	fmt.Printf("pc = %d / %d\n", vm.pc, len(vm.operations))
}

func (vm *VM) printRegister(name string) {
	reg, err := asm.FromString(strings.ToUpper(name))
	if err != nil {
		fmt.Printf("unknown register %q\n", name)
		return
	}
	fmt.Printf("%s = %s\n", reg.String(), vm.LoadRegister(reg).String())
}
