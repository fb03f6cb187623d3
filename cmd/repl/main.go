package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/teris-io/cli"

	"wrens.dev/schemevm/pkg/asm"
	"wrens.dev/schemevm/pkg/ir"
	"wrens.dev/schemevm/pkg/pipeline"
	"wrens.dev/schemevm/pkg/vm"
)

var Description = strings.ReplaceAll(`
The REPL reads one line of Scheme at a time, runs every form on it through the full
tokenize/parse/compile/optimize/lower/assemble pipeline and then through the
bytecode VM, printing the value left in register R0. Definitions persist
across lines: the VM and its top-level environment are shared for the whole
session.
`, "\n", " ")

var Repl = cli.New(Description).
	WithOption(cli.NewOption("debug", "Drops into the interactive stepper before running each line").
		WithType(cli.TypeBool)).
	WithOption(cli.NewOption("dump-ir", "Prints the optimized IR for each line before running it").
		WithType(cli.TypeBool)).
	WithOption(cli.NewOption("dump-asm", "Prints the lowered symbolic assembly for each line before running it").
		WithType(cli.TypeBool)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	_, dumpIR := options["dump-ir"]
	_, dumpASM := options["dump-asm"]
	_, debug := options["debug"]

	machine := vm.New()
	machine.AssignEnvironment(vm.InitEnv(machine))
	if debug {
		machine.SetDebug()
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print(">> ")
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			fmt.Println()
			return 0
		}
		if err != nil {
			fmt.Printf("ERROR: Unable to read input: %s\n", err)
			return -1
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		unit, err := pipeline.Compile(line)
		if err != nil {
			fmt.Printf("ERROR: Unable to compile input: %s\n", err)
			continue
		}
		if unit.Code == nil {
			continue
		}

		if dumpIR {
			fmt.Print(ir.String(unit.IR))
		}
		if dumpASM {
			fmt.Print(asm.String(unit.ASM))
		}

		machine.LoadCode(unit.Code, unit.Const)
		if err := machine.Run(); err != nil {
			fmt.Printf("ERROR: %s\n", err)
			continue
		}

		fmt.Println(machine.LoadRegister(asm.Register(0)).String())
	}
}

func main() { os.Exit(Repl.Run(os.Args, os.Stdout)) }
