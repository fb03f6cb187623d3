package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/teris-io/cli"

	"wrens.dev/schemevm/pkg/asm"
	"wrens.dev/schemevm/pkg/pipeline"
	"wrens.dev/schemevm/pkg/vm"
)

var Description = strings.ReplaceAll(`
schemec compiles a Scheme source file through the full tokenize/parse/
compile/optimize/lower/assemble pipeline. By default the compiled program is
loaded into a fresh VM and run to completion, printing the value left in
register R0. With --emit, the pipeline stops after assembly and writes the
lowered symbolic assembly or the packed bytecode to --output instead.
`, "\n", " ")

var Schemec = cli.New(Description).
	WithArg(cli.NewArg("input", "The Scheme (.scm) source file to compile").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("emit", "Stop after assembly and emit 'asm' or 'bytecode' instead of running").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("output", "The file to write --emit output to").
		WithType(cli.TypeString)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Printf("ERROR: Not enough arguments provided, use --help\n")
		return -1
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Printf("ERROR: Unable to open input file: %s\n", err)
		return -1
	}

	unit, err := pipeline.Compile(string(content))
	if err != nil {
		fmt.Printf("ERROR: Unable to compile input: %s\n", err)
		return -1
	}

	emit, emitting := options["emit"]
	if !emitting {
		machine := vm.New()
		machine.AssignEnvironment(vm.InitEnv(machine))
		machine.LoadCode(unit.Code, unit.Const)
		if err := machine.Run(); err != nil {
			fmt.Printf("ERROR: %s\n", err)
			return -1
		}
		fmt.Println(machine.LoadRegister(asm.Register(0)).String())
		return 0
	}

	dest := os.Stdout
	if out := options["output"]; out != "" {
		dest, err = os.Create(out)
		if err != nil {
			fmt.Printf("ERROR: Unable to open output file: %s\n", err)
			return -1
		}
		defer dest.Close()
	}

	switch emit {
	case "asm":
		if _, err := dest.WriteString(asm.String(unit.ASM)); err != nil {
			fmt.Printf("ERROR: Unable to write output: %s\n", err)
			return -1
		}
	case "bytecode":
		buf := make([]byte, 4)
		for _, op := range unit.Code {
			binary.LittleEndian.PutUint32(buf, uint32(op))
			if _, err := dest.Write(buf); err != nil {
				fmt.Printf("ERROR: Unable to write output: %s\n", err)
				return -1
			}
		}
	default:
		fmt.Printf("ERROR: Unknown --emit target %q, want 'asm' or 'bytecode'\n", emit)
		return -1
	}

	return 0
}

func main() { os.Exit(Schemec.Run(os.Args, os.Stdout)) }
