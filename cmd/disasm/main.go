package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/teris-io/cli"

	"wrens.dev/schemevm/pkg/bytecode"
)

var Description = strings.ReplaceAll(`
disasm reads a packed bytecode file produced by 'schemec --emit=bytecode'
and prints the symbolic mnemonic for every instruction in it, one line per
instruction, prefixed with its index in the operation stream.
`, "\n", " ")

var Disasm = cli.New(Description).
	WithArg(cli.NewArg("input", "The packed bytecode (.bc) file to disassemble").
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
	if len(content)%4 != 0 {
		fmt.Printf("ERROR: Input file length %d is not a multiple of 4 bytes\n", len(content))
		return -1
	}

	ops := make([]bytecode.Operation, len(content)/4)
	for i := range ops {
		ops[i] = bytecode.Operation(binary.LittleEndian.Uint32(content[i*4:]))
	}

	for _, line := range bytecode.Disassemble(ops) {
		fmt.Println(line)
	}

	return 0
}

func main() { os.Exit(Disasm.Run(os.Args, os.Stdout)) }
