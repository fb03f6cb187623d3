// Package vm implements the register-based bytecode machine that executes
// the Operation streams produced by pkg/asm: a fetch-decode-execute loop
// over 32 general-purpose registers, a value stack, a continue (return-
// address) register and its stack, a linked Environment, and a saved-state
// stack used to return from Lambda calls.
package vm

import (
	"wrens.dev/schemevm/pkg/asm"
	"wrens.dev/schemevm/pkg/bytecode"
	"wrens.dev/schemevm/pkg/symbol"
	"wrens.dev/schemevm/pkg/utils"
	"wrens.dev/schemevm/pkg/value"
)

// numRegisters is the register file size; R31 (asm.XZR) is hardwired to
// read as Integer(0) regardless of what's stored there.
const numRegisters = 32

// saveState captures everything a Call instruction must restore when the
// called Lambda's body runs off the end of its operation stream.
type saveState struct {
	pc     int
	code   []bytecode.Operation
	consts []value.Value
	env    *value.Environment
}

// VM is a single Scheme virtual machine instance. The zero value is not
// usable; construct one with New.
type VM struct {
	debug bool
	step  int

	operations []bytecode.Operation
	consts     []value.Value
	env        *value.Environment

	stack         utils.Stack[value.Value]
	continueStack utils.Stack[int]

	pc        int
	kontinue  int // named to dodge the "continue" keyword, matching the reference VM's own dodge
	registers [numRegisters]value.Value

	savedState utils.Stack[saveState]

	breakpoints map[int]bool
}

// New returns a freshly initialized VM: FP and SP (R29, R30) start at
// Integer(0), every other register at Nil, and an empty top-level
// Environment.
func New() *VM {
	vm := &VM{env: value.NewEnvironment()}
	for i := range vm.registers {
		vm.registers[i] = value.Nil()
	}
	vm.registers[asm.FP] = value.Integer(0)
	vm.registers[asm.SP] = value.Integer(0)
	return vm
}

// SetDebug enables the interactive stepper's command prompt for Run.
func (vm *VM) SetDebug() { vm.debug = true }

// LoadCode installs a compiled unit as the machine's current operation
// stream and constant pool, resetting the program counter to 0.
func (vm *VM) LoadCode(code []bytecode.Operation, consts []value.Value) {
	vm.operations = code
	vm.consts = consts
	vm.pc = 0
}

// AssignRegister sets a general-purpose register. Writing to XZR (R31) is
// permitted but has no observable effect, since LoadRegister always
// returns Integer(0) for it.
func (vm *VM) AssignRegister(r asm.Register, v value.Value) {
	vm.registers[r] = v
}

// LoadRegister reads a general-purpose register.
func (vm *VM) LoadRegister(r asm.Register) value.Value {
	if r == asm.XZR {
		return value.Integer(0)
	}
	return vm.registers[r]
}

// AssignEnvironment replaces the machine's current environment, used to
// seed a fresh VM with the primitives InitEnv installs.
func (vm *VM) AssignEnvironment(env *value.Environment) { vm.env = env }

// Environment returns the machine's current environment.
func (vm *VM) Environment() *value.Environment { return vm.env }

// GetDefinitions lists the names bound in the current environment frame and
// every ancestor frame.
func (vm *VM) GetDefinitions() []symbol.Symbol { return vm.env.GetDefinitions() }

// StackSize reports the number of values on the value stack.
func (vm *VM) StackSize() int { return vm.stack.Count() }

// InternSymbol interns name in the process-wide symbol table.
func (vm *VM) InternSymbol(name string) symbol.Symbol { return symbol.Intern(name) }

// GetSymbolValue returns the string a Symbol was interned from.
func (vm *VM) GetSymbolValue(sym symbol.Symbol) string { return symbol.Name(sym) }

// Reset reinitializes machine state while keeping the currently loaded code
// and the debug flag, mirroring the reference VM's reset semantics.
func (vm *VM) Reset() {
	code := vm.operations
	consts := vm.consts
	debug := vm.debug
	*vm = *New()
	vm.operations = code
	vm.consts = consts
	vm.debug = debug
}
