package vm

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"wrens.dev/schemevm/pkg/asm"
	"wrens.dev/schemevm/pkg/value"
)

//go:embed prelude.json
var preludeContent string

// preludeDef is a single primitive's table entry: the register shape a given
// opcode needs varies (two operands for car/cdr, three for arithmetic), so
// regs is just read positionally by opASM below rather than given named
// fields per opcode.
type preludeDef struct {
	Name string `json:"name"`
	Op   string `json:"op"`
	Regs []byte `json:"regs"`
}

type constantDef struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type prelude struct {
	Primitives []preludeDef  `json:"primitives"`
	Constants  []constantDef `json:"constants"`
}

var builtinPrelude prelude

func init() {
	if err := json.Unmarshal([]byte(preludeContent), &builtinPrelude); err != nil {
		panic("vm: failed to parse prelude.json: " + err.Error())
	}
}

// InitEnv builds the top-level environment a fresh VM starts with: every
// primitive named in prelude.json is assembled into a tiny Lambda (so a Call
// on `+` goes through the exact same dispatch path as a call to user Scheme
// code) and every constant is defined as a Float, mirroring the reference
// environment's init.rs contents.
func InitEnv(vm *VM) *value.Environment {
	env := value.NewEnvironment()

	for _, def := range builtinPrelude.Primitives {
		definePrimitive(vm, env, def.Name, opASM(def)...)
	}
	for _, def := range builtinPrelude.Constants {
		env.DefineVariable(vm.InternSymbol(def.Name), value.Float(def.Value))
	}

	return env
}

// opASM builds the assembled body for one prelude entry. set-car!/set-cdr!
// mutate in place and return the unspecified value; R0 holds the
// primitive's own Lambda value going into Call, so their bodies have to
// overwrite it explicitly rather than leaving it alone.
func opASM(def preludeDef) []asm.ASM {
	r := make([]asm.Register, len(def.Regs))
	for i, reg := range def.Regs {
		r[i] = asm.Register(reg)
	}
	switch def.Op {
	case "add":
		return []asm.ASM{asm.Add{Dst: r[0], Left: r[1], Right: r[2]}}
	case "sub":
		return []asm.ASM{asm.Sub{Dst: r[0], Left: r[1], Right: r[2]}}
	case "mul":
		return []asm.ASM{asm.Mul{Dst: r[0], Left: r[1], Right: r[2]}}
	case "eq":
		return []asm.ASM{asm.Eq{Dst: r[0], Left: r[1], Right: r[2]}}
	case "lt":
		return []asm.ASM{asm.LT{Dst: r[0], Left: r[1], Right: r[2]}}
	case "cons":
		return []asm.ASM{asm.Cons{Dst: r[0], Car: r[1], Cdr: r[2]}}
	case "car":
		return []asm.ASM{asm.Car{Dst: r[0], Src: r[1]}}
	case "cdr":
		return []asm.ASM{asm.Cdr{Dst: r[0], Src: r[1]}}
	case "set-car-void":
		return []asm.ASM{
			asm.SetCar{Reg: r[0], Val: r[1]},
			asm.LoadConst{Reg: 0, Index: -1, ConstValue: value.Void()},
		}
	case "set-cdr-void":
		return []asm.ASM{
			asm.SetCdr{Reg: r[0], Val: r[1]},
			asm.LoadConst{Reg: 0, Index: -1, ConstValue: value.Void()},
		}
	default:
		panic(fmt.Sprintf("vm: unknown prelude opcode %q", def.Op))
	}
}

// definePrimitive assembles body and binds it as a Lambda under name,
// captured against env so primitives resolve their own name should they
// ever recurse through a lookup (none currently do).
func definePrimitive(vm *VM, env *value.Environment, name string, body ...asm.ASM) {
	code, consts, err := asm.Assemble(body)
	if err != nil {
		panic("vm: failed to assemble builtin " + name + ": " + err.Error())
	}
	lambda := &value.Lambda{Code: code, Consts: consts, Env: env}
	env.DefineVariable(vm.InternSymbol(name), value.LambdaV(lambda))
}
