package vm

import (
	"fmt"

	"github.com/pkg/errors"

	"wrens.dev/schemevm/pkg/asm"
	"wrens.dev/schemevm/pkg/bytecode"
	"wrens.dev/schemevm/pkg/value"
)

// Run executes the currently loaded code to completion (in an interactive
// debug session started with SetDebug, until the program ends, the user
// quits or standard input is exhausted). Any panic raised by a
// step — a bad jump target, an internal invariant violation — is recovered
// and surfaced as an error, the same boundary idiom the reference runtime
// uses around its own fetch-decode-execute loop.
func (vm *VM) Run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("vm: %v", r)
		}
	}()

	if vm.debug {
		return vm.runDebugger()
	}
	vm.run()
	return nil
}

func (vm *VM) run() {
	for vm.pc < len(vm.operations) || vm.savedState.Count() > 0 {
		vm.doStep()
		if vm.pc > len(vm.operations) {
			panic("bad jump")
		}
	}
}

// doStep executes exactly one Operation, or pops a saved call frame if the
// program counter has run off the end of the current code.
func (vm *VM) doStep() {
	if vm.pc > len(vm.operations) {
		panic("bad jump")
	}
	if vm.pc == len(vm.operations) {
		top, err := vm.savedState.Pop()
		if err != nil {
			return
		}
		vm.pc = top.pc
		vm.operations = top.code
		vm.consts = top.consts
		vm.env = top.env
		return
	}

	op := vm.operations[vm.pc]
	vm.step++
	vm.pc++

	switch op.Instruction() {
	case bytecode.LoadContinue:
		vm.kontinue = int(op.LoadContinueLabel())
	case bytecode.SaveContinue:
		vm.continueStack.Push(vm.kontinue)
	case bytecode.RestoreContinue:
		k, err := vm.continueStack.Pop()
		if err != nil {
			panic("continue stack underflow")
		}
		vm.kontinue = k
	case bytecode.Save:
		vm.opSave(op)
	case bytecode.Restore:
		vm.opRestore(op)
	case bytecode.ReadStack:
		vm.opReadStack(op)
	case bytecode.LoadConst:
		vm.opLoadConst(op)
	case bytecode.MakeClosure:
		vm.opMakeClosure(op)
	case bytecode.Move:
		vm.AssignRegister(asm.Register(op.MoveTo()), vm.LoadRegister(asm.Register(op.MoveFrom())))
	case bytecode.Goto:
		vm.opGoto(op)
	case bytecode.GotoIf:
		vm.opGotoIf(op)
	case bytecode.GotoIfNot:
		vm.opGotoIfNot(op)
	case bytecode.Add:
		vm.opArith(op, func(l, r int64) int64 { return l + r }, op.AddDst)
	case bytecode.Sub:
		vm.opArith(op, func(l, r int64) int64 { return l - r }, op.SubDst)
	case bytecode.Mul:
		vm.opArith(op, func(l, r int64) int64 { return l * r }, op.MulDst)
	case bytecode.Eq:
		vm.opEq(op)
	case bytecode.LT:
		vm.opLT(op)
	case bytecode.StringToSymbol:
		vm.opStringToSymbol(op)
	case bytecode.Cons:
		vm.opCons(op)
	case bytecode.Car:
		vm.opCar(op)
	case bytecode.Cdr:
		vm.opCdr(op)
	case bytecode.Set:
		vm.opSet(op)
	case bytecode.SetCar:
		vm.opSetCar(op)
	case bytecode.SetCdr:
		vm.opSetCdr(op)
	case bytecode.Define:
		vm.opDefine(op)
	case bytecode.Lookup:
		vm.opLookup(op)
	case bytecode.Call:
		vm.opCall(op)
	case bytecode.TailCall:
		panic("tailcall: not implemented")
	case bytecode.Return:
		vm.pc = len(vm.operations)
	default:
		panic(fmt.Sprintf("unknown opcode %v", op.Instruction()))
	}
}

func (vm *VM) opSave(op bytecode.Operation) {
	vm.stack.Push(vm.LoadRegister(asm.Register(op.SaveRegister())))
	sp, _ := vm.LoadRegister(asm.SP).ToInteger()
	vm.AssignRegister(asm.SP, value.Integer(sp+1))
}

func (vm *VM) opRestore(op bytecode.Operation) {
	top, err := vm.stack.Pop()
	if err != nil {
		panic("value stack underflow")
	}
	vm.AssignRegister(asm.Register(op.RestoreRegister()), top)
	sp, _ := vm.LoadRegister(asm.SP).ToInteger()
	vm.AssignRegister(asm.SP, value.Integer(sp-1))
}

// opReadStack reads the value offset slots below the current stack top
// without popping it, counting offset=1 as the top element. The value stack
// only exposes top-to-bottom iteration, so the walk is linear in offset
// rather than a direct index.
func (vm *VM) opReadStack(op bytecode.Operation) {
	offset := int(op.ReadStackOffset())
	if offset < 1 || offset > vm.stack.Count() {
		panic("stack read out of range")
	}

	i := 0
	var found value.Value
	vm.stack.Iterator()(func(v value.Value) bool {
		i++
		if i == offset {
			found = v
			return false
		}
		return true
	})
	vm.AssignRegister(asm.Register(op.ReadStackRegister()), found)
}

func (vm *VM) opLoadConst(op bytecode.Operation) {
	index := vm.readPoolIndex()
	vm.AssignRegister(asm.Register(op.LoadConstRegister()), vm.constAt(index))
}

func (vm *VM) opMakeClosure(op bytecode.Operation) {
	index := vm.readPoolIndex()
	template := vm.constAt(index)
	lambda := template.AsLambda().WithEnv(vm.env.Extend())
	vm.AssignRegister(asm.Register(op.MakeClosureRegister()), value.LambdaV(lambda))
}

// readPoolIndex reads the two words following the current instruction as a
// 64-bit constant-pool index and advances pc past them.
func (vm *VM) readPoolIndex() uint64 {
	lo := uint32(vm.operations[vm.pc])
	hi := uint32(vm.operations[vm.pc+1])
	vm.pc += 2
	return bytecode.JoinWord(lo, hi)
}

func (vm *VM) constAt(index uint64) value.Value {
	if index >= uint64(len(vm.consts)) {
		panic("constant pool index out of range")
	}
	return vm.consts[index]
}

func (vm *VM) opGoto(op bytecode.Operation) { vm.jumpTo(op.GotoTarget()) }

func (vm *VM) opGotoIf(op bytecode.Operation) {
	cond := vm.LoadRegister(asm.Register(op.GotoIfRegister()))
	if cond.IsBool() && cond.AsBool() {
		vm.jumpTo(op.GotoIfTarget())
	}
}

func (vm *VM) opGotoIfNot(op bytecode.Operation) {
	cond := vm.LoadRegister(asm.Register(op.GotoIfNotRegister()))
	if cond.IsBool() && !cond.AsBool() {
		vm.jumpTo(op.GotoIfNotTarget())
	}
}

func (vm *VM) jumpTo(target uint32, ok bool) {
	if ok {
		vm.pc = int(target)
	} else {
		vm.pc = vm.kontinue
	}
}

func (vm *VM) opArith(op bytecode.Operation, apply func(l, r int64) int64, dstOf func() (byte, byte, byte)) {
	dst, l, r := dstOf()
	left, lok := vm.LoadRegister(asm.Register(l)).ToInteger()
	right, rok := vm.LoadRegister(asm.Register(r)).ToInteger()
	if !lok || !rok {
		vm.AssignRegister(asm.Register(dst), value.Error(value.ErrNumberExpected, "arithmetic"))
		return
	}
	vm.AssignRegister(asm.Register(dst), value.Integer(apply(left, right)))
}

func (vm *VM) opEq(op bytecode.Operation) {
	dst, l, r := op.EqDst()
	left := vm.LoadRegister(asm.Register(l))
	right := vm.LoadRegister(asm.Register(r))
	vm.AssignRegister(asm.Register(dst), value.Bool(left.Equal(right)))
}

func (vm *VM) opLT(op bytecode.Operation) {
	dst, l, r := op.LTDst()
	left, lok := vm.LoadRegister(asm.Register(l)).ToInteger()
	right, rok := vm.LoadRegister(asm.Register(r)).ToInteger()
	if !lok || !rok {
		vm.AssignRegister(asm.Register(dst), value.Error(value.ErrNumberExpected, "<"))
		return
	}
	vm.AssignRegister(asm.Register(dst), value.Bool(left < right))
}

func (vm *VM) opStringToSymbol(op bytecode.Operation) {
	src := vm.LoadRegister(asm.Register(op.StringToSymbolSrc()))
	if !src.IsString() {
		vm.AssignRegister(asm.Register(op.StringToSymbolDst()), value.Error(value.ErrUserDefined, "expected a string"))
		return
	}
	sym := vm.InternSymbol(src.AsString())
	vm.AssignRegister(asm.Register(op.StringToSymbolDst()), value.SymbolV(sym))
}

func (vm *VM) opCons(op bytecode.Operation) {
	dst, car, cdr := op.ConsDst()
	pair := value.Cons(vm.LoadRegister(asm.Register(car)), vm.LoadRegister(asm.Register(cdr)))
	vm.AssignRegister(asm.Register(dst), pair)
}

func (vm *VM) opCar(op bytecode.Operation) {
	vm.AssignRegister(asm.Register(op.CarDst()), vm.LoadRegister(asm.Register(op.CarSrc())).Car())
}

func (vm *VM) opCdr(op bytecode.Operation) {
	vm.AssignRegister(asm.Register(op.CdrDst()), vm.LoadRegister(asm.Register(op.CdrSrc())).Cdr())
}

func (vm *VM) opSet(op bytecode.Operation) {
	name := vm.LoadRegister(asm.Register(op.SetName()))
	val := vm.LoadRegister(asm.Register(op.SetValue()))
	if !name.IsSymbol() {
		panic("set!: name register does not hold a symbol")
	}
	if err := vm.env.SetVariableValue(name.AsSymbol(), val); err != nil {
		panic(err)
	}
}

func (vm *VM) opSetCar(op bytecode.Operation) {
	val := vm.LoadRegister(asm.Register(op.SetCarValue()))
	reg := asm.Register(op.SetCarRegister())
	vm.AssignRegister(reg, vm.LoadRegister(reg).SetCar(val))
}

func (vm *VM) opSetCdr(op bytecode.Operation) {
	val := vm.LoadRegister(asm.Register(op.SetCdrValue()))
	reg := asm.Register(op.SetCdrRegister())
	vm.AssignRegister(reg, vm.LoadRegister(reg).SetCdr(val))
}

func (vm *VM) opDefine(op bytecode.Operation) {
	name := vm.LoadRegister(asm.Register(op.DefineName()))
	val := vm.LoadRegister(asm.Register(op.DefineValue()))
	if !name.IsSymbol() {
		panic("define: name register does not hold a symbol")
	}
	vm.env.DefineVariable(name.AsSymbol(), val)
}

func (vm *VM) opLookup(op bytecode.Operation) {
	name := vm.LoadRegister(asm.Register(op.LookupName()))
	if !name.IsSymbol() {
		panic("lookup: name register does not hold a symbol")
	}
	result, ok := vm.env.LookupVariableValue(name.AsSymbol())
	if !ok {
		result = value.Void()
	}
	vm.AssignRegister(asm.Register(op.LookupDst()), result)
}

func (vm *VM) opCall(op bytecode.Operation) {
	callee := vm.LoadRegister(asm.Register(op.CallRegister()))
	if !callee.IsLambda() {
		return // not a callable value: a no-op, matching the reference VM exactly
	}
	lambda := callee.AsLambda()

	vm.savedState.Push(saveState{
		pc:     vm.pc,
		code:   vm.operations,
		consts: vm.consts,
		env:    vm.env,
	})
	vm.operations = lambda.Code
	vm.consts = lambda.Consts
	vm.env = lambda.Env.ProcedureLocal()
	vm.pc = 0
}
