package bytecode_test

import (
	"testing"

	"wrens.dev/schemevm/pkg/bytecode"
)

func TestInstructionRoundTrip(t *testing.T) {
	test := func(op bytecode.Operation, want bytecode.Instruction) {
		t.Helper()
		if got := op.Instruction(); got != want {
			t.Errorf("Instruction() = %v, want %v", got, want)
		}
	}

	test(bytecode.NewSave(4), bytecode.Save)
	test(bytecode.NewRestore(4), bytecode.Restore)
	test(bytecode.NewCall(4), bytecode.Call)
	test(bytecode.NewTailCall(4), bytecode.TailCall)
	test(bytecode.NewLoadConst(0), bytecode.LoadConst)
	test(bytecode.NewMakeClosure(0), bytecode.MakeClosure)
	test(bytecode.NewMove(1, 2), bytecode.Move)
	test(bytecode.NewAdd(0, 1, 2), bytecode.Add)
	test(bytecode.NewReadStack(3, 1), bytecode.ReadStack)
	test(bytecode.NewLoadContinue(7), bytecode.LoadContinue)
	test(bytecode.NewGoto(nil), bytecode.Goto)
	test(bytecode.NewSaveContinue(), bytecode.SaveContinue)
	test(bytecode.NewRestoreContinue(), bytecode.RestoreContinue)
	test(bytecode.NewReturn(), bytecode.Return)
}

func TestOneRegisterShape(t *testing.T) {
	op := bytecode.NewSave(17)
	if op.SaveRegister() != 17 {
		t.Fatalf("SaveRegister() = %d, want 17", op.SaveRegister())
	}
}

func TestTwoRegisterShape(t *testing.T) {
	op := bytecode.NewMove(4, 9)
	if op.MoveTo() != 4 || op.MoveFrom() != 9 {
		t.Fatalf("got to=%d from=%d, want to=4 from=9", op.MoveTo(), op.MoveFrom())
	}

	cons := bytecode.NewDefine(2, 3)
	if cons.DefineName() != 2 || cons.DefineValue() != 3 {
		t.Fatalf("got name=%d value=%d, want name=2 value=3", cons.DefineName(), cons.DefineValue())
	}
}

func TestThreeRegisterShape(t *testing.T) {
	op := bytecode.NewAdd(0, 1, 2)
	d, l, r := op.AddDst()
	if d != 0 || l != 1 || r != 2 {
		t.Fatalf("got dst=%d left=%d right=%d, want 0,1,2", d, l, r)
	}
}

func TestReadStackShape(t *testing.T) {
	op := bytecode.NewReadStack(5, 12)
	if op.ReadStackRegister() != 5 || op.ReadStackOffset() != 12 {
		t.Fatalf("got reg=%d offset=%d, want 5,12", op.ReadStackRegister(), op.ReadStackOffset())
	}
}

func TestLoadContinueShape(t *testing.T) {
	op := bytecode.NewLoadContinue(99)
	if op.LoadContinueLabel() != 99 {
		t.Fatalf("got %d, want 99", op.LoadContinueLabel())
	}
}

func TestGotoShape(t *testing.T) {
	label := uint32(5)
	op := bytecode.NewGoto(&label)
	target, ok := op.GotoTarget()
	if !ok || target != 5 {
		t.Fatalf("got target=%d ok=%v, want 5,true", target, ok)
	}

	viaContinue := bytecode.NewGoto(nil)
	_, ok = viaContinue.GotoTarget()
	if ok {
		t.Fatal("expected GotoTarget to report false for the continue-register sentinel")
	}
}

func TestGotoIfShapeAndSetLabel(t *testing.T) {
	label := uint32(1)
	op := bytecode.NewGotoIf(4, &label)
	if op.GotoIfRegister() != 4 {
		t.Fatalf("got register %d, want 4", op.GotoIfRegister())
	}
	target, ok := op.GotoIfTarget()
	if !ok || target != 1 {
		t.Fatalf("got target=%d ok=%v, want 1,true", target, ok)
	}

	relabeled := op.SetLabel(2)
	if relabeled.GotoIfRegister() != 4 {
		t.Fatalf("SetLabel must preserve the register, got %d", relabeled.GotoIfRegister())
	}
	target, ok = relabeled.GotoIfTarget()
	if !ok || target != 2 {
		t.Fatalf("got target=%d ok=%v, want 2,true", target, ok)
	}
}

func TestGotoIfNoneSentinel(t *testing.T) {
	op := bytecode.NewGotoIfNot(3, nil)
	if op.GotoIfNotRegister() != 3 {
		t.Fatalf("got register %d, want 3", op.GotoIfNotRegister())
	}
	if _, ok := op.GotoIfNotTarget(); ok {
		t.Fatal("expected GotoIfNotTarget to report false for the continue-register sentinel")
	}
}

func TestSplitJoinWord(t *testing.T) {
	want := uint64(0x1122334455667788)
	lo, hi := bytecode.SplitWord(want)
	if got := bytecode.JoinWord(lo, hi); got != want {
		t.Fatalf("JoinWord(SplitWord(%x)) = %x", want, got)
	}
}

func TestDisassembleSkipsPayloadWords(t *testing.T) {
	ops := []bytecode.Operation{
		bytecode.NewLoadConst(0),
		bytecode.Operation(0), // payload word 1
		bytecode.Operation(0), // payload word 2
		bytecode.NewReturn(),
	}
	lines := bytecode.Disassemble(ops)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(lines), lines)
	}
}

func TestInstructionStringUnknown(t *testing.T) {
	if (bytecode.Instruction(200)).Valid() {
		t.Fatal("expected opcode 200 to be invalid")
	}
}
