package arm32

import (
	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/emitter"
)

// emitCondition appends the condition-code prologue for cond (spec.md §4.2).
// cond==14 (AL) emits nothing. cond==15 has no defined meaning in this
// decode tree and is treated the same as AL.
func emitCondition(e *emitter.Emitter, cond uint32) {
	switch cond {
	case 14, 15:
		return
	case 0:
		emitFlagTest(e, cpu.CPSRBitZ, false) // EQ
	case 1:
		emitFlagTest(e, cpu.CPSRBitZ, true) // NE
	case 2:
		emitFlagTest(e, cpu.CPSRBitC, false) // CS/HS
	case 3:
		emitFlagTest(e, cpu.CPSRBitC, true) // CC/LO
	case 4:
		emitFlagTest(e, cpu.CPSRBitN, false) // MI
	case 5:
		emitFlagTest(e, cpu.CPSRBitN, true) // PL
	case 6:
		emitFlagTest(e, cpu.CPSRBitV, false) // VS
	case 7:
		emitFlagTest(e, cpu.CPSRBitV, true) // VC
	case 8: // HI: C==1 && Z==0
		emitFlagTest(e, cpu.CPSRBitC, false)
		emitFlagTest(e, cpu.CPSRBitZ, true)
	case 9: // LS: C==0 || Z==1
		emitOrTest(e)
	case 10: // GE: N==V
		emitSignedTest(e, false)
	case 11: // LT: N!=V
		emitSignedTest(e, true)
	case 12: // GT: Z==0 && N==V
		emitFlagTest(e, cpu.CPSRBitZ, true)
		emitSignedTest(e, false)
	case 13: // LE: Z==1 || N!=V
		emitOrSignedTest(e)
	}
}

// emitFlagTest bit-tests CPSR bit `bit` and emits a RET that fires unless
// the tested flag equals the wanted polarity: invert==false wants the bit
// set, invert==true wants it clear.
func emitFlagTest(e *emitter.Emitter, bit int, invert bool) {
	e.BitTest(emitter.PReg, cpu.OffCPSR, byte(bit))
	cc := emitter.CondB // CF=1 -> bit was set
	if invert {
		cc = emitter.CondAE // CF=0 -> bit was clear
	}
	skip := e.JccRel8(cc)
	e.Ret()
	e.PatchRel8At(skip)
}

// emitOrTest implements LS (C==0 || Z==1): continue (skip the RET) the
// moment either half of the OR is satisfied.
func emitOrTest(e *emitter.Emitter) {
	e.BitTest(emitter.PReg, cpu.OffCPSR, cpu.CPSRBitC)
	skip1 := e.JccRel8(emitter.CondAE) // C==0
	e.BitTest(emitter.PReg, cpu.OffCPSR, cpu.CPSRBitZ)
	skip2 := e.JccRel8(emitter.CondB) // Z==1
	e.Ret()
	e.PatchRel8At(skip1)
	e.PatchRel8At(skip2)
}

// emitSignedTest computes N^V (spec.md §4.2: shift CPSR right 3 so bit31
// (N) aligns with bit28 (V), XOR, then re-shift left 3 so the bit lands in the sign
// position for a plain JS/JNS test) and RETs unless the result matches
// want (want==true tests LT, want==false tests GE).
func emitSignedTest(e *emitter.Emitter, want bool) {
	e.Load(emitter.AReg, emitter.PReg, cpu.OffCPSR)
	e.MovRR(emitter.CReg, emitter.AReg)
	e.ShiftImm(emitter.ShiftShr, emitter.CReg, 3)
	e.XorRR(emitter.AReg, emitter.CReg)
	e.ShiftImm(emitter.ShiftShl, emitter.AReg, 3)
	cc := emitter.CondS
	if !want {
		cc = emitter.CondNS
	}
	skip := e.JccRel8(cc)
	e.Ret()
	e.PatchRel8At(skip)
}

// emitOrSignedTest implements LE (Z==1 || N!=V).
func emitOrSignedTest(e *emitter.Emitter) {
	e.BitTest(emitter.PReg, cpu.OffCPSR, cpu.CPSRBitZ)
	skip1 := e.JccRel8(emitter.CondB) // Z==1
	e.Load(emitter.AReg, emitter.PReg, cpu.OffCPSR)
	e.MovRR(emitter.CReg, emitter.AReg)
	e.ShiftImm(emitter.ShiftShr, emitter.CReg, 3)
	e.XorRR(emitter.AReg, emitter.CReg)
	e.ShiftImm(emitter.ShiftShl, emitter.AReg, 3)
	skip2 := e.JccRel8(emitter.CondS) // N!=V
	e.Ret()
	e.PatchRel8At(skip1)
	e.PatchRel8At(skip2)
}
