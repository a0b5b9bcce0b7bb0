package thumb

import (
	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/emitter"
)

// emitConditionGate appends a prologue that RETs immediately unless cond
// holds, exactly mirroring arm32's condition prologue (spec.md §4.2's
// condition table is shared verbatim by Thumb's Bcond, spec.md §4.3): the
// body that follows (the branch target write) only runs when the test
// passes. cond 14 (AL) and 15 (SWI) never reach here — the dispatcher
// routes those before calling this.
func emitConditionGate(e *emitter.Emitter, cond uint32) {
	switch cond {
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

func emitFlagTest(e *emitter.Emitter, bit int, invert bool) {
	e.BitTest(emitter.PReg, cpu.OffCPSR, byte(bit))
	cc := emitter.CondB
	if invert {
		cc = emitter.CondAE
	}
	skip := e.JccRel8(cc)
	e.Ret()
	e.PatchRel8At(skip)
}

func emitOrTest(e *emitter.Emitter) {
	e.BitTest(emitter.PReg, cpu.OffCPSR, cpu.CPSRBitC)
	skip1 := e.JccRel8(emitter.CondAE)
	e.BitTest(emitter.PReg, cpu.OffCPSR, cpu.CPSRBitZ)
	skip2 := e.JccRel8(emitter.CondB)
	e.Ret()
	e.PatchRel8At(skip1)
	e.PatchRel8At(skip2)
}

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

func emitOrSignedTest(e *emitter.Emitter) {
	e.BitTest(emitter.PReg, cpu.OffCPSR, cpu.CPSRBitZ)
	skip1 := e.JccRel8(emitter.CondB)
	e.Load(emitter.AReg, emitter.PReg, cpu.OffCPSR)
	e.MovRR(emitter.CReg, emitter.AReg)
	e.ShiftImm(emitter.ShiftShr, emitter.CReg, 3)
	e.XorRR(emitter.AReg, emitter.CReg)
	e.ShiftImm(emitter.ShiftShl, emitter.AReg, 3)
	skip2 := e.JccRel8(emitter.CondS)
	e.Ret()
	e.PatchRel8At(skip1)
	e.PatchRel8At(skip2)
}
