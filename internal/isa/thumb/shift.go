package thumb

import (
	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/emitter"
)

// emitMoveShifted implements format 1 (LSL/LSR/ASR by a 5-bit immediate).
// Only N and Z are updated; unlike the A32 shifter operand, Thumb's
// move-shifted-register form does not fold a carry-out into CPSR.C
// (spec.md §4.3).
func (t *Translator) emitMoveShifted(e *emitter.Emitter, instr uint32) error {
	op := (instr >> 11) & 0x3
	amt := (instr >> 6) & 0x1F
	rs := int((instr >> 3) & 0x7)
	rd := int(instr & 0x7)

	e.Load(emitter.AReg, emitter.PReg, cpu.OffReg(rs))

	switch op {
	case 0: // LSL
		if amt != 0 {
			e.ShiftImm(emitter.ShiftShl, emitter.AReg, byte(amt))
		}
	case 1: // LSR, #0 means shift by 32
		if amt == 0 {
			e.XorRR(emitter.AReg, emitter.AReg)
		} else {
			e.ShiftImm(emitter.ShiftShr, emitter.AReg, byte(amt))
		}
	case 2: // ASR, #0 means shift by 32
		if amt == 0 {
			e.ShiftImm(emitter.ShiftSar, emitter.AReg, 31)
		} else {
			e.ShiftImm(emitter.ShiftSar, emitter.AReg, byte(amt))
		}
	}

	e.Store(emitter.PReg, cpu.OffReg(rd), emitter.AReg)
	emitNZ(e, emitter.AReg)
	e.Ret()
	return nil
}

// emitDynLSL/LSR/ASR/ROR implement format 4's register-shift ALU ops
// (LSL/LSR/ASR/ROR Rd, Rs), which take the full low byte of Rs as the shift
// amount — the same 0 / 1-31 / 32 / >32 boundary tree as A32's
// shift-by-register operand (spec.md §8), applied here to Rd itself rather
// than to an operand2 value. AReg holds the value, CReg the amount (masked
// to its low byte by the caller).

func emitDynLSL(e *emitter.Emitter) {
	e.TestRR(emitter.CReg, emitter.CReg)
	isZero := e.JccRel8(emitter.CondE)
	e.CmpRI(emitter.CReg, 32)
	isBig := e.JccRel8(emitter.CondA)
	isEq := e.JccRel8(emitter.CondE)

	e.ShiftCL(emitter.ShiftShl, emitter.AReg)
	emitCFromHostCF(e)
	toEnd1 := e.JmpRel8()

	e.PatchRel8At(isEq)
	e.MovRR(emitter.DReg, emitter.AReg)
	e.AndRI(emitter.DReg, 1)
	setCarryFromRegBit0(e, emitter.DReg)
	e.XorRR(emitter.AReg, emitter.AReg)
	toEnd2 := e.JmpRel8()

	e.PatchRel8At(isBig)
	e.BitTestAndReset(emitter.PReg, cpu.OffCPSR, cpu.CPSRBitC)
	e.XorRR(emitter.AReg, emitter.AReg)

	e.PatchRel8At(toEnd1)
	e.PatchRel8At(toEnd2)
	e.PatchRel8At(isZero)
}

func emitDynLSR(e *emitter.Emitter) {
	e.TestRR(emitter.CReg, emitter.CReg)
	isZero := e.JccRel8(emitter.CondE)
	e.CmpRI(emitter.CReg, 32)
	isBig := e.JccRel8(emitter.CondA)
	isEq := e.JccRel8(emitter.CondE)

	e.ShiftCL(emitter.ShiftShr, emitter.AReg)
	emitCFromHostCF(e)
	toEnd1 := e.JmpRel8()

	e.PatchRel8At(isEq)
	e.MovRR(emitter.DReg, emitter.AReg)
	e.ShiftImm(emitter.ShiftShr, emitter.DReg, 31)
	setCarryFromRegBit0(e, emitter.DReg)
	e.XorRR(emitter.AReg, emitter.AReg)
	toEnd2 := e.JmpRel8()

	e.PatchRel8At(isBig)
	e.BitTestAndReset(emitter.PReg, cpu.OffCPSR, cpu.CPSRBitC)
	e.XorRR(emitter.AReg, emitter.AReg)

	e.PatchRel8At(toEnd1)
	e.PatchRel8At(toEnd2)
	e.PatchRel8At(isZero)
}

func emitDynASR(e *emitter.Emitter) {
	e.TestRR(emitter.CReg, emitter.CReg)
	isZero := e.JccRel8(emitter.CondE)
	e.CmpRI(emitter.CReg, 32)
	isBigOrEq := e.JccRel8(emitter.CondAE)

	e.ShiftCL(emitter.ShiftSar, emitter.AReg)
	emitCFromHostCF(e)
	toEnd := e.JmpRel8()

	e.PatchRel8At(isBigOrEq)
	e.MovRR(emitter.DReg, emitter.AReg)
	e.ShiftImm(emitter.ShiftShr, emitter.DReg, 31)
	setCarryFromRegBit0(e, emitter.DReg)
	e.ShiftImm(emitter.ShiftSar, emitter.AReg, 31)

	e.PatchRel8At(toEnd)
	e.PatchRel8At(isZero)
}

func emitDynROR(e *emitter.Emitter) {
	e.TestRR(emitter.CReg, emitter.CReg)
	isZero := e.JccRel8(emitter.CondE)

	e.MovRR(emitter.DReg, emitter.CReg)
	e.AndRI(emitter.DReg, 31)
	e.TestRR(emitter.DReg, emitter.DReg)
	isMultipleOf32 := e.JccRel8(emitter.CondE)

	e.ShiftCL(emitter.ShiftRor, emitter.AReg)
	emitCFromHostCF(e)
	toEnd := e.JmpRel8()

	e.PatchRel8At(isMultipleOf32)
	e.MovRR(emitter.DReg, emitter.AReg)
	e.ShiftImm(emitter.ShiftShr, emitter.DReg, 31)
	setCarryFromRegBit0(e, emitter.DReg)

	e.PatchRel8At(toEnd)
	e.PatchRel8At(isZero)
}
