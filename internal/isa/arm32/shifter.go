package arm32

import (
	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/emitter"
)

// loadReg emits code leaving guest register n's value in dst. Reading R15
// yields pc+8 (the classic ARM pipeline read-ahead); since pc is known at
// translate time this is a materialized constant, not a memory read.
func loadReg(e *emitter.Emitter, dst emitter.Reg, n int, pc uint32) {
	if n == 15 {
		e.MovRI32(dst, pc+8)
		return
	}
	e.Load(dst, emitter.PReg, cpu.OffReg(n))
}

func ror32(v, amt uint32) uint32 {
	amt &= 31
	if amt == 0 {
		return v
	}
	return (v >> amt) | (v << (32 - amt))
}

// emitOperand2 decodes a data-processing operand2 field and leaves its
// value in AReg. When setFlags, the shifter's carry-out (when the shifter
// defines one) is folded into CPSR bit C — used by the logical opcodes,
// which take their C update from the shifter rather than from an ALU flag
// (spec.md §4.2).
func emitOperand2(e *emitter.Emitter, pc uint32, raw uint32, setFlags bool) {
	switch {
	case raw&0x02000000 != 0:
		emitOperand2Immediate(e, raw, setFlags)
	case raw&0x00000010 != 0:
		emitOperand2ShiftReg(e, pc, raw, setFlags)
	default:
		emitOperand2ShiftImm(e, pc, raw, setFlags)
	}
}

func emitOperand2Immediate(e *emitter.Emitter, raw uint32, setFlags bool) {
	imm8 := raw & 0xFF
	amt := ((raw >> 8) & 0xF) * 2
	value := ror32(imm8, amt)
	e.MovRI32(emitter.AReg, value)
	if setFlags && amt != 0 {
		if value&0x80000000 != 0 {
			e.BitTestAndSet(emitter.PReg, cpu.OffCPSR, cpu.CPSRBitC)
		} else {
			e.BitTestAndReset(emitter.PReg, cpu.OffCPSR, cpu.CPSRBitC)
		}
	}
}

func emitCarryFromHostCF(e *emitter.Emitter) {
	skip := e.JccRel8(emitter.CondAE)
	e.BitTestAndSet(emitter.PReg, cpu.OffCPSR, cpu.CPSRBitC)
	toEnd := e.JmpRel8()
	e.PatchRel8At(skip)
	e.BitTestAndReset(emitter.PReg, cpu.OffCPSR, cpu.CPSRBitC)
	e.PatchRel8At(toEnd)
}

// writeCPSRBitFromReg sets CPSR bit `bit` from bit 0 of reg (0 or 1).
func writeCPSRBitFromReg(e *emitter.Emitter, bit int, reg emitter.Reg) {
	e.TestRR(reg, reg)
	skip := e.JccRel8(emitter.CondE)
	e.BitTestAndSet(emitter.PReg, cpu.OffCPSR, byte(bit))
	toEnd := e.JmpRel8()
	e.PatchRel8At(skip)
	e.BitTestAndReset(emitter.PReg, cpu.OffCPSR, byte(bit))
	e.PatchRel8At(toEnd)
}

// setCarryFromRegBit0 sets CPSR.C from bit 0 of reg (0 or 1).
func setCarryFromRegBit0(e *emitter.Emitter, reg emitter.Reg) {
	writeCPSRBitFromReg(e, cpu.CPSRBitC, reg)
}

// captureFlagBit stores 1 into dst if cc holds (as evaluated against the
// current host flags) or 0 otherwise, without disturbing those flags —
// used to snapshot several ALU flags into registers before any of the
// per-bit CPSR writes (which themselves clobber flags) can overwrite them.
func captureFlagBit(e *emitter.Emitter, cc emitter.Cond, dst emitter.Reg) {
	isSet := e.JccRel8(cc)
	e.MovRI32(dst, 0)
	toEnd := e.JmpRel8()
	e.PatchRel8At(isSet)
	e.MovRI32(dst, 1)
	e.PatchRel8At(toEnd)
}

// emitOperand2ShiftImm handles Rm shifted by a 5-bit immediate amount,
// including the three special zero-amount encodings (spec.md §4.2).
func emitOperand2ShiftImm(e *emitter.Emitter, pc uint32, raw uint32, setFlags bool) {
	rm := int(raw & 0xF)
	shiftType := (raw >> 5) & 0x3
	amt := (raw >> 7) & 0x1F
	loadReg(e, emitter.AReg, rm, pc)

	switch shiftType {
	case 0: // LSL
		if amt == 0 {
			return
		}
		e.ShiftImm(emitter.ShiftShl, emitter.AReg, byte(amt))
		if setFlags {
			emitCarryFromHostCF(e)
		}
	case 1: // LSR, #0 means shift by 32
		if amt == 0 {
			e.MovRR(emitter.CReg, emitter.AReg)
			e.ShiftImm(emitter.ShiftShr, emitter.CReg, 31)
			if setFlags {
				setCarryFromRegBit0(e, emitter.CReg)
			}
			e.XorRR(emitter.AReg, emitter.AReg)
			return
		}
		e.ShiftImm(emitter.ShiftShr, emitter.AReg, byte(amt))
		if setFlags {
			emitCarryFromHostCF(e)
		}
	case 2: // ASR, #0 means shift by 32
		if amt == 0 {
			e.MovRR(emitter.CReg, emitter.AReg)
			e.ShiftImm(emitter.ShiftShr, emitter.CReg, 31)
			if setFlags {
				setCarryFromRegBit0(e, emitter.CReg)
			}
			e.ShiftImm(emitter.ShiftSar, emitter.AReg, 31)
			return
		}
		e.ShiftImm(emitter.ShiftSar, emitter.AReg, byte(amt))
		if setFlags {
			emitCarryFromHostCF(e)
		}
	case 3: // ROR, #0 means RRX (rotate right through carry by 1)
		if amt == 0 {
			e.BitTest(emitter.PReg, cpu.OffCPSR, cpu.CPSRBitC)
			e.ShiftImm(emitter.ShiftRcr, emitter.AReg, 1)
			if setFlags {
				emitCarryFromHostCF(e)
			}
			return
		}
		e.ShiftImm(emitter.ShiftRor, emitter.AReg, byte(amt))
		if setFlags {
			emitCarryFromHostCF(e)
		}
	}
}

// emitOperand2ShiftReg handles Rm shifted by the low byte of Rs, with the
// dynamic 0/31/32/33+ boundary behavior spec.md §8 tests for directly.
func emitOperand2ShiftReg(e *emitter.Emitter, pc uint32, raw uint32, setFlags bool) {
	rm := int(raw & 0xF)
	shiftType := (raw >> 5) & 0x3
	rs := int((raw >> 8) & 0xF)

	loadReg(e, emitter.AReg, rm, pc)
	loadReg(e, emitter.CReg, rs, pc)
	e.AndRI(emitter.CReg, 0xFF)

	switch shiftType {
	case 0:
		emitDynLSL(e, setFlags)
	case 1:
		emitDynLSR(e, setFlags)
	case 2:
		emitDynASR(e, setFlags)
	case 3:
		emitDynROR(e, setFlags)
	}
}

func emitDynLSL(e *emitter.Emitter, setFlags bool) {
	e.TestRR(emitter.CReg, emitter.CReg)
	isZero := e.JccRel8(emitter.CondE)
	e.CmpRI(emitter.CReg, 32)
	isBig := e.JccRel8(emitter.CondA)
	isEq := e.JccRel8(emitter.CondE)

	e.ShiftCL(emitter.ShiftShl, emitter.AReg)
	if setFlags {
		emitCarryFromHostCF(e)
	}
	toEnd1 := e.JmpRel8()

	e.PatchRel8At(isEq)
	e.MovRR(emitter.DReg, emitter.AReg)
	e.AndRI(emitter.DReg, 1)
	if setFlags {
		setCarryFromRegBit0(e, emitter.DReg)
	}
	e.XorRR(emitter.AReg, emitter.AReg)
	toEnd2 := e.JmpRel8()

	e.PatchRel8At(isBig)
	if setFlags {
		e.BitTestAndReset(emitter.PReg, cpu.OffCPSR, cpu.CPSRBitC)
	}
	e.XorRR(emitter.AReg, emitter.AReg)

	e.PatchRel8At(toEnd1)
	e.PatchRel8At(toEnd2)
	e.PatchRel8At(isZero)
}

func emitDynLSR(e *emitter.Emitter, setFlags bool) {
	e.TestRR(emitter.CReg, emitter.CReg)
	isZero := e.JccRel8(emitter.CondE)
	e.CmpRI(emitter.CReg, 32)
	isBig := e.JccRel8(emitter.CondA)
	isEq := e.JccRel8(emitter.CondE)

	e.ShiftCL(emitter.ShiftShr, emitter.AReg)
	if setFlags {
		emitCarryFromHostCF(e)
	}
	toEnd1 := e.JmpRel8()

	e.PatchRel8At(isEq)
	e.MovRR(emitter.DReg, emitter.AReg)
	e.ShiftImm(emitter.ShiftShr, emitter.DReg, 31)
	if setFlags {
		setCarryFromRegBit0(e, emitter.DReg)
	}
	e.XorRR(emitter.AReg, emitter.AReg)
	toEnd2 := e.JmpRel8()

	e.PatchRel8At(isBig)
	if setFlags {
		e.BitTestAndReset(emitter.PReg, cpu.OffCPSR, cpu.CPSRBitC)
	}
	e.XorRR(emitter.AReg, emitter.AReg)

	e.PatchRel8At(toEnd1)
	e.PatchRel8At(toEnd2)
	e.PatchRel8At(isZero)
}

func emitDynASR(e *emitter.Emitter, setFlags bool) {
	e.TestRR(emitter.CReg, emitter.CReg)
	isZero := e.JccRel8(emitter.CondE)
	e.CmpRI(emitter.CReg, 32)
	isBigOrEq := e.JccRel8(emitter.CondAE)

	e.ShiftCL(emitter.ShiftSar, emitter.AReg)
	if setFlags {
		emitCarryFromHostCF(e)
	}
	toEnd := e.JmpRel8()

	e.PatchRel8At(isBigOrEq)
	e.MovRR(emitter.DReg, emitter.AReg)
	e.ShiftImm(emitter.ShiftShr, emitter.DReg, 31)
	if setFlags {
		setCarryFromRegBit0(e, emitter.DReg)
	}
	e.ShiftImm(emitter.ShiftSar, emitter.AReg, 31)

	e.PatchRel8At(toEnd)
	e.PatchRel8At(isZero)
}

func emitDynROR(e *emitter.Emitter, setFlags bool) {
	e.TestRR(emitter.CReg, emitter.CReg)
	isZero := e.JccRel8(emitter.CondE)

	e.MovRR(emitter.DReg, emitter.CReg)
	e.AndRI(emitter.DReg, 31)
	e.TestRR(emitter.DReg, emitter.DReg)
	isMultipleOf32 := e.JccRel8(emitter.CondE)

	e.ShiftCL(emitter.ShiftRor, emitter.AReg)
	if setFlags {
		emitCarryFromHostCF(e)
	}
	toEnd := e.JmpRel8()

	e.PatchRel8At(isMultipleOf32)
	if setFlags {
		e.MovRR(emitter.DReg, emitter.AReg)
		e.ShiftImm(emitter.ShiftShr, emitter.DReg, 31)
		setCarryFromRegBit0(e, emitter.DReg)
	}

	e.PatchRel8At(toEnd)
	e.PatchRel8At(isZero)
}
