package thumb

import (
	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/emitter"
)

// captureFlagBit and writeCPSRBitFromReg mirror arm32's same-named helpers:
// several ALU paths must snapshot a host flag into a scratch register before
// any CPSR bit-test instruction, since bt/bts/btr clobber the very flags
// being read (spec.md §4.2, shared with §4.3).
func captureFlagBit(e *emitter.Emitter, cc emitter.Cond, dst emitter.Reg) {
	isSet := e.JccRel8(cc)
	e.MovRI32(dst, 0)
	toEnd := e.JmpRel8()
	e.PatchRel8At(isSet)
	e.MovRI32(dst, 1)
	e.PatchRel8At(toEnd)
}

func writeCPSRBitFromReg(e *emitter.Emitter, bit int, reg emitter.Reg) {
	e.TestRR(reg, reg)
	skip := e.JccRel8(emitter.CondE)
	e.BitTestAndSet(emitter.PReg, cpu.OffCPSR, byte(bit))
	toEnd := e.JmpRel8()
	e.PatchRel8At(skip)
	e.BitTestAndReset(emitter.PReg, cpu.OffCPSR, byte(bit))
	e.PatchRel8At(toEnd)
}

// emitNZ updates N and Z from the result register passed in (tested
// against itself, since the preceding ALU op already left the right flags
// but a `test` keeps the sequence uniform regardless of which instruction
// produced the result).
func emitNZ(e *emitter.Emitter, result emitter.Reg) {
	nBit := emitter.RBX
	zBit := emitter.RSI
	e.TestRR(result, result)
	captureFlagBit(e, emitter.CondS, nBit)
	captureFlagBit(e, emitter.CondE, zBit)
	writeCPSRBitFromReg(e, cpu.CPSRBitN, nBit)
	writeCPSRBitFromReg(e, cpu.CPSRBitZ, zBit)
}

// emitNZCVFromALU folds the host flags an arithmetic ALU op just left (add,
// sub, adc, sbb) into full NZCV, inverting carry for the subtract family
// per ARM's "C means no borrow" convention (spec.md §4.2).
func emitNZCVFromALU(e *emitter.Emitter, invertCarry bool) {
	nBit := emitter.RBX
	zBit := emitter.RSI
	cBit := emitter.R8
	vBit := emitter.R9
	captureFlagBit(e, emitter.CondS, nBit)
	captureFlagBit(e, emitter.CondE, zBit)
	captureFlagBit(e, emitter.CondB, cBit)
	captureFlagBit(e, emitter.CondO, vBit)

	writeCPSRBitFromReg(e, cpu.CPSRBitN, nBit)
	writeCPSRBitFromReg(e, cpu.CPSRBitZ, zBit)
	if invertCarry {
		e.XorRI(cBit, 1)
	}
	writeCPSRBitFromReg(e, cpu.CPSRBitC, cBit)
	writeCPSRBitFromReg(e, cpu.CPSRBitV, vBit)
}

// emitCFromHostCF folds the host carry flag from a shift instruction into
// CPSR.C directly (no inversion: shift carry-out has the same polarity on
// both ISAs).
func emitCFromHostCF(e *emitter.Emitter) {
	skip := e.JccRel8(emitter.CondAE)
	e.BitTestAndSet(emitter.PReg, cpu.OffCPSR, cpu.CPSRBitC)
	toEnd := e.JmpRel8()
	e.PatchRel8At(skip)
	e.BitTestAndReset(emitter.PReg, cpu.OffCPSR, cpu.CPSRBitC)
	e.PatchRel8At(toEnd)
}

func setCarryFromRegBit0(e *emitter.Emitter, reg emitter.Reg) {
	writeCPSRBitFromReg(e, cpu.CPSRBitC, reg)
}
