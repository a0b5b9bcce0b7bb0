package ppc

import (
	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/emitter"
)

// captureFlagBit snapshots a host condition into a scratch register before
// any CR/XER bit-test instruction runs, since bt/bts/btr clobber the very
// flags being read (mirrors arm32/shifter.go's same-named helper).
func captureFlagBit(e *emitter.Emitter, cc emitter.Cond, dst emitter.Reg) {
	isSet := e.JccRel8(cc)
	e.MovRI32(dst, 0)
	toEnd := e.JmpRel8()
	e.PatchRel8At(isSet)
	e.MovRI32(dst, 1)
	e.PatchRel8At(toEnd)
}

func writeCRBitFromReg(e *emitter.Emitter, crBit uint, reg emitter.Reg) {
	pos := byte(31 - crBit)
	e.TestRR(reg, reg)
	skip := e.JccRel8(emitter.CondE)
	e.BitTestAndSet(emitter.PReg, cpu.OffCR, pos)
	toEnd := e.JmpRel8()
	e.PatchRel8At(skip)
	e.BitTestAndReset(emitter.PReg, cpu.OffCR, pos)
	e.PatchRel8At(toEnd)
}

// emitSetCR0 folds a signed compare-to-zero of result into CR field 0
// (LT/GT/EQ/SO), copying XER.SO into CR0.SO exactly like
// cpu.PPCState.SetCRField (spec.md §4.4, rc-bit forms).
func emitSetCR0(e *emitter.Emitter, result emitter.Reg) {
	e.TestRR(result, result)
	lt := emitter.RBX
	eq := emitter.RSI
	captureFlagBit(e, emitter.CondS, lt)
	captureFlagBit(e, emitter.CondE, eq)

	gt := emitter.R8
	notEq := emitter.R9
	e.MovRR(gt, lt)
	e.XorRI(gt, 1)
	e.MovRR(notEq, eq)
	e.XorRI(notEq, 1)
	e.AndRR(gt, notEq)

	writeCRBitFromReg(e, 0, lt)
	writeCRBitFromReg(e, 1, gt)
	writeCRBitFromReg(e, 2, eq)

	so := emitter.R10
	e.BitTest(emitter.PReg, cpu.OffXER, 31)
	captureFlagBit(e, emitter.CondB, so)
	writeCRBitFromReg(e, 3, so)
}

// emitByteSwap32 reverses the byte order of reg in place, used by
// lwbrx/stwbrx. No host bswap opcode is exposed by the emitter, so the swap
// is built from the same AND/shift primitives every other translator uses.
func emitByteSwap32(e *emitter.Emitter, reg emitter.Reg) {
	t0 := emitter.R8
	t1 := emitter.R9
	t2 := emitter.R10
	t3 := emitter.RBX

	e.MovRR(t3, reg)
	e.AndRI(t3, 0xFF)
	e.ShiftImm(emitter.ShiftShl, t3, 24)

	e.MovRR(t2, reg)
	e.AndRI(t2, 0xFF00)
	e.ShiftImm(emitter.ShiftShl, t2, 8)

	e.MovRR(t1, reg)
	e.AndRI(t1, 0xFF0000)
	e.ShiftImm(emitter.ShiftShr, t1, 8)

	e.MovRR(t0, reg)
	e.ShiftImm(emitter.ShiftShr, t0, 24)

	e.MovRR(reg, t3)
	e.OrRR(reg, t2)
	e.OrRR(reg, t1)
	e.OrRR(reg, t0)
}

func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}
