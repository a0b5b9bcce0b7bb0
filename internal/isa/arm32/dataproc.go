package arm32

import (
	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/emitter"
)

const (
	opAND = 0
	opEOR = 1
	opSUB = 2
	opRSB = 3
	opADD = 4
	opADC = 5
	opSBC = 6
	opRSC = 7
	opTST = 8
	opTEQ = 9
	opCMP = 10
	opCMN = 11
	opORR = 12
	opMOV = 13
	opBIC = 14
	opMVN = 15
)

func isLogical(opc uint32) bool {
	switch opc {
	case opAND, opEOR, opTST, opTEQ, opORR, opMOV, opBIC, opMVN:
		return true
	default:
		return false
	}
}

func isTestOnly(opc uint32) bool {
	return opc == opTST || opc == opTEQ || opc == opCMP || opc == opCMN
}

// emitDataProcessing implements the 16 ARM data-processing opcodes
// (spec.md §4.2). Operand2's shifter has already been evaluated into AReg
// by the time the opcode-specific ALU step runs; Rn (when used) sits in
// DReg.
func (t *Translator) emitDataProcessing(e *emitter.Emitter, pc uint32, raw uint32) error {
	opc := (raw >> 21) & 0xF
	s := (raw>>20)&1 != 0
	rn := int((raw >> 16) & 0xF)
	rd := int((raw >> 12) & 0xF)

	emitOperand2(e, pc, raw, s && isLogical(opc))

	needsRn := opc != opMOV && opc != opMVN
	if needsRn {
		loadReg(e, emitter.DReg, rn, pc)
	}

	var result emitter.Reg = emitter.DReg
	invertedCarry := false
	switch opc {
	case opAND, opTST:
		e.AndRR(emitter.DReg, emitter.AReg)
	case opEOR, opTEQ:
		e.XorRR(emitter.DReg, emitter.AReg)
	case opSUB, opCMP:
		e.SubRR(emitter.DReg, emitter.AReg)
		invertedCarry = true
	case opRSB:
		e.SubRR(emitter.AReg, emitter.DReg)
		result = emitter.AReg
		invertedCarry = true
	case opADD, opCMN:
		e.AddRR(emitter.DReg, emitter.AReg)
	case opADC:
		e.BitTest(emitter.PReg, cpu.OffCPSR, cpu.CPSRBitC)
		e.AdcRR(emitter.DReg, emitter.AReg)
	case opSBC:
		e.BitTest(emitter.PReg, cpu.OffCPSR, cpu.CPSRBitC)
		e.Cmc()
		e.SbbRR(emitter.DReg, emitter.AReg)
		invertedCarry = true
	case opRSC:
		e.BitTest(emitter.PReg, cpu.OffCPSR, cpu.CPSRBitC)
		e.Cmc()
		e.SbbRR(emitter.AReg, emitter.DReg)
		result = emitter.AReg
		invertedCarry = true
	case opORR:
		e.OrRR(emitter.DReg, emitter.AReg)
	case opMOV:
		result = emitter.AReg
	case opBIC:
		e.NotR(emitter.AReg)
		e.AndRR(emitter.DReg, emitter.AReg)
	case opMVN:
		e.NotR(emitter.AReg)
		result = emitter.AReg
	}

	if s {
		emitFlagsAfterALU(e, isLogical(opc), invertedCarry)
	}

	if isTestOnly(opc) {
		e.Ret()
		return nil
	}

	e.Store(emitter.PReg, cpu.OffReg(rd), result)

	if rd == 15 {
		if s {
			e.JmpAbs(emitter.AReg, t.Helpers.ChangeMode)
			return nil
		}
		e.Ret()
		return nil
	}

	e.Ret()
	return nil
}

// emitFlagsAfterALU folds the host flags left by the ALU instruction that
// just ran into CPSR. N and Z always update. For arithmetic opcodes (not
// logical) C and V update too: V copies the host OF directly, and C copies
// host CF — inverted again for the SUB/SBC/RSB/RSC family, whose carry-in
// was already presented inverted (spec.md §4.2's "NOT borrow" convention),
// so the net effect is ARM's C = NOT(borrow). Logical opcodes take their C
// from the shifter (already written by emitOperand2) and leave V alone.
// Every flag is captured into a scratch register before any CPSR bit
// write, because bt/bts/btr themselves clobber the very flags being read.
func emitFlagsAfterALU(e *emitter.Emitter, logical, invertCarry bool) {
	nBit := emitter.RBX
	zBit := emitter.RSI
	captureFlagBit(e, emitter.CondS, nBit)
	captureFlagBit(e, emitter.CondE, zBit)

	var cBit, vBit emitter.Reg
	if !logical {
		cBit = emitter.R8
		vBit = emitter.R9
		captureFlagBit(e, emitter.CondB, cBit)
		captureFlagBit(e, emitter.CondO, vBit)
	}

	writeCPSRBitFromReg(e, cpu.CPSRBitN, nBit)
	writeCPSRBitFromReg(e, cpu.CPSRBitZ, zBit)
	if !logical {
		if invertCarry {
			e.XorRI(cBit, 1)
		}
		writeCPSRBitFromReg(e, cpu.CPSRBitC, cBit)
		writeCPSRBitFromReg(e, cpu.CPSRBitV, vBit)
	}
}
