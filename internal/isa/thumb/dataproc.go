package thumb

import (
	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/emitter"
)

// emitAddSub implements format 2 (ADD/SUB Rd, Rs, Rn or #imm3), full NZCV
// (spec.md §4.3).
func (t *Translator) emitAddSub(e *emitter.Emitter, instr uint32) error {
	imm := instr&(1<<10) != 0
	sub := instr&(1<<9) != 0
	rnOrImm := (instr >> 6) & 0x7
	rs := int((instr >> 3) & 0x7)
	rd := int(instr & 0x7)

	e.Load(emitter.DReg, emitter.PReg, cpu.OffReg(rs))
	if imm {
		e.MovRI32(emitter.AReg, rnOrImm)
	} else {
		e.Load(emitter.AReg, emitter.PReg, cpu.OffReg(int(rnOrImm)))
	}

	invertCarry := false
	if sub {
		e.SubRR(emitter.DReg, emitter.AReg)
		invertCarry = true
	} else {
		e.AddRR(emitter.DReg, emitter.AReg)
	}

	e.Store(emitter.PReg, cpu.OffReg(rd), emitter.DReg)
	emitNZCVFromALU(e, invertCarry)
	e.Ret()
	return nil
}

// emitImmediateOp implements format 3 (MOV/CMP/ADD/SUB Rd, #imm8), Rd
// restricted to R0-R7 (spec.md §4.3). MOV updates N/Z only; the other three
// behave like their register-form arithmetic counterparts.
func (t *Translator) emitImmediateOp(e *emitter.Emitter, instr uint32) error {
	op := (instr >> 11) & 0x3
	rd := int((instr >> 8) & 0x7)
	imm8 := instr & 0xFF

	switch op {
	case 0: // MOV
		e.MovRI32(emitter.AReg, imm8)
		e.Store(emitter.PReg, cpu.OffReg(rd), emitter.AReg)
		emitNZ(e, emitter.AReg)
	case 1: // CMP
		e.Load(emitter.DReg, emitter.PReg, cpu.OffReg(rd))
		e.MovRI32(emitter.AReg, imm8)
		e.SubRR(emitter.DReg, emitter.AReg)
		emitNZCVFromALU(e, true)
	case 2: // ADD
		e.Load(emitter.DReg, emitter.PReg, cpu.OffReg(rd))
		e.MovRI32(emitter.AReg, imm8)
		e.AddRR(emitter.DReg, emitter.AReg)
		e.Store(emitter.PReg, cpu.OffReg(rd), emitter.DReg)
		emitNZCVFromALU(e, false)
	case 3: // SUB
		e.Load(emitter.DReg, emitter.PReg, cpu.OffReg(rd))
		e.MovRI32(emitter.AReg, imm8)
		e.SubRR(emitter.DReg, emitter.AReg)
		e.Store(emitter.PReg, cpu.OffReg(rd), emitter.DReg)
		emitNZCVFromALU(e, true)
	}
	e.Ret()
	return nil
}

const (
	aluAND = 0
	aluEOR = 1
	aluLSL = 2
	aluLSR = 3
	aluASR = 4
	aluADC = 5
	aluSBC = 6
	aluROR = 7
	aluTST = 8
	aluNEG = 9
	aluCMP = 10
	aluCMN = 11
	aluORR = 12
	aluMUL = 13
	aluBIC = 14
	aluMVN = 15
)

// emitALU implements format 4's 16 two-register ALU operations (spec.md
// §4.3). Rd is read into DReg, Rs into AReg, matching arm32.dataproc's
// Rn-in-DReg / operand2-in-AReg convention.
func (t *Translator) emitALU(e *emitter.Emitter, instr uint32) error {
	op := (instr >> 6) & 0xF
	rs := int((instr >> 3) & 0x7)
	rd := int(instr & 0x7)

	e.Load(emitter.DReg, emitter.PReg, cpu.OffReg(rd))
	e.Load(emitter.AReg, emitter.PReg, cpu.OffReg(rs))

	var result emitter.Reg = emitter.DReg
	switch op {
	case aluAND:
		e.AndRR(emitter.DReg, emitter.AReg)
		emitNZ(e, result)
	case aluEOR:
		e.XorRR(emitter.DReg, emitter.AReg)
		emitNZ(e, result)
	case aluLSL:
		e.AndRI(emitter.AReg, 0xFF)
		e.MovRR(emitter.CReg, emitter.AReg)
		e.MovRR(emitter.AReg, emitter.DReg)
		emitDynLSL(e)
		result = emitter.AReg
		emitNZ(e, result)
		e.Store(emitter.PReg, cpu.OffReg(rd), result)
		e.Ret()
		return nil
	case aluLSR:
		e.AndRI(emitter.AReg, 0xFF)
		e.MovRR(emitter.CReg, emitter.AReg)
		e.MovRR(emitter.AReg, emitter.DReg)
		emitDynLSR(e)
		result = emitter.AReg
		emitNZ(e, result)
		e.Store(emitter.PReg, cpu.OffReg(rd), result)
		e.Ret()
		return nil
	case aluASR:
		e.AndRI(emitter.AReg, 0xFF)
		e.MovRR(emitter.CReg, emitter.AReg)
		e.MovRR(emitter.AReg, emitter.DReg)
		emitDynASR(e)
		result = emitter.AReg
		emitNZ(e, result)
		e.Store(emitter.PReg, cpu.OffReg(rd), result)
		e.Ret()
		return nil
	case aluROR:
		e.AndRI(emitter.AReg, 0xFF)
		e.MovRR(emitter.CReg, emitter.AReg)
		e.MovRR(emitter.AReg, emitter.DReg)
		emitDynROR(e)
		result = emitter.AReg
		emitNZ(e, result)
		e.Store(emitter.PReg, cpu.OffReg(rd), result)
		e.Ret()
		return nil
	case aluADC:
		e.BitTest(emitter.PReg, cpu.OffCPSR, cpu.CPSRBitC)
		e.AdcRR(emitter.DReg, emitter.AReg)
		emitNZCVFromALU(e, false)
	case aluSBC:
		e.BitTest(emitter.PReg, cpu.OffCPSR, cpu.CPSRBitC)
		e.Cmc()
		e.SbbRR(emitter.DReg, emitter.AReg)
		emitNZCVFromALU(e, true)
	case aluTST:
		e.AndRR(emitter.DReg, emitter.AReg)
		emitNZ(e, result)
		e.Ret()
		return nil
	case aluNEG:
		e.XorRR(emitter.DReg, emitter.DReg)
		e.SubRR(emitter.DReg, emitter.AReg)
		emitNZCVFromALU(e, true)
	case aluCMP:
		e.SubRR(emitter.DReg, emitter.AReg)
		emitNZCVFromALU(e, true)
		e.Ret()
		return nil
	case aluCMN:
		e.AddRR(emitter.DReg, emitter.AReg)
		emitNZCVFromALU(e, false)
		e.Ret()
		return nil
	case aluORR:
		e.OrRR(emitter.DReg, emitter.AReg)
		emitNZ(e, result)
	case aluMUL:
		e.MulR(emitter.DReg, emitter.AReg)
		emitNZ(e, result)
	case aluBIC:
		e.NotR(emitter.AReg)
		e.AndRR(emitter.DReg, emitter.AReg)
		emitNZ(e, result)
	case aluMVN:
		e.NotR(emitter.AReg)
		result = emitter.AReg
		emitNZ(e, result)
	}

	e.Store(emitter.PReg, cpu.OffReg(rd), result)
	e.Ret()
	return nil
}
