package thumb

import (
	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/emitter"
)

// emitHiRegOp implements format 5: ADD/CMP/MOV/BX(BLX) across the full
// R0-R15 range via the H1/H2 high-register bits (spec.md §4.3).
func (t *Translator) emitHiRegOp(e *emitter.Emitter, pc uint32, instr uint32) error {
	op := (instr >> 8) & 0x3
	h1 := instr&(1<<7) != 0
	h2 := instr&(1<<6) != 0
	rs := int((instr >> 3) & 0x7)
	rd := int(instr & 0x7)
	if h2 {
		rs += 8
	}
	if h1 {
		rd += 8
	}

	switch op {
	case 0: // ADD
		loadHiReg(e, emitter.DReg, rd, pc)
		loadHiReg(e, emitter.AReg, rs, pc)
		e.AddRR(emitter.DReg, emitter.AReg)
		e.Store(emitter.PReg, cpu.OffReg(rd), emitter.DReg)
	case 1: // CMP
		loadHiReg(e, emitter.DReg, rd, pc)
		loadHiReg(e, emitter.AReg, rs, pc)
		e.SubRR(emitter.DReg, emitter.AReg)
		emitNZCVFromALU(e, true)
	case 2: // MOV
		loadHiReg(e, emitter.AReg, rs, pc)
		e.Store(emitter.PReg, cpu.OffReg(rd), emitter.AReg)
	case 3: // BX / BLX(Rs)
		return t.emitBX(e, rs, h1, pc)
	}
	e.Ret()
	return nil
}

// loadHiReg reads guest register n, applying the classic PC read-ahead
// (pc+4, word-aligned) when n is R15 — Thumb's pipeline offset is 4 bytes
// rather than A32's 8 (spec.md §4.3).
func loadHiReg(e *emitter.Emitter, dst emitter.Reg, n int, pc uint32) {
	if n == 15 {
		e.MovRI32(dst, (pc+4)&^3)
		return
	}
	e.Load(dst, emitter.PReg, cpu.OffReg(n))
}

// emitBX implements BX Rs / BLX Rs (format 5, op==3): CPSR.T takes Rs's low
// bit, cleared before the PC write; BLX (h1==true) additionally saves the
// address of the next instruction to LR (spec.md §4.3, mirroring arm32's
// emitBX).
func (t *Translator) emitBX(e *emitter.Emitter, rs int, link bool, pc uint32) error {
	loadHiReg(e, emitter.AReg, rs, pc)
	e.MovRR(emitter.CReg, emitter.AReg)
	e.AndRI(emitter.CReg, 1)
	writeCPSRBitFromReg(e, cpu.CPSRBitT, emitter.CReg)
	e.AndRI(emitter.AReg, ^int32(1))

	if link {
		e.MovRI32(emitter.DReg, (pc+2)|1)
		e.Store(emitter.PReg, cpu.OffReg(14), emitter.DReg)
	}

	e.Store(emitter.PReg, cpu.OffReg(15), emitter.AReg)
	e.Ret()
	return nil
}

// emitCondBranch implements format 16: Bcond label. The condition gate RETs
// (PC left at the dispatcher's already-advanced value) unless cond holds;
// when it holds, PC is overwritten with the branch target (spec.md §4.3,
// same 14-condition table as A32).
func (t *Translator) emitCondBranch(e *emitter.Emitter, pc uint32, instr uint32) error {
	cond := (instr >> 8) & 0xF
	offset := int32(int8(instr&0xFF)) * 2
	target := pc + 4 + uint32(offset)

	emitConditionGate(e, cond)
	e.MovRI32(emitter.AReg, target)
	e.Store(emitter.PReg, cpu.OffReg(15), emitter.AReg)
	e.Ret()
	return nil
}

// emitUncondBranch implements format 18: B label, an 11-bit signed
// halfword offset (shifted left 1) added to pc+4 (spec.md §4.3).
func (t *Translator) emitUncondBranch(e *emitter.Emitter, pc uint32, instr uint32) error {
	offset := signExtend(instr&0x7FF, 11) * 2
	target := pc + 4 + uint32(offset)
	e.MovRI32(emitter.AReg, target)
	e.Store(emitter.PReg, cpu.OffReg(15), emitter.AReg)
	e.Ret()
	return nil
}

// emitBranchLink implements format 19's two-instruction BL sequence
// (spec.md §4.3): the first half (H==0) stashes pc+4 plus its 11-bit high
// offset, sign-extended and shifted left 12, into LR; the second half (H==1) adds its own low 11 bits (shifted
// left 1) to LR to form the call target, and saves the return address
// (next instruction, Thumb bit set) into LR.
func (t *Translator) emitBranchLink(e *emitter.Emitter, pc uint32, instr uint32) error {
	high := instr&(1<<11) == 0
	off11 := instr & 0x7FF

	if high {
		offset := signExtend(off11, 11) << 12
		e.MovRI32(emitter.AReg, pc+4+uint32(offset))
		e.Store(emitter.PReg, cpu.OffReg(14), emitter.AReg)
		e.Ret()
		return nil
	}

	e.Load(emitter.AReg, emitter.PReg, cpu.OffReg(14))
	e.AddRI(emitter.AReg, int32(off11<<1))
	e.MovRR(emitter.CReg, emitter.AReg)
	e.MovRI32(emitter.DReg, (pc+2)|1)
	e.Store(emitter.PReg, cpu.OffReg(14), emitter.DReg)
	e.Store(emitter.PReg, cpu.OffReg(15), emitter.CReg)
	e.Ret()
	return nil
}

func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}
