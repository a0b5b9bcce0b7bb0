package thumb

import (
	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/emitter"
)

// emitLoadInto and emitStoreFrom issue a single load or store through the
// address already computed into emitter.RSI and rd, mirroring arm32's emitLoad/emitStore register
// convention: RSI carries the address, RDX carries the value pointer for a
// load or the value itself for a store (spec.md §4.3, shared helper table
// with §4.2).
func (t *Translator) emitLoadInto(e *emitter.Emitter, rd int, helper uint64) {
	e.MovRR(emitter.DReg, emitter.PReg)
	e.AddRI(emitter.DReg, cpu.OffReg(rd))
	emitHelperCall(e, helper)
	e.TestRR(emitter.AReg, emitter.AReg)
	ok := e.JccRel8(emitter.CondNE)
	e.Ret()
	e.PatchRel8At(ok)
	e.Ret()
}

func (t *Translator) emitStoreFrom(e *emitter.Emitter, rd int, helper uint64) {
	e.Load(emitter.DReg, emitter.PReg, cpu.OffReg(rd))
	emitHelperCall(e, helper)
	e.TestRR(emitter.AReg, emitter.AReg)
	ok := e.JccRel8(emitter.CondNE)
	e.Ret()
	e.PatchRel8At(ok)
	e.Ret()
}

// emitPCRelLoad implements format 6: LDR Rd, [PC AND NOT 2, #imm]. PC here
// is the pipeline's read-ahead value (pc+4); bit 1 is always cleared before
// adding the word-aligned offset (spec.md §4.3).
func (t *Translator) emitPCRelLoad(e *emitter.Emitter, pc uint32, instr uint32) error {
	rd := int((instr >> 8) & 0x7)
	word8 := instr & 0xFF
	addr := ((pc + 4) &^ 2) + word8*4

	e.MovRI32(emitter.RSI, addr)
	t.emitLoadInto(e, rd, t.Helpers.LoadMemory32)
	return nil
}

// emitImmediateTransfer implements format 9: LDR/STR(B) Rd, [Rb, #imm5]
// (word offsets scaled by 4, byte offsets unscaled; spec.md §4.3).
func (t *Translator) emitImmediateTransfer(e *emitter.Emitter, instr uint32) error {
	byteAccess := instr&(1<<12) != 0
	load := instr&(1<<11) != 0
	offset5 := (instr >> 6) & 0x1F
	rb := int((instr >> 3) & 0x7)
	rd := int(instr & 0x7)

	offset := offset5 * 4
	if byteAccess {
		offset = offset5
	}

	e.Load(emitter.RSI, emitter.PReg, cpu.OffReg(rb))
	e.AddRI(emitter.RSI, int32(offset))

	if load {
		if byteAccess {
			t.emitLoadInto(e, rd, t.Helpers.LoadMemory8)
		} else {
			t.emitLoadInto(e, rd, t.Helpers.LoadMemory32)
		}
		return nil
	}
	if byteAccess {
		t.emitStoreFrom(e, rd, t.Helpers.StoreMemory8)
	} else {
		t.emitStoreFrom(e, rd, t.Helpers.StoreMemory32)
	}
	return nil
}

// emitHalfwordTransfer implements format 10: LDRH/STRH Rd, [Rb, #imm5*2]
// (spec.md §4.3).
func (t *Translator) emitHalfwordTransfer(e *emitter.Emitter, instr uint32) error {
	load := instr&(1<<11) != 0
	offset5 := (instr >> 6) & 0x1F
	rb := int((instr >> 3) & 0x7)
	rd := int(instr & 0x7)

	e.Load(emitter.RSI, emitter.PReg, cpu.OffReg(rb))
	e.AddRI(emitter.RSI, int32(offset5*2))

	if load {
		t.emitLoadInto(e, rd, t.Helpers.LoadMemory16)
		return nil
	}
	t.emitStoreFrom(e, rd, t.Helpers.StoreMemory16)
	return nil
}

// emitSPRelTransfer implements format 11: LDR/STR Rd, [SP, #imm8*4]
// (spec.md §4.3).
func (t *Translator) emitSPRelTransfer(e *emitter.Emitter, instr uint32) error {
	load := instr&(1<<11) != 0
	rd := int((instr >> 8) & 0x7)
	word8 := instr & 0xFF

	e.Load(emitter.RSI, emitter.PReg, cpu.OffReg(13))
	e.AddRI(emitter.RSI, int32(word8*4))

	if load {
		t.emitLoadInto(e, rd, t.Helpers.LoadMemory32)
		return nil
	}
	t.emitStoreFrom(e, rd, t.Helpers.StoreMemory32)
	return nil
}

// emitBlockTransfer implements format 15: LDMIA/STMIA Rb!, {rlist}, always
// ascending with writeback, restricted to R0-R7 (spec.md §4.3).
func (t *Translator) emitBlockTransfer(e *emitter.Emitter, instr uint32) error {
	load := instr&(1<<11) != 0
	rb := int((instr >> 8) & 0x7)
	rlist := instr & 0xFF

	e.Load(emitter.RBX, emitter.PReg, cpu.OffReg(rb))

	for i := 0; i < 8; i++ {
		if rlist&(1<<uint(i)) == 0 {
			continue
		}
		r := i
		e.MovRR(emitter.RSI, emitter.RBX)
		if load {
			e.MovRR(emitter.DReg, emitter.PReg)
			e.AddRI(emitter.DReg, cpu.OffReg(r))
			emitHelperCall(e, t.Helpers.LoadMemory32)
		} else {
			e.Load(emitter.DReg, emitter.PReg, cpu.OffReg(r))
			emitHelperCall(e, t.Helpers.StoreMemory32)
		}
		e.TestRR(emitter.AReg, emitter.AReg)
		ok := e.JccRel8(emitter.CondNE)
		e.Ret()
		e.PatchRel8At(ok)
		e.AddRI(emitter.RBX, 4)
	}

	e.Store(emitter.PReg, cpu.OffReg(rb), emitter.RBX)
	e.Ret()
	return nil
}
