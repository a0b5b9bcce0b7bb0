package arm32

import (
	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/emitter"
)

// emitSingleTransfer implements LDR/STR(B) with immediate or
// shifted-register offset, pre/post-indexing and writeback (spec.md §4.2
// "Load/store").
func (t *Translator) emitSingleTransfer(e *emitter.Emitter, pc uint32, raw uint32) error {
	p := raw&(1<<24) != 0
	u := raw&(1<<23) != 0
	b := raw&(1<<22) != 0
	w := raw&(1<<21) != 0
	l := raw&(1<<20) != 0
	rn := int((raw >> 16) & 0xF)
	rd := int((raw >> 12) & 0xF)

	const base = emitter.RBX
	const offs = emitter.AReg
	const addr = emitter.RSI

	loadReg(e, base, rn, pc)
	if raw&0x02000000 != 0 {
		emitOperand2ShiftImm(e, pc, raw, false)
	} else {
		e.MovRI32(offs, raw&0xFFF)
	}

	if p {
		e.MovRR(addr, base)
		if u {
			e.AddRR(addr, offs)
		} else {
			e.SubRR(addr, offs)
		}
		if w {
			e.Store(emitter.PReg, cpu.OffReg(rn), addr)
		}
	} else {
		e.MovRR(addr, base)
		if u {
			e.AddRR(base, offs)
		} else {
			e.SubRR(base, offs)
		}
		e.Store(emitter.PReg, cpu.OffReg(rn), base)
	}

	if l {
		return t.emitLoad(e, rd, b, addr)
	}
	return t.emitStore(e, rd, b, addr)
}

func (t *Translator) emitLoad(e *emitter.Emitter, rd int, byteAccess bool, addr emitter.Reg) error {
	e.MovRR(emitter.RSI, addr)
	e.MovRR(emitter.DReg, emitter.PReg)
	e.AddRI(emitter.DReg, cpu.OffReg(rd))
	if byteAccess {
		emitHelperCall(e, t.Helpers.LoadMemory8)
	} else {
		emitHelperCall(e, t.Helpers.LoadMemory32)
	}
	e.TestRR(emitter.AReg, emitter.AReg)
	ok := e.JccRel8(emitter.CondNE)
	e.Ret() // fault: helper already triggered the abort
	e.PatchRel8At(ok)

	if rd != 15 {
		e.Ret()
		return nil
	}
	// Load-to-PC-with-exchange: low bit of the loaded value selects Thumb.
	e.Load(emitter.AReg, emitter.PReg, cpu.OffReg(15))
	e.MovRR(emitter.CReg, emitter.AReg)
	e.AndRI(emitter.CReg, 1)
	e.AndRI(emitter.AReg, ^int32(1))
	e.Store(emitter.PReg, cpu.OffReg(15), emitter.AReg)
	writeCPSRBitFromReg(e, cpu.CPSRBitT, emitter.CReg)
	e.Ret()
	return nil
}

func (t *Translator) emitStore(e *emitter.Emitter, rd int, byteAccess bool, addr emitter.Reg) error {
	e.MovRR(emitter.RSI, addr)
	loadReg(e, emitter.DReg, rd, 0) // store never targets PC with read-ahead semantics callers rely on
	if byteAccess {
		emitHelperCall(e, t.Helpers.StoreMemory8)
	} else {
		emitHelperCall(e, t.Helpers.StoreMemory32)
	}
	e.TestRR(emitter.AReg, emitter.AReg)
	ok := e.JccRel8(emitter.CondNE)
	e.Ret()
	e.PatchRel8At(ok)
	e.Ret()
	return nil
}

// emitBlockTransfer implements LDM/STM with the 16-bit register mask,
// ascending/descending enumeration, S-bit user-mode banking, and the
// CPSR-from-SPSR restore when S is set and PC is in the load list
// (spec.md §4.2 "Load/store multiple").
func (t *Translator) emitBlockTransfer(e *emitter.Emitter, raw uint32) error {
	p := raw&(1<<24) != 0
	u := raw&(1<<23) != 0
	s := raw&(1<<22) != 0
	w := raw&(1<<21) != 0
	l := raw&(1<<20) != 0
	rn := int((raw >> 16) & 0xF)
	mask := raw & 0xFFFF

	pcInList := mask&(1<<15) != 0
	userBanked := s && (!l || !pcInList)

	if userBanked {
		emitHelperCall(e, t.Helpers.WriteModeRegs)
	}

	e.Load(emitter.RBX, emitter.PReg, cpu.OffReg(rn))

	// Registers are visited low-to-high when U=1 and high-to-low when U=0,
	// with the address climbing or descending by 4 as each one is visited,
	// so the lowest-numbered register always lands at the lowest address;
	// P selects whether the step is applied before or after that
	// register's access.
	step := int32(4)
	if !u {
		step = -4
	}

	for k := 0; k < 16; k++ {
		r := k
		if !u {
			r = 15 - k
		}
		if mask&(1<<uint(r)) == 0 {
			continue
		}
		if p {
			e.AddRI(emitter.RBX, step)
		}
		if l {
			e.MovRR(emitter.RSI, emitter.RBX)
			e.MovRR(emitter.DReg, emitter.PReg)
			e.AddRI(emitter.DReg, cpu.OffReg(r))
			emitHelperCall(e, t.Helpers.LoadMemory32)
			e.TestRR(emitter.AReg, emitter.AReg)
			ok := e.JccRel8(emitter.CondNE)
			e.Ret()
			e.PatchRel8At(ok)
		} else {
			e.MovRR(emitter.RSI, emitter.RBX)
			e.Load(emitter.DReg, emitter.PReg, cpu.OffReg(r))
			emitHelperCall(e, t.Helpers.StoreMemory32)
			e.TestRR(emitter.AReg, emitter.AReg)
			ok := e.JccRel8(emitter.CondNE)
			e.Ret()
			e.PatchRel8At(ok)
		}
		if !p {
			e.AddRI(emitter.RBX, step)
		}
	}

	if w {
		e.Store(emitter.PReg, cpu.OffReg(rn), emitter.RBX)
	}

	if userBanked {
		emitHelperCall(e, t.Helpers.ReadModeRegs)
	}

	if l && pcInList && s {
		e.JmpAbs(emitter.AReg, t.Helpers.ChangeMode)
		return nil
	}
	e.Ret()
	return nil
}
