package arm32

import (
	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/emitter"
)

// emitBranch implements B and BL: a signed 24-bit word offset, shifted left
// two and sign-extended, added to pc+8; BL additionally saves the address of
// the next instruction (pc+4) to LR (spec.md §4.2 "Branch").
func (t *Translator) emitBranch(e *emitter.Emitter, pc uint32, raw uint32) error {
	link := raw&(1<<24) != 0
	offset := int32(raw<<8) >> 6 // sign-extend bits [23:0], then *4
	target := pc + 8 + uint32(offset)

	if link {
		e.MovRI32(emitter.AReg, pc+4)
		e.Store(emitter.PReg, cpu.OffReg(14), emitter.AReg)
	}

	e.MovRI32(emitter.AReg, target)
	e.Store(emitter.PReg, cpu.OffReg(15), emitter.AReg)
	e.Ret()
	return nil
}

// emitBX implements BX and BLX(register): CPSR.T takes Rn's low bit, which
// is then cleared before the value is written to PC. BLX additionally saves
// the address of the next instruction to LR (spec.md §4.2 "Branch").
func (t *Translator) emitBX(e *emitter.Emitter, raw uint32, link bool) error {
	rn := int(raw & 0xF)
	rm := emitter.AReg

	e.Load(rm, emitter.PReg, cpu.OffReg(rn))
	e.MovRR(emitter.CReg, rm)
	e.AndRI(emitter.CReg, 1)
	writeCPSRBitFromReg(e, cpu.CPSRBitT, emitter.CReg)
	e.AndRI(rm, ^int32(1))

	if link {
		// Rn==15 is UNPREDICTABLE and never used for BLX; pc isn't known
		// here since BX/BLX(reg) carry no usable literal pc field, but the
		// link value only ever needs the already-incremented PC the
		// dispatcher wrote before entering this body.
		e.Load(emitter.DReg, emitter.PReg, cpu.OffReg(15))
		e.Store(emitter.PReg, cpu.OffReg(14), emitter.DReg)
	}

	e.Store(emitter.PReg, cpu.OffReg(15), rm)
	e.Ret()
	return nil
}
