package arm32

import (
	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/emitter"
)

// emitMRS copies CPSR or the active SPSR into Rd (spec.md §4.2 "Status
// register access"). SPSR has no fixed flat offset (it is banked by mode),
// so reading it goes through a runtime helper; CPSR is a plain field load.
func (t *Translator) emitMRS(e *emitter.Emitter, raw uint32) error {
	toSPSR := raw&(1<<22) != 0
	rd := int((raw >> 12) & 0xF)

	if toSPSR {
		emitHelperCallNoMask(e, t.Helpers.ReadSPSR)
	} else {
		e.Load(emitter.AReg, emitter.PReg, cpu.OffCPSR)
	}
	e.Store(emitter.PReg, cpu.OffReg(rd), emitter.AReg)
	e.Ret()
	return nil
}

// emitMSR writes the field-masked subset of CPSR or SPSR the mask bits
// select (c/x/s/f, one byte each). The rotate/immediate split, like the
// data-processing immediate operand, is fully static, so the field mask and
// an immediate operand are both compile-time constants (spec.md §4.2).
//
// A CPSR write that touches the control byte (mask bit 0, which carries the
// mode field) changes which bank is active, so it tail-calls the
// mode-change helper afterward; this is a bank swap only — unlike the
// exception-return path, SPSR is never consulted (see changeMode in
// armabi/helpers.go and the decision recorded in DESIGN.md).
func (t *Translator) emitMSR(e *emitter.Emitter, raw uint32) error {
	toSPSR := raw&(1<<22) != 0
	mask := (raw >> 16) & 0xF

	var fieldMask uint32
	if mask&1 != 0 {
		fieldMask |= 0x000000FF
	}
	if mask&2 != 0 {
		fieldMask |= 0x0000FF00
	}
	if mask&4 != 0 {
		fieldMask |= 0x00FF0000
	}
	if mask&8 != 0 {
		fieldMask |= 0xFF000000
	}

	if raw&0x02000000 != 0 {
		imm8 := raw & 0xFF
		rot := ((raw >> 8) & 0xF) * 2
		e.MovRI32(emitter.AReg, ror32(imm8, rot))
	} else {
		rm := int(raw & 0xF)
		e.Load(emitter.AReg, emitter.PReg, cpu.OffReg(rm))
	}
	e.AndRI(emitter.AReg, int32(fieldMask))
	e.MovRR(emitter.DReg, emitter.AReg) // masked operand bits, saved across the read below

	if toSPSR {
		e.PushR(emitter.DReg) // RDX is caller-saved across the helper call
		emitHelperCallNoMask(e, t.Helpers.ReadSPSR)
		e.PopR(emitter.DReg)
	} else {
		e.Load(emitter.AReg, emitter.PReg, cpu.OffCPSR)
	}
	e.AndRI(emitter.AReg, int32(^fieldMask))
	e.OrRR(emitter.AReg, emitter.DReg)

	if toSPSR {
		e.MovRR(emitter.RSI, emitter.AReg)
		emitHelperCallNoMask(e, t.Helpers.WriteSPSR)
		e.Ret()
		return nil
	}

	e.Store(emitter.PReg, cpu.OffCPSR, emitter.AReg)
	if mask&1 != 0 {
		e.JmpAbs(emitter.AReg, t.Helpers.MSRChangeMode)
		return nil
	}
	e.Ret()
	return nil
}
