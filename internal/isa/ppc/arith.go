package ppc

import (
	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/emitter"
)

// emitAddImmediate implements addi/addis (D-form): rD = (rA or 0) + SIMM,
// with addis's immediate pre-shifted 16 bits. Neither form touches CR or XER
// (spec.md §8 scenario 4).
func (t *Translator) emitAddImmediate(e *emitter.Emitter, raw uint32, shifted bool) error {
	rd := (raw >> 21) & 0x1F
	ra := (raw >> 16) & 0x1F
	imm := int32(int16(raw & 0xFFFF))
	if shifted {
		imm <<= 16
	}

	if ra == 0 {
		e.MovRI32(emitter.AReg, uint32(imm))
	} else {
		e.Load(emitter.AReg, emitter.PReg, cpu.OffReg(int(ra)))
		e.AddRI(emitter.AReg, imm)
	}

	e.Store(emitter.PReg, cpu.OffReg(int(rd)), emitter.AReg)
	e.Ret()
	return nil
}

const (
	opOR = iota
	opXOR
	opAND
)

// emitLogicalImmediate implements ori/oris/xori/xoris/andi./andis. (D-form):
// rA = rS <op> UI, UI zero-extended and shifted 16 bits for the "is" forms.
// andi./andis. always set CR0; the OR/XOR immediate forms never touch CR
// (spec.md §4.4).
func (t *Translator) emitLogicalImmediate(e *emitter.Emitter, raw uint32, op int, shifted bool) error {
	rs := (raw >> 21) & 0x1F
	ra := (raw >> 16) & 0x1F
	imm := raw & 0xFFFF
	if shifted {
		imm <<= 16
	}

	e.Load(emitter.AReg, emitter.PReg, cpu.OffReg(int(rs)))
	switch op {
	case opOR:
		e.OrRI(emitter.AReg, int32(imm))
	case opXOR:
		e.XorRI(emitter.AReg, int32(imm))
	case opAND:
		e.AndRI(emitter.AReg, int32(imm))
	}
	e.Store(emitter.PReg, cpu.OffReg(int(ra)), emitter.AReg)

	if op == opAND {
		emitSetCR0(e, emitter.AReg)
	}
	e.Ret()
	return nil
}

// emitAdd implements add/add./addo/addo. (XO-form, opcode 31 xo 266): rD =
// rA + rB. XER.OV/SO from the overflow-enable forms is not tracked by the
// fast path (spec.md §4.4's fast list does not call out OE, and the emitter
// exposes no dedicated overflow-latch primitive beyond the flags already
// folded into CR0 by the rc bit).
func (t *Translator) emitAdd(e *emitter.Emitter, raw uint32) error {
	rd := (raw >> 21) & 0x1F
	ra := (raw >> 16) & 0x1F
	rb := (raw >> 11) & 0x1F
	rc := raw&1 != 0

	e.Load(emitter.DReg, emitter.PReg, cpu.OffReg(int(ra)))
	e.Load(emitter.AReg, emitter.PReg, cpu.OffReg(int(rb)))
	e.AddRR(emitter.DReg, emitter.AReg)
	e.Store(emitter.PReg, cpu.OffReg(int(rd)), emitter.DReg)

	if rc {
		emitSetCR0(e, emitter.DReg)
	}
	e.Ret()
	return nil
}
