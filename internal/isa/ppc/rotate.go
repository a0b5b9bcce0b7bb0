package ppc

import (
	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/emitter"
)

// genMask builds the MSB-first bit mask spanning bits mb..me inclusive
// (0 = most significant bit), wrapping around bit 31 when mb > me, exactly
// as rlwinm/rlwimi define it.
func genMask(mb, me uint32) uint32 {
	if mb <= me {
		return (^uint32(0) >> mb) & (^uint32(0) << (31 - me))
	}
	return (^uint32(0) >> mb) | (^uint32(0) << (31 - me))
}

func rotateFields(raw uint32) (rs, ra, sh, mb, me uint32, rc bool) {
	rs = (raw >> 21) & 0x1F
	ra = (raw >> 16) & 0x1F
	sh = (raw >> 11) & 0x1F
	mb = (raw >> 6) & 0x1F
	me = (raw >> 1) & 0x1F
	rc = raw&1 != 0
	return
}

// emitRotateMaskAnd implements rlwinm: rA = ROTL32(rS, SH) & MASK(MB, ME).
// SH/MB/ME are immediates, so the rotate amount and mask are both baked in
// at translation time (spec.md §8 scenario 5).
func (t *Translator) emitRotateMaskAnd(e *emitter.Emitter, raw uint32) error {
	rs, ra, sh, mb, me, rc := rotateFields(raw)
	mask := genMask(mb, me)

	e.Load(emitter.AReg, emitter.PReg, cpu.OffReg(int(rs)))
	if sh != 0 {
		e.ShiftImm(emitter.ShiftRol, emitter.AReg, byte(sh))
	}
	e.AndRI(emitter.AReg, int32(mask))
	e.Store(emitter.PReg, cpu.OffReg(int(ra)), emitter.AReg)

	if rc {
		emitSetCR0(e, emitter.AReg)
	}
	e.Ret()
	return nil
}

// emitRotateMaskInsert implements rlwimi: rA = (ROTL32(rS, SH) & MASK) |
// (rA & ^MASK), inserting the rotated field into the existing destination
// rather than clearing the rest of the register (spec.md §4.4).
func (t *Translator) emitRotateMaskInsert(e *emitter.Emitter, raw uint32) error {
	rs, ra, sh, mb, me, rc := rotateFields(raw)
	mask := genMask(mb, me)

	e.Load(emitter.AReg, emitter.PReg, cpu.OffReg(int(rs)))
	if sh != 0 {
		e.ShiftImm(emitter.ShiftRol, emitter.AReg, byte(sh))
	}
	e.AndRI(emitter.AReg, int32(mask))

	e.Load(emitter.DReg, emitter.PReg, cpu.OffReg(int(ra)))
	e.AndRI(emitter.DReg, int32(^mask))
	e.OrRR(emitter.AReg, emitter.DReg)

	e.Store(emitter.PReg, cpu.OffReg(int(ra)), emitter.AReg)

	if rc {
		emitSetCR0(e, emitter.AReg)
	}
	e.Ret()
	return nil
}
