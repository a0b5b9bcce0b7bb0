package ppc

import (
	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/emitter"
)

// emitBranch implements b/ba/bl/bla (I-form, opcode 18): an always-taken
// 24-bit signed, word-aligned branch. AA selects absolute vs. relative; LK
// saves the return address in LR.
func (t *Translator) emitBranch(e *emitter.Emitter, pc uint32, raw uint32) error {
	li := (raw >> 2) & 0xFFFFFF
	offset := signExtend(li, 24) * 4
	aa := raw&2 != 0
	lk := raw&1 != 0

	var target uint32
	if aa {
		target = uint32(offset)
	} else {
		target = pc + uint32(offset)
	}

	if lk {
		e.MovRI32(emitter.AReg, pc+4)
		e.Store(emitter.PReg, cpu.OffLR, emitter.AReg)
	}
	e.MovRI32(emitter.AReg, target)
	e.Store(emitter.PReg, cpu.OffPC, emitter.AReg)
	e.Ret()
	return nil
}

// emitCondBranch implements bc/bca/bcl/bcla (B-form, opcode 16). CTR is
// always decremented, mirroring the fallback interpreter's
// decrement-then-dual-test shape (spec.md §9); BO's bits independently gate
// whether the decremented CTR and the tested CR bit actually control
// whether the branch is taken (spec.md §8 scenario 6).
func (t *Translator) emitCondBranch(e *emitter.Emitter, pc uint32, raw uint32) error {
	bo := (raw >> 21) & 0x1F
	bi := (raw >> 16) & 0x1F
	bd := (raw >> 2) & 0x3FFF
	offset := signExtend(bd, 14) * 4
	aa := raw&2 != 0
	lk := raw&1 != 0

	ignoreCtr := bo&0x10 != 0
	wantCtrZero := bo&0x08 != 0
	ignoreCR := bo&0x04 != 0
	wantCRBit := bo&0x02 != 0

	e.Load(emitter.AReg, emitter.PReg, cpu.OffCTR)
	e.SubRI(emitter.AReg, 1)
	e.Store(emitter.PReg, cpu.OffCTR, emitter.AReg)

	if !ignoreCtr {
		e.TestRR(emitter.AReg, emitter.AReg)
		cc := emitter.CondNE
		if wantCtrZero {
			cc = emitter.CondE
		}
		ok := e.JccRel8(cc)
		e.Ret()
		e.PatchRel8At(ok)
	}

	if !ignoreCR {
		pos := byte(31 - bi)
		e.BitTest(emitter.PReg, cpu.OffCR, pos)
		cc := emitter.CondAE
		if wantCRBit {
			cc = emitter.CondB
		}
		ok := e.JccRel8(cc)
		e.Ret()
		e.PatchRel8At(ok)
	}

	var target uint32
	if aa {
		target = uint32(offset)
	} else {
		target = pc + uint32(offset)
	}

	if lk {
		e.MovRI32(emitter.AReg, pc+4)
		e.Store(emitter.PReg, cpu.OffLR, emitter.AReg)
	}
	e.MovRI32(emitter.AReg, target)
	e.Store(emitter.PReg, cpu.OffPC, emitter.AReg)
	e.Ret()
	return nil
}
