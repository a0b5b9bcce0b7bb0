package thumb

import (
	"math/bits"

	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/emitter"
)

// emitPushPop implements format 14 (PUSH/POP {rlist}[, LR/PC]), the
// decrement-before/increment-after stack forms spec.md §8 scenario 3 tests
// (spec.md §4.3). SP is R13.
func (t *Translator) emitPushPop(e *emitter.Emitter, instr uint32) error {
	pop := instr&(1<<11) != 0
	includeLRorPC := instr&(1<<8) != 0
	rlist := instr & 0xFF

	n := bits.OnesCount32(uint32(rlist))
	if includeLRorPC {
		n++
	}

	if pop {
		e.Load(emitter.RBX, emitter.PReg, cpu.OffReg(13))
	} else {
		e.Load(emitter.RBX, emitter.PReg, cpu.OffReg(13))
		e.SubRI(emitter.RBX, int32(n*4))
	}

	for i := 0; i < 8; i++ {
		if rlist&(1<<uint(i)) == 0 {
			continue
		}
		r := i
		e.MovRR(emitter.RSI, emitter.RBX)
		if pop {
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

	if includeLRorPC {
		e.MovRR(emitter.RSI, emitter.RBX)
		if pop {
			// Loaded PC's low bit selects Thumb state exactly like A32's
			// load-to-PC-with-exchange; it is always masked here since this
			// block only ever targets R15 via POP, never BX.
			e.MovRR(emitter.DReg, emitter.PReg)
			e.AddRI(emitter.DReg, cpu.OffReg(15))
			emitHelperCall(e, t.Helpers.LoadMemory32)
			e.TestRR(emitter.AReg, emitter.AReg)
			ok := e.JccRel8(emitter.CondNE)
			e.Ret()
			e.PatchRel8At(ok)
			e.Load(emitter.AReg, emitter.PReg, cpu.OffReg(15))
			e.AndRI(emitter.AReg, ^int32(1))
			e.Store(emitter.PReg, cpu.OffReg(15), emitter.AReg)
		} else {
			e.Load(emitter.DReg, emitter.PReg, cpu.OffReg(14))
			emitHelperCall(e, t.Helpers.StoreMemory32)
			e.TestRR(emitter.AReg, emitter.AReg)
			ok := e.JccRel8(emitter.CondNE)
			e.Ret()
			e.PatchRel8At(ok)
		}
		e.AddRI(emitter.RBX, 4)
	}

	if !pop {
		e.SubRI(emitter.RBX, int32(n*4))
	}
	e.Store(emitter.PReg, cpu.OffReg(13), emitter.RBX)
	e.Ret()
	return nil
}
