package ppc

import (
	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/emitter"
)

// emitEffectiveAddress computes (rA==0 ? 0 : R[rA]) + d into dst, the
// D-form addressing mode shared by every fast-emitted load/store
// (spec.md §4.4).
func emitEffectiveAddress(e *emitter.Emitter, dst emitter.Reg, ra uint32, d int32) {
	if ra == 0 {
		e.MovRI32(dst, uint32(d))
		return
	}
	e.Load(dst, emitter.PReg, cpu.OffReg(int(ra)))
	e.AddRI(dst, d)
}

// emitLoadImmOffset implements lbz/lbzu/lhz/lhzu/lwz/lwzu (D-form): rD is
// loaded zero-extended from [rA or 0, + d]; update forms write the
// effective address back to rA.
func (t *Translator) emitLoadImmOffset(e *emitter.Emitter, raw uint32, helper uint64, update bool) error {
	rd := (raw >> 21) & 0x1F
	ra := (raw >> 16) & 0x1F
	d := int32(int16(raw & 0xFFFF))

	emitEffectiveAddress(e, emitter.RSI, ra, d)

	e.MovRR(emitter.DReg, emitter.PReg)
	e.AddRI(emitter.DReg, cpu.OffReg(int(rd)))
	emitHelperCall(e, helper)
	e.TestRR(emitter.AReg, emitter.AReg)
	ok := e.JccRel8(emitter.CondNE)
	e.Ret()
	e.PatchRel8At(ok)

	if update {
		e.Store(emitter.PReg, cpu.OffReg(int(ra)), emitter.RSI)
	}
	e.Ret()
	return nil
}

// emitStoreImmOffset implements stb/stbu/sth/sthu/stw/stwu (D-form): rS is
// stored to [rA or 0, + d]; update forms write the effective address back
// to rA.
func (t *Translator) emitStoreImmOffset(e *emitter.Emitter, raw uint32, helper uint64, update bool) error {
	rs := (raw >> 21) & 0x1F
	ra := (raw >> 16) & 0x1F
	d := int32(int16(raw & 0xFFFF))

	emitEffectiveAddress(e, emitter.RSI, ra, d)

	e.Load(emitter.DReg, emitter.PReg, cpu.OffReg(int(rs)))
	emitHelperCall(e, helper)
	e.TestRR(emitter.AReg, emitter.AReg)
	ok := e.JccRel8(emitter.CondNE)
	e.Ret()
	e.PatchRel8At(ok)

	if update {
		e.Store(emitter.PReg, cpu.OffReg(int(ra)), emitter.RSI)
	}
	e.Ret()
	return nil
}

// emitByteReverseLoad/Store implement lwbrx/stwbrx (X-form): a plain word
// transfer through the existing load/store helpers, with the byte order
// flipped on the host side since no guest-facing byte-swapped helper exists
// (spec.md §4.4).
func (t *Translator) emitByteReverseLoad(e *emitter.Emitter, raw uint32) error {
	rd := (raw >> 21) & 0x1F
	ra := (raw >> 16) & 0x1F
	rb := (raw >> 11) & 0x1F

	if ra == 0 {
		e.Load(emitter.RSI, emitter.PReg, cpu.OffReg(int(rb)))
	} else {
		e.Load(emitter.RSI, emitter.PReg, cpu.OffReg(int(ra)))
		e.Load(emitter.AReg, emitter.PReg, cpu.OffReg(int(rb)))
		e.AddRR(emitter.RSI, emitter.AReg)
	}

	e.MovRR(emitter.DReg, emitter.PReg)
	e.AddRI(emitter.DReg, cpu.OffReg(int(rd)))
	emitHelperCall(e, t.Helpers.LoadMemory32)
	e.TestRR(emitter.AReg, emitter.AReg)
	ok := e.JccRel8(emitter.CondNE)
	e.Ret()
	e.PatchRel8At(ok)

	e.Load(emitter.AReg, emitter.PReg, cpu.OffReg(int(rd)))
	emitByteSwap32(e, emitter.AReg)
	e.Store(emitter.PReg, cpu.OffReg(int(rd)), emitter.AReg)
	e.Ret()
	return nil
}

func (t *Translator) emitByteReverseStore(e *emitter.Emitter, raw uint32) error {
	rs := (raw >> 21) & 0x1F
	ra := (raw >> 16) & 0x1F
	rb := (raw >> 11) & 0x1F

	if ra == 0 {
		e.Load(emitter.RSI, emitter.PReg, cpu.OffReg(int(rb)))
	} else {
		e.Load(emitter.RSI, emitter.PReg, cpu.OffReg(int(ra)))
		e.Load(emitter.AReg, emitter.PReg, cpu.OffReg(int(rb)))
		e.AddRR(emitter.RSI, emitter.AReg)
	}

	e.Load(emitter.DReg, emitter.PReg, cpu.OffReg(int(rs)))
	emitByteSwap32(e, emitter.DReg)
	emitHelperCall(e, t.Helpers.StoreMemory32)
	e.TestRR(emitter.AReg, emitter.AReg)
	ok := e.JccRel8(emitter.CondNE)
	e.Ret()
	e.PatchRel8At(ok)
	e.Ret()
	return nil
}

// emitFloatLoad/Store implement lfd/lfdu/stfd/stfdu directly: a
// double-precision FPR is the same 8 raw bytes in memory as in
// cpu.PPCState.F, so no format conversion is needed. lfs/stfs would require
// single<->double conversion the emitter has no FPU instructions for, so
// those fall back to the interpreter (spec.md §4.4).
func (t *Translator) emitFloatLoad(e *emitter.Emitter, raw uint32, double, update bool) error {
	if !double {
		return t.emitFallback(e, raw)
	}
	rd := (raw >> 21) & 0x1F
	ra := (raw >> 16) & 0x1F
	d := int32(int16(raw & 0xFFFF))
	foff := cpu.OffF + int32(rd)*8

	emitEffectiveAddress(e, emitter.RBX, ra, d)

	// The big-endian word at EA is the high half of F[rd], the word at EA+4
	// the low half.
	e.MovRR(emitter.RSI, emitter.RBX)
	e.MovRR(emitter.DReg, emitter.PReg)
	e.AddRI(emitter.DReg, foff+4)
	emitHelperCall(e, t.Helpers.LoadMemory32)
	e.TestRR(emitter.AReg, emitter.AReg)
	ok1 := e.JccRel8(emitter.CondNE)
	e.Ret()
	e.PatchRel8At(ok1)

	e.MovRR(emitter.RSI, emitter.RBX)
	e.AddRI(emitter.RSI, 4)
	e.MovRR(emitter.DReg, emitter.PReg)
	e.AddRI(emitter.DReg, foff)
	emitHelperCall(e, t.Helpers.LoadMemory32)
	e.TestRR(emitter.AReg, emitter.AReg)
	ok2 := e.JccRel8(emitter.CondNE)
	e.Ret()
	e.PatchRel8At(ok2)

	if update {
		e.Store(emitter.PReg, cpu.OffReg(int(ra)), emitter.RBX)
	}
	e.Ret()
	return nil
}

func (t *Translator) emitFloatStore(e *emitter.Emitter, raw uint32, double, update bool) error {
	if !double {
		return t.emitFallback(e, raw)
	}
	rs := (raw >> 21) & 0x1F
	ra := (raw >> 16) & 0x1F
	d := int32(int16(raw & 0xFFFF))

	emitEffectiveAddress(e, emitter.RBX, ra, d)

	e.MovRR(emitter.RSI, emitter.RBX)
	e.Load64(emitter.DReg, emitter.PReg, cpu.OffF+int32(rs)*8)
	emitHelperCall(e, t.Helpers.StoreLong)
	e.TestRR(emitter.AReg, emitter.AReg)
	ok := e.JccRel8(emitter.CondNE)
	e.Ret()
	e.PatchRel8At(ok)

	if update {
		e.Store(emitter.PReg, cpu.OffReg(int(ra)), emitter.RBX)
	}
	e.Ret()
	return nil
}
