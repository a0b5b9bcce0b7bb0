// Package ppc translates PowerPC instructions into host x86-64 bodies for
// the JIT cache (spec.md §4.4). One Translator per core; it is stateless
// across Emit calls except for the helper addresses it was built with.
package ppc

import (
	"fmt"

	"github.com/kinnay/wiiu-dbt/internal/emitter"
	"github.com/kinnay/wiiu-dbt/internal/isa/ppcabi"
	"github.com/kinnay/wiiu-dbt/internal/jit"
)

// Translator implements jit.Translator for PowerPC.
type Translator struct {
	Helpers ppcabi.Addrs
}

// New returns a PowerPC translator bound to the given helper addresses.
func New(h ppcabi.Addrs) *Translator {
	return &Translator{Helpers: h}
}

func (t *Translator) ISA() jit.ISA { return jit.ISAPPC }

// Emit decodes raw and appends its host body to e. pc is the
// guest-physical address of raw itself.
func (t *Translator) Emit(e *emitter.Emitter, pc uint32, raw uint32) error {
	op := raw >> 26

	switch op {
	case 14: // addi
		return t.emitAddImmediate(e, raw, false)
	case 15: // addis
		return t.emitAddImmediate(e, raw, true)
	case 24: // ori
		return t.emitLogicalImmediate(e, raw, opOR, false)
	case 25: // oris
		return t.emitLogicalImmediate(e, raw, opOR, true)
	case 26: // xori
		return t.emitLogicalImmediate(e, raw, opXOR, false)
	case 27: // xoris
		return t.emitLogicalImmediate(e, raw, opXOR, true)
	case 28: // andi.
		return t.emitLogicalImmediate(e, raw, opAND, false)
	case 29: // andis.
		return t.emitLogicalImmediate(e, raw, opAND, true)
	case 20: // rlwimi
		return t.emitRotateMaskInsert(e, raw)
	case 21: // rlwinm
		return t.emitRotateMaskAnd(e, raw)
	case 18: // b, ba, bl, bla
		return t.emitBranch(e, pc, raw)
	case 16: // bc, bca, bcl, bcla
		return t.emitCondBranch(e, pc, raw)
	case 34, 35: // lbz, lbzu
		return t.emitLoadImmOffset(e, raw, t.Helpers.LoadMemory8, op&1 != 0)
	case 40, 41: // lhz, lhzu
		return t.emitLoadImmOffset(e, raw, t.Helpers.LoadMemory16, op&1 != 0)
	case 32, 33: // lwz, lwzu
		return t.emitLoadImmOffset(e, raw, t.Helpers.LoadMemory32, op&1 != 0)
	case 38, 39: // stb, stbu
		return t.emitStoreImmOffset(e, raw, t.Helpers.StoreMemory8, op&1 != 0)
	case 44, 45: // sth, sthu
		return t.emitStoreImmOffset(e, raw, t.Helpers.StoreMemory16, op&1 != 0)
	case 36, 37: // stw, stwu
		return t.emitStoreImmOffset(e, raw, t.Helpers.StoreMemory32, op&1 != 0)
	case 48, 49: // lfs, lfsu
		return t.emitFloatLoad(e, raw, false, op&1 != 0)
	case 50, 51: // lfd, lfdu
		return t.emitFloatLoad(e, raw, true, op&1 != 0)
	case 52, 53: // stfs, stfsu
		return t.emitFloatStore(e, raw, false, op&1 != 0)
	case 54, 55: // stfd, stfdu
		return t.emitFloatStore(e, raw, true, op&1 != 0)
	case 19:
		return t.emitOp19(e, raw)
	case 31:
		return t.emitOp31(e, raw)
	case 59:
		return t.emitOp59(e, raw)
	case 63:
		return t.emitOp63(e, raw)
	default:
		return t.emitFallback(e, raw)
	}
}

func (t *Translator) emitFallback(e *emitter.Emitter, raw uint32) error {
	e.MovRI32(emitter.RSI, raw)
	e.JmpAbs(emitter.AReg, t.Helpers.ExecuteInstr)
	return nil
}

func (t *Translator) emitThrow(e *emitter.Emitter, raw uint32) error {
	e.MovRI32(emitter.RSI, raw)
	e.JmpAbs(emitter.AReg, t.Helpers.ThrowInstr)
	return fmt.Errorf("ppc: impossible encoding %#08x", raw)
}

// emitHelperCallNoMask and emitHelperCall mirror arm32's "P is not
// callee-saved across CALL" discipline (spec.md §9): every non-tail helper
// invocation pushes/pops PReg around the call.
func emitHelperCallNoMask(e *emitter.Emitter, target uint64) {
	e.PushR(emitter.PReg)
	e.CallAbs(emitter.AReg, target)
	e.PopR(emitter.PReg)
}

func emitHelperCall(e *emitter.Emitter, target uint64) {
	emitHelperCallNoMask(e, target)
	e.AndRI(emitter.AReg, 0xFF)
}

// emitOp19 handles the extended opcode-19 group: branch-condition-register
// and system-linkage forms. Only the no-op-equivalent isync is fast-emitted;
// everything else (bclr, bcctr, rfi, crand/cror/...) falls back to the
// interpreter (spec.md §4.4).
func (t *Translator) emitOp19(e *emitter.Emitter, raw uint32) error {
	xo := (raw >> 1) & 0x3FF
	if xo == 150 { // isync
		e.Ret()
		return nil
	}
	return t.emitFallback(e, raw)
}

// emitOp31 handles the extended opcode-31 group: register-register
// arithmetic/logical ops, load/store with register offset, and the
// cache/sync no-op family (spec.md §4.4).
func (t *Translator) emitOp31(e *emitter.Emitter, raw uint32) error {
	xo := (raw >> 1) & 0x3FF

	switch xo {
	case 266: // add(o)(.)
		return t.emitAdd(e, raw)
	case 534: // lwbrx
		return t.emitByteReverseLoad(e, raw)
	case 662: // stwbrx
		return t.emitByteReverseStore(e, raw)
	case 598: // sync
		e.Ret()
		return nil
	case 854: // eieio
		e.Ret()
		return nil
	case 86, 470, 54: // dcbf, dcbi, dcbst
		e.Ret()
		return nil
	default:
		return t.emitFallback(e, raw)
	}
}

func (t *Translator) emitOp59(e *emitter.Emitter, raw uint32) error {
	return t.emitFallback(e, raw)
}

func (t *Translator) emitOp63(e *emitter.Emitter, raw uint32) error {
	return t.emitFallback(e, raw)
}
