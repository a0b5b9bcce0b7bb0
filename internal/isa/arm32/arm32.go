// Package arm32 translates 32-bit ARM (A32) instructions into host x86-64
// bodies for the JIT cache (spec.md §4.2). One Translator per core; it is
// stateless across Emit calls except for the helper addresses it was built
// with.
package arm32

import (
	"fmt"

	"github.com/kinnay/wiiu-dbt/internal/emitter"
	"github.com/kinnay/wiiu-dbt/internal/isa/armabi"
	"github.com/kinnay/wiiu-dbt/internal/jit"
)

// Translator implements jit.Translator for ARM-A32.
type Translator struct {
	Helpers armabi.Addrs
}

// New returns an ARM-A32 translator bound to the given helper addresses.
func New(h armabi.Addrs) *Translator {
	return &Translator{Helpers: h}
}

func (t *Translator) ISA() jit.ISA { return jit.ISAArmA32 }

// Emit decodes raw and appends its host body to e, starting at e.Tell().
// pc is the guest-physical address of raw itself (not yet incremented).
func (t *Translator) Emit(e *emitter.Emitter, pc uint32, raw uint32) error {
	cond := raw >> 28
	emitCondition(e, cond)

	switch {
	case raw&0x0FFFFFF0 == 0x012FFF10: // BX
		return t.emitBX(e, raw, false)
	case raw&0x0FFFFFF0 == 0x012FFF30: // BLX (register)
		return t.emitBX(e, raw, true)
	case raw&0x0FBF0FFF == 0x010F0000: // MRS
		return t.emitMRS(e, raw)
	case isMSR(raw):
		return t.emitMSR(e, raw)
	case raw&0x0E000090 == 0x00000090: // multiply / swap / extra load-store
		return t.emitFallback(e, raw)
	case raw&0x0F000000 == 0x0F000000: // SWI
		e.CallAbs(emitter.AReg, t.Helpers.SoftwareInterrupt)
		e.Ret()
		return nil
	case raw&0x0C000000 == 0x00000000: // data-processing, reg or imm operand2
		return t.emitDataProcessing(e, pc, raw)
	case raw&0x0C000000 == 0x04000000: // single data transfer
		return t.emitSingleTransfer(e, pc, raw)
	case raw&0x0E000000 == 0x08000000: // block data transfer
		return t.emitBlockTransfer(e, raw)
	case raw&0x0E000000 == 0x0A000000: // branch / branch-link
		return t.emitBranch(e, pc, raw)
	default:
		return t.emitFallback(e, raw)
	}
}

func isMSR(raw uint32) bool {
	// MSR immediate: cond 00 1 10 R 10 mask 1111 rotate_imm8
	// MSR register:  cond 00 0 10 R 10 mask 1111 00000000 Rm
	// Bit 25 (I) is excluded from the fixed-bit mask since it is the very
	// thing distinguishing the two forms.
	if raw&0x0DB0F000 != 0x0120F000 {
		return false
	}
	if raw&0x02000000 != 0 {
		return true // immediate form
	}
	return raw&0x00000FF0 == 0
}

// emitHelperCallNoMask calls a runtime helper that returns control to this
// body (as opposed to a tail call): P must be reloaded afterward since
// System V does not preserve it across the call (spec.md §9 "Host register
// discipline"). Used by helpers whose return value is not a bool.
func emitHelperCallNoMask(e *emitter.Emitter, target uint64) {
	e.PushR(emitter.PReg)
	e.CallAbs(emitter.AReg, target)
	e.PopR(emitter.PReg)
}

// emitHelperCall is emitHelperCallNoMask plus the 0xFF mask a bool-returning
// helper's AL result needs before callers TestRR the full register safely.
func emitHelperCall(e *emitter.Emitter, target uint64) {
	emitHelperCallNoMask(e, target)
	e.AndRI(emitter.AReg, 0xFF)
}

func (t *Translator) emitFallback(e *emitter.Emitter, raw uint32) error {
	e.MovRI32(emitter.RSI, raw)
	e.JmpAbs(emitter.AReg, t.Helpers.ExecuteInstr)
	return nil
}

func (t *Translator) emitThrow(e *emitter.Emitter, raw uint32) error {
	e.MovRI32(emitter.RSI, raw)
	e.JmpAbs(emitter.AReg, t.Helpers.ThrowInstr)
	return fmt.Errorf("arm32: impossible encoding %#08x", raw)
}
