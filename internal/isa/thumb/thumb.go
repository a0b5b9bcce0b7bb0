// Package thumb translates 16-bit ARM-Thumb instructions into host x86-64
// bodies for the JIT cache (spec.md §4.3). It shares cpu.ARMState and the
// armabi runtime helpers with the A32 translator: Thumb is a second encoding
// of the same register file, not a second guest core.
package thumb

import (
	"github.com/kinnay/wiiu-dbt/internal/emitter"
	"github.com/kinnay/wiiu-dbt/internal/isa/armabi"
	"github.com/kinnay/wiiu-dbt/internal/jit"
)

// Translator implements jit.Translator for ARM-Thumb.
type Translator struct {
	Helpers armabi.Addrs
}

// New returns a Thumb translator bound to the given helper addresses.
func New(h armabi.Addrs) *Translator {
	return &Translator{Helpers: h}
}

func (t *Translator) ISA() jit.ISA { return jit.ISAThumb }

// Emit decodes the 16-bit encoding in the low half of raw and appends its
// host body to e. pc is the guest-physical address of the halfword itself.
// Formats the fast path does not cover (register-offset load/store,
// sign-extended load/store, load-address, SP add/sub, and anything left
// over) fall back to the interpreter (spec.md §7 kind 2).
func (t *Translator) Emit(e *emitter.Emitter, pc uint32, raw uint32) error {
	instr := raw & 0xFFFF

	switch {
	case instr&0xF800 == 0x1800: // format 2: add/subtract
		return t.emitAddSub(e, instr)
	case instr&0xE000 == 0x0000 && instr&0xF800 != 0x1800: // format 1: move shifted register
		return t.emitMoveShifted(e, instr)
	case instr&0xE000 == 0x2000: // format 3: move/compare/add/subtract immediate
		return t.emitImmediateOp(e, instr)
	case instr&0xFC00 == 0x4000: // format 4: ALU operations
		return t.emitALU(e, instr)
	case instr&0xFC00 == 0x4400: // format 5: hi register ops / branch exchange
		return t.emitHiRegOp(e, pc, instr)
	case instr&0xF800 == 0x4800: // format 6: PC-relative load
		return t.emitPCRelLoad(e, pc, instr)
	case instr&0xE000 == 0x6000: // format 9: load/store immediate offset
		return t.emitImmediateTransfer(e, instr)
	case instr&0xF000 == 0x8000: // format 10: load/store halfword
		return t.emitHalfwordTransfer(e, instr)
	case instr&0xF000 == 0x9000: // format 11: SP-relative load/store
		return t.emitSPRelTransfer(e, instr)
	case instr&0xF600 == 0xB400: // format 14: push/pop
		return t.emitPushPop(e, instr)
	case instr&0xF000 == 0xC000: // format 15: load/store multiple
		return t.emitBlockTransfer(e, instr)
	case instr&0xFF00 == 0xDF00: // format 17: SWI
		e.CallAbs(emitter.AReg, t.Helpers.SoftwareInterrupt)
		e.Ret()
		return nil
	case instr&0xFF00 == 0xDE00: // undefined (cond 1110 of format 16's encoding space)
		return t.emitFallback(e, instr)
	case instr&0xF000 == 0xD000: // format 16: conditional branch
		return t.emitCondBranch(e, pc, instr)
	case instr&0xF800 == 0xE000: // format 18: unconditional branch
		return t.emitUncondBranch(e, pc, instr)
	case instr&0xF000 == 0xF000: // format 19: branch with link (long), 2-instruction form
		return t.emitBranchLink(e, pc, instr)
	default: // formats 7, 8, 12, 13 and anything else: not fast-emitted
		return t.emitFallback(e, instr)
	}
}

func (t *Translator) emitFallback(e *emitter.Emitter, instr uint32) error {
	e.MovRI32(emitter.RSI, instr)
	e.JmpAbs(emitter.AReg, t.Helpers.ExecuteInstr)
	return nil
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
