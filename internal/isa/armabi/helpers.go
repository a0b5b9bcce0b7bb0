package armabi

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/except"
	"github.com/kinnay/wiiu-dbt/internal/mmu"
)

func loadMemory8(p unsafe.Pointer, addr uint32, out *uint32) bool {
	s := (*cpu.ARMState)(p)
	rt := runtimeFor(s)
	phys, ok := rt.MMU.Translate(s, addr, mmu.AccessDataRead, supervisorMode(s))
	if !ok {
		rt.Sink.Trigger(rt.Core, except.DataAbort)
		return false
	}
	*out = uint32(rt.Mem.Read8(phys))
	return true
}

func loadMemory16(p unsafe.Pointer, addr uint32, out *uint32) bool {
	s := (*cpu.ARMState)(p)
	rt := runtimeFor(s)
	phys, ok := rt.MMU.Translate(s, addr, mmu.AccessDataRead, supervisorMode(s))
	if !ok {
		rt.Sink.Trigger(rt.Core, except.DataAbort)
		return false
	}
	*out = uint32(rt.Mem.Read16(phys))
	return true
}

func loadMemory32(p unsafe.Pointer, addr uint32, out *uint32) bool {
	s := (*cpu.ARMState)(p)
	rt := runtimeFor(s)
	phys, ok := rt.MMU.Translate(s, addr, mmu.AccessDataRead, supervisorMode(s))
	if !ok {
		rt.Sink.Trigger(rt.Core, except.DataAbort)
		return false
	}
	*out = rt.Mem.Read32(phys)
	return true
}

func storeMemory8(p unsafe.Pointer, addr uint32, value uint32) bool {
	s := (*cpu.ARMState)(p)
	rt := runtimeFor(s)
	phys, ok := rt.MMU.Translate(s, addr, mmu.AccessDataWrite, supervisorMode(s))
	if !ok {
		rt.Sink.Trigger(rt.Core, except.DataAbort)
		return false
	}
	rt.Mem.Write8(phys, uint8(value))
	return true
}

func storeMemory16(p unsafe.Pointer, addr uint32, value uint32) bool {
	s := (*cpu.ARMState)(p)
	rt := runtimeFor(s)
	phys, ok := rt.MMU.Translate(s, addr, mmu.AccessDataWrite, supervisorMode(s))
	if !ok {
		rt.Sink.Trigger(rt.Core, except.DataAbort)
		return false
	}
	rt.Mem.Write16(phys, uint16(value))
	return true
}

func storeMemory32(p unsafe.Pointer, addr uint32, value uint32) bool {
	s := (*cpu.ARMState)(p)
	rt := runtimeFor(s)
	phys, ok := rt.MMU.Translate(s, addr, mmu.AccessDataWrite, supervisorMode(s))
	if !ok {
		rt.Sink.Trigger(rt.Core, except.DataAbort)
		return false
	}
	rt.Mem.Write32(phys, value)
	return true
}

func storeLong(p unsafe.Pointer, addr uint32, value uint64) bool {
	s := (*cpu.ARMState)(p)
	rt := runtimeFor(s)
	phys, ok := rt.MMU.Translate(s, addr, mmu.AccessDataWrite, supervisorMode(s))
	if !ok {
		rt.Sink.Trigger(rt.Core, except.DataAbort)
		return false
	}
	rt.Mem.Write64(phys, value)
	return true
}

// executeInstr is the interpreter fallback for decoded-but-unemitted
// opcodes (spec.md §4.2 "Unimplemented / error"). Never fatal: raw goes to
// the registered Fallback; with none registered, an UndefinedInstruction
// exception is raised through the sink. Nothing is logged.
func executeInstr(p unsafe.Pointer, raw uint32) {
	s := (*cpu.ARMState)(p)
	rt := runtimeFor(s)
	if rt.Fallback != nil {
		rt.Fallback(s, raw)
		return
	}
	rt.Sink.Trigger(rt.Core, except.UndefinedInstruction)
}

// throwInstr reflects a translator bug (an encoding the decoder accepted
// but the emitter cannot represent at all) rather than a guest fault, and
// is not guest-recoverable (spec.md §7 kind 3).
func throwInstr(p unsafe.Pointer, raw uint32) {
	s := (*cpu.ARMState)(p)
	rt := runtimeFor(s)
	if rt.Log != nil {
		rt.Log.Fatal("arm: impossible instruction reached the emitter", zap.Uint32("raw", raw))
	}
	panic("arm: impossible instruction reached the emitter")
}

func undefinedException(p unsafe.Pointer) {
	s := (*cpu.ARMState)(p)
	rt := runtimeFor(s)
	rt.Sink.Trigger(rt.Core, except.UndefinedInstruction)
}

func softwareInterrupt(p unsafe.Pointer) {
	s := (*cpu.ARMState)(p)
	rt := runtimeFor(s)
	rt.Sink.Trigger(rt.Core, except.SoftwareInterrupt)
}

// changeMode implements the exception-return bank swap spec.md §6 lists:
// write the outgoing bank, copy SPSR into CPSR, read the incoming bank.
// It is only for PC loads that also restore CPSR (SUBS pc,... / LDM^ with
// pc in the list); a plain MSR-to-CPSR mode change does not touch SPSR and
// goes through msrChangeMode below instead (spec.md §4.2, open question
// resolved in DESIGN.md).
func changeMode(p unsafe.Pointer) {
	s := (*cpu.ARMState)(p)
	s.WriteModeRegs()
	s.CPSR = s.SPSR()
	s.ChangeMode(cpu.Mode(s.CPSR & 0x1F))
}

func writeModeRegs(p unsafe.Pointer) {
	(*cpu.ARMState)(p).WriteModeRegs()
}

func readModeRegs(p unsafe.Pointer) {
	(*cpu.ARMState)(p).ReadModeRegs()
}

// msrChangeMode performs the bank swap for an MSR-to-CPSR write that touches
// the mode field. The translator has already written the new CPSR value, so
// the target mode is read straight from it; unlike changeMode above, SPSR is
// left untouched (spec.md §4.2, open question resolved in DESIGN.md).
func msrChangeMode(p unsafe.Pointer) {
	s := (*cpu.ARMState)(p)
	s.ChangeMode(cpu.Mode(s.CPSR & 0x1F))
}

// readSPSR and writeSPSR give MRS/MSR access to the banked SPSR, which (like
// the rest of a bank) has no fixed flat offset the emitter could Load/Store
// directly (spec.md §4.2 "Status register access").
func readSPSR(p unsafe.Pointer) uint32 {
	return (*cpu.ARMState)(p).SPSR()
}

func writeSPSR(p unsafe.Pointer, value uint32) {
	(*cpu.ARMState)(p).SetSPSR(value)
}
