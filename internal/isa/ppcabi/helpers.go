package ppcabi

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/except"
	"github.com/kinnay/wiiu-dbt/internal/mmu"
)

func loadMemory8(p unsafe.Pointer, addr uint32, out *uint32) bool {
	s := (*cpu.PPCState)(p)
	rt := runtimeFor(s)
	phys, ok := rt.MMU.Translate(s, addr, mmu.AccessDataRead, supervisorMode(s))
	if !ok {
		rt.Sink.Trigger(rt.Core, except.DSI)
		return false
	}
	*out = uint32(rt.Mem.Read8(phys))
	return true
}

func loadMemory16(p unsafe.Pointer, addr uint32, out *uint32) bool {
	s := (*cpu.PPCState)(p)
	rt := runtimeFor(s)
	phys, ok := rt.MMU.Translate(s, addr, mmu.AccessDataRead, supervisorMode(s))
	if !ok {
		rt.Sink.Trigger(rt.Core, except.DSI)
		return false
	}
	*out = uint32(rt.Mem.Read16(phys))
	return true
}

func loadMemory32(p unsafe.Pointer, addr uint32, out *uint32) bool {
	s := (*cpu.PPCState)(p)
	rt := runtimeFor(s)
	phys, ok := rt.MMU.Translate(s, addr, mmu.AccessDataRead, supervisorMode(s))
	if !ok {
		rt.Sink.Trigger(rt.Core, except.DSI)
		return false
	}
	*out = rt.Mem.Read32(phys)
	return true
}

func storeMemory8(p unsafe.Pointer, addr uint32, value uint32) bool {
	s := (*cpu.PPCState)(p)
	rt := runtimeFor(s)
	phys, ok := rt.MMU.Translate(s, addr, mmu.AccessDataWrite, supervisorMode(s))
	if !ok {
		rt.Sink.Trigger(rt.Core, except.DSI)
		return false
	}
	rt.Mem.Write8(phys, uint8(value))
	return true
}

func storeMemory16(p unsafe.Pointer, addr uint32, value uint32) bool {
	s := (*cpu.PPCState)(p)
	rt := runtimeFor(s)
	phys, ok := rt.MMU.Translate(s, addr, mmu.AccessDataWrite, supervisorMode(s))
	if !ok {
		rt.Sink.Trigger(rt.Core, except.DSI)
		return false
	}
	rt.Mem.Write16(phys, uint16(value))
	return true
}

func storeMemory32(p unsafe.Pointer, addr uint32, value uint32) bool {
	s := (*cpu.PPCState)(p)
	rt := runtimeFor(s)
	phys, ok := rt.MMU.Translate(s, addr, mmu.AccessDataWrite, supervisorMode(s))
	if !ok {
		rt.Sink.Trigger(rt.Core, except.DSI)
		return false
	}
	rt.Mem.Write32(phys, value)
	return true
}

// storeLong is the 8-byte store used by double-precision FPR spills.
func storeLong(p unsafe.Pointer, addr uint32, value uint64) bool {
	s := (*cpu.PPCState)(p)
	rt := runtimeFor(s)
	phys, ok := rt.MMU.Translate(s, addr, mmu.AccessDataWrite, supervisorMode(s))
	if !ok {
		rt.Sink.Trigger(rt.Core, except.DSI)
		return false
	}
	rt.Mem.Write64(phys, value)
	return true
}

// executeInstr is the interpreter fallback for the bulk of the PowerPC
// decode tree the fast-emit path does not cover (spec.md §4.4).
func executeInstr(p unsafe.Pointer, raw uint32) {
	s := (*cpu.PPCState)(p)
	rt := runtimeFor(s)
	if rt.Fallback != nil {
		rt.Fallback(s, raw)
		return
	}
	rt.Sink.Trigger(rt.Core, except.UndefinedInstruction)
}

// throwInstr reflects a translator bug, not a guest fault (spec.md §7 kind
// 3): the decoder recognized an opcode class but the emitter could not
// represent its sub-decode at all.
func throwInstr(p unsafe.Pointer, raw uint32) {
	s := (*cpu.PPCState)(p)
	rt := runtimeFor(s)
	if rt.Log != nil {
		rt.Log.Fatal("ppc: impossible instruction reached the emitter", zap.Uint32("raw", raw))
	}
	panic("ppc: impossible instruction reached the emitter")
}
