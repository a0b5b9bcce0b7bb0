package jit

import (
	"testing"
	"unsafe"

	"github.com/kinnay/wiiu-dbt/internal/mem"
)

type dispatchTestCore struct {
	pc    uint32
	state byte
}

func (c *dispatchTestCore) GetPC() uint32            { return c.pc }
func (c *dispatchTestCore) SetPC(v uint32)           { c.pc = v }
func (c *dispatchTestCore) StatePtr() unsafe.Pointer { return unsafe.Pointer(&c.state) }

func TestDispatcherStepAdvancesPCAndCompilesLazily(t *testing.T) {
	backend := mem.NewFlat(0x2000)
	cache := NewCache(ISAPPC, backend, retTranslator{ISAPPC})
	core := &dispatchTestCore{pc: 0x1000}
	identity := func(vaddr uint32) (uint32, bool) { return vaddr, true }
	d := NewDispatcher(core, cache, identity)

	if err := d.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if core.pc != 0x1004 {
		t.Fatalf("pc = %#x, want 0x1004", core.pc)
	}
	if cache.Lookup(0x1000) == nil {
		t.Fatal("Step must lazily compile the frame on first touch")
	}
}

func TestDispatcherStepReusesCompiledBlock(t *testing.T) {
	backend := mem.NewFlat(0x2000)
	cache := NewCache(ISAPPC, backend, retTranslator{ISAPPC})
	core := &dispatchTestCore{pc: 0x1000}
	identity := func(vaddr uint32) (uint32, bool) { return vaddr, true }
	d := NewDispatcher(core, cache, identity)

	if err := d.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	first := cache.Lookup(0x1000)
	if err := d.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if cache.Lookup(0x1000) != first {
		t.Fatal("second Step recompiled an already-cached frame")
	}
}

func TestDispatcherStepSkipsOnTranslationFault(t *testing.T) {
	backend := mem.NewFlat(0x2000)
	cache := NewCache(ISAPPC, backend, retTranslator{ISAPPC})
	core := &dispatchTestCore{pc: 0x1000}
	faulting := func(vaddr uint32) (uint32, bool) { return 0, false }
	d := NewDispatcher(core, cache, faulting)

	if err := d.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if core.pc != 0x1000 {
		t.Fatal("PC must not advance when translation faults")
	}
}
