package jit

import (
	"testing"

	"github.com/kinnay/wiiu-dbt/internal/emitter"
	"github.com/kinnay/wiiu-dbt/internal/mem"
)

// retTranslator emits a single Ret for every instruction, enough to verify
// cache bookkeeping without needing a real ISA decoder.
type retTranslator struct{ isa ISA }

func (t retTranslator) ISA() ISA { return t.isa }

func (t retTranslator) Emit(e *emitter.Emitter, pc uint32, raw uint32) error {
	e.Ret()
	return nil
}

func TestCacheCompileInstallsBlockCoveringWholeFrame(t *testing.T) {
	backend := mem.NewFlat(0x2000)
	c := NewCache(ISAPPC, backend, retTranslator{ISAPPC})

	if c.Lookup(0x1000) != nil {
		t.Fatal("expected no block before Compile")
	}
	block, err := c.Compile(0x1004)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got := c.Lookup(0x1000); got != block {
		t.Fatal("Compile must install the block under the frame's base address")
	}
	if got := c.Lookup(0x1FFC); got != block {
		t.Fatal("Compile must install the block for every address in the frame")
	}

	wantSize := ISAPPC.TrampolineBytes() + ISAPPC.NumSlots() // one Ret byte per instruction
	if block.Size() != wantSize {
		t.Fatalf("block size = %d, want %d", block.Size(), wantSize)
	}
}

func TestCacheInvalidateFrameClearsOnlyThatFrame(t *testing.T) {
	backend := mem.NewFlat(0x3000)
	c := NewCache(ISAPPC, backend, retTranslator{ISAPPC})

	c.Compile(0x1000)
	c.Compile(0x2000)

	c.InvalidateFrame(0x1004)

	if c.Lookup(0x1000) != nil {
		t.Fatal("frame 0x1000 should be invalidated")
	}
	if c.Lookup(0x2000) == nil {
		t.Fatal("frame 0x2000 should be untouched")
	}
}

func TestCacheInvalidateClearsEverything(t *testing.T) {
	backend := mem.NewFlat(0x3000)
	c := NewCache(ISAPPC, backend, retTranslator{ISAPPC})

	c.Compile(0x1000)
	c.Compile(0x2000)
	c.Invalidate()

	if c.Lookup(0x1000) != nil || c.Lookup(0x2000) != nil {
		t.Fatal("Invalidate must clear every compiled frame")
	}
}
