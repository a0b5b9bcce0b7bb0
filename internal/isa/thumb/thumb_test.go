package thumb

import (
	"testing"

	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/except"
	"github.com/kinnay/wiiu-dbt/internal/isa/armabi"
	"github.com/kinnay/wiiu-dbt/internal/jit"
	"github.com/kinnay/wiiu-dbt/internal/mem"
	"github.com/kinnay/wiiu-dbt/internal/mmu"
)

type noopSink struct{}

func (noopSink) Trigger(except.CoreID, except.Kind) {}

func newDispatcher(t *testing.T, backend mem.Backend) (*jit.Dispatcher, *cpu.ARMState) {
	t.Helper()
	s := cpu.NewARMState()
	cache := jit.NewCache(jit.ISAThumb, backend, New(armabi.HelperAddrs()))
	armabi.Bind(s, &armabi.Runtime{
		MMU:  mmu.NewARM(backend),
		Mem:  backend,
		Sink: noopSink{},
		Core: except.CoreARM,
	})
	identity := func(vaddr uint32) (uint32, bool) { return vaddr, true }
	return jit.NewDispatcher(s, cache, identity), s
}

// TestPushPopRoundTrip reproduces the PUSH{R0,R1,LR}/POP{R0,R1,PC} round
// trip: the stack pointer must return to its starting value and PC must
// land on LR's value with the Thumb bit masked off.
func TestPushPopRoundTrip(t *testing.T) {
	backend := mem.NewFlat(0x9000)
	backend.Write16(0x1000, 0xB503) // PUSH {R0, R1, LR}
	backend.Write16(0x1002, 0xBD03) // POP {R0, R1, PC}
	d, s := newDispatcher(t, backend)

	s.R[13] = 0x8100
	s.R[0] = 0xAA
	s.R[1] = 0xBB
	s.R[14] = 0xCC
	s.R[15] = 0x1000

	if err := d.Step(); err != nil {
		t.Fatalf("Step (PUSH): %v", err)
	}
	if s.R[13] != 0x8100-12 {
		t.Fatalf("SP after PUSH = %#x, want %#x", s.R[13], 0x8100-12)
	}

	if err := d.Step(); err != nil {
		t.Fatalf("Step (POP): %v", err)
	}
	if s.R[13] != 0x8100 {
		t.Fatalf("SP after POP = %#x, want 0x8100", s.R[13])
	}
	if s.R[0] != 0xAA {
		t.Fatalf("R0 = %#x, want 0xAA", s.R[0])
	}
	if s.R[1] != 0xBB {
		t.Fatalf("R1 = %#x, want 0xBB", s.R[1])
	}
	if s.R[15] != 0xCC {
		t.Fatalf("R15 = %#x, want 0xCC", s.R[15])
	}
}

// TestAddSubImmediateSetsFlags reproduces SUBS R0, R1, #1 with R1 == 0,
// exercising the borrow-into-carry-inversion path format 2 shares with A32.
func TestAddSubImmediateSetsFlags(t *testing.T) {
	backend := mem.NewFlat(0x2000)
	backend.Write16(0x1000, 0x1E48) // SUB R0, R1, #1
	d, s := newDispatcher(t, backend)

	s.R[1] = 0
	s.R[15] = 0x1000

	if err := d.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if s.R[0] != 0xFFFFFFFF {
		t.Fatalf("R0 = %#x, want 0xFFFFFFFF", s.R[0])
	}
	if s.CPSR&(1<<cpu.CPSRBitN) == 0 {
		t.Fatal("N flag should be set")
	}
	if s.CPSR&(1<<cpu.CPSRBitC) != 0 {
		t.Fatal("C flag should be clear (borrow occurred)")
	}
}

// TestMOVImmediateLoadsLowRegister reproduces format 3's MOV Rd, #imm8.
func TestMOVImmediateLoadsLowRegister(t *testing.T) {
	backend := mem.NewFlat(0x2000)
	backend.Write16(0x1000, 0x207F) // MOV R0, #0x7F
	d, s := newDispatcher(t, backend)
	s.R[15] = 0x1000

	if err := d.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if s.R[0] != 0x7F {
		t.Fatalf("R0 = %#x, want 0x7F", s.R[0])
	}
	if s.CPSR&(1<<cpu.CPSRBitZ) != 0 {
		t.Fatal("Z flag should be clear")
	}
}

// TestUnconditionalBranch reproduces format 18's B label targeting itself.
func TestUnconditionalBranch(t *testing.T) {
	backend := mem.NewFlat(0x2000)
	backend.Write16(0x1000, 0xE7FE) // B #-4 (branch to self)
	d, s := newDispatcher(t, backend)
	s.R[15] = 0x1000

	if err := d.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if s.R[15] != 0x1000 {
		t.Fatalf("R15 = %#x, want 0x1000 (branch to self)", s.R[15])
	}
}
