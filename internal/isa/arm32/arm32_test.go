package arm32

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
	cache := jit.NewCache(jit.ISAArmA32, backend, New(armabi.HelperAddrs()))
	identity := func(vaddr uint32) (uint32, bool) { return vaddr, true }
	return jit.NewDispatcher(s, cache, identity), s
}

// TestADDSSetsNZCV reproduces the ADDS R0, R1, R2 boundary scenario: adding
// 0x7FFFFFFF and 1 crosses into the negative range with no unsigned carry
// but a signed overflow.
func TestADDSSetsNZCV(t *testing.T) {
	backend := mem.NewFlat(0x2000)
	backend.Write32(0x1000, 0xE0910002) // ADDS R0, R1, R2
	d, s := newDispatcher(t, backend)

	s.R[1] = 0x7FFFFFFF
	s.R[2] = 1
	s.R[15] = 0x1000

	if err := d.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if s.R[0] != 0x80000000 {
		t.Fatalf("R0 = %#x, want 0x80000000", s.R[0])
	}
	if s.CPSR&(1<<cpu.CPSRBitN) == 0 {
		t.Fatal("N flag should be set")
	}
	if s.CPSR&(1<<cpu.CPSRBitZ) != 0 {
		t.Fatal("Z flag should be clear")
	}
	if s.CPSR&(1<<cpu.CPSRBitC) != 0 {
		t.Fatal("C flag should be clear (no unsigned carry)")
	}
	if s.CPSR&(1<<cpu.CPSRBitV) == 0 {
		t.Fatal("V flag should be set (signed overflow)")
	}
}

// TestLDRPostIndexed reproduces LDR R5, [R1], #4: the load uses R1's
// original value and R1 is then written back as base+4.
func TestLDRPostIndexed(t *testing.T) {
	backend := mem.NewFlat(0x2000)
	backend.Write32(0x1000, 0xE4915004) // LDR R5, [R1], #4
	backend.Write32(0x1100, 0xDEADBEEF)
	d, s := newDispatcher(t, backend)
	armabi.Bind(s, &armabi.Runtime{
		MMU:  mmu.NewARM(backend),
		Mem:  backend,
		Sink: noopSink{},
		Core: except.CoreARM,
	})

	s.R[1] = 0x1100
	s.R[15] = 0x1000

	if err := d.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if s.R[5] != 0xDEADBEEF {
		t.Fatalf("R5 = %#x, want 0xDEADBEEF", s.R[5])
	}
	if s.R[1] != 0x1104 {
		t.Fatalf("R1 = %#x, want 0x1104 (post-indexed writeback)", s.R[1])
	}
}

func TestB_AddsSignedOffsetTimesFourPlusEight(t *testing.T) {
	backend := mem.NewFlat(0x2000)
	// B #-8 (branch to self): cond=AL, 101, L=0, imm24 = -2 (0xFFFFFE)
	backend.Write32(0x1000, 0xEAFFFFFE)
	d, s := newDispatcher(t, backend)
	s.R[15] = 0x1000

	if err := d.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if s.R[15] != 0x1000 {
		t.Fatalf("R15 = %#x, want 0x1000 (branch to self)", s.R[15])
	}
}

func TestMRSReadsCPSR(t *testing.T) {
	backend := mem.NewFlat(0x2000)
	backend.Write32(0x1000, 0xE10F0000) // MRS R0, CPSR
	d, s := newDispatcher(t, backend)
	s.R[15] = 0x1000
	s.CPSR = uint32(cpu.ModeSVC) | (1 << cpu.CPSRBitN)

	if err := d.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if s.R[0] != s.CPSR {
		t.Fatalf("R0 = %#x, want CPSR %#x", s.R[0], s.CPSR)
	}
}

func TestMSRImmediateWritesFlagsOnly(t *testing.T) {
	backend := mem.NewFlat(0x2000)
	// MSR CPSR_f, #0x80000000 (flags field only: mask=1000)
	backend.Write32(0x1000, 0xE328F102)
	d, s := newDispatcher(t, backend)
	s.R[15] = 0x1000
	s.CPSR = uint32(cpu.ModeSVC)

	if err := d.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if s.CPSR&(1<<cpu.CPSRBitN) == 0 {
		t.Fatal("N flag should have been set by the flags-field write")
	}
	if cpu.Mode(s.CPSR&0x1F) != cpu.ModeSVC {
		t.Fatalf("mode field must be untouched: got %v", cpu.Mode(s.CPSR&0x1F))
	}
}
