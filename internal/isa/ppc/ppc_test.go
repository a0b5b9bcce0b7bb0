package ppc

import (
	"testing"

	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/isa/ppcabi"
	"github.com/kinnay/wiiu-dbt/internal/jit"
	"github.com/kinnay/wiiu-dbt/internal/mem"
)

func newDispatcher(t *testing.T, backend mem.Backend) (*jit.Dispatcher, *cpu.PPCState) {
	t.Helper()
	s := cpu.NewPPCState()
	cache := jit.NewCache(jit.ISAPPC, backend, New(ppcabi.HelperAddrs()))
	identity := func(vaddr uint32) (uint32, bool) { return vaddr, true }
	return jit.NewDispatcher(s, cache, identity), s
}

// TestADDILoadsImmediateAgainstZero reproduces ADDI r3, 0, 0x1234: with
// rA == 0 the literal 0 replaces the register read, and CR is untouched.
func TestADDILoadsImmediateAgainstZero(t *testing.T) {
	backend := mem.NewFlat(0x2000)
	backend.Write32(0x1000, 0x38601234) // addi r3, 0, 0x1234
	d, s := newDispatcher(t, backend)

	s.CR = 0xAABBCCDD
	s.PC = 0x1000

	if err := d.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if s.R[3] != 0x1234 {
		t.Fatalf("R3 = %#x, want 0x1234", s.R[3])
	}
	if s.CR != 0xAABBCCDD {
		t.Fatalf("CR = %#x, want unchanged 0xAABBCCDD", s.CR)
	}
}

// TestRLWINMExtractsLowByte reproduces RLWINM r3, r4, 0, 24, 31: a
// zero-rotate mask-extract of the low 8 bits, CR untouched since Rc == 0.
func TestRLWINMExtractsLowByte(t *testing.T) {
	backend := mem.NewFlat(0x2000)
	backend.Write32(0x1000, 0x5483063E) // rlwinm r3, r4, 0, 24, 31
	d, s := newDispatcher(t, backend)

	s.R[4] = 0xDEADBEEF
	s.CR = 0x11223344
	s.PC = 0x1000

	if err := d.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if s.R[3] != 0xEF {
		t.Fatalf("R3 = %#x, want 0xEF", s.R[3])
	}
	if s.CR != 0x11223344 {
		t.Fatalf("CR = %#x, want unchanged 0x11223344", s.CR)
	}
}

// TestBCAlwaysTakenIgnoringCTRStillDecrements reproduces BC 16, 2, +8
// executed twice with CTR starting at 2 and CR bit 2 clear: BO == 16 means
// the branch is gated on the CR test alone, but CTR is still decremented
// every time the instruction executes (spec.md §9).
func TestBCAlwaysTakenIgnoringCTRStillDecrements(t *testing.T) {
	backend := mem.NewFlat(0x2000)
	backend.Write32(0x1000, 0x42020008) // bc 16, 2, +8
	d, s := newDispatcher(t, backend)

	s.CTR = 2
	s.CR = 0
	s.PC = 0x1000

	if err := d.Step(); err != nil {
		t.Fatalf("Step 1: %v", err)
	}
	if s.CTR != 1 {
		t.Fatalf("CTR after first step = %d, want 1", s.CTR)
	}
	if s.PC != 0x1008 {
		t.Fatalf("PC after first step = %#x, want 0x1008 (taken)", s.PC)
	}

	s.PC = 0x1000
	if err := d.Step(); err != nil {
		t.Fatalf("Step 2: %v", err)
	}
	if s.CTR != 0 {
		t.Fatalf("CTR after second step = %d, want 0", s.CTR)
	}
	if s.PC != 0x1008 {
		t.Fatalf("PC after second step = %#x, want 0x1008 (taken)", s.PC)
	}
}
