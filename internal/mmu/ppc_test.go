package mmu

import (
	"testing"

	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/mem"
)

func TestPPCIdentityMapsWhenTranslationDisabled(t *testing.T) {
	p := NewPPC(mem.NewFlat(0x1000))
	s := cpu.NewPPCState()
	phys, ok := p.Translate(s, 0x12345678, AccessDataRead, true)
	if !ok || phys != 0x12345678 {
		t.Fatalf("got %#x ok=%v, want identity", phys, ok)
	}
}

func TestPPCBATTranslatesDataAccess(t *testing.T) {
	p := NewPPC(mem.NewFlat(0x1000))
	s := cpu.NewPPCState()
	s.MSR = 1 << cpu.MSRBitDR

	// DBAT0: valid in both modes, 128KB block at 0x80000000 -> 0x10000000,
	// read/write (pp=2). BEPI occupies bits [31:17], BL bits [12:2], VS/VP
	// bits [1:0].
	batu := (uint32(0x80000000) &^ 0x1FFFF) | 3 // VP=1 VS=1, BL=0 (128KB block)
	batl := (uint32(0x10000000) &^ 0x1FFFF) | 2 // PP=2 read/write
	s.SPR[SPRDBAT0U] = batu
	s.SPR[SPRDBAT0U+1] = batl

	phys, ok := p.Translate(s, 0x80000123, AccessDataRead, true)
	if !ok || phys != 0x10000123 {
		t.Fatalf("got %#x ok=%v, want 0x10000123", phys, ok)
	}
}

func TestPPCBootromWindowFixup(t *testing.T) {
	p := NewPPC(mem.NewFlat(0x1000))
	s := cpu.NewPPCState()
	phys, ok := p.Translate(s, 0xFFE00010, AccessInstruction, true)
	if !ok || phys != 0x08000010 {
		t.Fatalf("got %#x ok=%v, want 0x08000010", phys, ok)
	}
}

func TestPPCPageTableMiss(t *testing.T) {
	p := NewPPC(mem.NewFlat(0x10000))
	s := cpu.NewPPCState()
	s.MSR = 1 << cpu.MSRBitDR
	// SR[addr>>28] left zero: not a direct-store segment, but the page
	// table (SDR1=0) has no valid PTEs, so the lookup must miss.
	if _, ok := p.Translate(s, 0x10000000, AccessDataRead, true); ok {
		t.Fatal("expected DSI miss with an empty page table")
	}
}
