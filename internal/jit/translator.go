package jit

import (
	"unsafe"

	"github.com/kinnay/wiiu-dbt/internal/emitter"
)

// Translator emits the host body for one guest instruction into e, starting
// at e.Tell(). pc is the instruction's guest-physical address and raw is
// its encoding (zero-extended to 32 bits; Thumb only uses the low 16). Each
// ISA package implements exactly one Translator, owning that ISA's
// trampoline table size and per-instruction width (spec.md §4.6).
type Translator interface {
	ISA() ISA
	Emit(e *emitter.Emitter, pc uint32, raw uint32) error
}

// GuestCore is the subset of a CPU state record the dispatcher touches
// directly: its program counter, and the address the calling convention
// passes in RDI when entering jitted code (spec.md §4.6 step 4, §6).
type GuestCore interface {
	GetPC() uint32
	SetPC(v uint32)
	StatePtr() unsafe.Pointer
}
