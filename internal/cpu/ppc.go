package cpu

import (
	"math"
	"unsafe"
)

// MSR bit positions relevant to the JIT and MMU.
const (
	MSRBitEE = 15 // external interrupt enable
	MSRBitPR = 14 // problem state (0 = supervisor)
	MSRBitIR = 5  // instruction address translation enable
	MSRBitDR = 4  // data address translation enable
)

// FPR is the 64-bit union backing one PowerPC floating-point register:
// viewable as two 32-bit singles (paired-single ops), two 32-bit ints
// (integer reinterpretation), or one double. All views share the same
// underlying 8 bytes; there is exactly one representation in memory.
type FPR uint64

func (f FPR) Double() float64    { return math.Float64frombits(uint64(f)) }
func (f *FPR) SetDouble(v float64) { *f = FPR(math.Float64bits(v)) }

func (f FPR) PS0() float32 { return math.Float32frombits(uint32(f >> 32)) }
func (f FPR) PS1() float32 { return math.Float32frombits(uint32(f)) }

func (f *FPR) SetPS0(v float32) {
	*f = FPR(uint64(math.Float32bits(v))<<32 | uint64(*f)&0xFFFFFFFF)
}
func (f *FPR) SetPS1(v float32) {
	*f = FPR(uint64(*f)&0xFFFFFFFF00000000 | uint64(math.Float32bits(v)))
}

func (f FPR) IntHi() int32 { return int32(f >> 32) }
func (f FPR) IntLo() int32 { return int32(f) }

// Pending exception latches: when MSR.EE=0, maskable exceptions latch here
// instead of firing immediately, and must be drained in priority order
// external -> decrementer -> ICI on the next rfi/mtmsr that sets EE=1
// (spec.md §3).
type PendingLatches struct {
	External   bool
	Decrementer bool
	ICI        bool
}

// Pending returns whether any maskable exception is latched.
func (p PendingLatches) Pending() bool {
	return p.External || p.Decrementer || p.ICI
}

// Drain clears the highest-priority latched exception and returns its kind,
// or ok=false if nothing is pending. Priority: external, decrementer, ICI.
func (p *PendingLatches) Drain() (which int, ok bool) {
	switch {
	case p.External:
		p.External = false
		return 0, true
	case p.Decrementer:
		p.Decrementer = false
		return 1, true
	case p.ICI:
		p.ICI = false
		return 2, true
	default:
		return 0, false
	}
}

// PPCState is the flat, fixed-layout register record for one PowerPC core.
type PPCState struct {
	R   [32]uint32
	F   [32]FPR
	CR  uint32
	XER uint32
	MSR uint32

	LR  uint32
	CTR uint32

	SR  [16]uint32 // segment registers
	SPR [512]uint32

	FPSCR uint32

	SRR0 uint32
	SRR1 uint32
	DAR  uint32
	DSISR uint32

	PC uint32

	Pending PendingLatches

	// HelperCtx is an opaque back-pointer the owning runtime stashes its
	// MMU/MemoryBackend/exception-sink collaborators behind, recovered by
	// the loadMemory/storeMemory/etc. helpers (see cpu.ARMState.HelperCtx).
	HelperCtx unsafe.Pointer
}

// NewPPCState returns a zeroed PPC core state.
func NewPPCState() *PPCState {
	return &PPCState{}
}

// Field offsets within PPCState, computed rather than hardcoded so the
// translator's memory operands stay correct if the struct is reordered.
var (
	OffR   = int32(unsafe.Offsetof(PPCState{}.R))
	OffF   = int32(unsafe.Offsetof(PPCState{}.F))
	OffCR  = int32(unsafe.Offsetof(PPCState{}.CR))
	OffXER = int32(unsafe.Offsetof(PPCState{}.XER))
	OffMSR = int32(unsafe.Offsetof(PPCState{}.MSR))
	OffLR  = int32(unsafe.Offsetof(PPCState{}.LR))
	OffCTR = int32(unsafe.Offsetof(PPCState{}.CTR))
	OffSR  = int32(unsafe.Offsetof(PPCState{}.SR))
	OffSPR = int32(unsafe.Offsetof(PPCState{}.SPR))
	OffPC  = int32(unsafe.Offsetof(PPCState{}.PC))

	OffHelperCtx = int32(unsafe.Offsetof(PPCState{}.HelperCtx))
)

// OffReg returns the byte offset of R[n] within PPCState.
func OffReg(n int) int32 { return OffR + int32(n)*4 }

// OffSPRn returns the byte offset of SPR[n] within PPCState.
func OffSPRn(n int) int32 { return OffSPR + int32(n)*4 }

// GetPC returns the current program counter (jit.GuestCore).
func (s *PPCState) GetPC() uint32 { return s.PC }

// SetPC overwrites the program counter (jit.GuestCore).
func (s *PPCState) SetPC(v uint32) { s.PC = v }

// StatePtr returns the address the JIT calling convention passes in RDI
// (jit.GuestCore).
func (s *PPCState) StatePtr() unsafe.Pointer { return unsafe.Pointer(s) }

// CRBit returns the value (0 or 1) of CR bit n, numbered MSB-first per the
// ISA (bit 0 is CR0's LT).
func (s *PPCState) CRBit(n uint) uint32 {
	return (s.CR >> (31 - n)) & 1
}

// SetCRBit sets or clears CR bit n (MSB-first numbering).
func (s *PPCState) SetCRBit(n uint, v bool) {
	mask := uint32(1) << (31 - n)
	if v {
		s.CR |= mask
	} else {
		s.CR &^= mask
	}
}

// SetCRField writes the 4-bit LT/GT/EQ/SO field for CR field idx (0 = CR0)
// from a signed compare result and the current SO bit of XER.
func (s *PPCState) SetCRField(idx uint, lt, gt, eq bool) {
	base := idx * 4
	s.SetCRBit(base+0, lt)
	s.SetCRBit(base+1, gt)
	s.SetCRBit(base+2, eq)
	s.SetCRBit(base+3, s.XER&(1<<31) != 0) // XER.SO copied into CR.SO
}
