package cpu

import "unsafe"

// Mode is the 5-bit CPSR mode field.
type Mode uint32

const (
	ModeUser       Mode = 0x10
	ModeFIQ        Mode = 0x11
	ModeIRQ        Mode = 0x12
	ModeSVC        Mode = 0x13
	ModeAbort      Mode = 0x17
	ModeUndefined  Mode = 0x1B
	ModeSystem     Mode = 0x1F
)

// CPSR bit positions the translators bit-test directly.
const (
	CPSRBitN = 31
	CPSRBitZ = 30
	CPSRBitC = 29
	CPSRBitV = 28
	CPSRBitT = 5 // Thumb state
)

// bank holds the mode-specific shadow copy of R13 (SP), R14 (LR), and SPSR.
// FIQ additionally shadows R8-R12; those live in fiqBank.
type bank struct {
	R13  uint32
	R14  uint32
	SPSR uint32
}

// ARMState is the flat, fixed-layout guest register record for the ARM
// auxiliary processor. Field order is chosen so the hottest fields (R0-R15,
// CPSR) sit at the lowest offsets, within reach of the host emitter's
// 1-byte-displacement addressing (spec.md §3). R[15] aliases PC.
type ARMState struct {
	R    [16]uint32 // R0-R15; R13=SP, R14=LR, R15=PC in the active bank
	CPSR uint32

	// System-control coprocessor (CP15) registers.
	Control uint32 // c1: MMU enable and permission-check bits
	TTBR    uint32 // c2: translation table base
	Domain  uint32 // c3: domain access control
	DFSR    uint32 // c5: data fault status
	IFSR    uint32 // c5: instruction fault status
	FAR     uint32 // c6: fault address

	// Banked shadow registers, indexed by mode. User and System share a
	// bank (no private SPSR); FIQ additionally banks R8-R12.
	banks   [6]bank // [User/System, FIQ, IRQ, SVC, Abort, Undefined]
	fiqBank [5]uint32 // R8-R12 shadow, FIQ mode only

	active Mode // mode the R/CPSR fields currently reflect

	// HelperCtx is an opaque back-pointer the owning runtime stashes its
	// MMU/MemoryBackend/exception-sink collaborators behind. Emitted code
	// carries no context besides P, so the loadMemory/storeMemory/etc.
	// helpers recover their collaborators from here.
	HelperCtx unsafe.Pointer
}

// Field offsets within ARMState, computed rather than hardcoded so the
// translator's memory operands stay correct if the struct is reordered.
// R and CPSR land within 1-byte-displacement range of the struct base, as
// spec.md §3 requires for the hottest fields.
var (
	OffR    = int32(unsafe.Offsetof(ARMState{}.R))
	OffCPSR = int32(unsafe.Offsetof(ARMState{}.CPSR))

	OffControl = int32(unsafe.Offsetof(ARMState{}.Control))
	OffTTBR    = int32(unsafe.Offsetof(ARMState{}.TTBR))
	OffDomain  = int32(unsafe.Offsetof(ARMState{}.Domain))
	OffDFSR    = int32(unsafe.Offsetof(ARMState{}.DFSR))
	OffIFSR    = int32(unsafe.Offsetof(ARMState{}.IFSR))
	OffFAR     = int32(unsafe.Offsetof(ARMState{}.FAR))

	OffHelperCtx = int32(unsafe.Offsetof(ARMState{}.HelperCtx))
)

// OffReg returns the byte offset of R[n] within ARMState.
func OffReg(n int) int32 { return OffR + int32(n)*4 }

func bankIndex(m Mode) int {
	switch m {
	case ModeFIQ:
		return 1
	case ModeIRQ:
		return 2
	case ModeSVC:
		return 3
	case ModeAbort:
		return 4
	case ModeUndefined:
		return 5
	default:
		return 0 // User and System
	}
}

// NewARMState returns a zeroed ARM core state with CPSR in SVC mode, as the
// reset exception leaves it (spec.md §3 "Lifecycle").
func NewARMState() *ARMState {
	s := &ARMState{}
	s.CPSR = uint32(ModeSVC)
	s.active = ModeSVC
	return s
}

// Mode returns the mode the active bank currently reflects.
func (s *ARMState) Mode() Mode { return Mode(s.CPSR & 0x1F) }

// WriteBank saves R13/R14 (and R8-R12 if leaving FIQ) of the active bank
// into the shadow for oldMode.
func (s *ARMState) WriteBank(oldMode Mode) {
	idx := bankIndex(oldMode)
	s.banks[idx].R13 = s.R[13]
	s.banks[idx].R14 = s.R[14]
	if oldMode == ModeFIQ {
		copy(s.fiqBank[:], s.R[8:13])
	}
}

// ReadBank restores R13/R14 (and R8-R12 if entering FIQ) of newMode from its
// shadow into the active registers, and records the new active mode.
func (s *ARMState) ReadBank(newMode Mode) {
	idx := bankIndex(newMode)
	s.R[13] = s.banks[idx].R13
	s.R[14] = s.banks[idx].R14
	if newMode == ModeFIQ {
		copy(s.R[8:13], s.fiqBank[:])
	}
	s.active = newMode
}

// ChangeMode performs the full bank swap a CPSR mode-field write requires:
// save the outgoing bank, read the incoming one. This is the body of the
// changeMode runtime helper spec.md §6 lists.
func (s *ARMState) ChangeMode(newMode Mode) {
	old := s.active
	if old == newMode {
		return
	}
	s.WriteBank(old)
	s.ReadBank(newMode)
}

// SPSR returns the banked SPSR for the active mode. User/System mode has no
// SPSR; callers must not reach this path from those modes (MSR/MRS to SPSR
// in User mode is UNPREDICTABLE and is not modeled).
func (s *ARMState) SPSR() uint32 {
	return s.banks[bankIndex(s.active)].SPSR
}

// SetSPSR writes the banked SPSR for the active mode.
func (s *ARMState) SetSPSR(v uint32) {
	s.banks[bankIndex(s.active)].SPSR = v
}

// WriteModeRegs / ReadModeRegs are the bank save/restore primitives called
// from jitted LDM^ and MSR-to-CPSR-with-mode-change sequences (spec.md §6).
// WriteModeRegs followed by ReadModeRegs in the same mode is the identity
// (spec.md §8).
func (s *ARMState) WriteModeRegs() { s.WriteBank(s.active) }
func (s *ARMState) ReadModeRegs()  { s.ReadBank(s.active) }

// GetPC returns the program counter, R15 (jit.GuestCore).
func (s *ARMState) GetPC() uint32 { return s.R[15] }

// SetPC overwrites R15 (jit.GuestCore).
func (s *ARMState) SetPC(v uint32) { s.R[15] = v }

// StatePtr returns the address the JIT calling convention passes in RDI
// (jit.GuestCore).
func (s *ARMState) StatePtr() unsafe.Pointer { return unsafe.Pointer(s) }
