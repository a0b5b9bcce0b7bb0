package cpu

import "testing"

func TestModeChangeBanksRegisters(t *testing.T) {
	s := NewARMState()
	s.R[13] = 0x1000 // SVC SP
	s.R[14] = 0x2000 // SVC LR

	s.ChangeMode(ModeIRQ)
	s.R[13] = 0x3000 // IRQ SP
	s.R[14] = 0x4000 // IRQ LR

	s.ChangeMode(ModeSVC)
	if s.R[13] != 0x1000 || s.R[14] != 0x2000 {
		t.Fatalf("SVC bank not restored: SP=%#x LR=%#x", s.R[13], s.R[14])
	}

	s.ChangeMode(ModeIRQ)
	if s.R[13] != 0x3000 || s.R[14] != 0x4000 {
		t.Fatalf("IRQ bank not restored: SP=%#x LR=%#x", s.R[13], s.R[14])
	}
}

func TestWriteReadModeRegsIsIdentity(t *testing.T) {
	s := NewARMState()
	s.active = ModeSVC
	s.R[13] = 0xAAAA
	s.R[14] = 0xBBBB
	s.WriteModeRegs()
	s.R[13] = 0
	s.R[14] = 0
	s.ReadModeRegs()
	if s.R[13] != 0xAAAA || s.R[14] != 0xBBBB {
		t.Fatalf("write/read mode regs was not the identity: SP=%#x LR=%#x", s.R[13], s.R[14])
	}
}

func TestFIQBanksR8ThroughR12(t *testing.T) {
	s := NewARMState()
	for i := 8; i <= 12; i++ {
		s.R[i] = uint32(i)
	}
	s.ChangeMode(ModeFIQ)
	for i := 8; i <= 12; i++ {
		if s.R[i] != 0 {
			t.Fatalf("R%d leaked into FIQ bank: got %#x", i, s.R[i])
		}
		s.R[i] = uint32(0x100 + i)
	}
	s.ChangeMode(ModeSVC)
	for i := 8; i <= 12; i++ {
		if s.R[i] != uint32(i) {
			t.Fatalf("R%d not restored on return to SVC: got %#x, want %#x", i, s.R[i], i)
		}
	}
}

func TestSPSRIsPerMode(t *testing.T) {
	s := NewARMState()
	s.ChangeMode(ModeIRQ)
	s.SetSPSR(0x111)
	s.ChangeMode(ModeAbort)
	s.SetSPSR(0x222)
	s.ChangeMode(ModeIRQ)
	if got := s.SPSR(); got != 0x111 {
		t.Fatalf("IRQ SPSR = %#x, want 0x111", got)
	}
}
