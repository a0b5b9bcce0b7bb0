package emitter

import (
	"testing"

	"golang.org/x/arch/x86/x86asm"
)

// decode disassembles the first instruction in buf using the 64-bit decode
// table, satisfying the emit-then-disassemble testable property: the bytes
// this package writes must mean what the caller intended.
func decode(t *testing.T, buf []byte) x86asm.Inst {
	t.Helper()
	inst, err := x86asm.Decode(buf, 64)
	if err != nil {
		t.Fatalf("x86asm.Decode: %v", err)
	}
	return inst
}

func TestMovRRDecodesAsMov(t *testing.T) {
	e := New()
	e.MovRR(RAX, RCX)
	inst := decode(t, e.Bytes())
	if inst.Op != x86asm.MOV {
		t.Fatalf("got %v, want MOV", inst.Op)
	}
}

func TestAddRIDecodesAsAdd(t *testing.T) {
	e := New()
	e.AddRI(RBX, 0x1234)
	inst := decode(t, e.Bytes())
	if inst.Op != x86asm.ADD {
		t.Fatalf("got %v, want ADD", inst.Op)
	}
}

func TestBitTestDecodesAsBt(t *testing.T) {
	e := New()
	e.BitTest(PReg, 0x10, 29)
	inst := decode(t, e.Bytes())
	if inst.Op != x86asm.BT {
		t.Fatalf("got %v, want BT", inst.Op)
	}
}

func TestRetDecodesAsRet(t *testing.T) {
	e := New()
	e.Ret()
	inst := decode(t, e.Bytes())
	if inst.Op != x86asm.RET {
		t.Fatalf("got %v, want RET", inst.Op)
	}
}

func TestJccRel8PatchLandsAtCursor(t *testing.T) {
	e := New()
	fix := e.JccRel8(CondE)
	e.Ret() // one filler instruction between the jump and its target
	if err := e.PatchRel8At(fix); err != nil {
		t.Fatalf("patch: %v", err)
	}
	inst := decode(t, e.Bytes())
	if inst.Op != x86asm.JE {
		t.Fatalf("got %v, want JE", inst.Op)
	}
	if rel := int8(e.Bytes()[fix]); rel != 1 {
		t.Fatalf("rel8 = %d, want 1 (past the one-byte RET, at the cursor)", rel)
	}
}

func TestJmpRel32IsFiveBytes(t *testing.T) {
	e := New()
	fix := e.JmpRel32()
	if e.Size() != 5 {
		t.Fatalf("trampoline cell size = %d, want 5", e.Size())
	}
	e.PatchRel32At(fix, 100)
	inst := decode(t, e.Bytes())
	if inst.Op != x86asm.JMP {
		t.Fatalf("got %v, want JMP", inst.Op)
	}
}

func TestSeekOverwritesTrampolineSlot(t *testing.T) {
	e := New()
	slot := e.JmpRel32() // reserve a trampoline cell
	e.Seek(64)
	e.Ret() // body starts at 64
	e.Seek(slot - 1)
	e.PatchRel32At(slot, 64)
	if e.Size() < 65 {
		t.Fatalf("size = %d, want >= 65", e.Size())
	}
	b := e.Bytes()
	rel := int32(uint32(b[slot]) | uint32(b[slot+1])<<8 | uint32(b[slot+2])<<16 | uint32(b[slot+3])<<24)
	if rel != 64-5 {
		t.Fatalf("slot displacement = %d, want %d (jump to the body at 64)", rel, 64-5)
	}
}

func TestCallAbsMaterializesImm64(t *testing.T) {
	e := New()
	e.CallAbs(R10, 0x1122334455667788)
	b := e.Bytes()
	// REX.W + B8+r8 (movabs r10, imm64) is 10 bytes, then call [r10] is 3 bytes.
	if len(b) != 13 {
		t.Fatalf("len = %d, want 13", len(b))
	}
	got := uint64(b[2]) | uint64(b[3])<<8 | uint64(b[4])<<16 | uint64(b[5])<<24 |
		uint64(b[6])<<32 | uint64(b[7])<<40 | uint64(b[8])<<48 | uint64(b[9])<<56
	if got != 0x1122334455667788 {
		t.Fatalf("imm64 = %#x, want %#x", got, 0x1122334455667788)
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	e := New()
	e.PushR(R12)
	e.PopR(R12)
	b := e.Bytes()
	if len(b) != 4 {
		t.Fatalf("len = %d, want 4 (two REX-prefixed push/pop)", len(b))
	}
}
