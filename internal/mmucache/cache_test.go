package mmucache

import "testing"

func TestLookupMissBeforeFill(t *testing.T) {
	c := New(2)
	if _, ok := c.Lookup(AccessData, false, 0x1000); ok {
		t.Fatal("expected miss on a freshly invalidated cache")
	}
}

func TestFillThenLookupHits(t *testing.T) {
	c := New(2)
	c.Fill(AccessData, false, 0x10000000, 0x01000000, 0xFFF)
	paddr, ok := c.Lookup(AccessData, false, 0x10000123)
	if !ok {
		t.Fatal("expected hit after fill")
	}
	if paddr != 0x01000123 {
		t.Fatalf("paddr = %#x, want %#x", paddr, 0x01000123)
	}
}

func TestLookupRespectsAccessTypeAndSupervisor(t *testing.T) {
	c := New(3)
	c.Fill(AccessData, true, 0x2000, 0x3000, 0xFFF)
	if _, ok := c.Lookup(AccessData, false, 0x2000); ok {
		t.Fatal("user-mode lookup should miss a supervisor-only fill")
	}
	if _, ok := c.Lookup(AccessInstruction, true, 0x2000); ok {
		t.Fatal("instruction-access lookup should miss a data fill")
	}
	if _, ok := c.Lookup(AccessData, true, 0x2000); !ok {
		t.Fatal("matching access type and privilege should hit")
	}
}

func TestInvalidateClearsAllSlots(t *testing.T) {
	c := New(2)
	c.Fill(AccessData, false, 0x1000, 0x2000, 0xFFF)
	c.Fill(AccessInstruction, true, 0x3000, 0x4000, 0xFFF)
	c.Invalidate()
	if _, ok := c.Lookup(AccessData, false, 0x1000); ok {
		t.Fatal("expected miss after invalidate")
	}
	if _, ok := c.Lookup(AccessInstruction, true, 0x3000); ok {
		t.Fatal("expected miss after invalidate")
	}
}

// MMU idempotence (spec.md §8): invalidating and re-translating yields the
// same physical address given unchanged page tables.
func TestIdempotentAfterReinvalidate(t *testing.T) {
	c := New(2)
	c.Fill(AccessData, false, 0x5000, 0x6000, 0xFFF)
	want, _ := c.Lookup(AccessData, false, 0x5000)
	c.Invalidate()
	c.Fill(AccessData, false, 0x5000, 0x6000, 0xFFF)
	got, ok := c.Lookup(AccessData, false, 0x5000)
	if !ok || got != want {
		t.Fatalf("got %#x ok=%v, want %#x", got, ok, want)
	}
}
