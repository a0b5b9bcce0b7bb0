package cpu

import "testing"

func TestStwcxSucceedsWhenUncontended(t *testing.T) {
	var r Reservation
	r.Acquire(1, 0x4000)
	if !r.TryCommit(1, 0x4000) {
		t.Fatal("stwcx should succeed: no intervening write")
	}
}

func TestStwcxFailsAfterForeignWrite(t *testing.T) {
	var r Reservation
	r.Acquire(1, 0x4000)
	r.ClearOnWrite(0x4000) // another core (or this one) stores to addr
	if r.TryCommit(1, 0x4000) {
		t.Fatal("stwcx should fail: reservation was cleared by an intervening write")
	}
}

func TestStwcxFailsForWrongOwner(t *testing.T) {
	var r Reservation
	r.Acquire(1, 0x4000)
	if r.TryCommit(2, 0x4000) {
		t.Fatal("stwcx should fail: owned by a different core")
	}
}

func TestStwcxFailsForWrongAddress(t *testing.T) {
	var r Reservation
	r.Acquire(1, 0x4000)
	if r.TryCommit(1, 0x4004) {
		t.Fatal("stwcx should fail: different address")
	}
}

func TestClearOnWriteIgnoresUnrelatedAddress(t *testing.T) {
	var r Reservation
	r.Acquire(1, 0x4000)
	r.ClearOnWrite(0x8000)
	if !r.TryCommit(1, 0x4000) {
		t.Fatal("stwcx should still succeed: write was to an unrelated address")
	}
}

func TestStwcxIsOneShot(t *testing.T) {
	var r Reservation
	r.Acquire(1, 0x4000)
	if !r.TryCommit(1, 0x4000) {
		t.Fatal("first commit should succeed")
	}
	if r.TryCommit(1, 0x4000) {
		t.Fatal("second commit without a new lwarx should fail")
	}
}
