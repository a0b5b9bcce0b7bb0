// Package jit implements the per-core JIT cache: compiled guest frames are
// mmap'd executable pages keyed by guest-physical frame number, entered
// through a fixed-size trampoline table that lets the dispatcher reach any
// compiled instruction in O(1) regardless of how long its body is
// (spec.md §3, §4.6).
package jit

import "fmt"

// trampolineSlotSize is the fixed 5-byte cell (opcode 0xE9 + rel32) every
// ISA uses: it is the smallest fixed-size jump that can reach anywhere
// inside a 32 KiB compiled frame (spec.md §4.6).
const trampolineSlotSize = 5

// ISA identifies which translator compiled a Block, and therefore its
// trampoline table size and per-instruction size.
type ISA int

const (
	ISAArmA32 ISA = iota
	ISAThumb
	ISAPPC
)

// NumSlots returns the fixed trampoline table size for the ISA (spec.md §3).
func (i ISA) NumSlots() int {
	switch i {
	case ISAArmA32:
		return 1024
	case ISAThumb:
		return 2048
	case ISAPPC:
		return 1024
	default:
		panic("jit: unknown ISA")
	}
}

// InstrSize returns the guest instruction size in bytes for the ISA.
func (i ISA) InstrSize() int {
	if i == ISAThumb {
		return 2
	}
	return 4
}

// Block is one compiled guest-physical frame: a trampoline table of
// NumSlots() 5-byte cells followed by the emitted instruction bodies
// (spec.md §3). It lives in a single executable page allocation.
type Block struct {
	pages *execPages
	size  int
}

// TrampolineBytes returns the byte size of the leading trampoline table.
func (i ISA) TrampolineBytes() int { return i.NumSlots() * trampolineSlotSize }

// EntryFor returns the host address of the trampoline cell for instruction
// slot (offset / instrSize within the frame) — the indirect-call target the
// dispatcher jumps to (spec.md §4.6 step 5).
func (b *Block) EntryFor(slot int) uintptr {
	return b.pages.execAddr + uintptr(slot*trampolineSlotSize)
}

// Size is the total compiled block size in bytes.
func (b *Block) Size() int { return b.size }

// Release unmaps the block's pages. Called by Cache.Invalidate /
// InvalidateFrame once no thread can still be executing inside it
// (spec.md §5 "Resource lifecycle").
func (b *Block) Release() error {
	return b.pages.release()
}

// NewBlock copies code (trampoline table + bodies, as laid out by a
// translator's Compile) into a freshly allocated pair of mappings (one
// writable, one executable) and returns the resulting Block.
func NewBlock(code []byte) (*Block, error) {
	pages, err := allocExecPages(len(code))
	if err != nil {
		return nil, fmt.Errorf("jit: allocate executable page: %w", err)
	}
	copy(pages.write, code)
	if err := pages.makeExecutable(); err != nil {
		pages.release()
		return nil, fmt.Errorf("jit: finalize executable page: %w", err)
	}
	return &Block{pages: pages, size: len(code)}, nil
}
