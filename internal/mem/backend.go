// Package mem defines the MemoryBackend contract the JIT core consumes.
// The physical memory array, byte-swapping, and peripheral MMIO are
// deliberately out of scope (spec.md §1): this package only names the
// interface the translators and runtime helpers call through.
package mem

// Backend is the physical-memory array the JIT core reads and writes
// through. Multi-byte accesses are big-endian as seen by guest code; the
// concrete Backend performs the host<->guest byte swap. Out-of-range
// addresses return the zero value / silently drop the write, matching
// spec.md §6.
type Backend interface {
	Read8(phys uint32) uint8
	Read16(phys uint32) uint16
	Read32(phys uint32) uint32
	Read64(phys uint32) uint64

	Write8(phys uint32, v uint8)
	Write16(phys uint32, v uint16)
	Write32(phys uint32, v uint32)
	Write64(phys uint32, v uint64)

	// ReadRange / WriteRange serve the firmware loader and dcbz.
	ReadRange(phys uint32, n int) []byte
	WriteRange(phys uint32, data []byte)
}
