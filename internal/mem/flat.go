package mem

import "encoding/binary"

// Flat is a flat byte-array Backend over guest physical memory, used by
// tests and by the demo driver. Real peripheral-backed regions are outside
// scope (spec.md §1) and are expected to be layered in by a composing
// Backend that the emulator at large provides.
type Flat struct {
	data []byte
}

// NewFlat allocates a zeroed Flat backend of the given size.
func NewFlat(size int) *Flat {
	return &Flat{data: make([]byte, size)}
}

func (f *Flat) inRange(phys uint32, n int) bool {
	return int(phys)+n <= len(f.data)
}

func (f *Flat) Read8(phys uint32) uint8 {
	if !f.inRange(phys, 1) {
		return 0
	}
	return f.data[phys]
}

func (f *Flat) Read16(phys uint32) uint16 {
	if !f.inRange(phys, 2) {
		return 0
	}
	return binary.BigEndian.Uint16(f.data[phys:])
}

func (f *Flat) Read32(phys uint32) uint32 {
	if !f.inRange(phys, 4) {
		return 0
	}
	return binary.BigEndian.Uint32(f.data[phys:])
}

func (f *Flat) Read64(phys uint32) uint64 {
	if !f.inRange(phys, 8) {
		return 0
	}
	return binary.BigEndian.Uint64(f.data[phys:])
}

func (f *Flat) Write8(phys uint32, v uint8) {
	if !f.inRange(phys, 1) {
		return
	}
	f.data[phys] = v
}

func (f *Flat) Write16(phys uint32, v uint16) {
	if !f.inRange(phys, 2) {
		return
	}
	binary.BigEndian.PutUint16(f.data[phys:], v)
}

func (f *Flat) Write32(phys uint32, v uint32) {
	if !f.inRange(phys, 4) {
		return
	}
	binary.BigEndian.PutUint32(f.data[phys:], v)
}

func (f *Flat) Write64(phys uint32, v uint64) {
	if !f.inRange(phys, 8) {
		return
	}
	binary.BigEndian.PutUint64(f.data[phys:], v)
}

func (f *Flat) ReadRange(phys uint32, n int) []byte {
	if !f.inRange(phys, n) {
		return make([]byte, n)
	}
	out := make([]byte, n)
	copy(out, f.data[phys:int(phys)+n])
	return out
}

func (f *Flat) WriteRange(phys uint32, data []byte) {
	if !f.inRange(phys, len(data)) {
		return
	}
	copy(f.data[phys:], data)
}
