//go:build amd64

package jit

import "unsafe"

// callBlock enters jitted code at entry with the guest CPU state pointer p
// in RDI, per the System V calling convention the emitted bodies and their
// runtime-helper calls assume (spec.md §6). Declared without a body; see
// call_amd64.s.
func callBlock(p unsafe.Pointer, entry uintptr)
