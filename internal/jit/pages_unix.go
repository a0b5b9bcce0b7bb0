//go:build linux

package jit

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// execPages is a pair of mappings over the same memory object: one
// writable, one executable. The compiler writes through the writable
// mapping and the dispatcher calls through the executable one, avoiding a
// single RWX page (spec.md §9 "Executable-memory portability").
type execPages struct {
	fd       int
	write    []byte
	exec     []byte
	execAddr uintptr
	execLen  int
}

func allocExecPages(size int) (*execPages, error) {
	pageSize := unix.Getpagesize()
	mapLen := ((size + pageSize - 1) / pageSize) * pageSize
	if mapLen == 0 {
		mapLen = pageSize
	}

	fd, err := unix.MemfdCreate("jit-block", 0)
	if err != nil {
		return nil, fmt.Errorf("memfd_create: %w", err)
	}
	if err := unix.Ftruncate(fd, int64(mapLen)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("ftruncate: %w", err)
	}

	write, err := unix.Mmap(fd, 0, mapLen, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("mmap writable: %w", err)
	}

	return &execPages{fd: fd, write: write[:size], execLen: mapLen}, nil
}

// makeExecutable creates the second, read-execute-only mapping over the
// same fd and records its base address. After this call the writable
// mapping must not be modified further: the two views are not kept
// coherent by this package beyond the initial write (an explicit
// instruction-cache sync would be required on self-modifying writes, which
// spec.md §9 says the design does not need).
func (p *execPages) makeExecutable() error {
	exec, err := unix.Mmap(p.fd, 0, p.execLen, unix.PROT_READ|unix.PROT_EXEC, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("mmap executable: %w", err)
	}
	p.exec = exec
	p.execAddr = uintptr(unsafe.Pointer(&exec[0]))
	return nil
}

func (p *execPages) release() error {
	var firstErr error
	if err := unix.Munmap(p.write[:p.execLen]); err != nil && firstErr == nil {
		firstErr = err
	}
	if p.exec != nil {
		if err := unix.Munmap(p.exec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := unix.Close(p.fd); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
