//go:build !linux

package jit

import "fmt"

// execPages on non-Linux hosts is a plain heap buffer: there is no portable
// W^X dual-mapping primitive outside Linux's memfd_create in this code
// base, so makeExecutable always returns an error (NewBlock fails) and
// release has nothing to unmap; a deployment on
// another OS needs its own allocExecPages (e.g. via MAP_JIT on Darwin).
type execPages struct {
	write    []byte
	execAddr uintptr
}

func allocExecPages(size int) (*execPages, error) {
	buf := make([]byte, size)
	return &execPages{write: buf}, nil
}

func (p *execPages) makeExecutable() error {
	return fmt.Errorf("jit: executable pages are only implemented for linux in this build")
}

func (p *execPages) release() error { return nil }
