// Package ppcabi implements the runtime helpers the PowerPC translator's
// jitted code calls back into: memory access and the interpreter fallback
// (spec.md §6). One Runtime per PPC core — each core has its own MMU and
// JIT cache (spec.md §5).
package ppcabi

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/except"
	"github.com/kinnay/wiiu-dbt/internal/mem"
	"github.com/kinnay/wiiu-dbt/internal/mmu"
)

// Fallback decodes and executes one raw PowerPC instruction the
// translator chose not to emit a fast path for.
type Fallback func(s *cpu.PPCState, raw uint32)

// Runtime bundles the collaborators one running PPC core's helper calls
// need, recovered at call time from cpu.PPCState.HelperCtx.
type Runtime struct {
	MMU      *mmu.PPC
	Mem      mem.Backend
	Sink     except.Sink
	Core     except.CoreID
	Log      *zap.Logger
	Fallback Fallback
}

// Bind attaches rt to s so the next helper call through s recovers it.
func Bind(s *cpu.PPCState, rt *Runtime) {
	s.HelperCtx = unsafe.Pointer(rt)
}

func runtimeFor(s *cpu.PPCState) *Runtime {
	return (*Runtime)(s.HelperCtx)
}

func supervisorMode(s *cpu.PPCState) bool {
	return s.MSR&(1<<cpu.MSRBitPR) == 0
}
