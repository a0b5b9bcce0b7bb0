// Package armabi implements the runtime helpers ARM-A32 and ARM-Thumb
// jitted code calls back into: memory access, the interpreter fallback,
// and ARM mode-change bank plumbing (spec.md §6). Both ISA translators
// share it because they share cpu.ARMState.
package armabi

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/except"
	"github.com/kinnay/wiiu-dbt/internal/mem"
	"github.com/kinnay/wiiu-dbt/internal/mmu"
)

// Fallback decodes and executes one raw ARM or Thumb instruction the
// translator chose not to emit a fast path for. Supplied by whichever ISA
// package (arm32 or thumb) owns the interpreter.
type Fallback func(s *cpu.ARMState, raw uint32)

// Runtime bundles the collaborators a running ARM core's helper calls need.
// Recovered at call time from cpu.ARMState.HelperCtx, since emitted code
// carries no context besides the state pointer (spec.md §4.1).
type Runtime struct {
	MMU      *mmu.ARM
	Mem      mem.Backend
	Sink     except.Sink
	Core     except.CoreID
	Log      *zap.Logger
	Fallback Fallback
}

// Bind attaches rt to s so the next helper call through s recovers it.
func Bind(s *cpu.ARMState, rt *Runtime) {
	s.HelperCtx = unsafe.Pointer(rt)
}

func runtimeFor(s *cpu.ARMState) *Runtime {
	return (*Runtime)(s.HelperCtx)
}

func supervisorMode(s *cpu.ARMState) bool {
	return s.Mode() != cpu.ModeUser
}
