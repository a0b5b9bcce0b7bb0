// Command dbtdemo drives one guest core through the JIT a fixed number of
// steps, loading an optional firmware image first. It exists to exercise
// the fetch/execute contract spec.md §6 describes ("step(core) fetches,
// translates, and runs exactly one guest instruction") from outside the
// package tree, the way a real scheduler would.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/except"
	"github.com/kinnay/wiiu-dbt/internal/isa/arm32"
	"github.com/kinnay/wiiu-dbt/internal/isa/armabi"
	"github.com/kinnay/wiiu-dbt/internal/isa/ppc"
	"github.com/kinnay/wiiu-dbt/internal/isa/ppcabi"
	"github.com/kinnay/wiiu-dbt/internal/isa/thumb"
	"github.com/kinnay/wiiu-dbt/internal/jit"
	"github.com/kinnay/wiiu-dbt/internal/mem"
	"github.com/kinnay/wiiu-dbt/internal/mmu"
)

// memSize is the flat backing store the demo loads firmware into and runs
// out of. Real peripheral-backed regions are out of scope (spec.md §1).
const memSize = 64 << 20

var (
	coreFlag    string
	loadFlag    string
	baseFlag    uint32
	pcFlag      uint32
	stepsFlag   int
	dumpJITFlag bool
)

func main() {
	root := &cobra.Command{
		Use:   "dbtdemo",
		Short: "Step a guest core through the dynamic binary translator",
		RunE:  run,
	}
	root.Flags().StringVar(&coreFlag, "core", "arm", "guest core to drive: arm, ppc0, ppc1, or ppc2")
	root.Flags().StringVar(&loadFlag, "load", "", "firmware image to load before stepping")
	root.Flags().Uint32Var(&baseFlag, "base", 0, "guest-physical address to load the image at")
	root.Flags().Uint32Var(&pcFlag, "pc", 0, "initial program counter")
	root.Flags().IntVar(&stepsFlag, "steps", 1, "number of guest instructions to step")
	root.Flags().BoolVar(&dumpJITFlag, "dump-jit", false, "log whether the final frame is JIT-compiled after stepping")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// logSink adapts the exception contract onto structured logging: the demo
// driver has no outer scheduler to deliver exceptions to, so it just
// records them (spec.md §6 "Exception sink").
type logSink struct {
	log *zap.Logger
}

func (s logSink) Trigger(core except.CoreID, kind except.Kind) {
	s.log.Warn("guest exception", zap.Int("core", int(core)), zap.String("kind", kind.String()))
}

func run(cmd *cobra.Command, args []string) error {
	log, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("dbtdemo: build logger: %w", err)
	}
	defer log.Sync()

	backend := mem.NewFlat(memSize)
	if loadFlag != "" {
		data, err := os.ReadFile(loadFlag)
		if err != nil {
			return fmt.Errorf("dbtdemo: read %s: %w", loadFlag, err)
		}
		backend.WriteRange(baseFlag, data)
		log.Info("loaded firmware image", zap.String("path", loadFlag), zap.Uint32("base", baseFlag), zap.Int("bytes", len(data)))
	}

	switch coreFlag {
	case "arm":
		return runARM(log, backend)
	case "ppc0":
		return runPPC(log, backend, except.CorePPC0)
	case "ppc1":
		return runPPC(log, backend, except.CorePPC1)
	case "ppc2":
		return runPPC(log, backend, except.CorePPC2)
	default:
		return fmt.Errorf("dbtdemo: unknown --core %q (want arm, ppc0, ppc1, or ppc2)", coreFlag)
	}
}

// runARM drives the ARM auxiliary processor, picking the A32 or Thumb
// cache each step from CPSR.T (spec.md §4.2-§4.3): unlike PowerPC, the ARM
// core can switch instruction sets mid-run, so a single jit.Cache cannot
// dispatch across both ISAs and the two caches are kept side by side here.
func runARM(log *zap.Logger, backend mem.Backend) error {
	s := cpu.NewARMState()
	s.R[15] = pcFlag
	s.CPSR = modeSVCValue

	mmuARM := mmu.NewARM(backend)
	sink := logSink{log: log.Named("arm")}

	armabi.Bind(s, &armabi.Runtime{
		MMU:  mmuARM,
		Mem:  backend,
		Sink: sink,
		Core: except.CoreARM,
		Log:  log.Named("arm.helpers"),
	})

	translate := func(vaddr uint32) (uint32, bool) {
		access := mmu.AccessInstruction
		return mmuARM.Translate(s, vaddr, access, supervisorARM(s))
	}

	a32Cache := jit.NewCache(jit.ISAArmA32, backend, arm32.New(armabi.HelperAddrs()))
	a32Cache.SetLogger(log.Named("arm.jit.a32"))
	thumbCache := jit.NewCache(jit.ISAThumb, backend, thumb.New(armabi.HelperAddrs()))
	thumbCache.SetLogger(log.Named("arm.jit.thumb"))
	a32Dispatcher := jit.NewDispatcher(s, a32Cache, translate)
	thumbDispatcher := jit.NewDispatcher(s, thumbCache, translate)

	for i := 0; i < stepsFlag; i++ {
		var stepErr error
		if s.CPSR&(1<<cpu.CPSRBitT) != 0 {
			stepErr = thumbDispatcher.Step()
		} else {
			stepErr = a32Dispatcher.Step()
		}
		if stepErr != nil {
			return fmt.Errorf("dbtdemo: arm step %d: %w", i, stepErr)
		}
	}

	log.Info("arm run complete", zap.Uint32("pc", s.GetPC()), zap.Uint32("cpsr", s.CPSR))
	if dumpJITFlag {
		dumpCacheState(log.Named("arm"), a32Cache, thumbCache, s.GetPC())
	}
	return nil
}

func runPPC(log *zap.Logger, backend mem.Backend, core except.CoreID) error {
	s := cpu.NewPPCState()
	s.PC = pcFlag

	mmuPPC := mmu.NewPPC(backend)
	sink := logSink{log: log.Named("ppc")}

	ppcabi.Bind(s, &ppcabi.Runtime{
		MMU:  mmuPPC,
		Mem:  backend,
		Sink: sink,
		Core: core,
		Log:  log.Named("ppc.helpers"),
	})

	translate := func(vaddr uint32) (uint32, bool) {
		return mmuPPC.Translate(s, vaddr, mmu.AccessInstruction, supervisorPPC(s))
	}

	cache := jit.NewCache(jit.ISAPPC, backend, ppc.New(ppcabi.HelperAddrs()))
	cache.SetLogger(log.Named("ppc.jit"))
	dispatcher := jit.NewDispatcher(s, cache, translate)

	for i := 0; i < stepsFlag; i++ {
		if err := dispatcher.Step(); err != nil {
			return fmt.Errorf("dbtdemo: ppc step %d: %w", i, err)
		}
	}

	log.Info("ppc run complete", zap.Uint32("pc", s.GetPC()), zap.Uint32("cr", s.CR))
	if dumpJITFlag {
		dumpCacheState(log.Named("ppc"), cache, nil, s.GetPC())
	}
	return nil
}

// dumpCacheState reports whether the frame the core ended on is compiled,
// the one piece of cache introspection available without adding a new
// method to jit.Cache just for this driver.
func dumpCacheState(log *zap.Logger, primary, secondary *jit.Cache, pc uint32) {
	log.Info("jit cache state",
		zap.Bool("primary frame compiled", primary.Lookup(pc) != nil),
		zap.Bool("secondary frame compiled", secondary != nil && secondary.Lookup(pc) != nil))
}

// modeSVCValue seeds CPSR in supervisor mode with interrupts masked, the
// state firmware typically resets into.
const modeSVCValue = uint32(cpu.ModeSVC) | 1<<7 | 1<<6

func supervisorARM(s *cpu.ARMState) bool {
	return s.Mode() != cpu.ModeUser
}

func supervisorPPC(s *cpu.PPCState) bool {
	return s.MSR&(1<<cpu.MSRBitPR) == 0
}
