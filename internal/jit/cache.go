package jit

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kinnay/wiiu-dbt/internal/emitter"
	"github.com/kinnay/wiiu-dbt/internal/mem"
)

// framesPerCache is the fixed per-(core,ISA) table size: one slot per
// guest-physical frame number (phys>>12), covering the full 32-bit physical
// address space (spec.md §3 "JIT cache").
const framesPerCache = 1 << 20

// Cache holds the compiled blocks for one (core, ISA) pair. It is not
// shared across cores: each core drives its own table from its own
// goroutine, so the table itself needs no locking (spec.md §5 "Concurrency
// model" — cross-core invalidation is delivered as a deferred request, not
// a concurrent write into another core's table).
type Cache struct {
	isa    ISA
	mem    mem.Backend
	trans  Translator
	log    *zap.Logger
	blocks [framesPerCache]*Block
}

// NewCache returns an empty cache for the given ISA, backed by mem for
// fetching uncompiled instruction bytes and trans for translating them.
func NewCache(isa ISA, backend mem.Backend, trans Translator) *Cache {
	return &Cache{isa: isa, mem: backend, trans: trans, log: zap.NewNop()}
}

// SetLogger attaches a structured logger for compile/invalidate events
// (SPEC_FULL.md §2 "Logging"). Optional; a Cache built via NewCache logs
// nothing until this is called.
func (c *Cache) SetLogger(log *zap.Logger) {
	c.log = log
}

// Lookup returns the already-compiled block for guest-physical address
// phys's frame, or nil if it has never been compiled (or was invalidated).
func (c *Cache) Lookup(phys uint32) *Block {
	return c.blocks[phys>>12]
}

// Compile translates every instruction in the 4 KiB frame containing phys,
// installs the resulting Block, and returns it (spec.md §4.6 step 3). The
// frame is always compiled in full on first touch: there is no partial or
// incremental compilation.
func (c *Cache) Compile(phys uint32) (*Block, error) {
	frameBase := phys &^ 0xFFF
	instrSize := c.isa.InstrSize()
	n := c.isa.NumSlots()

	e := emitter.New()
	e.Seek(c.isa.TrampolineBytes())

	offsets := make([]int, n)
	for i := 0; i < n; i++ {
		instrPC := frameBase + uint32(i*instrSize)
		offsets[i] = e.Tell()

		var raw uint32
		if instrSize == 2 {
			raw = uint32(c.mem.Read16(instrPC))
		} else {
			raw = c.mem.Read32(instrPC)
		}
		if err := c.trans.Emit(e, instrPC, raw); err != nil {
			return nil, fmt.Errorf("jit: translate %#x: %w", instrPC, err)
		}
	}

	e.Seek(0)
	for i := 0; i < n; i++ {
		fixup := e.JmpRel32()
		e.PatchRel32At(fixup, offsets[i])
	}

	block, err := NewBlock(e.Bytes())
	if err != nil {
		return nil, err
	}
	c.blocks[frameBase>>12] = block
	c.log.Debug("jit: compiled frame",
		zap.Uint32("frame_base", frameBase),
		zap.Int("size", block.Size()))
	return block, nil
}

// InvalidateFrame releases and clears the compiled block for phys's frame,
// if one exists. Called on icbi / coprocessor writes that target that
// frame (spec.md §4.6 "Invalidation").
func (c *Cache) InvalidateFrame(phys uint32) {
	idx := phys >> 12
	if b := c.blocks[idx]; b != nil {
		b.Release()
		c.blocks[idx] = nil
		c.log.Debug("jit: invalidated frame", zap.Uint32("frame_base", idx<<12))
	}
}

// Invalidate releases every compiled block in the table. Used for a
// whole-cache flush (e.g. an MMU remap that can alter phys for many
// frames at once).
func (c *Cache) Invalidate() {
	for i, b := range c.blocks {
		if b != nil {
			b.Release()
			c.blocks[i] = nil
		}
	}
}
