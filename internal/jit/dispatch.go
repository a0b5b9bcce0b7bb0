package jit

// Dispatcher ties one core's address translation and JIT cache together
// and drives execution one guest instruction at a time through the
// trampoline table (spec.md §4.6). It is deliberately ignorant of which
// ISA or MMU it is wired to: translate does the vaddr->phys walk (and
// records any fault into the guest state itself) and cache already knows
// its own ISA's instruction size and trampoline layout.
type Dispatcher struct {
	core      GuestCore
	cache     *Cache
	translate func(vaddr uint32) (phys uint32, ok bool)
}

// NewDispatcher wires a guest core's PC/state accessor, its JIT cache, and
// its address translator into a single stepper.
func NewDispatcher(core GuestCore, cache *Cache, translate func(vaddr uint32) (phys uint32, ok bool)) *Dispatcher {
	return &Dispatcher{core: core, cache: cache, translate: translate}
}

// Step executes exactly one guest instruction (spec.md §4.6):
//  1. translate the current PC to a guest-physical address;
//  2. locate (or lazily compile) the frame's Block;
//  3. advance the PC past this instruction, so the jitted body only needs
//     to overwrite it for taken branches;
//  4. enter the frame's trampoline slot for this instruction.
//
// If translation faults, translate has already recorded the fault in the
// guest state (DFSR/IFSR or the PowerPC DSISR/DAR equivalent) and Step
// returns with the PC unmodified: the caller's exception dispatch is
// expected to redirect PC to the guest's vector on the next Step.
func (d *Dispatcher) Step() error {
	pc := d.core.GetPC()
	phys, ok := d.translate(pc)
	if !ok {
		return nil
	}

	instrSize := d.cache.isa.InstrSize()
	slot := int(phys&0xFFF) / instrSize

	block := d.cache.Lookup(phys)
	if block == nil {
		var err error
		block, err = d.cache.Compile(phys)
		if err != nil {
			return err
		}
	}

	d.core.SetPC(pc + uint32(instrSize))
	callBlock(d.core.StatePtr(), block.EntryFor(slot))
	return nil
}
