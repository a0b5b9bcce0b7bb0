package mmu

import (
	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/mem"
	"github.com/kinnay/wiiu-dbt/internal/mmucache"
)

// SPR indices used by the BAT walk and page-table search, matching the
// PowerPC 750CL special-purpose register numbering.
const (
	SPRIBAT0U = 528
	SPRDBAT0U = 536
	SPRSDR1   = 25
)

// PPC walks the block-address-translation registers and the hashed page
// table behind the 6-slot MMU-cache (3 access types x 2 privilege levels,
// spec.md §4.5).
type PPC struct {
	mem   mem.Backend
	cache *mmucache.Cache
}

// NewPPC returns a PPC walker layered over an invalidated cache.
func NewPPC(backend mem.Backend) *PPC {
	return &PPC{mem: backend, cache: mmucache.New(3)}
}

// Invalidate clears the MMU-cache (tlbie).
func (p *PPC) Invalidate() { p.cache.Invalidate() }

// fixupPhysical maps the bootrom window 0xFFE00000+ to 0x08000000+, as the
// original firmware's address map requires (spec.md §4.5).
func fixupPhysical(addr uint32) uint32 {
	if addr >= 0xFFE00000 {
		return addr - 0xFFE00000 + 0x08000000
	}
	return addr
}

// Translate converts a virtual address to physical, applying the bootrom
// window fixup after a successful virtual->real translation. It returns
// false on an ISI/DSI miss; the caller is responsible for setting DAR/DSISR
// and raising the exception via except.Sink.
func (p *PPC) Translate(s *cpu.PPCState, addr uint32, access Access, supervisor bool) (uint32, bool) {
	real, ok := p.translateVirtual(s, addr, access, supervisor)
	if !ok {
		return 0, false
	}
	return fixupPhysical(real), true
}

func (p *PPC) translateVirtual(s *cpu.PPCState, addr uint32, access Access, supervisor bool) (uint32, bool) {
	if access == AccessInstruction {
		if s.MSR&(1<<cpu.MSRBitIR) == 0 {
			return addr, true
		}
		if real, ok := p.cache.Lookup(access.cacheType(), supervisor, addr); ok {
			return real, true
		}
		if real, ok := p.translateBAT(s, SPRIBAT0U, addr, access, supervisor); ok {
			return real, true
		}
	} else {
		if s.MSR&(1<<cpu.MSRBitDR) == 0 {
			return addr, true
		}
		if real, ok := p.cache.Lookup(access.cacheType(), supervisor, addr); ok {
			return real, true
		}
		if real, ok := p.translateBAT(s, SPRDBAT0U, addr, access, supervisor); ok {
			return real, true
		}
	}

	segment := s.SR[addr>>28]
	if segment>>31 != 0 {
		return 0, false // direct-store segment: not modeled
	}
	if segment&0x10000000 != 0 && access == AccessInstruction {
		return 0, false // no-execute segment
	}

	pageIndex := (addr >> 17) & 0x7FF
	vsid := segment & 0xFFFFFF
	var key bool
	if supervisor {
		key = segment&(1<<30) != 0
	} else {
		key = segment&(1<<29) != 0
	}

	primaryHash := (vsid & 0x7FFFF) ^ pageIndex
	if real, ok := p.searchPageTable(s, addr, vsid, pageIndex, primaryHash, false, key, access, supervisor); ok {
		return real, true
	}
	if real, ok := p.searchPageTable(s, addr, vsid, pageIndex, ^primaryHash, true, key, access, supervisor); ok {
		return real, true
	}
	return 0, false
}

// translateBAT scans the 8 BAT pairs starting at sprBase (IBAT0U or
// DBAT0U); block-descriptor layout follows the 750CL BAT register format.
func (p *PPC) translateBAT(s *cpu.PPCState, sprBase int, addr uint32, access Access, supervisor bool) (uint32, bool) {
	write := access == AccessDataWrite
	for i := 0; i < 8; i++ {
		batu := s.SPR[sprBase+i*2]
		batl := s.SPR[sprBase+i*2+1]

		pp := batl & 3
		if pp == 0 || (pp&1 != 0 && write) {
			continue
		}

		vp := batu&1 != 0
		vs := batu&2 != 0
		if !((vp && !supervisor) || (vs && supervisor)) {
			continue
		}

		addrMask := ^((batu >> 2) & 0x7FF)
		effectiveBlock := batu >> 17
		addrBlock := addr >> 17
		if effectiveBlock&addrMask != addrBlock&addrMask {
			continue
		}

		brpn := batl >> 17
		addrBlock = (addrBlock &^ addrMask) | (brpn & addrMask)
		p.cache.Fill(access.cacheType(), supervisor, addr, addrBlock<<17, 0x1FFFF)
		return (addr & 0x1FFFF) | (addrBlock << 17), true
	}
	return 0, false
}

func (p *PPC) searchPageTable(s *cpu.PPCState, addr, vsid, pageIndex, hash uint32, secondary, key bool, access Access, supervisor bool) (uint32, bool) {
	write := access == AccessDataWrite
	sdr1 := s.SPR[SPRSDR1]
	pageTable := sdr1 & 0xFFFF0000
	pageMask := sdr1 & 0x1FF
	maskedHash := hash & ((pageMask << 10) | 0x3FF)
	api := pageIndex >> 5

	pteAddr := fixupPhysical(pageTable | (maskedHash << 6))

	for i := 0; i < 8; i++ {
		pteHi := p.mem.Read32(pteAddr)
		pteLo := p.mem.Read32(pteAddr + 4)
		pteAddr += 8

		if pteHi>>31 == 0 {
			continue
		}
		if ((pteHi >> 6) & 1) != boolToU32(secondary) {
			continue
		}
		if ((pteHi >> 7) & 0xFFFFFF) != vsid {
			continue
		}
		if pteHi&0x3F != api {
			continue
		}

		pp := pteLo & 3
		if key && pp == 0 {
			continue
		}
		if write && (pp == 3 || (key && pp == 1)) {
			continue
		}

		p.cache.Fill(access.cacheType(), supervisor, addr, pteLo&0xFFFFF000, 0x1FFFF)
		return (pteLo & 0xFFFFF000) | (addr & 0x1FFFF), true
	}
	return 0, false
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
