// Package mmu implements the ARM and PowerPC page-table walkers that sit
// behind the mmucache.Cache fast path (spec.md §4.5). Each walker consults
// the cache first, falls through to a full translation on miss, and fills
// the cache on success.
package mmu

import (
	"github.com/kinnay/wiiu-dbt/internal/cpu"
	"github.com/kinnay/wiiu-dbt/internal/mem"
	"github.com/kinnay/wiiu-dbt/internal/mmucache"
)

// Access mirrors the three-way permission distinction the ARM descriptor
// AP field checks against (spec.md §4.5 table).
type Access int

const (
	AccessDataRead Access = iota
	AccessDataWrite
	AccessInstruction
)

func (a Access) cacheType() mmucache.AccessType {
	switch a {
	case AccessDataWrite:
		return mmucache.AccessDataWrite
	case AccessInstruction:
		return mmucache.AccessInstruction
	default:
		return mmucache.AccessData
	}
}

// ARM walks the ARM MMU first-level/second-level descriptor tables.
type ARM struct {
	mem   mem.Backend
	cache *mmucache.Cache
}

// NewARM returns an ARM walker layered over an invalidated 4-slot cache
// (2 access types x 2 privilege levels, spec.md §4.5).
func NewARM(backend mem.Backend) *ARM {
	return &ARM{mem: backend, cache: mmucache.New(2)}
}

// Invalidate clears the MMU-cache (tlbie / coprocessor TLB-invalidate).
func (a *ARM) Invalidate() { a.cache.Invalidate() }

// checkPermissions implements the AP/supervisor/access-type matrix of
// spec.md §4.5.
func checkPermissions(access Access, supervisor bool, ap int) bool {
	switch ap {
	case 0:
		return false
	case 1:
		return supervisor
	case 2:
		return supervisor || access != AccessDataWrite
	default: // 3
		return true
	}
}

// faultStatus values match the original first/second-level translation-fault and
// permission-fault status codes (grounded on armmmu.cpp's signalFault).
const (
	statusSectionTranslation = 5
	statusPageTranslation    = 7
	statusSectionPermission  = 13
	statusPagePermission     = 15
)

func (a *ARM) signalFault(s *cpu.ARMState, access Access, addr uint32, domain, status int) {
	s.FAR = addr
	if access == AccessInstruction {
		s.IFSR = uint32(status)
		return
	}
	dfsr := uint32(status) | uint32(domain<<4)
	if access == AccessDataWrite {
		dfsr |= 0x800
	}
	s.DFSR = dfsr
}

// Translate converts a virtual address to physical. It returns false (and
// has signaled a fault into s) on a translation or permission failure.
func (a *ARM) Translate(s *cpu.ARMState, addr uint32, access Access, supervisor bool) (uint32, bool) {
	if s.Control&1 == 0 {
		return addr, true // MMU disabled: identity map
	}
	if phys, ok := a.cache.Lookup(access.cacheType(), supervisor, addr); ok {
		return phys, true
	}
	return a.translateFromTable(s, addr, access, supervisor)
}

func (a *ARM) translateFromTable(s *cpu.ARMState, addr uint32, access Access, supervisor bool) (uint32, bool) {
	firstLevelAddr := s.TTBR + (addr>>20)*4
	firstLevelDesc := a.mem.Read32(firstLevelAddr)

	domain := int((firstLevelDesc >> 5) & 0xF)
	switch firstLevelDesc & 3 {
	case 0:
		a.signalFault(s, access, addr, domain, statusSectionTranslation)
		return 0, false
	case 1:
		secondLevelBase := firstLevelDesc &^ 0x3FF
		secondLevelAddr := secondLevelBase + ((addr>>12)&0xFF)*4
		secondLevelDesc := a.mem.Read32(secondLevelAddr)

		switch secondLevelDesc & 3 {
		case 0:
			a.signalFault(s, access, addr, domain, statusPageTranslation)
			return 0, false
		case 2:
			subpage := (addr & 0xFFF) / 0x400
			ap := int((secondLevelDesc >> (4 + subpage*2)) & 3)
			if !checkPermissions(access, supervisor, ap) {
				a.signalFault(s, access, addr, domain, statusPagePermission)
				return 0, false
			}
			pageBase := secondLevelDesc &^ 0xFFF
			a.cache.Fill(access.cacheType(), supervisor, addr, pageBase, 0xFFF)
			return pageBase + (addr & 0xFFF), true
		default:
			return 0, false // unsupported second-level descriptor type
		}
	case 2:
		ap := int((firstLevelDesc >> 10) & 3)
		if !checkPermissions(access, supervisor, ap) {
			a.signalFault(s, access, addr, domain, statusSectionPermission)
			return 0, false
		}
		sectionBase := firstLevelDesc &^ 0xFFFFF
		a.cache.Fill(access.cacheType(), supervisor, addr, sectionBase, 0xFFFFF)
		return sectionBase + (addr & 0xFFFFF), true
	default:
		return 0, false // unsupported first-level descriptor type
	}
}
