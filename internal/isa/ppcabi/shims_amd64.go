//go:build amd64

package ppcabi

import "reflect"

// See armabi's shims_amd64.go for the calling-convention rationale: these
// adapters bridge a System-V `call [reg]` from jitted code into the Go
// implementation in shims_amd64.s.
func loadMemory8Shim()
func loadMemory16Shim()
func loadMemory32Shim()
func storeMemory8Shim()
func storeMemory16Shim()
func storeMemory32Shim()
func storeLongShim()
func executeInstrShim()
func throwInstrShim()

// Addrs are the host addresses the PowerPC translator passes to
// emitter.CallAbs / emitter.JmpAbs.
type Addrs struct {
	LoadMemory8   uint64
	LoadMemory16  uint64
	LoadMemory32  uint64
	StoreMemory8  uint64
	StoreMemory16 uint64
	StoreMemory32 uint64
	StoreLong     uint64
	ExecuteInstr  uint64
	ThrowInstr    uint64
}

func funcAddr(fn interface{}) uint64 {
	return uint64(reflect.ValueOf(fn).Pointer())
}

// HelperAddrs returns the fixed set of host addresses for this process.
func HelperAddrs() Addrs {
	return Addrs{
		LoadMemory8:   funcAddr(loadMemory8Shim),
		LoadMemory16:  funcAddr(loadMemory16Shim),
		LoadMemory32:  funcAddr(loadMemory32Shim),
		StoreMemory8:  funcAddr(storeMemory8Shim),
		StoreMemory16: funcAddr(storeMemory16Shim),
		StoreMemory32: funcAddr(storeMemory32Shim),
		StoreLong:     funcAddr(storeLongShim),
		ExecuteInstr:  funcAddr(executeInstrShim),
		ThrowInstr:    funcAddr(throwInstrShim),
	}
}
