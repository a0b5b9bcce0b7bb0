//go:build amd64

package armabi

import "reflect"

// Each shim below is a hand-written adapter entered by a plain System-V
// `call [reg]` from jitted code (RDI/RSI/RDX carrying up to three 64-bit
// arguments). It moves those into the Go-internal ABI's register slots
// and calls straight into the real Go implementation (shims_amd64.s);
// see jit.callBlock for why the goroutine context stays valid across that
// call (spec.md §4.1 "Register convention", §6 helper table).
func loadMemory8Shim()
func loadMemory16Shim()
func loadMemory32Shim()
func storeMemory8Shim()
func storeMemory16Shim()
func storeMemory32Shim()
func storeLongShim()
func executeInstrShim()
func throwInstrShim()
func undefinedExceptionShim()
func softwareInterruptShim()
func changeModeShim()
func writeModeRegsShim()
func readModeRegsShim()
func readSPSRShim()
func writeSPSRShim()
func msrChangeModeShim()

// Addrs are the host addresses the ARM and Thumb translators pass to
// emitter.CallAbs / emitter.JmpAbs.
type Addrs struct {
	LoadMemory8       uint64
	LoadMemory16      uint64
	LoadMemory32      uint64
	StoreMemory8      uint64
	StoreMemory16     uint64
	StoreMemory32     uint64
	StoreLong         uint64
	ExecuteInstr      uint64
	ThrowInstr        uint64
	UndefinedException uint64
	SoftwareInterrupt  uint64
	ChangeMode         uint64
	WriteModeRegs      uint64
	ReadModeRegs       uint64
	ReadSPSR           uint64
	WriteSPSR          uint64
	MSRChangeMode      uint64
}

func funcAddr(fn interface{}) uint64 {
	return uint64(reflect.ValueOf(fn).Pointer())
}

// HelperAddrs returns the fixed set of host addresses for this process.
func HelperAddrs() Addrs {
	return Addrs{
		LoadMemory8:        funcAddr(loadMemory8Shim),
		LoadMemory16:       funcAddr(loadMemory16Shim),
		LoadMemory32:       funcAddr(loadMemory32Shim),
		StoreMemory8:       funcAddr(storeMemory8Shim),
		StoreMemory16:      funcAddr(storeMemory16Shim),
		StoreMemory32:      funcAddr(storeMemory32Shim),
		StoreLong:          funcAddr(storeLongShim),
		ExecuteInstr:       funcAddr(executeInstrShim),
		ThrowInstr:         funcAddr(throwInstrShim),
		UndefinedException: funcAddr(undefinedExceptionShim),
		SoftwareInterrupt:  funcAddr(softwareInterruptShim),
		ChangeMode:         funcAddr(changeModeShim),
		WriteModeRegs:      funcAddr(writeModeRegsShim),
		ReadModeRegs:       funcAddr(readModeRegsShim),
		ReadSPSR:           funcAddr(readSPSRShim),
		WriteSPSR:          funcAddr(writeSPSRShim),
		MSRChangeMode:      funcAddr(msrChangeModeShim),
	}
}
