package entities

import (
	"runtime"
	"strconv"
	"strings"
)

// FaultSignal names the memory-protection violation that stopped a kernel.
type FaultSignal string

const (
	FaultSegfault FaultSignal = "SIGSEGV"
	FaultBusError FaultSignal = "SIGBUS"
)

// Description returns the wording used in crash reports.
func (s FaultSignal) Description() string {
	if s == FaultBusError {
		return "bus error"
	}
	return "segfault"
}

// Fault describes a fatal memory fault raised while a kernel was running.
type Fault struct {
	Signal   FaultSignal
	Kernel   string
	Message  string
	Addr     uintptr
	HasAddr  bool
	External bool // delivered by the OS signal handler, not recovered in-call
}

func (f Fault) String() string {
	return string(f.Append(nil))
}

// Append appends the report headline to b. It allocates only when b lacks
// capacity.
func (f Fault) Append(b []byte) []byte {
	b = append(b, "Abort by "...)
	b = append(b, f.Signal.Description()...)
	if f.Kernel != "" {
		b = append(b, " in "...)
		b = append(b, f.Kernel...)
	}
	if f.HasAddr {
		b = append(b, " at address 0x"...)
		b = strconv.AppendUint(b, uint64(f.Addr), 16)
	}
	return b
}

// FaultFromPanic classifies a recovered panic value. Memory faults surface
// as runtime errors, with a fault address when panic-on-fault is enabled.
// Backends that detect a fault themselves panic with a Fault value.
func FaultFromPanic(r any) (Fault, bool) {
	if f, ok := r.(Fault); ok {
		return f, true
	}
	rerr, ok := r.(runtime.Error)
	if !ok {
		return Fault{}, false
	}
	f := Fault{Signal: FaultSegfault, Message: rerr.Error()}
	if a, ok := rerr.(interface{ Addr() uintptr }); ok {
		f.Addr, f.HasAddr = a.Addr(), true
		return f, true
	}
	if strings.Contains(f.Message, "invalid memory address") {
		return f, true
	}
	return Fault{}, false
}
