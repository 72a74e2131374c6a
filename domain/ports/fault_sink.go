package ports

import "github.com/reglet-dev/kernelbridge/domain/entities"

// FaultSink receives fatal memory faults. Fatal does not return: the process
// terminates after the report is written.
type FaultSink interface {
	Fatal(fault entities.Fault)
}
