package testutil

import (
	"context"
	"sync"

	"github.com/reglet-dev/kernelbridge/domain/entities"
	"github.com/reglet-dev/kernelbridge/domain/ports"
)

// Factory is a ports.Factory that records every call.
type Factory struct {
	Result entities.Value
	Err    error

	mu    sync.Mutex
	descs []entities.Descriptor
	args  [][]entities.Value
}

var _ ports.Factory = (*Factory)(nil)

// NewFactory returns a factory answering every call with result.
func NewFactory(result entities.Value) *Factory {
	return &Factory{Result: result}
}

// CreateSignature implements ports.Factory.
func (f *Factory) CreateSignature(_ context.Context, d entities.Descriptor, args []entities.Value) (entities.Value, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.descs = append(f.descs, d)
	f.args = append(f.args, args)
	return f.Result, f.Err
}

// Calls returns the descriptors received so far.
func (f *Factory) Calls() []entities.Descriptor {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entities.Descriptor(nil), f.descs...)
}

// Args returns the argument lists received so far.
func (f *Factory) Args() [][]entities.Value {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]entities.Value(nil), f.args...)
}

// FaultSink is a ports.FaultSink that records faults instead of exiting.
type FaultSink struct {
	mu     sync.Mutex
	faults []entities.Fault
}

var _ ports.FaultSink = (*FaultSink)(nil)

// Fatal implements ports.FaultSink.
func (s *FaultSink) Fatal(f entities.Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, f)
}

// Faults returns the recorded faults.
func (s *FaultSink) Faults() []entities.Fault {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.Fault(nil), s.faults...)
}

// Journal is an in-memory ports.FallbackJournal.
type Journal struct {
	Err error

	mu      sync.Mutex
	entries []entities.Descriptor
	encoded [][]byte
}

var _ ports.FallbackJournal = (*Journal)(nil)

// Record implements ports.FallbackJournal.
func (j *Journal) Record(_ context.Context, d entities.Descriptor, encoded []byte) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, d)
	j.encoded = append(j.encoded, encoded)
	return j.Err
}

// Entries returns the recorded descriptors.
func (j *Journal) Entries() []entities.Descriptor {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]entities.Descriptor(nil), j.entries...)
}

// Encoded returns the recorded encodings.
func (j *Journal) Encoded() [][]byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([][]byte(nil), j.encoded...)
}
