package entities

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// specializationNamespace roots the name-based ids of specializations.
var specializationNamespace = uuid.MustParse("6f1d3c52-8f0e-4b7a-9d39-2a64b1c1f0a7")

// Kernel is a compiled entry point. It receives native arguments and
// produces a native result; it never sees host values.
type Kernel interface {
	Call(ctx context.Context, f *Frame) (Return, error)
}

// KernelFunc adapts a function to Kernel.
type KernelFunc func(ctx context.Context, f *Frame) (Return, error)

// Call implements Kernel.
func (fn KernelFunc) Call(ctx context.Context, f *Frame) (Return, error) {
	return fn(ctx, f)
}

// Specialization binds one compiled kernel to the signature it was compiled
// for. It is immutable once created.
type Specialization struct {
	kernel    Kernel
	signature Signature
	mangled   string
	id        uuid.UUID
}

// NewSpecialization validates sig and binds it to kernel.
func NewSpecialization(sig Signature, kernel Kernel) (*Specialization, error) {
	if kernel == nil {
		return nil, errors.New("specialization needs a kernel")
	}
	if sig.Function == "" {
		return nil, errors.New("specialization needs a function name")
	}
	if err := sig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid signature for %s: %w", sig.Function, err)
	}
	sig.Params = append([]Param(nil), sig.Params...)
	mangled := sig.Mangle()
	return &Specialization{
		kernel:    kernel,
		signature: sig,
		mangled:   mangled,
		id:        SpecializationID(mangled),
	}, nil
}

// SpecializationID returns the stable id of the specialization with the
// given mangled name.
func SpecializationID(mangled string) uuid.UUID {
	return uuid.NewSHA1(specializationNamespace, []byte(mangled))
}

// MustSpecialization is NewSpecialization for static tables.
func MustSpecialization(sig Signature, kernel Kernel) *Specialization {
	s, err := NewSpecialization(sig, kernel)
	if err != nil {
		panic(err)
	}
	return s
}

// Signature returns a copy of the compiled signature.
func (s *Specialization) Signature() Signature {
	sig := s.signature
	sig.Params = append([]Param(nil), s.signature.Params...)
	return sig
}

// Params returns the declared parameters without copying. Callers must not
// modify the slice.
func (s *Specialization) Params() []Param { return s.signature.Params }

// Returns returns the declared return type.
func (s *Specialization) Returns() ReturnType { return s.signature.Returns }

// Function returns the logical function name.
func (s *Specialization) Function() string { return s.signature.Function }

// Name returns the mangled specialization name.
func (s *Specialization) Name() string { return s.mangled }

// ID returns a stable id derived from the mangled name.
func (s *Specialization) ID() uuid.UUID { return s.id }

// Kernel returns the compiled entry point.
func (s *Specialization) Kernel() Kernel { return s.kernel }
