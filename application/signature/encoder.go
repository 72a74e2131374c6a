// Package signature builds call descriptors and serializes them for fallback
// factories, the fallback journal and the CLI.
package signature

import (
	"strconv"

	"github.com/reglet-dev/kernelbridge/domain/entities"
)

// Encoder turns the actual arguments of a call into a Descriptor.
// It has no state and is safe for concurrent use.
type Encoder struct{}

// NewEncoder returns an Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Describe records the type of every argument. Arguments take the declared
// parameter names in order; surplus arguments are named arg<N> by position.
// compiled lists the specializations that already exist for the function.
func (e *Encoder) Describe(function string, params, compiled []string, args []entities.Value) entities.Descriptor {
	desc := entities.Descriptor{
		Version:  entities.DescriptorVersion,
		Function: function,
		Args:     make([]entities.ArgDescriptor, len(args)),
	}
	if len(compiled) > 0 {
		desc.Compiled = append([]string(nil), compiled...)
	}
	for i, v := range args {
		desc.Args[i] = describeArg(argName(params, i), v)
	}
	return desc
}

func argName(params []string, i int) string {
	if i < len(params) && params[i] != "" {
		return params[i]
	}
	return "arg" + strconv.Itoa(i)
}

func describeArg(name string, v entities.Value) entities.ArgDescriptor {
	t := entities.TypeOf(v)
	ad := entities.ArgDescriptor{Name: name, Kind: t.Kind, DType: t.DType, Rank: t.Rank}
	switch x := v.(type) {
	case *entities.Array:
		if x != nil {
			ad.Shape = x.Shape()
		}
	case entities.Opaque:
		ad.TypeName = x.TypeName
	}
	return ad
}
