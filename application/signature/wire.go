package signature

import (
	"golang.org/x/text/unicode/norm"

	"github.com/reglet-dev/kernelbridge/domain/entities"
	"github.com/reglet-dev/kernelbridge/wireformat"
)

// ToWire converts a descriptor to its wire form. Names are NFC normalized.
func ToWire(d entities.Descriptor) wireformat.DescriptorWire {
	w := wireformat.DescriptorWire{
		Version:  d.Version,
		Function: norm.NFC.String(d.Function),
		Args:     make([]wireformat.ArgWire, len(d.Args)),
	}
	if len(d.Compiled) > 0 {
		w.Compiled = make([]string, len(d.Compiled))
		for i, c := range d.Compiled {
			w.Compiled[i] = norm.NFC.String(c)
		}
	}
	for i, a := range d.Args {
		w.Args[i] = wireformat.ArgWire{
			Name:     norm.NFC.String(a.Name),
			Kind:     string(a.Kind),
			DType:    string(a.DType),
			TypeName: a.TypeName,
			Shape:    append([]int(nil), a.Shape...),
			Rank:     a.Rank,
		}
	}
	return w
}

// FromWire converts a wire descriptor back to the domain type.
func FromWire(w wireformat.DescriptorWire) entities.Descriptor {
	d := entities.Descriptor{
		Version:  w.Version,
		Function: norm.NFC.String(w.Function),
		Args:     make([]entities.ArgDescriptor, len(w.Args)),
	}
	if len(w.Compiled) > 0 {
		d.Compiled = append([]string(nil), w.Compiled...)
	}
	for i, a := range w.Args {
		d.Args[i] = entities.ArgDescriptor{
			Name:     norm.NFC.String(a.Name),
			Kind:     entities.Kind(a.Kind),
			DType:    entities.DType(a.DType),
			TypeName: a.TypeName,
			Rank:     a.Rank,
		}
		if len(a.Shape) > 0 {
			d.Args[i].Shape = append([]int(nil), a.Shape...)
		}
	}
	return d
}
