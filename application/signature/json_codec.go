package signature

import (
	"encoding/json"
	"fmt"

	"github.com/reglet-dev/kernelbridge/domain/entities"
	domainerrors "github.com/reglet-dev/kernelbridge/domain/errors"
	"github.com/reglet-dev/kernelbridge/domain/ports"
	"github.com/reglet-dev/kernelbridge/wireformat"
)

// JSONCodec encodes descriptors as canonical JSON and validates them against
// the descriptor schema on decode.
type JSONCodec struct{}

var _ ports.DescriptorCodec = JSONCodec{}

// Encode implements ports.DescriptorCodec.
func (JSONCodec) Encode(d entities.Descriptor) ([]byte, error) {
	data, err := marshalCanonical(ToWire(d))
	if err != nil {
		return nil, &domainerrors.WireFormatError{Format: "json", Op: "encode", Err: err}
	}
	return data, nil
}

// Decode implements ports.DescriptorCodec.
func (JSONCodec) Decode(data []byte) (entities.Descriptor, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return entities.Descriptor{}, &domainerrors.WireFormatError{Format: "json", Op: "decode", Err: err}
	}
	if err := validateDocument(doc); err != nil {
		return entities.Descriptor{}, err
	}
	var w wireformat.DescriptorWire
	if err := json.Unmarshal(data, &w); err != nil {
		return entities.Descriptor{}, &domainerrors.WireFormatError{Format: "json", Op: "decode", Err: err}
	}
	return checkVersion(FromWire(w), "json")
}

// ContentType implements ports.DescriptorCodec.
func (JSONCodec) ContentType() string { return "application/json" }

func checkVersion(d entities.Descriptor, format string) (entities.Descriptor, error) {
	if d.Version > entities.DescriptorVersion {
		return entities.Descriptor{}, &domainerrors.WireFormatError{
			Format: format,
			Op:     "decode",
			Err:    fmt.Errorf("descriptor version %d is newer than supported version %d", d.Version, entities.DescriptorVersion),
		}
	}
	return d, nil
}
