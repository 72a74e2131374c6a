package signature

import (
	"gopkg.in/yaml.v3"

	"github.com/reglet-dev/kernelbridge/domain/entities"
	domainerrors "github.com/reglet-dev/kernelbridge/domain/errors"
	"github.com/reglet-dev/kernelbridge/domain/ports"
	"github.com/reglet-dev/kernelbridge/wireformat"
)

// YAMLCodec encodes descriptors as YAML for human-facing output.
type YAMLCodec struct{}

var _ ports.DescriptorCodec = YAMLCodec{}

// Encode implements ports.DescriptorCodec.
func (YAMLCodec) Encode(d entities.Descriptor) ([]byte, error) {
	data, err := yaml.Marshal(ToWire(d))
	if err != nil {
		return nil, &domainerrors.WireFormatError{Format: "yaml", Op: "encode", Err: err}
	}
	return data, nil
}

// Decode implements ports.DescriptorCodec.
func (YAMLCodec) Decode(data []byte) (entities.Descriptor, error) {
	var w wireformat.DescriptorWire
	if err := yaml.Unmarshal(data, &w); err != nil {
		return entities.Descriptor{}, &domainerrors.WireFormatError{Format: "yaml", Op: "decode", Err: err}
	}
	if w.Args == nil {
		w.Args = []wireformat.ArgWire{}
	}
	if err := validateWire(w); err != nil {
		return entities.Descriptor{}, err
	}
	return checkVersion(FromWire(w), "yaml")
}

// ContentType implements ports.DescriptorCodec.
func (YAMLCodec) ContentType() string { return "application/yaml" }

// CodecFor returns the codec for a format name, defaulting to JSON.
func CodecFor(format string) ports.DescriptorCodec {
	if format == "yaml" {
		return YAMLCodec{}
	}
	return JSONCodec{}
}
