package ports

import "github.com/reglet-dev/kernelbridge/domain/entities"

// DescriptorCodec serializes descriptors for the factory, the journal and the CLI.
type DescriptorCodec interface {
	// Encode returns a deterministic encoding: equal descriptors encode to equal bytes.
	Encode(desc entities.Descriptor) ([]byte, error)

	// Decode parses and validates an encoded descriptor.
	Decode(data []byte) (entities.Descriptor, error)

	// ContentType names the encoding, e.g. "application/json".
	ContentType() string
}
