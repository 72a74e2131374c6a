package ports

import (
	"context"

	"github.com/reglet-dev/kernelbridge/domain/entities"
)

// FallbackJournal records descriptors of calls that reached the factory.
type FallbackJournal interface {
	Record(ctx context.Context, desc entities.Descriptor, encoded []byte) error
}
