package ports

import (
	"context"

	"github.com/reglet-dev/kernelbridge/domain/entities"
)

// Factory is the fallback invoked when no specialization accepts a call.
// It receives the descriptor of the actual arguments plus the original
// arguments, and its return value is handed to the caller unchanged.
type Factory interface {
	CreateSignature(ctx context.Context, desc entities.Descriptor, args []entities.Value) (entities.Value, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(ctx context.Context, desc entities.Descriptor, args []entities.Value) (entities.Value, error)

// CreateSignature implements Factory.
func (f FactoryFunc) CreateSignature(ctx context.Context, desc entities.Descriptor, args []entities.Value) (entities.Value, error) {
	return f(ctx, desc, args)
}
