package kernel

import (
	"context"

	"github.com/reglet-dev/kernelbridge/domain/entities"
)

// Func is a native kernel body. It reads its arguments from the frame and
// returns a native result, or entities.ErrNoReturn when control reaches the
// end of the body without producing one.
type Func func(ctx context.Context, f *entities.Frame) (entities.Return, error)

// Call implements entities.Kernel.
func (fn Func) Call(ctx context.Context, f *entities.Frame) (entities.Return, error) {
	return fn(ctx, f)
}

// bound is a registry entry exposed as a Kernel.
type bound struct {
	reg  *Registry
	name string
}

func (b *bound) Call(ctx context.Context, f *entities.Frame) (entities.Return, error) {
	return b.reg.Invoke(ctx, b.name, f)
}
