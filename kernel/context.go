package kernel

import (
	"context"
)

// KernelContext wraps a standard context.Context with kernel-specific helpers.
// It provides access to the invoked kernel name and allows middleware to store
// request-scoped values without polluting the standard context.
type KernelContext interface {
	context.Context

	// KernelName returns the name of the kernel being invoked.
	KernelName() string

	// SetValue stores a request-scoped value. Unlike context.WithValue,
	// this mutates the existing KernelContext.
	SetValue(key, value any)

	// GetValue retrieves a request-scoped value set by SetValue.
	GetValue(key any) (value any, ok bool)
}

type kernelContext struct {
	context.Context
	values map[any]any
	name   string
}

// NewKernelContext creates a new KernelContext wrapping the given context.
func NewKernelContext(ctx context.Context, name string) KernelContext {
	return &kernelContext{
		Context: ctx,
		name:    name,
		values:  make(map[any]any),
	}
}

func (c *kernelContext) KernelName() string {
	return c.name
}

func (c *kernelContext) SetValue(key, value any) {
	c.values[key] = value
}

func (c *kernelContext) GetValue(key any) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// KernelContextFrom returns ctx if it already is a KernelContext for name,
// otherwise a new KernelContext wrapping ctx.
func KernelContextFrom(ctx context.Context, name string) KernelContext {
	if kc, ok := ctx.(KernelContext); ok && kc.KernelName() == name {
		return kc
	}
	return NewKernelContext(ctx, name)
}

// NameFrom returns the kernel name carried by ctx, or "unknown".
func NameFrom(ctx context.Context) string {
	if kc, ok := ctx.(KernelContext); ok {
		return kc.KernelName()
	}
	return "unknown"
}
