package kernel

import (
	"context"
	"fmt"
	"sort"

	"github.com/reglet-dev/kernelbridge/domain/entities"
	"github.com/reglet-dev/kernelbridge/domain/ports"
)

// Registry is an immutable collection of named kernels.
// Once created via NewRegistry, kernels cannot be added or removed.
type Registry struct {
	kernels    map[string]Func
	names      []string // sorted for consistent iteration
	middleware []Middleware
}

// registryBuilder accumulates configuration during registry construction.
type registryBuilder struct {
	kernels    map[string]Func
	middleware []Middleware
	errors     []error
}

// NewRegistry creates an immutable Registry with the given options.
// Returns an error if any kernel name is empty or registered twice.
func NewRegistry(opts ...Option) (*Registry, error) {
	b := &registryBuilder{
		kernels: make(map[string]Func),
	}

	for _, opt := range opts {
		opt(b)
	}

	if len(b.errors) > 0 {
		return nil, b.errors[0]
	}

	names := make([]string, 0, len(b.kernels))
	for name := range b.kernels {
		names = append(names, name)
	}
	sort.Strings(names)

	// Apply middleware in reverse order so the first one wraps outermost.
	wrapped := make(map[string]Func, len(b.kernels))
	for name, fn := range b.kernels {
		w := fn
		for i := len(b.middleware) - 1; i >= 0; i-- {
			w = b.middleware[i](w)
		}
		wrapped[name] = w
	}

	return &Registry{
		kernels:    wrapped,
		names:      names,
		middleware: b.middleware,
	}, nil
}

// Invoke runs a kernel by name.
func (r *Registry) Invoke(ctx context.Context, name string, f *entities.Frame) (entities.Return, error) {
	fn, ok := r.kernels[name]
	if !ok {
		return entities.Return{}, &NotFoundError{Name: name}
	}
	return fn(KernelContextFrom(ctx, name), f)
}

// Has returns true if a kernel with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.kernels[name]
	return ok
}

// Names returns a sorted list of all registered kernel names.
func (r *Registry) Names() []string {
	result := make([]string, len(r.names))
	copy(result, r.names)
	return result
}

// Kernel returns the named kernel, wrapped in the registry's middleware.
func (r *Registry) Kernel(name string) (ports.Kernel, error) {
	if !r.Has(name) {
		return nil, &NotFoundError{Name: name}
	}
	return &bound{reg: r, name: name}, nil
}

// addKernel registers a kernel with the given name.
func (b *registryBuilder) addKernel(name string, fn Func) error {
	if name == "" {
		return fmt.Errorf("kernel name cannot be empty")
	}
	if fn == nil {
		return fmt.Errorf("kernel %q has no body", name)
	}
	if _, exists := b.kernels[name]; exists {
		return fmt.Errorf("duplicate kernel name: %q", name)
	}
	b.kernels[name] = fn
	return nil
}

// WithKernel registers a kernel under the given name.
func WithKernel(name string, fn Func) Option {
	return func(b *registryBuilder) {
		if err := b.addKernel(name, fn); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}

// WithMiddleware adds middleware to the registry.
// Middleware executes in FIFO order (first added wraps first).
func WithMiddleware(mw ...Middleware) Option {
	return func(b *registryBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}

// WithBundle registers all kernels from a bundle.
func WithBundle(bundle Bundle) Option {
	return func(b *registryBuilder) {
		kernels := bundle.Kernels()
		names := make([]string, 0, len(kernels))
		for name := range kernels {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := b.addKernel(name, kernels[name]); err != nil {
				b.errors = append(b.errors, err)
			}
		}
	}
}
