package broker

import (
	"errors"
	"log/slog"
	"reflect"
	"sync"

	domainerrors "github.com/reglet-dev/kernelbridge/domain/errors"
	"github.com/reglet-dev/kernelbridge/domain/ports"
)

// FactoryRegistry is the guarded slot holding the fallback factory.
// Registration is rare and reads are frequent; the last writer wins.
type FactoryRegistry struct {
	logger  *slog.Logger
	factory ports.Factory
	hooks   []func()
	mu      sync.RWMutex
}

// NewFactoryRegistry returns an empty registry.
func NewFactoryRegistry(logger *slog.Logger) *FactoryRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &FactoryRegistry{logger: logger}
}

// Register installs f, replacing any previous factory. A nil factory,
// including a nil FactoryFunc or a nil pointer, is a configuration error. Hooks added with OnRegister run after every
// successful registration, outside the lock.
func (r *FactoryRegistry) Register(f ports.Factory) error {
	if isNilFactory(f) {
		return &domainerrors.ConfigError{Field: "create_signature", Err: errors.New("factory must not be nil")}
	}

	r.mu.Lock()
	replaced := r.factory != nil
	r.factory = f
	hooks := append([]func(){}, r.hooks...)
	r.mu.Unlock()

	if replaced {
		r.logger.Warn("fallback factory replaced")
	}
	for _, h := range hooks {
		h()
	}
	return nil
}

// IsRegistered reports whether a factory is installed.
func (r *FactoryRegistry) IsRegistered() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.factory != nil
}

// Factory returns the installed factory.
func (r *FactoryRegistry) Factory() (ports.Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.factory, r.factory != nil
}

// OnRegister adds a hook that runs after each registration.
func (r *FactoryRegistry) OnRegister(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, fn)
}

func isNilFactory(f ports.Factory) bool {
	if f == nil {
		return true
	}
	v := reflect.ValueOf(f)
	switch v.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
