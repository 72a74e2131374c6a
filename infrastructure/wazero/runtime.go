package wazero

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/reglet-dev/kernelbridge/domain/entities"
)

// DefaultMemoryLimitPages caps guest memory at 256 MiB.
const DefaultMemoryLimitPages = 4096

// RuntimeConfig holds configuration for the runtime.
type RuntimeConfig struct {
	Logger *slog.Logger

	// MemoryLimitPages limits each guest's linear memory (64 KiB pages).
	MemoryLimitPages uint32

	// WASI instantiates wasi_snapshot_preview1 so kernels built by
	// toolchains that import it can load.
	WASI bool
}

// Option configures a Runtime.
type Option func(*RuntimeConfig)

// WithMemoryLimitPages sets the guest memory limit.
func WithMemoryLimitPages(pages uint32) Option {
	return func(c *RuntimeConfig) {
		c.MemoryLimitPages = pages
	}
}

// WithLogger sets the runtime logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *RuntimeConfig) {
		c.Logger = l
	}
}

// WithoutWASI skips instantiating the WASI host module.
func WithoutWASI() Option {
	return func(c *RuntimeConfig) {
		c.WASI = false
	}
}

func defaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Logger:           slog.Default(),
		MemoryLimitPages: DefaultMemoryLimitPages,
		WASI:             true,
	}
}

// Runtime owns a wazero runtime and every kernel module instantiated in it.
type Runtime struct {
	rt     wazero.Runtime
	logger *slog.Logger

	mu      sync.Mutex
	modules []api.Module
	closed  bool
}

// NewRuntime creates a runtime. Close releases every compiled kernel.
func NewRuntime(ctx context.Context, opts ...Option) (*Runtime, error) {
	cfg := defaultRuntimeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	rc := wazero.NewRuntimeConfig().
		WithMemoryLimitPages(cfg.MemoryLimitPages).
		WithCloseOnContextDone(true)
	rt := wazero.NewRuntimeWithConfig(ctx, rc)

	if cfg.WASI {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
			_ = rt.Close(ctx)
			return nil, fmt.Errorf("failed to instantiate wasi: %w", err)
		}
	}

	return &Runtime{rt: rt, logger: cfg.Logger}, nil
}

// Close releases the runtime and all kernel modules.
func (r *Runtime) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.modules = nil
	return r.rt.Close(ctx)
}

// CompileKernel instantiates wasm and binds its export to sig. The export's
// wasm value types must agree with the signature.
func (r *Runtime) CompileKernel(ctx context.Context, wasm []byte, export string, sig entities.Signature) (*Kernel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, fmt.Errorf("wazero runtime is closed")
	}

	compiled, err := r.rt.CompileModule(ctx, wasm)
	if err != nil {
		return nil, fmt.Errorf("failed to compile module: %w", err)
	}

	// Anonymous instances let one binary back several kernels.
	mod, err := r.rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}

	k, err := bindKernel(mod, export, sig)
	if err != nil {
		_ = mod.Close(ctx)
		return nil, err
	}
	k.logger = r.logger

	r.modules = append(r.modules, mod)
	r.logger.DebugContext(ctx, "wasm kernel compiled", "function", sig.Function, "export", export)
	return k, nil
}

// CompileSpecialization compiles a kernel and wraps it as a specialization.
func (r *Runtime) CompileSpecialization(ctx context.Context, wasm []byte, export string, sig entities.Signature) (*entities.Specialization, error) {
	k, err := r.CompileKernel(ctx, wasm, export, sig)
	if err != nil {
		return nil, err
	}
	return entities.NewSpecialization(sig, k)
}
