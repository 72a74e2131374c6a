package host

import (
	"log/slog"

	"github.com/reglet-dev/kernelbridge/application/config"
	"github.com/reglet-dev/kernelbridge/domain/entities"
	"github.com/reglet-dev/kernelbridge/domain/ports"
	"github.com/reglet-dev/kernelbridge/infrastructure/crash"
)

// wasmKernel is a kernel to compile on the module's wazero runtime.
type wasmKernel struct {
	binary []byte
	export string
	sig    entities.Signature
}

type moduleConfig struct {
	reporter *crash.Reporter
	journal  ports.FallbackJournal
	logger   *slog.Logger
	codec    ports.DescriptorCodec
	cfg      config.Config
	wasm     []wasmKernel
}

func defaultModuleConfig() moduleConfig {
	return moduleConfig{cfg: config.Default()}
}

// Option configures Load.
type Option func(*moduleConfig)

// WithReporter sets the crash reporter. By default one is built from the
// configuration's crash section.
func WithReporter(r *crash.Reporter) Option {
	return func(c *moduleConfig) {
		c.reporter = r
	}
}

// WithJournal records fallbacks in j. It takes precedence over the
// configuration's journal path; the module does not close it.
func WithJournal(j ports.FallbackJournal) Option {
	return func(c *moduleConfig) {
		c.journal = j
	}
}

// WithLogger sets the logger. By default one is built at the configured level.
func WithLogger(l *slog.Logger) Option {
	return func(c *moduleConfig) {
		c.logger = l
	}
}

// WithCodec sets the descriptor codec used for journal entries.
func WithCodec(codec ports.DescriptorCodec) Option {
	return func(c *moduleConfig) {
		c.codec = codec
	}
}

// WithConfig replaces the default configuration.
func WithConfig(cfg config.Config) Option {
	return func(c *moduleConfig) {
		c.cfg = cfg
	}
}

// WithWASM adds a specialization whose kernel is the given export of a
// WebAssembly binary. The module then owns a wazero runtime.
func WithWASM(binary []byte, export string, sig entities.Signature) Option {
	return func(c *moduleConfig) {
		c.wasm = append(c.wasm, wasmKernel{binary: binary, export: export, sig: sig})
	}
}
