package host

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/reglet-dev/kernelbridge/application/broker"
	"github.com/reglet-dev/kernelbridge/application/invoke"
	"github.com/reglet-dev/kernelbridge/application/signature"
	"github.com/reglet-dev/kernelbridge/domain/entities"
	"github.com/reglet-dev/kernelbridge/domain/errors"
	"github.com/reglet-dev/kernelbridge/domain/ports"
	"github.com/reglet-dev/kernelbridge/infrastructure/crash"
	"github.com/reglet-dev/kernelbridge/infrastructure/journal"
	"github.com/reglet-dev/kernelbridge/infrastructure/wazero"
	"github.com/reglet-dev/kernelbridge/log"
)

// ErrUnknownFunction is returned by Run for a function the module does not export.
var ErrUnknownFunction = stdErrors.New("unknown function")

// validate is a package-level singleton; building one per call is expensive.
var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}()

// Module is a loaded set of specializations, one broker per logical
// function. All brokers share one factory slot.
type Module struct {
	brokers   map[string]*broker.Broker
	factories *broker.FactoryRegistry
	reporter  *crash.Reporter
	logger    *slog.Logger
	wasm      *wazero.Runtime
	owned     *journal.Journal
	name      string
	functions []string

	mu     sync.Mutex
	closed bool
}

// faultGate forwards faults to the reporter once it is installed. Before
// that the invoker re-raises the original panic.
type faultGate struct {
	r *crash.Reporter
}

func (g faultGate) Fatal(f entities.Fault) {
	if g.r.Installed() {
		g.r.Fatal(f)
	}
}

// Load validates every specialization signature and builds the module.
// Specializations of one function are dispatched in the given order.
func Load(ctx context.Context, name string, specs []*entities.Specialization, opts ...Option) (*Module, error) {
	mc := defaultModuleConfig()
	for _, opt := range opts {
		opt(&mc)
	}

	m := &Module{
		name:    name,
		brokers: make(map[string]*broker.Broker),
		logger:  mc.logger,
	}
	if m.logger == nil {
		m.logger = log.New(log.WithLevel(mc.cfg.Level()))
	}

	m.reporter = mc.reporter
	if m.reporter == nil {
		m.reporter = crash.New(
			crash.WithMaxFrames(mc.cfg.Crash.MaxFrames),
			crash.WithExitCode(mc.cfg.Crash.ExitCode),
		)
	}

	var err error
	if specs, err = m.compileWASM(ctx, specs, mc.wasm); err != nil {
		_ = m.Close(ctx)
		return nil, err
	}

	grouped, order, err := group(specs)
	if err != nil {
		_ = m.Close(ctx)
		return nil, err
	}

	jrnl := mc.journal
	if jrnl == nil && mc.cfg.Journal.Path != "" {
		if m.owned, err = journal.Open(mc.cfg.Journal.Path); err != nil {
			_ = m.Close(ctx)
			return nil, err
		}
		jrnl = m.owned
	}

	codec := mc.codec
	if codec == nil {
		codec = signature.CodecFor(mc.cfg.Descriptor.Format)
	}

	invOpts := []invoke.Option{invoke.WithLogger(m.logger)}
	if mc.cfg.FaultHandling {
		invOpts = append(invOpts, invoke.WithFaultSink(faultGate{r: m.reporter}))
	}
	inv := invoke.New(invOpts...)

	m.factories = broker.NewFactoryRegistry(m.logger)
	if mc.cfg.FaultHandling {
		m.factories.OnRegister(func() {
			if err := m.reporter.Install(); err != nil {
				m.logger.ErrorContext(ctx, "failed to install crash reporter", "module", name, "error", err)
			}
		})
	}

	for _, fn := range order {
		bopts := []broker.Option{
			broker.WithFactories(m.factories),
			broker.WithInvoker(inv),
			broker.WithCodec(codec),
			broker.WithLogger(m.logger),
		}
		if jrnl != nil {
			bopts = append(bopts, broker.WithJournal(jrnl))
		}
		b, err := broker.New(fn, grouped[fn], bopts...)
		if err != nil {
			_ = m.Close(ctx)
			return nil, err
		}
		m.brokers[fn] = b
	}
	m.functions = order

	m.logger.DebugContext(ctx, "module loaded", "module", name, "functions", len(order), "specializations", len(specs))
	return m, nil
}

func (m *Module) compileWASM(ctx context.Context, specs []*entities.Specialization, kernels []wasmKernel) ([]*entities.Specialization, error) {
	if len(kernels) == 0 {
		return specs, nil
	}
	rt, err := wazero.NewRuntime(ctx, wazero.WithLogger(m.logger))
	if err != nil {
		return nil, err
	}
	m.wasm = rt

	out := append([]*entities.Specialization(nil), specs...)
	for _, k := range kernels {
		if err := validateSignature(k.sig); err != nil {
			return nil, err
		}
		spec, err := rt.CompileSpecialization(ctx, k.binary, k.export, k.sig)
		if err != nil {
			return nil, &errors.ConfigError{Field: "wasm", Err: fmt.Errorf("%s: %w", k.sig.Function, err)}
		}
		out = append(out, spec)
	}
	return out, nil
}

// group validates specs and buckets them by function, keeping their order.
func group(specs []*entities.Specialization) (map[string][]*entities.Specialization, []string, error) {
	grouped := make(map[string][]*entities.Specialization)
	seen := make(map[string]bool)
	for _, s := range specs {
		if s == nil {
			return nil, nil, &errors.ConfigError{Field: "specializations", Err: stdErrors.New("nil specialization")}
		}
		if err := validateSignature(s.Signature()); err != nil {
			return nil, nil, err
		}
		if seen[s.Name()] {
			return nil, nil, &errors.ConfigError{
				Field: "specializations",
				Err:   fmt.Errorf("duplicate specialization %s", s.Name()),
			}
		}
		seen[s.Name()] = true
		grouped[s.Function()] = append(grouped[s.Function()], s)
	}

	order := make([]string, 0, len(grouped))
	for fn := range grouped {
		order = append(order, fn)
	}
	sort.Strings(order)
	return grouped, order, nil
}

func validateSignature(sig entities.Signature) error {
	if err := validate.Struct(sig); err != nil {
		var verrs validator.ValidationErrors
		if stdErrors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &errors.ConfigError{
				Field: fe.Namespace(),
				Err:   fmt.Errorf("%s: failed on '%s'", sig.Function, fe.Tag()),
			}
		}
		return &errors.ConfigError{Field: "signature", Err: err}
	}
	if err := sig.Validate(); err != nil {
		return &errors.ConfigError{Field: "signature", Err: fmt.Errorf("%s: %w", sig.Function, err)}
	}
	return nil
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Functions returns the exported logical functions, sorted.
func (m *Module) Functions() []string {
	return append([]string(nil), m.functions...)
}

// Broker returns the broker of function.
func (m *Module) Broker(function string) (*broker.Broker, bool) {
	b, ok := m.brokers[function]
	return b, ok
}

// Specializations returns every loaded specialization, grouped by function
// in sorted order and in dispatch order within a function.
func (m *Module) Specializations() []*entities.Specialization {
	var out []*entities.Specialization
	for _, fn := range m.functions {
		out = append(out, m.brokers[fn].Specializations()...)
	}
	return out
}

// SetCreateSignature registers the fallback factory shared by all functions
// and installs fault handling. It may be called again to replace the factory.
func (m *Module) SetCreateSignature(f ports.Factory) error {
	return m.factories.Register(f)
}

// FaultHandlingInstalled reports whether the crash reporter is active.
func (m *Module) FaultHandlingInstalled() bool {
	return m.reporter.Installed()
}

// Run calls function with args.
func (m *Module) Run(ctx context.Context, function string, args ...entities.Value) (entities.Value, error) {
	b, ok := m.brokers[function]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, function)
	}
	return b.Call(ctx, args...)
}

// Describe returns the descriptor the factory would receive for a call of
// function with args.
func (m *Module) Describe(function string, args ...entities.Value) (entities.Descriptor, error) {
	b, ok := m.brokers[function]
	if !ok {
		return entities.Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownFunction, function)
	}
	return b.Describe(args...), nil
}

// Close releases the wasm runtime and any journal the module opened.
// It is safe to call more than once.
func (m *Module) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true

	var errs []error
	if m.wasm != nil {
		errs = append(errs, m.wasm.Close(ctx))
	}
	if m.owned != nil {
		errs = append(errs, m.owned.Close())
	}
	return stdErrors.Join(errs...)
}
