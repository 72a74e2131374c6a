// Package broker dispatches calls of one logical function across its
// compiled specializations, falling back to a factory when none accepts the
// arguments.
package broker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/kernelbridge/application/guard"
	"github.com/reglet-dev/kernelbridge/application/invoke"
	"github.com/reglet-dev/kernelbridge/application/signature"
	"github.com/reglet-dev/kernelbridge/domain/entities"
	"github.com/reglet-dev/kernelbridge/domain/errors"
	"github.com/reglet-dev/kernelbridge/domain/ports"
)

type candidate struct {
	spec  *entities.Specialization
	guard *guard.Guard
}

// Broker is the call entry point of one logical function. It is immutable
// after New and safe for concurrent use.
type Broker struct {
	factories  *FactoryRegistry
	invoker    *invoke.Invoker
	encoder    *signature.Encoder
	codec      ports.DescriptorCodec
	journal    ports.FallbackJournal
	logger     *slog.Logger
	function   string
	candidates []candidate
	paramNames []string
	compiled   []string
}

type brokerConfig struct {
	factories  *FactoryRegistry
	invoker    *invoke.Invoker
	encoder    *signature.Encoder
	codec      ports.DescriptorCodec
	journal    ports.FallbackJournal
	logger     *slog.Logger
	paramNames []string
}

func defaultBrokerConfig() brokerConfig {
	return brokerConfig{
		encoder: signature.NewEncoder(),
		codec:   signature.JSONCodec{},
		logger:  slog.Default(),
	}
}

// Option configures a Broker.
type Option func(*brokerConfig)

// WithFactories shares a factory slot between brokers.
func WithFactories(r *FactoryRegistry) Option {
	return func(c *brokerConfig) { c.factories = r }
}

// WithInvoker sets the kernel invoker.
func WithInvoker(inv *invoke.Invoker) Option {
	return func(c *brokerConfig) { c.invoker = inv }
}

// WithEncoder sets the descriptor encoder.
func WithEncoder(e *signature.Encoder) Option {
	return func(c *brokerConfig) { c.encoder = e }
}

// WithCodec sets the codec used for journal entries.
func WithCodec(codec ports.DescriptorCodec) Option {
	return func(c *brokerConfig) { c.codec = codec }
}

// WithJournal records every descriptor that reaches the factory.
func WithJournal(j ports.FallbackJournal) Option {
	return func(c *brokerConfig) { c.journal = j }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *brokerConfig) { c.logger = l }
}

// WithParamNames overrides the argument names used in descriptors. By
// default the first specialization's parameter names are used.
func WithParamNames(names ...string) Option {
	return func(c *brokerConfig) { c.paramNames = append([]string(nil), names...) }
}

// New creates the broker of function. Specializations are tried in the given
// order and must all implement function.
func New(function string, specs []*entities.Specialization, opts ...Option) (*Broker, error) {
	cfg := defaultBrokerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.factories == nil {
		cfg.factories = NewFactoryRegistry(cfg.logger)
	}
	if cfg.invoker == nil {
		cfg.invoker = invoke.New(invoke.WithLogger(cfg.logger))
	}

	b := &Broker{
		factories:  cfg.factories,
		invoker:    cfg.invoker,
		encoder:    cfg.encoder,
		codec:      cfg.codec,
		journal:    cfg.journal,
		logger:     cfg.logger,
		function:   function,
		paramNames: cfg.paramNames,
	}
	for _, s := range specs {
		if s == nil {
			return nil, &errors.ConfigError{Field: "specializations", Err: fmt.Errorf("nil specialization for %s", function)}
		}
		if s.Function() != function {
			return nil, &errors.ConfigError{
				Field: "specializations",
				Err:   fmt.Errorf("specialization %s implements %s, not %s", s.Name(), s.Function(), function),
			}
		}
		b.candidates = append(b.candidates, candidate{spec: s, guard: guard.New(s.Signature())})
		b.compiled = append(b.compiled, s.Name())
	}
	if b.paramNames == nil && len(specs) > 0 {
		b.paramNames = specs[0].Signature().ParamNames()
	}
	return b, nil
}

// Function returns the logical function name.
func (b *Broker) Function() string { return b.function }

// Specializations returns the compiled specializations in dispatch order.
func (b *Broker) Specializations() []*entities.Specialization {
	out := make([]*entities.Specialization, len(b.candidates))
	for i, c := range b.candidates {
		out[i] = c.spec
	}
	return out
}

// Factories returns the factory slot.
func (b *Broker) Factories() *FactoryRegistry { return b.factories }

// Call dispatches one call. The first specialization whose guard accepts
// the arguments runs; otherwise the factory receives a descriptor of the
// arguments and its result is returned unchanged.
func (b *Broker) Call(ctx context.Context, args ...entities.Value) (entities.Value, error) {
	for _, c := range b.candidates {
		if !c.guard.Match(args) {
			continue
		}
		return b.invoke(ctx, c, args)
	}
	b.logger.DebugContext(ctx, "no specialization matched", "function", b.function, "args", len(args))
	return b.fallback(ctx, args)
}

func (b *Broker) invoke(ctx context.Context, c candidate, args []entities.Value) (entities.Value, error) {
	cc, err := c.guard.Bind(args)
	if err != nil {
		b.logger.WarnContext(ctx, "argument coercion failed", "function", b.function, "kernel", c.spec.Name(), "error", err)
		return nil, err
	}
	defer cc.Release()

	res := b.invoker.Invoke(ctx, c.spec, cc)
	if !res.OK() {
		return nil, errors.FromResult(res)
	}
	return res.Value, nil
}

// Describe returns the descriptor the factory would receive for args.
func (b *Broker) Describe(args ...entities.Value) entities.Descriptor {
	return b.encoder.Describe(b.function, b.paramNames, b.compiled, args)
}

func (b *Broker) fallback(ctx context.Context, args []entities.Value) (entities.Value, error) {
	factory, ok := b.factories.Factory()
	if !ok {
		return nil, fmt.Errorf("%s: %w", b.function, errors.ErrFactoryNotSet)
	}

	desc := b.Describe(args...)
	b.logger.InfoContext(ctx, "falling back to factory", "function", b.function, "signature", typeList(desc))

	if b.journal != nil {
		b.record(ctx, desc)
	}
	return factory.CreateSignature(ctx, desc, args)
}

func (b *Broker) record(ctx context.Context, desc entities.Descriptor) {
	encoded, err := b.codec.Encode(desc)
	if err != nil {
		b.logger.WarnContext(ctx, "failed to encode fallback descriptor", "function", b.function, "error", err)
		return
	}
	if err := b.journal.Record(ctx, desc, encoded); err != nil {
		b.logger.WarnContext(ctx, "failed to journal fallback", "function", b.function, "error", err)
	}
}

func typeList(d entities.Descriptor) string {
	s := "("
	for i, t := range d.TypeTuple() {
		if i > 0 {
			s += ", "
		}
		s += t.String()
	}
	return s + ")"
}
