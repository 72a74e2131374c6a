// Package invoke runs a specialization's kernel on bound arguments and turns
// the outcome into an explicit result.
package invoke

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/reglet-dev/kernelbridge/application/guard"
	"github.com/reglet-dev/kernelbridge/domain/entities"
	"github.com/reglet-dev/kernelbridge/domain/errors"
	"github.com/reglet-dev/kernelbridge/domain/ports"
)

// Invoker calls kernels. It is stateless apart from its configuration and
// safe for concurrent use.
type Invoker struct {
	logger *slog.Logger
	sink   ports.FaultSink
}

type invokerConfig struct {
	logger *slog.Logger
	sink   ports.FaultSink
}

// Option configures an Invoker.
type Option func(*invokerConfig)

// WithLogger sets the logger for invocation failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *invokerConfig) {
		c.logger = l
	}
}

// WithFaultSink sets where memory faults are escalated. Without a sink a
// fault propagates as the original runtime panic.
func WithFaultSink(s ports.FaultSink) Option {
	return func(c *invokerConfig) {
		c.sink = s
	}
}

// New creates an Invoker.
func New(opts ...Option) *Invoker {
	cfg := invokerConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Invoker{logger: cfg.logger, sink: cfg.sink}
}

// Invoke runs spec's kernel on the frame bound in cc.
//
// A kernel error, a non-memory panic, or a missing return path yields a
// failure Result. A memory fault is handed to the fault sink and never
// becomes a Result. The caller keeps ownership of cc and must release it.
func (v *Invoker) Invoke(ctx context.Context, spec *entities.Specialization, cc *guard.CallContext) entities.Result {
	ret, err := v.run(ctx, spec, cc.Frame())
	if err != nil {
		v.logger.WarnContext(ctx, "kernel invocation failed", "kernel", spec.Name(), "error", err)
		return entities.ResultFailureFrom(errors.ToErrorDetail(err), err)
	}
	if err := checkReturn(spec.Returns(), ret); err != nil {
		v.logger.WarnContext(ctx, "kernel returned unexpected type", "kernel", spec.Name(), "error", err)
		invErr := &errors.InvocationError{Kernel: spec.Name(), Err: err}
		return entities.ResultFailureFrom(invErr.ToErrorDetail(), invErr)
	}
	return entities.ResultSuccess(cc.Adopt(ret))
}

func (v *Invoker) run(ctx context.Context, spec *entities.Specialization, f *entities.Frame) (ret entities.Return, err error) {
	prev := debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(prev)

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if fault, ok := entities.FaultFromPanic(r); ok {
			fault.Kernel = spec.Name()
			v.escalate(fault, r)
		}
		ret = entities.Return{}
		cause := fmt.Errorf("panic: %v", r)
		if rerr, ok := r.(error); ok {
			cause = fmt.Errorf("panic: %w", rerr)
		}
		err = &errors.InvocationError{Kernel: spec.Name(), Err: cause}
	}()

	ret, err = spec.Kernel().Call(ctx, f)
	if err != nil {
		return entities.Return{}, &errors.InvocationError{Kernel: spec.Name(), Err: err}
	}
	if ret.IsZero() {
		return entities.Return{}, &errors.InvocationError{Kernel: spec.Name(), Err: entities.ErrNoReturn}
	}
	return ret, nil
}

// escalate reports a fault and does not return. When the sink returns
// anyway (or none is set) the original panic continues.
func (v *Invoker) escalate(fault entities.Fault, r any) {
	if v.sink != nil {
		v.sink.Fatal(fault)
	}
	panic(r)
}

func checkReturn(want entities.ReturnType, ret entities.Return) error {
	if ret.Kind() != want.Kind {
		return fmt.Errorf("kernel returned %s, signature declares %s", ret.Kind(), want.Kind)
	}
	if want.Kind != entities.KindArray {
		return nil
	}
	a := ret.Array()
	if a == nil {
		return fmt.Errorf("kernel returned a nil array")
	}
	if a.DType() != want.DType || a.Rank() != want.Rank {
		return fmt.Errorf("kernel returned %s[%d], signature declares %s[%d]", a.DType(), a.Rank(), want.DType, want.Rank)
	}
	return nil
}
