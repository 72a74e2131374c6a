package kernel

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/reglet-dev/kernelbridge/domain/entities"
)

// Middleware wraps a Func to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
type Middleware func(next Func) Func

// Option is a functional option for configuring a Registry.
type Option func(*registryBuilder)

// PanicRecoveryMiddleware converts kernel panics into *PanicError values.
// Memory faults are re-raised untouched: they are fatal and must reach the
// invoker's fault escalation.
func PanicRecoveryMiddleware() Middleware {
	return func(next Func) Func {
		return func(ctx context.Context, f *entities.Frame) (ret entities.Return, err error) {
			defer func() {
				if r := recover(); r != nil {
					if _, fault := entities.FaultFromPanic(r); fault {
						panic(r)
					}
					ret = entities.Return{}
					err = &PanicError{Value: r, Stack: debug.Stack()}
				}
			}()
			return next(ctx, f)
		}
	}
}

// LoggingMiddleware logs kernel invocations at debug level and failures at warn.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Func) Func {
		return func(ctx context.Context, f *entities.Frame) (entities.Return, error) {
			name := NameFrom(ctx)
			logger.DebugContext(ctx, "invoking kernel", "kernel", name, "args", f.Len())
			ret, err := next(ctx, f)
			if err != nil {
				logger.WarnContext(ctx, "kernel failed", "kernel", name, "error", err)
			}
			return ret, err
		}
	}
}

type durationKey struct{}

// TimingMiddleware records the kernel's wall time in the KernelContext and
// logs it at debug level.
func TimingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Func) Func {
		return func(ctx context.Context, f *entities.Frame) (entities.Return, error) {
			start := time.Now()
			ret, err := next(ctx, f)
			elapsed := time.Since(start)
			if kc, ok := ctx.(KernelContext); ok {
				kc.SetValue(durationKey{}, elapsed)
			}
			logger.DebugContext(ctx, "kernel finished", "kernel", NameFrom(ctx), "duration", elapsed)
			return ret, err
		}
	}
}

// DurationFrom returns the duration recorded by TimingMiddleware.
func DurationFrom(ctx context.Context) (time.Duration, bool) {
	kc, ok := ctx.(KernelContext)
	if !ok {
		return 0, false
	}
	v, ok := kc.GetValue(durationKey{})
	if !ok {
		return 0, false
	}
	d, ok := v.(time.Duration)
	return d, ok
}
