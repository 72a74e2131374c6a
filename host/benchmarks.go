package host

import (
	"context"
	"fmt"
	"sort"

	"github.com/reglet-dev/kernelbridge/domain/entities"
	"github.com/reglet-dev/kernelbridge/kernel"
)

// BenchmarkModule is the name of the module built by LoadBenchmarks.
const BenchmarkModule = "benchmarks"

// LoadBenchmarks loads the built-in fib, qsort_kernel and pisum
// specializations. Kernels run behind panic recovery, and behind debug
// logging and timing when a logger is configured.
func LoadBenchmarks(ctx context.Context, opts ...Option) (*Module, error) {
	mc := defaultModuleConfig()
	for _, opt := range opts {
		opt(&mc)
	}

	mws := []kernel.Middleware{kernel.PanicRecoveryMiddleware()}
	if mc.logger != nil {
		mws = append(mws, kernel.LoggingMiddleware(mc.logger), kernel.TimingMiddleware(mc.logger))
	}
	reg, err := kernel.NewRegistry(
		kernel.WithBundle(kernel.BenchmarkBundle()),
		kernel.WithMiddleware(mws...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kernel registry: %w", err)
	}

	byFunction, err := kernel.Specializations(reg)
	if err != nil {
		return nil, err
	}
	functions := make([]string, 0, len(byFunction))
	for fn := range byFunction {
		functions = append(functions, fn)
	}
	sort.Strings(functions)

	var specs []*entities.Specialization
	for _, fn := range functions {
		specs = append(specs, byFunction[fn]...)
	}
	return Load(ctx, BenchmarkModule, specs, opts...)
}
