// Package kernel provides an immutable registry of native kernels with a
// middleware chain, plus the built-in benchmark kernels.
//
// A registry is built once and never changes afterwards, so lookups are
// lock-free and the registry is safe for concurrent use:
//
//	reg, err := kernel.NewRegistry(
//	    kernel.WithMiddleware(kernel.PanicRecoveryMiddleware()),
//	    kernel.WithBundle(kernel.BenchmarkBundle()),
//	)
//	specs, err := kernel.Specializations(reg)
package kernel
