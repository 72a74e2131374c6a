package kernel

// Bundle is a pre-configured set of related kernels.
type Bundle interface {
	// Kernels returns a map of kernel names to bodies.
	Kernels() map[string]Func
}

// staticBundle implements Bundle with a fixed set of kernels.
type staticBundle struct {
	kernels map[string]Func
}

func (b *staticBundle) Kernels() map[string]Func {
	return b.kernels
}

// Kernel names of the benchmark bundle. They are the mangled names of the
// specializations the kernels are compiled for.
const (
	FibName   = "fib_J"
	QsortName = "qsort_kernel_d1JJ"
	PisumName = "pisum_"
)

// BenchmarkBundle returns the built-in benchmark kernels:
// fib_J, qsort_kernel_d1JJ, pisum_.
func BenchmarkBundle() Bundle {
	return &staticBundle{
		kernels: map[string]Func{
			FibName:   Fib,
			QsortName: QsortKernel,
			PisumName: Pisum,
		},
	}
}
