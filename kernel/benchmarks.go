package kernel

import (
	"context"
	"fmt"
	"unsafe"

	"github.com/reglet-dev/kernelbridge/domain/entities"
)

// Fib computes the n-th Fibonacci number recursively.
func Fib(_ context.Context, f *entities.Frame) (entities.Return, error) {
	return entities.ReturnInt(fib(f.Int(0))), nil
}

func fib(n int64) int64 {
	if n < 2 {
		return n
	}
	return fib(n-1) + fib(n-2)
}

// QsortKernel sorts a[lo..hi] in place and returns a. Elements are reached
// through the array's base pointer without bounds checks, so bounds outside
// the array read and write arbitrary memory.
func QsortKernel(_ context.Context, f *entities.Frame) (entities.Return, error) {
	base := f.Pointer(0)
	if base == nil && f.Extent(0, 0) > 0 {
		return entities.Return{}, fmt.Errorf("array argument has no storage")
	}
	qsort((*float64)(base), f.Int(1), f.Int(2))
	return entities.ReturnArray(f.Array(0)), nil
}

//go:nocheckptr
//go:norace
func at(base *float64, i int64) *float64 {
	return (*float64)(unsafe.Add(unsafe.Pointer(base), uintptr(i)*unsafe.Sizeof(*base)))
}

//go:nocheckptr
//go:norace
func qsort(a *float64, lo, hi int64) {
	i, j := lo, hi
	for i < hi {
		pivot := *at(a, (lo+hi)/2)
		for i <= j {
			for *at(a, i) < pivot {
				i++
			}
			for *at(a, j) > pivot {
				j--
			}
			if i <= j {
				*at(a, i), *at(a, j) = *at(a, j), *at(a, i)
				i++
				j--
			}
		}
		if lo < j {
			qsort(a, lo, j)
		}
		lo, j = i, hi
	}
}

const (
	pisumRuns  = 500
	pisumTerms = 10000
)

// Pisum computes the partial sum of 1/k² for k = 1..10000, repeated 500 times.
// Every run restarts from zero, so the result is one partial sum.
func Pisum(_ context.Context, _ *entities.Frame) (entities.Return, error) {
	var sum float64
	for j := 1; j <= pisumRuns; j++ {
		sum = 0
		for k := int64(1); k <= pisumTerms; k++ {
			sum += 1.0 / float64(k*k)
		}
	}
	return entities.ReturnFloat(sum), nil
}
