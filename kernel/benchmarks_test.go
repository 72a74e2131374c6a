package kernel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/kernelbridge/domain/entities"
)

func TestFib(t *testing.T) {
	tests := []struct {
		n, want int64
	}{
		{0, 0}, {1, 1}, {2, 1}, {10, 55}, {20, 6765},
	}
	for _, tt := range tests {
		f := entities.NewFrame(1)
		f.SetInt(0, tt.n)
		ret, err := Fib(context.Background(), f)
		require.NoError(t, err)
		assert.Equal(t, tt.want, ret.Int(), "fib(%d)", tt.n)
	}
}

func TestQsortKernel(t *testing.T) {
	a := entities.FromSlice([]float64{5, 3, 4, 1, 2})
	f := entities.NewFrame(3)
	f.SetArray(0, a)
	f.SetInt(1, 0)
	f.SetInt(2, 4)

	ret, err := QsortKernel(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, entities.KindArray, ret.Kind())
	assert.Same(t, a, ret.Array())
	data, _ := entities.Data[float64](a)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, data)
}

func TestQsortKernel_Subrange(t *testing.T) {
	a := entities.FromSlice([]float64{9, 8, 3, 1, 2, 0})
	f := entities.NewFrame(3)
	f.SetArray(0, a)
	f.SetInt(1, 1)
	f.SetInt(2, 4)

	_, err := QsortKernel(context.Background(), f)
	require.NoError(t, err)

	data, _ := entities.Data[float64](a)
	assert.Equal(t, []float64{9, 1, 2, 3, 8, 0}, data)
}

func TestQsortKernel_Duplicates(t *testing.T) {
	a := entities.FromSlice([]float64{2, 2, 1, 3, 1, 2})
	f := entities.NewFrame(3)
	f.SetArray(0, a)
	f.SetInt(1, 0)
	f.SetInt(2, 5)

	_, err := QsortKernel(context.Background(), f)
	require.NoError(t, err)

	data, _ := entities.Data[float64](a)
	assert.Equal(t, []float64{1, 1, 2, 2, 2, 3}, data)
}

func TestPisum(t *testing.T) {
	var want float64
	for k := 1; k <= 10000; k++ {
		want += 1.0 / float64(k*k)
	}

	ret, err := Pisum(context.Background(), entities.NewFrame(0))
	require.NoError(t, err)
	assert.Equal(t, entities.KindFloat, ret.Kind())
	assert.Equal(t, want, ret.Float())
	assert.InDelta(t, 1.6448340718480652, ret.Float(), 1e-12)
}

func TestSpecializations(t *testing.T) {
	reg, err := NewRegistry(WithBundle(BenchmarkBundle()))
	require.NoError(t, err)

	specs, err := Specializations(reg)
	require.NoError(t, err)

	require.Len(t, specs["fib"], 1)
	require.Len(t, specs["qsort_kernel"], 1)
	require.Len(t, specs["pisum"], 1)
	assert.Equal(t, FibName, specs["fib"][0].Name())
	assert.Equal(t, QsortName, specs["qsort_kernel"][0].Name())
	assert.Equal(t, PisumName, specs["pisum"][0].Name())
}

func TestSignaturesMangleToKernelNames(t *testing.T) {
	for name, sig := range Signatures() {
		assert.Equal(t, name, sig.Mangle())
	}
}
