package broker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/kernelbridge/domain/entities"
	domainerrors "github.com/reglet-dev/kernelbridge/domain/errors"
	"github.com/reglet-dev/kernelbridge/domain/ports"
	"github.com/reglet-dev/kernelbridge/kernel"
)

type fakeJournal struct {
	err     error
	entries []entities.Descriptor
	encoded [][]byte
	mu      sync.Mutex
}

func (j *fakeJournal) Record(_ context.Context, d entities.Descriptor, encoded []byte) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, d)
	j.encoded = append(j.encoded, encoded)
	return j.err
}

type countingFactory struct {
	result entities.Value
	err    error
	descs  []entities.Descriptor
	args   [][]entities.Value
}

func (f *countingFactory) CreateSignature(_ context.Context, d entities.Descriptor, args []entities.Value) (entities.Value, error) {
	f.descs = append(f.descs, d)
	f.args = append(f.args, args)
	return f.result, f.err
}

func benchmarkSpecs(t *testing.T) map[string][]*entities.Specialization {
	t.Helper()
	reg, err := kernel.NewRegistry(
		kernel.WithMiddleware(kernel.PanicRecoveryMiddleware()),
		kernel.WithBundle(kernel.BenchmarkBundle()),
	)
	require.NoError(t, err)
	specs, err := kernel.Specializations(reg)
	require.NoError(t, err)
	return specs
}

func newBroker(t *testing.T, function string, opts ...Option) *Broker {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))}, opts...)
	b, err := New(function, benchmarkSpecs(t)[function], opts...)
	require.NoError(t, err)
	return b
}

func TestBroker_Fib(t *testing.T) {
	b := newBroker(t, "fib")

	got, err := b.Call(context.Background(), entities.Int(10))
	require.NoError(t, err)
	assert.Equal(t, entities.Int(55), got)
}

func TestBroker_QsortInPlace(t *testing.T) {
	b := newBroker(t, "qsort_kernel")
	a := entities.FromSlice([]float64{5, 3, 4, 1, 2})

	got, err := b.Call(context.Background(), a, entities.Int(0), entities.Int(4))
	require.NoError(t, err)

	assert.Same(t, a, got)
	data, _ := entities.Data[float64](a)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, data)
}

func TestBroker_Pisum(t *testing.T) {
	b := newBroker(t, "pisum")

	got, err := b.Call(context.Background())
	require.NoError(t, err)
	f, ok := got.(entities.Float)
	require.True(t, ok)
	assert.InDelta(t, 1.6448340718480652, float64(f), 1e-12)
}

func TestBroker_FallbackOnDTypeMismatch(t *testing.T) {
	factories := NewFactoryRegistry(nil)
	factory := &countingFactory{result: entities.Str("compiled elsewhere")}
	require.NoError(t, factories.Register(factory))

	b := newBroker(t, "qsort_kernel", WithFactories(factories))
	ints := entities.FromSlice([]int32{5, 3, 4, 1, 2})
	args := []entities.Value{ints, entities.Int(0), entities.Int(4)}

	got, err := b.Call(context.Background(), args...)
	require.NoError(t, err)

	assert.Equal(t, entities.Str("compiled elsewhere"), got, "factory result is returned unchanged")
	require.Len(t, factory.descs, 1, "factory runs exactly once")
	d := factory.descs[0]
	assert.Equal(t, "qsort_kernel", d.Function)
	assert.Equal(t, entities.Int32, d.Args[0].DType)
	assert.Equal(t, []string{"a", "lo", "hi"}, []string{d.Args[0].Name, d.Args[1].Name, d.Args[2].Name})
	assert.Equal(t, []string{kernel.QsortName}, d.Compiled)
	assert.Equal(t, entities.TypeTuple(args), d.TypeTuple())
	assert.Equal(t, args, factory.args[0])

	data, _ := entities.Data[int32](ints)
	assert.Equal(t, []int32{5, 3, 4, 1, 2}, data, "no kernel ran")
}

func TestBroker_FactoryErrorIsReturned(t *testing.T) {
	factories := NewFactoryRegistry(nil)
	want := errors.New("cannot compile")
	require.NoError(t, factories.Register(&countingFactory{err: want}))

	b := newBroker(t, "fib", WithFactories(factories))
	_, err := b.Call(context.Background(), entities.Float(10))
	assert.Equal(t, want, err)
}

func TestBroker_NoFactory(t *testing.T) {
	b := newBroker(t, "fib")

	_, err := b.Call(context.Background(), entities.Str("ten"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrFactoryNotSet))

	var cfgErr *domainerrors.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestBroker_FirstMatchWins(t *testing.T) {
	sig := entities.Signature{Function: "pick", Params: []entities.Param{entities.IntParam("n")}, Returns: entities.ReturnsInt()}
	wide := entities.MustSpecialization(sig, kernel.Func(func(context.Context, *entities.Frame) (entities.Return, error) {
		return entities.ReturnInt(1), nil
	}))
	narrow := entities.MustSpecialization(sig, kernel.Func(func(context.Context, *entities.Frame) (entities.Return, error) {
		return entities.ReturnInt(2), nil
	}))

	b, err := New("pick", []*entities.Specialization{wide, narrow})
	require.NoError(t, err)

	got, err := b.Call(context.Background(), entities.Int(0))
	require.NoError(t, err)
	assert.Equal(t, entities.Int(1), got)
}

func TestBroker_InvocationFailure(t *testing.T) {
	sig := entities.Signature{Function: "fails", Returns: entities.ReturnsInt()}
	s := entities.MustSpecialization(sig, kernel.Func(func(context.Context, *entities.Frame) (entities.Return, error) {
		return entities.Return{}, entities.ErrNoReturn
	}))
	factories := NewFactoryRegistry(nil)
	factory := &countingFactory{}
	require.NoError(t, factories.Register(factory))

	b, err := New("fails", []*entities.Specialization{s}, WithFactories(factories),
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	require.NoError(t, err)

	_, err = b.Call(context.Background())
	var invErr *domainerrors.InvocationError
	require.True(t, errors.As(err, &invErr))
	assert.Equal(t, "no_return", invErr.ToErrorDetail().Code)
	assert.Empty(t, factory.descs, "a failed invocation never falls back")
}

func TestBroker_InvocationFailureKeepsCause(t *testing.T) {
	sig := entities.Signature{Function: "fails", Returns: entities.ReturnsInt()}

	tests := []struct {
		name string
		fn   kernel.Func
		want error
	}{
		{
			name: "no return path",
			fn: func(context.Context, *entities.Frame) (entities.Return, error) {
				return entities.Return{}, entities.ErrNoReturn
			},
			want: entities.ErrNoReturn,
		},
		{
			name: "recovered panic",
			fn: func(context.Context, *entities.Frame) (entities.Return, error) {
				panic("boom")
			},
			want: kernel.ErrKernelPanic,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := kernel.NewRegistry(
				kernel.WithMiddleware(kernel.PanicRecoveryMiddleware()),
				kernel.WithKernel("fails_", tt.fn),
			)
			require.NoError(t, err)
			k, err := reg.Kernel("fails_")
			require.NoError(t, err)

			b, err := New("fails", []*entities.Specialization{entities.MustSpecialization(sig, k)},
				WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
			require.NoError(t, err)

			_, err = b.Call(context.Background())
			assert.ErrorIs(t, err, tt.want)

			var invErr *domainerrors.InvocationError
			require.ErrorAs(t, err, &invErr)
			assert.Equal(t, "fails_", invErr.Kernel)
		})
	}
}

func TestBroker_CoercionFailureDoesNotFallBack(t *testing.T) {
	factories := NewFactoryRegistry(nil)
	factory := &countingFactory{}
	require.NoError(t, factories.Register(factory))
	b := newBroker(t, "qsort_kernel", WithFactories(factories))

	a := entities.FromSlice([]float64{1, 2, 3})
	broken := a.View(2, []int{3}, []int{1})

	_, err := b.Call(context.Background(), broken, entities.Int(0), entities.Int(2))
	var coercion *domainerrors.CoercionError
	require.True(t, errors.As(err, &coercion))
	assert.Contains(t, err.Error(), "invalid argument type on a")
	assert.Empty(t, factory.descs)
}

func TestBroker_CoercedCopyIsReleased(t *testing.T) {
	b := newBroker(t, "qsort_kernel")
	a := entities.FromSlice([]float64{5, 0, 3, 0, 4, 0})

	got, err := b.Call(context.Background(), a.Strided(2), entities.Int(0), entities.Int(2))
	require.NoError(t, err)

	sorted, ok := got.(*entities.Array)
	require.True(t, ok)
	data, _ := entities.Data[float64](sorted)
	assert.Equal(t, []float64{3, 4, 5}, data)
	assert.Equal(t, int32(1), sorted.RefCount(), "the copy now belongs to the caller")

	orig, _ := entities.Data[float64](a)
	assert.Equal(t, []float64{5, 0, 3, 0, 4, 0}, orig)
}

func TestBroker_Journal(t *testing.T) {
	factories := NewFactoryRegistry(nil)
	require.NoError(t, factories.Register(ports.FactoryFunc(func(context.Context, entities.Descriptor, []entities.Value) (entities.Value, error) {
		return entities.None{}, nil
	})))

	t.Run("records fallbacks", func(t *testing.T) {
		j := &fakeJournal{}
		b := newBroker(t, "fib", WithFactories(factories), WithJournal(j))

		_, err := b.Call(context.Background(), entities.Float(1))
		require.NoError(t, err)
		_, err = b.Call(context.Background(), entities.Int(1))
		require.NoError(t, err)

		require.Len(t, j.entries, 1)
		assert.Equal(t, entities.KindFloat, j.entries[0].Args[0].Kind)
		assert.Contains(t, string(j.encoded[0]), `"function":"fib"`)
	})

	t.Run("journal errors never fail the call", func(t *testing.T) {
		var logs bytes.Buffer
		j := &fakeJournal{err: errors.New("disk full")}
		b := newBroker(t, "fib", WithFactories(factories), WithJournal(j),
			WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

		got, err := b.Call(context.Background(), entities.Float(1))
		require.NoError(t, err)
		assert.Equal(t, entities.None{}, got)
		assert.Contains(t, logs.String(), "disk full")
	})
}

func TestBroker_Describe(t *testing.T) {
	b := newBroker(t, "qsort_kernel", WithParamNames("arr"))

	d := b.Describe(entities.FromSlice([]int64{1}), entities.Int(0))
	assert.Equal(t, "arr", d.Args[0].Name)
	assert.Equal(t, "arg1", d.Args[1].Name)
}

func TestNew_Errors(t *testing.T) {
	specs := benchmarkSpecs(t)

	_, err := New("fib", specs["pisum"])
	var cfgErr *domainerrors.ConfigError
	require.True(t, errors.As(err, &cfgErr))

	_, err = New("fib", []*entities.Specialization{nil})
	assert.Error(t, err)
}

func TestBroker_ConcurrentCalls(t *testing.T) {
	b := newBroker(t, "fib")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := b.Call(context.Background(), entities.Int(15))
			assert.NoError(t, err)
			assert.Equal(t, entities.Int(610), got)
		}()
	}
	wg.Wait()
}
