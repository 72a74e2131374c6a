package kernel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/kernelbridge/domain/entities"
)

func constKernel(v int64) Func {
	return func(context.Context, *entities.Frame) (entities.Return, error) {
		return entities.ReturnInt(v), nil
	}
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry(
		WithKernel("b", constKernel(2)),
		WithKernel("a", constKernel(1)),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, reg.Names())
	assert.True(t, reg.Has("a"))
	assert.False(t, reg.Has("c"))

	ret, err := reg.Invoke(context.Background(), "b", entities.NewFrame(0))
	require.NoError(t, err)
	assert.Equal(t, int64(2), ret.Int())
}

func TestNewRegistry_Errors(t *testing.T) {
	_, err := NewRegistry(WithKernel("a", constKernel(1)), WithKernel("a", constKernel(2)))
	assert.ErrorContains(t, err, `duplicate kernel name: "a"`)

	_, err = NewRegistry(WithKernel("", constKernel(1)))
	assert.ErrorContains(t, err, "cannot be empty")

	_, err = NewRegistry(WithKernel("x", nil))
	assert.ErrorContains(t, err, "has no body")

	_, err = NewRegistry(WithBundle(BenchmarkBundle()), WithKernel(FibName, constKernel(0)))
	assert.Error(t, err)
}

func TestRegistry_NotFound(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), "missing", entities.NewFrame(0))
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "missing", nf.Name)

	_, err = reg.Kernel("missing")
	assert.Error(t, err)
}

func TestRegistry_NamesIsACopy(t *testing.T) {
	reg, err := NewRegistry(WithKernel("a", constKernel(1)))
	require.NoError(t, err)

	names := reg.Names()
	names[0] = "changed"
	assert.Equal(t, []string{"a"}, reg.Names())
}

func TestRegistry_KernelCarriesName(t *testing.T) {
	var seen string
	reg, err := NewRegistry(WithKernel("named", func(ctx context.Context, _ *entities.Frame) (entities.Return, error) {
		seen = NameFrom(ctx)
		return entities.ReturnNone(), nil
	}))
	require.NoError(t, err)

	k, err := reg.Kernel("named")
	require.NoError(t, err)
	_, err = k.Call(context.Background(), entities.NewFrame(0))
	require.NoError(t, err)
	assert.Equal(t, "named", seen)
}
