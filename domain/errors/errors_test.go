package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/kernelbridge/domain/entities"
)

func TestInvocationError(t *testing.T) {
	err := &InvocationError{Kernel: "fib_J", Err: entities.ErrNoReturn}

	assert.Equal(t, "kernel fib_J failed: no return type passed", err.Error())
	assert.True(t, errors.Is(err, entities.ErrNoReturn))

	detail := err.ToErrorDetail()
	assert.Equal(t, "invocation", detail.Type)
	assert.Equal(t, "no_return", detail.Code)
}

func TestInvocationError_FromDetail(t *testing.T) {
	detail := entities.NewErrorDetail("invocation", "boom").WithCode("kernel_error")
	err := &InvocationError{Detail: detail}

	assert.Equal(t, "invocation: boom [kernel_error]", err.Error())
	assert.Same(t, detail, err.ToErrorDetail())

	var target *entities.ErrorDetail
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "boom", target.Message)
}

func TestFromResult(t *testing.T) {
	assert.NoError(t, FromResult(entities.ResultSuccess(entities.Int(1))))

	err := FromResult(entities.ResultFailure(entities.NewErrorDetail("invocation", "x")))
	var invErr *InvocationError
	require.True(t, errors.As(err, &invErr))

	t.Run("invocation cause is returned as is", func(t *testing.T) {
		cause := &InvocationError{Kernel: "fib_J", Err: entities.ErrNoReturn}
		err := FromResult(entities.ResultFailureFrom(cause.ToErrorDetail(), cause))
		assert.Same(t, cause, err)
		assert.ErrorIs(t, err, entities.ErrNoReturn)
	})

	t.Run("other causes are wrapped", func(t *testing.T) {
		cause := fmt.Errorf("decode: %w", entities.ErrNoReturn)
		detail := entities.NewErrorDetail("internal", cause.Error())
		err := FromResult(entities.ResultFailureFrom(detail, cause))

		var invErr *InvocationError
		require.ErrorAs(t, err, &invErr)
		assert.Same(t, detail, invErr.Detail)
		assert.ErrorIs(t, err, entities.ErrNoReturn)
	})
}

func TestCoercionError(t *testing.T) {
	base := fmt.Errorf("view exceeds storage")
	err := &CoercionError{Param: "a", Err: base}

	assert.Equal(t, "invalid argument type on a: view exceeds storage", err.Error())
	assert.True(t, errors.Is(err, base))
	assert.Equal(t, "coercion", err.ToErrorDetail().Type)
	assert.Equal(t, "invalid argument type on b", (&CoercionError{Param: "b"}).Error())
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Field: "crash.max_frames", Err: fmt.Errorf("must be <= 64")}
	assert.Equal(t, "config validation failed for field 'crash.max_frames': must be <= 64", err.Error())

	noField := &ConfigError{Err: fmt.Errorf("bad")}
	assert.Equal(t, "config validation failed: bad", noField.Error())
}

func TestErrFactoryNotSet(t *testing.T) {
	wrapped := fmt.Errorf("call qsort_kernel: %w", ErrFactoryNotSet)
	assert.True(t, errors.Is(wrapped, ErrFactoryNotSet))

	var cfgErr *ConfigError
	require.True(t, errors.As(wrapped, &cfgErr))
	assert.Equal(t, "create_signature", cfgErr.Field)
}

func TestWireFormatError(t *testing.T) {
	err := &WireFormatError{Format: "json", Op: "decode", Err: fmt.Errorf("unexpected EOF")}
	assert.Equal(t, "json descriptor decode failed: unexpected EOF", err.Error())
	assert.Equal(t, "json_decode", err.ToErrorDetail().Code)
}

func TestSchemaError(t *testing.T) {
	err := &SchemaError{Document: "descriptor", Field: "/args/0/kind", Err: fmt.Errorf("value must be one of")}
	assert.Equal(t, "descriptor schema violation at /args/0/kind: value must be one of", err.Error())
	assert.Equal(t, "validation", err.ToErrorDetail().Type)
}

func TestToErrorDetail(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, ToErrorDetail(nil))
	})

	t.Run("detailed error", func(t *testing.T) {
		detail := ToErrorDetail(fmt.Errorf("wrap: %w", &CoercionError{Param: "a"}))
		assert.Equal(t, "coercion", detail.Type)
		assert.Equal(t, "a", detail.Code)
	})

	t.Run("generic error", func(t *testing.T) {
		detail := ToErrorDetail(errors.New("plain"))
		assert.Equal(t, "internal", detail.Type)
		assert.Equal(t, "plain", detail.Message)
	})
}
