package wireformat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorWire_OmitsEmpty(t *testing.T) {
	d := DescriptorWire{
		Function: "fib",
		Version:  1,
		Args:     []ArgWire{{Name: "n", Kind: "int", DType: "int64"}},
	}

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"function":"fib","version":1,"args":[{"name":"n","kind":"int","dtype":"int64","rank":0}]}`, string(data))
}

func TestErrorDetail_Error(t *testing.T) {
	var nilErr *ErrorDetail
	assert.Equal(t, "", nilErr.Error())

	e := &ErrorDetail{
		Message: "kernel failed",
		Type:    "invocation",
		Code:    "no_return",
		Wrapped: &ErrorDetail{Message: "no return type passed", Type: "internal"},
	}
	assert.Equal(t, "invocation: kernel failed [no_return]: no return type passed", e.Error())
}
