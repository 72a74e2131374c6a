// Package testutil provides shared fakes and assertions for kernelbridge tests.
package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/kernelbridge/domain/entities"
)

// AssertJSONEqual compares two JSON strings for equality, ignoring formatting
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var expectedJSON, actualJSON interface{}
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedJSON), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualJSON), "actual JSON is invalid")

	assert.Equal(t, expectedJSON, actualJSON, msgAndArgs...)
}

// MustArray builds an array or fails the test.
func MustArray[T entities.Element](t *testing.T, data []T, shape ...int) *entities.Array {
	t.Helper()
	a, err := entities.NewArray(data, shape...)
	require.NoError(t, err)
	return a
}

// AssertFloat64s asserts that v is a float64 array holding want.
func AssertFloat64s(t *testing.T, want []float64, v entities.Value, msgAndArgs ...interface{}) {
	t.Helper()
	a, ok := v.(*entities.Array)
	require.True(t, ok, "value is %T, not an array", v)
	got, ok := entities.ToSlice[float64](a)
	require.True(t, ok, "array dtype is %s", a.DType())
	assert.Equal(t, want, got, msgAndArgs...)
}

// AssertTypeTuple asserts the (kind, dtype, rank) triples of a descriptor.
func AssertTypeTuple(t *testing.T, want []entities.ArgType, d entities.Descriptor) {
	t.Helper()
	assert.Equal(t, want, d.TypeTuple())
}
