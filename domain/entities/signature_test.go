package entities

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qsortSignature() Signature {
	return Signature{
		Function: "qsort_kernel",
		Params: []Param{
			ArrayParam("a", Float64, 1),
			IntParam("lo"),
			IntParam("hi"),
		},
		Returns: ReturnsArray(Float64, 1),
	}
}

func TestSignature_Mangle(t *testing.T) {
	tests := []struct {
		name string
		sig  Signature
		want string
	}{
		{"fib", Signature{Function: "fib", Params: []Param{IntParam("n")}, Returns: ReturnsInt()}, "fib_J"},
		{"pisum", Signature{Function: "pisum", Returns: ReturnsFloat()}, "pisum_"},
		{"qsort", qsortSignature(), "qsort_kernel_d1JJ"},
		{"mixed", Signature{Function: "f", Params: []Param{BoolParam("b"), FloatParam("x"), ArrayParam("m", Int32, 2)}}, "f_odi2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sig.Mangle())
		})
	}
}

func TestSignature_String(t *testing.T) {
	assert.Equal(t, "qsort_kernel(a float64[1], lo int64, hi int64) -> float64[1]", qsortSignature().String())
}

func TestSignature_Validate(t *testing.T) {
	require.NoError(t, qsortSignature().Validate())

	dup := Signature{Function: "f", Params: []Param{IntParam("x"), IntParam("x")}}
	assert.ErrorContains(t, dup.Validate(), "duplicate name")

	badDType := Signature{Function: "f", Params: []Param{ArrayParam("a", "complex", 1)}}
	assert.ErrorContains(t, badDType.Validate(), "unknown dtype")

	scalarRank := Signature{Function: "f", Params: []Param{{Name: "x", Kind: KindInt, Rank: 1}}}
	assert.ErrorContains(t, scalarRank.Validate(), "scalar with rank")

	extents := Signature{Function: "f", Params: []Param{ArrayParam("a", Float64, 2).Fixed(3)}}
	assert.ErrorContains(t, extents.Validate(), "1 extents for rank 2")
}

func TestNewSpecialization(t *testing.T) {
	k := KernelFunc(func(context.Context, *Frame) (Return, error) { return ReturnNone(), nil })

	s, err := NewSpecialization(qsortSignature(), k)
	require.NoError(t, err)
	assert.Equal(t, "qsort_kernel_d1JJ", s.Name())
	assert.Equal(t, "qsort_kernel", s.Function())

	again := MustSpecialization(qsortSignature(), k)
	assert.Equal(t, s.ID(), again.ID(), "ids derive from the mangled name")

	_, err = NewSpecialization(qsortSignature(), nil)
	require.Error(t, err)

	_, err = NewSpecialization(Signature{}, k)
	require.Error(t, err)
}

func TestSpecialization_SignatureIsCopied(t *testing.T) {
	k := KernelFunc(func(context.Context, *Frame) (Return, error) { return ReturnNone(), nil })
	s := MustSpecialization(qsortSignature(), k)

	sig := s.Signature()
	sig.Params[0].Name = "changed"
	assert.Equal(t, "a", s.Params()[0].Name)
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  ArgType
	}{
		{"int", Int(1), ArgType{Kind: KindInt, DType: Int64}},
		{"float", Float(1), ArgType{Kind: KindFloat, DType: Float64}},
		{"bool", Bool(true), ArgType{Kind: KindBool, DType: Bool8}},
		{"str", Str("x"), ArgType{Kind: KindStr}},
		{"none", None{}, ArgType{Kind: KindNone}},
		{"nil", nil, ArgType{Kind: KindNone}},
		{"object", NewOpaque(struct{}{}), ArgType{Kind: KindObject}},
		{"array", FromSlice([]int32{1, 2}), ArgType{Kind: KindArray, DType: Int32, Rank: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeOf(tt.value))
		})
	}
}

func TestDescriptor_TypeTuple(t *testing.T) {
	args := []Value{FromSlice([]float64{1}), Int(0), Int(1)}
	d := Descriptor{
		Function: "qsort_kernel",
		Args: []ArgDescriptor{
			{Name: "a", Kind: KindArray, DType: Float64, Rank: 1},
			{Name: "lo", Kind: KindInt, DType: Int64},
			{Name: "hi", Kind: KindInt, DType: Int64},
		},
	}
	assert.Equal(t, TypeTuple(args), d.TypeTuple())
	assert.Equal(t, "qsort_kernel_d1JJ", d.Signature(ReturnsArray(Float64, 1)).Mangle())
}
