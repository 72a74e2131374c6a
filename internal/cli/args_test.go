package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/kernelbridge/domain/entities"
)

func TestParseArg(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		intArrays bool
		want      entities.ArgType
	}{
		{name: "int", in: "10", want: entities.ArgType{Kind: entities.KindInt, DType: entities.Int64}},
		{name: "negative int", in: "-3", want: entities.ArgType{Kind: entities.KindInt, DType: entities.Int64}},
		{name: "float", in: "2.5", want: entities.ArgType{Kind: entities.KindFloat, DType: entities.Float64}},
		{name: "exponent is float", in: "1e3", want: entities.ArgType{Kind: entities.KindFloat, DType: entities.Float64}},
		{name: "bool", in: "true", want: entities.ArgType{Kind: entities.KindBool, DType: entities.Bool8}},
		{name: "null", in: "null", want: entities.ArgType{Kind: entities.KindNone}},
		{name: "quoted string", in: `"s"`, want: entities.ArgType{Kind: entities.KindStr}},
		{name: "bare word", in: "hello", want: entities.ArgType{Kind: entities.KindStr}},
		{name: "float array", in: "[5,3,4,1,2]", want: entities.ArgType{Kind: entities.KindArray, DType: entities.Float64, Rank: 1}},
		{name: "int array", in: "[5,3,4,1,2]", intArrays: true, want: entities.ArgType{Kind: entities.KindArray, DType: entities.Int32, Rank: 1}},
		{name: "object", in: `{"a":1}`, want: entities.ArgType{Kind: entities.KindObject}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseArg(tt.in, tt.intArrays)
			require.NoError(t, err)
			assert.Equal(t, tt.want, entities.TypeOf(v))
		})
	}
}

func TestParseArg_Values(t *testing.T) {
	v, err := ParseArg("10", false)
	require.NoError(t, err)
	assert.Equal(t, entities.Int(10), v)

	v, err = ParseArg(`"s"`, false)
	require.NoError(t, err)
	assert.Equal(t, entities.Str("s"), v)

	v, err = ParseArg("[2,1.5]", false)
	require.NoError(t, err)
	got, ok := entities.ToSlice[float64](v.(*entities.Array))
	require.True(t, ok)
	assert.Equal(t, []float64{2, 1.5}, got)
}

func TestParseArgs_Errors(t *testing.T) {
	_, err := ParseArgs([]string{"1", `[1,"x"]`}, false)
	assert.ErrorContains(t, err, "argument 2")

	_, err = ParseArgs([]string{"[1.5]"}, true)
	assert.Error(t, err)
}
