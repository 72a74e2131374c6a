package signature

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema(t *testing.T) {
	data, err := Schema()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "object", decoded["type"])
	props, ok := decoded["properties"].(map[string]any)
	require.True(t, ok)
	for _, field := range []string{"function", "args", "compiled", "version"} {
		assert.Contains(t, props, field)
	}
	assert.ElementsMatch(t, []any{"function", "args", "version"}, decoded["required"])
}

func TestDescriptorSchemaCompiles(t *testing.T) {
	sch, err := descriptorSchema()
	require.NoError(t, err)
	assert.NotNil(t, sch)
}
