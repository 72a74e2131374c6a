package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/kernelbridge/application/config"
	"github.com/reglet-dev/kernelbridge/wireformat"
)

func TestGenerate_Descriptor(t *testing.T) {
	data, err := Generate(&wireformat.DescriptorWire{})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NotContains(t, decoded, "$id")
	assert.Equal(t, "object", decoded["type"])

	props := decoded["properties"].(map[string]any)
	args := props["args"].(map[string]any)
	assert.Equal(t, "array", args["type"])
}

func TestGenerate_Config(t *testing.T) {
	data, err := Generate(&config.Config{})
	require.NoError(t, err)

	s := string(data)
	for _, field := range []string{"log_level", "crash", "max_frames", "exit_code", "descriptor", "journal", "fault_handling"} {
		assert.Contains(t, s, `"`+field+`"`)
	}
}
