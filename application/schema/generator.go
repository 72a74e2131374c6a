// Package schema generates JSON Schemas from Go types.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Generate creates a JSON schema (Draft 2020-12) from a Go struct.
// Definitions are expanded inline and the schema carries no $id, so the
// result can be registered with a validator under any resource name.
func Generate(v any) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand struct definitions inline
		Anonymous:      true,
	}
	s := reflector.Reflect(v)

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}
