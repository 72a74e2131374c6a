package signature

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	sschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/reglet-dev/kernelbridge/application/schema"
	domainerrors "github.com/reglet-dev/kernelbridge/domain/errors"
	"github.com/reglet-dev/kernelbridge/wireformat"
)

const descriptorSchemaURL = "descriptor.schema.json"

var (
	compiledOnce   sync.Once
	compiledSchema *sschema.Schema
	compiledErr    error
)

// Schema returns the JSON Schema (Draft 2020-12) of the wire descriptor.
func Schema() ([]byte, error) {
	return schema.Generate(&wireformat.DescriptorWire{})
}

func descriptorSchema() (*sschema.Schema, error) {
	compiledOnce.Do(func() {
		data, err := Schema()
		if err != nil {
			compiledErr = err
			return
		}
		compiler := sschema.NewCompiler()
		if err := compiler.AddResource(descriptorSchemaURL, bytes.NewReader(data)); err != nil {
			compiledErr = fmt.Errorf("failed to add descriptor schema: %w", err)
			return
		}
		compiledSchema, compiledErr = compiler.Compile(descriptorSchemaURL)
	})
	return compiledSchema, compiledErr
}

// validateDocument checks a decoded JSON document against the descriptor schema.
func validateDocument(doc any) error {
	sch, err := descriptorSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		var ve *sschema.ValidationError
		if errors.As(err, &ve) {
			leaf := deepestCause(ve)
			return &domainerrors.SchemaError{
				Document: "descriptor",
				Field:    leaf.InstanceLocation,
				Err:      errors.New(leaf.Message),
			}
		}
		return &domainerrors.SchemaError{Document: "descriptor", Err: err}
	}
	return nil
}

func deepestCause(ve *sschema.ValidationError) *sschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

// validateWire checks a wire descriptor produced by a non-JSON decoder.
func validateWire(w wireformat.DescriptorWire) error {
	raw, err := json.Marshal(w)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	return validateDocument(doc)
}
