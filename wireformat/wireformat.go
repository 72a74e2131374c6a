// Package wireformat defines the JSON wire format structures exchanged with
// fallback factories, the fallback journal and the CLI. These types must
// remain stable and backward compatible as they define the descriptor contract.
package wireformat

import "fmt"

// DescriptorWire is the JSON wire format of a call descriptor.
type DescriptorWire struct {
	Function string    `json:"function" yaml:"function" jsonschema:"minLength=1"`
	Args     []ArgWire `json:"args" yaml:"args"`
	Compiled []string  `json:"compiled,omitempty" yaml:"compiled,omitempty"`
	Version  int       `json:"version" yaml:"version" jsonschema:"minimum=1"`
}

// ArgWire is the JSON wire format of one described argument.
type ArgWire struct {
	Name     string `json:"name" yaml:"name" jsonschema:"minLength=1"`
	Kind     string `json:"kind" yaml:"kind" jsonschema:"enum=none,enum=bool,enum=int,enum=float,enum=str,enum=array,enum=object"`
	DType    string `json:"dtype,omitempty" yaml:"dtype,omitempty" jsonschema:"enum=bool,enum=int8,enum=int16,enum=int32,enum=int64,enum=uint8,enum=uint16,enum=uint32,enum=uint64,enum=float32,enum=float64"`
	TypeName string `json:"type_name,omitempty" yaml:"type_name,omitempty"`
	Shape    []int  `json:"shape,omitempty" yaml:"shape,omitempty"`
	Rank     int    `json:"rank" yaml:"rank" jsonschema:"minimum=0,maximum=32"`
}

// ResultWire is the JSON wire format of one call outcome, as printed by the CLI.
type ResultWire struct {
	Value    any          `json:"value,omitempty"`
	Error    *ErrorDetail `json:"error,omitempty"`
	Function string       `json:"function"`
	Kind     string       `json:"kind,omitempty"`
	Status   string       `json:"status"`
}

// SignatureWire is the JSON wire format of a compiled specialization.
type SignatureWire struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Function  string `json:"function"`
	Signature string `json:"signature"`
	Backend   string `json:"backend,omitempty"`
}

// ErrorDetail provides structured error information on the wire.
// Error Types: "mismatch", "invocation", "coercion", "config", "wire_format", "validation", "internal"
type ErrorDetail struct {
	Wrapped *ErrorDetail `json:"wrapped,omitempty"`
	Message string       `json:"message"`
	Type    string       `json:"type"`
	Code    string       `json:"code"`
	Stack   []byte       `json:"stack,omitempty"`
}

// Error implements the error interface for ErrorDetail.
func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Type != "" && e.Type != "internal" {
		msg = fmt.Sprintf("%s: %s", e.Type, msg)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped.Error())
	}
	return msg
}
