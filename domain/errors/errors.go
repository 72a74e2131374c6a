// Package errors provides domain-specific error types for the kernel boundary.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/reglet-dev/kernelbridge/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// ErrFactoryNotSet is returned when a call misses every specialization and
// no fallback factory has been registered.
var ErrFactoryNotSet = &ConfigError{
	Field: "create_signature",
	Err:   stdErrors.New("no specialization matched and no factory is set"),
}

// DetailedError is an interface for custom error types that can convert themselves
// to a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to our structured ErrorDetail.
// This function recognizes custom error types and categorizes them appropriately.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// FromResult returns the failure carried by r as an *InvocationError, or nil
// when r succeeded. The result's cause stays in the chain.
func FromResult(r entities.Result) error {
	if r.OK() {
		return nil
	}
	if r.Cause == nil {
		return &InvocationError{Detail: r.Error}
	}
	var invErr *InvocationError
	if stdErrors.As(r.Cause, &invErr) {
		return r.Cause
	}
	return &InvocationError{Err: r.Cause, Detail: r.Error}
}

// InvocationError represents a recoverable kernel failure: the kernel raised,
// returned an error, or reached the end of its body without a value.
type InvocationError struct {
	Err    error
	Detail *entities.ErrorDetail
	Kernel string
}

func (e *InvocationError) Error() string {
	switch {
	case e.Err != nil && e.Kernel != "":
		return fmt.Sprintf("kernel %s failed: %v", e.Kernel, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("kernel failed: %v", e.Err)
	case e.Detail != nil:
		return e.Detail.Error()
	}
	return "kernel failed"
}

func (e *InvocationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	if e.Detail != nil {
		return e.Detail
	}
	return nil
}

// ToErrorDetail implements DetailedError.
func (e *InvocationError) ToErrorDetail() *entities.ErrorDetail {
	if e.Err == nil && e.Detail != nil {
		return e.Detail
	}
	code := "kernel_error"
	if stdErrors.Is(e.Err, entities.ErrNoReturn) {
		code = "no_return"
	}
	return &entities.ErrorDetail{Message: e.Error(), Type: "invocation", Code: code}
}

// CoercionError represents an argument that matched a signature but could not
// be converted to the native layout.
type CoercionError struct {
	Err   error
	Param string
}

func (e *CoercionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid argument type on %s: %v", e.Param, e.Err)
	}
	return fmt.Sprintf("invalid argument type on %s", e.Param)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *CoercionError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "coercion", Code: e.Param}
}

// ConfigError represents a configuration or setup error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "config", Code: e.Field}
}

// WireFormatError represents a descriptor that could not be encoded or decoded.
type WireFormatError struct {
	Err    error
	Format string
	Op     string // "encode" or "decode"
}

func (e *WireFormatError) Error() string {
	return fmt.Sprintf("%s descriptor %s failed: %v", e.Format, e.Op, e.Err)
}

func (e *WireFormatError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *WireFormatError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "wire_format", Code: e.Format + "_" + e.Op}
}

// SchemaError represents a document that does not conform to its JSON Schema.
type SchemaError struct {
	Err      error
	Document string
	Field    string
}

func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s schema violation at %s: %v", e.Document, e.Field, e.Err)
	}
	return fmt.Sprintf("%s schema violation: %v", e.Document, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SchemaError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "validation", Code: e.Field}
}
