package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/reglet-dev/kernelbridge/application/signature"
	"github.com/reglet-dev/kernelbridge/domain/entities"
	"github.com/reglet-dev/kernelbridge/wireformat"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The call failed (invocation failure, no factory)
	ExitCommandError = 2 // Command error (bad arguments, unreadable config)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Err     error
	Message string
	Code    int
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter renders command results as text, JSON or YAML.
type OutputFormatter struct {
	Writer  io.Writer
	Format  string
	Verbose bool
}

// Print writes data in the configured format. Text output uses the
// value's own formatting.
func (f *OutputFormatter) Print(data any) error {
	switch f.Format {
	case "json":
		enc := json.NewEncoder(f.Writer)
		enc.SetEscapeHTML(false)
		return enc.Encode(data)
	case "yaml":
		return writeYAML(f.Writer, data)
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// writeYAML goes through JSON so that json tags name the YAML keys.
func writeYAML(w io.Writer, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// hostValue converts a host value into plain data for printing.
func hostValue(v entities.Value) any {
	switch x := v.(type) {
	case nil, entities.None:
		return nil
	case entities.Bool:
		return bool(x)
	case entities.Int:
		return int64(x)
	case entities.Float:
		return float64(x)
	case entities.Str:
		return string(x)
	case *entities.Array:
		return x.Elements()
	case entities.Opaque:
		return x.V
	}
	return fmt.Sprintf("%v", v)
}

func wireError(d *entities.ErrorDetail) *wireformat.ErrorDetail {
	if d == nil {
		return nil
	}
	return &wireformat.ErrorDetail{
		Message: d.Message,
		Type:    d.Type,
		Code:    d.Code,
		Wrapped: wireError(d.Wrapped),
	}
}

// resultText renders a ResultWire for text output.
func resultText(r wireformat.ResultWire) string {
	switch r.Status {
	case "success":
		return fmt.Sprintf("%s = %v", r.Function, r.Value)
	case "fallback":
		if d, ok := r.Value.(wireformat.DescriptorWire); ok {
			types := signature.FromWire(d).TypeTuple()
			return fmt.Sprintf("%s: no specialization accepts %s, handed to the factory", r.Function, typeList(types))
		}
		return fmt.Sprintf("%s: handed to the factory", r.Function)
	}
	return fmt.Sprintf("%s failed: %v", r.Function, r.Error)
}
