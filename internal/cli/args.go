package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/reglet-dev/kernelbridge/domain/entities"
)

// ParseArg parses one command line argument as a JSON literal. Numbers
// without a fraction or exponent are ints. Arrays of numbers become float64
// arrays, or int32 arrays when intArrays is set. A bare word that is not
// valid JSON is taken as a string.
func ParseArg(s string, intArrays bool) (entities.Value, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return entities.Str(s), nil
	}

	switch x := v.(type) {
	case nil:
		return entities.None{}, nil
	case bool:
		return entities.Bool(x), nil
	case string:
		return entities.Str(x), nil
	case json.Number:
		return parseNumber(x)
	case []any:
		return parseArray(x, intArrays)
	}
	return entities.NewOpaque(v), nil
}

// ParseArgs parses every argument with ParseArg.
func ParseArgs(args []string, intArrays bool) ([]entities.Value, error) {
	out := make([]entities.Value, len(args))
	for i, a := range args {
		v, err := ParseArg(a, intArrays)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseNumber(n json.Number) (entities.Value, error) {
	if !strings.ContainsAny(n.String(), ".eE") {
		i, err := n.Int64()
		if err == nil {
			return entities.Int(i), nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", n, err)
	}
	return entities.Float(f), nil
}

func parseArray(items []any, intArrays bool) (entities.Value, error) {
	if intArrays {
		data := make([]int32, len(items))
		for i, it := range items {
			n, ok := it.(json.Number)
			if !ok {
				return nil, fmt.Errorf("array element %d is not a number", i)
			}
			v, err := n.Int64()
			if err != nil {
				return nil, fmt.Errorf("array element %d: %w", i, err)
			}
			data[i] = int32(v) //nolint:gosec // G115: truncation is the caller's choice
		}
		return entities.FromSlice(data), nil
	}

	data := make([]float64, len(items))
	for i, it := range items {
		n, ok := it.(json.Number)
		if !ok {
			return nil, fmt.Errorf("array element %d is not a number", i)
		}
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("array element %d: %w", i, err)
		}
		data[i] = f
	}
	return entities.FromSlice(data), nil
}

// formatArgs renders parsed arguments for the repl history and verbose logs.
func formatArgs(args []entities.Value) string {
	var b bytes.Buffer
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(entities.TypeOf(a).String())
	}
	return b.String()
}
