package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// Param declares one positional parameter of a specialization.
type Param struct {
	// Name is the parameter name in the logical function.
	Name string `json:"name" yaml:"name" validate:"required"`

	// Kind is the expected host category.
	Kind Kind `json:"kind" yaml:"kind" validate:"required,oneof=bool int float array"`

	// DType is the element type for arrays. Scalars use their natural width
	// and may leave it empty.
	DType DType `json:"dtype,omitempty" yaml:"dtype,omitempty" validate:"required_if=Kind array"`

	// Rank is the number of dimensions, zero for scalars.
	Rank int `json:"rank" yaml:"rank" validate:"gte=0,lte=32"`

	// Extents optionally fixes dimension sizes. A negative entry is variable.
	Extents []int `json:"extents,omitempty" yaml:"extents,omitempty"`
}

// ReturnType declares what the kernel hands back.
type ReturnType struct {
	Kind  Kind  `json:"kind" yaml:"kind" validate:"required,oneof=none bool int float array"`
	DType DType `json:"dtype,omitempty" yaml:"dtype,omitempty" validate:"required_if=Kind array"`
	Rank  int   `json:"rank" yaml:"rank" validate:"gte=0,lte=32"`
}

// Signature is the compiled assumption set of one specialization.
type Signature struct {
	Function string     `json:"function" yaml:"function" validate:"required"`
	Params   []Param    `json:"params" yaml:"params" validate:"dive"`
	Returns  ReturnType `json:"returns" yaml:"returns"`
}

// Scalar parameter constructors.

func IntParam(name string) Param   { return Param{Name: name, Kind: KindInt, DType: Int64} }
func FloatParam(name string) Param { return Param{Name: name, Kind: KindFloat, DType: Float64} }
func BoolParam(name string) Param  { return Param{Name: name, Kind: KindBool, DType: Bool8} }

// ArrayParam declares an array parameter with variable extents.
func ArrayParam(name string, dtype DType, rank int) Param {
	return Param{Name: name, Kind: KindArray, DType: dtype, Rank: rank}
}

// Fixed returns a copy of p with fixed extents (negative entries stay variable).
func (p Param) Fixed(extents ...int) Param {
	p.Extents = append([]int(nil), extents...)
	return p
}

// ScalarDType returns the dtype a parameter binds to natively.
func (p Param) ScalarDType() DType {
	if p.DType != "" {
		return p.DType
	}
	switch p.Kind {
	case KindInt:
		return Int64
	case KindFloat:
		return Float64
	case KindBool:
		return Bool8
	}
	return ""
}

// Code returns the mangling fragment of p, e.g. "J" or "d1".
func (p Param) Code() string {
	c := p.ScalarDType().Code()
	if c == 0 {
		c = 'x'
	}
	if p.Kind == KindArray {
		return string(c) + strconv.Itoa(p.Rank)
	}
	return string(c)
}

// Returns constructors.

func ReturnsNone() ReturnType  { return ReturnType{Kind: KindNone} }
func ReturnsInt() ReturnType   { return ReturnType{Kind: KindInt, DType: Int64} }
func ReturnsFloat() ReturnType { return ReturnType{Kind: KindFloat, DType: Float64} }
func ReturnsBool() ReturnType  { return ReturnType{Kind: KindBool, DType: Bool8} }

func ReturnsArray(dtype DType, rank int) ReturnType {
	return ReturnType{Kind: KindArray, DType: dtype, Rank: rank}
}

// Mangle returns the specialization name, function name plus one code per
// parameter: fib_J, pisum_, qsort_kernel_d1JJ.
func (s Signature) Mangle() string {
	var b strings.Builder
	b.WriteString(s.Function)
	b.WriteByte('_')
	for _, p := range s.Params {
		b.WriteString(p.Code())
	}
	return b.String()
}

// ParamNames returns the declared names in order.
func (s Signature) ParamNames() []string {
	names := make([]string, len(s.Params))
	for i, p := range s.Params {
		names[i] = p.Name
	}
	return names
}

// String renders the signature as "fib(n int64) -> int64".
func (s Signature) String() string {
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		t := ArgType{Kind: p.Kind, DType: p.ScalarDType(), Rank: p.Rank}
		parts[i] = fmt.Sprintf("%s %s", p.Name, t)
	}
	ret := ArgType{Kind: s.Returns.Kind, DType: s.Returns.DType, Rank: s.Returns.Rank}
	return fmt.Sprintf("%s(%s) -> %s", s.Function, strings.Join(parts, ", "), ret)
}

// Validate checks the structural rules the validator tags cannot express.
func (s Signature) Validate() error {
	seen := make(map[string]bool, len(s.Params))
	for i, p := range s.Params {
		if seen[p.Name] {
			return fmt.Errorf("param %d: duplicate name %q", i, p.Name)
		}
		seen[p.Name] = true
		if p.Kind == KindArray && !p.DType.Valid() {
			return fmt.Errorf("param %q: unknown dtype %q", p.Name, p.DType)
		}
		if p.Kind != KindArray && p.Rank != 0 {
			return fmt.Errorf("param %q: scalar with rank %d", p.Name, p.Rank)
		}
		if len(p.Extents) > 0 && len(p.Extents) != p.Rank {
			return fmt.Errorf("param %q: %d extents for rank %d", p.Name, len(p.Extents), p.Rank)
		}
	}
	if s.Returns.Kind == KindArray && !s.Returns.DType.Valid() {
		return fmt.Errorf("returns: unknown dtype %q", s.Returns.DType)
	}
	return nil
}
