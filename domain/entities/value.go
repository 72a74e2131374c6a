package entities

import (
	"fmt"
	"strconv"
)

// Kind is the host-runtime category tag of a value.
type Kind string

const (
	KindNone   Kind = "none"
	KindBool   Kind = "bool"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindStr    Kind = "str"
	KindArray  Kind = "array"
	KindObject Kind = "object"
)

// Value is a sealed interface over the host's value representation.
// Only None, Bool, Int, Float, Str, *Array and Opaque implement it.
type Value interface {
	Kind() Kind
	hostValue()
}

// None is the host's empty value.
type None struct{}

func (None) Kind() Kind { return KindNone }
func (None) hostValue() {}

// Bool is a host boolean. It is never accepted where an int is declared.
type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (Bool) hostValue() {}

// Int is a host integer, always carried as int64.
type Int int64

func (Int) Kind() Kind { return KindInt }
func (Int) hostValue() {}

// Float is a host double precision float.
type Float float64

func (Float) Kind() Kind { return KindFloat }
func (Float) hostValue() {}

// Str is a host string.
type Str string

func (Str) Kind() Kind { return KindStr }
func (Str) hostValue() {}

// Opaque wraps any foreign object the layer does not understand.
// TypeName is reported in descriptors so the factory can see what was passed.
type Opaque struct {
	V        any
	TypeName string
}

func (Opaque) Kind() Kind { return KindObject }
func (Opaque) hostValue() {}

// NewOpaque wraps v, deriving the type name from its dynamic Go type.
func NewOpaque(v any) Opaque {
	return Opaque{V: v, TypeName: fmt.Sprintf("%T", v)}
}

// ArgType is the (kind, element type, rank) triple observed for one argument.
type ArgType struct {
	Kind  Kind
	DType DType
	Rank  int
}

func (t ArgType) String() string {
	switch {
	case t.Kind == KindArray:
		return string(t.DType) + "[" + strconv.Itoa(t.Rank) + "]"
	case t.DType != "":
		return string(t.DType)
	default:
		return string(t.Kind)
	}
}

// TypeOf reports the runtime type triple of v.
// Scalars report their natural width, str/object/none report no dtype.
func TypeOf(v Value) ArgType {
	switch x := v.(type) {
	case Bool:
		return ArgType{Kind: KindBool, DType: Bool8}
	case Int:
		return ArgType{Kind: KindInt, DType: Int64}
	case Float:
		return ArgType{Kind: KindFloat, DType: Float64}
	case *Array:
		if x == nil {
			return ArgType{Kind: KindNone}
		}
		return ArgType{Kind: KindArray, DType: x.DType(), Rank: x.Rank()}
	case nil:
		return ArgType{Kind: KindNone}
	default:
		return ArgType{Kind: v.Kind()}
	}
}

// TypeTuple returns TypeOf for every argument.
func TypeTuple(args []Value) []ArgType {
	out := make([]ArgType, len(args))
	for i, a := range args {
		out[i] = TypeOf(a)
	}
	return out
}
