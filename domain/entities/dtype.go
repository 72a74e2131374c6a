package entities

// DType names an array element type (or a scalar's native width).
type DType string

const (
	Bool8   DType = "bool"
	Int8    DType = "int8"
	Int16   DType = "int16"
	Int32   DType = "int32"
	Int64   DType = "int64"
	Uint8   DType = "uint8"
	Uint16  DType = "uint16"
	Uint32  DType = "uint32"
	Uint64  DType = "uint64"
	Float32 DType = "float32"
	Float64 DType = "float64"
)

// dtypeCodes are the one-letter codes used in mangled specialization names.
var dtypeCodes = map[DType]byte{
	Bool8:   'o',
	Int8:    'b',
	Int16:   'h',
	Int32:   'i',
	Int64:   'J',
	Uint8:   'B',
	Uint16:  'H',
	Uint32:  'I',
	Uint64:  'K',
	Float32: 'f',
	Float64: 'd',
}

// Code returns the mangling code of d, or 0 for an unknown dtype.
func (d DType) Code() byte {
	return dtypeCodes[d]
}

// Valid reports whether d is a known element type.
func (d DType) Valid() bool {
	_, ok := dtypeCodes[d]
	return ok
}

// Size returns the element width in bytes.
func (d DType) Size() int {
	switch d {
	case Bool8, Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	}
	return 0
}

// Element is the set of Go types an Array can store.
type Element interface {
	bool | int8 | int16 | int32 | int64 |
		uint8 | uint16 | uint32 | uint64 |
		float32 | float64
}

// DTypeOf returns the dtype stored for the Go element type T.
func DTypeOf[T Element]() DType {
	var zero T
	switch any(zero).(type) {
	case bool:
		return Bool8
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	case float32:
		return Float32
	case float64:
		return Float64
	}
	return ""
}
