package entities

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Array is the host's n-dimensional array: typed backing storage plus a
// strided view onto it. Strides and offset are counted in elements.
//
// Arrays are reference counted the way the host runtime counts its objects.
// A new array holds one reference, owned by whoever created it.
type Array struct {
	data    any // []T for the element type
	shape   []int
	strides []int
	dtype   DType
	offset  int
	length  int
	refs    atomic.Int32
}

// NewArray wraps data as a C-ordered array with the given shape.
// With no shape the array is one dimensional over all of data.
func NewArray[T Element](data []T, shape ...int) (*Array, error) {
	if len(shape) == 0 {
		shape = []int{len(data)}
	}
	n := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("negative extent in shape %v", shape)
		}
		n *= d
	}
	if n != len(data) {
		return nil, fmt.Errorf("shape %v needs %d elements, got %d", shape, n, len(data))
	}
	a := &Array{
		data:    data,
		dtype:   DTypeOf[T](),
		shape:   append([]int(nil), shape...),
		strides: contiguousStrides(shape),
		length:  len(data),
	}
	a.refs.Store(1)
	return a, nil
}

// FromSlice is NewArray for the one dimensional case, which cannot fail.
func FromSlice[T Element](data []T) *Array {
	a, _ := NewArray(data)
	return a
}

// Zeros allocates a zero-filled contiguous array of the given dtype.
func Zeros(dtype DType, shape ...int) (*Array, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("negative extent in shape %v", shape)
		}
		n *= d
	}
	if len(shape) == 0 {
		shape = []int{0}
		n = 0
	}
	switch dtype {
	case Bool8:
		return NewArray(make([]bool, n), shape...)
	case Int8:
		return NewArray(make([]int8, n), shape...)
	case Int16:
		return NewArray(make([]int16, n), shape...)
	case Int32:
		return NewArray(make([]int32, n), shape...)
	case Int64:
		return NewArray(make([]int64, n), shape...)
	case Uint8:
		return NewArray(make([]uint8, n), shape...)
	case Uint16:
		return NewArray(make([]uint16, n), shape...)
	case Uint32:
		return NewArray(make([]uint32, n), shape...)
	case Uint64:
		return NewArray(make([]uint64, n), shape...)
	case Float32:
		return NewArray(make([]float32, n), shape...)
	case Float64:
		return NewArray(make([]float64, n), shape...)
	}
	return nil, fmt.Errorf("unknown dtype %q", dtype)
}

func (*Array) Kind() Kind { return KindArray }
func (*Array) hostValue() {}

// DType returns the element type.
func (a *Array) DType() DType { return a.dtype }

// Rank returns the number of dimensions.
func (a *Array) Rank() int { return len(a.shape) }

// Shape returns a copy of the extents.
func (a *Array) Shape() []int { return append([]int(nil), a.shape...) }

// Strides returns a copy of the element strides.
func (a *Array) Strides() []int { return append([]int(nil), a.strides...) }

// Offset returns the element offset of the view into its storage.
func (a *Array) Offset() int { return a.offset }

// Extent returns the size of dimension i without copying the shape.
func (a *Array) Extent(i int) int { return a.shape[i] }

// Len returns the number of logical elements.
func (a *Array) Len() int {
	n := 1
	for _, d := range a.shape {
		n *= d
	}
	return n
}

// View returns an array sharing a's storage with a different layout.
// The layout is not checked here; Contiguous reports views that escape
// their storage.
func (a *Array) View(offset int, shape, strides []int) *Array {
	v := &Array{
		data:    a.data,
		dtype:   a.dtype,
		shape:   append([]int(nil), shape...),
		strides: append([]int(nil), strides...),
		offset:  offset,
		length:  a.length,
	}
	v.refs.Store(1)
	return v
}

// Strided returns a rank-1 view over every step-th element of a rank-1 array.
func (a *Array) Strided(step int) *Array {
	if step <= 0 || a.Rank() != 1 {
		return a.View(a.offset, a.shape, a.strides)
	}
	n := (a.shape[0] + step - 1) / step
	return a.View(a.offset, []int{n}, []int{a.strides[0] * step})
}

// IsContiguous reports whether the view is C-ordered without gaps.
func (a *Array) IsContiguous() bool {
	expect := 1
	for i := len(a.shape) - 1; i >= 0; i-- {
		if a.shape[i] == 1 {
			continue
		}
		if a.strides[i] != expect {
			return a.Len() == 0
		}
		expect *= a.shape[i]
	}
	return true
}

// InBounds reports whether every element addressed by the view lies inside
// the backing storage.
func (a *Array) InBounds() bool {
	if len(a.strides) != len(a.shape) {
		return false
	}
	lo, hi := a.offset, a.offset
	for i, d := range a.shape {
		if d == 0 {
			return true
		}
		step := (d - 1) * a.strides[i]
		if step < 0 {
			lo += step
		} else {
			hi += step
		}
	}
	return lo >= 0 && hi < a.length
}

// Contiguous returns a C-ordered array with the same contents. When a is
// already contiguous it is returned as is and copied is false; otherwise a
// new array owned by the caller is allocated.
func (a *Array) Contiguous() (out *Array, copied bool, err error) {
	if !a.InBounds() {
		return nil, false, fmt.Errorf("array view (offset %d, shape %v, strides %v) exceeds storage of %d elements",
			a.offset, a.shape, a.strides, a.length)
	}
	if a.IsContiguous() {
		return a, false, nil
	}
	switch d := a.data.(type) {
	case []bool:
		out, err = NewArray(gather(a, d), a.shape...)
	case []int8:
		out, err = NewArray(gather(a, d), a.shape...)
	case []int16:
		out, err = NewArray(gather(a, d), a.shape...)
	case []int32:
		out, err = NewArray(gather(a, d), a.shape...)
	case []int64:
		out, err = NewArray(gather(a, d), a.shape...)
	case []uint8:
		out, err = NewArray(gather(a, d), a.shape...)
	case []uint16:
		out, err = NewArray(gather(a, d), a.shape...)
	case []uint32:
		out, err = NewArray(gather(a, d), a.shape...)
	case []uint64:
		out, err = NewArray(gather(a, d), a.shape...)
	case []float32:
		out, err = NewArray(gather(a, d), a.shape...)
	case []float64:
		out, err = NewArray(gather(a, d), a.shape...)
	default:
		return nil, false, fmt.Errorf("unsupported storage %T", a.data)
	}
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// Pointer returns the address of the first element of the view. Native
// kernels index from it without bounds checks.
func (a *Array) Pointer() unsafe.Pointer {
	switch d := a.data.(type) {
	case []bool:
		return base(d, a.offset)
	case []int8:
		return base(d, a.offset)
	case []int16:
		return base(d, a.offset)
	case []int32:
		return base(d, a.offset)
	case []int64:
		return base(d, a.offset)
	case []uint8:
		return base(d, a.offset)
	case []uint16:
		return base(d, a.offset)
	case []uint32:
		return base(d, a.offset)
	case []uint64:
		return base(d, a.offset)
	case []float32:
		return base(d, a.offset)
	case []float64:
		return base(d, a.offset)
	}
	return nil
}

// Data returns the storage of a contiguous array from its offset on.
func Data[T Element](a *Array) ([]T, bool) {
	d, ok := a.data.([]T)
	if !ok || !a.IsContiguous() || !a.InBounds() {
		return nil, false
	}
	return d[a.offset : a.offset+a.Len()], true
}

// ToSlice copies the logical elements of a in C order.
func ToSlice[T Element](a *Array) ([]T, bool) {
	d, ok := a.data.([]T)
	if !ok || !a.InBounds() {
		return nil, false
	}
	return gather(a, d), true
}

// Elements copies the logical elements into a []T of the array's dtype,
// returned as any. Used for printing and serialization.
func (a *Array) Elements() any {
	if !a.InBounds() {
		return nil
	}
	switch d := a.data.(type) {
	case []bool:
		return gather(a, d)
	case []int8:
		return gather(a, d)
	case []int16:
		return gather(a, d)
	case []int32:
		return gather(a, d)
	case []int64:
		return gather(a, d)
	case []uint8:
		return gather(a, d)
	case []uint16:
		return gather(a, d)
	case []uint32:
		return gather(a, d)
	case []uint64:
		return gather(a, d)
	case []float32:
		return gather(a, d)
	case []float64:
		return gather(a, d)
	}
	return nil
}

// SameStorage reports whether a and b view the same backing storage.
func (a *Array) SameStorage(b *Array) bool {
	if a == nil || b == nil {
		return false
	}
	return a.length == b.length && a.length > 0 && a.Pointer() != nil &&
		storageBase(a) == storageBase(b)
}

// Retain adds a reference and returns a.
func (a *Array) Retain() *Array {
	a.refs.Add(1)
	return a
}

// Release drops a reference and returns the remaining count.
// The count never goes below zero.
func (a *Array) Release() int32 {
	for {
		n := a.refs.Load()
		if n <= 0 {
			return 0
		}
		if a.refs.CompareAndSwap(n, n-1) {
			return n - 1
		}
	}
}

// RefCount returns the current number of references.
func (a *Array) RefCount() int32 { return a.refs.Load() }

func contiguousStrides(shape []int) []int {
	strides := make([]int, len(shape))
	s := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = s
		s *= shape[i]
	}
	return strides
}

func gather[T Element](a *Array, src []T) []T {
	n := a.Len()
	out := make([]T, 0, n)
	if n == 0 {
		return out
	}
	idx := make([]int, len(a.shape))
	for {
		pos := a.offset
		for i, k := range idx {
			pos += k * a.strides[i]
		}
		out = append(out, src[pos])

		// Odometer increment over the C-ordered index.
		i := len(idx) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < a.shape[i] {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return out
		}
	}
}

func base[T Element](d []T, offset int) unsafe.Pointer {
	if offset < 0 || offset > len(d) || cap(d) == 0 {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(d[offset:]))
}

func storageBase(a *Array) unsafe.Pointer {
	v := a.View(0, []int{a.length}, []int{1})
	return v.Pointer()
}
