package entities

import (
	"errors"
	"unsafe"
)

// ErrNoReturn is returned by a kernel whose control flow reached the end of
// its body without producing a value.
var ErrNoReturn = errors.New("no return type passed")

// slot is one native argument.
type slot struct {
	arr  *Array
	kind Kind
	i    int64
	f    float64
	b    bool
}

// Frame holds the native arguments of one kernel call, in parameter order.
// Accessors do not check kinds: the type guard already did.
type Frame struct {
	slots []slot
}

// NewFrame allocates a frame with n slots.
func NewFrame(n int) *Frame {
	return &Frame{slots: make([]slot, n)}
}

// Len returns the number of slots.
func (f *Frame) Len() int { return len(f.slots) }

func (f *Frame) SetInt(i int, v int64) { f.slots[i] = slot{kind: KindInt, i: v} }
func (f *Frame) SetFloat(i int, v float64) { f.slots[i] = slot{kind: KindFloat, f: v} }
func (f *Frame) SetBool(i int, v bool) { f.slots[i] = slot{kind: KindBool, b: v} }
func (f *Frame) SetArray(i int, a *Array) { f.slots[i] = slot{kind: KindArray, arr: a} }

func (f *Frame) Int(i int) int64 { return f.slots[i].i }
func (f *Frame) Float(i int) float64 { return f.slots[i].f }
func (f *Frame) Bool(i int) bool { return f.slots[i].b }
func (f *Frame) Array(i int) *Array { return f.slots[i].arr }

// KindAt returns the kind bound in slot i.
func (f *Frame) KindAt(i int) Kind { return f.slots[i].kind }

// Extent returns dimension d of the array in slot i.
func (f *Frame) Extent(i, d int) int { return f.slots[i].arr.Extent(d) }

// Shape returns the dimensions of the array in slot i.
func (f *Frame) Shape(i int) []int { return f.slots[i].arr.Shape() }

// Pointer returns the first element address of the array in slot i.
func (f *Frame) Pointer(i int) unsafe.Pointer { return f.slots[i].arr.Pointer() }

// Float64s returns the contiguous storage of a float64 array slot.
func (f *Frame) Float64s(i int) []float64 {
	d, _ := Data[float64](f.slots[i].arr)
	return d
}

// Int64s returns the contiguous storage of an int64 array slot.
func (f *Frame) Int64s(i int) []int64 {
	d, _ := Data[int64](f.slots[i].arr)
	return d
}

// Return is a kernel's native result.
type Return struct {
	arr  *Array
	kind Kind
	i    int64
	f    float64
	b    bool
}

func ReturnNone() Return { return Return{kind: KindNone} }
func ReturnInt(v int64) Return { return Return{kind: KindInt, i: v} }
func ReturnFloat(v float64) Return { return Return{kind: KindFloat, f: v} }
func ReturnBool(v bool) Return { return Return{kind: KindBool, b: v} }
func ReturnArray(a *Array) Return { return Return{kind: KindArray, arr: a} }
func (r Return) Kind() Kind { return r.kind }
func (r Return) Int() int64 { return r.i }
func (r Return) Float() float64 { return r.f }
func (r Return) Bool() bool { return r.b }
func (r Return) Array() *Array { return r.arr }
func (r Return) IsZero() bool { return r.kind == "" }
