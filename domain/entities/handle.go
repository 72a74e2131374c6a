package entities

// Ownership says whether a handle holds a reference of its own.
type Ownership int

const (
	// Borrowed handles point at values owned by someone else (the caller's
	// argument tuple). Releasing them is a no-op.
	Borrowed Ownership = iota
	// Owned handles hold one reference that must be released or handed off.
	Owned
)

func (o Ownership) String() string {
	if o == Owned {
		return "owned"
	}
	return "borrowed"
}

// Handle tags a value crossing the host/native boundary with its ownership.
// Release and Transfer are each effective at most once.
type Handle struct {
	value Value
	own   Ownership
	done  bool
}

// Borrow wraps a value the caller keeps ownership of.
func Borrow(v Value) Handle {
	return Handle{value: v, own: Borrowed}
}

// Own wraps a value whose reference now belongs to the handle.
func Own(v Value) Handle {
	return Handle{value: v, own: Owned}
}

// Value returns the wrapped value without changing ownership.
func (h *Handle) Value() Value { return h.value }

// Ownership returns how the handle holds its value.
func (h *Handle) Ownership() Ownership { return h.own }

// Release drops the handle's reference if it owns one.
func (h *Handle) Release() {
	if h.done {
		return
	}
	h.done = true
	if h.own != Owned {
		return
	}
	if a, ok := h.value.(*Array); ok && a != nil {
		a.Release()
	}
}

// Transfer hands the value to the caller, who then owns one reference.
// An owned reference moves; a borrowed array gains a new reference.
func (h *Handle) Transfer() Value {
	if h.done {
		return h.value
	}
	h.done = true
	if a, ok := h.value.(*Array); ok && a != nil && h.own == Borrowed {
		a.Retain()
	}
	return h.value
}
