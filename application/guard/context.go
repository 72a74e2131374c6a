package guard

import "github.com/reglet-dev/kernelbridge/domain/entities"

// CallContext is the per-call binding of host arguments to native slots.
// It borrows the caller's arguments and owns any coercion copies. It lives
// for one call and is not shared across goroutines.
type CallContext struct {
	frame    *entities.Frame
	args     []entities.Handle
	owned    []entities.Handle
	released bool
}

// Frame returns the native arguments.
func (c *CallContext) Frame() *entities.Frame { return c.frame }

// Copies returns the number of arrays that had to be copied to a contiguous layout.
func (c *CallContext) Copies() int { return len(c.owned) }

// Release drops the owned coercion copies. It is safe to call more than once
// and must run on every exit path.
func (c *CallContext) Release() {
	if c.released {
		return
	}
	c.released = true
	for i := range c.owned {
		c.owned[i].Release()
	}
}

// Adopt converts a native return into a host value owned by the caller.
// Returning an argument array (in-place kernels) yields the same array with
// one more reference. Returning a coercion copy moves that copy to the caller
// so Release leaves it alive.
func (c *CallContext) Adopt(ret entities.Return) entities.Value {
	switch ret.Kind() {
	case entities.KindInt:
		return entities.Int(ret.Int())
	case entities.KindFloat:
		return entities.Float(ret.Float())
	case entities.KindBool:
		return entities.Bool(ret.Bool())
	case entities.KindArray:
		return c.adoptArray(ret.Array())
	}
	return entities.None{}
}

func (c *CallContext) adoptArray(a *entities.Array) entities.Value {
	if a == nil {
		return entities.None{}
	}
	for i := range c.owned {
		if c.owned[i].Value() == entities.Value(a) {
			return c.owned[i].Transfer()
		}
	}
	for i := range c.args {
		if c.args[i].Value() == entities.Value(a) {
			h := entities.Borrow(a)
			return h.Transfer()
		}
	}
	// Allocated by the kernel: its single reference passes to the caller.
	h := entities.Own(a)
	return h.Transfer()
}
