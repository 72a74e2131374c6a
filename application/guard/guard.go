// Package guard decides whether a call's arguments fit a compiled signature
// and, when they do, binds them into a native frame.
package guard

import (
	"github.com/reglet-dev/kernelbridge/domain/entities"
	"github.com/reglet-dev/kernelbridge/domain/errors"
)

// Guard is the type predicate of one specialization.
// It is immutable and safe for concurrent use.
type Guard struct {
	params []entities.Param
}

// New builds the guard for sig. The parameters are copied.
func New(sig entities.Signature) *Guard {
	return &Guard{params: append([]entities.Param(nil), sig.Params...)}
}

// Arity returns the number of parameters the guard expects.
func (g *Guard) Arity() int { return len(g.params) }

// Match reports whether args satisfy every compiled assumption. It never
// fails, never allocates and has no side effects. Checks short-circuit in
// order: arity, kind per parameter, array dtype and rank, fixed extents.
func (g *Guard) Match(args []entities.Value) bool {
	if len(args) != len(g.params) {
		return false
	}
	for i := range g.params {
		if !matchParam(&g.params[i], args[i]) {
			return false
		}
	}
	return true
}

func matchParam(p *entities.Param, v entities.Value) bool {
	switch p.Kind {
	case entities.KindInt:
		_, ok := v.(entities.Int)
		return ok
	case entities.KindFloat:
		_, ok := v.(entities.Float)
		return ok
	case entities.KindBool:
		_, ok := v.(entities.Bool)
		return ok
	case entities.KindArray:
		a, ok := v.(*entities.Array)
		if !ok || a == nil {
			return false
		}
		if a.DType() != p.DType || a.Rank() != p.Rank {
			return false
		}
		for d, want := range p.Extents {
			if want >= 0 && a.Extent(d) != want {
				return false
			}
		}
		return true
	}
	return false
}

// Bind converts matched arguments to native form. Call it only after Match
// returned true. Arrays that are not C-contiguous are copied into owned
// arrays; a view that cannot be copied aborts the call with a CoercionError.
func (g *Guard) Bind(args []entities.Value) (*CallContext, error) {
	cc := &CallContext{
		args:  make([]entities.Handle, len(args)),
		frame: entities.NewFrame(len(args)),
	}
	for i, v := range args {
		cc.args[i] = entities.Borrow(v)
		switch x := v.(type) {
		case entities.Int:
			cc.frame.SetInt(i, int64(x))
		case entities.Float:
			cc.frame.SetFloat(i, float64(x))
		case entities.Bool:
			cc.frame.SetBool(i, bool(x))
		case *entities.Array:
			native, copied, err := x.Contiguous()
			if err != nil {
				cc.Release()
				return nil, &errors.CoercionError{Param: g.params[i].Name, Err: err}
			}
			if copied {
				cc.owned = append(cc.owned, entities.Own(native))
			}
			cc.frame.SetArray(i, native)
		default:
			cc.Release()
			return nil, &errors.CoercionError{Param: g.params[i].Name}
		}
	}
	return cc, nil
}
