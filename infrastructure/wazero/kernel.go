package wazero

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unsafe"

	"github.com/tetratelabs/wazero/api"

	"github.com/reglet-dev/kernelbridge/domain/entities"
)

// Kernel is a wasm export bound to a signature. Calls are serialized: a
// module instance has one linear memory and one stack.
type Kernel struct {
	mod      api.Module
	fn       api.Function
	allocate api.Function
	free     api.Function // optional "deallocate" export
	logger   *slog.Logger
	export   string
	sig      entities.Signature
	hasArray bool

	mu sync.Mutex
}

var _ entities.Kernel = (*Kernel)(nil)

// Export returns the bound export name.
func (k *Kernel) Export() string { return k.export }

func bindKernel(mod api.Module, export string, sig entities.Signature) (*Kernel, error) {
	fn := mod.ExportedFunction(export)
	if fn == nil {
		return nil, fmt.Errorf("export %q not found", export)
	}

	def := fn.Definition()
	if err := checkParams(sig.Params, def.ParamTypes()); err != nil {
		return nil, fmt.Errorf("export %q: %w", export, err)
	}
	if err := checkResults(sig.Returns, def.ResultTypes()); err != nil {
		return nil, fmt.Errorf("export %q: %w", export, err)
	}

	k := &Kernel{mod: mod, fn: fn, export: export, sig: sig, logger: slog.Default()}
	for _, p := range sig.Params {
		if p.Kind == entities.KindArray {
			k.hasArray = true
		}
	}
	if k.hasArray {
		k.allocate = mod.ExportedFunction("allocate")
		if k.allocate == nil {
			return nil, fmt.Errorf("guest does not export 'allocate'")
		}
		if mod.Memory() == nil {
			return nil, fmt.Errorf("guest does not export memory")
		}
		k.free = mod.ExportedFunction("deallocate")
	}
	return k, nil
}

func valueType(kind entities.Kind) (api.ValueType, bool) {
	switch kind {
	case entities.KindInt, entities.KindBool, entities.KindArray:
		return api.ValueTypeI64, true
	case entities.KindFloat:
		return api.ValueTypeF64, true
	}
	return 0, false
}

func checkParams(params []entities.Param, types []api.ValueType) error {
	if len(params) != len(types) {
		return fmt.Errorf("takes %d parameters, signature declares %d", len(types), len(params))
	}
	for i, p := range params {
		want, ok := valueType(p.Kind)
		if !ok {
			return fmt.Errorf("param %q: kind %s cannot cross into wasm", p.Name, p.Kind)
		}
		if types[i] != want {
			return fmt.Errorf("param %q: wasm type %s, want %s", p.Name, api.ValueTypeName(types[i]), api.ValueTypeName(want))
		}
	}
	return nil
}

func checkResults(ret entities.ReturnType, types []api.ValueType) error {
	if ret.Kind == entities.KindNone {
		if len(types) != 0 {
			return fmt.Errorf("returns %d values, signature declares none", len(types))
		}
		return nil
	}
	if ret.Kind == entities.KindArray {
		return fmt.Errorf("array results are not supported by the wasm backend")
	}
	want, _ := valueType(ret.Kind)
	if len(types) != 1 || types[0] != want {
		return fmt.Errorf("result types %v, want [%s]", typeNames(types), api.ValueTypeName(want))
	}
	return nil
}

func typeNames(types []api.ValueType) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = api.ValueTypeName(t)
	}
	return names
}

// guestArray is one array copied into guest memory for a call.
type guestArray struct {
	host []byte
	ptr  uint32
}

// Call implements entities.Kernel.
func (k *Kernel) Call(ctx context.Context, f *entities.Frame) (entities.Return, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	stack := make([]uint64, len(k.sig.Params))
	var arrays []guestArray
	defer func() { k.release(ctx, arrays) }()

	for i, p := range k.sig.Params {
		switch p.Kind {
		case entities.KindInt:
			stack[i] = uint64(f.Int(i)) //nolint:gosec // G115: two's complement round trip
		case entities.KindBool:
			if f.Bool(i) {
				stack[i] = 1
			}
		case entities.KindFloat:
			stack[i] = api.EncodeF64(f.Float(i))
		case entities.KindArray:
			ga, err := k.copyIn(ctx, f.Array(i))
			if err != nil {
				return entities.Return{}, fmt.Errorf("param %q: %w", p.Name, err)
			}
			arrays = append(arrays, ga)
			// The guest sees the element count; allocate got the byte size.
			stack[i] = packPtrLen(ga.ptr, uint32(f.Array(i).Len())) //nolint:gosec // G115: bounded by guest memory
		}
	}

	results, err := k.fn.Call(ctx, stack...)
	if err != nil {
		return entities.Return{}, k.trap(err)
	}

	for _, ga := range arrays {
		if err := k.copyOut(ga); err != nil {
			return entities.Return{}, err
		}
	}

	switch k.sig.Returns.Kind {
	case entities.KindInt:
		return entities.ReturnInt(int64(results[0])), nil //nolint:gosec // G115: two's complement round trip
	case entities.KindBool:
		return entities.ReturnBool(results[0] != 0), nil
	case entities.KindFloat:
		return entities.ReturnFloat(api.DecodeF64(results[0])), nil
	}
	return entities.ReturnNone(), nil
}

// copyIn writes a contiguous host array into freshly allocated guest memory.
func (k *Kernel) copyIn(ctx context.Context, a *entities.Array) (guestArray, error) {
	host := hostBytes(a)
	if len(host) == 0 {
		return guestArray{}, nil
	}
	res, err := k.allocate.Call(ctx, uint64(len(host)))
	if err != nil {
		return guestArray{}, fmt.Errorf("failed to allocate in guest: %w", err)
	}
	if len(res) == 0 {
		return guestArray{}, fmt.Errorf("allocate returned no results")
	}
	ptr := uint32(res[0]) //nolint:gosec // G115: WASM32 pointers are always 32-bit
	if !k.mod.Memory().Write(ptr, host) {
		return guestArray{}, fmt.Errorf("failed to write %d bytes to guest memory", len(host))
	}
	return guestArray{host: host, ptr: ptr}, nil
}

func (k *Kernel) copyOut(ga guestArray) error {
	if len(ga.host) == 0 {
		return nil
	}
	data, ok := k.mod.Memory().Read(ga.ptr, uint32(len(ga.host))) //nolint:gosec // G115: written by copyIn
	if !ok {
		return fmt.Errorf("failed to read array back from guest memory")
	}
	copy(ga.host, data)
	return nil
}

func (k *Kernel) release(ctx context.Context, arrays []guestArray) {
	if k.free == nil {
		return
	}
	for _, ga := range arrays {
		if len(ga.host) == 0 {
			continue
		}
		if _, err := k.free.Call(ctx, uint64(ga.ptr), uint64(len(ga.host))); err != nil {
			k.logger.WarnContext(ctx, "wazero: guest deallocate failed", "export", k.export, "error", err)
		}
	}
}

// trap maps a wasm trap onto the boundary's outcomes. An out of bounds
// access does not return: it panics with a Fault for the invoker.
func (k *Kernel) trap(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "out of bounds memory access"):
		panic(entities.Fault{Signal: entities.FaultSegfault, Message: msg})
	case strings.Contains(msg, "unreachable"):
		return entities.ErrNoReturn
	}
	return fmt.Errorf("wasm trap: %w", err)
}

// hostBytes views the storage of a contiguous array as bytes.
func hostBytes(a *entities.Array) []byte {
	n := a.Len() * a.DType().Size()
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(a.Pointer()), n)
}

// packPtrLen packs a guest pointer and an element count into a single i64.
// Upper 32 bits: pointer, lower 32 bits: length.
func packPtrLen(ptr, length uint32) uint64 {
	return (uint64(ptr) << 32) | uint64(length)
}
