// Package wazero compiles specializations whose kernels are WebAssembly
// exports and runs them on the wazero runtime.
//
// Scalars cross the boundary as wasm values: int and bool as i64, float as
// f64. An array is copied into guest memory through the guest's "allocate"
// export and passed as one packed i64 (upper 32 bits pointer, lower 32 bits
// element count). "allocate" and the optional "deallocate" take byte counts,
// the packed length counts elements. After the call the guest bytes are copied back, so
// in-place kernels behave as they do natively.
//
// # Basic Usage
//
//	rt, err := wazero.NewRuntime(ctx)
//	if err != nil {
//	    return err
//	}
//	defer rt.Close(ctx)
//
//	spec, err := rt.CompileSpecialization(ctx, wasmBytes, "fib", sig)
//
// Traps map onto the boundary's outcomes: "unreachable" is a missing return
// path, an out of bounds memory access is a memory fault, and every other
// trap is an invocation failure.
package wazero
