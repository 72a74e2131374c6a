package testutil

// FibWASM exports fib(i64) i64 (recursive) and noret(i64) i64, whose body
// is a single unreachable.
var FibWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	// type: (i64) -> i64
	0x01, 0x06, 0x01, 0x60, 0x01, 0x7e, 0x01, 0x7e,
	// function: fib, noret
	0x03, 0x03, 0x02, 0x00, 0x00,
	// export
	0x07, 0x0f, 0x02,
	0x03, 'f', 'i', 'b', 0x00, 0x00,
	0x05, 'n', 'o', 'r', 'e', 't', 0x00, 0x01,
	// code
	0x0a, 0x22, 0x02,
	0x1c, 0x00,
	0x20, 0x00, 0x42, 0x02, 0x53, 0x04, 0x7e,
	0x20, 0x00,
	0x05,
	0x20, 0x00, 0x42, 0x01, 0x7d, 0x10, 0x00,
	0x20, 0x00, 0x42, 0x02, 0x7d, 0x10, 0x00,
	0x7c,
	0x0b, 0x0b,
	0x03, 0x00, 0x00, 0x0b,
}

// MemWASM exports one page of memory, a bump "allocate", and three kernels
// over a packed float64 array: first_d1 reads a[0], set_first_d1 writes
// a[0], and oob loads from an address far past the end of memory.
var MemWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	// types
	0x01, 0x15, 0x04,
	0x60, 0x01, 0x7e, 0x01, 0x7e, // (i64) -> i64
	0x60, 0x01, 0x7f, 0x01, 0x7f, // (i32) -> i32
	0x60, 0x01, 0x7e, 0x01, 0x7c, // (i64) -> f64
	0x60, 0x02, 0x7e, 0x7c, 0x00, // (i64, f64) -> ()
	// function
	0x03, 0x05, 0x04, 0x01, 0x02, 0x03, 0x00,
	// memory: min 1 page
	0x05, 0x03, 0x01, 0x00, 0x01,
	// global: mut i32 = 1024
	0x06, 0x07, 0x01, 0x7f, 0x01, 0x41, 0x80, 0x08, 0x0b,
	// export
	0x07, 0x35, 0x05,
	0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
	0x08, 'a', 'l', 'l', 'o', 'c', 'a', 't', 'e', 0x00, 0x00,
	0x08, 'f', 'i', 'r', 's', 't', '_', 'd', '1', 0x00, 0x01,
	0x0c, 's', 'e', 't', '_', 'f', 'i', 'r', 's', 't', '_', 'd', '1', 0x00, 0x02,
	0x03, 'o', 'o', 'b', 0x00, 0x03,
	// code
	0x0a, 0x2f, 0x04,
	0x0b, 0x00, 0x23, 0x00, 0x23, 0x00, 0x20, 0x00, 0x6a, 0x24, 0x00, 0x0b,
	0x0b, 0x00, 0x20, 0x00, 0x42, 0x20, 0x88, 0xa7, 0x2b, 0x03, 0x00, 0x0b,
	0x0d, 0x00, 0x20, 0x00, 0x42, 0x20, 0x88, 0xa7, 0x20, 0x01, 0x39, 0x03, 0x00, 0x0b,
	0x07, 0x00, 0x41, 0x78, 0x29, 0x03, 0x00, 0x0b,
}
