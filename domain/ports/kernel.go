package ports

import "github.com/reglet-dev/kernelbridge/domain/entities"

// Kernel is a compiled entry point. Native registries and the WASM backend
// both implement it.
type Kernel = entities.Kernel
