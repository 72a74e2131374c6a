// Package entities provides the core domain types of the boundary layer:
// host values and arrays, ownership handles, signatures, specializations,
// descriptors and call results.
//
// The host value model stands in for the dynamic runtime's own object
// system. It is deliberately small: scalars, strings, strided arrays and
// opaque objects are enough to express every type guard and descriptor.
package entities
