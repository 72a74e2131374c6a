// Package host is the module facade of kernelbridge: it loads a set of
// specializations, routes inbound calls to their brokers and owns the
// resources the boundary needs (crash reporter, fallback journal, wasm
// runtime).
//
// Fault handling is opt-in. Load leaves it uninstalled; SetCreateSignature
// registers the fallback factory and installs the crash reporter.
package host
