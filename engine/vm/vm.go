// Package vm defines the guest execution boundary: the GuestVM interface a
// Process frame drives, a dependency-free InterpretedVM for tests and
// reference blueprints, and a wasmer-go-backed WasmerVM for real compiled
// modules. Grounded on core/virtual_machine.go's three-tier VM/SuperLightVM/
// LightVM/HeavyVM design: this package keeps the same "one interface, swap
// the implementation" shape, narrowed to the two tiers this engine needs.
package vm

import "github.com/synnergy/assetengine/engine/abi"

// GuestVM parses, instantiates, and invokes one guest module export,
// servicing every host call the guest issues against the given
// abi.HostService. A single Invoke call corresponds to one Process frame's
// guest execution.
type GuestVM interface {
	Invoke(code []byte, export string, args [][]byte, host abi.HostService) (abi.CallResult, error)
}
