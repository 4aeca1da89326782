// Package gas implements an optional, off-by-default cost meter for guest
// host calls. Grounded on core/virtual_machine.go's GasMeter/GasCost pair:
// a fixed per-opcode cost table plus a running used/limit counter that
// fails closed once the limit is exceeded.
package gas

import (
	"errors"

	"github.com/synnergy/assetengine/engine/abi"
)

var ErrOutOfGas = errors.New("gas: limit exceeded")

// Table assigns a fixed cost to every host call op. Calls not listed here
// cost DefaultCost.
type Table map[abi.Op]uint64

const DefaultCost = 1

// DefaultTable prices resource-mutating calls above pure reads, the same
// shape as the teacher's GasCost switch (cheap load/store, pricier log).
var DefaultTable = Table{
	abi.OpCreateEmptyBucket:        10,
	abi.OpPutIntoBucket:            5,
	abi.OpTakeFromBucket:           5,
	abi.OpTakeNonFungibleFromBucket: 5,
	abi.OpGetBucketAmount:          1,
	abi.OpGetBucketResourceDef:     1,
	abi.OpGetNonFungibleKeysInBucket: 2,
	abi.OpCreateBucketRef:          5,
	abi.OpCloneBucketRef:          3,
	abi.OpDropBucketRef:           1,
	abi.OpCreateEmptyVault:        10,
	abi.OpPutIntoVault:            5,
	abi.OpTakeFromVault:           5,
	abi.OpTakeNonFungibleFromVault: 5,
	abi.OpGetVaultAmount:          1,
	abi.OpGetVaultResourceDef:     1,
	abi.OpGetNonFungibleKeysInVault: 2,
	abi.OpCreateResource:          50,
	abi.OpMintResource:            20,
	abi.OpBurnResource:            20,
	abi.OpUpdateResourceFlags:     10,
	abi.OpUpdateResourceMutableFlags: 10,
	abi.OpUpdateResourceMetadata:  10,
	abi.OpGetResourceFlags:        1,
	abi.OpGetResourceMutableFlags: 1,
	abi.OpGetResourceMetadata:     1,
	abi.OpGetResourceTotalSupply:  1,
	abi.OpGetNonFungibleData:      2,
	abi.OpUpdateNonFungibleMutableData: 10,
	abi.OpPutLazyMapEntry:         5,
	abi.OpGetLazyMapEntry:         2,
	abi.OpCallFunction:            100,
	abi.OpCallMethod:              100,
	abi.OpEmitLog:                 3,
	abi.OpGetTransactionHash:      1,
	abi.OpGenerateUUID:            5,
	abi.OpGetEpoch:                1,
}

// Meter tracks cumulative gas against a limit. A Meter from NewMeter is
// unmetered: Consume always succeeds, while Used still accumulates the cost
// of every call. This is the
// default wiring in Process, matching the Open Question decision to leave
// metering optional rather than mandatory on every call.
type Meter struct {
	table   Table
	used    uint64
	limit   uint64
	enabled bool
}

// NewMeter returns a disabled meter: Consume never fails. Use NewLimitedMeter
// to opt into enforcement.
func NewMeter() *Meter { return &Meter{table: DefaultTable} }

// NewLimitedMeter returns an enabled meter that fails once limit is exceeded.
func NewLimitedMeter(limit uint64) *Meter {
	return &Meter{table: DefaultTable, limit: limit, enabled: true}
}

func (m *Meter) Consume(op abi.Op) error {
	cost, ok := m.table[op]
	if !ok {
		cost = DefaultCost
	}
	if !m.enabled {
		m.used += cost
		return nil
	}
	if m.used+cost > m.limit {
		return ErrOutOfGas
	}
	m.used += cost
	return nil
}

func (m *Meter) Used() uint64      { return m.used }
func (m *Meter) Limit() uint64     { return m.limit }
func (m *Meter) Enabled() bool     { return m.enabled }
func (m *Meter) Remaining() uint64 {
	if !m.enabled {
		return 0
	}
	if m.used >= m.limit {
		return 0
	}
	return m.limit - m.used
}
