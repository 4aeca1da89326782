// Package idalloc implements the engine's deterministic identifier
// allocator: a single mutable counter cursor over a half-open range,
// consumed once per address/id mint and combined with the transaction hash
// under sha256² to produce the actual bytes.
package idalloc

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"

	"github.com/synnergy/assetengine/engine/types"
)

// Space selects which part of the 32-bit counter range an allocator draws
// from.
type Space int

const (
	SpaceSystem Space = iota
	SpaceTransaction
	SpaceApplication
)

// Reserved bucket/proof ids for the root frame's virtual signature bucket.
const (
	ECDSATokenBid types.Bid = 0
	ECDSATokenRid types.Rid = 1
)

// ErrOutOfID is returned once an allocator's counter range is exhausted.
var ErrOutOfID = errors.New("idalloc: out of id")

// Allocator mints Bid/Rid/Vid/Mid values and Package/Component/ResourceDef
// addresses and UUIDs, all as a pure function of (transaction hash, call
// order). It is not safe for concurrent use: a Track owns exactly one
// Allocator and callers serialize through Process/Track already.
type Allocator struct {
	next uint32
	end  uint32
}

// New constructs an allocator scoped to the given id space.
func New(space Space) *Allocator {
	switch space {
	case SpaceSystem:
		return &Allocator{next: 0, end: 512}
	case SpaceTransaction:
		return &Allocator{next: 512, end: 1024}
	default:
		return &Allocator{next: 1024, end: 0} // end==0 means "no upper bound below 2^32"
	}
}

func (a *Allocator) take() (uint32, error) {
	if a.end != 0 && a.next >= a.end {
		return 0, ErrOutOfID
	}
	if a.next == ^uint32(0) {
		return 0, ErrOutOfID
	}
	id := a.next
	a.next++
	return id, nil
}

// sha256Twice is the address/uuid derivation primitive: a double sha256
// over the transaction hash and a call-order counter.
func sha256Twice(data []byte) [32]byte {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}

func counterBytes(counter uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, counter)
	return b
}

func (a *Allocator) deriveAddress(txHash types.Hash, variant types.AddressVariant) (types.Address, error) {
	counter, err := a.take()
	if err != nil {
		return types.Address{}, err
	}
	data := append(append([]byte{}, txHash.Bytes()...), counterBytes(counter)...)
	digest := sha256Twice(data)
	var body [26]byte
	copy(body[:], digest[len(digest)-26:])
	return types.NewAddress(variant, body), nil
}

// NewPackageAddress mints the next Package address.
func (a *Allocator) NewPackageAddress(txHash types.Hash) (types.Address, error) {
	return a.deriveAddress(txHash, types.AddressPackage)
}

// NewComponentAddress mints the next Component address.
func (a *Allocator) NewComponentAddress(txHash types.Hash) (types.Address, error) {
	return a.deriveAddress(txHash, types.AddressComponent)
}

// NewResourceAddress mints the next ResourceDef address.
func (a *Allocator) NewResourceAddress(txHash types.Hash) (types.Address, error) {
	return a.deriveAddress(txHash, types.AddressResourceDef)
}

// NewUUID derives a uuid from the low 16 bytes of the same digest
// construction used for addresses.
func (a *Allocator) NewUUID(txHash types.Hash) (types.UUID, error) {
	counter, err := a.take()
	if err != nil {
		return types.UUID{}, err
	}
	data := append(append([]byte{}, txHash.Bytes()...), counterBytes(counter)...)
	digest := sha256Twice(data)
	var out types.UUID
	copy(out[:], digest[len(digest)-16:])
	return out, nil
}

// NewBid mints the next transaction-local bucket id.
func (a *Allocator) NewBid() (types.Bid, error) {
	id, err := a.take()
	if err != nil {
		return 0, err
	}
	return types.Bid(id), nil
}

// NewRid mints the next transaction-local proof id.
func (a *Allocator) NewRid() (types.Rid, error) {
	id, err := a.take()
	if err != nil {
		return 0, err
	}
	return types.Rid(id), nil
}

// NewVid mints the next vault id, scoped to the owning transaction.
func (a *Allocator) NewVid(txHash types.Hash) (types.Vid, error) {
	id, err := a.take()
	if err != nil {
		return types.Vid{}, err
	}
	return types.Vid{TxHash: txHash, Counter: id}, nil
}

// NewMid mints the next lazy-map id, scoped to the owning transaction.
func (a *Allocator) NewMid(txHash types.Hash) (types.Mid, error) {
	id, err := a.take()
	if err != nil {
		return types.Mid{}, err
	}
	return types.Mid{TxHash: txHash, Counter: id}, nil
}
