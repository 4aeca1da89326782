// Package resource implements the conservation-bearing primitives of the
// engine's asset model: ResourceDef, Vault, Bucket, Proof, and NonFungible.
package resource

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/synnergy/assetengine/engine/types"
)

// Kind is a resource's type: either Fungible with a divisibility, or
// NonFungible.
type Kind struct {
	NonFungible  bool
	Divisibility uint8 // meaningful only when !NonFungible
}

// NewSupply is the initial-supply argument to ResourceDef.New: exactly one
// of Amount/Keys should be set, matching the kind being constructed.
type NewSupply struct {
	Amount *types.Decimal
	Keys   []types.NonFungibleKey
}

// ResourceDef is the definition of a resource class.
type ResourceDef struct {
	mu sync.RWMutex

	kind         Kind
	metadata     map[string]string
	flags        uint64
	mutableFlags uint64
	authorities  map[types.Address]uint64
	totalSupply  types.Decimal
}

// New constructs a ResourceDef, validating flags, authorities, divisibility
// and the initial-supply/kind match.
func New(kind Kind, metadata map[string]string, flags, mutableFlags uint64,
	authorities map[types.Address]uint64, initialSupply *NewSupply) (*ResourceDef, error) {

	if !flagsValid(flags) {
		return nil, ErrInvalidResourceFlags
	}
	if !flagsValid(mutableFlags) {
		return nil, ErrInvalidResourceFlags
	}
	if isFlagOn(flags, FreelyBurnable) && !isFlagOn(flags, Burnable) {
		return nil, ErrFreelyBurnableWithoutBurnable
	}
	for _, perm := range authorities {
		if !permissionValid(perm) {
			return nil, ErrInvalidResourcePermission
		}
	}
	if !kind.NonFungible && kind.Divisibility > 18 {
		return nil, ErrInvalidDivisibility
	}

	md := make(map[string]string, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	auth := make(map[types.Address]uint64, len(authorities))
	for k, v := range authorities {
		auth[k] = v
	}

	rd := &ResourceDef{
		kind:         kind,
		metadata:     md,
		flags:        flags,
		mutableFlags: mutableFlags,
		authorities:  auth,
		totalSupply:  types.ZeroDecimal(),
	}

	switch {
	case initialSupply == nil:
		// total_supply stays zero.
	case !kind.NonFungible && initialSupply.Amount != nil:
		if err := rd.checkAmountLocked(*initialSupply.Amount); err != nil {
			return nil, err
		}
		rd.totalSupply = *initialSupply.Amount
	case kind.NonFungible && initialSupply.Keys != nil:
		rd.totalSupply = types.NewDecimalFromInt64(int64(len(initialSupply.Keys)))
	default:
		return nil, ErrTypeAndSupplyNotMatching
	}

	log.WithFields(log.Fields{
		"non_fungible": kind.NonFungible,
		"flags":        flags,
		"supply":       rd.totalSupply.String(),
	}).Info("resource: definition created")

	return rd, nil
}

func (rd *ResourceDef) Kind() Kind { rd.mu.RLock(); defer rd.mu.RUnlock(); return rd.kind }

func (rd *ResourceDef) Flags() uint64 { rd.mu.RLock(); defer rd.mu.RUnlock(); return rd.flags }

func (rd *ResourceDef) MutableFlags() uint64 {
	rd.mu.RLock()
	defer rd.mu.RUnlock()
	return rd.mutableFlags
}

func (rd *ResourceDef) TotalSupply() types.Decimal {
	rd.mu.RLock()
	defer rd.mu.RUnlock()
	return rd.totalSupply
}

func (rd *ResourceDef) Metadata() map[string]string {
	rd.mu.RLock()
	defer rd.mu.RUnlock()
	out := make(map[string]string, len(rd.metadata))
	for k, v := range rd.metadata {
		out[k] = v
	}
	return out
}

// Authorities returns a copy of the badge→permission map, for snapshotting
// a ResourceDef into a persistence format (engine/track's file-backed
// store) without exposing the live map for mutation.
func (rd *ResourceDef) Authorities() map[types.Address]uint64 {
	rd.mu.RLock()
	defer rd.mu.RUnlock()
	out := make(map[types.Address]uint64, len(rd.authorities))
	for k, v := range rd.authorities {
		out[k] = v
	}
	return out
}

// Snapshot captures a ResourceDef's full state for serialization.
type Snapshot struct {
	Kind         Kind
	Metadata     map[string]string
	Flags        uint64
	MutableFlags uint64
	Authorities  map[types.Address]uint64
	TotalSupply  types.Decimal
}

// ToSnapshot exports the definition's current state.
func (rd *ResourceDef) ToSnapshot() Snapshot {
	rd.mu.RLock()
	defer rd.mu.RUnlock()
	return Snapshot{
		Kind:         rd.kind,
		Metadata:     rd.Metadata(),
		Flags:        rd.flags,
		MutableFlags: rd.mutableFlags,
		Authorities:  rd.Authorities(),
		TotalSupply:  rd.totalSupply,
	}
}

// FromSnapshot rebuilds a ResourceDef from a previously exported Snapshot,
// bypassing New's initial-supply validation since total_supply here is
// already-validated historical state, not a fresh mint.
func FromSnapshot(s Snapshot) *ResourceDef {
	md := make(map[string]string, len(s.Metadata))
	for k, v := range s.Metadata {
		md[k] = v
	}
	auth := make(map[types.Address]uint64, len(s.Authorities))
	for k, v := range s.Authorities {
		auth[k] = v
	}
	return &ResourceDef{
		kind:         s.Kind,
		metadata:     md,
		flags:        s.Flags,
		mutableFlags: s.MutableFlags,
		authorities:  auth,
		totalSupply:  s.TotalSupply,
	}
}

func (rd *ResourceDef) isFlagOnLocked(f Flag) bool { return isFlagOn(rd.flags, f) }

// checkPermissionLocked requires the badge to be present in authorities
// with every requested permission bit set.
func (rd *ResourceDef) checkPermissionLocked(badge *types.Address, perm Permission) error {
	if badge != nil {
		if have, ok := rd.authorities[*badge]; ok {
			if have&uint64(perm) == uint64(perm) {
				return nil
			}
		}
	}
	return ErrPermissionNotAllowed
}

func (rd *ResourceDef) checkAmountLocked(amount types.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	if !amount.GranularityOK(rd.kind.Divisibility) {
		return ErrInvalidAmount
	}
	return nil
}

// CheckAmount validates a fungible amount against this resource's
// divisibility.
func (rd *ResourceDef) CheckAmount(amount types.Decimal) error {
	rd.mu.RLock()
	defer rd.mu.RUnlock()
	return rd.checkAmountLocked(amount)
}

// CheckTakeFromVaultAuth enforces RESTRICTED_TRANSFER.
func (rd *ResourceDef) CheckTakeFromVaultAuth(badge *types.Address) error {
	rd.mu.RLock()
	defer rd.mu.RUnlock()
	if !rd.isFlagOnLocked(RestrictedTransfer) {
		return nil
	}
	return rd.checkPermissionLocked(badge, MayTransfer)
}

func (rd *ResourceDef) checkMintAuthLocked(badge *types.Address) error {
	if !rd.isFlagOnLocked(Mintable) {
		return ErrOperationNotAllowed
	}
	return rd.checkPermissionLocked(badge, MayMint)
}

func (rd *ResourceDef) checkBurnAuthLocked(badge *types.Address) error {
	if !rd.isFlagOnLocked(Burnable) {
		return ErrOperationNotAllowed
	}
	if rd.isFlagOnLocked(FreelyBurnable) {
		return nil
	}
	return rd.checkPermissionLocked(badge, MayBurn)
}

// Mint increases total_supply by the fungible amount or non-fungible key
// count, after checking mint authority.
func (rd *ResourceDef) Mint(supply NewSupply, badge *types.Address) error {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	if err := rd.checkMintAuthLocked(badge); err != nil {
		return err
	}
	if !rd.kind.NonFungible {
		if supply.Amount == nil {
			return ErrTypeAndSupplyNotMatching
		}
		if err := rd.checkAmountLocked(*supply.Amount); err != nil {
			return err
		}
		rd.totalSupply = rd.totalSupply.Add(*supply.Amount)
	} else {
		if supply.Keys == nil {
			return ErrTypeAndSupplyNotMatching
		}
		rd.totalSupply = rd.totalSupply.Add(types.NewDecimalFromInt64(int64(len(supply.Keys))))
	}
	log.WithFields(log.Fields{"supply": rd.totalSupply.String()}).Info("resource: minted")
	return nil
}

// Burn decreases total_supply, after checking burn authority.
func (rd *ResourceDef) Burn(supply NewSupply, badge *types.Address) error {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	if err := rd.checkBurnAuthLocked(badge); err != nil {
		return err
	}
	if !rd.kind.NonFungible {
		if supply.Amount == nil {
			return ErrTypeAndSupplyNotMatching
		}
		if err := rd.checkAmountLocked(*supply.Amount); err != nil {
			return err
		}
		rd.totalSupply = rd.totalSupply.Sub(*supply.Amount)
	} else {
		if supply.Keys == nil {
			return ErrTypeAndSupplyNotMatching
		}
		rd.totalSupply = rd.totalSupply.Sub(types.NewDecimalFromInt64(int64(len(supply.Keys))))
	}
	log.WithFields(log.Fields{"supply": rd.totalSupply.String()}).Info("resource: burned")
	return nil
}

// UpdateFlags replaces flags, requiring every changed bit to already be a
// member of mutable_flags and rejecting FREELY_BURNABLE without BURNABLE.
// These checks come before the badge's MayManageResourceFlags permission.
func (rd *ResourceDef) UpdateFlags(newFlags uint64, badge *types.Address) error {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	changed := rd.flags ^ newFlags
	if !flagsValid(changed) {
		return ErrInvalidResourceFlags
	}
	if rd.mutableFlags|changed != rd.mutableFlags {
		return ErrInvalidFlagUpdate
	}
	if isFlagOn(newFlags, FreelyBurnable) && !isFlagOn(newFlags, Burnable) {
		return ErrFreelyBurnableWithoutBurnable
	}
	if err := rd.checkPermissionLocked(badge, MayManageResourceFlags); err != nil {
		return err
	}
	rd.flags = newFlags
	return nil
}

// UpdateMutableFlags replaces the mutable_flags mask itself, subject to the
// same "changed bits already mutable" discipline.
func (rd *ResourceDef) UpdateMutableFlags(newMutableFlags uint64, badge *types.Address) error {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	if err := rd.checkPermissionLocked(badge, MayManageResourceFlags); err != nil {
		return err
	}
	changed := rd.mutableFlags ^ newMutableFlags
	if !flagsValid(changed) {
		return ErrInvalidResourceFlags
	}
	if rd.mutableFlags|changed != rd.mutableFlags {
		return ErrInvalidFlagUpdate
	}
	rd.mutableFlags = newMutableFlags
	return nil
}

// UpdateMetadata replaces the metadata map, requiring SHARED_METADATA_MUTABLE.
func (rd *ResourceDef) UpdateMetadata(newMetadata map[string]string, badge *types.Address) error {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	if !rd.isFlagOnLocked(SharedMetadataMutable) {
		return ErrOperationNotAllowed
	}
	if err := rd.checkPermissionLocked(badge, MayChangeSharedMeta); err != nil {
		return err
	}
	md := make(map[string]string, len(newMetadata))
	for k, v := range newMetadata {
		md[k] = v
	}
	rd.metadata = md
	return nil
}
