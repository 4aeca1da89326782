package resource

import (
	"github.com/synnergy/assetengine/engine/types"
)

// Vault is a persistent resource container bound to a component. Unlike
// Bucket it is never dropped: the Process layer enforces that any Vault
// constructed during a call ends up stored in component state.
type Vault struct {
	id types.Vid
	c  *Container
}

// NewVault wraps a container with its persistent vault identity.
func NewVault(id types.Vid, c *Container) *Vault {
	return &Vault{id: id, c: c}
}

func (v *Vault) ID() types.Vid           { return v.id }
func (v *Vault) Resource() types.Address { return v.c.Resource() }
func (v *Vault) IsNonFungible() bool     { return v.c.IsNonFungible() }
func (v *Vault) Amount() types.Decimal   { return v.c.Amount() }
func (v *Vault) Keys() []types.NonFungibleKey { return v.c.Keys() }

// Put deposits a bucket's entire contents into the vault, consuming it.
func (v *Vault) Put(b *Bucket) error {
	if err := v.c.Put(b.c); err != nil {
		return err
	}
	b.state = BucketStateStored
	return nil
}

// Take withdraws a fungible amount, returning it as a bare container for
// the caller (Process) to wrap in a freshly allocated Bucket.
func (v *Vault) Take(amount types.Decimal) (*Container, error) {
	return v.c.TakeAmount(amount)
}

// TakeWithAuth is Take, additionally enforcing RESTRICTED_TRANSFER via the
// resource definition's check_take_from_vault_auth and the amount's
// granularity against the resource's divisibility.
func (v *Vault) TakeWithAuth(amount types.Decimal, def *ResourceDef, badge *types.Address) (*Container, error) {
	if err := def.CheckTakeFromVaultAuth(badge); err != nil {
		return nil, err
	}
	if err := def.CheckAmount(amount); err != nil {
		return nil, err
	}
	return v.Take(amount)
}

// TakeNonFungible withdraws a single keyed unit.
func (v *Vault) TakeNonFungible(key types.NonFungibleKey) (*Container, error) {
	return v.c.TakeKey(key)
}

// TakeAll drains the vault entirely.
func (v *Vault) TakeAll() *Container { return v.c.TakeAll() }
