package resource

import "github.com/synnergy/assetengine/engine/types"

// BucketState tracks a Bucket's lifecycle: it moves from Active through
// exactly one terminal state per transaction.
type BucketState int

const (
	BucketStateActive BucketState = iota
	BucketStateMoved
	BucketStateStored
	BucketStateBurned
)

func (s BucketState) String() string {
	switch s {
	case BucketStateActive:
		return "Active"
	case BucketStateMoved:
		return "Moved"
	case BucketStateStored:
		return "Stored"
	case BucketStateBurned:
		return "Burned"
	default:
		return "Unknown"
	}
}

// Bucket is a transient resource container living only within one
// transaction.
type Bucket struct {
	id    types.Bid
	c     *Container
	state BucketState
}

// NewBucket wraps a container with a transaction-local bucket id, in the
// Active state.
func NewBucket(id types.Bid, c *Container) *Bucket {
	return &Bucket{id: id, c: c, state: BucketStateActive}
}

func (b *Bucket) ID() types.Bid               { return b.id }
func (b *Bucket) Resource() types.Address     { return b.c.Resource() }
func (b *Bucket) IsNonFungible() bool         { return b.c.IsNonFungible() }
func (b *Bucket) Amount() types.Decimal       { return b.c.Amount() }
func (b *Bucket) Keys() []types.NonFungibleKey { return b.c.Keys() }
func (b *Bucket) IsEmpty() bool               { return b.c.IsEmpty() }
func (b *Bucket) State() BucketState          { return b.state }

// Container exposes the underlying container for Proof snapshotting and for
// Vault.Put; it does not change the bucket's state by itself.
func (b *Bucket) Container() *Container { return b.c }

// MarkMoved records that the bucket's ownership passed to another frame as
// an argument or return value.
func (b *Bucket) MarkMoved() { b.state = BucketStateMoved }

// MarkBurned records that BURN_RESOURCE consumed the bucket.
func (b *Bucket) MarkBurned() { b.state = BucketStateBurned }

// Put merges another bucket's contents into this one, consuming it.
func (b *Bucket) Put(other *Bucket) error {
	if err := b.c.Put(other.c); err != nil {
		return err
	}
	other.state = BucketStateMoved
	return nil
}

// Take splits off a fungible sub-container for a new Bucket (caller assigns
// the new Bid).
func (b *Bucket) Take(amount types.Decimal) (*Container, error) {
	return b.c.TakeAmount(amount)
}

// TakeNonFungible removes a single keyed unit for a new Bucket.
func (b *Bucket) TakeNonFungible(key types.NonFungibleKey) (*Container, error) {
	return b.c.TakeKey(key)
}
