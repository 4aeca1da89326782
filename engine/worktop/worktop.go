// Package worktop implements the per-frame transient resource staging area
// between instructions: the Worktop (pooled Buckets by resource) and the
// AuthZone (active Proofs). The Take/TakeAll/TakeNonFungibles/Return/
// AssertContains vocabulary is grounded on
// original_source/radix-engine/src/model/validated_transaction.rs's
// ValidatedInstruction variants of the same names, and on
// original_source/radix-engine/tests/account.rs's take_from_worktop/
// call_method_with_all_resources scenarios for the drain-on-exit behavior.
// The mutex-guarded aggregation style follows core/tokens.go's BalanceTable,
// adapted to the Bucket/Container primitives in engine/resource.

package worktop

import (
	"errors"
	"sync"

	"github.com/synnergy/assetengine/engine/resource"
	"github.com/synnergy/assetengine/engine/types"
)

var (
	ErrWorktopResourceMissing = errors.New("worktop: no balance held for resource")
	ErrWorktopAssertionFailed = errors.New("worktop: assertion failed")
)

// Worktop pools the Buckets produced between instructions by resource
// address, merging same-resource deposits into a single running container.
type Worktop struct {
	mu    sync.Mutex
	pools map[types.Address]*resource.Container
}

// New returns an empty worktop.
func New() *Worktop {
	return &Worktop{pools: make(map[types.Address]*resource.Container)}
}

// Return deposits a bucket's contents into the worktop's pool for its
// resource, consuming the bucket.
func (w *Worktop) Return(b *resource.Bucket) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	pool, ok := w.pools[b.Resource()]
	if !ok {
		pool = emptyPoolLike(b)
		w.pools[b.Resource()] = pool
	}
	if err := pool.Put(b.Container()); err != nil {
		return err
	}
	b.MarkMoved()
	return nil
}

func emptyPoolLike(b *resource.Bucket) *resource.Container {
	if b.IsNonFungible() {
		c, _ := resource.NewNonFungibleContainer(b.Resource(), nil)
		return c
	}
	return resource.NewEmptyFungibleContainer(b.Resource())
}

// Take withdraws a fungible amount from the pool into a freshly allocated
// Bucket, using the given id.
func (w *Worktop) Take(resourceAddr types.Address, amount types.Decimal, newBid types.Bid) (*resource.Bucket, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	pool, ok := w.pools[resourceAddr]
	if !ok {
		return nil, ErrWorktopResourceMissing
	}
	sub, err := pool.TakeAmount(amount)
	if err != nil {
		return nil, err
	}
	return resource.NewBucket(newBid, sub), nil
}

// TakeAll drains the entire pooled balance of a resource into a new Bucket.
func (w *Worktop) TakeAll(resourceAddr types.Address, newBid types.Bid) (*resource.Bucket, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	pool, ok := w.pools[resourceAddr]
	if !ok {
		return nil, ErrWorktopResourceMissing
	}
	return resource.NewBucket(newBid, pool.TakeAll()), nil
}

// TakeNonFungibles withdraws an exact key-set from the pool into a new
// Bucket.
func (w *Worktop) TakeNonFungibles(resourceAddr types.Address, keys []types.NonFungibleKey, newBid types.Bid) (*resource.Bucket, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	pool, ok := w.pools[resourceAddr]
	if !ok {
		return nil, ErrWorktopResourceMissing
	}
	sub, err := pool.TakeKeys(keys)
	if err != nil {
		return nil, err
	}
	return resource.NewBucket(newBid, sub), nil
}

// AssertContains is a read-only invariant check: it fails the transaction
// if the pooled balance of resourceAddr is below amount.
func (w *Worktop) AssertContains(resourceAddr types.Address, amount types.Decimal) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	pool, ok := w.pools[resourceAddr]
	if !ok {
		if amount.IsZero() {
			return nil
		}
		return ErrWorktopAssertionFailed
	}
	if pool.Amount().Cmp(amount) < 0 {
		return ErrWorktopAssertionFailed
	}
	return nil
}

// IsEmpty reports whether every pool on the worktop holds nothing. A
// non-empty worktop at the end of a transaction is a caller error: every
// bucket must end up deposited into a vault, returned, or burned.
func (w *Worktop) IsEmpty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, pool := range w.pools {
		if !pool.IsEmpty() {
			return false
		}
	}
	return true
}

// DrainAll empties every pool into one Bucket per resource, for
// CallMethodWithAllResources's implicit deposit-all semantics.
func (w *Worktop) DrainAll(nextBid func() (types.Bid, error)) ([]*resource.Bucket, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []*resource.Bucket
	for addr, pool := range w.pools {
		if pool.IsEmpty() {
			continue
		}
		bid, err := nextBid()
		if err != nil {
			return nil, err
		}
		out = append(out, resource.NewBucket(bid, pool.TakeAll()))
		_ = addr
	}
	return out, nil
}
