package resource

import (
	"sort"
	"sync"

	"github.com/synnergy/assetengine/engine/types"
)

// Container is the fungible/non-fungible holding logic shared by Vault and
// Bucket: each wraps a Container with its own transient/persistent identity.
type Container struct {
	mu          sync.Mutex
	resource    types.Address
	nonFungible bool
	amount      types.Decimal
	keys        map[types.NonFungibleKey]struct{}
}

// NewFungibleContainer creates a container holding a fungible amount.
func NewFungibleContainer(resource types.Address, amount types.Decimal) *Container {
	return &Container{resource: resource, amount: amount}
}

// NewEmptyFungibleContainer creates a zero-balance fungible container, as
// produced by CREATE_EMPTY_BUCKET.
func NewEmptyFungibleContainer(resource types.Address) *Container {
	return NewFungibleContainer(resource, types.ZeroDecimal())
}

// NewNonFungibleContainer creates a container holding the given key set,
// rejecting duplicate keys.
func NewNonFungibleContainer(resource types.Address, keys []types.NonFungibleKey) (*Container, error) {
	set := make(map[types.NonFungibleKey]struct{}, len(keys))
	for _, k := range keys {
		if _, exists := set[k]; exists {
			return nil, ErrNonFungibleKeyExists
		}
		set[k] = struct{}{}
	}
	return &Container{resource: resource, nonFungible: true, keys: set}, nil
}

func (c *Container) Resource() types.Address { return c.resource }
func (c *Container) IsNonFungible() bool     { return c.nonFungible }

func (c *Container) Amount() types.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nonFungible {
		return types.NewDecimalFromInt64(int64(len(c.keys)))
	}
	return c.amount
}

// Keys returns the held non-fungible key set in sorted order, so iteration
// never leaks nondeterminism.
func (c *Container) Keys() []types.NonFungibleKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.NonFungibleKey, 0, len(c.keys))
	for k := range c.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (c *Container) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nonFungible {
		return len(c.keys) == 0
	}
	return c.amount.IsZero()
}

// Put merges another container's contents into this one. Requires a
// matching resource address and container kind.
func (c *Container) Put(other *Container) error {
	if other == nil {
		return nil
	}
	if c.resource != other.resource {
		return ErrResourceMismatch
	}
	if c.nonFungible != other.nonFungible {
		return ErrWrongContainerKind
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	other.mu.Lock()
	defer other.mu.Unlock()

	if c.nonFungible {
		if c.keys == nil {
			c.keys = make(map[types.NonFungibleKey]struct{}, len(other.keys))
		}
		for k := range other.keys {
			if _, exists := c.keys[k]; exists {
				return ErrNonFungibleKeyExists
			}
		}
		for k := range other.keys {
			c.keys[k] = struct{}{}
		}
		other.keys = map[types.NonFungibleKey]struct{}{}
		return nil
	}
	c.amount = c.amount.Add(other.amount)
	other.amount = types.ZeroDecimal()
	return nil
}

// TakeAmount splits off a fungible sub-container of the given amount.
func (c *Container) TakeAmount(amount types.Decimal) (*Container, error) {
	if c.nonFungible {
		return nil, ErrWrongContainerKind
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if amount.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if amount.Cmp(c.amount) > 0 {
		return nil, ErrInsufficientBalance
	}
	c.amount = c.amount.Sub(amount)
	return NewFungibleContainer(c.resource, amount), nil
}

// TakeKey removes a single non-fungible key into its own sub-container.
func (c *Container) TakeKey(key types.NonFungibleKey) (*Container, error) {
	if !c.nonFungible {
		return nil, ErrWrongContainerKind
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.keys[key]; !ok {
		return nil, ErrNonFungibleKeyMissing
	}
	delete(c.keys, key)
	out, _ := NewNonFungibleContainer(c.resource, []types.NonFungibleKey{key})
	return out, nil
}

// TakeKeys removes an exact set of non-fungible keys.
func (c *Container) TakeKeys(keys []types.NonFungibleKey) (*Container, error) {
	if !c.nonFungible {
		return nil, ErrWrongContainerKind
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		if _, ok := c.keys[k]; !ok {
			return nil, ErrNonFungibleKeyMissing
		}
	}
	for _, k := range keys {
		delete(c.keys, k)
	}
	return NewNonFungibleContainer(c.resource, keys)
}

// TakeAll drains the entire balance/key-set into a new container, leaving
// this one empty.
func (c *Container) TakeAll() *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nonFungible {
		keys := make([]types.NonFungibleKey, 0, len(c.keys))
		for k := range c.keys {
			keys = append(keys, k)
		}
		c.keys = map[types.NonFungibleKey]struct{}{}
		out, _ := NewNonFungibleContainer(c.resource, keys)
		return out
	}
	amt := c.amount
	c.amount = types.ZeroDecimal()
	return NewFungibleContainer(c.resource, amt)
}
