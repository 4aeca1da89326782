package track

import (
	"sync"

	"github.com/synnergy/assetengine/engine/resource"
	"github.com/synnergy/assetengine/engine/types"
)

// SubstateStore is the persistent ledger backend the Track stages writes
// against. It is an external collaborator: the engine core
// only ever talks to this interface, never to a concrete backend.
type SubstateStore interface {
	GetPackage(types.Address) (*Package, bool)
	PutPackage(types.Address, *Package)
	GetComponent(types.Address) (*Component, bool)
	PutComponent(types.Address, *Component)
	GetResourceDef(types.Address) (*resource.ResourceDef, bool)
	PutResourceDef(types.Address, *resource.ResourceDef)
	GetLazyMap(types.Address, types.Mid) (*LazyMap, bool)
	PutLazyMap(types.Address, types.Mid, *LazyMap)
	GetVault(types.Address, types.Vid) (*resource.Vault, bool)
	PutVault(types.Address, types.Vid, *resource.Vault)
	GetNonFungible(types.Address, types.NonFungibleKey) (*resource.NonFungible, bool)
	PutNonFungible(types.Address, types.NonFungibleKey, *resource.NonFungible)
	GetEpoch() uint64
}

type lazyMapKey struct {
	addr types.Address
	mid  types.Mid
}

type vaultKey struct {
	addr types.Address
	vid  types.Vid
}

type nonFungibleKey struct {
	addr types.Address
	key  types.NonFungibleKey
}

// MemoryStore is a simple in-process SubstateStore, backed by plain
// mutex-guarded maps. It is the default backend for tests and for the CLI's
// ephemeral runs; a durable deployment supplies its own SubstateStore.
type MemoryStore struct {
	mu           sync.RWMutex
	packages     map[types.Address]*Package
	components   map[types.Address]*Component
	resourceDefs map[types.Address]*resource.ResourceDef
	lazyMaps     map[lazyMapKey]*LazyMap
	vaults       map[vaultKey]*resource.Vault
	nonFungibles map[nonFungibleKey]*resource.NonFungible
	epoch        uint64
}

// NewMemoryStore returns an empty store at epoch 0.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		packages:     make(map[types.Address]*Package),
		components:   make(map[types.Address]*Component),
		resourceDefs: make(map[types.Address]*resource.ResourceDef),
		lazyMaps:     make(map[lazyMapKey]*LazyMap),
		vaults:       make(map[vaultKey]*resource.Vault),
		nonFungibles: make(map[nonFungibleKey]*resource.NonFungible),
	}
}

func (s *MemoryStore) GetPackage(a types.Address) (*Package, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.packages[a]
	return p, ok
}

func (s *MemoryStore) PutPackage(a types.Address, p *Package) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packages[a] = p
}

func (s *MemoryStore) GetComponent(a types.Address) (*Component, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.components[a]
	return c, ok
}

func (s *MemoryStore) PutComponent(a types.Address, c *Component) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.components[a] = c
}

func (s *MemoryStore) GetResourceDef(a types.Address) (*resource.ResourceDef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rd, ok := s.resourceDefs[a]
	return rd, ok
}

func (s *MemoryStore) PutResourceDef(a types.Address, rd *resource.ResourceDef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resourceDefs[a] = rd
}

func (s *MemoryStore) GetLazyMap(a types.Address, m types.Mid) (*LazyMap, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lm, ok := s.lazyMaps[lazyMapKey{a, m}]
	return lm, ok
}

func (s *MemoryStore) PutLazyMap(a types.Address, m types.Mid, lm *LazyMap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lazyMaps[lazyMapKey{a, m}] = lm
}

func (s *MemoryStore) GetVault(a types.Address, v types.Vid) (*resource.Vault, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vault, ok := s.vaults[vaultKey{a, v}]
	return vault, ok
}

func (s *MemoryStore) PutVault(a types.Address, v types.Vid, vault *resource.Vault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vaults[vaultKey{a, v}] = vault
}

func (s *MemoryStore) GetNonFungible(a types.Address, k types.NonFungibleKey) (*resource.NonFungible, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nf, ok := s.nonFungibles[nonFungibleKey{a, k}]
	return nf, ok
}

func (s *MemoryStore) PutNonFungible(a types.Address, k types.NonFungibleKey, nf *resource.NonFungible) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonFungibles[nonFungibleKey{a, k}] = nf
}

func (s *MemoryStore) GetEpoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// SetEpoch lets tests/CLI advance the simulated epoch between transactions.
func (s *MemoryStore) SetEpoch(e uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch = e
}
