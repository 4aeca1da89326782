// Package track implements the transactional write-ahead buffer of the
// engine: a read-through cache over a SubstateStore, deferring every write
// until a successful transaction calls Commit.
package track

import (
	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"

	"github.com/synnergy/assetengine/engine/idalloc"
	"github.com/synnergy/assetengine/engine/resource"
	"github.com/synnergy/assetengine/engine/types"
)

// LogLevel mirrors the level argument EMIT_LOG accepts.
type LogLevel int

const (
	LogError LogLevel = iota
	LogWarn
	LogInfo
	LogDebug
	LogTrace
)

// LogEntry is one message appended to the Track's log buffer.
type LogEntry struct {
	Level   LogLevel
	Message string
}

const codeCacheSize = 1024

// Track is the per-transaction staging layer over a SubstateStore. A
// Process frame borrows the Track for its entire invocation; nested calls
// share the same Track (stack discipline).
type Track struct {
	store   SubstateStore
	txHash  types.Hash
	signers []types.SignerKey
	alloc   *idalloc.Allocator

	logs        []LogEntry
	newEntities []types.Address

	packages        map[types.Address]*Package
	updatedPackages map[types.Address]struct{}

	components        map[types.Address]*Component
	updatedComponents map[types.Address]struct{}

	resourceDefs        map[types.Address]*resource.ResourceDef
	updatedResourceDefs map[types.Address]struct{}

	lazyMaps        map[lazyMapKey]*LazyMap
	updatedLazyMaps map[lazyMapKey]struct{}

	vaults        map[vaultKey]*resource.Vault
	updatedVaults map[vaultKey]struct{}

	nonFungibles        map[nonFungibleKey]*resource.NonFungible
	updatedNonFungibles map[nonFungibleKey]struct{}

	codeCache *lru.Cache[types.Address, []byte]
}

// New constructs a Track over the given store for one transaction,
// identified by its hash and signer set, with the spec-fixed 1024-entry
// code cache (§4.3).
func New(store SubstateStore, txHash types.Hash, signers []types.SignerKey) *Track {
	return NewWithCacheSize(store, txHash, signers, codeCacheSize)
}

// NewWithCacheSize is New with a caller-supplied code-cache capacity, for
// deployments that tune it via engine/config rather than accepting the
// spec's default.
func NewWithCacheSize(store SubstateStore, txHash types.Hash, signers []types.SignerKey, cacheSize int) *Track {
	if cacheSize <= 0 {
		cacheSize = codeCacheSize
	}
	cache, err := lru.New[types.Address, []byte](cacheSize)
	if err != nil {
		// Only fails for a non-positive size, guarded against above.
		panic(err)
	}
	return &Track{
		store:   store,
		txHash:  txHash,
		signers: append([]types.SignerKey(nil), signers...),
		alloc:   idalloc.New(idalloc.SpaceApplication),

		packages:            make(map[types.Address]*Package),
		updatedPackages:     make(map[types.Address]struct{}),
		components:          make(map[types.Address]*Component),
		updatedComponents:   make(map[types.Address]struct{}),
		resourceDefs:        make(map[types.Address]*resource.ResourceDef),
		updatedResourceDefs: make(map[types.Address]struct{}),
		lazyMaps:            make(map[lazyMapKey]*LazyMap),
		updatedLazyMaps:     make(map[lazyMapKey]struct{}),
		vaults:              make(map[vaultKey]*resource.Vault),
		updatedVaults:       make(map[vaultKey]struct{}),
		nonFungibles:        make(map[nonFungibleKey]*resource.NonFungible),
		updatedNonFungibles: make(map[nonFungibleKey]struct{}),
		codeCache:           cache,
	}
}

func (t *Track) TransactionHash() types.Hash   { return t.txHash }
func (t *Track) Signers() []types.SignerKey    { return append([]types.SignerKey(nil), t.signers...) }
func (t *Track) CurrentEpoch() uint64          { return t.store.GetEpoch() }
func (t *Track) Logs() []LogEntry              { return append([]LogEntry(nil), t.logs...) }
func (t *Track) NewEntities() []types.Address  { return append([]types.Address(nil), t.newEntities...) }

// AddLog appends a message to the transaction's log buffer.
func (t *Track) AddLog(level LogLevel, message string) {
	t.logs = append(t.logs, LogEntry{Level: level, Message: message})
}

// --- ID / address allocation -------------------------------------------------

func (t *Track) NewPackageAddress() (types.Address, error) {
	addr, err := t.alloc.NewPackageAddress(t.txHash)
	if err != nil {
		return addr, err
	}
	t.newEntities = append(t.newEntities, addr)
	return addr, nil
}

func (t *Track) NewComponentAddress() (types.Address, error) {
	addr, err := t.alloc.NewComponentAddress(t.txHash)
	if err != nil {
		return addr, err
	}
	t.newEntities = append(t.newEntities, addr)
	return addr, nil
}

func (t *Track) NewResourceAddress() (types.Address, error) {
	addr, err := t.alloc.NewResourceAddress(t.txHash)
	if err != nil {
		return addr, err
	}
	t.newEntities = append(t.newEntities, addr)
	return addr, nil
}

func (t *Track) NewUUID() (types.UUID, error) { return t.alloc.NewUUID(t.txHash) }
func (t *Track) NewBid() (types.Bid, error)   { return t.alloc.NewBid() }
func (t *Track) NewRid() (types.Rid, error)   { return t.alloc.NewRid() }
func (t *Track) NewVid() (types.Vid, error)   { return t.alloc.NewVid(t.txHash) }
func (t *Track) NewMid() (types.Mid, error)   { return t.alloc.NewMid(t.txHash) }

// --- Packages -----------------------------------------------------------------

func (t *Track) GetPackage(addr types.Address) (*Package, bool) {
	if p, ok := t.packages[addr]; ok {
		return p, true
	}
	if p, ok := t.store.GetPackage(addr); ok {
		t.packages[addr] = p
		return p, true
	}
	return nil, false
}

func (t *Track) PutPackage(addr types.Address, p *Package) {
	t.updatedPackages[addr] = struct{}{}
	t.packages[addr] = p
}

// --- Components -----------------------------------------------------------------

func (t *Track) GetComponent(addr types.Address) (*Component, bool) {
	if c, ok := t.components[addr]; ok {
		return c, true
	}
	if c, ok := t.store.GetComponent(addr); ok {
		t.components[addr] = c
		return c, true
	}
	return nil, false
}

func (t *Track) GetComponentMut(addr types.Address) (*Component, bool) {
	t.updatedComponents[addr] = struct{}{}
	return t.GetComponent(addr)
}

func (t *Track) PutComponent(addr types.Address, c *Component) {
	t.updatedComponents[addr] = struct{}{}
	t.components[addr] = c
}

// --- Resource definitions -----------------------------------------------------

func (t *Track) GetResourceDef(addr types.Address) (*resource.ResourceDef, bool) {
	if rd, ok := t.resourceDefs[addr]; ok {
		return rd, true
	}
	if rd, ok := t.store.GetResourceDef(addr); ok {
		t.resourceDefs[addr] = rd
		return rd, true
	}
	return nil, false
}

func (t *Track) PutResourceDef(addr types.Address, rd *resource.ResourceDef) {
	t.updatedResourceDefs[addr] = struct{}{}
	t.resourceDefs[addr] = rd
}

// --- Lazy maps -----------------------------------------------------------------

func (t *Track) GetLazyMap(addr types.Address, mid types.Mid) (*LazyMap, bool) {
	key := lazyMapKey{addr, mid}
	if m, ok := t.lazyMaps[key]; ok {
		return m, true
	}
	if m, ok := t.store.GetLazyMap(addr, mid); ok {
		t.lazyMaps[key] = m
		return m, true
	}
	return nil, false
}

func (t *Track) GetLazyMapMut(addr types.Address, mid types.Mid) (*LazyMap, bool) {
	t.updatedLazyMaps[lazyMapKey{addr, mid}] = struct{}{}
	return t.GetLazyMap(addr, mid)
}

func (t *Track) PutLazyMap(addr types.Address, mid types.Mid, m *LazyMap) {
	key := lazyMapKey{addr, mid}
	t.updatedLazyMaps[key] = struct{}{}
	t.lazyMaps[key] = m
}

// --- Vaults -----------------------------------------------------------------

func (t *Track) GetVaultMut(addr types.Address, vid types.Vid) (*resource.Vault, bool) {
	key := vaultKey{addr, vid}
	t.updatedVaults[key] = struct{}{}
	if v, ok := t.vaults[key]; ok {
		return v, true
	}
	if v, ok := t.store.GetVault(addr, vid); ok {
		t.vaults[key] = v
		return v, true
	}
	return nil, false
}

func (t *Track) PutVault(addr types.Address, vid types.Vid, v *resource.Vault) {
	key := vaultKey{addr, vid}
	t.updatedVaults[key] = struct{}{}
	t.vaults[key] = v
}

// --- Non-fungibles -----------------------------------------------------------

func (t *Track) GetNonFungible(addr types.Address, k types.NonFungibleKey) (*resource.NonFungible, bool) {
	key := nonFungibleKey{addr, k}
	if nf, ok := t.nonFungibles[key]; ok {
		return nf, true
	}
	if nf, ok := t.store.GetNonFungible(addr, k); ok {
		t.nonFungibles[key] = nf
		return nf, true
	}
	return nil, false
}

func (t *Track) GetNonFungibleMut(addr types.Address, k types.NonFungibleKey) (*resource.NonFungible, bool) {
	t.updatedNonFungibles[nonFungibleKey{addr, k}] = struct{}{}
	return t.GetNonFungible(addr, k)
}

func (t *Track) PutNonFungible(addr types.Address, k types.NonFungibleKey, nf *resource.NonFungible) {
	key := nonFungibleKey{addr, k}
	t.updatedNonFungibles[key] = struct{}{}
	t.nonFungibles[key] = nf
}

// --- Root frame setup -----------------------------------------------------------

// SeedVirtualSignatureBucket builds the ECDSA_TOKEN bucket bound to the
// reserved (Bid=0, Rid=1) ids for the root Process frame. It is seeded
// unconditionally, even for a zero-signer transaction.
func (t *Track) SeedVirtualSignatureBucket() *resource.Bucket {
	keys := make([]types.NonFungibleKey, 0, len(t.signers))
	for _, signer := range t.signers {
		keys = append(keys, types.NewNonFungibleKey(signer.Bytes()))
	}
	c, err := resource.NewNonFungibleContainer(types.ECDSAToken, keys)
	if err != nil {
		// Signers are deduplicated by the validator before the Track ever
		// sees them; a collision here means that guarantee broke.
		panic(err)
	}
	return resource.NewBucket(idalloc.ECDSATokenBid, c)
}

// --- Code cache -----------------------------------------------------------------

// LoadModuleBytes returns the (possibly cached) raw module bytes for a
// package, reading through to the package's code on a cache miss. Parsing
// those bytes into a guest VM's internal module representation is the
// engine/vm package's job; Track only amortizes the byte fetch across
// repeated invocations of the same package within a transaction.
func (t *Track) LoadModuleBytes(addr types.Address) ([]byte, bool) {
	if code, ok := t.codeCache.Get(addr); ok {
		return code, true
	}
	p, ok := t.GetPackage(addr)
	if !ok {
		return nil, false
	}
	t.codeCache.Add(addr, p.Code)
	return p.Code, true
}

// --- Commit -----------------------------------------------------------------

// Commit writes every updated entry back to the SubstateStore. Called only
// on a successful transaction; on failure the Track (and this method) is
// simply never reached, and everything staged here is discarded with it.
func (t *Track) Commit() {
	for addr := range t.updatedPackages {
		t.store.PutPackage(addr, t.packages[addr])
	}
	for addr := range t.updatedComponents {
		t.store.PutComponent(addr, t.components[addr])
	}
	for addr := range t.updatedResourceDefs {
		t.store.PutResourceDef(addr, t.resourceDefs[addr])
	}
	for key := range t.updatedLazyMaps {
		t.store.PutLazyMap(key.addr, key.mid, t.lazyMaps[key])
	}
	for key := range t.updatedVaults {
		t.store.PutVault(key.addr, key.vid, t.vaults[key])
	}
	for key := range t.updatedNonFungibles {
		t.store.PutNonFungible(key.addr, key.key, t.nonFungibles[key])
	}
	log.WithFields(log.Fields{
		"tx":            t.txHash.Hex(),
		"new_entities":  len(t.newEntities),
		"updated_vault": len(t.updatedVaults),
	}).Info("track: committed")
}
