package track

import (
	"encoding/json"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/synnergy/assetengine/engine/resource"
	"github.com/synnergy/assetengine/engine/types"
)

// snapshotDoc is the whole-store JSON layout a FileStore reads/writes. Every
// compound key is spelled out as explicit struct fields rather than a JSON
// map key, since Address/Vid/Mid don't round-trip as JSON object keys.
type snapshotDoc struct {
	Epoch      uint64                  `json:"epoch"`
	Packages   []packageEntry          `json:"packages"`
	Components []componentEntry        `json:"components"`
	Resources  []resourceEntry         `json:"resources"`
	LazyMaps   []lazyMapEntry          `json:"lazy_maps"`
	Vaults     []vaultEntry            `json:"vaults"`
	NonFungs   []nonFungibleEntry      `json:"non_fungibles"`
}

type packageEntry struct {
	Addr types.Address `json:"addr"`
	Code []byte        `json:"code"`
	Hash types.Hash    `json:"hash"`
}

type componentEntry struct {
	Addr types.Address `json:"addr"`
	Component
}

type resourceEntry struct {
	Addr types.Address     `json:"addr"`
	Snap resource.Snapshot `json:"snap"`
}

type lazyMapEntry struct {
	Addr    types.Address     `json:"addr"`
	Mid     types.Mid         `json:"mid"`
	Entries map[string][]byte `json:"entries"`
}

type vaultEntry struct {
	Addr        types.Address          `json:"addr"`
	Vid         types.Vid              `json:"vid"`
	Resource    types.Address          `json:"resource"`
	NonFungible bool                   `json:"non_fungible"`
	Amount      types.Decimal          `json:"amount"`
	Keys        []types.NonFungibleKey `json:"keys"`
}

type nonFungibleEntry struct {
	Addr types.Address        `json:"addr"`
	Key  types.NonFungibleKey `json:"key"`
	resource.NonFungible
}

// FileStore is a JSON-file-backed SubstateStore: the entire ledger state
// lives in memory (like MemoryStore) and is (de)serialized to a single file
// wholesale, mirroring the teacher's json.Marshal/Unmarshal persistence
// idiom (core/ai.go and friends) rather than a real incremental WAL. Good
// enough for the CLI driver and for tests that need state to survive a
// process restart; a production deployment supplies its own SubstateStore.
type FileStore struct {
	mu   sync.RWMutex
	path string
	mem  *MemoryStore
}

// OpenFileStore loads path if it exists, or starts from an empty store.
func OpenFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path, mem: NewMemoryStore()}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fs, nil
	}
	if err != nil {
		return nil, err
	}
	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	fs.load(doc)
	return fs, nil
}

func (fs *FileStore) load(doc snapshotDoc) {
	fs.mem.SetEpoch(doc.Epoch)
	for _, e := range doc.Packages {
		fs.mem.PutPackage(e.Addr, &Package{Code: e.Code, CodeHash: e.Hash})
	}
	for _, e := range doc.Components {
		c := e.Component
		fs.mem.PutComponent(e.Addr, &c)
	}
	for _, e := range doc.Resources {
		fs.mem.PutResourceDef(e.Addr, resource.FromSnapshot(e.Snap))
	}
	for _, e := range doc.LazyMaps {
		fs.mem.PutLazyMap(e.Addr, e.Mid, NewLazyMapFromEntries(e.Entries))
	}
	for _, e := range doc.Vaults {
		var c *resource.Container
		if e.NonFungible {
			c, _ = resource.NewNonFungibleContainer(e.Resource, e.Keys)
		} else {
			c = resource.NewFungibleContainer(e.Resource, e.Amount)
		}
		fs.mem.PutVault(e.Addr, e.Vid, resource.NewVault(e.Vid, c))
	}
	for _, e := range doc.NonFungs {
		nf := e.NonFungible
		fs.mem.PutNonFungible(e.Addr, e.Key, &nf)
	}
}

// Flush writes the full current state to path, overwriting it. Called by
// the CLI driver after every transaction commits.
func (fs *FileStore) Flush() error {
	fs.mu.RLock()
	doc := fs.snapshot()
	fs.mu.RUnlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(fs.path, data, 0o600); err != nil {
		return err
	}
	log.WithFields(log.Fields{"path": fs.path, "bytes": len(data)}).Info("track: store flushed to disk")
	return nil
}

func (fs *FileStore) snapshot() snapshotDoc {
	var doc snapshotDoc
	doc.Epoch = fs.mem.GetEpoch()

	fs.mem.mu.RLock()
	defer fs.mem.mu.RUnlock()

	for addr, p := range fs.mem.packages {
		doc.Packages = append(doc.Packages, packageEntry{Addr: addr, Code: p.Code, Hash: p.CodeHash})
	}
	for addr, c := range fs.mem.components {
		doc.Components = append(doc.Components, componentEntry{Addr: addr, Component: *c})
	}
	for addr, rd := range fs.mem.resourceDefs {
		doc.Resources = append(doc.Resources, resourceEntry{Addr: addr, Snap: rd.ToSnapshot()})
	}
	for key, m := range fs.mem.lazyMaps {
		doc.LazyMaps = append(doc.LazyMaps, lazyMapEntry{Addr: key.addr, Mid: key.mid, Entries: m.All()})
	}
	for key, v := range fs.mem.vaults {
		doc.Vaults = append(doc.Vaults, vaultEntry{
			Addr: key.addr, Vid: key.vid, Resource: v.Resource(),
			NonFungible: v.IsNonFungible(), Amount: v.Amount(), Keys: v.Keys(),
		})
	}
	for key, nf := range fs.mem.nonFungibles {
		doc.NonFungs = append(doc.NonFungs, nonFungibleEntry{Addr: key.addr, Key: key.key, NonFungible: *nf})
	}
	return doc
}

// SubstateStore passthrough: FileStore mutates the in-memory copy on every
// call and only touches disk on Flush.

func (fs *FileStore) GetPackage(a types.Address) (*Package, bool) { return fs.mem.GetPackage(a) }
func (fs *FileStore) PutPackage(a types.Address, p *Package)       { fs.mem.PutPackage(a, p) }

func (fs *FileStore) GetComponent(a types.Address) (*Component, bool) { return fs.mem.GetComponent(a) }
func (fs *FileStore) PutComponent(a types.Address, c *Component)      { fs.mem.PutComponent(a, c) }

func (fs *FileStore) GetResourceDef(a types.Address) (*resource.ResourceDef, bool) {
	return fs.mem.GetResourceDef(a)
}
func (fs *FileStore) PutResourceDef(a types.Address, rd *resource.ResourceDef) {
	fs.mem.PutResourceDef(a, rd)
}

func (fs *FileStore) GetLazyMap(a types.Address, m types.Mid) (*LazyMap, bool) {
	return fs.mem.GetLazyMap(a, m)
}
func (fs *FileStore) PutLazyMap(a types.Address, m types.Mid, lm *LazyMap) {
	fs.mem.PutLazyMap(a, m, lm)
}

func (fs *FileStore) GetVault(a types.Address, v types.Vid) (*resource.Vault, bool) {
	return fs.mem.GetVault(a, v)
}
func (fs *FileStore) PutVault(a types.Address, v types.Vid, vault *resource.Vault) {
	fs.mem.PutVault(a, v, vault)
}

func (fs *FileStore) GetNonFungible(a types.Address, k types.NonFungibleKey) (*resource.NonFungible, bool) {
	return fs.mem.GetNonFungible(a, k)
}
func (fs *FileStore) PutNonFungible(a types.Address, k types.NonFungibleKey, nf *resource.NonFungible) {
	fs.mem.PutNonFungible(a, k, nf)
}

func (fs *FileStore) GetEpoch() uint64     { return fs.mem.GetEpoch() }
func (fs *FileStore) SetEpoch(e uint64)    { fs.mem.SetEpoch(e) }
