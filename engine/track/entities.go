package track

import (
	"sort"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/synnergy/assetengine/engine/types"
)

// Package is a deployable bundle of blueprint code.
type Package struct {
	Code     []byte
	CodeHash types.Hash
}

// NewPackage wraps compiled blueprint code, fingerprinting it with
// Keccak256. The fingerprint is a cache/diagnostic aid (detecting a stale
// codeCache entry, labeling packages in logs) — it is not part of the
// deterministic sha256² address derivation in engine/idalloc, which spec.md
// §4.1 fixes independently.
func NewPackage(code []byte) *Package {
	return &Package{Code: code, CodeHash: types.Hash(crypto.Keccak256Hash(code))}
}

// Clone deep-copies a Package so cached/store copies never alias.
func (p *Package) Clone() *Package {
	if p == nil {
		return nil
	}
	return &Package{Code: append([]byte(nil), p.Code...), CodeHash: p.CodeHash}
}

// Component is an instantiated blueprint: owning package,
// blueprint name, serialized state, and the vaults/lazy-maps discovered
// transitively from that state.
type Component struct {
	Package       types.Address
	Blueprint     string
	State         []byte
	OwnedVaults   []types.Vid
	OwnedLazyMaps []types.Mid
}

// Clone deep-copies a Component.
func (c *Component) Clone() *Component {
	if c == nil {
		return nil
	}
	out := &Component{
		Package:   c.Package,
		Blueprint: c.Blueprint,
		State:     append([]byte(nil), c.State...),
	}
	out.OwnedVaults = append(out.OwnedVaults, c.OwnedVaults...)
	out.OwnedLazyMaps = append(out.OwnedLazyMaps, c.OwnedLazyMaps...)
	return out
}

// LazyMap is a persistent key→value mapping keyed by (component_address,
// map_id); values may themselves encode further LazyMap/Vault references,
// which DetectLazyMapCycles inspects.
type LazyMap struct {
	entries map[string][]byte
}

// NewLazyMap returns an empty lazy map.
func NewLazyMap() *LazyMap {
	return &LazyMap{entries: make(map[string][]byte)}
}

func (m *LazyMap) Get(key []byte) ([]byte, bool) {
	v, ok := m.entries[string(key)]
	return v, ok
}

func (m *LazyMap) Put(key, value []byte) {
	m.entries[string(key)] = append([]byte(nil), value...)
}

// Entries returns the map contents sorted by key, for deterministic
// iteration.
func (m *LazyMap) Entries() []string {
	out := make([]string, 0, len(m.entries))
	for k := range m.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// All returns every entry, keyed by the raw map key cast to a string. Used
// by the file-backed store to serialize a LazyMap whole.
func (m *LazyMap) All() map[string][]byte {
	out := make(map[string][]byte, len(m.entries))
	for k, v := range m.entries {
		out[k] = append([]byte(nil), v...)
	}
	return out
}

// NewLazyMapFromEntries rebuilds a LazyMap from a previously exported entry
// set (the file-backed store's deserialization path).
func NewLazyMapFromEntries(entries map[string][]byte) *LazyMap {
	m := NewLazyMap()
	for k, v := range entries {
		m.entries[k] = append([]byte(nil), v...)
	}
	return m
}

func (m *LazyMap) Clone() *LazyMap {
	out := NewLazyMap()
	for k, v := range m.entries {
		out.entries[k] = append([]byte(nil), v...)
	}
	return out
}
