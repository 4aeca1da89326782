package types

import "fmt"

// Bid identifies a Bucket within a single transaction. Transient.
type Bid uint32

// Rid identifies a Proof within a single transaction. Transient.
type Rid uint32

// Vid identifies a Vault, scoped by the transaction that created it so
// vault identity remains globally unique without a central counter.
type Vid struct {
	TxHash  Hash
	Counter uint32
}

func (v Vid) String() string { return fmt.Sprintf("Vid(%s,%d)", v.TxHash.Hex(), v.Counter) }

// Mid identifies a LazyMap, scoped the same way as Vid.
type Mid struct {
	TxHash  Hash
	Counter uint32
}

func (m Mid) String() string { return fmt.Sprintf("Mid(%s,%d)", m.TxHash.Hex(), m.Counter) }

// NonFungibleKey is an opaque byte-string identifying one non-fungible unit
// within a resource class. Comparable and map-keyable so vaults/buckets can
// represent their held set as map[NonFungibleKey]struct{}.
type NonFungibleKey string

func NewNonFungibleKey(b []byte) NonFungibleKey { return NonFungibleKey(b) }

func (k NonFungibleKey) Bytes() []byte { return []byte(k) }

// UUID is the low 16 bytes of a transaction-hash-derived digest, rendered
// as a fixed-size array rather than the random variety.
type UUID [16]byte

func (u UUID) Bytes() []byte { return u[:] }

// SignerKey identifies a transaction signer by its public-key hash, using
// the same 20-byte Ethereum-style convention as core.Address in the
// surrounding node codebase. Distinct from Address: a signer is a key,
// never a ledger entity, so the two must never be comparable to one another.
type SignerKey [20]byte

func (k SignerKey) Bytes() []byte { return k[:] }

func (k SignerKey) String() string { return fmt.Sprintf("%x", k[:]) }
