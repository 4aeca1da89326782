package worktop

import (
	"errors"
	"sync"

	"github.com/synnergy/assetengine/engine/resource"
	"github.com/synnergy/assetengine/engine/types"
)

var (
	ErrProofNotFound   = errors.New("authzone: proof not found")
	ErrBucketNotActive = errors.New("authzone: bucket not in active state")
)

// AuthZone holds the active Proofs created within a frame, keyed by Rid.
// Proofs are non-forgeable: CreateBucketRef is the only constructor and it
// always derives from a live Bucket.
type AuthZone struct {
	mu     sync.Mutex
	proofs map[types.Rid]*resource.Proof
}

// NewAuthZone returns an empty auth zone.
func NewAuthZone() *AuthZone {
	return &AuthZone{proofs: make(map[types.Rid]*resource.Proof)}
}

// CreateBucketRef snapshots a Proof from a live Bucket under a new Rid.
func (z *AuthZone) CreateBucketRef(rid types.Rid, b *resource.Bucket) (*resource.Proof, error) {
	if b.State() != resource.BucketStateActive {
		return nil, ErrBucketNotActive
	}
	p := resource.NewProofFromBucket(rid, b)
	z.mu.Lock()
	z.proofs[rid] = p
	z.mu.Unlock()
	return p, nil
}

// CloneBucketRef duplicates an existing proof under a new Rid.
func (z *AuthZone) CloneBucketRef(rid types.Rid, newRid types.Rid) (*resource.Proof, error) {
	z.mu.Lock()
	defer z.mu.Unlock()
	p, ok := z.proofs[rid]
	if !ok {
		return nil, ErrProofNotFound
	}
	clone := p.Clone(newRid)
	z.proofs[newRid] = clone
	return clone, nil
}

// AdoptProof inserts a proof moved in from another frame's auth zone under
// its own existing Rid, as part of a CallFunction/CallMethod argument move.
func (z *AuthZone) AdoptProof(p *resource.Proof) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.proofs[p.ID()] = p
}

// DropBucketRef removes a proof from the zone. Dropping an unknown rid is
// not an error: proofs not explicitly dropped are discarded automatically
// at frame exit, so a caller may drop defensively.
func (z *AuthZone) DropBucketRef(rid types.Rid) {
	z.mu.Lock()
	defer z.mu.Unlock()
	delete(z.proofs, rid)
}

// Get returns the live proof for an rid, if any.
func (z *AuthZone) Get(rid types.Rid) (*resource.Proof, bool) {
	z.mu.Lock()
	defer z.mu.Unlock()
	p, ok := z.proofs[rid]
	return p, ok
}

// HasAuthority reports whether any proof in the zone witnesses a non-zero
// amount of the given badge resource. It does not look at permission bits;
// ResourceDef checks those against its authorities.
func (z *AuthZone) HasAuthority(badgeResource types.Address) bool {
	z.mu.Lock()
	defer z.mu.Unlock()
	for _, p := range z.proofs {
		if p.Resource() == badgeResource && !p.Amount().IsZero() {
			return true
		}
	}
	return false
}

// FirstWitnessed returns the badge resource address of an arbitrary held
// proof, or nil if the zone is empty. Used where an operation accepts a
// single ambient authority rather than a specific named proof — map
// iteration order is unspecified, so callers needing a deterministic badge
// must hold exactly one proof at the call site.
func (z *AuthZone) FirstWitnessed() *types.Address {
	z.mu.Lock()
	defer z.mu.Unlock()
	for _, p := range z.proofs {
		addr := p.Resource()
		return &addr
	}
	return nil
}

// Clear drops every proof. Called at frame exit: any proof still held at
// that point is discarded rather than treated as an error.
func (z *AuthZone) Clear() {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.proofs = make(map[types.Rid]*resource.Proof)
}
