package resource

import (
	"sort"

	"github.com/synnergy/assetengine/engine/types"
)

// Proof is a non-owning, non-transferable witness that a particular
// Bucket's resource exists with at least some amount or key-set. It is a
// snapshot taken at creation time; the engine is the only thing that can
// mint one, from a live Bucket, and its lifetime is bounded by the
// originating Bucket's lifetime within the same frame.
type Proof struct {
	id          types.Rid
	sourceBid   types.Bid
	resource    types.Address
	nonFungible bool
	amount      types.Decimal
	keys        map[types.NonFungibleKey]struct{}
}

// NewProofFromBucket snapshots a bucket's current contents into a new
// Proof. The snapshot does not remove anything from the bucket.
func NewProofFromBucket(id types.Rid, b *Bucket) *Proof {
	p := &Proof{
		id:          id,
		sourceBid:   b.ID(),
		resource:    b.Resource(),
		nonFungible: b.IsNonFungible(),
	}
	if p.nonFungible {
		p.keys = make(map[types.NonFungibleKey]struct{})
		for _, k := range b.Keys() {
			p.keys[k] = struct{}{}
		}
	}
	p.amount = b.Amount()
	return p
}

func (p *Proof) ID() types.Rid           { return p.id }
func (p *Proof) SourceBid() types.Bid    { return p.sourceBid }
func (p *Proof) Resource() types.Address { return p.resource }
func (p *Proof) IsNonFungible() bool     { return p.nonFungible }
func (p *Proof) Amount() types.Decimal   { return p.amount }

func (p *Proof) Keys() []types.NonFungibleKey {
	out := make([]types.NonFungibleKey, 0, len(p.keys))
	for k := range p.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (p *Proof) HasKey(key types.NonFungibleKey) bool {
	_, ok := p.keys[key]
	return ok
}

// Clone duplicates the proof under a new id (CLONE_BUCKET_REF).
func (p *Proof) Clone(newID types.Rid) *Proof {
	clone := &Proof{
		id:          newID,
		sourceBid:   p.sourceBid,
		resource:    p.resource,
		nonFungible: p.nonFungible,
		amount:      p.amount,
	}
	if p.nonFungible {
		clone.keys = make(map[types.NonFungibleKey]struct{}, len(p.keys))
		for k := range p.keys {
			clone.keys[k] = struct{}{}
		}
	}
	return clone
}
