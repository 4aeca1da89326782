package resource

import (
	"errors"
	"testing"

	"github.com/synnergy/assetengine/engine/types"
)

var xrd = types.Address{3, 9, 9}

func TestVaultPutTakeRoundTrip(t *testing.T) {
	// (vault.put(bucket); vault.take(amount)) == bucket, when amount == bucket.amount
	vault := NewVault(types.Vid{Counter: 1}, NewEmptyFungibleContainer(xrd))
	amt := types.NewDecimalFromInt64(50)
	bucket := NewBucket(1, NewFungibleContainer(xrd, amt))

	if err := vault.Put(bucket); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if bucket.State() != BucketStateStored {
		t.Fatalf("bucket state = %s, want Stored", bucket.State())
	}

	taken, err := vault.Take(amt)
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if taken.Amount().Cmp(amt) != 0 {
		t.Fatalf("taken amount = %s, want %s", taken.Amount(), amt)
	}
	if !vault.Amount().IsZero() {
		t.Fatalf("vault should be drained, has %s", vault.Amount())
	}
}

func TestTakeInsufficientBalance(t *testing.T) {
	c := NewFungibleContainer(xrd, types.NewDecimalFromInt64(10))
	_, err := c.TakeAmount(types.NewDecimalFromInt64(11))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("want ErrInsufficientBalance, got %v", err)
	}
}

func TestTakeZeroFromEmptyVaultSucceeds(t *testing.T) {
	// Boundary: amount == 0 taken from an empty vault succeeds and returns
	// an empty bucket.
	v := NewVault(types.Vid{}, NewEmptyFungibleContainer(xrd))
	c, err := v.Take(types.ZeroDecimal())
	if err != nil {
		t.Fatalf("Take(0): %v", err)
	}
	if !c.IsEmpty() {
		t.Fatalf("expected empty container")
	}
}

func TestTakeWithAuthRejectsWrongGranularity(t *testing.T) {
	// Boundary: a resource with divisibility 0 rejects any non-integer
	// amount, even when the vault holds enough balance to cover it.
	rd, err := New(Kind{Divisibility: 0}, nil, 0, 0, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v := NewVault(types.Vid{}, NewFungibleContainer(xrd, types.NewDecimalFromInt64(10)))
	fractional := types.Decimal{Raw: bigFromInt64(5)} // 5 * 10^-18, not an integer amount
	if _, err := v.TakeWithAuth(fractional, rd, nil); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("want ErrInvalidAmount, got %v", err)
	}
	if v.Amount().Cmp(types.NewDecimalFromInt64(10)) != 0 {
		t.Fatalf("rejected take must not debit the vault, balance = %s", v.Amount())
	}
}

func TestTakeNegativeAmountRejected(t *testing.T) {
	v := NewVault(types.Vid{}, NewFungibleContainer(xrd, types.NewDecimalFromInt64(10)))
	neg := types.Decimal{Raw: bigFromInt64(-1)}
	if _, err := v.Take(neg); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("want ErrInvalidAmount, got %v", err)
	}
}

func TestPutResourceMismatch(t *testing.T) {
	other := types.Address{3, 1, 1}
	a := NewFungibleContainer(xrd, types.NewDecimalFromInt64(1))
	b := NewFungibleContainer(other, types.NewDecimalFromInt64(1))
	if err := a.Put(b); !errors.Is(err, ErrResourceMismatch) {
		t.Fatalf("want ErrResourceMismatch, got %v", err)
	}
}

func TestNonFungibleKeyUniquenessWithinContainer(t *testing.T) {
	k := types.NewNonFungibleKey([]byte{1})
	_, err := NewNonFungibleContainer(xrd, []types.NonFungibleKey{k, k})
	if !errors.Is(err, ErrNonFungibleKeyExists) {
		t.Fatalf("want ErrNonFungibleKeyExists, got %v", err)
	}
}

func TestNonFungiblePutRejectsDuplicateAcrossContainers(t *testing.T) {
	k := types.NewNonFungibleKey([]byte{7})
	a, _ := NewNonFungibleContainer(xrd, []types.NonFungibleKey{k})
	b, _ := NewNonFungibleContainer(xrd, []types.NonFungibleKey{k})
	if err := a.Put(b); !errors.Is(err, ErrNonFungibleKeyExists) {
		t.Fatalf("want ErrNonFungibleKeyExists, got %v", err)
	}
}

func TestNonFungibleWithdrawalByKey(t *testing.T) {
	// Mint {1,2,3}, withdraw {1} to another vault.
	keys := []types.NonFungibleKey{
		types.NewNonFungibleKey([]byte{1}),
		types.NewNonFungibleKey([]byte{2}),
		types.NewNonFungibleKey([]byte{3}),
	}
	source, _ := NewNonFungibleContainer(xrd, keys)
	sourceVault := NewVault(types.Vid{Counter: 1}, source)

	destVault := NewVault(types.Vid{Counter: 2}, nil)
	taken, err := sourceVault.TakeNonFungible(keys[0])
	if err != nil {
		t.Fatalf("TakeNonFungible: %v", err)
	}
	destVault.c = taken

	remaining := sourceVault.Keys()
	if len(remaining) != 2 || remaining[0] != keys[1] || remaining[1] != keys[2] {
		t.Fatalf("source vault keys = %v, want {2,3}", remaining)
	}
	destKeys := destVault.Keys()
	if len(destKeys) != 1 || destKeys[0] != keys[0] {
		t.Fatalf("dest vault keys = %v, want {1}", destKeys)
	}
}

func TestProofSnapshotIndependentOfLaterBucketMutation(t *testing.T) {
	b := NewBucket(1, NewFungibleContainer(xrd, types.NewDecimalFromInt64(100)))
	p := NewProofFromBucket(1, b)
	if _, err := b.Take(types.NewDecimalFromInt64(100)); err != nil {
		t.Fatalf("Take: %v", err)
	}
	if p.Amount().Cmp(types.NewDecimalFromInt64(100)) != 0 {
		t.Fatalf("proof amount mutated after bucket drained: %s", p.Amount())
	}
}

func TestProofClone(t *testing.T) {
	keys := []types.NonFungibleKey{types.NewNonFungibleKey([]byte{1})}
	b := NewBucket(1, func() *Container { c, _ := NewNonFungibleContainer(xrd, keys); return c }())
	p := NewProofFromBucket(1, b)
	clone := p.Clone(2)
	if clone.ID() != 2 || clone.SourceBid() != p.SourceBid() {
		t.Fatalf("clone identity wrong: %+v", clone)
	}
	if !clone.HasKey(keys[0]) {
		t.Fatalf("clone missing key")
	}
}
