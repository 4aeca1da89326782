package worktop

import (
	"testing"

	"github.com/synnergy/assetengine/engine/resource"
	"github.com/synnergy/assetengine/engine/types"
)

func testResourceAddr(fill byte) types.Address {
	var body [26]byte
	for i := range body {
		body[i] = fill
	}
	return types.NewAddress(types.AddressResourceDef, body)
}

func TestWorktopReturnMergesSameResourceDeposits(t *testing.T) {
	w := New()
	res := testResourceAddr(1)

	if err := w.Return(resource.NewBucket(1, resource.NewFungibleContainer(res, types.NewDecimalFromInt64(10)))); err != nil {
		t.Fatalf("Return: %v", err)
	}
	if err := w.Return(resource.NewBucket(2, resource.NewFungibleContainer(res, types.NewDecimalFromInt64(5)))); err != nil {
		t.Fatalf("Return: %v", err)
	}
	if err := w.AssertContains(res, types.NewDecimalFromInt64(15)); err != nil {
		t.Fatalf("AssertContains: %v", err)
	}
}

func TestWorktopTakeDrainsPool(t *testing.T) {
	w := New()
	res := testResourceAddr(2)
	if err := w.Return(resource.NewBucket(1, resource.NewFungibleContainer(res, types.NewDecimalFromInt64(10)))); err != nil {
		t.Fatalf("Return: %v", err)
	}

	taken, err := w.Take(res, types.NewDecimalFromInt64(4), 2)
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if taken.Amount().Cmp(types.NewDecimalFromInt64(4)) != 0 {
		t.Fatalf("expected 4, got %s", taken.Amount())
	}
	if err := w.AssertContains(res, types.NewDecimalFromInt64(6)); err != nil {
		t.Fatalf("AssertContains: %v", err)
	}
}

func TestWorktopTakeAllLeavesEmptyPool(t *testing.T) {
	w := New()
	res := testResourceAddr(3)
	if err := w.Return(resource.NewBucket(1, resource.NewFungibleContainer(res, types.NewDecimalFromInt64(8)))); err != nil {
		t.Fatalf("Return: %v", err)
	}
	if w.IsEmpty() {
		t.Fatal("expected non-empty worktop after deposit")
	}

	all, err := w.TakeAll(res, 2)
	if err != nil {
		t.Fatalf("TakeAll: %v", err)
	}
	if all.Amount().Cmp(types.NewDecimalFromInt64(8)) != 0 {
		t.Fatalf("expected 8, got %s", all.Amount())
	}
	if !w.IsEmpty() {
		t.Fatal("expected empty worktop after TakeAll")
	}
}

func TestWorktopTakeMissingResourceFails(t *testing.T) {
	w := New()
	if _, err := w.Take(testResourceAddr(9), types.NewDecimalFromInt64(1), 1); err != ErrWorktopResourceMissing {
		t.Fatalf("expected ErrWorktopResourceMissing, got %v", err)
	}
}

func TestWorktopAssertContainsFailsWhenShort(t *testing.T) {
	w := New()
	res := testResourceAddr(4)
	if err := w.Return(resource.NewBucket(1, resource.NewFungibleContainer(res, types.NewDecimalFromInt64(2)))); err != nil {
		t.Fatalf("Return: %v", err)
	}
	if err := w.AssertContains(res, types.NewDecimalFromInt64(5)); err != ErrWorktopAssertionFailed {
		t.Fatalf("expected ErrWorktopAssertionFailed, got %v", err)
	}
}

func TestWorktopDrainAllAssignsFreshBids(t *testing.T) {
	w := New()
	resA := testResourceAddr(5)
	resB := testResourceAddr(6)
	if err := w.Return(resource.NewBucket(1, resource.NewFungibleContainer(resA, types.NewDecimalFromInt64(1)))); err != nil {
		t.Fatalf("Return: %v", err)
	}
	if err := w.Return(resource.NewBucket(2, resource.NewFungibleContainer(resB, types.NewDecimalFromInt64(2)))); err != nil {
		t.Fatalf("Return: %v", err)
	}

	next := types.Bid(100)
	drained, err := w.DrainAll(func() (types.Bid, error) {
		next++
		return next, nil
	})
	if err != nil {
		t.Fatalf("DrainAll: %v", err)
	}
	if len(drained) != 2 {
		t.Fatalf("expected 2 drained buckets, got %d", len(drained))
	}
	if !w.IsEmpty() {
		t.Fatal("expected worktop empty after DrainAll")
	}
}
