package idalloc

import (
	"testing"

	"github.com/synnergy/assetengine/engine/types"
)

func TestAllocatorDeterministic(t *testing.T) {
	txHash := types.Hash{1, 2, 3}

	a1 := New(SpaceApplication)
	addr1, err := a1.NewComponentAddress(txHash)
	if err != nil {
		t.Fatalf("NewComponentAddress: %v", err)
	}

	a2 := New(SpaceApplication)
	addr2, err := a2.NewComponentAddress(txHash)
	if err != nil {
		t.Fatalf("NewComponentAddress: %v", err)
	}

	if addr1 != addr2 {
		t.Fatalf("allocation not deterministic: %s != %s", addr1.Hex(), addr2.Hex())
	}
	if addr1.Variant() != types.AddressComponent {
		t.Fatalf("expected Component variant, got %s", addr1.Variant())
	}
}

func TestAllocatorSequenceMatters(t *testing.T) {
	txHash := types.Hash{9}

	a := New(SpaceApplication)
	first, _ := a.NewResourceAddress(txHash)
	second, _ := a.NewResourceAddress(txHash)
	if first == second {
		t.Fatalf("two allocations from the same tx hash must differ by counter")
	}
}

func TestAllocatorSpaces(t *testing.T) {
	tests := []struct {
		name      string
		space     Space
		wantStart uint32
		wantBound bool
	}{
		{"system", SpaceSystem, 0, true},
		{"transaction", SpaceTransaction, 512, true},
		{"application", SpaceApplication, 1024, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := New(tc.space)
			if a.next != tc.wantStart {
				t.Fatalf("start = %d, want %d", a.next, tc.wantStart)
			}
			if tc.wantBound && a.end == 0 {
				t.Fatalf("expected bounded range")
			}
		})
	}
}

func TestAllocatorOutOfID(t *testing.T) {
	a := &Allocator{next: 1022, end: 1024}
	if _, err := a.NewBid(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := a.NewBid(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := a.NewBid(); err != ErrOutOfID {
		t.Fatalf("expected ErrOutOfID, got %v", err)
	}
}

func TestReservedSignatureIds(t *testing.T) {
	if ECDSATokenBid != 0 {
		t.Fatalf("ECDSATokenBid must be 0")
	}
	if ECDSATokenRid != 1 {
		t.Fatalf("ECDSATokenRid must be 1")
	}
}
