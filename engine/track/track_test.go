package track

import (
	"testing"

	"github.com/synnergy/assetengine/engine/resource"
	"github.com/synnergy/assetengine/engine/types"
)

func testTxHash(b byte) types.Hash {
	var h types.Hash
	h[0] = b
	return h
}

func TestTrackReadThroughThenCommit(t *testing.T) {
	store := NewMemoryStore()
	addr := types.Address{3, 1}
	store.PutResourceDef(addr, mustResourceDef(t))

	tr := New(store, testTxHash(1), nil)
	rd, ok := tr.GetResourceDef(addr)
	if !ok {
		t.Fatalf("expected resource def to read through from store")
	}
	if rd.Kind().NonFungible {
		t.Fatalf("unexpected kind")
	}

	tr.PutResourceDef(addr, rd)
	tr.Commit()

	// Independent Track over the same store sees the (re-)committed value.
	tr2 := New(store, testTxHash(2), nil)
	if _, ok := tr2.GetResourceDef(addr); !ok {
		t.Fatalf("expected committed resource def visible to a fresh Track")
	}
}

func TestTrackUncommittedWritesNeverReachStore(t *testing.T) {
	store := NewMemoryStore()
	addr := types.Address{3, 2}

	tr := New(store, testTxHash(3), nil)
	tr.PutResourceDef(addr, mustResourceDef(t))
	// No Commit() call: simulates a failed transaction.

	if _, ok := store.GetResourceDef(addr); ok {
		t.Fatalf("store must not observe writes from an uncommitted Track")
	}
}

func TestTrackAllocatorAppendsNewEntities(t *testing.T) {
	tr := New(NewMemoryStore(), testTxHash(4), nil)
	addr, err := tr.NewComponentAddress()
	if err != nil {
		t.Fatalf("NewComponentAddress: %v", err)
	}
	entities := tr.NewEntities()
	if len(entities) != 1 || entities[0] != addr {
		t.Fatalf("new entities = %v, want [%v]", entities, addr)
	}
}

func TestTrackLogBuffer(t *testing.T) {
	tr := New(NewMemoryStore(), testTxHash(5), nil)
	tr.AddLog(LogWarn, "low balance")
	logs := tr.Logs()
	if len(logs) != 1 || logs[0].Level != LogWarn || logs[0].Message != "low balance" {
		t.Fatalf("unexpected logs: %+v", logs)
	}
}

func TestSeedVirtualSignatureBucketEmptySigners(t *testing.T) {
	// The bucket is seeded even with zero signers.
	tr := New(NewMemoryStore(), testTxHash(6), nil)
	b := tr.SeedVirtualSignatureBucket()
	if b.ID() != 0 {
		t.Fatalf("bucket id = %d, want reserved 0", b.ID())
	}
	if !b.IsEmpty() {
		t.Fatalf("expected empty key-set for zero signers")
	}
}

func TestSeedVirtualSignatureBucketWithSigners(t *testing.T) {
	signers := []types.SignerKey{{0xAA}, {0xBB}}
	tr := New(NewMemoryStore(), testTxHash(7), signers)
	b := tr.SeedVirtualSignatureBucket()
	if b.Amount().Cmp(types.NewDecimalFromInt64(2)) != 0 {
		t.Fatalf("bucket should hold one key per signer, got %s", b.Amount())
	}
	want := types.NewNonFungibleKey(signers[0].Bytes())
	found := false
	for _, k := range b.Keys() {
		if k == want {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected signer-derived key %v in bucket keys %v", want, b.Keys())
	}
}

func mustResourceDef(t *testing.T) *resource.ResourceDef {
	t.Helper()
	rd, err := resource.New(resource.Kind{}, nil, 0, 0, nil, nil)
	if err != nil {
		t.Fatalf("resource.New: %v", err)
	}
	return rd
}
