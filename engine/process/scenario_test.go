package process

import (
	"errors"
	"testing"

	"github.com/synnergy/assetengine/engine/abi"
	"github.com/synnergy/assetengine/engine/resource"
	"github.com/synnergy/assetengine/engine/track"
	"github.com/synnergy/assetengine/engine/types"
	"github.com/synnergy/assetengine/engine/vm"
	"github.com/synnergy/assetengine/engine/worktop"
)

// These scenarios stand in for a guest blueprint by driving HostService
// methods directly on a root frame, per SPEC_FULL.md's "direct ABI calls"
// allowance — the six cases mirror spec.md's end-to-end scenario list.

func newTestProcess(t *testing.T) (*Process, *Frame) {
	t.Helper()
	store := track.NewMemoryStore()
	txHash := testTxHash(1)
	tr := track.New(store, txHash, nil)
	p := New(tr, vm.NewInterpretedVM())
	root := NewRootFrame(p)
	return p, root
}

func testTxHash(fill byte) types.Hash {
	var h types.Hash
	for i := range h {
		h[i] = fill
	}
	return h
}

// componentFrame builds a frame bound to a synthetic component owner, the
// way a CallMethod invocation would, without needing real package code.
func componentFrame(p *Process, owner types.Address) *Frame {
	return &Frame{
		proc:     p,
		owner:    owner,
		worktop:  p.worktop,
		authzone: worktop.NewAuthZone(),
		buckets:  make(map[types.Bid]*resource.Bucket),
	}
}

func testComponentAddress(fill byte) types.Address {
	var body [26]byte
	for i := range body {
		body[i] = fill
	}
	return types.NewAddress(types.AddressComponent, body)
}

// 1. Account-to-account transfer: mint a fungible resource straight into a
// bucket, move it into one vault, take it back out, and confirm the total
// amount conserved across the hop.
func TestScenarioAccountToAccountTransfer(t *testing.T) {
	p, root := newTestProcess(t)
	owner := testComponentAddress(1)
	f := componentFrame(p, owner)

	created, err := f.CreateResource(abi.CreateResourceArgs{
		Divisibility:  18,
		Metadata:      map[string]string{"name": "Credits"},
		InitialAmount: decimalPtr(types.NewDecimalFromInt64(100)),
	})
	if err != nil {
		t.Fatalf("CreateResource: %v", err)
	}
	if !created.HasBucket {
		t.Fatalf("expected initial bucket")
	}

	vault, err := f.CreateEmptyVault(abi.CreateEmptyVaultArgs{Resource: created.Resource})
	if err != nil {
		t.Fatalf("CreateEmptyVault: %v", err)
	}
	if err := f.PutIntoVault(abi.PutIntoVaultArgs{Vid: vault.Vid, Source: created.Bid}); err != nil {
		t.Fatalf("PutIntoVault: %v", err)
	}

	amt, err := f.GetVaultAmount(abi.VaultRefArgs{Vid: vault.Vid})
	if err != nil {
		t.Fatalf("GetVaultAmount: %v", err)
	}
	if amt.Amount.Cmp(types.NewDecimalFromInt64(100)) != 0 {
		t.Fatalf("expected 100, got %s", amt.Amount)
	}

	withdrawn, err := f.TakeFromVault(abi.TakeFromVaultArgs{Vid: vault.Vid, Amount: types.NewDecimalFromInt64(40)})
	if err != nil {
		t.Fatalf("TakeFromVault: %v", err)
	}
	remaining, err := f.GetVaultAmount(abi.VaultRefArgs{Vid: vault.Vid})
	if err != nil {
		t.Fatalf("GetVaultAmount: %v", err)
	}
	if remaining.Amount.Cmp(types.NewDecimalFromInt64(60)) != 0 {
		t.Fatalf("expected 60 remaining, got %s", remaining.Amount)
	}
	if err := f.finish([]types.Bid{withdrawn.Bid}); err != nil {
		t.Fatalf("finish: %v", err)
	}
	_ = root
}

// 2. Unauthorized withdrawal: a RESTRICTED_TRANSFER resource rejects
// TakeFromVault when the caller holds no witnessing proof.
func TestScenarioUnauthorizedWithdrawalRejected(t *testing.T) {
	p, _ := newTestProcess(t)
	owner := testComponentAddress(2)
	f := componentFrame(p, owner)

	created, err := f.CreateResource(abi.CreateResourceArgs{
		Divisibility:  18,
		Flags:         uint64(resource.RestrictedTransfer),
		InitialAmount: decimalPtr(types.NewDecimalFromInt64(10)),
	})
	if err != nil {
		t.Fatalf("CreateResource: %v", err)
	}
	vault, err := f.CreateEmptyVault(abi.CreateEmptyVaultArgs{Resource: created.Resource})
	if err != nil {
		t.Fatalf("CreateEmptyVault: %v", err)
	}
	if err := f.PutIntoVault(abi.PutIntoVaultArgs{Vid: vault.Vid, Source: created.Bid}); err != nil {
		t.Fatalf("PutIntoVault: %v", err)
	}

	if _, err := f.TakeFromVault(abi.TakeFromVaultArgs{Vid: vault.Vid, Amount: types.NewDecimalFromInt64(1)}); err == nil {
		t.Fatal("expected unauthorized withdrawal to fail")
	} else if !errors.Is(err, resource.ErrPermissionNotAllowed) {
		t.Fatalf("expected ErrPermissionNotAllowed, got %v", err)
	}
}

// 3. Round-trip via transient bucket: a bucket deposited onto the worktop,
// withdrawn into a fresh transient bucket, and returned again ends where it
// started — the worktop balance is conserved across the hop and left empty.
func TestScenarioRoundTripViaTransientBucket(t *testing.T) {
	p, root := newTestProcess(t)
	owner := testComponentAddress(3)
	f := componentFrame(p, owner)

	created, err := f.CreateResource(abi.CreateResourceArgs{
		Divisibility:  18,
		InitialAmount: decimalPtr(types.NewDecimalFromInt64(5)),
	})
	if err != nil {
		t.Fatalf("CreateResource: %v", err)
	}
	b := f.buckets[created.Bid]
	delete(f.buckets, created.Bid)
	if err := p.worktop.Return(b); err != nil {
		t.Fatalf("Return: %v", err)
	}
	if p.worktop.IsEmpty() {
		t.Fatal("expected worktop non-empty after deposit")
	}

	transientBid, err := p.track.NewBid()
	if err != nil {
		t.Fatalf("NewBid: %v", err)
	}
	transient, err := p.worktop.TakeAll(created.Resource, transientBid)
	if err != nil {
		t.Fatalf("TakeAll: %v", err)
	}
	if transient.Amount().Cmp(types.NewDecimalFromInt64(5)) != 0 {
		t.Fatalf("expected 5 in transient bucket, got %s", transient.Amount())
	}
	if !p.worktop.IsEmpty() {
		t.Fatal("expected worktop drained after TakeAll")
	}

	if err := p.worktop.Return(transient); err != nil {
		t.Fatalf("Return (round trip): %v", err)
	}
	if err := p.worktop.AssertContains(created.Resource, types.NewDecimalFromInt64(5)); err != nil {
		t.Fatalf("AssertContains: %v", err)
	}
	_ = root
}

// 4. Dangling bucket fault: a bucket created but neither returned nor
// stored makes frame exit fail with ErrDanglingBucket.
func TestScenarioDanglingBucketFault(t *testing.T) {
	p, _ := newTestProcess(t)
	owner := testComponentAddress(4)
	f := componentFrame(p, owner)

	created, err := f.CreateResource(abi.CreateResourceArgs{
		Divisibility:  18,
		InitialAmount: decimalPtr(types.NewDecimalFromInt64(1)),
	})
	if err != nil {
		t.Fatalf("CreateResource: %v", err)
	}
	_ = created

	if err := f.finish(nil); !errors.Is(err, ErrDanglingBucket) {
		t.Fatalf("expected ErrDanglingBucket, got %v", err)
	}
}

// 5. Non-fungible withdrawal by key: mint a non-fungible resource with two
// keys, withdraw one by key, and confirm the vault retains only the other.
func TestScenarioNonFungibleWithdrawalByKey(t *testing.T) {
	p, _ := newTestProcess(t)
	owner := testComponentAddress(5)
	f := componentFrame(p, owner)

	keyA := types.NewNonFungibleKey([]byte("card-a"))
	keyB := types.NewNonFungibleKey([]byte("card-b"))
	created, err := f.CreateResource(abi.CreateResourceArgs{
		NonFungible: true,
		InitialKeys: []types.NonFungibleKey{keyA, keyB},
	})
	if err != nil {
		t.Fatalf("CreateResource: %v", err)
	}
	vault, err := f.CreateEmptyVault(abi.CreateEmptyVaultArgs{Resource: created.Resource})
	if err != nil {
		t.Fatalf("CreateEmptyVault: %v", err)
	}
	if err := f.PutIntoVault(abi.PutIntoVaultArgs{Vid: vault.Vid, Source: created.Bid}); err != nil {
		t.Fatalf("PutIntoVault: %v", err)
	}

	withdrawn, err := f.TakeNonFungibleFromVault(abi.TakeNonFungibleFromVaultArgs{Vid: vault.Vid, Key: keyA})
	if err != nil {
		t.Fatalf("TakeNonFungibleFromVault: %v", err)
	}
	keysLeft, err := f.GetNonFungibleKeysInVault(abi.VaultRefArgs{Vid: vault.Vid})
	if err != nil {
		t.Fatalf("GetNonFungibleKeysInVault: %v", err)
	}
	if len(keysLeft.Keys) != 1 || keysLeft.Keys[0] != keyB {
		t.Fatalf("expected only card-b left, got %v", keysLeft.Keys)
	}
	if err := f.finish([]types.Bid{withdrawn.Bid}); err != nil {
		t.Fatalf("finish: %v", err)
	}
}

// 6. Flag-update constraint violation: an update to flags that changes a
// bit outside mutable_flags is rejected.
func TestScenarioFlagUpdateConstraintViolation(t *testing.T) {
	p, _ := newTestProcess(t)
	owner := testComponentAddress(6)
	f := componentFrame(p, owner)

	created, err := f.CreateResource(abi.CreateResourceArgs{
		Divisibility: 18,
		Flags:        uint64(resource.Mintable),
		MutableFlags: 0, // nothing is mutable
	})
	if err != nil {
		t.Fatalf("CreateResource: %v", err)
	}

	err = f.UpdateResourceFlags(abi.UpdateResourceFlagsArgs{
		Resource: created.Resource,
		NewFlags: uint64(resource.Mintable | resource.Burnable),
	})
	if !errors.Is(err, resource.ErrInvalidFlagUpdate) {
		t.Fatalf("expected ErrInvalidFlagUpdate, got %v", err)
	}
}

func decimalPtr(d types.Decimal) *types.Decimal { return &d }
