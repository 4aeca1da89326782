package process

import (
	"github.com/synnergy/assetengine/engine/abi"
	"github.com/synnergy/assetengine/engine/resource"
	"github.com/synnergy/assetengine/engine/track"
	"github.com/synnergy/assetengine/engine/types"
)

// authorityFromProof resolves the badge address an auth-gated call acts
// under: the resource a held Proof witnesses, or nil for an unauthenticated
// call (only accepted where the resource itself requires no permission).
func (f *Frame) authorityFromProof(rid types.Rid) *types.Address {
	if rid == 0 {
		return nil
	}
	p, ok := f.authzone.Get(rid)
	if !ok {
		return nil
	}
	addr := p.Resource()
	return &addr
}

func (f *Frame) CreateEmptyBucket(args abi.CreateEmptyBucketArgs) (abi.CreateEmptyBucketResult, error) {
	if err := f.consumeGas(abi.OpCreateEmptyBucket); err != nil {
		return abi.CreateEmptyBucketResult{}, err
	}
	rd, ok := f.proc.track.GetResourceDef(args.Resource)
	if !ok {
		return abi.CreateEmptyBucketResult{}, ErrResourceNotFound
	}
	bid, err := f.proc.track.NewBid()
	if err != nil {
		return abi.CreateEmptyBucketResult{}, err
	}
	var c *resource.Container
	if rd.Kind().NonFungible {
		c, _ = resource.NewNonFungibleContainer(args.Resource, nil)
	} else {
		c = resource.NewEmptyFungibleContainer(args.Resource)
	}
	f.buckets[bid] = resource.NewBucket(bid, c)
	return abi.CreateEmptyBucketResult{Bid: bid}, nil
}

func (f *Frame) PutIntoBucket(args abi.PutIntoBucketArgs) error {
	if err := f.consumeGas(abi.OpPutIntoBucket); err != nil {
		return err
	}
	dest, ok := f.activeBucket(args.Dest)
	if !ok {
		return ErrBucketNotActive
	}
	src, ok := f.activeBucket(args.Source)
	if !ok {
		return ErrBucketNotActive
	}
	if err := dest.Put(src); err != nil {
		return err
	}
	delete(f.buckets, args.Source)
	return nil
}

func (f *Frame) TakeFromBucket(args abi.TakeFromBucketArgs) (abi.TakeFromBucketResult, error) {
	if err := f.consumeGas(abi.OpTakeFromBucket); err != nil {
		return abi.TakeFromBucketResult{}, err
	}
	src, ok := f.activeBucket(args.Source)
	if !ok {
		return abi.TakeFromBucketResult{}, ErrBucketNotActive
	}
	rd, ok := f.proc.track.GetResourceDef(src.Resource())
	if !ok {
		return abi.TakeFromBucketResult{}, ErrResourceNotFound
	}
	if err := rd.CheckAmount(args.Amount); err != nil {
		return abi.TakeFromBucketResult{}, err
	}
	c, err := src.Take(args.Amount)
	if err != nil {
		return abi.TakeFromBucketResult{}, err
	}
	bid, err := f.proc.track.NewBid()
	if err != nil {
		return abi.TakeFromBucketResult{}, err
	}
	f.buckets[bid] = resource.NewBucket(bid, c)
	return abi.TakeFromBucketResult{Bid: bid}, nil
}

func (f *Frame) TakeNonFungibleFromBucket(args abi.TakeNonFungibleFromBucketArgs) (abi.TakeNonFungibleFromBucketResult, error) {
	if err := f.consumeGas(abi.OpTakeNonFungibleFromBucket); err != nil {
		return abi.TakeNonFungibleFromBucketResult{}, err
	}
	src, ok := f.activeBucket(args.Source)
	if !ok {
		return abi.TakeNonFungibleFromBucketResult{}, ErrBucketNotActive
	}
	var c *resource.Container
	var err error
	if len(args.Keys) == 1 {
		c, err = src.TakeNonFungible(args.Keys[0])
	} else {
		c, err = src.Container().TakeKeys(args.Keys)
	}
	if err != nil {
		return abi.TakeNonFungibleFromBucketResult{}, err
	}
	bid, err := f.proc.track.NewBid()
	if err != nil {
		return abi.TakeNonFungibleFromBucketResult{}, err
	}
	f.buckets[bid] = resource.NewBucket(bid, c)
	return abi.TakeNonFungibleFromBucketResult{Bid: bid}, nil
}

func (f *Frame) GetBucketAmount(args abi.BucketRefArgs) (abi.BucketAmountResult, error) {
	b, ok := f.activeBucket(args.Bid)
	if !ok {
		return abi.BucketAmountResult{}, ErrBucketNotActive
	}
	return abi.BucketAmountResult{Amount: b.Amount()}, nil
}

func (f *Frame) GetBucketResourceDef(args abi.BucketRefArgs) (abi.BucketResourceDefResult, error) {
	b, ok := f.activeBucket(args.Bid)
	if !ok {
		return abi.BucketResourceDefResult{}, ErrBucketNotActive
	}
	return abi.BucketResourceDefResult{Resource: b.Resource()}, nil
}

func (f *Frame) GetNonFungibleKeysInBucket(args abi.BucketRefArgs) (abi.BucketKeysResult, error) {
	b, ok := f.activeBucket(args.Bid)
	if !ok {
		return abi.BucketKeysResult{}, ErrBucketNotActive
	}
	return abi.BucketKeysResult{Keys: b.Keys()}, nil
}

func (f *Frame) DropEmptyBucket(args abi.BucketRefArgs) error {
	b, ok := f.activeBucket(args.Bid)
	if !ok {
		return ErrBucketNotActive
	}
	if !b.IsEmpty() {
		return resource.ErrInvalidAmount
	}
	b.MarkBurned()
	delete(f.buckets, args.Bid)
	return nil
}

func (f *Frame) CreateBucketRef(args abi.CreateBucketRefArgs) (abi.BucketRefResult, error) {
	if err := f.consumeGas(abi.OpCreateBucketRef); err != nil {
		return abi.BucketRefResult{}, err
	}
	b, ok := f.activeBucket(args.Bid)
	if !ok {
		return abi.BucketRefResult{}, ErrBucketNotActive
	}
	rid, err := f.proc.track.NewRid()
	if err != nil {
		return abi.BucketRefResult{}, err
	}
	if _, err := f.authzone.CreateBucketRef(rid, b); err != nil {
		return abi.BucketRefResult{}, err
	}
	return abi.BucketRefResult{Rid: rid}, nil
}

func (f *Frame) CloneBucketRef(args abi.CloneBucketRefArgs) (abi.BucketRefResult, error) {
	if err := f.consumeGas(abi.OpCloneBucketRef); err != nil {
		return abi.BucketRefResult{}, err
	}
	newRid, err := f.proc.track.NewRid()
	if err != nil {
		return abi.BucketRefResult{}, err
	}
	if _, err := f.authzone.CloneBucketRef(args.Rid, newRid); err != nil {
		return abi.BucketRefResult{}, err
	}
	return abi.BucketRefResult{Rid: newRid}, nil
}

func (f *Frame) DropBucketRef(args abi.DropBucketRefArgs) error {
	f.authzone.DropBucketRef(args.Rid)
	return nil
}

func (f *Frame) vaultOwner() (types.Address, error) {
	if f.owner.IsZero() {
		return types.Address{}, ErrNoCurrentComponent
	}
	return f.owner, nil
}

func (f *Frame) CreateEmptyVault(args abi.CreateEmptyVaultArgs) (abi.VaultRefResult, error) {
	if err := f.consumeGas(abi.OpCreateEmptyVault); err != nil {
		return abi.VaultRefResult{}, err
	}
	owner, err := f.vaultOwner()
	if err != nil {
		return abi.VaultRefResult{}, err
	}
	rd, ok := f.proc.track.GetResourceDef(args.Resource)
	if !ok {
		return abi.VaultRefResult{}, ErrResourceNotFound
	}
	vid, err := f.proc.track.NewVid()
	if err != nil {
		return abi.VaultRefResult{}, err
	}
	var c *resource.Container
	if rd.Kind().NonFungible {
		c, _ = resource.NewNonFungibleContainer(args.Resource, nil)
	} else {
		c = resource.NewEmptyFungibleContainer(args.Resource)
	}
	f.proc.track.PutVault(owner, vid, resource.NewVault(vid, c))
	f.registerOwnedVault(owner, vid)
	return abi.VaultRefResult{Vid: vid}, nil
}

func (f *Frame) registerOwnedVault(owner types.Address, vid types.Vid) {
	comp, ok := f.proc.track.GetComponentMut(owner)
	if !ok {
		return
	}
	clone := comp.Clone()
	clone.OwnedVaults = append(clone.OwnedVaults, vid)
	f.proc.track.PutComponent(owner, clone)
}

func (f *Frame) getVault(vid types.Vid) (*resource.Vault, error) {
	owner, err := f.vaultOwner()
	if err != nil {
		return nil, err
	}
	v, ok := f.proc.track.GetVaultMut(owner, vid)
	if !ok {
		return nil, ErrVaultNotFound
	}
	return v, nil
}

func (f *Frame) PutIntoVault(args abi.PutIntoVaultArgs) error {
	if err := f.consumeGas(abi.OpPutIntoVault); err != nil {
		return err
	}
	v, err := f.getVault(args.Vid)
	if err != nil {
		return err
	}
	b, ok := f.activeBucket(args.Source)
	if !ok {
		return ErrBucketNotActive
	}
	if err := v.Put(b); err != nil {
		return err
	}
	delete(f.buckets, args.Source)
	return nil
}

func (f *Frame) TakeFromVault(args abi.TakeFromVaultArgs) (abi.TakeFromBucketResult, error) {
	if err := f.consumeGas(abi.OpTakeFromVault); err != nil {
		return abi.TakeFromBucketResult{}, err
	}
	v, err := f.getVault(args.Vid)
	if err != nil {
		return abi.TakeFromBucketResult{}, err
	}
	rd, ok := f.proc.track.GetResourceDef(v.Resource())
	if !ok {
		return abi.TakeFromBucketResult{}, ErrResourceNotFound
	}
	badge := f.restrictedTransferBadge()
	c, err := v.TakeWithAuth(args.Amount, rd, badge)
	if err != nil {
		return abi.TakeFromBucketResult{}, err
	}
	bid, err := f.proc.track.NewBid()
	if err != nil {
		return abi.TakeFromBucketResult{}, err
	}
	f.buckets[bid] = resource.NewBucket(bid, c)
	return abi.TakeFromBucketResult{Bid: bid}, nil
}

// restrictedTransferBadge picks the first authority badge this frame's
// auth zone can currently witness, for resources gated by
// RESTRICTED_TRANSFER. A nil return means "no proof held" and is a valid
// (likely failing) input to CheckTakeFromVaultAuth.
func (f *Frame) restrictedTransferBadge() *types.Address {
	return f.authzone.FirstWitnessed()
}

func (f *Frame) TakeNonFungibleFromVault(args abi.TakeNonFungibleFromVaultArgs) (abi.TakeFromBucketResult, error) {
	if err := f.consumeGas(abi.OpTakeNonFungibleFromVault); err != nil {
		return abi.TakeFromBucketResult{}, err
	}
	v, err := f.getVault(args.Vid)
	if err != nil {
		return abi.TakeFromBucketResult{}, err
	}
	c, err := v.TakeNonFungible(args.Key)
	if err != nil {
		return abi.TakeFromBucketResult{}, err
	}
	bid, err := f.proc.track.NewBid()
	if err != nil {
		return abi.TakeFromBucketResult{}, err
	}
	f.buckets[bid] = resource.NewBucket(bid, c)
	return abi.TakeFromBucketResult{Bid: bid}, nil
}

func (f *Frame) GetVaultAmount(args abi.VaultRefArgs) (abi.BucketAmountResult, error) {
	v, err := f.getVault(args.Vid)
	if err != nil {
		return abi.BucketAmountResult{}, err
	}
	return abi.BucketAmountResult{Amount: v.Amount()}, nil
}

func (f *Frame) GetVaultResourceDef(args abi.VaultRefArgs) (abi.BucketResourceDefResult, error) {
	v, err := f.getVault(args.Vid)
	if err != nil {
		return abi.BucketResourceDefResult{}, err
	}
	return abi.BucketResourceDefResult{Resource: v.Resource()}, nil
}

func (f *Frame) GetNonFungibleKeysInVault(args abi.VaultRefArgs) (abi.BucketKeysResult, error) {
	v, err := f.getVault(args.Vid)
	if err != nil {
		return abi.BucketKeysResult{}, err
	}
	return abi.BucketKeysResult{Keys: v.Keys()}, nil
}

func (f *Frame) CreateResource(args abi.CreateResourceArgs) (abi.CreateResourceResult, error) {
	if err := f.consumeGas(abi.OpCreateResource); err != nil {
		return abi.CreateResourceResult{}, err
	}
	var initial *resource.NewSupply
	if args.InitialAmount != nil || args.InitialKeys != nil {
		initial = &resource.NewSupply{Amount: args.InitialAmount, Keys: args.InitialKeys}
	}
	rd, err := resource.New(resource.Kind{NonFungible: args.NonFungible, Divisibility: args.Divisibility},
		args.Metadata, args.Flags, args.MutableFlags, args.Authorities, initial)
	if err != nil {
		return abi.CreateResourceResult{}, err
	}
	addr, err := f.proc.track.NewResourceAddress()
	if err != nil {
		return abi.CreateResourceResult{}, err
	}
	f.proc.track.PutResourceDef(addr, rd)

	if initial == nil {
		return abi.CreateResourceResult{Resource: addr}, nil
	}
	var c *resource.Container
	if args.NonFungible {
		c, err = resource.NewNonFungibleContainer(addr, args.InitialKeys)
	} else {
		c = resource.NewFungibleContainer(addr, *args.InitialAmount)
	}
	if err != nil {
		return abi.CreateResourceResult{}, err
	}
	bid, err := f.proc.track.NewBid()
	if err != nil {
		return abi.CreateResourceResult{}, err
	}
	f.buckets[bid] = resource.NewBucket(bid, c)
	return abi.CreateResourceResult{Resource: addr, Bid: bid, HasBucket: true}, nil
}

func (f *Frame) MintResource(args abi.MintResourceArgs) (abi.MintResourceResult, error) {
	if err := f.consumeGas(abi.OpMintResource); err != nil {
		return abi.MintResourceResult{}, err
	}
	rd, ok := f.proc.track.GetResourceDef(args.Resource)
	if !ok {
		return abi.MintResourceResult{}, ErrResourceNotFound
	}
	badge := f.authzone.FirstWitnessed()
	supply := resource.NewSupply{Amount: &args.Amount}
	if rd.Kind().NonFungible {
		return abi.MintResourceResult{}, resource.ErrTypeAndSupplyNotMatching
	}
	if err := rd.Mint(supply, badge); err != nil {
		return abi.MintResourceResult{}, err
	}
	bid, err := f.proc.track.NewBid()
	if err != nil {
		return abi.MintResourceResult{}, err
	}
	f.buckets[bid] = resource.NewBucket(bid, resource.NewFungibleContainer(args.Resource, args.Amount))
	return abi.MintResourceResult{Bid: bid}, nil
}

func (f *Frame) BurnResource(args abi.BurnResourceArgs) error {
	if err := f.consumeGas(abi.OpBurnResource); err != nil {
		return err
	}
	b, ok := f.activeBucket(args.Source)
	if !ok {
		return ErrBucketNotActive
	}
	rd, ok := f.proc.track.GetResourceDef(b.Resource())
	if !ok {
		return ErrResourceNotFound
	}
	badge := f.authzone.FirstWitnessed()
	var supply resource.NewSupply
	if b.IsNonFungible() {
		supply.Keys = b.Keys()
	} else {
		amt := b.Amount()
		supply.Amount = &amt
	}
	if err := rd.Burn(supply, badge); err != nil {
		return err
	}
	b.MarkBurned()
	delete(f.buckets, args.Source)
	return nil
}

func (f *Frame) UpdateResourceFlags(args abi.UpdateResourceFlagsArgs) error {
	rd, ok := f.proc.track.GetResourceDef(args.Resource)
	if !ok {
		return ErrResourceNotFound
	}
	return rd.UpdateFlags(args.NewFlags, f.authorityFromProof(args.AuthProofRid))
}

func (f *Frame) UpdateResourceMutableFlags(args abi.UpdateResourceMutableFlagsArgs) error {
	rd, ok := f.proc.track.GetResourceDef(args.Resource)
	if !ok {
		return ErrResourceNotFound
	}
	return rd.UpdateMutableFlags(args.NewMutable, f.authorityFromProof(args.AuthProofRid))
}

func (f *Frame) UpdateResourceMetadata(args abi.UpdateResourceMetadataArgs) error {
	rd, ok := f.proc.track.GetResourceDef(args.Resource)
	if !ok {
		return ErrResourceNotFound
	}
	return rd.UpdateMetadata(args.Metadata, f.authorityFromProof(args.AuthProofRid))
}

func (f *Frame) GetResourceFlags(args abi.ResourceAddrArgs) (abi.ResourceFlagsResult, error) {
	rd, ok := f.proc.track.GetResourceDef(args.Resource)
	if !ok {
		return abi.ResourceFlagsResult{}, ErrResourceNotFound
	}
	return abi.ResourceFlagsResult{Flags: rd.Flags()}, nil
}

func (f *Frame) GetResourceMutableFlags(args abi.ResourceAddrArgs) (abi.ResourceFlagsResult, error) {
	rd, ok := f.proc.track.GetResourceDef(args.Resource)
	if !ok {
		return abi.ResourceFlagsResult{}, ErrResourceNotFound
	}
	return abi.ResourceFlagsResult{Flags: rd.MutableFlags()}, nil
}

func (f *Frame) GetResourceMetadata(args abi.ResourceAddrArgs) (abi.ResourceMetadataResult, error) {
	rd, ok := f.proc.track.GetResourceDef(args.Resource)
	if !ok {
		return abi.ResourceMetadataResult{}, ErrResourceNotFound
	}
	return abi.ResourceMetadataResult{Metadata: rd.Metadata()}, nil
}

func (f *Frame) GetResourceTotalSupply(args abi.ResourceAddrArgs) (abi.ResourceSupplyResult, error) {
	rd, ok := f.proc.track.GetResourceDef(args.Resource)
	if !ok {
		return abi.ResourceSupplyResult{}, ErrResourceNotFound
	}
	return abi.ResourceSupplyResult{Supply: rd.TotalSupply()}, nil
}

func (f *Frame) GetNonFungibleData(args abi.NonFungibleDataArgs) (abi.NonFungibleDataResult, error) {
	nf, ok := f.proc.track.GetNonFungible(args.Resource, args.Key)
	if !ok {
		return abi.NonFungibleDataResult{}, resource.ErrNonFungibleKeyMissing
	}
	return abi.NonFungibleDataResult{Immutable: nf.Immutable, Mutable: nf.Mutable}, nil
}

func (f *Frame) UpdateNonFungibleMutableData(args abi.UpdateNonFungibleMutableDataArgs) error {
	nf, ok := f.proc.track.GetNonFungibleMut(args.Resource, args.Key)
	if !ok {
		return resource.ErrNonFungibleKeyMissing
	}
	rd, ok := f.proc.track.GetResourceDef(args.Resource)
	if !ok {
		return ErrResourceNotFound
	}
	badge := f.authorityFromProof(args.AuthProofRid)
	if err := rd.CheckTakeFromVaultAuth(badge); err != nil && !rd.Kind().NonFungible {
		return err
	}
	nf.UpdateMutableData(args.Mutable)
	f.proc.track.PutNonFungible(args.Resource, args.Key, nf)
	return nil
}

func (f *Frame) currentLazyMapOwner() (types.Address, error) { return f.vaultOwner() }

func (f *Frame) PutLazyMapEntry(args abi.PutLazyMapEntryArgs) error {
	if err := f.consumeGas(abi.OpPutLazyMapEntry); err != nil {
		return err
	}
	owner, err := f.currentLazyMapOwner()
	if err != nil {
		return err
	}
	m, ok := f.proc.track.GetLazyMapMut(owner, args.Mid)
	if !ok {
		return ErrLazyMapNotFound
	}
	m.Put(args.Key, args.Value)
	f.proc.track.PutLazyMap(owner, args.Mid, m)
	return nil
}

func (f *Frame) GetLazyMapEntry(args abi.LazyMapEntryArgs) (abi.LazyMapEntryResult, error) {
	if err := f.consumeGas(abi.OpGetLazyMapEntry); err != nil {
		return abi.LazyMapEntryResult{}, err
	}
	owner, err := f.currentLazyMapOwner()
	if err != nil {
		return abi.LazyMapEntryResult{}, err
	}
	m, ok := f.proc.track.GetLazyMap(owner, args.Mid)
	if !ok {
		return abi.LazyMapEntryResult{}, ErrLazyMapNotFound
	}
	v, _ := m.Get(args.Key)
	return abi.LazyMapEntryResult{Value: v}, nil
}

func (f *Frame) CallFunction(args abi.CallFunctionArgs) (abi.CallResult, error) {
	if err := f.consumeGas(abi.OpCallFunction); err != nil {
		return abi.CallResult{}, err
	}
	code, ok := f.proc.track.LoadModuleBytes(args.Package)
	if !ok {
		return abi.CallResult{}, ErrPackageNotFound
	}
	callee, err := f.childFrame(types.Address{})
	if err != nil {
		return abi.CallResult{}, err
	}
	if err := f.moveBuckets(callee, args.Buckets); err != nil {
		return abi.CallResult{}, err
	}
	if err := f.moveProofs(callee, args.Proofs); err != nil {
		return abi.CallResult{}, err
	}
	return f.runCallee(callee, code, args.Function, args.Args)
}

func (f *Frame) CallMethod(args abi.CallMethodArgs) (abi.CallResult, error) {
	if err := f.consumeGas(abi.OpCallMethod); err != nil {
		return abi.CallResult{}, err
	}
	comp, ok := f.proc.track.GetComponent(args.Component)
	if !ok {
		return abi.CallResult{}, ErrComponentNotFound
	}
	code, ok := f.proc.track.LoadModuleBytes(comp.Package)
	if !ok {
		return abi.CallResult{}, ErrPackageNotFound
	}
	callee, err := f.childFrame(args.Component)
	if err != nil {
		return abi.CallResult{}, err
	}
	if err := f.moveBuckets(callee, args.Buckets); err != nil {
		return abi.CallResult{}, err
	}
	if err := f.moveProofs(callee, args.Proofs); err != nil {
		return abi.CallResult{}, err
	}
	return f.runCallee(callee, code, args.Method, args.Args)
}

func (f *Frame) runCallee(callee *Frame, code []byte, entry string, args [][]byte) (abi.CallResult, error) {
	result, err := f.proc.vm.Invoke(code, entry, args, callee)
	if err != nil {
		return abi.CallResult{}, err
	}
	// Returned proofs are taken out before finish clears the callee's auth zone.
	for _, rid := range result.Proofs {
		if p, ok := callee.authzone.Get(rid); ok {
			f.authzone.AdoptProof(p)
		}
	}
	if err := callee.finish(result.Buckets); err != nil {
		return abi.CallResult{}, err
	}
	for _, bid := range result.Buckets {
		b := callee.buckets[bid]
		delete(callee.buckets, bid)
		b.MarkMoved()
		f.buckets[bid] = resource.NewBucket(bid, b.Container())
	}
	return result, nil
}

func (f *Frame) EmitLog(args abi.EmitLogArgs) error {
	if err := f.consumeGas(abi.OpEmitLog); err != nil {
		return err
	}
	f.log(logLevelFromString(args.Level), "%s", args.Message)
	return nil
}

func logLevelFromString(s string) track.LogLevel {
	switch s {
	case "Error":
		return track.LogError
	case "Warn":
		return track.LogWarn
	case "Debug":
		return track.LogDebug
	case "Trace":
		return track.LogTrace
	default:
		return track.LogInfo
	}
}

func (f *Frame) GetTransactionHash() (abi.TransactionHashResult, error) {
	return abi.TransactionHashResult{Hash: f.proc.track.TransactionHash()}, nil
}

func (f *Frame) GenerateUUID() (abi.UUIDResult, error) {
	if err := f.consumeGas(abi.OpGenerateUUID); err != nil {
		return abi.UUIDResult{}, err
	}
	id, err := f.proc.track.NewUUID()
	if err != nil {
		return abi.UUIDResult{}, err
	}
	return abi.UUIDResult{UUID: id}, nil
}

func (f *Frame) GetEpoch() (abi.EpochResult, error) {
	return abi.EpochResult{Epoch: f.proc.track.CurrentEpoch()}, nil
}
