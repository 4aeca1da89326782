package abi

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/synnergy/assetengine/engine/codec"
	"github.com/synnergy/assetengine/engine/types"
)

var ErrUnknownOp = errors.New("abi: unknown host call op")

// Dispatch decodes a codec-encoded request for op, calls the matching
// HostService method, and re-encodes its response. This is the single
// chokepoint both engine/vm backends call through, so neither has to know
// about every individual op's Go signature — only engine/process's
// HostService implementation does.
func Dispatch(host HostService, op Op, payload []byte) ([]byte, error) {
	d := codec.NewDecoder(payload)
	e := codec.NewEncoder()

	switch op {
	case OpCreateEmptyBucket:
		addr, err := decodeAddress(d)
		if err != nil {
			return nil, err
		}
		res, err := host.CreateEmptyBucket(CreateEmptyBucketArgs{Resource: addr})
		if err != nil {
			return nil, err
		}
		return e.Uint64(uint64(res.Bid)).Finish(), nil

	case OpPutIntoBucket:
		dest, err := decodeBid(d)
		if err != nil {
			return nil, err
		}
		src, err := decodeBid(d)
		if err != nil {
			return nil, err
		}
		return nil, host.PutIntoBucket(PutIntoBucketArgs{Dest: dest, Source: src})

	case OpTakeFromBucket:
		src, err := decodeBid(d)
		if err != nil {
			return nil, err
		}
		amount, err := decodeDecimal(d)
		if err != nil {
			return nil, err
		}
		res, err := host.TakeFromBucket(TakeFromBucketArgs{Source: src, Amount: amount})
		if err != nil {
			return nil, err
		}
		return e.Uint64(uint64(res.Bid)).Finish(), nil

	case OpTakeNonFungibleFromBucket:
		src, err := decodeBid(d)
		if err != nil {
			return nil, err
		}
		keys, err := decodeKeys(d)
		if err != nil {
			return nil, err
		}
		res, err := host.TakeNonFungibleFromBucket(TakeNonFungibleFromBucketArgs{Source: src, Keys: keys})
		if err != nil {
			return nil, err
		}
		return e.Uint64(uint64(res.Bid)).Finish(), nil

	case OpGetBucketAmount:
		bid, err := decodeBid(d)
		if err != nil {
			return nil, err
		}
		res, err := host.GetBucketAmount(BucketRefArgs{Bid: bid})
		if err != nil {
			return nil, err
		}
		return e.Bytes(res.Amount.Raw.Bytes()).Finish(), nil

	case OpGetBucketResourceDef:
		bid, err := decodeBid(d)
		if err != nil {
			return nil, err
		}
		res, err := host.GetBucketResourceDef(BucketRefArgs{Bid: bid})
		if err != nil {
			return nil, err
		}
		return e.Bytes(res.Resource.Bytes()).Finish(), nil

	case OpGetNonFungibleKeysInBucket:
		bid, err := decodeBid(d)
		if err != nil {
			return nil, err
		}
		res, err := host.GetNonFungibleKeysInBucket(BucketRefArgs{Bid: bid})
		if err != nil {
			return nil, err
		}
		encodeKeys(e, res.Keys)
		return e.Finish(), nil

	case OpDropEmptyBucket:
		bid, err := decodeBid(d)
		if err != nil {
			return nil, err
		}
		return nil, host.DropEmptyBucket(BucketRefArgs{Bid: bid})

	case OpCreateBucketRef:
		bid, err := decodeBid(d)
		if err != nil {
			return nil, err
		}
		res, err := host.CreateBucketRef(CreateBucketRefArgs{Bid: bid})
		if err != nil {
			return nil, err
		}
		return e.Uint64(uint64(res.Rid)).Finish(), nil

	case OpCloneBucketRef:
		rid, err := decodeRid(d)
		if err != nil {
			return nil, err
		}
		res, err := host.CloneBucketRef(CloneBucketRefArgs{Rid: rid})
		if err != nil {
			return nil, err
		}
		return e.Uint64(uint64(res.Rid)).Finish(), nil

	case OpDropBucketRef:
		rid, err := decodeRid(d)
		if err != nil {
			return nil, err
		}
		return nil, host.DropBucketRef(DropBucketRefArgs{Rid: rid})

	case OpCreateEmptyVault:
		addr, err := decodeAddress(d)
		if err != nil {
			return nil, err
		}
		res, err := host.CreateEmptyVault(CreateEmptyVaultArgs{Resource: addr})
		if err != nil {
			return nil, err
		}
		encodeVid(e, res.Vid)
		return e.Finish(), nil

	case OpPutIntoVault:
		vid, err := decodeVid(d)
		if err != nil {
			return nil, err
		}
		src, err := decodeBid(d)
		if err != nil {
			return nil, err
		}
		return nil, host.PutIntoVault(PutIntoVaultArgs{Vid: vid, Source: src})

	case OpTakeFromVault:
		vid, err := decodeVid(d)
		if err != nil {
			return nil, err
		}
		amount, err := decodeDecimal(d)
		if err != nil {
			return nil, err
		}
		res, err := host.TakeFromVault(TakeFromVaultArgs{Vid: vid, Amount: amount})
		if err != nil {
			return nil, err
		}
		return e.Uint64(uint64(res.Bid)).Finish(), nil

	case OpTakeNonFungibleFromVault:
		vid, err := decodeVid(d)
		if err != nil {
			return nil, err
		}
		key, err := decodeKey(d)
		if err != nil {
			return nil, err
		}
		res, err := host.TakeNonFungibleFromVault(TakeNonFungibleFromVaultArgs{Vid: vid, Key: key})
		if err != nil {
			return nil, err
		}
		return e.Uint64(uint64(res.Bid)).Finish(), nil

	case OpGetVaultAmount:
		vid, err := decodeVid(d)
		if err != nil {
			return nil, err
		}
		res, err := host.GetVaultAmount(VaultRefArgs{Vid: vid})
		if err != nil {
			return nil, err
		}
		return e.Bytes(res.Amount.Raw.Bytes()).Finish(), nil

	case OpGetVaultResourceDef:
		vid, err := decodeVid(d)
		if err != nil {
			return nil, err
		}
		res, err := host.GetVaultResourceDef(VaultRefArgs{Vid: vid})
		if err != nil {
			return nil, err
		}
		return e.Bytes(res.Resource.Bytes()).Finish(), nil

	case OpGetNonFungibleKeysInVault:
		vid, err := decodeVid(d)
		if err != nil {
			return nil, err
		}
		res, err := host.GetNonFungibleKeysInVault(VaultRefArgs{Vid: vid})
		if err != nil {
			return nil, err
		}
		encodeKeys(e, res.Keys)
		return e.Finish(), nil

	case OpCreateResource:
		args, err := decodeCreateResourceArgs(d)
		if err != nil {
			return nil, err
		}
		res, err := host.CreateResource(args)
		if err != nil {
			return nil, err
		}
		e.Bytes(res.Resource.Bytes()).Bool(res.HasBucket).Uint64(uint64(res.Bid))
		return e.Finish(), nil

	case OpMintResource:
		addr, err := decodeAddress(d)
		if err != nil {
			return nil, err
		}
		amount, err := decodeDecimal(d)
		if err != nil {
			return nil, err
		}
		res, err := host.MintResource(MintResourceArgs{Resource: addr, Amount: amount})
		if err != nil {
			return nil, err
		}
		return e.Uint64(uint64(res.Bid)).Finish(), nil

	case OpBurnResource:
		bid, err := decodeBid(d)
		if err != nil {
			return nil, err
		}
		return nil, host.BurnResource(BurnResourceArgs{Source: bid})

	case OpUpdateResourceFlags:
		addr, err := decodeAddress(d)
		if err != nil {
			return nil, err
		}
		newFlags, err := d.Uint64()
		if err != nil {
			return nil, err
		}
		authRid, err := decodeRid(d)
		if err != nil {
			return nil, err
		}
		return nil, host.UpdateResourceFlags(UpdateResourceFlagsArgs{Resource: addr, NewFlags: newFlags, AuthProofRid: authRid})

	case OpUpdateResourceMutableFlags:
		addr, err := decodeAddress(d)
		if err != nil {
			return nil, err
		}
		newMutable, err := d.Uint64()
		if err != nil {
			return nil, err
		}
		authRid, err := decodeRid(d)
		if err != nil {
			return nil, err
		}
		return nil, host.UpdateResourceMutableFlags(UpdateResourceMutableFlagsArgs{Resource: addr, NewMutable: newMutable, AuthProofRid: authRid})

	case OpUpdateResourceMetadata:
		addr, err := decodeAddress(d)
		if err != nil {
			return nil, err
		}
		md, err := decodeMetadata(d)
		if err != nil {
			return nil, err
		}
		authRid, err := decodeRid(d)
		if err != nil {
			return nil, err
		}
		return nil, host.UpdateResourceMetadata(UpdateResourceMetadataArgs{Resource: addr, Metadata: md, AuthProofRid: authRid})

	case OpGetResourceFlags:
		addr, err := decodeAddress(d)
		if err != nil {
			return nil, err
		}
		res, err := host.GetResourceFlags(ResourceAddrArgs{Resource: addr})
		if err != nil {
			return nil, err
		}
		return e.Uint64(res.Flags).Finish(), nil

	case OpGetResourceMutableFlags:
		addr, err := decodeAddress(d)
		if err != nil {
			return nil, err
		}
		res, err := host.GetResourceMutableFlags(ResourceAddrArgs{Resource: addr})
		if err != nil {
			return nil, err
		}
		return e.Uint64(res.Flags).Finish(), nil

	case OpGetResourceMetadata:
		addr, err := decodeAddress(d)
		if err != nil {
			return nil, err
		}
		res, err := host.GetResourceMetadata(ResourceAddrArgs{Resource: addr})
		if err != nil {
			return nil, err
		}
		encodeMetadata(e, res.Metadata)
		return e.Finish(), nil

	case OpGetResourceTotalSupply:
		addr, err := decodeAddress(d)
		if err != nil {
			return nil, err
		}
		res, err := host.GetResourceTotalSupply(ResourceAddrArgs{Resource: addr})
		if err != nil {
			return nil, err
		}
		return e.Bytes(res.Supply.Raw.Bytes()).Finish(), nil

	case OpGetNonFungibleData:
		addr, err := decodeAddress(d)
		if err != nil {
			return nil, err
		}
		key, err := decodeKey(d)
		if err != nil {
			return nil, err
		}
		res, err := host.GetNonFungibleData(NonFungibleDataArgs{Resource: addr, Key: key})
		if err != nil {
			return nil, err
		}
		e.Bytes(res.Immutable).Bytes(res.Mutable)
		return e.Finish(), nil

	case OpUpdateNonFungibleMutableData:
		addr, err := decodeAddress(d)
		if err != nil {
			return nil, err
		}
		key, err := decodeKey(d)
		if err != nil {
			return nil, err
		}
		mutable, err := d.Bytes()
		if err != nil {
			return nil, err
		}
		authRid, err := decodeRid(d)
		if err != nil {
			return nil, err
		}
		return nil, host.UpdateNonFungibleMutableData(UpdateNonFungibleMutableDataArgs{
			Resource: addr, Key: key, Mutable: mutable, AuthProofRid: authRid,
		})

	case OpPutLazyMapEntry:
		mid, err := decodeMid(d)
		if err != nil {
			return nil, err
		}
		key, err := d.Bytes()
		if err != nil {
			return nil, err
		}
		value, err := d.Bytes()
		if err != nil {
			return nil, err
		}
		return nil, host.PutLazyMapEntry(PutLazyMapEntryArgs{Mid: mid, Key: key, Value: value})

	case OpGetLazyMapEntry:
		mid, err := decodeMid(d)
		if err != nil {
			return nil, err
		}
		key, err := d.Bytes()
		if err != nil {
			return nil, err
		}
		res, err := host.GetLazyMapEntry(LazyMapEntryArgs{Mid: mid, Key: key})
		if err != nil {
			return nil, err
		}
		return e.Bytes(res.Value).Finish(), nil

	case OpCallFunction:
		args, err := decodeCallFunctionArgs(d)
		if err != nil {
			return nil, err
		}
		res, err := host.CallFunction(args)
		if err != nil {
			return nil, err
		}
		encodeCallResult(e, res)
		return e.Finish(), nil

	case OpCallMethod:
		args, err := decodeCallMethodArgs(d)
		if err != nil {
			return nil, err
		}
		res, err := host.CallMethod(args)
		if err != nil {
			return nil, err
		}
		encodeCallResult(e, res)
		return e.Finish(), nil

	case OpEmitLog:
		level, err := d.String()
		if err != nil {
			return nil, err
		}
		msg, err := d.String()
		if err != nil {
			return nil, err
		}
		return nil, host.EmitLog(EmitLogArgs{Level: level, Message: msg})

	case OpGetTransactionHash:
		res, err := host.GetTransactionHash()
		if err != nil {
			return nil, err
		}
		return e.Bytes(res.Hash.Bytes()).Finish(), nil

	case OpGenerateUUID:
		res, err := host.GenerateUUID()
		if err != nil {
			return nil, err
		}
		return e.Bytes(res.UUID[:]).Finish(), nil

	case OpGetEpoch:
		res, err := host.GetEpoch()
		if err != nil {
			return nil, err
		}
		return e.Uint64(res.Epoch).Finish(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOp, op)
	}
}

func decodeAddress(d *codec.Decoder) (types.Address, error) {
	b, err := d.Bytes()
	if err != nil {
		return types.Address{}, err
	}
	return types.AddressFromBytes(b)
}

func decodeBid(d *codec.Decoder) (types.Bid, error) {
	v, err := d.Uint64()
	return types.Bid(v), err
}

func decodeRid(d *codec.Decoder) (types.Rid, error) {
	v, err := d.Uint64()
	return types.Rid(v), err
}

func decodeDecimal(d *codec.Decoder) (types.Decimal, error) {
	b, err := d.Bytes()
	if err != nil {
		return types.Decimal{}, err
	}
	return types.NewDecimalFromRaw(new(big.Int).SetBytes(b)), nil
}

func decodeKey(d *codec.Decoder) (types.NonFungibleKey, error) {
	b, err := d.Bytes()
	if err != nil {
		return "", err
	}
	return types.NewNonFungibleKey(b), nil
}

func encodeVid(e *codec.Encoder, vid types.Vid) {
	e.Bytes(vid.TxHash.Bytes()).Uint64(uint64(vid.Counter))
}

func decodeVid(d *codec.Decoder) (types.Vid, error) {
	hb, err := d.Bytes()
	if err != nil {
		return types.Vid{}, err
	}
	hash, err := types.HashFromBytes(hb)
	if err != nil {
		return types.Vid{}, err
	}
	counter, err := d.Uint64()
	if err != nil {
		return types.Vid{}, err
	}
	return types.Vid{TxHash: hash, Counter: uint32(counter)}, nil
}

func decodeMid(d *codec.Decoder) (types.Mid, error) {
	hb, err := d.Bytes()
	if err != nil {
		return types.Mid{}, err
	}
	hash, err := types.HashFromBytes(hb)
	if err != nil {
		return types.Mid{}, err
	}
	counter, err := d.Uint64()
	if err != nil {
		return types.Mid{}, err
	}
	return types.Mid{TxHash: hash, Counter: uint32(counter)}, nil
}

func encodeKeys(e *codec.Encoder, keys []types.NonFungibleKey) {
	e.Uint64(uint64(len(keys)))
	for _, k := range keys {
		e.Bytes(k.Bytes())
	}
}

func decodeKeys(d *codec.Decoder) ([]types.NonFungibleKey, error) {
	n, err := d.Uint64()
	if err != nil {
		return nil, err
	}
	keys := make([]types.NonFungibleKey, 0, n)
	for i := uint64(0); i < n; i++ {
		k, err := decodeKey(d)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func encodeMetadata(e *codec.Encoder, md map[string]string) {
	e.Uint64(uint64(len(md)))
	for _, k := range sortedMetadataKeys(md) {
		e.String(k).String(md[k])
	}
}

// sortedMetadataKeys returns metadata keys in sorted order so encoding is
// deterministic: iterating a Go map directly would make Encode non-
// reproducible, violating the engine's no-unordered-iteration rule.
func sortedMetadataKeys(md map[string]string) []string {
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sortStrings(keys)
	return keys
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func decodeMetadata(d *codec.Decoder) (map[string]string, error) {
	n, err := d.Uint64()
	if err != nil {
		return nil, err
	}
	md := make(map[string]string, n)
	for i := uint64(0); i < n; i++ {
		k, err := d.String()
		if err != nil {
			return nil, err
		}
		v, err := d.String()
		if err != nil {
			return nil, err
		}
		md[k] = v
	}
	return md, nil
}

func encodeAuthorities(e *codec.Encoder, auth map[types.Address]uint64) {
	addrs := make([]types.Address, 0, len(auth))
	for a := range auth {
		addrs = append(addrs, a)
	}
	sortAddresses(addrs)
	e.Uint64(uint64(len(addrs)))
	for _, a := range addrs {
		e.Bytes(a.Bytes()).Uint64(auth[a])
	}
}

func sortAddresses(a []types.Address) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && lessAddress(a[j], a[j-1]); j-- {
			a[j-1], a[j] = a[j], a[j-1]
		}
	}
}

func lessAddress(a, b types.Address) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func decodeAuthorities(d *codec.Decoder) (map[types.Address]uint64, error) {
	n, err := d.Uint64()
	if err != nil {
		return nil, err
	}
	auth := make(map[types.Address]uint64, n)
	for i := uint64(0); i < n; i++ {
		addr, err := decodeAddress(d)
		if err != nil {
			return nil, err
		}
		perm, err := d.Uint64()
		if err != nil {
			return nil, err
		}
		auth[addr] = perm
	}
	return auth, nil
}

func decodeCreateResourceArgs(d *codec.Decoder) (CreateResourceArgs, error) {
	var args CreateResourceArgs
	nonFungible, err := d.Bool()
	if err != nil {
		return args, err
	}
	divisibility, err := d.Uint64()
	if err != nil {
		return args, err
	}
	metadata, err := decodeMetadata(d)
	if err != nil {
		return args, err
	}
	flags, err := d.Uint64()
	if err != nil {
		return args, err
	}
	mutableFlags, err := d.Uint64()
	if err != nil {
		return args, err
	}
	authorities, err := decodeAuthorities(d)
	if err != nil {
		return args, err
	}
	hasAmount, err := d.Bool()
	if err != nil {
		return args, err
	}
	var initialAmount *types.Decimal
	if hasAmount {
		amt, err := decodeDecimal(d)
		if err != nil {
			return args, err
		}
		initialAmount = &amt
	}
	hasKeys, err := d.Bool()
	if err != nil {
		return args, err
	}
	var initialKeys []types.NonFungibleKey
	if hasKeys {
		initialKeys, err = decodeKeys(d)
		if err != nil {
			return args, err
		}
	}

	args.NonFungible = nonFungible
	args.Divisibility = uint8(divisibility)
	args.Metadata = metadata
	args.Flags = flags
	args.MutableFlags = mutableFlags
	args.Authorities = authorities
	args.InitialAmount = initialAmount
	args.InitialKeys = initialKeys
	return args, nil
}

// EncodeCreateResourceArgs is exported so callers constructing a guest
// request (engine/vm backends, tests standing in for guest code) can build
// the wire payload without duplicating the field order Dispatch expects.
func EncodeCreateResourceArgs(args CreateResourceArgs) []byte {
	e := codec.NewEncoder()
	e.Bool(args.NonFungible).Uint64(uint64(args.Divisibility))
	encodeMetadata(e, args.Metadata)
	e.Uint64(args.Flags).Uint64(args.MutableFlags)
	encodeAuthorities(e, args.Authorities)
	e.Bool(args.InitialAmount != nil)
	if args.InitialAmount != nil {
		e.Bytes(args.InitialAmount.Raw.Bytes())
	}
	e.Bool(args.InitialKeys != nil)
	if args.InitialKeys != nil {
		encodeKeys(e, args.InitialKeys)
	}
	return e.Finish()
}

func decodeArgList(d *codec.Decoder) ([][]byte, error) {
	n, err := d.Uint64()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, 0, n)
	for i := uint64(0); i < n; i++ {
		b, err := d.Bytes()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func encodeArgList(e *codec.Encoder, args [][]byte) {
	e.Uint64(uint64(len(args)))
	for _, a := range args {
		e.Bytes(a)
	}
}

func decodeBidList(d *codec.Decoder) ([]types.Bid, error) {
	n, err := d.Uint64()
	if err != nil {
		return nil, err
	}
	out := make([]types.Bid, 0, n)
	for i := uint64(0); i < n; i++ {
		b, err := decodeBid(d)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func encodeBidList(e *codec.Encoder, bids []types.Bid) {
	e.Uint64(uint64(len(bids)))
	for _, b := range bids {
		e.Uint64(uint64(b))
	}
}

func decodeRidList(d *codec.Decoder) ([]types.Rid, error) {
	n, err := d.Uint64()
	if err != nil {
		return nil, err
	}
	out := make([]types.Rid, 0, n)
	for i := uint64(0); i < n; i++ {
		r, err := decodeRid(d)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func encodeRidList(e *codec.Encoder, rids []types.Rid) {
	e.Uint64(uint64(len(rids)))
	for _, r := range rids {
		e.Uint64(uint64(r))
	}
}

func decodeCallFunctionArgs(d *codec.Decoder) (CallFunctionArgs, error) {
	var args CallFunctionArgs
	pkg, err := decodeAddress(d)
	if err != nil {
		return args, err
	}
	blueprint, err := d.String()
	if err != nil {
		return args, err
	}
	function, err := d.String()
	if err != nil {
		return args, err
	}
	cArgs, err := decodeArgList(d)
	if err != nil {
		return args, err
	}
	buckets, err := decodeBidList(d)
	if err != nil {
		return args, err
	}
	proofs, err := decodeRidList(d)
	if err != nil {
		return args, err
	}
	args.Package = pkg
	args.Blueprint = blueprint
	args.Function = function
	args.Args = cArgs
	args.Buckets = buckets
	args.Proofs = proofs
	return args, nil
}

// EncodeCallFunctionArgs mirrors EncodeCreateResourceArgs for CALL_FUNCTION.
func EncodeCallFunctionArgs(args CallFunctionArgs) []byte {
	e := codec.NewEncoder()
	e.Bytes(args.Package.Bytes()).String(args.Blueprint).String(args.Function)
	encodeArgList(e, args.Args)
	encodeBidList(e, args.Buckets)
	encodeRidList(e, args.Proofs)
	return e.Finish()
}

func decodeCallMethodArgs(d *codec.Decoder) (CallMethodArgs, error) {
	var args CallMethodArgs
	comp, err := decodeAddress(d)
	if err != nil {
		return args, err
	}
	method, err := d.String()
	if err != nil {
		return args, err
	}
	cArgs, err := decodeArgList(d)
	if err != nil {
		return args, err
	}
	buckets, err := decodeBidList(d)
	if err != nil {
		return args, err
	}
	proofs, err := decodeRidList(d)
	if err != nil {
		return args, err
	}
	args.Component = comp
	args.Method = method
	args.Args = cArgs
	args.Buckets = buckets
	args.Proofs = proofs
	return args, nil
}

// EncodeCallMethodArgs mirrors EncodeCreateResourceArgs for CALL_METHOD.
func EncodeCallMethodArgs(args CallMethodArgs) []byte {
	e := codec.NewEncoder()
	e.Bytes(args.Component.Bytes()).String(args.Method)
	encodeArgList(e, args.Args)
	encodeBidList(e, args.Buckets)
	encodeRidList(e, args.Proofs)
	return e.Finish()
}

func encodeCallResult(e *codec.Encoder, res CallResult) {
	e.Bytes(res.ReturnData)
	encodeBidList(e, res.Buckets)
	encodeRidList(e, res.Proofs)
}
