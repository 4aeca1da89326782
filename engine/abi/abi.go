// Package abi defines the guest-host call surface: the numeric op table a
// guest module invokes to manipulate Buckets, Proofs, ResourceDefs,
// LazyMaps and to call other components, plus the request/response
// payloads each op carries. Grounded on
// original_source/scrypto/src/engine/call.rs's call_engine(op, input) ->
// output shape for the op-plus-payload dispatch convention, and
// original_source/scrypto/src/resource/bucket.rs's per-method engine calls
// (CreateEmptyBucket/PutIntoBucket/TakeFromBucket/TakeNonFungibleFromBucket/
// GetBucketAmount/GetBucketResourceDefId/GetNonFungibleKeysInBucket) for the
// op catalogue itself; core/opcode_dispatcher.go for the convention of a
// flat numeric dispatch table keyed by a byte-sized op code.
package abi

import "github.com/synnergy/assetengine/engine/types"

// Op identifies a single host call a guest module can make during a
// function or method invocation.
type Op byte

const (
	OpCreateEmptyBucket Op = iota + 1
	OpPutIntoBucket
	OpTakeFromBucket
	OpTakeNonFungibleFromBucket
	OpGetBucketAmount
	OpGetBucketResourceDef
	OpGetNonFungibleKeysInBucket
	OpDropEmptyBucket

	OpCreateBucketRef
	OpCloneBucketRef
	OpDropBucketRef

	OpCreateEmptyVault
	OpPutIntoVault
	OpTakeFromVault
	OpTakeNonFungibleFromVault
	OpGetVaultAmount
	OpGetVaultResourceDef
	OpGetNonFungibleKeysInVault

	OpCreateResource
	OpMintResource
	OpBurnResource
	OpUpdateResourceFlags
	OpUpdateResourceMutableFlags
	OpUpdateResourceMetadata
	OpGetResourceFlags
	OpGetResourceMutableFlags
	OpGetResourceMetadata
	OpGetResourceTotalSupply

	OpGetNonFungibleData
	OpUpdateNonFungibleMutableData

	OpPutLazyMapEntry
	OpGetLazyMapEntry

	OpCallFunction
	OpCallMethod

	OpEmitLog
	OpGetTransactionHash
	OpGenerateUUID
	OpGetEpoch
)

// String names an op for logging; unlisted ops render as "UNKNOWN_OP".
func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "UNKNOWN_OP"
}

var opNames = map[Op]string{
	OpCreateEmptyBucket:             "CREATE_EMPTY_BUCKET",
	OpPutIntoBucket:                 "PUT_INTO_BUCKET",
	OpTakeFromBucket:                "TAKE_FROM_BUCKET",
	OpTakeNonFungibleFromBucket:     "TAKE_NON_FUNGIBLE_FROM_BUCKET",
	OpGetBucketAmount:               "GET_BUCKET_AMOUNT",
	OpGetBucketResourceDef:          "GET_BUCKET_RESOURCE_DEF_ID",
	OpGetNonFungibleKeysInBucket:    "GET_NON_FUNGIBLE_KEYS_IN_BUCKET",
	OpDropEmptyBucket:               "DROP_EMPTY_BUCKET",
	OpCreateBucketRef:               "CREATE_BUCKET_REF",
	OpCloneBucketRef:                "CLONE_BUCKET_REF",
	OpDropBucketRef:                 "DROP_BUCKET_REF",
	OpCreateEmptyVault:              "CREATE_EMPTY_VAULT",
	OpPutIntoVault:                  "PUT_INTO_VAULT",
	OpTakeFromVault:                 "TAKE_FROM_VAULT",
	OpTakeNonFungibleFromVault:      "TAKE_NON_FUNGIBLE_FROM_VAULT",
	OpGetVaultAmount:                "GET_VAULT_AMOUNT",
	OpGetVaultResourceDef:           "GET_VAULT_RESOURCE_DEF_ID",
	OpGetNonFungibleKeysInVault:     "GET_NON_FUNGIBLE_KEYS_IN_VAULT",
	OpCreateResource:                "CREATE_RESOURCE",
	OpMintResource:                  "MINT_RESOURCE",
	OpBurnResource:                  "BURN_RESOURCE",
	OpUpdateResourceFlags:           "UPDATE_RESOURCE_FLAGS",
	OpUpdateResourceMutableFlags:    "UPDATE_RESOURCE_MUTABLE_FLAGS",
	OpUpdateResourceMetadata:        "UPDATE_RESOURCE_METADATA",
	OpGetResourceFlags:              "GET_RESOURCE_FLAGS",
	OpGetResourceMutableFlags:       "GET_RESOURCE_MUTABLE_FLAGS",
	OpGetResourceMetadata:           "GET_RESOURCE_METADATA",
	OpGetResourceTotalSupply:        "GET_RESOURCE_TOTAL_SUPPLY",
	OpGetNonFungibleData:            "GET_NON_FUNGIBLE_DATA",
	OpUpdateNonFungibleMutableData:  "UPDATE_NON_FUNGIBLE_MUTABLE_DATA",
	OpPutLazyMapEntry:               "PUT_LAZY_MAP_ENTRY",
	OpGetLazyMapEntry:               "GET_LAZY_MAP_ENTRY",
	OpCallFunction:                  "CALL_FUNCTION",
	OpCallMethod:                    "CALL_METHOD",
	OpEmitLog:                       "EMIT_LOG",
	OpGetTransactionHash:            "GET_TRANSACTION_HASH",
	OpGenerateUUID:                  "GENERATE_UUID",
	OpGetEpoch:                      "GET_EPOCH",
}

// CreateEmptyBucketArgs/Result and friends are the typed request/response
// pairs a HostService implementation exchanges with a guest call. The
// numeric Op value selects which pair applies; Dispatch works in terms of
// these structs rather than raw bytes so engine/process and engine/vm share
// one definition of each call's shape. Every new id (Bid/Rid/Vid/Mid) in a
// Result is host-allocated: a guest never supplies one as input.

type CreateEmptyBucketArgs struct{ Resource types.Address }
type CreateEmptyBucketResult struct{ Bid types.Bid }

type PutIntoBucketArgs struct {
	Dest   types.Bid
	Source types.Bid
}

type TakeFromBucketArgs struct {
	Source types.Bid
	Amount types.Decimal
}
type TakeFromBucketResult struct{ Bid types.Bid }

type TakeNonFungibleFromBucketArgs struct {
	Source types.Bid
	Keys   []types.NonFungibleKey
}
type TakeNonFungibleFromBucketResult struct{ Bid types.Bid }

type BucketRefArgs struct{ Bid types.Bid }
type BucketAmountResult struct{ Amount types.Decimal }
type BucketResourceDefResult struct{ Resource types.Address }
type BucketKeysResult struct{ Keys []types.NonFungibleKey }

type CreateEmptyVaultArgs struct{ Resource types.Address }
type VaultRefResult struct{ Vid types.Vid }
type VaultRefArgs struct{ Vid types.Vid }
type PutIntoVaultArgs struct {
	Vid    types.Vid
	Source types.Bid
}
type TakeFromVaultArgs struct {
	Vid    types.Vid
	Amount types.Decimal
}
type TakeNonFungibleFromVaultArgs struct {
	Vid types.Vid
	Key types.NonFungibleKey
}

type CreateBucketRefArgs struct{ Bid types.Bid }
type BucketRefResult struct{ Rid types.Rid }
type CloneBucketRefArgs struct{ Rid types.Rid }
type DropBucketRefArgs struct{ Rid types.Rid }

// CreateResourceArgs.InitialAmount/InitialKeys select the initial supply to
// mint straight into a returned bucket: exactly one of them should be set,
// matching the fungible/non-fungible kind chosen by NonFungible, or neither
// for a zero-supply resource.
type CreateResourceArgs struct {
	NonFungible  bool
	Divisibility uint8
	Metadata     map[string]string
	Flags        uint64
	MutableFlags uint64
	Authorities  map[types.Address]uint64
	InitialAmount *types.Decimal
	InitialKeys   []types.NonFungibleKey
}
type CreateResourceResult struct {
	Resource  types.Address
	Bid       types.Bid
	HasBucket bool
}

type MintResourceArgs struct {
	Resource types.Address
	Amount   types.Decimal
}
type MintResourceResult struct{ Bid types.Bid }

type BurnResourceArgs struct{ Source types.Bid }

type UpdateResourceFlagsArgs struct {
	Resource     types.Address
	NewFlags     uint64
	AuthProofRid types.Rid
}
type UpdateResourceMutableFlagsArgs struct {
	Resource     types.Address
	NewMutable   uint64
	AuthProofRid types.Rid
}
type UpdateResourceMetadataArgs struct {
	Resource     types.Address
	Metadata     map[string]string
	AuthProofRid types.Rid
}
type ResourceAddrArgs struct{ Resource types.Address }
type ResourceFlagsResult struct{ Flags uint64 }
type ResourceMetadataResult struct{ Metadata map[string]string }
type ResourceSupplyResult struct{ Supply types.Decimal }

type NonFungibleDataArgs struct {
	Resource types.Address
	Key      types.NonFungibleKey
}
type NonFungibleDataResult struct {
	Immutable []byte
	Mutable   []byte
}
type UpdateNonFungibleMutableDataArgs struct {
	Resource     types.Address
	Key          types.NonFungibleKey
	Mutable      []byte
	AuthProofRid types.Rid
}

type LazyMapEntryArgs struct {
	Mid types.Mid
	Key []byte
}
type LazyMapEntryResult struct{ Value []byte }
type PutLazyMapEntryArgs struct {
	Mid   types.Mid
	Key   []byte
	Value []byte
}

type CallFunctionArgs struct {
	Package  types.Address
	Blueprint string
	Function string
	Args     [][]byte
	Buckets  []types.Bid
	Proofs   []types.Rid
}
type CallMethodArgs struct {
	Component types.Address
	Method    string
	Args      [][]byte
	Buckets   []types.Bid
	Proofs    []types.Rid
}
type CallResult struct {
	ReturnData []byte
	Buckets    []types.Bid
	Proofs     []types.Rid
}

type EmitLogArgs struct {
	Level   string
	Message string
}

type TransactionHashResult struct{ Hash types.Hash }
type UUIDResult struct{ UUID types.UUID }
type EpochResult struct{ Epoch uint64 }

// HostService is the interface a guest invocation is run against. A single
// frame of engine/process implements it; engine/vm's guest backends call
// through it rather than touching Track/Worktop/AuthZone directly.
type HostService interface {
	CreateEmptyBucket(CreateEmptyBucketArgs) (CreateEmptyBucketResult, error)
	PutIntoBucket(PutIntoBucketArgs) error
	TakeFromBucket(TakeFromBucketArgs) (TakeFromBucketResult, error)
	TakeNonFungibleFromBucket(TakeNonFungibleFromBucketArgs) (TakeNonFungibleFromBucketResult, error)
	GetBucketAmount(BucketRefArgs) (BucketAmountResult, error)
	GetBucketResourceDef(BucketRefArgs) (BucketResourceDefResult, error)
	GetNonFungibleKeysInBucket(BucketRefArgs) (BucketKeysResult, error)
	DropEmptyBucket(BucketRefArgs) error

	CreateBucketRef(CreateBucketRefArgs) (BucketRefResult, error)
	CloneBucketRef(CloneBucketRefArgs) (BucketRefResult, error)
	DropBucketRef(DropBucketRefArgs) error

	CreateEmptyVault(CreateEmptyVaultArgs) (VaultRefResult, error)
	PutIntoVault(PutIntoVaultArgs) error
	TakeFromVault(TakeFromVaultArgs) (TakeFromBucketResult, error)
	TakeNonFungibleFromVault(TakeNonFungibleFromVaultArgs) (TakeFromBucketResult, error)
	GetVaultAmount(VaultRefArgs) (BucketAmountResult, error)
	GetVaultResourceDef(VaultRefArgs) (BucketResourceDefResult, error)
	GetNonFungibleKeysInVault(VaultRefArgs) (BucketKeysResult, error)

	CreateResource(CreateResourceArgs) (CreateResourceResult, error)
	MintResource(MintResourceArgs) (MintResourceResult, error)
	BurnResource(BurnResourceArgs) error
	UpdateResourceFlags(UpdateResourceFlagsArgs) error
	UpdateResourceMutableFlags(UpdateResourceMutableFlagsArgs) error
	UpdateResourceMetadata(UpdateResourceMetadataArgs) error
	GetResourceFlags(ResourceAddrArgs) (ResourceFlagsResult, error)
	GetResourceMutableFlags(ResourceAddrArgs) (ResourceFlagsResult, error)
	GetResourceMetadata(ResourceAddrArgs) (ResourceMetadataResult, error)
	GetResourceTotalSupply(ResourceAddrArgs) (ResourceSupplyResult, error)

	GetNonFungibleData(NonFungibleDataArgs) (NonFungibleDataResult, error)
	UpdateNonFungibleMutableData(UpdateNonFungibleMutableDataArgs) error

	PutLazyMapEntry(PutLazyMapEntryArgs) error
	GetLazyMapEntry(LazyMapEntryArgs) (LazyMapEntryResult, error)

	CallFunction(CallFunctionArgs) (CallResult, error)
	CallMethod(CallMethodArgs) (CallResult, error)

	EmitLog(EmitLogArgs) error
	GetTransactionHash() (TransactionHashResult, error)
	GenerateUUID() (UUIDResult, error)
	GetEpoch() (EpochResult, error)
}
