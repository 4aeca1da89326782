package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/synnergy/assetengine/engine/process"
	"github.com/synnergy/assetengine/engine/types"
)

// manifestDoc is the minimal JSON instruction-list format this thin driver
// accepts. spec.md §1 places transaction-manifest parsing out of scope
// beyond "a minimal instruction list"; this is that minimal list, not a
// general manifest DSL or compiler.
type manifestDoc struct {
	TransactionHash string          `json:"transaction_hash"`
	Signers         []string        `json:"signers"`
	Instructions    []manifestInstr `json:"instructions"`
}

type manifestInstr struct {
	Kind string `json:"kind"`

	Resource string   `json:"resource,omitempty"`
	Amount   string   `json:"amount,omitempty"`
	Keys     []string `json:"keys,omitempty"`
	Bid      uint32   `json:"bid,omitempty"`

	Package   string   `json:"package,omitempty"`
	Blueprint string   `json:"blueprint,omitempty"`
	Function  string   `json:"function,omitempty"`
	Component string   `json:"component,omitempty"`
	Method    string   `json:"method,omitempty"`
	Args      []string `json:"args,omitempty"`
	Buckets   []uint32 `json:"buckets,omitempty"`
	Proofs    []uint32 `json:"proofs,omitempty"`

	DepositMethod string `json:"deposit_method,omitempty"`
}

func parseManifest(data []byte) (types.Hash, []types.SignerKey, []process.Instruction, error) {
	var doc manifestDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return types.Hash{}, nil, nil, fmt.Errorf("manifest: %w", err)
	}

	txHash, err := parseHash(doc.TransactionHash)
	if err != nil {
		return types.Hash{}, nil, nil, fmt.Errorf("manifest: transaction_hash: %w", err)
	}

	signers := make([]types.SignerKey, 0, len(doc.Signers))
	for i, s := range doc.Signers {
		sk, err := parseSignerKey(s)
		if err != nil {
			return types.Hash{}, nil, nil, fmt.Errorf("manifest: signers[%d]: %w", i, err)
		}
		signers = append(signers, sk)
	}

	instrs := make([]process.Instruction, 0, len(doc.Instructions))
	for i, mi := range doc.Instructions {
		instr, err := mi.toInstruction()
		if err != nil {
			return types.Hash{}, nil, nil, fmt.Errorf("manifest: instructions[%d]: %w", i, err)
		}
		instrs = append(instrs, instr)
	}
	return txHash, signers, instrs, nil
}

func (mi manifestInstr) toInstruction() (process.Instruction, error) {
	instr := process.Instruction{
		Bid:           types.Bid(mi.Bid),
		Blueprint:     mi.Blueprint,
		Function:      mi.Function,
		Method:        mi.Method,
		DepositMethod: mi.DepositMethod,
	}

	switch mi.Kind {
	case "take_from_worktop":
		instr.Kind = process.KindTakeFromWorktop
	case "take_all_from_worktop":
		instr.Kind = process.KindTakeAllFromWorktop
	case "take_non_fungibles_from_worktop":
		instr.Kind = process.KindTakeNonFungiblesFromWorktop
	case "return_to_worktop":
		instr.Kind = process.KindReturnToWorktop
	case "assert_worktop_contains":
		instr.Kind = process.KindAssertWorktopContains
	case "call_function":
		instr.Kind = process.KindCallFunction
	case "call_method":
		instr.Kind = process.KindCallMethod
	case "call_method_with_all_resources":
		instr.Kind = process.KindCallMethodWithAllResources
	default:
		return process.Instruction{}, fmt.Errorf("unknown kind %q", mi.Kind)
	}

	if mi.Resource != "" {
		addr, err := parseAddress(mi.Resource)
		if err != nil {
			return process.Instruction{}, fmt.Errorf("resource: %w", err)
		}
		instr.Resource = addr
	}
	if mi.Package != "" {
		addr, err := parseAddress(mi.Package)
		if err != nil {
			return process.Instruction{}, fmt.Errorf("package: %w", err)
		}
		instr.Package = addr
	}
	if mi.Component != "" {
		addr, err := parseAddress(mi.Component)
		if err != nil {
			return process.Instruction{}, fmt.Errorf("component: %w", err)
		}
		instr.Component = addr
	}
	if mi.Amount != "" {
		amt, ok := new(big.Int).SetString(mi.Amount, 10)
		if !ok {
			return process.Instruction{}, fmt.Errorf("amount: invalid integer %q", mi.Amount)
		}
		instr.Amount = types.NewDecimalFromRaw(amt)
	}
	for _, k := range mi.Keys {
		instr.Keys = append(instr.Keys, types.NewNonFungibleKey([]byte(k)))
	}
	for _, a := range mi.Args {
		b, err := hex.DecodeString(a)
		if err != nil {
			return process.Instruction{}, fmt.Errorf("args: %w", err)
		}
		instr.Args = append(instr.Args, b)
	}
	for _, b := range mi.Buckets {
		instr.Buckets = append(instr.Buckets, types.Bid(b))
	}
	for _, r := range mi.Proofs {
		instr.Proofs = append(instr.Proofs, types.Rid(r))
	}
	return instr, nil
}

func parseHash(s string) (types.Hash, error) {
	if s == "" {
		return types.Hash{}, nil
	}
	b, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil {
		return types.Hash{}, err
	}
	return types.HashFromBytes(b)
}

func parseAddress(s string) (types.Address, error) {
	b, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil {
		return types.Address{}, err
	}
	return types.AddressFromBytes(b)
}

func parseSignerKey(s string) (types.SignerKey, error) {
	b, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil {
		return types.SignerKey{}, err
	}
	var k types.SignerKey
	if len(b) != len(k) {
		return k, fmt.Errorf("signer key must be %d bytes, got %d", len(k), len(b))
	}
	copy(k[:], b)
	return k, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
