// Package validator transforms a raw transaction into a ValidatedTransaction
// before Process ever touches it: address variant correctness, non-negative
// amounts, and non-empty call names, none of which requires a ledger
// lookup. Grounded on
// original_source/radix-engine/src/model/validated_transaction.rs's
// Transaction->ValidatedTransaction split and its ValidatedInstruction enum
// (the per-kind shape this package's validateOne switches on), and on
// core/ledger.go's pre-commit checks for the surrounding Go idiom (a single
// Validate entry point returning a sentinel-wrapped error).
package validator

import (
	"errors"
	"fmt"

	"github.com/synnergy/assetengine/engine/process"
	"github.com/synnergy/assetengine/engine/types"
)

var (
	ErrEmptyTransaction    = errors.New("validator: transaction has no instructions")
	ErrWrongAddressVariant = errors.New("validator: address variant mismatch")
	ErrNegativeAmount      = errors.New("validator: amount is negative")
	ErrMalformedCall       = errors.New("validator: call instruction missing function/method name")
)

// Transaction is the raw, unvalidated input: a hash, signer set, and
// instruction list, matching spec.md §2's "signed list of instructions plus
// a transaction hash and a set of signer public keys".
type Transaction struct {
	Hash         types.Hash
	Signers      []types.SignerKey
	Instructions []process.Instruction
}

// ValidatedTransaction wraps a Transaction the validator has approved for
// execution. Its zero value is never valid on its own; only Validate produces one.
type ValidatedTransaction struct {
	Hash         types.Hash
	Signers      []types.SignerKey
	Instructions []process.Instruction
}

// Validate runs every static check spec.md §4.7 requires: well-formed
// addresses, non-negative amounts, and well-formed call instructions. No
// SubstateStore/Track access happens here.
func Validate(tx Transaction) (*ValidatedTransaction, error) {
	if len(tx.Instructions) == 0 {
		return nil, ErrEmptyTransaction
	}
	for i, instr := range tx.Instructions {
		if err := validateOne(instr); err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
	}
	return &ValidatedTransaction{
		Hash:         tx.Hash,
		Signers:      append([]types.SignerKey(nil), tx.Signers...),
		Instructions: append([]process.Instruction(nil), tx.Instructions...),
	}, nil
}

func validateOne(instr process.Instruction) error {
	switch instr.Kind {
	case process.KindTakeFromWorktop, process.KindTakeAllFromWorktop,
		process.KindTakeNonFungiblesFromWorktop, process.KindAssertWorktopContains:
		if err := requireVariant(instr.Resource, types.AddressResourceDef); err != nil {
			return err
		}
		if instr.Amount.Raw != nil && instr.Amount.IsNegative() {
			return ErrNegativeAmount
		}

	case process.KindCallFunction:
		if err := requireVariant(instr.Package, types.AddressPackage); err != nil {
			return err
		}
		if instr.Function == "" {
			return ErrMalformedCall
		}

	case process.KindCallMethod:
		if err := requireVariant(instr.Component, types.AddressComponent); err != nil {
			return err
		}
		if instr.Method == "" {
			return ErrMalformedCall
		}

	case process.KindCallMethodWithAllResources:
		if err := requireVariant(instr.Component, types.AddressComponent); err != nil {
			return err
		}
		if instr.DepositMethod == "" {
			return ErrMalformedCall
		}
	}
	return nil
}

func requireVariant(addr types.Address, want types.AddressVariant) error {
	if addr.IsZero() {
		return nil
	}
	if addr.Variant() != want {
		return fmt.Errorf("%w: want %s, got %s", ErrWrongAddressVariant, want, addr.Variant())
	}
	return nil
}
