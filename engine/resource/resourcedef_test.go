package resource

import (
	"errors"
	"math/big"
	"testing"

	"github.com/synnergy/assetengine/engine/types"
)

func bigFromInt64(v int64) *big.Int { return big.NewInt(v) }

var badge1 = types.Address{3, 1}

func TestNewResourceDefRejectsUnknownFlags(t *testing.T) {
	_, err := New(Kind{}, nil, 1<<60, 0, nil, nil)
	if !errors.Is(err, ErrInvalidResourceFlags) {
		t.Fatalf("want ErrInvalidResourceFlags, got %v", err)
	}
}

func TestNewResourceDefRejectsFreelyBurnableAlone(t *testing.T) {
	_, err := New(Kind{}, nil, uint64(FreelyBurnable), uint64(FreelyBurnable), nil, nil)
	if !errors.Is(err, ErrFreelyBurnableWithoutBurnable) {
		t.Fatalf("want ErrFreelyBurnableWithoutBurnable, got %v", err)
	}
}

func TestNewResourceDefRejectsBadDivisibility(t *testing.T) {
	_, err := New(Kind{Divisibility: 19}, nil, 0, 0, nil, nil)
	if !errors.Is(err, ErrInvalidDivisibility) {
		t.Fatalf("want ErrInvalidDivisibility, got %v", err)
	}
}

func TestNewResourceDefInitialSupplyMismatch(t *testing.T) {
	amt := types.NewDecimalFromInt64(5)
	_, err := New(Kind{NonFungible: true}, nil, 0, 0, nil, &NewSupply{Amount: &amt})
	if !errors.Is(err, ErrTypeAndSupplyNotMatching) {
		t.Fatalf("want ErrTypeAndSupplyNotMatching, got %v", err)
	}
}

func TestFlagUpdateConstraint(t *testing.T) {
	// flags=MINTABLE, mutable_flags=MINTABLE|BURNABLE. Attempting
	// flags=MINTABLE|RESTRICTED_TRANSFER must fail because RESTRICTED_TRANSFER
	// is not in mutable_flags.
	auth := map[types.Address]uint64{badge1: uint64(MayManageResourceFlags)}
	rd, err := New(Kind{}, nil, uint64(Mintable), uint64(Mintable|Burnable), auth, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = rd.UpdateFlags(uint64(Mintable|RestrictedTransfer), &badge1)
	if !errors.Is(err, ErrInvalidFlagUpdate) {
		t.Fatalf("want ErrInvalidFlagUpdate, got %v", err)
	}
}

func TestFlagUpdateAllowedWithinMutableMask(t *testing.T) {
	auth := map[types.Address]uint64{badge1: uint64(MayManageResourceFlags)}
	rd, err := New(Kind{}, nil, uint64(Mintable), uint64(Mintable|Burnable), auth, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := rd.UpdateFlags(uint64(Mintable|Burnable), &badge1); err != nil {
		t.Fatalf("expected update within mutable_flags to succeed, got %v", err)
	}
	if rd.Flags() != uint64(Mintable|Burnable) {
		t.Fatalf("flags not applied")
	}
}

func TestMintRequiresMintableFlag(t *testing.T) {
	rd, err := New(Kind{}, nil, 0, 0, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	amt := types.NewDecimalFromInt64(1)
	if err := rd.Mint(NewSupply{Amount: &amt}, nil); !errors.Is(err, ErrOperationNotAllowed) {
		t.Fatalf("want ErrOperationNotAllowed, got %v", err)
	}
}

func TestMintRequiresAuthority(t *testing.T) {
	rd, err := New(Kind{}, nil, uint64(Mintable), uint64(Mintable), nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	amt := types.NewDecimalFromInt64(1)
	if err := rd.Mint(NewSupply{Amount: &amt}, &badge1); !errors.Is(err, ErrPermissionNotAllowed) {
		t.Fatalf("want ErrPermissionNotAllowed, got %v", err)
	}
}

func TestBurnFreelyBurnableSkipsAuth(t *testing.T) {
	rd, err := New(Kind{}, nil, uint64(Burnable|FreelyBurnable), uint64(Burnable|FreelyBurnable), nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mintAmt := types.NewDecimalFromInt64(10)
	rd2, _ := New(Kind{}, nil, uint64(Mintable|Burnable|FreelyBurnable),
		uint64(Mintable|Burnable|FreelyBurnable), nil, &NewSupply{Amount: &mintAmt})
	_ = rd // keep first rd for flag-shape assertion below
	burnAmt := types.NewDecimalFromInt64(4)
	if err := rd2.Burn(NewSupply{Amount: &burnAmt}, nil); err != nil {
		t.Fatalf("freely-burnable burn without badge should succeed, got %v", err)
	}
	if rd2.TotalSupply().Cmp(types.NewDecimalFromInt64(6)) != 0 {
		t.Fatalf("total supply = %s, want 6", rd2.TotalSupply())
	}
}

func TestAmountGranularityBoundaries(t *testing.T) {
	tests := []struct {
		name         string
		divisibility uint8
		raw          int64
		ok           bool
	}{
		{"divisibility-0-integer", 0, 0, true},
		{"divisibility-0-fraction-rejected", 0, 1, false},
		{"divisibility-18-accepts-any", 18, 1, true},
		{"negative-rejected", 0, -1, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rd, err := New(Kind{Divisibility: tc.divisibility}, nil, 0, 0, nil, nil)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			d := types.Decimal{Raw: bigFromInt64(tc.raw)}
			err = rd.CheckAmount(d)
			if tc.ok && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected error, got nil")
			}
		})
	}
}
