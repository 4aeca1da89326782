package resource

import "errors"

// Error taxonomy for resource-kind failures, expressed as Go sentinels so
// callers can use errors.Is rather than match on an enum.
var (
	ErrTypeAndSupplyNotMatching = errors.New("resource: type and supply do not match")
	ErrOperationNotAllowed      = errors.New("resource: operation not allowed by flags")
	ErrPermissionNotAllowed     = errors.New("resource: badge lacks required permission")
	ErrInvalidDivisibility      = errors.New("resource: divisibility must be 0..=18")
	ErrInvalidAmount            = errors.New("resource: amount is negative or has invalid granularity")
	ErrInvalidResourceFlags     = errors.New("resource: unrecognized flag bits")
	ErrInvalidResourcePermission = errors.New("resource: unrecognized permission bits")
	ErrInvalidFlagUpdate        = errors.New("resource: flag update not covered by mutable_flags")
	ErrFreelyBurnableWithoutBurnable = errors.New("resource: FREELY_BURNABLE set without BURNABLE")

	ErrResourceMismatch       = errors.New("resource: container resource address mismatch")
	ErrInsufficientBalance    = errors.New("resource: insufficient balance")
	ErrNonFungibleKeyMissing  = errors.New("resource: non-fungible key not present")
	ErrNonFungibleKeyExists   = errors.New("resource: non-fungible key already present")
	ErrWrongContainerKind     = errors.New("resource: fungible/non-fungible kind mismatch")
)
