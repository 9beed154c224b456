package contract

import "errors"

// The call-level failure taxonomy. Every error aborts the whole call; the
// pending overlay guarantees no partial write survives. Lower layers
// contribute their own sentinels: catalog.ErrUnknownType and
// catalog.ErrEntryOutOfRange, ledger.ErrTokenNotFound,
// rent.ErrInsufficientDeposit, tokenid.ErrCorruptCounter and
// tokenid.ErrCounterOverflow.
var (
	ErrAlreadyInitialized = errors.New("contract is already initialized")
	ErrNotInitialized     = errors.New("contract is not initialized")
	ErrUnauthorized       = errors.New("caller is not the contract owner")
	ErrNotTokenOwner      = errors.New("caller is not the token owner")
	ErrCooldownActive     = errors.New("evolution not yet eligible")
	ErrMaxLevelReached    = errors.New("maximum evolution level reached")
)
