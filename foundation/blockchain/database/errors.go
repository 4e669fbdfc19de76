package database

import "errors"

// Set of errors the ledger engine reports. Callers are expected to check
// these with errors.Is since they are usually wrapped with more context.
var (
	ErrBadSignature       = errors.New("bad signature")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrExpired            = errors.New("contract expired")
	ErrInvalidChain       = errors.New("invalid chain")
	ErrInvalidTransaction = errors.New("invalid transaction")
)

// ErrPersistence is returned when a change was committed in memory but the
// chain could not be written to storage. The next change writes the whole
// chain again.
var ErrPersistence = errors.New("persistence failure")
