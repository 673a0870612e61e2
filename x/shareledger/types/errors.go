package types

import (
	"cosmossdk.io/errors"
)

// Module error codes
var (
	ErrLedgerNotFound      = errors.Register("shareledger", 1, "share ledger not found")
	ErrLedgerExists        = errors.Register("shareledger", 2, "share ledger already exists for pool")
	ErrUnauthorized        = errors.Register("shareledger", 3, "caller is not the owning pool")
	ErrInvalidAmount       = errors.Register("shareledger", 4, "amount must be positive")
	ErrInsufficientBalance = errors.Register("shareledger", 5, "insufficient share balance")
	ErrInvalidOwner        = errors.Register("shareledger", 6, "invalid ledger owner")
	ErrInvalidAddress      = errors.Register("shareledger", 7, "invalid address")
	ErrSupplyMismatch      = errors.Register("shareledger", 8, "total supply does not match sum of balances")
)
