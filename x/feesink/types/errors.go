package types

import (
	"cosmossdk.io/errors"
)

// x/feesink module errors
var (
	ErrNothingToWithdraw = errors.Register(ModuleName, 1, "nothing to withdraw")
	ErrTreasuryNotSet    = errors.Register(ModuleName, 2, "protocol treasury not configured")
	ErrUnauthorized      = errors.Register(ModuleName, 3, "unauthorized")
	ErrInvalidAmount     = errors.Register(ModuleName, 4, "invalid amount")
	ErrInvalidAddress    = errors.Register(ModuleName, 5, "invalid address")
	ErrUnknownPool       = errors.Register(ModuleName, 6, "unknown pool")
)
