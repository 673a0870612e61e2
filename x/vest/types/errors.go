package types

import (
	"cosmossdk.io/errors"
)

// x/vest module errors. Every operation failure maps to one of these kinds;
// callers never see a generic failure.
var (
	ErrInvalidPool           = errors.Register(ModuleName, 1, "pool not registered")
	ErrPoolNotActive         = errors.Register(ModuleName, 2, "pool is not active")
	ErrDepositsPaused        = errors.Register(ModuleName, 3, "pool is not accepting deposits")
	ErrBelowMinimum          = errors.Register(ModuleName, 4, "amount below pool minimum")
	ErrExceedsMaximum        = errors.Register(ModuleName, 5, "amount exceeds pool maximum")
	ErrExceedsCap            = errors.Register(ModuleName, 6, "deposit exceeds utilization cap")
	ErrDeadlineExpired       = errors.Register(ModuleName, 7, "deadline expired")
	ErrInsufficientLiquidity = errors.Register(ModuleName, 8, "insufficient swap liquidity")
	ErrSwapInconsistency     = errors.Register(ModuleName, 9, "swap output does not match balance change")
	ErrNotOwner              = errors.Register(ModuleName, 10, "caller does not own this investment")
	ErrAlreadyWithdrawn      = errors.Register(ModuleName, 11, "investment already withdrawn")
	ErrNotMatured            = errors.Register(ModuleName, 12, "investment not yet matured")
	ErrInsufficientShares    = errors.Register(ModuleName, 13, "insufficient shares for withdrawal")
	ErrUnauthorized          = errors.Register(ModuleName, 14, "unauthorized")
	ErrReentrantCall         = errors.Register(ModuleName, 15, "reentrant call rejected")
	ErrInvalidAmount         = errors.Register(ModuleName, 16, "invalid amount")
	ErrInvalidAddress        = errors.Register(ModuleName, 17, "invalid address")
	ErrInvalidRate           = errors.Register(ModuleName, 18, "invalid rate")
	ErrInvalidLockDuration   = errors.Register(ModuleName, 19, "lock duration out of bounds")
	ErrInvestmentNotFound    = errors.Register(ModuleName, 20, "investment not found")
	ErrPoolExists            = errors.Register(ModuleName, 21, "pool already exists")
)
