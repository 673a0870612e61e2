package types

import (
	"cosmossdk.io/errors"
)

// Module error codes
var (
	ErrReceiptNotFound   = errors.Register("receipt", 1, "receipt not found")
	ErrNonTransferable   = errors.Register("receipt", 2, "receipts are non-transferable")
	ErrReceiptExists     = errors.Register("receipt", 3, "receipt already issued for investment")
	ErrInvalidInvestor   = errors.Register("receipt", 4, "invalid investor address")
	ErrInvalidInvestment = errors.Register("receipt", 5, "invalid investment reference")
	ErrNotOwner          = errors.Register("receipt", 6, "caller does not own receipt")
)
