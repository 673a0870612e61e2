package types

import (
	"cosmossdk.io/math"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
)

// Module name and store key
const (
	ModuleName = "feesink"
	StoreKey   = ModuleName
)

// SinkAddress returns the address holding collected fee shares until the
// treasury drains them.
func SinkAddress() string {
	return authtypes.NewModuleAddress(ModuleName).String()
}

// PoolFees attributes collected fee shares to the pool they came from.
type PoolFees struct {
	PoolID         string   `json:"pool_id"`
	LedgerID       string   `json:"ledger_id"`
	Denom          string   `json:"denom"`
	TotalCollected math.Int `json:"total_collected"`
	Collections    int64    `json:"collections"`
	UpdatedAt      int64    `json:"updated_at"`
}

// NewPoolFees creates an empty attribution record for a pool.
func NewPoolFees(poolID, ledgerID, denom string) *PoolFees {
	return &PoolFees{
		PoolID:         poolID,
		LedgerID:       ledgerID,
		Denom:          denom,
		TotalCollected: math.ZeroInt(),
	}
}

// WithdrawableBalance is the treasury-claimable balance for one asset.
type WithdrawableBalance struct {
	Denom    string   `json:"denom"`
	LedgerID string   `json:"ledger_id"`
	Amount   math.Int `json:"amount"`
}

// TreasuryConfig holds the address fee withdrawals drain to.
type TreasuryConfig struct {
	Address   string `json:"address"`
	UpdatedAt int64  `json:"updated_at"`
}

// DefaultTreasuryConfig returns an unset treasury; withdrawals fail until an
// address is configured.
func DefaultTreasuryConfig() TreasuryConfig {
	return TreasuryConfig{}
}

// FeeEvent records one collection or withdrawal for the audit trail.
type FeeEvent struct {
	EventID   string   `json:"event_id"`
	PoolID    string   `json:"pool_id,omitempty"`
	Denom     string   `json:"denom"`
	Amount    math.Int `json:"amount"`
	Kind      string   `json:"kind"` // "collect" or "withdraw"
	Payer     string   `json:"payer,omitempty"`
	Recipient string   `json:"recipient,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

// Fee event kinds
const (
	FeeEventCollect  = "collect"
	FeeEventWithdraw = "withdraw"
)
