package types

import (
	"fmt"
	"strings"

	"cosmossdk.io/math"
)

// Module name and store key
const (
	ModuleName = "shareledger"
	StoreKey   = ModuleName
)

// Ledger is the per-pool fungible share ledger. Every pool owns exactly one
// ledger; only that pool may mint or burn against it.
type Ledger struct {
	LedgerID    string   `json:"ledger_id"`
	PoolID      string   `json:"pool_id"`
	Denom       string   `json:"denom"`
	TotalSupply math.Int `json:"total_supply"`
	CreatedAt   int64    `json:"created_at"`
}

// NewLedger creates a ledger owned by poolID.
func NewLedger(ledgerID, poolID, denom string, createdAt int64) *Ledger {
	return &Ledger{
		LedgerID:    ledgerID,
		PoolID:      poolID,
		Denom:       denom,
		TotalSupply: math.ZeroInt(),
		CreatedAt:   createdAt,
	}
}

// Validate checks the ledger record fields.
func (l *Ledger) Validate() error {
	if l.LedgerID == "" {
		return ErrLedgerNotFound
	}
	if l.PoolID == "" {
		return ErrInvalidOwner
	}
	if strings.TrimSpace(l.Denom) == "" {
		return fmt.Errorf("ledger %s has empty denom", l.LedgerID)
	}
	if l.TotalSupply.IsNil() || l.TotalSupply.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// Balance is a single holder's position in one ledger.
type Balance struct {
	LedgerID string   `json:"ledger_id"`
	Address  string   `json:"address"`
	Amount   math.Int `json:"amount"`
}
