package types

import (
	"cosmossdk.io/math"
)

// Module name and store key
const (
	ModuleName = "receipt"
	StoreKey   = ModuleName
)

// Receipt is the non-transferable position token tied 1:1 to an investment.
// Issue and revoke are the only ownership transitions; there is no transfer.
type Receipt struct {
	ReceiptID    string   `json:"receipt_id"`
	PoolID       string   `json:"pool_id"`
	InvestmentID string   `json:"investment_id"`
	Investor     string   `json:"investor"`
	Amount       math.Int `json:"amount"`
	MaturityTime int64    `json:"maturity_time"`
	IssuedAt     int64    `json:"issued_at"`
}

// NewReceipt creates a receipt record for one investment.
func NewReceipt(receiptID, poolID, investmentID, investor string, amount math.Int, maturityTime, issuedAt int64) *Receipt {
	return &Receipt{
		ReceiptID:    receiptID,
		PoolID:       poolID,
		InvestmentID: investmentID,
		Investor:     investor,
		Amount:       amount,
		MaturityTime: maturityTime,
		IssuedAt:     issuedAt,
	}
}

// Validate checks the receipt record fields.
func (r *Receipt) Validate() error {
	if r.ReceiptID == "" {
		return ErrReceiptNotFound
	}
	if r.Investor == "" {
		return ErrInvalidInvestor
	}
	if r.PoolID == "" || r.InvestmentID == "" {
		return ErrInvalidInvestment
	}
	if r.Amount.IsNil() || !r.Amount.IsPositive() {
		return ErrInvalidInvestment
	}
	return nil
}
