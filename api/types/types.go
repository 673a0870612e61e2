package types

import (
	"context"
	"time"
)

// Pool represents a pool in the API response
type Pool struct {
	PoolID            string `json:"pool_id"`
	Name              string `json:"name"`
	Admin             string `json:"admin"`
	Custodian         string `json:"custodian"`
	Reporter          string `json:"reporter"`
	ShareDenom        string `json:"share_denom"`
	Active            bool   `json:"active"`
	AcceptingDeposits bool   `json:"accepting_deposits"`
	LockDuration      int64  `json:"lock_duration"`
	MinInvestment     string `json:"min_investment"`
	MaxInvestment     string `json:"max_investment"`
	UtilizationCap    string `json:"utilization_cap"`
	ExpectedRateBps   int64  `json:"expected_rate_bps"`
	TaxRateBps        int64  `json:"tax_rate_bps"`
	TotalDeposited    string `json:"total_deposited"`
	TotalWithdrawn    string `json:"total_withdrawn"`
	TotalShares       string `json:"total_shares"`
	CreatedAt         int64  `json:"created_at"`
	UpdatedAt         int64  `json:"updated_at"`
}

// PoolStats represents aggregated pool statistics in the API response
type PoolStats struct {
	PoolID               string `json:"pool_id"`
	TotalDeposited       string `json:"total_deposited"`
	TotalWithdrawn       string `json:"total_withdrawn"`
	TotalShares          string `json:"total_shares"`
	ActiveInvestments    int64  `json:"active_investments"`
	MaturedInvestments   int64  `json:"matured_investments"`
	WithdrawnInvestments int64  `json:"withdrawn_investments"`
	UpdatedAt            int64  `json:"updated_at"`
}

// PoolFees represents per-pool fee attribution in the API response
type PoolFees struct {
	PoolID         string `json:"pool_id"`
	Denom          string `json:"denom"`
	TotalCollected string `json:"total_collected"`
	Collections    int64  `json:"collections"`
	UpdatedAt      int64  `json:"updated_at"`
}

// Investment represents an investment in the API response
type Investment struct {
	InvestmentID   string `json:"investment_id"`
	PoolID         string `json:"pool_id"`
	Investor       string `json:"investor"`
	Amount         string `json:"amount"`
	Title          string `json:"title,omitempty"`
	DepositTime    int64  `json:"deposit_time"`
	MaturityTime   int64  `json:"maturity_time"`
	ExpectedReturn string `json:"expected_return"`
	ActualReturn   string `json:"actual_return"`
	Status         string `json:"status"`
	ReceiptID      string `json:"receipt_id"`
	WithdrawnAt    int64  `json:"withdrawn_at,omitempty"`
}

// Receipt represents a deposit receipt in the API response
type Receipt struct {
	ReceiptID    string `json:"receipt_id"`
	PoolID       string `json:"pool_id"`
	InvestmentID string `json:"investment_id"`
	Investor     string `json:"investor"`
	Amount       string `json:"amount"`
	MaturityTime int64  `json:"maturity_time"`
	IssuedAt     int64  `json:"issued_at"`
}

// InvestRequest represents the request to invest into a pool
type InvestRequest struct {
	PoolID   string `json:"pool_id"`
	Investor string `json:"investor"`
	Amount   string `json:"amount"`
	Title    string `json:"title,omitempty"`
}

// InvestResponse represents the response after a deposit
type InvestResponse struct {
	Investment *Investment `json:"investment"`
	Shares     string      `json:"shares"`
}

// InvestWithSwapRequest represents the request to swap and invest in one step
type InvestWithSwapRequest struct {
	PoolID       string `json:"pool_id"`
	Investor     string `json:"investor"`
	TokenIn      string `json:"token_in"`
	AmountIn     string `json:"amount_in"`
	MinAmountOut string `json:"min_amount_out"`
	Deadline     int64  `json:"deadline"`
	Title        string `json:"title,omitempty"`
}

// WithdrawRequest represents the request to withdraw a matured investment
type WithdrawRequest struct {
	PoolID      string `json:"pool_id"`
	Investor    string `json:"investor"`
	ReceiptID   string `json:"receipt_id"`
	ShareAmount string `json:"share_amount"`
}

// WithdrawResponse represents the response after a withdrawal
type WithdrawResponse struct {
	Investment   *Investment `json:"investment"`
	Payout       string      `json:"payout"`
	SharesBurned string      `json:"shares_burned"`
}

// ListInvestmentsRequest represents the request to list investments
type ListInvestmentsRequest struct {
	Investor string `json:"investor,omitempty"`
	PoolID   string `json:"pool_id,omitempty"`
	Status   string `json:"status,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// ListInvestmentsResponse represents the response for listing investments
type ListInvestmentsResponse struct {
	Investments []*Investment `json:"investments"`
	Total       int           `json:"total"`
}

// WithdrawableBalance represents accumulated fees withdrawable per asset
type WithdrawableBalance struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// TreasuryInfo represents the treasury configuration and fee balances
type TreasuryInfo struct {
	Address      string                 `json:"address"`
	UpdatedAt    int64                  `json:"updated_at"`
	Withdrawable []*WithdrawableBalance `json:"withdrawable"`
}

// FeeEvent represents one fee collection or withdrawal in the audit trail
type FeeEvent struct {
	EventID   string `json:"event_id"`
	PoolID    string `json:"pool_id,omitempty"`
	Denom     string `json:"denom"`
	Amount    string `json:"amount"`
	Kind      string `json:"kind"`
	Payer     string `json:"payer,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// PoolService defines the interface for pool read operations
type PoolService interface {
	ListPools(ctx context.Context) ([]*Pool, error)
	GetPool(ctx context.Context, poolID string) (*Pool, error)
	GetPoolStats(ctx context.Context, poolID string) (*PoolStats, error)
	GetPoolFees(ctx context.Context, poolID string) (*PoolFees, error)
}

// InvestmentService defines the interface for investment operations
type InvestmentService interface {
	Invest(ctx context.Context, req *InvestRequest) (*InvestResponse, error)
	InvestWithSwap(ctx context.Context, req *InvestWithSwapRequest) (*InvestResponse, error)
	Withdraw(ctx context.Context, req *WithdrawRequest) (*WithdrawResponse, error)
	GetInvestment(ctx context.Context, investmentID string) (*Investment, error)
	ListInvestments(ctx context.Context, req *ListInvestmentsRequest) (*ListInvestmentsResponse, error)
	PendingMaturities(ctx context.Context, limit int) ([]*Investment, error)
	GetReceipt(ctx context.Context, receiptID string) (*Receipt, error)
	ListReceipts(ctx context.Context, owner string) ([]*Receipt, error)
}

// TreasuryService defines the interface for treasury read operations
type TreasuryService interface {
	GetTreasury(ctx context.Context) (*TreasuryInfo, error)
	GetFeeEvents(ctx context.Context, limit int) ([]*FeeEvent, error)
}

// Helper function to get current timestamp in milliseconds
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
