package api

import (
	"github.com/eden-finance/vest-sub001/api/types"
)

// Re-export types for convenience
type (
	Pool                    = types.Pool
	PoolStats               = types.PoolStats
	PoolFees                = types.PoolFees
	Investment              = types.Investment
	Receipt                 = types.Receipt
	InvestRequest           = types.InvestRequest
	InvestResponse          = types.InvestResponse
	InvestWithSwapRequest   = types.InvestWithSwapRequest
	WithdrawRequest         = types.WithdrawRequest
	WithdrawResponse        = types.WithdrawResponse
	ListInvestmentsRequest  = types.ListInvestmentsRequest
	ListInvestmentsResponse = types.ListInvestmentsResponse
	WithdrawableBalance     = types.WithdrawableBalance
	TreasuryInfo            = types.TreasuryInfo
	FeeEvent                = types.FeeEvent
	PoolService             = types.PoolService
	InvestmentService       = types.InvestmentService
	TreasuryService         = types.TreasuryService
)

// nowMillis returns current timestamp in milliseconds
func nowMillis() int64 {
	return types.NowMillis()
}
