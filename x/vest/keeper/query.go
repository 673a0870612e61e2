package keeper

import (
	"context"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/eden-finance/vest-sub001/x/vest/types"
)

// QueryServer defines the vest QueryServer
type QueryServer struct {
	keeper *Keeper
}

// NewQueryServerImpl creates a new QueryServer instance
func NewQueryServerImpl(keeper *Keeper) *QueryServer {
	return &QueryServer{keeper: keeper}
}

// Pool returns a pool by ID
func (q *QueryServer) Pool(ctx context.Context, poolID string) (*types.Pool, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	pool := q.keeper.GetPool(sdkCtx, poolID)
	if pool == nil {
		return nil, errors.Wrapf(types.ErrInvalidPool, "pool %s", poolID)
	}
	return pool, nil
}

// Pools returns all pools with pagination
func (q *QueryServer) Pools(ctx context.Context, offset, limit uint64) ([]*types.Pool, uint64, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	allPools := q.keeper.GetAllPools(sdkCtx)

	total := uint64(len(allPools))
	if offset >= total {
		return []*types.Pool{}, total, nil
	}

	end := offset + limit
	if end > total || limit == 0 {
		end = total
	}

	return allPools[offset:end], total, nil
}

// PoolStats returns aggregated statistics for one pool
func (q *QueryServer) PoolStats(ctx context.Context, poolID string) (*types.PoolStats, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	stats := q.keeper.GetPoolStats(sdkCtx, poolID)
	if stats == nil {
		return nil, errors.Wrapf(types.ErrInvalidPool, "pool %s", poolID)
	}
	return stats, nil
}

// Investment returns an investment by ID
func (q *QueryServer) Investment(ctx context.Context, investmentID string) (*types.Investment, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	investment := q.keeper.GetInvestment(sdkCtx, investmentID)
	if investment == nil {
		return nil, errors.Wrapf(types.ErrInvestmentNotFound, "investment %s", investmentID)
	}
	return investment, nil
}

// InvestmentByReceipt resolves an investment from its receipt
func (q *QueryServer) InvestmentByReceipt(ctx context.Context, receiptID string) (*types.Investment, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	investment := q.keeper.GetInvestmentByReceipt(sdkCtx, receiptID)
	if investment == nil {
		return nil, errors.Wrapf(types.ErrInvestmentNotFound, "receipt %s", receiptID)
	}
	return investment, nil
}

// InvestorPositions returns all investments for one investor, with the total
// still-invested principal
func (q *QueryServer) InvestorPositions(ctx context.Context, investor string) ([]*types.Investment, math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	investments := q.keeper.GetInvestmentsByInvestor(sdkCtx, investor)

	outstanding := math.ZeroInt()
	for _, investment := range investments {
		if !investment.IsWithdrawn {
			outstanding = outstanding.Add(investment.Amount)
		}
	}
	return investments, outstanding, nil
}

// PoolInvestments returns all investments in a pool with pagination
func (q *QueryServer) PoolInvestments(ctx context.Context, poolID string, offset, limit uint64) ([]*types.Investment, uint64, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	allInvestments := q.keeper.GetInvestmentsByPool(sdkCtx, poolID)

	total := uint64(len(allInvestments))
	if offset >= total {
		return []*types.Investment{}, total, nil
	}

	end := offset + limit
	if end > total || limit == 0 {
		end = total
	}

	return allInvestments[offset:end], total, nil
}

// PendingMaturities returns investments past their maturity time that still
// wait for a return report
func (q *QueryServer) PendingMaturities(ctx context.Context, limit int) ([]*types.Investment, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return q.keeper.PendingMaturities(sdkCtx, sdkCtx.BlockTime().Unix(), limit), nil
}

// Params returns the protocol params
func (q *QueryServer) Params(ctx context.Context) (types.Params, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return q.keeper.GetParams(sdkCtx), nil
}
