package keeper

import (
	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/eden-finance/vest-sub001/x/vest/types"
)

// Invest handles a settlement-asset deposit into a pool: funds move to pool
// custody, shares are minted, the tax cut goes to the fee sink, and a receipt
// is issued. Runs as one unit; the caller supplies a cached context so any
// failure discards every step.
func (k *Keeper) Invest(ctx sdk.Context, poolID, investor string, amount math.Int, title string) (*types.Investment, math.Int, error) {
	pool, err := k.poolOpenForDeposits(ctx, poolID)
	if err != nil {
		return nil, math.ZeroInt(), err
	}
	if err := pool.CheckDepositBounds(amount); err != nil {
		return nil, math.ZeroInt(), err
	}

	params := k.GetParams(ctx)
	if err := k.custodyKeeper.SendToCustody(ctx, poolID, investor, sdk.NewCoin(params.DefaultDenom, amount)); err != nil {
		return nil, math.ZeroInt(), err
	}

	return k.investCore(ctx, pool, investor, amount, title)
}

// poolOpenForDeposits resolves a pool and checks it can take new deposits
func (k *Keeper) poolOpenForDeposits(ctx sdk.Context, poolID string) (*types.Pool, error) {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return nil, errors.Wrapf(types.ErrInvalidPool, "pool %s", poolID)
	}
	if !pool.IsActive {
		return nil, errors.Wrapf(types.ErrPoolNotActive, "pool %s", poolID)
	}
	if !pool.Config.AcceptingDeposits {
		return nil, errors.Wrapf(types.ErrDepositsPaused, "pool %s", poolID)
	}
	return pool, nil
}

// investCore runs the deposit bookkeeping once the settlement asset is in
// custody: share mint, fee extraction, receipt, investment record, maturity
// queue entry. The fee is taken from the minted shares inside this same
// sequence, so it can never be extracted twice for one deposit.
func (k *Keeper) investCore(ctx sdk.Context, pool *types.Pool, investor string, amount math.Int, title string) (*types.Investment, math.Int, error) {
	totalSupply := k.shareKeeper.GetTotalSupply(ctx, pool.PoolID)
	shares := pool.SharesForDeposit(amount, totalSupply)
	if shares.IsZero() {
		return nil, math.ZeroInt(), errors.Wrapf(types.ErrInvalidAmount, "deposit %s yields zero shares", amount)
	}

	if err := k.shareKeeper.Mint(ctx, pool.PoolID, pool.PoolID, investor, shares); err != nil {
		return nil, math.ZeroInt(), err
	}

	params := k.GetParams(ctx)
	taxRate := pool.Config.EffectiveTaxRate(params.GlobalTaxRateBps)
	fee := shares.Mul(math.NewInt(taxRate)).Quo(math.NewInt(types.BpsDenominator))
	if fee.IsPositive() {
		if err := k.feeKeeper.CollectFee(ctx, pool.PoolID, pool.PoolID, pool.ShareDenom, investor, fee); err != nil {
			return nil, math.ZeroInt(), err
		}
	}
	netShares := shares.Sub(fee)

	investmentID := k.nextInvestmentID(ctx)
	expectedReturn := pool.Config.ExpectedReturn(amount)
	now := ctx.BlockTime().Unix()

	receiptID, err := k.receiptKeeper.Issue(ctx, pool.PoolID, investmentID, investor, amount, now+pool.Config.LockDuration)
	if err != nil {
		return nil, math.ZeroInt(), err
	}

	investment := types.NewInvestment(investmentID, pool.PoolID, investor, amount, title, expectedReturn, now, pool.Config.LockDuration)
	investment.ReceiptID = receiptID
	k.SetInvestment(ctx, investment)
	k.setReceiptIndex(ctx, receiptID, investmentID)

	pool.TotalDeposited = pool.TotalDeposited.Add(amount)
	pool.UpdatedAt = now
	k.SetPool(ctx, pool)

	// Queue insert stays after every fallible step: the in-memory index is
	// not covered by the cache rollback
	k.enqueueMaturity(ctx, investment)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"investment_created",
			sdk.NewAttribute("pool_id", pool.PoolID),
			sdk.NewAttribute("investment_id", investmentID),
			sdk.NewAttribute("receipt_id", receiptID),
			sdk.NewAttribute("investor", investor),
			sdk.NewAttribute("amount", amount.String()),
			sdk.NewAttribute("shares_minted", shares.String()),
			sdk.NewAttribute("fee_shares", fee.String()),
			sdk.NewAttribute("net_shares", netShares.String()),
			sdk.NewAttribute("expected_return", expectedReturn.String()),
			sdk.NewAttribute("maturity_time", math.NewInt(investment.MaturityTime).String()),
		),
	)

	k.logger.Info("Investment created",
		"pool_id", pool.PoolID,
		"investment_id", investmentID,
		"investor", investor,
		"amount", amount.String(),
		"net_shares", netShares.String(),
		"maturity_time", investment.MaturityTime,
	)

	return investment, netShares, nil
}
