package keeper

import (
	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/eden-finance/vest-sub001/x/vest/types"
)

// Withdraw pays out a matured investment: burns the proportional shares,
// revokes the receipt, and releases principal plus return from custody. The
// payout uses the reported actual return, falling back to the projected
// return if reporting never ran. Returns the payout and the shares burned.
func (k *Keeper) Withdraw(ctx sdk.Context, poolID, investor, receiptID string, shareAmount math.Int) (math.Int, math.Int, error) {
	zero := math.ZeroInt()

	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return zero, zero, errors.Wrapf(types.ErrInvalidPool, "pool %s", poolID)
	}

	investment := k.GetInvestmentByReceipt(ctx, receiptID)
	if investment == nil {
		return zero, zero, errors.Wrapf(types.ErrInvestmentNotFound, "receipt %s", receiptID)
	}
	if investment.IsWithdrawn {
		return zero, zero, errors.Wrapf(types.ErrAlreadyWithdrawn, "investment %s", investment.InvestmentID)
	}
	if investment.PoolID != poolID {
		return zero, zero, errors.Wrapf(types.ErrInvalidPool, "receipt %s belongs to pool %s", receiptID, investment.PoolID)
	}
	if investment.Investor != investor {
		return zero, zero, errors.Wrapf(types.ErrNotOwner, "investment %s belongs to %s", investment.InvestmentID, investment.Investor)
	}

	// The live receipt must still be held by the caller
	_, _, owner, found := k.receiptKeeper.Lookup(ctx, receiptID)
	if !found {
		return zero, zero, errors.Wrapf(types.ErrInvestmentNotFound, "receipt %s revoked", receiptID)
	}
	if owner != investor {
		return zero, zero, errors.Wrapf(types.ErrNotOwner, "receipt %s held by %s", receiptID, owner)
	}

	now := ctx.BlockTime().Unix()
	if now < investment.MaturityTime {
		return zero, zero, errors.Wrapf(types.ErrNotMatured, "matures at %d, block time %d", investment.MaturityTime, now)
	}

	// Shares owed are recomputed with the same proportional formula used at
	// deposit time, against current totals
	totalSupply := k.shareKeeper.GetTotalSupply(ctx, poolID)
	requiredShares := pool.SharesForDeposit(investment.Amount, totalSupply)
	if shareAmount.LT(requiredShares) {
		return zero, zero, errors.Wrapf(types.ErrInsufficientShares, "offered %s, required %s", shareAmount, requiredShares)
	}
	if balance := k.shareKeeper.GetBalance(ctx, poolID, investor); balance.LT(requiredShares) {
		return zero, zero, errors.Wrapf(types.ErrInsufficientShares, "balance %s, required %s", balance, requiredShares)
	}

	if err := k.shareKeeper.Burn(ctx, poolID, poolID, investor, requiredShares); err != nil {
		return zero, zero, err
	}

	payout := investment.Payout()
	params := k.GetParams(ctx)
	if err := k.custodyKeeper.ReleaseCustody(ctx, poolID, investor, sdk.NewCoin(params.DefaultDenom, payout)); err != nil {
		return zero, zero, err
	}

	if err := k.receiptKeeper.Revoke(ctx, receiptID); err != nil {
		return zero, zero, err
	}

	investment.IsWithdrawn = true
	investment.WithdrawnAt = now
	k.SetInvestment(ctx, investment)
	k.dequeueMaturity(ctx, investment)

	pool.TotalWithdrawn = pool.TotalWithdrawn.Add(payout)
	pool.UpdatedAt = now
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"investment_withdrawn",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("investment_id", investment.InvestmentID),
			sdk.NewAttribute("receipt_id", receiptID),
			sdk.NewAttribute("investor", investor),
			sdk.NewAttribute("amount", investment.Amount.String()),
			sdk.NewAttribute("payout", payout.String()),
			sdk.NewAttribute("shares_burned", requiredShares.String()),
			sdk.NewAttribute("return_reported", boolAttr(investment.IsMatured)),
		),
	)

	k.logger.Info("Investment withdrawn",
		"pool_id", poolID,
		"investment_id", investment.InvestmentID,
		"investor", investor,
		"payout", payout.String(),
		"shares_burned", requiredShares.String(),
	)

	return payout, requiredShares, nil
}

func boolAttr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
