package keeper

import (
	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/eden-finance/vest-sub001/x/vest/types"
)

// SetActualReturns records realized returns for a batch of investments.
// Reporter or authority only. Entries that do not qualify yet (unknown ID,
// wrong pool, already matured or withdrawn, maturity not reached, negative
// return) are skipped without failing the batch, so a partially stale batch
// still lands the rest.
func (k *Keeper) SetActualReturns(ctx sdk.Context, caller, poolID string, investmentIDs []string, actualReturns []math.Int) (int, error) {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return 0, errors.Wrapf(types.ErrInvalidPool, "pool %s", poolID)
	}
	if caller != pool.Reporter && caller != k.authority {
		return 0, errors.Wrapf(types.ErrUnauthorized, "caller %s is not the pool reporter", caller)
	}
	if len(investmentIDs) != len(actualReturns) {
		return 0, errors.Wrapf(types.ErrInvalidAmount, "%d ids, %d returns", len(investmentIDs), len(actualReturns))
	}

	now := ctx.BlockTime().Unix()
	updated := 0
	for i, investmentID := range investmentIDs {
		actualReturn := actualReturns[i]

		investment := k.GetInvestment(ctx, investmentID)
		if investment == nil || investment.PoolID != poolID {
			continue
		}
		if investment.IsWithdrawn || investment.IsMatured {
			continue
		}
		if now < investment.MaturityTime {
			continue
		}
		if actualReturn.IsNil() || actualReturn.IsNegative() {
			continue
		}

		investment.ActualReturn = actualReturn
		investment.IsMatured = true
		k.SetInvestment(ctx, investment)
		updated++

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				"investment_matured",
				sdk.NewAttribute("pool_id", poolID),
				sdk.NewAttribute("investment_id", investmentID),
				sdk.NewAttribute("investor", investment.Investor),
				sdk.NewAttribute("actual_return", actualReturn.String()),
				sdk.NewAttribute("expected_return", investment.ExpectedReturn.String()),
			),
		)
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"returns_reported",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("reporter", caller),
			sdk.NewAttribute("submitted", intAttr(len(investmentIDs))),
			sdk.NewAttribute("applied", intAttr(updated)),
		),
	)

	k.logger.Info("Actual returns reported",
		"pool_id", poolID,
		"reporter", caller,
		"submitted", len(investmentIDs),
		"applied", updated,
	)

	return updated, nil
}

func intAttr(n int) string {
	return math.NewInt(int64(n)).String()
}
