package keeper

import (
	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/eden-finance/vest-sub001/x/vest/types"
)

// InvestWithSwap converts tokenIn to the settlement asset through the swap
// router, verifies the router delivered exactly what it reported, and then
// runs the regular deposit flow on the swapped amount. The router is not
// trusted: a mismatch between its reported output and the actual balance
// change fails the whole operation, leaving no shares, receipt, or custody
// movement behind.
func (k *Keeper) InvestWithSwap(ctx sdk.Context, poolID, investor, tokenIn string, amountIn, minAmountOut math.Int, deadline int64, title string) (*types.Investment, math.Int, error) {
	zero := math.ZeroInt()

	pool, err := k.poolOpenForDeposits(ctx, poolID)
	if err != nil {
		return nil, zero, err
	}
	if deadline < ctx.BlockTime().Unix() {
		return nil, zero, errors.Wrapf(types.ErrDeadlineExpired, "deadline %d, block time %d", deadline, ctx.BlockTime().Unix())
	}
	if amountIn.IsNil() || !amountIn.IsPositive() {
		return nil, zero, errors.Wrapf(types.ErrInvalidAmount, "swap input %s", amountIn)
	}
	if minAmountOut.IsNil() || !minAmountOut.IsPositive() {
		return nil, zero, errors.Wrapf(types.ErrInvalidAmount, "minimum output %s", minAmountOut)
	}

	params := k.GetParams(ctx)
	settlement := params.DefaultDenom

	// Quote is best-effort: zero means the router cannot serve the swap
	quote := k.swapRouter.Quote(ctx, tokenIn, settlement, amountIn)
	if quote.LT(minAmountOut) {
		return nil, zero, errors.Wrapf(types.ErrInsufficientLiquidity, "quoted %s, minimum %s", quote, minAmountOut)
	}

	if err := k.custodyKeeper.SendToModule(ctx, investor, sdk.NewCoin(tokenIn, amountIn)); err != nil {
		return nil, zero, err
	}

	before := k.custodyKeeper.ModuleBalance(ctx, settlement)
	reported, err := k.swapRouter.Swap(ctx, tokenIn, settlement, amountIn, minAmountOut, deadline)
	if err != nil {
		return nil, zero, err
	}
	after := k.custodyKeeper.ModuleBalance(ctx, settlement)

	// The router's report is only trusted if the balance moved by exactly
	// that amount
	delta := after.Sub(before)
	if !delta.Equal(reported) {
		k.logger.Error("Swap output mismatch",
			"pool_id", poolID,
			"token_in", tokenIn,
			"reported", reported.String(),
			"delivered", delta.String(),
		)
		return nil, zero, errors.Wrapf(types.ErrSwapInconsistency, "router reported %s but delivered %s", reported, delta)
	}
	if reported.LT(minAmountOut) {
		return nil, zero, errors.Wrapf(types.ErrInsufficientLiquidity, "swapped %s, minimum %s", reported, minAmountOut)
	}

	if err := pool.CheckDepositBounds(reported); err != nil {
		return nil, zero, err
	}
	if err := k.custodyKeeper.ModuleToCustody(ctx, poolID, sdk.NewCoin(settlement, reported)); err != nil {
		return nil, zero, err
	}

	investment, netShares, err := k.investCore(ctx, pool, investor, reported, title)
	if err != nil {
		return nil, zero, err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"swap_executed",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("investor", investor),
			sdk.NewAttribute("token_in", tokenIn),
			sdk.NewAttribute("amount_in", amountIn.String()),
			sdk.NewAttribute("amount_out", reported.String()),
			sdk.NewAttribute("investment_id", investment.InvestmentID),
		),
	)

	return investment, netShares, nil
}
