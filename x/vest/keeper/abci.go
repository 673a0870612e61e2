package keeper

import (
	"encoding/binary"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/eden-finance/vest-sub001/x/vest/types"
)

// EndBlocker is called at the end of each block to surface newly reached
// maturities. It never flips the matured flag, which stays with the return
// reporter; it only announces that the lock has elapsed so off-chain
// reporting can pick the investment up.
func (k *Keeper) EndBlocker(ctx sdk.Context) error {
	blockHeight := ctx.BlockHeight()
	start := time.Now()

	if k.maturity.Len() == 0 {
		k.rebuildMaturityIndex(ctx)
	}

	scanStart := time.Now()
	announced := k.announceReachedMaturities(ctx)
	scanDuration := time.Since(scanStart)

	totalDuration := time.Since(start)

	k.logger.Debug("Vest EndBlocker completed",
		"block", blockHeight,
		"total_ms", totalDuration.Milliseconds(),
		"maturity_scan_ms", scanDuration.Milliseconds(),
		"maturities_announced", announced,
		"queued", k.maturity.Len(),
	)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vest_endblock",
			sdk.NewAttribute("block_height", math.NewInt(blockHeight).String()),
			sdk.NewAttribute("duration_ms", math.NewInt(totalDuration.Milliseconds()).String()),
			sdk.NewAttribute("maturities_announced", intAttr(announced)),
		),
	)

	return nil
}

// announceReachedMaturities emits one event per investment whose maturity
// time fell inside (lastScan, blockTime]. Each maturity is announced exactly
// once; queue entries stay until withdrawal so pending-maturity queries keep
// seeing them.
func (k *Keeper) announceReachedMaturities(ctx sdk.Context) int {
	now := ctx.BlockTime().Unix()
	lastScan := k.getLastMaturityScan(ctx)
	if now <= lastScan {
		return 0
	}

	announced := 0
	for _, investmentID := range k.maturity.DueBy(now) {
		investment := k.GetInvestment(ctx, investmentID)
		if investment == nil || investment.MaturityTime <= lastScan {
			continue
		}
		if investment.IsWithdrawn || investment.IsMatured {
			continue
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				"maturity_reached",
				sdk.NewAttribute("pool_id", investment.PoolID),
				sdk.NewAttribute("investment_id", investment.InvestmentID),
				sdk.NewAttribute("investor", investment.Investor),
				sdk.NewAttribute("amount", investment.Amount.String()),
				sdk.NewAttribute("expected_return", investment.ExpectedReturn.String()),
				sdk.NewAttribute("maturity_time", math.NewInt(investment.MaturityTime).String()),
			),
		)
		announced++
	}

	k.setLastMaturityScan(ctx, now)
	return announced
}

func (k *Keeper) getLastMaturityScan(ctx sdk.Context) int64 {
	store := k.GetStore(ctx)
	bz := store.Get(LastMaturityScanKey)
	if bz == nil {
		return 0
	}
	return int64(binary.BigEndian.Uint64(bz))
}

func (k *Keeper) setLastMaturityScan(ctx sdk.Context, ts int64) {
	store := k.GetStore(ctx)
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, uint64(ts))
	store.Set(LastMaturityScanKey, bz)
}

// PendingMaturities returns investments whose maturity time has passed but
// which have not been reported matured yet. The reporter polls this.
func (k *Keeper) PendingMaturities(ctx sdk.Context, cutoff int64, limit int) []*types.Investment {
	var pending []*types.Investment
	for _, investmentID := range k.maturity.DueBy(cutoff) {
		investment := k.GetInvestment(ctx, investmentID)
		if investment == nil || investment.IsWithdrawn || investment.IsMatured {
			continue
		}
		pending = append(pending, investment)
		if limit > 0 && len(pending) >= limit {
			break
		}
	}
	return pending
}
