package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/eden-finance/vest-sub001/x/vest/types"
)

// MsgServer defines the vest MsgServer. Every handler runs its keeper call
// against a cached context: state and events land only when the whole
// operation succeeds, so a failure midway leaves nothing behind.
type MsgServer struct {
	keeper *Keeper
}

// NewMsgServerImpl creates a new MsgServer instance
func NewMsgServerImpl(keeper *Keeper) *MsgServer {
	return &MsgServer{keeper: keeper}
}

var _ types.MsgServer = (*MsgServer)(nil)

// runAtomic executes fn against a cached context and commits only on success.
// Events emitted inside the cache are copied to the caller's event manager
// after the write, so failed operations emit nothing.
func (m *MsgServer) runAtomic(ctx sdk.Context, fn func(sdk.Context) error) error {
	cacheCtx, write := ctx.CacheContext()
	if err := fn(cacheCtx); err != nil {
		return err
	}
	write()
	ctx.EventManager().EmitEvents(cacheCtx.EventManager().Events())
	return nil
}

// Invest handles MsgInvest
func (m *MsgServer) Invest(ctx context.Context, msg *types.MsgInvest) (*types.MsgInvestResponse, error) {
	amount, ok := math.NewIntFromString(msg.Amount)
	if !ok {
		return nil, types.ErrInvalidAmount
	}

	if err := m.keeper.guard.Acquire(msg.PoolID); err != nil {
		return nil, err
	}
	defer m.keeper.guard.Release(msg.PoolID)

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	var investment *types.Investment
	var netShares math.Int
	err := m.runAtomic(sdkCtx, func(cacheCtx sdk.Context) error {
		var err error
		investment, netShares, err = m.keeper.Invest(cacheCtx, msg.PoolID, msg.Investor, amount, msg.Title)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &types.MsgInvestResponse{
		InvestmentID:   investment.InvestmentID,
		ReceiptID:      investment.ReceiptID,
		NetShares:      netShares.String(),
		ExpectedReturn: investment.ExpectedReturn.String(),
		MaturityTime:   investment.MaturityTime,
	}, nil
}

// InvestWithSwap handles MsgInvestWithSwap
func (m *MsgServer) InvestWithSwap(ctx context.Context, msg *types.MsgInvestWithSwap) (*types.MsgInvestWithSwapResponse, error) {
	amountIn, ok := math.NewIntFromString(msg.AmountIn)
	if !ok {
		return nil, types.ErrInvalidAmount
	}
	minAmountOut, ok := math.NewIntFromString(msg.MinAmountOut)
	if !ok {
		return nil, types.ErrInvalidAmount
	}

	if err := m.keeper.guard.Acquire(msg.PoolID); err != nil {
		return nil, err
	}
	defer m.keeper.guard.Release(msg.PoolID)

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	var investment *types.Investment
	var netShares math.Int
	err := m.runAtomic(sdkCtx, func(cacheCtx sdk.Context) error {
		var err error
		investment, netShares, err = m.keeper.InvestWithSwap(cacheCtx, msg.PoolID, msg.Investor, msg.TokenIn, amountIn, minAmountOut, msg.Deadline, msg.Title)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &types.MsgInvestWithSwapResponse{
		InvestmentID: investment.InvestmentID,
		ReceiptID:    investment.ReceiptID,
		AmountOut:    investment.Amount.String(),
		NetShares:    netShares.String(),
		MaturityTime: investment.MaturityTime,
	}, nil
}

// Withdraw handles MsgWithdraw
func (m *MsgServer) Withdraw(ctx context.Context, msg *types.MsgWithdraw) (*types.MsgWithdrawResponse, error) {
	shareAmount, ok := math.NewIntFromString(msg.ShareAmount)
	if !ok {
		return nil, types.ErrInvalidAmount
	}

	if err := m.keeper.guard.Acquire(msg.PoolID); err != nil {
		return nil, err
	}
	defer m.keeper.guard.Release(msg.PoolID)

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	var payout, sharesBurned math.Int
	err := m.runAtomic(sdkCtx, func(cacheCtx sdk.Context) error {
		var err error
		payout, sharesBurned, err = m.keeper.Withdraw(cacheCtx, msg.PoolID, msg.Investor, msg.ReceiptID, shareAmount)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &types.MsgWithdrawResponse{
		Payout:       payout.String(),
		SharesBurned: sharesBurned.String(),
	}, nil
}

// CreatePool handles MsgCreatePool
func (m *MsgServer) CreatePool(ctx context.Context, msg *types.MsgCreatePool) (*types.MsgCreatePoolResponse, error) {
	config, err := msg.Config.Parse()
	if err != nil {
		return nil, err
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	var pool *types.Pool
	err = m.runAtomic(sdkCtx, func(cacheCtx sdk.Context) error {
		var err error
		pool, err = m.keeper.CreatePool(cacheCtx, msg.Authority, CreatePoolParams{
			Name:      msg.Name,
			Admin:     msg.Admin,
			Custodian: msg.Custodian,
			Reporter:  msg.Reporter,
			Config:    config,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return &types.MsgCreatePoolResponse{
		PoolID:     pool.PoolID,
		ShareDenom: pool.ShareDenom,
	}, nil
}

// UpdatePoolConfig handles MsgUpdatePoolConfig
func (m *MsgServer) UpdatePoolConfig(ctx context.Context, msg *types.MsgUpdatePoolConfig) (*types.MsgUpdatePoolConfigResponse, error) {
	config, err := msg.Config.Parse()
	if err != nil {
		return nil, err
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	err = m.runAtomic(sdkCtx, func(cacheCtx sdk.Context) error {
		return m.keeper.UpdatePoolConfig(cacheCtx, msg.Creator, msg.PoolID, config)
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgUpdatePoolConfigResponse{}, nil
}

// SetPoolActive handles MsgSetPoolActive
func (m *MsgServer) SetPoolActive(ctx context.Context, msg *types.MsgSetPoolActive) (*types.MsgSetPoolActiveResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	err := m.runAtomic(sdkCtx, func(cacheCtx sdk.Context) error {
		return m.keeper.SetPoolActive(cacheCtx, msg.Authority, msg.PoolID, msg.Active)
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgSetPoolActiveResponse{}, nil
}

// SetActualReturns handles MsgSetActualReturns
func (m *MsgServer) SetActualReturns(ctx context.Context, msg *types.MsgSetActualReturns) (*types.MsgSetActualReturnsResponse, error) {
	returns := make([]math.Int, len(msg.ActualReturns))
	for i, ret := range msg.ActualReturns {
		parsed, ok := math.NewIntFromString(ret)
		if !ok {
			return nil, types.ErrInvalidAmount
		}
		returns[i] = parsed
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	var applied int
	err := m.runAtomic(sdkCtx, func(cacheCtx sdk.Context) error {
		var err error
		applied, err = m.keeper.SetActualReturns(cacheCtx, msg.Reporter, msg.PoolID, msg.InvestmentIDs, returns)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &types.MsgSetActualReturnsResponse{Applied: int64(applied)}, nil
}

// SetGlobalTaxRate handles MsgSetGlobalTaxRate
func (m *MsgServer) SetGlobalTaxRate(ctx context.Context, msg *types.MsgSetGlobalTaxRate) (*types.MsgSetGlobalTaxRateResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	err := m.runAtomic(sdkCtx, func(cacheCtx sdk.Context) error {
		return m.keeper.SetGlobalTaxRate(cacheCtx, msg.Authority, msg.TaxRateBps)
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgSetGlobalTaxRateResponse{}, nil
}

// SetProtocolTreasury handles MsgSetProtocolTreasury
func (m *MsgServer) SetProtocolTreasury(ctx context.Context, msg *types.MsgSetProtocolTreasury) (*types.MsgSetProtocolTreasuryResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	err := m.runAtomic(sdkCtx, func(cacheCtx sdk.Context) error {
		return m.keeper.SetProtocolTreasury(cacheCtx, msg.Authority, msg.Address)
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgSetProtocolTreasuryResponse{}, nil
}

// EmergencyWithdraw handles MsgEmergencyWithdraw
func (m *MsgServer) EmergencyWithdraw(ctx context.Context, msg *types.MsgEmergencyWithdraw) (*types.MsgEmergencyWithdrawResponse, error) {
	amount, ok := math.NewIntFromString(msg.Amount)
	if !ok {
		return nil, types.ErrInvalidAmount
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	err := m.runAtomic(sdkCtx, func(cacheCtx sdk.Context) error {
		return m.keeper.EmergencyWithdraw(cacheCtx, msg.Authority, msg.Denom, amount, msg.Reason)
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgEmergencyWithdrawResponse{}, nil
}
