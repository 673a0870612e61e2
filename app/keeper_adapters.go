package app

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	feesinkkeeper "github.com/eden-finance/vest-sub001/x/feesink/keeper"
	receiptkeeper "github.com/eden-finance/vest-sub001/x/receipt/keeper"
	sharekeeper "github.com/eden-finance/vest-sub001/x/shareledger/keeper"
	vestkeeper "github.com/eden-finance/vest-sub001/x/vest/keeper"
	vesttypes "github.com/eden-finance/vest-sub001/x/vest/types"
)

// The vest keeper talks to its collaborators through narrow interfaces. The
// share, receipt, and fee keepers sit behind thin adapters that flatten
// return types; custody is backed by the bank module.

type shareAdapter struct {
	*sharekeeper.Keeper
}

func newShareAdapter(keeper *sharekeeper.Keeper) vestkeeper.ShareKeeper {
	return shareAdapter{Keeper: keeper}
}

func (a shareAdapter) CreateLedger(ctx sdk.Context, ledgerID, poolID, denom string) error {
	_, err := a.Keeper.CreateLedger(ctx, ledgerID, poolID, denom)
	return err
}

type receiptAdapter struct {
	*receiptkeeper.Keeper
}

func newReceiptAdapter(keeper *receiptkeeper.Keeper) vestkeeper.ReceiptKeeper {
	return receiptAdapter{Keeper: keeper}
}

func (a receiptAdapter) Issue(ctx sdk.Context, poolID, investmentID, investor string, amount math.Int, maturityTime int64) (string, error) {
	receipt, err := a.Keeper.Issue(ctx, poolID, investmentID, investor, amount, maturityTime)
	if err != nil {
		return "", err
	}
	return receipt.ReceiptID, nil
}

func (a receiptAdapter) Lookup(ctx sdk.Context, receiptID string) (string, string, string, bool) {
	receipt := a.Keeper.Get(ctx, receiptID)
	if receipt == nil {
		return "", "", "", false
	}
	return receipt.PoolID, receipt.InvestmentID, receipt.Investor, true
}

type feeAdapter struct {
	*feesinkkeeper.Keeper
}

func newFeeAdapter(keeper *feesinkkeeper.Keeper) vestkeeper.FeeKeeper {
	return feeAdapter{Keeper: keeper}
}

func (a feeAdapter) GetTreasuryAddress(ctx sdk.Context) string {
	return a.Keeper.GetTreasury(ctx).Address
}

// BankKeeper defines the bank operations custody needs
type BankKeeper interface {
	SendCoins(ctx context.Context, fromAddr, toAddr sdk.AccAddress, amt sdk.Coins) error
	SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
}

// bankCustody implements custody on top of the bank module. Each pool gets a
// derived holding address; swap proceeds stage in the vest module account
// until they are confirmed and handed to the pool.
type bankCustody struct {
	bank BankKeeper
}

func newBankCustody(bank BankKeeper) vestkeeper.CustodyKeeper {
	return bankCustody{bank: bank}
}

func custodyAddress(poolID string) sdk.AccAddress {
	return authtypes.NewModuleAddress(vesttypes.ModuleName + "/custody/" + poolID)
}

func moduleAddress() sdk.AccAddress {
	return authtypes.NewModuleAddress(vesttypes.ModuleName)
}

func (c bankCustody) SendToCustody(ctx sdk.Context, poolID, from string, amount sdk.Coin) error {
	fromAddr, err := sdk.AccAddressFromBech32(from)
	if err != nil {
		return err
	}
	return c.bank.SendCoins(ctx, fromAddr, custodyAddress(poolID), sdk.NewCoins(amount))
}

func (c bankCustody) ReleaseCustody(ctx sdk.Context, poolID, to string, amount sdk.Coin) error {
	toAddr, err := sdk.AccAddressFromBech32(to)
	if err != nil {
		return err
	}
	return c.bank.SendCoins(ctx, custodyAddress(poolID), toAddr, sdk.NewCoins(amount))
}

func (c bankCustody) CustodyBalance(ctx sdk.Context, poolID, denom string) math.Int {
	return c.bank.GetBalance(ctx, custodyAddress(poolID), denom).Amount
}

func (c bankCustody) SendToModule(ctx sdk.Context, from string, amount sdk.Coin) error {
	fromAddr, err := sdk.AccAddressFromBech32(from)
	if err != nil {
		return err
	}
	return c.bank.SendCoinsFromAccountToModule(ctx, fromAddr, vesttypes.ModuleName, sdk.NewCoins(amount))
}

func (c bankCustody) SendFromModule(ctx sdk.Context, to string, amount sdk.Coin) error {
	toAddr, err := sdk.AccAddressFromBech32(to)
	if err != nil {
		return err
	}
	return c.bank.SendCoinsFromModuleToAccount(ctx, vesttypes.ModuleName, toAddr, sdk.NewCoins(amount))
}

func (c bankCustody) ModuleBalance(ctx sdk.Context, denom string) math.Int {
	return c.bank.GetBalance(ctx, moduleAddress(), denom).Amount
}

func (c bankCustody) ModuleToCustody(ctx sdk.Context, poolID string, amount sdk.Coin) error {
	return c.bank.SendCoinsFromModuleToAccount(ctx, vesttypes.ModuleName, custodyAddress(poolID), sdk.NewCoins(amount))
}

// noSwapRouter rejects swap-and-invest until a DEX integration is wired in.
// A zero quote makes the keeper fail the liquidity gate before any funds move.
type noSwapRouter struct{}

func newNoSwapRouter() vestkeeper.SwapRouter {
	return noSwapRouter{}
}

func (noSwapRouter) Quote(ctx sdk.Context, tokenIn, tokenOut string, amountIn math.Int) math.Int {
	return math.ZeroInt()
}

func (noSwapRouter) Swap(ctx sdk.Context, tokenIn, tokenOut string, amountIn, minAmountOut math.Int, deadline int64) (math.Int, error) {
	return math.ZeroInt(), vesttypes.ErrInsufficientLiquidity
}
