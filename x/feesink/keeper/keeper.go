package keeper

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"cosmossdk.io/errors"
	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/eden-finance/vest-sub001/x/feesink/types"
)

// Store key prefixes
var (
	PoolFeesKeyPrefix     = []byte{0x01}
	WithdrawableKeyPrefix = []byte{0x02}
	TreasuryConfigKey     = []byte{0x03}
	FeeEventKeyPrefix     = []byte{0x04}
	FeeEventCounterKey    = []byte{0x05}
)

// Keeper accumulates protocol fee shares and lets the treasury drain them
type Keeper struct {
	cdc         codec.BinaryCodec
	storeKey    storetypes.StoreKey
	shareKeeper types.ShareKeeper
	authority   string
	logger      log.Logger
}

// NewKeeper creates a new feesink keeper. authority is the only address
// allowed to reconfigure the treasury or trigger withdrawals.
func NewKeeper(cdc codec.BinaryCodec, storeKey storetypes.StoreKey, shareKeeper types.ShareKeeper, authority string, logger log.Logger) *Keeper {
	return &Keeper{
		cdc:         cdc,
		storeKey:    storeKey,
		shareKeeper: shareKeeper,
		authority:   authority,
		logger:      logger.With("module", "x/feesink"),
	}
}

// Logger returns the module logger
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// GetAuthority returns the module's authority address
func (k *Keeper) GetAuthority() string {
	return k.authority
}

// GetStore returns the KVStore
func (k *Keeper) GetStore(ctx sdk.Context) storetypes.KVStore {
	return ctx.KVStore(k.storeKey)
}

func poolFeesKey(poolID string) []byte {
	return append(PoolFeesKeyPrefix, []byte(poolID)...)
}

func withdrawableKey(denom string) []byte {
	return append(WithdrawableKeyPrefix, []byte(denom)...)
}

func feeEventKey(eventID string) []byte {
	return append(FeeEventKeyPrefix, []byte(eventID)...)
}

// nextEventID allocates a sequential fee event identifier
func (k *Keeper) nextEventID(ctx sdk.Context) string {
	store := k.GetStore(ctx)
	bz := store.Get(FeeEventCounterKey)
	var counter uint64
	if bz != nil {
		counter = binary.BigEndian.Uint64(bz)
	}
	counter++

	newBz := make([]byte, 8)
	binary.BigEndian.PutUint64(newBz, counter)
	store.Set(FeeEventCounterKey, newBz)

	return fmt.Sprintf("fee-%d", counter)
}

// ============ Treasury Configuration ============

// SetTreasury updates the address fee withdrawals drain to
func (k *Keeper) SetTreasury(ctx sdk.Context, address string) error {
	if _, err := sdk.AccAddressFromBech32(address); err != nil {
		return errors.Wrapf(types.ErrInvalidAddress, "treasury %s: %v", address, err)
	}

	store := k.GetStore(ctx)
	cfg := types.TreasuryConfig{
		Address:   address,
		UpdatedAt: ctx.BlockTime().Unix(),
	}
	bz, _ := json.Marshal(cfg)
	store.Set(TreasuryConfigKey, bz)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"treasury_updated",
			sdk.NewAttribute("address", address),
		),
	)

	k.logger.Info("Treasury updated", "address", address)
	return nil
}

// GetTreasury returns the current treasury config, or the unset default
func (k *Keeper) GetTreasury(ctx sdk.Context) types.TreasuryConfig {
	store := k.GetStore(ctx)
	bz := store.Get(TreasuryConfigKey)
	if bz == nil {
		return types.DefaultTreasuryConfig()
	}
	var cfg types.TreasuryConfig
	if err := json.Unmarshal(bz, &cfg); err != nil {
		return types.DefaultTreasuryConfig()
	}
	return cfg
}

// ============ Attribution Records ============

// GetPoolFees returns the fee attribution record for a pool, or nil
func (k *Keeper) GetPoolFees(ctx sdk.Context, poolID string) *types.PoolFees {
	store := k.GetStore(ctx)
	bz := store.Get(poolFeesKey(poolID))
	if bz == nil {
		return nil
	}
	var record types.PoolFees
	if err := json.Unmarshal(bz, &record); err != nil {
		return nil
	}
	return &record
}

func (k *Keeper) setPoolFees(ctx sdk.Context, record *types.PoolFees) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(record)
	store.Set(poolFeesKey(record.PoolID), bz)
}

// GetAllPoolFees returns every pool attribution record
func (k *Keeper) GetAllPoolFees(ctx sdk.Context) []*types.PoolFees {
	store := k.GetStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, PoolFeesKeyPrefix)
	defer iterator.Close()

	var records []*types.PoolFees
	for ; iterator.Valid(); iterator.Next() {
		var record types.PoolFees
		if err := json.Unmarshal(iterator.Value(), &record); err != nil {
			continue
		}
		records = append(records, &record)
	}
	return records
}

// GetWithdrawable returns the treasury-claimable balance for one asset
func (k *Keeper) GetWithdrawable(ctx sdk.Context, denom string) *types.WithdrawableBalance {
	store := k.GetStore(ctx)
	bz := store.Get(withdrawableKey(denom))
	if bz == nil {
		return nil
	}
	var balance types.WithdrawableBalance
	if err := json.Unmarshal(bz, &balance); err != nil {
		return nil
	}
	return &balance
}

func (k *Keeper) setWithdrawable(ctx sdk.Context, balance *types.WithdrawableBalance) {
	store := k.GetStore(ctx)
	if balance.Amount.IsZero() {
		store.Delete(withdrawableKey(balance.Denom))
		return
	}
	bz, _ := json.Marshal(balance)
	store.Set(withdrawableKey(balance.Denom), bz)
}

// GetAllWithdrawable returns the claimable balance for every asset
func (k *Keeper) GetAllWithdrawable(ctx sdk.Context) []*types.WithdrawableBalance {
	store := k.GetStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, WithdrawableKeyPrefix)
	defer iterator.Close()

	var balances []*types.WithdrawableBalance
	for ; iterator.Valid(); iterator.Next() {
		var balance types.WithdrawableBalance
		if err := json.Unmarshal(iterator.Value(), &balance); err != nil {
			continue
		}
		balances = append(balances, &balance)
	}
	return balances
}

// ============ Fee Operations ============

// CollectFee pulls amount fee shares from payer into the sink and attributes
// them to poolID. The payer must already hold the shares; collection is a
// transfer, not a mint.
func (k *Keeper) CollectFee(ctx sdk.Context, ledgerID, poolID, denom, payer string, amount math.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return errors.Wrapf(types.ErrInvalidAmount, "fee amount %s", amount)
	}

	if err := k.shareKeeper.Transfer(ctx, ledgerID, payer, types.SinkAddress(), amount); err != nil {
		return err
	}

	record := k.GetPoolFees(ctx, poolID)
	if record == nil {
		record = types.NewPoolFees(poolID, ledgerID, denom)
	}
	record.TotalCollected = record.TotalCollected.Add(amount)
	record.Collections++
	record.UpdatedAt = ctx.BlockTime().Unix()
	k.setPoolFees(ctx, record)

	balance := k.GetWithdrawable(ctx, denom)
	if balance == nil {
		balance = &types.WithdrawableBalance{
			Denom:    denom,
			LedgerID: ledgerID,
			Amount:   math.ZeroInt(),
		}
	}
	balance.Amount = balance.Amount.Add(amount)
	k.setWithdrawable(ctx, balance)

	k.appendEvent(ctx, &types.FeeEvent{
		EventID:   k.nextEventID(ctx),
		PoolID:    poolID,
		Denom:     denom,
		Amount:    amount,
		Kind:      types.FeeEventCollect,
		Payer:     payer,
		Timestamp: ctx.BlockTime().Unix(),
	})

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"fee_collected",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("ledger_id", ledgerID),
			sdk.NewAttribute("denom", denom),
			sdk.NewAttribute("payer", payer),
			sdk.NewAttribute("amount", amount.String()),
			sdk.NewAttribute("pool_total", record.TotalCollected.String()),
		),
	)

	k.logger.Info("Fee collected",
		"pool_id", poolID,
		"denom", denom,
		"amount", amount.String(),
		"pool_total", record.TotalCollected.String(),
	)
	return nil
}

// WithdrawFees drains the full claimable balance for one asset to the
// configured treasury. Returns the amount moved and the recipient.
func (k *Keeper) WithdrawFees(ctx sdk.Context, denom string) (math.Int, string, error) {
	treasury := k.GetTreasury(ctx)
	if treasury.Address == "" {
		return math.ZeroInt(), "", types.ErrTreasuryNotSet
	}

	balance := k.GetWithdrawable(ctx, denom)
	if balance == nil || !balance.Amount.IsPositive() {
		return math.ZeroInt(), "", errors.Wrapf(types.ErrNothingToWithdraw, "denom %s", denom)
	}

	amount := balance.Amount
	if err := k.shareKeeper.Transfer(ctx, balance.LedgerID, types.SinkAddress(), treasury.Address, amount); err != nil {
		return math.ZeroInt(), "", err
	}

	balance.Amount = math.ZeroInt()
	k.setWithdrawable(ctx, balance)

	k.appendEvent(ctx, &types.FeeEvent{
		EventID:   k.nextEventID(ctx),
		Denom:     denom,
		Amount:    amount,
		Kind:      types.FeeEventWithdraw,
		Recipient: treasury.Address,
		Timestamp: ctx.BlockTime().Unix(),
	})

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"fees_withdrawn",
			sdk.NewAttribute("denom", denom),
			sdk.NewAttribute("amount", amount.String()),
			sdk.NewAttribute("recipient", treasury.Address),
		),
	)

	k.logger.Info("Fees withdrawn",
		"denom", denom,
		"amount", amount.String(),
		"recipient", treasury.Address,
	)
	return amount, treasury.Address, nil
}

// ============ Event Log ============

func (k *Keeper) appendEvent(ctx sdk.Context, event *types.FeeEvent) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(event)
	store.Set(feeEventKey(event.EventID), bz)
}

// GetFeeEvents returns the recorded collection and withdrawal history
func (k *Keeper) GetFeeEvents(ctx sdk.Context) []*types.FeeEvent {
	store := k.GetStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, FeeEventKeyPrefix)
	defer iterator.Close()

	var events []*types.FeeEvent
	for ; iterator.Valid(); iterator.Next() {
		var event types.FeeEvent
		if err := json.Unmarshal(iterator.Value(), &event); err != nil {
			continue
		}
		events = append(events, &event)
	}
	return events
}
