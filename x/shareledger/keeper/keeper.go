package keeper

import (
	"encoding/json"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/eden-finance/vest-sub001/x/shareledger/types"
)

// Store key prefixes
var (
	LedgerKeyPrefix     = []byte{0x01}
	BalanceKeyPrefix    = []byte{0x02}
	PoolLedgerKeyPrefix = []byte{0x03}
)

// Keeper manages the per-pool share ledgers
type Keeper struct {
	cdc      codec.BinaryCodec
	storeKey storetypes.StoreKey
	logger   log.Logger
}

// NewKeeper creates a new shareledger keeper
func NewKeeper(cdc codec.BinaryCodec, storeKey storetypes.StoreKey, logger log.Logger) *Keeper {
	return &Keeper{
		cdc:      cdc,
		storeKey: storeKey,
		logger:   logger.With("module", "x/shareledger"),
	}
}

// Logger returns the module logger
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// GetStore returns the KVStore
func (k *Keeper) GetStore(ctx sdk.Context) storetypes.KVStore {
	return ctx.KVStore(k.storeKey)
}

// ============ Ledger Storage ============

func ledgerKey(ledgerID string) []byte {
	return append(LedgerKeyPrefix, []byte(ledgerID)...)
}

func poolLedgerKey(poolID string) []byte {
	return append(PoolLedgerKeyPrefix, []byte(poolID)...)
}

func balanceKey(ledgerID, addr string) []byte {
	return append(BalanceKeyPrefix, []byte(ledgerID+":"+addr)...)
}

// SetLedger saves a ledger to the store
func (k *Keeper) SetLedger(ctx sdk.Context, ledger *types.Ledger) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(ledger)
	store.Set(ledgerKey(ledger.LedgerID), bz)
	store.Set(poolLedgerKey(ledger.PoolID), []byte(ledger.LedgerID))
}

// GetLedger retrieves a ledger from the store
func (k *Keeper) GetLedger(ctx sdk.Context, ledgerID string) *types.Ledger {
	store := k.GetStore(ctx)
	bz := store.Get(ledgerKey(ledgerID))
	if bz == nil {
		return nil
	}
	var ledger types.Ledger
	if err := json.Unmarshal(bz, &ledger); err != nil {
		return nil
	}
	return &ledger
}

// GetLedgerByPool resolves the ledger owned by a pool
func (k *Keeper) GetLedgerByPool(ctx sdk.Context, poolID string) *types.Ledger {
	store := k.GetStore(ctx)
	bz := store.Get(poolLedgerKey(poolID))
	if bz == nil {
		return nil
	}
	return k.GetLedger(ctx, string(bz))
}

// GetAllLedgers returns all ledgers
func (k *Keeper) GetAllLedgers(ctx sdk.Context) []*types.Ledger {
	store := k.GetStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, LedgerKeyPrefix)
	defer iterator.Close()

	var ledgers []*types.Ledger
	for ; iterator.Valid(); iterator.Next() {
		var ledger types.Ledger
		if err := json.Unmarshal(iterator.Value(), &ledger); err != nil {
			continue
		}
		ledgers = append(ledgers, &ledger)
	}
	return ledgers
}

// CreateLedger registers a new ledger for a pool. A pool owns at most one
// ledger; a second registration fails.
func (k *Keeper) CreateLedger(ctx sdk.Context, ledgerID, poolID, denom string) (*types.Ledger, error) {
	if k.GetLedger(ctx, ledgerID) != nil {
		return nil, types.ErrLedgerExists
	}
	if k.GetLedgerByPool(ctx, poolID) != nil {
		return nil, types.ErrLedgerExists
	}

	ledger := types.NewLedger(ledgerID, poolID, denom, ctx.BlockTime().Unix())
	if err := ledger.Validate(); err != nil {
		return nil, err
	}
	k.SetLedger(ctx, ledger)

	k.logger.Info("Share ledger created",
		"ledger_id", ledgerID,
		"pool_id", poolID,
		"denom", denom,
	)
	return ledger, nil
}

// ============ Balance Operations ============

// GetBalance returns the holder's balance in a ledger (zero if absent)
func (k *Keeper) GetBalance(ctx sdk.Context, ledgerID, addr string) math.Int {
	store := k.GetStore(ctx)
	bz := store.Get(balanceKey(ledgerID, addr))
	if bz == nil {
		return math.ZeroInt()
	}
	var balance types.Balance
	if err := json.Unmarshal(bz, &balance); err != nil {
		return math.ZeroInt()
	}
	return balance.Amount
}

// setBalance writes a balance, deleting the record when it reaches zero
func (k *Keeper) setBalance(ctx sdk.Context, ledgerID, addr string, amount math.Int) {
	store := k.GetStore(ctx)
	key := balanceKey(ledgerID, addr)
	if amount.IsZero() {
		store.Delete(key)
		return
	}
	balance := types.Balance{LedgerID: ledgerID, Address: addr, Amount: amount}
	bz, _ := json.Marshal(&balance)
	store.Set(key, bz)
}

// GetTotalSupply returns the ledger's recorded total supply
func (k *Keeper) GetTotalSupply(ctx sdk.Context, ledgerID string) math.Int {
	ledger := k.GetLedger(ctx, ledgerID)
	if ledger == nil {
		return math.ZeroInt()
	}
	return ledger.TotalSupply
}

// IterateBalances walks every balance in a ledger
func (k *Keeper) IterateBalances(ctx sdk.Context, ledgerID string, fn func(addr string, amount math.Int) bool) {
	store := k.GetStore(ctx)
	prefix := append(BalanceKeyPrefix, []byte(ledgerID+":")...)
	iterator := storetypes.KVStorePrefixIterator(store, prefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var balance types.Balance
		if err := json.Unmarshal(iterator.Value(), &balance); err != nil {
			continue
		}
		if fn(balance.Address, balance.Amount) {
			return
		}
	}
}

// ============ Mint / Burn / Transfer ============

// Mint creates amount new shares for addr. Only the owning pool may mint.
func (k *Keeper) Mint(ctx sdk.Context, ledgerID, callerPool, addr string, amount math.Int) error {
	ledger := k.GetLedger(ctx, ledgerID)
	if ledger == nil {
		return types.ErrLedgerNotFound
	}
	if ledger.PoolID != callerPool {
		return types.ErrUnauthorized
	}
	if amount.IsNil() || !amount.IsPositive() {
		return types.ErrInvalidAmount
	}
	if addr == "" {
		return types.ErrInvalidAddress
	}

	k.setBalance(ctx, ledgerID, addr, k.GetBalance(ctx, ledgerID, addr).Add(amount))
	ledger.TotalSupply = ledger.TotalSupply.Add(amount)
	k.SetLedger(ctx, ledger)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"shareledger_mint",
			sdk.NewAttribute("ledger_id", ledgerID),
			sdk.NewAttribute("pool_id", callerPool),
			sdk.NewAttribute("to", addr),
			sdk.NewAttribute("amount", amount.String()),
			sdk.NewAttribute("total_supply", ledger.TotalSupply.String()),
		),
	)
	return nil
}

// Burn destroys amount shares held by addr. Only the owning pool may burn,
// and never more than the holder's balance.
func (k *Keeper) Burn(ctx sdk.Context, ledgerID, callerPool, addr string, amount math.Int) error {
	ledger := k.GetLedger(ctx, ledgerID)
	if ledger == nil {
		return types.ErrLedgerNotFound
	}
	if ledger.PoolID != callerPool {
		return types.ErrUnauthorized
	}
	if amount.IsNil() || !amount.IsPositive() {
		return types.ErrInvalidAmount
	}

	balance := k.GetBalance(ctx, ledgerID, addr)
	if balance.LT(amount) {
		return types.ErrInsufficientBalance
	}

	k.setBalance(ctx, ledgerID, addr, balance.Sub(amount))
	ledger.TotalSupply = ledger.TotalSupply.Sub(amount)
	k.SetLedger(ctx, ledger)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"shareledger_burn",
			sdk.NewAttribute("ledger_id", ledgerID),
			sdk.NewAttribute("pool_id", callerPool),
			sdk.NewAttribute("from", addr),
			sdk.NewAttribute("amount", amount.String()),
			sdk.NewAttribute("total_supply", ledger.TotalSupply.String()),
		),
	)
	return nil
}

// Transfer moves shares between holders without touching supply. Used by the
// fee sink to pull its cut out of a freshly credited balance.
func (k *Keeper) Transfer(ctx sdk.Context, ledgerID, from, to string, amount math.Int) error {
	ledger := k.GetLedger(ctx, ledgerID)
	if ledger == nil {
		return types.ErrLedgerNotFound
	}
	if amount.IsNil() || !amount.IsPositive() {
		return types.ErrInvalidAmount
	}
	if to == "" {
		return types.ErrInvalidAddress
	}

	fromBalance := k.GetBalance(ctx, ledgerID, from)
	if fromBalance.LT(amount) {
		return types.ErrInsufficientBalance
	}

	k.setBalance(ctx, ledgerID, from, fromBalance.Sub(amount))
	k.setBalance(ctx, ledgerID, to, k.GetBalance(ctx, ledgerID, to).Add(amount))

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"shareledger_transfer",
			sdk.NewAttribute("ledger_id", ledgerID),
			sdk.NewAttribute("from", from),
			sdk.NewAttribute("to", to),
			sdk.NewAttribute("amount", amount.String()),
		),
	)
	return nil
}

// CheckInvariant verifies sum(balances) == totalSupply for one ledger
func (k *Keeper) CheckInvariant(ctx sdk.Context, ledgerID string) error {
	ledger := k.GetLedger(ctx, ledgerID)
	if ledger == nil {
		return types.ErrLedgerNotFound
	}

	sum := math.ZeroInt()
	k.IterateBalances(ctx, ledgerID, func(addr string, amount math.Int) bool {
		sum = sum.Add(amount)
		return false
	})

	if !sum.Equal(ledger.TotalSupply) {
		k.logger.Error("Share supply mismatch",
			"ledger_id", ledgerID,
			"sum", sum.String(),
			"total_supply", ledger.TotalSupply.String(),
		)
		return types.ErrSupplyMismatch
	}
	return nil
}
