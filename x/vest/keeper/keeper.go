package keeper

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/eden-finance/vest-sub001/x/vest/types"
)

// Store key prefixes
var (
	PoolKeyPrefix             = []byte{0x01}
	InvestmentKeyPrefix       = []byte{0x02}
	InvestorIndexPrefix       = []byte{0x03}
	PoolInvestmentIndexPrefix = []byte{0x04}
	InvestmentCounterKey      = []byte{0x05}
	PoolCounterKey            = []byte{0x06}
	ParamsKey                 = []byte{0x07}
	MaturityQueueKeyPrefix    = []byte{0x08}
	LastMaturityScanKey       = []byte{0x09}
	ReceiptIndexPrefix        = []byte{0x0A}
)

// ShareKeeper defines the expected interface for the share ledger
type ShareKeeper interface {
	CreateLedger(ctx sdk.Context, ledgerID, poolID, denom string) error
	Mint(ctx sdk.Context, ledgerID, callerPool, addr string, amount math.Int) error
	Burn(ctx sdk.Context, ledgerID, callerPool, addr string, amount math.Int) error
	GetBalance(ctx sdk.Context, ledgerID, addr string) math.Int
	GetTotalSupply(ctx sdk.Context, ledgerID string) math.Int
}

// ReceiptKeeper defines the expected interface for the receipt registry
type ReceiptKeeper interface {
	Issue(ctx sdk.Context, poolID, investmentID, investor string, amount math.Int, maturityTime int64) (string, error)
	Revoke(ctx sdk.Context, receiptID string) error
	Lookup(ctx sdk.Context, receiptID string) (poolID, investmentID, owner string, found bool)
}

// FeeKeeper defines the expected interface for the fee sink
type FeeKeeper interface {
	CollectFee(ctx sdk.Context, ledgerID, poolID, denom, payer string, amount math.Int) error
	SetTreasury(ctx sdk.Context, address string) error
	GetTreasuryAddress(ctx sdk.Context) string
}

// CustodyKeeper defines the expected interface for settlement-asset movement.
// Transfers either land fully or fail; vest never observes partial custody.
type CustodyKeeper interface {
	SendToCustody(ctx sdk.Context, poolID, from string, amount sdk.Coin) error
	ReleaseCustody(ctx sdk.Context, poolID, to string, amount sdk.Coin) error
	CustodyBalance(ctx sdk.Context, poolID, denom string) math.Int
	SendToModule(ctx sdk.Context, from string, amount sdk.Coin) error
	SendFromModule(ctx sdk.Context, to string, amount sdk.Coin) error
	ModuleBalance(ctx sdk.Context, denom string) math.Int
	ModuleToCustody(ctx sdk.Context, poolID string, amount sdk.Coin) error
}

// SwapRouter defines the expected interface for the swap collaborator.
// Quote is best-effort and returns zero on any internal failure. Swap must
// deliver its reported output to the module account; the keeper verifies the
// balance delta and rejects the whole operation on a mismatch.
type SwapRouter interface {
	Quote(ctx sdk.Context, tokenIn, tokenOut string, amountIn math.Int) math.Int
	Swap(ctx sdk.Context, tokenIn, tokenOut string, amountIn, minAmountOut math.Int, deadline int64) (math.Int, error)
}

// Keeper manages the vest module state
type Keeper struct {
	cdc           codec.BinaryCodec
	storeKey      storetypes.StoreKey
	shareKeeper   ShareKeeper
	receiptKeeper ReceiptKeeper
	feeKeeper     FeeKeeper
	custodyKeeper CustodyKeeper
	swapRouter    SwapRouter
	authority     string
	logger        log.Logger

	guard    *opGuard
	maturity *maturityIndex
}

// NewKeeper creates a new vest keeper
func NewKeeper(
	cdc codec.BinaryCodec,
	storeKey storetypes.StoreKey,
	shareKeeper ShareKeeper,
	receiptKeeper ReceiptKeeper,
	feeKeeper FeeKeeper,
	custodyKeeper CustodyKeeper,
	swapRouter SwapRouter,
	authority string,
	logger log.Logger,
) *Keeper {
	k := &Keeper{
		cdc:           cdc,
		storeKey:      storeKey,
		shareKeeper:   shareKeeper,
		receiptKeeper: receiptKeeper,
		feeKeeper:     feeKeeper,
		custodyKeeper: custodyKeeper,
		swapRouter:    swapRouter,
		authority:     authority,
		logger:        logger.With("module", "x/vest"),
		guard:         newOpGuard(),
		maturity:      newMaturityIndex(),
	}
	return k
}

// Logger returns the module logger
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// GetAuthority returns the governance authority address
func (k *Keeper) GetAuthority() string {
	return k.authority
}

// GetStore returns the KVStore
func (k *Keeper) GetStore(ctx sdk.Context) storetypes.KVStore {
	return ctx.KVStore(k.storeKey)
}

func poolKey(poolID string) []byte {
	return append(PoolKeyPrefix, []byte(poolID)...)
}

func investmentKey(investmentID string) []byte {
	return append(InvestmentKeyPrefix, []byte(investmentID)...)
}

func investorIndexKey(investor, investmentID string) []byte {
	return append(InvestorIndexPrefix, []byte(investor+":"+investmentID)...)
}

func poolInvestmentIndexKey(poolID, investmentID string) []byte {
	return append(PoolInvestmentIndexPrefix, []byte(poolID+":"+investmentID)...)
}

func receiptIndexKey(receiptID string) []byte {
	return append(ReceiptIndexPrefix, []byte(receiptID)...)
}

// maturityQueueKey orders queue entries by maturity time, then ID. Iterating
// the prefix walks investments in maturity order.
func maturityQueueKey(maturityTime int64, investmentID string) []byte {
	key := append([]byte{}, MaturityQueueKeyPrefix...)
	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(maturityTime))
	key = append(key, ts...)
	return append(key, []byte(investmentID)...)
}

// ============ Pool Storage ============

// SetPool saves a pool to the store
func (k *Keeper) SetPool(ctx sdk.Context, pool *types.Pool) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(pool)
	store.Set(poolKey(pool.PoolID), bz)
}

// GetPool retrieves a pool from the store
func (k *Keeper) GetPool(ctx sdk.Context, poolID string) *types.Pool {
	store := k.GetStore(ctx)
	bz := store.Get(poolKey(poolID))
	if bz == nil {
		return nil
	}
	var pool types.Pool
	if err := json.Unmarshal(bz, &pool); err != nil {
		return nil
	}
	return &pool
}

// GetAllPools returns all pools
func (k *Keeper) GetAllPools(ctx sdk.Context) []*types.Pool {
	store := k.GetStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, PoolKeyPrefix)
	defer iterator.Close()

	var pools []*types.Pool
	for ; iterator.Valid(); iterator.Next() {
		var pool types.Pool
		if err := json.Unmarshal(iterator.Value(), &pool); err != nil {
			continue
		}
		pools = append(pools, &pool)
	}
	return pools
}

// ============ Investment Storage ============

// SetInvestment saves an investment and its lookup indexes
func (k *Keeper) SetInvestment(ctx sdk.Context, investment *types.Investment) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(investment)
	store.Set(investmentKey(investment.InvestmentID), bz)
	store.Set(investorIndexKey(investment.Investor, investment.InvestmentID), []byte(investment.InvestmentID))
	store.Set(poolInvestmentIndexKey(investment.PoolID, investment.InvestmentID), []byte(investment.InvestmentID))
}

// GetInvestment retrieves an investment from the store
func (k *Keeper) GetInvestment(ctx sdk.Context, investmentID string) *types.Investment {
	store := k.GetStore(ctx)
	bz := store.Get(investmentKey(investmentID))
	if bz == nil {
		return nil
	}
	var investment types.Investment
	if err := json.Unmarshal(bz, &investment); err != nil {
		return nil
	}
	return &investment
}

// setReceiptIndex maps a receipt ID to its investment. The mapping outlives
// the receipt so a withdrawal attempt against a revoked receipt can still be
// answered with the right error.
func (k *Keeper) setReceiptIndex(ctx sdk.Context, receiptID, investmentID string) {
	store := k.GetStore(ctx)
	store.Set(receiptIndexKey(receiptID), []byte(investmentID))
}

// GetInvestmentByReceipt resolves the investment a receipt was issued for
func (k *Keeper) GetInvestmentByReceipt(ctx sdk.Context, receiptID string) *types.Investment {
	store := k.GetStore(ctx)
	bz := store.Get(receiptIndexKey(receiptID))
	if bz == nil {
		return nil
	}
	return k.GetInvestment(ctx, string(bz))
}

// GetInvestmentsByInvestor returns all investments made by one investor
func (k *Keeper) GetInvestmentsByInvestor(ctx sdk.Context, investor string) []*types.Investment {
	store := k.GetStore(ctx)
	prefix := append(InvestorIndexPrefix, []byte(investor+":")...)
	iterator := storetypes.KVStorePrefixIterator(store, prefix)
	defer iterator.Close()

	var investments []*types.Investment
	for ; iterator.Valid(); iterator.Next() {
		if investment := k.GetInvestment(ctx, string(iterator.Value())); investment != nil {
			investments = append(investments, investment)
		}
	}
	return investments
}

// GetInvestmentsByPool returns all investments in one pool
func (k *Keeper) GetInvestmentsByPool(ctx sdk.Context, poolID string) []*types.Investment {
	store := k.GetStore(ctx)
	prefix := append(PoolInvestmentIndexPrefix, []byte(poolID+":")...)
	iterator := storetypes.KVStorePrefixIterator(store, prefix)
	defer iterator.Close()

	var investments []*types.Investment
	for ; iterator.Valid(); iterator.Next() {
		if investment := k.GetInvestment(ctx, string(iterator.Value())); investment != nil {
			investments = append(investments, investment)
		}
	}
	return investments
}

// GetAllInvestments returns every investment
func (k *Keeper) GetAllInvestments(ctx sdk.Context) []*types.Investment {
	store := k.GetStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, InvestmentKeyPrefix)
	defer iterator.Close()

	var investments []*types.Investment
	for ; iterator.Valid(); iterator.Next() {
		var investment types.Investment
		if err := json.Unmarshal(iterator.Value(), &investment); err != nil {
			continue
		}
		investments = append(investments, &investment)
	}
	return investments
}

// ============ Counters ============

func (k *Keeper) nextCounter(ctx sdk.Context, counterKey []byte, prefix string) string {
	store := k.GetStore(ctx)
	bz := store.Get(counterKey)
	var counter uint64
	if bz != nil {
		counter = binary.BigEndian.Uint64(bz)
	}
	counter++

	newBz := make([]byte, 8)
	binary.BigEndian.PutUint64(newBz, counter)
	store.Set(counterKey, newBz)

	return fmt.Sprintf("%s-%d", prefix, counter)
}

func (k *Keeper) nextInvestmentID(ctx sdk.Context) string {
	return k.nextCounter(ctx, InvestmentCounterKey, "inv")
}

func (k *Keeper) nextPoolID(ctx sdk.Context) string {
	return k.nextCounter(ctx, PoolCounterKey, "pool")
}

// ============ Params ============

// GetParams returns the protocol params, falling back to defaults
func (k *Keeper) GetParams(ctx sdk.Context) types.Params {
	store := k.GetStore(ctx)
	bz := store.Get(ParamsKey)
	if bz == nil {
		return types.DefaultParams()
	}
	var params types.Params
	if err := json.Unmarshal(bz, &params); err != nil {
		return types.DefaultParams()
	}
	return params
}

// SetParams validates and stores the protocol params
func (k *Keeper) SetParams(ctx sdk.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(params)
	store.Set(ParamsKey, bz)
	return nil
}

// ============ Maturity Queue ============

// enqueueMaturity records an investment in the time-ordered maturity queue
func (k *Keeper) enqueueMaturity(ctx sdk.Context, investment *types.Investment) {
	store := k.GetStore(ctx)
	store.Set(maturityQueueKey(investment.MaturityTime, investment.InvestmentID), []byte(investment.InvestmentID))
	k.maturity.Insert(investment.MaturityTime, investment.InvestmentID)
}

// dequeueMaturity drops an investment from the maturity queue
func (k *Keeper) dequeueMaturity(ctx sdk.Context, investment *types.Investment) {
	store := k.GetStore(ctx)
	store.Delete(maturityQueueKey(investment.MaturityTime, investment.InvestmentID))
	k.maturity.Remove(investment.MaturityTime, investment.InvestmentID)
}

// IterateMaturityQueue walks queue entries with maturityTime <= cutoff in
// maturity order. fn returning true stops the walk.
func (k *Keeper) IterateMaturityQueue(ctx sdk.Context, cutoff int64, fn func(investmentID string) bool) {
	store := k.GetStore(ctx)
	end := make([]byte, 8)
	binary.BigEndian.PutUint64(end, uint64(cutoff+1))
	iterator := store.Iterator(MaturityQueueKeyPrefix, append(append([]byte{}, MaturityQueueKeyPrefix...), end...))
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		if fn(string(iterator.Value())) {
			return
		}
	}
}

// rebuildMaturityIndex repopulates the in-memory index from the store.
// Called on the first block after a restart.
func (k *Keeper) rebuildMaturityIndex(ctx sdk.Context) {
	store := k.GetStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, MaturityQueueKeyPrefix)
	defer iterator.Close()

	count := 0
	for ; iterator.Valid(); iterator.Next() {
		key := iterator.Key()
		ts := int64(binary.BigEndian.Uint64(key[len(MaturityQueueKeyPrefix) : len(MaturityQueueKeyPrefix)+8]))
		k.maturity.Insert(ts, string(iterator.Value()))
		count++
	}
	if count > 0 {
		k.logger.Info("Rebuilt maturity index", "entries", count)
	}
}

// ============ Stats ============

// GetPoolStats aggregates live statistics for one pool
func (k *Keeper) GetPoolStats(ctx sdk.Context, poolID string) *types.PoolStats {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return nil
	}

	stats := &types.PoolStats{
		PoolID:         poolID,
		TotalDeposited: pool.TotalDeposited,
		TotalWithdrawn: pool.TotalWithdrawn,
		TotalSupply:    k.shareKeeper.GetTotalSupply(ctx, poolID),
		UpdatedAt:      ctx.BlockTime().Unix(),
	}
	for _, investment := range k.GetInvestmentsByPool(ctx, poolID) {
		switch investment.Status() {
		case types.StatusWithdrawn:
			stats.WithdrawnInvestments++
		case types.StatusMatured:
			stats.MaturedInvestments++
		default:
			stats.ActiveInvestments++
		}
	}
	return stats
}
