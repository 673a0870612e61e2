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
	"github.com/eden-finance/vest-sub001/x/receipt/types"
)

// Store key prefixes
var (
	ReceiptKeyPrefix      = []byte{0x01}
	InvestmentIndexPrefix = []byte{0x02}
	OwnerIndexPrefix      = []byte{0x03}
	ReceiptCounterKey     = []byte{0x04}
)

// Keeper manages the receipt registry
type Keeper struct {
	cdc      codec.BinaryCodec
	storeKey storetypes.StoreKey
	logger   log.Logger
}

// NewKeeper creates a new receipt keeper
func NewKeeper(cdc codec.BinaryCodec, storeKey storetypes.StoreKey, logger log.Logger) *Keeper {
	return &Keeper{
		cdc:      cdc,
		storeKey: storeKey,
		logger:   logger.With("module", "x/receipt"),
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

func receiptKey(receiptID string) []byte {
	return append(ReceiptKeyPrefix, []byte(receiptID)...)
}

func investmentIndexKey(poolID, investmentID string) []byte {
	return append(InvestmentIndexPrefix, []byte(poolID+":"+investmentID)...)
}

func ownerIndexKey(owner, receiptID string) []byte {
	return append(OwnerIndexPrefix, []byte(owner+":"+receiptID)...)
}

// nextReceiptID allocates a sequential receipt identifier
func (k *Keeper) nextReceiptID(ctx sdk.Context) string {
	store := k.GetStore(ctx)
	bz := store.Get(ReceiptCounterKey)
	var counter uint64
	if bz != nil {
		counter = binary.BigEndian.Uint64(bz)
	}
	counter++

	newBz := make([]byte, 8)
	binary.BigEndian.PutUint64(newBz, counter)
	store.Set(ReceiptCounterKey, newBz)

	return fmt.Sprintf("rcpt-%d", counter)
}

// ============ Registry Operations ============

// Issue mints a receipt for one investment. A second receipt for the same
// investment is rejected; revoking and re-issuing is not a supported flow.
func (k *Keeper) Issue(ctx sdk.Context, poolID, investmentID, investor string, amount math.Int, maturityTime int64) (*types.Receipt, error) {
	store := k.GetStore(ctx)

	invKey := investmentIndexKey(poolID, investmentID)
	if store.Has(invKey) {
		return nil, types.ErrReceiptExists
	}

	receipt := types.NewReceipt(
		k.nextReceiptID(ctx),
		poolID,
		investmentID,
		investor,
		amount,
		maturityTime,
		ctx.BlockTime().Unix(),
	)
	if err := receipt.Validate(); err != nil {
		return nil, err
	}

	bz, _ := json.Marshal(receipt)
	store.Set(receiptKey(receipt.ReceiptID), bz)
	store.Set(invKey, []byte(receipt.ReceiptID))
	store.Set(ownerIndexKey(investor, receipt.ReceiptID), []byte(receipt.ReceiptID))

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"receipt_issued",
			sdk.NewAttribute("receipt_id", receipt.ReceiptID),
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("investment_id", investmentID),
			sdk.NewAttribute("investor", investor),
			sdk.NewAttribute("amount", amount.String()),
		),
	)

	k.logger.Info("Receipt issued",
		"receipt_id", receipt.ReceiptID,
		"pool_id", poolID,
		"investment_id", investmentID,
		"investor", investor,
	)
	return receipt, nil
}

// Revoke burns a receipt, removing the investment mapping with it
func (k *Keeper) Revoke(ctx sdk.Context, receiptID string) error {
	store := k.GetStore(ctx)
	receipt := k.Get(ctx, receiptID)
	if receipt == nil {
		return types.ErrReceiptNotFound
	}

	store.Delete(receiptKey(receiptID))
	store.Delete(investmentIndexKey(receipt.PoolID, receipt.InvestmentID))
	store.Delete(ownerIndexKey(receipt.Investor, receiptID))

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"receipt_revoked",
			sdk.NewAttribute("receipt_id", receiptID),
			sdk.NewAttribute("pool_id", receipt.PoolID),
			sdk.NewAttribute("investment_id", receipt.InvestmentID),
			sdk.NewAttribute("investor", receipt.Investor),
		),
	)

	k.logger.Info("Receipt revoked",
		"receipt_id", receiptID,
		"investment_id", receipt.InvestmentID,
	)
	return nil
}

// Get retrieves a receipt from the store
func (k *Keeper) Get(ctx sdk.Context, receiptID string) *types.Receipt {
	store := k.GetStore(ctx)
	bz := store.Get(receiptKey(receiptID))
	if bz == nil {
		return nil
	}
	var receipt types.Receipt
	if err := json.Unmarshal(bz, &receipt); err != nil {
		return nil
	}
	return &receipt
}

// GetByInvestment resolves the live receipt for an investment, if any
func (k *Keeper) GetByInvestment(ctx sdk.Context, poolID, investmentID string) *types.Receipt {
	store := k.GetStore(ctx)
	bz := store.Get(investmentIndexKey(poolID, investmentID))
	if bz == nil {
		return nil
	}
	return k.Get(ctx, string(bz))
}

// OwnerOf returns the holder of a receipt ("" if the receipt does not exist)
func (k *Keeper) OwnerOf(ctx sdk.Context, receiptID string) string {
	receipt := k.Get(ctx, receiptID)
	if receipt == nil {
		return ""
	}
	return receipt.Investor
}

// GetByOwner returns all receipts held by one investor
func (k *Keeper) GetByOwner(ctx sdk.Context, owner string) []*types.Receipt {
	store := k.GetStore(ctx)
	prefix := append(OwnerIndexPrefix, []byte(owner+":")...)
	iterator := storetypes.KVStorePrefixIterator(store, prefix)
	defer iterator.Close()

	var receipts []*types.Receipt
	for ; iterator.Valid(); iterator.Next() {
		receipt := k.Get(ctx, string(iterator.Value()))
		if receipt != nil {
			receipts = append(receipts, receipt)
		}
	}
	return receipts
}

// GetAll returns every live receipt
func (k *Keeper) GetAll(ctx sdk.Context) []*types.Receipt {
	store := k.GetStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, ReceiptKeyPrefix)
	defer iterator.Close()

	var receipts []*types.Receipt
	for ; iterator.Valid(); iterator.Next() {
		var receipt types.Receipt
		if err := json.Unmarshal(iterator.Value(), &receipt); err != nil {
			continue
		}
		receipts = append(receipts, &receipt)
	}
	return receipts
}
