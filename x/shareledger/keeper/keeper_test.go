package keeper

import (
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/eden-finance/vest-sub001/x/shareledger/types"
)

// setupKeeper creates a test keeper with an in-memory store
func setupKeeper(tb testing.TB) (*Keeper, sdk.Context) {
	tb.Helper()

	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	if err := stateStore.LoadLatestVersion(); err != nil {
		tb.Fatalf("failed to load store: %v", err)
	}

	ctx := sdk.NewContext(stateStore, cmtproto.Header{}, false, log.NewNopLogger())

	interfaceRegistry := codectypes.NewInterfaceRegistry()
	cdc := codec.NewProtoCodec(interfaceRegistry)

	return NewKeeper(cdc, storeKey, log.NewNopLogger()), ctx
}

func mustCreateLedger(t *testing.T, k *Keeper, ctx sdk.Context, ledgerID, poolID string) {
	t.Helper()
	if _, err := k.CreateLedger(ctx, ledgerID, poolID, "share/"+poolID); err != nil {
		t.Fatalf("failed to create ledger: %v", err)
	}
}

// TestCreateLedger tests ledger registration and one-per-pool enforcement
func TestCreateLedger(t *testing.T) {
	k, ctx := setupKeeper(t)

	ledger, err := k.CreateLedger(ctx, "ldg-1", "pool-1", "share/pool-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ledger.TotalSupply.IsZero() {
		t.Errorf("expected zero initial supply, got %s", ledger.TotalSupply.String())
	}

	// Same ledger ID rejected
	if _, err := k.CreateLedger(ctx, "ldg-1", "pool-2", "share/pool-2"); err != types.ErrLedgerExists {
		t.Errorf("expected ErrLedgerExists, got %v", err)
	}

	// Second ledger for the same pool rejected
	if _, err := k.CreateLedger(ctx, "ldg-2", "pool-1", "share/pool-1b"); err != types.ErrLedgerExists {
		t.Errorf("expected ErrLedgerExists for duplicate pool, got %v", err)
	}

	// Lookup by pool resolves the original
	byPool := k.GetLedgerByPool(ctx, "pool-1")
	if byPool == nil || byPool.LedgerID != "ldg-1" {
		t.Errorf("expected pool lookup to resolve ldg-1, got %+v", byPool)
	}
}

// TestMintGating tests that only the owning pool may mint and burn
func TestMintGating(t *testing.T) {
	k, ctx := setupKeeper(t)
	mustCreateLedger(t, k, ctx, "ldg-1", "pool-1")

	if err := k.Mint(ctx, "ldg-1", "pool-2", "investor-a", math.NewInt(100)); err != types.ErrUnauthorized {
		t.Errorf("expected ErrUnauthorized for foreign pool mint, got %v", err)
	}
	if err := k.Mint(ctx, "ldg-1", "pool-1", "investor-a", math.NewInt(100)); err != nil {
		t.Errorf("unexpected error for owner mint: %v", err)
	}
	if err := k.Burn(ctx, "ldg-1", "pool-2", "investor-a", math.NewInt(50)); err != types.ErrUnauthorized {
		t.Errorf("expected ErrUnauthorized for foreign pool burn, got %v", err)
	}
	if err := k.Burn(ctx, "ldg-1", "pool-1", "investor-a", math.NewInt(50)); err != nil {
		t.Errorf("unexpected error for owner burn: %v", err)
	}
}

// TestMintBurnAmountValidation tests amount bounds on mint/burn
func TestMintBurnAmountValidation(t *testing.T) {
	k, ctx := setupKeeper(t)
	mustCreateLedger(t, k, ctx, "ldg-1", "pool-1")

	testCases := []struct {
		name   string
		amount math.Int
	}{
		{name: "zero amount", amount: math.ZeroInt()},
		{name: "negative amount", amount: math.NewInt(-5)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := k.Mint(ctx, "ldg-1", "pool-1", "investor-a", tc.amount); err != types.ErrInvalidAmount {
				t.Errorf("expected ErrInvalidAmount on mint, got %v", err)
			}
			if err := k.Burn(ctx, "ldg-1", "pool-1", "investor-a", tc.amount); err != types.ErrInvalidAmount {
				t.Errorf("expected ErrInvalidAmount on burn, got %v", err)
			}
		})
	}
}

// TestBurnExceedingBalance tests that burn never produces a negative balance
func TestBurnExceedingBalance(t *testing.T) {
	k, ctx := setupKeeper(t)
	mustCreateLedger(t, k, ctx, "ldg-1", "pool-1")

	if err := k.Mint(ctx, "ldg-1", "pool-1", "investor-a", math.NewInt(100)); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := k.Burn(ctx, "ldg-1", "pool-1", "investor-a", math.NewInt(101)); err != types.ErrInsufficientBalance {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}
	if got := k.GetBalance(ctx, "ldg-1", "investor-a"); !got.Equal(math.NewInt(100)) {
		t.Errorf("balance changed by failed burn: %s", got.String())
	}
}

// TestTransfer tests holder-to-holder moves used by fee extraction
func TestTransfer(t *testing.T) {
	k, ctx := setupKeeper(t)
	mustCreateLedger(t, k, ctx, "ldg-1", "pool-1")

	if err := k.Mint(ctx, "ldg-1", "pool-1", "investor-a", math.NewInt(10000)); err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	if err := k.Transfer(ctx, "ldg-1", "investor-a", "feesink", math.NewInt(250)); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	if got := k.GetBalance(ctx, "ldg-1", "investor-a"); !got.Equal(math.NewInt(9750)) {
		t.Errorf("expected sender balance 9750, got %s", got.String())
	}
	if got := k.GetBalance(ctx, "ldg-1", "feesink"); !got.Equal(math.NewInt(250)) {
		t.Errorf("expected recipient balance 250, got %s", got.String())
	}

	// Supply untouched by transfers
	if got := k.GetTotalSupply(ctx, "ldg-1"); !got.Equal(math.NewInt(10000)) {
		t.Errorf("expected supply 10000, got %s", got.String())
	}

	// Overdraw rejected
	if err := k.Transfer(ctx, "ldg-1", "feesink", "investor-a", math.NewInt(251)); err != types.ErrInsufficientBalance {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}
}

// TestConservationInvariant tests sum(balances) == totalSupply across
// arbitrary mint/burn/transfer sequences
func TestConservationInvariant(t *testing.T) {
	k, ctx := setupKeeper(t)
	mustCreateLedger(t, k, ctx, "ldg-1", "pool-1")

	steps := []struct {
		op     string
		addr   string
		to     string
		amount int64
	}{
		{op: "mint", addr: "alice", amount: 10000},
		{op: "mint", addr: "bob", amount: 5000},
		{op: "transfer", addr: "alice", to: "sink", amount: 250},
		{op: "burn", addr: "bob", amount: 3000},
		{op: "mint", addr: "carol", amount: 7},
		{op: "transfer", addr: "bob", to: "alice", amount: 2000},
		{op: "burn", addr: "alice", amount: 9750},
	}

	for i, s := range steps {
		var err error
		switch s.op {
		case "mint":
			err = k.Mint(ctx, "ldg-1", "pool-1", s.addr, math.NewInt(s.amount))
		case "burn":
			err = k.Burn(ctx, "ldg-1", "pool-1", s.addr, math.NewInt(s.amount))
		case "transfer":
			err = k.Transfer(ctx, "ldg-1", s.addr, s.to, math.NewInt(s.amount))
		}
		if err != nil {
			t.Fatalf("step %d (%s) failed: %v", i, s.op, err)
		}
		if err := k.CheckInvariant(ctx, "ldg-1"); err != nil {
			t.Fatalf("invariant broken after step %d (%s): %v", i, s.op, err)
		}
	}

	// 10000+5000+7 minted, 3000+9750 burned
	if got := k.GetTotalSupply(ctx, "ldg-1"); !got.Equal(math.NewInt(2257)) {
		t.Errorf("expected final supply 2257, got %s", got.String())
	}
}
