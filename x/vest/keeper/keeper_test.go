package keeper

import (
	"fmt"
	"testing"
	"time"

	"cosmossdk.io/errors"
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

	feesinkkeeper "github.com/eden-finance/vest-sub001/x/feesink/keeper"
	receiptkeeper "github.com/eden-finance/vest-sub001/x/receipt/keeper"
	sharekeeper "github.com/eden-finance/vest-sub001/x/shareledger/keeper"

	feesinktypes "github.com/eden-finance/vest-sub001/x/feesink/types"
	receipttypes "github.com/eden-finance/vest-sub001/x/receipt/types"
	sharetypes "github.com/eden-finance/vest-sub001/x/shareledger/types"
	"github.com/eden-finance/vest-sub001/x/vest/types"
)

const testBaseTime = 1700000000

var (
	testAuthority = sdk.AccAddress([]byte("vest-authority------")).String()
	testAdmin     = sdk.AccAddress([]byte("pool-admin----------")).String()
	testCustodian = sdk.AccAddress([]byte("pool-custodian------")).String()
	testReporter  = sdk.AccAddress([]byte("pool-reporter-------")).String()
	testInvestor  = sdk.AccAddress([]byte("investor-one--------")).String()
	testInvestor2 = sdk.AccAddress([]byte("investor-two--------")).String()
	testTreasury  = sdk.AccAddress([]byte("treasury-account----")).String()
)

// ============ Collaborator adapters ============
//
// The share, receipt, and fee collaborators are the real keepers behind thin
// adapters, the same shape the app wiring uses. Custody and the swap router
// are scriptable in-memory fakes.

type shareAdapter struct {
	*sharekeeper.Keeper
}

func (a shareAdapter) CreateLedger(ctx sdk.Context, ledgerID, poolID, denom string) error {
	_, err := a.Keeper.CreateLedger(ctx, ledgerID, poolID, denom)
	return err
}

type receiptAdapter struct {
	*receiptkeeper.Keeper
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

func (a feeAdapter) GetTreasuryAddress(ctx sdk.Context) string {
	return a.Keeper.GetTreasury(ctx).Address
}

// mockCustody tracks settlement balances in memory, standing in for the
// bank-backed custody of the app wiring. Keys are addr|denom, poolID|denom,
// and denom for the shared module account.
type mockCustody struct {
	accounts map[string]math.Int
	pools    map[string]math.Int
	module   map[string]math.Int
}

func newMockCustody() *mockCustody {
	return &mockCustody{
		accounts: make(map[string]math.Int),
		pools:    make(map[string]math.Int),
		module:   make(map[string]math.Int),
	}
}

func balKey(a, b string) string { return a + "|" + b }

func getBal(m map[string]math.Int, key string) math.Int {
	if v, ok := m[key]; ok {
		return v
	}
	return math.ZeroInt()
}

func (m *mockCustody) fund(addr, denom string, amount int64) {
	key := balKey(addr, denom)
	m.accounts[key] = getBal(m.accounts, key).Add(math.NewInt(amount))
}

func (m *mockCustody) fundCustody(poolID, denom string, amount int64) {
	key := balKey(poolID, denom)
	m.pools[key] = getBal(m.pools, key).Add(math.NewInt(amount))
}

func (m *mockCustody) accountBalance(addr, denom string) math.Int {
	return getBal(m.accounts, balKey(addr, denom))
}

func (m *mockCustody) move(from map[string]math.Int, fromKey string, to map[string]math.Int, toKey string, amount math.Int) error {
	have := getBal(from, fromKey)
	if have.LT(amount) {
		return fmt.Errorf("insufficient funds: %s holds %s, need %s", fromKey, have, amount)
	}
	from[fromKey] = have.Sub(amount)
	to[toKey] = getBal(to, toKey).Add(amount)
	return nil
}

func (m *mockCustody) SendToCustody(ctx sdk.Context, poolID, from string, amount sdk.Coin) error {
	return m.move(m.accounts, balKey(from, amount.Denom), m.pools, balKey(poolID, amount.Denom), amount.Amount)
}

func (m *mockCustody) ReleaseCustody(ctx sdk.Context, poolID, to string, amount sdk.Coin) error {
	return m.move(m.pools, balKey(poolID, amount.Denom), m.accounts, balKey(to, amount.Denom), amount.Amount)
}

func (m *mockCustody) CustodyBalance(ctx sdk.Context, poolID, denom string) math.Int {
	return getBal(m.pools, balKey(poolID, denom))
}

func (m *mockCustody) SendToModule(ctx sdk.Context, from string, amount sdk.Coin) error {
	return m.move(m.accounts, balKey(from, amount.Denom), m.module, amount.Denom, amount.Amount)
}

func (m *mockCustody) SendFromModule(ctx sdk.Context, to string, amount sdk.Coin) error {
	return m.move(m.module, amount.Denom, m.accounts, balKey(to, amount.Denom), amount.Amount)
}

func (m *mockCustody) ModuleBalance(ctx sdk.Context, denom string) math.Int {
	return getBal(m.module, denom)
}

func (m *mockCustody) ModuleToCustody(ctx sdk.Context, poolID string, amount sdk.Coin) error {
	return m.move(m.module, amount.Denom, m.pools, balKey(poolID, amount.Denom), amount.Amount)
}

// mockRouter is a scriptable swap router. Quote returns quoteOut as-is; Swap
// consumes tokenIn from the module account, credits deliverOut of tokenOut,
// and reports reportOut. Splitting deliver from report lets tests exercise
// the delta verification.
type mockRouter struct {
	custody    *mockCustody
	quoteOut   math.Int
	reportOut  math.Int
	deliverOut math.Int
	swapErr    error
}

func newMockRouter(custody *mockCustody) *mockRouter {
	return &mockRouter{
		custody:    custody,
		quoteOut:   math.ZeroInt(),
		reportOut:  math.ZeroInt(),
		deliverOut: math.ZeroInt(),
	}
}

func (m *mockRouter) script(quote, report, deliver int64) {
	m.quoteOut = math.NewInt(quote)
	m.reportOut = math.NewInt(report)
	m.deliverOut = math.NewInt(deliver)
}

func (m *mockRouter) Quote(ctx sdk.Context, tokenIn, tokenOut string, amountIn math.Int) math.Int {
	return m.quoteOut
}

func (m *mockRouter) Swap(ctx sdk.Context, tokenIn, tokenOut string, amountIn, minAmountOut math.Int, deadline int64) (math.Int, error) {
	if m.swapErr != nil {
		return math.ZeroInt(), m.swapErr
	}
	if err := m.custody.move(m.custody.module, tokenIn, m.custody.module, "router|"+tokenIn, amountIn); err != nil {
		return math.ZeroInt(), err
	}
	m.custody.module[tokenOut] = getBal(m.custody.module, tokenOut).Add(m.deliverOut)
	return m.reportOut, nil
}

// ============ Harness ============

type testEnv struct {
	ctx      sdk.Context
	keeper   *Keeper
	shares   *sharekeeper.Keeper
	receipts *receiptkeeper.Keeper
	fees     *feesinkkeeper.Keeper
	custody  *mockCustody
	router   *mockRouter

	vestKey storetypes.StoreKey
	cdc     codec.BinaryCodec
}

// setupEnv wires a vest keeper to real share, receipt, and fee keepers over
// one multistore, with in-memory custody and swap fakes. The global tax rate
// starts at zero; tax tests set it explicitly.
func setupEnv(tb testing.TB) *testEnv {
	tb.Helper()

	vestKey := storetypes.NewKVStoreKey(types.StoreKey)
	shareKey := storetypes.NewKVStoreKey(sharetypes.StoreKey)
	receiptKey := storetypes.NewKVStoreKey(receipttypes.StoreKey)
	feesinkKey := storetypes.NewKVStoreKey(feesinktypes.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(vestKey, storetypes.StoreTypeIAVL, db)
	stateStore.MountStoreWithDB(shareKey, storetypes.StoreTypeIAVL, db)
	stateStore.MountStoreWithDB(receiptKey, storetypes.StoreTypeIAVL, db)
	stateStore.MountStoreWithDB(feesinkKey, storetypes.StoreTypeIAVL, db)
	if err := stateStore.LoadLatestVersion(); err != nil {
		tb.Fatalf("failed to load store: %v", err)
	}

	ctx := sdk.NewContext(stateStore, cmtproto.Header{}, false, log.NewNopLogger()).
		WithBlockTime(time.Unix(testBaseTime, 0)).
		WithBlockHeight(1)

	interfaceRegistry := codectypes.NewInterfaceRegistry()
	cdc := codec.NewProtoCodec(interfaceRegistry)

	shares := sharekeeper.NewKeeper(cdc, shareKey, log.NewNopLogger())
	receipts := receiptkeeper.NewKeeper(cdc, receiptKey, log.NewNopLogger())
	fees := feesinkkeeper.NewKeeper(cdc, feesinkKey, shares, testAuthority, log.NewNopLogger())
	custody := newMockCustody()
	router := newMockRouter(custody)

	k := NewKeeper(
		cdc,
		vestKey,
		shareAdapter{shares},
		receiptAdapter{receipts},
		feeAdapter{fees},
		custody,
		router,
		testAuthority,
		log.NewNopLogger(),
	)

	env := &testEnv{
		ctx:      ctx,
		keeper:   k,
		shares:   shares,
		receipts: receipts,
		fees:     fees,
		custody:  custody,
		router:   router,
		vestKey:  vestKey,
		cdc:      cdc,
	}
	if err := k.SetParams(ctx, types.Params{GlobalTaxRateBps: 0, DefaultDenom: "uusdc"}); err != nil {
		tb.Fatalf("failed to set params: %v", err)
	}
	return env
}

// advance moves block time forward and bumps the height
func (env *testEnv) advance(seconds int64) {
	env.ctx = env.ctx.
		WithBlockTime(env.ctx.BlockTime().Add(time.Duration(seconds) * time.Second)).
		WithBlockHeight(env.ctx.BlockHeight() + 1)
}

// defaultConfig is a 30-day pool at 15% expected rate with a 100 minimum
func defaultConfig() types.PoolConfig {
	return types.PoolConfig{
		LockDuration:      30 * 24 * 3600,
		MinInvestment:     math.NewInt(100),
		MaxInvestment:     math.ZeroInt(),
		UtilizationCap:    math.ZeroInt(),
		ExpectedRateBps:   1500,
		TaxRateBps:        0,
		AcceptingDeposits: true,
	}
}

func (env *testEnv) createPool(t *testing.T, config types.PoolConfig) *types.Pool {
	t.Helper()
	pool, err := env.keeper.CreatePool(env.ctx, testAuthority, CreatePoolParams{
		Name:      "Treasury Notes",
		Admin:     testAdmin,
		Custodian: testCustodian,
		Reporter:  testReporter,
		Config:    config,
	})
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	return pool
}

// invest funds the investor and runs a deposit, failing the test on error
func (env *testEnv) invest(t *testing.T, poolID, investor string, amount int64) *types.Investment {
	t.Helper()
	env.custody.fund(investor, "uusdc", amount)
	investment, _, err := env.keeper.Invest(env.ctx, poolID, investor, math.NewInt(amount), "")
	if err != nil {
		t.Fatalf("failed to invest: %v", err)
	}
	return investment
}

// feesinkAddress is where collected fee shares sit
func (env *testEnv) feesinkAddress() string {
	return feesinktypes.SinkAddress()
}

func (env *testEnv) assertLedgerInvariant(t *testing.T, poolID string) {
	t.Helper()
	if err := env.shares.CheckInvariant(env.ctx, poolID); err != nil {
		t.Fatalf("ledger invariant broken for %s: %v", poolID, err)
	}
}

// eventsOfType filters the context's emitted events by type
func eventsOfType(ctx sdk.Context, eventType string) []sdk.Event {
	var matched []sdk.Event
	for _, ev := range ctx.EventManager().Events() {
		if ev.Type == eventType {
			matched = append(matched, ev)
		}
	}
	return matched
}

func attrValue(ev sdk.Event, key string) string {
	for _, attr := range ev.Attributes {
		if attr.Key == key {
			return attr.Value
		}
	}
	return ""
}

// ============ Pool administration ============

// TestCreatePool tests pool registration and its share ledger
func TestCreatePool(t *testing.T) {
	env := setupEnv(t)
	pool := env.createPool(t, defaultConfig())

	if pool.PoolID != "pool-1" {
		t.Errorf("expected pool ID pool-1, got %s", pool.PoolID)
	}
	if pool.ShareDenom != "share/pool-1" {
		t.Errorf("expected share denom share/pool-1, got %s", pool.ShareDenom)
	}
	if !pool.IsActive {
		t.Error("expected new pool to be active")
	}
	if !pool.TotalDeposited.IsZero() || !pool.TotalWithdrawn.IsZero() {
		t.Errorf("expected zeroed counters, got %s deposited, %s withdrawn", pool.TotalDeposited, pool.TotalWithdrawn)
	}

	// The share ledger comes up with the pool
	ledger := env.shares.GetLedger(env.ctx, pool.PoolID)
	if ledger == nil {
		t.Fatal("expected share ledger for new pool")
	}
	if ledger.PoolID != pool.PoolID || ledger.Denom != pool.ShareDenom {
		t.Errorf("ledger mismatch: pool %s denom %s", ledger.PoolID, ledger.Denom)
	}

	// IDs are sequential
	second := env.createPool(t, defaultConfig())
	if second.PoolID != "pool-2" {
		t.Errorf("expected pool ID pool-2, got %s", second.PoolID)
	}
}

// TestCreatePoolValidation tests the config bounds and the authority gate
func TestCreatePoolValidation(t *testing.T) {
	env := setupEnv(t)

	params := CreatePoolParams{
		Name:      "Treasury Notes",
		Admin:     testAdmin,
		Custodian: testCustodian,
		Reporter:  testReporter,
		Config:    defaultConfig(),
	}

	// Only the authority may create pools
	if _, err := env.keeper.CreatePool(env.ctx, testAdmin, params); !errors.IsOf(err, types.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	// Lock duration below the 7-day floor
	bad := params
	bad.Config.LockDuration = 6 * 24 * 3600
	if _, err := env.keeper.CreatePool(env.ctx, testAuthority, bad); !errors.IsOf(err, types.ErrInvalidLockDuration) {
		t.Errorf("expected ErrInvalidLockDuration, got %v", err)
	}

	// Lock duration above the 730-day ceiling
	bad = params
	bad.Config.LockDuration = 731 * 24 * 3600
	if _, err := env.keeper.CreatePool(env.ctx, testAuthority, bad); !errors.IsOf(err, types.ErrInvalidLockDuration) {
		t.Errorf("expected ErrInvalidLockDuration, got %v", err)
	}

	// Expected rate above 100%
	bad = params
	bad.Config.ExpectedRateBps = 10001
	if _, err := env.keeper.CreatePool(env.ctx, testAuthority, bad); !errors.IsOf(err, types.ErrInvalidRate) {
		t.Errorf("expected ErrInvalidRate, got %v", err)
	}

	// Maximum below minimum
	bad = params
	bad.Config.MinInvestment = math.NewInt(1000)
	bad.Config.MaxInvestment = math.NewInt(500)
	if _, err := env.keeper.CreatePool(env.ctx, testAuthority, bad); !errors.IsOf(err, types.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}

	// Malformed admin address
	bad = params
	bad.Admin = "not-an-address"
	if _, err := env.keeper.CreatePool(env.ctx, testAuthority, bad); !errors.IsOf(err, types.ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}

	// Nothing was created along the way
	if pools := env.keeper.GetAllPools(env.ctx); len(pools) != 0 {
		t.Errorf("expected no pools, got %d", len(pools))
	}
}

// TestUpdatePoolConfig tests the wholesale config replacement and its gates
func TestUpdatePoolConfig(t *testing.T) {
	env := setupEnv(t)
	pool := env.createPool(t, defaultConfig())

	updated := defaultConfig()
	updated.ExpectedRateBps = 800
	updated.MinInvestment = math.NewInt(500)
	updated.AcceptingDeposits = false

	// A stranger cannot touch the config
	if err := env.keeper.UpdatePoolConfig(env.ctx, testInvestor, pool.PoolID, updated); !errors.IsOf(err, types.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	// The pool admin can
	if err := env.keeper.UpdatePoolConfig(env.ctx, testAdmin, pool.PoolID, updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := env.keeper.GetPool(env.ctx, pool.PoolID)
	if got.Config.ExpectedRateBps != 800 || !got.Config.MinInvestment.Equal(math.NewInt(500)) {
		t.Errorf("config not replaced: %+v", got.Config)
	}
	if got.Config.AcceptingDeposits {
		t.Error("expected deposits paused")
	}

	// So can the authority
	updated.AcceptingDeposits = true
	if err := env.keeper.UpdatePoolConfig(env.ctx, testAuthority, pool.PoolID, updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Replacement still validates bounds
	updated.ExpectedRateBps = -1
	if err := env.keeper.UpdatePoolConfig(env.ctx, testAdmin, pool.PoolID, updated); !errors.IsOf(err, types.ErrInvalidRate) {
		t.Errorf("expected ErrInvalidRate, got %v", err)
	}

	if err := env.keeper.UpdatePoolConfig(env.ctx, testAdmin, "pool-99", defaultConfig()); !errors.IsOf(err, types.ErrInvalidPool) {
		t.Errorf("expected ErrInvalidPool, got %v", err)
	}
}

// TestSetPoolActive tests pausing and resuming a pool
func TestSetPoolActive(t *testing.T) {
	env := setupEnv(t)
	pool := env.createPool(t, defaultConfig())

	if err := env.keeper.SetPoolActive(env.ctx, testAdmin, pool.PoolID, false); !errors.IsOf(err, types.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for pool admin, got %v", err)
	}

	if err := env.keeper.SetPoolActive(env.ctx, testAuthority, pool.PoolID, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.keeper.GetPool(env.ctx, pool.PoolID).IsActive {
		t.Error("expected pool inactive")
	}
	if len(eventsOfType(env.ctx, "pool_deactivated")) != 1 {
		t.Error("expected pool_deactivated event")
	}

	if err := env.keeper.SetPoolActive(env.ctx, testAuthority, pool.PoolID, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !env.keeper.GetPool(env.ctx, pool.PoolID).IsActive {
		t.Error("expected pool active again")
	}
}

// TestSetGlobalTaxRate tests the protocol default tax rate bounds
func TestSetGlobalTaxRate(t *testing.T) {
	env := setupEnv(t)

	if err := env.keeper.SetGlobalTaxRate(env.ctx, testInvestor, 100); !errors.IsOf(err, types.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if err := env.keeper.SetGlobalTaxRate(env.ctx, testAuthority, 10001); !errors.IsOf(err, types.ErrInvalidRate) {
		t.Errorf("expected ErrInvalidRate, got %v", err)
	}
	if err := env.keeper.SetGlobalTaxRate(env.ctx, testAuthority, -5); !errors.IsOf(err, types.ErrInvalidRate) {
		t.Errorf("expected ErrInvalidRate, got %v", err)
	}

	if err := env.keeper.SetGlobalTaxRate(env.ctx, testAuthority, 250); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := env.keeper.GetParams(env.ctx).GlobalTaxRateBps; got != 250 {
		t.Errorf("expected 250 bps, got %d", got)
	}
}

// TestSetProtocolTreasury tests treasury wiring through to the fee sink
func TestSetProtocolTreasury(t *testing.T) {
	env := setupEnv(t)

	if err := env.keeper.SetProtocolTreasury(env.ctx, testInvestor, testTreasury); !errors.IsOf(err, types.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if err := env.keeper.SetProtocolTreasury(env.ctx, testAuthority, "garbage"); err == nil {
		t.Error("expected error for malformed treasury address")
	}

	if err := env.keeper.SetProtocolTreasury(env.ctx, testAuthority, testTreasury); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := env.fees.GetTreasury(env.ctx).Address; got != testTreasury {
		t.Errorf("expected treasury %s, got %s", testTreasury, got)
	}
}

// TestEmergencyWithdraw tests the audited sweep of stray module balances
func TestEmergencyWithdraw(t *testing.T) {
	env := setupEnv(t)
	env.custody.module["uusdc"] = math.NewInt(5000)

	amount := math.NewInt(5000)

	// Treasury must be configured first
	if err := env.keeper.EmergencyWithdraw(env.ctx, testAuthority, "uusdc", amount, "stuck funds"); !errors.IsOf(err, types.ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
	if err := env.keeper.SetProtocolTreasury(env.ctx, testAuthority, testTreasury); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := env.keeper.EmergencyWithdraw(env.ctx, testInvestor, "uusdc", amount, "stuck funds"); !errors.IsOf(err, types.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if err := env.keeper.EmergencyWithdraw(env.ctx, testAuthority, "uusdc", amount, ""); !errors.IsOf(err, types.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount for missing reason, got %v", err)
	}

	if err := env.keeper.EmergencyWithdraw(env.ctx, testAuthority, "uusdc", amount, "router refund sweep"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := env.custody.accountBalance(testTreasury, "uusdc"); !got.Equal(amount) {
		t.Errorf("expected treasury to hold 5000, got %s", got)
	}

	// The reason travels with the event
	events := eventsOfType(env.ctx, "emergency_withdraw")
	if len(events) != 1 {
		t.Fatalf("expected one emergency_withdraw event, got %d", len(events))
	}
	if got := attrValue(events[0], "reason"); got != "router refund sweep" {
		t.Errorf("expected reason attribute, got %q", got)
	}
}

// TestPoolStats tests the aggregated pool view
func TestPoolStats(t *testing.T) {
	env := setupEnv(t)
	pool := env.createPool(t, defaultConfig())
	env.invest(t, pool.PoolID, testInvestor, 10000)
	env.invest(t, pool.PoolID, testInvestor2, 5000)

	stats := env.keeper.GetPoolStats(env.ctx, pool.PoolID)
	if stats == nil {
		t.Fatal("expected stats")
	}
	if !stats.TotalDeposited.Equal(math.NewInt(15000)) {
		t.Errorf("expected 15000 deposited, got %s", stats.TotalDeposited)
	}
	if !stats.TotalSupply.Equal(math.NewInt(15000)) {
		t.Errorf("expected supply 15000, got %s", stats.TotalSupply)
	}
	if stats.ActiveInvestments != 2 {
		t.Errorf("expected 2 active investments, got %d", stats.ActiveInvestments)
	}

	if env.keeper.GetPoolStats(env.ctx, "pool-99") != nil {
		t.Error("expected nil stats for unknown pool")
	}
}
