package keeper

import (
	"testing"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"

	"github.com/eden-finance/vest-sub001/x/vest/types"
)

// TestInvestFirstDeposit tests the 1:1 mint into an empty pool
func TestInvestFirstDeposit(t *testing.T) {
	env := setupEnv(t)
	pool := env.createPool(t, defaultConfig())

	env.custody.fund(testInvestor, "uusdc", 10000)
	investment, netShares, err := env.keeper.Invest(env.ctx, pool.PoolID, testInvestor, math.NewInt(10000), "salary lockup")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if investment.InvestmentID != "inv-1" {
		t.Errorf("expected investment ID inv-1, got %s", investment.InvestmentID)
	}
	if !netShares.Equal(math.NewInt(10000)) {
		t.Errorf("expected 10000 net shares for the first deposit, got %s", netShares)
	}
	if got := env.shares.GetBalance(env.ctx, pool.PoolID, testInvestor); !got.Equal(math.NewInt(10000)) {
		t.Errorf("expected investor balance 10000, got %s", got)
	}
	if got := env.shares.GetTotalSupply(env.ctx, pool.PoolID); !got.Equal(math.NewInt(10000)) {
		t.Errorf("expected supply 10000, got %s", got)
	}

	// Settlement asset moved to pool custody
	if got := env.custody.CustodyBalance(env.ctx, pool.PoolID, "uusdc"); !got.Equal(math.NewInt(10000)) {
		t.Errorf("expected custody 10000, got %s", got)
	}
	if got := env.custody.accountBalance(testInvestor, "uusdc"); !got.IsZero() {
		t.Errorf("expected investor drained, got %s", got)
	}

	// Maturity is deposit time plus the lock
	wantMaturity := env.ctx.BlockTime().Unix() + pool.Config.LockDuration
	if investment.MaturityTime != wantMaturity {
		t.Errorf("expected maturity %d, got %d", wantMaturity, investment.MaturityTime)
	}
	if investment.Status() != types.StatusAccruing {
		t.Errorf("expected accruing status, got %s", investment.Status())
	}
	if investment.Title != "salary lockup" {
		t.Errorf("expected title preserved, got %q", investment.Title)
	}

	// A receipt exists and is bound to the investment
	receipt := env.receipts.Get(env.ctx, investment.ReceiptID)
	if receipt == nil {
		t.Fatal("expected receipt")
	}
	if receipt.InvestmentID != investment.InvestmentID || receipt.Investor != testInvestor {
		t.Errorf("receipt bound wrong: %+v", receipt)
	}
	if got := env.keeper.GetInvestmentByReceipt(env.ctx, investment.ReceiptID); got == nil || got.InvestmentID != investment.InvestmentID {
		t.Error("expected receipt lookup to resolve the investment")
	}

	if got := env.keeper.GetPool(env.ctx, pool.PoolID).TotalDeposited; !got.Equal(math.NewInt(10000)) {
		t.Errorf("expected pool deposited 10000, got %s", got)
	}
	env.assertLedgerInvariant(t, pool.PoolID)
}

// TestInvestProportionalShares tests dilution against the pre-deposit totals
func TestInvestProportionalShares(t *testing.T) {
	env := setupEnv(t)
	pool := env.createPool(t, defaultConfig())

	env.invest(t, pool.PoolID, testInvestor, 10000)

	// 5000 * 10000 / 10000 = 5000
	env.custody.fund(testInvestor2, "uusdc", 5000)
	_, netShares, err := env.keeper.Invest(env.ctx, pool.PoolID, testInvestor2, math.NewInt(5000), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !netShares.Equal(math.NewInt(5000)) {
		t.Errorf("expected 5000 shares, got %s", netShares)
	}
	if got := env.shares.GetTotalSupply(env.ctx, pool.PoolID); !got.Equal(math.NewInt(15000)) {
		t.Errorf("expected supply 15000, got %s", got)
	}

	// 3333 * 15000 / 15000 = 3333, truncation exercised further below
	env.custody.fund(testInvestor, "uusdc", 3333)
	_, netShares, err = env.keeper.Invest(env.ctx, pool.PoolID, testInvestor, math.NewInt(3333), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !netShares.Equal(math.NewInt(3333)) {
		t.Errorf("expected 3333 shares, got %s", netShares)
	}
	env.assertLedgerInvariant(t, pool.PoolID)
}

// TestInvestExpectedReturn tests the projected-return formula with truncation:
// 10000 at 1500 bps over 30 days is 10000*1500*2592000/(10000*31536000),
// which truncates to 123.
func TestInvestExpectedReturn(t *testing.T) {
	env := setupEnv(t)
	pool := env.createPool(t, defaultConfig())

	investment := env.invest(t, pool.PoolID, testInvestor, 10000)
	if !investment.ExpectedReturn.Equal(math.NewInt(123)) {
		t.Errorf("expected return 123, got %s", investment.ExpectedReturn)
	}

	// A full year at 15% is exact: 10000 * 1500 / 10000 = 1500
	yearCfg := defaultConfig()
	yearCfg.LockDuration = 365 * 24 * 3600
	yearPool := env.createPool(t, yearCfg)
	investment = env.invest(t, yearPool.PoolID, testInvestor, 10000)
	if !investment.ExpectedReturn.Equal(math.NewInt(1500)) {
		t.Errorf("expected return 1500, got %s", investment.ExpectedReturn)
	}
}

// TestInvestTax tests that the tax cut is pulled from the minted shares
// exactly once and attributed to the pool in the fee sink
func TestInvestTax(t *testing.T) {
	env := setupEnv(t)
	cfg := defaultConfig()
	cfg.TaxRateBps = 250
	pool := env.createPool(t, cfg)

	env.custody.fund(testInvestor, "uusdc", 10000)
	_, netShares, err := env.keeper.Invest(env.ctx, pool.PoolID, testInvestor, math.NewInt(10000), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 10000 minted, 250 to the sink, 9750 kept
	if !netShares.Equal(math.NewInt(9750)) {
		t.Errorf("expected 9750 net shares, got %s", netShares)
	}
	if got := env.shares.GetBalance(env.ctx, pool.PoolID, testInvestor); !got.Equal(math.NewInt(9750)) {
		t.Errorf("expected investor balance 9750, got %s", got)
	}
	if got := env.shares.GetTotalSupply(env.ctx, pool.PoolID); !got.Equal(math.NewInt(10000)) {
		t.Errorf("expected supply 10000, got %s", got)
	}

	// One collection, attributed to this pool
	record := env.fees.GetPoolFees(env.ctx, pool.PoolID)
	if record == nil {
		t.Fatal("expected fee attribution")
	}
	if !record.TotalCollected.Equal(math.NewInt(250)) || record.Collections != 1 {
		t.Errorf("expected 250 over 1 collection, got %s over %d", record.TotalCollected, record.Collections)
	}
	env.assertLedgerInvariant(t, pool.PoolID)
}

// TestInvestGlobalTaxFallback tests that a pool with no tax rate of its own
// uses the protocol default
func TestInvestGlobalTaxFallback(t *testing.T) {
	env := setupEnv(t)
	if err := env.keeper.SetGlobalTaxRate(env.ctx, testAuthority, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pool := env.createPool(t, defaultConfig()) // TaxRateBps 0

	env.custody.fund(testInvestor, "uusdc", 10000)
	_, netShares, err := env.keeper.Invest(env.ctx, pool.PoolID, testInvestor, math.NewInt(10000), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !netShares.Equal(math.NewInt(9900)) {
		t.Errorf("expected 9900 net shares at 100 bps, got %s", netShares)
	}

	// A pool rate overrides the default
	cfg := defaultConfig()
	cfg.TaxRateBps = 500
	override := env.createPool(t, cfg)
	env.custody.fund(testInvestor, "uusdc", 10000)
	_, netShares, err = env.keeper.Invest(env.ctx, override.PoolID, testInvestor, math.NewInt(10000), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !netShares.Equal(math.NewInt(9500)) {
		t.Errorf("expected 9500 net shares at 500 bps, got %s", netShares)
	}
}

// TestInvestBounds tests the deposit amount gates
func TestInvestBounds(t *testing.T) {
	env := setupEnv(t)
	cfg := defaultConfig()
	cfg.MinInvestment = math.NewInt(1000)
	cfg.MaxInvestment = math.NewInt(50000)
	cfg.UtilizationCap = math.NewInt(60000)
	pool := env.createPool(t, cfg)

	env.custody.fund(testInvestor, "uusdc", 200000)

	if _, _, err := env.keeper.Invest(env.ctx, pool.PoolID, testInvestor, math.NewInt(999), ""); !errors.IsOf(err, types.ErrBelowMinimum) {
		t.Errorf("expected ErrBelowMinimum, got %v", err)
	}
	if _, _, err := env.keeper.Invest(env.ctx, pool.PoolID, testInvestor, math.NewInt(50001), ""); !errors.IsOf(err, types.ErrExceedsMaximum) {
		t.Errorf("expected ErrExceedsMaximum, got %v", err)
	}
	if _, _, err := env.keeper.Invest(env.ctx, pool.PoolID, testInvestor, math.NewInt(0), ""); !errors.IsOf(err, types.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}

	// Exactly at the bounds is fine
	if _, _, err := env.keeper.Invest(env.ctx, pool.PoolID, testInvestor, math.NewInt(1000), ""); err != nil {
		t.Fatalf("unexpected error at minimum: %v", err)
	}
	if _, _, err := env.keeper.Invest(env.ctx, pool.PoolID, testInvestor, math.NewInt(50000), ""); err != nil {
		t.Fatalf("unexpected error at maximum: %v", err)
	}

	// 51000 in the pool; another 10000 would cross the 60000 cap
	if _, _, err := env.keeper.Invest(env.ctx, pool.PoolID, testInvestor, math.NewInt(10000), ""); !errors.IsOf(err, types.ErrExceedsCap) {
		t.Errorf("expected ErrExceedsCap, got %v", err)
	}
	// Filling exactly to the cap is fine
	if _, _, err := env.keeper.Invest(env.ctx, pool.PoolID, testInvestor, math.NewInt(9000), ""); err != nil {
		t.Fatalf("unexpected error at cap: %v", err)
	}
}

// TestInvestPoolGates tests the pool availability checks
func TestInvestPoolGates(t *testing.T) {
	env := setupEnv(t)
	env.custody.fund(testInvestor, "uusdc", 10000)
	amount := math.NewInt(10000)

	if _, _, err := env.keeper.Invest(env.ctx, "pool-99", testInvestor, amount, ""); !errors.IsOf(err, types.ErrInvalidPool) {
		t.Errorf("expected ErrInvalidPool, got %v", err)
	}

	pool := env.createPool(t, defaultConfig())
	if err := env.keeper.SetPoolActive(env.ctx, testAuthority, pool.PoolID, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := env.keeper.Invest(env.ctx, pool.PoolID, testInvestor, amount, ""); !errors.IsOf(err, types.ErrPoolNotActive) {
		t.Errorf("expected ErrPoolNotActive, got %v", err)
	}

	if err := env.keeper.SetPoolActive(env.ctx, testAuthority, pool.PoolID, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	paused := defaultConfig()
	paused.AcceptingDeposits = false
	if err := env.keeper.UpdatePoolConfig(env.ctx, testAdmin, pool.PoolID, paused); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := env.keeper.Invest(env.ctx, pool.PoolID, testInvestor, amount, ""); !errors.IsOf(err, types.ErrDepositsPaused) {
		t.Errorf("expected ErrDepositsPaused, got %v", err)
	}
}

// TestInvestInsufficientFunds tests that a deposit the investor cannot cover
// leaves no trace
func TestInvestInsufficientFunds(t *testing.T) {
	env := setupEnv(t)
	pool := env.createPool(t, defaultConfig())

	env.custody.fund(testInvestor, "uusdc", 500)
	_, _, err := env.keeper.Invest(env.ctx, pool.PoolID, testInvestor, math.NewInt(10000), "")
	if err == nil {
		t.Fatal("expected error")
	}

	if got := env.shares.GetTotalSupply(env.ctx, pool.PoolID); !got.IsZero() {
		t.Errorf("expected no shares minted, got %s", got)
	}
	if got := env.keeper.GetAllInvestments(env.ctx); len(got) != 0 {
		t.Errorf("expected no investments, got %d", len(got))
	}
	if got := env.custody.accountBalance(testInvestor, "uusdc"); !got.Equal(math.NewInt(500)) {
		t.Errorf("expected investor funds untouched, got %s", got)
	}
}

// TestInvestZeroShareDeposit tests that a deposit too small to mint a single
// share is rejected rather than silently swallowed
func TestInvestZeroShareDeposit(t *testing.T) {
	env := setupEnv(t)
	cfg := defaultConfig()
	cfg.MinInvestment = math.NewInt(1)
	pool := env.createPool(t, cfg)

	env.invest(t, pool.PoolID, testInvestor, 10000)

	// Shrink the supply far below the deposited principal so the
	// proportional mint truncates to zero: 500 * 10 / 10000 = 0
	if err := env.shares.Burn(env.ctx, pool.PoolID, pool.PoolID, testInvestor, math.NewInt(9990)); err != nil {
		t.Fatalf("failed to burn: %v", err)
	}

	env.custody.fund(testInvestor2, "uusdc", 500)
	_, _, err := env.keeper.Invest(env.ctx, pool.PoolID, testInvestor2, math.NewInt(500), "")
	if !errors.IsOf(err, types.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount for zero-share deposit, got %v", err)
	}
}

// TestUpdatePoolConfigFreezesExpectedReturn tests that a rate change only
// affects later deposits
func TestUpdatePoolConfigFreezesExpectedReturn(t *testing.T) {
	env := setupEnv(t)
	pool := env.createPool(t, defaultConfig())

	first := env.invest(t, pool.PoolID, testInvestor, 10000)
	if !first.ExpectedReturn.Equal(math.NewInt(123)) {
		t.Fatalf("expected return 123, got %s", first.ExpectedReturn)
	}

	// Halve the rate
	updated := defaultConfig()
	updated.ExpectedRateBps = 750
	if err := env.keeper.UpdatePoolConfig(env.ctx, testAdmin, pool.PoolID, updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The first investment keeps the return computed at acceptance
	if got := env.keeper.GetInvestment(env.ctx, first.InvestmentID); !got.ExpectedReturn.Equal(math.NewInt(123)) {
		t.Errorf("expected frozen return 123, got %s", got.ExpectedReturn)
	}

	// A new deposit uses the new rate: 10000*750*2592000/(10000*31536000) = 61
	second := env.invest(t, pool.PoolID, testInvestor2, 10000)
	if !second.ExpectedReturn.Equal(math.NewInt(61)) {
		t.Errorf("expected return 61 at the new rate, got %s", second.ExpectedReturn)
	}
}

// TestInvestEvent tests the deposit event payload
func TestInvestEvent(t *testing.T) {
	env := setupEnv(t)
	cfg := defaultConfig()
	cfg.TaxRateBps = 250
	pool := env.createPool(t, cfg)

	env.custody.fund(testInvestor, "uusdc", 10000)
	if _, _, err := env.keeper.Invest(env.ctx, pool.PoolID, testInvestor, math.NewInt(10000), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := eventsOfType(env.ctx, "investment_created")
	if len(events) != 1 {
		t.Fatalf("expected one investment_created event, got %d", len(events))
	}
	ev := events[0]
	if attrValue(ev, "pool_id") != pool.PoolID ||
		attrValue(ev, "investor") != testInvestor ||
		attrValue(ev, "receipt_id") != "rcpt-1" {
		t.Errorf("event identity attributes wrong: %+v", ev)
	}
	if attrValue(ev, "amount") != "10000" ||
		attrValue(ev, "net_shares") != "9750" ||
		attrValue(ev, "fee_shares") != "250" {
		t.Errorf("event amount attributes wrong: %+v", ev)
	}
}
