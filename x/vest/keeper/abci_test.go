package keeper

import (
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// runEndBlocker calls the end blocker against a fresh event manager and
// returns the maturity announcements it produced
func runEndBlocker(t *testing.T, env *testEnv, k *Keeper) []sdk.Event {
	t.Helper()
	ctx := env.ctx.WithEventManager(sdk.NewEventManager())
	if err := k.EndBlocker(ctx); err != nil {
		t.Fatalf("end blocker failed: %v", err)
	}
	return eventsOfType(ctx, "maturity_reached")
}

// TestEndBlockerAnnouncesOnce tests that each reached maturity is announced
// in exactly one block
func TestEndBlockerAnnouncesOnce(t *testing.T) {
	env := setupEnv(t)
	cfg := defaultConfig()
	cfg.LockDuration = 7 * 24 * 3600
	pool := env.createPool(t, cfg)

	first := env.invest(t, pool.PoolID, testInvestor, 10000)
	env.advance(24 * 3600)
	second := env.invest(t, pool.PoolID, testInvestor2, 5000) // matures a day later

	// Nothing has matured yet
	if got := runEndBlocker(t, env, env.keeper); len(got) != 0 {
		t.Errorf("expected no announcements, got %d", len(got))
	}

	// First maturity reached
	env.advance(6 * 24 * 3600)
	announced := runEndBlocker(t, env, env.keeper)
	if len(announced) != 1 {
		t.Fatalf("expected one announcement, got %d", len(announced))
	}
	if attrValue(announced[0], "investment_id") != first.InvestmentID {
		t.Errorf("expected %s announced, got %s", first.InvestmentID, attrValue(announced[0], "investment_id"))
	}

	// Same block again: the watermark suppresses a repeat
	if got := runEndBlocker(t, env, env.keeper); len(got) != 0 {
		t.Errorf("expected no repeat announcement, got %d", len(got))
	}

	// Next day the second one comes due, and only it is announced
	env.advance(24 * 3600)
	announced = runEndBlocker(t, env, env.keeper)
	if len(announced) != 1 {
		t.Fatalf("expected one announcement, got %d", len(announced))
	}
	if attrValue(announced[0], "investment_id") != second.InvestmentID {
		t.Errorf("expected %s announced, got %s", second.InvestmentID, attrValue(announced[0], "investment_id"))
	}
}

// TestEndBlockerSkipsHandled tests that withdrawn and already-reported
// positions are not announced
func TestEndBlockerSkipsHandled(t *testing.T) {
	env := setupEnv(t)
	cfg := defaultConfig()
	cfg.LockDuration = 7 * 24 * 3600
	pool := env.createPool(t, cfg)

	first := env.invest(t, pool.PoolID, testInvestor, 10000)
	second := env.invest(t, pool.PoolID, testInvestor2, 5000)
	third := env.invest(t, pool.PoolID, testInvestor, 2000)

	env.advance(7 * 24 * 3600)

	// Handle two of the three before the block closes
	env.custody.fundCustody(pool.PoolID, "uusdc", 200)
	if _, _, err := env.keeper.Withdraw(env.ctx, pool.PoolID, testInvestor, first.ReceiptID, math.NewInt(10000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := env.keeper.SetActualReturns(env.ctx, testReporter, pool.PoolID,
		[]string{second.InvestmentID}, []math.Int{math.NewInt(50)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	announced := runEndBlocker(t, env, env.keeper)
	if len(announced) != 1 {
		t.Fatalf("expected one announcement, got %d", len(announced))
	}
	if attrValue(announced[0], "investment_id") != third.InvestmentID {
		t.Errorf("expected %s announced, got %s", third.InvestmentID, attrValue(announced[0], "investment_id"))
	}
}

// TestEndBlockerRebuildsIndex tests that a keeper starting cold repopulates
// its maturity index from the store before scanning
func TestEndBlockerRebuildsIndex(t *testing.T) {
	env := setupEnv(t)
	cfg := defaultConfig()
	cfg.LockDuration = 7 * 24 * 3600
	pool := env.createPool(t, cfg)
	investment := env.invest(t, pool.PoolID, testInvestor, 10000)

	// A second keeper over the same stores, as after a restart
	restarted := NewKeeper(
		env.cdc,
		env.vestKey,
		shareAdapter{env.shares},
		receiptAdapter{env.receipts},
		feeAdapter{env.fees},
		env.custody,
		env.router,
		testAuthority,
		log.NewNopLogger(),
	)

	env.advance(7 * 24 * 3600)
	announced := runEndBlocker(t, env, restarted)
	if len(announced) != 1 {
		t.Fatalf("expected one announcement after rebuild, got %d", len(announced))
	}
	if attrValue(announced[0], "investment_id") != investment.InvestmentID {
		t.Errorf("expected %s announced, got %s", investment.InvestmentID, attrValue(announced[0], "investment_id"))
	}
}

// TestPendingMaturities tests the reporter's polling view
func TestPendingMaturities(t *testing.T) {
	env := setupEnv(t)
	cfg := defaultConfig()
	cfg.LockDuration = 7 * 24 * 3600
	pool := env.createPool(t, cfg)

	first := env.invest(t, pool.PoolID, testInvestor, 10000)
	second := env.invest(t, pool.PoolID, testInvestor2, 5000)
	env.advance(24 * 3600)
	env.invest(t, pool.PoolID, testInvestor, 2000) // due a day after the others

	dueAt := first.MaturityTime

	pending := env.keeper.PendingMaturities(env.ctx, dueAt, 0)
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}

	// Limit caps the page
	if got := env.keeper.PendingMaturities(env.ctx, dueAt, 1); len(got) != 1 {
		t.Errorf("expected 1 pending with limit, got %d", len(got))
	}

	// A reported position drops out of the view
	env.advance(6 * 24 * 3600)
	if _, err := env.keeper.SetActualReturns(env.ctx, testReporter, pool.PoolID,
		[]string{second.InvestmentID}, []math.Int{math.NewInt(50)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pending = env.keeper.PendingMaturities(env.ctx, dueAt, 0)
	if len(pending) != 1 || pending[0].InvestmentID != first.InvestmentID {
		t.Errorf("expected only %s pending, got %d entries", first.InvestmentID, len(pending))
	}
}
