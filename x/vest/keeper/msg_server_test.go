package keeper

import (
	"testing"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"

	"github.com/eden-finance/vest-sub001/x/vest/types"
)

// TestMsgInvest tests the deposit message end to end
func TestMsgInvest(t *testing.T) {
	env := setupEnv(t)
	pool := env.createPool(t, defaultConfig())
	srv := NewMsgServerImpl(env.keeper)

	env.custody.fund(testInvestor, "uusdc", 10000)
	resp, err := srv.Invest(env.ctx, &types.MsgInvest{
		Investor: testInvestor,
		PoolID:   pool.PoolID,
		Amount:   "10000",
		Title:    "house fund",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.InvestmentID != "inv-1" || resp.ReceiptID != "rcpt-1" {
		t.Errorf("expected inv-1/rcpt-1, got %s/%s", resp.InvestmentID, resp.ReceiptID)
	}
	if resp.NetShares != "10000" {
		t.Errorf("expected net shares 10000, got %s", resp.NetShares)
	}
	if resp.ExpectedReturn != "123" {
		t.Errorf("expected return 123, got %s", resp.ExpectedReturn)
	}
	if resp.MaturityTime != env.ctx.BlockTime().Unix()+pool.Config.LockDuration {
		t.Errorf("unexpected maturity time %d", resp.MaturityTime)
	}

	// Events crossed from the cached context to the caller's
	if len(eventsOfType(env.ctx, "investment_created")) != 1 {
		t.Error("expected investment_created event on the outer context")
	}

	// Malformed amounts never reach the keeper
	if _, err := srv.Invest(env.ctx, &types.MsgInvest{
		Investor: testInvestor,
		PoolID:   pool.PoolID,
		Amount:   "ten thousand",
	}); !errors.IsOf(err, types.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

// TestMsgWithdraw tests the withdrawal message and its response payload
func TestMsgWithdraw(t *testing.T) {
	env := setupEnv(t)
	pool := env.createPool(t, defaultConfig())
	investment := env.invest(t, pool.PoolID, testInvestor, 10000)
	srv := NewMsgServerImpl(env.keeper)

	env.advance(pool.Config.LockDuration)
	env.custody.fundCustody(pool.PoolID, "uusdc", 123)

	resp, err := srv.Withdraw(env.ctx, &types.MsgWithdraw{
		Investor:    testInvestor,
		PoolID:      pool.PoolID,
		ReceiptID:   investment.ReceiptID,
		ShareAmount: "10000",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Payout != "10123" || resp.SharesBurned != "10000" {
		t.Errorf("expected payout 10123 burning 10000, got %s burning %s", resp.Payout, resp.SharesBurned)
	}
}

// TestMsgWithdrawRollsBack tests that a failure late in the withdrawal leaves
// every earlier step undone. Custody is underfunded, so the payout fails
// after the share burn; the burn must not stick.
func TestMsgWithdrawRollsBack(t *testing.T) {
	env := setupEnv(t)
	pool := env.createPool(t, defaultConfig())
	investment := env.invest(t, pool.PoolID, testInvestor, 10000)
	srv := NewMsgServerImpl(env.keeper)

	env.advance(pool.Config.LockDuration)
	// Custody holds only the 10000 principal; the 10123 payout cannot clear

	_, err := srv.Withdraw(env.ctx, &types.MsgWithdraw{
		Investor:    testInvestor,
		PoolID:      pool.PoolID,
		ReceiptID:   investment.ReceiptID,
		ShareAmount: "10000",
	})
	if err == nil {
		t.Fatal("expected error")
	}

	// The burn was rolled back with the rest
	if got := env.shares.GetBalance(env.ctx, pool.PoolID, testInvestor); !got.Equal(math.NewInt(10000)) {
		t.Errorf("expected balance 10000 after rollback, got %s", got)
	}
	if got := env.shares.GetTotalSupply(env.ctx, pool.PoolID); !got.Equal(math.NewInt(10000)) {
		t.Errorf("expected supply 10000 after rollback, got %s", got)
	}
	if got := env.keeper.GetInvestment(env.ctx, investment.InvestmentID); got.IsWithdrawn {
		t.Error("expected investment still open")
	}
	if env.receipts.Get(env.ctx, investment.ReceiptID) == nil {
		t.Error("expected receipt still live")
	}
	if len(eventsOfType(env.ctx, "investment_withdrawn")) != 0 {
		t.Error("expected no withdrawal event after rollback")
	}

	// Topping up custody makes the same message succeed
	env.custody.fundCustody(pool.PoolID, "uusdc", 123)
	if _, err := srv.Withdraw(env.ctx, &types.MsgWithdraw{
		Investor:    testInvestor,
		PoolID:      pool.PoolID,
		ReceiptID:   investment.ReceiptID,
		ShareAmount: "10000",
	}); err != nil {
		t.Fatalf("unexpected error after top-up: %v", err)
	}
	env.assertLedgerInvariant(t, pool.PoolID)
}

// TestMsgInvestWithSwapRollsBack tests that a swap inconsistency leaves no
// state or events behind on the message path
func TestMsgInvestWithSwapRollsBack(t *testing.T) {
	env := setupEnv(t)
	pool := env.createPool(t, defaultConfig())
	srv := NewMsgServerImpl(env.keeper)

	env.custody.fund(testInvestor, "uatom", 500)
	env.router.script(1000, 1000, 999)

	_, err := srv.InvestWithSwap(env.ctx, &types.MsgInvestWithSwap{
		Investor:     testInvestor,
		PoolID:       pool.PoolID,
		TokenIn:      "uatom",
		AmountIn:     "500",
		MinAmountOut: "950",
		Deadline:     env.ctx.BlockTime().Unix() + 60,
	})
	if !errors.IsOf(err, types.ErrSwapInconsistency) {
		t.Fatalf("expected ErrSwapInconsistency, got %v", err)
	}

	if got := env.keeper.GetAllInvestments(env.ctx); len(got) != 0 {
		t.Errorf("expected no investments, got %d", len(got))
	}
	if got := env.receipts.GetAll(env.ctx); len(got) != 0 {
		t.Errorf("expected no receipts, got %d", len(got))
	}
	if got := env.shares.GetTotalSupply(env.ctx, pool.PoolID); !got.IsZero() {
		t.Errorf("expected no shares, got %s", got)
	}
	if len(eventsOfType(env.ctx, "swap_executed")) != 0 || len(eventsOfType(env.ctx, "investment_created")) != 0 {
		t.Error("expected no events after rollback")
	}
}

// TestMsgGuard tests the per-pool operation guard on the investor paths
func TestMsgGuard(t *testing.T) {
	env := setupEnv(t)
	pool := env.createPool(t, defaultConfig())
	srv := NewMsgServerImpl(env.keeper)
	env.custody.fund(testInvestor, "uusdc", 20000)

	// Simulate an operation already in flight on this pool
	if err := env.keeper.guard.Acquire(pool.PoolID); err != nil {
		t.Fatalf("failed to acquire guard: %v", err)
	}

	_, err := srv.Invest(env.ctx, &types.MsgInvest{Investor: testInvestor, PoolID: pool.PoolID, Amount: "10000"})
	if !errors.IsOf(err, types.ErrReentrantCall) {
		t.Errorf("expected ErrReentrantCall, got %v", err)
	}

	// Other pools are unaffected
	other := env.createPool(t, defaultConfig())
	if _, err := srv.Invest(env.ctx, &types.MsgInvest{Investor: testInvestor, PoolID: other.PoolID, Amount: "10000"}); err != nil {
		t.Fatalf("unexpected error on other pool: %v", err)
	}

	env.keeper.guard.Release(pool.PoolID)
	if _, err := srv.Invest(env.ctx, &types.MsgInvest{Investor: testInvestor, PoolID: pool.PoolID, Amount: "10000"}); err != nil {
		t.Fatalf("unexpected error after release: %v", err)
	}
}

// TestMsgGuardReleasesOnFailure tests that a failed operation does not leave
// the pool wedged
func TestMsgGuardReleasesOnFailure(t *testing.T) {
	env := setupEnv(t)
	pool := env.createPool(t, defaultConfig())
	srv := NewMsgServerImpl(env.keeper)

	// Investor holds nothing, so this fails inside the keeper
	if _, err := srv.Invest(env.ctx, &types.MsgInvest{Investor: testInvestor, PoolID: pool.PoolID, Amount: "10000"}); err == nil {
		t.Fatal("expected error")
	}

	// The guard was released on the way out
	env.custody.fund(testInvestor, "uusdc", 10000)
	if _, err := srv.Invest(env.ctx, &types.MsgInvest{Investor: testInvestor, PoolID: pool.PoolID, Amount: "10000"}); err != nil {
		t.Fatalf("unexpected error after failed attempt: %v", err)
	}
}

// TestMsgCreatePool tests pool creation through the message path
func TestMsgCreatePool(t *testing.T) {
	env := setupEnv(t)
	srv := NewMsgServerImpl(env.keeper)

	msg := &types.MsgCreatePool{
		Authority: testAuthority,
		Name:      "Treasury Notes",
		Admin:     testAdmin,
		Custodian: testCustodian,
		Reporter:  testReporter,
		Config: types.MsgPoolConfig{
			LockDuration:      30 * 24 * 3600,
			MinInvestment:     "100",
			MaxInvestment:     "0",
			UtilizationCap:    "0",
			ExpectedRateBps:   1500,
			TaxRateBps:        0,
			AcceptingDeposits: true,
		},
	}

	resp, err := srv.CreatePool(env.ctx, msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.PoolID != "pool-1" || resp.ShareDenom != "share/pool-1" {
		t.Errorf("expected pool-1/share/pool-1, got %s/%s", resp.PoolID, resp.ShareDenom)
	}

	// Authority gate holds on the message path too
	bad := *msg
	bad.Authority = testAdmin
	if _, err := srv.CreatePool(env.ctx, &bad); !errors.IsOf(err, types.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	// Unparseable amounts are rejected before the keeper runs
	bad = *msg
	bad.Config.MinInvestment = "lots"
	if _, err := srv.CreatePool(env.ctx, &bad); !errors.IsOf(err, types.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

// TestMsgSetActualReturns tests the batch report message
func TestMsgSetActualReturns(t *testing.T) {
	env := setupEnv(t)
	pool := env.createPool(t, defaultConfig())
	investment := env.invest(t, pool.PoolID, testInvestor, 10000)
	srv := NewMsgServerImpl(env.keeper)

	env.advance(pool.Config.LockDuration)
	resp, err := srv.SetActualReturns(env.ctx, &types.MsgSetActualReturns{
		Reporter:      testReporter,
		PoolID:        pool.PoolID,
		InvestmentIDs: []string{investment.InvestmentID, "inv-99"},
		ActualReturns: []string{"200", "50"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Applied != 1 {
		t.Errorf("expected 1 applied, got %d", resp.Applied)
	}

	if _, err := srv.SetActualReturns(env.ctx, &types.MsgSetActualReturns{
		Reporter:      testReporter,
		PoolID:        pool.PoolID,
		InvestmentIDs: []string{investment.InvestmentID},
		ActualReturns: []string{"2OO"},
	}); !errors.IsOf(err, types.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount for malformed return, got %v", err)
	}
}

// TestMsgAdminOps tests the remaining governance messages in one pass
func TestMsgAdminOps(t *testing.T) {
	env := setupEnv(t)
	pool := env.createPool(t, defaultConfig())
	srv := NewMsgServerImpl(env.keeper)

	if _, err := srv.SetGlobalTaxRate(env.ctx, &types.MsgSetGlobalTaxRate{Authority: testAuthority, TaxRateBps: 150}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := env.keeper.GetParams(env.ctx).GlobalTaxRateBps; got != 150 {
		t.Errorf("expected 150 bps, got %d", got)
	}

	if _, err := srv.SetProtocolTreasury(env.ctx, &types.MsgSetProtocolTreasury{Authority: testAuthority, Address: testTreasury}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := srv.SetPoolActive(env.ctx, &types.MsgSetPoolActive{Authority: testAuthority, PoolID: pool.PoolID, Active: false}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.keeper.GetPool(env.ctx, pool.PoolID).IsActive {
		t.Error("expected pool deactivated")
	}

	if _, err := srv.UpdatePoolConfig(env.ctx, &types.MsgUpdatePoolConfig{
		Creator: testAdmin,
		PoolID:  pool.PoolID,
		Config: types.MsgPoolConfig{
			LockDuration:      60 * 24 * 3600,
			MinInvestment:     "500",
			MaxInvestment:     "0",
			UtilizationCap:    "0",
			ExpectedRateBps:   900,
			TaxRateBps:        0,
			AcceptingDeposits: true,
		},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := env.keeper.GetPool(env.ctx, pool.PoolID).Config.ExpectedRateBps; got != 900 {
		t.Errorf("expected 900 bps, got %d", got)
	}

	env.custody.module["uusdc"] = math.NewInt(750)
	if _, err := srv.EmergencyWithdraw(env.ctx, &types.MsgEmergencyWithdraw{
		Authority: testAuthority,
		Denom:     "uusdc",
		Amount:    "750",
		Reason:    "orphaned swap residue",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := env.custody.accountBalance(testTreasury, "uusdc"); !got.Equal(math.NewInt(750)) {
		t.Errorf("expected treasury to hold 750, got %s", got)
	}
}
