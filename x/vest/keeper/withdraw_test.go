package keeper

import (
	"testing"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"

	"github.com/eden-finance/vest-sub001/x/vest/types"
)

// TestWithdraw tests the full payout path with the projected return as the
// fallback when no actual return was ever reported
func TestWithdraw(t *testing.T) {
	env := setupEnv(t)
	pool := env.createPool(t, defaultConfig())
	investment := env.invest(t, pool.PoolID, testInvestor, 10000)

	env.advance(pool.Config.LockDuration)
	env.custody.fundCustody(pool.PoolID, "uusdc", 123) // custodian returns the yield

	payout, burned, err := env.keeper.Withdraw(env.ctx, pool.PoolID, testInvestor, investment.ReceiptID, math.NewInt(10000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payout.Equal(math.NewInt(10123)) {
		t.Errorf("expected payout 10123, got %s", payout)
	}
	if !burned.Equal(math.NewInt(10000)) {
		t.Errorf("expected 10000 shares burned, got %s", burned)
	}

	if got := env.custody.accountBalance(testInvestor, "uusdc"); !got.Equal(math.NewInt(10123)) {
		t.Errorf("expected investor to hold 10123, got %s", got)
	}
	if got := env.custody.CustodyBalance(env.ctx, pool.PoolID, "uusdc"); !got.IsZero() {
		t.Errorf("expected custody drained, got %s", got)
	}
	if got := env.shares.GetTotalSupply(env.ctx, pool.PoolID); !got.IsZero() {
		t.Errorf("expected supply zero, got %s", got)
	}

	// Receipt revoked, investment closed
	if env.receipts.Get(env.ctx, investment.ReceiptID) != nil {
		t.Error("expected receipt revoked")
	}
	got := env.keeper.GetInvestment(env.ctx, investment.InvestmentID)
	if !got.IsWithdrawn || got.Status() != types.StatusWithdrawn {
		t.Errorf("expected withdrawn investment, got status %s", got.Status())
	}
	if got.WithdrawnAt != env.ctx.BlockTime().Unix() {
		t.Errorf("expected withdrawn_at %d, got %d", env.ctx.BlockTime().Unix(), got.WithdrawnAt)
	}

	// Deposited is a lifetime counter; only withdrawn moves
	p := env.keeper.GetPool(env.ctx, pool.PoolID)
	if !p.TotalDeposited.Equal(math.NewInt(10000)) {
		t.Errorf("expected deposited 10000, got %s", p.TotalDeposited)
	}
	if !p.TotalWithdrawn.Equal(math.NewInt(10123)) {
		t.Errorf("expected withdrawn 10123, got %s", p.TotalWithdrawn)
	}
	env.assertLedgerInvariant(t, pool.PoolID)
}

// TestWithdrawActualReturn tests that a reported return replaces the
// projection in the payout
func TestWithdrawActualReturn(t *testing.T) {
	env := setupEnv(t)
	pool := env.createPool(t, defaultConfig())
	investment := env.invest(t, pool.PoolID, testInvestor, 10000)

	env.advance(pool.Config.LockDuration)
	applied, err := env.keeper.SetActualReturns(env.ctx, testReporter, pool.PoolID,
		[]string{investment.InvestmentID}, []math.Int{math.NewInt(200)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied != 1 {
		t.Fatalf("expected 1 applied, got %d", applied)
	}
	if got := env.keeper.GetInvestment(env.ctx, investment.InvestmentID); got.Status() != types.StatusMatured {
		t.Errorf("expected matured status, got %s", got.Status())
	}

	env.custody.fundCustody(pool.PoolID, "uusdc", 200)
	payout, _, err := env.keeper.Withdraw(env.ctx, pool.PoolID, testInvestor, investment.ReceiptID, math.NewInt(10000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payout.Equal(math.NewInt(10200)) {
		t.Errorf("expected payout 10200 with actual return, got %s", payout)
	}

	events := eventsOfType(env.ctx, "investment_withdrawn")
	if len(events) != 1 {
		t.Fatalf("expected one withdrawal event, got %d", len(events))
	}
	if attrValue(events[0], "return_reported") != "true" {
		t.Error("expected return_reported true")
	}
}

// TestWithdrawGates tests the precondition chain
func TestWithdrawGates(t *testing.T) {
	env := setupEnv(t)
	pool := env.createPool(t, defaultConfig())
	investment := env.invest(t, pool.PoolID, testInvestor, 10000)
	shares := math.NewInt(10000)

	if _, _, err := env.keeper.Withdraw(env.ctx, "pool-99", testInvestor, investment.ReceiptID, shares); !errors.IsOf(err, types.ErrInvalidPool) {
		t.Errorf("expected ErrInvalidPool, got %v", err)
	}
	if _, _, err := env.keeper.Withdraw(env.ctx, pool.PoolID, testInvestor, "rcpt-99", shares); !errors.IsOf(err, types.ErrInvestmentNotFound) {
		t.Errorf("expected ErrInvestmentNotFound, got %v", err)
	}
	if _, _, err := env.keeper.Withdraw(env.ctx, pool.PoolID, testInvestor2, investment.ReceiptID, shares); !errors.IsOf(err, types.ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}

	// Still locked
	if _, _, err := env.keeper.Withdraw(env.ctx, pool.PoolID, testInvestor, investment.ReceiptID, shares); !errors.IsOf(err, types.ErrNotMatured) {
		t.Errorf("expected ErrNotMatured, got %v", err)
	}

	// One second before maturity is still locked; at maturity it opens
	env.advance(pool.Config.LockDuration - 1)
	if _, _, err := env.keeper.Withdraw(env.ctx, pool.PoolID, testInvestor, investment.ReceiptID, shares); !errors.IsOf(err, types.ErrNotMatured) {
		t.Errorf("expected ErrNotMatured one second early, got %v", err)
	}
	env.advance(1)

	// Offering fewer shares than the position requires
	if _, _, err := env.keeper.Withdraw(env.ctx, pool.PoolID, testInvestor, investment.ReceiptID, math.NewInt(9999)); !errors.IsOf(err, types.ErrInsufficientShares) {
		t.Errorf("expected ErrInsufficientShares, got %v", err)
	}

	env.custody.fundCustody(pool.PoolID, "uusdc", 123)
	if _, _, err := env.keeper.Withdraw(env.ctx, pool.PoolID, testInvestor, investment.ReceiptID, shares); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A second attempt hits the withdrawn flag
	if _, _, err := env.keeper.Withdraw(env.ctx, pool.PoolID, testInvestor, investment.ReceiptID, shares); !errors.IsOf(err, types.ErrAlreadyWithdrawn) {
		t.Errorf("expected ErrAlreadyWithdrawn, got %v", err)
	}
}

// TestWithdrawWrongPool tests that a receipt cannot be redeemed against a
// pool it does not belong to
func TestWithdrawWrongPool(t *testing.T) {
	env := setupEnv(t)
	pool1 := env.createPool(t, defaultConfig())
	pool2 := env.createPool(t, defaultConfig())
	investment := env.invest(t, pool1.PoolID, testInvestor, 10000)

	env.advance(pool1.Config.LockDuration)
	if _, _, err := env.keeper.Withdraw(env.ctx, pool2.PoolID, testInvestor, investment.ReceiptID, math.NewInt(10000)); !errors.IsOf(err, types.ErrInvalidPool) {
		t.Errorf("expected ErrInvalidPool, got %v", err)
	}
}

// TestWithdrawSharesRecomputed tests that the shares owed are recomputed
// against current totals, not remembered from deposit time. After the first
// investor burns out, the second position needs only 5000*5000/15000 = 1666.
func TestWithdrawSharesRecomputed(t *testing.T) {
	env := setupEnv(t)
	pool := env.createPool(t, defaultConfig())
	first := env.invest(t, pool.PoolID, testInvestor, 10000)
	second := env.invest(t, pool.PoolID, testInvestor2, 5000)

	env.advance(pool.Config.LockDuration)
	env.custody.fundCustody(pool.PoolID, "uusdc", 123+61)

	if _, burned, err := env.keeper.Withdraw(env.ctx, pool.PoolID, testInvestor, first.ReceiptID, math.NewInt(10000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	} else if !burned.Equal(math.NewInt(10000)) {
		t.Errorf("expected 10000 burned, got %s", burned)
	}

	// Supply is now 5000 against a lifetime deposited of 15000
	payout, burned, err := env.keeper.Withdraw(env.ctx, pool.PoolID, testInvestor2, second.ReceiptID, math.NewInt(5000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !burned.Equal(math.NewInt(1666)) {
		t.Errorf("expected 1666 burned, got %s", burned)
	}
	if !payout.Equal(math.NewInt(5061)) {
		t.Errorf("expected payout 5061, got %s", payout)
	}

	// The untouched remainder stays with the investor
	if got := env.shares.GetBalance(env.ctx, pool.PoolID, testInvestor2); !got.Equal(math.NewInt(3334)) {
		t.Errorf("expected residual balance 3334, got %s", got)
	}
	if got := env.custody.CustodyBalance(env.ctx, pool.PoolID, "uusdc"); !got.IsZero() {
		t.Errorf("expected custody drained, got %s", got)
	}
	env.assertLedgerInvariant(t, pool.PoolID)
}

// TestWithdrawTaxedPosition tests that a taxed deposit cannot cover its own
// withdrawal until the missing shares come back from circulation
func TestWithdrawTaxedPosition(t *testing.T) {
	env := setupEnv(t)
	cfg := defaultConfig()
	cfg.TaxRateBps = 250
	pool := env.createPool(t, cfg)

	env.custody.fund(testInvestor, "uusdc", 10000)
	investment, netShares, err := env.keeper.Invest(env.ctx, pool.PoolID, testInvestor, math.NewInt(10000), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !netShares.Equal(math.NewInt(9750)) {
		t.Fatalf("expected 9750 net shares, got %s", netShares)
	}

	env.advance(pool.Config.LockDuration)
	env.custody.fundCustody(pool.PoolID, "uusdc", 123)

	// The position requires the full 10000: offering the post-tax balance is
	// rejected, and offering 10000 without holding it is too
	if _, _, err := env.keeper.Withdraw(env.ctx, pool.PoolID, testInvestor, investment.ReceiptID, math.NewInt(9750)); !errors.IsOf(err, types.ErrInsufficientShares) {
		t.Errorf("expected ErrInsufficientShares for low offer, got %v", err)
	}
	if _, _, err := env.keeper.Withdraw(env.ctx, pool.PoolID, testInvestor, investment.ReceiptID, math.NewInt(10000)); !errors.IsOf(err, types.ErrInsufficientShares) {
		t.Errorf("expected ErrInsufficientShares for low balance, got %v", err)
	}

	// Once the fee shares return to the investor the burn can cover
	if err := env.shares.Transfer(env.ctx, pool.PoolID, env.feesinkAddress(), testInvestor, math.NewInt(250)); err != nil {
		t.Fatalf("failed to transfer: %v", err)
	}
	payout, burned, err := env.keeper.Withdraw(env.ctx, pool.PoolID, testInvestor, investment.ReceiptID, math.NewInt(10000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payout.Equal(math.NewInt(10123)) || !burned.Equal(math.NewInt(10000)) {
		t.Errorf("expected payout 10123 burning 10000, got %s burning %s", payout, burned)
	}
	env.assertLedgerInvariant(t, pool.PoolID)
}

// TestSetActualReturnsBatch tests that non-qualifying entries are skipped
// without failing the batch
func TestSetActualReturnsBatch(t *testing.T) {
	env := setupEnv(t)
	pool := env.createPool(t, defaultConfig())

	first := env.invest(t, pool.PoolID, testInvestor, 10000)
	second := env.invest(t, pool.PoolID, testInvestor2, 5000)
	env.advance(15 * 24 * 3600)
	third := env.invest(t, pool.PoolID, testInvestor, 2000) // matures 15 days later
	env.advance(15 * 24 * 3600)

	// first and second are mature; third is not. The batch mixes a valid
	// entry with an unknown ID, a premature one, and a negative return.
	applied, err := env.keeper.SetActualReturns(env.ctx, testReporter, pool.PoolID,
		[]string{first.InvestmentID, "inv-99", third.InvestmentID, second.InvestmentID},
		[]math.Int{math.NewInt(200), math.NewInt(50), math.NewInt(75), math.NewInt(-10)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied != 1 {
		t.Errorf("expected 1 applied, got %d", applied)
	}
	if got := env.keeper.GetInvestment(env.ctx, first.InvestmentID); !got.IsMatured || !got.ActualReturn.Equal(math.NewInt(200)) {
		t.Errorf("expected first matured at 200, got %+v", got)
	}
	if got := env.keeper.GetInvestment(env.ctx, second.InvestmentID); got.IsMatured {
		t.Error("expected second untouched after negative return")
	}
	if got := env.keeper.GetInvestment(env.ctx, third.InvestmentID); got.IsMatured {
		t.Error("expected third untouched before maturity")
	}

	// Reporting twice does not overwrite
	applied, err = env.keeper.SetActualReturns(env.ctx, testReporter, pool.PoolID,
		[]string{first.InvestmentID}, []math.Int{math.NewInt(999)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied != 0 {
		t.Errorf("expected 0 applied on repeat, got %d", applied)
	}
	if got := env.keeper.GetInvestment(env.ctx, first.InvestmentID); !got.ActualReturn.Equal(math.NewInt(200)) {
		t.Errorf("expected return to stay 200, got %s", got.ActualReturn)
	}

	// A zero return is a legal report
	applied, err = env.keeper.SetActualReturns(env.ctx, testReporter, pool.PoolID,
		[]string{second.InvestmentID}, []math.Int{math.ZeroInt()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied != 1 {
		t.Errorf("expected 1 applied, got %d", applied)
	}

	// Withdrawn positions are skipped
	env.custody.fundCustody(pool.PoolID, "uusdc", 200)
	if _, _, err := env.keeper.Withdraw(env.ctx, pool.PoolID, testInvestor, first.ReceiptID, math.NewInt(10000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	applied, err = env.keeper.SetActualReturns(env.ctx, testReporter, pool.PoolID,
		[]string{first.InvestmentID}, []math.Int{math.NewInt(400)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied != 0 {
		t.Errorf("expected 0 applied after withdrawal, got %d", applied)
	}
}

// TestSetActualReturnsGates tests the reporter gate and batch shape checks
func TestSetActualReturnsGates(t *testing.T) {
	env := setupEnv(t)
	pool := env.createPool(t, defaultConfig())
	investment := env.invest(t, pool.PoolID, testInvestor, 10000)
	env.advance(pool.Config.LockDuration)

	ids := []string{investment.InvestmentID}
	returns := []math.Int{math.NewInt(100)}

	if _, err := env.keeper.SetActualReturns(env.ctx, testInvestor, pool.PoolID, ids, returns); !errors.IsOf(err, types.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := env.keeper.SetActualReturns(env.ctx, testReporter, "pool-99", ids, returns); !errors.IsOf(err, types.ErrInvalidPool) {
		t.Errorf("expected ErrInvalidPool, got %v", err)
	}
	if _, err := env.keeper.SetActualReturns(env.ctx, testReporter, pool.PoolID, ids, nil); !errors.IsOf(err, types.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount for shape mismatch, got %v", err)
	}

	// The authority can stand in for the reporter
	applied, err := env.keeper.SetActualReturns(env.ctx, testAuthority, pool.PoolID, ids, returns)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied != 1 {
		t.Errorf("expected 1 applied, got %d", applied)
	}
}
