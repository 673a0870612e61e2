package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eden-finance/vest-sub001/api/types"
)

func newTestServer(t *testing.T) (*Server, *MockService) {
	t.Helper()
	svc := NewMockService()
	s := NewServerWithServices(&Config{DisableRateLimit: true}, svc, svc, svc)
	return s, svc
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestGetPools(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s.poolHandler.GetPools, "GET", "/v1/pools", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Pools []*types.Pool `json:"pools"`
		Total int           `json:"total"`
	}
	decode(t, w, &resp)
	if resp.Total != 2 {
		t.Errorf("expected 2 seeded pools, got %d", resp.Total)
	}
	for _, pool := range resp.Pools {
		if pool.ShareDenom == "" {
			t.Errorf("pool %s missing share denom", pool.PoolID)
		}
	}
}

func TestGetPool(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name     string
		poolID   string
		wantCode int
	}{
		{"existing pool", "pool-1", http.StatusOK},
		{"missing header", "", http.StatusBadRequest},
		{"unknown pool", "pool-404", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.poolID != "" {
				headers["X-Pool-ID"] = tt.poolID
			}
			w := doJSON(t, s.poolHandler.GetPool, "GET", "/v1/pools/"+tt.poolID, nil, headers)
			if w.Code != tt.wantCode {
				t.Errorf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
		})
	}
}

func TestInvestValidation(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name     string
		req      *types.InvestRequest
		wantCode int
	}{
		{
			"missing pool id",
			&types.InvestRequest{Investor: "cosmos1aaa", Amount: "2000000"},
			http.StatusBadRequest,
		},
		{
			"missing amount",
			&types.InvestRequest{PoolID: "pool-1", Investor: "cosmos1aaa"},
			http.StatusBadRequest,
		},
		{
			"missing investor",
			&types.InvestRequest{PoolID: "pool-1", Amount: "2000000"},
			http.StatusBadRequest,
		},
		{
			"below pool minimum",
			&types.InvestRequest{PoolID: "pool-1", Investor: "cosmos1aaa", Amount: "999999"},
			http.StatusBadRequest,
		},
		{
			"unknown pool",
			&types.InvestRequest{PoolID: "pool-404", Investor: "cosmos1aaa", Amount: "2000000"},
			http.StatusNotFound,
		},
		{
			"valid deposit",
			&types.InvestRequest{PoolID: "pool-1", Investor: "cosmos1aaa", Amount: "2000000"},
			http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s.investmentHandler.HandleInvest, "POST", "/v1/invest", tt.req, nil)
			if w.Code != tt.wantCode {
				t.Errorf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
		})
	}
}

func TestInvestCreatesInvestmentAndReceipt(t *testing.T) {
	s, _ := newTestServer(t)

	// pool-1 taxes deposits at 100 bps, so a 2,000,000 deposit into an
	// empty pool mints 2,000,000 shares and nets 1,980,000 to the investor
	w := doJSON(t, s.investmentHandler.HandleInvest, "POST", "/v1/invest", &types.InvestRequest{
		PoolID:   "pool-1",
		Investor: "cosmos1investor",
		Amount:   "2000000",
		Title:    "first deposit",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp types.InvestResponse
	decode(t, w, &resp)
	if resp.Shares != "1980000" {
		t.Errorf("expected net shares 1980000, got %s", resp.Shares)
	}
	if resp.Investment == nil || resp.Investment.ReceiptID == "" {
		t.Fatal("expected investment with receipt")
	}
	if resp.Investment.Status != "accruing" {
		t.Errorf("expected status accruing, got %s", resp.Investment.Status)
	}
	wantMaturity := resp.Investment.DepositTime + 90*24*60*60
	if resp.Investment.MaturityTime != wantMaturity {
		t.Errorf("expected maturity %d, got %d", wantMaturity, resp.Investment.MaturityTime)
	}

	// The investment and receipt are individually resolvable
	w = doJSON(t, s.investmentHandler.HandleInvestment, "GET", "/v1/investments/"+resp.Investment.InvestmentID, nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("investment lookup: expected 200, got %d", w.Code)
	}
	w = doJSON(t, s.investmentHandler.HandleReceipt, "GET", "/v1/receipts/"+resp.Investment.ReceiptID, nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("receipt lookup: expected 200, got %d", w.Code)
	}

	// The fee cut lands in the treasury's withdrawable balance
	w = doJSON(t, s.treasuryHandler.HandleTreasury, "GET", "/v1/treasury", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("treasury: expected 200, got %d", w.Code)
	}
	var treasury types.TreasuryInfo
	decode(t, w, &treasury)
	found := false
	for _, bal := range treasury.Withdrawable {
		if bal.Denom == "share/pool-1" {
			found = true
			if bal.Amount != "20000" {
				t.Errorf("expected fee balance 20000, got %s", bal.Amount)
			}
		}
	}
	if !found {
		t.Error("expected withdrawable fee balance for share/pool-1")
	}

	w = doJSON(t, s.treasuryHandler.HandleFeeEvents, "GET", "/v1/treasury/events", nil, nil)
	var events struct {
		Total int `json:"total"`
	}
	decode(t, w, &events)
	if events.Total != 1 {
		t.Errorf("expected 1 fee event, got %d", events.Total)
	}
}

func TestInvestWithSwap(t *testing.T) {
	s, _ := newTestServer(t)
	deadline := time.Now().Add(time.Minute).Unix()

	tests := []struct {
		name     string
		req      *types.InvestWithSwapRequest
		wantCode int
	}{
		{
			"valid swap deposit",
			&types.InvestWithSwapRequest{
				PoolID: "pool-1", Investor: "cosmos1swapper",
				TokenIn: "uatom", AmountIn: "2000000", MinAmountOut: "2000000",
				Deadline: deadline,
			},
			http.StatusCreated,
		},
		{
			"expired deadline",
			&types.InvestWithSwapRequest{
				PoolID: "pool-1", Investor: "cosmos1swapper",
				TokenIn: "uatom", AmountIn: "2000000", MinAmountOut: "2000000",
				Deadline: time.Now().Add(-time.Minute).Unix(),
			},
			http.StatusBadRequest,
		},
		{
			"quote below minimum",
			&types.InvestWithSwapRequest{
				PoolID: "pool-1", Investor: "cosmos1swapper",
				TokenIn: "uatom", AmountIn: "2000000", MinAmountOut: "3000000",
				Deadline: deadline,
			},
			http.StatusBadRequest,
		},
		{
			"missing token in",
			&types.InvestWithSwapRequest{
				PoolID: "pool-1", Investor: "cosmos1swapper",
				AmountIn: "2000000", MinAmountOut: "2000000", Deadline: deadline,
			},
			http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s.investmentHandler.HandleInvestWithSwap, "POST", "/v1/invest/swap", tt.req, nil)
			if w.Code != tt.wantCode {
				t.Errorf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
		})
	}
}

func TestWithdrawLifecycle(t *testing.T) {
	s, svc := newTestServer(t)

	// Zero-tax pool so the investor holds exactly the shares the
	// withdrawal requires
	svc.mu.Lock()
	svc.seedPool(&types.Pool{
		PoolID:            "pool-test",
		Name:              "Withdraw Test 30",
		Active:            true,
		AcceptingDeposits: true,
		LockDuration:      30 * 24 * 60 * 60,
		MinInvestment:     "1",
		MaxInvestment:     "0",
		UtilizationCap:    "0",
		ExpectedRateBps:   1500,
		TaxRateBps:        0,
	})
	svc.mu.Unlock()

	w := doJSON(t, s.investmentHandler.HandleInvest, "POST", "/v1/invest", &types.InvestRequest{
		PoolID:   "pool-test",
		Investor: "cosmos1holder",
		Amount:   "10000",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("invest: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var invested types.InvestResponse
	decode(t, w, &invested)
	if invested.Shares != "10000" {
		t.Fatalf("expected 10000 shares on empty pool, got %s", invested.Shares)
	}
	// 10000 * 1500 bps * 30d / 365d, truncated
	if invested.Investment.ExpectedReturn != "123" {
		t.Errorf("expected return 123, got %s", invested.Investment.ExpectedReturn)
	}
	receiptID := invested.Investment.ReceiptID

	withdrawReq := &types.WithdrawRequest{
		PoolID:      "pool-test",
		Investor:    "cosmos1holder",
		ReceiptID:   receiptID,
		ShareAmount: "10000",
	}

	// Not yet matured
	w = doJSON(t, s.investmentHandler.HandleWithdraw, "POST", "/v1/withdraw", withdrawReq, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unmatured withdraw: expected 400, got %d: %s", w.Code, w.Body.String())
	}

	// Someone else's receipt is rejected even after maturity checks
	stranger := &types.WithdrawRequest{
		PoolID:      "pool-test",
		Investor:    "cosmos1stranger",
		ReceiptID:   receiptID,
		ShareAmount: "10000",
	}
	w = doJSON(t, s.investmentHandler.HandleWithdraw, "POST", "/v1/withdraw", stranger, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign withdraw: expected 403, got %d: %s", w.Code, w.Body.String())
	}

	// Force maturity and withdraw
	svc.mu.Lock()
	svc.investments[invested.Investment.InvestmentID].MaturityTime = time.Now().Unix() - 1
	svc.mu.Unlock()

	w = doJSON(t, s.investmentHandler.HandleWithdraw, "POST", "/v1/withdraw", withdrawReq, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("matured withdraw: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var withdrawn types.WithdrawResponse
	decode(t, w, &withdrawn)
	if withdrawn.Payout != "10123" {
		t.Errorf("expected payout 10123 (principal + projected return), got %s", withdrawn.Payout)
	}
	if withdrawn.SharesBurned != "10000" {
		t.Errorf("expected 10000 shares burned, got %s", withdrawn.SharesBurned)
	}
	if withdrawn.Investment.Status != "withdrawn" {
		t.Errorf("expected status withdrawn, got %s", withdrawn.Investment.Status)
	}

	// The receipt is gone, so a second attempt cannot resolve it
	w = doJSON(t, s.investmentHandler.HandleWithdraw, "POST", "/v1/withdraw", withdrawReq, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("double withdraw: expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProportionalShareDilution(t *testing.T) {
	s, svc := newTestServer(t)

	svc.mu.Lock()
	svc.seedPool(&types.Pool{
		PoolID:            "pool-dilute",
		Name:              "Dilution Test",
		Active:            true,
		AcceptingDeposits: true,
		LockDuration:      30 * 24 * 60 * 60,
		MinInvestment:     "1",
		MaxInvestment:     "0",
		UtilizationCap:    "0",
		ExpectedRateBps:   1000,
		TaxRateBps:        0,
	})
	svc.mu.Unlock()

	deposits := []struct {
		investor   string
		amount     string
		wantShares string
	}{
		{"cosmos1first", "10000", "10000"},
		{"cosmos1second", "5000", "5000"},
	}

	for i, d := range deposits {
		w := doJSON(t, s.investmentHandler.HandleInvest, "POST", "/v1/invest", &types.InvestRequest{
			PoolID:   "pool-dilute",
			Investor: d.investor,
			Amount:   d.amount,
			Title:    fmt.Sprintf("deposit %d", i+1),
		}, nil)
		if w.Code != http.StatusCreated {
			t.Fatalf("deposit %d: expected 201, got %d: %s", i+1, w.Code, w.Body.String())
		}
		var resp types.InvestResponse
		decode(t, w, &resp)
		if resp.Shares != d.wantShares {
			t.Errorf("deposit %d: expected %s shares, got %s", i+1, d.wantShares, resp.Shares)
		}
	}
}

func TestInvestorListings(t *testing.T) {
	s, _ := newTestServer(t)

	for i := 0; i < 3; i++ {
		w := doJSON(t, s.investmentHandler.HandleInvest, "POST", "/v1/invest", &types.InvestRequest{
			PoolID:   "pool-1",
			Investor: "cosmos1lister",
			Amount:   "2000000",
		}, nil)
		if w.Code != http.StatusCreated {
			t.Fatalf("deposit %d: expected 201, got %d", i, w.Code)
		}
	}

	headers := map[string]string{"X-Investor-Address": "cosmos1lister"}
	w := doJSON(t, s.investmentHandler.GetInvestorInvestments, "GET", "/v1/investors/cosmos1lister/investments", nil, headers)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var listed types.ListInvestmentsResponse
	decode(t, w, &listed)
	if len(listed.Investments) != 3 {
		t.Errorf("expected 3 investments, got %d", len(listed.Investments))
	}

	w = doJSON(t, s.investmentHandler.GetInvestorReceipts, "GET", "/v1/investors/cosmos1lister/receipts", nil, headers)
	var receipts struct {
		Total int `json:"total"`
	}
	decode(t, w, &receipts)
	if receipts.Total != 3 {
		t.Errorf("expected 3 receipts, got %d", receipts.Total)
	}

	w = doJSON(t, s.investmentHandler.HandlePendingMaturities, "GET", "/v1/maturities/pending", nil, nil)
	var pending struct {
		Total int `json:"total"`
	}
	decode(t, w, &pending)
	if pending.Total != 3 {
		t.Errorf("expected 3 pending maturities, got %d", pending.Total)
	}
}
