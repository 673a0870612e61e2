package api

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"cosmossdk.io/math"

	"github.com/eden-finance/vest-sub001/api/types"
)

const (
	bpsDenominator = int64(10000)
	secondsPerYear = int64(365 * 24 * 60 * 60)
)

// MockService implements all service interfaces with in-memory data.
// Amount arithmetic uses math.Int so mock numbers match chain numbers.
type MockService struct {
	pools       map[string]*types.Pool
	investments map[string]*types.Investment
	receipts    map[string]*types.Receipt
	feeEvents   []*types.FeeEvent

	// Per-pool counters and per-holder share balances, keyed poolID and
	// investor|poolID respectively
	deposited map[string]math.Int
	withdrawn map[string]math.Int
	supply    map[string]math.Int
	shares    map[string]math.Int
	feePool   map[string]math.Int // fee shares accumulated per pool

	treasury   string
	mu         sync.RWMutex
	investSeq  int64
	receiptSeq int64
	eventSeq   int64
}

// NewMockService creates a new mock service
func NewMockService() *MockService {
	ms := &MockService{
		pools:       make(map[string]*types.Pool),
		investments: make(map[string]*types.Investment),
		receipts:    make(map[string]*types.Receipt),
		deposited:   make(map[string]math.Int),
		withdrawn:   make(map[string]math.Int),
		supply:      make(map[string]math.Int),
		shares:      make(map[string]math.Int),
		feePool:     make(map[string]math.Int),
	}
	ms.initMockData()
	return ms
}

// initMockData seeds the pool set. Pools are protocol infrastructure and are
// seeded so the deposit endpoints are usable immediately; investments and
// receipts start empty and only come from real user actions.
func (ms *MockService) initMockData() {
	now := time.Now().Unix()

	ms.seedPool(&types.Pool{
		PoolID:            "pool-1",
		Name:              "Stable Yield 90",
		Admin:             "cosmos1admin...",
		Custodian:         "cosmos1custodian...",
		Reporter:          "cosmos1reporter...",
		Active:            true,
		AcceptingDeposits: true,
		LockDuration:      90 * 24 * 60 * 60,
		MinInvestment:     "1000000",
		MaxInvestment:     "0",
		UtilizationCap:    "0",
		ExpectedRateBps:   800,
		TaxRateBps:        100,
		CreatedAt:         now - 86400*30,
		UpdatedAt:         now,
	})

	ms.seedPool(&types.Pool{
		PoolID:            "pool-2",
		Name:              "Treasury 365",
		Admin:             "cosmos1admin...",
		Custodian:         "cosmos1custodian...",
		Reporter:          "cosmos1reporter...",
		Active:            true,
		AcceptingDeposits: true,
		LockDuration:      365 * 24 * 60 * 60,
		MinInvestment:     "5000000",
		MaxInvestment:     "1000000000000",
		UtilizationCap:    "0",
		ExpectedRateBps:   1250,
		TaxRateBps:        150,
		CreatedAt:         now - 86400*60,
		UpdatedAt:         now,
	})
}

func (ms *MockService) seedPool(pool *types.Pool) {
	pool.ShareDenom = "share/" + pool.PoolID
	ms.pools[pool.PoolID] = pool
	ms.deposited[pool.PoolID] = math.ZeroInt()
	ms.withdrawn[pool.PoolID] = math.ZeroInt()
	ms.supply[pool.PoolID] = math.ZeroInt()
	ms.feePool[pool.PoolID] = math.ZeroInt()
}

func shareKey(investor, poolID string) string {
	return investor + "|" + poolID
}

func (ms *MockService) shareBalance(investor, poolID string) math.Int {
	if v, ok := ms.shares[shareKey(investor, poolID)]; ok {
		return v
	}
	return math.ZeroInt()
}

// poolView clones a pool with the counter strings refreshed
func (ms *MockService) poolView(pool *types.Pool) *types.Pool {
	view := *pool
	view.TotalDeposited = ms.deposited[pool.PoolID].String()
	view.TotalWithdrawn = ms.withdrawn[pool.PoolID].String()
	view.TotalShares = ms.supply[pool.PoolID].String()
	return &view
}

// sharesFor applies the proportional share formula against current totals
func (ms *MockService) sharesFor(poolID string, amount math.Int) math.Int {
	supply := ms.supply[poolID]
	if supply.IsZero() {
		return amount
	}
	return amount.Mul(supply).Quo(ms.deposited[poolID])
}

// ============ PoolService Implementation ============

func (ms *MockService) ListPools(ctx context.Context) ([]*types.Pool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	pools := make([]*types.Pool, 0, len(ms.pools))
	for _, pool := range ms.pools {
		pools = append(pools, ms.poolView(pool))
	}
	sort.Slice(pools, func(i, j int) bool { return pools[i].PoolID < pools[j].PoolID })
	return pools, nil
}

func (ms *MockService) GetPool(ctx context.Context, poolID string) (*types.Pool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	pool, ok := ms.pools[poolID]
	if !ok {
		return nil, fmt.Errorf("pool not found: %s", poolID)
	}
	return ms.poolView(pool), nil
}

func (ms *MockService) GetPoolStats(ctx context.Context, poolID string) (*types.PoolStats, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	pool, ok := ms.pools[poolID]
	if !ok {
		return nil, fmt.Errorf("pool not found: %s", poolID)
	}

	stats := &types.PoolStats{
		PoolID:         poolID,
		TotalDeposited: ms.deposited[poolID].String(),
		TotalWithdrawn: ms.withdrawn[poolID].String(),
		TotalShares:    ms.supply[poolID].String(),
		UpdatedAt:      pool.UpdatedAt,
	}
	for _, inv := range ms.investments {
		if inv.PoolID != poolID {
			continue
		}
		switch inv.Status {
		case "withdrawn":
			stats.WithdrawnInvestments++
		case "matured":
			stats.MaturedInvestments++
		default:
			stats.ActiveInvestments++
		}
	}
	return stats, nil
}

func (ms *MockService) GetPoolFees(ctx context.Context, poolID string) (*types.PoolFees, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	pool, ok := ms.pools[poolID]
	if !ok {
		return nil, fmt.Errorf("pool not found: %s", poolID)
	}

	collections := int64(0)
	for _, ev := range ms.feeEvents {
		if ev.PoolID == poolID && ev.Kind == "collect" {
			collections++
		}
	}
	return &types.PoolFees{
		PoolID:         poolID,
		Denom:          pool.ShareDenom,
		TotalCollected: ms.feePool[poolID].String(),
		Collections:    collections,
		UpdatedAt:      pool.UpdatedAt,
	}, nil
}

// ============ InvestmentService Implementation ============

func (ms *MockService) Invest(ctx context.Context, req *types.InvestRequest) (*types.InvestResponse, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	pool, amount, err := ms.checkDeposit(req.PoolID, req.Investor, req.Amount)
	if err != nil {
		return nil, err
	}
	return ms.applyDeposit(pool, req.Investor, amount, req.Title)
}

func (ms *MockService) InvestWithSwap(ctx context.Context, req *types.InvestWithSwapRequest) (*types.InvestResponse, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if req.TokenIn == "" {
		return nil, fmt.Errorf("token_in is required")
	}
	if req.Deadline < time.Now().Unix() {
		return nil, fmt.Errorf("deadline expired")
	}
	amountIn, ok := math.NewIntFromString(req.AmountIn)
	if !ok || !amountIn.IsPositive() {
		return nil, fmt.Errorf("invalid amount_in: %s", req.AmountIn)
	}
	minOut, ok := math.NewIntFromString(req.MinAmountOut)
	if !ok || !minOut.IsPositive() {
		return nil, fmt.Errorf("invalid min_amount_out: %s", req.MinAmountOut)
	}

	// Mock router converts 1:1 into the settlement asset
	amountOut := amountIn
	if amountOut.LT(minOut) {
		return nil, fmt.Errorf("insufficient swap liquidity: quoted %s, minimum %s", amountOut, minOut)
	}

	pool, amount, err := ms.checkDeposit(req.PoolID, req.Investor, amountOut.String())
	if err != nil {
		return nil, err
	}
	return ms.applyDeposit(pool, req.Investor, amount, req.Title)
}

// checkDeposit validates a deposit request against the pool. Caller holds the
// write lock.
func (ms *MockService) checkDeposit(poolID, investor, amountStr string) (*types.Pool, math.Int, error) {
	zero := math.ZeroInt()
	if poolID == "" {
		return nil, zero, fmt.Errorf("pool_id is required")
	}
	if investor == "" {
		return nil, zero, fmt.Errorf("investor is required")
	}

	pool, ok := ms.pools[poolID]
	if !ok {
		return nil, zero, fmt.Errorf("pool not found: %s", poolID)
	}
	if !pool.Active {
		return nil, zero, fmt.Errorf("pool is not active: %s", poolID)
	}
	if !pool.AcceptingDeposits {
		return nil, zero, fmt.Errorf("pool is not accepting deposits: %s", poolID)
	}

	amount, ok := math.NewIntFromString(amountStr)
	if !ok || !amount.IsPositive() {
		return nil, zero, fmt.Errorf("invalid amount: %s", amountStr)
	}
	minInv, _ := math.NewIntFromString(pool.MinInvestment)
	maxInv, _ := math.NewIntFromString(pool.MaxInvestment)
	utilCap, _ := math.NewIntFromString(pool.UtilizationCap)
	if amount.LT(minInv) {
		return nil, zero, fmt.Errorf("amount below pool minimum: %s < %s", amount, minInv)
	}
	if !maxInv.IsZero() && amount.GT(maxInv) {
		return nil, zero, fmt.Errorf("amount exceeds pool maximum: %s > %s", amount, maxInv)
	}
	if !utilCap.IsZero() && ms.deposited[poolID].Add(amount).GT(utilCap) {
		return nil, zero, fmt.Errorf("deposit exceeds utilization cap")
	}
	return pool, amount, nil
}

// applyDeposit runs the deposit bookkeeping: share mint, fee cut, receipt,
// investment record. Caller holds the write lock.
func (ms *MockService) applyDeposit(pool *types.Pool, investor string, amount math.Int, title string) (*types.InvestResponse, error) {
	shares := ms.sharesFor(pool.PoolID, amount)
	if shares.IsZero() {
		return nil, fmt.Errorf("invalid amount: deposit %s yields zero shares", amount)
	}

	fee := shares.Mul(math.NewInt(pool.TaxRateBps)).Quo(math.NewInt(bpsDenominator))
	netShares := shares.Sub(fee)

	now := time.Now().Unix()
	expected := amount.
		Mul(math.NewInt(pool.ExpectedRateBps)).
		Mul(math.NewInt(pool.LockDuration)).
		Quo(math.NewInt(bpsDenominator * secondsPerYear))

	investmentID := fmt.Sprintf("inv-%d", atomic.AddInt64(&ms.investSeq, 1))
	receiptID := fmt.Sprintf("receipt-%d", atomic.AddInt64(&ms.receiptSeq, 1))

	investment := &types.Investment{
		InvestmentID:   investmentID,
		PoolID:         pool.PoolID,
		Investor:       investor,
		Amount:         amount.String(),
		Title:          title,
		DepositTime:    now,
		MaturityTime:   now + pool.LockDuration,
		ExpectedReturn: expected.String(),
		ActualReturn:   "0",
		Status:         "accruing",
		ReceiptID:      receiptID,
	}
	ms.investments[investmentID] = investment
	ms.receipts[receiptID] = &types.Receipt{
		ReceiptID:    receiptID,
		PoolID:       pool.PoolID,
		InvestmentID: investmentID,
		Investor:     investor,
		Amount:       amount.String(),
		MaturityTime: investment.MaturityTime,
		IssuedAt:     now,
	}

	key := shareKey(investor, pool.PoolID)
	ms.shares[key] = ms.shareBalance(investor, pool.PoolID).Add(netShares)
	ms.supply[pool.PoolID] = ms.supply[pool.PoolID].Add(shares)
	ms.deposited[pool.PoolID] = ms.deposited[pool.PoolID].Add(amount)
	ms.feePool[pool.PoolID] = ms.feePool[pool.PoolID].Add(fee)
	pool.UpdatedAt = now

	if fee.IsPositive() {
		ms.feeEvents = append(ms.feeEvents, &types.FeeEvent{
			EventID:   fmt.Sprintf("fee-%d", atomic.AddInt64(&ms.eventSeq, 1)),
			PoolID:    pool.PoolID,
			Denom:     pool.ShareDenom,
			Amount:    fee.String(),
			Kind:      "collect",
			Payer:     investor,
			Timestamp: now,
		})
	}

	return &types.InvestResponse{
		Investment: investment,
		Shares:     netShares.String(),
	}, nil
}

func (ms *MockService) Withdraw(ctx context.Context, req *types.WithdrawRequest) (*types.WithdrawResponse, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if req.ReceiptID == "" {
		return nil, fmt.Errorf("receipt_id is required")
	}
	receipt, ok := ms.receipts[req.ReceiptID]
	if !ok {
		return nil, fmt.Errorf("investment not found: receipt %s", req.ReceiptID)
	}
	investment := ms.investments[receipt.InvestmentID]
	if investment == nil {
		return nil, fmt.Errorf("investment not found: %s", receipt.InvestmentID)
	}
	if investment.Status == "withdrawn" {
		return nil, fmt.Errorf("investment already withdrawn: %s", investment.InvestmentID)
	}
	if investment.PoolID != req.PoolID {
		return nil, fmt.Errorf("receipt %s belongs to pool %s", req.ReceiptID, investment.PoolID)
	}
	if investment.Investor != req.Investor {
		return nil, fmt.Errorf("unauthorized: investment belongs to different investor")
	}

	now := time.Now().Unix()
	if now < investment.MaturityTime {
		return nil, fmt.Errorf("investment not yet matured: matures at %d", investment.MaturityTime)
	}

	shareAmount, ok := math.NewIntFromString(req.ShareAmount)
	if !ok || !shareAmount.IsPositive() {
		return nil, fmt.Errorf("invalid share_amount: %s", req.ShareAmount)
	}

	amount, _ := math.NewIntFromString(investment.Amount)
	required := ms.sharesFor(investment.PoolID, amount)
	if shareAmount.LT(required) {
		return nil, fmt.Errorf("insufficient shares: offered %s, required %s", shareAmount, required)
	}
	balance := ms.shareBalance(req.Investor, investment.PoolID)
	if balance.LT(required) {
		return nil, fmt.Errorf("insufficient shares: balance %s, required %s", balance, required)
	}

	ret, _ := math.NewIntFromString(investment.ExpectedReturn)
	if investment.Status == "matured" {
		ret, _ = math.NewIntFromString(investment.ActualReturn)
	}
	payout := amount.Add(ret)

	key := shareKey(req.Investor, investment.PoolID)
	ms.shares[key] = balance.Sub(required)
	ms.supply[investment.PoolID] = ms.supply[investment.PoolID].Sub(required)
	ms.withdrawn[investment.PoolID] = ms.withdrawn[investment.PoolID].Add(payout)

	investment.Status = "withdrawn"
	investment.WithdrawnAt = now
	delete(ms.receipts, req.ReceiptID)
	if pool := ms.pools[investment.PoolID]; pool != nil {
		pool.UpdatedAt = now
	}

	return &types.WithdrawResponse{
		Investment:   investment,
		Payout:       payout.String(),
		SharesBurned: required.String(),
	}, nil
}

func (ms *MockService) GetInvestment(ctx context.Context, investmentID string) (*types.Investment, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	investment, ok := ms.investments[investmentID]
	if !ok {
		return nil, fmt.Errorf("investment not found: %s", investmentID)
	}
	return investment, nil
}

func (ms *MockService) ListInvestments(ctx context.Context, req *types.ListInvestmentsRequest) (*types.ListInvestmentsResponse, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var investments []*types.Investment
	for _, inv := range ms.investments {
		if req.Investor != "" && inv.Investor != req.Investor {
			continue
		}
		if req.PoolID != "" && inv.PoolID != req.PoolID {
			continue
		}
		if req.Status != "" && inv.Status != req.Status {
			continue
		}
		investments = append(investments, inv)
	}
	sort.Slice(investments, func(i, j int) bool {
		return investments[i].InvestmentID < investments[j].InvestmentID
	})

	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if len(investments) > limit {
		investments = investments[:limit]
	}

	return &types.ListInvestmentsResponse{
		Investments: investments,
		Total:       len(investments),
	}, nil
}

func (ms *MockService) PendingMaturities(ctx context.Context, limit int) ([]*types.Investment, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	// Past maturity but not yet reported or withdrawn
	now := time.Now().Unix()
	var pending []*types.Investment
	for _, inv := range ms.investments {
		if inv.Status != "accruing" || inv.MaturityTime > now {
			continue
		}
		pending = append(pending, inv)
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].MaturityTime < pending[j].MaturityTime
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (ms *MockService) GetReceipt(ctx context.Context, receiptID string) (*types.Receipt, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	receipt, ok := ms.receipts[receiptID]
	if !ok {
		return nil, fmt.Errorf("receipt not found: %s", receiptID)
	}
	return receipt, nil
}

func (ms *MockService) ListReceipts(ctx context.Context, owner string) ([]*types.Receipt, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var receipts []*types.Receipt
	for _, receipt := range ms.receipts {
		if owner != "" && receipt.Investor != owner {
			continue
		}
		receipts = append(receipts, receipt)
	}
	sort.Slice(receipts, func(i, j int) bool {
		return receipts[i].ReceiptID < receipts[j].ReceiptID
	})
	return receipts, nil
}

// ============ TreasuryService Implementation ============

func (ms *MockService) GetTreasury(ctx context.Context) (*types.TreasuryInfo, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	info := &types.TreasuryInfo{
		Address:      ms.treasury,
		Withdrawable: make([]*types.WithdrawableBalance, 0, len(ms.feePool)),
	}
	poolIDs := make([]string, 0, len(ms.feePool))
	for poolID := range ms.feePool {
		poolIDs = append(poolIDs, poolID)
	}
	sort.Strings(poolIDs)
	for _, poolID := range poolIDs {
		amount := ms.feePool[poolID]
		if amount.IsZero() {
			continue
		}
		info.Withdrawable = append(info.Withdrawable, &types.WithdrawableBalance{
			Denom:  "share/" + poolID,
			Amount: amount.String(),
		})
	}
	return info, nil
}

func (ms *MockService) GetFeeEvents(ctx context.Context, limit int) ([]*types.FeeEvent, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	events := ms.feeEvents
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	out := make([]*types.FeeEvent, len(events))
	copy(out, events)
	return out, nil
}
