package api

import (
	"context"
	"fmt"
	"sync"
	"time"

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

	"github.com/eden-finance/vest-sub001/api/types"
	feesinkkeeper "github.com/eden-finance/vest-sub001/x/feesink/keeper"
	feesinktypes "github.com/eden-finance/vest-sub001/x/feesink/types"
	receiptkeeper "github.com/eden-finance/vest-sub001/x/receipt/keeper"
	receipttypes "github.com/eden-finance/vest-sub001/x/receipt/types"
	sharekeeper "github.com/eden-finance/vest-sub001/x/shareledger/keeper"
	sharetypes "github.com/eden-finance/vest-sub001/x/shareledger/types"
	vestkeeper "github.com/eden-finance/vest-sub001/x/vest/keeper"
	vesttypes "github.com/eden-finance/vest-sub001/x/vest/types"
)

// defaultFaucetBalance is the settlement balance granted to every address the
// standalone server sees. In-memory custody has no real funds to protect.
var defaultFaucetBalance = math.NewInt(1_000_000_000_000)

// KeeperService implements PoolService, InvestmentService, and TreasuryService
// against real keepers over an in-memory store. One sdk.Context serves every
// request; the mutex keeps store access single-threaded.
type KeeperService struct {
	keeper   *vestkeeper.Keeper
	shares   *sharekeeper.Keeper
	receipts *receiptkeeper.Keeper
	fees     *feesinkkeeper.Keeper
	custody  *memCustody

	ctx sdk.Context
	mu  sync.RWMutex
}

// ============ Collaborator bridges ============
//
// The vest keeper takes narrow interfaces; these bridge the concrete keepers
// into them, the same shapes the app wiring uses.

type svcShareBridge struct {
	*sharekeeper.Keeper
}

func (b svcShareBridge) CreateLedger(ctx sdk.Context, ledgerID, poolID, denom string) error {
	_, err := b.Keeper.CreateLedger(ctx, ledgerID, poolID, denom)
	return err
}

type svcReceiptBridge struct {
	*receiptkeeper.Keeper
}

func (b svcReceiptBridge) Issue(ctx sdk.Context, poolID, investmentID, investor string, amount math.Int, maturityTime int64) (string, error) {
	receipt, err := b.Keeper.Issue(ctx, poolID, investmentID, investor, amount, maturityTime)
	if err != nil {
		return "", err
	}
	return receipt.ReceiptID, nil
}

func (b svcReceiptBridge) Lookup(ctx sdk.Context, receiptID string) (string, string, string, bool) {
	receipt := b.Keeper.Get(ctx, receiptID)
	if receipt == nil {
		return "", "", "", false
	}
	return receipt.PoolID, receipt.InvestmentID, receipt.Investor, true
}

type svcFeeBridge struct {
	*feesinkkeeper.Keeper
}

func (b svcFeeBridge) GetTreasuryAddress(ctx sdk.Context) string {
	return b.Keeper.GetTreasury(ctx).Address
}

// memCustody tracks settlement balances in memory with faucet semantics:
// addresses are funded on first touch so deposits never fail on funding in
// standalone mode. Keys are addr|denom, poolID|denom, and denom for the
// shared module account.
type memCustody struct {
	accounts map[string]math.Int
	pools    map[string]math.Int
	module   map[string]math.Int
}

func newMemCustody() *memCustody {
	return &memCustody{
		accounts: make(map[string]math.Int),
		pools:    make(map[string]math.Int),
		module:   make(map[string]math.Int),
	}
}

func custodyKey(a, b string) string { return a + "|" + b }

func custodyBal(m map[string]math.Int, key string) math.Int {
	if v, ok := m[key]; ok {
		return v
	}
	return math.ZeroInt()
}

// ensure grants the faucet balance to an address the first time it is seen
// in a denom
func (m *memCustody) ensure(addr, denom string) {
	key := custodyKey(addr, denom)
	if _, ok := m.accounts[key]; !ok {
		m.accounts[key] = defaultFaucetBalance
	}
}

// creditReserve stocks a pool's custody with yield funds. Payouts exceed
// principal by the accrued return, which no deposit ever covers.
func (m *memCustody) creditReserve(poolID, denom string) {
	key := custodyKey(poolID, denom)
	m.pools[key] = custodyBal(m.pools, key).Add(defaultFaucetBalance)
}

func (m *memCustody) move(from map[string]math.Int, fromKey string, to map[string]math.Int, toKey string, amount math.Int) error {
	have := custodyBal(from, fromKey)
	if have.LT(amount) {
		return fmt.Errorf("insufficient funds: %s holds %s, need %s", fromKey, have, amount)
	}
	from[fromKey] = have.Sub(amount)
	to[toKey] = custodyBal(to, toKey).Add(amount)
	return nil
}

func (m *memCustody) SendToCustody(ctx sdk.Context, poolID, from string, amount sdk.Coin) error {
	return m.move(m.accounts, custodyKey(from, amount.Denom), m.pools, custodyKey(poolID, amount.Denom), amount.Amount)
}

func (m *memCustody) ReleaseCustody(ctx sdk.Context, poolID, to string, amount sdk.Coin) error {
	return m.move(m.pools, custodyKey(poolID, amount.Denom), m.accounts, custodyKey(to, amount.Denom), amount.Amount)
}

func (m *memCustody) CustodyBalance(ctx sdk.Context, poolID, denom string) math.Int {
	return custodyBal(m.pools, custodyKey(poolID, denom))
}

func (m *memCustody) SendToModule(ctx sdk.Context, from string, amount sdk.Coin) error {
	return m.move(m.accounts, custodyKey(from, amount.Denom), m.module, amount.Denom, amount.Amount)
}

func (m *memCustody) SendFromModule(ctx sdk.Context, to string, amount sdk.Coin) error {
	return m.move(m.module, amount.Denom, m.accounts, custodyKey(to, amount.Denom), amount.Amount)
}

func (m *memCustody) ModuleBalance(ctx sdk.Context, denom string) math.Int {
	return custodyBal(m.module, denom)
}

func (m *memCustody) ModuleToCustody(ctx sdk.Context, poolID string, amount sdk.Coin) error {
	return m.move(m.module, amount.Denom, m.pools, custodyKey(poolID, amount.Denom), amount.Amount)
}

// fixedRouter swaps any token into the settlement asset at 1:1. It consumes
// the input from the module account and credits the output there, so the
// keeper's delivery check passes with a real balance movement.
type fixedRouter struct {
	custody *memCustody
}

func (r *fixedRouter) Quote(ctx sdk.Context, tokenIn, tokenOut string, amountIn math.Int) math.Int {
	return amountIn
}

func (r *fixedRouter) Swap(ctx sdk.Context, tokenIn, tokenOut string, amountIn, minAmountOut math.Int, deadline int64) (math.Int, error) {
	if err := r.custody.move(r.custody.module, tokenIn, r.custody.module, "router|"+tokenIn, amountIn); err != nil {
		return math.ZeroInt(), err
	}
	r.custody.module[tokenOut] = custodyBal(r.custody.module, tokenOut).Add(amountIn)
	return amountIn, nil
}

// NewKeeperService creates a KeeperService with in-memory keepers and a
// seeded pool set
func NewKeeperService() *KeeperService {
	interfaceRegistry := codectypes.NewInterfaceRegistry()
	cdc := codec.NewProtoCodec(interfaceRegistry)

	vestKey := storetypes.NewKVStoreKey(vesttypes.StoreKey)
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
		panic(fmt.Sprintf("failed to load store: %v", err))
	}

	ctx := sdk.NewContext(stateStore, cmtproto.Header{
		Time:   time.Now(),
		Height: 1,
	}, false, log.NewNopLogger())

	authority := sdk.AccAddress([]byte("standalone-authority")).String()
	treasury := sdk.AccAddress([]byte("standalone-treasury-")).String()

	shares := sharekeeper.NewKeeper(cdc, shareKey, log.NewNopLogger())
	receipts := receiptkeeper.NewKeeper(cdc, receiptKey, log.NewNopLogger())
	fees := feesinkkeeper.NewKeeper(cdc, feesinkKey, shares, authority, log.NewNopLogger())
	custody := newMemCustody()

	k := vestkeeper.NewKeeper(
		cdc,
		vestKey,
		svcShareBridge{shares},
		svcReceiptBridge{receipts},
		svcFeeBridge{fees},
		custody,
		&fixedRouter{custody: custody},
		authority,
		log.NewNopLogger(),
	)

	s := &KeeperService{
		keeper:   k,
		shares:   shares,
		receipts: receipts,
		fees:     fees,
		custody:  custody,
		ctx:      ctx,
	}
	s.bootstrap(authority, treasury)
	return s
}

// bootstrap seeds params, treasury, and the standing pool set so the server
// is usable without a separate admin flow
func (s *KeeperService) bootstrap(authority, treasury string) {
	if err := s.keeper.SetParams(s.ctx, vesttypes.DefaultParams()); err != nil {
		panic(fmt.Sprintf("failed to set params: %v", err))
	}
	if err := s.fees.SetTreasury(s.ctx, treasury); err != nil {
		panic(fmt.Sprintf("failed to set treasury: %v", err))
	}

	seed := []vestkeeper.CreatePoolParams{
		{
			Name:      "Stable Yield 90",
			Admin:     sdk.AccAddress([]byte("standalone-admin----")).String(),
			Custodian: sdk.AccAddress([]byte("standalone-custodian")).String(),
			Reporter:  sdk.AccAddress([]byte("standalone-reporter-")).String(),
			Config: vesttypes.PoolConfig{
				LockDuration:      90 * 24 * 60 * 60,
				MinInvestment:     math.NewInt(1_000_000),
				MaxInvestment:     math.ZeroInt(),
				UtilizationCap:    math.ZeroInt(),
				ExpectedRateBps:   800,
				TaxRateBps:        100,
				AcceptingDeposits: true,
			},
		},
		{
			Name:      "Treasury 365",
			Admin:     sdk.AccAddress([]byte("standalone-admin----")).String(),
			Custodian: sdk.AccAddress([]byte("standalone-custodian")).String(),
			Reporter:  sdk.AccAddress([]byte("standalone-reporter-")).String(),
			Config: vesttypes.PoolConfig{
				LockDuration:      365 * 24 * 60 * 60,
				MinInvestment:     math.NewInt(5_000_000),
				MaxInvestment:     math.NewInt(1_000_000_000_000),
				UtilizationCap:    math.ZeroInt(),
				ExpectedRateBps:   1250,
				TaxRateBps:        150,
				AcceptingDeposits: true,
			},
		},
	}
	denom := s.keeper.GetParams(s.ctx).DefaultDenom
	for _, params := range seed {
		pool, err := s.keeper.CreatePool(s.ctx, authority, params)
		if err != nil {
			panic(fmt.Sprintf("failed to seed pool %s: %v", params.Name, err))
		}
		s.custody.creditReserve(pool.PoolID, denom)
	}
}

// advanceBlock moves the context clock to wall time before a state-changing
// call. Caller holds the write lock.
func (s *KeeperService) advanceBlock() {
	s.ctx = s.ctx.
		WithBlockTime(time.Now()).
		WithBlockHeight(s.ctx.BlockHeight() + 1)
}

// ============ DTO mapping ============

func (s *KeeperService) toAPIPool(pool *vesttypes.Pool) *types.Pool {
	return &types.Pool{
		PoolID:            pool.PoolID,
		Name:              pool.Name,
		Admin:             pool.Admin,
		Custodian:         pool.Custodian,
		Reporter:          pool.Reporter,
		ShareDenom:        pool.ShareDenom,
		Active:            pool.IsActive,
		AcceptingDeposits: pool.Config.AcceptingDeposits,
		LockDuration:      pool.Config.LockDuration,
		MinInvestment:     pool.Config.MinInvestment.String(),
		MaxInvestment:     pool.Config.MaxInvestment.String(),
		UtilizationCap:    pool.Config.UtilizationCap.String(),
		ExpectedRateBps:   pool.Config.ExpectedRateBps,
		TaxRateBps:        pool.Config.TaxRateBps,
		TotalDeposited:    pool.TotalDeposited.String(),
		TotalWithdrawn:    pool.TotalWithdrawn.String(),
		TotalShares:       s.shares.GetTotalSupply(s.ctx, pool.PoolID).String(),
		CreatedAt:         pool.CreatedAt,
		UpdatedAt:         pool.UpdatedAt,
	}
}

func toAPIInvestment(investment *vesttypes.Investment) *types.Investment {
	return &types.Investment{
		InvestmentID:   investment.InvestmentID,
		PoolID:         investment.PoolID,
		Investor:       investment.Investor,
		Amount:         investment.Amount.String(),
		Title:          investment.Title,
		DepositTime:    investment.DepositTime,
		MaturityTime:   investment.MaturityTime,
		ExpectedReturn: investment.ExpectedReturn.String(),
		ActualReturn:   investment.ActualReturn.String(),
		Status:         investment.Status(),
		ReceiptID:      investment.ReceiptID,
		WithdrawnAt:    investment.WithdrawnAt,
	}
}

func toAPIReceipt(receipt *receipttypes.Receipt) *types.Receipt {
	return &types.Receipt{
		ReceiptID:    receipt.ReceiptID,
		PoolID:       receipt.PoolID,
		InvestmentID: receipt.InvestmentID,
		Investor:     receipt.Investor,
		Amount:       receipt.Amount.String(),
		MaturityTime: receipt.MaturityTime,
		IssuedAt:     receipt.IssuedAt,
	}
}

// ============ PoolService Implementation ============

func (s *KeeperService) ListPools(ctx context.Context) ([]*types.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pools := s.keeper.GetAllPools(s.ctx)
	out := make([]*types.Pool, 0, len(pools))
	for _, pool := range pools {
		out = append(out, s.toAPIPool(pool))
	}
	return out, nil
}

func (s *KeeperService) GetPool(ctx context.Context, poolID string) (*types.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pool := s.keeper.GetPool(s.ctx, poolID)
	if pool == nil {
		return nil, fmt.Errorf("pool not found: %s", poolID)
	}
	return s.toAPIPool(pool), nil
}

func (s *KeeperService) GetPoolStats(ctx context.Context, poolID string) (*types.PoolStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := s.keeper.GetPoolStats(s.ctx, poolID)
	if stats == nil {
		return nil, fmt.Errorf("pool not found: %s", poolID)
	}
	return &types.PoolStats{
		PoolID:               stats.PoolID,
		TotalDeposited:       stats.TotalDeposited.String(),
		TotalWithdrawn:       stats.TotalWithdrawn.String(),
		TotalShares:          stats.TotalSupply.String(),
		ActiveInvestments:    stats.ActiveInvestments,
		MaturedInvestments:   stats.MaturedInvestments,
		WithdrawnInvestments: stats.WithdrawnInvestments,
		UpdatedAt:            stats.UpdatedAt,
	}, nil
}

func (s *KeeperService) GetPoolFees(ctx context.Context, poolID string) (*types.PoolFees, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pool := s.keeper.GetPool(s.ctx, poolID)
	if pool == nil {
		return nil, fmt.Errorf("pool not found: %s", poolID)
	}
	record := s.fees.GetPoolFees(s.ctx, poolID)
	if record == nil {
		// Nothing collected yet
		return &types.PoolFees{
			PoolID:         poolID,
			Denom:          pool.ShareDenom,
			TotalCollected: "0",
		}, nil
	}
	return &types.PoolFees{
		PoolID:         poolID,
		Denom:          record.Denom,
		TotalCollected: record.TotalCollected.String(),
		Collections:    record.Collections,
		UpdatedAt:      record.UpdatedAt,
	}, nil
}

// ============ InvestmentService Implementation ============

func (s *KeeperService) Invest(ctx context.Context, req *types.InvestRequest) (*types.InvestResponse, error) {
	amount, ok := math.NewIntFromString(req.Amount)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", req.Amount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceBlock()

	s.custody.ensure(req.Investor, s.keeper.GetParams(s.ctx).DefaultDenom)
	investment, shares, err := s.keeper.Invest(s.ctx, req.PoolID, req.Investor, amount, req.Title)
	if err != nil {
		return nil, err
	}
	return &types.InvestResponse{
		Investment: toAPIInvestment(investment),
		Shares:     shares.String(),
	}, nil
}

func (s *KeeperService) InvestWithSwap(ctx context.Context, req *types.InvestWithSwapRequest) (*types.InvestResponse, error) {
	amountIn, ok := math.NewIntFromString(req.AmountIn)
	if !ok {
		return nil, fmt.Errorf("invalid amount_in: %s", req.AmountIn)
	}
	minOut, ok := math.NewIntFromString(req.MinAmountOut)
	if !ok {
		return nil, fmt.Errorf("invalid min_amount_out: %s", req.MinAmountOut)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceBlock()

	s.custody.ensure(req.Investor, req.TokenIn)
	investment, shares, err := s.keeper.InvestWithSwap(s.ctx, req.PoolID, req.Investor, req.TokenIn, amountIn, minOut, req.Deadline, req.Title)
	if err != nil {
		return nil, err
	}
	return &types.InvestResponse{
		Investment: toAPIInvestment(investment),
		Shares:     shares.String(),
	}, nil
}

func (s *KeeperService) Withdraw(ctx context.Context, req *types.WithdrawRequest) (*types.WithdrawResponse, error) {
	shareAmount, ok := math.NewIntFromString(req.ShareAmount)
	if !ok {
		return nil, fmt.Errorf("invalid share_amount: %s", req.ShareAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceBlock()

	target := s.keeper.GetInvestmentByReceipt(s.ctx, req.ReceiptID)
	payout, burned, err := s.keeper.Withdraw(s.ctx, req.PoolID, req.Investor, req.ReceiptID, shareAmount)
	if err != nil {
		return nil, err
	}

	var investment *types.Investment
	if target != nil {
		if after := s.keeper.GetInvestment(s.ctx, target.InvestmentID); after != nil {
			investment = toAPIInvestment(after)
		}
	}
	return &types.WithdrawResponse{
		Investment:   investment,
		Payout:       payout.String(),
		SharesBurned: burned.String(),
	}, nil
}

func (s *KeeperService) GetInvestment(ctx context.Context, investmentID string) (*types.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	investment := s.keeper.GetInvestment(s.ctx, investmentID)
	if investment == nil {
		return nil, fmt.Errorf("investment not found: %s", investmentID)
	}
	return toAPIInvestment(investment), nil
}

func (s *KeeperService) ListInvestments(ctx context.Context, req *types.ListInvestmentsRequest) (*types.ListInvestmentsResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var investments []*vesttypes.Investment
	switch {
	case req.Investor != "":
		investments = s.keeper.GetInvestmentsByInvestor(s.ctx, req.Investor)
	case req.PoolID != "":
		investments = s.keeper.GetInvestmentsByPool(s.ctx, req.PoolID)
	default:
		investments = s.keeper.GetAllInvestments(s.ctx)
	}

	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	out := make([]*types.Investment, 0, len(investments))
	for _, investment := range investments {
		if req.Investor != "" && req.PoolID != "" && investment.PoolID != req.PoolID {
			continue
		}
		if req.Status != "" && investment.Status() != req.Status {
			continue
		}
		out = append(out, toAPIInvestment(investment))
		if len(out) >= limit {
			break
		}
	}
	return &types.ListInvestmentsResponse{
		Investments: out,
		Total:       len(out),
	}, nil
}

func (s *KeeperService) PendingMaturities(ctx context.Context, limit int) ([]*types.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pending := s.keeper.PendingMaturities(s.ctx, time.Now().Unix(), limit)
	out := make([]*types.Investment, 0, len(pending))
	for _, investment := range pending {
		out = append(out, toAPIInvestment(investment))
	}
	return out, nil
}

func (s *KeeperService) GetReceipt(ctx context.Context, receiptID string) (*types.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	receipt := s.receipts.Get(s.ctx, receiptID)
	if receipt == nil {
		return nil, fmt.Errorf("receipt not found: %s", receiptID)
	}
	return toAPIReceipt(receipt), nil
}

func (s *KeeperService) ListReceipts(ctx context.Context, owner string) ([]*types.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	receipts := s.receipts.GetByOwner(s.ctx, owner)
	out := make([]*types.Receipt, 0, len(receipts))
	for _, receipt := range receipts {
		out = append(out, toAPIReceipt(receipt))
	}
	return out, nil
}

// ============ TreasuryService Implementation ============

func (s *KeeperService) GetTreasury(ctx context.Context) (*types.TreasuryInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	config := s.fees.GetTreasury(s.ctx)
	balances := s.fees.GetAllWithdrawable(s.ctx)
	info := &types.TreasuryInfo{
		Address:      config.Address,
		UpdatedAt:    config.UpdatedAt,
		Withdrawable: make([]*types.WithdrawableBalance, 0, len(balances)),
	}
	for _, balance := range balances {
		if balance.Amount.IsZero() {
			continue
		}
		info.Withdrawable = append(info.Withdrawable, &types.WithdrawableBalance{
			Denom:  balance.Denom,
			Amount: balance.Amount.String(),
		})
	}
	return info, nil
}

func (s *KeeperService) GetFeeEvents(ctx context.Context, limit int) ([]*types.FeeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.fees.GetFeeEvents(s.ctx)
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	out := make([]*types.FeeEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, &types.FeeEvent{
			EventID:   ev.EventID,
			PoolID:    ev.PoolID,
			Denom:     ev.Denom,
			Amount:    ev.Amount.String(),
			Kind:      ev.Kind,
			Payer:     ev.Payer,
			Recipient: ev.Recipient,
			Timestamp: ev.Timestamp,
		})
	}
	return out, nil
}

// ============ Helper Methods ============

// GetKeeper returns the underlying keeper for direct access in tests
func (s *KeeperService) GetKeeper() *vestkeeper.Keeper {
	return s.keeper
}

// GetContext returns the SDK context
func (s *KeeperService) GetContext() sdk.Context {
	return s.ctx
}
