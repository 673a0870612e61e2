package types

import (
	"cosmossdk.io/math"
)

// Module name and store key
const (
	ModuleName = "vest"
	StoreKey   = ModuleName
)

// Investment status, derived from the matured/withdrawn flags
const (
	StatusAccruing  = "accruing"
	StatusMatured   = "matured"
	StatusWithdrawn = "withdrawn"
)

// Lock duration bounds and rate arithmetic
const (
	MinLockDuration = 7 * 24 * 60 * 60   // 7 days
	MaxLockDuration = 730 * 24 * 60 * 60 // 730 days
	MaxRateBps      = int64(10000)
	BpsDenominator  = int64(10000)
	SecondsPerYear  = int64(365 * 24 * 60 * 60)
)

// PoolConfig is the replaceable parameter block of a pool. Updating it never
// touches investments already accepted; their expected return is frozen at
// deposit time.
type PoolConfig struct {
	LockDuration      int64    `json:"lock_duration"` // seconds
	MinInvestment     math.Int `json:"min_investment"`
	MaxInvestment     math.Int `json:"max_investment"`  // 0 = no maximum
	UtilizationCap    math.Int `json:"utilization_cap"` // 0 = unbounded
	ExpectedRateBps   int64    `json:"expected_rate_bps"`
	TaxRateBps        int64    `json:"tax_rate_bps"` // 0 = protocol-wide default
	AcceptingDeposits bool     `json:"accepting_deposits"`
}

// Validate checks the config against the protocol bounds
func (c PoolConfig) Validate() error {
	if c.LockDuration < MinLockDuration || c.LockDuration > MaxLockDuration {
		return ErrInvalidLockDuration
	}
	if c.ExpectedRateBps < 0 || c.ExpectedRateBps > MaxRateBps {
		return ErrInvalidRate
	}
	if c.TaxRateBps < 0 || c.TaxRateBps > MaxRateBps {
		return ErrInvalidRate
	}
	if c.MinInvestment.IsNil() || !c.MinInvestment.IsPositive() {
		return ErrInvalidAmount
	}
	if c.MaxInvestment.IsNil() || c.MaxInvestment.IsNegative() {
		return ErrInvalidAmount
	}
	if !c.MaxInvestment.IsZero() && c.MaxInvestment.LT(c.MinInvestment) {
		return ErrInvalidAmount
	}
	if c.UtilizationCap.IsNil() || c.UtilizationCap.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// ExpectedReturn computes the projected yield for a deposit: linear pro-rata
// annualized, truncating toward zero. Not compounding.
func (c PoolConfig) ExpectedReturn(amount math.Int) math.Int {
	numerator := amount.
		Mul(math.NewInt(c.ExpectedRateBps)).
		Mul(math.NewInt(c.LockDuration))
	denominator := math.NewInt(BpsDenominator).Mul(math.NewInt(SecondsPerYear))
	return numerator.Quo(denominator)
}

// EffectiveTaxRate resolves the tax rate for a deposit: pool rate if set,
// otherwise the protocol-wide default.
func (c PoolConfig) EffectiveTaxRate(globalBps int64) int64 {
	if c.TaxRateBps > 0 {
		return c.TaxRateBps
	}
	return globalBps
}

// Pool is a time-locked investment pool
type Pool struct {
	PoolID    string `json:"pool_id"`
	Name      string `json:"name"`
	Admin     string `json:"admin"`     // may replace the config
	Custodian string `json:"custodian"` // holds deposited settlement assets
	Reporter  string `json:"reporter"`  // may report actual returns

	Config     PoolConfig `json:"config"`
	ShareDenom string     `json:"share_denom"`
	IsActive   bool       `json:"is_active"`

	// Lifetime counters; withdrawals never reduce TotalDeposited
	TotalDeposited math.Int `json:"total_deposited"`
	TotalWithdrawn math.Int `json:"total_withdrawn"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// NewPool creates an active pool with zeroed counters
func NewPool(poolID, name, admin, custodian, reporter string, config PoolConfig, now int64) *Pool {
	return &Pool{
		PoolID:         poolID,
		Name:           name,
		Admin:          admin,
		Custodian:      custodian,
		Reporter:       reporter,
		Config:         config,
		ShareDenom:     "share/" + poolID,
		IsActive:       true,
		TotalDeposited: math.ZeroInt(),
		TotalWithdrawn: math.ZeroInt(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// SharesForDeposit computes the shares minted for a deposit against the
// pre-deposit supply and principal. First deposit is 1:1; later deposits
// dilute proportionally, truncating toward zero.
func (p *Pool) SharesForDeposit(amount, totalSupply math.Int) math.Int {
	if totalSupply.IsZero() {
		return amount
	}
	return amount.Mul(totalSupply).Quo(p.TotalDeposited)
}

// CheckDepositBounds validates a deposit amount against the pool limits
func (p *Pool) CheckDepositBounds(amount math.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.LT(p.Config.MinInvestment) {
		return ErrBelowMinimum
	}
	if !p.Config.MaxInvestment.IsZero() && amount.GT(p.Config.MaxInvestment) {
		return ErrExceedsMaximum
	}
	if !p.Config.UtilizationCap.IsZero() && p.TotalDeposited.Add(amount).GT(p.Config.UtilizationCap) {
		return ErrExceedsCap
	}
	return nil
}

// Investment is one investor's time-locked position in a pool
type Investment struct {
	InvestmentID string   `json:"investment_id"`
	PoolID       string   `json:"pool_id"`
	Investor     string   `json:"investor"`
	Amount       math.Int `json:"amount"`
	Title        string   `json:"title,omitempty"`

	DepositTime  int64 `json:"deposit_time"`
	MaturityTime int64 `json:"maturity_time"`

	ExpectedReturn math.Int `json:"expected_return"`
	ActualReturn   math.Int `json:"actual_return"`

	IsMatured   bool   `json:"is_matured"`
	IsWithdrawn bool   `json:"is_withdrawn"`
	ReceiptID   string `json:"receipt_id"`
	WithdrawnAt int64  `json:"withdrawn_at,omitempty"`
}

// NewInvestment creates an accruing investment
func NewInvestment(investmentID, poolID, investor string, amount math.Int, title string, expectedReturn math.Int, depositTime, lockDuration int64) *Investment {
	return &Investment{
		InvestmentID:   investmentID,
		PoolID:         poolID,
		Investor:       investor,
		Amount:         amount,
		Title:          title,
		DepositTime:    depositTime,
		MaturityTime:   depositTime + lockDuration,
		ExpectedReturn: expectedReturn,
		ActualReturn:   math.ZeroInt(),
	}
}

// Status derives the lifecycle phase from the flags
func (i *Investment) Status() string {
	switch {
	case i.IsWithdrawn:
		return StatusWithdrawn
	case i.IsMatured:
		return StatusMatured
	default:
		return StatusAccruing
	}
}

// Payout returns the amount owed at withdrawal: principal plus the reported
// return, or the projected return if reporting never ran.
func (i *Investment) Payout() math.Int {
	if i.IsMatured {
		return i.Amount.Add(i.ActualReturn)
	}
	return i.Amount.Add(i.ExpectedReturn)
}

// Params are the protocol-wide settings
type Params struct {
	GlobalTaxRateBps int64  `json:"global_tax_rate_bps"`
	DefaultDenom     string `json:"default_denom"`
}

// DefaultParams returns the protocol defaults
func DefaultParams() Params {
	return Params{
		GlobalTaxRateBps: 100, // 1%
		DefaultDenom:     "uusdc",
	}
}

// Validate checks the params
func (p Params) Validate() error {
	if p.GlobalTaxRateBps < 0 || p.GlobalTaxRateBps > MaxRateBps {
		return ErrInvalidRate
	}
	if p.DefaultDenom == "" {
		return ErrInvalidAmount
	}
	return nil
}

// PoolStats aggregates pool statistics for queries
type PoolStats struct {
	PoolID               string   `json:"pool_id"`
	TotalDeposited       math.Int `json:"total_deposited"`
	TotalWithdrawn       math.Int `json:"total_withdrawn"`
	TotalSupply          math.Int `json:"total_supply"`
	ActiveInvestments    int64    `json:"active_investments"`
	MaturedInvestments   int64    `json:"matured_investments"`
	WithdrawnInvestments int64    `json:"withdrawn_investments"`
	UpdatedAt            int64    `json:"updated_at"`
}
