package keeper

import (
	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/eden-finance/vest-sub001/x/vest/types"
)

// CreatePoolParams bundles the inputs for pool creation
type CreatePoolParams struct {
	Name      string
	Admin     string
	Custodian string
	Reporter  string
	Config    types.PoolConfig
}

// CreatePool registers a new pool and its share ledger. Authority only.
func (k *Keeper) CreatePool(ctx sdk.Context, caller string, params CreatePoolParams) (*types.Pool, error) {
	if caller != k.authority {
		return nil, errors.Wrapf(types.ErrUnauthorized, "expected %s, got %s", k.authority, caller)
	}
	if params.Name == "" {
		return nil, errors.Wrap(types.ErrInvalidAmount, "pool name required")
	}
	for _, addr := range []string{params.Admin, params.Custodian, params.Reporter} {
		if _, err := sdk.AccAddressFromBech32(addr); err != nil {
			return nil, errors.Wrapf(types.ErrInvalidAddress, "%s: %v", addr, err)
		}
	}
	if err := params.Config.Validate(); err != nil {
		return nil, err
	}

	poolID := k.nextPoolID(ctx)
	if k.GetPool(ctx, poolID) != nil {
		return nil, types.ErrPoolExists
	}

	pool := types.NewPool(poolID, params.Name, params.Admin, params.Custodian, params.Reporter, params.Config, ctx.BlockTime().Unix())
	if err := k.shareKeeper.CreateLedger(ctx, poolID, poolID, pool.ShareDenom); err != nil {
		return nil, err
	}
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"pool_created",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("name", pool.Name),
			sdk.NewAttribute("admin", pool.Admin),
			sdk.NewAttribute("custodian", pool.Custodian),
			sdk.NewAttribute("reporter", pool.Reporter),
			sdk.NewAttribute("share_denom", pool.ShareDenom),
			sdk.NewAttribute("lock_duration", math.NewInt(pool.Config.LockDuration).String()),
			sdk.NewAttribute("expected_rate_bps", math.NewInt(pool.Config.ExpectedRateBps).String()),
		),
	)

	k.logger.Info("Pool created",
		"pool_id", poolID,
		"name", pool.Name,
		"lock_duration", pool.Config.LockDuration,
		"expected_rate_bps", pool.Config.ExpectedRateBps,
	)
	return pool, nil
}

// UpdatePoolConfig replaces a pool's config wholesale. Pool admin or
// authority. Existing investments keep the expected return computed when they
// were accepted.
func (k *Keeper) UpdatePoolConfig(ctx sdk.Context, caller, poolID string, config types.PoolConfig) error {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return types.ErrInvalidPool
	}
	if caller != pool.Admin && caller != k.authority {
		return errors.Wrapf(types.ErrUnauthorized, "caller %s is not the pool admin", caller)
	}
	if err := config.Validate(); err != nil {
		return err
	}

	pool.Config = config
	pool.UpdatedAt = ctx.BlockTime().Unix()
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"pool_config_updated",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("updated_by", caller),
			sdk.NewAttribute("lock_duration", math.NewInt(config.LockDuration).String()),
			sdk.NewAttribute("min_investment", config.MinInvestment.String()),
			sdk.NewAttribute("max_investment", config.MaxInvestment.String()),
			sdk.NewAttribute("utilization_cap", config.UtilizationCap.String()),
			sdk.NewAttribute("expected_rate_bps", math.NewInt(config.ExpectedRateBps).String()),
			sdk.NewAttribute("tax_rate_bps", math.NewInt(config.TaxRateBps).String()),
		),
	)

	k.logger.Info("Pool config updated", "pool_id", poolID, "updated_by", caller)
	return nil
}

// SetPoolActive flips a pool's active flag. Authority only.
func (k *Keeper) SetPoolActive(ctx sdk.Context, caller, poolID string, active bool) error {
	if caller != k.authority {
		return errors.Wrapf(types.ErrUnauthorized, "expected %s, got %s", k.authority, caller)
	}
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return types.ErrInvalidPool
	}

	pool.IsActive = active
	pool.UpdatedAt = ctx.BlockTime().Unix()
	k.SetPool(ctx, pool)

	event := "pool_activated"
	if !active {
		event = "pool_deactivated"
	}
	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			event,
			sdk.NewAttribute("pool_id", poolID),
		),
	)

	k.logger.Info("Pool active flag set", "pool_id", poolID, "active", active)
	return nil
}

// SetGlobalTaxRate updates the protocol-wide default tax rate. Authority only.
func (k *Keeper) SetGlobalTaxRate(ctx sdk.Context, caller string, rateBps int64) error {
	if caller != k.authority {
		return errors.Wrapf(types.ErrUnauthorized, "expected %s, got %s", k.authority, caller)
	}
	if rateBps < 0 || rateBps > types.MaxRateBps {
		return errors.Wrapf(types.ErrInvalidRate, "tax rate %d bps out of [0, %d]", rateBps, types.MaxRateBps)
	}

	params := k.GetParams(ctx)
	params.GlobalTaxRateBps = rateBps
	if err := k.SetParams(ctx, params); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"global_tax_rate_updated",
			sdk.NewAttribute("tax_rate_bps", math.NewInt(rateBps).String()),
		),
	)

	k.logger.Info("Global tax rate updated", "tax_rate_bps", rateBps)
	return nil
}

// SetProtocolTreasury updates the treasury address fee withdrawals and
// emergency sweeps drain to. Authority only.
func (k *Keeper) SetProtocolTreasury(ctx sdk.Context, caller, address string) error {
	if caller != k.authority {
		return errors.Wrapf(types.ErrUnauthorized, "expected %s, got %s", k.authority, caller)
	}
	if err := k.feeKeeper.SetTreasury(ctx, address); err != nil {
		return err
	}

	k.logger.Info("Protocol treasury updated", "address", address)
	return nil
}

// EmergencyWithdraw sweeps stray module balances to the protocol treasury.
// Authority only. The reason is part of the emitted event so the sweep is
// auditable, not just visible as a bare transfer.
func (k *Keeper) EmergencyWithdraw(ctx sdk.Context, caller, denom string, amount math.Int, reason string) error {
	if caller != k.authority {
		return errors.Wrapf(types.ErrUnauthorized, "expected %s, got %s", k.authority, caller)
	}
	if amount.IsNil() || !amount.IsPositive() {
		return errors.Wrapf(types.ErrInvalidAmount, "sweep amount %s", amount)
	}
	if reason == "" {
		return errors.Wrap(types.ErrInvalidAmount, "sweep reason required")
	}

	treasury := k.feeKeeper.GetTreasuryAddress(ctx)
	if treasury == "" {
		return errors.Wrap(types.ErrInvalidAddress, "protocol treasury not configured")
	}

	if err := k.custodyKeeper.SendFromModule(ctx, treasury, sdk.NewCoin(denom, amount)); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"emergency_withdraw",
			sdk.NewAttribute("denom", denom),
			sdk.NewAttribute("amount", amount.String()),
			sdk.NewAttribute("recipient", treasury),
			sdk.NewAttribute("reason", reason),
		),
	)

	k.logger.Warn("Emergency withdrawal executed",
		"denom", denom,
		"amount", amount.String(),
		"recipient", treasury,
		"reason", reason,
	)
	return nil
}
