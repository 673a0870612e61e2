package types

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	cdctypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// RegisterInterfaces registers the module's interface types
func RegisterInterfaces(registry cdctypes.InterfaceRegistry) {
	registry.RegisterImplementations((*sdk.Msg)(nil),
		&MsgInvest{},
		&MsgInvestWithSwap{},
		&MsgWithdraw{},
		&MsgCreatePool{},
		&MsgUpdatePoolConfig{},
		&MsgSetPoolActive{},
		&MsgSetActualReturns{},
		&MsgSetGlobalTaxRate{},
		&MsgSetProtocolTreasury{},
		&MsgEmergencyWithdraw{},
	)
}

// Message types
const (
	TypeMsgInvest              = "invest"
	TypeMsgInvestWithSwap      = "invest_with_swap"
	TypeMsgWithdraw            = "withdraw"
	TypeMsgCreatePool          = "create_pool"
	TypeMsgUpdatePoolConfig    = "update_pool_config"
	TypeMsgSetPoolActive       = "set_pool_active"
	TypeMsgSetActualReturns    = "set_actual_returns"
	TypeMsgSetGlobalTaxRate    = "set_global_tax_rate"
	TypeMsgSetProtocolTreasury = "set_protocol_treasury"
	TypeMsgEmergencyWithdraw   = "emergency_withdraw"
)

// MsgServer defines the vest module's message service
type MsgServer interface {
	Invest(context.Context, *MsgInvest) (*MsgInvestResponse, error)
	InvestWithSwap(context.Context, *MsgInvestWithSwap) (*MsgInvestWithSwapResponse, error)
	Withdraw(context.Context, *MsgWithdraw) (*MsgWithdrawResponse, error)
	CreatePool(context.Context, *MsgCreatePool) (*MsgCreatePoolResponse, error)
	UpdatePoolConfig(context.Context, *MsgUpdatePoolConfig) (*MsgUpdatePoolConfigResponse, error)
	SetPoolActive(context.Context, *MsgSetPoolActive) (*MsgSetPoolActiveResponse, error)
	SetActualReturns(context.Context, *MsgSetActualReturns) (*MsgSetActualReturnsResponse, error)
	SetGlobalTaxRate(context.Context, *MsgSetGlobalTaxRate) (*MsgSetGlobalTaxRateResponse, error)
	SetProtocolTreasury(context.Context, *MsgSetProtocolTreasury) (*MsgSetProtocolTreasuryResponse, error)
	EmergencyWithdraw(context.Context, *MsgEmergencyWithdraw) (*MsgEmergencyWithdrawResponse, error)
}

// RegisterMsgServer registers the MsgServer to the configurator's MsgServer
func RegisterMsgServer(s interface{}, srv MsgServer) {
	// This is a placeholder - in production, this would use gRPC registration
	// For now, the messages are handled through the module's handler
}

// MsgPoolConfig is the wire form of a pool config; amounts travel as strings
type MsgPoolConfig struct {
	LockDuration      int64  `json:"lock_duration"`
	MinInvestment     string `json:"min_investment"`
	MaxInvestment     string `json:"max_investment"`
	UtilizationCap    string `json:"utilization_cap"`
	ExpectedRateBps   int64  `json:"expected_rate_bps"`
	TaxRateBps        int64  `json:"tax_rate_bps"`
	AcceptingDeposits bool   `json:"accepting_deposits"`
}

// Parse converts the wire form into a PoolConfig, without bounds validation
func (m MsgPoolConfig) Parse() (PoolConfig, error) {
	minInvestment, ok := math.NewIntFromString(m.MinInvestment)
	if !ok {
		return PoolConfig{}, ErrInvalidAmount
	}
	maxInvestment, ok := math.NewIntFromString(m.MaxInvestment)
	if !ok {
		return PoolConfig{}, ErrInvalidAmount
	}
	utilizationCap, ok := math.NewIntFromString(m.UtilizationCap)
	if !ok {
		return PoolConfig{}, ErrInvalidAmount
	}
	return PoolConfig{
		LockDuration:      m.LockDuration,
		MinInvestment:     minInvestment,
		MaxInvestment:     maxInvestment,
		UtilizationCap:    utilizationCap,
		ExpectedRateBps:   m.ExpectedRateBps,
		TaxRateBps:        m.TaxRateBps,
		AcceptingDeposits: m.AcceptingDeposits,
	}, nil
}

// MsgInvest deposits settlement assets into a pool
type MsgInvest struct {
	Investor string `json:"investor"`
	PoolID   string `json:"pool_id"`
	Amount   string `json:"amount"`
	Title    string `json:"title,omitempty"`
}

// Route implements sdk.Msg
func (msg MsgInvest) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgInvest) Type() string { return TypeMsgInvest }

// ValidateBasic implements sdk.Msg
func (msg MsgInvest) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Investor); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrInvalidPool
	}
	if amount, ok := math.NewIntFromString(msg.Amount); !ok || !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgInvest) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Investor)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgInvest) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgInvest) Reset() { *msg = MsgInvest{} }

// String implements proto.Message
func (msg MsgInvest) String() string {
	return fmt.Sprintf("MsgInvest{Investor: %s, PoolID: %s, Amount: %s}", msg.Investor, msg.PoolID, msg.Amount)
}

// XXX_MessageName returns the message type URL for MsgInvest
func (msg *MsgInvest) XXX_MessageName() string {
	return "edenvest.vest.v1.MsgInvest"
}

// MsgInvestResponse defines the Invest response
type MsgInvestResponse struct {
	InvestmentID   string `json:"investment_id"`
	ReceiptID      string `json:"receipt_id"`
	NetShares      string `json:"net_shares"`
	ExpectedReturn string `json:"expected_return"`
	MaturityTime   int64  `json:"maturity_time"`
}

func (msg *MsgInvestResponse) Reset()         { *msg = MsgInvestResponse{} }
func (msg *MsgInvestResponse) String() string { return "MsgInvestResponse{}" }
func (msg *MsgInvestResponse) ProtoMessage()  {}

// MsgInvestWithSwap swaps tokenIn into the settlement asset first, then
// deposits the swapped amount
type MsgInvestWithSwap struct {
	Investor     string `json:"investor"`
	PoolID       string `json:"pool_id"`
	TokenIn      string `json:"token_in"`
	AmountIn     string `json:"amount_in"`
	MinAmountOut string `json:"min_amount_out"`
	Deadline     int64  `json:"deadline"`
	Title        string `json:"title,omitempty"`
}

// Route implements sdk.Msg
func (msg MsgInvestWithSwap) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgInvestWithSwap) Type() string { return TypeMsgInvestWithSwap }

// ValidateBasic implements sdk.Msg
func (msg MsgInvestWithSwap) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Investor); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrInvalidPool
	}
	if msg.TokenIn == "" {
		return ErrInvalidAmount
	}
	if amountIn, ok := math.NewIntFromString(msg.AmountIn); !ok || !amountIn.IsPositive() {
		return ErrInvalidAmount
	}
	if minOut, ok := math.NewIntFromString(msg.MinAmountOut); !ok || !minOut.IsPositive() {
		return ErrInvalidAmount
	}
	if msg.Deadline <= 0 {
		return ErrDeadlineExpired
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgInvestWithSwap) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Investor)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgInvestWithSwap) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgInvestWithSwap) Reset() { *msg = MsgInvestWithSwap{} }

// String implements proto.Message
func (msg MsgInvestWithSwap) String() string {
	return fmt.Sprintf("MsgInvestWithSwap{Investor: %s, PoolID: %s, TokenIn: %s, AmountIn: %s}", msg.Investor, msg.PoolID, msg.TokenIn, msg.AmountIn)
}

// XXX_MessageName returns the message type URL for MsgInvestWithSwap
func (msg *MsgInvestWithSwap) XXX_MessageName() string {
	return "edenvest.vest.v1.MsgInvestWithSwap"
}

// MsgInvestWithSwapResponse defines the InvestWithSwap response
type MsgInvestWithSwapResponse struct {
	InvestmentID string `json:"investment_id"`
	ReceiptID    string `json:"receipt_id"`
	AmountOut    string `json:"amount_out"`
	NetShares    string `json:"net_shares"`
	MaturityTime int64  `json:"maturity_time"`
}

func (msg *MsgInvestWithSwapResponse) Reset()         { *msg = MsgInvestWithSwapResponse{} }
func (msg *MsgInvestWithSwapResponse) String() string { return "MsgInvestWithSwapResponse{}" }
func (msg *MsgInvestWithSwapResponse) ProtoMessage()  {}

// MsgWithdraw redeems a matured investment against its receipt
type MsgWithdraw struct {
	Investor    string `json:"investor"`
	PoolID      string `json:"pool_id"`
	ReceiptID   string `json:"receipt_id"`
	ShareAmount string `json:"share_amount"`
}

// Route implements sdk.Msg
func (msg MsgWithdraw) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgWithdraw) Type() string { return TypeMsgWithdraw }

// ValidateBasic implements sdk.Msg
func (msg MsgWithdraw) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Investor); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrInvalidPool
	}
	if msg.ReceiptID == "" {
		return ErrInvestmentNotFound
	}
	if shares, ok := math.NewIntFromString(msg.ShareAmount); !ok || !shares.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgWithdraw) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Investor)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgWithdraw) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgWithdraw) Reset() { *msg = MsgWithdraw{} }

// String implements proto.Message
func (msg MsgWithdraw) String() string {
	return fmt.Sprintf("MsgWithdraw{Investor: %s, PoolID: %s, ReceiptID: %s}", msg.Investor, msg.PoolID, msg.ReceiptID)
}

// XXX_MessageName returns the message type URL for MsgWithdraw
func (msg *MsgWithdraw) XXX_MessageName() string {
	return "edenvest.vest.v1.MsgWithdraw"
}

// MsgWithdrawResponse defines the Withdraw response
type MsgWithdrawResponse struct {
	Payout       string `json:"payout"`
	SharesBurned string `json:"shares_burned"`
}

func (msg *MsgWithdrawResponse) Reset()         { *msg = MsgWithdrawResponse{} }
func (msg *MsgWithdrawResponse) String() string { return "MsgWithdrawResponse{}" }
func (msg *MsgWithdrawResponse) ProtoMessage()  {}

// MsgCreatePool registers a new investment pool
type MsgCreatePool struct {
	Authority string        `json:"authority"`
	Name      string        `json:"name"`
	Admin     string        `json:"admin"`
	Custodian string        `json:"custodian"`
	Reporter  string        `json:"reporter"`
	Config    MsgPoolConfig `json:"config"`
}

// Route implements sdk.Msg
func (msg MsgCreatePool) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgCreatePool) Type() string { return TypeMsgCreatePool }

// ValidateBasic implements sdk.Msg
func (msg MsgCreatePool) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return err
	}
	if msg.Name == "" {
		return ErrInvalidAmount
	}
	if _, err := msg.Config.Parse(); err != nil {
		return err
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgCreatePool) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgCreatePool) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgCreatePool) Reset() { *msg = MsgCreatePool{} }

// String implements proto.Message
func (msg MsgCreatePool) String() string {
	return fmt.Sprintf("MsgCreatePool{Authority: %s, Name: %s}", msg.Authority, msg.Name)
}

// XXX_MessageName returns the message type URL for MsgCreatePool
func (msg *MsgCreatePool) XXX_MessageName() string {
	return "edenvest.vest.v1.MsgCreatePool"
}

// MsgCreatePoolResponse defines the CreatePool response
type MsgCreatePoolResponse struct {
	PoolID     string `json:"pool_id"`
	ShareDenom string `json:"share_denom"`
}

func (msg *MsgCreatePoolResponse) Reset()         { *msg = MsgCreatePoolResponse{} }
func (msg *MsgCreatePoolResponse) String() string { return "MsgCreatePoolResponse{}" }
func (msg *MsgCreatePoolResponse) ProtoMessage()  {}

// MsgUpdatePoolConfig replaces a pool's config wholesale
type MsgUpdatePoolConfig struct {
	Creator string        `json:"creator"`
	PoolID  string        `json:"pool_id"`
	Config  MsgPoolConfig `json:"config"`
}

// Route implements sdk.Msg
func (msg MsgUpdatePoolConfig) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgUpdatePoolConfig) Type() string { return TypeMsgUpdatePoolConfig }

// ValidateBasic implements sdk.Msg
func (msg MsgUpdatePoolConfig) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Creator); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrInvalidPool
	}
	if _, err := msg.Config.Parse(); err != nil {
		return err
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgUpdatePoolConfig) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Creator)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgUpdatePoolConfig) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgUpdatePoolConfig) Reset() { *msg = MsgUpdatePoolConfig{} }

// String implements proto.Message
func (msg MsgUpdatePoolConfig) String() string {
	return fmt.Sprintf("MsgUpdatePoolConfig{Creator: %s, PoolID: %s}", msg.Creator, msg.PoolID)
}

// XXX_MessageName returns the message type URL for MsgUpdatePoolConfig
func (msg *MsgUpdatePoolConfig) XXX_MessageName() string {
	return "edenvest.vest.v1.MsgUpdatePoolConfig"
}

// MsgUpdatePoolConfigResponse defines the UpdatePoolConfig response
type MsgUpdatePoolConfigResponse struct{}

func (msg *MsgUpdatePoolConfigResponse) Reset()         { *msg = MsgUpdatePoolConfigResponse{} }
func (msg *MsgUpdatePoolConfigResponse) String() string { return "MsgUpdatePoolConfigResponse{}" }
func (msg *MsgUpdatePoolConfigResponse) ProtoMessage()  {}

// MsgSetPoolActive flips a pool's active flag
type MsgSetPoolActive struct {
	Authority string `json:"authority"`
	PoolID    string `json:"pool_id"`
	Active    bool   `json:"active"`
}

// Route implements sdk.Msg
func (msg MsgSetPoolActive) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgSetPoolActive) Type() string { return TypeMsgSetPoolActive }

// ValidateBasic implements sdk.Msg
func (msg MsgSetPoolActive) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrInvalidPool
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgSetPoolActive) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgSetPoolActive) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgSetPoolActive) Reset() { *msg = MsgSetPoolActive{} }

// String implements proto.Message
func (msg MsgSetPoolActive) String() string {
	return fmt.Sprintf("MsgSetPoolActive{Authority: %s, PoolID: %s, Active: %t}", msg.Authority, msg.PoolID, msg.Active)
}

// XXX_MessageName returns the message type URL for MsgSetPoolActive
func (msg *MsgSetPoolActive) XXX_MessageName() string {
	return "edenvest.vest.v1.MsgSetPoolActive"
}

// MsgSetPoolActiveResponse defines the SetPoolActive response
type MsgSetPoolActiveResponse struct{}

func (msg *MsgSetPoolActiveResponse) Reset()         { *msg = MsgSetPoolActiveResponse{} }
func (msg *MsgSetPoolActiveResponse) String() string { return "MsgSetPoolActiveResponse{}" }
func (msg *MsgSetPoolActiveResponse) ProtoMessage()  {}

// MsgSetActualReturns reports realized returns for a batch of investments
type MsgSetActualReturns struct {
	Reporter      string   `json:"reporter"`
	PoolID        string   `json:"pool_id"`
	InvestmentIDs []string `json:"investment_ids"`
	ActualReturns []string `json:"actual_returns"`
}

// Route implements sdk.Msg
func (msg MsgSetActualReturns) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgSetActualReturns) Type() string { return TypeMsgSetActualReturns }

// ValidateBasic implements sdk.Msg
func (msg MsgSetActualReturns) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Reporter); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrInvalidPool
	}
	if len(msg.InvestmentIDs) == 0 || len(msg.InvestmentIDs) != len(msg.ActualReturns) {
		return ErrInvalidAmount
	}
	for _, ret := range msg.ActualReturns {
		if _, ok := math.NewIntFromString(ret); !ok {
			return ErrInvalidAmount
		}
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgSetActualReturns) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Reporter)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgSetActualReturns) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgSetActualReturns) Reset() { *msg = MsgSetActualReturns{} }

// String implements proto.Message
func (msg MsgSetActualReturns) String() string {
	return fmt.Sprintf("MsgSetActualReturns{Reporter: %s, PoolID: %s, Entries: %d}", msg.Reporter, msg.PoolID, len(msg.InvestmentIDs))
}

// XXX_MessageName returns the message type URL for MsgSetActualReturns
func (msg *MsgSetActualReturns) XXX_MessageName() string {
	return "edenvest.vest.v1.MsgSetActualReturns"
}

// MsgSetActualReturnsResponse defines the SetActualReturns response
type MsgSetActualReturnsResponse struct {
	Applied int64 `json:"applied"`
}

func (msg *MsgSetActualReturnsResponse) Reset()         { *msg = MsgSetActualReturnsResponse{} }
func (msg *MsgSetActualReturnsResponse) String() string { return "MsgSetActualReturnsResponse{}" }
func (msg *MsgSetActualReturnsResponse) ProtoMessage()  {}

// MsgSetGlobalTaxRate updates the protocol-wide default tax rate
type MsgSetGlobalTaxRate struct {
	Authority  string `json:"authority"`
	TaxRateBps int64  `json:"tax_rate_bps"`
}

// Route implements sdk.Msg
func (msg MsgSetGlobalTaxRate) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgSetGlobalTaxRate) Type() string { return TypeMsgSetGlobalTaxRate }

// ValidateBasic implements sdk.Msg
func (msg MsgSetGlobalTaxRate) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return err
	}
	if msg.TaxRateBps < 0 || msg.TaxRateBps > MaxRateBps {
		return ErrInvalidRate
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgSetGlobalTaxRate) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgSetGlobalTaxRate) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgSetGlobalTaxRate) Reset() { *msg = MsgSetGlobalTaxRate{} }

// String implements proto.Message
func (msg MsgSetGlobalTaxRate) String() string {
	return fmt.Sprintf("MsgSetGlobalTaxRate{Authority: %s, TaxRateBps: %d}", msg.Authority, msg.TaxRateBps)
}

// XXX_MessageName returns the message type URL for MsgSetGlobalTaxRate
func (msg *MsgSetGlobalTaxRate) XXX_MessageName() string {
	return "edenvest.vest.v1.MsgSetGlobalTaxRate"
}

// MsgSetGlobalTaxRateResponse defines the SetGlobalTaxRate response
type MsgSetGlobalTaxRateResponse struct{}

func (msg *MsgSetGlobalTaxRateResponse) Reset()         { *msg = MsgSetGlobalTaxRateResponse{} }
func (msg *MsgSetGlobalTaxRateResponse) String() string { return "MsgSetGlobalTaxRateResponse{}" }
func (msg *MsgSetGlobalTaxRateResponse) ProtoMessage()  {}

// MsgSetProtocolTreasury updates the treasury address
type MsgSetProtocolTreasury struct {
	Authority string `json:"authority"`
	Address   string `json:"address"`
}

// Route implements sdk.Msg
func (msg MsgSetProtocolTreasury) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgSetProtocolTreasury) Type() string { return TypeMsgSetProtocolTreasury }

// ValidateBasic implements sdk.Msg
func (msg MsgSetProtocolTreasury) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return err
	}
	if _, err := sdk.AccAddressFromBech32(msg.Address); err != nil {
		return err
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgSetProtocolTreasury) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgSetProtocolTreasury) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgSetProtocolTreasury) Reset() { *msg = MsgSetProtocolTreasury{} }

// String implements proto.Message
func (msg MsgSetProtocolTreasury) String() string {
	return fmt.Sprintf("MsgSetProtocolTreasury{Authority: %s, Address: %s}", msg.Authority, msg.Address)
}

// XXX_MessageName returns the message type URL for MsgSetProtocolTreasury
func (msg *MsgSetProtocolTreasury) XXX_MessageName() string {
	return "edenvest.vest.v1.MsgSetProtocolTreasury"
}

// MsgSetProtocolTreasuryResponse defines the SetProtocolTreasury response
type MsgSetProtocolTreasuryResponse struct{}

func (msg *MsgSetProtocolTreasuryResponse) Reset()         { *msg = MsgSetProtocolTreasuryResponse{} }
func (msg *MsgSetProtocolTreasuryResponse) String() string { return "MsgSetProtocolTreasuryResponse{}" }
func (msg *MsgSetProtocolTreasuryResponse) ProtoMessage()  {}

// MsgEmergencyWithdraw sweeps stray module balances to the protocol treasury
type MsgEmergencyWithdraw struct {
	Authority string `json:"authority"`
	Denom     string `json:"denom"`
	Amount    string `json:"amount"`
	Reason    string `json:"reason"`
}

// Route implements sdk.Msg
func (msg MsgEmergencyWithdraw) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgEmergencyWithdraw) Type() string { return TypeMsgEmergencyWithdraw }

// ValidateBasic implements sdk.Msg
func (msg MsgEmergencyWithdraw) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return err
	}
	if msg.Denom == "" {
		return ErrInvalidAmount
	}
	if amount, ok := math.NewIntFromString(msg.Amount); !ok || !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if msg.Reason == "" {
		return ErrInvalidAmount
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgEmergencyWithdraw) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgEmergencyWithdraw) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgEmergencyWithdraw) Reset() { *msg = MsgEmergencyWithdraw{} }

// String implements proto.Message
func (msg MsgEmergencyWithdraw) String() string {
	return fmt.Sprintf("MsgEmergencyWithdraw{Authority: %s, Denom: %s, Amount: %s, Reason: %s}", msg.Authority, msg.Denom, msg.Amount, msg.Reason)
}

// XXX_MessageName returns the message type URL for MsgEmergencyWithdraw
func (msg *MsgEmergencyWithdraw) XXX_MessageName() string {
	return "edenvest.vest.v1.MsgEmergencyWithdraw"
}

// MsgEmergencyWithdrawResponse defines the EmergencyWithdraw response
type MsgEmergencyWithdrawResponse struct{}

func (msg *MsgEmergencyWithdrawResponse) Reset()         { *msg = MsgEmergencyWithdrawResponse{} }
func (msg *MsgEmergencyWithdrawResponse) String() string { return "MsgEmergencyWithdrawResponse{}" }
func (msg *MsgEmergencyWithdrawResponse) ProtoMessage()  {}

// Ensure all messages implement sdk.Msg interface
var (
	_ sdk.Msg = &MsgInvest{}
	_ sdk.Msg = &MsgInvestWithSwap{}
	_ sdk.Msg = &MsgWithdraw{}
	_ sdk.Msg = &MsgCreatePool{}
	_ sdk.Msg = &MsgUpdatePoolConfig{}
	_ sdk.Msg = &MsgSetPoolActive{}
	_ sdk.Msg = &MsgSetActualReturns{}
	_ sdk.Msg = &MsgSetGlobalTaxRate{}
	_ sdk.Msg = &MsgSetProtocolTreasury{}
	_ sdk.Msg = &MsgEmergencyWithdraw{}
)
