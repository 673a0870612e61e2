package types

import (
	"context"
	"fmt"

	cdctypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// RegisterInterfaces registers the module's interface types
func RegisterInterfaces(registry cdctypes.InterfaceRegistry) {
	registry.RegisterImplementations((*sdk.Msg)(nil),
		&MsgWithdrawFees{},
	)
}

// Message types
const (
	TypeMsgWithdrawFees = "withdraw_fees"
)

// MsgServer defines the feesink module's message service
type MsgServer interface {
	WithdrawFees(context.Context, *MsgWithdrawFees) (*MsgWithdrawFeesResponse, error)
}

// RegisterMsgServer registers the MsgServer to the configurator's MsgServer
func RegisterMsgServer(s interface{}, srv MsgServer) {
	// This is a placeholder - in production, this would use gRPC registration
	// For now, the messages are handled through the module's handler
}

// MsgWithdrawFees drains the accumulated fee balance for one asset to the
// configured treasury address.
type MsgWithdrawFees struct {
	Authority string `json:"authority"`
	Denom     string `json:"denom"`
}

// Route implements sdk.Msg
func (msg MsgWithdrawFees) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgWithdrawFees) Type() string { return TypeMsgWithdrawFees }

// ValidateBasic implements sdk.Msg
func (msg MsgWithdrawFees) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return err
	}
	if msg.Denom == "" {
		return ErrInvalidAmount
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgWithdrawFees) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgWithdrawFees) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgWithdrawFees) Reset() { *msg = MsgWithdrawFees{} }

// String implements proto.Message
func (msg MsgWithdrawFees) String() string {
	return fmt.Sprintf("MsgWithdrawFees{Authority: %s, Denom: %s}", msg.Authority, msg.Denom)
}

// XXX_MessageName returns the message type URL for MsgWithdrawFees
func (msg *MsgWithdrawFees) XXX_MessageName() string {
	return "edenvest.feesink.v1.MsgWithdrawFees"
}

// MsgWithdrawFeesResponse is the response for MsgWithdrawFees
type MsgWithdrawFeesResponse struct {
	Amount    string `json:"amount"`
	Recipient string `json:"recipient"`
}

// Proto interface implementations for MsgWithdrawFeesResponse
func (msg *MsgWithdrawFeesResponse) Reset()         { *msg = MsgWithdrawFeesResponse{} }
func (msg *MsgWithdrawFeesResponse) String() string { return "MsgWithdrawFeesResponse{}" }
func (msg *MsgWithdrawFeesResponse) ProtoMessage()  {}

// Ensure all messages implement sdk.Msg interface
var (
	_ sdk.Msg = &MsgWithdrawFees{}
)
