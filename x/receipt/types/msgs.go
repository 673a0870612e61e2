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
		&MsgTransferReceipt{},
	)
}

// Message types
const (
	TypeMsgTransferReceipt = "transfer_receipt"
)

// MsgServer defines the receipt module's message service. The only message
// exists so that transfer attempts get the dedicated rejection rather than an
// unknown-route failure.
type MsgServer interface {
	TransferReceipt(context.Context, *MsgTransferReceipt) (*MsgTransferReceiptResponse, error)
}

// RegisterMsgServer registers the MsgServer to the configurator's MsgServer
func RegisterMsgServer(s interface{}, srv MsgServer) {
	// This is a placeholder - in production, this would use gRPC registration
	// For now, the messages are handled through the module's handler
}

// MsgTransferReceipt is an attempted holder-to-holder receipt move. It is
// always rejected; the message type exists so the rejection is explicit.
type MsgTransferReceipt struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	ReceiptID string `json:"receipt_id"`
}

// Route implements sdk.Msg
func (msg MsgTransferReceipt) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgTransferReceipt) Type() string { return TypeMsgTransferReceipt }

// ValidateBasic implements sdk.Msg
func (msg MsgTransferReceipt) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return err
	}
	if _, err := sdk.AccAddressFromBech32(msg.Recipient); err != nil {
		return err
	}
	if msg.ReceiptID == "" {
		return ErrReceiptNotFound
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgTransferReceipt) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Sender)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgTransferReceipt) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgTransferReceipt) Reset() { *msg = MsgTransferReceipt{} }

// String implements proto.Message
func (msg MsgTransferReceipt) String() string {
	return fmt.Sprintf("MsgTransferReceipt{Sender: %s, Recipient: %s, ReceiptID: %s}", msg.Sender, msg.Recipient, msg.ReceiptID)
}

// XXX_MessageName returns the message type URL for MsgTransferReceipt
func (msg *MsgTransferReceipt) XXX_MessageName() string {
	return "edenvest.receipt.v1.MsgTransferReceipt"
}

// MsgTransferReceiptResponse is the response for MsgTransferReceipt. Never
// actually returned; every transfer attempt fails.
type MsgTransferReceiptResponse struct{}

// Proto interface implementations for MsgTransferReceiptResponse
func (msg *MsgTransferReceiptResponse) Reset()         { *msg = MsgTransferReceiptResponse{} }
func (msg *MsgTransferReceiptResponse) String() string { return "MsgTransferReceiptResponse{}" }
func (msg *MsgTransferReceiptResponse) ProtoMessage()  {}

// Ensure all messages implement sdk.Msg interface
var (
	_ sdk.Msg = &MsgTransferReceipt{}
)
