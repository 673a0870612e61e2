package keeper

import (
	"context"

	"cosmossdk.io/errors"
	"github.com/eden-finance/vest-sub001/x/receipt/types"
)

// MsgServer defines the receipt MsgServer
type MsgServer struct {
	keeper *Keeper
}

// NewMsgServerImpl creates a new MsgServer instance
func NewMsgServerImpl(keeper *Keeper) *MsgServer {
	return &MsgServer{keeper: keeper}
}

var _ types.MsgServer = &MsgServer{}

// TransferReceipt rejects every holder-to-holder move. Issue and revoke are
// the only ownership transitions a receipt ever goes through; both happen
// inside the investment lifecycle, never via a message.
func (m *MsgServer) TransferReceipt(ctx context.Context, msg *types.MsgTransferReceipt) (*types.MsgTransferReceiptResponse, error) {
	if msg == nil {
		return nil, types.ErrReceiptNotFound
	}
	return nil, errors.Wrapf(types.ErrNonTransferable, "receipt %s cannot move from %s to %s", msg.ReceiptID, msg.Sender, msg.Recipient)
}
