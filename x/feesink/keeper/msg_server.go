package keeper

import (
	"context"

	"cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/eden-finance/vest-sub001/x/feesink/types"
)

// MsgServer implements the feesink message service
type MsgServer struct {
	keeper *Keeper
}

// NewMsgServerImpl creates a new MsgServer
func NewMsgServerImpl(keeper *Keeper) *MsgServer {
	return &MsgServer{keeper: keeper}
}

var _ types.MsgServer = (*MsgServer)(nil)

// WithdrawFees drains the claimable fee balance for one asset to the treasury
func (s *MsgServer) WithdrawFees(goCtx context.Context, msg *types.MsgWithdrawFees) (*types.MsgWithdrawFeesResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)

	if msg.Authority != s.keeper.GetAuthority() {
		return nil, errors.Wrapf(types.ErrUnauthorized, "expected %s, got %s", s.keeper.GetAuthority(), msg.Authority)
	}

	amount, recipient, err := s.keeper.WithdrawFees(ctx, msg.Denom)
	if err != nil {
		return nil, err
	}

	return &types.MsgWithdrawFeesResponse{
		Amount:    amount.String(),
		Recipient: recipient,
	}, nil
}
