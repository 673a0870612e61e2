package types

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// ShareKeeper is the share ledger surface the fee sink needs: moving already
// minted shares between holders and reading balances. Fee collection never
// mints or burns.
type ShareKeeper interface {
	Transfer(ctx sdk.Context, ledgerID, from, to string, amount math.Int) error
	GetBalance(ctx sdk.Context, ledgerID, addr string) math.Int
}
