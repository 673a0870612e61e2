package vest

import (
	"encoding/json"

	"cosmossdk.io/core/appmodule"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/codec"
	cdctypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/module"
	"github.com/grpc-ecosystem/grpc-gateway/runtime"

	"github.com/eden-finance/vest-sub001/x/vest/keeper"
	"github.com/eden-finance/vest-sub001/x/vest/types"
)

const (
	ModuleName = types.ModuleName
)

var (
	_ module.AppModuleBasic = AppModuleBasic{}
	_ appmodule.AppModule   = AppModule{}
)

// AppModuleBasic defines the basic application module for vest
type AppModuleBasic struct{}

// Name returns the module's name
func (AppModuleBasic) Name() string {
	return ModuleName
}

// RegisterLegacyAminoCodec registers the module's types on the given LegacyAmino codec
func (AppModuleBasic) RegisterLegacyAminoCodec(cdc *codec.LegacyAmino) {
	cdc.RegisterConcrete(&types.MsgInvest{}, "vest/MsgInvest", nil)
	cdc.RegisterConcrete(&types.MsgInvestWithSwap{}, "vest/MsgInvestWithSwap", nil)
	cdc.RegisterConcrete(&types.MsgWithdraw{}, "vest/MsgWithdraw", nil)
	cdc.RegisterConcrete(&types.MsgCreatePool{}, "vest/MsgCreatePool", nil)
	cdc.RegisterConcrete(&types.MsgUpdatePoolConfig{}, "vest/MsgUpdatePoolConfig", nil)
	cdc.RegisterConcrete(&types.MsgSetPoolActive{}, "vest/MsgSetPoolActive", nil)
	cdc.RegisterConcrete(&types.MsgSetActualReturns{}, "vest/MsgSetActualReturns", nil)
	cdc.RegisterConcrete(&types.MsgSetGlobalTaxRate{}, "vest/MsgSetGlobalTaxRate", nil)
	cdc.RegisterConcrete(&types.MsgSetProtocolTreasury{}, "vest/MsgSetProtocolTreasury", nil)
	cdc.RegisterConcrete(&types.MsgEmergencyWithdraw{}, "vest/MsgEmergencyWithdraw", nil)
}

// RegisterInterfaces registers the module's interface types
func (AppModuleBasic) RegisterInterfaces(registry cdctypes.InterfaceRegistry) {
	types.RegisterInterfaces(registry)
}

// DefaultGenesis returns default genesis state as raw bytes
func (AppModuleBasic) DefaultGenesis(cdc codec.JSONCodec) json.RawMessage {
	return nil
}

// ValidateGenesis performs genesis state validation
func (AppModuleBasic) ValidateGenesis(cdc codec.JSONCodec, config client.TxEncodingConfig, bz json.RawMessage) error {
	return nil
}

// RegisterGRPCGatewayRoutes registers the gRPC Gateway routes for the module
func (AppModuleBasic) RegisterGRPCGatewayRoutes(clientCtx client.Context, mux *runtime.ServeMux) {
}

// AppModule implements an application module for the vest module
type AppModule struct {
	AppModuleBasic
	keeper *keeper.Keeper
}

// NewAppModule creates a new AppModule object
func NewAppModule(k *keeper.Keeper) AppModule {
	return AppModule{
		AppModuleBasic: AppModuleBasic{},
		keeper:         k,
	}
}

// Name returns the module's name
func (am AppModule) Name() string {
	return ModuleName
}

// RegisterServices registers module services
func (am AppModule) RegisterServices(cfg module.Configurator) {
	_ = keeper.NewMsgServerImpl(am.keeper)
}

// IsOnePerModuleType implements the depinject.OnePerModuleType interface
func (am AppModule) IsOnePerModuleType() {}

// IsAppModule implements the appmodule.AppModule interface
func (am AppModule) IsAppModule() {}

// EndBlocker surfaces investments whose lock elapsed during the block
func (am AppModule) EndBlocker(ctx sdk.Context) error {
	return am.keeper.EndBlocker(ctx)
}
