package namada

import (
	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/cosmos/cosmos-sdk/std"
	transfertypes "github.com/cosmos/ibc-go/v8/modules/apps/transfer/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	conntypes "github.com/cosmos/ibc-go/v8/modules/core/03-connection/types"
	chantypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	commitmenttypes "github.com/cosmos/ibc-go/v8/modules/core/23-commitment/types"
	ibctm "github.com/cosmos/ibc-go/v8/modules/light-clients/07-tendermint"
)

// RegisterInterfaces registers the IBC messages and client types which the chain stores and accepts
func RegisterInterfaces(registry codectypes.InterfaceRegistry) {
	std.RegisterInterfaces(registry)
	clienttypes.RegisterInterfaces(registry)
	conntypes.RegisterInterfaces(registry)
	chantypes.RegisterInterfaces(registry)
	commitmenttypes.RegisterInterfaces(registry)
	ibctm.RegisterInterfaces(registry)
	transfertypes.RegisterInterfaces(registry)
}

// MakeCodec returns a codec with the interfaces of RegisterInterfaces
func MakeCodec() *codec.ProtoCodec {
	registry := codectypes.NewInterfaceRegistry()
	RegisterInterfaces(registry)
	return codec.NewProtoCodec(registry)
}
