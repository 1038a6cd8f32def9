package module

import (
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/spf13/cobra"

	"github.com/hyperledger-labs/namada-relayer/chains/namada"
	"github.com/hyperledger-labs/namada-relayer/chains/namada/cmd"
	"github.com/hyperledger-labs/namada-relayer/config"
	"github.com/hyperledger-labs/namada-relayer/core"
)

type Module struct{}

var _ config.ChainModuleI = (*Module)(nil)

// Name returns the name of the module
func (Module) Name() string {
	return namada.ModuleName
}

// RegisterInterfaces register the module interfaces to protobuf Any.
func (Module) RegisterInterfaces(registry codectypes.InterfaceRegistry) {
	namada.RegisterInterfaces(registry)
}

// GetCmd returns the command
func (Module) GetCmd(ctx *config.Context) *cobra.Command {
	return cmd.NamadaCmd(ctx)
}

// NewChainConfig returns an empty namada chain config
func (Module) NewChainConfig() core.ChainConfig {
	return &namada.ChainConfig{}
}
