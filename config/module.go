package config

import (
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/spf13/cobra"

	"github.com/hyperledger-labs/namada-relayer/core"
)

// ModuleI defines an interface of Module
type ModuleI interface {
	// Name returns the name of the module
	Name() string

	// RegisterInterfaces register the module interfaces to protobuf Any.
	RegisterInterfaces(registry codectypes.InterfaceRegistry)

	// GetCmd returns the command
	GetCmd(ctx *Context) *cobra.Command
}

// ChainModuleI is a module which provides a chain type. The chain entries of the
// config whose type is the module name are decoded into NewChainConfig.
type ChainModuleI interface {
	ModuleI

	// NewChainConfig returns an empty chain config to decode into
	NewChainConfig() core.ChainConfig
}
