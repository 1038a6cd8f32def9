package config

import (
	"fmt"

	"github.com/cosmos/cosmos-sdk/codec"

	"github.com/hyperledger-labs/namada-relayer/core"
)

type Context struct {
	Modules []ModuleI
	Codec   codec.ProtoCodecMarshaler
	Config  *Config
}

// NewChainConfig returns an empty chain config of the module named typ
func (ctx *Context) NewChainConfig(typ string) (core.ChainConfig, error) {
	for _, m := range ctx.Modules {
		if m.Name() != typ {
			continue
		}
		if cm, ok := m.(ChainModuleI); ok {
			return cm.NewChainConfig(), nil
		}
	}
	return nil, fmt.Errorf("no chain module of type %q", typ)
}
