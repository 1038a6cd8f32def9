package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperledger-labs/namada-relayer/chains/namada"
	"github.com/hyperledger-labs/namada-relayer/config"
)

func NamadaCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "namada",
		Short: "manage namada configurations",
	}

	cmd.AddCommand(
		configCmd(),
		keysCmd(ctx),
	)

	return cmd
}

// chainConfig returns the namada config of the chain in the config file
func chainConfig(ctx *config.Context, chainID string) (*namada.ChainConfig, error) {
	chain, err := ctx.Config.GetChain(chainID)
	if err != nil {
		return nil, err
	}
	c, ok := chain.(*namada.ChainConfig)
	if !ok {
		return nil, fmt.Errorf("chain %s is not a namada chain: %T", chainID, chain)
	}
	return c, nil
}
