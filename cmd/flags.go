package cmd

import (
	"github.com/cosmos/cosmos-sdk/client/flags"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hyperledger-labs/namada-relayer/core"
)

const (
	flagYAML  = "yaml"
	flagProof = "proof"
)

func heightFlag(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().Uint64(flags.FlagHeight, 0, "Height of the state to query. 0 means the latest")
	if err := viper.BindPFlag(flags.FlagHeight, cmd.Flags().Lookup(flags.FlagHeight)); err != nil {
		panic(err)
	}
	return cmd
}

func yamlFlag(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().BoolP(flagYAML, "y", false, "output using yaml")
	if err := viper.BindPFlag(flagYAML, cmd.Flags().Lookup(flagYAML)); err != nil {
		panic(err)
	}
	return cmd
}

func proofFlag(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().Bool(flagProof, false, "query the proof of the value")
	if err := viper.BindPFlag(flagProof, cmd.Flags().Lookup(flagProof)); err != nil {
		panic(err)
	}
	return cmd
}

// queryHeight returns the height of the height flag in the revision of the chain
func queryHeight(chainID string) core.QueryHeight {
	h := viper.GetUint64(flags.FlagHeight)
	if h == 0 {
		return core.LatestHeight()
	}
	return core.SpecificHeight(clienttypes.NewHeight(clienttypes.ParseChainID(chainID), h))
}

func includeProof() core.IncludeProof {
	return core.IncludeProof(viper.GetBool(flagProof))
}
