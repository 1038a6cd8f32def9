package cmd

import (
	"encoding/json"
	"fmt"

	ibctm "github.com/cosmos/ibc-go/v8/modules/light-clients/07-tendermint"
	"github.com/spf13/cobra"

	"github.com/hyperledger-labs/namada-relayer/chains/namada"
	"github.com/hyperledger-labs/namada-relayer/core"
)

const (
	flagRPCAddr = "rpc-addr"
	flagKeyName = "key"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "manage configuration file",
	}

	cmd.AddCommand(
		generateChainConfigCmd(),
	)

	return cmd
}

// generateChainConfigCmd prints a chain entry which `chains add` accepts
func generateChainConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [chain-id]",
		Short: "Prints a chain config entry with the defaults",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rpcAddr, err := cmd.Flags().GetString(flagRPCAddr)
			if err != nil {
				return err
			}
			keyName, err := cmd.Flags().GetString(flagKeyName)
			if err != nil {
				return err
			}
			c := namada.ChainConfig{
				ChainId:        args[0],
				RpcAddr:        rpcAddr,
				RpcTimeout:     "10s",
				KeyName:        keyName,
				MaxGas:         namada.DefaultMaxGas,
				FeeToken:       namada.DefaultFeeToken,
				TxWasmFile:     namada.DefaultTxWasmFile,
				TrustThreshold: ibctm.DefaultTrustLevel,
			}
			if err := c.Validate(); err != nil {
				return err
			}
			entry, err := core.NewChainConfigEntry(namada.ModuleName, &c)
			if err != nil {
				return err
			}
			bz, err := json.MarshalIndent(entry, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(bz))
			return nil
		},
	}
	cmd.Flags().String(flagRPCAddr, "http://localhost:26657", "RPC address of the node")
	cmd.Flags().String(flagKeyName, "relayer", "alias of the key in the wallet")
	return cmd
}
