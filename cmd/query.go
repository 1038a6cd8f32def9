package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	commitmenttypes "github.com/cosmos/ibc-go/v8/modules/core/23-commitment/types"
	"github.com/spf13/cobra"

	"github.com/hyperledger-labs/namada-relayer/config"
	"github.com/hyperledger-labs/namada-relayer/core"
)

const (
	flagDenom = "denom"
	flagAll   = "all"
)

// queryCmd represents the chain command
func queryCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "query",
		Aliases: []string{"q"},
		Short:   "IBC Query Commands",
		Long:    "Commands to query IBC primitives, and other useful data on configured chains.",
		RunE:    noCommand,
	}

	cmd.AddCommand(
		queryStatusCmd(ctx),
		queryBalanceCmd(ctx),
		queryClientCmd(ctx),
		queryConnectionCmd(ctx),
		queryChannelCmd(ctx),
		queryEventsCmd(ctx),
	)

	return cmd
}

// printResult prints the JSON of a value and of its proof if any
func printResult(cmd *cobra.Command, ctx *config.Context, value json.RawMessage, proof *commitmenttypes.MerkleProof) error {
	res := queryResult{Value: value}
	if proof != nil {
		bz, err := ctx.Codec.MarshalJSON(proof)
		if err != nil {
			return err
		}
		res.Proof = bz
	}
	return printJSON(cmd, res)
}

func queryStatusCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [chain-id]",
		Short: "Query the latest height and block time of a chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildChain(cmd.Context(), ctx, args[0])
			if err != nil {
				return err
			}
			status, err := c.QueryApplicationStatus(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, status)
		},
	}
	return yamlFlag(cmd)
}

func queryBalanceCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance [chain-id] [key-name]",
		Short: "Query the balance of a key. The relayer key and the fee token are the defaults.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildChain(cmd.Context(), ctx, args[0])
			if err != nil {
				return err
			}
			var keyName string
			if len(args) == 2 {
				keyName = args[1]
			}
			all, err := cmd.Flags().GetBool(flagAll)
			if err != nil {
				return err
			}
			if all {
				balances, err := c.QueryAllBalances(cmd.Context(), keyName)
				if err != nil {
					return err
				}
				return printJSON(cmd, balances)
			}
			denom, err := cmd.Flags().GetString(flagDenom)
			if err != nil {
				return err
			}
			balance, err := c.QueryBalance(cmd.Context(), keyName, denom)
			if err != nil {
				return err
			}
			return printJSON(cmd, balance)
		},
	}
	cmd.Flags().String(flagDenom, "", "token alias, address, or IBC denom")
	cmd.Flags().Bool(flagAll, false, "query the balances of all the tokens in the wallet")
	return yamlFlag(cmd)
}

func queryClientCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client [chain-id] [client-id]",
		Short: "Query the state of a client",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildChain(cmd.Context(), ctx, args[0])
			if err != nil {
				return err
			}
			req := core.QueryClientStateRequest{ClientID: args[1], Height: queryHeight(args[0])}
			cs, proof, err := c.QueryClientState(cmd.Context(), req, includeProof())
			if err != nil {
				return err
			}
			bz, err := ctx.Codec.MarshalInterfaceJSON(cs)
			if err != nil {
				return err
			}
			return printResult(cmd, ctx, bz, proof)
		},
	}
	return yamlFlag(proofFlag(heightFlag(cmd)))
}

func queryConnectionCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connection [chain-id] [connection-id]",
		Short: "Query the connection state for the given connection id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildChain(cmd.Context(), ctx, args[0])
			if err != nil {
				return err
			}
			req := core.QueryConnectionRequest{ConnectionID: args[1], Height: queryHeight(args[0])}
			conn, proof, err := c.QueryConnection(cmd.Context(), req, includeProof())
			if err != nil {
				return err
			}
			bz, err := ctx.Codec.MarshalJSON(conn)
			if err != nil {
				return err
			}
			return printResult(cmd, ctx, bz, proof)
		},
	}
	return yamlFlag(proofFlag(heightFlag(cmd)))
}

func queryChannelCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channel [chain-id] [port-id] [channel-id]",
		Short: "Query the channel state for the given port id and channel id",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildChain(cmd.Context(), ctx, args[0])
			if err != nil {
				return err
			}
			req := core.QueryChannelRequest{PortID: args[1], ChannelID: args[2], Height: queryHeight(args[0])}
			ch, proof, err := c.QueryChannel(cmd.Context(), req, includeProof())
			if err != nil {
				return err
			}
			bz, err := ctx.Codec.MarshalJSON(ch)
			if err != nil {
				return err
			}
			return printResult(cmd, ctx, bz, proof)
		},
	}
	return yamlFlag(proofFlag(heightFlag(cmd)))
}

func queryEventsCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events [chain-id] [tx-hash]",
		Short: "Query the IBC events of an applied transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := hex.DecodeString(args[1])
			if err != nil {
				return fmt.Errorf("invalid tx hash %q: %w", args[1], err)
			}
			c, err := buildChain(cmd.Context(), ctx, args[0])
			if err != nil {
				return err
			}
			events, err := c.QueryTxs(cmd.Context(), core.QueryTxHash(hash))
			if err != nil {
				return err
			}
			return printJSON(cmd, events)
		},
	}
	return yamlFlag(cmd)
}
