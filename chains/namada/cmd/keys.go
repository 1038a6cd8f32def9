package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperledger-labs/namada-relayer/chains/namada"
	"github.com/hyperledger-labs/namada-relayer/config"
)

const flagMnemonic = "mnemonic"

func keysCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "manage the wallet of a namada chain",
	}

	cmd.AddCommand(
		keysAddCmd(ctx),
		keysAddTokenCmd(ctx),
		keysShowCmd(ctx),
	)

	return cmd
}

func loadWallet(ctx *config.Context, chainID string) (*namada.FileWallet, error) {
	c, err := chainConfig(ctx, chainID)
	if err != nil {
		return nil, err
	}
	dir := c.GetWalletDir(ctx.Config.HomePath)
	w, err := namada.LoadWallet(dir)
	if errors.Is(err, namada.ErrWalletNotInitialized) {
		// a wallet is created on the first key
		return namada.NewWallet(dir), nil
	}
	return w, err
}

func keysAddCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [chain-id] [alias] [address]",
		Short: "Adds a key derived from a mnemonic. A new mnemonic is created and printed if none is given.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			chainID, alias, address := args[0], args[1], args[2]
			w, err := loadWallet(ctx, chainID)
			if err != nil {
				return err
			}
			mnemonic, err := cmd.Flags().GetString(flagMnemonic)
			if err != nil {
				return err
			}
			created := mnemonic == ""
			if created {
				if mnemonic, err = namada.CreateMnemonic(); err != nil {
					return err
				}
			}
			key, err := w.AddKey(alias, mnemonic, address)
			if err != nil {
				return err
			}
			if err := w.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "alias: %s\naddress: %s\npublic key: %X\n", alias, address, key.PubKey().Bytes())
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "mnemonic: %s\n", mnemonic)
			}
			return nil
		},
	}
	cmd.Flags().String(flagMnemonic, "", "mnemonic of the key")
	return cmd
}

func keysAddTokenCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-token [chain-id] [alias] [address]",
		Short: "Adds a token address which `query balance` looks up by alias",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := loadWallet(ctx, args[0])
			if err != nil {
				return err
			}
			if err := w.AddAddress(args[1], args[2], namada.VPTypeToken); err != nil {
				return err
			}
			return w.Save()
		},
	}
	return cmd
}

func keysShowCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [chain-id] [alias]",
		Short: "Shows the address of an alias",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := loadWallet(ctx, args[0])
			if err != nil {
				return err
			}
			addr, ok := w.FindAddress(args[1])
			if !ok {
				return fmt.Errorf("alias %s not found in the wallet of %s", args[1], args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), addr)
			return nil
		},
	}
	return cmd
}
