package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperledger-labs/namada-relayer/config"
)

func configCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "manage configuration file",
		RunE:    noCommand,
	}

	cmd.AddCommand(
		configShowCmd(ctx),
		configInitCmd(ctx),
	)

	return cmd
}

// Command for inititalizing an empty config at the --home location
func configInitCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "init",
		Aliases: []string{"i"},
		Short:   "Creates a default home directory at path defined by --home",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := ctx.Config.ConfigPath
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("config already exists: %s", cfgPath)
			} else if !errors.Is(err, os.ErrNotExist) {
				return err
			}
			cfg := config.DefaultConfig(ctx.Config.HomePath)
			if err := cfg.Save(); err != nil {
				return err
			}
			ctx.Config = &cfg
			fmt.Fprintf(cmd.OutOrStdout(), "config created at %s\n", cfgPath)
			return nil
		},
	}
	return cmd
}

// Command for printing current configuration
func configShowCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "show",
		Aliases: []string{"s", "list", "l"},
		Short:   "Prints current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := ctx.Config.ConfigPath
			if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("config does not exist: %s", cfgPath)
			}
			out, err := config.MarshalJSON(*ctx.Config)
			if err != nil {
				return err
			}
			return printOutput(cmd, out)
		},
	}
	return yamlFlag(cmd)
}
