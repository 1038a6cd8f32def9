package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hyperledger-labs/namada-relayer/config"
	"github.com/hyperledger-labs/namada-relayer/core"
)

func chainsCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chains",
		Short: "manage chain configurations",
		RunE:  noCommand,
	}

	cmd.AddCommand(
		chainsAddCmd(ctx),
		chainsListCmd(ctx),
		chainsHealthCmd(ctx),
	)

	return cmd
}

func chainsAddCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [file]",
		Short: "Add a chain to the configuration file from a chain config entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bz, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read file %s: %w", args[0], err)
			}
			var entry core.ChainConfigEntry
			if err := json.Unmarshal(bz, &entry); err != nil {
				return fmt.Errorf("failed to unmarshal file %s: %w", args[0], err)
			}
			if err := ctx.Config.AddChain(ctx, entry); err != nil {
				return fmt.Errorf("failed to add chain %s: %w", args[0], err)
			}
			if err := ctx.Config.Save(); err != nil {
				return err
			}
			chain, err := entry.GetChainConfig()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s...\n", chain.ChainID())
			return nil
		},
	}
	return cmd
}

func chainsListCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"l"},
		Short:   "Lists the configured chains",
		RunE: func(cmd *cobra.Command, args []string) error {
			for i, entry := range ctx.Config.Chains {
				chain, err := entry.GetChainConfig()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%2d: %-30s -> type(%s)\n", i, chain.ChainID(), entry.Type)
			}
			return nil
		},
	}
	return cmd
}

// chainsHealthCmd checks all the configured chains in parallel
func chainsHealthCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Checks the health of the configured chains",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				mu     sync.Mutex
				status = make(map[string]string)
			)
			eg, egCtx := errgroup.WithContext(cmd.Context())
			for _, entry := range ctx.Config.Chains {
				chainConfig, err := entry.GetChainConfig()
				if err != nil {
					return err
				}
				chainID := chainConfig.ChainID()
				eg.Go(func() error {
					result := core.Unhealthy.String()
					chain, err := buildChain(egCtx, ctx, chainID)
					if err == nil {
						var s core.HealthStatus
						if s, err = chain.HealthCheck(egCtx); err == nil {
							result = s.String()
						}
					}
					if err != nil {
						result = fmt.Sprintf("%s: %v", result, err)
					}
					mu.Lock()
					defer mu.Unlock()
					status[chainID] = result
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				return err
			}
			return printJSON(cmd, status)
		},
	}
	return yamlFlag(cmd)
}
