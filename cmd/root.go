package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hyperledger-labs/namada-relayer/config"
	"github.com/hyperledger-labs/namada-relayer/internal/telemetry"
	"github.com/hyperledger-labs/namada-relayer/log"
)

const (
	flagHome            = "home"
	flagLogLevel        = "log-level"
	flagLogFormat       = "log-format"
	flagLogOutput       = "log-output"
	flagEnableTelemetry = "enable-telemetry"

	defaultHomeDir = ".namada-relayer"
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(modules ...config.ModuleI) error {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:   "nrly",
		Short: "This application relays IBC packets from and to Namada chains",
	}
	rootCmd.SilenceUsage = true

	userHome, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	rootCmd.PersistentFlags().String(flagHome, filepath.Join(userHome, defaultHomeDir), "set home directory")
	rootCmd.PersistentFlags().String(flagLogLevel, "", "log level (DEBUG, INFO, WARN, ERROR). overrides the config file")
	rootCmd.PersistentFlags().String(flagLogFormat, "", "log format (text, json). overrides the config file")
	rootCmd.PersistentFlags().String(flagLogOutput, "", "log output (stdout, stderr). overrides the config file")
	rootCmd.PersistentFlags().Bool(flagEnableTelemetry, false, "enable the OpenTelemetry SDK configured by the OTEL_* environment variables")
	for _, name := range []string{flagHome, flagLogLevel, flagLogFormat, flagLogOutput, flagEnableTelemetry} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			return err
		}
	}

	// Register interfaces
	registry := codectypes.NewInterfaceRegistry()
	for _, module := range modules {
		module.RegisterInterfaces(registry)
	}
	ctx := &config.Context{
		Modules: modules,
		Codec:   codec.NewProtoCodec(registry),
	}

	var shutdown func(context.Context) error
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		// reads `homeDir/config/config.json` into `ctx.Config` before each command
		cfg, err := config.LoadConfig(ctx, viper.GetString(flagHome))
		if err != nil {
			return err
		}
		ctx.Config = cfg

		enableTelemetry := viper.GetBool(flagEnableTelemetry)
		if enableTelemetry {
			if shutdown, err = telemetry.SetupOTelSDK(cmd.Context()); err != nil {
				return fmt.Errorf("failed to set up the OpenTelemetry SDK: %w", err)
			}
			if err := telemetry.InitializeMetrics(); err != nil {
				return err
			}
		}

		logConfig := cfg.Global.LoggerConfig
		return log.InitLogger(
			stringOr(viper.GetString(flagLogLevel), logConfig.Level),
			stringOr(viper.GetString(flagLogFormat), logConfig.Format),
			stringOr(viper.GetString(flagLogOutput), logConfig.Output),
			enableTelemetry,
		)
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, _ []string) error {
		if shutdown == nil {
			return nil
		}
		return shutdown(context.WithoutCancel(cmd.Context()))
	}

	rootCmd.AddCommand(
		configCmd(ctx),
		chainsCmd(ctx),
		queryCmd(ctx),
		serviceCmd(ctx),
		modulesCmd(ctx),
	)
	for _, module := range modules {
		if cmd := module.GetCmd(ctx); cmd != nil {
			rootCmd.AddCommand(cmd)
		}
	}

	return rootCmd.ExecuteContext(context.Background())
}

func stringOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func noCommand(cmd *cobra.Command, _ []string) error {
	return cmd.Help()
}
