package cmd

import (
	"context"
	"fmt"
	"os/signal"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/hyperledger-labs/namada-relayer/config"
	"github.com/hyperledger-labs/namada-relayer/core"
	"github.com/hyperledger-labs/namada-relayer/internal/telemetry"
	"github.com/hyperledger-labs/namada-relayer/log"
)

func serviceCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Relay Service Commands",
		Long:  "Commands to manage the relay service",
		RunE:  noCommand,
	}
	cmd.AddCommand(
		startCmd(ctx),
	)
	return cmd
}

// startCmd follows the IBC events of the chains until SIGINT or SIGTERM
func startCmd(ctx *config.Context) *cobra.Command {
	const flagPrometheusAddr = "prometheus-addr"

	cmd := &cobra.Command{
		Use:   "start [chain-id...]",
		Short: "Follows the IBC events of the chains",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prometheusAddr, err := cmd.Flags().GetString(flagPrometheusAddr)
			if err != nil {
				return err
			}
			if prometheusAddr != "" {
				exporter, err := telemetry.NewPrometheusExporter(prometheusAddr)
				if err != nil {
					return err
				}
				otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)))
				if err := telemetry.InitializeMetrics(); err != nil {
					return fmt.Errorf("failed to initialize the metrics with the prometheus exporter: %w", err)
				}
			}

			sigCtx, stop := signal.NotifyContext(cmd.Context(), unix.SIGINT, unix.SIGTERM)
			defer stop()

			eg, egCtx := errgroup.WithContext(sigCtx)
			for _, chainID := range args {
				chain, err := buildChain(sigCtx, ctx, chainID)
				if err != nil {
					return err
				}
				sub, err := chain.Subscribe(egCtx)
				if err != nil {
					return err
				}
				eg.Go(func() error {
					return follow(egCtx, chainID, sub)
				})
			}
			return eg.Wait()
		},
	}
	cmd.Flags().String(flagPrometheusAddr, "", "host address to which the prometheus exporter listens")
	return cmd
}

func follow(ctx context.Context, chainID string, sub *core.Subscription) error {
	logger := log.GetLogger().WithModule("service").WithChain(chainID)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-sub.Events():
			if !ok {
				return fmt.Errorf("event subscription of %s closed", chainID)
			}
			if len(batch.Events) == 0 {
				continue
			}
			logger.Info("ibc events", "height", batch.Height, "count", len(batch.Events))
			for _, ev := range batch.Events {
				logger.Debug("ibc event", "type", ev.Event.EventType(), "height", ev.Height.String())
			}
		}
	}
}
