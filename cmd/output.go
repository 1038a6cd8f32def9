package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"gopkg.in/yaml.v2"

	"github.com/hyperledger-labs/namada-relayer/config"
	"github.com/hyperledger-labs/namada-relayer/core"
	"github.com/hyperledger-labs/namada-relayer/otelcore"
)

const tracerName = "github.com/hyperledger-labs/namada-relayer/cmd"

// buildChain connects to a configured chain. Its calls are traced.
func buildChain(ctx context.Context, cfg *config.Context, chainID string) (core.ChainEndpoint, error) {
	chain, err := cfg.Config.BuildChain(ctx, chainID)
	if err != nil {
		return nil, err
	}
	return otelcore.NewChain(chain, otel.Tracer(tracerName)), nil
}

// printOutput prints the JSON, converted to YAML with the yaml flag
func printOutput(cmd *cobra.Command, bz []byte) error {
	if viper.GetBool(flagYAML) {
		var v interface{}
		if err := yaml.Unmarshal(bz, &v); err != nil {
			return err
		}
		out, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), string(out))
		return err
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), string(bz))
	return err
}

func printJSON(cmd *cobra.Command, v any) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return printOutput(cmd, bz)
}

// queryResult is a value with its proof if queried
type queryResult struct {
	Value json.RawMessage `json:"value"`
	Proof json.RawMessage `json:"proof,omitempty"`
}
