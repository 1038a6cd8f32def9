package namada

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ibctm "github.com/cosmos/ibc-go/v8/modules/light-clients/07-tendermint"

	"github.com/hyperledger-labs/namada-relayer/core"
)

const (
	defaultRPCTimeout    = 10 * time.Second
	defaultMaxClockDrift = 10 * time.Second
	defaultWalletDir     = "namada_wallet"
	defaultWasmDir       = "wasm"
	defaultLightDir      = "light"
)

// ChainConfig is the configuration of a Namada chain
type ChainConfig struct {
	ChainId        string         `json:"chain_id" yaml:"chain_id"`
	RpcAddr        string         `json:"rpc_addr" yaml:"rpc_addr"`
	WebsocketAddr  string         `json:"websocket_addr,omitempty" yaml:"websocket_addr,omitempty"`
	RpcTimeout     string         `json:"rpc_timeout,omitempty" yaml:"rpc_timeout,omitempty"`
	KeyName        string         `json:"key_name" yaml:"key_name"`
	MaxGas         uint64         `json:"max_gas,omitempty" yaml:"max_gas,omitempty"`
	WalletDir      string         `json:"wallet_dir,omitempty" yaml:"wallet_dir,omitempty"`
	WasmDir        string         `json:"wasm_dir,omitempty" yaml:"wasm_dir,omitempty"`
	TxWasmFile     string         `json:"tx_wasm_file,omitempty" yaml:"tx_wasm_file,omitempty"`
	FeeToken       string         `json:"fee_token,omitempty" yaml:"fee_token,omitempty"`
	TrustingPeriod string         `json:"trusting_period,omitempty" yaml:"trusting_period,omitempty"`
	TrustThreshold ibctm.Fraction `json:"trust_threshold" yaml:"trust_threshold"`
	MaxClockDrift  string         `json:"max_clock_drift,omitempty" yaml:"max_clock_drift,omitempty"`
	LightDir       string         `json:"light_dir,omitempty" yaml:"light_dir,omitempty"`
}

var _ core.ChainConfig = (*ChainConfig)(nil)

func (c ChainConfig) ChainID() string {
	return c.ChainId
}

// Build connects to the chain
func (c ChainConfig) Build(ctx context.Context, homePath string) (core.ChainEndpoint, error) {
	return Bootstrap(ctx, c, homePath)
}

func (c ChainConfig) Validate() error {
	isEmpty := func(s string) bool {
		return strings.TrimSpace(s) == ""
	}
	isInvalidDuration := func(s string) bool {
		if s == "" {
			return false
		}
		d, err := time.ParseDuration(s)
		return err != nil || d <= 0
	}

	var errs []error
	if isEmpty(c.ChainId) {
		errs = append(errs, fmt.Errorf("config attribute \"chain_id\" is empty"))
	}
	if isEmpty(c.RpcAddr) {
		errs = append(errs, fmt.Errorf("config attribute \"rpc_addr\" is empty"))
	}
	if isEmpty(c.KeyName) {
		errs = append(errs, fmt.Errorf("config attribute \"key_name\" is empty"))
	}
	if isInvalidDuration(c.RpcTimeout) {
		errs = append(errs, fmt.Errorf("config attribute \"rpc_timeout\" is invalid: %q", c.RpcTimeout))
	}
	if isInvalidDuration(c.TrustingPeriod) {
		errs = append(errs, fmt.Errorf("config attribute \"trusting_period\" is invalid: %q", c.TrustingPeriod))
	}
	if isInvalidDuration(c.MaxClockDrift) {
		errs = append(errs, fmt.Errorf("config attribute \"max_clock_drift\" is invalid: %q", c.MaxClockDrift))
	}
	if c.TrustThreshold.Denominator == 0 {
		errs = append(errs, fmt.Errorf("config attribute \"trust_threshold.denominator\" must not be zero"))
	} else if c.TrustThreshold.Numerator == 0 || c.TrustThreshold.Numerator > c.TrustThreshold.Denominator {
		errs = append(errs, fmt.Errorf("config attribute \"trust_threshold\" must be in (0, 1]: actual=%v/%v", c.TrustThreshold.Numerator, c.TrustThreshold.Denominator))
	}

	// errors.Join returns nil if len(errs) == 0
	return errors.Join(errs...)
}

func (c ChainConfig) GetRPCTimeout() time.Duration {
	return parseDurationOr(c.RpcTimeout, defaultRPCTimeout)
}

func (c ChainConfig) GetMaxClockDrift() time.Duration {
	return parseDurationOr(c.MaxClockDrift, defaultMaxClockDrift)
}

// GetTrustingPeriod returns the configured trusting period or zero
func (c ChainConfig) GetTrustingPeriod() time.Duration {
	return parseDurationOr(c.TrustingPeriod, 0)
}

func (c ChainConfig) GetMaxGas() uint64 {
	if c.MaxGas == 0 {
		return DefaultMaxGas
	}
	return c.MaxGas
}

func (c ChainConfig) GetFeeToken() string {
	if c.FeeToken == "" {
		return DefaultFeeToken
	}
	return c.FeeToken
}

func (c ChainConfig) GetTxWasmFile() string {
	if c.TxWasmFile == "" {
		return DefaultTxWasmFile
	}
	return c.TxWasmFile
}

func (c ChainConfig) GetWebsocketAddr() string {
	if c.WebsocketAddr != "" {
		return c.WebsocketAddr
	}
	return c.RpcAddr
}

func (c ChainConfig) GetWalletDir(homePath string) string {
	return WalletDir(resolvePath(homePath, c.WalletDir, defaultWalletDir), c.ChainId)
}

func (c ChainConfig) GetWasmDir(homePath string) string {
	return resolvePath(homePath, c.WasmDir, defaultWasmDir)
}

func (c ChainConfig) GetLightDir(homePath string) string {
	return resolvePath(homePath, c.LightDir, defaultLightDir)
}

// resolvePath returns the path relative to the home unless it is absolute
func resolvePath(homePath, path, defaultPath string) string {
	if path == "" {
		path = defaultPath
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(homePath, path)
}

func parseDurationOr(s string, d time.Duration) time.Duration {
	if s == "" {
		return d
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return d
	}
	return v
}
