package namada

import (
	"path/filepath"
	"testing"
	"time"

	ibctm "github.com/cosmos/ibc-go/v8/modules/light-clients/07-tendermint"
	"github.com/stretchr/testify/require"
)

func TestChainConfigValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*ChainConfig)
		valid  bool
	}{
		{"default", func(*ChainConfig) {}, true},
		{"no chain id", func(c *ChainConfig) { c.ChainId = " " }, false},
		{"no rpc addr", func(c *ChainConfig) { c.RpcAddr = "" }, false},
		{"no key", func(c *ChainConfig) { c.KeyName = "" }, false},
		{"bad timeout", func(c *ChainConfig) { c.RpcTimeout = "ten seconds" }, false},
		{"negative trusting period", func(c *ChainConfig) { c.TrustingPeriod = "-1h" }, false},
		{"zero clock drift", func(c *ChainConfig) { c.MaxClockDrift = "0s" }, false},
		{"zero denominator", func(c *ChainConfig) { c.TrustThreshold = ibctm.Fraction{Numerator: 1} }, false},
		{"over one", func(c *ChainConfig) { c.TrustThreshold = ibctm.Fraction{Numerator: 3, Denominator: 2} }, false},
		{"full trust", func(c *ChainConfig) { c.TrustThreshold = ibctm.Fraction{Numerator: 1, Denominator: 1} }, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := testConfig()
			tc.modify(&c)
			if tc.valid {
				require.NoError(t, c.Validate())
			} else {
				require.Error(t, c.Validate())
			}
		})
	}
}

func TestChainConfigDefaults(t *testing.T) {
	c := testConfig()
	require.Equal(t, defaultRPCTimeout, c.GetRPCTimeout())
	require.Equal(t, defaultMaxClockDrift, c.GetMaxClockDrift())
	require.Zero(t, c.GetTrustingPeriod())
	require.Equal(t, DefaultMaxGas, c.GetMaxGas())
	require.Equal(t, DefaultFeeToken, c.GetFeeToken())
	require.Equal(t, DefaultTxWasmFile, c.GetTxWasmFile())
	require.Equal(t, c.RpcAddr, c.GetWebsocketAddr())

	home := "/home/relayer"
	require.Equal(t, filepath.Join(home, defaultWalletDir, testChainID), c.GetWalletDir(home))
	require.Equal(t, filepath.Join(home, defaultWasmDir), c.GetWasmDir(home))
	require.Equal(t, filepath.Join(home, defaultLightDir), c.GetLightDir(home))

	c.RpcTimeout = "3s"
	c.TrustingPeriod = "48h"
	c.WasmDir = "/opt/namada/wasm"
	c.WebsocketAddr = "ws://localhost:26657"
	require.Equal(t, 3*time.Second, c.GetRPCTimeout())
	require.Equal(t, 48*time.Hour, c.GetTrustingPeriod())
	require.Equal(t, "/opt/namada/wasm", c.GetWasmDir(home))
	require.Equal(t, "ws://localhost:26657", c.GetWebsocketAddr())
}
