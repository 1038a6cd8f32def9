package namada

import (
	"context"
	"fmt"
	"sync"
	"time"

	errorsmod "cosmossdk.io/errors"
	rpcclient "github.com/cometbft/cometbft/rpc/client"
	rpchttp "github.com/cometbft/cometbft/rpc/client/http"
	libclient "github.com/cometbft/cometbft/rpc/jsonrpc/client"
	"github.com/cosmos/cosmos-sdk/codec"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/ibc-go/v8/modules/core/23-commitment/types"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/hyperledger-labs/namada-relayer/core"
	"github.com/hyperledger-labs/namada-relayer/log"
)

// the store name of the IBC commitments
const commitmentPrefix = "ibc"

// Chain is the endpoint of a Namada chain
type Chain struct {
	config   ChainConfig
	homePath string

	codec  codec.ProtoCodecMarshaler
	client rpcclient.Client
	wallet Wallet
	light  core.LightClient

	// serializes the submissions
	sendMu sync.Mutex

	monitorMu sync.Mutex
	monitor   *eventMonitor

	// called after each round of WaitForBlockCommits
	waitObserver func([]core.TxSyncResult)
}

var _ core.ChainEndpoint = (*Chain)(nil)

// NewChain returns a chain with the given collaborators. Bootstrap builds them from the config.
func NewChain(config ChainConfig, homePath string, client rpcclient.Client, wallet Wallet, light core.LightClient) *Chain {
	return &Chain{
		config:   config,
		homePath: homePath,
		codec:    MakeCodec(),
		client:   client,
		wallet:   wallet,
		light:    light,
	}
}

// Bootstrap connects to the node, loads the wallet and initializes the light client
func Bootstrap(ctx context.Context, config ChainConfig, homePath string) (*Chain, error) {
	logger := GetChainLogger().WithChain(config.ChainId)

	client, err := newRPCClient(config.RpcAddr, config.GetRPCTimeout())
	if err != nil {
		return nil, errorsmod.Wrapf(core.ErrRPC, "failed to create the rpc client of %s: %v", config.RpcAddr, err)
	}

	wallet, err := LoadWallet(config.GetWalletDir(homePath))
	if err != nil {
		return nil, err
	}
	if _, err := wallet.FindKey(config.KeyName); err != nil {
		return nil, err
	}

	c := NewChain(config, homePath, client, wallet, nil)

	trustingPeriod := config.GetTrustingPeriod()
	if trustingPeriod == 0 {
		unbonding, err := c.QueryUnbondingPeriod(ctx)
		if err != nil {
			return nil, err
		}
		trustingPeriod = defaultTrustingPeriod(unbonding)
	}
	light, err := newLightClient(ctx, config, homePath, trustingPeriod)
	if err != nil {
		return nil, err
	}
	c.light = light

	logger.Info("chain bootstrapped", "rpc_addr", config.RpcAddr, "key_name", config.KeyName, "trusting_period", trustingPeriod)
	return c, nil
}

func (c *Chain) ChainID() string {
	return c.config.ChainId
}

func (c *Chain) Config() ChainConfig {
	return c.config
}

func (c *Chain) Codec() codec.ProtoCodecMarshaler {
	return c.codec
}

// HealthCheck checks the node health and that the node indexes the transactions
func (c *Chain) HealthCheck(ctx context.Context) (core.HealthStatus, error) {
	logger := GetChainLogger().WithChain(c.ChainID())

	if _, err := c.client.Health(ctx); err != nil {
		return core.Unhealthy, errorsmod.Wrapf(core.ErrRPC, "health check of %s failed: %v", c.config.RpcAddr, err)
	}

	page, perPage := 1, 1
	if _, err := c.client.TxSearch(ctx, "tx.height>0", false, &page, &perPage, "asc"); err != nil {
		logger.Warn("tx indexing looks disabled", "rpc_addr", c.config.RpcAddr, "error", err)
		return core.Unhealthy, nil
	}
	return core.Healthy, nil
}

// GetSigner returns the address of the configured key
func (c *Chain) GetSigner() (string, error) {
	addr, ok := c.wallet.FindAddress(c.config.KeyName)
	if !ok {
		return "", errorsmod.Wrapf(ErrAddressNotFound, "key: %s", c.config.KeyName)
	}
	return addr, nil
}

// QueryApplicationStatus returns the latest height and block time. It fails while the node is syncing.
func (c *Chain) QueryApplicationStatus(ctx context.Context) (*core.ChainStatus, error) {
	res, err := c.client.Status(ctx)
	if err != nil {
		return nil, errorsmod.Wrapf(core.ErrRPC, "failed to query the status: %v", err)
	} else if res.SyncInfo.CatchingUp {
		return nil, errorsmod.Wrapf(core.ErrChainNotCaughtUp, "node at %s running chain %s", c.config.RpcAddr, c.ChainID())
	}
	return &core.ChainStatus{
		Height:    c.height(res.SyncInfo.LatestBlockHeight),
		Timestamp: res.SyncInfo.LatestBlockTime,
	}, nil
}

func (c *Chain) QueryCommitmentPrefix() (commitmenttypes.MerklePrefix, error) {
	return commitmenttypes.NewMerklePrefix([]byte(commitmentPrefix)), nil
}

// Subscribe starts the event monitor on the first call and returns a new subscription
func (c *Chain) Subscribe(ctx context.Context) (*core.Subscription, error) {
	c.monitorMu.Lock()
	defer c.monitorMu.Unlock()

	if c.monitor == nil || c.monitor.stopped() {
		m, err := newEventMonitor(c.ChainID(), c.config.GetWebsocketAddr(), c.height)
		if err != nil {
			return nil, err
		}
		if err := m.Start(ctx); err != nil {
			return nil, err
		}
		c.monitor = m
	}
	return c.monitor.Subscribe(), nil
}

// height returns the height in the revision of the chain ID
func (c *Chain) height(h int64) clienttypes.Height {
	return clienttypes.NewHeight(clienttypes.ParseChainID(c.ChainID()), uint64(h))
}

func newRPCClient(addr string, timeout time.Duration) (*rpchttp.HTTP, error) {
	httpClient, err := libclient.DefaultHTTPClient(addr)
	if err != nil {
		return nil, err
	}

	httpClient.Timeout = timeout
	httpClient.Transport = otelhttp.NewTransport(httpClient.Transport)
	rpcClient, err := rpchttp.NewWithClient(addr, "/websocket", httpClient)
	if err != nil {
		return nil, err
	}

	return rpcClient, nil
}

func GetChainLogger() *log.RelayLogger {
	return log.GetLogger().
		WithModule("namada.chain")
}

func (c *Chain) String() string {
	return fmt.Sprintf("namada chain %s at %s", c.ChainID(), c.config.RpcAddr)
}
