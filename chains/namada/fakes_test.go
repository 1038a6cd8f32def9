package namada

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	abci "github.com/cometbft/cometbft/abci/types"
	cmtbytes "github.com/cometbft/cometbft/libs/bytes"
	cmtcrypto "github.com/cometbft/cometbft/proto/tendermint/crypto"
	rpcclient "github.com/cometbft/cometbft/rpc/client"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	cmttypes "github.com/cometbft/cometbft/types"
	ibctm "github.com/cosmos/ibc-go/v8/modules/light-clients/07-tendermint"
	"github.com/near/borsh-go"
	"github.com/stretchr/testify/require"
)

const (
	testChainID  = "namada-test.0a1b2c3d"
	testKeyName  = "relayer"
	testOwner    = "tnam1qrelayer0000000000000000000000000000000"
	testNAM      = "tnam1qnam00000000000000000000000000000000000"
	testTxCode   = "\x00asm-ibc"
	testFeeCents = 100
)

// fakeRPC is a node whose storage is a map from the key strings to the values
type fakeRPC struct {
	rpcclient.Client

	mu    sync.Mutex
	store map[string][]byte

	proofOps *cmtcrypto.ProofOps
	epoch    uint64

	// heights of the blocks matching the queries
	searches map[string]int64
	// the height of every applied tx if not zero
	appliedHeight int64
	blockEvents   map[int64][]abci.Event
	searched      []string

	txs         []*coretypes.ResultTx
	txSearchErr error
	healthErr   error

	latestHeight int64
	catchingUp   bool
	header       *cmttypes.Header

	checkTxCode uint32
	checkTxLog  string
	broadcasts  []cmttypes.Tx
}

func newFakeRPC() *fakeRPC {
	return &fakeRPC{
		store:        make(map[string][]byte),
		searches:     make(map[string]int64),
		blockEvents:  make(map[int64][]abci.Event),
		latestHeight: 100,
	}
}

func (f *fakeRPC) set(key Key, value []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store[key.String()] = value
}

func (f *fakeRPC) ABCIQueryWithOptions(_ context.Context, path string, _ cmtbytes.HexBytes, opts rpcclient.ABCIQueryOptions) (*coretypes.ResultABCIQuery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var res abci.ResponseQuery
	switch {
	case strings.HasPrefix(path, pathStorageValue):
		res.Value = f.store[strings.TrimPrefix(path, pathStorageValue)]
		if opts.Prove {
			res.ProofOps = f.proofOps
		}
	case strings.HasPrefix(path, pathStoragePrefix):
		prefix, err := ParseKey(strings.TrimPrefix(path, pathStoragePrefix))
		if err != nil {
			return nil, err
		}
		var keys []string
		for k := range f.store {
			if mustParseKey(k).HasPrefix(prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		entries := make([]PrefixValue, 0, len(keys))
		for _, k := range keys {
			entries = append(entries, PrefixValue{Key: k, Value: f.store[k]})
		}
		bz, err := borsh.Serialize(entries)
		if err != nil {
			return nil, err
		}
		res.Value = bz
	case path == pathEpoch:
		bz, err := borsh.Serialize(f.epoch)
		if err != nil {
			return nil, err
		}
		res.Value = bz
	default:
		res.Code = 1
		res.Log = "unknown path " + path
	}
	res.Height = opts.Height
	return &coretypes.ResultABCIQuery{Response: res}, nil
}

func (f *fakeRPC) BlockSearch(_ context.Context, query string, _, _ *int, _ string) (*coretypes.ResultBlockSearch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.searched = append(f.searched, query)
	height, ok := f.searches[query]
	if !ok && f.appliedHeight != 0 && strings.HasPrefix(query, "applied.hash=") {
		height, ok = f.appliedHeight, true
	}
	if !ok {
		return &coretypes.ResultBlockSearch{}, nil
	}
	return &coretypes.ResultBlockSearch{
		Blocks:     []*coretypes.ResultBlock{{Block: &cmttypes.Block{Header: cmttypes.Header{Height: height}}}},
		TotalCount: 1,
	}, nil
}

func (f *fakeRPC) BlockResults(_ context.Context, height *int64) (*coretypes.ResultBlockResults, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &coretypes.ResultBlockResults{Height: *height, FinalizeBlockEvents: f.blockEvents[*height]}, nil
}

func (f *fakeRPC) TxSearch(context.Context, string, bool, *int, *int, string) (*coretypes.ResultTxSearch, error) {
	if f.txSearchErr != nil {
		return nil, f.txSearchErr
	}
	return &coretypes.ResultTxSearch{Txs: f.txs, TotalCount: len(f.txs)}, nil
}

func (f *fakeRPC) Health(context.Context) (*coretypes.ResultHealth, error) {
	if f.healthErr != nil {
		return nil, f.healthErr
	}
	return &coretypes.ResultHealth{}, nil
}

func (f *fakeRPC) Status(context.Context) (*coretypes.ResultStatus, error) {
	return &coretypes.ResultStatus{SyncInfo: coretypes.SyncInfo{
		LatestBlockHeight: f.latestHeight,
		LatestBlockTime:   time.Unix(1700000000, 0).UTC(),
		CatchingUp:        f.catchingUp,
	}}, nil
}

func (f *fakeRPC) Header(context.Context, *int64) (*coretypes.ResultHeader, error) {
	return &coretypes.ResultHeader{Header: f.header}, nil
}

func (f *fakeRPC) BroadcastTxSync(_ context.Context, tx cmttypes.Tx) (*coretypes.ResultBroadcastTx, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, tx)
	return &coretypes.ResultBroadcastTx{Code: f.checkTxCode, Log: f.checkTxLog, Hash: tx.Hash()}, nil
}

func newTestWallet(t *testing.T) *FileWallet {
	t.Helper()
	mnemonic, err := CreateMnemonic()
	require.NoError(t, err)
	w := NewWallet(t.TempDir())
	_, err = w.AddKey(testKeyName, mnemonic, testOwner)
	require.NoError(t, err)
	require.NoError(t, w.AddAddress(DefaultFeeToken, testNAM, VPTypeToken))
	return w
}

func testConfig() ChainConfig {
	return ChainConfig{
		ChainId:        testChainID,
		RpcAddr:        "http://localhost:26657",
		KeyName:        testKeyName,
		TrustThreshold: ibctm.DefaultTrustLevel,
	}
}

// newTestChain returns a chain on a fake node with the tx code and the fee parameters stored
func newTestChain(t *testing.T) (*Chain, *fakeRPC) {
	t.Helper()
	home := t.TempDir()
	wasmDir := filepath.Join(home, defaultWasmDir)
	require.NoError(t, os.MkdirAll(wasmDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(wasmDir, DefaultTxWasmFile), []byte(testTxCode), 0o600))

	rpc := newFakeRPC()
	rpc.epoch = 3
	fee, err := NewAmount(sdkmath.NewInt(testFeeCents))
	require.NoError(t, err)
	feeBz, err := fee.Bytes()
	require.NoError(t, err)
	rpc.set(WrapperTxFeesKey(), feeBz)

	return NewChain(testConfig(), home, rpc, newTestWallet(t), nil), rpc
}
