package namada

import (
	"context"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	rpcclient "github.com/cometbft/cometbft/rpc/client"
	sdk "github.com/cosmos/cosmos-sdk/types"
	commitmenttypes "github.com/cosmos/ibc-go/v8/modules/core/23-commitment/types"
	"github.com/near/borsh-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/hyperledger-labs/namada-relayer/core"
	"github.com/hyperledger-labs/namada-relayer/internal/telemetry"
)

// ABCI query paths of the shell
const (
	pathStorageValue  = "/shell/value/"
	pathStoragePrefix = "/shell/prefix/"
	pathEpoch         = "/shell/epoch"
)

// Epoch is the epoch of the chain
type Epoch uint64

// PrefixValue is an entry of a prefix scan
type PrefixValue struct {
	Key   string
	Value []byte
}

// Query returns the value stored at the key and, if requested, its proof.
// The latest height is resolved by the node.
func (c *Chain) Query(ctx context.Context, key Key, height core.QueryHeight, includeProof core.IncludeProof) ([]byte, *commitmenttypes.MerkleProof, error) {
	var queryHeight int64
	if !height.IsLatest() {
		queryHeight = int64(height.Height().GetRevisionHeight())
	}
	opts := rpcclient.ABCIQueryOptions{Height: queryHeight, Prove: bool(includeProof)}

	c.countQuery(ctx, "value")
	res, err := c.client.ABCIQueryWithOptions(ctx, pathStorageValue+key.String(), nil, opts)
	if err != nil {
		return nil, nil, errorsmod.Wrapf(core.ErrRPC, "failed to query %s: %v", key, err)
	} else if !res.Response.IsOK() {
		return nil, nil, errorsmod.Wrapf(core.ErrQuery, "query %s failed: code=%d, log=%s", key, res.Response.Code, res.Response.Log)
	}

	if !includeProof {
		return res.Response.Value, nil, nil
	}
	if res.Response.ProofOps == nil {
		return nil, nil, errorsmod.Wrapf(core.ErrEmptyResponseProof, "key: %s", key)
	}
	proof, err := ConvertProof(res.Response.ProofOps)
	if err != nil {
		return nil, nil, err
	}
	return res.Response.Value, proof, nil
}

// QueryPrefix returns the entries under the prefix at the latest height. Counter keys are excluded.
func (c *Chain) QueryPrefix(ctx context.Context, prefix Key) ([]PrefixValue, error) {
	c.countQuery(ctx, "prefix")
	res, err := c.client.ABCIQueryWithOptions(ctx, pathStoragePrefix+prefix.String(), nil, rpcclient.DefaultABCIQueryOptions)
	if err != nil {
		return nil, errorsmod.Wrapf(core.ErrRPC, "failed to query prefix %s: %v", prefix, err)
	} else if !res.Response.IsOK() {
		return nil, errorsmod.Wrapf(core.ErrQuery, "prefix query %s failed: code=%d, log=%s", prefix, res.Response.Code, res.Response.Log)
	}

	if len(res.Response.Value) == 0 {
		return nil, nil
	}
	var values []PrefixValue
	if err := borsh.Deserialize(&values, res.Response.Value); err != nil {
		return nil, core.NewDecodeError(prefix.String(), err)
	}
	entries := values[:0]
	for _, v := range values {
		if key, err := ParseKey(v.Key); err == nil && IsCounterKey(key) {
			continue
		}
		entries = append(entries, v)
	}
	return entries, nil
}

// QueryEpoch returns the current epoch
func (c *Chain) QueryEpoch(ctx context.Context) (Epoch, error) {
	c.countQuery(ctx, "epoch")
	res, err := c.client.ABCIQueryWithOptions(ctx, pathEpoch, nil, rpcclient.DefaultABCIQueryOptions)
	if err != nil {
		return 0, errorsmod.Wrapf(core.ErrRPC, "failed to query the epoch: %v", err)
	} else if !res.Response.IsOK() {
		return 0, errorsmod.Wrapf(core.ErrQuery, "epoch query failed: code=%d, log=%s", res.Response.Code, res.Response.Log)
	}

	var epoch uint64
	if err := borsh.Deserialize(&epoch, res.Response.Value); err != nil {
		return 0, core.NewDecodeError(pathEpoch, err)
	}
	return Epoch(epoch), nil
}

// QueryEvents returns the IBC events of the first block matching the query.
// An empty result means that no block matches yet.
func (c *Chain) QueryEvents(ctx context.Context, query string) ([]core.IBCEventWithHeight, error) {
	page, perPage := 1, 1
	c.countQuery(ctx, "block_search")
	blocks, err := c.client.BlockSearch(ctx, query, &page, &perPage, "asc")
	if err != nil {
		return nil, errorsmod.Wrapf(core.ErrRPC, "failed to search blocks: %v", err)
	}
	if len(blocks.Blocks) == 0 {
		// not committed yet
		return nil, nil
	}

	blockHeight := blocks.Blocks[0].Block.Height
	results, err := c.client.BlockResults(ctx, &blockHeight)
	if err != nil {
		return nil, errorsmod.Wrapf(core.ErrRPC, "failed to get the block results at %d: %v", blockHeight, err)
	}

	return ConvertEvents(results.FinalizeBlockEvents, c.height(results.Height)), nil
}

func (c *Chain) countQuery(ctx context.Context, kind string) {
	telemetry.QueriesCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("chain_id", c.ChainID()),
		attribute.String("kind", kind),
	))
}

// decodeSequence decodes a big-endian uint64
func decodeSequence(path string, bz []byte) (uint64, error) {
	if len(bz) != 8 {
		return 0, core.NewDecodeError(path, fmt.Errorf("sequence length mismatch: expected=8 actual=%d", len(bz)))
	}
	return sdk.BigEndianToUint64(bz), nil
}
