package namada

import (
	"context"
	"fmt"
	"time"

	errorsmod "cosmossdk.io/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/hyperledger-labs/namada-relayer/core"
	"github.com/hyperledger-labs/namada-relayer/internal/telemetry"
)

// WaitBackoff is the fixed interval between the confirmation rounds
const WaitBackoff = 300 * time.Millisecond

const checkTxErrorMessage = "check_tx (broadcast_tx_sync) on chain %s for Tx hash %s reports error: code=%v, log=%q"

// SendMessagesAndWaitCommit sends a transaction per message in order and waits
// until the events of all of them are found.
func (c *Chain) SendMessagesAndWaitCommit(ctx context.Context, msgs core.TrackedMsgs) ([]core.IBCEventWithHeight, error) {
	if len(msgs.Msgs) == 0 {
		return nil, nil
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	results := make([]core.TxSyncResult, 0, len(msgs.Msgs))
	for _, msg := range msgs.Msgs {
		res, err := c.SendTx(ctx, msg)
		if err != nil {
			return nil, err
		}

		// a placeholder until the events are found. A tx rejected by check_tx
		// is never applied, so the placeholder is its final result.
		placeholder := core.NewIBCEventWithHeight(&core.EventChainError{
			Reason: fmt.Sprintf(checkTxErrorMessage, c.ChainID(), res.Hash, res.Code, res.Log),
		}, c.height(1))
		status := core.TxPending(1)
		if res.Code != 0 {
			status = core.TxReceivedResponse
		}
		results = append(results, core.TxSyncResult{
			Response: *res,
			Events:   []core.IBCEventWithHeight{placeholder},
			Status:   status,
		})
	}

	if err := c.WaitForBlockCommits(ctx, results); err != nil {
		return nil, err
	}
	return core.FlattenEvents(results), nil
}

// SendMessagesAndWaitCheckTx sends a transaction per message in order and returns their broadcast responses
func (c *Chain) SendMessagesAndWaitCheckTx(ctx context.Context, msgs core.TrackedMsgs) ([]core.TxResponse, error) {
	if len(msgs.Msgs) == 0 {
		return nil, nil
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	responses := make([]core.TxResponse, 0, len(msgs.Msgs))
	for _, msg := range msgs.Msgs {
		res, err := c.SendTx(ctx, msg)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *res)
	}
	return responses, nil
}

// WaitForBlockCommits polls the applied transactions every WaitBackoff until
// no result is pending. It fails with ErrTxNoConfirmation once the RPC timeout
// has elapsed. The results found before the failure keep their events.
func (c *Chain) WaitForBlockCommits(ctx context.Context, results []core.TxSyncResult) error {
	logger := GetChainLogger().WithChain(c.ChainID())
	chainAttr := attribute.String("chain_id", c.ChainID())
	timeout := c.config.GetRPCTimeout()

	startTime := time.Now()
	for {
		pending := countPending(results)
		telemetry.PendingTxsGauge.Set(int64(pending), chainAttr)
		if core.AllTxResultsFound(results) {
			return nil
		}

		if elapsed := time.Since(startTime); elapsed > timeout {
			telemetry.TxsUnconfirmedCounter.Add(ctx, int64(pending), metric.WithAttributes(chainAttr))
			return errorsmod.Wrapf(core.ErrTxNoConfirmation, "%d of %d txs are pending after %s", pending, len(results), elapsed)
		}

		time.Sleep(WaitBackoff)

		for i := range results {
			if !results[i].Status.IsPending() {
				continue
			}
			hash := core.QueryTxHash(results[i].Response.Hash)
			// a failed tx has a chain error event so that it is not pending anymore
			events, err := c.QueryTxs(ctx, hash)
			if err != nil {
				logger.Debug("failed to query the tx", "tx_hash", hash, "error", err)
				continue
			}
			if len(events) != 0 {
				results[i].Events = events
				results[i].Status = core.TxReceivedResponse
				telemetry.TxsConfirmedCounter.Add(ctx, 1, metric.WithAttributes(chainAttr))
			}
		}

		if c.waitObserver != nil {
			c.waitObserver(results)
		}
	}
}

func countPending(results []core.TxSyncResult) int {
	var n int
	for _, r := range results {
		if r.Status.IsPending() {
			n++
		}
	}
	return n
}
