package namada

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go"
	abci "github.com/cometbft/cometbft/abci/types"
	rpchttp "github.com/cometbft/cometbft/rpc/client/http"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	cmttypes "github.com/cometbft/cometbft/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"

	"github.com/hyperledger-labs/namada-relayer/core"
)

const (
	monitorSubscriber  = "namada-relayer"
	monitorBufferSize  = 100
	monitorRetryDelay  = 2 * time.Second
	subscriptionBuffer = 16
)

var newBlockQuery = cmttypes.QueryForEvent(cmttypes.EventNewBlock).String()

// eventMonitor converts the events of new blocks and fans them out to the subscriptions
type eventMonitor struct {
	chainID string
	client  *rpchttp.HTTP
	height  func(int64) clienttypes.Height

	mu     sync.Mutex
	subs   map[int]*core.Subscription
	nextID int
	done   chan struct{}
}

func newEventMonitor(chainID, wsAddr string, height func(int64) clienttypes.Height) (*eventMonitor, error) {
	client, err := rpchttp.New(wsAddr, "/websocket")
	if err != nil {
		return nil, fmt.Errorf("failed to create the websocket client of %s: %w", wsAddr, err)
	}
	return &eventMonitor{
		chainID: chainID,
		client:  client,
		height:  height,
		subs:    make(map[int]*core.Subscription),
		done:    make(chan struct{}),
	}, nil
}

// Start connects to the node and runs the monitor until ctx is done
func (m *eventMonitor) Start(ctx context.Context) error {
	if err := m.client.Start(); err != nil {
		return fmt.Errorf("failed to start the websocket client: %w", err)
	}
	out, err := m.client.Subscribe(ctx, monitorSubscriber, newBlockQuery, monitorBufferSize)
	if err != nil {
		m.client.Stop() //nolint:errcheck
		return fmt.Errorf("failed to subscribe %q: %w", newBlockQuery, err)
	}
	go m.run(ctx, out)
	return nil
}

// Subscribe returns a new subscription. A subscription of a stopped monitor is closed.
func (m *eventMonitor) Subscribe() *core.Subscription {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	sub := core.NewSubscription(subscriptionBuffer, func() { m.unsubscribe(id) })
	closed := m.stopped()
	if !closed {
		m.subs[id] = sub
	}
	m.mu.Unlock()

	if closed {
		sub.Close()
	}
	return sub
}

func (m *eventMonitor) unsubscribe(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, id)
}

func (m *eventMonitor) stopped() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

func (m *eventMonitor) run(ctx context.Context, out <-chan coretypes.ResultEvent) {
	logger := GetChainLogger().WithChain(m.chainID)
	defer m.stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-out:
			if !ok {
				logger.Warn("event subscription closed, reconnecting")
				var err error
				if out, err = m.resubscribe(ctx); err != nil {
					logger.Error("failed to resubscribe events", err)
					return
				}
				continue
			}
			data, ok := ev.Data.(cmttypes.EventDataNewBlock)
			if !ok || data.Block == nil {
				continue
			}
			m.broadcast(m.batch(data))
		}
	}
}

func (m *eventMonitor) resubscribe(ctx context.Context) (<-chan coretypes.ResultEvent, error) {
	var out <-chan coretypes.ResultEvent
	err := retry.Do(func() error {
		m.client.UnsubscribeAll(ctx, monitorSubscriber) //nolint:errcheck
		var err error
		out, err = m.client.Subscribe(ctx, monitorSubscriber, newBlockQuery, monitorBufferSize)
		return err
	}, rtyAtt, retry.Delay(monitorRetryDelay), rtyErr, retry.Context(ctx))
	return out, err
}

// batch collects the IBC events of the block followed by those of each transaction.
// Other events are dropped.
func (m *eventMonitor) batch(data cmttypes.EventDataNewBlock) core.EventBatch {
	height := m.height(data.Block.Height)
	events := []abci.Event{}
	events = append(events, data.ResultFinalizeBlock.Events...)
	for _, res := range data.ResultFinalizeBlock.TxResults {
		if res == nil {
			continue
		}
		events = append(events, res.Events...)
	}
	return core.EventBatch{
		ChainID: m.chainID,
		Height:  height.RevisionHeight,
		Events:  FilterIBCEvents(events, height),
	}
}

func (m *eventMonitor) broadcast(batch core.EventBatch) {
	logger := GetChainLogger().WithChain(m.chainID)

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, sub := range m.subs {
		if !sub.Send(batch) {
			logger.Warn("subscription is full, dropped a block", "subscription", id, "height", batch.Height)
		}
	}
}

func (m *eventMonitor) stop() {
	m.mu.Lock()
	close(m.done)
	subs := m.subs
	m.subs = make(map[int]*core.Subscription)
	m.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
	if err := m.client.Stop(); err != nil {
		GetChainLogger().WithChain(m.chainID).Warn("failed to stop the websocket client", "error", err)
	}
}
