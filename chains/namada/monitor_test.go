package namada

import (
	"testing"

	abci "github.com/cometbft/cometbft/abci/types"
	cmttypes "github.com/cometbft/cometbft/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	chantypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger-labs/namada-relayer/core"
)

func newTestMonitor() *eventMonitor {
	return &eventMonitor{
		chainID: testChainID,
		height:  func(h int64) clienttypes.Height { return clienttypes.NewHeight(0, uint64(h)) },
		subs:    make(map[int]*core.Subscription),
		done:    make(chan struct{}),
	}
}

func newBlock(height int64, blockEvents []abci.Event, txEvents ...[]abci.Event) cmttypes.EventDataNewBlock {
	data := cmttypes.EventDataNewBlock{
		Block:               &cmttypes.Block{Header: cmttypes.Header{Height: height}},
		ResultFinalizeBlock: abci.ResponseFinalizeBlock{Events: blockEvents},
	}
	for _, evs := range txEvents {
		data.ResultFinalizeBlock.TxResults = append(data.ResultFinalizeBlock.TxResults, &abci.ExecTxResult{Events: evs})
	}
	return data
}

func TestMonitorBatch(t *testing.T) {
	m := newTestMonitor()
	batch := m.batch(newBlock(15,
		[]abci.Event{packetEvent(chantypes.EventTypeSendPacket, "1")},
		[]abci.Event{event(eventTypeMessage), packetEvent(chantypes.EventTypeSendPacket, "2")},
		nil,
	))
	require.Equal(t, testChainID, batch.ChainID)
	require.Equal(t, uint64(15), batch.Height)
	require.Len(t, batch.Events, 2)
	for i, ev := range batch.Events {
		require.Equal(t, clienttypes.NewHeight(0, 15), ev.Height)
		require.Equal(t, uint64(i+1), ev.Event.(*core.EventSendPacket).Sequence)
	}
}

func TestMonitorBatchDropsOtherEvents(t *testing.T) {
	m := newTestMonitor()
	batch := m.batch(newBlock(7,
		[]abci.Event{event("coin_received", "receiver", testOwner, "amount", "10")},
		[]abci.Event{event("tx", "hash", "ABCD")},
		[]abci.Event{event(chantypes.EventTypeSendPacket, "packet_sequence", "x")},
	))
	require.Equal(t, uint64(7), batch.Height)
	require.Empty(t, batch.Events)

	batch = m.batch(newBlock(8,
		[]abci.Event{event("coin_received", "receiver", testOwner)},
		[]abci.Event{event("tx", "hash", "ABCD"), packetEvent(chantypes.EventTypeSendPacket, "3")},
	))
	require.Len(t, batch.Events, 1)
	require.IsType(t, &core.EventSendPacket{}, batch.Events[0].Event)
}

func TestMonitorBroadcast(t *testing.T) {
	m := newTestMonitor()
	sub1 := m.Subscribe()
	sub2 := m.Subscribe()

	m.broadcast(m.batch(newBlock(1, nil)))
	require.Equal(t, uint64(1), (<-sub1.Events()).Height)
	require.Equal(t, uint64(1), (<-sub2.Events()).Height)

	sub1.Close()
	require.Len(t, m.subs, 1)
	m.broadcast(m.batch(newBlock(2, nil)))
	require.Equal(t, uint64(2), (<-sub2.Events()).Height)
	_, ok := <-sub1.Events()
	require.False(t, ok)

	// a full subscription drops the batch
	for i := 0; i < subscriptionBuffer+1; i++ {
		m.broadcast(m.batch(newBlock(int64(3+i), nil)))
	}
	require.Len(t, sub2.Events(), subscriptionBuffer)
}

func TestMonitorSubscribeAfterStop(t *testing.T) {
	m := newTestMonitor()
	close(m.done)
	require.True(t, m.stopped())

	sub := m.Subscribe()
	_, ok := <-sub.Events()
	require.False(t, ok)
	require.Empty(t, m.subs)
}
