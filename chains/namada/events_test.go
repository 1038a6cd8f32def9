package namada

import (
	"encoding/hex"
	"testing"

	abci "github.com/cometbft/cometbft/abci/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	chantypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger-labs/namada-relayer/core"
)

func event(typ string, kvs ...string) abci.Event {
	ev := abci.Event{Type: typ}
	for i := 0; i+1 < len(kvs); i += 2 {
		ev.Attributes = append(ev.Attributes, abci.EventAttribute{Key: kvs[i], Value: kvs[i+1]})
	}
	return ev
}

func packetEvent(typ string, seq string) abci.Event {
	return event(typ,
		chantypes.AttributeKeyDataHex, hex.EncodeToString([]byte("data")),
		chantypes.AttributeKeyTimeoutHeight, "0-1000",
		chantypes.AttributeKeyTimeoutTimestamp, "0",
		chantypes.AttributeKeySequence, seq,
		chantypes.AttributeKeySrcPort, "transfer",
		chantypes.AttributeKeySrcChannel, "channel-0",
		chantypes.AttributeKeyDstPort, "transfer",
		chantypes.AttributeKeyDstChannel, "channel-1",
		chantypes.AttributeKeyChannelOrdering, chantypes.UNORDERED.String(),
		chantypes.AttributeKeyConnectionID, "connection-0",
	)
}

func TestConvertPacketEvent(t *testing.T) {
	height := clienttypes.NewHeight(0, 10)
	ev, ok := ConvertEvent(packetEvent(chantypes.EventTypeSendPacket, "7"), height)
	require.True(t, ok)
	require.Equal(t, height, ev.Height)

	send, ok := ev.Event.(*core.EventSendPacket)
	require.True(t, ok, "unexpected event: %T", ev.Event)
	require.Equal(t, uint64(7), send.Sequence)
	require.Equal(t, []byte("data"), send.Data)
	require.Equal(t, clienttypes.NewHeight(0, 1000), send.TimeoutHeight)
	require.Equal(t, "channel-1", send.DstChannel)
	require.Equal(t, chantypes.UNORDERED, send.ChannelOrdering)
	require.Equal(t, "connection-0", send.ConnectionID)
}

func TestConvertUpdateClientEvent(t *testing.T) {
	height := clienttypes.NewHeight(0, 10)
	ev, ok := ConvertEvent(event(clienttypes.EventTypeUpdateClient,
		clienttypes.AttributeKeyClientID, "07-tendermint-0",
		clienttypes.AttributeKeyClientType, "07-tendermint",
		clienttypes.AttributeKeyConsensusHeights, "0-5,0-6",
	), height)
	require.True(t, ok)

	update, ok := ev.Event.(*core.EventUpdateClient)
	require.True(t, ok, "unexpected event: %T", ev.Event)
	require.Equal(t, "07-tendermint-0", update.ClientID)
	require.Equal(t, []clienttypes.Height{clienttypes.NewHeight(0, 5), clienttypes.NewHeight(0, 6)}, update.ConsensusHeights)
	require.Empty(t, update.Header)
}

func TestConvertSkippedEvents(t *testing.T) {
	height := clienttypes.NewHeight(0, 10)
	for _, ev := range []abci.Event{
		event(eventTypeMessage, "action", "transfer"),
		event(eventTypeAppModule, "module", "ibc"),
		// undecodable but in the skip set
		event(chantypes.EventTypeRecvPacket, chantypes.AttributeKeySequence, "x"),
		// unknown with the success code
		event("tx_applied", attributeKeyCode, successCodeValue),
	} {
		_, ok := ConvertEvent(ev, height)
		require.False(t, ok, "event %s", ev.Type)
	}
}

func TestConvertFailedEvent(t *testing.T) {
	height := clienttypes.NewHeight(0, 10)
	events := ConvertEvents([]abci.Event{
		event(eventTypeMessage),
		event("tx_applied", attributeKeyCode, "1", "info", "out of gas"),
	}, height)
	require.Len(t, events, 1)
	require.Equal(t, height, events[0].Height)

	chainErr, ok := events[0].Event.(*core.EventChainError)
	require.True(t, ok, "unexpected event: %T", events[0].Event)
	require.Contains(t, chainErr.Reason, "tx_applied")
	require.Contains(t, chainErr.Reason, "out of gas")
}

func TestDedupConvertedEvents(t *testing.T) {
	height := clienttypes.NewHeight(0, 10)
	first := ConvertEvents([]abci.Event{
		packetEvent(chantypes.EventTypeSendPacket, "1"),
		packetEvent(chantypes.EventTypeSendPacket, "2"),
	}, height)
	second := ConvertEvents([]abci.Event{
		packetEvent(chantypes.EventTypeSendPacket, "2"),
	}, height)
	other := ConvertEvents([]abci.Event{
		packetEvent(chantypes.EventTypeSendPacket, "2"),
	}, clienttypes.NewHeight(0, 11))

	events := core.FlattenEvents([]core.TxSyncResult{{Events: first}, {Events: second}, {Events: other}})
	require.Len(t, events, 3)
	require.Equal(t, uint64(1), events[0].Event.(*core.EventSendPacket).Sequence)
	require.Equal(t, uint64(2), events[1].Event.(*core.EventSendPacket).Sequence)
	require.Equal(t, clienttypes.NewHeight(0, 11), events[2].Height)
}
