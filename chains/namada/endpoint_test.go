package namada

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	abci "github.com/cometbft/cometbft/abci/types"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	cmttypes "github.com/cometbft/cometbft/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	transfertypes "github.com/cosmos/ibc-go/v8/modules/apps/transfer/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	conntypes "github.com/cosmos/ibc-go/v8/modules/core/03-connection/types"
	chantypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	commitmenttypes "github.com/cosmos/ibc-go/v8/modules/core/23-commitment/types"
	ibctm "github.com/cosmos/ibc-go/v8/modules/light-clients/07-tendermint"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger-labs/namada-relayer/core"
)

const (
	testClientID     = "07-tendermint-0"
	testConnectionID = "connection-0"
	testPortID       = "transfer"
	testChannelID    = "channel-0"
)

func sequenceBytes(seq uint64) []byte {
	return sdk.Uint64ToBigEndian(seq)
}

func storeClient(t *testing.T, chain *Chain, rpc *fakeRPC, clientID string, heights ...uint64) {
	t.Helper()
	cs := ibctm.NewClientState("counterparty-1", ibctm.DefaultTrustLevel, time.Hour, 2*time.Hour, 10*time.Second,
		clienttypes.NewHeight(1, 10), commitmenttypes.GetSDKSpecs(), nil)
	bz, err := clienttypes.MarshalClientState(chain.codec, cs)
	require.NoError(t, err)
	rpc.set(ClientStateKey(clientID), bz)

	for _, h := range heights {
		cons := ibctm.NewConsensusState(time.Unix(1700000000, 0).UTC(), commitmenttypes.NewMerkleRoot([]byte("root")), make([]byte, 32))
		bz, err := clienttypes.MarshalConsensusState(chain.codec, cons)
		require.NoError(t, err)
		rpc.set(ConsensusStateKey(clientID, clienttypes.NewHeight(1, h)), bz)
	}
}

func storeConnectionAndChannel(t *testing.T, chain *Chain, rpc *fakeRPC) {
	t.Helper()
	conn := conntypes.NewConnectionEnd(conntypes.OPEN, testClientID,
		conntypes.NewCounterparty("07-tendermint-5", "connection-3", commitmenttypes.NewMerklePrefix([]byte("ibc"))),
		conntypes.GetCompatibleVersions(), 0)
	bz, err := chain.codec.Marshal(&conn)
	require.NoError(t, err)
	rpc.set(ConnectionKey(testConnectionID), bz)
	rpc.set(ConnectionCounterKey(), sequenceBytes(1))

	channel := chantypes.NewChannel(chantypes.OPEN, chantypes.UNORDERED,
		chantypes.NewCounterparty(testPortID, "channel-9"), []string{testConnectionID}, "ics20-1")
	bz, err = chain.codec.Marshal(&channel)
	require.NoError(t, err)
	rpc.set(ChannelKey(testPortID, testChannelID), bz)
	rpc.set(ChannelCounterKey(), sequenceBytes(1))
}

func TestQueryClients(t *testing.T) {
	chain, rpc := newTestChain(t)
	storeClient(t, chain, rpc, testClientID, 3)
	storeClient(t, chain, rpc, "07-tendermint-1")
	rpc.set(ClientCounterKey(), sequenceBytes(2))

	clients, err := chain.QueryClients(context.TODO())
	require.NoError(t, err)
	require.Len(t, clients, 2)
	require.Equal(t, testClientID, clients[0].ClientID)
	require.Equal(t, "07-tendermint-1", clients[1].ClientID)
	require.Equal(t, "counterparty-1", clients[0].ClientState.(*ibctm.ClientState).ChainId)

	cs, _, err := chain.QueryClientState(context.TODO(), core.QueryClientStateRequest{ClientID: testClientID, Height: core.LatestHeight()}, core.IncludeProofNo)
	require.NoError(t, err)
	require.Equal(t, clienttypes.NewHeight(1, 10), cs.GetLatestHeight())

	_, _, err = chain.QueryClientState(context.TODO(), core.QueryClientStateRequest{ClientID: "07-tendermint-7", Height: core.LatestHeight()}, core.IncludeProofNo)
	require.ErrorIs(t, err, core.ErrQuery)
}

func TestQueryClientsUndecodable(t *testing.T) {
	chain, rpc := newTestChain(t)
	rpc.set(ClientStateKey(testClientID), []byte{0xff, 0x01})

	_, err := chain.QueryClients(context.TODO())
	require.ErrorIs(t, err, core.ErrDecode)
}

func TestQueryConsensusStates(t *testing.T) {
	chain, rpc := newTestChain(t)
	storeClient(t, chain, rpc, testClientID, 7, 3, 5)
	storeClient(t, chain, rpc, "07-tendermint-01", 4)

	heights, err := chain.QueryConsensusStateHeights(context.TODO(), core.QueryConsensusStateHeightsRequest{ClientID: testClientID})
	require.NoError(t, err)
	require.Equal(t, []clienttypes.Height{
		clienttypes.NewHeight(1, 3),
		clienttypes.NewHeight(1, 5),
		clienttypes.NewHeight(1, 7),
	}, heights)

	cons, _, err := chain.QueryConsensusState(context.TODO(), core.QueryConsensusStateRequest{
		ClientID:        testClientID,
		ConsensusHeight: clienttypes.NewHeight(1, 5),
		QueryHeight:     core.LatestHeight(),
	}, core.IncludeProofNo)
	require.NoError(t, err)
	require.Equal(t, []byte("root"), cons.(*ibctm.ConsensusState).Root.GetHash())
}

func TestQueryConnectionsAndChannels(t *testing.T) {
	chain, rpc := newTestChain(t)
	storeClient(t, chain, rpc, testClientID)
	storeConnectionAndChannel(t, chain, rpc)

	connections, err := chain.QueryConnections(context.TODO())
	require.NoError(t, err)
	require.Len(t, connections, 1)
	require.Equal(t, testConnectionID, connections[0].Id)

	ids, err := chain.QueryClientConnections(context.TODO(), core.QueryClientConnectionsRequest{ClientID: testClientID})
	require.NoError(t, err)
	require.Equal(t, []string{testConnectionID}, ids)

	channels, err := chain.QueryConnectionChannels(context.TODO(), core.QueryConnectionChannelsRequest{ConnectionID: testConnectionID})
	require.NoError(t, err)
	require.Len(t, channels, 1)
	require.Equal(t, testPortID, channels[0].PortId)
	require.Equal(t, testChannelID, channels[0].ChannelId)

	channels, err = chain.QueryConnectionChannels(context.TODO(), core.QueryConnectionChannelsRequest{ConnectionID: "connection-1"})
	require.NoError(t, err)
	require.Empty(t, channels)

	client, err := chain.QueryChannelClientState(context.TODO(), core.QueryChannelClientStateRequest{PortID: testPortID, ChannelID: testChannelID})
	require.NoError(t, err)
	require.Equal(t, testClientID, client.ClientID)
}

func TestQueryPacketSequences(t *testing.T) {
	chain, rpc := newTestChain(t)
	for _, seq := range []uint64{1, 2, 3} {
		rpc.set(PacketCommitmentKey(testPortID, testChannelID, seq), []byte{byte(seq)})
	}
	rpc.set(PacketReceiptKey(testPortID, testChannelID, 2), []byte{1})
	rpc.set(PacketAcknowledgementKey(testPortID, testChannelID, 1), []byte{1})
	rpc.set(PacketAcknowledgementKey(testPortID, testChannelID, 4), []byte{1})
	rpc.set(PacketCommitmentKey(testPortID, "channel-1", 9), []byte{9})

	seqs, height, err := chain.QueryPacketCommitments(context.TODO(), core.QueryPacketCommitmentsRequest{PortID: testPortID, ChannelID: testChannelID})
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2, 3}, seqs)
	require.Equal(t, clienttypes.NewHeight(0, 100), height)

	unreceived, err := chain.QueryUnreceivedPackets(context.TODO(), core.QueryUnreceivedPacketsRequest{
		PortID: testPortID, ChannelID: testChannelID, PacketCommitmentSequences: []uint64{1, 2, 3},
	})
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 3}, unreceived)

	acks, _, err := chain.QueryPacketAcknowledgements(context.TODO(), core.QueryPacketAcknowledgementsRequest{
		PortID: testPortID, ChannelID: testChannelID, PacketCommitmentSequences: []uint64{1, 2, 3},
	})
	require.NoError(t, err)
	require.Equal(t, []uint64{1}, acks)

	unreceivedAcks, err := chain.QueryUnreceivedAcknowledgements(context.TODO(), core.QueryUnreceivedAcksRequest{
		PortID: testPortID, ChannelID: testChannelID, PacketAckSequences: []uint64{1, 5},
	})
	require.NoError(t, err)
	require.Equal(t, []uint64{1}, unreceivedAcks)
}

func TestQueryPacketValues(t *testing.T) {
	chain, rpc := newTestChain(t)
	rpc.set(PacketCommitmentKey(testPortID, testChannelID, 1), []byte("commitment"))
	rpc.set(NextSequenceRecvKey(testPortID, testChannelID), sequenceBytes(7))

	commitment, _, err := chain.QueryPacketCommitment(context.TODO(), core.QueryPacketCommitmentRequest{
		PortID: testPortID, ChannelID: testChannelID, Sequence: 1, Height: core.LatestHeight(),
	}, core.IncludeProofNo)
	require.NoError(t, err)
	require.Equal(t, []byte("commitment"), commitment)

	// a missing receipt is an empty value, not an error
	receipt, _, err := chain.QueryPacketReceipt(context.TODO(), core.QueryPacketReceiptRequest{
		PortID: testPortID, ChannelID: testChannelID, Sequence: 1, Height: core.LatestHeight(),
	}, core.IncludeProofNo)
	require.NoError(t, err)
	require.Empty(t, receipt)

	seq, _, err := chain.QueryNextSequenceReceive(context.TODO(), core.QueryNextSequenceReceiveRequest{
		PortID: testPortID, ChannelID: testChannelID, Height: core.LatestHeight(),
	}, core.IncludeProofNo)
	require.NoError(t, err)
	require.Equal(t, uint64(7), seq)

	_, _, err = chain.QueryNextSequenceReceive(context.TODO(), core.QueryNextSequenceReceiveRequest{
		PortID: testPortID, ChannelID: "channel-5", Height: core.LatestHeight(),
	}, core.IncludeProofNo)
	require.ErrorIs(t, err, core.ErrDecode)
}

func TestQueryTxsByHash(t *testing.T) {
	chain, rpc := newTestChain(t)
	hash := core.QueryTxHash{0xab, 0xcd}
	rpc.searches["applied.hash='ABCD'"] = 30
	rpc.blockEvents[30] = []abci.Event{packetEvent(chantypes.EventTypeSendPacket, "4")}

	events, err := chain.QueryTxs(context.TODO(), hash)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, clienttypes.NewHeight(0, 30), events[0].Height)

	events, err = chain.QueryTxs(context.TODO(), core.QueryTxHash{0x01})
	require.NoError(t, err)
	require.Empty(t, events)

	_, err = chain.QueryTxs(context.TODO(), nil)
	require.ErrorIs(t, err, core.ErrNotSupported)
}

func TestQueryClientUpdate(t *testing.T) {
	chain, rpc := newTestChain(t)
	rpc.txs = []*coretypes.ResultTx{{
		Height: 40,
		TxResult: abci.ExecTxResult{Events: []abci.Event{
			event(clienttypes.EventTypeUpdateClient,
				clienttypes.AttributeKeyClientID, testClientID,
				clienttypes.AttributeKeyClientType, "07-tendermint",
				clienttypes.AttributeKeyConsensusHeights, "1-5",
			),
		}},
	}}

	req := &core.QueryClientEventRequest{QueryHeight: core.LatestHeight(), ClientID: testClientID, ConsensusHeight: clienttypes.NewHeight(1, 5)}
	events, err := chain.QueryTxs(context.TODO(), req)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, clienttypes.NewHeight(0, 40), events[0].Height)

	// the update happened after the query height
	req.QueryHeight = core.SpecificHeight(clienttypes.NewHeight(0, 39))
	events, err = chain.QueryTxs(context.TODO(), req)
	require.NoError(t, err)
	require.Empty(t, events)

	req.QueryHeight = core.LatestHeight()
	req.ConsensusHeight = clienttypes.NewHeight(1, 6)
	events, err = chain.QueryTxs(context.TODO(), req)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestQueryPacketEvents(t *testing.T) {
	chain, rpc := newTestChain(t)
	req := core.QueryPacketEventDataRequest{
		EventType:            chantypes.EventTypeSendPacket,
		SourcePortID:         "transfer",
		SourceChannelID:      "channel-0",
		DestinationPortID:    "transfer",
		DestinationChannelID: "channel-1",
		Sequences:            []uint64{1, 2, 3},
		Height:               core.SpecificHeight(clienttypes.NewHeight(0, 60)),
	}
	rpc.searches[packetQuery(req, 1)] = 50
	rpc.searches[packetQuery(req, 3)] = 70
	rpc.blockEvents[50] = []abci.Event{
		packetEvent(chantypes.EventTypeSendPacket, "1"),
		packetEvent(chantypes.EventTypeSendPacket, "8"),
		packetEvent(chantypes.EventTypeRecvPacket, "1"),
	}
	rpc.blockEvents[70] = []abci.Event{packetEvent(chantypes.EventTypeSendPacket, "3")}

	events, err := chain.QueryPacketEvents(context.TODO(), req)
	require.NoError(t, err)
	require.Len(t, events, 1)
	send, ok := events[0].Event.(*core.EventSendPacket)
	require.True(t, ok)
	require.Equal(t, uint64(1), send.Sequence)
}

func TestQueryDenomTrace(t *testing.T) {
	chain, rpc := newTestChain(t)
	trace := transfertypes.ParseDenomTrace("transfer/channel-0/uatom")
	hash := trace.Hash().String()
	rpc.set(DenomKey(hash), []byte("transfer/channel-0/uatom"))

	for _, denom := range []string{hash, "ibc/" + hash} {
		got, err := chain.QueryDenomTrace(context.TODO(), denom)
		require.NoError(t, err)
		require.Equal(t, trace, *got)
	}

	_, err := chain.QueryDenomTrace(context.TODO(), "zz")
	require.ErrorIs(t, err, ErrInvalidDenom)

	other := transfertypes.ParseDenomTrace("transfer/channel-1/uosmo").Hash().String()
	_, err = chain.QueryDenomTrace(context.TODO(), other)
	require.ErrorIs(t, err, ErrDenomNotFound)

	rpc.set(DenomKey(other), []byte("uosmo"))
	_, err = chain.QueryDenomTrace(context.TODO(), other)
	require.ErrorIs(t, err, ErrInvalidDenom)
}

func TestQueryBalance(t *testing.T) {
	chain, rpc := newTestChain(t)
	amount, err := NewAmount(sdkmath.NewInt(1500))
	require.NoError(t, err)
	bz, err := amount.Bytes()
	require.NoError(t, err)
	rpc.set(BalanceKey(testNAM, testOwner), bz)
	rpc.set(BalanceKey(testNAM, "tnam1qsomeoneelse"), bz)

	prefix, err := IBCTokenPrefix("transfer/channel-0/uatom")
	require.NoError(t, err)
	rpc.set(MultitokenBalanceKey(prefix, testOwner), bz)

	balance, err := chain.QueryBalance(context.TODO(), "", "")
	require.NoError(t, err)
	require.Equal(t, core.Balance{Amount: "1500", Denom: DefaultFeeToken}, *balance)

	balance, err = chain.QueryBalance(context.TODO(), testKeyName, testNAM)
	require.NoError(t, err)
	require.Equal(t, "1500", balance.Amount)

	balance, err = chain.QueryBalance(context.TODO(), testKeyName, "transfer/channel-0/uatom")
	require.NoError(t, err)
	require.Equal(t, "1500", balance.Amount)

	balance, err = chain.QueryBalance(context.TODO(), testKeyName, "transfer/channel-1/uatom")
	require.NoError(t, err)
	require.Equal(t, "0", balance.Amount)

	_, err = chain.QueryBalance(context.TODO(), "unknown", "")
	require.ErrorIs(t, err, ErrAddressNotFound)
	_, err = chain.QueryBalance(context.TODO(), testKeyName, "BTC")
	require.ErrorIs(t, err, ErrAddressNotFound)

	balances, err := chain.QueryAllBalances(context.TODO(), "")
	require.NoError(t, err)
	require.Equal(t, []core.Balance{{Amount: "1500", Denom: testNAM}}, balances)
}

func TestQueryUpgradedStates(t *testing.T) {
	chain, _ := newTestChain(t)
	_, _, err := chain.QueryUpgradedClientState(context.TODO(), core.QueryUpgradedStateRequest{})
	require.ErrorIs(t, err, core.ErrNotSupported)
	_, _, err = chain.QueryUpgradedConsensusState(context.TODO(), core.QueryUpgradedStateRequest{})
	require.ErrorIs(t, err, core.ErrNotSupported)
}

func TestQueryHostConsensusState(t *testing.T) {
	chain, rpc := newTestChain(t)
	now := time.Unix(1700000000, 0).UTC()
	rpc.header = &cmttypes.Header{Height: 12, Time: now, AppHash: []byte("app"), NextValidatorsHash: make([]byte, 32)}

	cons, err := chain.QueryHostConsensusState(context.TODO(), core.QueryHostConsensusStateRequest{Height: core.LatestHeight()})
	require.NoError(t, err)
	tmCons := cons.(*ibctm.ConsensusState)
	require.Equal(t, now, tmCons.Timestamp)
	require.Equal(t, []byte("app"), tmCons.Root.GetHash())
}

func TestHealthCheck(t *testing.T) {
	chain, rpc := newTestChain(t)

	status, err := chain.HealthCheck(context.TODO())
	require.NoError(t, err)
	require.Equal(t, core.Healthy, status)

	rpc.txSearchErr = errors.New("tx indexing is disabled")
	status, err = chain.HealthCheck(context.TODO())
	require.NoError(t, err)
	require.Equal(t, core.Unhealthy, status)

	rpc.healthErr = errors.New("connection refused")
	status, err = chain.HealthCheck(context.TODO())
	require.ErrorIs(t, err, core.ErrRPC)
	require.Equal(t, core.Unhealthy, status)
}

func TestQueryApplicationStatus(t *testing.T) {
	chain, rpc := newTestChain(t)
	status, err := chain.QueryApplicationStatus(context.TODO())
	require.NoError(t, err)
	require.Equal(t, clienttypes.NewHeight(0, 100), status.Height)

	rpc.catchingUp = true
	_, err = chain.QueryApplicationStatus(context.TODO())
	require.ErrorIs(t, err, core.ErrChainNotCaughtUp)
}

func TestSignerAndCommitmentPrefix(t *testing.T) {
	chain, _ := newTestChain(t)
	signer, err := chain.GetSigner()
	require.NoError(t, err)
	require.Equal(t, testOwner, signer)

	prefix, err := chain.QueryCommitmentPrefix()
	require.NoError(t, err)
	require.Equal(t, commitmenttypes.NewMerklePrefix([]byte("ibc")), prefix)

	chain.config.KeyName = "unknown"
	_, err = chain.GetSigner()
	require.ErrorIs(t, err, ErrAddressNotFound)
}

func TestBuildClientState(t *testing.T) {
	chain, rpc := newTestChain(t)
	params := append(sequenceBytesLE(100, 2, 21), make([]byte, 40)...)
	rpc.set(PoSParamsKey(), params)
	rpc.set(EpochDurationKey(), sequenceBytesLE(10, 3600))

	unbonding, err := chain.QueryUnbondingPeriod(context.TODO())
	require.NoError(t, err)
	require.Equal(t, 2*time.Hour, unbonding)

	cs, err := chain.BuildClientState(context.TODO(), clienttypes.NewHeight(0, 5), core.ClientSettings{})
	require.NoError(t, err)
	tmCs := cs.(*ibctm.ClientState)
	require.Equal(t, testChainID, tmCs.ChainId)
	require.Equal(t, 80*time.Minute, tmCs.TrustingPeriod)
	require.Equal(t, 2*time.Hour, tmCs.UnbondingPeriod)
	require.Equal(t, ibctm.DefaultTrustLevel, tmCs.TrustLevel)
	require.Len(t, tmCs.ProofSpecs, 2)

	cs, err = chain.BuildClientState(context.TODO(), clienttypes.NewHeight(0, 5), core.ClientSettings{TrustingPeriod: time.Hour})
	require.NoError(t, err)
	require.Equal(t, time.Hour, cs.(*ibctm.ClientState).TrustingPeriod)
}

// sequenceBytesLE encodes the values as borsh u64s
func sequenceBytesLE(values ...uint64) []byte {
	var bz []byte
	for _, v := range values {
		for i := 0; i < 8; i++ {
			bz = append(bz, byte(v>>(8*i)))
		}
	}
	return bz
}
