package core

import (
	cmtbytes "github.com/cometbft/cometbft/libs/bytes"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
)

type QueryClientStateRequest struct {
	ClientID string
	Height   QueryHeight
}

type QueryConsensusStateRequest struct {
	ClientID        string
	ConsensusHeight clienttypes.Height
	QueryHeight     QueryHeight
}

type QueryConsensusStateHeightsRequest struct {
	ClientID string
}

type QueryUpgradedStateRequest struct {
	UpgradeHeight clienttypes.Height
}

type QueryHostConsensusStateRequest struct {
	Height QueryHeight
}

type QueryClientConnectionsRequest struct {
	ClientID string
}

type QueryConnectionRequest struct {
	ConnectionID string
	Height       QueryHeight
}

type QueryConnectionChannelsRequest struct {
	ConnectionID string
}

type QueryChannelRequest struct {
	PortID    string
	ChannelID string
	Height    QueryHeight
}

type QueryChannelClientStateRequest struct {
	PortID    string
	ChannelID string
}

type QueryPacketCommitmentRequest struct {
	PortID    string
	ChannelID string
	Sequence  uint64
	Height    QueryHeight
}

type QueryPacketCommitmentsRequest struct {
	PortID    string
	ChannelID string
}

type QueryPacketReceiptRequest struct {
	PortID    string
	ChannelID string
	Sequence  uint64
	Height    QueryHeight
}

type QueryUnreceivedPacketsRequest struct {
	PortID                    string
	ChannelID                 string
	PacketCommitmentSequences []uint64
}

type QueryPacketAcknowledgementRequest struct {
	PortID    string
	ChannelID string
	Sequence  uint64
	Height    QueryHeight
}

type QueryPacketAcknowledgementsRequest struct {
	PortID                    string
	ChannelID                 string
	PacketCommitmentSequences []uint64
}

type QueryUnreceivedAcksRequest struct {
	PortID             string
	ChannelID          string
	PacketAckSequences []uint64
}

type QueryNextSequenceReceiveRequest struct {
	PortID    string
	ChannelID string
	Height    QueryHeight
}

// QueryTxRequest is either a QueryClientEventRequest or a QueryTxHash
type QueryTxRequest interface {
	isQueryTxRequest()
}

var (
	_ QueryTxRequest = (*QueryClientEventRequest)(nil)
	_ QueryTxRequest = QueryTxHash(nil)
)

// QueryClientEventRequest selects the client update which sets the consensus state at ConsensusHeight
type QueryClientEventRequest struct {
	QueryHeight     QueryHeight
	EventType       string
	ClientID        string
	ConsensusHeight clienttypes.Height
}

func (*QueryClientEventRequest) isQueryTxRequest() {}

// QueryTxHash selects the transaction with the hash
type QueryTxHash cmtbytes.HexBytes

func (QueryTxHash) isQueryTxRequest() {}

func (h QueryTxHash) String() string {
	return cmtbytes.HexBytes(h).String()
}

// QueryPacketEventDataRequest selects the packet events of a channel pair
type QueryPacketEventDataRequest struct {
	EventType            string
	SourcePortID         string
	SourceChannelID      string
	DestinationPortID    string
	DestinationChannelID string
	Sequences            []uint64
	Height               QueryHeight
}
