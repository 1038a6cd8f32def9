package core

import (
	"context"

	cmttypes "github.com/cometbft/cometbft/types"
	transfertypes "github.com/cosmos/ibc-go/v8/modules/apps/transfer/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	conntypes "github.com/cosmos/ibc-go/v8/modules/core/03-connection/types"
	chantypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	commitmenttypes "github.com/cosmos/ibc-go/v8/modules/core/23-commitment/types"
	ibcexported "github.com/cosmos/ibc-go/v8/modules/core/exported"
)

// ChainEndpoint represents a chain that is supported by the relayer.
// Every method blocks until the underlying network round trip completes.
type ChainEndpoint interface {
	ChainInfo
	TxSubmitter
	ClientBuilder
	ICS02Querier
	ICS03Querier
	ICS04Querier
	EventQuerier
	BankQuerier
}

// ChainInfo provides the identity and liveness of a chain
type ChainInfo interface {
	// ChainID returns ID of the chain
	ChainID() string

	// HealthCheck checks whether the node is reachable and indexes transactions
	HealthCheck(ctx context.Context) (HealthStatus, error)

	// Subscribe returns a subscription to the events emitted by the chain
	Subscribe(ctx context.Context) (*Subscription, error)

	// GetSigner returns the address of the relayer on the chain
	GetSigner() (string, error)

	// QueryApplicationStatus returns the latest height and timestamp of the chain
	QueryApplicationStatus(ctx context.Context) (*ChainStatus, error)

	// QueryCommitmentPrefix returns the prefix of the IBC store
	QueryCommitmentPrefix() (commitmenttypes.MerklePrefix, error)
}

// TxSubmitter submits IBC messages to a chain
type TxSubmitter interface {
	// SendMessagesAndWaitCommit sends each message as its own transaction and waits
	// until all of them are committed. It returns the deduplicated events.
	SendMessagesAndWaitCommit(ctx context.Context, msgs TrackedMsgs) ([]IBCEventWithHeight, error)

	// SendMessagesAndWaitCheckTx sends each message as its own transaction and returns
	// the responses of broadcast_tx_sync
	SendMessagesAndWaitCheckTx(ctx context.Context, msgs TrackedMsgs) ([]TxResponse, error)
}

// ClientBuilder builds the light client states of this chain for a counterparty
type ClientBuilder interface {
	// BuildClientState returns a client state of this chain at the given height
	BuildClientState(ctx context.Context, height clienttypes.Height, settings ClientSettings) (ibcexported.ClientState, error)

	// BuildConsensusState returns a consensus state from a verified light block
	BuildConsensusState(lightBlock *cmttypes.LightBlock) (ibcexported.ConsensusState, error)

	// BuildHeader returns the header for the target height and the supporting headers
	BuildHeader(ctx context.Context, trustedHeight, targetHeight clienttypes.Height, clientState ibcexported.ClientState) (ibcexported.ClientMessage, []ibcexported.ClientMessage, error)

	// VerifyHeader verifies the header at the target height from the trusted height
	VerifyHeader(ctx context.Context, trustedHeight, targetHeight clienttypes.Height, clientState ibcexported.ClientState) (*cmttypes.LightBlock, error)

	// CheckMisbehaviour checks whether the header of a client update conflicts with this chain
	CheckMisbehaviour(ctx context.Context, update *EventUpdateClient, clientState ibcexported.ClientState) (*MisbehaviourEvidence, error)
}

// ICS02Querier is an interface to the state of ICS-02
type ICS02Querier interface {
	// QueryClients returns all the client states
	QueryClients(ctx context.Context) ([]IdentifiedClientState, error)

	// QueryClientState returns the client state of a client
	QueryClientState(ctx context.Context, req QueryClientStateRequest, includeProof IncludeProof) (ibcexported.ClientState, *commitmenttypes.MerkleProof, error)

	// QueryConsensusState returns a consensus state of a client
	QueryConsensusState(ctx context.Context, req QueryConsensusStateRequest, includeProof IncludeProof) (ibcexported.ConsensusState, *commitmenttypes.MerkleProof, error)

	// QueryConsensusStateHeights returns the heights of all consensus states of a client
	QueryConsensusStateHeights(ctx context.Context, req QueryConsensusStateHeightsRequest) ([]clienttypes.Height, error)

	// QueryUpgradedClientState returns the client state scheduled by an upgrade
	QueryUpgradedClientState(ctx context.Context, req QueryUpgradedStateRequest) (ibcexported.ClientState, *commitmenttypes.MerkleProof, error)

	// QueryUpgradedConsensusState returns the consensus state scheduled by an upgrade
	QueryUpgradedConsensusState(ctx context.Context, req QueryUpgradedStateRequest) (ibcexported.ConsensusState, *commitmenttypes.MerkleProof, error)

	// QueryHostConsensusState returns the consensus state of this chain at a height
	QueryHostConsensusState(ctx context.Context, req QueryHostConsensusStateRequest) (ibcexported.ConsensusState, error)
}

// ICS03Querier is an interface to the state of ICS-03
type ICS03Querier interface {
	// QueryConnections returns all the connections
	QueryConnections(ctx context.Context) ([]*conntypes.IdentifiedConnection, error)

	// QueryClientConnections returns the IDs of the connections of a client
	QueryClientConnections(ctx context.Context, req QueryClientConnectionsRequest) ([]string, error)

	// QueryConnection returns the remote end of a given connection
	QueryConnection(ctx context.Context, req QueryConnectionRequest, includeProof IncludeProof) (*conntypes.ConnectionEnd, *commitmenttypes.MerkleProof, error)
}

// ICS04Querier is an interface to the state of ICS-04
type ICS04Querier interface {
	// QueryChannels returns all the channels
	QueryChannels(ctx context.Context) ([]*chantypes.IdentifiedChannel, error)

	// QueryConnectionChannels returns the channels of a connection
	QueryConnectionChannels(ctx context.Context, req QueryConnectionChannelsRequest) ([]*chantypes.IdentifiedChannel, error)

	// QueryChannel returns the channel associated with a channelID
	QueryChannel(ctx context.Context, req QueryChannelRequest, includeProof IncludeProof) (*chantypes.Channel, *commitmenttypes.MerkleProof, error)

	// QueryChannelClientState returns the client state of the channel's connection
	QueryChannelClientState(ctx context.Context, req QueryChannelClientStateRequest) (*IdentifiedClientState, error)

	// QueryPacketCommitment returns the packet commitment corresponding to a given sequence
	QueryPacketCommitment(ctx context.Context, req QueryPacketCommitmentRequest, includeProof IncludeProof) ([]byte, *commitmenttypes.MerkleProof, error)

	// QueryPacketCommitments returns the sequences of all packet commitments of a channel
	QueryPacketCommitments(ctx context.Context, req QueryPacketCommitmentsRequest) ([]uint64, clienttypes.Height, error)

	// QueryPacketReceipt returns the packet receipt corresponding to a given sequence
	QueryPacketReceipt(ctx context.Context, req QueryPacketReceiptRequest, includeProof IncludeProof) ([]byte, *commitmenttypes.MerkleProof, error)

	// QueryUnreceivedPackets returns the given sequences that have no receipt
	QueryUnreceivedPackets(ctx context.Context, req QueryUnreceivedPacketsRequest) ([]uint64, error)

	// QueryPacketAcknowledgement returns the acknowledgement corresponding to a given sequence
	QueryPacketAcknowledgement(ctx context.Context, req QueryPacketAcknowledgementRequest, includeProof IncludeProof) ([]byte, *commitmenttypes.MerkleProof, error)

	// QueryPacketAcknowledgements returns the given sequences that have an acknowledgement
	QueryPacketAcknowledgements(ctx context.Context, req QueryPacketAcknowledgementsRequest) ([]uint64, clienttypes.Height, error)

	// QueryUnreceivedAcknowledgements returns the given sequences whose commitment still exists
	QueryUnreceivedAcknowledgements(ctx context.Context, req QueryUnreceivedAcksRequest) ([]uint64, error)

	// QueryNextSequenceReceive returns the next receive sequence of a channel
	QueryNextSequenceReceive(ctx context.Context, req QueryNextSequenceReceiveRequest, includeProof IncludeProof) (uint64, *commitmenttypes.MerkleProof, error)
}

// EventQuerier searches committed IBC events
type EventQuerier interface {
	// QueryTxs returns the events of a transaction or of a client update
	QueryTxs(ctx context.Context, req QueryTxRequest) ([]IBCEventWithHeight, error)

	// QueryPacketEvents returns the packet events of the given sequences
	QueryPacketEvents(ctx context.Context, req QueryPacketEventDataRequest) ([]IBCEventWithHeight, error)
}

// BankQuerier is an interface to the token balances
type BankQuerier interface {
	// QueryBalance returns the balance of a key in a denom.
	// Empty keyName and denom select the relayer key and the fee token.
	QueryBalance(ctx context.Context, keyName, denom string) (*Balance, error)

	// QueryAllBalances returns all the balances of a key
	QueryAllBalances(ctx context.Context, keyName string) ([]Balance, error)

	// QueryDenomTrace returns the denom trace of an IBC token hash
	QueryDenomTrace(ctx context.Context, hash string) (*transfertypes.DenomTrace, error)
}
