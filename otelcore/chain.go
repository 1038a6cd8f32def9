package otelcore

import (
	"context"
	"fmt"

	cmttypes "github.com/cometbft/cometbft/types"
	transfertypes "github.com/cosmos/ibc-go/v8/modules/apps/transfer/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	conntypes "github.com/cosmos/ibc-go/v8/modules/core/03-connection/types"
	chantypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	commitmenttypes "github.com/cosmos/ibc-go/v8/modules/core/23-commitment/types"
	ibcexported "github.com/cosmos/ibc-go/v8/modules/core/exported"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hyperledger-labs/namada-relayer/core"
)

// Chain records a span for every call to the wrapped endpoint
type Chain struct {
	core.ChainEndpoint
	tracer trace.Tracer
}

var _ core.ChainEndpoint = (*Chain)(nil)

func NewChain(chain core.ChainEndpoint, tracer trace.Tracer) core.ChainEndpoint {
	return &Chain{
		ChainEndpoint: chain,
		tracer:        tracer,
	}
}

func UnwrapChain(chain core.ChainEndpoint) (core.ChainEndpoint, error) {
	c, ok := chain.(*Chain)
	if !ok {
		return nil, fmt.Errorf("chain type is not %T, but %T", &Chain{}, chain)
	}
	return c.ChainEndpoint, nil
}

func (c *Chain) start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	opts = append(opts, core.WithChainAttributes(c.ChainID()), core.WithPackage(c.ChainEndpoint))
	return c.tracer.Start(ctx, name, opts...)
}

func (c *Chain) startQuery(ctx context.Context, name string, height core.QueryHeight, includeProof core.IncludeProof, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	opts = append(opts, core.WithChainAttributes(c.ChainID()), core.WithPackage(c.ChainEndpoint))
	return core.StartQueryTrace(ctx, c.tracer, name, height, includeProof, opts...)
}

func setError(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
}

func (c *Chain) HealthCheck(ctx context.Context) (core.HealthStatus, error) {
	ctx, span := c.start(ctx, "Chain.HealthCheck")
	defer span.End()

	status, err := c.ChainEndpoint.HealthCheck(ctx)
	setError(span, err)
	return status, err
}

func (c *Chain) Subscribe(ctx context.Context) (*core.Subscription, error) {
	ctx, span := c.start(ctx, "Chain.Subscribe")
	defer span.End()

	sub, err := c.ChainEndpoint.Subscribe(ctx)
	setError(span, err)
	return sub, err
}

func (c *Chain) QueryApplicationStatus(ctx context.Context) (*core.ChainStatus, error) {
	ctx, span := c.start(ctx, "Chain.QueryApplicationStatus")
	defer span.End()

	status, err := c.ChainEndpoint.QueryApplicationStatus(ctx)
	setError(span, err)
	return status, err
}

func (c *Chain) SendMessagesAndWaitCommit(ctx context.Context, msgs core.TrackedMsgs) ([]core.IBCEventWithHeight, error) {
	ctx, span := c.start(ctx, "Chain.SendMessagesAndWaitCommit", trace.WithAttributes(
		core.AttributeKeyTrackingID.String(msgs.TrackingID),
		core.AttributeKeyMessageCount.Int(len(msgs.Msgs)),
	))
	defer span.End()

	events, err := c.ChainEndpoint.SendMessagesAndWaitCommit(ctx, msgs)
	setError(span, err)
	return events, err
}

func (c *Chain) SendMessagesAndWaitCheckTx(ctx context.Context, msgs core.TrackedMsgs) ([]core.TxResponse, error) {
	ctx, span := c.start(ctx, "Chain.SendMessagesAndWaitCheckTx", trace.WithAttributes(
		core.AttributeKeyTrackingID.String(msgs.TrackingID),
		core.AttributeKeyMessageCount.Int(len(msgs.Msgs)),
	))
	defer span.End()

	responses, err := c.ChainEndpoint.SendMessagesAndWaitCheckTx(ctx, msgs)
	setError(span, err)
	return responses, err
}

func (c *Chain) BuildClientState(ctx context.Context, height clienttypes.Height, settings core.ClientSettings) (ibcexported.ClientState, error) {
	ctx, span := c.start(ctx, "Chain.BuildClientState")
	defer span.End()

	cs, err := c.ChainEndpoint.BuildClientState(ctx, height, settings)
	setError(span, err)
	return cs, err
}

func (c *Chain) BuildHeader(ctx context.Context, trustedHeight, targetHeight clienttypes.Height, clientState ibcexported.ClientState) (ibcexported.ClientMessage, []ibcexported.ClientMessage, error) {
	ctx, span := c.start(ctx, "Chain.BuildHeader", trace.WithAttributes(
		core.AttributeKeyRevisionHeight.String(fmt.Sprint(targetHeight.RevisionHeight)),
	))
	defer span.End()

	header, supporting, err := c.ChainEndpoint.BuildHeader(ctx, trustedHeight, targetHeight, clientState)
	setError(span, err)
	return header, supporting, err
}

func (c *Chain) VerifyHeader(ctx context.Context, trustedHeight, targetHeight clienttypes.Height, clientState ibcexported.ClientState) (*cmttypes.LightBlock, error) {
	ctx, span := c.start(ctx, "Chain.VerifyHeader", trace.WithAttributes(
		core.AttributeKeyRevisionHeight.String(fmt.Sprint(targetHeight.RevisionHeight)),
	))
	defer span.End()

	lb, err := c.ChainEndpoint.VerifyHeader(ctx, trustedHeight, targetHeight, clientState)
	setError(span, err)
	return lb, err
}

func (c *Chain) CheckMisbehaviour(ctx context.Context, update *core.EventUpdateClient, clientState ibcexported.ClientState) (*core.MisbehaviourEvidence, error) {
	ctx, span := c.start(ctx, "Chain.CheckMisbehaviour", trace.WithAttributes(
		core.AttributeKeyClientID.String(update.ClientID),
	))
	defer span.End()

	evidence, err := c.ChainEndpoint.CheckMisbehaviour(ctx, update, clientState)
	setError(span, err)
	return evidence, err
}

func (c *Chain) QueryClients(ctx context.Context) ([]core.IdentifiedClientState, error) {
	ctx, span := c.start(ctx, "Chain.QueryClients")
	defer span.End()

	clients, err := c.ChainEndpoint.QueryClients(ctx)
	setError(span, err)
	return clients, err
}

func (c *Chain) QueryClientState(ctx context.Context, req core.QueryClientStateRequest, includeProof core.IncludeProof) (ibcexported.ClientState, *commitmenttypes.MerkleProof, error) {
	ctx, span := c.startQuery(ctx, "Chain.QueryClientState", req.Height, includeProof, trace.WithAttributes(
		core.AttributeKeyClientID.String(req.ClientID),
	))
	defer span.End()

	cs, proof, err := c.ChainEndpoint.QueryClientState(ctx, req, includeProof)
	setError(span, err)
	return cs, proof, err
}

func (c *Chain) QueryConsensusState(ctx context.Context, req core.QueryConsensusStateRequest, includeProof core.IncludeProof) (ibcexported.ConsensusState, *commitmenttypes.MerkleProof, error) {
	ctx, span := c.startQuery(ctx, "Chain.QueryConsensusState", req.QueryHeight, includeProof, trace.WithAttributes(
		core.AttributeKeyClientID.String(req.ClientID),
	))
	defer span.End()

	cs, proof, err := c.ChainEndpoint.QueryConsensusState(ctx, req, includeProof)
	setError(span, err)
	return cs, proof, err
}

func (c *Chain) QueryConsensusStateHeights(ctx context.Context, req core.QueryConsensusStateHeightsRequest) ([]clienttypes.Height, error) {
	ctx, span := c.start(ctx, "Chain.QueryConsensusStateHeights", trace.WithAttributes(
		core.AttributeKeyClientID.String(req.ClientID),
	))
	defer span.End()

	heights, err := c.ChainEndpoint.QueryConsensusStateHeights(ctx, req)
	setError(span, err)
	return heights, err
}

func (c *Chain) QueryUpgradedClientState(ctx context.Context, req core.QueryUpgradedStateRequest) (ibcexported.ClientState, *commitmenttypes.MerkleProof, error) {
	ctx, span := c.start(ctx, "Chain.QueryUpgradedClientState")
	defer span.End()

	cs, proof, err := c.ChainEndpoint.QueryUpgradedClientState(ctx, req)
	setError(span, err)
	return cs, proof, err
}

func (c *Chain) QueryUpgradedConsensusState(ctx context.Context, req core.QueryUpgradedStateRequest) (ibcexported.ConsensusState, *commitmenttypes.MerkleProof, error) {
	ctx, span := c.start(ctx, "Chain.QueryUpgradedConsensusState")
	defer span.End()

	cs, proof, err := c.ChainEndpoint.QueryUpgradedConsensusState(ctx, req)
	setError(span, err)
	return cs, proof, err
}

func (c *Chain) QueryHostConsensusState(ctx context.Context, req core.QueryHostConsensusStateRequest) (ibcexported.ConsensusState, error) {
	ctx, span := c.startQuery(ctx, "Chain.QueryHostConsensusState", req.Height, core.IncludeProofNo)
	defer span.End()

	cs, err := c.ChainEndpoint.QueryHostConsensusState(ctx, req)
	setError(span, err)
	return cs, err
}

func (c *Chain) QueryConnections(ctx context.Context) ([]*conntypes.IdentifiedConnection, error) {
	ctx, span := c.start(ctx, "Chain.QueryConnections")
	defer span.End()

	conns, err := c.ChainEndpoint.QueryConnections(ctx)
	setError(span, err)
	return conns, err
}

func (c *Chain) QueryClientConnections(ctx context.Context, req core.QueryClientConnectionsRequest) ([]string, error) {
	ctx, span := c.start(ctx, "Chain.QueryClientConnections", trace.WithAttributes(
		core.AttributeKeyClientID.String(req.ClientID),
	))
	defer span.End()

	ids, err := c.ChainEndpoint.QueryClientConnections(ctx, req)
	setError(span, err)
	return ids, err
}

func (c *Chain) QueryConnection(ctx context.Context, req core.QueryConnectionRequest, includeProof core.IncludeProof) (*conntypes.ConnectionEnd, *commitmenttypes.MerkleProof, error) {
	ctx, span := c.startQuery(ctx, "Chain.QueryConnection", req.Height, includeProof, trace.WithAttributes(
		core.AttributeKeyConnectionID.String(req.ConnectionID),
	))
	defer span.End()

	conn, proof, err := c.ChainEndpoint.QueryConnection(ctx, req, includeProof)
	setError(span, err)
	return conn, proof, err
}

func (c *Chain) QueryChannels(ctx context.Context) ([]*chantypes.IdentifiedChannel, error) {
	ctx, span := c.start(ctx, "Chain.QueryChannels")
	defer span.End()

	chans, err := c.ChainEndpoint.QueryChannels(ctx)
	setError(span, err)
	return chans, err
}

func (c *Chain) QueryConnectionChannels(ctx context.Context, req core.QueryConnectionChannelsRequest) ([]*chantypes.IdentifiedChannel, error) {
	ctx, span := c.start(ctx, "Chain.QueryConnectionChannels", trace.WithAttributes(
		core.AttributeKeyConnectionID.String(req.ConnectionID),
	))
	defer span.End()

	chans, err := c.ChainEndpoint.QueryConnectionChannels(ctx, req)
	setError(span, err)
	return chans, err
}

func (c *Chain) QueryChannel(ctx context.Context, req core.QueryChannelRequest, includeProof core.IncludeProof) (*chantypes.Channel, *commitmenttypes.MerkleProof, error) {
	ctx, span := c.startQuery(ctx, "Chain.QueryChannel", req.Height, includeProof, withChannel(req.PortID, req.ChannelID))
	defer span.End()

	ch, proof, err := c.ChainEndpoint.QueryChannel(ctx, req, includeProof)
	setError(span, err)
	return ch, proof, err
}

func (c *Chain) QueryChannelClientState(ctx context.Context, req core.QueryChannelClientStateRequest) (*core.IdentifiedClientState, error) {
	ctx, span := c.start(ctx, "Chain.QueryChannelClientState", withChannel(req.PortID, req.ChannelID))
	defer span.End()

	cs, err := c.ChainEndpoint.QueryChannelClientState(ctx, req)
	setError(span, err)
	return cs, err
}

func (c *Chain) QueryPacketCommitment(ctx context.Context, req core.QueryPacketCommitmentRequest, includeProof core.IncludeProof) ([]byte, *commitmenttypes.MerkleProof, error) {
	ctx, span := c.startQuery(ctx, "Chain.QueryPacketCommitment", req.Height, includeProof,
		withChannel(req.PortID, req.ChannelID), withSequence(req.Sequence))
	defer span.End()

	commitment, proof, err := c.ChainEndpoint.QueryPacketCommitment(ctx, req, includeProof)
	setError(span, err)
	return commitment, proof, err
}

func (c *Chain) QueryPacketCommitments(ctx context.Context, req core.QueryPacketCommitmentsRequest) ([]uint64, clienttypes.Height, error) {
	ctx, span := c.start(ctx, "Chain.QueryPacketCommitments", withChannel(req.PortID, req.ChannelID))
	defer span.End()

	seqs, height, err := c.ChainEndpoint.QueryPacketCommitments(ctx, req)
	setError(span, err)
	return seqs, height, err
}

func (c *Chain) QueryPacketReceipt(ctx context.Context, req core.QueryPacketReceiptRequest, includeProof core.IncludeProof) ([]byte, *commitmenttypes.MerkleProof, error) {
	ctx, span := c.startQuery(ctx, "Chain.QueryPacketReceipt", req.Height, includeProof,
		withChannel(req.PortID, req.ChannelID), withSequence(req.Sequence))
	defer span.End()

	receipt, proof, err := c.ChainEndpoint.QueryPacketReceipt(ctx, req, includeProof)
	setError(span, err)
	return receipt, proof, err
}

func (c *Chain) QueryUnreceivedPackets(ctx context.Context, req core.QueryUnreceivedPacketsRequest) ([]uint64, error) {
	ctx, span := c.start(ctx, "Chain.QueryUnreceivedPackets", withChannel(req.PortID, req.ChannelID))
	defer span.End()

	seqs, err := c.ChainEndpoint.QueryUnreceivedPackets(ctx, req)
	setError(span, err)
	return seqs, err
}

func (c *Chain) QueryPacketAcknowledgement(ctx context.Context, req core.QueryPacketAcknowledgementRequest, includeProof core.IncludeProof) ([]byte, *commitmenttypes.MerkleProof, error) {
	ctx, span := c.startQuery(ctx, "Chain.QueryPacketAcknowledgement", req.Height, includeProof,
		withChannel(req.PortID, req.ChannelID), withSequence(req.Sequence))
	defer span.End()

	ack, proof, err := c.ChainEndpoint.QueryPacketAcknowledgement(ctx, req, includeProof)
	setError(span, err)
	return ack, proof, err
}

func (c *Chain) QueryPacketAcknowledgements(ctx context.Context, req core.QueryPacketAcknowledgementsRequest) ([]uint64, clienttypes.Height, error) {
	ctx, span := c.start(ctx, "Chain.QueryPacketAcknowledgements", withChannel(req.PortID, req.ChannelID))
	defer span.End()

	seqs, height, err := c.ChainEndpoint.QueryPacketAcknowledgements(ctx, req)
	setError(span, err)
	return seqs, height, err
}

func (c *Chain) QueryUnreceivedAcknowledgements(ctx context.Context, req core.QueryUnreceivedAcksRequest) ([]uint64, error) {
	ctx, span := c.start(ctx, "Chain.QueryUnreceivedAcknowledgements", withChannel(req.PortID, req.ChannelID))
	defer span.End()

	seqs, err := c.ChainEndpoint.QueryUnreceivedAcknowledgements(ctx, req)
	setError(span, err)
	return seqs, err
}

func (c *Chain) QueryNextSequenceReceive(ctx context.Context, req core.QueryNextSequenceReceiveRequest, includeProof core.IncludeProof) (uint64, *commitmenttypes.MerkleProof, error) {
	ctx, span := c.startQuery(ctx, "Chain.QueryNextSequenceReceive", req.Height, includeProof, withChannel(req.PortID, req.ChannelID))
	defer span.End()

	seq, proof, err := c.ChainEndpoint.QueryNextSequenceReceive(ctx, req, includeProof)
	setError(span, err)
	return seq, proof, err
}

func (c *Chain) QueryTxs(ctx context.Context, req core.QueryTxRequest) ([]core.IBCEventWithHeight, error) {
	var opts []trace.SpanStartOption
	switch req := req.(type) {
	case core.QueryTxHash:
		opts = append(opts, trace.WithAttributes(core.AttributeKeyTxHash.String(req.String())))
	case *core.QueryClientEventRequest:
		opts = append(opts, trace.WithAttributes(core.AttributeKeyClientID.String(req.ClientID)))
	}
	ctx, span := c.start(ctx, "Chain.QueryTxs", opts...)
	defer span.End()

	events, err := c.ChainEndpoint.QueryTxs(ctx, req)
	setError(span, err)
	return events, err
}

func (c *Chain) QueryPacketEvents(ctx context.Context, req core.QueryPacketEventDataRequest) ([]core.IBCEventWithHeight, error) {
	ctx, span := c.startQuery(ctx, "Chain.QueryPacketEvents", req.Height, core.IncludeProofNo,
		withChannel(req.SourcePortID, req.SourceChannelID))
	defer span.End()

	events, err := c.ChainEndpoint.QueryPacketEvents(ctx, req)
	setError(span, err)
	return events, err
}

func (c *Chain) QueryBalance(ctx context.Context, keyName, denom string) (*core.Balance, error) {
	ctx, span := c.start(ctx, "Chain.QueryBalance")
	defer span.End()

	balance, err := c.ChainEndpoint.QueryBalance(ctx, keyName, denom)
	setError(span, err)
	return balance, err
}

func (c *Chain) QueryAllBalances(ctx context.Context, keyName string) ([]core.Balance, error) {
	ctx, span := c.start(ctx, "Chain.QueryAllBalances")
	defer span.End()

	balances, err := c.ChainEndpoint.QueryAllBalances(ctx, keyName)
	setError(span, err)
	return balances, err
}

func (c *Chain) QueryDenomTrace(ctx context.Context, hash string) (*transfertypes.DenomTrace, error) {
	ctx, span := c.start(ctx, "Chain.QueryDenomTrace")
	defer span.End()

	denomTrace, err := c.ChainEndpoint.QueryDenomTrace(ctx, hash)
	setError(span, err)
	return denomTrace, err
}

func withChannel(portID, channelID string) trace.SpanStartOption {
	return trace.WithAttributes(
		core.AttributeKeyPortID.String(portID),
		core.AttributeKeyChannelID.String(channelID),
	)
}

func withSequence(seq uint64) trace.SpanStartOption {
	return trace.WithAttributes(core.AttributeKeySequence.String(fmt.Sprint(seq)))
}
