package namada

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"
	transfertypes "github.com/cosmos/ibc-go/v8/modules/apps/transfer/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	conntypes "github.com/cosmos/ibc-go/v8/modules/core/03-connection/types"
	chantypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	commitmenttypes "github.com/cosmos/ibc-go/v8/modules/core/23-commitment/types"
	ibcexported "github.com/cosmos/ibc-go/v8/modules/core/exported"
	ibctm "github.com/cosmos/ibc-go/v8/modules/light-clients/07-tendermint"

	"github.com/hyperledger-labs/namada-relayer/core"
)

// scanPrefix calls f for each entry under the prefix except the ID counters.
// The entries for which f returns ErrNotThisPath are skipped.
func (c *Chain) scanPrefix(ctx context.Context, prefix Key, f func(key Key, value []byte) error) error {
	entries, err := c.QueryPrefix(ctx, prefix)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		key, err := ParseKey(entry.Key)
		if err != nil {
			return errorsmod.Wrapf(core.ErrQuery, "invalid key in the prefix %s: %v", prefix, err)
		}
		if err := f(key, entry.Value); errors.Is(err, ErrNotThisPath) {
			continue
		} else if err != nil {
			return err
		}
	}
	return nil
}

// queryValue queries the value at the key and fails if nothing is stored
func (c *Chain) queryValue(ctx context.Context, key Key, height core.QueryHeight, includeProof core.IncludeProof) ([]byte, *commitmenttypes.MerkleProof, error) {
	value, proof, err := c.Query(ctx, key, height, includeProof)
	if err != nil {
		return nil, nil, err
	} else if len(value) == 0 {
		return nil, nil, errorsmod.Wrapf(core.ErrQuery, "no value at %s (height=%s)", key, height)
	}
	return value, proof, nil
}

func (c *Chain) decodeClientState(key Key, value []byte) (ibcexported.ClientState, error) {
	cs, err := clienttypes.UnmarshalClientState(c.codec, value)
	if err != nil {
		return nil, core.NewDecodeError(key.String(), err)
	}
	return cs, nil
}

func (c *Chain) decodeConsensusState(key Key, value []byte) (ibcexported.ConsensusState, error) {
	cs, err := clienttypes.UnmarshalConsensusState(c.codec, value)
	if err != nil {
		return nil, core.NewDecodeError(key.String(), err)
	}
	return cs, nil
}

func (c *Chain) decodeConnection(key Key, value []byte) (*conntypes.ConnectionEnd, error) {
	var conn conntypes.ConnectionEnd
	if err := c.codec.Unmarshal(value, &conn); err != nil {
		return nil, core.NewDecodeError(key.String(), err)
	}
	return &conn, nil
}

func (c *Chain) decodeChannel(key Key, value []byte) (*chantypes.Channel, error) {
	var channel chantypes.Channel
	if err := c.codec.Unmarshal(value, &channel); err != nil {
		return nil, core.NewDecodeError(key.String(), err)
	}
	return &channel, nil
}

// ICS-02

func (c *Chain) QueryClients(ctx context.Context) ([]core.IdentifiedClientState, error) {
	var states []core.IdentifiedClientState
	err := c.scanPrefix(ctx, ClientsPrefix(), func(key Key, value []byte) error {
		clientID, err := ParseClientStateKey(key)
		if err != nil {
			return err
		}
		cs, err := c.decodeClientState(key, value)
		if err != nil {
			return err
		}
		states = append(states, core.IdentifiedClientState{ClientID: clientID, ClientState: cs})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return states, nil
}

func (c *Chain) QueryClientState(ctx context.Context, req core.QueryClientStateRequest, includeProof core.IncludeProof) (ibcexported.ClientState, *commitmenttypes.MerkleProof, error) {
	key := ClientStateKey(req.ClientID)
	value, proof, err := c.queryValue(ctx, key, req.Height, includeProof)
	if err != nil {
		return nil, nil, err
	}
	cs, err := c.decodeClientState(key, value)
	if err != nil {
		return nil, nil, err
	}
	return cs, proof, nil
}

func (c *Chain) QueryConsensusState(ctx context.Context, req core.QueryConsensusStateRequest, includeProof core.IncludeProof) (ibcexported.ConsensusState, *commitmenttypes.MerkleProof, error) {
	key := ConsensusStateKey(req.ClientID, req.ConsensusHeight)
	value, proof, err := c.queryValue(ctx, key, req.QueryHeight, includeProof)
	if err != nil {
		return nil, nil, err
	}
	cs, err := c.decodeConsensusState(key, value)
	if err != nil {
		return nil, nil, err
	}
	return cs, proof, nil
}

// QueryConsensusStateHeights returns the heights in ascending order
func (c *Chain) QueryConsensusStateHeights(ctx context.Context, req core.QueryConsensusStateHeightsRequest) ([]clienttypes.Height, error) {
	var heights []clienttypes.Height
	err := c.scanPrefix(ctx, ClientPrefix(req.ClientID), func(key Key, _ []byte) error {
		clientID, height, err := ParseConsensusStateKey(key)
		if err != nil {
			return err
		} else if clientID != req.ClientID {
			return ErrNotThisPath
		}
		heights = append(heights, height)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(heights, func(a, b clienttypes.Height) int {
		return int(a.Compare(b))
	})
	return heights, nil
}

func (c *Chain) QueryUpgradedClientState(context.Context, core.QueryUpgradedStateRequest) (ibcexported.ClientState, *commitmenttypes.MerkleProof, error) {
	return nil, nil, errorsmod.Wrap(core.ErrNotSupported, "upgraded client state")
}

func (c *Chain) QueryUpgradedConsensusState(context.Context, core.QueryUpgradedStateRequest) (ibcexported.ConsensusState, *commitmenttypes.MerkleProof, error) {
	return nil, nil, errorsmod.Wrap(core.ErrNotSupported, "upgraded consensus state")
}

// QueryHostConsensusState returns the consensus state built from the block header at the height
func (c *Chain) QueryHostConsensusState(ctx context.Context, req core.QueryHostConsensusStateRequest) (ibcexported.ConsensusState, error) {
	var height *int64
	if !req.Height.IsLatest() {
		h := int64(req.Height.Height().GetRevisionHeight())
		height = &h
	}
	res, err := c.client.Header(ctx, height)
	if err != nil {
		return nil, errorsmod.Wrapf(core.ErrRPC, "failed to get the header at %s: %v", req.Height, err)
	}
	return ibctm.NewConsensusState(
		res.Header.Time,
		commitmenttypes.NewMerkleRoot(res.Header.AppHash),
		res.Header.NextValidatorsHash,
	), nil
}

// ICS-03

func (c *Chain) QueryConnections(ctx context.Context) ([]*conntypes.IdentifiedConnection, error) {
	var connections []*conntypes.IdentifiedConnection
	err := c.scanPrefix(ctx, ConnectionsPrefix(), func(key Key, value []byte) error {
		connectionID, err := ParseConnectionKey(key)
		if err != nil {
			return err
		}
		conn, err := c.decodeConnection(key, value)
		if err != nil {
			return err
		}
		identified := conntypes.NewIdentifiedConnection(connectionID, *conn)
		connections = append(connections, &identified)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return connections, nil
}

func (c *Chain) QueryClientConnections(ctx context.Context, req core.QueryClientConnectionsRequest) ([]string, error) {
	connections, err := c.QueryConnections(ctx)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, conn := range connections {
		if conn.ClientId == req.ClientID {
			ids = append(ids, conn.Id)
		}
	}
	return ids, nil
}

func (c *Chain) QueryConnection(ctx context.Context, req core.QueryConnectionRequest, includeProof core.IncludeProof) (*conntypes.ConnectionEnd, *commitmenttypes.MerkleProof, error) {
	key := ConnectionKey(req.ConnectionID)
	value, proof, err := c.queryValue(ctx, key, req.Height, includeProof)
	if err != nil {
		return nil, nil, err
	}
	conn, err := c.decodeConnection(key, value)
	if err != nil {
		return nil, nil, err
	}
	return conn, proof, nil
}

// ICS-04

func (c *Chain) QueryChannels(ctx context.Context) ([]*chantypes.IdentifiedChannel, error) {
	var channels []*chantypes.IdentifiedChannel
	err := c.scanPrefix(ctx, ChannelsPrefix(), func(key Key, value []byte) error {
		portID, channelID, err := ParseChannelKey(key)
		if err != nil {
			return err
		}
		channel, err := c.decodeChannel(key, value)
		if err != nil {
			return err
		}
		identified := chantypes.NewIdentifiedChannel(portID, channelID, *channel)
		channels = append(channels, &identified)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return channels, nil
}

// QueryConnectionChannels returns the channels whose only hop is the connection
func (c *Chain) QueryConnectionChannels(ctx context.Context, req core.QueryConnectionChannelsRequest) ([]*chantypes.IdentifiedChannel, error) {
	channels, err := c.QueryChannels(ctx)
	if err != nil {
		return nil, err
	}
	var ret []*chantypes.IdentifiedChannel
	for _, ch := range channels {
		if slices.Equal(ch.ConnectionHops, []string{req.ConnectionID}) {
			ret = append(ret, ch)
		}
	}
	return ret, nil
}

func (c *Chain) QueryChannel(ctx context.Context, req core.QueryChannelRequest, includeProof core.IncludeProof) (*chantypes.Channel, *commitmenttypes.MerkleProof, error) {
	key := ChannelKey(req.PortID, req.ChannelID)
	value, proof, err := c.queryValue(ctx, key, req.Height, includeProof)
	if err != nil {
		return nil, nil, err
	}
	channel, err := c.decodeChannel(key, value)
	if err != nil {
		return nil, nil, err
	}
	return channel, proof, nil
}

// QueryChannelClientState follows the first connection hop of the channel to its client
func (c *Chain) QueryChannelClientState(ctx context.Context, req core.QueryChannelClientStateRequest) (*core.IdentifiedClientState, error) {
	channel, _, err := c.QueryChannel(ctx, core.QueryChannelRequest{
		PortID:    req.PortID,
		ChannelID: req.ChannelID,
		Height:    core.LatestHeight(),
	}, core.IncludeProofNo)
	if err != nil {
		return nil, err
	}
	if len(channel.ConnectionHops) == 0 {
		return nil, errorsmod.Wrapf(core.ErrQuery, "no connection ID in the channel end %s/%s", req.PortID, req.ChannelID)
	}

	conn, _, err := c.QueryConnection(ctx, core.QueryConnectionRequest{
		ConnectionID: channel.ConnectionHops[0],
		Height:       core.LatestHeight(),
	}, core.IncludeProofNo)
	if err != nil {
		return nil, err
	}

	cs, _, err := c.QueryClientState(ctx, core.QueryClientStateRequest{
		ClientID: conn.ClientId,
		Height:   core.LatestHeight(),
	}, core.IncludeProofNo)
	if err != nil {
		return nil, err
	}
	return &core.IdentifiedClientState{ClientID: conn.ClientId, ClientState: cs}, nil
}

func (c *Chain) QueryPacketCommitment(ctx context.Context, req core.QueryPacketCommitmentRequest, includeProof core.IncludeProof) ([]byte, *commitmenttypes.MerkleProof, error) {
	return c.Query(ctx, PacketCommitmentKey(req.PortID, req.ChannelID, req.Sequence), req.Height, includeProof)
}

// querySequences returns the sequences of the packet keys under the prefix
func (c *Chain) querySequences(ctx context.Context, prefix Key, parse func(Key) (string, string, uint64, error)) ([]uint64, error) {
	var seqs []uint64
	err := c.scanPrefix(ctx, prefix, func(key Key, _ []byte) error {
		_, _, seq, err := parse(key)
		if err != nil {
			return err
		}
		seqs = append(seqs, seq)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return seqs, nil
}

// QueryPacketCommitments returns the sequences with the latest height queried afterwards.
// The height may be newer than the state of the scan.
func (c *Chain) QueryPacketCommitments(ctx context.Context, req core.QueryPacketCommitmentsRequest) ([]uint64, clienttypes.Height, error) {
	seqs, err := c.querySequences(ctx, PacketCommitmentsPrefix(req.PortID, req.ChannelID), ParsePacketCommitmentKey)
	if err != nil {
		return nil, clienttypes.Height{}, err
	}
	status, err := c.QueryApplicationStatus(ctx)
	if err != nil {
		return nil, clienttypes.Height{}, err
	}
	return seqs, status.Height, nil
}

func (c *Chain) QueryPacketReceipt(ctx context.Context, req core.QueryPacketReceiptRequest, includeProof core.IncludeProof) ([]byte, *commitmenttypes.MerkleProof, error) {
	return c.Query(ctx, PacketReceiptKey(req.PortID, req.ChannelID, req.Sequence), req.Height, includeProof)
}

func (c *Chain) QueryUnreceivedPackets(ctx context.Context, req core.QueryUnreceivedPacketsRequest) ([]uint64, error) {
	received, err := c.querySequences(ctx, PacketReceiptsPrefix(req.PortID, req.ChannelID), ParsePacketReceiptKey)
	if err != nil {
		return nil, err
	}
	return core.Sequences(req.PacketCommitmentSequences).Subtract(received), nil
}

func (c *Chain) QueryPacketAcknowledgement(ctx context.Context, req core.QueryPacketAcknowledgementRequest, includeProof core.IncludeProof) ([]byte, *commitmenttypes.MerkleProof, error) {
	return c.Query(ctx, PacketAcknowledgementKey(req.PortID, req.ChannelID, req.Sequence), req.Height, includeProof)
}

func (c *Chain) QueryPacketAcknowledgements(ctx context.Context, req core.QueryPacketAcknowledgementsRequest) ([]uint64, clienttypes.Height, error) {
	acked, err := c.querySequences(ctx, PacketAcknowledgementsPrefix(req.PortID, req.ChannelID), ParsePacketAcknowledgementKey)
	if err != nil {
		return nil, clienttypes.Height{}, err
	}
	status, err := c.QueryApplicationStatus(ctx)
	if err != nil {
		return nil, clienttypes.Height{}, err
	}
	return core.Sequences(acked).Filter(req.PacketCommitmentSequences), status.Height, nil
}

// QueryUnreceivedAcknowledgements returns the given sequences whose commitments still exist
func (c *Chain) QueryUnreceivedAcknowledgements(ctx context.Context, req core.QueryUnreceivedAcksRequest) ([]uint64, error) {
	committed, err := c.querySequences(ctx, PacketCommitmentsPrefix(req.PortID, req.ChannelID), ParsePacketCommitmentKey)
	if err != nil {
		return nil, err
	}
	return core.Sequences(committed).Filter(req.PacketAckSequences), nil
}

func (c *Chain) QueryNextSequenceReceive(ctx context.Context, req core.QueryNextSequenceReceiveRequest, includeProof core.IncludeProof) (uint64, *commitmenttypes.MerkleProof, error) {
	key := NextSequenceRecvKey(req.PortID, req.ChannelID)
	value, proof, err := c.Query(ctx, key, req.Height, includeProof)
	if err != nil {
		return 0, nil, err
	}
	seq, err := decodeSequence(key.String(), value)
	if err != nil {
		return 0, nil, err
	}
	return seq, proof, nil
}

// Events

// QueryTxs returns the events of the applied tx with the hash, or the client update
// which set the consensus state at the height
func (c *Chain) QueryTxs(ctx context.Context, req core.QueryTxRequest) ([]core.IBCEventWithHeight, error) {
	switch req := req.(type) {
	case core.QueryTxHash:
		return c.QueryEvents(ctx, appliedTxQuery(req))
	case *core.QueryClientEventRequest:
		return c.queryClientUpdate(ctx, req)
	default:
		return nil, errorsmod.Wrapf(core.ErrNotSupported, "unexpected tx request: %T", req)
	}
}

func (c *Chain) queryClientUpdate(ctx context.Context, req *core.QueryClientEventRequest) ([]core.IBCEventWithHeight, error) {
	eventType := req.EventType
	if eventType == "" {
		eventType = clienttypes.EventTypeUpdateClient
	}
	query := fmt.Sprintf("%s.%s='%s' AND %s.%s='%s'",
		eventType, clienttypes.AttributeKeyClientID, req.ClientID,
		eventType, clienttypes.AttributeKeyConsensusHeight, req.ConsensusHeight,
	)

	page, perPage := 1, 1
	c.countQuery(ctx, "tx_search")
	res, err := c.client.TxSearch(ctx, query, false, &page, &perPage, "asc")
	if err != nil {
		return nil, errorsmod.Wrapf(core.ErrRPC, "failed to search txs: %v", err)
	}
	if len(res.Txs) == 0 {
		return nil, nil
	}

	tx := res.Txs[0]
	height := c.height(tx.Height)
	if !req.QueryHeight.IsLatest() && height.GT(req.QueryHeight.Height()) {
		return nil, nil
	}
	for _, ev := range tx.TxResult.Events {
		if ev.Type != eventType {
			continue
		}
		converted, ok := ConvertEvent(ev, height)
		if !ok {
			continue
		}
		update, ok := converted.Event.(*core.EventUpdateClient)
		if !ok || update.ClientID != req.ClientID {
			continue
		}
		for _, h := range update.ConsensusHeights {
			if h.EQ(req.ConsensusHeight) {
				return []core.IBCEventWithHeight{converted}, nil
			}
		}
	}
	return nil, nil
}

// QueryPacketEvents returns the packet events of the sequences committed at or below the query height
func (c *Chain) QueryPacketEvents(ctx context.Context, req core.QueryPacketEventDataRequest) ([]core.IBCEventWithHeight, error) {
	var events []core.IBCEventWithHeight
	for _, seq := range req.Sequences {
		page, perPage := 1, 1
		c.countQuery(ctx, "block_search")
		blocks, err := c.client.BlockSearch(ctx, packetQuery(req, seq), &page, &perPage, "asc")
		if err != nil {
			return nil, errorsmod.Wrapf(core.ErrRPC, "failed to search blocks: %v", err)
		}
		if len(blocks.Blocks) == 0 {
			continue
		}

		blockHeight := blocks.Blocks[0].Block.Height
		height := c.height(blockHeight)
		if !req.Height.IsLatest() && height.GT(req.Height.Height()) {
			continue
		}
		results, err := c.client.BlockResults(ctx, &blockHeight)
		if err != nil {
			return nil, errorsmod.Wrapf(core.ErrRPC, "failed to get the block results at %d: %v", blockHeight, err)
		}
		events = append(events, matchPacketEvents(results.FinalizeBlockEvents, height, req, seq)...)
	}
	return events, nil
}

func appliedTxQuery(hash core.QueryTxHash) string {
	return fmt.Sprintf("applied.hash='%s'", hash)
}

func packetQuery(req core.QueryPacketEventDataRequest, seq uint64) string {
	return strings.Join([]string{
		fmt.Sprintf("%s.%s='%s'", req.EventType, chantypes.AttributeKeySrcChannel, req.SourceChannelID),
		fmt.Sprintf("%s.%s='%s'", req.EventType, chantypes.AttributeKeySrcPort, req.SourcePortID),
		fmt.Sprintf("%s.%s='%s'", req.EventType, chantypes.AttributeKeyDstChannel, req.DestinationChannelID),
		fmt.Sprintf("%s.%s='%s'", req.EventType, chantypes.AttributeKeyDstPort, req.DestinationPortID),
		fmt.Sprintf("%s.%s='%d'", req.EventType, chantypes.AttributeKeySequence, seq),
	}, " AND ")
}

func matchPacketEvents(events []abci.Event, height clienttypes.Height, req core.QueryPacketEventDataRequest, seq uint64) []core.IBCEventWithHeight {
	var ret []core.IBCEventWithHeight
	for _, ev := range events {
		if ev.Type != req.EventType {
			continue
		}
		converted, ok := ConvertEvent(ev, height)
		if !ok {
			continue
		}
		attrs, ok := packetAttributes(converted.Event)
		if !ok {
			continue
		}
		if attrs.Sequence == seq &&
			attrs.SrcPort == req.SourcePortID && attrs.SrcChannel == req.SourceChannelID &&
			attrs.DstPort == req.DestinationPortID && attrs.DstChannel == req.DestinationChannelID {
			ret = append(ret, converted)
		}
	}
	return ret
}

func packetAttributes(ev core.IBCEvent) (core.PacketAttributes, bool) {
	switch ev := ev.(type) {
	case *core.EventSendPacket:
		return ev.PacketAttributes, true
	case *core.EventRecvPacket:
		return ev.PacketAttributes, true
	case *core.EventWriteAcknowledgement:
		return ev.PacketAttributes, true
	case *core.EventAcknowledgePacket:
		return ev.PacketAttributes, true
	case *core.EventTimeoutPacket:
		return ev.PacketAttributes, true
	default:
		return core.PacketAttributes{}, false
	}
}

// Bank

// QueryBalance returns the balance of the key in the denom. A denom with a trace path
// like "transfer/channel-0/uatom" is an IBC token, otherwise it is a token alias or address.
func (c *Chain) QueryBalance(ctx context.Context, keyName, denom string) (*core.Balance, error) {
	if keyName == "" {
		keyName = c.config.KeyName
	}
	if denom == "" {
		denom = c.config.GetFeeToken()
	}
	owner, ok := c.wallet.FindAddress(keyName)
	if !ok {
		return nil, errorsmod.Wrapf(ErrAddressNotFound, "key: %s", keyName)
	}

	var key Key
	if strings.Contains(denom, "/") {
		prefix, err := IBCTokenPrefix(denom)
		if err != nil {
			return nil, errorsmod.Wrapf(ErrInvalidDenom, "%v", err)
		}
		key = MultitokenBalanceKey(prefix, owner)
	} else {
		token, err := c.tokenAddress(denom)
		if err != nil {
			return nil, err
		}
		key = BalanceKey(token, owner)
	}

	value, _, err := c.Query(ctx, key, core.LatestHeight(), core.IncludeProofNo)
	if err != nil {
		return nil, err
	}
	// nothing is stored for a zero balance
	var amount Amount
	if len(value) != 0 {
		if amount, err = DecodeAmount(value); err != nil {
			return nil, core.NewDecodeError(key.String(), err)
		}
	}
	return &core.Balance{Amount: amount.String(), Denom: denom}, nil
}

// QueryAllBalances returns the balances of the key in the tokens known by the wallet
func (c *Chain) QueryAllBalances(ctx context.Context, keyName string) ([]core.Balance, error) {
	if keyName == "" {
		keyName = c.config.KeyName
	}
	owner, ok := c.wallet.FindAddress(keyName)
	if !ok {
		return nil, errorsmod.Wrapf(ErrAddressNotFound, "key: %s", keyName)
	}

	var balances []core.Balance
	for _, token := range c.wallet.AddressesWithVPType(VPTypeToken) {
		err := c.scanPrefix(ctx, TokenPrefix(token), func(key Key, value []byte) error {
			denom, ok := balanceDenom(key, token, owner)
			if !ok {
				return ErrNotThisPath
			}
			amount, err := DecodeAmount(value)
			if err != nil {
				return core.NewDecodeError(key.String(), err)
			}
			balances = append(balances, core.Balance{Amount: amount.String(), Denom: denom})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return balances, nil
}

// balanceDenom returns the denom of a balance key of the owner
func balanceDenom(key Key, token, owner string) (string, bool) {
	if t, o, err := ParseBalanceKey(key); err == nil {
		return t, t == token && o == owner
	}
	if t, sub, o, err := ParseMultitokenBalanceKey(key); err == nil {
		return fmt.Sprintf("%s/%s", sub, t), t == token && o == owner
	}
	return "", false
}

// QueryDenomTrace returns the trace of an IBC token hash, with or without the "ibc/" prefix
func (c *Chain) QueryDenomTrace(ctx context.Context, hash string) (*transfertypes.DenomTrace, error) {
	hash = strings.TrimPrefix(hash, transfertypes.DenomPrefix+"/")
	if _, err := transfertypes.ParseHexHash(hash); err != nil {
		return nil, errorsmod.Wrapf(ErrInvalidDenom, "invalid hash %s: %v", hash, err)
	}

	key := DenomKey(hash)
	value, _, err := c.Query(ctx, key, core.LatestHeight(), core.IncludeProofNo)
	if err != nil {
		return nil, err
	} else if len(value) == 0 {
		return nil, errorsmod.Wrapf(ErrDenomNotFound, "hash: %s", hash)
	}

	denom := string(value)
	i := strings.LastIndex(denom, "/")
	if i < 0 {
		return nil, errorsmod.Wrapf(ErrInvalidDenom, "the denom is not prefixed: %s", denom)
	}
	return &transfertypes.DenomTrace{Path: denom[:i], BaseDenom: denom[i+1:]}, nil
}

// tokenAddress resolves a token alias of the wallet, or accepts an address
func (c *Chain) tokenAddress(denom string) (string, error) {
	if addr, ok := c.wallet.FindAddress(denom); ok {
		return addr, nil
	}
	if err := ValidateAddress(denom); err != nil {
		return "", errorsmod.Wrapf(ErrAddressNotFound, "token: %s", denom)
	}
	return denom, nil
}
