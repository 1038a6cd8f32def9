package namada

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	abci "github.com/cometbft/cometbft/abci/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	conntypes "github.com/cosmos/ibc-go/v8/modules/core/03-connection/types"
	chantypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"

	"github.com/hyperledger-labs/namada-relayer/core"
)

const (
	eventTypeAppModule = "app_module"
	eventTypeMessage   = "message"

	attributeKeyCode  = "code"
	successCodeValue  = "0"
	chainErrorMessage = "The transaction was invalid: event %v error %v"
)

// events which are dropped when they cannot be parsed
var skippedEventTypes = map[string]struct{}{
	eventTypeAppModule:            {},
	chantypes.EventTypeRecvPacket: {},
	eventTypeMessage:              {},
}

// ConvertEvents converts the events of a block at the height into IBC events
func ConvertEvents(events []abci.Event, height clienttypes.Height) []core.IBCEventWithHeight {
	var ibcEvents []core.IBCEventWithHeight
	for _, ev := range events {
		if ibcEvent, ok := ConvertEvent(ev, height); ok {
			ibcEvents = append(ibcEvents, ibcEvent)
		}
	}
	return ibcEvents
}

// FilterIBCEvents keeps only the events which decode as IBC events
func FilterIBCEvents(events []abci.Event, height clienttypes.Height) []core.IBCEventWithHeight {
	var ibcEvents []core.IBCEventWithHeight
	for _, ev := range events {
		if ibcEvent, err := parseIBCEvent(ev); err == nil {
			ibcEvents = append(ibcEvents, core.NewIBCEventWithHeight(ibcEvent, height))
		}
	}
	return ibcEvents
}

// ConvertEvent converts an event into an IBC event. It returns false if the event is dropped.
// An event which is neither an IBC event nor known to be harmless becomes an EventChainError.
func ConvertEvent(ev abci.Event, height clienttypes.Height) (core.IBCEventWithHeight, bool) {
	ibcEvent, err := parseIBCEvent(ev)
	if err == nil {
		return core.NewIBCEventWithHeight(ibcEvent, height), true
	}

	if _, ok := skippedEventTypes[ev.Type]; ok {
		return core.IBCEventWithHeight{}, false
	}
	if hasSuccessCode(ev) {
		return core.IBCEventWithHeight{}, false
	}

	GetChainLogger().Debug("unparsable event is converted to a chain error", "event_type", ev.Type, "height", height, "error", err)
	return core.NewIBCEventWithHeight(&core.EventChainError{
		Reason: fmt.Sprintf(chainErrorMessage, ev, err),
	}, height), true
}

func hasSuccessCode(ev abci.Event) bool {
	for _, attr := range ev.Attributes {
		if attr.Key == attributeKeyCode && attr.Value == successCodeValue {
			return true
		}
	}
	return false
}

func parseIBCEvent(ev abci.Event) (core.IBCEvent, error) {
	switch ev.Type {
	case clienttypes.EventTypeCreateClient:
		var event core.EventCreateClient
		var err0, err1, err2 error
		event.ClientID, err0 = getAttributeString(ev, clienttypes.AttributeKeyClientID)
		event.ClientType, err1 = getAttributeString(ev, clienttypes.AttributeKeyClientType)
		event.ConsensusHeight, err2 = getAttributeHeight(ev, clienttypes.AttributeKeyConsensusHeight)
		if err := errors.Join(err0, err1, err2); err != nil {
			return nil, err
		}
		return &event, nil
	case clienttypes.EventTypeUpdateClient:
		var event core.EventUpdateClient
		var err0, err1, err2 error
		event.ClientID, err0 = getAttributeString(ev, clienttypes.AttributeKeyClientID)
		event.ClientType, err1 = getAttributeString(ev, clienttypes.AttributeKeyClientType)
		event.ConsensusHeights, err2 = getConsensusHeights(ev)
		if err := errors.Join(err0, err1, err2); err != nil {
			return nil, err
		}
		// the header is omitted by some chains
		if header, err := getAttributeBytes(ev, clienttypes.AttributeKeyHeader); err == nil {
			event.Header = header
		}
		return &event, nil
	case conntypes.EventTypeConnectionOpenInit:
		attrs, err := getConnectionAttributes(ev, false)
		if err != nil {
			return nil, err
		}
		return &core.EventConnectionOpenInit{ConnectionAttributes: attrs}, nil
	case conntypes.EventTypeConnectionOpenTry:
		attrs, err := getConnectionAttributes(ev, true)
		if err != nil {
			return nil, err
		}
		return &core.EventConnectionOpenTry{ConnectionAttributes: attrs}, nil
	case conntypes.EventTypeConnectionOpenAck:
		attrs, err := getConnectionAttributes(ev, true)
		if err != nil {
			return nil, err
		}
		return &core.EventConnectionOpenAck{ConnectionAttributes: attrs}, nil
	case conntypes.EventTypeConnectionOpenConfirm:
		attrs, err := getConnectionAttributes(ev, true)
		if err != nil {
			return nil, err
		}
		return &core.EventConnectionOpenConfirm{ConnectionAttributes: attrs}, nil
	case chantypes.EventTypeChannelOpenInit:
		attrs, err := getChannelAttributes(ev, false)
		if err != nil {
			return nil, err
		}
		return &core.EventChannelOpenInit{ChannelAttributes: attrs}, nil
	case chantypes.EventTypeChannelOpenTry:
		attrs, err := getChannelAttributes(ev, true)
		if err != nil {
			return nil, err
		}
		return &core.EventChannelOpenTry{ChannelAttributes: attrs}, nil
	case chantypes.EventTypeChannelOpenAck:
		attrs, err := getChannelAttributes(ev, true)
		if err != nil {
			return nil, err
		}
		return &core.EventChannelOpenAck{ChannelAttributes: attrs}, nil
	case chantypes.EventTypeChannelOpenConfirm:
		attrs, err := getChannelAttributes(ev, true)
		if err != nil {
			return nil, err
		}
		return &core.EventChannelOpenConfirm{ChannelAttributes: attrs}, nil
	case chantypes.EventTypeChannelCloseInit:
		attrs, err := getChannelAttributes(ev, true)
		if err != nil {
			return nil, err
		}
		return &core.EventChannelCloseInit{ChannelAttributes: attrs}, nil
	case chantypes.EventTypeChannelCloseConfirm:
		attrs, err := getChannelAttributes(ev, true)
		if err != nil {
			return nil, err
		}
		return &core.EventChannelCloseConfirm{ChannelAttributes: attrs}, nil
	case chantypes.EventTypeSendPacket:
		attrs, err := getPacketAttributes(ev, true)
		if err != nil {
			return nil, err
		}
		return &core.EventSendPacket{PacketAttributes: attrs}, nil
	case chantypes.EventTypeRecvPacket:
		attrs, err := getPacketAttributes(ev, true)
		if err != nil {
			return nil, err
		}
		return &core.EventRecvPacket{PacketAttributes: attrs}, nil
	case chantypes.EventTypeWriteAck:
		attrs, err0 := getPacketAttributes(ev, true)
		ack, err1 := getAttributeBytes(ev, chantypes.AttributeKeyAckHex)
		if err := errors.Join(err0, err1); err != nil {
			return nil, err
		}
		return &core.EventWriteAcknowledgement{PacketAttributes: attrs, Acknowledgement: ack}, nil
	case chantypes.EventTypeAcknowledgePacket:
		attrs, err := getPacketAttributes(ev, false)
		if err != nil {
			return nil, err
		}
		return &core.EventAcknowledgePacket{PacketAttributes: attrs}, nil
	case chantypes.EventTypeTimeoutPacket:
		attrs, err := getPacketAttributes(ev, false)
		if err != nil {
			return nil, err
		}
		return &core.EventTimeoutPacket{PacketAttributes: attrs}, nil
	default:
		return nil, fmt.Errorf("not an IBC event: %s", ev.Type)
	}
}

// getConnectionAttributes reads the connection attributes. The counterparty
// connection ID is unknown in the init step.
func getConnectionAttributes(ev abci.Event, hasCounterpartyConnection bool) (core.ConnectionAttributes, error) {
	var attrs core.ConnectionAttributes
	var err0, err1, err2, err3 error
	attrs.ConnectionID, err0 = getAttributeString(ev, conntypes.AttributeKeyConnectionID)
	attrs.ClientID, err1 = getAttributeString(ev, conntypes.AttributeKeyClientID)
	attrs.CounterpartyClientID, err2 = getAttributeString(ev, conntypes.AttributeKeyCounterpartyClientID)
	if hasCounterpartyConnection {
		attrs.CounterpartyConnectionID, err3 = getAttributeString(ev, conntypes.AttributeKeyCounterpartyConnectionID)
	}
	if err := errors.Join(err0, err1, err2, err3); err != nil {
		return core.ConnectionAttributes{}, err
	}
	return attrs, nil
}

// getChannelAttributes reads the channel attributes. The counterparty
// channel ID is unknown in the init step.
func getChannelAttributes(ev abci.Event, hasCounterpartyChannel bool) (core.ChannelAttributes, error) {
	var attrs core.ChannelAttributes
	var err0, err1, err2, err3, err4 error
	attrs.PortID, err0 = getAttributeString(ev, chantypes.AttributeKeyPortID)
	attrs.ChannelID, err1 = getAttributeString(ev, chantypes.AttributeKeyChannelID)
	attrs.CounterpartyPortID, err2 = getAttributeString(ev, chantypes.AttributeCounterpartyPortID)
	attrs.ConnectionID, err3 = getAttributeString(ev, chantypes.AttributeKeyConnectionID)
	if hasCounterpartyChannel {
		attrs.CounterpartyChannelID, err4 = getAttributeString(ev, chantypes.AttributeCounterpartyChannelID)
	}
	if err := errors.Join(err0, err1, err2, err3, err4); err != nil {
		return core.ChannelAttributes{}, err
	}
	// only emitted by the handshake steps that negotiate it
	attrs.Version, _ = getAttributeString(ev, chantypes.AttributeVersion)
	return attrs, nil
}

// getPacketAttributes reads the packet attributes. The acknowledgement and
// timeout events do not carry the packet data.
func getPacketAttributes(ev abci.Event, hasData bool) (core.PacketAttributes, error) {
	var attrs core.PacketAttributes
	var err0, err1, err2, err3, err4, err5, err6, err7, err8 error
	if hasData {
		attrs.Data, err0 = getAttributeBytes(ev, chantypes.AttributeKeyDataHex)
	}
	attrs.TimeoutHeight, err1 = getAttributeHeight(ev, chantypes.AttributeKeyTimeoutHeight)
	attrs.TimeoutTimestamp, err2 = getAttributeUint64(ev, chantypes.AttributeKeyTimeoutTimestamp)
	attrs.Sequence, err3 = getAttributeUint64(ev, chantypes.AttributeKeySequence)
	attrs.SrcPort, err4 = getAttributeString(ev, chantypes.AttributeKeySrcPort)
	attrs.SrcChannel, err5 = getAttributeString(ev, chantypes.AttributeKeySrcChannel)
	attrs.DstPort, err6 = getAttributeString(ev, chantypes.AttributeKeyDstPort)
	attrs.DstChannel, err7 = getAttributeString(ev, chantypes.AttributeKeyDstChannel)
	attrs.ChannelOrdering, err8 = getAttributeOrder(ev, chantypes.AttributeKeyChannelOrdering)
	if err := errors.Join(err0, err1, err2, err3, err4, err5, err6, err7, err8); err != nil {
		return core.PacketAttributes{}, err
	}
	attrs.ConnectionID, _ = getAttributeString(ev, chantypes.AttributeKeyConnectionID)
	return attrs, nil
}

func getAttributeString(ev abci.Event, key string) (string, error) {
	for _, attr := range ev.Attributes {
		if attr.Key == key {
			return attr.Value, nil
		}
	}
	return "", fmt.Errorf("failed to find attribute of key %q", key)
}

func getAttributeBytes(ev abci.Event, key string) ([]byte, error) {
	v, err := getAttributeString(ev, key)
	if err != nil {
		return nil, err
	}
	bz, err := hex.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("failed to decode hex string: %v", err)
	}
	return bz, nil
}

func getAttributeHeight(ev abci.Event, key string) (clienttypes.Height, error) {
	v, err := getAttributeString(ev, key)
	if err != nil {
		return clienttypes.Height{}, err
	}
	height, err := clienttypes.ParseHeight(v)
	if err != nil {
		return clienttypes.Height{}, fmt.Errorf("failed to parse height: %v", err)
	}
	return height, nil
}

func getAttributeUint64(ev abci.Event, key string) (uint64, error) {
	v, err := getAttributeString(ev, key)
	if err != nil {
		return 0, err
	}
	d, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse uint: %v", err)
	}
	return d, nil
}

func getAttributeHeights(ev abci.Event, key string) ([]clienttypes.Height, error) {
	v, err := getAttributeString(ev, key)
	if err != nil {
		return nil, err
	}
	var heights []clienttypes.Height
	for _, s := range strings.Split(v, ",") {
		height, err := clienttypes.ParseHeight(s)
		if err != nil {
			return nil, fmt.Errorf("failed to parse height: %v", err)
		}
		heights = append(heights, height)
	}
	return heights, nil
}

// getConsensusHeights prefers the plural attribute and falls back to the singular one
func getConsensusHeights(ev abci.Event) ([]clienttypes.Height, error) {
	if heights, err := getAttributeHeights(ev, clienttypes.AttributeKeyConsensusHeights); err == nil {
		return heights, nil
	}
	return getAttributeHeights(ev, clienttypes.AttributeKeyConsensusHeight)
}

func getAttributeOrder(ev abci.Event, key string) (chantypes.Order, error) {
	v, err := getAttributeString(ev, key)
	if err != nil {
		return 0, err
	}
	order, found := chantypes.Order_value[v]
	if !found {
		return 0, fmt.Errorf("invalid order enum: %v", v)
	}
	return chantypes.Order(order), nil
}
