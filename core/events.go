package core

import (
	"fmt"
	"reflect"

	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	conntypes "github.com/cosmos/ibc-go/v8/modules/core/03-connection/types"
	chantypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
)

// IBCEvent is an IBC event emitted by a chain
type IBCEvent interface {
	EventType() string
	isIBCEvent()
}

var (
	_ IBCEvent = (*EventCreateClient)(nil)
	_ IBCEvent = (*EventUpdateClient)(nil)
	_ IBCEvent = (*EventConnectionOpenInit)(nil)
	_ IBCEvent = (*EventConnectionOpenTry)(nil)
	_ IBCEvent = (*EventConnectionOpenAck)(nil)
	_ IBCEvent = (*EventConnectionOpenConfirm)(nil)
	_ IBCEvent = (*EventChannelOpenInit)(nil)
	_ IBCEvent = (*EventChannelOpenTry)(nil)
	_ IBCEvent = (*EventChannelOpenAck)(nil)
	_ IBCEvent = (*EventChannelOpenConfirm)(nil)
	_ IBCEvent = (*EventChannelCloseInit)(nil)
	_ IBCEvent = (*EventChannelCloseConfirm)(nil)
	_ IBCEvent = (*EventSendPacket)(nil)
	_ IBCEvent = (*EventRecvPacket)(nil)
	_ IBCEvent = (*EventWriteAcknowledgement)(nil)
	_ IBCEvent = (*EventAcknowledgePacket)(nil)
	_ IBCEvent = (*EventTimeoutPacket)(nil)
	_ IBCEvent = (*EventChainError)(nil)
)

func (*EventCreateClient) isIBCEvent()          {}
func (*EventUpdateClient) isIBCEvent()          {}
func (*EventConnectionOpenInit) isIBCEvent()    {}
func (*EventConnectionOpenTry) isIBCEvent()     {}
func (*EventConnectionOpenAck) isIBCEvent()     {}
func (*EventConnectionOpenConfirm) isIBCEvent() {}
func (*EventChannelOpenInit) isIBCEvent()       {}
func (*EventChannelOpenTry) isIBCEvent()        {}
func (*EventChannelOpenAck) isIBCEvent()        {}
func (*EventChannelOpenConfirm) isIBCEvent()    {}
func (*EventChannelCloseInit) isIBCEvent()      {}
func (*EventChannelCloseConfirm) isIBCEvent()   {}
func (*EventSendPacket) isIBCEvent()            {}
func (*EventRecvPacket) isIBCEvent()            {}
func (*EventWriteAcknowledgement) isIBCEvent()  {}
func (*EventAcknowledgePacket) isIBCEvent()     {}
func (*EventTimeoutPacket) isIBCEvent()         {}
func (*EventChainError) isIBCEvent()            {}

func (*EventCreateClient) EventType() string { return clienttypes.EventTypeCreateClient }
func (*EventUpdateClient) EventType() string { return clienttypes.EventTypeUpdateClient }
func (*EventConnectionOpenInit) EventType() string {
	return conntypes.EventTypeConnectionOpenInit
}
func (*EventConnectionOpenTry) EventType() string { return conntypes.EventTypeConnectionOpenTry }
func (*EventConnectionOpenAck) EventType() string { return conntypes.EventTypeConnectionOpenAck }
func (*EventConnectionOpenConfirm) EventType() string {
	return conntypes.EventTypeConnectionOpenConfirm
}
func (*EventChannelOpenInit) EventType() string    { return chantypes.EventTypeChannelOpenInit }
func (*EventChannelOpenTry) EventType() string     { return chantypes.EventTypeChannelOpenTry }
func (*EventChannelOpenAck) EventType() string     { return chantypes.EventTypeChannelOpenAck }
func (*EventChannelOpenConfirm) EventType() string { return chantypes.EventTypeChannelOpenConfirm }
func (*EventChannelCloseInit) EventType() string   { return chantypes.EventTypeChannelCloseInit }
func (*EventChannelCloseConfirm) EventType() string {
	return chantypes.EventTypeChannelCloseConfirm
}
func (*EventSendPacket) EventType() string           { return chantypes.EventTypeSendPacket }
func (*EventRecvPacket) EventType() string           { return chantypes.EventTypeRecvPacket }
func (*EventWriteAcknowledgement) EventType() string { return chantypes.EventTypeWriteAck }
func (*EventAcknowledgePacket) EventType() string    { return chantypes.EventTypeAcknowledgePacket }
func (*EventTimeoutPacket) EventType() string        { return chantypes.EventTypeTimeoutPacket }
func (*EventChainError) EventType() string           { return EventTypeChainError }

// EventTypeChainError is the type of EventChainError. No chain emits it.
const EventTypeChainError = "chain_error"

type EventCreateClient struct {
	ClientID        string
	ClientType      string
	ConsensusHeight clienttypes.Height
}

type EventUpdateClient struct {
	ClientID         string
	ClientType       string
	ConsensusHeights []clienttypes.Height
	// Header is the encoded client message. It is empty if the chain does not emit it.
	Header []byte
}

// ConnectionAttributes are the attributes shared by the connection handshake events
type ConnectionAttributes struct {
	ConnectionID             string
	ClientID                 string
	CounterpartyClientID     string
	CounterpartyConnectionID string
}

type EventConnectionOpenInit struct{ ConnectionAttributes }
type EventConnectionOpenTry struct{ ConnectionAttributes }
type EventConnectionOpenAck struct{ ConnectionAttributes }
type EventConnectionOpenConfirm struct{ ConnectionAttributes }

// ChannelAttributes are the attributes shared by the channel handshake events
type ChannelAttributes struct {
	PortID                string
	ChannelID             string
	CounterpartyPortID    string
	CounterpartyChannelID string
	ConnectionID          string
	Version               string
}

type EventChannelOpenInit struct{ ChannelAttributes }
type EventChannelOpenTry struct{ ChannelAttributes }
type EventChannelOpenAck struct{ ChannelAttributes }
type EventChannelOpenConfirm struct{ ChannelAttributes }
type EventChannelCloseInit struct{ ChannelAttributes }
type EventChannelCloseConfirm struct{ ChannelAttributes }

// PacketAttributes are the attributes shared by the packet events
type PacketAttributes struct {
	Sequence         uint64
	SrcPort          string
	SrcChannel       string
	DstPort          string
	DstChannel       string
	Data             []byte
	TimeoutHeight    clienttypes.Height
	TimeoutTimestamp uint64
	ChannelOrdering  chantypes.Order
	ConnectionID     string
}

// Packet returns the packet carried by the event
func (a PacketAttributes) Packet() chantypes.Packet {
	return chantypes.NewPacket(a.Data, a.Sequence, a.SrcPort, a.SrcChannel, a.DstPort, a.DstChannel, a.TimeoutHeight, a.TimeoutTimestamp)
}

type EventSendPacket struct{ PacketAttributes }
type EventRecvPacket struct{ PacketAttributes }

type EventWriteAcknowledgement struct {
	PacketAttributes
	Acknowledgement []byte
}

type EventAcknowledgePacket struct{ PacketAttributes }
type EventTimeoutPacket struct{ PacketAttributes }

// EventChainError represents a failed transaction. It is data, not a local error.
type EventChainError struct {
	Reason string
}

// IBCEventWithHeight is an IBC event with the height of the block it was emitted in
type IBCEventWithHeight struct {
	Event  IBCEvent           `json:"event"`
	Height clienttypes.Height `json:"height"`
}

func NewIBCEventWithHeight(event IBCEvent, height clienttypes.Height) IBCEventWithHeight {
	return IBCEventWithHeight{Event: event, Height: height}
}

// Equal returns true if both have the same kind, attributes and height
func (e IBCEventWithHeight) Equal(other IBCEventWithHeight) bool {
	return e.Height.EQ(other.Height) && reflect.DeepEqual(e.Event, other.Event)
}

func (e IBCEventWithHeight) String() string {
	return fmt.Sprintf("%s at %s: %+v", e.Event.EventType(), e.Height, e.Event)
}

// DedupEvents removes the events equal to an earlier one, keeping the first-seen order
func DedupEvents(events []IBCEventWithHeight) []IBCEventWithHeight {
	var ret []IBCEventWithHeight
outer:
	for _, ev := range events {
		for _, seen := range ret {
			if seen.Equal(ev) {
				continue outer
			}
		}
		ret = append(ret, ev)
	}
	return ret
}
