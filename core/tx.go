package core

import (
	cmtbytes "github.com/cometbft/cometbft/libs/bytes"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// TrackedMsgs is a batch of messages with an ID to correlate the logs of a submission
type TrackedMsgs struct {
	Msgs       []sdk.Msg
	TrackingID string
}

func NewTrackedMsgs(msgs []sdk.Msg, trackingID string) TrackedMsgs {
	return TrackedMsgs{Msgs: msgs, TrackingID: trackingID}
}

// TxResponse is the response of broadcast_tx_sync
type TxResponse struct {
	Code      uint32            `json:"code"`
	Data      cmtbytes.HexBytes `json:"data"`
	Log       string            `json:"log"`
	Codespace string            `json:"codespace"`
	Hash      cmtbytes.HexBytes `json:"hash"`
}

// TxStatus is either pending with the number of messages in the transaction or
// received. The zero value is pending.
type TxStatus struct {
	received     bool
	messageCount int
}

// TxPending returns the status of a broadcast transaction which is not committed yet
func TxPending(messageCount int) TxStatus {
	return TxStatus{messageCount: messageCount}
}

// TxReceivedResponse is the terminal status of a transaction whose events are found
var TxReceivedResponse = TxStatus{received: true}

func (s TxStatus) IsPending() bool {
	return !s.received
}

func (s TxStatus) MessageCount() int {
	return s.messageCount
}

func (s TxStatus) String() string {
	if s.received {
		return "received"
	}
	return "pending"
}

// TxSyncResult tracks a broadcast transaction until its events are found
type TxSyncResult struct {
	Response TxResponse
	Events   []IBCEventWithHeight
	Status   TxStatus
}

// AllTxResultsFound returns true if no result is pending
func AllTxResultsFound(results []TxSyncResult) bool {
	for _, r := range results {
		if r.Status.IsPending() {
			return false
		}
	}
	return true
}

// FlattenEvents concatenates the events of the results and removes duplicates
func FlattenEvents(results []TxSyncResult) []IBCEventWithHeight {
	var events []IBCEventWithHeight
	for _, r := range results {
		events = append(events, r.Events...)
	}
	return DedupEvents(events)
}
