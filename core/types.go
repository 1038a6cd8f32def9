package core

import (
	"fmt"
	"time"

	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	ibcexported "github.com/cosmos/ibc-go/v8/modules/core/exported"
	ibctm "github.com/cosmos/ibc-go/v8/modules/light-clients/07-tendermint"
)

// QueryHeight selects the state snapshot a query targets.
// The zero value selects the latest height, which is resolved by the chain at query time.
type QueryHeight struct {
	height clienttypes.Height
}

// LatestHeight returns a QueryHeight for the latest state
func LatestHeight() QueryHeight {
	return QueryHeight{}
}

// SpecificHeight returns a QueryHeight for the state at the given height
func SpecificHeight(height ibcexported.Height) QueryHeight {
	return QueryHeight{height: clienttypes.NewHeight(height.GetRevisionNumber(), height.GetRevisionHeight())}
}

// IsLatest returns true if the query targets the latest state
func (h QueryHeight) IsLatest() bool {
	return h.height.IsZero()
}

// Height returns the specific height. It is zero for the latest state.
func (h QueryHeight) Height() clienttypes.Height {
	return h.height
}

func (h QueryHeight) String() string {
	if h.IsLatest() {
		return "latest"
	}
	return h.height.String()
}

// IncludeProof indicates whether a query must return a proof of the value
type IncludeProof bool

const (
	IncludeProofYes IncludeProof = true
	IncludeProofNo  IncludeProof = false
)

// HealthStatus is the result of a health check
type HealthStatus int

const (
	Healthy HealthStatus = iota
	Unhealthy
)

func (s HealthStatus) String() string {
	switch s {
	case Healthy:
		return "healthy"
	default:
		return "unhealthy"
	}
}

// ChainStatus is the latest height and block time of a chain
type ChainStatus struct {
	Height    clienttypes.Height `json:"height"`
	Timestamp time.Time          `json:"timestamp"`
}

// Balance is an amount of a denom
type Balance struct {
	Amount string `json:"amount"`
	Denom  string `json:"denom"`
}

func (b Balance) String() string {
	return fmt.Sprintf("%s %s", b.Amount, b.Denom)
}

// IdentifiedClientState is a client state with its client ID
type IdentifiedClientState struct {
	ClientID    string                  `json:"client_id"`
	ClientState ibcexported.ClientState `json:"client_state"`
}

// ToProto packs the client state into clienttypes.IdentifiedClientState
func (s IdentifiedClientState) ToProto() (clienttypes.IdentifiedClientState, error) {
	anyClientState, err := codectypes.NewAnyWithValue(s.ClientState)
	if err != nil {
		return clienttypes.IdentifiedClientState{}, err
	}
	return clienttypes.IdentifiedClientState{ClientId: s.ClientID, ClientState: anyClientState}, nil
}

// ClientSettings overrides the parameters of a client state built for a counterparty.
// Zero values fall back to the chain configuration.
type ClientSettings struct {
	TrustingPeriod time.Duration
	MaxClockDrift  time.Duration
	TrustThreshold ibctm.Fraction
}

// MisbehaviourEvidence is a misbehaviour found for a client update with the headers
// required to submit it
type MisbehaviourEvidence struct {
	Misbehaviour      *ibctm.Misbehaviour
	SupportingHeaders []*ibctm.Header
}

// Sequences is a list of packet sequences in the order in which they are found
type Sequences []uint64

func (ss Sequences) contains(seq uint64) bool {
	for _, s := range ss {
		if s == seq {
			return true
		}
	}
	return false
}

// Filter returns the sequences that are also in seqs
func (ss Sequences) Filter(seqs []uint64) Sequences {
	var ret Sequences
	for _, s := range ss {
		if Sequences(seqs).contains(s) {
			ret = append(ret, s)
		}
	}
	return ret
}

// Subtract returns the sequences that are not in seqs
func (ss Sequences) Subtract(seqs []uint64) Sequences {
	var ret Sequences
	for _, s := range ss {
		if !Sequences(seqs).contains(s) {
			ret = append(ret, s)
		}
	}
	return ret
}
