package core

import (
	"context"

	cmttypes "github.com/cometbft/cometbft/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	ibcexported "github.com/cosmos/ibc-go/v8/modules/core/exported"
	ibctm "github.com/cosmos/ibc-go/v8/modules/light-clients/07-tendermint"
)

// LightClient verifies the headers of a chain on behalf of its counterparty
type LightClient interface {
	// Verify verifies the light block at the target height from the trusted height
	Verify(ctx context.Context, trusted, target clienttypes.Height, clientState ibcexported.ClientState) (*cmttypes.LightBlock, error)

	// HeaderAndMinimalSet returns the header at the target height and the headers
	// which the counterparty client needs to verify it
	HeaderAndMinimalSet(ctx context.Context, trusted, target clienttypes.Height, clientState ibcexported.ClientState) (*ibctm.Header, []*ibctm.Header, error)

	// CheckMisbehaviour compares the header of a client update with the chain
	CheckMisbehaviour(ctx context.Context, update *EventUpdateClient, clientState ibcexported.ClientState) (*MisbehaviourEvidence, error)
}
