package namada

import (
	"context"
	"fmt"
	"time"

	"github.com/cometbft/cometbft/light"
	cmttypes "github.com/cometbft/cometbft/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/ibc-go/v8/modules/core/23-commitment/types"
	ibcexported "github.com/cosmos/ibc-go/v8/modules/core/exported"
	ibctm "github.com/cosmos/ibc-go/v8/modules/light-clients/07-tendermint"
	"github.com/near/borsh-go"

	"github.com/hyperledger-labs/namada-relayer/core"
)

// posParamsHead is the leading fields of the PoS parameters
type posParamsHead struct {
	MaxValidatorSlots uint64
	PipelineLen       uint64
	UnbondingLen      uint64
}

const posParamsHeadSize = 24

// EpochDuration is the minimum duration of an epoch
type EpochDuration struct {
	MinNumOfBlocks uint64
	// seconds
	MinDuration uint64
}

// QueryUnbondingPeriod returns the pipeline length times the minimum epoch duration
func (c *Chain) QueryUnbondingPeriod(ctx context.Context) (time.Duration, error) {
	posKey := PoSParamsKey()
	value, _, err := c.Query(ctx, posKey, core.LatestHeight(), core.IncludeProofNo)
	if err != nil {
		return 0, err
	}
	if len(value) < posParamsHeadSize {
		return 0, core.NewDecodeError(posKey.String(), fmt.Errorf("too short PoS params: %d bytes", len(value)))
	}
	var params posParamsHead
	if err := borsh.Deserialize(&params, value[:posParamsHeadSize]); err != nil {
		return 0, core.NewDecodeError(posKey.String(), err)
	}

	epochKey := EpochDurationKey()
	value, _, err = c.Query(ctx, epochKey, core.LatestHeight(), core.IncludeProofNo)
	if err != nil {
		return 0, err
	}
	var epochDuration EpochDuration
	if err := borsh.Deserialize(&epochDuration, value); err != nil {
		return 0, core.NewDecodeError(epochKey.String(), err)
	}

	return time.Duration(params.PipelineLen*epochDuration.MinDuration) * time.Second, nil
}

func defaultTrustingPeriod(unbondingPeriod time.Duration) time.Duration {
	return 2 * unbondingPeriod / 3
}

// BuildClientState returns a 07-tendermint client state of this chain. The trusting period is
// taken from the settings, then the config, then 2/3 of the unbonding period.
func (c *Chain) BuildClientState(ctx context.Context, height clienttypes.Height, settings core.ClientSettings) (ibcexported.ClientState, error) {
	unbondingPeriod, err := c.QueryUnbondingPeriod(ctx)
	if err != nil {
		return nil, err
	}

	trustingPeriod := settings.TrustingPeriod
	if trustingPeriod == 0 {
		trustingPeriod = c.config.GetTrustingPeriod()
	}
	if trustingPeriod == 0 {
		trustingPeriod = defaultTrustingPeriod(unbondingPeriod)
	}
	maxClockDrift := settings.MaxClockDrift
	if maxClockDrift == 0 {
		maxClockDrift = c.config.GetMaxClockDrift()
	}
	trustLevel := settings.TrustThreshold
	if trustLevel.Denominator == 0 {
		trustLevel = c.config.TrustThreshold
	}
	if trustLevel.Denominator == 0 {
		trustLevel = ibctm.NewFractionFromTm(light.DefaultTrustLevel)
	}

	cs := ibctm.NewClientState(
		c.ChainID(),
		trustLevel,
		trustingPeriod,
		unbondingPeriod,
		maxClockDrift,
		height,
		ProofSpecs(),
		nil,
	)
	if err := cs.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client state of %s: %w", c.ChainID(), err)
	}
	return cs, nil
}

// BuildConsensusState returns the consensus state of a verified light block
func (c *Chain) BuildConsensusState(lightBlock *cmttypes.LightBlock) (ibcexported.ConsensusState, error) {
	if lightBlock == nil || lightBlock.SignedHeader == nil || lightBlock.Header == nil {
		return nil, fmt.Errorf("no header in the light block")
	}
	return ibctm.NewConsensusState(
		lightBlock.Time,
		commitmenttypes.NewMerkleRoot(lightBlock.AppHash),
		lightBlock.NextValidatorsHash,
	), nil
}

// BuildHeader returns the header at the target height and the headers the counterparty
// client needs to verify it from the trusted height
func (c *Chain) BuildHeader(ctx context.Context, trustedHeight, targetHeight clienttypes.Height, clientState ibcexported.ClientState) (ibcexported.ClientMessage, []ibcexported.ClientMessage, error) {
	target, supporting, err := c.light.HeaderAndMinimalSet(ctx, trustedHeight, targetHeight, clientState)
	if err != nil {
		return nil, nil, err
	}
	msgs := make([]ibcexported.ClientMessage, 0, len(supporting))
	for _, h := range supporting {
		msgs = append(msgs, h)
	}
	return target, msgs, nil
}

func (c *Chain) VerifyHeader(ctx context.Context, trustedHeight, targetHeight clienttypes.Height, clientState ibcexported.ClientState) (*cmttypes.LightBlock, error) {
	return c.light.Verify(ctx, trustedHeight, targetHeight, clientState)
}

func (c *Chain) CheckMisbehaviour(ctx context.Context, update *core.EventUpdateClient, clientState ibcexported.ClientState) (*core.MisbehaviourEvidence, error) {
	return c.light.CheckMisbehaviour(ctx, update, clientState)
}
