package namada

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	dbm "github.com/cometbft/cometbft-db"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cometbft/cometbft/light"
	lightp "github.com/cometbft/cometbft/light/provider"
	lighthttp "github.com/cometbft/cometbft/light/provider/http"
	dbs "github.com/cometbft/cometbft/light/store/db"
	cmttypes "github.com/cometbft/cometbft/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	ibcexported "github.com/cosmos/ibc-go/v8/modules/core/exported"
	ibctm "github.com/cosmos/ibc-go/v8/modules/light-clients/07-tendermint"

	"github.com/hyperledger-labs/namada-relayer/core"
)

var (
	rtyAttNum = uint(5)
	rtyAtt    = retry.Attempts(rtyAttNum)
	rtyDel    = retry.Delay(time.Millisecond * 400)
	rtyErr    = retry.LastErrorOnly(true)
)

// the light client logs are discarded
var lightLogger = light.Logger(cmtlog.NewNopLogger())

// LightClient verifies the headers of the chain with a cometbft light client
type LightClient struct {
	chainID        string
	revision       uint64
	trustingPeriod time.Duration
	maxClockDrift  time.Duration
	trustLevel     ibctm.Fraction

	primary lightp.Provider
	client  *light.Client
	db      dbm.DB
}

var _ core.LightClient = (*LightClient)(nil)

func newLightClient(ctx context.Context, config ChainConfig, homePath string, trustingPeriod time.Duration) (*LightClient, error) {
	primary, err := lighthttp.New(config.ChainId, config.RpcAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to create the light provider: %w", err)
	}

	var db dbm.DB
	if err := retry.Do(func() error {
		db, err = dbm.NewGoLevelDB(config.ChainId, config.GetLightDir(homePath))
		if err != nil {
			return fmt.Errorf("can't open light client database: %w", err)
		}
		return nil
	}, rtyAtt, rtyDel, rtyErr); err != nil {
		return nil, err
	}

	trustLevel := config.TrustThreshold
	if trustLevel.Denominator == 0 {
		trustLevel = ibctm.NewFractionFromTm(light.DefaultTrustLevel)
	}
	lc, err := NewLightClient(ctx, config.ChainId, primary, db, trustingPeriod, config.GetMaxClockDrift(), trustLevel)
	if err != nil {
		db.Close()
		return nil, err
	}
	return lc, nil
}

// NewLightClient restores the light client from the trusted store, or trusts the latest
// light block of the primary if the store is empty
func NewLightClient(ctx context.Context, chainID string, primary lightp.Provider, db dbm.DB, trustingPeriod, maxClockDrift time.Duration, trustLevel ibctm.Fraction) (*LightClient, error) {
	store := dbs.New(db, "")
	opts := []light.Option{lightLogger, light.SkippingVerification(trustLevel.ToTendermint()), light.MaxClockDrift(maxClockDrift)}

	lastHeight, err := store.LastLightBlockHeight()
	if err != nil {
		return nil, fmt.Errorf("failed to read the light client store of %s: %w", chainID, err)
	}

	var client *light.Client
	if lastHeight > 0 {
		client, err = light.NewClientFromTrustedStore(chainID, trustingPeriod, primary, []lightp.Provider{primary}, store, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to restore the light client of %s: %w", chainID, err)
		}
	} else {
		var lb *cmttypes.LightBlock
		if err := retry.Do(func() error {
			var err error
			lb, err = primary.LightBlock(ctx, 0)
			return err
		}, rtyAtt, rtyDel, rtyErr, retry.Context(ctx)); err != nil {
			return nil, fmt.Errorf("failed to get the latest light block of %s: %w", chainID, err)
		}
		client, err = light.NewClient(ctx, chainID, light.TrustOptions{
			Period: trustingPeriod,
			Height: lb.Height,
			Hash:   lb.Hash(),
		}, primary, []lightp.Provider{primary}, store, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize the light client of %s: %w", chainID, err)
		}
	}

	return &LightClient{
		chainID:        chainID,
		revision:       clienttypes.ParseChainID(chainID),
		trustingPeriod: trustingPeriod,
		maxClockDrift:  maxClockDrift,
		trustLevel:     trustLevel,
		primary:        primary,
		client:         client,
		db:             db,
	}, nil
}

func (lc *LightClient) Close() error {
	return lc.db.Close()
}

// Verify verifies the light block at the target height. The trusted height is only used to
// reject a target which is not newer.
func (lc *LightClient) Verify(ctx context.Context, trusted, target clienttypes.Height, _ ibcexported.ClientState) (*cmttypes.LightBlock, error) {
	if !target.GT(trusted) {
		return nil, fmt.Errorf("target height %s must be greater than the trusted height %s", target, trusted)
	}
	lb, err := lc.client.VerifyLightBlockAtHeight(ctx, int64(target.RevisionHeight), time.Now())
	if err != nil {
		return nil, fmt.Errorf("light client: %w", err)
	}
	return lb, nil
}

// HeaderAndMinimalSet returns the header at the target height and the headers bisecting
// the gap from the trusted height, ordered by height
func (lc *LightClient) HeaderAndMinimalSet(ctx context.Context, trusted, target clienttypes.Height, clientState ibcexported.ClientState) (*ibctm.Header, []*ibctm.Header, error) {
	trustingPeriod, maxClockDrift, trustLevel := lc.params(clientState)

	targetBlock, err := lc.Verify(ctx, trusted, target, clientState)
	if err != nil {
		return nil, nil, err
	}
	trustedBlock, err := lc.lightBlock(ctx, int64(trusted.RevisionHeight))
	if err != nil {
		return nil, nil, err
	}

	// the light blocks from the trusted one to the target
	chain := []*cmttypes.LightBlock{trustedBlock, targetBlock}
	now := time.Now()
	for i := 0; i+1 < len(chain); {
		from, to := chain[i], chain[i+1]
		err := light.Verify(from.SignedHeader, from.ValidatorSet, to.SignedHeader, to.ValidatorSet, trustingPeriod, now, maxClockDrift, trustLevel.ToTendermint())
		var errUntrusted light.ErrNewValSetCantBeTrusted
		switch {
		case err == nil:
			i++
		case errors.As(err, &errUntrusted):
			pivot := (from.Height + to.Height) / 2
			if pivot == from.Height {
				return nil, nil, fmt.Errorf("failed to bisect between %d and %d: %w", from.Height, to.Height, err)
			}
			lb, err := lc.lightBlock(ctx, pivot)
			if err != nil {
				return nil, nil, err
			}
			chain = append(chain[:i+1], append([]*cmttypes.LightBlock{lb}, chain[i+1:]...)...)
		default:
			return nil, nil, fmt.Errorf("failed to verify %d from %d: %w", to.Height, from.Height, err)
		}
	}

	headers := make([]*ibctm.Header, 0, len(chain)-1)
	for i := 1; i < len(chain); i++ {
		trustedHeight := clienttypes.NewHeight(lc.revision, uint64(chain[i-1].Height))
		trustedVals, err := lc.lightBlock(ctx, chain[i-1].Height+1)
		if err != nil {
			return nil, nil, err
		}
		h, err := lc.header(chain[i], trustedHeight, trustedVals.ValidatorSet)
		if err != nil {
			return nil, nil, err
		}
		headers = append(headers, h)
	}
	return headers[len(headers)-1], headers[:len(headers)-1], nil
}

// CheckMisbehaviour compares the header of a client update with the block of this chain.
// It returns nil if the update has no header or the header matches.
func (lc *LightClient) CheckMisbehaviour(ctx context.Context, update *core.EventUpdateClient, clientState ibcexported.ClientState) (*core.MisbehaviourEvidence, error) {
	if update == nil || len(update.Header) == 0 {
		return nil, nil
	}
	msg, err := clienttypes.UnmarshalClientMessage(MakeCodec(), update.Header)
	if err != nil {
		return nil, core.NewDecodeError(update.ClientID, err)
	}
	header, ok := msg.(*ibctm.Header)
	if !ok {
		return nil, fmt.Errorf("unexpected client message: %T", msg)
	}
	updateHeader, err := cmttypes.SignedHeaderFromProto(header.SignedHeader)
	if err != nil {
		return nil, core.NewDecodeError(update.ClientID, err)
	}

	target := clienttypes.NewHeight(lc.revision, uint64(updateHeader.Height))
	lb, err := lc.Verify(ctx, header.TrustedHeight, target, clientState)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(lb.Hash(), updateHeader.Hash()) {
		return nil, nil
	}

	trustedVals, err := cmttypes.ValidatorSetFromProto(header.TrustedValidators)
	if err != nil {
		return nil, core.NewDecodeError(update.ClientID, err)
	}
	own, err := lc.header(lb, header.TrustedHeight, trustedVals)
	if err != nil {
		return nil, err
	}
	return &core.MisbehaviourEvidence{
		Misbehaviour: ibctm.NewMisbehaviour(update.ClientID, own, header),
	}, nil
}

func (lc *LightClient) params(clientState ibcexported.ClientState) (time.Duration, time.Duration, ibctm.Fraction) {
	if cs, ok := clientState.(*ibctm.ClientState); ok {
		return cs.TrustingPeriod, cs.MaxClockDrift, cs.TrustLevel
	}
	return lc.trustingPeriod, lc.maxClockDrift, lc.trustLevel
}

func (lc *LightClient) lightBlock(ctx context.Context, height int64) (*cmttypes.LightBlock, error) {
	var lb *cmttypes.LightBlock
	if err := retry.Do(func() error {
		var err error
		lb, err = lc.primary.LightBlock(ctx, height)
		return err
	}, rtyAtt, rtyDel, rtyErr, retry.Context(ctx)); err != nil {
		return nil, fmt.Errorf("failed to get the light block at %d: %w", height, err)
	}
	return lb, nil
}

func (lc *LightClient) header(lb *cmttypes.LightBlock, trustedHeight clienttypes.Height, trustedVals *cmttypes.ValidatorSet) (*ibctm.Header, error) {
	valSet, err := lb.ValidatorSet.ToProto()
	if err != nil {
		return nil, err
	}
	trusted, err := trustedVals.ToProto()
	if err != nil {
		return nil, err
	}
	return &ibctm.Header{
		SignedHeader:      lb.SignedHeader.ToProto(),
		ValidatorSet:      valSet,
		TrustedHeight:     trustedHeight,
		TrustedValidators: trusted,
	}, nil
}
