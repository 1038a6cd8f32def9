package namada

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	dbm "github.com/cometbft/cometbft-db"
	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/cometbft/cometbft/crypto/tmhash"
	"github.com/cometbft/cometbft/light"
	lightp "github.com/cometbft/cometbft/light/provider"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	cmtversion "github.com/cometbft/cometbft/proto/tendermint/version"
	cmttypes "github.com/cometbft/cometbft/types"
	"github.com/cometbft/cometbft/version"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	ibcexported "github.com/cosmos/ibc-go/v8/modules/core/exported"
	ibctm "github.com/cosmos/ibc-go/v8/modules/light-clients/07-tendermint"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger-labs/namada-relayer/core"
)

// lightTestValidators returns the indexes of the validators at the height.
// Consecutive sets share more than a third of the power, the first and the last share nothing.
func lightTestValidators(height int64) []int {
	switch {
	case height < 5:
		return []int{0, 1, 2}
	case height < 8:
		return []int{1, 2, 3, 4}
	default:
		return []int{3, 4, 5}
	}
}

type testLightProvider struct {
	keys   []ed25519.PrivKey
	start  time.Time
	blocks map[int64]*cmttypes.LightBlock
	latest int64
}

var _ lightp.Provider = (*testLightProvider)(nil)

// newTestLightProvider returns a provider with the blocks up to latest+1, one per minute from start
func newTestLightProvider(t *testing.T, latest int64, start time.Time) *testLightProvider {
	t.Helper()
	p := &testLightProvider{start: start, blocks: make(map[int64]*cmttypes.LightBlock), latest: latest}
	for i := 0; i < 6; i++ {
		p.keys = append(p.keys, ed25519.GenPrivKeyFromSecret([]byte{byte(i)}))
	}
	for h := int64(1); h <= latest+1; h++ {
		p.blocks[h] = p.signedBlock(t, h, []byte(fmt.Sprintf("app-%d", h)))
	}
	return p
}

func (p *testLightProvider) ChainID() string {
	return testChainID
}

func (p *testLightProvider) LightBlock(_ context.Context, height int64) (*cmttypes.LightBlock, error) {
	if height == 0 {
		height = p.latest
	}
	lb, ok := p.blocks[height]
	if !ok {
		return nil, lightp.ErrLightBlockNotFound
	}
	return lb, nil
}

func (p *testLightProvider) ReportEvidence(context.Context, cmttypes.Evidence) error {
	return nil
}

func (p *testLightProvider) validatorSet(height int64) *cmttypes.ValidatorSet {
	var vals []*cmttypes.Validator
	for _, i := range lightTestValidators(height) {
		vals = append(vals, cmttypes.NewValidator(p.keys[i].PubKey(), 10))
	}
	return cmttypes.NewValidatorSet(vals)
}

func (p *testLightProvider) key(address []byte) ed25519.PrivKey {
	for _, k := range p.keys {
		if bytes.Equal(k.PubKey().Address(), address) {
			return k
		}
	}
	return nil
}

// signedBlock returns the block at the height committed by all of its validators
func (p *testLightProvider) signedBlock(t *testing.T, height int64, appHash []byte) *cmttypes.LightBlock {
	t.Helper()
	vals := p.validatorSet(height)
	header := &cmttypes.Header{
		Version:            cmtversion.Consensus{Block: version.BlockProtocol},
		ChainID:            testChainID,
		Height:             height,
		Time:               p.start.Add(time.Duration(height) * time.Minute),
		ValidatorsHash:     vals.Hash(),
		NextValidatorsHash: p.validatorSet(height + 1).Hash(),
		AppHash:            appHash,
		ProposerAddress:    vals.Validators[0].Address,
	}
	blockID := cmttypes.BlockID{
		Hash:          header.Hash(),
		PartSetHeader: cmttypes.PartSetHeader{Total: 1, Hash: tmhash.Sum(header.Hash())},
	}

	sigs := make([]cmttypes.CommitSig, len(vals.Validators))
	for i, val := range vals.Validators {
		vote := &cmttypes.Vote{
			Type:             cmtproto.PrecommitType,
			Height:           height,
			Round:            1,
			BlockID:          blockID,
			Timestamp:        header.Time,
			ValidatorAddress: val.Address,
			ValidatorIndex:   int32(i),
		}
		sig, err := p.key(val.Address).Sign(cmttypes.VoteSignBytes(testChainID, vote.ToProto()))
		require.NoError(t, err)
		sigs[i] = cmttypes.CommitSig{
			BlockIDFlag:      cmttypes.BlockIDFlagCommit,
			ValidatorAddress: val.Address,
			Timestamp:        header.Time,
			Signature:        sig,
		}
	}

	return &cmttypes.LightBlock{
		SignedHeader: &cmttypes.SignedHeader{
			Header: header,
			Commit: &cmttypes.Commit{Height: height, Round: 1, BlockID: blockID, Signatures: sigs},
		},
		ValidatorSet: vals,
	}
}

func newTestLightClient(t *testing.T, provider *testLightProvider, db dbm.DB) *LightClient {
	t.Helper()
	lc, err := NewLightClient(context.TODO(), testChainID, provider, db, time.Hour, 10*time.Second, ibctm.NewFractionFromTm(light.DefaultTrustLevel))
	require.NoError(t, err)
	return lc
}

func validatorsHash(t *testing.T, vals *cmtproto.ValidatorSet) []byte {
	t.Helper()
	vs, err := cmttypes.ValidatorSetFromProto(vals)
	require.NoError(t, err)
	return vs.Hash()
}

func TestNewLightClient(t *testing.T) {
	provider := newTestLightProvider(t, 10, time.Now().Add(-30*time.Minute))
	db := dbm.NewMemDB()

	// an empty store trusts the latest block
	lc := newTestLightClient(t, provider, db)
	height, err := lc.client.LastTrustedHeight()
	require.NoError(t, err)
	require.Equal(t, int64(10), height)

	// a store with a trusted block is restored
	provider.latest = 11
	lc = newTestLightClient(t, provider, db)
	height, err = lc.client.LastTrustedHeight()
	require.NoError(t, err)
	require.Equal(t, int64(10), height)
	require.NoError(t, lc.Close())
}

func TestHeaderAndMinimalSet(t *testing.T) {
	provider := newTestLightProvider(t, 10, time.Now().Add(-30*time.Minute))
	lc := newTestLightClient(t, provider, dbm.NewMemDB())
	height := func(h int64) clienttypes.Height { return clienttypes.NewHeight(0, uint64(h)) }

	cases := []struct {
		name        string
		trusted     int64
		target      int64
		clientState ibcexported.ClientState
		// the trusted heights of the minimal set and of the target header
		trustedHeights []int64
		err            bool
	}{
		{name: "trusted validators sign the target", trusted: 8, target: 10, trustedHeights: []int64{8}},
		{name: "bisected once", trusted: 1, target: 10, trustedHeights: []int64{1, 5}},
		{name: "trusted at the last block of a set", trusted: 4, target: 10, trustedHeights: []int64{4, 7}},
		{name: "target is not newer", trusted: 10, target: 10, err: true},
		{
			name:    "trusted block expired",
			trusted: 1,
			target:  10,
			clientState: &ibctm.ClientState{
				TrustingPeriod: time.Minute,
				MaxClockDrift:  10 * time.Second,
				TrustLevel:     ibctm.NewFractionFromTm(light.DefaultTrustLevel),
			},
			err: true,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			target, minimal, err := lc.HeaderAndMinimalSet(context.TODO(), height(c.trusted), height(c.target), c.clientState)
			if c.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			headers := append(minimal, target)
			require.Len(t, headers, len(c.trustedHeights))

			for i, h := range headers {
				require.NoError(t, h.ValidateBasic())
				trustedHeight := c.trustedHeights[i]
				require.Equal(t, height(trustedHeight), h.TrustedHeight)
				// the validators which sign the block after the trusted one
				require.Equal(t, []byte(provider.blocks[trustedHeight+1].ValidatorSet.Hash()), validatorsHash(t, h.TrustedValidators))
				if i+1 < len(headers) {
					require.Equal(t, c.trustedHeights[i+1], h.SignedHeader.Header.Height)
				}
			}
			require.Equal(t, c.target, target.SignedHeader.Header.Height)
			require.Equal(t, []byte(provider.blocks[c.target].Hash()), target.SignedHeader.Commit.BlockID.Hash)
		})
	}
}

func TestCheckMisbehaviour(t *testing.T) {
	provider := newTestLightProvider(t, 10, time.Now().Add(-30*time.Minute))
	lc := newTestLightClient(t, provider, dbm.NewMemDB())
	cdc := MakeCodec()

	clientHeader := func(lb *cmttypes.LightBlock, trusted int64) []byte {
		valSet, err := lb.ValidatorSet.ToProto()
		require.NoError(t, err)
		trustedVals, err := provider.blocks[trusted+1].ValidatorSet.ToProto()
		require.NoError(t, err)
		bz, err := clienttypes.MarshalClientMessage(cdc, &ibctm.Header{
			SignedHeader:      lb.SignedHeader.ToProto(),
			ValidatorSet:      valSet,
			TrustedHeight:     clienttypes.NewHeight(0, uint64(trusted)),
			TrustedValidators: trustedVals,
		})
		require.NoError(t, err)
		return bz
	}
	forked := provider.signedBlock(t, 10, []byte("forked"))

	cases := []struct {
		name     string
		update   *core.EventUpdateClient
		evidence bool
		err      error
	}{
		{name: "no update"},
		{name: "no header", update: &core.EventUpdateClient{ClientID: testClientID}},
		{name: "same header", update: &core.EventUpdateClient{ClientID: testClientID, Header: clientHeader(provider.blocks[10], 5)}},
		{name: "conflicting header", update: &core.EventUpdateClient{ClientID: testClientID, Header: clientHeader(forked, 5)}, evidence: true},
		{name: "undecodable header", update: &core.EventUpdateClient{ClientID: testClientID, Header: []byte{0xff}}, err: core.ErrDecode},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			evidence, err := lc.CheckMisbehaviour(context.TODO(), c.update, nil)
			if c.err != nil {
				require.ErrorIs(t, err, c.err)
				return
			}
			require.NoError(t, err)
			if !c.evidence {
				require.Nil(t, evidence)
				return
			}

			require.NotNil(t, evidence)
			mb := evidence.Misbehaviour
			require.Equal(t, testClientID, mb.ClientId)
			require.Equal(t, []byte(provider.blocks[10].Hash()), mb.Header1.SignedHeader.Commit.BlockID.Hash)
			require.Equal(t, []byte(forked.Hash()), mb.Header2.SignedHeader.Commit.BlockID.Hash)
			require.Equal(t, clienttypes.NewHeight(0, 5), mb.Header1.TrustedHeight)
			require.Equal(t, []byte(provider.blocks[6].ValidatorSet.Hash()), validatorsHash(t, mb.Header1.TrustedValidators))
			require.NoError(t, mb.ValidateBasic())
		})
	}
}
