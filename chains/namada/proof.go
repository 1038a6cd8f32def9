package namada

import (
	errorsmod "cosmossdk.io/errors"
	cmtcrypto "github.com/cometbft/cometbft/proto/tendermint/crypto"
	commitmenttypes "github.com/cosmos/ibc-go/v8/modules/core/23-commitment/types"
	ics23 "github.com/cosmos/ics23/go"

	"github.com/hyperledger-labs/namada-relayer/core"
)

// ConvertProof re-encodes the proof ops of a storage query into an ICS-23 Merkle proof.
// The proof is not verified here.
func ConvertProof(proofOps *cmtcrypto.ProofOps) (*commitmenttypes.MerkleProof, error) {
	if proofOps == nil || len(proofOps.Ops) == 0 {
		return nil, errorsmod.Wrap(core.ErrProofConversion, "no proof ops")
	}

	ops := make([]cmtcrypto.ProofOp, 0, len(proofOps.Ops))
	for i, op := range proofOps.Ops {
		if op.Type == "" {
			return nil, errorsmod.Wrapf(core.ErrProofConversion, "proof op %d has no type", i)
		} else if len(op.Data) == 0 {
			return nil, errorsmod.Wrapf(core.ErrProofConversion, "proof op %d (%s) has no data", i, op.Type)
		}
		ops = append(ops, cmtcrypto.ProofOp{
			Type: op.Type,
			Key:  op.Key,
			Data: op.Data,
		})
	}

	proof, err := commitmenttypes.ConvertProofs(&cmtcrypto.ProofOps{Ops: ops})
	if err != nil {
		return nil, errorsmod.Wrap(core.ErrProofConversion, err.Error())
	}
	return &proof, nil
}

// ProofSpecs returns the ICS-23 specs of the IBC subspace proof and of the base tree proof
func ProofSpecs() []*ics23.ProofSpec {
	return []*ics23.ProofSpec{ibcSubTreeSpec(), baseTreeSpec()}
}

func innerSpec() *ics23.InnerSpec {
	return &ics23.InnerSpec{
		ChildOrder:      []int32{0, 1},
		ChildSize:       32,
		MinPrefixLength: 0,
		MaxPrefixLength: 0,
		EmptyChild:      nil,
		Hash:            ics23.HashOp_SHA256,
	}
}

// the IBC subspace is a sparse merkle tree with hashed keys
func ibcSubTreeSpec() *ics23.ProofSpec {
	return &ics23.ProofSpec{
		LeafSpec: &ics23.LeafOp{
			Hash:         ics23.HashOp_SHA256,
			PrehashKey:   ics23.HashOp_SHA256,
			PrehashValue: ics23.HashOp_SHA256,
			Length:       ics23.LengthOp_NO_PREFIX,
			Prefix:       make([]byte, 32),
		},
		InnerSpec:                  innerSpec(),
		PrehashKeyBeforeComparison: true,
	}
}

func baseTreeSpec() *ics23.ProofSpec {
	return &ics23.ProofSpec{
		LeafSpec: &ics23.LeafOp{
			Hash:         ics23.HashOp_SHA256,
			PrehashKey:   ics23.HashOp_NO_HASH,
			PrehashValue: ics23.HashOp_SHA256,
			Length:       ics23.LengthOp_NO_PREFIX,
			Prefix:       make([]byte, 32),
		},
		InnerSpec: innerSpec(),
	}
}
