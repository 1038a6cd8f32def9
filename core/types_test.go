package core_test

import (
	"math/rand"
	"slices"
	"testing"

	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger-labs/namada-relayer/core"
)

func TestSequences(t *testing.T) {
	var expectedSeqs []uint64
	for i := 0; i < 10; i++ {
		expectedSeqs = append(expectedSeqs, rand.Uint64())
	}
	seqs := core.Sequences(expectedSeqs).Filter(expectedSeqs)
	if len(seqs) != 10 || !slices.Equal(seqs, expectedSeqs) {
		t.Errorf("Filter returns an unexpected result: actual=%v, expected=%v", seqs, expectedSeqs)
	}

	tests := []struct {
		name     string
		seqs     core.Sequences
		op       func(core.Sequences, []uint64) core.Sequences
		arg      []uint64
		expected core.Sequences
	}{
		{"filter keeps order", core.Sequences{3, 4, 5, 6, 7}, core.Sequences.Filter, []uint64{5, 6, 7, 8, 9}, core.Sequences{5, 6, 7}},
		{"filter keeps reversed order", core.Sequences{7, 6, 5, 4, 3}, core.Sequences.Filter, []uint64{5, 6, 7, 8, 9}, core.Sequences{7, 6, 5}},
		{"subtract keeps order", core.Sequences{3, 4, 5, 6, 7}, core.Sequences.Subtract, []uint64{5, 6, 7, 8, 9}, core.Sequences{3, 4}},
		{"subtract keeps reversed order", core.Sequences{7, 6, 5, 4, 3}, core.Sequences.Subtract, []uint64{5, 6, 7, 8, 9}, core.Sequences{4, 3}},
		{"subtract nothing", core.Sequences{1, 2}, core.Sequences.Subtract, nil, core.Sequences{1, 2}},
		{"filter by nothing", core.Sequences{1, 2}, core.Sequences.Filter, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.op(tt.seqs, tt.arg))
		})
	}
}

func TestQueryHeight(t *testing.T) {
	latest := core.LatestHeight()
	require.True(t, latest.IsLatest())
	require.Equal(t, "latest", latest.String())

	var zero core.QueryHeight
	require.True(t, zero.IsLatest())

	specific := core.SpecificHeight(clienttypes.NewHeight(1, 100))
	require.False(t, specific.IsLatest())
	require.Equal(t, clienttypes.NewHeight(1, 100), specific.Height())
	require.Equal(t, "1-100", specific.String())
}
