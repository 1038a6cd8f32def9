package coreutil

import (
	"fmt"

	"github.com/hyperledger-labs/namada-relayer/core"
	"github.com/hyperledger-labs/namada-relayer/otelcore"
)

// UnwrapChain finds the first endpoint in the decorators of c that matches the specified
// type argument.
//
// In the following example, UnwrapChain returns the *namada.Chain behind a traced endpoint:
//
//	chain, err := coreutil.UnwrapChain[*namada.Chain](endpoint)
func UnwrapChain[C core.ChainEndpoint](c core.ChainEndpoint) (C, error) {
	chain := c
	for {
		switch unwrapped := chain.(type) {
		case C:
			return unwrapped, nil
		case *otelcore.Chain:
			chain = unwrapped.ChainEndpoint
		default:
			var zero C
			return zero, fmt.Errorf("failed to unwrap chain: expected=%T, actual=%T", zero, unwrapped)
		}
	}
}
