package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ChainConfig defines a chain configuration and its builder
type ChainConfig interface {
	// ChainID returns the ID of the configured chain
	ChainID() string
	// Build connects to the chain and returns a ready endpoint
	Build(ctx context.Context, homePath string) (ChainEndpoint, error)
	Validate() error
}

// ChainConfigEntry defines the top level configuration for a chain instance
type ChainConfigEntry struct {
	Type  string          `json:"type" yaml:"type"`
	Chain json.RawMessage `json:"chain" yaml:"chain"` // NOTE: decoded by the module registered for Type

	// cache
	chain ChainConfig `json:"-" yaml:"-"`
}

// NewChainConfigEntry returns a new config entry for the chain config of the type
func NewChainConfigEntry(typ string, chain ChainConfig) (*ChainConfigEntry, error) {
	bz, err := json.Marshal(chain)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chain config: %w", err)
	}
	return &ChainConfigEntry{
		Type:  typ,
		Chain: bz,
		chain: chain,
	}, nil
}

// Init decodes the chain config into the value returned by newConfig and validates it
func (e *ChainConfigEntry) Init(newConfig func(typ string) (ChainConfig, error)) error {
	chain, err := newConfig(e.Type)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(e.Chain, chain); err != nil {
		return fmt.Errorf("failed to unmarshal chain config of type %q: %w", e.Type, err)
	} else if err := chain.Validate(); err != nil {
		return fmt.Errorf("invalid chain config: %w", err)
	}
	e.chain = chain
	return nil
}

// GetChainConfig returns the cached ChainConfig instance
func (e ChainConfigEntry) GetChainConfig() (ChainConfig, error) {
	if e.chain == nil {
		return nil, errors.New("chain is nil")
	}
	return e.chain, nil
}

// Build returns a new ChainEndpoint instance
func (e ChainConfigEntry) Build(ctx context.Context, homePath string) (ChainEndpoint, error) {
	chainConfig, err := e.GetChainConfig()
	if err != nil {
		return nil, err
	}
	return chainConfig.Build(ctx, homePath)
}
