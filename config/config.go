package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hyperledger-labs/namada-relayer/core"
)

const (
	defaultTimeout = "10s"
	configDir      = "config"
	configFile     = "config.json"
)

type Config struct {
	Global GlobalConfig            `json:"global"`
	Chains []core.ChainConfigEntry `json:"chains"`

	// cache
	HomePath   string `json:"-"`
	ConfigPath string `json:"-"`
}

type GlobalConfig struct {
	Timeout      string       `json:"timeout"`
	LoggerConfig LoggerConfig `json:"logger"`
}

type LoggerConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	Output string `json:"output"`
}

func DefaultConfig(homePath string) Config {
	return Config{
		Global:     newDefaultGlobalConfig(),
		Chains:     []core.ChainConfigEntry{},
		HomePath:   homePath,
		ConfigPath: ConfigPath(homePath),
	}
}

// newDefaultGlobalConfig returns a global config with defaults set
func newDefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{
		Timeout: defaultTimeout,
		LoggerConfig: LoggerConfig{
			Level:  "DEBUG",
			Format: "text",
			Output: "stderr",
		},
	}
}

// ConfigPath returns the path of the config file under the home directory
func ConfigPath(homePath string) string {
	return filepath.Join(homePath, configDir, configFile)
}

func (g GlobalConfig) GetTimeout() (time.Duration, error) {
	return time.ParseDuration(g.Timeout)
}

// LoadConfig reads the config file under the home directory and decodes the chain entries
// with the modules of ctx. It returns the default config if the file does not exist.
func LoadConfig(ctx *Context, homePath string) (*Config, error) {
	cfg := DefaultConfig(homePath)
	bz, err := os.ReadFile(cfg.ConfigPath)
	if errors.Is(err, os.ErrNotExist) {
		return &cfg, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read the config file %s: %w", cfg.ConfigPath, err)
	}
	if err := UnmarshalJSON(bz, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the config file %s: %w", cfg.ConfigPath, err)
	}
	if err := cfg.InitChains(ctx); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// InitChains decodes and validates every chain entry
func (c *Config) InitChains(ctx *Context) error {
	if _, err := c.Global.GetTimeout(); err != nil {
		return fmt.Errorf("invalid global timeout %q: %w", c.Global.Timeout, err)
	}
	for i := range c.Chains {
		if err := c.Chains[i].Init(ctx.NewChainConfig); err != nil {
			return fmt.Errorf("failed to init the chain config at index %d: %w", i, err)
		}
	}
	return nil
}

// GetChain returns the config of the chain
func (c *Config) GetChain(chainID string) (core.ChainConfig, error) {
	for _, entry := range c.Chains {
		chain, err := entry.GetChainConfig()
		if err != nil {
			return nil, err
		}
		if chain.ChainID() == chainID {
			return chain, nil
		}
	}
	return nil, fmt.Errorf("chain with ID %s is not configured", chainID)
}

// AddChain adds an additional chain to the config
func (c *Config) AddChain(ctx *Context, entry core.ChainConfigEntry) error {
	if err := entry.Init(ctx.NewChainConfig); err != nil {
		return err
	}
	chain, err := entry.GetChainConfig()
	if err != nil {
		return err
	}
	if _, err := c.GetChain(chain.ChainID()); err == nil {
		return fmt.Errorf("chain with ID %s already exists in config", chain.ChainID())
	}
	c.Chains = append(c.Chains, entry)
	return nil
}

// BuildChain connects to the chain with its config
func (c *Config) BuildChain(ctx context.Context, chainID string) (core.ChainEndpoint, error) {
	chain, err := c.GetChain(chainID)
	if err != nil {
		return nil, err
	}
	return chain.Build(ctx, c.HomePath)
}

// Save writes the config file, creating its directory if needed
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.ConfigPath), 0750); err != nil {
		return err
	}
	bz, err := MarshalJSON(*c)
	if err != nil {
		return err
	}
	return os.WriteFile(c.ConfigPath, bz, 0600)
}

func MarshalJSON(config Config) ([]byte, error) {
	return json.MarshalIndent(config, "", "  ")
}

func UnmarshalJSON(bz []byte, config *Config) error {
	return json.Unmarshal(bz, config)
}
