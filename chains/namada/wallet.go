package namada

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	errorsmod "cosmossdk.io/errors"
	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/cosmos/go-bip39"
	"gopkg.in/yaml.v2"
)

const (
	walletFileName = "wallet.yaml"

	// VPTypeToken is the validity predicate type of the token addresses
	VPTypeToken = "token"

	addressHRP = "tnam"
)

// Wallet provides the keys and the addresses of the relayer
type Wallet interface {
	// FindKey returns the signing key of the alias
	FindKey(alias string) (ed25519.PrivKey, error)
	// FindAddress returns the address of the alias
	FindAddress(alias string) (string, bool)
	// AddressesWithVPType returns the addresses with the validity predicate type
	AddressesWithVPType(vpType string) []string
}

var _ Wallet = (*FileWallet)(nil)

type walletFile struct {
	Keys           map[string]string   `yaml:"keys"`
	Addresses      map[string]string   `yaml:"addresses"`
	AddressVPTypes map[string][]string `yaml:"address_vp_types"`
}

// FileWallet is a wallet stored as a YAML file
type FileWallet struct {
	mu   sync.RWMutex
	path string
	file walletFile
}

// WalletDir returns the wallet directory of the chain
func WalletDir(baseDir, chainID string) string {
	return filepath.Join(baseDir, chainID)
}

// LoadWallet loads the wallet in the directory
func LoadWallet(dir string) (*FileWallet, error) {
	path := filepath.Join(dir, walletFileName)
	bz, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errorsmod.Wrapf(ErrWalletNotInitialized, "no wallet at %s", path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read the wallet %s: %w", path, err)
	}
	w := &FileWallet{path: path}
	if err := yaml.Unmarshal(bz, &w.file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the wallet %s: %w", path, err)
	}
	w.init()
	return w, nil
}

// NewWallet returns an empty wallet which is saved in the directory
func NewWallet(dir string) *FileWallet {
	w := &FileWallet{path: filepath.Join(dir, walletFileName)}
	w.init()
	return w
}

func (w *FileWallet) init() {
	if w.file.Keys == nil {
		w.file.Keys = make(map[string]string)
	}
	if w.file.Addresses == nil {
		w.file.Addresses = make(map[string]string)
	}
	if w.file.AddressVPTypes == nil {
		w.file.AddressVPTypes = make(map[string][]string)
	}
}

func (w *FileWallet) Save() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	bz, err := yaml.Marshal(&w.file)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(w.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(w.path, bz, 0o600)
}

func (w *FileWallet) FindKey(alias string) (ed25519.PrivKey, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	v, ok := w.file.Keys[alias]
	if !ok {
		return nil, errorsmod.Wrapf(ErrKeyNotFound, "alias: %s", alias)
	}
	bz, err := hex.DecodeString(v)
	if err != nil {
		return nil, errorsmod.Wrapf(ErrKeyNotFound, "invalid key of %s: %v", alias, err)
	}
	switch len(bz) {
	case ed25519.SeedSize:
		return ed25519.GenPrivKeyFromSecret(bz), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivKey(bz), nil
	default:
		return nil, errorsmod.Wrapf(ErrKeyNotFound, "invalid key length of %s: %d", alias, len(bz))
	}
}

func (w *FileWallet) FindAddress(alias string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	addr, ok := w.file.Addresses[alias]
	return addr, ok
}

func (w *FileWallet) AddressesWithVPType(vpType string) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	addrs := append([]string(nil), w.file.AddressVPTypes[vpType]...)
	sort.Strings(addrs)
	return addrs
}

// AddKey stores the key derived from the mnemonic and the address of the alias
func (w *FileWallet) AddKey(alias, mnemonic, address string) (ed25519.PrivKey, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %w", err)
	}
	key := ed25519.GenPrivKeyFromSecret(seed)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.file.Keys[alias] = hex.EncodeToString(key)
	w.file.Addresses[alias] = address
	return key, nil
}

// AddAddress stores the address of the alias, with the validity predicate type if any
func (w *FileWallet) AddAddress(alias, address, vpType string) error {
	if err := ValidateAddress(address); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.file.Addresses[alias] = address
	if vpType != "" {
		for _, a := range w.file.AddressVPTypes[vpType] {
			if a == address {
				return nil
			}
		}
		w.file.AddressVPTypes[vpType] = append(w.file.AddressVPTypes[vpType], address)
	}
	return nil
}

// ValidateAddress checks the human readable part of an address
func ValidateAddress(address string) error {
	if !strings.HasPrefix(address, addressHRP+"1") || len(address) <= len(addressHRP)+1 {
		return errorsmod.Wrapf(ErrAddressDecode, "invalid address: %q", address)
	}
	return nil
}

// CreateMnemonic creates a new mnemonic
func CreateMnemonic() (string, error) {
	entropySeed, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	mnemonic, err := bip39.NewMnemonic(entropySeed)
	if err != nil {
		return "", err
	}
	return mnemonic, nil
}
