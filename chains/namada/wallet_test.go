package namada

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWalletSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadWallet(dir)
	require.ErrorIs(t, err, ErrWalletNotInitialized)

	mnemonic, err := CreateMnemonic()
	require.NoError(t, err)
	w := NewWallet(dir)
	key, err := w.AddKey(testKeyName, mnemonic, testOwner)
	require.NoError(t, err)
	require.NoError(t, w.AddAddress(DefaultFeeToken, testNAM, VPTypeToken))
	require.NoError(t, w.AddAddress("uatom", "tnam1qatom", VPTypeToken))
	// adding twice keeps a single entry
	require.NoError(t, w.AddAddress(DefaultFeeToken, testNAM, VPTypeToken))
	require.NoError(t, w.AddAddress("faucet", "tnam1qfaucet", ""))
	require.NoError(t, w.Save())

	loaded, err := LoadWallet(dir)
	require.NoError(t, err)
	loadedKey, err := loaded.FindKey(testKeyName)
	require.NoError(t, err)
	require.Equal(t, key, loadedKey)

	addr, ok := loaded.FindAddress(testKeyName)
	require.True(t, ok)
	require.Equal(t, testOwner, addr)
	addr, ok = loaded.FindAddress("faucet")
	require.True(t, ok)
	require.Equal(t, "tnam1qfaucet", addr)

	require.Equal(t, []string{"tnam1qatom", testNAM}, loaded.AddressesWithVPType(VPTypeToken))
	require.Empty(t, loaded.AddressesWithVPType("user"))

	_, err = loaded.FindKey("faucet")
	require.ErrorIs(t, err, ErrKeyNotFound)
	_, ok = loaded.FindAddress("unknown")
	require.False(t, ok)
}

func TestWalletKeyDerivation(t *testing.T) {
	mnemonic, err := CreateMnemonic()
	require.NoError(t, err)

	k1, err := NewWallet(t.TempDir()).AddKey("a", mnemonic, testOwner)
	require.NoError(t, err)
	k2, err := NewWallet(t.TempDir()).AddKey("b", mnemonic, testOwner)
	require.NoError(t, err)
	require.Equal(t, k1, k2)

	_, err = NewWallet(t.TempDir()).AddKey("c", "not a mnemonic", testOwner)
	require.Error(t, err)
}

func TestValidateAddress(t *testing.T) {
	require.NoError(t, ValidateAddress(testOwner))
	for _, addr := range []string{"", "tnam1", "cosmos1abc", "tnamx"} {
		require.ErrorIs(t, ValidateAddress(addr), ErrAddressDecode, "address %q", addr)
	}
	_, err := NewWallet(t.TempDir()).AddKey("a", "", "cosmos1abc")
	require.ErrorIs(t, err, ErrAddressDecode)
}
