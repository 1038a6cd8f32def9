package namada

import (
	errorsmod "cosmossdk.io/errors"
)

// ModuleName is the name of the chain type and the codespace of its errors
const ModuleName = "namada"

var (
	// ErrKeyNotFound is returned when the signing key is missing in the wallet
	ErrKeyNotFound = errorsmod.Register(ModuleName, 3, "key not found in the wallet")
	// ErrAddressNotFound is returned when an alias has no address in the wallet
	ErrAddressNotFound = errorsmod.Register(ModuleName, 4, "address not found in the wallet")
	// ErrTxCodeLoad is returned when the tx wasm cannot be read. It is a deployment error.
	ErrTxCodeLoad = errorsmod.Register(ModuleName, 5, "failed to load the tx code")
	// ErrWalletNotInitialized is returned when the wallet file is missing
	ErrWalletNotInitialized = errorsmod.Register(ModuleName, 6, "wallet is not initialized")
	ErrDenomNotFound        = errorsmod.Register(ModuleName, 7, "denom not found")
	ErrInvalidDenom         = errorsmod.Register(ModuleName, 8, "invalid denom")
	ErrAddressDecode        = errorsmod.Register(ModuleName, 9, "failed to decode an address")
	// ErrTxBuild is returned when a tx cannot be encoded or signed
	ErrTxBuild = errorsmod.Register(ModuleName, 10, "failed to build the tx")
)
