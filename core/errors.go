package core

import (
	"fmt"

	errorsmod "cosmossdk.io/errors"
)

const codespace = "relayer"

var (
	// ErrRPC is a transport failure. It is never retried by the queries themselves.
	ErrRPC = errorsmod.Register(codespace, 2, "rpc request failed")
	// ErrEmptyResponseProof is returned when a proof was requested but the response has none
	ErrEmptyResponseProof = errorsmod.Register(codespace, 3, "empty response proof")
	// ErrProofConversion is returned when a proof cannot be converted to an ICS-23 proof
	ErrProofConversion = errorsmod.Register(codespace, 4, "proof conversion failed")
	// ErrDecode is returned when a stored value cannot be decoded
	ErrDecode = errorsmod.Register(codespace, 5, "decode failed")
	// ErrTxNoConfirmation is returned when transactions are not committed before the timeout
	ErrTxNoConfirmation = errorsmod.Register(codespace, 6, "failed to confirm the transactions before the timeout")
	// ErrChainNotCaughtUp is returned when the node is still syncing
	ErrChainNotCaughtUp = errorsmod.Register(codespace, 7, "node is not caught up")
	// ErrNotSupported is returned by operations the chain does not support
	ErrNotSupported = errorsmod.Register(codespace, 8, "not supported")
	// ErrQuery is returned when a query result is inconsistent
	ErrQuery = errorsmod.Register(codespace, 9, "query failed")
)

// DecodeError is a failure to decode the value stored at Path
type DecodeError struct {
	Path string
	Err  error
}

func NewDecodeError(path string, err error) *DecodeError {
	return &DecodeError{Path: path, Err: err}
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode the value at %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports DecodeError as ErrDecode
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
