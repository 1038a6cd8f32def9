package namada

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmttypes "github.com/cometbft/cometbft/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/near/borsh-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/hyperledger-labs/namada-relayer/core"
	"github.com/hyperledger-labs/namada-relayer/internal/telemetry"
)

const (
	DefaultFeeToken   = "NAM"
	DefaultMaxGas     = uint64(100_000)
	DefaultTxWasmFile = "tx_ibc.wasm"

	wasmChecksumsFile = "checksums.json"
)

// Tx is the transaction envelope of the chain
type Tx struct {
	Code      []byte
	Data      []byte
	Timestamp string
}

// SignedTxData is the data of a signed transaction
type SignedTxData struct {
	Data []byte
	Sig  []byte
}

// Fee is the fee paid by a wrapper transaction
type Fee struct {
	Amount Amount
	Token  string
}

// WrapperTx pays the fee for the signed inner transaction.
// It is valid only in Epoch and must be rebuilt with its inner transaction.
type WrapperTx struct {
	Fee      Fee
	PK       []byte
	Epoch    uint64
	GasLimit uint64
	InnerTx  []byte
	TxHash   [32]byte
}

func newTx(code, data []byte, timestamp time.Time) Tx {
	return Tx{
		Code:      code,
		Data:      data,
		Timestamp: timestamp.UTC().Format(time.RFC3339Nano),
	}
}

func (tx Tx) Bytes() ([]byte, error) {
	return borsh.Serialize(tx)
}

// Hash returns the SHA-256 hash of the encoded transaction
func (tx Tx) Hash() ([32]byte, error) {
	bz, err := tx.Bytes()
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(bz), nil
}

// Sign returns the transaction whose data is replaced with the data and the signature over the transaction
func (tx Tx) Sign(key ed25519.PrivKey) (Tx, error) {
	bz, err := tx.Bytes()
	if err != nil {
		return Tx{}, errorsmod.Wrapf(ErrTxBuild, "failed to encode the tx: %v", err)
	}
	sig, err := key.Sign(bz)
	if err != nil {
		return Tx{}, errorsmod.Wrapf(ErrTxBuild, "failed to sign the tx: %v", err)
	}
	signed, err := borsh.Serialize(SignedTxData{Data: tx.Data, Sig: sig})
	if err != nil {
		return Tx{}, errorsmod.Wrapf(ErrTxBuild, "failed to encode the signed data: %v", err)
	}
	return Tx{Code: tx.Code, Data: signed, Timestamp: tx.Timestamp}, nil
}

// NewWrapperTx wraps the signed inner transaction
func NewWrapperTx(fee Fee, pubKey ed25519.PubKey, epoch Epoch, gasLimit uint64, inner Tx) (*WrapperTx, error) {
	innerBz, err := inner.Bytes()
	if err != nil {
		return nil, errorsmod.Wrapf(ErrTxBuild, "failed to encode the inner tx: %v", err)
	}
	return &WrapperTx{
		Fee:      fee,
		PK:       pubKey.Bytes(),
		Epoch:    uint64(epoch),
		GasLimit: gasLimit,
		InnerTx:  innerBz,
		TxHash:   sha256.Sum256(innerBz),
	}, nil
}

// Sign returns the transaction carrying the wrapper and its signature
func (w *WrapperTx) Sign(key ed25519.PrivKey, timestamp time.Time) (Tx, error) {
	bz, err := borsh.Serialize(*w)
	if err != nil {
		return Tx{}, errorsmod.Wrapf(ErrTxBuild, "failed to encode the wrapper tx: %v", err)
	}
	sig, err := key.Sign(bz)
	if err != nil {
		return Tx{}, errorsmod.Wrapf(ErrTxBuild, "failed to sign the wrapper tx: %v", err)
	}
	data, err := borsh.Serialize(SignedTxData{Data: bz, Sig: sig})
	if err != nil {
		return Tx{}, errorsmod.Wrapf(ErrTxBuild, "failed to encode the signed wrapper: %v", err)
	}
	return newTx(nil, data, timestamp), nil
}

// SendTx builds the inner and the wrapper transactions of the message and broadcasts them.
// The hash of the response is the hash of the inner transaction.
func (c *Chain) SendTx(ctx context.Context, msg sdk.Msg) (*core.TxResponse, error) {
	logger := GetChainLogger().WithChain(c.ChainID())

	code, err := c.loadTxCode()
	if err != nil {
		return nil, err
	}
	data, err := c.codec.MarshalInterface(msg)
	if err != nil {
		return nil, errorsmod.Wrapf(ErrTxBuild, "failed to encode the message %s: %v", sdk.MsgTypeURL(msg), err)
	}

	// the key has been checked at the bootstrap
	key, err := c.wallet.FindKey(c.config.KeyName)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	signed, err := newTx(code, data, now).Sign(key)
	if err != nil {
		return nil, err
	}

	feeToken, ok := c.wallet.FindAddress(c.config.GetFeeToken())
	if !ok {
		return nil, errorsmod.Wrapf(ErrAddressNotFound, "fee token: %s", c.config.GetFeeToken())
	}
	feeKey := WrapperTxFeesKey()
	value, _, err := c.Query(ctx, feeKey, core.LatestHeight(), core.IncludeProofNo)
	if err != nil {
		return nil, err
	}
	feeAmount, err := DecodeAmount(value)
	if err != nil {
		return nil, core.NewDecodeError(feeKey.String(), err)
	}
	epoch, err := c.QueryEpoch(ctx)
	if err != nil {
		return nil, err
	}

	wrapper, err := NewWrapperTx(
		Fee{Amount: feeAmount, Token: feeToken},
		key.PubKey().(ed25519.PubKey),
		epoch,
		c.config.GetMaxGas(),
		signed,
	)
	if err != nil {
		return nil, err
	}
	tx, err := wrapper.Sign(key, now)
	if err != nil {
		return nil, err
	}
	txBytes, err := tx.Bytes()
	if err != nil {
		return nil, errorsmod.Wrapf(ErrTxBuild, "failed to encode the tx: %v", err)
	}

	res, err := c.client.BroadcastTxSync(ctx, cmttypes.Tx(txBytes))
	if err != nil {
		return nil, errorsmod.Wrapf(core.ErrRPC, "failed to broadcast the tx: %v", err)
	}
	telemetry.TxsSubmittedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("chain_id", c.ChainID())))

	response := &core.TxResponse{
		Code:      res.Code,
		Data:      res.Data,
		Log:       res.Log,
		Codespace: res.Codespace,
		// overwrite the hash to search the applied tx
		Hash: wrapper.TxHash[:],
	}
	if res.Code != 0 {
		logger.Info("check_tx failed", "msg_type", sdk.MsgTypeURL(msg), "code", res.Code, "log", res.Log, "tx_hash", response.Hash)
	} else {
		logger.Info("tx broadcast", "msg_type", sdk.MsgTypeURL(msg), "tx_hash", response.Hash, "wrapper_hash", res.Hash, "epoch", epoch)
	}
	return response, nil
}

// loadTxCode reads the IBC tx wasm. The file name is resolved through the checksums file if it exists.
func (c *Chain) loadTxCode() ([]byte, error) {
	dir := c.config.GetWasmDir(c.homePath)
	name := c.config.GetTxWasmFile()

	checksums, err := os.ReadFile(filepath.Join(dir, wasmChecksumsFile))
	switch {
	case err == nil:
		var names map[string]string
		if err := json.Unmarshal(checksums, &names); err != nil {
			return nil, errorsmod.Wrapf(ErrTxCodeLoad, "invalid %s: %v", wasmChecksumsFile, err)
		}
		if n, ok := names[name]; ok {
			name = n
		}
	case !os.IsNotExist(err):
		return nil, errorsmod.Wrapf(ErrTxCodeLoad, "failed to read %s: %v", wasmChecksumsFile, err)
	}

	code, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return nil, errorsmod.Wrapf(ErrTxCodeLoad, "%v", err)
	} else if len(code) == 0 {
		return nil, errorsmod.Wrapf(ErrTxCodeLoad, "empty tx code: %s", name)
	}
	return code, nil
}
