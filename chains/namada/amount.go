package namada

import (
	"fmt"
	"math/big"

	sdkmath "cosmossdk.io/math"
	"github.com/near/borsh-go"
)

const amountSize = 32

// Amount is a token amount stored as an unsigned 256-bit integer in little-endian limbs
type Amount [4]uint64

// DecodeAmount decodes a borsh-encoded amount
func DecodeAmount(bz []byte) (Amount, error) {
	if len(bz) != amountSize {
		return Amount{}, fmt.Errorf("amount length mismatch: expected=%d actual=%d", amountSize, len(bz))
	}
	var a Amount
	if err := borsh.Deserialize(&a, bz); err != nil {
		return Amount{}, fmt.Errorf("failed to decode amount: %w", err)
	}
	return a, nil
}

// NewAmount returns the amount of a non-negative integer fitting in 256 bits
func NewAmount(i sdkmath.Int) (Amount, error) {
	if i.IsNegative() {
		return Amount{}, fmt.Errorf("negative amount: %s", i)
	}
	bi := i.BigInt()
	if bi.BitLen() > 256 {
		return Amount{}, fmt.Errorf("amount overflows 256 bits: %s", i)
	}
	var a Amount
	mask := new(big.Int).SetUint64(^uint64(0))
	for j := range a {
		a[j] = new(big.Int).And(bi, mask).Uint64()
		bi = new(big.Int).Rsh(bi, 64)
	}
	return a, nil
}

func (a Amount) Int() sdkmath.Int {
	bi := new(big.Int)
	for j := len(a) - 1; j >= 0; j-- {
		bi.Lsh(bi, 64)
		bi.Or(bi, new(big.Int).SetUint64(a[j]))
	}
	return sdkmath.NewIntFromBigInt(bi)
}

func (a Amount) String() string {
	return a.Int().String()
}

func (a Amount) Bytes() ([]byte, error) {
	return borsh.Serialize(a)
}
