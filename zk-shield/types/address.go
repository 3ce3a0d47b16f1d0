package types

import (
	"math/big"

	"github.com/btcsuite/btcutil/base58"
	"github.com/kysee/zkshield/utils"
	"github.com/pkg/errors"
)

// AccountSize is the byte length of an external receiver account.
const AccountSize = 32

func EncodeAccount(account []byte) string {
	return base58.Encode(account)
}

func DecodeAccount(addr string) ([]byte, error) {
	bz := base58.Decode(addr)
	if len(bz) != AccountSize {
		return nil, errors.Errorf("wrong account length: expected(%d), got(%d)", AccountSize, len(bz))
	}
	return bz, nil
}

// ReceiverFromAddress maps a base58 account address to the receiver field
// element bound by withdraw proofs: the big-endian account bytes mod r.
func ReceiverFromAddress(addr string) (*big.Int, error) {
	bz, err := DecodeAccount(addr)
	if err != nil {
		return nil, err
	}
	return ReceiverFromAccount(bz), nil
}

func ReceiverFromAccount(account []byte) *big.Int {
	return utils.ReduceField(new(big.Int).SetBytes(account))
}
