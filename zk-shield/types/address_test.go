package types

import (
	crand "crypto/rand"
	"math/big"
	"testing"

	"github.com/kysee/zkshield/utils"
	"github.com/stretchr/testify/require"
)

func TestAccountCodec(t *testing.T) {
	account := make([]byte, AccountSize)
	_, _ = crand.Read(account)

	addr := EncodeAccount(account)
	bz, err := DecodeAccount(addr)
	require.NoError(t, err)
	require.Equal(t, account, bz)

	_, err = DecodeAccount(EncodeAccount(account[:31]))
	require.ErrorContains(t, err, "wrong account length")
}

func TestReceiverFromAddress(t *testing.T) {
	account := make([]byte, AccountSize)
	for i := range account {
		account[i] = 0xff
	}
	recv, err := ReceiverFromAddress(EncodeAccount(account))
	require.NoError(t, err)
	require.NoError(t, utils.CheckField(recv))

	expected := new(big.Int).Mod(new(big.Int).SetBytes(account), utils.FieldModulus())
	require.Equal(t, 0, expected.Cmp(recv))

	small := make([]byte, AccountSize)
	small[31] = 7
	recv, err = ReceiverFromAddress(EncodeAccount(small))
	require.NoError(t, err)
	require.Equal(t, int64(7), recv.Int64())
}
