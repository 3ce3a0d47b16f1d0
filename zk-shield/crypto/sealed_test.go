package crypto

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestSharedSecret(t *testing.T) {
	alice, err := NewViewingKey()
	require.NoError(t, err)
	bob, err := NewViewingKey()
	require.NoError(t, err)

	s0, err := sharedSecret(alice, &bob.PublicKey)
	require.NoError(t, err)
	s1, err := sharedSecret(bob, &alice.PublicKey)
	require.NoError(t, err)
	require.Equal(t, s0, s1)

	k0, err := expandKey(s0, 44)
	require.NoError(t, err)
	require.Len(t, k0, 44)
	k1, err := expandKey(s1, 44)
	require.NoError(t, err)
	require.Equal(t, k0, k1)
}

func TestSealOpenNote(t *testing.T) {
	recipient, err := NewViewingKey()
	require.NoError(t, err)
	other, err := NewViewingKey()
	require.NoError(t, err)

	pub, err := PublicKeyFromAddress(Address(recipient))
	require.NoError(t, err)

	n, err := types.NewRandomNote(uint256.NewInt(2_500), big.NewInt(3))
	require.NoError(t, err)
	box, err := SealNote(pub, types.NewSecretNote(n, []byte("invoice 17")))
	require.NoError(t, err)

	sn, err := OpenNote(recipient, box)
	require.NoError(t, err)
	require.Equal(t, []byte("invoice 17"), sn.Memo)
	require.Equal(t, 0, n.Secret.Cmp(sn.Note.Secret))
	require.True(t, n.Amount.Eq(sn.Note.Amount))

	_, err = OpenNote(other, box)
	require.True(t, errors.Is(err, ErrNotRecipient))

	box[len(box)-1] ^= 1
	_, err = OpenNote(recipient, box)
	require.True(t, errors.Is(err, ErrNotRecipient))

	_, err = OpenNote(recipient, box[:20])
	require.True(t, errors.Is(err, ErrNotRecipient))
}
