package merkle

import (
	"math/big"
	"testing"

	"github.com/kysee/zkshield/utils"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func bigFromString(t *testing.T, s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return v
}

func TestEmptyRoot(t *testing.T) {
	h := utils.NewPoseidonHasher()
	acc, err := New(h, DefaultHeight)
	require.NoError(t, err)

	// Poseidon zero root for height 20, as published for circom trees
	z := bigFromString(t, "15019797232609675441998260052101280400536945603062888308240081994073687793470")
	require.Equal(t, z, acc.Root())
	require.Equal(t, uint64(0), acc.NextIndex())
	require.True(t, acc.KnownRoot(z))

	zeros, err := ZeroHashes(h, 2)
	require.NoError(t, err)
	require.Equal(t, bigFromString(t, "14744269619966411208579211824598458697587494354926760081771325075741142829156"), zeros[1])
	require.Equal(t, bigFromString(t, "7423237065226347324353380772367382631490014989348495481811164164159255474657"), zeros[2])
}

func TestAppendAndProve(t *testing.T) {
	for _, h := range []utils.Hasher{utils.NewPoseidonHasher(), utils.NewMiMCHasher()} {
		acc, err := New(h, 4)
		require.NoError(t, err)

		var leaves []*big.Int
		for i := 0; i < 11; i++ {
			leaf := big.NewInt(int64(1000 + i))
			idx, root, err := acc.Append(leaf)
			require.NoError(t, err)
			require.Equal(t, uint64(i), idx)
			require.Equal(t, acc.Root(), root)
			leaves = append(leaves, leaf)
		}

		for i := range leaves {
			p, err := acc.GenerateProof(uint64(i))
			require.NoError(t, err, h.Name())
			require.Equal(t, leaves[i], p.Leaf)
			require.Len(t, p.PathElements, 4)
			require.NoError(t, p.Verify(h))
		}

		_, err = acc.GenerateProof(11)
		require.True(t, errors.Is(err, types.ErrLeafNotInserted))

		rebuilt, err := FromLeaves(h, 4, acc.Leaves())
		require.NoError(t, err)
		require.Equal(t, acc.Root(), rebuilt.Root())
	}
}

func TestRootMatchesDirectFold(t *testing.T) {
	h := utils.NewPoseidonHasher()
	acc, err := New(h, 2)
	require.NoError(t, err)
	_, _, err = acc.Append(big.NewInt(1))
	require.NoError(t, err)
	_, root, err := acc.Append(big.NewInt(2))
	require.NoError(t, err)

	// Poseidon(1, 2) is a published circomlib vector
	left := utils.MustHash(h, big.NewInt(1), big.NewInt(2))
	require.Equal(t, bigFromString(t, "7853200120776062878684798364095072458815029376092732009249414926327459813530"), left)

	zeros, err := ZeroHashes(h, 2)
	require.NoError(t, err)
	require.Equal(t, utils.MustHash(h, left, zeros[1]), root)
}

func TestTreeFull(t *testing.T) {
	acc, err := New(utils.NewMiMCHasher(), 2)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, _, err := acc.Append(big.NewInt(int64(i + 1)))
		require.NoError(t, err)
	}
	_, _, err = acc.Append(big.NewInt(5))
	require.True(t, errors.Is(err, types.ErrTreeFull))
	require.Equal(t, uint64(4), acc.NextIndex())

	_, _, err = acc.Append(utils.FieldModulus())
	require.True(t, errors.Is(err, types.ErrFieldOverflow))
}

func TestRootHistory(t *testing.T) {
	acc, err := New(utils.NewMiMCHasher(), 8)
	require.NoError(t, err)
	first := acc.Root()

	var afterFirst *big.Int
	for i := 0; i < RootHistorySize; i++ {
		_, root, err := acc.Append(big.NewInt(int64(i + 1)))
		require.NoError(t, err)
		if i == 0 {
			afterFirst = root
		}
	}
	// the empty root has been pushed out of the history, the first append has not
	require.False(t, acc.KnownRoot(first))
	require.True(t, acc.KnownRoot(afterFirst))
	require.Len(t, acc.Roots(), RootHistorySize)
	require.Equal(t, acc.Root(), acc.Roots()[0])

	idx, ok := acc.IndexOf(big.NewInt(5))
	require.True(t, ok)
	require.Equal(t, uint64(4), idx)
}

func TestLeafLookup(t *testing.T) {
	h := utils.NewPoseidonHasher()
	acc, err := FromLeaves(h, 3, []*big.Int{big.NewInt(7), big.NewInt(8), big.NewInt(7)})
	require.NoError(t, err)

	leaf, err := acc.Leaf(1)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(8), leaf)
	_, err = acc.Leaf(3)
	require.ErrorIs(t, err, types.ErrLeafNotInserted)

	idx, ok := acc.IndexOf(big.NewInt(7))
	require.True(t, ok)
	require.Equal(t, uint64(0), idx)
	_, ok = acc.IndexOf(big.NewInt(9))
	require.False(t, ok)
	require.Equal(t, uint64(8), acc.Capacity())
}
