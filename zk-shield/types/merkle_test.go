package types

import (
	"math/big"
	"testing"

	"github.com/kysee/zkshield/utils"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestMerkleProofComputeRoot(t *testing.T) {
	h := utils.NewPoseidonHasher()
	leaf, sib0, sib1 := big.NewInt(5), big.NewInt(6), big.NewInt(7)

	// leaf is the right child at level 0 and the left child at level 1
	l1, err := h.Hash(sib0, leaf)
	require.NoError(t, err)
	root, err := h.Hash(l1, sib1)
	require.NoError(t, err)

	p := &MerkleProof{
		Leaf:         leaf,
		LeafIndex:    1,
		PathElements: []*big.Int{sib0, sib1},
		PathIndices:  []uint8{1, 0},
		Root:         root,
	}
	require.NoError(t, p.Verify(h))
	require.Equal(t, 2, p.Height())

	elems, idx := p.PathStrings()
	require.Equal(t, []string{"6", "7"}, elems)
	require.Equal(t, []string{"1", "0"}, idx)

	p.PathIndices[0] = 0
	require.True(t, errors.Is(p.Verify(h), ErrInvalidInclusionProof))
	p.PathIndices[0] = 1

	p.Root = nil
	require.True(t, errors.Is(p.Verify(h), ErrInvalidInclusionProof))
	p.Root = root

	p.PathIndices[0] = 2
	_, err = p.ComputeRoot(h)
	require.True(t, errors.Is(err, ErrInvalidInclusionProof))

	p.PathIndices = p.PathIndices[:1]
	_, err = p.ComputeRoot(h)
	require.True(t, errors.Is(err, ErrInvalidInclusionProof))
}

func TestPublicInputsBytes(t *testing.T) {
	w := &WithdrawWitness{MerkleRoot: "1", Receiver: "2", Nullifier: "3", Amount: "258"}
	bz, err := w.PublicInputs().Bytes()
	require.NoError(t, err)
	require.Len(t, bz, 4)
	require.Equal(t, byte(1), bz[0][31])
	require.Equal(t, byte(1), bz[3][30])
	require.Equal(t, byte(2), bz[3][31])

	pw := &PartialWithdrawWitness{WithdrawWitness: *w, WithdrawAmount: "9"}
	require.Equal(t, PublicInputs{"1", "3", "2", "9"}, pw.PublicInputs())
	require.Equal(t, KindPartialWithdraw, pw.Kind())

	bad := PublicInputs{utils.FieldModulus().String()}
	_, err = bad.Bytes()
	require.True(t, errors.Is(err, ErrFieldOverflow))
}
