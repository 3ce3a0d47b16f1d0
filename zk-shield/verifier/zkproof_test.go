package verifier

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/kysee/zkshield/utils"
	"github.com/kysee/zkshield/zk-shield/codec"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// synthKey is a verifying key built from known discrete logs, so proofs for
// any public inputs can be forged in tests.
type synthKey struct {
	a, b, g, d int64
	ic         []int64
	packed     []byte
}

func g1Mul(k *big.Int) codec.G1Point {
	_, _, g1, _ := bn254.Generators()
	var p bn254.G1Affine
	p.ScalarMultiplication(&g1, k)
	return codec.G1FromAffine(&p)
}

func g2Mul(k *big.Int) codec.G2Point {
	_, _, _, g2 := bn254.Generators()
	var p bn254.G2Affine
	p.ScalarMultiplication(&g2, k)
	return codec.G2FromAffine(&p)
}

func newSynthKey(t *testing.T, nPublic int) *synthKey {
	k := &synthKey{a: 3, b: 5, g: 7, d: 11}
	vk := &codec.VerifyingKey{
		Alpha: g1Mul(big.NewInt(k.a)),
		Beta:  g2Mul(big.NewInt(k.b)),
		Gamma: g2Mul(big.NewInt(k.g)),
		Delta: g2Mul(big.NewInt(k.d)),
	}
	for i := 0; i <= nPublic; i++ {
		k.ic = append(k.ic, int64(13+2*i))
		vk.IC = append(vk.IC, g1Mul(big.NewInt(k.ic[i])))
	}
	var err error
	k.packed, err = codec.PackVerifyingKey(vk)
	require.NoError(t, err)
	return k
}

// prove returns A = u·G1, B = G2, C = c·G1 with u = ab + sg + cd.
func (k *synthKey) prove(t *testing.T, pub [][32]byte) []byte {
	r := utils.FieldModulus()
	s := big.NewInt(k.ic[0])
	for i, in := range pub {
		x := new(big.Int).SetBytes(in[:])
		s.Add(s, new(big.Int).Mul(x, big.NewInt(k.ic[i+1])))
	}
	c := big.NewInt(17)
	u := new(big.Int).Mul(big.NewInt(k.a), big.NewInt(k.b))
	u.Add(u, new(big.Int).Mul(s, big.NewInt(k.g)))
	u.Add(u, new(big.Int).Mul(c, big.NewInt(k.d)))
	u.Mod(u, r)

	proof, err := codec.PackProof(&codec.Proof{A: g1Mul(u), B: g2Mul(big.NewInt(1)), C: g1Mul(c)})
	require.NoError(t, err)
	return proof
}

func words(t *testing.T, vs ...*big.Int) [][32]byte {
	out := make([][32]byte, len(vs))
	for i, v := range vs {
		var err error
		out[i], err = utils.FieldBytes(v)
		require.NoError(t, err)
	}
	return out
}

func TestVerifyPacked(t *testing.T) {
	k := newSynthKey(t, 2)
	require.Len(t, k.packed, 644)

	pub := words(t, big.NewInt(1234), big.NewInt(5678))
	proof := k.prove(t, pub)
	require.NoError(t, VerifyPacked(k.packed, proof, pub))

	// another input
	bad := words(t, big.NewInt(1234), big.NewInt(5679))
	require.True(t, errors.Is(VerifyPacked(k.packed, proof, bad), types.ErrInvalidProof))

	// wrong arity
	require.True(t, errors.Is(VerifyPacked(k.packed, proof, pub[:1]), types.ErrInvalidProof))

	// inputs are reduced mod r before use
	shifted := words(t, new(big.Int).Add(big.NewInt(1234), utils.FieldModulus()), big.NewInt(5678))
	require.NoError(t, VerifyPacked(k.packed, proof, shifted))

	_, err := ValidateVerifyingKeyBlob(k.packed[:400])
	require.True(t, errors.Is(err, types.ErrInvalidVerifyingKey))

	empty, err := codec.PackVerifyingKey(&codec.VerifyingKey{
		Alpha: g1Mul(big.NewInt(1)), Beta: g2Mul(big.NewInt(1)), Gamma: g2Mul(big.NewInt(1)), Delta: g2Mul(big.NewInt(1)),
	})
	require.NoError(t, err)
	_, err = ValidateVerifyingKeyBlob(empty)
	require.True(t, errors.Is(err, types.ErrInvalidVerifyingKey))
}

func TestCompareVerifyingKeys(t *testing.T) {
	k := newSynthKey(t, 2)
	local := append([]byte(nil), k.packed...)
	r := CompareVerifyingKeys(k.packed, local, 0)
	require.True(t, r.Equal())

	for i := 0; i < 12; i++ {
		local[100+i] ^= 0xff
	}
	r = CompareVerifyingKeys(k.packed, local, 0)
	require.False(t, r.Equal())
	require.Equal(t, 12, r.Total)
	require.Len(t, r.Mismatches, DefaultParityLimit)
	require.Equal(t, 100, r.Mismatches[0])
	require.Contains(t, r.String(), "differ")

	r = CompareVerifyingKeys(k.packed, local[:600], 3)
	require.False(t, r.Equal())
	require.Len(t, r.Mismatches, 3)
}
