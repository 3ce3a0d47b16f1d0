package crypto

import (
	crand "crypto/rand"
	"math/big"

	tedwards "github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2s"
)

// ViewingKey receives sealed notes. Its public half is published as a
// base58 address.
type ViewingKey = eddsa.PrivateKey

func NewViewingKey() (*ViewingKey, error) {
	return eddsa.GenerateKey(crand.Reader)
}

// Address encodes the public half of k.
func Address(k *ViewingKey) string {
	return types.EncodeAccount(k.PublicKey.Bytes())
}

// PublicKeyFromAddress decodes a viewing address.
func PublicKeyFromAddress(addr string) (*eddsa.PublicKey, error) {
	bz, err := types.DecodeAccount(addr)
	if err != nil {
		return nil, err
	}
	pub := new(eddsa.PublicKey)
	if _, err := pub.SetBytes(bz); err != nil {
		return nil, errors.Wrap(err, "viewing address is not a curve point")
	}
	return pub, nil
}

// sharedSecret = BLAKE2s(x(scalar · other)).
func sharedSecret(k *eddsa.PrivateKey, other *eddsa.PublicKey) ([]byte, error) {
	if !other.A.IsOnCurve() {
		return nil, errors.New("public key is not on curve")
	}
	// the scalar follows the 32 byte public key in the private key encoding
	scalar := new(big.Int).SetBytes(k.Bytes()[32:64])
	var p tedwards.PointAffine
	p.ScalarMultiplication(&other.A, scalar)

	h, err := blake2s.New256(nil)
	if err != nil {
		return nil, err
	}
	x := p.X.Bytes()
	h.Write(x[:])
	return h.Sum(nil), nil
}

var kdfKey = []byte("zkshield:note-key")

// expandKey stretches secret to n bytes with keyed BLAKE2s over a counter.
func expandKey(secret []byte, n int) ([]byte, error) {
	if len(secret) != 32 {
		return nil, errors.New("secret must be 32 bytes")
	}
	var out []byte
	for counter := byte(1); len(out) < n; counter++ {
		if counter == 0 {
			return nil, errors.New("key expansion counter overflow")
		}
		h, err := blake2s.New256(kdfKey)
		if err != nil {
			return nil, err
		}
		h.Write(secret)
		h.Write([]byte{counter})
		out = h.Sum(out)
	}
	return out[:n], nil
}
