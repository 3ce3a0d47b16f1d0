package utils

import (
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	bn254mimc "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
	"github.com/iden3/go-iden3-crypto/poseidon"
	"github.com/pkg/errors"
)

const (
	HasherPoseidon  = "poseidon"
	HasherMiMC      = "mimc"
	HasherPoseidon2 = "poseidon2"
)

// Hasher is a fixed-arity hash over BN254 scalar field elements.
// Every component that hashes receives one explicitly; there is no
// process-wide instance.
type Hasher interface {
	Hash(inputs ...*big.Int) (*big.Int, error)
	Name() string
}

// HasherByName returns the hasher registered under name.
func HasherByName(name string) (Hasher, error) {
	switch strings.ToLower(name) {
	case "", HasherPoseidon:
		return NewPoseidonHasher(), nil
	case HasherMiMC:
		return NewMiMCHasher(), nil
	case HasherPoseidon2:
		return NewPoseidon2Hasher(), nil
	}
	return nil, errors.Errorf("unknown hasher: %s", name)
}

// PoseidonHasher is the circom-compatible Poseidon used by the on-chain program.
type PoseidonHasher struct{}

func NewPoseidonHasher() *PoseidonHasher {
	return &PoseidonHasher{}
}

func (*PoseidonHasher) Name() string { return HasherPoseidon }

func (*PoseidonHasher) Hash(inputs ...*big.Int) (*big.Int, error) {
	if err := checkInputs(inputs); err != nil {
		return nil, err
	}
	return poseidon.Hash(inputs)
}

// MiMCHasher hashes with MiMC-BN254. It is the native counterpart of
// gnark's std/hash/mimc and is what the reference circuits use.
type MiMCHasher struct{}

func NewMiMCHasher() *MiMCHasher {
	return &MiMCHasher{}
}

func (*MiMCHasher) Name() string { return HasherMiMC }

func (*MiMCHasher) Hash(inputs ...*big.Int) (*big.Int, error) {
	if err := checkInputs(inputs); err != nil {
		return nil, err
	}
	h := bn254mimc.NewMiMC()
	for _, in := range inputs {
		var elem fr.Element
		elem.SetBigInt(in)
		b := elem.Bytes()
		if _, err := h.Write(b[:]); err != nil {
			return nil, errors.Wrap(err, "mimc write")
		}
	}
	return new(big.Int).SetBytes(h.Sum(nil)), nil
}

// Poseidon2Hasher hashes with the Merkle-Damgard Poseidon2 construction.
type Poseidon2Hasher struct{}

func NewPoseidon2Hasher() *Poseidon2Hasher {
	return &Poseidon2Hasher{}
}

func (*Poseidon2Hasher) Name() string { return HasherPoseidon2 }

func (*Poseidon2Hasher) Hash(inputs ...*big.Int) (*big.Int, error) {
	if err := checkInputs(inputs); err != nil {
		return nil, err
	}
	h := poseidon2.NewMerkleDamgardHasher()
	for _, in := range inputs {
		var elem fr.Element
		elem.SetBigInt(in)
		b := elem.Bytes()
		if _, err := h.Write(b[:]); err != nil {
			return nil, errors.Wrap(err, "poseidon2 write")
		}
	}
	return new(big.Int).SetBytes(h.Sum(nil)), nil
}

func checkInputs(inputs []*big.Int) error {
	if len(inputs) == 0 {
		return errors.New("hash: no inputs")
	}
	for i, in := range inputs {
		if err := CheckField(in); err != nil {
			return errors.Wrapf(err, "hash input %d", i)
		}
	}
	return nil
}

// MustHash is Hash that panics. Use it only with inputs already known to be in the field.
func MustHash(h Hasher, inputs ...*big.Int) *big.Int {
	out, err := h.Hash(inputs...)
	if err != nil {
		panic(err)
	}
	return out
}
