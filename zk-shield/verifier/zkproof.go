package verifier

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/kysee/zkshield/zk-shield/codec"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/pkg/errors"
)

// ValidateVerifyingKeyBlob checks that bz parses as a packed verifying key
// with at least the constant IC point.
func ValidateVerifyingKeyBlob(bz []byte) (*codec.VerifyingKey, error) {
	vk, err := codec.UnpackVerifyingKey(bz)
	if err != nil {
		return nil, errors.Wrap(types.ErrInvalidVerifyingKey, err.Error())
	}
	if len(vk.IC) == 0 {
		return nil, errors.Wrap(types.ErrInvalidVerifyingKey, "empty IC")
	}
	return vk, nil
}

// VerifyPacked checks a packed Groth16 proof against a packed verifying key:
//
//	e(A, B) · e(vk_x, -γ) · e(C, -δ) · e(α, -β) = 1
//
// where vk_x = IC[0] + Σ x_i·IC[i+1]. Public inputs are reduced mod r.
func VerifyPacked(vkBytes, proofBytes []byte, publicInputs [][32]byte) error {
	vk, err := ValidateVerifyingKeyBlob(vkBytes)
	if err != nil {
		return err
	}
	if len(vk.IC) != len(publicInputs)+1 {
		return errors.Wrapf(types.ErrInvalidProof, "key takes %d public inputs, got %d", len(vk.IC)-1, len(publicInputs))
	}
	proof, err := codec.UnpackProof(proofBytes)
	if err != nil {
		return errors.Wrap(types.ErrInvalidProof, err.Error())
	}

	a, err := proof.A.Affine()
	if err != nil {
		return errors.Wrap(types.ErrInvalidProof, err.Error())
	}
	b, err := proof.B.Affine()
	if err != nil {
		return errors.Wrap(types.ErrInvalidProof, err.Error())
	}
	c, err := proof.C.Affine()
	if err != nil {
		return errors.Wrap(types.ErrInvalidProof, err.Error())
	}

	vkX, err := accumulateIC(vk.IC, publicInputs)
	if err != nil {
		return err
	}
	alpha, err := vk.Alpha.Affine()
	if err != nil {
		return errors.Wrap(types.ErrInvalidVerifyingKey, err.Error())
	}
	var negBeta, negGamma, negDelta bn254.G2Affine
	for _, g2 := range []struct {
		src *codec.G2Point
		dst *bn254.G2Affine
	}{{&vk.Beta, &negBeta}, {&vk.Gamma, &negGamma}, {&vk.Delta, &negDelta}} {
		p, err := g2.src.Affine()
		if err != nil {
			return errors.Wrap(types.ErrInvalidVerifyingKey, err.Error())
		}
		g2.dst.Neg(&p)
	}

	ok, err := bn254.PairingCheck(
		[]bn254.G1Affine{a, vkX, c, alpha},
		[]bn254.G2Affine{b, negGamma, negDelta, negBeta},
	)
	if err != nil {
		return errors.Wrap(types.ErrInvalidProof, err.Error())
	}
	if !ok {
		return errors.Wrap(types.ErrInvalidProof, "pairing check failed")
	}
	return nil
}

func accumulateIC(ic []codec.G1Point, inputs [][32]byte) (bn254.G1Affine, error) {
	acc, err := ic[0].Affine()
	if err != nil {
		return acc, errors.Wrap(types.ErrInvalidVerifyingKey, err.Error())
	}
	for i := range inputs {
		p, err := ic[i+1].Affine()
		if err != nil {
			return acc, errors.Wrapf(types.ErrInvalidVerifyingKey, "ic[%d]: %v", i+1, err)
		}
		var x fr.Element
		x.SetBytes(inputs[i][:])
		var term bn254.G1Affine
		term.ScalarMultiplication(&p, x.BigInt(new(big.Int)))
		acc.Add(&acc, &term)
	}
	return acc, nil
}
