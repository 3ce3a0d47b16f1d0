package codec

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/kysee/zkshield/utils"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/pkg/errors"
)

const (
	G1Size    = 64
	G2Size    = 128
	ProofSize = G1Size + G2Size + G1Size

	// VerifyingKeyHeaderSize covers alpha, beta, gamma, delta and the IC count.
	VerifyingKeyHeaderSize = G1Size + 3*G2Size + 4
)

// G1Point is an affine point with X, Y in the base field.
type G1Point struct {
	X, Y *big.Int
}

// G2Point is an affine point over the quadratic extension.
// Index 0 is the real part, index 1 the imaginary part.
type G2Point struct {
	X, Y [2]*big.Int
}

// PackG1 encodes x‖y, each 32 bytes big-endian.
func PackG1(x, y *big.Int) ([G1Size]byte, error) {
	var out [G1Size]byte
	for i, c := range []*big.Int{x, y} {
		bz, err := utils.FieldBytes(c)
		if err != nil {
			return out, err
		}
		copy(out[i*32:], bz[:])
	}
	return out, nil
}

// PackG2 encodes the coordinates imaginary part first:
// x.imag‖x.real‖y.imag‖y.real.
func PackG2(xReal, xImag, yReal, yImag *big.Int) ([G2Size]byte, error) {
	var out [G2Size]byte
	for i, c := range []*big.Int{xImag, xReal, yImag, yReal} {
		bz, err := utils.FieldBytes(c)
		if err != nil {
			return out, err
		}
		copy(out[i*32:], bz[:])
	}
	return out, nil
}

func UnpackG1(bz []byte) (*G1Point, error) {
	if len(bz) != G1Size {
		return nil, errors.Wrapf(types.ErrMalformedPoint, "G1 encoding has %d bytes", len(bz))
	}
	return &G1Point{
		X: new(big.Int).SetBytes(bz[:32]),
		Y: new(big.Int).SetBytes(bz[32:64]),
	}, nil
}

func UnpackG2(bz []byte) (*G2Point, error) {
	if len(bz) != G2Size {
		return nil, errors.Wrapf(types.ErrMalformedPoint, "G2 encoding has %d bytes", len(bz))
	}
	word := func(i int) *big.Int { return new(big.Int).SetBytes(bz[i*32 : (i+1)*32]) }
	return &G2Point{
		X: [2]*big.Int{word(1), word(0)},
		Y: [2]*big.Int{word(3), word(2)},
	}, nil
}

func (p *G1Point) Pack() ([G1Size]byte, error) {
	return PackG1(p.X, p.Y)
}

func (p *G2Point) Pack() ([G2Size]byte, error) {
	return PackG2(p.X[0], p.X[1], p.Y[0], p.Y[1])
}

func (p *G1Point) Equal(o *G1Point) bool {
	return p.X.Cmp(o.X) == 0 && p.Y.Cmp(o.Y) == 0
}

func (p *G2Point) Equal(o *G2Point) bool {
	return p.X[0].Cmp(o.X[0]) == 0 && p.X[1].Cmp(o.X[1]) == 0 &&
		p.Y[0].Cmp(o.Y[0]) == 0 && p.Y[1].Cmp(o.Y[1]) == 0
}

func setCoordinate(e *fp.Element, v *big.Int) error {
	bz, err := utils.FieldBytes(v)
	if err != nil {
		return err
	}
	if err := e.SetBytesCanonical(bz[:]); err != nil {
		return errors.Wrapf(types.ErrMalformedPoint, "coordinate %s is not below the base field order", v)
	}
	return nil
}

// Affine converts p to a curve point, checking it lies on the curve.
func (p *G1Point) Affine() (bn254.G1Affine, error) {
	var a bn254.G1Affine
	if err := setCoordinate(&a.X, p.X); err != nil {
		return a, err
	}
	if err := setCoordinate(&a.Y, p.Y); err != nil {
		return a, err
	}
	if !a.IsOnCurve() {
		return a, errors.Wrap(types.ErrMalformedPoint, "G1 point is not on the curve")
	}
	return a, nil
}

// Affine converts p to a curve point, checking curve and subgroup membership.
func (p *G2Point) Affine() (bn254.G2Affine, error) {
	var a bn254.G2Affine
	for _, c := range []struct {
		e *fp.Element
		v *big.Int
	}{
		{&a.X.A0, p.X[0]}, {&a.X.A1, p.X[1]},
		{&a.Y.A0, p.Y[0]}, {&a.Y.A1, p.Y[1]},
	} {
		if err := setCoordinate(c.e, c.v); err != nil {
			return a, err
		}
	}
	if !a.IsOnCurve() || !a.IsInSubGroup() {
		return a, errors.Wrap(types.ErrMalformedPoint, "G2 point is not in the prime order subgroup")
	}
	return a, nil
}

func G1FromAffine(a *bn254.G1Affine) G1Point {
	return G1Point{X: a.X.BigInt(new(big.Int)), Y: a.Y.BigInt(new(big.Int))}
}

func G2FromAffine(a *bn254.G2Affine) G2Point {
	return G2Point{
		X: [2]*big.Int{a.X.A0.BigInt(new(big.Int)), a.X.A1.BigInt(new(big.Int))},
		Y: [2]*big.Int{a.Y.A0.BigInt(new(big.Int)), a.Y.A1.BigInt(new(big.Int))},
	}
}
