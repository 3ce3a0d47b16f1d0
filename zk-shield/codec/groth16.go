package codec

import (
	"encoding/binary"

	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/pkg/errors"
)

// Proof is a Groth16 proof (A, B, C).
type Proof struct {
	A G1Point
	B G2Point
	C G1Point
}

// VerifyingKey is a Groth16 verifying key. IC holds one point per public
// input plus the constant term at IC[0].
type VerifyingKey struct {
	Alpha G1Point
	Beta  G2Point
	Gamma G2Point
	Delta G2Point
	IC    []G1Point
}

// NumPublic is the number of public inputs the key verifies.
func (vk *VerifyingKey) NumPublic() int {
	return len(vk.IC) - 1
}

// VerifyingKeySize is the packed length of a key with n IC points.
func VerifyingKeySize(n int) int {
	return VerifyingKeyHeaderSize + G1Size*n
}

// PackProof encodes a(64)‖b(128)‖c(64).
func PackProof(p *Proof) ([]byte, error) {
	out := make([]byte, 0, ProofSize)
	a, err := p.A.Pack()
	if err != nil {
		return nil, errors.Wrap(err, "proof.A")
	}
	b, err := p.B.Pack()
	if err != nil {
		return nil, errors.Wrap(err, "proof.B")
	}
	c, err := p.C.Pack()
	if err != nil {
		return nil, errors.Wrap(err, "proof.C")
	}
	out = append(out, a[:]...)
	out = append(out, b[:]...)
	return append(out, c[:]...), nil
}

func UnpackProof(bz []byte) (*Proof, error) {
	if len(bz) != ProofSize {
		return nil, errors.Wrapf(types.ErrMalformedPoint, "proof has %d bytes, expected %d", len(bz), ProofSize)
	}
	a, _ := UnpackG1(bz[:G1Size])
	b, _ := UnpackG2(bz[G1Size : G1Size+G2Size])
	c, _ := UnpackG1(bz[G1Size+G2Size:])
	return &Proof{A: *a, B: *b, C: *c}, nil
}

// PackVerifyingKey encodes
// alpha(64)‖beta(128)‖gamma(128)‖delta(128)‖u32le(len(IC))‖IC(64 each).
func PackVerifyingKey(vk *VerifyingKey) ([]byte, error) {
	out := make([]byte, 0, VerifyingKeySize(len(vk.IC)))
	alpha, err := vk.Alpha.Pack()
	if err != nil {
		return nil, errors.Wrap(err, "vk.alpha")
	}
	out = append(out, alpha[:]...)
	for _, g2 := range []struct {
		name string
		p    *G2Point
	}{{"vk.beta", &vk.Beta}, {"vk.gamma", &vk.Gamma}, {"vk.delta", &vk.Delta}} {
		bz, err := g2.p.Pack()
		if err != nil {
			return nil, errors.Wrap(err, g2.name)
		}
		out = append(out, bz[:]...)
	}
	out = binary.LittleEndian.AppendUint32(out, uint32(len(vk.IC)))
	for i := range vk.IC {
		bz, err := vk.IC[i].Pack()
		if err != nil {
			return nil, errors.Wrapf(err, "vk.ic[%d]", i)
		}
		out = append(out, bz[:]...)
	}
	return out, nil
}

func UnpackVerifyingKey(bz []byte) (*VerifyingKey, error) {
	if len(bz) < VerifyingKeyHeaderSize {
		return nil, errors.Wrapf(types.ErrMalformedPoint, "verifying key has %d bytes, header needs %d", len(bz), VerifyingKeyHeaderSize)
	}
	n := int(binary.LittleEndian.Uint32(bz[VerifyingKeyHeaderSize-4 : VerifyingKeyHeaderSize]))
	if len(bz) != VerifyingKeySize(n) {
		return nil, errors.Wrapf(types.ErrMalformedPoint, "verifying key has %d bytes, %d IC points need %d", len(bz), n, VerifyingKeySize(n))
	}

	vk := &VerifyingKey{IC: make([]G1Point, n)}
	off := 0
	alpha, _ := UnpackG1(bz[off : off+G1Size])
	vk.Alpha = *alpha
	off += G1Size
	for _, dst := range []*G2Point{&vk.Beta, &vk.Gamma, &vk.Delta} {
		p, _ := UnpackG2(bz[off : off+G2Size])
		*dst = *p
		off += G2Size
	}
	off += 4
	for i := range vk.IC {
		p, _ := UnpackG1(bz[off : off+G1Size])
		vk.IC[i] = *p
		off += G1Size
	}
	return vk, nil
}
