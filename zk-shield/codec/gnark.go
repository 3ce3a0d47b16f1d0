package codec

import (
	groth16_bn254 "github.com/consensys/gnark/backend/groth16/bn254"
)

func FromGnarkProof(p *groth16_bn254.Proof) *Proof {
	return &Proof{
		A: G1FromAffine(&p.Ar),
		B: G2FromAffine(&p.Bs),
		C: G1FromAffine(&p.Krs),
	}
}

// FromGnarkVerifyingKey keeps only what the packed verifier reads. Keys of
// circuits using commitments are not representable.
func FromGnarkVerifyingKey(vk *groth16_bn254.VerifyingKey) *VerifyingKey {
	out := &VerifyingKey{
		Alpha: G1FromAffine(&vk.G1.Alpha),
		Beta:  G2FromAffine(&vk.G2.Beta),
		Gamma: G2FromAffine(&vk.G2.Gamma),
		Delta: G2FromAffine(&vk.G2.Delta),
		IC:    make([]G1Point, len(vk.G1.K)),
	}
	for i := range vk.G1.K {
		out.IC[i] = G1FromAffine(&vk.G1.K[i])
	}
	return out
}
