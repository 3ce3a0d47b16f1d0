package codec

import (
	"encoding/json"
	"math/big"

	"github.com/kysee/zkshield/utils"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/pkg/errors"
)

// SnarkJSProof is a proof.json as written by snarkjs.
type SnarkJSProof struct {
	PiA      []string   `json:"pi_a"`
	PiB      [][]string `json:"pi_b"`
	PiC      []string   `json:"pi_c"`
	Protocol string     `json:"protocol"`
	Curve    string     `json:"curve"`
}

// SnarkJSVerifyingKey is a verification_key.json as written by snarkjs.
type SnarkJSVerifyingKey struct {
	Protocol string     `json:"protocol"`
	Curve    string     `json:"curve"`
	NPublic  int        `json:"nPublic"`
	VkAlpha1 []string   `json:"vk_alpha_1"`
	VkBeta2  [][]string `json:"vk_beta_2"`
	VkGamma2 [][]string `json:"vk_gamma_2"`
	VkDelta2 [][]string `json:"vk_delta_2"`
	IC       [][]string `json:"IC"`
}

func ParseSnarkJSProof(data []byte) (*Proof, error) {
	var sp SnarkJSProof
	if err := json.Unmarshal(data, &sp); err != nil {
		return nil, errors.Wrap(err, "decode snarkjs proof")
	}
	return sp.ToProof()
}

func (sp *SnarkJSProof) ToProof() (*Proof, error) {
	a, err := g1FromStrings(sp.PiA)
	if err != nil {
		return nil, errors.Wrap(err, "pi_a")
	}
	b, err := g2FromStrings(sp.PiB)
	if err != nil {
		return nil, errors.Wrap(err, "pi_b")
	}
	c, err := g1FromStrings(sp.PiC)
	if err != nil {
		return nil, errors.Wrap(err, "pi_c")
	}
	return &Proof{A: *a, B: *b, C: *c}, nil
}

func ParseSnarkJSVerifyingKey(data []byte) (*VerifyingKey, error) {
	var sk SnarkJSVerifyingKey
	if err := json.Unmarshal(data, &sk); err != nil {
		return nil, errors.Wrap(err, "decode snarkjs verifying key")
	}
	return sk.ToVerifyingKey()
}

func (sk *SnarkJSVerifyingKey) ToVerifyingKey() (*VerifyingKey, error) {
	if sk.NPublic != 0 && len(sk.IC) != sk.NPublic+1 {
		return nil, errors.Wrapf(types.ErrMalformedPoint, "nPublic is %d but IC has %d points", sk.NPublic, len(sk.IC))
	}
	vk := &VerifyingKey{IC: make([]G1Point, len(sk.IC))}
	alpha, err := g1FromStrings(sk.VkAlpha1)
	if err != nil {
		return nil, errors.Wrap(err, "vk_alpha_1")
	}
	vk.Alpha = *alpha
	for _, g2 := range []struct {
		name string
		src  [][]string
		dst  *G2Point
	}{
		{"vk_beta_2", sk.VkBeta2, &vk.Beta},
		{"vk_gamma_2", sk.VkGamma2, &vk.Gamma},
		{"vk_delta_2", sk.VkDelta2, &vk.Delta},
	} {
		p, err := g2FromStrings(g2.src)
		if err != nil {
			return nil, errors.Wrap(err, g2.name)
		}
		*g2.dst = *p
	}
	for i, ic := range sk.IC {
		p, err := g1FromStrings(ic)
		if err != nil {
			return nil, errors.Wrapf(err, "IC[%d]", i)
		}
		vk.IC[i] = *p
	}
	return vk, nil
}

// ParsePublicSignals reads a snarkjs public.json.
func ParsePublicSignals(data []byte) (types.PublicInputs, error) {
	var signals []string
	if err := json.Unmarshal(data, &signals); err != nil {
		return nil, errors.Wrap(err, "decode public signals")
	}
	for i, s := range signals {
		if _, err := utils.ParseField(s); err != nil {
			return nil, errors.Wrapf(err, "public signal %d", i)
		}
	}
	return types.PublicInputs(signals), nil
}

// g1FromStrings accepts an affine pair or a projective triple with z = 1.
func g1FromStrings(ss []string) (*G1Point, error) {
	if len(ss) != 2 && len(ss) != 3 {
		return nil, errors.Wrapf(types.ErrMalformedPoint, "G1 needs 2 or 3 coordinates, got %d", len(ss))
	}
	x, err := utils.ParseWord(ss[0])
	if err != nil {
		return nil, err
	}
	y, err := utils.ParseWord(ss[1])
	if err != nil {
		return nil, err
	}
	if len(ss) == 3 && !isWord(ss[2], 1) {
		return nil, errors.Wrapf(types.ErrMalformedPoint, "G1 z is %q, want 1", ss[2])
	}
	return &G1Point{X: x, Y: y}, nil
}

// g2FromStrings reads [[x.real, x.imag], [y.real, y.imag], [1, 0]?].
func g2FromStrings(ss [][]string) (*G2Point, error) {
	if len(ss) != 2 && len(ss) != 3 {
		return nil, errors.Wrapf(types.ErrMalformedPoint, "G2 needs 2 or 3 coordinates, got %d", len(ss))
	}
	var p G2Point
	for i, dst := range []*[2]*big.Int{&p.X, &p.Y} {
		if len(ss[i]) != 2 {
			return nil, errors.Wrapf(types.ErrMalformedPoint, "G2 coordinate %d has %d parts", i, len(ss[i]))
		}
		for j := 0; j < 2; j++ {
			v, err := utils.ParseWord(ss[i][j])
			if err != nil {
				return nil, err
			}
			dst[j] = v
		}
	}
	if len(ss) == 3 && (len(ss[2]) != 2 || !isWord(ss[2][0], 1) || !isWord(ss[2][1], 0)) {
		return nil, errors.Wrapf(types.ErrMalformedPoint, "G2 z is %q, want [1 0]", ss[2])
	}
	return &p, nil
}

// isWord reports whether s parses to the small integer want.
func isWord(s string, want int64) bool {
	v, err := utils.ParseWord(s)
	return err == nil && v.Cmp(big.NewInt(want)) == 0
}
