package codec

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/pkg/errors"
)

// ProofData is the envelope handed to a relayer: the packed proof and the
// 32-byte public inputs, hex encoded.
type ProofData struct {
	Proof        hexutil.Bytes   `json:"proof"`
	PublicInputs []hexutil.Bytes `json:"publicInputs"`
}

func NewProofData(proof []byte, publicInputs [][32]byte) *ProofData {
	pd := &ProofData{Proof: proof, PublicInputs: make([]hexutil.Bytes, len(publicInputs))}
	for i := range publicInputs {
		pd.PublicInputs[i] = append(hexutil.Bytes(nil), publicInputs[i][:]...)
	}
	return pd
}

// Inputs returns the public inputs as fixed-size words. Shorter inputs are
// left-padded; longer ones fail with ErrFieldOverflow.
func (pd *ProofData) Inputs() ([][32]byte, error) {
	out := make([][32]byte, len(pd.PublicInputs))
	for i, in := range pd.PublicInputs {
		if len(in) > 32 {
			return nil, errors.Wrapf(types.ErrFieldOverflow, "public input %d has %d bytes", i, len(in))
		}
		copy(out[i][32-len(in):], in)
	}
	return out, nil
}
