package prover

import (
	"github.com/kysee/zkshield/utils"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/pkg/errors"
)

// BuildConsolidate merges 1 to types.MaxConsolidateInputs notes into out.
func (b *Builder) BuildConsolidate(ins []InputNote, out *types.Note) (*types.ConsolidateWitness, types.PublicInputs, error) {
	if len(ins) < 1 || len(ins) > types.MaxConsolidateInputs {
		return nil, nil, errors.Wrapf(types.ErrInvalidInputCount, "want 1 to %d inputs, got %d", types.MaxConsolidateInputs, len(ins))
	}
	s, err := b.checkSpends(ins)
	if err != nil {
		return nil, nil, err
	}
	cms, outTotal, err := b.checkOutputs(s.token, out)
	if err != nil {
		return nil, nil, err
	}
	if err := conserve(s.total, outTotal); err != nil {
		return nil, nil, err
	}
	w := &types.ConsolidateWitness{
		SpendInputs:   s.spendInputs(ins),
		TokenMint:     utils.Dec(s.token),
		MerkleRoot:    utils.Dec(s.root),
		OutSecret:     utils.Dec(out.Secret),
		OutAmount:     out.Amount.Dec(),
		OutBlinding:   utils.Dec(out.Blinding),
		OutCommitment: utils.Dec(cms[0]),
	}
	return w, w.PublicInputs(), nil
}
