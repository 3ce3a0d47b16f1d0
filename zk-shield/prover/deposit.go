package prover

import (
	"math/big"

	"github.com/kysee/zkshield/utils"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/pkg/errors"
)

// BuildDeposit builds the witness that binds a new note to its commitment.
// A non-nil declared commitment must equal the recomputed one.
func (b *Builder) BuildDeposit(n *types.Note, declared *big.Int) (*types.DepositWitness, types.PublicInputs, error) {
	if n == nil {
		return nil, nil, errors.New("nil note")
	}
	if err := checkAmount(n.Amount); err != nil {
		return nil, nil, err
	}
	if n.Amount.IsZero() {
		return nil, nil, errors.Wrap(types.ErrInvalidAmount, "deposit amount must be greater than zero")
	}
	if err := types.VerifyNote(b.hasher, n, declared, nil); err != nil {
		return nil, nil, err
	}
	cm, err := n.Commitment(b.hasher)
	if err != nil {
		return nil, nil, err
	}
	w := &types.DepositWitness{
		Secret:     utils.Dec(n.Secret),
		Amount:     n.Amount.Dec(),
		TokenMint:  utils.Dec(n.TokenMint),
		Blinding:   utils.Dec(n.Blinding),
		Commitment: utils.Dec(cm),
	}
	return w, w.PublicInputs(), nil
}
