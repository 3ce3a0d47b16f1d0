package prover

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/kysee/zkshield/utils"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/pkg/errors"
)

// BuildWithdraw releases the whole note to an external receiver.
func (b *Builder) BuildWithdraw(in InputNote, receiver *big.Int) (*types.WithdrawWitness, types.PublicInputs, error) {
	w, s, err := b.withdrawBase(in, receiver)
	if err != nil {
		return nil, nil, err
	}
	if s.total.IsZero() {
		return nil, nil, errors.Wrap(types.ErrInvalidAmount, "withdraw amount must be greater than zero")
	}
	return w, w.PublicInputs(), nil
}

// BuildPartialWithdraw releases withdrawAmount to receiver and re-shields
// the rest of the note as change.
func (b *Builder) BuildPartialWithdraw(in InputNote, receiver *big.Int, withdrawAmount *uint256.Int, change *types.Note) (*types.PartialWithdrawWitness, types.PublicInputs, error) {
	if err := checkAmount(withdrawAmount); err != nil {
		return nil, nil, err
	}
	if withdrawAmount.IsZero() {
		return nil, nil, errors.Wrap(types.ErrInvalidAmount, "withdraw amount must be greater than zero")
	}
	base, s, err := b.withdrawBase(in, receiver)
	if err != nil {
		return nil, nil, err
	}
	cms, changeTotal, err := b.checkOutputs(s.token, change)
	if err != nil {
		return nil, nil, err
	}
	out, overflow := new(uint256.Int).AddOverflow(withdrawAmount, changeTotal)
	if overflow {
		return nil, nil, errors.Wrap(types.ErrAmountMismatch, "withdraw plus change overflows")
	}
	if err := conserve(s.total, out); err != nil {
		return nil, nil, err
	}

	w := &types.PartialWithdrawWitness{
		WithdrawWitness:  *base,
		WithdrawAmount:   withdrawAmount.Dec(),
		ChangeSecret:     utils.Dec(change.Secret),
		ChangeAmount:     change.Amount.Dec(),
		ChangeBlinding:   utils.Dec(change.Blinding),
		ChangeCommitment: utils.Dec(cms[0]),
	}
	return w, w.PublicInputs(), nil
}

func (b *Builder) withdrawBase(in InputNote, receiver *big.Int) (*types.WithdrawWitness, *spendSet, error) {
	if err := utils.CheckField(receiver); err != nil {
		return nil, nil, errors.Wrap(err, "receiver")
	}
	s, err := b.checkSpends([]InputNote{in})
	if err != nil {
		return nil, nil, err
	}
	return &types.WithdrawWitness{
		Secret:       utils.Dec(in.Note.Secret),
		Amount:       in.Note.Amount.Dec(),
		TokenMint:    utils.Dec(s.token),
		Blinding:     utils.Dec(in.Note.Blinding),
		Rho:          utils.Dec(in.Note.Rho),
		PathElements: s.paths[0],
		PathIndices:  s.indices[0],
		MerkleRoot:   utils.Dec(s.root),
		Nullifier:    utils.Dec(s.nullifiers[0]),
		Receiver:     utils.Dec(receiver),
	}, s, nil
}
