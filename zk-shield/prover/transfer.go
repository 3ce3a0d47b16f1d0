package prover

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/kysee/zkshield/utils"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/pkg/errors"
)

// TransferVariant tells exact 4-input transfers from padded ones.
type TransferVariant int

const (
	TransferExact TransferVariant = iota
	TransferPadded
)

func (v TransferVariant) String() string {
	if v == TransferPadded {
		return "padded"
	}
	return "exact"
}

// Transfer4 is the result of a 4-input transfer build.
//
// For a padded build the first real input fills the empty slots and the
// second output (the change) is inflated by Compensation so the padded
// inputs still balance. CompensatedOutput is the note actually committed
// in place of outs[1]; the sender must keep it, not the original.
type Transfer4 struct {
	Kind              TransferVariant
	RealCount         int
	Witness           *types.MultiTransferWitness
	Public            types.PublicInputs
	CompensatedOutput *types.Note
	Compensation      *uint256.Int
}

// BuildTransfer spends one note into two outputs.
func (b *Builder) BuildTransfer(in InputNote, outs [2]*types.Note) (*types.TransferWitness, types.PublicInputs, error) {
	s, err := b.checkSpends([]InputNote{in})
	if err != nil {
		return nil, nil, err
	}
	cms, outTotal, err := b.checkOutputs(s.token, outs[0], outs[1])
	if err != nil {
		return nil, nil, err
	}
	if err := conserve(s.total, outTotal); err != nil {
		return nil, nil, err
	}

	w := &types.TransferWitness{
		InSecret:     utils.Dec(in.Note.Secret),
		InAmount:     in.Note.Amount.Dec(),
		TokenMint:    utils.Dec(s.token),
		InBlinding:   utils.Dec(in.Note.Blinding),
		InRho:        utils.Dec(in.Note.Rho),
		PathElements: s.paths[0],
		PathIndices:  s.indices[0],
		MerkleRoot:   utils.Dec(s.root),
		Nullifier:    utils.Dec(s.nullifiers[0]),
	}
	fillOutputs(&w.OutSecret, &w.OutAmount, &w.OutBlinding, &w.OutCommitment, outs, cms)
	return w, w.PublicInputs(), nil
}

// BuildTransfer2 spends two notes into two outputs.
func (b *Builder) BuildTransfer2(ins []InputNote, outs [2]*types.Note) (*types.MultiTransferWitness, types.PublicInputs, error) {
	if len(ins) != 2 {
		return nil, nil, errors.Wrapf(types.ErrInvalidInputCount, "want 2 inputs, got %d", len(ins))
	}
	return b.buildMulti(ins, outs, false)
}

// BuildTransfer4Exact spends exactly four real notes into two outputs.
func (b *Builder) BuildTransfer4Exact(ins []InputNote, outs [2]*types.Note) (*Transfer4, error) {
	if len(ins) != 4 {
		return nil, errors.Wrapf(types.ErrInvalidInputCount, "want 4 inputs, got %d", len(ins))
	}
	w, pub, err := b.buildMulti(ins, outs, false)
	if err != nil {
		return nil, err
	}
	return &Transfer4{Kind: TransferExact, RealCount: 4, Witness: w, Public: pub, Compensation: new(uint256.Int)}, nil
}

// BuildTransfer4Padded spends one to four real notes through the 4-input
// circuit. outs must balance the real inputs; the change output outs[1] is
// compensated for the duplicated padding slots.
func (b *Builder) BuildTransfer4Padded(ins []InputNote, outs [2]*types.Note) (*Transfer4, error) {
	realCount := len(ins)
	if realCount < 1 || realCount > 4 {
		return nil, errors.Wrapf(types.ErrInvalidInputCount, "want 1 to 4 inputs, got %d", realCount)
	}
	if realCount == 4 {
		return b.BuildTransfer4Exact(ins, outs)
	}

	// the real inputs must be distinct and balance before padding
	s, err := b.checkSpends(ins)
	if err != nil {
		return nil, err
	}
	_, outTotal, err := b.checkOutputs(s.token, outs[0], outs[1])
	if err != nil {
		return nil, err
	}
	if err := conserve(s.total, outTotal); err != nil {
		return nil, err
	}

	compensation := new(uint256.Int).Mul(uint256.NewInt(uint64(4-realCount)), ins[0].Note.Amount)
	changeAmount, overflow := new(uint256.Int).AddOverflow(outs[1].Amount, compensation)
	if overflow {
		return nil, errors.Wrap(types.ErrAmountMismatch, "compensated change overflows")
	}
	compensated, err := outs[1].WithAmount(changeAmount)
	if err != nil {
		return nil, err
	}

	padded := make([]InputNote, 4)
	copy(padded, ins)
	for i := realCount; i < 4; i++ {
		padded[i] = ins[0]
	}
	w, pub, err := b.buildMulti(padded, [2]*types.Note{outs[0], compensated}, true)
	if err != nil {
		return nil, err
	}
	return &Transfer4{
		Kind:              TransferPadded,
		RealCount:         realCount,
		Witness:           w,
		Public:            pub,
		CompensatedOutput: compensated,
		Compensation:      compensation,
	}, nil
}

// BuildTransferExact picks the exact-arity transfer circuit for 1, 2 or 4 inputs.
func (b *Builder) BuildTransferExact(ins []InputNote, outs [2]*types.Note) (types.Witness, types.PublicInputs, error) {
	switch len(ins) {
	case 1:
		return b.BuildTransfer(ins[0], outs)
	case 2:
		return b.BuildTransfer2(ins, outs)
	case 4:
		t, err := b.BuildTransfer4Exact(ins, outs)
		if err != nil {
			return nil, nil, err
		}
		return t.Witness, t.Public, nil
	default:
		return nil, nil, errors.Wrapf(types.ErrInvalidInputCount, "no exact transfer circuit for %d inputs", len(ins))
	}
}

func (b *Builder) buildMulti(ins []InputNote, outs [2]*types.Note, padded bool) (*types.MultiTransferWitness, types.PublicInputs, error) {
	s, err := b.collectSpends(ins, padded)
	if err != nil {
		return nil, nil, err
	}
	cms, outTotal, err := b.checkOutputs(s.token, outs[0], outs[1])
	if err != nil {
		return nil, nil, err
	}
	if err := conserve(s.total, outTotal); err != nil {
		return nil, nil, err
	}
	w := &types.MultiTransferWitness{
		SpendInputs: s.spendInputs(ins),
		TokenMint:   utils.Dec(s.token),
		MerkleRoot:  utils.Dec(s.root),
	}
	fillOutputs(&w.OutSecret, &w.OutAmount, &w.OutBlinding, &w.OutCommitment, outs, cms)
	return w, w.PublicInputs(), nil
}

func fillOutputs(secret, amount, blinding, commitment *[2]string, outs [2]*types.Note, cms []*big.Int) {
	for i, out := range outs {
		secret[i] = utils.Dec(out.Secret)
		amount[i] = out.Amount.Dec()
		blinding[i] = utils.Dec(out.Blinding)
		commitment[i] = utils.Dec(cms[i])
	}
}
