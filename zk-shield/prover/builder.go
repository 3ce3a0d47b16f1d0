package prover

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/kysee/zkshield/utils"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/pkg/errors"
)

// InputNote is a note being spent together with its inclusion proof.
// Nullifier is optional; when set it must match the recomputed value.
type InputNote struct {
	Note      *types.Note
	Proof     *types.MerkleProof
	Nullifier *big.Int
}

// RootChecker accepts roots the verifier still considers valid.
type RootChecker interface {
	KnownRoot(root *big.Int) bool
}

type BuilderOption func(*Builder)

// WithRootChecker makes every spend fail with ErrUnknownRoot when its
// root is not accepted by rc.
func WithRootChecker(rc RootChecker) BuilderOption {
	return func(b *Builder) {
		b.roots = rc
	}
}

// Builder turns notes and inclusion proofs into circuit witnesses.
// It never mutates its inputs and never talks to a prover.
type Builder struct {
	hasher utils.Hasher
	roots  RootChecker
}

func NewBuilder(h utils.Hasher, opts ...BuilderOption) *Builder {
	b := &Builder{hasher: h}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) Hasher() utils.Hasher {
	return b.hasher
}

// spendSet is the checked view of the inputs of one spend.
type spendSet struct {
	root        *big.Int
	token       *big.Int
	total       *uint256.Int
	nullifiers  []*big.Int
	commitments []*big.Int
	paths       [][]string
	indices     [][]string
}

// checkSpends validates ins as distinct notes under one root. A note given
// twice would be counted twice in the input total, so a repeated nullifier
// fails with ErrDuplicateNullifier.
func (b *Builder) checkSpends(ins []InputNote) (*spendSet, error) {
	return b.collectSpends(ins, false)
}

// collectSpends is checkSpends with the repeat check optional. Only the
// padded 4-input build passes padded=true, after it has run checkSpends
// over its real inputs.
func (b *Builder) collectSpends(ins []InputNote, padded bool) (*spendSet, error) {
	if len(ins) == 0 {
		return nil, errors.Wrap(types.ErrInvalidInputCount, "no input notes")
	}
	s := &spendSet{total: new(uint256.Int)}
	seen := make(map[string]int, len(ins))
	for i, in := range ins {
		if in.Note == nil || in.Proof == nil {
			return nil, errors.Wrapf(types.ErrInvalidInputCount, "input %d lacks a note or a proof", i)
		}
		if err := checkAmount(in.Note.Amount); err != nil {
			return nil, errors.Wrapf(err, "input %d", i)
		}
		cm, err := in.Note.Commitment(b.hasher)
		if err != nil {
			return nil, err
		}
		if in.Proof.Leaf == nil || in.Proof.Leaf.Cmp(cm) != 0 {
			return nil, errors.Wrapf(types.ErrInvalidInclusionProof, "input %d: proof leaf is not the note commitment", i)
		}
		if err := in.Proof.Verify(b.hasher); err != nil {
			return nil, errors.Wrapf(err, "input %d", i)
		}
		nf, err := in.Note.Nullifier(b.hasher)
		if err != nil {
			return nil, err
		}
		if in.Nullifier != nil && in.Nullifier.Cmp(nf) != 0 {
			return nil, errors.Wrapf(types.ErrNullifierMismatch, "input %d: declared %s, computed %s", i, in.Nullifier, nf)
		}
		if j, ok := seen[nf.String()]; ok && !padded {
			return nil, errors.Wrapf(types.ErrDuplicateNullifier, "inputs %d and %d spend the same note", j, i)
		}
		seen[nf.String()] = i

		if i == 0 {
			s.root = in.Proof.Root
			s.token = in.Note.TokenMint
			if b.roots != nil && !b.roots.KnownRoot(s.root) {
				return nil, errors.Wrapf(types.ErrUnknownRoot, "root %s", s.root)
			}
		} else {
			if in.Proof.Root.Cmp(s.root) != 0 {
				return nil, errors.Wrapf(types.ErrRootMismatch, "input %d: root %s, expected %s", i, in.Proof.Root, s.root)
			}
			if in.Proof.Height() != ins[0].Proof.Height() {
				return nil, errors.Wrapf(types.ErrRootMismatch, "input %d: path height %d, expected %d", i, in.Proof.Height(), ins[0].Proof.Height())
			}
			if in.Note.TokenMint.Cmp(s.token) != 0 {
				return nil, errors.Wrapf(types.ErrTokenMismatch, "input %d", i)
			}
		}

		if _, overflow := s.total.AddOverflow(s.total, in.Note.Amount); overflow {
			return nil, errors.Wrap(types.ErrAmountMismatch, "input total overflows")
		}
		elems, idx := in.Proof.PathStrings()
		s.paths = append(s.paths, elems)
		s.indices = append(s.indices, idx)
		s.nullifiers = append(s.nullifiers, nf)
		s.commitments = append(s.commitments, cm)
	}
	return s, nil
}

func (s *spendSet) spendInputs(ins []InputNote) types.SpendInputs {
	si := types.SpendInputs{
		PathElements: s.paths,
		PathIndices:  s.indices,
		Nullifiers:   utils.DecAll(s.nullifiers),
	}
	for _, in := range ins {
		si.InSecret = append(si.InSecret, utils.Dec(in.Note.Secret))
		si.InAmount = append(si.InAmount, in.Note.Amount.Dec())
		si.InBlinding = append(si.InBlinding, utils.Dec(in.Note.Blinding))
		si.InRho = append(si.InRho, utils.Dec(in.Note.Rho))
	}
	return si
}

// outputSet checks output notes against the input token and returns their
// commitments and amount total.
func (b *Builder) checkOutputs(token *big.Int, outs ...*types.Note) ([]*big.Int, *uint256.Int, error) {
	total := new(uint256.Int)
	cms := make([]*big.Int, len(outs))
	for i, out := range outs {
		if out == nil {
			return nil, nil, errors.Errorf("output %d is nil", i)
		}
		if err := checkAmount(out.Amount); err != nil {
			return nil, nil, errors.Wrapf(err, "output %d", i)
		}
		if out.TokenMint.Cmp(token) != 0 {
			return nil, nil, errors.Wrapf(types.ErrTokenMismatch, "output %d", i)
		}
		cm, err := out.Commitment(b.hasher)
		if err != nil {
			return nil, nil, err
		}
		cms[i] = cm
		if _, overflow := total.AddOverflow(total, out.Amount); overflow {
			return nil, nil, errors.Wrap(types.ErrAmountMismatch, "output total overflows")
		}
	}
	return cms, total, nil
}

// checkAmount limits amounts to the 64-bit range the circuits constrain.
func checkAmount(v *uint256.Int) error {
	if v == nil {
		return errors.Wrap(types.ErrInvalidAmount, "nil amount")
	}
	if !v.IsUint64() {
		return errors.Wrapf(types.ErrInvalidAmount, "%s exceeds 64 bits", v.Dec())
	}
	return nil
}

func conserve(in, out *uint256.Int) error {
	if !in.Eq(out) {
		return errors.Wrapf(types.ErrAmountMismatch, "inputs %s, outputs %s", in.Dec(), out.Dec())
	}
	return nil
}
