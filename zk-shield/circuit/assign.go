package circuit

import (
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/pkg/errors"
)

// New returns an empty circuit of kind sized for the tree height and, for
// N-input circuits, the number of inputs.
func New(kind types.CircuitKind, height, arity int) (frontend.Circuit, error) {
	switch kind {
	case types.KindDeposit:
		return &DepositCircuit{}, nil
	case types.KindTransfer:
		return &TransferCircuit{PathElements: variables(height), PathIndices: variables(height)}, nil
	case types.KindTransfer2:
		return newMultiTransfer(2, height), nil
	case types.KindTransfer4:
		return newMultiTransfer(4, height), nil
	case types.KindWithdraw:
		return &WithdrawCircuit{PathElements: variables(height), PathIndices: variables(height)}, nil
	case types.KindPartialWithdraw:
		return &PartialWithdrawCircuit{PathElements: variables(height), PathIndices: variables(height)}, nil
	case types.KindConsolidate:
		if arity < 1 || arity > types.MaxConsolidateInputs {
			return nil, errors.Wrapf(types.ErrInvalidInputCount, "consolidate arity %d", arity)
		}
		return &ConsolidateCircuit{Nullifiers: variables(arity), In: newInputs(arity, height)}, nil
	}
	return nil, errors.Errorf("unknown circuit kind %q", kind)
}

func newMultiTransfer(n, height int) *MultiTransferCircuit {
	return &MultiTransferCircuit{Nullifiers: variables(n), In: newInputs(n, height)}
}

// Compile builds the R1CS of a circuit for BN254.
func Compile(kind types.CircuitKind, height, arity int) (constraint.ConstraintSystem, error) {
	c, err := New(kind, height, arity)
	if err != nil {
		return nil, err
	}
	return frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, c)
}

// Shape returns the circuit kind, tree height and input arity a witness needs.
func Shape(w types.Witness) (kind types.CircuitKind, height, arity int) {
	switch w := w.(type) {
	case *types.TransferWitness:
		return w.Kind(), len(w.PathElements), 1
	case *types.MultiTransferWitness:
		return w.Kind(), pathHeight(w.PathElements), w.Arity()
	case *types.WithdrawWitness:
		return w.Kind(), len(w.PathElements), 1
	case *types.PartialWithdrawWitness:
		return w.Kind(), len(w.PathElements), 1
	case *types.ConsolidateWitness:
		return w.Kind(), pathHeight(w.PathElements), w.Arity()
	}
	return w.Kind(), 0, 0
}

func pathHeight(paths [][]string) int {
	if len(paths) == 0 {
		return 0
	}
	return len(paths[0])
}

// Assign converts a witness record into a full circuit assignment.
func Assign(w types.Witness) (frontend.Circuit, error) {
	switch w := w.(type) {
	case *types.DepositWitness:
		return &DepositCircuit{
			Computed:   w.Commitment,
			Commitment: w.Commitment,
			Secret:     w.Secret,
			Amount:     w.Amount,
			TokenMint:  w.TokenMint,
			Blinding:   w.Blinding,
		}, nil
	case *types.TransferWitness:
		return &TransferCircuit{
			Root:         w.MerkleRoot,
			Nullifier:    w.Nullifier,
			InSecret:     w.InSecret,
			InAmount:     w.InAmount,
			TokenMint:    w.TokenMint,
			InBlinding:   w.InBlinding,
			InRho:        w.InRho,
			PathElements: vars(w.PathElements),
			PathIndices:  vars(w.PathIndices),
			Out:          assignOutputs(w.OutSecret, w.OutAmount, w.OutBlinding, w.OutCommitment),
		}, nil
	case *types.MultiTransferWitness:
		if n := w.Arity(); n != 2 && n != 4 {
			return nil, errors.Wrapf(types.ErrInvalidInputCount, "transfer arity %d", n)
		}
		return &MultiTransferCircuit{
			Root:       w.MerkleRoot,
			Nullifiers: vars(w.Nullifiers),
			TokenMint:  w.TokenMint,
			In:         assignInputs(&w.SpendInputs),
			Out:        assignOutputs(w.OutSecret, w.OutAmount, w.OutBlinding, w.OutCommitment),
		}, nil
	case *types.WithdrawWitness:
		return &WithdrawCircuit{
			Root:         w.MerkleRoot,
			Receiver:     w.Receiver,
			Nullifier:    w.Nullifier,
			Amount:       w.Amount,
			Secret:       w.Secret,
			TokenMint:    w.TokenMint,
			Blinding:     w.Blinding,
			Rho:          w.Rho,
			PathElements: vars(w.PathElements),
			PathIndices:  vars(w.PathIndices),
		}, nil
	case *types.PartialWithdrawWitness:
		return &PartialWithdrawCircuit{
			Root:           w.MerkleRoot,
			Nullifier:      w.Nullifier,
			Receiver:       w.Receiver,
			WithdrawAmount: w.WithdrawAmount,
			Secret:         w.Secret,
			Amount:         w.Amount,
			TokenMint:      w.TokenMint,
			Blinding:       w.Blinding,
			Rho:            w.Rho,
			PathElements:   vars(w.PathElements),
			PathIndices:    vars(w.PathIndices),
			Change: OutputNote{
				Secret:     w.ChangeSecret,
				Amount:     w.ChangeAmount,
				Blinding:   w.ChangeBlinding,
				Commitment: w.ChangeCommitment,
			},
		}, nil
	case *types.ConsolidateWitness:
		return &ConsolidateCircuit{
			Nullifiers: vars(w.Nullifiers),
			Root:       w.MerkleRoot,
			TokenMint:  w.TokenMint,
			In:         assignInputs(&w.SpendInputs),
			Out: OutputNote{
				Secret:     w.OutSecret,
				Amount:     w.OutAmount,
				Blinding:   w.OutBlinding,
				Commitment: w.OutCommitment,
			},
		}, nil
	}
	return nil, errors.Errorf("no circuit for witness %T", w)
}

func vars(ss []string) []frontend.Variable {
	out := make([]frontend.Variable, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func vars2(ss [][]string) [][]frontend.Variable {
	out := make([][]frontend.Variable, len(ss))
	for i, s := range ss {
		out[i] = vars(s)
	}
	return out
}

func assignInputs(si *types.SpendInputs) Inputs {
	return Inputs{
		Secret:       vars(si.InSecret),
		Amount:       vars(si.InAmount),
		Blinding:     vars(si.InBlinding),
		Rho:          vars(si.InRho),
		PathElements: vars2(si.PathElements),
		PathIndices:  vars2(si.PathIndices),
	}
}

func assignOutputs(secret, amount, blinding, commitment [2]string) [2]OutputNote {
	var out [2]OutputNote
	for i := range out {
		out[i] = OutputNote{Secret: secret[i], Amount: amount[i], Blinding: blinding[i], Commitment: commitment[i]}
	}
	return out
}
