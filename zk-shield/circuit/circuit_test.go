package circuit_test

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/test"
	"github.com/holiman/uint256"
	"github.com/kysee/zkshield/utils"
	"github.com/kysee/zkshield/zk-shield/circuit"
	"github.com/kysee/zkshield/zk-shield/merkle"
	"github.com/kysee/zkshield/zk-shield/prover"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/stretchr/testify/require"
)

const testHeight = 4

var tokenMint = big.NewInt(0x5eed)

type fixture struct {
	h   utils.Hasher
	acc *merkle.Accumulator
	b   *prover.Builder
}

func newFixture(t *testing.T) *fixture {
	h := utils.NewMiMCHasher()
	acc, err := merkle.New(h, testHeight)
	require.NoError(t, err)
	return &fixture{h: h, acc: acc, b: prover.NewBuilder(h, prover.WithRootChecker(acc))}
}

func (f *fixture) note(t *testing.T, amount uint64) *types.Note {
	n, err := types.NewRandomNote(uint256.NewInt(amount), tokenMint)
	require.NoError(t, err)
	return n
}

// deposit appends the notes and returns inputs proven against the final root.
func (f *fixture) deposit(t *testing.T, amounts ...uint64) []prover.InputNote {
	var notes []*types.Note
	var idxs []uint64
	for _, a := range amounts {
		n := f.note(t, a)
		cm, err := n.Commitment(f.h)
		require.NoError(t, err)
		idx, _, err := f.acc.Append(cm)
		require.NoError(t, err)
		notes = append(notes, n)
		idxs = append(idxs, idx)
	}
	ins := make([]prover.InputNote, len(notes))
	for i, n := range notes {
		p, err := f.acc.GenerateProof(idxs[i])
		require.NoError(t, err)
		ins[i] = prover.InputNote{Note: n, Proof: p}
	}
	return ins
}

func isSolved(t *testing.T, w types.Witness) error {
	kind, height, arity := circuit.Shape(w)
	c, err := circuit.New(kind, height, arity)
	require.NoError(t, err)
	a, err := circuit.Assign(w)
	require.NoError(t, err)
	return test.IsSolved(c, a, ecc.BN254.ScalarField())
}

func TestDepositCircuit(t *testing.T) {
	f := newFixture(t)
	n := f.note(t, 1_000)
	w, pub, err := f.b.BuildDeposit(n, nil)
	require.NoError(t, err)
	require.Equal(t, pub[0], pub[1])
	require.NoError(t, isSolved(t, w))

	w.Amount = "1001"
	require.Error(t, isSolved(t, w))
}

func TestTransferCircuit(t *testing.T) {
	f := newFixture(t)
	ins := f.deposit(t, 100)
	w, _, err := f.b.BuildTransfer(ins[0], [2]*types.Note{f.note(t, 60), f.note(t, 40)})
	require.NoError(t, err)
	require.NoError(t, isSolved(t, w))

	w.OutAmount[0] = "61"
	require.Error(t, isSolved(t, w))
}

func TestMultiTransferCircuit(t *testing.T) {
	f := newFixture(t)
	ins := f.deposit(t, 10, 20, 30, 40)

	w2, pub2, err := f.b.BuildTransfer2(ins[:2], [2]*types.Note{f.note(t, 25), f.note(t, 5)})
	require.NoError(t, err)
	require.Len(t, pub2, 3)
	require.NoError(t, isSolved(t, w2))

	t4, err := f.b.BuildTransfer4Exact(ins, [2]*types.Note{f.note(t, 70), f.note(t, 30)})
	require.NoError(t, err)
	require.Equal(t, prover.TransferExact, t4.Kind)
	require.NoError(t, isSolved(t, t4.Witness))
}

func TestPaddedTransferCircuit(t *testing.T) {
	f := newFixture(t)
	ins := f.deposit(t, 50, 25)

	t4, err := f.b.BuildTransfer4Padded(ins, [2]*types.Note{f.note(t, 70), f.note(t, 5)})
	require.NoError(t, err)
	require.Equal(t, prover.TransferPadded, t4.Kind)
	require.Equal(t, 2, t4.RealCount)
	require.Equal(t, uint64(100), t4.Compensation.Uint64())
	require.Equal(t, uint64(105), t4.CompensatedOutput.Amount.Uint64())
	require.Equal(t, t4.Public[1], t4.Public[3])
	require.Equal(t, t4.Public[1], t4.Public[4])
	require.NoError(t, isSolved(t, t4.Witness))
}

func TestWithdrawCircuits(t *testing.T) {
	f := newFixture(t)
	ins := f.deposit(t, 500, 800)
	receiver := big.NewInt(424242)

	w, pub, err := f.b.BuildWithdraw(ins[0], receiver)
	require.NoError(t, err)
	require.Equal(t, "424242", pub[1])
	require.Equal(t, "500", pub[3])
	require.NoError(t, isSolved(t, w))

	pw, pub, err := f.b.BuildPartialWithdraw(ins[1], receiver, uint256.NewInt(300), f.note(t, 500))
	require.NoError(t, err)
	require.Equal(t, "424242", pub[2])
	require.Equal(t, "300", pub[3])
	require.NoError(t, isSolved(t, pw))

	pw.WithdrawAmount = "301"
	require.Error(t, isSolved(t, pw))
}

func TestConsolidateCircuit(t *testing.T) {
	f := newFixture(t)
	ins := f.deposit(t, 1, 2, 3, 4, 5, 6, 7, 8)
	w, pub, err := f.b.BuildConsolidate(ins, f.note(t, 36))
	require.NoError(t, err)
	require.Len(t, pub, 9)
	require.Equal(t, utils.Dec(f.acc.Root()), pub[8])
	require.NoError(t, isSolved(t, w))

	w3, _, err := f.b.BuildConsolidate(ins[5:], f.note(t, 21))
	require.NoError(t, err)
	require.NoError(t, isSolved(t, w3))
}
