package verifier

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/kysee/zkshield/utils"
	"github.com/kysee/zkshield/zk-shield/merkle"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type LedgerOption func(*Ledger)

func WithLogger(l zerolog.Logger) LedgerOption {
	return func(lg *Ledger) {
		lg.logger = l
	}
}

// WithNullifierCapacity bounds the nullifier set.
func WithNullifierCapacity(n int) LedgerOption {
	return func(lg *Ledger) {
		lg.nullifiers = NewNullifierSet(n)
	}
}

// AllowDuplicateNullifiers accepts proofs that repeat a nullifier across
// their own inputs, as padded 4-input transfers do.
func AllowDuplicateNullifiers() LedgerOption {
	return func(lg *Ledger) {
		lg.allowDup = true
	}
}

// Ledger keeps the pool state a verifier holds: the commitment tree, the
// spent nullifiers, one verifying key per circuit and the sealed notes
// published next to each commitment.
type Ledger struct {
	mtx sync.RWMutex

	tree        *merkle.Accumulator
	nullifiers  *NullifierSet
	vks         map[string][]byte
	sealedNotes [][]byte
	allowDup    bool

	logger zerolog.Logger
}

func NewLedger(tree *merkle.Accumulator, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		tree:       tree,
		nullifiers: NewNullifierSet(0),
		vks:        make(map[string][]byte),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// VerifyingKeyName identifies the key of a circuit. Consolidation keys are
// per input arity.
func VerifyingKeyName(kind types.CircuitKind, arity int) string {
	if kind == types.KindConsolidate {
		return fmt.Sprintf("%s_%d", kind, arity)
	}
	return string(kind)
}

func (l *Ledger) SetVerifyingKey(kind types.CircuitKind, arity int, packed []byte) error {
	if _, err := ValidateVerifyingKeyBlob(packed); err != nil {
		return err
	}
	l.mtx.Lock()
	defer l.mtx.Unlock()
	name := VerifyingKeyName(kind, arity)
	l.vks[name] = append([]byte(nil), packed...)
	l.logger.Info().Str("circuit", name).Int("bytes", len(packed)).Msg("verifying key set")
	return nil
}

func (l *Ledger) verifyingKey(kind types.CircuitKind, arity int) ([]byte, error) {
	vk, ok := l.vks[VerifyingKeyName(kind, arity)]
	if !ok {
		return nil, errors.Wrapf(types.ErrVerifierMissing, "circuit %s", VerifyingKeyName(kind, arity))
	}
	return vk, nil
}

// DepositTx shields Amount under Commitment.
type DepositTx struct {
	Commitment   *big.Int
	Amount       uint64
	Proof        []byte
	PublicInputs [][32]byte
	SealedNote   []byte
}

// SpendTx consumes notes proven by Proof and creates OutputCommitments.
type SpendTx struct {
	Kind              types.CircuitKind
	Proof             []byte
	PublicInputs      [][32]byte
	OutputCommitments []*big.Int
	SealedNotes       [][]byte
}

// Receipt reports the effect of an accepted transaction.
type Receipt struct {
	Indices    []uint64
	Root       *big.Int
	Nullifiers []*big.Int
}

func (l *Ledger) Deposit(tx *DepositTx) (*Receipt, error) {
	if tx.Amount == 0 {
		return nil, errors.Wrap(types.ErrInvalidAmount, "amount must be greater than zero")
	}
	cm, err := utils.FieldBytes(tx.Commitment)
	if err != nil {
		return nil, err
	}
	if len(tx.PublicInputs) != 2 || tx.PublicInputs[1] != cm {
		return nil, errors.Wrap(types.ErrCommitmentMismatch, "proof does not bind the deposited commitment")
	}

	l.mtx.Lock()
	defer l.mtx.Unlock()

	vk, err := l.verifyingKey(types.KindDeposit, 0)
	if err != nil {
		return nil, err
	}
	if err := VerifyPacked(vk, tx.Proof, tx.PublicInputs); err != nil {
		return nil, err
	}
	idx, root, err := l.append([]*big.Int{tx.Commitment}, [][]byte{tx.SealedNote})
	if err != nil {
		return nil, err
	}
	l.logger.Debug().Uint64("index", idx[0]).Uint64("amount", tx.Amount).Msg("deposit accepted")
	return &Receipt{Indices: idx, Root: root}, nil
}

func (l *Ledger) Spend(tx *SpendTx) (*Receipt, error) {
	root, nfs, err := SplitPublicInputs(tx.Kind, tx.PublicInputs)
	if err != nil {
		return nil, err
	}
	if err := checkOutputCount(tx.Kind, len(tx.OutputCommitments)); err != nil {
		return nil, err
	}
	if tx.Kind == types.KindWithdraw || tx.Kind == types.KindPartialWithdraw {
		if new(big.Int).SetBytes(tx.PublicInputs[3][:]).Sign() == 0 {
			return nil, errors.Wrap(types.ErrInvalidAmount, "withdraw amount must be greater than zero")
		}
	}

	l.mtx.Lock()
	defer l.mtx.Unlock()

	vk, err := l.verifyingKey(tx.Kind, len(nfs))
	if err != nil {
		return nil, err
	}
	if err := VerifyPacked(vk, tx.Proof, tx.PublicInputs); err != nil {
		return nil, err
	}
	if !l.tree.KnownRoot(root) {
		return nil, errors.Wrapf(types.ErrUnknownRoot, "root %s", root)
	}
	if l.tree.NextIndex()+uint64(len(tx.OutputCommitments)) > l.tree.Capacity() {
		return nil, errors.Wrapf(types.ErrTreeFull, "no room for %d outputs", len(tx.OutputCommitments))
	}
	for i, cm := range tx.OutputCommitments {
		if err := utils.CheckField(cm); err != nil {
			return nil, errors.Wrapf(err, "output commitment %d", i)
		}
	}
	if err := l.nullifiers.Consume(nfs, l.allowDup); err != nil {
		return nil, err
	}
	idx, newRoot, err := l.append(tx.OutputCommitments, tx.SealedNotes)
	if err != nil {
		return nil, err
	}
	l.logger.Debug().Str("circuit", string(tx.Kind)).Int("nullifiers", len(nfs)).Int("outputs", len(idx)).Msg("spend accepted")
	return &Receipt{Indices: idx, Root: newRoot, Nullifiers: nfs}, nil
}

func (l *Ledger) append(cms []*big.Int, sealed [][]byte) ([]uint64, *big.Int, error) {
	root := l.tree.Root()
	idx := make([]uint64, 0, len(cms))
	for i, cm := range cms {
		j, r, err := l.tree.Append(cm)
		if err != nil {
			return nil, nil, err
		}
		var box []byte
		if i < len(sealed) {
			box = sealed[i]
		}
		l.sealedNotes = append(l.sealedNotes, box)
		idx = append(idx, j)
		root = r
	}
	return idx, root, nil
}

// SplitPublicInputs extracts the root and the nullifiers from the public
// inputs of a spend circuit.
func SplitPublicInputs(kind types.CircuitKind, pub [][32]byte) (*big.Int, []*big.Int, error) {
	word := func(i int) *big.Int { return new(big.Int).SetBytes(pub[i][:]) }
	words := func(from, to int) []*big.Int {
		out := make([]*big.Int, 0, to-from)
		for i := from; i < to; i++ {
			out = append(out, word(i))
		}
		return out
	}
	want := map[types.CircuitKind]int{
		types.KindTransfer:        2,
		types.KindTransfer2:       3,
		types.KindTransfer4:       5,
		types.KindWithdraw:        4,
		types.KindPartialWithdraw: 4,
	}
	switch kind {
	case types.KindTransfer, types.KindTransfer2, types.KindTransfer4:
		if len(pub) != want[kind] {
			return nil, nil, errors.Wrapf(types.ErrInvalidInputCount, "%s takes %d public inputs, got %d", kind, want[kind], len(pub))
		}
		return word(0), words(1, len(pub)), nil
	case types.KindWithdraw:
		if len(pub) != want[kind] {
			return nil, nil, errors.Wrapf(types.ErrInvalidInputCount, "%s takes %d public inputs, got %d", kind, want[kind], len(pub))
		}
		return word(0), words(2, 3), nil
	case types.KindPartialWithdraw:
		if len(pub) != want[kind] {
			return nil, nil, errors.Wrapf(types.ErrInvalidInputCount, "%s takes %d public inputs, got %d", kind, want[kind], len(pub))
		}
		return word(0), words(1, 2), nil
	case types.KindConsolidate:
		if len(pub) < 2 || len(pub) > types.MaxConsolidateInputs+1 {
			return nil, nil, errors.Wrapf(types.ErrInvalidInputCount, "consolidate takes 2 to %d public inputs, got %d", types.MaxConsolidateInputs+1, len(pub))
		}
		return word(len(pub) - 1), words(0, len(pub)-1), nil
	}
	return nil, nil, errors.Errorf("%s is not a spend circuit", kind)
}

func checkOutputCount(kind types.CircuitKind, n int) error {
	want := 0
	switch kind {
	case types.KindTransfer, types.KindTransfer2, types.KindTransfer4:
		want = 2
	case types.KindPartialWithdraw, types.KindConsolidate:
		want = 1
	}
	if n != want {
		return errors.Wrapf(types.ErrInvalidInputCount, "%s creates %d output notes, got %d", kind, want, n)
	}
	return nil
}
