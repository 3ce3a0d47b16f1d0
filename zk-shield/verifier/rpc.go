package verifier

import (
	"math/big"

	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/pkg/errors"
)

//
// Read access for wallets
//

func (l *Ledger) Root() *big.Int {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.tree.Root()
}

func (l *Ledger) Height() int {
	return l.tree.Height()
}

// KnownRoot lets a Ledger serve as a witness builder's root checker.
func (l *Ledger) KnownRoot(root *big.Int) bool {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.tree.KnownRoot(root)
}

func (l *Ledger) NumCommitments() uint64 {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.tree.NextIndex()
}

func (l *Ledger) Commitment(index uint64) (*big.Int, error) {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.tree.Leaf(index)
}

// MerkleProof returns the inclusion proof of commitment against the current root.
func (l *Ledger) MerkleProof(commitment *big.Int) (*types.MerkleProof, error) {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	idx, ok := l.tree.IndexOf(commitment)
	if !ok {
		return nil, errors.Wrapf(types.ErrLeafNotInserted, "commitment %s not found", commitment)
	}
	return l.tree.GenerateProof(idx)
}

// SealedNotes returns the sealed notes published at or after index from.
// Entries are nil where no sealed note was published.
func (l *Ledger) SealedNotes(from uint64) [][]byte {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	if from >= uint64(len(l.sealedNotes)) {
		return nil
	}
	out := make([][]byte, 0, uint64(len(l.sealedNotes))-from)
	for _, box := range l.sealedNotes[from:] {
		out = append(out, append([]byte(nil), box...))
	}
	return out
}

func (l *Ledger) IsSpent(nullifier *big.Int) bool {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.nullifiers.Contains(nullifier)
}
