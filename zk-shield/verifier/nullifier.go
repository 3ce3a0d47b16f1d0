package verifier

import (
	"math/big"

	"github.com/kysee/zkshield/utils"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/pkg/errors"
)

// NullifierSet records spent nullifiers.
type NullifierSet struct {
	used     map[[32]byte]struct{}
	capacity int
}

// NewNullifierSet creates a set holding at most capacity nullifiers.
// A capacity of 0 means unbounded.
func NewNullifierSet(capacity int) *NullifierSet {
	return &NullifierSet{used: make(map[[32]byte]struct{}), capacity: capacity}
}

func (s *NullifierSet) Len() int {
	return len(s.used)
}

func (s *NullifierSet) Contains(nf *big.Int) bool {
	key, err := utils.FieldBytes(nf)
	if err != nil {
		return false
	}
	_, ok := s.used[key]
	return ok
}

// Consume marks every nullifier as spent, or none of them. Repeats inside
// nfs fail with ErrDuplicateNullifier unless allowDuplicates is set, in
// which case each distinct value is consumed once.
func (s *NullifierSet) Consume(nfs []*big.Int, allowDuplicates bool) error {
	fresh := make(map[[32]byte]struct{}, len(nfs))
	for i, nf := range nfs {
		key, err := utils.FieldBytes(nf)
		if err != nil {
			return errors.Wrapf(err, "nullifier %d", i)
		}
		if _, ok := s.used[key]; ok {
			return errors.Wrapf(types.ErrNullifierUsed, "nullifier %s", nf)
		}
		if _, ok := fresh[key]; ok {
			if !allowDuplicates {
				return errors.Wrapf(types.ErrDuplicateNullifier, "nullifier %s", nf)
			}
			continue
		}
		fresh[key] = struct{}{}
	}
	if s.capacity > 0 && len(s.used)+len(fresh) > s.capacity {
		return errors.Wrapf(types.ErrCapacityExceeded, "nullifier set holds %d of %d", len(s.used), s.capacity)
	}
	for key := range fresh {
		s.used[key] = struct{}{}
	}
	return nil
}

// Reset forgets every nullifier.
func (s *NullifierSet) Reset() {
	s.used = make(map[[32]byte]struct{})
}
