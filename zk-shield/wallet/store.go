package wallet

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/kysee/zkshield/utils"
	"github.com/kysee/zkshield/zk-shield/crypto"
	"github.com/kysee/zkshield/zk-shield/prover"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/pkg/errors"
)

// NoteEntry is an owned note and where it sits in the commitment tree.
type NoteEntry struct {
	Note       *types.Note
	Memo       []byte
	Index      uint64
	Commitment *big.Int
	Nullifier  *big.Int
	Spent      bool
}

func (e *NoteEntry) Amount() *uint256.Int {
	return e.Note.Amount
}

// Store is a wallet's set of owned notes.
type Store struct {
	hasher  utils.Hasher
	entries []*NoteEntry
	byNf    map[[32]byte]*NoteEntry
}

func NewStore(h utils.Hasher) *Store {
	return &Store{hasher: h, byNf: make(map[[32]byte]*NoteEntry)}
}

// Add records n at leaf index. Adding a known note returns the existing entry.
func (s *Store) Add(n *types.Note, memo []byte, index uint64) (*NoteEntry, error) {
	cm, err := n.Commitment(s.hasher)
	if err != nil {
		return nil, err
	}
	nf, err := n.Nullifier(s.hasher)
	if err != nil {
		return nil, err
	}
	key, err := utils.FieldBytes(nf)
	if err != nil {
		return nil, err
	}
	if e, ok := s.byNf[key]; ok {
		return e, nil
	}
	e := &NoteEntry{Note: n, Memo: memo, Index: index, Commitment: cm, Nullifier: nf}
	s.entries = append(s.entries, e)
	s.byNf[key] = e
	return e, nil
}

// MarkSpent flags the note with nullifier nf. It reports whether the note is known.
func (s *Store) MarkSpent(nf *big.Int) bool {
	key, err := utils.FieldBytes(nf)
	if err != nil {
		return false
	}
	e, ok := s.byNf[key]
	if ok {
		e.Spent = true
	}
	return ok
}

func (s *Store) Notes() []*NoteEntry {
	return append([]*NoteEntry(nil), s.entries...)
}

// Unspent lists unspent notes of token, or of every token when token is nil.
func (s *Store) Unspent(token *big.Int) []*NoteEntry {
	var out []*NoteEntry
	for _, e := range s.entries {
		if !e.Spent && matchToken(e, token) {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) Balance(token *big.Int) *uint256.Int {
	ret := uint256.NewInt(0)
	for _, e := range s.Unspent(token) {
		ret.Add(ret, e.Note.Amount)
	}
	return ret
}

func matchToken(e *NoteEntry, token *big.Int) bool {
	return token == nil || e.Note.TokenMint.Cmp(token) == 0
}

// NoteSource is the read side of a ledger.
type NoteSource interface {
	SealedNotes(from uint64) [][]byte
	Commitment(index uint64) (*big.Int, error)
	IsSpent(nullifier *big.Int) bool
}

// Sync opens every sealed note published from index on, keeps the ones
// addressed to k whose commitment matches the ledger, and refreshes the
// spent flags. It returns the number of notes added.
func (s *Store) Sync(k *crypto.ViewingKey, src NoteSource, from uint64) (int, error) {
	added := 0
	for i, box := range src.SealedNotes(from) {
		if len(box) == 0 {
			continue
		}
		sn, err := crypto.OpenNote(k, box)
		if err != nil {
			if errors.Is(err, crypto.ErrNotRecipient) {
				continue
			}
			return added, err
		}
		index := from + uint64(i)
		onLedger, err := src.Commitment(index)
		if err != nil {
			return added, err
		}
		if err := types.VerifyNote(s.hasher, sn.Note, onLedger, nil); err != nil {
			// a sealed note that does not open to its commitment is ignored
			continue
		}
		before := len(s.entries)
		if _, err := s.Add(sn.Note, sn.Memo, index); err != nil {
			return added, err
		}
		if len(s.entries) > before {
			added++
		}
	}
	for _, e := range s.entries {
		if !e.Spent && src.IsSpent(e.Nullifier) {
			e.Spent = true
		}
	}
	return added, nil
}

// ProofSource serves inclusion proofs for commitments.
type ProofSource interface {
	MerkleProof(commitment *big.Int) (*types.MerkleProof, error)
}

// Inputs pairs entries with fresh inclusion proofs for a witness builder.
func Inputs(entries []*NoteEntry, src ProofSource) ([]prover.InputNote, error) {
	ins := make([]prover.InputNote, len(entries))
	for i, e := range entries {
		p, err := src.MerkleProof(e.Commitment)
		if err != nil {
			return nil, errors.Wrapf(err, "note %d", e.Index)
		}
		ins[i] = prover.InputNote{Note: e.Note, Proof: p, Nullifier: e.Nullifier}
	}
	return ins, nil
}

type storedNote struct {
	SecretNote []byte
	Index      uint64
	Spent      bool
}

// Encode serializes the store with RLP.
func (s *Store) Encode() ([]byte, error) {
	items := make([]storedNote, len(s.entries))
	for i, e := range s.entries {
		bz, err := types.NewSecretNote(e.Note, e.Memo).Bytes()
		if err != nil {
			return nil, err
		}
		items[i] = storedNote{SecretNote: bz, Index: e.Index, Spent: e.Spent}
	}
	return rlp.EncodeToBytes(items)
}

func DecodeStore(h utils.Hasher, bz []byte) (*Store, error) {
	var items []storedNote
	if err := rlp.DecodeBytes(bz, &items); err != nil {
		return nil, errors.Wrap(err, "decode note store")
	}
	s := NewStore(h)
	for _, it := range items {
		sn, err := types.DecodeSecretNote(it.SecretNote)
		if err != nil {
			return nil, err
		}
		e, err := s.Add(sn.Note, sn.Memo, it.Index)
		if err != nil {
			return nil, err
		}
		e.Spent = it.Spent
	}
	return s, nil
}
