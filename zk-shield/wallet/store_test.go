package wallet

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/kysee/zkshield/utils"
	"github.com/kysee/zkshield/zk-shield/crypto"
	"github.com/kysee/zkshield/zk-shield/merkle"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/stretchr/testify/require"
)

var (
	tokenA = big.NewInt(1)
	tokenB = big.NewInt(2)
)

func newNote(t *testing.T, amount uint64, token *big.Int) *types.Note {
	n, err := types.NewRandomNote(uint256.NewInt(amount), token)
	require.NoError(t, err)
	return n
}

// pool is a minimal ledger: a commitment tree with sealed notes per leaf.
type pool struct {
	h      utils.Hasher
	tree   *merkle.Accumulator
	sealed [][]byte
	spent  map[string]bool
}

func newPool(t *testing.T, h utils.Hasher, height int) *pool {
	tree, err := merkle.New(h, height)
	require.NoError(t, err)
	return &pool{h: h, tree: tree, spent: map[string]bool{}}
}

func (p *pool) add(t *testing.T, n *types.Note, box []byte) uint64 {
	cm, err := n.Commitment(p.h)
	require.NoError(t, err)
	idx, _, err := p.tree.Append(cm)
	require.NoError(t, err)
	p.sealed = append(p.sealed, box)
	return idx
}

func (p *pool) SealedNotes(from uint64) [][]byte {
	if from >= uint64(len(p.sealed)) {
		return nil
	}
	return p.sealed[from:]
}

func (p *pool) Commitment(index uint64) (*big.Int, error) {
	return p.tree.Leaf(index)
}

func (p *pool) IsSpent(nf *big.Int) bool {
	return p.spent[nf.String()]
}

func (p *pool) MerkleProof(cm *big.Int) (*types.MerkleProof, error) {
	idx, ok := p.tree.IndexOf(cm)
	if !ok {
		return nil, types.ErrLeafNotInserted
	}
	return p.tree.GenerateProof(idx)
}

func TestStoreBalance(t *testing.T) {
	h := utils.NewPoseidonHasher()
	s := NewStore(h)

	n0 := newNote(t, 100, tokenA)
	n1 := newNote(t, 50, tokenA)
	n2 := newNote(t, 7, tokenB)
	e0, err := s.Add(n0, nil, 0)
	require.NoError(t, err)
	_, err = s.Add(n1, nil, 1)
	require.NoError(t, err)
	_, err = s.Add(n2, nil, 2)
	require.NoError(t, err)

	again, err := s.Add(n0, nil, 0)
	require.NoError(t, err)
	require.Same(t, e0, again)
	require.Len(t, s.Notes(), 3)

	require.Equal(t, uint64(150), s.Balance(tokenA).Uint64())
	require.Equal(t, uint64(7), s.Balance(tokenB).Uint64())
	require.Equal(t, uint64(157), s.Balance(nil).Uint64())

	require.True(t, s.MarkSpent(e0.Nullifier))
	require.False(t, s.MarkSpent(big.NewInt(12345)))
	require.Equal(t, uint64(50), s.Balance(tokenA).Uint64())
	require.Len(t, s.Unspent(tokenA), 1)
}

func TestStoreEncoding(t *testing.T) {
	h := utils.NewPoseidonHasher()
	s := NewStore(h)
	e0, err := s.Add(newNote(t, 10, tokenA), []byte("rent"), 4)
	require.NoError(t, err)
	_, err = s.Add(newNote(t, 20, tokenA), nil, 9)
	require.NoError(t, err)
	s.MarkSpent(e0.Nullifier)

	bz, err := s.Encode()
	require.NoError(t, err)
	s2, err := DecodeStore(h, bz)
	require.NoError(t, err)

	got := s2.Notes()
	require.Len(t, got, 2)
	require.True(t, got[0].Spent)
	require.Equal(t, []byte("rent"), got[0].Memo)
	require.Equal(t, uint64(4), got[0].Index)
	require.Equal(t, 0, got[0].Commitment.Cmp(e0.Commitment))
	require.False(t, got[1].Spent)
	require.Equal(t, uint64(20), s2.Balance(tokenA).Uint64())

	_, err = DecodeStore(h, []byte{0x01, 0x02})
	require.Error(t, err)
}

func TestSync(t *testing.T) {
	h := utils.NewPoseidonHasher()
	p := newPool(t, h, 6)

	me, err := crypto.NewViewingKey()
	require.NoError(t, err)
	other, err := crypto.NewViewingKey()
	require.NoError(t, err)

	seal := func(k *crypto.ViewingKey, n *types.Note) []byte {
		box, err := crypto.SealNote(&k.PublicKey, types.NewSecretNote(n, nil))
		require.NoError(t, err)
		return box
	}

	mine := newNote(t, 30, tokenA)
	p.add(t, mine, seal(me, mine))
	theirs := newNote(t, 40, tokenA)
	p.add(t, theirs, seal(other, theirs))
	p.add(t, newNote(t, 5, tokenA), nil)
	// sealed to me, but the leaf holds a different commitment
	p.add(t, newNote(t, 60, tokenA), seal(me, newNote(t, 60, tokenA)))

	s := NewStore(h)
	added, err := s.Sync(me, p, 0)
	require.NoError(t, err)
	require.Equal(t, 1, added)
	require.Equal(t, uint64(30), s.Balance(tokenA).Uint64())

	// resyncing adds nothing
	added, err = s.Sync(me, p, 0)
	require.NoError(t, err)
	require.Zero(t, added)

	later := newNote(t, 12, tokenA)
	idx := p.add(t, later, seal(me, later))
	added, err = s.Sync(me, p, idx)
	require.NoError(t, err)
	require.Equal(t, 1, added)
	require.Equal(t, idx, s.Notes()[1].Index)

	nf, err := mine.Nullifier(h)
	require.NoError(t, err)
	p.spent[nf.String()] = true
	_, err = s.Sync(me, p, p.tree.NextIndex())
	require.NoError(t, err)
	require.Equal(t, uint64(12), s.Balance(tokenA).Uint64())
}

func TestInputs(t *testing.T) {
	h := utils.NewPoseidonHasher()
	p := newPool(t, h, 4)
	s := NewStore(h)
	for _, amt := range []uint64{3, 4} {
		n := newNote(t, amt, tokenA)
		_, err := s.Add(n, nil, p.add(t, n, nil))
		require.NoError(t, err)
	}

	ins, err := Inputs(s.Notes(), p)
	require.NoError(t, err)
	require.Len(t, ins, 2)
	for i, in := range ins {
		require.NoError(t, in.Proof.Verify(h))
		require.Equal(t, s.Notes()[i].Index, in.Proof.LeafIndex)
	}

	_, err = Inputs([]*NoteEntry{{Note: newNote(t, 1, tokenA), Commitment: big.NewInt(99)}}, p)
	require.ErrorIs(t, err, types.ErrLeafNotInserted)
}
