package merkle

import (
	"math/big"

	"github.com/kysee/zkshield/utils"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DefaultHeight = 20
	MaxHeight     = 32

	// RootHistorySize is the number of recent roots a spend may reference.
	RootHistorySize = 32
)

type Option func(*Accumulator)

func WithLogger(l zerolog.Logger) Option {
	return func(a *Accumulator) {
		a.logger = l
	}
}

// Accumulator is an append-only fixed-height hash tree whose empty
// positions hold the zero hash of their level.
//
// An Accumulator has a single owner; appends must be serialized by the caller.
type Accumulator struct {
	hasher utils.Hasher
	height int
	zeros  []*big.Int

	// nodes[level] holds the node values written so far at that level.
	nodes     [][]*big.Int
	nextIndex uint64
	root      *big.Int

	roots      [RootHistorySize]*big.Int
	rootCursor int

	logger zerolog.Logger
}

// ZeroHashes returns zero_0..zero_height where zero_0 = 0 and
// zero_i = Hash(zero_{i-1}, zero_{i-1}).
func ZeroHashes(h utils.Hasher, height int) ([]*big.Int, error) {
	zeros := make([]*big.Int, height+1)
	zeros[0] = big.NewInt(0)
	for i := 1; i <= height; i++ {
		z, err := h.Hash(zeros[i-1], zeros[i-1])
		if err != nil {
			return nil, err
		}
		zeros[i] = z
	}
	return zeros, nil
}

func New(h utils.Hasher, height int, opts ...Option) (*Accumulator, error) {
	if height <= 0 || height > MaxHeight {
		return nil, errors.Errorf("tree height must be in [1, %d], got %d", MaxHeight, height)
	}
	zeros, err := ZeroHashes(h, height)
	if err != nil {
		return nil, err
	}
	a := &Accumulator{
		hasher: h,
		height: height,
		zeros:  zeros,
		nodes:  make([][]*big.Int, height+1),
		root:   zeros[height],
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.pushRoot(a.root)
	return a, nil
}

// FromLeaves rebuilds an accumulator by appending leaves in order.
func FromLeaves(h utils.Hasher, height int, leaves []*big.Int, opts ...Option) (*Accumulator, error) {
	a, err := New(h, height, opts...)
	if err != nil {
		return nil, err
	}
	for _, leaf := range leaves {
		if _, _, err := a.Append(leaf); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Accumulator) Height() int {
	return a.height
}

func (a *Accumulator) NextIndex() uint64 {
	return a.nextIndex
}

func (a *Accumulator) Capacity() uint64 {
	return uint64(1) << uint(a.height)
}

func (a *Accumulator) Root() *big.Int {
	return new(big.Int).Set(a.root)
}

func (a *Accumulator) Hasher() utils.Hasher {
	return a.hasher
}

// Leaves returns a copy of the inserted leaves in insertion order.
func (a *Accumulator) Leaves() []*big.Int {
	out := make([]*big.Int, len(a.nodes[0]))
	for i, l := range a.nodes[0] {
		out[i] = new(big.Int).Set(l)
	}
	return out
}

// Leaf returns the leaf at index.
func (a *Accumulator) Leaf(index uint64) (*big.Int, error) {
	if index >= a.nextIndex {
		return nil, errors.Wrapf(types.ErrLeafNotInserted, "index %d, next index %d", index, a.nextIndex)
	}
	return new(big.Int).Set(a.nodes[0][index]), nil
}

// Append inserts leaf at the next free index and returns that index and
// the new root. It costs height hashes.
func (a *Accumulator) Append(leaf *big.Int) (uint64, *big.Int, error) {
	if err := utils.CheckField(leaf); err != nil {
		return 0, nil, err
	}
	if a.nextIndex >= a.Capacity() {
		return 0, nil, errors.Wrapf(types.ErrTreeFull, "capacity %d", a.Capacity())
	}

	index := a.nextIndex
	cur := new(big.Int).Set(leaf)
	a.nodes[0] = append(a.nodes[0], cur)

	pos := index
	for level := 0; level < a.height; level++ {
		var left, right *big.Int
		if pos&1 == 0 {
			left, right = cur, a.zeros[level]
		} else {
			left, right = a.nodes[level][pos-1], cur
		}
		parent, err := a.hasher.Hash(left, right)
		if err != nil {
			a.nodes[0] = a.nodes[0][:index]
			return 0, nil, err
		}
		pos >>= 1
		a.setNode(level+1, pos, parent)
		cur = parent
	}

	a.nextIndex++
	a.root = cur
	a.pushRoot(cur)

	a.logger.Debug().Uint64("index", index).Str("root", cur.String()).Msg("leaf appended")
	return index, new(big.Int).Set(cur), nil
}

func (a *Accumulator) setNode(level int, pos uint64, v *big.Int) {
	if pos < uint64(len(a.nodes[level])) {
		a.nodes[level][pos] = v
		return
	}
	a.nodes[level] = append(a.nodes[level], v)
}

func (a *Accumulator) node(level int, pos uint64) *big.Int {
	if pos < uint64(len(a.nodes[level])) {
		return a.nodes[level][pos]
	}
	return a.zeros[level]
}

// GenerateProof returns the authentication path of the leaf at index
// against the current root.
func (a *Accumulator) GenerateProof(index uint64) (*types.MerkleProof, error) {
	if index >= a.nextIndex {
		return nil, errors.Wrapf(types.ErrLeafNotInserted, "index %d, next index %d", index, a.nextIndex)
	}
	p := &types.MerkleProof{
		Leaf:         new(big.Int).Set(a.nodes[0][index]),
		LeafIndex:    index,
		PathElements: make([]*big.Int, a.height),
		PathIndices:  make([]uint8, a.height),
		Root:         a.Root(),
	}
	pos := index
	for level := 0; level < a.height; level++ {
		p.PathIndices[level] = uint8(pos & 1)
		p.PathElements[level] = new(big.Int).Set(a.node(level, pos^1))
		pos >>= 1
	}
	return p, nil
}

// IndexOf returns the index of the first leaf equal to leaf.
func (a *Accumulator) IndexOf(leaf *big.Int) (uint64, bool) {
	for i, l := range a.nodes[0] {
		if l.Cmp(leaf) == 0 {
			return uint64(i), true
		}
	}
	return 0, false
}

func (a *Accumulator) pushRoot(root *big.Int) {
	a.roots[a.rootCursor] = root
	a.rootCursor = (a.rootCursor + 1) % RootHistorySize
}

// KnownRoot reports whether root is among the last RootHistorySize roots.
func (a *Accumulator) KnownRoot(root *big.Int) bool {
	if root == nil {
		return false
	}
	for _, r := range a.roots {
		if r != nil && r.Cmp(root) == 0 {
			return true
		}
	}
	return false
}

// Roots returns the root history, most recent first.
func (a *Accumulator) Roots() []*big.Int {
	out := make([]*big.Int, 0, RootHistorySize)
	for i := 1; i <= RootHistorySize; i++ {
		r := a.roots[(a.rootCursor-i+RootHistorySize)%RootHistorySize]
		if r == nil {
			break
		}
		out = append(out, new(big.Int).Set(r))
	}
	return out
}
