package types

import (
	"math/big"
	"strconv"

	"github.com/kysee/zkshield/utils"
	"github.com/pkg/errors"
)

// MerkleProof is the authentication path of one leaf. PathIndices[i] is 1
// when the node at level i is a right child.
type MerkleProof struct {
	Leaf         *big.Int
	LeafIndex    uint64
	PathElements []*big.Int
	PathIndices  []uint8
	Root         *big.Int
}

// ComputeRoot folds the leaf through the path.
func (p *MerkleProof) ComputeRoot(h utils.Hasher) (*big.Int, error) {
	if len(p.PathElements) != len(p.PathIndices) {
		return nil, errors.Wrapf(ErrInvalidInclusionProof,
			"path elements(%d) and indices(%d) differ in length", len(p.PathElements), len(p.PathIndices))
	}
	cur := p.Leaf
	var err error
	for i, sibling := range p.PathElements {
		switch p.PathIndices[i] {
		case 0:
			cur, err = h.Hash(cur, sibling)
		case 1:
			cur, err = h.Hash(sibling, cur)
		default:
			return nil, errors.Wrapf(ErrInvalidInclusionProof, "path index %d is not a bit", i)
		}
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

// Verify checks that the path reproduces Root.
func (p *MerkleProof) Verify(h utils.Hasher) error {
	if p.Root == nil {
		return errors.Wrap(ErrInvalidInclusionProof, "proof has no root")
	}
	root, err := p.ComputeRoot(h)
	if err != nil {
		return err
	}
	if root.Cmp(p.Root) != 0 {
		return errors.Wrapf(ErrInvalidInclusionProof, "leaf %d folds to %s, expected %s", p.LeafIndex, root, p.Root)
	}
	return nil
}

// Height is the number of levels in the path.
func (p *MerkleProof) Height() int {
	return len(p.PathElements)
}

// PathStrings renders the path as witness decimal strings.
func (p *MerkleProof) PathStrings() (elements, indices []string) {
	elements = utils.DecAll(p.PathElements)
	indices = make([]string, len(p.PathIndices))
	for i, b := range p.PathIndices {
		indices[i] = strconv.Itoa(int(b))
	}
	return elements, indices
}
