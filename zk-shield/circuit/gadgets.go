package circuit

import (
	"github.com/consensys/gnark/frontend"
	std_mimc "github.com/consensys/gnark/std/hash/mimc"
)

// AmountBits is the width every amount is range checked to.
const AmountBits = 64

type hasher struct {
	api frontend.API
	h   std_mimc.MiMC
}

func newHasher(api frontend.API) (*hasher, error) {
	h, err := std_mimc.NewMiMC(api)
	if err != nil {
		return nil, err
	}
	return &hasher{api: api, h: h}, nil
}

func (hs *hasher) hash(vs ...frontend.Variable) frontend.Variable {
	hs.h.Reset()
	hs.h.Write(vs...)
	return hs.h.Sum()
}

// commitment = H(secret, amount, tokenMint, blinding)
func (hs *hasher) commitment(secret, amount, tokenMint, blinding frontend.Variable) frontend.Variable {
	return hs.hash(secret, amount, tokenMint, blinding)
}

// nullifier = H(secret, rho)
func (hs *hasher) nullifier(secret, rho frontend.Variable) frontend.Variable {
	return hs.hash(secret, rho)
}

// root folds leaf up the path. An index bit of 1 puts the running node on the right.
func (hs *hasher) root(leaf frontend.Variable, elements, indices []frontend.Variable) frontend.Variable {
	cur := leaf
	for i := range elements {
		hs.api.AssertIsBoolean(indices[i])
		left := hs.api.Select(indices[i], elements[i], cur)
		right := hs.api.Select(indices[i], cur, elements[i])
		cur = hs.hash(left, right)
	}
	return cur
}

func rangeCheck(api frontend.API, vs ...frontend.Variable) {
	for _, v := range vs {
		api.ToBinary(v, AmountBits)
	}
}

// spend constrains one input note: membership under root and its nullifier.
func (hs *hasher) spend(secret, amount, tokenMint, blinding, rho frontend.Variable,
	elements, indices []frontend.Variable, root, nullifier frontend.Variable) {
	rangeCheck(hs.api, amount)
	cm := hs.commitment(secret, amount, tokenMint, blinding)
	hs.api.AssertIsEqual(hs.root(cm, elements, indices), root)
	hs.api.AssertIsEqual(hs.nullifier(secret, rho), nullifier)
}

func sum(api frontend.API, vs []frontend.Variable) frontend.Variable {
	var acc frontend.Variable = 0
	for _, v := range vs {
		acc = api.Add(acc, v)
	}
	return acc
}

func variables(n int) []frontend.Variable {
	return make([]frontend.Variable, n)
}

func variables2(n, m int) [][]frontend.Variable {
	out := make([][]frontend.Variable, n)
	for i := range out {
		out[i] = variables(m)
	}
	return out
}
