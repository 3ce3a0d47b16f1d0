package circuit

import (
	"github.com/consensys/gnark/frontend"
)

// Public inputs are declared first in every circuit, in the order the
// verifier consumes them.

type DepositCircuit struct {
	Computed   frontend.Variable `gnark:",public"`
	Commitment frontend.Variable `gnark:",public"`

	Secret    frontend.Variable
	Amount    frontend.Variable
	TokenMint frontend.Variable
	Blinding  frontend.Variable
}

func (c *DepositCircuit) Define(api frontend.API) error {
	hs, err := newHasher(api)
	if err != nil {
		return err
	}
	rangeCheck(api, c.Amount)
	cm := hs.commitment(c.Secret, c.Amount, c.TokenMint, c.Blinding)
	api.AssertIsEqual(cm, c.Computed)
	api.AssertIsEqual(c.Computed, c.Commitment)
	return nil
}

type TransferCircuit struct {
	Root      frontend.Variable `gnark:",public"`
	Nullifier frontend.Variable `gnark:",public"`

	InSecret     frontend.Variable
	InAmount     frontend.Variable
	TokenMint    frontend.Variable
	InBlinding   frontend.Variable
	InRho        frontend.Variable
	PathElements []frontend.Variable
	PathIndices  []frontend.Variable

	Out [2]OutputNote
}

// OutputNote is a created note whose commitment the circuit recomputes.
type OutputNote struct {
	Secret     frontend.Variable
	Amount     frontend.Variable
	Blinding   frontend.Variable
	Commitment frontend.Variable
}

func (o *OutputNote) check(hs *hasher, tokenMint frontend.Variable) {
	rangeCheck(hs.api, o.Amount)
	hs.api.AssertIsEqual(hs.commitment(o.Secret, o.Amount, tokenMint, o.Blinding), o.Commitment)
}

func (c *TransferCircuit) Define(api frontend.API) error {
	hs, err := newHasher(api)
	if err != nil {
		return err
	}
	hs.spend(c.InSecret, c.InAmount, c.TokenMint, c.InBlinding, c.InRho, c.PathElements, c.PathIndices, c.Root, c.Nullifier)
	for i := range c.Out {
		c.Out[i].check(hs, c.TokenMint)
	}
	api.AssertIsEqual(c.InAmount, api.Add(c.Out[0].Amount, c.Out[1].Amount))
	return nil
}

// Inputs are the per-note arrays of an N-input spend.
type Inputs struct {
	Secret       []frontend.Variable
	Amount       []frontend.Variable
	Blinding     []frontend.Variable
	Rho          []frontend.Variable
	PathElements [][]frontend.Variable
	PathIndices  [][]frontend.Variable
}

func newInputs(n, height int) Inputs {
	return Inputs{
		Secret:       variables(n),
		Amount:       variables(n),
		Blinding:     variables(n),
		Rho:          variables(n),
		PathElements: variables2(n, height),
		PathIndices:  variables2(n, height),
	}
}

func (in *Inputs) check(hs *hasher, tokenMint, root frontend.Variable, nullifiers []frontend.Variable) frontend.Variable {
	for i := range in.Secret {
		hs.spend(in.Secret[i], in.Amount[i], tokenMint, in.Blinding[i], in.Rho[i], in.PathElements[i], in.PathIndices[i], root, nullifiers[i])
	}
	return sum(hs.api, in.Amount)
}

// MultiTransferCircuit spends len(Nullifiers) notes into two outputs.
type MultiTransferCircuit struct {
	Root       frontend.Variable   `gnark:",public"`
	Nullifiers []frontend.Variable `gnark:",public"`

	TokenMint frontend.Variable
	In        Inputs
	Out       [2]OutputNote
}

func (c *MultiTransferCircuit) Define(api frontend.API) error {
	hs, err := newHasher(api)
	if err != nil {
		return err
	}
	total := c.In.check(hs, c.TokenMint, c.Root, c.Nullifiers)
	for i := range c.Out {
		c.Out[i].check(hs, c.TokenMint)
	}
	api.AssertIsEqual(total, api.Add(c.Out[0].Amount, c.Out[1].Amount))
	return nil
}

type WithdrawCircuit struct {
	Root      frontend.Variable `gnark:",public"`
	Receiver  frontend.Variable `gnark:",public"`
	Nullifier frontend.Variable `gnark:",public"`
	Amount    frontend.Variable `gnark:",public"`

	Secret       frontend.Variable
	TokenMint    frontend.Variable
	Blinding     frontend.Variable
	Rho          frontend.Variable
	PathElements []frontend.Variable
	PathIndices  []frontend.Variable
}

func (c *WithdrawCircuit) Define(api frontend.API) error {
	hs, err := newHasher(api)
	if err != nil {
		return err
	}
	hs.spend(c.Secret, c.Amount, c.TokenMint, c.Blinding, c.Rho, c.PathElements, c.PathIndices, c.Root, c.Nullifier)
	// bind the receiver to the proof
	api.Mul(c.Receiver, c.Receiver)
	return nil
}

type PartialWithdrawCircuit struct {
	Root           frontend.Variable `gnark:",public"`
	Nullifier      frontend.Variable `gnark:",public"`
	Receiver       frontend.Variable `gnark:",public"`
	WithdrawAmount frontend.Variable `gnark:",public"`

	Secret       frontend.Variable
	Amount       frontend.Variable
	TokenMint    frontend.Variable
	Blinding     frontend.Variable
	Rho          frontend.Variable
	PathElements []frontend.Variable
	PathIndices  []frontend.Variable

	Change OutputNote
}

func (c *PartialWithdrawCircuit) Define(api frontend.API) error {
	hs, err := newHasher(api)
	if err != nil {
		return err
	}
	hs.spend(c.Secret, c.Amount, c.TokenMint, c.Blinding, c.Rho, c.PathElements, c.PathIndices, c.Root, c.Nullifier)
	rangeCheck(api, c.WithdrawAmount)
	c.Change.check(hs, c.TokenMint)
	api.AssertIsEqual(c.Amount, api.Add(c.WithdrawAmount, c.Change.Amount))
	api.Mul(c.Receiver, c.Receiver)
	return nil
}

// ConsolidateCircuit merges len(Nullifiers) notes into one.
type ConsolidateCircuit struct {
	Nullifiers []frontend.Variable `gnark:",public"`
	Root       frontend.Variable   `gnark:",public"`

	TokenMint frontend.Variable
	In        Inputs
	Out       OutputNote
}

func (c *ConsolidateCircuit) Define(api frontend.API) error {
	hs, err := newHasher(api)
	if err != nil {
		return err
	}
	total := c.In.check(hs, c.TokenMint, c.Root, c.Nullifiers)
	c.Out.check(hs, c.TokenMint)
	api.AssertIsEqual(total, c.Out.Amount)
	return nil
}
