package types

import (
	"math/big"

	"github.com/kysee/zkshield/utils"
	"github.com/pkg/errors"
)

// CircuitKind names a proving circuit. One verifying key exists per kind
// (and per input arity for consolidation).
type CircuitKind string

const (
	KindDeposit         CircuitKind = "deposit"
	KindTransfer        CircuitKind = "transfer"
	KindTransfer2       CircuitKind = "transfer2"
	KindTransfer4       CircuitKind = "transfer4"
	KindWithdraw        CircuitKind = "withdraw"
	KindPartialWithdraw CircuitKind = "partial_withdraw"
	KindConsolidate     CircuitKind = "consolidate"
)

// MaxConsolidateInputs bounds the consolidation circuit arity.
const MaxConsolidateInputs = 8

// Witness is the full private+public assignment handed to the prover.
type Witness interface {
	Kind() CircuitKind
	PublicInputs() PublicInputs
}

// PublicInputs are decimal strings in the exact order the verifier consumes them.
type PublicInputs []string

// Bytes encodes every input as 32 big-endian bytes.
func (p PublicInputs) Bytes() ([][32]byte, error) {
	out := make([][32]byte, len(p))
	for i, s := range p {
		v, err := utils.ParseField(s)
		if err != nil {
			return nil, errors.Wrapf(err, "public input %d", i)
		}
		if out[i], err = utils.FieldBytes(v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p PublicInputs) BigInts() ([]*big.Int, error) {
	out := make([]*big.Int, len(p))
	for i, s := range p {
		v, err := utils.ParseField(s)
		if err != nil {
			return nil, errors.Wrapf(err, "public input %d", i)
		}
		out[i] = v
	}
	return out, nil
}

type DepositWitness struct {
	Secret     string `json:"secret"`
	Amount     string `json:"amount"`
	TokenMint  string `json:"tokenMint"`
	Blinding   string `json:"blinding"`
	Commitment string `json:"commitment"`
}

func (w *DepositWitness) Kind() CircuitKind { return KindDeposit }

// PublicInputs repeats the commitment: the deposit circuit exposes both the
// computed and the declared value.
func (w *DepositWitness) PublicInputs() PublicInputs {
	return PublicInputs{w.Commitment, w.Commitment}
}

// TransferWitness spends one note into two outputs.
type TransferWitness struct {
	InSecret     string   `json:"inSecret"`
	InAmount     string   `json:"inAmount"`
	TokenMint    string   `json:"tokenMint"`
	InBlinding   string   `json:"inBlinding"`
	InRho        string   `json:"inRho"`
	PathElements []string `json:"pathElements"`
	PathIndices  []string `json:"pathIndices"`
	MerkleRoot   string   `json:"merkleRoot"`
	Nullifier    string   `json:"nullifier"`

	OutSecret     [2]string `json:"outSecret"`
	OutAmount     [2]string `json:"outAmount"`
	OutBlinding   [2]string `json:"outBlinding"`
	OutCommitment [2]string `json:"outCommitment"`
}

func (w *TransferWitness) Kind() CircuitKind { return KindTransfer }

func (w *TransferWitness) PublicInputs() PublicInputs {
	return PublicInputs{w.MerkleRoot, w.Nullifier}
}

// SpendInputs holds the per-input arrays shared by the N-input circuits.
type SpendInputs struct {
	InSecret     []string   `json:"inSecret"`
	InAmount     []string   `json:"inAmount"`
	InBlinding   []string   `json:"inBlinding"`
	InRho        []string   `json:"inRho"`
	PathElements [][]string `json:"pathElements"`
	PathIndices  [][]string `json:"pathIndices"`
	Nullifiers   []string   `json:"nullifiers"`
}

func (s *SpendInputs) Arity() int {
	return len(s.InSecret)
}

// MultiTransferWitness spends 2 or 4 notes into two outputs.
type MultiTransferWitness struct {
	SpendInputs
	TokenMint  string `json:"tokenMint"`
	MerkleRoot string `json:"merkleRoot"`

	OutSecret     [2]string `json:"outSecret"`
	OutAmount     [2]string `json:"outAmount"`
	OutBlinding   [2]string `json:"outBlinding"`
	OutCommitment [2]string `json:"outCommitment"`
}

func (w *MultiTransferWitness) Kind() CircuitKind {
	if w.Arity() == 2 {
		return KindTransfer2
	}
	return KindTransfer4
}

func (w *MultiTransferWitness) PublicInputs() PublicInputs {
	return append(PublicInputs{w.MerkleRoot}, w.Nullifiers...)
}

type WithdrawWitness struct {
	Secret       string   `json:"secret"`
	Amount       string   `json:"amount"`
	TokenMint    string   `json:"tokenMint"`
	Blinding     string   `json:"blinding"`
	Rho          string   `json:"rho"`
	PathElements []string `json:"pathElements"`
	PathIndices  []string `json:"pathIndices"`
	MerkleRoot   string   `json:"merkleRoot"`
	Nullifier    string   `json:"nullifier"`
	Receiver     string   `json:"receiver"`
}

func (w *WithdrawWitness) Kind() CircuitKind { return KindWithdraw }

func (w *WithdrawWitness) PublicInputs() PublicInputs {
	return PublicInputs{w.MerkleRoot, w.Receiver, w.Nullifier, w.Amount}
}

// PartialWithdrawWitness withdraws part of a note and re-shields the rest.
type PartialWithdrawWitness struct {
	WithdrawWitness
	WithdrawAmount   string `json:"withdrawAmount"`
	ChangeSecret     string `json:"changeSecret"`
	ChangeAmount     string `json:"changeAmount"`
	ChangeBlinding   string `json:"changeBlinding"`
	ChangeCommitment string `json:"changeCommitment"`
}

func (w *PartialWithdrawWitness) Kind() CircuitKind { return KindPartialWithdraw }

// PublicInputs differs in order from the full withdraw: the nullifier
// precedes the receiver.
func (w *PartialWithdrawWitness) PublicInputs() PublicInputs {
	return PublicInputs{w.MerkleRoot, w.Nullifier, w.Receiver, w.WithdrawAmount}
}

// ConsolidateWitness merges up to MaxConsolidateInputs notes into one.
type ConsolidateWitness struct {
	SpendInputs
	TokenMint  string `json:"tokenMint"`
	MerkleRoot string `json:"merkleRoot"`

	OutSecret     string `json:"outSecret"`
	OutAmount     string `json:"outAmount"`
	OutBlinding   string `json:"outBlinding"`
	OutCommitment string `json:"outCommitment"`
}

func (w *ConsolidateWitness) Kind() CircuitKind { return KindConsolidate }

func (w *ConsolidateWitness) PublicInputs() PublicInputs {
	out := make(PublicInputs, 0, len(w.Nullifiers)+1)
	out = append(out, w.Nullifiers...)
	return append(out, w.MerkleRoot)
}
