package prover

import (
	"context"
	"io"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/backend/groth16"
	groth16_bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/constraint/solver"
	"github.com/consensys/gnark/frontend"
	"github.com/kysee/zkshield/zk-shield/circuit"
	"github.com/kysee/zkshield/zk-shield/codec"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type ProverOption func(*Groth16Prover)

func WithLogger(l zerolog.Logger) ProverOption {
	return func(p *Groth16Prover) {
		p.logger = l
	}
}

// Groth16Prover proves witnesses of one reference circuit shape.
// Its keys come from an unsafe local setup and are only fit for tests and
// development networks.
type Groth16Prover struct {
	kind   types.CircuitKind
	height int
	arity  int

	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
	vk  groth16.VerifyingKey

	logger zerolog.Logger
}

// ProofResult carries everything a relayer submits.
type ProofResult struct {
	Proof        []byte
	PublicInputs [][32]byte
}

func (r *ProofResult) Data() *codec.ProofData {
	return codec.NewProofData(r.Proof, r.PublicInputs)
}

func NewGroth16Prover(kind types.CircuitKind, height, arity int, opts ...ProverOption) (*Groth16Prover, error) {
	p := &Groth16Prover{kind: kind, height: height, arity: arity, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(p)
	}

	ccs, err := circuit.Compile(kind, height, arity)
	if err != nil {
		return nil, errors.Wrapf(err, "compile %s circuit", kind)
	}
	p.logger.Info().Str("circuit", string(kind)).Int("height", height).Int("arity", arity).
		Int("constraints", ccs.GetNbConstraints()).Msg("circuit compiled")

	if p.pk, p.vk, err = groth16.Setup(ccs); err != nil {
		return nil, errors.Wrap(err, "groth16 setup")
	}
	p.ccs = ccs
	return p, nil
}

// PackedVerifyingKey returns the verifying key in the on-chain layout.
func (p *Groth16Prover) PackedVerifyingKey() ([]byte, error) {
	vk, ok := p.vk.(*groth16_bn254.VerifyingKey)
	if !ok {
		return nil, errors.Errorf("unexpected verifying key type %T", p.vk)
	}
	return codec.PackVerifyingKey(codec.FromGnarkVerifyingKey(vk))
}

// ExportSolidity writes a Solidity verifier contract for the prover's key.
func (p *Groth16Prover) ExportSolidity(w io.Writer) error {
	return p.vk.ExportSolidity(w)
}

func (p *Groth16Prover) Prove(ctx context.Context, w types.Witness) (*ProofResult, error) {
	// deposits carry no path and a zero arity means the kind fixes it
	if kind, height, arity := circuit.Shape(w); kind != p.kind || (height != p.height && kind != types.KindDeposit) || (arity != p.arity && p.arity != 0) {
		return nil, errors.Errorf("witness shape %s/%d/%d does not match prover %s/%d/%d",
			kind, height, arity, p.kind, p.height, p.arity)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	assignment, err := circuit.Assign(w)
	if err != nil {
		return nil, err
	}
	wtn, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, errors.Wrap(err, "new witness")
	}
	proof, err := groth16.Prove(p.ccs, p.pk, wtn,
		backend.WithSolverOptions(solver.WithLogger(p.logger)),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "prove %s", p.kind)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bnProof, ok := proof.(*groth16_bn254.Proof)
	if !ok {
		return nil, errors.Errorf("unexpected proof type %T", proof)
	}
	packed, err := codec.PackProof(codec.FromGnarkProof(bnProof))
	if err != nil {
		return nil, err
	}
	pub, err := w.PublicInputs().Bytes()
	if err != nil {
		return nil, err
	}
	p.logger.Debug().Str("circuit", string(p.kind)).Int("publics", len(pub)).Msg("proof generated")
	return &ProofResult{Proof: packed, PublicInputs: pub}, nil
}
