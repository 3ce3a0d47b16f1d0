package types

import (
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/kysee/zkshield/utils"
	"github.com/pkg/errors"
)

// Note is a private record of value. Its commitment and nullifier are
// always derived from these five fields and never stored alongside them.
type Note struct {
	Secret    *big.Int
	Amount    *uint256.Int
	TokenMint *big.Int
	Blinding  *big.Int
	Rho       *big.Int
}

// CreateNote builds a note from its fields. Values at or above the field
// order are rejected with ErrFieldOverflow instead of being reduced.
func CreateNote(secret *big.Int, amount *uint256.Int, tokenMint, blinding, rho *big.Int) (*Note, error) {
	if amount == nil {
		return nil, errors.Wrap(ErrInvalidAmount, "nil amount")
	}
	fields := []struct {
		name string
		v    *big.Int
	}{
		{"secret", secret},
		{"amount", amount.ToBig()},
		{"tokenMint", tokenMint},
		{"blinding", blinding},
		{"rho", rho},
	}
	for _, f := range fields {
		if err := utils.CheckField(f.v); err != nil {
			return nil, errors.Wrap(err, f.name)
		}
	}
	return &Note{
		Secret:    new(big.Int).Set(secret),
		Amount:    amount.Clone(),
		TokenMint: new(big.Int).Set(tokenMint),
		Blinding:  new(big.Int).Set(blinding),
		Rho:       new(big.Int).Set(rho),
	}, nil
}

// NewRandomNote creates a note with fresh secret, blinding and rho.
func NewRandomNote(amount *uint256.Int, tokenMint *big.Int) (*Note, error) {
	var rnd [3]*big.Int
	for i := range rnd {
		v, err := utils.RandomField()
		if err != nil {
			return nil, err
		}
		rnd[i] = v
	}
	return CreateNote(rnd[0], amount, tokenMint, rnd[1], rnd[2])
}

// WithAmount returns a copy of n carrying a different amount.
func (n *Note) WithAmount(amount *uint256.Int) (*Note, error) {
	return CreateNote(n.Secret, amount, n.TokenMint, n.Blinding, n.Rho)
}

func (n *Note) AmountBig() *big.Int {
	return n.Amount.ToBig()
}

// Commitment = Hash(secret, amount, tokenMint, blinding)
func (n *Note) Commitment(h utils.Hasher) (*big.Int, error) {
	return h.Hash(n.Secret, n.AmountBig(), n.TokenMint, n.Blinding)
}

// Nullifier = Hash(secret, rho)
func (n *Note) Nullifier(h utils.Hasher) (*big.Int, error) {
	return h.Hash(n.Secret, n.Rho)
}

// VerifyNote checks declared identifiers against the ones recomputed from n.
// A nil declared value is not checked.
func VerifyNote(h utils.Hasher, n *Note, commitment, nullifier *big.Int) error {
	if commitment != nil {
		cm, err := n.Commitment(h)
		if err != nil {
			return err
		}
		if cm.Cmp(commitment) != 0 {
			return errors.Wrapf(ErrCommitmentMismatch, "declared %s, computed %s", commitment, cm)
		}
	}
	if nullifier != nil {
		nf, err := n.Nullifier(h)
		if err != nil {
			return err
		}
		if nf.Cmp(nullifier) != 0 {
			return errors.Wrapf(ErrNullifierMismatch, "declared %s, computed %s", nullifier, nf)
		}
	}
	return nil
}

func (n *Note) String() string {
	return fmt.Sprintf("Note{amount:%s, tokenMint:%s}", n.Amount.Dec(), n.TokenMint.String())
}

// SecretNote is the plaintext handed to a note's recipient. It carries
// everything needed to later spend the note.
type SecretNote struct {
	Version byte
	Note    *Note
	Memo    []byte
}

const SecretNoteVersion = 0x01

func NewSecretNote(n *Note, memo []byte) *SecretNote {
	return &SecretNote{Version: SecretNoteVersion, Note: n, Memo: memo}
}

// Bytes returns the RLP encoding of sn.
func (sn *SecretNote) Bytes() ([]byte, error) {
	return rlp.EncodeToBytes(sn)
}

// EncodeRLP implements rlp.Encoder.
func (sn *SecretNote) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, []interface{}{
		sn.Version,
		sn.Note.Secret,
		sn.Note.AmountBig(),
		sn.Note.TokenMint,
		sn.Note.Blinding,
		sn.Note.Rho,
		sn.Memo,
	})
}

// DecodeRLP implements rlp.Decoder.
func (sn *SecretNote) DecodeRLP(s *rlp.Stream) error {
	var temp struct {
		Version   byte
		Secret    *big.Int
		Amount    *big.Int
		TokenMint *big.Int
		Blinding  *big.Int
		Rho       *big.Int
		Memo      []byte
	}
	if err := s.Decode(&temp); err != nil {
		return err
	}
	if temp.Version != SecretNoteVersion {
		return fmt.Errorf("wrong secret note version: expected(%d), got(%d)", SecretNoteVersion, temp.Version)
	}
	amount, overflow := uint256.FromBig(temp.Amount)
	if overflow {
		return errors.Wrap(ErrFieldOverflow, "amount overflows uint256")
	}
	n, err := CreateNote(temp.Secret, amount, temp.TokenMint, temp.Blinding, temp.Rho)
	if err != nil {
		return err
	}
	sn.Version = temp.Version
	sn.Note = n
	sn.Memo = temp.Memo
	return nil
}

// DecodeSecretNote parses an RLP encoded SecretNote.
func DecodeSecretNote(bz []byte) (*SecretNote, error) {
	sn := new(SecretNote)
	if err := rlp.DecodeBytes(bz, sn); err != nil {
		return nil, err
	}
	return sn, nil
}
