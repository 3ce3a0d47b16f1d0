package utils

import (
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/pkg/errors"
)

// FieldSize is the byte width of a packed field element.
const FieldSize = 32

var (
	// ErrFieldOverflow is returned for values that are negative, do not fit
	// in FieldSize bytes, or are not canonical scalar field elements.
	ErrFieldOverflow = errors.New("field overflow")

	fieldModulus = fr.Modulus()
	maxFieldWord = new(big.Int).Lsh(big.NewInt(1), 8*FieldSize)
)

// FieldModulus returns a copy of the BN254 scalar field order r.
func FieldModulus() *big.Int {
	return new(big.Int).Set(fieldModulus)
}

// CheckField fails with ErrFieldOverflow unless 0 <= v < r.
func CheckField(v *big.Int) error {
	if v == nil {
		return errors.Wrap(ErrFieldOverflow, "nil value")
	}
	if v.Sign() < 0 || v.Cmp(fieldModulus) >= 0 {
		return errors.Wrapf(ErrFieldOverflow, "%s is not below the field order", v.String())
	}
	return nil
}

// ReduceField returns v mod r.
func ReduceField(v *big.Int) *big.Int {
	return new(big.Int).Mod(v, fieldModulus)
}

// ParseField parses a decimal or 0x-prefixed hex string into a canonical field element.
func ParseField(s string) (*big.Int, error) {
	v, err := ParseWord(s)
	if err != nil {
		return nil, err
	}
	if err := CheckField(v); err != nil {
		return nil, err
	}
	return v, nil
}

// ParseWord parses a decimal or 0x-prefixed hex string into a non-negative
// integer that fits in FieldSize bytes.
func ParseWord(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	v, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, errors.Errorf("invalid integer %q", s)
	}
	if v.Sign() < 0 || v.Cmp(maxFieldWord) >= 0 {
		return nil, errors.Wrapf(ErrFieldOverflow, "%s does not fit in %d bytes", v.String(), FieldSize)
	}
	return v, nil
}

// FieldBytes encodes v as FieldSize big-endian bytes.
func FieldBytes(v *big.Int) ([FieldSize]byte, error) {
	var out [FieldSize]byte
	if v == nil || v.Sign() < 0 || v.Cmp(maxFieldWord) >= 0 {
		return out, errors.Wrapf(ErrFieldOverflow, "%v does not fit in %d bytes", v, FieldSize)
	}
	v.FillBytes(out[:])
	return out, nil
}

// Dec renders v as the decimal string used in witness records.
func Dec(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// DecAll renders every element of vs with Dec.
func DecAll(vs []*big.Int) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = Dec(v)
	}
	return out
}

// RandomField draws a uniformly random scalar field element.
func RandomField() (*big.Int, error) {
	var e fr.Element
	if _, err := e.SetRandom(); err != nil {
		return nil, errors.Wrap(err, "random field element")
	}
	return e.BigInt(new(big.Int)), nil
}
