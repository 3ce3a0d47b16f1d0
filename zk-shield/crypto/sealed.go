package crypto

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

// ErrNotRecipient is returned when a sealed note does not open under a key.
var ErrNotRecipient = errors.New("sealed note is not addressed to this key")

const ephemeralKeySize = 32

// SealNote encrypts sn for the holder of recipient. The box is
// ephemeral public key(32) ‖ ChaCha20-Poly1305 ciphertext, with the
// ephemeral key authenticated as associated data.
func SealNote(recipient *eddsa.PublicKey, sn *types.SecretNote) ([]byte, error) {
	plaintext, err := sn.Bytes()
	if err != nil {
		return nil, err
	}
	eph, err := NewViewingKey()
	if err != nil {
		return nil, err
	}
	key, nonce, err := noteKey(eph, recipient)
	if err != nil {
		return nil, err
	}
	epk := eph.PublicKey.Bytes()
	ct, err := aeadSeal(key, nonce, plaintext, epk)
	if err != nil {
		return nil, err
	}
	return append(epk, ct...), nil
}

// OpenNote decrypts a box produced by SealNote.
func OpenNote(k *ViewingKey, box []byte) (*types.SecretNote, error) {
	if len(box) < ephemeralKeySize+chacha20poly1305.Overhead {
		return nil, errors.Wrapf(ErrNotRecipient, "box of %d bytes is too short", len(box))
	}
	epk := box[:ephemeralKeySize]
	eph := new(eddsa.PublicKey)
	if _, err := eph.SetBytes(epk); err != nil {
		return nil, errors.Wrap(ErrNotRecipient, "bad ephemeral key")
	}
	key, nonce, err := noteKey(k, eph)
	if err != nil {
		return nil, err
	}
	plaintext, err := aeadOpen(key, nonce, box[ephemeralKeySize:], epk)
	if err != nil {
		return nil, err
	}
	return types.DecodeSecretNote(plaintext)
}

func noteKey(k *eddsa.PrivateKey, other *eddsa.PublicKey) (key, nonce []byte, err error) {
	secret, err := sharedSecret(k, other)
	if err != nil {
		return nil, nil, err
	}
	stream, err := expandKey(secret, chacha20poly1305.KeySize+chacha20poly1305.NonceSize)
	if err != nil {
		return nil, nil, err
	}
	return stream[:chacha20poly1305.KeySize], stream[chacha20poly1305.KeySize:], nil
}
