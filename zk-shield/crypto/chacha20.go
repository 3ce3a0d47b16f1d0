package crypto

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

// aeadSeal encrypts plaintext with ChaCha20-Poly1305 and authenticates ad.
func aeadSeal(key, nonce, plaintext, ad []byte) ([]byte, error) {
	aead, err := newAEAD(key, nonce)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce, plaintext, ad), nil
}

func aeadOpen(key, nonce, ciphertext, ad []byte) ([]byte, error) {
	aead, err := newAEAD(key, nonce)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, ad)
	if err != nil {
		// wrong key or tampered box
		return nil, errors.Wrap(ErrNotRecipient, err.Error())
	}
	return plaintext, nil
}

type aeadCipher interface {
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
}

func newAEAD(key, nonce []byte) (aeadCipher, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, errors.Errorf("invalid key size: must be %d bytes", chacha20poly1305.KeySize)
	}
	if len(nonce) != chacha20poly1305.NonceSize {
		return nil, errors.Errorf("invalid nonce size: must be %d bytes", chacha20poly1305.NonceSize)
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, errors.Wrap(err, "chacha20poly1305")
	}
	return aead, nil
}
