package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", ErrEncryption, KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create cipher: %v", ErrEncryption, err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create GCM: %v", ErrEncryption, err)
	}
	return gcm, nil
}

// Encrypt encrypts plaintext using AES-256-GCM under a fresh random nonce.
// The returned ciphertext carries the authentication tag at its end.
func Encrypt(plaintext, key []byte) ([]byte, [NonceSize]byte, error) {
	var nonce [NonceSize]byte

	gcm, err := newGCM(key)
	if err != nil {
		return nil, nonce, err
	}

	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, nonce, fmt.Errorf("%w: failed to generate nonce: %v", ErrEncryption, err)
	}

	return gcm.Seal(nil, nonce[:], plaintext, nil), nonce, nil
}

// Decrypt verifies and decrypts ciphertext using AES-256-GCM.
// Any verification failure yields ErrDecryptionFailed with no further detail.
func Decrypt(ciphertext, key []byte, nonce [NonceSize]byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < TagSize {
		return nil, ErrDecryptionFailed
	}

	plaintext, err := gcm.Open(nil, nonce[:], ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}
