package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/awnumar/memguard"
)

const (
	SaltSize  = 32 // Salt size in bytes
	KeySize   = 32 // AES-256 key size
	NonceSize = 12 // GCM nonce size
	TagSize   = 16 // GCM authentication tag size
)

var (
	ErrKDF              = errors.New("key derivation error")
	ErrEncryption       = errors.New("encryption error")
	ErrDecryptionFailed = errors.New("decryption failed: wrong password or corrupted vault")
)

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	memguard.WipeBytes(b)
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}

// Secret owns a plaintext buffer. Destroy overwrites it with zeroes; it is
// safe to call more than once and on a nil Secret.
type Secret struct {
	buf []byte
}

// NewSecret takes ownership of b. The caller must not keep using b after
// Destroy.
func NewSecret(b []byte) *Secret {
	return &Secret{buf: b}
}

// Bytes returns the underlying buffer, or nil once destroyed.
func (s *Secret) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.buf
}

// Len returns the size of the buffer.
func (s *Secret) Len() int {
	return len(s.Bytes())
}

// Destroy wipes and releases the buffer.
func (s *Secret) Destroy() {
	if s == nil || s.buf == nil {
		return
	}
	memguard.WipeBytes(s.buf)
	s.buf = nil
}
