// Package crypto provides the cryptographic primitives behind svault.
//
// Key derivation uses Argon2id with:
//   - 32-byte random salt per save (stored unencrypted in the vault header)
//   - 64 MiB memory, 3 passes, 1 lane by default
//   - cost parameters persisted next to the salt so a load reproduces the key
//
// Encryption uses AES-256-GCM with:
//   - 32-byte key produced by DeriveKey
//   - 12-byte random nonce generated inside Encrypt
//   - 16-byte authentication tag appended to the ciphertext
//
// Memory safety:
//   - Derived keys live in a memguard.LockedBuffer; call Destroy() when done
//   - Plaintext lives in a Secret; call Destroy() when done
//   - Use ClearBytes() to zero any other sensitive slice
package crypto
