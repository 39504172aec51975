// Package vault persists a single structured value to an encrypted file.
//
// A Vault is a handle made of a file path and a password. Save serializes the
// value (JSON by default), derives a key with Argon2id under a fresh salt,
// encrypts with AES-256-GCM under a fresh nonce and atomically replaces the
// file. Load reverses the pipeline using the cost parameters stored in the
// file, so vaults written with older defaults stay readable.
//
// Only the file is protected: an attacker with access to the file alone can
// neither recover the value nor the password, and any modification is
// detected. Wrong passwords and corrupted files fail identically with
// ErrDecryptionFailed.
//
//	v := vault.Open("~/.myapp.svlt", password)
//	defer v.Close()
//
//	if err := v.Save(cfg); err != nil {
//		return err
//	}
//	cfg, err := vault.LoadAs[Config](v)
package vault
