// Package index keeps a BBolt registry of the vault files svault has saved.
//
// Database structure uses two buckets:
//   - config: schema version and creation time
//   - vaults: absolute vault path -> JSON entry (UUID, size, KDF params, timestamps)
//
// The index holds no secret material. It lets svault ls and svault status
// work without a password, and gives each vault a stable UUID that
// keys its password in the OS keyring.
package index
