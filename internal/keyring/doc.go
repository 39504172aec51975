// Package keyring caches vault passwords in the OS keyring (macOS Keychain,
// Secret Service, Windows Credential Manager), keyed by the vault's index ID.
package keyring
