package keyring

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const serviceName = "svault"

// ErrNotFound is returned when no password is stored for a vault.
var ErrNotFound = keyring.ErrNotFound

// SavePassword stores a vault's password in the OS keyring under its index ID.
func SavePassword(vaultID string, password string) error {
	return keyring.Set(serviceName, vaultID, password)
}

// GetPassword retrieves a password from the OS keyring
func GetPassword(vaultID string) (string, error) {
	return keyring.Get(serviceName, vaultID)
}

// DeletePassword removes a password from the OS keyring. Deleting a missing
// entry is not an error.
func DeletePassword(vaultID string) error {
	if err := keyring.Delete(serviceName, vaultID); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

// HasPassword checks if a password is stored in the keyring
func HasPassword(vaultID string) bool {
	_, err := keyring.Get(serviceName, vaultID)
	return err == nil
}
