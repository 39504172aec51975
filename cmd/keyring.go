package cmd

import (
	"fmt"
	"os"

	"github.com/illarion/svault/internal/crypto"
	"github.com/illarion/svault/internal/index"
	"github.com/illarion/svault/internal/keyring"
	"github.com/illarion/svault/internal/prompt"
)

// KeyringSave saves the vault password to the OS keyring
func KeyringSave(env *Env) {
	idx := env.MustOpenIndex()
	defer idx.Close()

	password, err := prompt.ReadPassword("Enter password: ")
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(password)

	// Verify password is correct
	v := env.Vault(password)
	err = v.Verify()
	v.Close()
	if err != nil {
		HandleError(err)
	}

	vaultID, err := idx.VaultID(env.Path)
	if err != nil {
		HandleError(err)
	}

	if err := keyring.SavePassword(vaultID, string(password)); err != nil {
		printError("failed to save to keyring: %s", err)
		os.Exit(1)
	}

	fmt.Println("Password saved to keyring")
}

// KeyringDelete removes the vault password from the OS keyring
func KeyringDelete(env *Env) {
	vaultID, ok := keyringID(env)
	if !ok || !keyring.HasPassword(vaultID) {
		fmt.Println("No password stored in keyring")
		return
	}

	if err := keyring.DeletePassword(vaultID); err != nil {
		printError("failed to remove from keyring: %s", err)
		os.Exit(1)
	}

	fmt.Println("Password removed from keyring")
}

// KeyringStatus checks if a password is stored in the keyring
func KeyringStatus(env *Env) {
	vaultID, ok := keyringID(env)
	if ok && keyring.HasPassword(vaultID) {
		fmt.Println("Password: stored in keyring")
	} else {
		fmt.Println("Password: not stored")
	}
}

func keyringID(env *Env) (string, bool) {
	idx := env.MustOpenIndex()
	defer idx.Close()

	entry, err := idx.Get(env.Path)
	if err == index.ErrNotFound {
		return "", false
	}
	if err != nil {
		HandleError(err)
	}
	return entry.ID, true
}
