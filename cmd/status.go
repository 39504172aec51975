package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/illarion/svault/internal/index"
	"github.com/illarion/svault/internal/keyring"
	"github.com/illarion/svault/vault"
)

// Status shows the state of the vault file without asking for a password.
func Status(env *Env) {
	fmt.Printf("Vault: %s\n", env.Path)

	info, err := vault.Inspect(env.Path)
	switch {
	case err == nil:
		fmt.Printf("  format:     svault v%d\n", info.Version)
		fmt.Printf("  size:       %s\n", sizeSummary(info))
		fmt.Printf("  kdf:        argon2id %s\n", info.Params)
		fmt.Printf("  cipher:     AES-256-GCM\n")
	case errors.Is(err, os.ErrNotExist):
		fmt.Println("  not found")
		fmt.Println("Run 'svault save' to create it")
		return
	default:
		HandleError(err)
	}

	idx := env.OpenIndex()
	if idx == nil {
		return
	}
	defer idx.Close()

	entry, err := idx.Get(env.Path)
	if errors.Is(err, index.ErrNotFound) {
		fmt.Println("  index:      not recorded (saved by another tool or index reset)")
		return
	}
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("  document:   %s\n", entry.Codec)
	fmt.Printf("  created:    %s\n", entry.Created.Local().Format(time.RFC3339))
	fmt.Printf("  last saved: %s\n", entry.Modified.Local().Format(time.RFC3339))
	if entry.Size != info.Size {
		fmt.Printf("  %s file size differs from the last save recorded by svault\n", warnPrefix)
	}

	if keyring.HasPassword(entry.ID) {
		fmt.Println("  password:   stored in keyring")
	} else {
		fmt.Println("  password:   not stored")
	}
}

// sizeSummary reports the file size and the size of the document inside it.
func sizeSummary(info *vault.Info) string {
	return fmt.Sprintf("%s (%s plaintext)", formatSize(info.Size), formatSize(int64(info.PlaintextSize())))
}
