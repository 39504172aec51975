package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/illarion/svault/internal/fsutil"
	"github.com/illarion/svault/internal/keyring"
	"github.com/illarion/svault/internal/prompt"
)

// Forget removes vaults from the index together with any keyring password.
// With deleteFiles the vault files themselves are removed after
// confirmation (skipped with force).
func Forget(env *Env, paths []string, deleteFiles, force bool) {
	if len(paths) == 0 {
		paths = []string{env.Path}
	}

	idx := env.MustOpenIndex()
	defer idx.Close()

	if deleteFiles && !force {
		if !prompt.Confirm(os.Stdin, fmt.Sprintf("Delete %d vault file(s)? This cannot be undone.", len(paths))) {
			fmt.Println("Cancelled")
			return
		}
	}

	failed := false
	for _, p := range paths {
		abs, err := filepath.Abs(fsutil.ExpandHome(p))
		if err != nil {
			abs = p
		}

		entry, err := idx.Remove(abs)
		if err != nil {
			printError("%s: %s", p, err)
			failed = true
			continue
		}
		if err := keyring.DeletePassword(entry.ID); err != nil {
			printWarning("%s: failed to remove keyring password: %s", p, err)
		}

		if deleteFiles {
			if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
				printError("%s: %s", p, err)
				failed = true
				continue
			}
			fmt.Printf("deleted: %s\n", abs)
		} else {
			fmt.Printf("forgotten: %s\n", abs)
		}
	}

	if failed {
		os.Exit(1)
	}
}
