package cmd

import (
	"fmt"
	"time"

	"github.com/illarion/svault/vault"
)

// Ls lists the vaults recorded in the index
func Ls(env *Env) {
	idx := env.MustOpenIndex()
	defer idx.Close()

	entries, err := idx.List()
	if err != nil {
		HandleError(err)
	}

	if len(entries) == 0 {
		fmt.Println("No vaults saved yet")
		return
	}

	fmt.Println("Known vaults:")
	for _, e := range entries {
		marker := "*"
		v := vault.Open(e.Path, "")
		if !v.Exists() {
			marker = "!"
		} else if e.Path == env.Path {
			marker = ">"
		}
		v.Close()
		fmt.Printf("  %s %s (%s, %s, saved %s)\n",
			marker, e.Path, formatSize(e.Size), e.Codec, e.Modified.Local().Format(time.DateTime))
	}
	fmt.Println()
	fmt.Println("  > current  ! missing on disk")
}
