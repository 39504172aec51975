package cmd

import (
	"fmt"
	"os"
)

// Compact compacts the index database to reclaim unused space
func Compact(env *Env) {
	idx := env.MustOpenIndex()
	defer idx.Close()

	info, err := os.Stat(idx.Path())
	if err != nil {
		HandleError(err)
	}
	sizeBefore := info.Size()

	if err := idx.Compact(); err != nil {
		HandleError(err)
	}

	info, err = os.Stat(idx.Path())
	if err != nil {
		HandleError(err)
	}
	sizeAfter := info.Size()

	fmt.Printf("Compacted: %s -> %s\n", formatSize(sizeBefore), formatSize(sizeAfter))
}
