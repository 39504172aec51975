package vault

import (
	"os"

	"github.com/illarion/svault/internal/crypto"
	"github.com/illarion/svault/internal/format"
	"github.com/illarion/svault/internal/fsutil"
)

// Info describes a vault file without decrypting it.
type Info struct {
	Path           string
	Version        uint8
	Params         Params
	Size           int64
	CiphertextSize int
}

// PlaintextSize is the size of the encrypted value in bytes.
func (i *Info) PlaintextSize() int {
	if n := i.CiphertextSize - crypto.TagSize; n > 0 {
		return n
	}
	return 0
}

// Inspect reads the unencrypted header of the vault at path. No password is
// needed; the same structural checks as Load apply.
func Inspect(path string) (*Info, error) {
	path = fsutil.ExpandHome(path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, ioError(err)
	}

	header, ciphertext, err := format.Decode(raw)
	if err != nil {
		return nil, err
	}

	return &Info{
		Path:    path,
		Version: format.Version,
		Params: Params{
			MemoryCost:  header.MemoryCost,
			TimeCost:    header.TimeCost,
			Parallelism: header.Parallelism,
		},
		Size:           int64(len(raw)),
		CiphertextSize: len(ciphertext),
	}, nil
}
