package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/svault/internal/crypto"
	"github.com/illarion/svault/internal/textdiff"
)

// Diff compares the decrypted vault document with a local file. Both sides
// are rendered in the configured format so that key order and whitespace do
// not show up as changes.
func Diff(ctx context.Context, env *Env, localPath string) {
	local, err := readInput(localPath)
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(local)

	idx := env.OpenIndex()
	if idx != nil {
		defer idx.Close()
	}

	doc, password, _, err := decryptDocument(ctx, env, idx)
	if err != nil {
		HandleError(err)
	}
	crypto.ClearBytes(password)

	vaultText, localText, err := diffTexts(env, doc, local)
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(vaultText)
	defer crypto.ClearBytes(localText)

	name := localPath
	if name == "" || name == "-" {
		name = "stdin"
	}

	diff := textdiff.Unified("vault:"+env.Path, name, vaultText, localText)
	if diff == "" {
		fmt.Println("No differences")
		return
	}

	fmt.Print(diff)
	fmt.Printf("\n%s: %s\n", name, textdiff.Stat(vaultText, localText))
}

// diffTexts renders the vault document and the local file in the display
// format. A local file the codec cannot parse is compared as is. Both
// returned slices are owned by the caller.
func diffTexts(env *Env, doc any, local []byte) (vaultText, localText []byte, err error) {
	out := display(env.Codec)
	vaultText, err = out.Marshal(doc)
	if err != nil {
		return nil, nil, err
	}

	var localDoc any
	if err := env.Codec.Unmarshal(local, &localDoc); err == nil {
		if normalized, err := out.Marshal(localDoc); err == nil {
			return vaultText, normalized, nil
		}
	}
	return vaultText, append([]byte(nil), local...), nil
}
