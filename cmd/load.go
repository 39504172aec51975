package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/Jeffail/gabs/v2"

	"github.com/illarion/svault/codec"
	"github.com/illarion/svault/internal/crypto"
	"github.com/illarion/svault/internal/index"
	"github.com/illarion/svault/vault"
)

// Load decrypts the vault and prints the document to stdout in the
// configured format. A non-empty key selects a dotted path inside the
// document (e.g. "github.token"); string leaves are printed bare so they can
// be captured by scripts. Nothing is written to disk.
func Load(ctx context.Context, env *Env, key string) {
	idx := env.OpenIndex()
	if idx != nil {
		defer idx.Close()
	}

	doc, password, source, err := loadDocument(ctx, env, idx, key)
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(password)

	if s, ok := doc.(string); ok && key != "" {
		fmt.Println(s)
	} else {
		printDocument(env, doc)
	}

	if source == SourcePrompt {
		OfferToSavePassword(idx, env.Path, password)
	}
}

// loadDocument decrypts the vault and, when key is set, selects the value at
// that path. The caller must clear the returned password.
func loadDocument(ctx context.Context, env *Env, idx *index.Index, key string) (any, []byte, PasswordSource, error) {
	doc, password, source, err := decryptDocument(ctx, env, idx)
	if err != nil {
		return nil, nil, source, err
	}

	if key != "" {
		selected, err := selectKey(doc, key)
		if err != nil {
			crypto.ClearBytes(password)
			return nil, nil, source, err
		}
		doc = selected
	}
	return doc, password, source, nil
}

func printDocument(env *Env, doc any) {
	out, err := display(env.Codec).Marshal(doc)
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(out)

	if _, err := os.Stdout.Write(out); err != nil {
		HandleError(err)
	}
}

// selectKey returns the value at a dotted path. Array elements are addressed
// by index ("servers.0.host").
func selectKey(doc any, key string) (any, error) {
	c := gabs.Wrap(doc)
	if !c.ExistsP(key) {
		return nil, fmt.Errorf("key %q not found in vault document", key)
	}
	return c.Path(key).Data(), nil
}

// decryptDocument obtains a password and decodes the vault into a generic
// document. The vault is read with the format it was saved in when the
// index knows it; idx may be nil. The caller must clear the returned password.
func decryptDocument(ctx context.Context, env *Env, idx *index.Index) (any, []byte, PasswordSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, SourcePrompt, err
	}

	stored, vaultID := env.Codec, ""
	if idx != nil {
		if entry, err := idx.Get(env.Path); err == nil {
			vaultID = entry.ID
			if c, err := codec.ByName(entry.Codec); err == nil && entry.Codec != "" {
				stored = documentCodec(c)
			}
		}
	}

	var doc any
	password, source, err := GetPasswordWithRetry("Enter password: ", vaultID, func(pw []byte) error {
		v := env.Vault(pw, vault.WithCodec(stored))
		defer v.Close()
		return v.Load(&doc)
	})
	if err != nil {
		return nil, nil, source, err
	}
	return doc, password, source, nil
}

// documentCodec returns the codec used to decode documents into generic
// values. JSON numbers are kept as json.Number so large integers survive
// a round trip through the CLI.
func documentCodec(c codec.Codec) codec.Codec {
	if c.Name() == "json" {
		return codec.JSON{UseNumber: true}
	}
	return c
}

// display returns the codec used for terminal output.
func display(c codec.Codec) codec.Codec {
	if c.Name() == "json" {
		return prettyJSON{}
	}
	return c
}

// prettyJSON indents and terminates output with a newline.
type prettyJSON struct{ codec.JSON }

func (prettyJSON) Marshal(v any) ([]byte, error) {
	out, err := codec.JSON{Indent: "  "}.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
