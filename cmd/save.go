package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/illarion/svault/internal/crypto"
	"github.com/illarion/svault/internal/git"
	"github.com/illarion/svault/internal/index"
	"github.com/illarion/svault/vault"
)

// SaveOptions configures svault save.
type SaveOptions struct {
	Input  string // file to read the document from; "" or "-" for stdin
	Params crypto.Params
	Force  bool // replace an existing vault without proving its password
}

// saved describes a completed save. The caller must clear password.
type saved struct {
	info     *vault.Info
	password []byte
	source   PasswordSource
}

// Save reads a document, validates it with the configured format and
// encrypts it into the vault file.
func Save(ctx context.Context, env *Env, opts SaveOptions) {
	plaintext, err := readInput(opts.Input)
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(plaintext)

	if opts.Input != "" && opts.Input != "-" {
		for _, w := range git.CheckFile(opts.Input).Warnings() {
			printWarning("%s", w)
		}
	}

	idx := env.OpenIndex()
	if idx != nil {
		defer idx.Close()
	}

	res, err := saveDocument(ctx, env, idx, plaintext, opts)
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(res.password)

	fmt.Printf("saved: %s (%s, %s)\n", env.Path, formatSize(res.info.Size), res.info.Params)

	if res.source == SourcePrompt {
		OfferToSavePassword(idx, env.Path, res.password)
	}
}

// saveDocument encrypts plaintext into the vault exactly as it was read. The
// document is only parsed to reject input the configured format cannot read.
// idx may be nil.
func saveDocument(ctx context.Context, env *Env, idx *index.Index, plaintext []byte, opts SaveOptions) (*saved, error) {
	var doc any
	if err := env.Codec.Unmarshal(plaintext, &doc); err != nil {
		return nil, fmt.Errorf("input is not valid %s: %w", env.Codec.Name(), err)
	}

	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}

	current := env.Vault(nil)
	exists := current.Exists()
	current.Close()

	var (
		password []byte
		source   PasswordSource
		err      error
	)
	if exists && !opts.Force {
		// The existing vault must open with the password we are about to
		// reuse, otherwise a typo would silently re-key it.
		password, source, err = GetPasswordWithRetry("Enter password: ", env.lookupVaultID(idx), func(pw []byte) error {
			v := env.Vault(pw)
			defer v.Close()
			return v.Verify()
		})
	} else {
		password, source, err = GetNewPassword(env.Path)
	}
	if err != nil {
		return nil, err
	}

	info, err := writeVault(ctx, env, idx, password, plaintext, opts.Params)
	if err != nil {
		crypto.ClearBytes(password)
		return nil, err
	}
	return &saved{info: info, password: password, source: source}, nil
}

func writeVault(ctx context.Context, env *Env, idx *index.Index, password, plaintext []byte, params crypto.Params) (*vault.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v := env.Vault(password, vault.WithParams(params.MemoryCost, params.TimeCost, params.Parallelism))
	defer v.Close()

	if err := v.SaveBytes(plaintext); err != nil {
		return nil, err
	}

	info, err := vault.Inspect(v.Path())
	if err != nil {
		return nil, err
	}

	if idx != nil {
		if _, err := idx.Record(index.Entry{
			Path:   v.Path(),
			Size:   info.Size,
			Codec:  env.Codec.Name(),
			Params: info.Params,
		}); err != nil {
			env.Log.Warn("failed to update index", zap.Error(err))
		}
	}
	return info, nil
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}
