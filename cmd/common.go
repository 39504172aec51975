package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/awnumar/memguard"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/illarion/svault/codec"
	"github.com/illarion/svault/internal/config"
	"github.com/illarion/svault/internal/crypto"
	"github.com/illarion/svault/internal/index"
	"github.com/illarion/svault/internal/keyring"
	"github.com/illarion/svault/internal/logging"
	"github.com/illarion/svault/internal/prompt"
	"github.com/illarion/svault/vault"
)

// Options are the flags shared by every command. Empty values fall back to
// the configuration.
type Options struct {
	File    string
	Format  string
	Verbose bool
}

// Env is the resolved environment a command runs in.
type Env struct {
	Config *config.Config
	Log    *zap.Logger
	Codec  codec.Codec
	Path   string // absolute vault path
}

// Setup loads the configuration, applies command-line overrides and builds
// the logger. It exits on error.
func Setup(opts Options) *Env {
	cfg, err := config.Load()
	if err != nil {
		printError("%s", err)
		os.Exit(1)
	}

	if opts.File != "" {
		cfg.VaultFile = opts.File
	}
	if opts.Format != "" {
		cfg.Format = opts.Format
	}
	if opts.Verbose {
		cfg.Verbose = true
	}

	c, err := codec.ByName(cfg.Format)
	if err != nil {
		printError("%s", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Verbose)
	if err != nil {
		printError("failed to init logger: %s", err)
		os.Exit(1)
	}

	path, err := filepath.Abs(cfg.VaultFile)
	if err != nil {
		path = cfg.VaultFile
	}

	log.Debug("configuration loaded",
		zap.String("source", cfg.Source),
		zap.String("vault", path),
		zap.String("index", cfg.IndexFile),
		zap.String("format", c.Name()),
		zap.Stringer("kdf", cfg.KDF),
	)

	return &Env{Config: cfg, Log: log, Codec: documentCodec(c), Path: path}
}

// Vault opens a handle on the environment's vault file.
func (e *Env) Vault(password []byte, opts ...vault.Option) *vault.Vault {
	base := []vault.Option{
		vault.WithParams(e.Config.KDF.MemoryCost, e.Config.KDF.TimeCost, e.Config.KDF.Parallelism),
		vault.WithCodec(e.Codec),
		vault.WithLogger(e.Log),
	}
	return vault.OpenBytes(e.Path, password, append(base, opts...)...)
}

// OpenIndex opens and initializes the vault registry. The index is a
// convenience; when it cannot be opened (another svault holds the lock, or
// the disk is read-only) a warning is logged and nil is returned.
func (e *Env) OpenIndex() *index.Index {
	idx, err := index.Open(e.Config.IndexFile)
	if err != nil {
		e.Log.Warn("index unavailable", zap.String("path", e.Config.IndexFile), zap.Error(err))
		return nil
	}
	if err := idx.Initialize(); err != nil {
		e.Log.Warn("index unavailable", zap.String("path", e.Config.IndexFile), zap.Error(err))
		idx.Close()
		return nil
	}
	return idx
}

// MustOpenIndex is like OpenIndex for commands that only operate on the
// index; it exits on error.
func (e *Env) MustOpenIndex() *index.Index {
	idx, err := index.Open(e.Config.IndexFile)
	if err != nil {
		HandleError(err)
	}
	if err := idx.Initialize(); err != nil {
		idx.Close()
		HandleError(err)
	}
	return idx
}

// lookupVaultID returns the keyring ID of the environment's vault, or "" when
// the vault is unknown.
func (e *Env) lookupVaultID(idx *index.Index) string {
	if idx == nil {
		return ""
	}
	entry, err := idx.Get(e.Path)
	if err != nil {
		return ""
	}
	return entry.ID
}

// readPassword is swapped out in tests.
var readPassword = prompt.ReadPassword

// PasswordSource records where a password came from.
type PasswordSource int

const (
	SourceEnv PasswordSource = iota
	SourceKeyring
	SourcePrompt
)

func (s PasswordSource) String() string {
	switch s {
	case SourceEnv:
		return prompt.PasswordEnv
	case SourceKeyring:
		return "keyring"
	default:
		return "prompt"
	}
}

// GetPasswordWithRetry tries SVAULT_PASSWORD, then the OS keyring, then the
// terminal. Each candidate is passed to try; a keyring password that fails
// with ErrDecryptionFailed is stale, so it is deleted and the user is
// prompted instead. The caller must crypto.ClearBytes the returned password.
func GetPasswordWithRetry(promptText, vaultID string, try func([]byte) error) ([]byte, PasswordSource, error) {
	if password := prompt.PasswordFromEnv(); password != nil {
		if err := try(password); err != nil {
			crypto.ClearBytes(password)
			return nil, SourceEnv, err
		}
		return password, SourceEnv, nil
	}

	if vaultID != "" {
		if stored, err := keyring.GetPassword(vaultID); err == nil {
			password := []byte(stored)
			err := try(password)
			if err == nil {
				return password, SourceKeyring, nil
			}
			crypto.ClearBytes(password)
			if !errors.Is(err, vault.ErrDecryptionFailed) {
				return nil, SourceKeyring, err
			}
			printWarning("password in keyring is out of date, removing it")
			_ = keyring.DeletePassword(vaultID)
		}
	}

	password, err := readPassword(promptText)
	if err != nil {
		return nil, SourcePrompt, err
	}
	if err := try(password); err != nil {
		crypto.ClearBytes(password)
		return nil, SourcePrompt, err
	}
	return password, SourcePrompt, nil
}

// GetNewPassword returns the password for a vault that does not exist yet:
// SVAULT_PASSWORD, or a confirmed terminal prompt. Weak typed passwords
// produce a warning but are accepted.
func GetNewPassword(path string) ([]byte, PasswordSource, error) {
	if password := prompt.PasswordFromEnv(); password != nil {
		return password, SourceEnv, nil
	}
	password, err := prompt.ReadPasswordConfirm()
	if err != nil {
		return nil, SourcePrompt, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if w := prompt.WeakPasswordWarning(password, name, "svault"); w != "" {
		printWarning("%s", w)
	}
	return password, SourcePrompt, nil
}

// OfferToSavePassword asks whether a typed password should be cached in the
// OS keyring. Nothing is asked when stdin is not a terminal or no index is
// available to assign the vault an ID.
func OfferToSavePassword(idx *index.Index, path string, password []byte) {
	if idx == nil || !term.IsTerminal(int(os.Stdin.Fd())) {
		return
	}

	vaultID, err := idx.VaultID(path)
	if err != nil || keyring.HasPassword(vaultID) {
		return
	}

	if !prompt.Confirm(os.Stdin, "Save password to OS keyring?") {
		return
	}
	if err := keyring.SavePassword(vaultID, string(password)); err != nil {
		printWarning("failed to save to keyring: %s", err)
		return
	}
	printHint("%s password saved to keyring", okMark)
}

// HandleError prints err in user terms and exits after wiping protected
// memory.
func HandleError(err error) {
	var uv *vault.UnsupportedVersionError
	switch {
	case errors.Is(err, vault.ErrDecryptionFailed):
		printError("wrong password or corrupted vault")
	case errors.As(err, &uv):
		printError("vault format version %d is not supported by this svault", uv.Version)
	case errors.Is(err, vault.ErrInvalidFormat):
		printError("not an svault file (%s)", err)
	case errors.Is(err, vault.ErrIO) && errors.Is(err, os.ErrNotExist):
		printError("vault file not found")
		printHint("Use 'svault save' to create one, or -f to pick another file")
	case errors.Is(err, vault.ErrKDF):
		printError("%s", err)
		printHint("Check --memory, --time and --parallelism")
	case errors.Is(err, prompt.ErrMismatch):
		printError("passwords do not match")
	case errors.Is(err, index.ErrNotFound):
		printError("vault not in index")
		printHint("Use 'svault ls' to see known vaults")
	default:
		printError("%s", err)
	}
	memguard.SafeExit(1)
}

func formatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%.1f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}
