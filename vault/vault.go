package vault

import (
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"go.uber.org/zap"

	"github.com/illarion/svault/codec"
	"github.com/illarion/svault/internal/crypto"
	"github.com/illarion/svault/internal/format"
	"github.com/illarion/svault/internal/fsutil"
)

const FilePermSecure = 0600 // File: owner rw only

// Vault is a handle to an encrypted vault file. No I/O happens until Save,
// Load or Verify is called. A Vault is meant to be used from one goroutine at
// a time.
type Vault struct {
	path     string
	password *memguard.Enclave // nil for an empty password
	params   Params
	codec    codec.Codec
	log      *zap.Logger
	closed   bool
}

// Open prepares a handle for the vault at path. A leading "~/" is expanded
// to the user's home directory.
func Open(path, password string, opts ...Option) *Vault {
	// The conversion is our own copy; NewEnclave wipes it.
	return newVault(path, []byte(password), opts)
}

// OpenBytes is like Open but takes the password as bytes. The caller keeps
// ownership of password and remains responsible for clearing it.
func OpenBytes(path string, password []byte, opts ...Option) *Vault {
	sealed := make([]byte, len(password))
	copy(sealed, password)
	return newVault(path, sealed, opts)
}

// newVault seals password, which it takes ownership of and wipes.
func newVault(path string, password []byte, opts []Option) *Vault {
	v := &Vault{
		path:   fsutil.ExpandHome(path),
		params: crypto.DefaultParams(),
		codec:  codec.JSON{},
		log:    zap.NewNop(),
	}

	if len(password) > 0 {
		v.password = memguard.NewEnclave(password)
	}

	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Path returns the resolved vault file path.
func (v *Vault) Path() string {
	return v.path
}

// Params returns the cost parameters the next Save will use.
func (v *Vault) Params() Params {
	return v.params
}

// SetParams overrides the cost parameters used by subsequent saves. They are
// validated when Save runs.
func (v *Vault) SetParams(p Params) {
	v.params = p
}

// Exists reports whether a regular file is present at the vault path. A
// directory, or a path that cannot be stat'ed for any reason (including a
// permission error), reports false; Load then returns the underlying ErrIO.
func (v *Vault) Exists() bool {
	fi, err := os.Stat(v.path)
	return err == nil && fi.Mode().IsRegular()
}

// Close drops the sealed password. Further operations return ErrClosed.
func (v *Vault) Close() error {
	v.password = nil
	v.closed = true
	return nil
}

// Save serializes value, encrypts it and atomically replaces the vault file.
func (v *Vault) Save(value any) error {
	if v.closed {
		return ErrClosed
	}

	raw, err := v.codec.Marshal(value)
	if err != nil {
		crypto.ClearBytes(raw)
		return fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	plaintext := crypto.NewSecret(raw)
	defer plaintext.Destroy()

	return v.seal(plaintext.Bytes())
}

// SaveBytes encrypts data, a document already encoded in the handle's codec,
// and atomically replaces the vault file. The bytes are stored exactly as
// given; the caller keeps ownership of data. Load decodes them with the
// handle's codec.
func (v *Vault) SaveBytes(data []byte) error {
	if v.closed {
		return ErrClosed
	}
	return v.seal(data)
}

func (v *Vault) seal(plaintext []byte) error {
	salt, err := crypto.NewSalt()
	if err != nil {
		return err
	}

	key, err := v.deriveKey(salt, v.params)
	if err != nil {
		return err
	}
	defer key.Destroy()

	ciphertext, nonce, err := crypto.Encrypt(plaintext, key.Bytes())
	if err != nil {
		return err
	}

	header := format.Header{
		Salt:        salt,
		MemoryCost:  v.params.MemoryCost,
		TimeCost:    v.params.TimeCost,
		Parallelism: v.params.Parallelism,
		Nonce:       nonce,
	}
	data := format.Encode(header, ciphertext)

	if err := fsutil.WriteFileAtomic(v.path, data, FilePermSecure); err != nil {
		return ioError(err)
	}

	v.log.Debug("vault saved",
		zap.String("path", v.path),
		zap.String("codec", v.codec.Name()),
		zap.Int("bytes", len(data)),
		zap.Stringer("kdf", v.params),
	)
	return nil
}

// Load decrypts the vault file and decodes the value into out, which must be
// a non-nil pointer. The file is never modified.
func (v *Vault) Load(out any) error {
	plaintext, err := v.open()
	if err != nil {
		return err
	}
	defer plaintext.Destroy()

	if err := v.codec.Unmarshal(plaintext.Bytes(), out); err != nil {
		return fmt.Errorf("%w: %w", ErrDeserialization, err)
	}
	return nil
}

// Verify checks that the password opens the vault without decoding the
// value.
func (v *Vault) Verify() error {
	plaintext, err := v.open()
	if err != nil {
		return err
	}
	plaintext.Destroy()
	return nil
}

// LoadAs loads the vault into a new value of type T.
func LoadAs[T any](v *Vault) (T, error) {
	var out T
	if err := v.Load(&out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// open reads, parses and decrypts the vault file. The caller owns the
// returned plaintext and must Destroy it.
func (v *Vault) open() (*crypto.Secret, error) {
	if v.closed {
		return nil, ErrClosed
	}

	raw, err := os.ReadFile(v.path)
	if err != nil {
		return nil, ioError(err)
	}

	header, ciphertext, err := format.Decode(raw)
	if err != nil {
		return nil, err
	}

	params := Params{
		MemoryCost:  header.MemoryCost,
		TimeCost:    header.TimeCost,
		Parallelism: header.Parallelism,
	}
	key, err := v.deriveKey(header.Salt, params)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	pt, err := crypto.Decrypt(ciphertext, key.Bytes(), header.Nonce)
	if err != nil {
		v.log.Debug("vault decryption failed", zap.String("path", v.path))
		return nil, err
	}

	v.log.Debug("vault loaded",
		zap.String("path", v.path),
		zap.Int("bytes", len(raw)),
		zap.Stringer("kdf", params),
	)
	return crypto.NewSecret(pt), nil
}

func (v *Vault) deriveKey(salt [crypto.SaltSize]byte, p Params) (*memguard.LockedBuffer, error) {
	if v.password == nil {
		return crypto.DeriveKey(nil, salt, p)
	}

	password, err := v.password.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to unseal password: %v", ErrKDF, err)
	}
	defer password.Destroy()

	return crypto.DeriveKey(password.Bytes(), salt, p)
}
