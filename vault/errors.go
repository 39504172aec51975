package vault

import (
	"errors"
	"fmt"

	"github.com/illarion/svault/internal/crypto"
	"github.com/illarion/svault/internal/format"
)

var (
	ErrIO                 = errors.New("i/o error")
	ErrInvalidFormat      = format.ErrInvalidFormat
	ErrUnsupportedVersion = format.ErrUnsupportedVersion
	ErrKDF                = crypto.ErrKDF
	ErrEncryption         = crypto.ErrEncryption
	ErrDecryptionFailed   = crypto.ErrDecryptionFailed
	ErrSerialization      = errors.New("serialization error")
	ErrDeserialization    = errors.New("deserialization error")
	ErrClosed             = errors.New("vault is closed")
)

// UnsupportedVersionError reports the version byte of a vault written by a
// newer (or foreign) format.
type UnsupportedVersionError = format.UnsupportedVersionError

func ioError(err error) error {
	return fmt.Errorf("%w: %w", ErrIO, err)
}
