package format

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	SaltSize  = 32
	NonceSize = 12

	Version    uint8 = 1
	HeaderSize       = 4 + 1 + SaltSize + 4 + 4 + 4 + NonceSize

	offVersion     = 4
	offSalt        = 5
	offMemory      = offSalt + SaltSize
	offTime        = offMemory + 4
	offParallelism = offTime + 4
	offNonce       = offParallelism + 4
)

// Magic identifies a vault file.
var Magic = [4]byte{'S', 'V', 'L', 'T'}

var (
	ErrInvalidFormat      = errors.New("invalid vault format")
	ErrUnsupportedVersion = errors.New("unsupported vault version")
)

// UnsupportedVersionError is returned when the header carries a version this
// build does not understand.
type UnsupportedVersionError struct {
	Version uint8
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported vault version: %d", e.Version)
}

func (e *UnsupportedVersionError) Is(target error) bool {
	return target == ErrUnsupportedVersion
}

// Header is the unencrypted metadata preceding the ciphertext.
type Header struct {
	Salt        [SaltSize]byte
	MemoryCost  uint32
	TimeCost    uint32
	Parallelism uint32
	Nonce       [NonceSize]byte
}

// Encode serializes the header and ciphertext into the on-disk layout.
func Encode(h Header, ciphertext []byte) []byte {
	buf := make([]byte, HeaderSize, HeaderSize+len(ciphertext))
	copy(buf, Magic[:])
	buf[offVersion] = Version
	copy(buf[offSalt:], h.Salt[:])
	binary.LittleEndian.PutUint32(buf[offMemory:], h.MemoryCost)
	binary.LittleEndian.PutUint32(buf[offTime:], h.TimeCost)
	binary.LittleEndian.PutUint32(buf[offParallelism:], h.Parallelism)
	copy(buf[offNonce:], h.Nonce[:])
	return append(buf, ciphertext...)
}

// Decode parses data into a header and the trailing ciphertext. The returned
// ciphertext aliases data.
func Decode(data []byte) (Header, []byte, error) {
	var h Header

	if len(data) < HeaderSize {
		return h, nil, fmt.Errorf("%w: file too small: %d bytes (minimum is %d)", ErrInvalidFormat, len(data), HeaderSize)
	}

	if !bytes.Equal(data[:offVersion], Magic[:]) {
		return h, nil, fmt.Errorf("%w: bad magic number, not a vault file", ErrInvalidFormat)
	}

	if v := data[offVersion]; v != Version {
		return h, nil, &UnsupportedVersionError{Version: v}
	}

	copy(h.Salt[:], data[offSalt:offMemory])
	h.MemoryCost = binary.LittleEndian.Uint32(data[offMemory:])
	h.TimeCost = binary.LittleEndian.Uint32(data[offTime:])
	h.Parallelism = binary.LittleEndian.Uint32(data[offParallelism:])
	copy(h.Nonce[:], data[offNonce:HeaderSize])

	return h, data[HeaderSize:], nil
}
