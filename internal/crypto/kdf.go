package crypto

import (
	"fmt"
	"math"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/argon2"
)

const (
	DefaultMemoryCost  = 64 * 1024 // KiB, 64 MiB
	DefaultTimeCost    = 3
	DefaultParallelism = 1

	// MaxMemoryCost bounds the memory a header may request (4 GiB).
	MaxMemoryCost = 4 * 1024 * 1024
)

// Params are the Argon2id cost parameters. MemoryCost is in KiB.
type Params struct {
	MemoryCost  uint32 `json:"memory" yaml:"memory"`
	TimeCost    uint32 `json:"time" yaml:"time"`
	Parallelism uint32 `json:"parallelism" yaml:"parallelism"`
}

// DefaultParams returns the recommended Argon2id parameters.
func DefaultParams() Params {
	return Params{
		MemoryCost:  DefaultMemoryCost,
		TimeCost:    DefaultTimeCost,
		Parallelism: DefaultParallelism,
	}
}

func (p Params) String() string {
	return fmt.Sprintf("m=%d,t=%d,p=%d", p.MemoryCost, p.TimeCost, p.Parallelism)
}

// Validate reports whether argon2 can run with these parameters.
func (p Params) Validate() error {
	switch {
	case p.TimeCost == 0:
		return fmt.Errorf("%w: time cost must be at least 1", ErrKDF)
	case p.Parallelism == 0:
		return fmt.Errorf("%w: parallelism must be at least 1", ErrKDF)
	case p.Parallelism > math.MaxUint8:
		return fmt.Errorf("%w: parallelism %d exceeds %d", ErrKDF, p.Parallelism, math.MaxUint8)
	case uint64(p.MemoryCost) < 8*uint64(p.Parallelism):
		return fmt.Errorf("%w: memory cost %d KiB is below the minimum of %d KiB", ErrKDF, p.MemoryCost, 8*p.Parallelism)
	case p.MemoryCost > MaxMemoryCost:
		return fmt.Errorf("%w: memory cost %d KiB exceeds the maximum of %d KiB", ErrKDF, p.MemoryCost, MaxMemoryCost)
	}
	return nil
}

// NewSalt returns a fresh random salt.
func NewSalt() ([SaltSize]byte, error) {
	var salt [SaltSize]byte
	b, err := GenerateRandom(SaltSize)
	if err != nil {
		return salt, fmt.Errorf("%w: %v", ErrEncryption, err)
	}
	copy(salt[:], b)
	return salt, nil
}

// DeriveKey derives a 256-bit key from password and salt using Argon2id.
// The returned buffer is locked in memory; the caller must Destroy it.
func DeriveKey(password []byte, salt [SaltSize]byte, p Params) (key *memguard.LockedBuffer, err error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			key = nil
			err = fmt.Errorf("%w: %v", ErrKDF, r)
		}
	}()

	raw := argon2.IDKey(password, salt[:], p.TimeCost, p.MemoryCost, uint8(p.Parallelism), KeySize)
	if len(raw) != KeySize {
		ClearBytes(raw)
		return nil, fmt.Errorf("%w: derived key has unexpected length %d", ErrKDF, len(raw))
	}

	// NewBufferFromBytes wipes raw after copying it.
	return memguard.NewBufferFromBytes(raw), nil
}
