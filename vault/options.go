package vault

import (
	"github.com/illarion/svault/codec"
	"github.com/illarion/svault/internal/crypto"
	"go.uber.org/zap"
)

// Params are the Argon2id cost parameters used when saving. MemoryCost is in
// KiB.
type Params = crypto.Params

// DefaultParams returns 64 MiB memory, 3 passes and 1 lane.
func DefaultParams() Params {
	return crypto.DefaultParams()
}

// Option configures a Vault.
type Option func(*Vault)

// WithParams overrides the cost parameters used on save. Loads always use
// the parameters stored in the file.
func WithParams(memory, time, parallelism uint32) Option {
	return func(v *Vault) {
		v.params = Params{MemoryCost: memory, TimeCost: time, Parallelism: parallelism}
	}
}

// WithCodec replaces the default JSON codec.
func WithCodec(c codec.Codec) Option {
	return func(v *Vault) {
		if c != nil {
			v.codec = c
		}
	}
}

// WithLogger sets the logger for diagnostic events. Secrets are never logged.
func WithLogger(l *zap.Logger) Option {
	return func(v *Vault) {
		if l != nil {
			v.log = l
		}
	}
}
