// Package config resolves svault settings from defaults, an optional YAML
// file and SVAULT_* environment variables, in that order of precedence.
// Command-line flags are applied on top by the cmd package.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/illarion/svault/internal/crypto"
	"github.com/illarion/svault/internal/fsutil"
)

// Default locations. A leading "~/" is expanded at load time.
const (
	DefaultDir        = "~/.svault"
	DefaultVaultFile  = DefaultDir + "/vault.svlt"
	DefaultIndexFile  = DefaultDir + "/index.db"
	DefaultConfigFile = DefaultDir + "/config.yaml"
)

// Environment variables.
const (
	EnvConfig         = "SVAULT_CONFIG"
	EnvFile           = "SVAULT_FILE"
	EnvIndex          = "SVAULT_INDEX"
	EnvFormat         = "SVAULT_FORMAT"
	EnvKDFMemory      = "SVAULT_KDF_MEMORY"
	EnvKDFTime        = "SVAULT_KDF_TIME"
	EnvKDFParallelism = "SVAULT_KDF_PARALLELISM"
	EnvVerbose        = "SVAULT_VERBOSE"
)

// Config holds the resolved settings.
type Config struct {
	// VaultFile is the default vault path for commands without -f.
	VaultFile string `yaml:"vault"`

	// IndexFile is the BBolt registry of saved vaults.
	IndexFile string `yaml:"index"`

	// Format names the codec: json or yaml.
	Format string `yaml:"format"`

	// KDF holds the Argon2id params used for new saves.
	KDF crypto.Params `yaml:"kdf"`

	Verbose bool `yaml:"verbose"`

	// Source is the config file that was read, empty if none.
	Source string `yaml:"-"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		VaultFile: DefaultVaultFile,
		IndexFile: DefaultIndexFile,
		Format:    "json",
		KDF:       crypto.DefaultParams(),
	}
}

// Load builds the configuration. The file named by SVAULT_CONFIG, or the
// default config file, is read when present; a missing file is not an error
// but an explicitly named one is.
func Load() (*Config, error) {
	cfg := Default()

	path, explicit := os.LookupEnv(EnvConfig)
	if !explicit || path == "" {
		path, explicit = DefaultConfigFile, false
	}
	path = fsutil.ExpandHome(path)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error while parsing config file %s: %w", path, err)
		}
		cfg.Source = path
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("error while reading config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.VaultFile = fsutil.ExpandHome(cfg.VaultFile)
	cfg.IndexFile = fsutil.ExpandHome(cfg.IndexFile)
	cfg.Format = strings.ToLower(cfg.Format)

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvFile); v != "" {
		c.VaultFile = v
	}
	if v := os.Getenv(EnvIndex); v != "" {
		c.IndexFile = v
	}
	if v := os.Getenv(EnvFormat); v != "" {
		c.Format = v
	}

	for _, e := range []struct {
		name string
		dst  *uint32
	}{
		{EnvKDFMemory, &c.KDF.MemoryCost},
		{EnvKDFTime, &c.KDF.TimeCost},
		{EnvKDFParallelism, &c.KDF.Parallelism},
	} {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", e.name, v, err)
		}
		*e.dst = uint32(n)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", EnvVerbose, v, err)
		}
		c.Verbose = b
	}
	return nil
}
