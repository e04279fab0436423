// Package config loads the trails tooling configuration from the environment and .env files.
package config

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	cselectors "github.com/smartcontractkit/chain-selectors"
	"github.com/spf13/cast"
)

// Environment variables read by Load.
const (
	EnvPrivateKey      = "PRIVATE_KEY"
	EnvChainID         = "CHAIN_ID"
	EnvProtocolAddress = "PROTOCOL_ADDRESS"
	EnvEntrypointOwner = "ENTRYPOINT_OWNER"
	EnvLogLevel        = "LOG_LEVEL"
)

const defaultLogLevel = "info"

var ErrMissingPrivateKey = errors.New(EnvPrivateKey + " is not set")

// Config is the configuration shared by the trails commands.
type Config struct {
	// PrivateKey is the hex encoded attester key, without 0x prefix.
	PrivateKey      string `validate:"omitempty,len=64,hexadecimal"`
	ChainID         uint64 `validate:"required"`
	ProtocolAddress string `validate:"omitempty,eth_addr"`
	EntrypointOwner string `validate:"omitempty,eth_addr"`
	LogLevel        string `validate:"oneof=debug info warn error"`
}

// Load reads the configuration from the process environment. Variables that are not set are
// read from the .env files in paths, or from ./.env if it exists and no path is given.
func Load(paths ...string) (*Config, error) {
	return LoadWithOverrides(nil, paths...)
}

// LoadWithOverrides is Load with the variables in overrides taking precedence over the
// environment.
func LoadWithOverrides(overrides map[string]string, paths ...string) (*Config, error) {
	if err := godotenv.Load(paths...); err != nil {
		if len(paths) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	return FromLookup(func(key string) (string, bool) {
		if v, ok := overrides[key]; ok {
			return v, true
		}

		return os.LookupEnv(key)
	})
}

// FromMap builds the configuration from env, as returned by godotenv.Read.
func FromMap(env map[string]string) (*Config, error) {
	return FromLookup(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
}

// FromLookup builds the configuration from the variables returned by lookup.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := &Config{
		PrivateKey:      strings.TrimPrefix(get(EnvPrivateKey), "0x"),
		ProtocolAddress: get(EnvProtocolAddress),
		EntrypointOwner: get(EnvEntrypointOwner),
		LogLevel:        strings.ToLower(get(EnvLogLevel)),
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	if raw := get(EnvChainID); raw != "" {
		chainID, err := cast.ToUint64E(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvChainID, raw, err)
		}
		cfg.ChainID = chainID
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration field tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config: field %s failed on %s", verrs[0].Field(), verrs[0].Tag())
		}

		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// Key returns the attester private key.
func (c *Config) Key() (*ecdsa.PrivateKey, error) {
	if c.PrivateKey == "" {
		return nil, ErrMissingPrivateKey
	}

	return crypto.HexToECDSA(c.PrivateKey)
}

func (c *Config) ChainIDBig() *big.Int {
	return new(big.Int).SetUint64(c.ChainID)
}

// Protocol returns the protocol contract calls are pinned to, the zero address if unset.
func (c *Config) Protocol() common.Address {
	return common.HexToAddress(c.ProtocolAddress)
}

func (c *Config) Owner() common.Address {
	return common.HexToAddress(c.EntrypointOwner)
}

// ChainName returns the chain-selectors name of the configured EVM chain.
func (c *Config) ChainName() (string, error) {
	details, err := cselectors.GetChainDetailsByChainIDAndFamily(strconv.FormatUint(c.ChainID, 10), cselectors.FamilyEVM)
	if err != nil {
		return "", fmt.Errorf("unknown EVM chain %d: %w", c.ChainID, err)
	}

	return details.ChainName, nil
}
