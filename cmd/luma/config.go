package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/lumavm/luma/luau"
)

// DefaultConfigFile is looked for in the working directory when no -config
// flag is given.
const DefaultConfigFile = "luma.toml"

// Config is the on-disk CLI configuration.
type Config struct {
	VM    VMConfig    `toml:"vm"`
	Store StoreConfig `toml:"store"`
}

// VMConfig maps onto luau.Settings.
type VMConfig struct {
	VectorSize           int  `toml:"vector-size"`
	GeneralizedIteration bool `toml:"generalized-iteration"`
	ErrorHandling        bool `toml:"error-handling"`
	AllowProxyErrors     bool `toml:"allow-proxy-errors"`
	NamecallRepeatsHooks bool `toml:"namecall-repeats-hooks"`
}

// StoreConfig locates the chunk store.
type StoreConfig struct {
	Path string `toml:"path"`
}

// DefaultConfig mirrors luau.DefaultSettings.
func DefaultConfig() *Config {
	return &Config{
		VM: VMConfig{
			VectorSize:           3,
			GeneralizedIteration: true,
			ErrorHandling:        true,
			NamecallRepeatsHooks: true,
		},
	}
}

// LoadConfig reads a TOML config file. An empty path falls back to
// DefaultConfigFile if present; a missing default file just yields defaults.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Settings builds the VM settings this config describes.
func (c *Config) Settings() *luau.Settings {
	return &luau.Settings{
		VectorSize:           c.VM.VectorSize,
		GeneralizedIteration: c.VM.GeneralizedIteration,
		ErrorHandling:        c.VM.ErrorHandling,
		AllowProxyErrors:     c.VM.AllowProxyErrors,
		NamecallRepeatsHooks: c.VM.NamecallRepeatsHooks,
	}
}
