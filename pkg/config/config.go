package config

import (
	_ "embed"
	"errors"
	"path/filepath"
	"strings"

	cgerrors "github.com/arthur-debert/confguard/pkg/errors"
	"github.com/arthur-debert/confguard/pkg/paths"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// EnvPrefix is the prefix of environment variables read into the config
const EnvPrefix = "CONFGUARD_"

// Config is the resolved confguard configuration. It is built once by Load
// and passed explicitly to every operation.
type Config struct {
	BaseDir    string     `koanf:"base_dir"`
	Version    int        `koanf:"version"`
	ConfigFile string     `koanf:"config_file"`
	Workers    int        `koanf:"workers"`
	Sops       SopsConfig `koanf:"sops"`
}

// SopsConfig selects the files the encryption commands operate on
type SopsConfig struct {
	FileExtensionsEnc []string `koanf:"file_extensions_enc" toml:"file_extensions_enc"`
	FileNamesEnc      []string `koanf:"file_names_enc" toml:"file_names_enc"`
	FileExtensionsDec []string `koanf:"file_extensions_dec" toml:"file_extensions_dec"`
	FileNamesDec      []string `koanf:"file_names_dec" toml:"file_names_dec"`
	GPGKey            string   `koanf:"gpg_key" toml:"gpg_key"`
}

// Layout returns the managed store layout for the configured base dir
func (c *Config) Layout() paths.Layout {
	return paths.Layout{BaseDir: c.BaseDir}
}

// Validate checks the values the guard lifecycle depends on
func (c *Config) Validate() error {
	var problems []string
	if c.BaseDir == "" || !filepath.IsAbs(c.BaseDir) {
		problems = append(problems, "base_dir must be an absolute path")
	}
	if c.Version < 1 {
		problems = append(problems, "version must be positive")
	}
	if c.ConfigFile == "" || strings.ContainsRune(c.ConfigFile, filepath.Separator) {
		problems = append(problems, "config_file must be a plain file name")
	}
	if c.Workers < 1 {
		problems = append(problems, "workers must be at least 1")
	}
	if len(problems) > 0 {
		return cgerrors.Wrap(errors.New(strings.Join(problems, "; ")), cgerrors.ErrConfigParse, "invalid configuration")
	}
	return nil
}
