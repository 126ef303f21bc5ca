package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	cgerrors "github.com/arthur-debert/confguard/pkg/errors"
	"github.com/arthur-debert/confguard/pkg/logging"
	"github.com/arthur-debert/confguard/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// Overrides are values set on the command line. They win over every other
// source.
type Overrides struct {
	BaseDir string
}

func (o Overrides) toMap() map[string]interface{} {
	m := map[string]interface{}{}
	if o.BaseDir != "" {
		m["base_dir"] = o.BaseDir
	}
	return m
}

// Load resolves the configuration. Sources in increasing precedence:
//  1. embedded defaults
//  2. <base_dir>/confguard.toml, when present
//  3. CONFGUARD_* environment variables
//  4. overrides
//
// The base dir itself comes from defaults, environment and overrides, since
// it locates the file of step 2.
func Load(overrides Overrides) (*Config, error) {
	logger := logging.GetLogger("config")

	baseDir, err := resolveBaseDir(overrides)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, cgerrors.Wrap(err, cgerrors.ErrConfigParse, "failed to load defaults")
	}

	descriptor := paths.Layout{BaseDir: baseDir}.ConfigPath()
	if _, err := os.Stat(descriptor); err == nil {
		if err := k.Load(file.Provider(descriptor), toml.Parser()); err != nil {
			return nil, cgerrors.Wrapf(err, cgerrors.ErrConfigParse, "failed to load %s", descriptor)
		}
		logger.Debug().Str("path", descriptor).Msg("Loaded config file")
	}

	if err := loadEnv(k); err != nil {
		return nil, err
	}
	if err := k.Load(confmap.Provider(overrides.toMap(), "."), nil); err != nil {
		return nil, cgerrors.Wrap(err, cgerrors.ErrConfigLoad, "failed to load overrides")
	}
	// The descriptor may not move the store it lives in
	if err := k.Set("base_dir", baseDir); err != nil {
		return nil, cgerrors.Wrap(err, cgerrors.ErrConfigLoad, "failed to set base dir")
	}

	cfg, err := unmarshal(k)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("base_dir", cfg.BaseDir).
		Int("version", cfg.Version).
		Str("config_file", cfg.ConfigFile).
		Msg("Configuration loaded")
	return cfg, nil
}

func resolveBaseDir(overrides Overrides) (string, error) {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return "", cgerrors.Wrap(err, cgerrors.ErrConfigParse, "failed to load defaults")
	}
	if err := loadEnv(k); err != nil {
		return "", err
	}
	if err := k.Load(confmap.Provider(overrides.toMap(), "."), nil); err != nil {
		return "", cgerrors.Wrap(err, cgerrors.ErrConfigLoad, "failed to load overrides")
	}

	baseDir := k.String("base_dir")
	if baseDir == "" {
		return paths.DefaultBaseDir(), nil
	}
	return paths.Abs(baseDir)
}

// envKey maps CONFGUARD_SOPS__GPG_KEY to sops.gpg_key
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

func loadEnv(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return cgerrors.Wrap(err, cgerrors.ErrConfigLoad, "failed to load env vars")
	}
	return nil
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, cgerrors.Wrap(fmt.Errorf("failed to unmarshal configuration: %w", err), cgerrors.ErrConfigParse, "invalid configuration")
	}
	return &cfg, nil
}
