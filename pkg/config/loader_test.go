// pkg/config/loader_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (t.TempDir), environment variables
// PURPOSE: Test configuration layering: defaults, store file, env, overrides

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/confguard/pkg/config"
	"github.com/arthur-debert/confguard/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	data := t.TempDir()
	t.Setenv("XDG_DATA_HOME", data)
	t.Setenv("CONFGUARD_BASE_DIR", "")
	t.Setenv("CONFGUARD_VERSION", "")
	// t.Setenv restores the originals; unset so empty values are not loaded
	os.Unsetenv("CONFGUARD_BASE_DIR")
	os.Unsetenv("CONFGUARD_VERSION")
	return data
}

func TestLoadDefaults(t *testing.T) {
	data := isolate(t)

	cfg, err := config.Load(config.Overrides{})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(data, "confguard"), cfg.BaseDir)
	assert.Equal(t, 3, cfg.Version)
	assert.Equal(t, ".envrc", cfg.ConfigFile)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "60A4127E82E218297532FAB6D750B66AE08F3B90", cfg.Sops.GPGKey)
	assert.Contains(t, cfg.Sops.FileExtensionsEnc, "envrc")
	assert.Equal(t, []string{"enc"}, cfg.Sops.FileExtensionsDec)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	isolate(t)
	base := t.TempDir()
	t.Setenv("CONFGUARD_BASE_DIR", base)
	t.Setenv("CONFGUARD_VERSION", "5")
	t.Setenv("CONFGUARD_SOPS__GPG_KEY", "ABCDEF")

	cfg, err := config.Load(config.Overrides{})
	require.NoError(t, err)

	assert.Equal(t, base, cfg.BaseDir)
	assert.Equal(t, 5, cfg.Version)
	assert.Equal(t, "ABCDEF", cfg.Sops.GPGKey)
}

func TestLoadOverrideWinsOverEnv(t *testing.T) {
	isolate(t)
	fromEnv := t.TempDir()
	fromFlag := t.TempDir()
	t.Setenv("CONFGUARD_BASE_DIR", fromEnv)

	cfg, err := config.Load(config.Overrides{BaseDir: fromFlag})
	require.NoError(t, err)
	assert.Equal(t, fromFlag, cfg.BaseDir)
}

func TestLoadReadsStoreFile(t *testing.T) {
	isolate(t)
	base := t.TempDir()
	content := `
version = 4
workers = 2

[sops]
file_extensions_enc = ["yaml"]
file_names_enc = ["secrets.txt"]
gpg_key = "0123"
`
	require.NoError(t, os.WriteFile(filepath.Join(base, "confguard.toml"), []byte(content), 0644))

	cfg, err := config.Load(config.Overrides{BaseDir: base})
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Version)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, []string{"yaml"}, cfg.Sops.FileExtensionsEnc)
	assert.Equal(t, []string{"secrets.txt"}, cfg.Sops.FileNamesEnc)
	assert.Equal(t, "0123", cfg.Sops.GPGKey)
	// Keys absent from the file keep their defaults
	assert.Equal(t, []string{"enc"}, cfg.Sops.FileExtensionsDec)
}

func TestLoadStoreFileCannotMoveStore(t *testing.T) {
	isolate(t)
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "confguard.toml"), []byte(`base_dir = "/elsewhere"`), 0644))

	cfg, err := config.Load(config.Overrides{BaseDir: base})
	require.NoError(t, err)
	assert.Equal(t, base, cfg.BaseDir)
}

func TestLoadInvalidStoreFile(t *testing.T) {
	isolate(t)
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "confguard.toml"), []byte("version = [[["), 0644))

	_, err := config.Load(config.Overrides{BaseDir: base})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}

func TestValidate(t *testing.T) {
	valid := config.Config{BaseDir: "/store", Version: 3, ConfigFile: ".envrc", Workers: 1}
	assert.NoError(t, valid.Validate())

	bad := valid
	bad.ConfigFile = "nested/.envrc"
	assert.Error(t, bad.Validate())

	bad = valid
	bad.BaseDir = "relative"
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Workers = 0
	err := bad.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}
