// pkg/testutil/environment.go
// DEPENDENCIES: None (base test utilities)
// PURPOSE: Isolated home, store and project directories for tests

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/confguard/pkg/config"
	"github.com/arthur-debert/confguard/pkg/filesystem"
)

// TestEnvironment provides an isolated home directory containing a managed
// store and one project, plus a config pointing at that store.
type TestEnvironment struct {
	HomeDir    string
	BaseDir    string
	ProjectDir string

	FS     filesystem.FS
	Config *config.Config

	t *testing.T
}

// NewTestEnvironment creates the directories and sets HOME and the XDG
// variables so nothing outside the temp dir is touched.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	// Canonical temp dir so path comparisons survive /tmp being a symlink
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to resolve temp dir: %v", err)
	}

	env := &TestEnvironment{
		HomeDir: filepath.Join(root, "home"),
		FS:      filesystem.NewOS(),
		t:       t,
	}
	env.BaseDir = filepath.Join(env.HomeDir, "xxx", "rs-cg")
	env.ProjectDir = filepath.Join(env.HomeDir, "dev", "myproject")

	for _, dir := range []string{env.HomeDir, env.BaseDir, env.ProjectDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	t.Setenv("HOME", env.HomeDir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(env.HomeDir, ".local", "share"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(env.HomeDir, ".local", "state"))

	env.Config = &config.Config{
		BaseDir:    env.BaseDir,
		Version:    3,
		ConfigFile: ".envrc",
		Workers:    2,
		Sops: config.SopsConfig{
			FileExtensionsEnc: []string{"envrc", "env"},
			FileNamesEnc:      []string{"dot_pgpass"},
			FileExtensionsDec: []string{"enc"},
			GPGKey:            "TESTKEY",
		},
	}

	return env
}

// ProjectPath returns a path inside the project
func (e *TestEnvironment) ProjectPath(rel ...string) string {
	return filepath.Join(append([]string{e.ProjectDir}, rel...)...)
}

// WriteFile writes content to path, creating parent directories
func (e *TestEnvironment) WriteFile(path, content string) string {
	e.t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		e.t.Fatalf("Failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		e.t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// WriteEnvrc writes the project's config file
func (e *TestEnvironment) WriteEnvrc(content string) string {
	e.t.Helper()
	return e.WriteFile(e.ProjectPath(e.Config.ConfigFile), content)
}

// ReadFile returns the content of path, following links
func (e *TestEnvironment) ReadFile(path string) string {
	e.t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		e.t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

// GuardedDirs lists the sentinel directories of the store
func (e *TestEnvironment) GuardedDirs() []string {
	e.t.Helper()
	entries, err := os.ReadDir(e.Config.Layout().GuardedDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		e.t.Fatalf("Failed to list guarded dir: %v", err)
	}
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}
