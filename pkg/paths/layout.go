package paths

import "path/filepath"

// Managed store layout below the base directory
const (
	GuardedDirName      = "guarded"
	EnvironmentsDirName = "environments"
	ConfigFileName      = "confguard.toml"
	// StoredPrefix is prepended to a config file's name inside the sentinel dir
	StoredPrefix = "dot"
)

// IDE helper locations relative to a project
const (
	RunConfigurationsDir = ".idea/runConfigurations"
	RunScriptName        = "rsenv.sh"
	RunConfigName        = "confguard_env.xml"
)

// Environments are the stub files created for every guarded project
var Environments = []string{"local", "test", "int", "prod"}

// Layout resolves locations inside a managed store
type Layout struct {
	BaseDir string
}

// GuardedDir is the parent of every sentinel directory
func (l Layout) GuardedDir() string {
	return filepath.Join(l.BaseDir, GuardedDirName)
}

// SentinelDir is the private directory of one guarded project
func (l Layout) SentinelDir(sentinel string) string {
	return filepath.Join(l.GuardedDir(), sentinel)
}

// EnvironmentsDir holds the environment stubs of one guarded project
func (l Layout) EnvironmentsDir(sentinel string) string {
	return filepath.Join(l.SentinelDir(sentinel), EnvironmentsDirName)
}

// ConfigPath is the encryption descriptor at the store root
func (l Layout) ConfigPath() string {
	return filepath.Join(l.BaseDir, ConfigFileName)
}

// StoredName returns the name a config file takes inside the sentinel dir,
// e.g. ".envrc" becomes "dot.envrc"
func StoredName(configFile string) string {
	return StoredPrefix + configFile
}

// RunScriptPath returns the IDE run script location for a project
func RunScriptPath(projectDir string) string {
	return filepath.Join(projectDir, RunConfigurationsDir, RunScriptName)
}

// RunConfigPath returns the IDE run configuration location for a project
func RunConfigPath(projectDir string) string {
	return filepath.Join(projectDir, RunConfigurationsDir, RunConfigName)
}
