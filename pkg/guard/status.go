package guard

import (
	"path/filepath"

	"github.com/arthur-debert/confguard/pkg/config"
	"github.com/arthur-debert/confguard/pkg/errors"
	"github.com/arthur-debert/confguard/pkg/filesystem"
	"github.com/arthur-debert/confguard/pkg/link"
	"github.com/arthur-debert/confguard/pkg/paths"
	"github.com/arthur-debert/confguard/pkg/templates"
)

// State of a project's config file
type State string

const (
	StateNoConfig   State = "no-config"
	StateUnguarded  State = "unguarded"
	StateGuarded    State = "guarded"
	StateBrokenLink State = "broken-link"
	// StateForeignLink is a symlink whose target carries no valid section
	StateForeignLink State = "foreign-link"
)

// Status describes a project as show reports it
type Status struct {
	State      State  `json:"state" yaml:"state"`
	SourceDir  string `json:"source_dir" yaml:"source_dir"`
	ConfigPath string `json:"config_path" yaml:"config_path"`
	LinkTarget string `json:"link_target,omitempty" yaml:"link_target,omitempty"`
	Sentinel   string `json:"sentinel,omitempty" yaml:"sentinel,omitempty"`
	TargetDir  string `json:"target_dir,omitempty" yaml:"target_dir,omitempty"`
	Relative   bool   `json:"relative" yaml:"relative"`
	Version    int    `json:"version,omitempty" yaml:"version,omitempty"`
	Timestamp  string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	// RunScript is the script the IDE run configuration executes
	RunScript string `json:"run_script,omitempty" yaml:"run_script,omitempty"`
}

// Inspect reports the state of the project at sourceDir without modifying it
func Inspect(cfg *config.Config, fsys filesystem.FS, sourceDir string) (*Status, error) {
	dir, err := paths.Canonical(sourceDir)
	if err != nil {
		return nil, err
	}
	st := &Status{
		SourceDir:  dir,
		ConfigPath: filepath.Join(dir, cfg.ConfigFile),
	}

	if !filesystem.Exists(fsys, st.ConfigPath) {
		st.State = StateNoConfig
		return st, nil
	}
	if !filesystem.IsSymlink(fsys, st.ConfigPath) {
		st.State = StateUnguarded
		return st, nil
	}

	target, err := link.Resolve(fsys, st.ConfigPath)
	if err != nil {
		return nil, err
	}
	st.LinkTarget = target
	if _, err := fsys.Stat(target); err != nil {
		st.State = StateBrokenLink
		return st, nil
	}

	g, err := FromFile(cfg, fsys, st.ConfigPath)
	if err != nil && !errors.IsKind(err, errors.KindNotFound) {
		return nil, err
	}
	if g == nil {
		st.State = StateForeignLink
		return st, nil
	}

	st.State = StateGuarded
	st.Sentinel = g.Sentinel
	st.TargetDir = g.TargetDir
	st.Relative = g.Relative
	st.Version = g.Version
	st.Timestamp = g.Timestamp

	if content, err := fsys.ReadFile(paths.RunConfigPath(dir)); err == nil {
		script, err := templates.RunConfigurationScript(string(content))
		if err != nil {
			return nil, err
		}
		st.RunScript = script
	}
	return st, nil
}
