// Package guard implements the guard lifecycle of a project's sensitive
// config file: moving it into the managed store behind a symlink, tearing the
// link down again, and rebuilding it from the metadata the stored file
// carries.
//
// States of a project's config file:
//
//	Unguarded   plain file without a section
//	Guarded     symlink into the store, target carries a valid section
//	BrokenLink  symlink whose target is missing
//
// Every entry point takes the configuration and filesystem explicitly.
package guard

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/confguard/pkg/config"
	"github.com/arthur-debert/confguard/pkg/errors"
	"github.com/arthur-debert/confguard/pkg/filesystem"
	"github.com/arthur-debert/confguard/pkg/paths"
	"github.com/arthur-debert/confguard/pkg/section"
)

// Guard is the managed relationship between a project directory and its
// private directory in the store.
type Guard struct {
	Version    int
	SourceDir  string
	Relative   bool
	BaseDir    string
	TargetDir  string
	Sentinel   string
	ConfigFile string
	// Timestamp is set when recovered from a section
	Timestamp string

	cfg *config.Config
	fs  filesystem.FS
	now func() time.Time
}

// New prepares a guard for an unguarded project. The project's config file
// must exist, must not be a symlink and must not carry a section.
func New(cfg *config.Config, fsys filesystem.FS, sourceDir string) (*Guard, error) {
	dir, err := paths.Canonical(sourceDir)
	if err != nil {
		return nil, err
	}

	g := newGuard(cfg, fsys)
	g.SourceDir = dir

	configPath := g.ConfigPath()
	info, err := fsys.Lstat(configPath)
	if err != nil {
		if filesystem.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrNoConfigFile, "no %s in %s", g.ConfigFile, dir)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", configPath)
	}
	if info.Mode()&filesystem.ModeSymlink != 0 {
		return nil, errors.Newf(errors.ErrAlreadyGuarded, "%s is already guarded (it is a symlink)", configPath)
	}

	content, err := fsys.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", configPath)
	}
	if section.Has(string(content)) {
		return nil, errors.Newf(errors.ErrAlreadyGuarded, "%s already carries a confguard section", configPath)
	}

	return g, nil
}

// FromFile recovers a guard from the section embedded in the file at path.
// It returns nil when the file carries no valid section.
func FromFile(cfg *config.Config, fsys filesystem.FS, path string) (*Guard, error) {
	content, err := fsys.ReadFile(path)
	if err != nil {
		if filesystem.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrNotFound, "file does not exist: %s", path)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", path)
	}

	fields, err := section.Parse(string(content))
	if err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, nil
	}

	sourceDir, err := paths.FromHomeBased(fields.SourceDir)
	if err != nil {
		return nil, err
	}

	g := newGuard(cfg, fsys)
	g.Version = fields.Version
	g.SourceDir = sourceDir
	g.Relative = fields.Relative
	g.Sentinel = fields.Sentinel
	g.TargetDir = cfg.Layout().SentinelDir(fields.Sentinel)
	g.Timestamp = fields.Timestamp
	return g, nil
}

// FromProject recovers the guard of a guarded project from its config file
func FromProject(cfg *config.Config, fsys filesystem.FS, sourceDir string) (*Guard, error) {
	dir, err := paths.Canonical(sourceDir)
	if err != nil {
		return nil, err
	}
	configPath := filepath.Join(dir, cfg.ConfigFile)
	if !filesystem.Exists(fsys, configPath) {
		return nil, errors.Newf(errors.ErrNoConfigFile, "no %s in %s", cfg.ConfigFile, dir)
	}

	g, err := FromFile(cfg, fsys, configPath)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, errors.Newf(errors.ErrNotGuarded, "%s is not guarded", dir)
	}
	return g, nil
}

func newGuard(cfg *config.Config, fsys filesystem.FS) *Guard {
	return &Guard{
		Version:    cfg.Version,
		BaseDir:    cfg.BaseDir,
		ConfigFile: cfg.ConfigFile,
		cfg:        cfg,
		fs:         fsys,
		now:        time.Now,
	}
}

// ConfigPath is the config file inside the project
func (g *Guard) ConfigPath() string {
	return filepath.Join(g.SourceDir, g.ConfigFile)
}

// StoredPath is where the config file lives once guarded
func (g *Guard) StoredPath() string {
	return filepath.Join(g.TargetDir, paths.StoredName(g.ConfigFile))
}

// Managed reports whether a resolved link target belongs to this guard: one
// of its path components must equal the sentinel.
func (g *Guard) Managed(target string) bool {
	if g.Sentinel == "" {
		return false
	}
	for _, part := range strings.Split(filepath.Clean(target), string(filepath.Separator)) {
		if part == g.Sentinel {
			return true
		}
	}
	return false
}

// fields builds the section recorded in the stored file
func (g *Guard) fields() (section.Fields, error) {
	sourceDir, err := paths.ToHomeBased(g.SourceDir)
	if err != nil {
		return section.Fields{}, err
	}
	sopsPath, err := paths.RelativeToHome(g.TargetDir)
	if err != nil {
		return section.Fields{}, err
	}
	return section.Fields{
		Relative:  g.Relative,
		Version:   g.Version,
		Sentinel:  g.Sentinel,
		Timestamp: section.NewTimestamp(g.now()),
		SourceDir: sourceDir,
		SopsPath:  sopsPath,
	}, nil
}
