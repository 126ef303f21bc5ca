package sops

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/arthur-debert/confguard/pkg/config"
	"github.com/arthur-debert/confguard/pkg/errors"
	"github.com/arthur-debert/confguard/pkg/filesystem"
	"github.com/arthur-debert/confguard/pkg/logging"
)

// EncryptedExt is appended to every encrypted file
const EncryptedExt = ".enc"

// Manager drives bulk encryption below a directory tree, by default the
// managed store.
type Manager struct {
	BaseDir  string
	Sops     config.SopsConfig
	Workers  int
	Crypto   *Crypto
	Progress Progress

	fs filesystem.FS
}

// New returns a manager for cfg. The store must already carry its
// confguard.toml descriptor.
func New(cfg *config.Config, fsys filesystem.FS, runner Runner) (*Manager, error) {
	descriptor := cfg.Layout().ConfigPath()
	if !filesystem.Exists(fsys, descriptor) {
		return nil, errors.Newf(errors.ErrNotFound, "encryption descriptor %s not found, run 'confguard sops init'", descriptor).
			WithDetail("path", descriptor)
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Manager{
		BaseDir: cfg.BaseDir,
		Sops:    cfg.Sops,
		Workers: cfg.Workers,
		Crypto:  &Crypto{GPGKey: cfg.Sops.GPGKey, Runner: runner},
		fs:      fsys,
	}, nil
}

func (m *Manager) resolveDir(dir string) (string, error) {
	if dir == "" {
		return m.BaseDir, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "invalid directory %s", dir)
	}
	info, err := m.fs.Stat(abs)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrNotFound, "directory %s not found", abs)
	}
	if !info.IsDir() {
		return "", errors.Newf(errors.ErrInvalidInput, "%s is not a directory", abs)
	}
	return abs, nil
}

// Encrypt encrypts every plaintext file below dir into a sibling .enc file.
// Without a dir override the store's gitignore block is refreshed first.
func (m *Manager) Encrypt(ctx context.Context, dir string) ([]Job, error) {
	logger := logging.GetLogger("sops.manager")

	root, err := m.resolveDir(dir)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		gi := NewGitignore(m.fs, m.BaseDir)
		if err := gi.UpdateEntries(m.Sops.FileExtensionsEnc, m.Sops.FileNamesEnc); err != nil {
			return nil, err
		}
	}

	files, err := m.collect(root, m.Sops.FileExtensionsEnc, m.Sops.FileNamesEnc)
	if err != nil {
		return nil, err
	}
	jobs := make([]Job, 0, len(files))
	for _, f := range files {
		jobs = append(jobs, Job{Input: f, Output: f + EncryptedExt})
	}

	logger.Info().Str("dir", root).Int("files", len(jobs)).Msg("Encrypting files")
	return jobs, runPool(ctx, m.Workers, jobs, fileJob(m.Crypto.Encrypt), m.Progress)
}

// Decrypt decrypts every encrypted file below dir, writing each next to its
// input with the last extension removed.
func (m *Manager) Decrypt(ctx context.Context, dir string) ([]Job, error) {
	logger := logging.GetLogger("sops.manager")

	root, err := m.resolveDir(dir)
	if err != nil {
		return nil, err
	}
	files, err := m.collect(root, m.Sops.FileExtensionsDec, m.Sops.FileNamesDec)
	if err != nil {
		return nil, err
	}
	jobs := make([]Job, 0, len(files))
	for _, f := range files {
		jobs = append(jobs, Job{Input: f, Output: strings.TrimSuffix(f, filepath.Ext(f))})
	}

	logger.Info().Str("dir", root).Int("files", len(jobs)).Msg("Decrypting files")
	return jobs, runPool(ctx, m.Workers, jobs, fileJob(m.Crypto.Decrypt), m.Progress)
}

// Clean deletes the plaintext files below dir that Encrypt would pick up.
func (m *Manager) Clean(dir string) ([]string, error) {
	logger := logging.GetLogger("sops.manager")

	root, err := m.resolveDir(dir)
	if err != nil {
		return nil, err
	}
	files, err := m.collect(root, m.Sops.FileExtensionsEnc, m.Sops.FileNamesEnc)
	if err != nil {
		return nil, err
	}

	removed := make([]string, 0, len(files))
	for _, f := range files {
		if err := m.fs.Remove(f); err != nil {
			return removed, errors.Wrapf(err, errors.ErrFileAccess, "cannot remove %s", f)
		}
		logger.Debug().Str("path", f).Msg("Removed plaintext file")
		removed = append(removed, f)
	}
	logger.Info().Str("dir", root).Int("files", len(removed)).Msg("Cleaned plaintext files")
	return removed, nil
}

// collect returns the regular files below root whose extension is in exts or
// whose base name matches one of the names patterns.
func (m *Manager) collect(root string, exts, names []string) ([]string, error) {
	extSet := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		extSet[strings.TrimPrefix(ext, ".")] = struct{}{}
	}

	var files []string
	err := filesystem.Walk(m.fs, root, func(path string, info fs.FileInfo) error {
		if info.IsDir() {
			if info.Name() == ".git" {
				return filesystem.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if matches(info.Name(), extSet, names) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot walk %s", root)
	}
	return files, nil
}

func matches(name string, extSet map[string]struct{}, names []string) bool {
	if ext := filepath.Ext(name); ext != "" {
		if _, ok := extSet[ext[1:]]; ok {
			return true
		}
	}
	for _, pattern := range names {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
