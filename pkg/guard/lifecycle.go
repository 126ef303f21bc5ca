package guard

import (
	"io/fs"

	"github.com/arthur-debert/confguard/pkg/errors"
	"github.com/arthur-debert/confguard/pkg/filesystem"
	"github.com/arthur-debert/confguard/pkg/link"
	"github.com/arthur-debert/confguard/pkg/logging"
	"github.com/arthur-debert/confguard/pkg/section"
	"github.com/arthur-debert/confguard/pkg/sentinel"
	"github.com/rs/zerolog"
)

// stages collects compensating actions for a multi-step operation. They run
// in reverse order when the operation fails.
type stages struct {
	logger zerolog.Logger
	undo   []func() error
}

func (s *stages) add(undo func() error) {
	s.undo = append(s.undo, undo)
}

func (s *stages) rollback() {
	for i := len(s.undo) - 1; i >= 0; i-- {
		if err := s.undo[i](); err != nil {
			s.logger.Error().Err(err).Msg("Rollback step failed")
		}
	}
}

// Guard moves the config file into a new sentinel directory, leaves a link
// behind and stamps the stored file with a section. Any failure after the
// sentinel is allocated undoes every completed step.
func (g *Guard) Guard(absolute bool) (*Result, error) {
	logger := logging.GetLogger("guard")
	done := logging.LogOperationStart(logger, "guard")
	defer done()

	// Re-check the preconditions New established; the file may have changed
	if filesystem.IsSymlink(g.fs, g.ConfigPath()) {
		return nil, errors.Newf(errors.ErrAlreadyGuarded, "%s is already guarded (it is a symlink)", g.ConfigPath())
	}
	g.Relative = !absolute

	alloc, err := sentinel.Allocate(g.fs, g.SourceDir, g.BaseDir)
	if err != nil {
		return nil, err
	}
	g.Sentinel = alloc.Sentinel
	g.TargetDir = alloc.TargetDir

	st := &stages{logger: logger}
	st.add(func() error { return g.fs.RemoveAll(alloc.TargetDir) })

	res, err := g.commit(st)
	if err != nil {
		logger.Error().Err(err).Str("sentinel", g.Sentinel).Msg("Guard failed, rolling back")
		st.rollback()
		g.Sentinel = ""
		g.TargetDir = ""
		return nil, err
	}

	logger.Info().
		Str("project", g.SourceDir).
		Str("sentinel", g.Sentinel).
		Bool("relative", g.Relative).
		Msg("Guarded config file")
	return res, nil
}

func (g *Guard) commit(st *stages) (*Result, error) {
	envs, err := g.CreateEnvironments()
	if err != nil {
		return nil, err
	}

	ide, err := g.writeRunConfig(st)
	if err != nil {
		return nil, err
	}

	m, err := link.NewMoveAndLink(g.fs, g.ConfigPath(), g.StoredPath())
	if err != nil {
		return nil, err
	}
	if err := m.Link(g.Relative); err != nil {
		return nil, err
	}
	st.add(m.Revert)

	if err := g.stampSection(); err != nil {
		return nil, err
	}

	res := g.result("guard")
	res.Created = append(envs, ide...)
	return res, nil
}

// stampSection writes the section into the stored file
func (g *Guard) stampSection() error {
	logger := logging.GetLogger("guard")
	stored := g.StoredPath()
	info, err := g.fs.Stat(stored)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", stored)
	}
	content, err := g.fs.ReadFile(stored)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", stored)
	}

	fields, err := g.fields()
	if err != nil {
		return err
	}
	if section.HasMalformed(string(content)) {
		logger.Warn().
			Str("path", stored).
			Msg("File has a section start without an end, appending a new section")
	}
	updated := section.Write(string(content), fields)
	if err := g.fs.WriteFile(stored, []byte(updated), info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot write section to %s", stored)
	}
	return nil
}

// Unguard replaces the config file link with the stored file, strips the
// section, and restores every other link into this guard's sentinel dir
// found in the project. Links whose target is gone are reported as skipped.
// The sentinel directory is left in place.
func (g *Guard) Unguard() (*Result, error) {
	logger := logging.GetLogger("guard")
	done := logging.LogOperationStart(logger, "unguard")
	defer done()

	configPath := g.ConfigPath()
	info, err := g.fs.Lstat(configPath)
	if err != nil {
		if filesystem.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrNoConfigFile, "no %s in %s", g.ConfigFile, g.SourceDir)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", configPath)
	}
	if info.Mode()&filesystem.ModeSymlink == 0 {
		return nil, errors.Newf(errors.ErrNotSymlink, "%s is not a symlink, nothing to unguard", configPath)
	}

	if err := link.ReplaceWithTarget(g.fs, configPath); err != nil {
		return nil, err
	}
	if err := g.stripSection(configPath); err != nil {
		return nil, err
	}

	res := g.result("unguard")
	res.Restored = append(res.Restored, configPath)

	managed, err := g.managedLinks()
	if err != nil {
		return nil, err
	}
	for _, l := range managed {
		target, err := link.Resolve(g.fs, l)
		if err != nil {
			return nil, err
		}
		if _, err := g.fs.Stat(target); err != nil {
			logger.Warn().Str("link", l).Str("target", target).Msg("Managed link is broken, skipping")
			res.Skipped = append(res.Skipped, l)
			continue
		}
		if err := link.ReplaceWithTarget(g.fs, l); err != nil {
			return nil, err
		}
		res.Restored = append(res.Restored, l)
	}

	logger.Info().
		Str("project", g.SourceDir).
		Int("restored", len(res.Restored)).
		Int("skipped", len(res.Skipped)).
		Msg("Unguarded project")
	return res, nil
}

func (g *Guard) stripSection(path string) error {
	info, err := g.fs.Stat(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", path)
	}
	content, err := g.fs.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", path)
	}
	stripped := section.Delete(string(content))
	if stripped == string(content) {
		return nil
	}
	if err := g.fs.WriteFile(path, []byte(stripped), info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot write %s", path)
	}
	return nil
}

// managedLinks collects, before anything is modified, the links below the
// project whose target lies in this guard's sentinel directory.
func (g *Guard) managedLinks() ([]string, error) {
	var found []string
	err := filesystem.Walk(g.fs, g.SourceDir, func(path string, info fs.FileInfo) error {
		if info.Mode()&filesystem.ModeSymlink == 0 {
			return nil
		}
		target, err := link.Resolve(g.fs, path)
		if err != nil {
			return err
		}
		if g.Managed(target) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot scan %s for managed links", g.SourceDir)
	}
	return found, nil
}
