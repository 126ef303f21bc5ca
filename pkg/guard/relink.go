package guard

import (
	"path/filepath"

	"github.com/arthur-debert/confguard/pkg/config"
	"github.com/arthur-debert/confguard/pkg/errors"
	"github.com/arthur-debert/confguard/pkg/filesystem"
	"github.com/arthur-debert/confguard/pkg/link"
	"github.com/arthur-debert/confguard/pkg/logging"
	"github.com/arthur-debert/confguard/pkg/paths"
)

// Relink recreates the project link for a stored config file, using the
// project location and link style recorded in its section. A link already
// in place yields ErrLinkExists when it points to the file and
// ErrLinkPointsElsewhere otherwise; neither modifies anything.
func Relink(cfg *config.Config, fsys filesystem.FS, storedPath string) (*Result, error) {
	logger := logging.GetLogger("guard")

	stored, err := paths.Canonical(storedPath)
	if err != nil {
		return nil, err
	}
	g, err := FromFile(cfg, fsys, stored)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, errors.Newf(errors.ErrNotGuardedFile, "%s carries no valid confguard section", stored)
	}

	linkPath := g.ConfigPath()
	if filesystem.IsSymlink(fsys, linkPath) {
		current, err := link.Resolve(fsys, linkPath)
		if err != nil {
			return nil, err
		}
		if sameFile(current, stored) {
			return nil, errors.Newf(errors.ErrLinkExists, "%s already links to %s", linkPath, stored).
				WithDetail("link", linkPath)
		}
		return nil, errors.Newf(errors.ErrLinkPointsElsewhere, "%s points to %s, not %s", linkPath, current, stored).
			WithDetail("link", linkPath).
			WithDetail("target", current)
	}

	if err := link.Create(fsys, stored, linkPath, g.Relative); err != nil {
		return nil, err
	}

	logger.Info().
		Str("link", linkPath).
		Str("target", stored).
		Bool("relative", g.Relative).
		Msg("Relinked config file")

	res := g.result("relink")
	res.StoredPath = stored
	res.Created = []string{linkPath}
	return res, nil
}

// sameFile compares a lexically resolved link target with a canonical path
func sameFile(resolved, canonical string) bool {
	if filepath.Clean(resolved) == canonical {
		return true
	}
	evaluated, err := filepath.EvalSymlinks(resolved)
	return err == nil && evaluated == canonical
}

// GuardOne moves an additional project file into the sentinel directory,
// mirroring its project-relative path, and links it back. The file must lie
// inside the project.
func (g *Guard) GuardOne(filePath string) (*Result, error) {
	logger := logging.GetLogger("guard")

	abs, err := paths.Abs(filePath)
	if err != nil {
		return nil, err
	}
	info, err := g.fs.Lstat(abs)
	if err != nil {
		if filesystem.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrNotFound, "file does not exist: %s", abs)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", abs)
	}
	if info.Mode()&filesystem.ModeSymlink != 0 {
		return nil, errors.Newf(errors.ErrSourceIsSymlink, "%s is a symlink", abs)
	}

	file, err := paths.Canonical(abs)
	if err != nil {
		return nil, err
	}
	if file == g.SourceDir || !paths.Within(g.SourceDir, file) {
		return nil, errors.Newf(errors.ErrOutsideProject, "%s is outside project %s", file, g.SourceDir).
			WithDetail("path", file)
	}

	rel, err := filepath.Rel(g.SourceDir, file)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRelativePath, "cannot relate %s to %s", file, g.SourceDir)
	}
	target := filepath.Join(g.TargetDir, rel)
	if filesystem.Exists(g.fs, target) {
		return nil, errors.Newf(errors.ErrAlreadyExists, "target already exists: %s", target)
	}

	m, err := link.NewMoveAndLink(g.fs, file, target)
	if err != nil {
		return nil, err
	}
	if err := m.Link(g.Relative); err != nil {
		return nil, err
	}

	logger.Info().
		Str("file", file).
		Str("target", target).
		Msg("Guarded file")

	res := g.result("guard-one")
	res.Path = file
	res.StoredPath = target
	res.Created = []string{target}
	return res, nil
}

// ReplaceLink swaps a symlink for the file or directory it points to
func ReplaceLink(fsys filesystem.FS, linkPath string) (*Result, error) {
	abs, err := paths.Abs(linkPath)
	if err != nil {
		return nil, err
	}
	if !filesystem.Exists(fsys, abs) {
		return nil, errors.Newf(errors.ErrLinkNotFound, "path does not exist: %s", abs)
	}
	if !filesystem.IsSymlink(fsys, abs) {
		return nil, errors.Newf(errors.ErrNotSymlink, "not a symlink: %s", abs)
	}
	target, err := link.Resolve(fsys, abs)
	if err != nil {
		return nil, err
	}
	if err := link.ReplaceWithTarget(fsys, abs); err != nil {
		return nil, err
	}
	return &Result{
		Operation:  "replace-link",
		SourceDir:  filepath.Dir(abs),
		Path:       abs,
		StoredPath: target,
		Restored:   []string{abs},
	}, nil
}
