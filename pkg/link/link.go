// Package link holds the symlink primitives guarding is built on: creating
// relative or absolute links, resolving them without touching the working
// directory, and swapping a link for the file it points to.
package link

import (
	stderrors "errors"
	"path/filepath"
	"syscall"

	"github.com/arthur-debert/confguard/pkg/errors"
	"github.com/arthur-debert/confguard/pkg/filesystem"
	"github.com/arthur-debert/confguard/pkg/logging"
)

// Create makes linkPath a symlink to target. With relative set the link
// stores the path from linkPath's directory to target, otherwise target's
// absolute path. Parent directories of linkPath are created.
func Create(fsys filesystem.FS, target, linkPath string, relative bool) error {
	logger := logging.GetLogger("link")

	if _, err := fsys.Stat(target); err != nil {
		if filesystem.IsNotExist(err) {
			return errors.Newf(errors.ErrNotFound, "link target does not exist: %s", target)
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat link target %s", target)
	}
	if filesystem.Exists(fsys, linkPath) {
		return errors.Newf(errors.ErrAlreadyExists, "link path already exists: %s", linkPath)
	}

	linkDir := filepath.Dir(linkPath)
	if err := fsys.MkdirAll(linkDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot create directory %s", linkDir)
	}

	stored := target
	if relative {
		rel, err := relativeTarget(target, linkDir)
		if err != nil {
			return err
		}
		stored = rel
	}

	if err := fsys.Symlink(stored, linkPath); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot create symlink %s", linkPath)
	}

	logger.Debug().
		Str("link", linkPath).
		Str("target", stored).
		Bool("relative", relative).
		Msg("Created symlink")
	return nil
}

// relativeTarget computes target relative to linkDir on canonical forms of
// both, so intermediate symlinks cannot skew the result.
func relativeTarget(target, linkDir string) (string, error) {
	canonicalTarget, err := filepath.EvalSymlinks(target)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot resolve %s", target)
	}
	canonicalDir, err := filepath.EvalSymlinks(linkDir)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot resolve %s", linkDir)
	}
	rel, err := filepath.Rel(canonicalDir, canonicalTarget)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrRelativePath, "cannot relate %s to %s", target, linkDir)
	}
	return rel, nil
}

// Resolve returns the absolute target of a symlink. Relative targets are
// joined to the link's own directory. The result is lexical and may name a
// path that does not exist.
func Resolve(fsys filesystem.FS, linkPath string) (string, error) {
	target, err := fsys.Readlink(linkPath)
	if err != nil {
		if filesystem.IsNotExist(err) {
			return "", errors.Newf(errors.ErrLinkNotFound, "link does not exist: %s", linkPath)
		}
		return "", errors.Wrapf(err, errors.ErrNotSymlink, "cannot read link %s", linkPath)
	}
	return ResolveAgainst(filepath.Dir(linkPath), target), nil
}

// ResolveAgainst resolves a stored link target relative to base
func ResolveAgainst(base, target string) string {
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(base, target)
}

// ReplaceWithTarget removes the symlink at linkPath and moves the file or
// directory it points to into its place. The swap is not atomic: the link
// is removed before the move.
func ReplaceWithTarget(fsys filesystem.FS, linkPath string) error {
	logger := logging.GetLogger("link")

	info, err := fsys.Lstat(linkPath)
	if err != nil {
		if filesystem.IsNotExist(err) {
			return errors.Newf(errors.ErrLinkNotFound, "link does not exist: %s", linkPath)
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", linkPath)
	}
	if info.Mode()&filesystem.ModeSymlink == 0 {
		return errors.Newf(errors.ErrNotSymlink, "not a symlink: %s", linkPath)
	}

	stored, err := fsys.Readlink(linkPath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read link %s", linkPath)
	}
	target, err := filepath.EvalSymlinks(ResolveAgainst(filepath.Dir(linkPath), stored))
	if err != nil {
		return errors.Wrapf(err, errors.ErrNotFound, "link target of %s does not exist", linkPath)
	}

	if err := fsys.Remove(linkPath); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot remove link %s", linkPath)
	}

	if err := fsys.Rename(target, linkPath); err != nil {
		if !stderrors.Is(err, syscall.EXDEV) {
			// Put the link back so the caller sees the original state
			if restoreErr := fsys.Symlink(stored, linkPath); restoreErr != nil {
				logger.Error().Err(restoreErr).Str("link", linkPath).Msg("Failed to restore link after failed move")
			}
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot move %s to %s", target, linkPath)
		}
		logger.Debug().Str("source", target).Str("destination", linkPath).Msg("Cross-device move, copying")
		if err := filesystem.CopyTree(fsys, target, linkPath); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot copy %s to %s", target, linkPath)
		}
		if err := fsys.RemoveAll(target); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot remove %s after copy", target)
		}
	}

	logger.Info().
		Str("link", linkPath).
		Str("target", target).
		Msg("Replaced link with target")
	return nil
}
