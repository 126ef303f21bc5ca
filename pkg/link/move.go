package link

import (
	"path/filepath"

	"github.com/arthur-debert/confguard/pkg/errors"
	"github.com/arthur-debert/confguard/pkg/filesystem"
	"github.com/arthur-debert/confguard/pkg/logging"
	"github.com/arthur-debert/confguard/pkg/paths"
)

// MoveAndLink moves Source to Destination and leaves a symlink at Source
// pointing to the moved file. It can be reverted as long as Source is still
// that symlink.
type MoveAndLink struct {
	Source      string
	Destination string

	fs filesystem.FS
}

// NewMoveAndLink validates source and prepares the move. Source must exist
// and must not itself be a symlink; it is canonicalized.
func NewMoveAndLink(fsys filesystem.FS, source, destination string) (*MoveAndLink, error) {
	abs, err := paths.Abs(source)
	if err != nil {
		return nil, err
	}
	info, err := fsys.Lstat(abs)
	if err != nil {
		if filesystem.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrNotFound, "source does not exist: %s", abs)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", abs)
	}
	if info.Mode()&filesystem.ModeSymlink != 0 {
		return nil, errors.Newf(errors.ErrSourceIsSymlink, "source is a symlink: %s", abs)
	}

	canonical, err := paths.Canonical(abs)
	if err != nil {
		return nil, err
	}
	dest, err := paths.Abs(destination)
	if err != nil {
		return nil, err
	}

	return &MoveAndLink{Source: canonical, Destination: dest, fs: fsys}, nil
}

// Link moves Source to Destination and creates the link at Source. When the
// link cannot be created the move is undone before returning.
func (m *MoveAndLink) Link(relative bool) error {
	logger := logging.GetLogger("link.move")

	if filesystem.Exists(m.fs, m.Destination) {
		return errors.Newf(errors.ErrAlreadyExists, "destination already exists: %s", m.Destination)
	}
	if err := m.fs.MkdirAll(filepath.Dir(m.Destination), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot create directory for %s", m.Destination)
	}
	if err := m.fs.Rename(m.Source, m.Destination); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot move %s to %s", m.Source, m.Destination)
	}

	if err := Create(m.fs, m.Destination, m.Source, relative); err != nil {
		logger.Error().
			Err(err).
			Str("source", m.Source).
			Str("destination", m.Destination).
			Msg("Failed to create symlink, rolling back move")
		if rollbackErr := m.fs.Rename(m.Destination, m.Source); rollbackErr != nil {
			logger.Error().Err(rollbackErr).Msg("Failed to roll back move operation")
			return errors.Wrapf(err, errors.ErrInternal,
				"failed to create symlink and also failed to roll back the move (file is at %s)", m.Destination)
		}
		return err
	}

	logger.Info().
		Str("source", m.Source).
		Str("destination", m.Destination).
		Bool("relative", relative).
		Msg("Moved and linked")
	return nil
}

// Revert removes the link at Source and moves Destination back
func (m *MoveAndLink) Revert() error {
	logger := logging.GetLogger("link.move")

	if !filesystem.IsSymlink(m.fs, m.Source) {
		return errors.Newf(errors.ErrNotSymlink, "cannot revert, not a symlink: %s", m.Source)
	}
	if err := m.fs.Remove(m.Source); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot remove link %s", m.Source)
	}
	if err := m.fs.Rename(m.Destination, m.Source); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot move %s back to %s", m.Destination, m.Source)
	}

	logger.Info().
		Str("source", m.Source).
		Str("destination", m.Destination).
		Msg("Reverted move and link")
	return nil
}
