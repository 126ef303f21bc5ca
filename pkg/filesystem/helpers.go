package filesystem

import (
	"errors"
	"io/fs"
	"path/filepath"
)

// ModeSymlink re-exports the symlink mode bit for callers holding a FileInfo
const ModeSymlink = fs.ModeSymlink

// Exists reports whether path exists without following a final symlink
func Exists(fsys FS, path string) bool {
	_, err := fsys.Lstat(path)
	return err == nil
}

// IsSymlink reports whether path is a symbolic link
func IsSymlink(fsys FS, path string) bool {
	info, err := fsys.Lstat(path)
	return err == nil && info.Mode()&fs.ModeSymlink != 0
}

// IsNotExist reports whether err means the path is missing
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// WalkFunc is called for every entry below the walk root. info comes from
// Lstat, so symlinks are reported as links and never followed.
type WalkFunc func(path string, info fs.FileInfo) error

// SkipDir returned from a WalkFunc on a directory skips its contents
var SkipDir = fs.SkipDir

// Walk visits root and everything below it in lexical order without
// following symlinks.
func Walk(fsys FS, root string, fn WalkFunc) error {
	info, err := fsys.Lstat(root)
	if err != nil {
		return err
	}
	return walk(fsys, root, info, fn)
}

func walk(fsys FS, path string, info fs.FileInfo, fn WalkFunc) error {
	if err := fn(path, info); err != nil {
		if errors.Is(err, SkipDir) && info.IsDir() {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return nil
	}

	entries, err := fsys.ReadDir(path)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		child := filepath.Join(path, entry.Name())
		childInfo, err := fsys.Lstat(child)
		if err != nil {
			return err
		}
		if err := walk(fsys, child, childInfo, fn); err != nil {
			return err
		}
	}
	return nil
}

// CopyTree copies a regular file or a directory tree from src to dst,
// preserving permission bits and recreating symlinks verbatim.
func CopyTree(fsys FS, src, dst string) error {
	info, err := fsys.Lstat(src)
	if err != nil {
		return err
	}

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		target, err := fsys.Readlink(src)
		if err != nil {
			return err
		}
		return fsys.Symlink(target, dst)
	case info.IsDir():
		if err := fsys.MkdirAll(dst, info.Mode().Perm()); err != nil {
			return err
		}
		entries, err := fsys.ReadDir(src)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := CopyTree(fsys, filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
				return err
			}
		}
		return nil
	default:
		data, err := fsys.ReadFile(src)
		if err != nil {
			return err
		}
		return fsys.WriteFile(dst, data, info.Mode().Perm())
	}
}
