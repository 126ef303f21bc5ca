package testutil

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/arthur-debert/confguard/pkg/filesystem"
)

// ErrInjected is returned by FaultyFS for every injected failure
var ErrInjected = errors.New("injected failure")

// Operations FaultyFS can fail
const (
	OpWriteFile = "WriteFile"
	OpMkdirAll  = "MkdirAll"
	OpSymlink   = "Symlink"
	OpRename    = "Rename"
	OpRemove    = "Remove"
)

type fault struct {
	op     string
	suffix string
}

// FaultyFS wraps a real filesystem and fails chosen calls. A call fails when
// its operation matches and its (destination) path ends with the suffix.
type FaultyFS struct {
	filesystem.FS
	faults []fault
}

// NewFaultyFS wraps inner
func NewFaultyFS(inner filesystem.FS) *FaultyFS {
	return &FaultyFS{FS: inner}
}

// FailOn makes op fail for paths ending in suffix
func (f *FaultyFS) FailOn(op, suffix string) *FaultyFS {
	f.faults = append(f.faults, fault{op: op, suffix: suffix})
	return f
}

func (f *FaultyFS) check(op, path string) error {
	for _, fl := range f.faults {
		if fl.op == op && strings.HasSuffix(path, fl.suffix) {
			return &fs.PathError{Op: op, Path: path, Err: ErrInjected}
		}
	}
	return nil
}

func (f *FaultyFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if err := f.check(OpWriteFile, name); err != nil {
		return err
	}
	return f.FS.WriteFile(name, data, perm)
}

func (f *FaultyFS) MkdirAll(path string, perm fs.FileMode) error {
	if err := f.check(OpMkdirAll, path); err != nil {
		return err
	}
	return f.FS.MkdirAll(path, perm)
}

func (f *FaultyFS) Symlink(oldname, newname string) error {
	if err := f.check(OpSymlink, newname); err != nil {
		return err
	}
	return f.FS.Symlink(oldname, newname)
}

func (f *FaultyFS) Rename(oldpath, newpath string) error {
	if err := f.check(OpRename, newpath); err != nil {
		return err
	}
	return f.FS.Rename(oldpath, newpath)
}

func (f *FaultyFS) Remove(name string) error {
	if err := f.check(OpRemove, name); err != nil {
		return err
	}
	return f.FS.Remove(name)
}
