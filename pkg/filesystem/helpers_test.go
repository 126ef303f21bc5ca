// pkg/filesystem/helpers_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (t.TempDir)
// PURPOSE: Test walking without following links and tree copying

package filesystem_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/confguard/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExistsAndIsSymlink(t *testing.T) {
	dir := t.TempDir()
	fsys := filesystem.NewOS()
	file := filepath.Join(dir, "f")
	link := filepath.Join(dir, "l")
	dangling := filepath.Join(dir, "d")

	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	require.NoError(t, os.Symlink(file, link))
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing"), dangling))

	assert.True(t, filesystem.Exists(fsys, file))
	assert.False(t, filesystem.IsSymlink(fsys, file))
	assert.True(t, filesystem.IsSymlink(fsys, link))
	assert.True(t, filesystem.Exists(fsys, dangling))
	assert.True(t, filesystem.IsSymlink(fsys, dangling))
	assert.False(t, filesystem.Exists(fsys, filepath.Join(dir, "nope")))
}

func TestWalkDoesNotFollowLinks(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()
	fsys := filesystem.NewOS()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "b"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "b", "file"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret"), []byte("x"), 0644))
	require.NoError(t, os.Symlink(outside, filepath.Join(dir, "linkdir")))

	var seen []string
	err := filesystem.Walk(fsys, dir, func(path string, info fs.FileInfo) error {
		rel, _ := filepath.Rel(dir, path)
		seen = append(seen, rel)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{".", "a", "a/b", "a/b/file", "linkdir"}, seen)
}

func TestWalkSkipDir(t *testing.T) {
	dir := t.TempDir()
	fsys := filesystem.NewOS()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "skip", "deep"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "keep"), 0755))

	var seen []string
	err := filesystem.Walk(fsys, dir, func(path string, info fs.FileInfo) error {
		if info.Name() == "skip" {
			return filesystem.SkipDir
		}
		rel, _ := filepath.Rel(dir, path)
		seen = append(seen, rel)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{".", "keep"}, seen)
}

func TestCopyTree(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src")
	dst := filepath.Join(t.TempDir(), "dst")
	fsys := filesystem.NewOS()

	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "run.sh"), []byte("#!/bin/sh\n"), 0755))
	require.NoError(t, os.Symlink("sub/run.sh", filepath.Join(src, "alias")))

	require.NoError(t, filesystem.CopyTree(fsys, src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "sub", "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\n", string(data))

	info, err := os.Stat(filepath.Join(dst, "sub", "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0755), info.Mode().Perm())

	target, err := os.Readlink(filepath.Join(dst, "alias"))
	require.NoError(t, err)
	assert.Equal(t, "sub/run.sh", target)
}
