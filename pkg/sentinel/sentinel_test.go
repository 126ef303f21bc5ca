// pkg/sentinel/sentinel_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (t.TempDir)
// PURPOSE: Test sentinel allocation, uniqueness and format

package sentinel_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/confguard/pkg/errors"
	"github.com/arthur-debert/confguard/pkg/filesystem"
	"github.com/arthur-debert/confguard/pkg/sentinel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocate(t *testing.T) {
	base := t.TempDir()
	fsys := filesystem.NewOS()

	alloc, err := sentinel.Allocate(fsys, "/home/u/dev/myproject", base)
	require.NoError(t, err)

	assert.Regexp(t, `^myproject-[0-9a-f]{8}$`, alloc.Sentinel)
	assert.Equal(t, filepath.Join(base, "guarded", alloc.Sentinel), alloc.TargetDir)
	assert.DirExists(t, alloc.TargetDir)
	assert.True(t, sentinel.Valid(alloc.Sentinel))
	assert.Len(t, sentinel.Suffix(alloc.Sentinel), sentinel.SuffixLen)
}

func TestAllocateRefusesSecondSentinel(t *testing.T) {
	base := t.TempDir()
	fsys := filesystem.NewOS()

	_, err := sentinel.Allocate(fsys, "/a/myproject", base)
	require.NoError(t, err)

	_, err = sentinel.Allocate(fsys, "/b/myproject", base)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSentinelExists))
	assert.True(t, errors.IsKind(err, errors.KindAlreadyInState))
}

func TestFindIsAnchored(t *testing.T) {
	base := t.TempDir()
	guarded := filepath.Join(base, "guarded")
	for _, name := range []string{"proj-1234abcd", "myproj-1234abcd", "proj-extra-1234abcd", "proj-123"} {
		require.NoError(t, os.MkdirAll(filepath.Join(guarded, name), 0755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(guarded, "proj-aaaabbbb"), []byte("file"), 0644))

	found, err := sentinel.Find(filesystem.NewOS(), guarded, "proj")
	require.NoError(t, err)
	assert.Equal(t, []string{"proj-1234abcd"}, found)

	// Regex metacharacters in the basename are literal
	found, err = sentinel.Find(filesystem.NewOS(), guarded, "pro.")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestFindMissingDir(t *testing.T) {
	found, err := sentinel.Find(filesystem.NewOS(), filepath.Join(t.TempDir(), "none"), "p")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestSuffixProperties(t *testing.T) {
	for i := 0; i < 50; i++ {
		s := sentinel.NewSuffix()
		assert.Regexp(t, `^[0-9a-f]{8}$`, s)
	}
	assert.True(t, sentinel.Valid("my-project-0a1b2c3d"))
	assert.Equal(t, "0a1b2c3d", sentinel.Suffix("my-project-0a1b2c3d"))
	assert.False(t, sentinel.Valid("-0a1b2c3d"))
	assert.False(t, sentinel.Valid("p-0A1B2C3D"))
	assert.False(t, sentinel.Valid("nodash"))
}
