// Package sentinel allocates the unique directory name that ties a guarded
// project to its private directory in the managed store.
package sentinel

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/arthur-debert/confguard/pkg/errors"
	"github.com/arthur-debert/confguard/pkg/filesystem"
	"github.com/arthur-debert/confguard/pkg/logging"
	"github.com/arthur-debert/confguard/pkg/paths"
	"github.com/google/uuid"
)

// SuffixLen is the number of hex characters after the last dash
const SuffixLen = 8

var suffixRe = regexp.MustCompile(`^[0-9a-f]{8}$`)

// Allocation is a freshly created sentinel and its directory
type Allocation struct {
	Sentinel  string
	TargetDir string
}

// pattern matches sentinel directory names for a project basename
func pattern(basename string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(basename) + `-[a-z0-9]{8}$`)
}

// Find lists the directories below guardedDir that are sentinels of a
// project named basename.
func Find(fsys filesystem.FS, guardedDir, basename string) ([]string, error) {
	entries, err := fsys.ReadDir(guardedDir)
	if err != nil {
		if filesystem.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot list %s", guardedDir)
	}

	re := pattern(basename)
	var found []string
	for _, entry := range entries {
		if entry.IsDir() && re.MatchString(entry.Name()) {
			found = append(found, entry.Name())
		}
	}
	return found, nil
}

// Allocate creates <baseDir>/guarded/<basename>-<8 hex> for projectDir. It
// refuses when a sentinel directory for the same basename already exists.
func Allocate(fsys filesystem.FS, projectDir, baseDir string) (*Allocation, error) {
	logger := logging.GetLogger("sentinel")
	layout := paths.Layout{BaseDir: baseDir}
	basename := filepath.Base(projectDir)

	if err := fsys.MkdirAll(layout.GuardedDir(), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot create %s", layout.GuardedDir())
	}

	existing, err := Find(fsys, layout.GuardedDir(), basename)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, errors.Newf(errors.ErrSentinelExists,
			"sentinel directory for %s already exists: %s", basename, existing[0]).
			WithDetail("existing", existing)
	}

	name := basename + "-" + NewSuffix()
	dir := layout.SentinelDir(name)
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot create %s", dir)
	}

	logger.Info().Str("sentinel", name).Str("dir", dir).Msg("Allocated sentinel")
	return &Allocation{Sentinel: name, TargetDir: dir}, nil
}

// NewSuffix returns 8 random lowercase hex characters
func NewSuffix() string {
	return uuid.NewString()[:SuffixLen]
}

// Suffix returns the part after the last dash
func Suffix(sentinel string) string {
	i := strings.LastIndex(sentinel, "-")
	if i < 0 {
		return ""
	}
	return sentinel[i+1:]
}

// Valid reports whether s has a non-empty project name and an 8 hex suffix
func Valid(s string) bool {
	i := strings.LastIndex(s, "-")
	return i > 0 && suffixRe.MatchString(s[i+1:])
}
