package sops

import (
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/confguard/pkg/errors"
	"github.com/arthur-debert/confguard/pkg/filesystem"
	"github.com/arthur-debert/confguard/pkg/logging"
)

// Gitignore block markers
const (
	GitignoreStart = "# ---------------------------------- confguard-start -----------------------------------"
	GitignoreEnd   = "# ---------------------------------- confguard-end -----------------------------------"
)

const gitignoreTimestamp = "2006-01-02 15:04:05"

// Gitignore maintains the confguard block of a .gitignore file so plaintext
// secrets below the store are never committed.
type Gitignore struct {
	Path string

	fs  filesystem.FS
	now func() time.Time
}

// NewGitignore manages <dir>/.gitignore
func NewGitignore(fsys filesystem.FS, dir string) *Gitignore {
	return &Gitignore{
		Path: filepath.Join(dir, ".gitignore"),
		fs:   fsys,
		now:  time.Now,
	}
}

// splitSections returns the lines before, inside and after the block
func splitSections(content string) (pre, section, post []string) {
	inSection, seenSection := false, false
	for _, line := range strings.Split(strings.TrimSuffix(content, "\n"), "\n") {
		switch {
		case line == GitignoreStart:
			inSection, seenSection = true, true
		case line == GitignoreEnd:
			inSection = false
		case inSection:
			section = append(section, line)
		case seenSection:
			post = append(post, line)
		default:
			pre = append(pre, line)
		}
	}
	if len(pre) == 1 && pre[0] == "" {
		pre = nil
	}
	return pre, section, post
}

// UpdateEntries rewrites the block with one pattern per extension and file
// name, sorted, each tagged with the update time.
func (g *Gitignore) UpdateEntries(extensions, filenames []string) error {
	logger := logging.GetLogger("sops.gitignore")

	content, err := g.read()
	if err != nil {
		return err
	}
	pre, _, post := splitSections(content)

	entries := make([]string, 0, len(extensions)+len(filenames))
	for _, ext := range extensions {
		entries = append(entries, "*."+ext)
	}
	entries = append(entries, filenames...)
	sort.Strings(entries)

	stamp := g.now().UTC().Format(gitignoreTimestamp)
	block := []string{GitignoreStart}
	for _, e := range entries {
		block = append(block, e+"  # sops-managed "+stamp)
	}
	block = append(block, GitignoreEnd)

	if err := g.write(pre, block, post); err != nil {
		return err
	}
	logger.Info().Str("path", g.Path).Int("entries", len(entries)).Msg("Updated gitignore entries")
	return nil
}

// CleanEntries removes the block. A missing file is left missing.
func (g *Gitignore) CleanEntries() error {
	if !filesystem.Exists(g.fs, g.Path) {
		return nil
	}
	content, err := g.read()
	if err != nil {
		return err
	}
	pre, _, post := splitSections(content)
	return g.write(pre, nil, post)
}

func (g *Gitignore) read() (string, error) {
	data, err := g.fs.ReadFile(g.Path)
	if err != nil {
		if filesystem.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", g.Path)
	}
	return string(data), nil
}

func (g *Gitignore) write(parts ...[]string) error {
	var b strings.Builder
	for _, part := range parts {
		if len(part) == 0 {
			continue
		}
		b.WriteString(strings.Join(part, "\n"))
		b.WriteString("\n")
	}
	if err := g.fs.WriteFile(g.Path, []byte(b.String()), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot write %s", g.Path)
	}
	return nil
}
