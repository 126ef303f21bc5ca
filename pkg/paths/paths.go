// Package paths provides the path handling shared by every confguard
// component: home directory resolution, canonicalization, the $HOME-based
// notation stored in section blocks, and the managed store layout.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/confguard/pkg/errors"
)

// Environment variable names
const (
	EnvHome        = "HOME"
	EnvXDGDataHome = "XDG_DATA_HOME"
)

// HomeVar is the token that replaces the home directory in stored paths
const HomeVar = "$HOME"

// AppDirName is the directory name used under XDG locations
const AppDirName = "confguard"

// HomeDir returns the current user's home directory
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return home, nil
	}
	if home = os.Getenv(EnvHome); home != "" {
		return home, nil
	}
	return "", errors.Wrap(err, errors.ErrHomeDir, "cannot determine home directory")
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := HomeDir()
	if err != nil {
		return path
	}
	if len(path) == 1 {
		return home
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(home, path[2:])
	}
	// ~user is not supported
	return path
}

// Abs expands home, makes the path absolute against the working directory
// and cleans it. Symlinks are not resolved.
func Abs(path string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrInvalidInput, "empty path")
	}
	abs, err := filepath.Abs(ExpandHome(path))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path of %s", path)
	}
	return filepath.Clean(abs), nil
}

// Canonical returns the absolute path with every symlink resolved. The path
// must exist.
func Canonical(path string) (string, error) {
	abs, err := Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrapf(err, errors.ErrNotFound, "path does not exist: %s", abs)
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve %s", abs)
	}
	return resolved, nil
}

// Within reports whether path equals root or lies below it. Both are compared
// lexically after cleaning.
func Within(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// homeCandidates returns the home directory as configured and, when it
// differs, its canonical form.
func homeCandidates() ([]string, error) {
	home, err := HomeDir()
	if err != nil {
		return nil, err
	}
	home = filepath.Clean(home)
	candidates := []string{home}
	if resolved, err := filepath.EvalSymlinks(home); err == nil && resolved != home {
		candidates = append([]string{resolved}, candidates...)
	}
	return candidates, nil
}

// ToHomeBased replaces a leading home directory with $HOME. Paths outside
// home are returned unchanged.
func ToHomeBased(abs string) (string, error) {
	if !filepath.IsAbs(abs) {
		return "", errors.Newf(errors.ErrInvalidInput, "path must be absolute: %s", abs)
	}
	candidates, err := homeCandidates()
	if err != nil {
		return "", err
	}
	abs = filepath.Clean(abs)
	for _, home := range candidates {
		if abs == home {
			return HomeVar, nil
		}
		if Within(home, abs) {
			return HomeVar + string(filepath.Separator) + strings.TrimPrefix(abs, home+string(filepath.Separator)), nil
		}
	}
	return abs, nil
}

// FromHomeBased expands a leading $HOME and canonicalizes the result
func FromHomeBased(s string) (string, error) {
	expanded := s
	if s == HomeVar || strings.HasPrefix(s, HomeVar+"/") {
		home, err := HomeDir()
		if err != nil {
			return "", err
		}
		expanded = home + strings.TrimPrefix(s, HomeVar)
	}
	return Canonical(expanded)
}

// RelativeToHome returns the relative path from the home directory to abs
func RelativeToHome(abs string) (string, error) {
	candidates, err := homeCandidates()
	if err != nil {
		return "", err
	}
	for _, home := range candidates {
		if Within(home, abs) {
			rel, err := filepath.Rel(home, abs)
			if err != nil {
				return "", errors.Wrapf(err, errors.ErrRelativePath, "cannot relate %s to %s", abs, home)
			}
			return rel, nil
		}
	}
	rel, err := filepath.Rel(candidates[len(candidates)-1], abs)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrRelativePath, "cannot relate %s to home", abs)
	}
	return rel, nil
}

// DefaultBaseDir returns the managed store location used when none is configured
func DefaultBaseDir() string {
	// xdg caches its paths at init, so honour a changed XDG_DATA_HOME here
	if dataHome := os.Getenv(EnvXDGDataHome); dataHome != "" {
		return filepath.Join(dataHome, AppDirName)
	}
	return filepath.Join(xdg.DataHome, AppDirName)
}
