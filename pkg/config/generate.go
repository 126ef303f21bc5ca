package config

import (
	"strings"

	cgerrors "github.com/arthur-debert/confguard/pkg/errors"
	gotoml "github.com/pelletier/go-toml/v2"
)

const descriptorHeader = `# confguard store configuration
#
# Lists the files "confguard sops enc" encrypts and "confguard sops dec"
# decrypts below the store, and the PGP key used for both.

`

type descriptor struct {
	Sops SopsConfig `toml:"sops"`
}

// GenerateDescriptor renders a confguard.toml holding the given encryption
// settings. With commented set every value line is commented out, leaving a
// template that documents the defaults without overriding them.
func GenerateDescriptor(sops SopsConfig, commented bool) (string, error) {
	body, err := gotoml.Marshal(descriptor{Sops: normalizeSops(sops)})
	if err != nil {
		return "", cgerrors.Wrap(err, cgerrors.ErrInternal, "failed to render configuration")
	}
	content := descriptorHeader + string(body)
	if commented {
		content = commentOutConfigValues(content)
	}
	return content, nil
}

// normalizeSops replaces nil lists so they render as [] instead of vanishing
func normalizeSops(s SopsConfig) SopsConfig {
	for _, list := range []*[]string{&s.FileExtensionsEnc, &s.FileNamesEnc, &s.FileExtensionsDec, &s.FileNamesDec} {
		if *list == nil {
			*list = []string{}
		}
	}
	return s
}

// commentOutConfigValues comments out all non-comment, non-blank lines that
// contain configuration values (assignments)
func commentOutConfigValues(content string) string {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "", strings.HasPrefix(trimmed, "#"):
			result = append(result, line)
		case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
			// Section headers stay active so uncommenting a value is enough
			result = append(result, line)
		default:
			result = append(result, "# "+line)
		}
	}

	return strings.Join(result, "\n")
}
