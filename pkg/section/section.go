// Package section reads and writes the metadata block confguard embeds in a
// guarded file. The block is made of shell comments plus two shell lines, so
// the file stays valid for the tools that source it.
//
//	#------------------------------- confguard start --------------------------------
//	# config.relative = true
//	# config.version = 3
//	# state.sentinel = 'myproject-1a2b3c4d'
//	# state.timestamp = '2025-01-02T03:04:05.678Z'
//	# state.sourceDir = '$HOME/dev/myproject'
//	export SOPS_PATH=$HOME/xxx/rs-cg/guarded/myproject-1a2b3c4d
//	dotenv $SOPS_PATH/environments/local.env
//	#-------------------------------- confguard end ---------------------------------
//
// A file holds at most one block.
package section

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/arthur-debert/confguard/pkg/errors"
)

// Marker lines delimiting the block
const (
	StartMarker = "#------------------------------- confguard start --------------------------------"
	EndMarker   = "#-------------------------------- confguard end ---------------------------------"

	startToken = "confguard start"
	endToken   = "confguard end"
)

// TimestampFormat is RFC 3339 with millisecond precision, always UTC
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

var (
	relativeRe  = regexp.MustCompile(`(?m)^# config\.relative = (true|false)`)
	versionRe   = regexp.MustCompile(`(?m)^# config\.version = (\d+)`)
	sentinelRe  = regexp.MustCompile(`(?m)^# state\.sentinel = '(.+)'`)
	timestampRe = regexp.MustCompile(`(?m)^# state\.timestamp = '(.+)'`)
	sourceDirRe = regexp.MustCompile(`(?m)^# state\.sourceDir = '(.+)'`)
	sopsPathRe  = regexp.MustCompile(`(?m)^export SOPS_PATH=\$HOME/(.+)$`)

	blockRe = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(StartMarker) + `.*?` + regexp.QuoteMeta(EndMarker) + `\n?`)
)

// Fields are the values recorded in a block
type Fields struct {
	Relative  bool
	Version   int
	Sentinel  string
	Timestamp string
	// SourceDir is the project directory in $HOME-based notation
	SourceDir string
	// SopsPath is the sentinel directory relative to $HOME
	SopsPath string
}

// NewTimestamp formats t the way blocks record it
func NewTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// bounds returns the index of the first start marker line and of the first
// end marker line after it, or -1 for a missing marker.
func bounds(lines []string) (start, end int) {
	start, end = -1, -1
	for i, line := range lines {
		if start < 0 && strings.Contains(line, startToken) {
			start = i
			continue
		}
		if start >= 0 && strings.Contains(line, endToken) {
			end = i
			return start, end
		}
	}
	return start, end
}

// Has reports whether text carries a complete block
func Has(text string) bool {
	start, end := bounds(strings.Split(text, "\n"))
	return start >= 0 && end > start
}

// HasMalformed reports a start marker with no end marker after it
func HasMalformed(text string) bool {
	start, end := bounds(strings.Split(text, "\n"))
	return start >= 0 && end < 0
}

// Parse extracts the recorded fields. A start and an end marker must both
// appear somewhere in text, in any order, and field lines are read from the
// whole text with the last occurrence winning. It returns nil when a marker
// or any of relative, version, sentinel and sourceDir is missing.
func Parse(text string) (*Fields, error) {
	if !strings.Contains(text, startToken) || !strings.Contains(text, endToken) {
		return nil, nil
	}

	relative := lastMatch(relativeRe, text)
	version := lastMatch(versionRe, text)
	sentinel := lastMatch(sentinelRe, text)
	sourceDir := lastMatch(sourceDirRe, text)
	if relative == nil || version == nil || sentinel == nil || sourceDir == nil {
		return nil, nil
	}

	v, err := strconv.Atoi(version[1])
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInternal, "invalid config.version %q", version[1])
	}

	f := &Fields{
		Relative:  relative[1] == "true",
		Version:   v,
		Sentinel:  sentinel[1],
		SourceDir: sourceDir[1],
	}
	if m := lastMatch(timestampRe, text); m != nil {
		f.Timestamp = m[1]
	}
	if m := lastMatch(sopsPathRe, text); m != nil {
		f.SopsPath = m[1]
	}
	return f, nil
}

func lastMatch(re *regexp.Regexp, text string) []string {
	all := re.FindAllStringSubmatch(text, -1)
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

// Render returns the block for f, ending in a newline
func Render(f Fields) string {
	var b strings.Builder
	b.WriteString(StartMarker + "\n")
	fmt.Fprintf(&b, "# config.relative = %t\n", f.Relative)
	fmt.Fprintf(&b, "# config.version = %d\n", f.Version)
	fmt.Fprintf(&b, "# state.sentinel = '%s'\n", f.Sentinel)
	fmt.Fprintf(&b, "# state.timestamp = '%s'\n", f.Timestamp)
	fmt.Fprintf(&b, "# state.sourceDir = '%s'\n", f.SourceDir)
	fmt.Fprintf(&b, "export SOPS_PATH=$HOME/%s\n", f.SopsPath)
	b.WriteString("dotenv $SOPS_PATH/environments/local.env\n")
	b.WriteString(EndMarker + "\n")
	return b.String()
}

// Write returns text with the block for f in place of an existing complete
// block, or appended when there is none. Appending adds a newline first if
// text does not end with one. A malformed block is left untouched.
func Write(text string, f Fields) string {
	block := Render(f)
	lines := strings.Split(text, "\n")
	start, end := bounds(lines)

	if start >= 0 && end > start {
		before := strings.Join(lines[:start], "\n")
		if start > 0 {
			before += "\n"
		}
		after := strings.Join(lines[end+1:], "\n")
		return before + block + after
	}

	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text + block
}

// Delete removes the first complete block including its end marker line.
// Text without a complete block is returned unchanged.
func Delete(text string) string {
	if !Has(text) {
		return text
	}
	loc := blockRe.FindStringIndex(text)
	if loc == nil {
		// Markers present but not verbatim; fall back to line bounds
		lines := strings.Split(text, "\n")
		start, end := bounds(lines)
		return strings.Join(append(lines[:start:start], lines[end+1:]...), "\n")
	}
	return text[:loc[0]] + text[loc[1]:]
}
