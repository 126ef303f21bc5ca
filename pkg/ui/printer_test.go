// pkg/ui/printer_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test text, JSON and YAML rendering of command results

package ui_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/arthur-debert/confguard/pkg/guard"
	"github.com/arthur-debert/confguard/pkg/sops"
	"github.com/arthur-debert/confguard/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func guardedStatus() *guard.Status {
	return &guard.Status{
		State:      guard.StateGuarded,
		SourceDir:  "/home/u/dev/app",
		ConfigPath: "/home/u/dev/app/.envrc",
		LinkTarget: "/store/guarded/app-1a2b3c4d/dot.envrc",
		Sentinel:   "app-1a2b3c4d",
		TargetDir:  "/store/guarded/app-1a2b3c4d",
		Relative:   true,
		Version:    3,
		Timestamp:  "2024-03-09T14:05:06.000Z",
	}
}

func TestStatusText(t *testing.T) {
	var buf bytes.Buffer
	p := ui.NewPrinter(&buf, ui.FormatText)

	require.NoError(t, p.Status(guardedStatus()))

	out := buf.String()
	assert.Contains(t, out, "State: guarded")
	assert.Contains(t, out, "Sentinel: app-1a2b3c4d")
	assert.Contains(t, out, "Version: 3")
	assert.NotContains(t, out, "\x1b[", "plain text carries no escape codes")
}

func TestStatusTextOmitsEmptyFields(t *testing.T) {
	var buf bytes.Buffer
	p := ui.NewPrinter(&buf, ui.FormatText)

	require.NoError(t, p.Status(&guard.Status{State: guard.StateUnguarded, SourceDir: "/p", ConfigPath: "/p/.envrc"}))

	out := buf.String()
	assert.NotContains(t, out, "Sentinel")
	assert.NotContains(t, out, "Version")
}

func TestStatusJSON(t *testing.T) {
	var buf bytes.Buffer
	p := ui.NewPrinter(&buf, ui.FormatJSON)

	require.NoError(t, p.Status(guardedStatus()))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "guarded", decoded["state"])
	assert.Equal(t, "app-1a2b3c4d", decoded["sentinel"])
}

func TestStatusYAML(t *testing.T) {
	var buf bytes.Buffer
	p := ui.NewPrinter(&buf, ui.FormatYAML)

	require.NoError(t, p.Status(guardedStatus()))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "guarded", decoded["state"])
	assert.Equal(t, 3, decoded["version"])
}

func TestResultText(t *testing.T) {
	var buf bytes.Buffer
	p := ui.NewPrinter(&buf, ui.FormatText)

	require.NoError(t, p.Result(&guard.Result{
		Operation: "unguard",
		SourceDir: "/p",
		Restored:  []string{"/p/.envrc"},
		Skipped:   []string{"/p/broken"},
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "unguard done", lines[0])
	assert.Contains(t, buf.String(), "Restored:\n  /p/.envrc")
	assert.Contains(t, buf.String(), "Skipped:\n  /p/broken")
}

func TestJobs(t *testing.T) {
	var buf bytes.Buffer
	p := ui.NewPrinter(&buf, ui.FormatText)

	require.NoError(t, p.Jobs("encrypt", []sops.Job{{Input: "/s/a.env", Output: "/s/a.env.enc"}}))
	assert.Contains(t, buf.String(), "encrypt: 1 file(s)")
	assert.Contains(t, buf.String(), "/s/a.env -> /s/a.env.enc")

	buf.Reset()
	require.NoError(t, p.Jobs("encrypt", nil))
	assert.Equal(t, "no files matched\n", buf.String())
}

func TestStructuredRejectsTextFormat(t *testing.T) {
	p := ui.NewPrinter(&bytes.Buffer{}, ui.FormatText)
	assert.Error(t, p.Structured(map[string]string{}))
}

func TestProgressBarDisabledOffTerminal(t *testing.T) {
	p := ui.NewPrinter(&bytes.Buffer{}, ui.FormatText)
	progress, stop := p.ProgressBar(&bytes.Buffer{}, "encrypting")
	assert.Nil(t, progress)
	stop()
}

func TestRenderMarkdownPassthrough(t *testing.T) {
	md := "# Title\n\nbody\n"
	assert.Equal(t, md, ui.RenderMarkdown(md, ui.FormatText, 80))
}

func TestLoadStyles(t *testing.T) {
	styles, err := ui.LoadStyles([]byte("colors:\n  c:\n    light: '#000'\n    dark: '#fff'\nstyles:\n  Header:\n    bold: true\n    foreground: c\n"))
	require.NoError(t, err)
	assert.Contains(t, styles, "Header")
	assert.Equal(t, "plain", styles.Render("Unknown", "plain"))

	_, err = ui.LoadStyles([]byte("colors: ["))
	assert.Error(t, err)

	assert.NotEmpty(t, ui.DefaultStyles())
}
