// pkg/section/section_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test parsing, writing and deleting the metadata block

package section_test

import (
	"strings"
	"testing"
	"time"

	"github.com/arthur-debert/confguard/pkg/section"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFields() section.Fields {
	return section.Fields{
		Relative:  true,
		Version:   3,
		Sentinel:  "myproject-1a2b3c4d",
		Timestamp: "2025-01-02T03:04:05.678Z",
		SourceDir: "$HOME/dev/myproject",
		SopsPath:  "xxx/rs-cg/guarded/myproject-1a2b3c4d",
	}
}

func TestRender(t *testing.T) {
	want := `#------------------------------- confguard start --------------------------------
# config.relative = true
# config.version = 3
# state.sentinel = 'myproject-1a2b3c4d'
# state.timestamp = '2025-01-02T03:04:05.678Z'
# state.sourceDir = '$HOME/dev/myproject'
export SOPS_PATH=$HOME/xxx/rs-cg/guarded/myproject-1a2b3c4d
dotenv $SOPS_PATH/environments/local.env
#-------------------------------- confguard end ---------------------------------
`
	assert.Equal(t, want, section.Render(sampleFields()))
}

func TestWriteThenParse(t *testing.T) {
	inputs := []string{
		"",
		"export A=1\n",
		"export A=1",
		"# comment\n\nexport B=2\n",
	}
	for _, text := range inputs {
		written := section.Write(text, sampleFields())
		got, err := section.Parse(written)
		require.NoError(t, err)
		require.NotNil(t, got, "input %q", text)
		assert.Equal(t, sampleFields(), *got)
	}
}

func TestWriteAppendsNewlineWhenMissing(t *testing.T) {
	written := section.Write("export A=1", sampleFields())
	assert.True(t, strings.HasPrefix(written, "export A=1\n"+section.StartMarker))
}

func TestWriteReplacesExistingBlock(t *testing.T) {
	original := "export A=1\n"
	once := section.Write(original, sampleFields())
	once += "export C=3\n"

	changed := sampleFields()
	changed.Relative = false
	changed.Version = 4
	twice := section.Write(once, changed)

	assert.Equal(t, 1, strings.Count(twice, section.StartMarker))
	assert.True(t, strings.HasPrefix(twice, "export A=1\n"))
	assert.True(t, strings.HasSuffix(twice, section.EndMarker+"\nexport C=3\n"))

	got, err := section.Parse(twice)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Relative)
	assert.Equal(t, 4, got.Version)
}

func TestWriteBlockAtStart(t *testing.T) {
	text := section.Render(sampleFields()) + "export A=1\n"
	changed := sampleFields()
	changed.Sentinel = "myproject-ffffffff"

	got := section.Write(text, changed)
	assert.Equal(t, section.Render(changed)+"export A=1\n", got)
}

func TestWriteMalformedAppends(t *testing.T) {
	text := "export A=1\n" + section.StartMarker + "\n# config.relative = true\n"
	require.True(t, section.HasMalformed(text))

	written := section.Write(text, sampleFields())
	assert.True(t, strings.HasPrefix(written, text))
	assert.Equal(t, 2, strings.Count(written, "confguard start"))
}

func TestParseAbsent(t *testing.T) {
	tests := map[string]string{
		"empty":         "",
		"no block":      "export A=1\n",
		"start only":    section.StartMarker + "\n# config.relative = true\n",
		"end only":      section.EndMarker + "\n",
		"missing field": strings.Replace(section.Render(sampleFields()), "# config.version = 3\n", "", 1),
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := section.Parse(text)
			assert.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestParseOptionalFields(t *testing.T) {
	text := section.StartMarker + "\n" +
		"# config.relative = false\n" +
		"# config.version = 2\n" +
		"# state.sentinel = 'p-00000000'\n" +
		"# state.sourceDir = '$HOME/p'\n" +
		section.EndMarker + "\n"

	got, err := section.Parse(text)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Relative)
	assert.Equal(t, 2, got.Version)
	assert.Empty(t, got.Timestamp)
	assert.Empty(t, got.SopsPath)
}

func TestParseMarkersInAnyOrder(t *testing.T) {
	text := section.EndMarker + "\n" +
		"# config.relative = true\n" +
		"# config.version = 3\n" +
		"# state.sentinel = 'p-0a1b2c3d'\n" +
		"# state.sourceDir = '$HOME/p'\n" +
		section.StartMarker + "\n"

	got, err := section.Parse(text)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Relative)
	assert.Equal(t, 3, got.Version)
	assert.Equal(t, "p-0a1b2c3d", got.Sentinel)
	assert.Equal(t, "$HOME/p", got.SourceDir)
}

func TestParseLastFieldWins(t *testing.T) {
	stale := section.StartMarker + "\n# config.relative = false\n# state.sentinel = 'p-ffffffff'\n"
	got, err := section.Parse(stale + section.Render(sampleFields()))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sampleFields(), *got)
}

func TestParseVersionOverflow(t *testing.T) {
	text := strings.Replace(section.Render(sampleFields()), "config.version = 3", "config.version = 99999999999999999999999", 1)
	_, err := section.Parse(text)
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	original := "export A=1\n# keep me\n"
	assert.Equal(t, original, section.Delete(section.Write(original, sampleFields())))

	middle := "top\n" + section.Render(sampleFields()) + "bottom\n"
	assert.Equal(t, "top\nbottom\n", section.Delete(middle))
}

func TestDeleteLeavesTextWithoutBlockUnchanged(t *testing.T) {
	for _, text := range []string{
		"",
		"export A=1\n",
		section.StartMarker + "\nexport A=1\n",
		"export A=1\n" + section.EndMarker + "\n",
	} {
		assert.Equal(t, text, section.Delete(text))
	}
}

func TestNewTimestamp(t *testing.T) {
	ts := time.Date(2025, 1, 2, 4, 4, 5, 678_000_000, time.FixedZone("CET", 3600))
	assert.Equal(t, "2025-01-02T03:04:05.678Z", section.NewTimestamp(ts))
}
