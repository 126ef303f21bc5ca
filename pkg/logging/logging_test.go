// pkg/logging/logging_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: zerolog
// PURPOSE: Test verbosity mapping, log file placement and operation logging

package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/confguard/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, logging.LevelFor(0))
	assert.Equal(t, zerolog.InfoLevel, logging.LevelFor(1))
	assert.Equal(t, zerolog.DebugLevel, logging.LevelFor(2))
	assert.Equal(t, zerolog.TraceLevel, logging.LevelFor(3))
	assert.Equal(t, zerolog.TraceLevel, logging.LevelFor(7))
}

func TestLogFilePathHonoursStateHome(t *testing.T) {
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)

	assert.Equal(t, filepath.Join(state, "confguard", "confguard.log"), logging.LogFilePath())
}

func TestSetupLoggerCreatesLogFile(t *testing.T) {
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)
	original := log.Logger
	defer func() {
		log.Logger = original
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}()

	logging.SetupLogger(2)
	log.Warn().Msg("hello from test")

	data, err := os.ReadFile(filepath.Join(state, "confguard", "confguard.log"))
	assert.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
}

func TestGetLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	original := log.Logger
	defer func() { log.Logger = original }()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger := logging.GetLogger("guard")
	done := logging.LogOperationStart(logger, "guard")
	done()

	out := buf.String()
	assert.Contains(t, out, `"component":"guard"`)
	assert.Contains(t, out, "Operation started")
	assert.Contains(t, out, "Operation completed")
}
