package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreGlobal(t *testing.T) {
	t.Helper()
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})
}

func TestSetup_JSONToNonTerminal(t *testing.T) {
	restoreGlobal(t)
	var buf bytes.Buffer

	closeFn, err := Setup(Options{Level: "debug", Console: &buf})
	require.NoError(t, err)
	defer closeFn()

	log.Debug().Str("k", "v").Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "v", line["k"])
	assert.Equal(t, "debug", line["level"])
	assert.Contains(t, line, "time")
}

func TestSetup_LevelFilters(t *testing.T) {
	restoreGlobal(t)
	var buf bytes.Buffer

	closeFn, err := Setup(Options{Level: "WARN", Console: &buf})
	require.NoError(t, err)
	defer closeFn()

	log.Info().Msg("dropped")
	log.Warn().Msg("kept")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
}

func TestSetup_InvalidLevel(t *testing.T) {
	restoreGlobal(t)
	_, err := Setup(Options{Level: "loud", Console: &bytes.Buffer{}})
	assert.Error(t, err)
}

func TestSetup_File(t *testing.T) {
	restoreGlobal(t)
	path := filepath.Join(t.TempDir(), "logs", "fightlink.log")

	closeFn, err := Setup(Options{File: path, Console: &bytes.Buffer{}})
	require.NoError(t, err)

	log.Info().Msg("to file")
	require.NoError(t, closeFn())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), "to file"))
}

func TestIsTerminal_NonFile(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}
