package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{input: "debug", expected: zerolog.DebugLevel},
		{input: "INFO", expected: zerolog.InfoLevel},
		{input: "", expected: zerolog.InfoLevel},
		{input: "warning", expected: zerolog.WarnLevel},
		{input: "error", expected: zerolog.ErrorLevel},
		{input: "verbose", expected: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, zerolog.InfoLevel, false)

	log.Debug().Msg("hidden")
	log.Info().Msgf("demo started: steps=%d", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "demo started: steps=3", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

func TestInit_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demobox.log")
	require.NoError(t, Init(Config{Output: path, Level: "warn"}))
	t.Cleanup(func() {
		_ = Init(Config{Output: "none"})
	})

	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestInit_BadFile(t *testing.T) {
	err := Init(Config{Output: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}

func TestInit_ReplacesLogFile(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() {
		_ = Init(Config{Output: "none"})
	})

	require.NoError(t, Init(Config{Output: filepath.Join(dir, "first.log")}))
	first := file
	require.NotNil(t, first)

	require.NoError(t, Init(Config{Output: filepath.Join(dir, "second.log")}))
	assert.NotSame(t, first, file)

	// The replaced handle is closed
	_, err := first.Write([]byte("x"))
	assert.ErrorIs(t, err, os.ErrClosed)

	require.NoError(t, Init(Config{Output: "none"}))
	assert.Nil(t, file)
}

func TestClose(t *testing.T) {
	require.NoError(t, Init(Config{Output: filepath.Join(t.TempDir(), "demobox.log")}))
	t.Cleanup(func() {
		_ = Init(Config{Output: "none"})
	})

	require.NoError(t, Close())
	assert.Nil(t, file)
	assert.NoError(t, Close())
}
