package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "find_button", sanitize("find button"))
	assert.Equal(t, "locator", sanitize("///"))
	assert.Len(t, sanitize(strings.Repeat("a", 100)), 60)
}

func TestLoggerAdapter_Fields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewFromZap(zap.New(core))

	l.WithField("selector", "{id: \"x\"}").
		WithFields(map[string]any{"kind": "Button"}).
		Debug("located", "matches", 1)

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "located", entries[0].Message)
	assert.Equal(t, "{id: \"x\"}", ctx["selector"])
	assert.Equal(t, "Button", ctx["kind"])
	assert.EqualValues(t, 1, ctx["matches"])
}

func TestLoggerAdapter_Level(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLoggerAdapter(Config{Level: "warn", Console: &buf})
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown")
	require.NoError(t, l.Close())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestLoggerAdapter_BadLevel(t *testing.T) {
	_, err := NewLoggerAdapter(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestLoggerAdapter_File(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLoggerAdapter(Config{Level: "debug", Dir: dir, Name: "find button"})
	require.NoError(t, err)

	l.Error("timed out", "wait_chain", "abc")
	require.NoError(t, l.Close())

	files, err := filepath.Glob(filepath.Join(dir, "*_find_button.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	raw, err := os.ReadFile(files[0])
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(raw), &entry))
	assert.Equal(t, "timed out", entry["message"])
	assert.Equal(t, "abc", entry["wait_chain"])
	assert.Equal(t, "error", entry["level"])
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Info("nothing")
	assert.NoError(t, l.Close())
}
