package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestIsolatedLoggerWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worker.log")
	l := NewIsolatedLogger(path)

	l.Info("SEARCH", "Search completed", map[string]interface{}{"results": 2})
	l.Debug("SEARCH", "below file level", nil)
	require.NoError(t, l.Sync())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		lines = append(lines, entry)
	}

	require.Len(t, lines, 1)
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "Search completed", lines[0]["message"])
	assert.Equal(t, "SEARCH", lines[0]["module"])
	assert.Contains(t, lines[0], "timestamp")
}

func TestErrorDetailsAreReferenced(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewFromZap(zap.New(core))

	l.Error("GENERATOR", "Generation failed", map[string]interface{}{"error": "timeout"})
	l.Warn("CACHE", "Primary unavailable", nil)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "timeout", entries[0].ContextMap()["error_ref"])
	assert.Equal(t, "CACHE", entries[1].ContextMap()["module"])
}

func TestWatermillAdapterMergesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	adapter := NewWatermillAdapter(NewFromZap(zap.New(core)), false)

	scoped := adapter.With(watermill.LogFields{"topic": "content.index"})
	scoped.Info("Subscribing", watermill.LogFields{"subscriber": 1})
	scoped.Debug("suppressed", nil)

	entries := logs.All()
	require.Len(t, entries, 1)
	details, ok := entries[0].ContextMap()["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "content.index", details["topic"])
	assert.Equal(t, 1, details["subscriber"])
	assert.Equal(t, "WATERMILL", entries[0].ContextMap()["module"])
}
