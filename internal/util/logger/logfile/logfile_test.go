package logfile

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSink_EnableWritesAndTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale content\n"), 0644))

	sink := New()
	sink.SetLevel(slog.LevelWarn)
	log := slog.New(sink)

	log.Error("before enable")

	require.NoError(t, sink.Enable(path))
	assert.True(t, sink.Active())

	log.Info("below level")
	log.Warn("kept", slog.String("file", "a.xml"))
	require.NoError(t, sink.Disable())
	assert.False(t, sink.Active())

	log.Error("after disable")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.NotContains(t, content, "stale content")
	assert.NotContains(t, content, "before enable")
	assert.NotContains(t, content, "below level")
	assert.NotContains(t, content, "after disable")
	assert.Contains(t, content, "- WARNING - kept file=a.xml\n")
}
