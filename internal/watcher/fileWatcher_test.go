package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []Event
}

func (h *recordingHandler) HandleEvent(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
}

func (h *recordingHandler) names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []string
	for _, ev := range h.events {
		out = append(out, filepath.Base(ev.Path))
	}
	return out
}

func TestNewFileWatcher(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plan.xml")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	tests := []struct {
		name    string
		dir     string
		config  Config
		wantErr error
	}{
		{
			name:   "Default configuration",
			dir:    dir,
			config: Config{Patterns: []string{"*.xml"}},
		},
		{
			name:    "No patterns",
			dir:     dir,
			config:  Config{},
			wantErr: ErrNoPatterns,
		},
		{
			name:    "Missing directory",
			dir:     filepath.Join(dir, "missing"),
			config:  Config{Patterns: []string{"*.xml"}},
			wantErr: ErrInvalidPath,
		},
		{
			name:    "Not a directory",
			dir:     file,
			config:  Config{Patterns: []string{"*.xml"}},
			wantErr: ErrNotDirectory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fw, err := NewFileWatcher(tt.dir, &recordingHandler{}, tt.config)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, fw)
				return
			}

			require.NoError(t, err)
			assert.True(t, fw.Alive())
			assert.Equal(t, tt.dir, fw.Dir())
			assert.NoError(t, fw.Close())
		})
	}
}

func TestFileWatcher_DeliversMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	h := &recordingHandler{}

	fw, err := NewFileWatcher(dir, h, Config{Patterns: []string{"*.xml", "*.fms"}})
	require.NoError(t, err)
	defer fw.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "OFP123.XML"), []byte("plan"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "route.fms"), []byte("fms"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("txt"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "draft.xml.tmp"), []byte("tmp"), 0644))

	assert.Eventually(t, func() bool {
		names := h.names()
		return contains(names, "OFP123.XML") && contains(names, "route.fms")
	}, 2*time.Second, 20*time.Millisecond)

	// give stray events a moment to arrive
	time.Sleep(100 * time.Millisecond)
	names := h.names()
	assert.NotContains(t, names, "notes.txt")
	assert.NotContains(t, names, "draft.xml.tmp")

	stats := fw.Metrics().GetStats()
	assert.Greater(t, stats["events_received"].(int64), int64(0))
	assert.Greater(t, stats["events_ignored"].(int64), int64(0))
}

func TestFileWatcher_Close(t *testing.T) {
	dir := t.TempDir()
	h := &recordingHandler{}

	fw, err := NewFileWatcher(dir, h, Config{Patterns: []string{"*.xml"}})
	require.NoError(t, err)

	require.NoError(t, fw.Close())
	assert.False(t, fw.Alive())

	// second close is a no-op
	assert.NoError(t, fw.Close())

	_, open := <-fw.Errors()
	assert.False(t, open)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "late.xml"), []byte("x"), 0644))
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, h.names())
}

func TestMatchAny(t *testing.T) {
	patterns := []string{"*.xml", "*.fms"}

	assert.True(t, MatchAny(patterns, "plan.xml"))
	assert.True(t, MatchAny(patterns, "PLAN.XML"))
	assert.True(t, MatchAny(patterns, "b738x.fms"))
	assert.False(t, MatchAny(patterns, "plan.xml.bak"))
	assert.False(t, MatchAny([]string{"*.xml"}, "b738x.fms"))
	assert.False(t, MatchAny(nil, "plan.xml"))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
