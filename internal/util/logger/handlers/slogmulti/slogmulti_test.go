package slogmulti

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFanout(t *testing.T) {
	var debug, warn bytes.Buffer

	log := slog.New(Fanout(
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
		nil,
	)).With(slog.String("component", "test"))

	log.Debug("quiet")
	log.Warn("loud")

	assert.Contains(t, debug.String(), "quiet")
	assert.Contains(t, debug.String(), "loud")
	assert.NotContains(t, warn.String(), "quiet")
	assert.Contains(t, warn.String(), "loud")
	assert.Contains(t, warn.String(), "component=test")
}

func TestFanout_DisabledWhenNoChildIs(t *testing.T) {
	h := Fanout(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}
