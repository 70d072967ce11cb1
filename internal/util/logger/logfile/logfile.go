// Package logfile provides a slog handler that mirrors records into a
// file which can be switched on and off at runtime.
package logfile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"sbrenamer/internal/util/logger/handlers/slogline"
)

type sink struct {
	mu    sync.Mutex
	file  *os.File
	path  string
	level slog.LevelVar
}

// Sink is disabled until Enable is called.
type Sink struct {
	s     *sink
	attrs []slog.Attr
}

func New() *Sink {
	return &Sink{s: &sink{}}
}

// Enable truncates path and starts writing to it. Enabling an already
// enabled sink on the same path is a no-op.
func (k *Sink) Enable(path string) error {
	k.s.mu.Lock()
	defer k.s.mu.Unlock()

	if k.s.file != nil {
		if k.s.path == path {
			return nil
		}
		_ = k.s.file.Close()
		k.s.file = nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", path, err)
	}

	k.s.file = f
	k.s.path = path

	return nil
}

func (k *Sink) Disable() error {
	k.s.mu.Lock()
	defer k.s.mu.Unlock()

	if k.s.file == nil {
		return nil
	}

	err := k.s.file.Close()
	k.s.file = nil

	return err
}

func (k *Sink) Active() bool {
	k.s.mu.Lock()
	defer k.s.mu.Unlock()
	return k.s.file != nil
}

func (k *Sink) SetLevel(l slog.Level) {
	k.s.level.Set(l)
}

func (k *Sink) Level() slog.Level {
	return k.s.level.Level()
}

func (k *Sink) Enabled(_ context.Context, l slog.Level) bool {
	return l >= k.s.level.Level() && k.Active()
}

func (k *Sink) Handle(_ context.Context, r slog.Record) error {
	line := slogline.Format(r, k.attrs)

	k.s.mu.Lock()
	defer k.s.mu.Unlock()

	if k.s.file == nil {
		return nil
	}

	_, err := k.s.file.WriteString(line)
	return err
}

func (k *Sink) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(k.attrs)+len(attrs))
	merged = append(merged, k.attrs...)
	merged = append(merged, attrs...)
	return &Sink{s: k.s, attrs: merged}
}

func (k *Sink) WithGroup(string) slog.Handler {
	return k
}
