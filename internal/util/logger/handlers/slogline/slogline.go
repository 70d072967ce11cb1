// Package slogline renders records as single human readable lines
// ("2006-01-02 15:04:05 - INFO - message") and hands them to a listener.
package slogline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// LevelCritical sits above slog.LevelError for unrecoverable conditions.
const LevelCritical = slog.Level(12)

const TimeLayout = "2006-01-02 15:04:05"

// LevelName maps a slog level onto the names used in the settings file.
func LevelName(l slog.Level) string {
	switch {
	case l >= LevelCritical:
		return "CRITICAL"
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARNING"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// Format renders r, prefixed attrs first, as one line terminated by "\n".
func Format(r slog.Record, attrs []slog.Attr) string {
	var b strings.Builder

	b.WriteString(r.Time.Format(TimeLayout))
	b.WriteString(" - ")
	b.WriteString(LevelName(r.Level))
	b.WriteString(" - ")
	b.WriteString(r.Message)

	write := func(a slog.Attr) bool {
		if a.Equal(slog.Attr{}) {
			return true
		}
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Resolve().Any())
		return true
	}

	for _, a := range attrs {
		write(a)
	}
	r.Attrs(write)

	b.WriteByte('\n')

	return b.String()
}

type listenerSlot struct {
	mu       sync.RWMutex
	listener func(string)
}

// Handler forwards formatted lines to at most one listener.
type Handler struct {
	level slog.Leveler
	slot  *listenerSlot
	attrs []slog.Attr
	group string
}

func New(level slog.Leveler) *Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{
		level: level,
		slot:  &listenerSlot{},
	}
}

// SetListener replaces the current listener; nil removes it.
func (h *Handler) SetListener(fn func(line string)) {
	h.slot.mu.Lock()
	h.slot.listener = fn
	h.slot.mu.Unlock()
}

func (h *Handler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	h.slot.mu.RLock()
	fn := h.slot.listener
	h.slot.mu.RUnlock()

	if fn == nil {
		return nil
	}

	fn(Format(r, h.attrs))

	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if h.group != "" {
		name = h.group + "." + name
	}
	clone.group = name
	return &clone
}
